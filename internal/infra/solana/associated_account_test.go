package solana

import (
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/require"
)

func TestFindAssociatedTokenAddressIsDeterministic(t *testing.T) {
	require := require.New(t)
	owner := types.NewAccount().PublicKey
	mint := types.NewAccount().PublicKey

	a, bumpA, err := FindAssociatedTokenAddress(owner, mint, Token2022ProgramID)
	require.NoError(err)
	b, bumpB, err := FindAssociatedTokenAddress(owner, mint, Token2022ProgramID)
	require.NoError(err)
	require.Equal(a, b)
	require.Equal(bumpA, bumpB)

	// zero program id falls back to token-2022
	c, _, err := FindAssociatedTokenAddress(owner, mint, [32]byte{})
	require.NoError(err)
	require.Equal(a, c)

	other, _, err := FindAssociatedTokenAddress(types.NewAccount().PublicKey, mint, Token2022ProgramID)
	require.NoError(err)
	require.NotEqual(a, other)

	otherMint, _, err := FindAssociatedTokenAddress(owner, types.NewAccount().PublicKey, Token2022ProgramID)
	require.NoError(err)
	require.NotEqual(a, otherMint)
}

func TestCreateAssociatedTokenAccountLayout(t *testing.T) {
	require := require.New(t)
	funder := types.NewAccount().PublicKey
	owner := types.NewAccount().PublicKey
	mint := types.NewAccount().PublicKey
	ata, _, err := FindAssociatedTokenAddress(owner, mint, Token2022ProgramID)
	require.NoError(err)

	ins := CreateAssociatedTokenAccount(CreateAssociatedTokenAccountParam{
		Funder:                 funder,
		Owner:                  owner,
		Mint:                   mint,
		AssociatedTokenAccount: ata,
	})

	require.Equal(SPLAssociatedTokenAccountProgramID, ins.ProgramID)
	require.Equal([]byte{0}, ins.Data)
	require.Equal([]types.AccountMeta{
		{PubKey: funder, IsSigner: true, IsWritable: true},
		{PubKey: ata, IsWritable: true},
		{PubKey: owner},
		{PubKey: mint},
		{PubKey: SystemProgramID},
		{PubKey: Token2022ProgramID},
	}, ins.Accounts)
}
