package solana

import (
	"encoding/binary"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/require"
)

func TestInitializePermanentDelegateLayout(t *testing.T) {
	require := require.New(t)
	mint := types.NewAccount().PublicKey
	delegate := types.NewAccount().PublicKey

	ins := InitializePermanentDelegate(InitializePermanentDelegateParam{Mint: mint, Delegate: delegate})

	require.Equal(Token2022ProgramID, ins.ProgramID)
	require.Len(ins.Data, 33)
	require.Equal(byte(35), ins.Data[0])
	require.Equal(delegate.Bytes(), ins.Data[1:])
	require.Equal([]types.AccountMeta{{PubKey: mint, IsSigner: false, IsWritable: true}}, ins.Accounts)
}

func TestInitializeMintLayout(t *testing.T) {
	mint := types.NewAccount().PublicKey
	auth := types.NewAccount().PublicKey

	t.Run("with freeze authority", func(t *testing.T) {
		require := require.New(t)
		freeze := auth
		ins := InitializeMint(InitializeMintParam{Decimals: 0, Mint: mint, MintAuth: auth, FreezeAuth: &freeze})

		require.Len(ins.Data, 67)
		require.Equal(byte(0), ins.Data[0])
		require.Equal(byte(0), ins.Data[1])
		require.Equal(auth.Bytes(), ins.Data[2:34])
		require.Equal(byte(1), ins.Data[34])
		require.Equal(auth.Bytes(), ins.Data[35:])

		require.Len(ins.Accounts, 2)
		require.True(ins.Accounts[0].IsWritable)
		require.Equal(SysVarRentPubkey, ins.Accounts[1].PubKey)
	})

	t.Run("without freeze authority", func(t *testing.T) {
		require := require.New(t)
		ins := InitializeMint(InitializeMintParam{Decimals: 6, Mint: mint, MintAuth: auth})

		require.Len(ins.Data, 35)
		require.Equal(byte(6), ins.Data[1])
		require.Equal(byte(0), ins.Data[34])
	})
}

func TestMintToSignerConvention(t *testing.T) {
	require := require.New(t)
	mint := types.NewAccount().PublicKey
	dest := types.NewAccount().PublicKey
	auth := types.NewAccount().PublicKey

	ins := MintTo(MintToParam{
		Mint:    mint,
		To:      dest,
		Auth:    auth,
		Signers: []common.PublicKey{auth, mint},
		Amount:  10,
	})

	require.Len(ins.Data, 9)
	require.Equal(byte(7), ins.Data[0])
	require.Equal(uint64(10), binary.LittleEndian.Uint64(ins.Data[1:]))

	require.Len(ins.Accounts, 5)
	require.Equal(auth, ins.Accounts[2].PubKey)
	require.False(ins.Accounts[2].IsSigner)
	require.Equal(types.AccountMeta{PubKey: auth, IsSigner: true}, ins.Accounts[3])
	require.Equal(types.AccountMeta{PubKey: mint, IsSigner: true}, ins.Accounts[4])
}

func TestTransferCheckedLayout(t *testing.T) {
	require := require.New(t)
	src := types.NewAccount().PublicKey
	mint := types.NewAccount().PublicKey
	dst := types.NewAccount().PublicKey
	delegate := types.NewAccount().PublicKey

	ins := TransferChecked(TransferCheckedParam{
		From: src, Mint: mint, To: dst, Auth: delegate, Amount: 10, Decimals: 0,
	})

	require.Equal([]byte{12, 10, 0, 0, 0, 0, 0, 0, 0, 0}, ins.Data)
	require.Equal([]types.AccountMeta{
		{PubKey: src, IsWritable: true},
		{PubKey: mint},
		{PubKey: dst, IsWritable: true},
		{PubKey: delegate, IsSigner: true},
	}, ins.Accounts)
}

func TestBurnCheckedLayout(t *testing.T) {
	require := require.New(t)
	holder := types.NewAccount().PublicKey
	mint := types.NewAccount().PublicKey
	delegate := types.NewAccount().PublicKey

	ins := BurnChecked(BurnCheckedParam{
		Account: holder, Mint: mint, Auth: delegate, Amount: 3, Decimals: 2,
	})

	require.Equal([]byte{15, 3, 0, 0, 0, 0, 0, 0, 0, 2}, ins.Data)
	require.Equal([]types.AccountMeta{
		{PubKey: holder, IsWritable: true},
		{PubKey: mint, IsWritable: true},
		{PubKey: delegate, IsSigner: true},
	}, ins.Accounts)
}
