package usecase

import (
	"context"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/require"

	"permdelegate/internal/domain/ledger"
	mintdom "permdelegate/internal/domain/mint"
	"permdelegate/internal/domain/operation"
	tokendom "permdelegate/internal/domain/token"
	"permdelegate/internal/infra/localledger"
	"permdelegate/internal/infra/solana"
)

type movementFixture struct {
	ctx      context.Context
	l        *localledger.Ledger
	p        solana.Principals
	mint     mintdom.Mint
	accounts *AssociatedAccountCreator
	engine   *TokenMovementEngine

	authorityATA tokendom.Account
	party1ATA    tokendom.Account
}

func newMovementFixture(t *testing.T, decimals uint8) *movementFixture {
	t.Helper()
	require := require.New(t)

	f := &movementFixture{
		ctx: context.Background(),
		l:   localledger.New(nil),
		p:   solana.NewPrincipals(),
	}
	submit := NewSubmitter(f.l, nil)
	funding := NewFundingUsecase(f.l, submit, nil, nil)
	for _, acc := range []types.Account{f.p.Authority, f.p.Party1} {
		_, err := funding.EnsureFunded(f.ctx, acc.PublicKey, ledger.LamportsPerSOL)
		require.NoError(err)
	}

	m, _, err := NewMintInitializer(f.l, submit, nil).InitializeMint(f.ctx, InitializeMintParams{
		Authority: f.p.Authority,
		Mint:      f.p.Mint,
		Decimals:  decimals,
	})
	require.NoError(err)
	f.mint = m

	f.accounts = NewAssociatedAccountCreator(submit, nil)
	f.engine = NewTokenMovementEngine(submit, nil)

	f.authorityATA, _, err = f.accounts.Create(f.ctx, f.p.Authority, f.p.Authority.PublicKey, f.p.Mint.PublicKey)
	require.NoError(err)
	f.party1ATA, _, err = f.accounts.Create(f.ctx, f.p.Party1, f.p.Party1.PublicKey, f.p.Mint.PublicKey)
	require.NoError(err)
	return f
}

func (f *movementFixture) balance(t *testing.T, acc tokendom.Account) uint64 {
	t.Helper()
	v, err := f.l.TokenAccountBalance(f.ctx, acc.Address)
	require.NoError(t, err)
	return v
}

func TestTokenMovementEngine(t *testing.T) {
	require := require.New(t)
	f := newMovementFixture(t, 2)

	_, err := f.engine.MintTo(f.ctx, f.p.Authority, f.p.Mint, &f.mint, f.party1ATA, 500)
	require.NoError(err)
	require.Equal(uint64(500), f.mint.Supply)

	_, err = f.engine.Transfer(f.ctx, f.p.Authority, &f.mint, f.party1ATA, f.authorityATA, 200, 2)
	require.NoError(err)
	require.Equal(uint64(300), f.balance(t, f.party1ATA))
	require.Equal(uint64(200), f.balance(t, f.authorityATA))

	_, err = f.engine.Burn(f.ctx, f.p.Authority, &f.mint, f.party1ATA, 300, 2)
	require.NoError(err)
	require.Zero(f.balance(t, f.party1ATA))
	require.Equal(uint64(200), f.mint.Supply)

	info, err := f.l.MintInfo(f.ctx, f.mint.Address)
	require.NoError(err)
	require.Equal(f.mint.Supply, info.Supply)
}

func TestTokenMovementLocalChecks(t *testing.T) {
	f := newMovementFixture(t, 0)
	_, err := f.engine.MintTo(f.ctx, f.p.Authority, f.p.Mint, &f.mint, f.party1ATA, 10)
	require.NoError(t, err)

	foreign, err := tokendom.New(f.p.Party1.PublicKey.ToBase58(), f.p.Party1.PublicKey.ToBase58(), f.p.Authority.PublicKey.ToBase58())
	require.NoError(t, err)
	uninitialized, err := mintdom.NewUninitialized(f.mint.Address)
	require.NoError(t, err)

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name: "transfer decimals mismatch",
			run: func() error {
				_, err := f.engine.Transfer(f.ctx, f.p.Authority, &f.mint, f.party1ATA, f.authorityATA, 1, 9)
				return err
			},
			wantErr: mintdom.ErrDecimalsMismatch,
		},
		{
			name: "burn decimals mismatch",
			run: func() error {
				_, err := f.engine.Burn(f.ctx, f.p.Authority, &f.mint, f.party1ATA, 1, 1)
				return err
			},
			wantErr: mintdom.ErrDecimalsMismatch,
		},
		{
			name: "zero transfer",
			run: func() error {
				_, err := f.engine.Transfer(f.ctx, f.p.Authority, &f.mint, f.party1ATA, f.authorityATA, 0, 0)
				return err
			},
			wantErr: tokendom.ErrInvalidAmount,
		},
		{
			name: "foreign account",
			run: func() error {
				_, err := f.engine.Transfer(f.ctx, f.p.Authority, &f.mint, foreign, f.authorityATA, 1, 0)
				return err
			},
			wantErr: tokendom.ErrMintMismatch,
		},
		{
			name: "uninitialized mint",
			run: func() error {
				_, err := f.engine.Burn(f.ctx, f.p.Authority, &uninitialized, f.party1ATA, 1, 0)
				return err
			},
			wantErr: mintdom.ErrNotInitialized,
		},
		{
			name: "signer without key",
			run: func() error {
				_, err := f.engine.Burn(f.ctx, types.Account{PublicKey: f.p.Authority.PublicKey}, &f.mint, f.party1ATA, 1, 0)
				return err
			},
			wantErr: ErrInvalidPrincipal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			err := tt.run()
			require.ErrorIs(err, tt.wantErr)
			require.Equal(operation.ErrorTypeConstruction, Classify(err))

			// nothing reached the ledger
			require.Equal(uint64(10), f.balance(t, f.party1ATA))
			require.Zero(f.balance(t, f.authorityATA))
		})
	}
}

func TestNonDelegateTransferRejectedByLedger(t *testing.T) {
	require := require.New(t)
	f := newMovementFixture(t, 0)
	_, err := f.engine.MintTo(f.ctx, f.p.Authority, f.p.Mint, &f.mint, f.authorityATA, 5)
	require.NoError(err)

	// party1 is neither the delegate nor the owner of the authority's account
	_, err = f.engine.Transfer(f.ctx, f.p.Party1, &f.mint, f.authorityATA, f.party1ATA, 5, 0)
	require.ErrorIs(err, ledger.ErrTransactionFailed)
	require.ErrorIs(err, localledger.ErrOwnerMismatch)
	require.Equal(operation.ErrorTypeSubmission, Classify(err))
	require.False(Retryable(err))

	require.Equal(uint64(5), f.balance(t, f.authorityATA))
	require.Equal(mintdom.StateMinted, f.mint.State)
}

func TestAssociatedAccountCreateIsNotIdempotent(t *testing.T) {
	require := require.New(t)
	f := newMovementFixture(t, 0)

	resolved, err := f.accounts.Resolve(f.p.Party1.PublicKey, f.p.Mint.PublicKey)
	require.NoError(err)
	require.Equal(f.party1ATA, resolved)

	_, _, err = f.accounts.Create(f.ctx, f.p.Party1, f.p.Party1.PublicKey, f.p.Mint.PublicKey)
	require.ErrorIs(err, ledger.ErrTransactionFailed)
	require.ErrorIs(err, localledger.ErrAccountInUse)
}

func TestBuildInitializeMintOrder(t *testing.T) {
	require := require.New(t)
	l := localledger.New(nil)
	p := solana.NewPrincipals()

	b, err := NewMintInitializer(l, NewSubmitter(l, nil), nil).BuildInitializeMint(context.Background(), InitializeMintParams{
		Authority: p.Authority,
		Mint:      p.Mint,
	})
	require.NoError(err)

	require.Equal(p.Authority.PublicKey, b.FeePayer)
	require.Equal([]types.Account{p.Authority, p.Mint}, b.Signers)
	require.Len(b.Instructions, 3)
	require.Equal(solana.SystemProgramID, b.Instructions[0].ProgramID)
	require.Equal(byte(solana.InstructionInitializePermanentDelegate), b.Instructions[1].Data[0])
	require.Equal(byte(solana.InstructionInitializeMint), b.Instructions[2].Data[0])
}
