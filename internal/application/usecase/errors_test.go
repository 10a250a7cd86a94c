package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/require"

	"permdelegate/internal/domain/ledger"
	mintdom "permdelegate/internal/domain/mint"
	"permdelegate/internal/domain/operation"
	"permdelegate/internal/infra/localledger"
	"permdelegate/internal/infra/solana"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      operation.ErrorType
		retryable bool
	}{
		{"nil", nil, operation.ErrorTypeUnknown, false},
		{"funding", fmt.Errorf("%w: airdrop: %w", ErrFundingFailed, ledger.ErrTransactionFailed), operation.ErrorTypeFunding, false},
		{"local decimals", mintdom.ErrDecimalsMismatch, operation.ErrorTypeConstruction, false},
		{"unsigned bundle", ledger.ErrMissingSignature, operation.ErrorTypeConstruction, false},
		{"program decimals", fmt.Errorf("%w: %w", ledger.ErrTransactionFailed, ledger.ErrInvalidInstruction), operation.ErrorTypeConstruction, false},
		{"rejected transaction", fmt.Errorf("%w: insufficient funds", ledger.ErrTransactionFailed), operation.ErrorTypeSubmission, false},
		{"network", errors.New("connection refused"), operation.ErrorTypeSubmission, true},
		{"confirmation wait", fmt.Errorf("waiting: %w", context.Canceled), operation.ErrorTypeSubmission, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			require.Equal(tt.want, Classify(tt.err))
			require.Equal(tt.retryable, Retryable(tt.err))
		})
	}
}

func TestProgramDecimalsRejectionIsConstruction(t *testing.T) {
	require := require.New(t)
	f := newMovementFixture(t, 0)
	_, err := f.engine.MintTo(f.ctx, f.p.Authority, f.p.Mint, &f.mint, f.party1ATA, 10)
	require.NoError(err)

	// bypass the engine's local check so only the program sees the decimals
	ix := solana.TransferChecked(solana.TransferCheckedParam{
		From:     common.PublicKeyFromString(f.party1ATA.Address),
		Mint:     f.p.Mint.PublicKey,
		To:       common.PublicKeyFromString(f.authorityATA.Address),
		Auth:     f.p.Authority.PublicKey,
		Amount:   10,
		Decimals: 6,
	})
	bundle := ledger.NewBundle(f.p.Authority.PublicKey, []types.Account{f.p.Authority}, ix)

	_, err = NewSubmitter(f.l, nil).Submit(f.ctx, bundle)
	require.ErrorIs(err, localledger.ErrMintDecimalsMismatch)
	require.Equal(operation.ErrorTypeConstruction, Classify(err))
	require.False(Retryable(err))

	require.Equal(uint64(10), f.balance(t, f.party1ATA))
	require.Zero(f.balance(t, f.authorityATA))
}
