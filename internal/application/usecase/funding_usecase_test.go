package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/require"

	"permdelegate/internal/domain/ledger"
	"permdelegate/internal/domain/operation"
	"permdelegate/internal/infra/localledger"
)

// fakePort records calls; only the funding-related methods do anything.
type fakePort struct {
	balance    uint64
	balanceErr error
	airdropErr error

	airdrops []uint64
	sent     []ledger.Bundle
}

func (f *fakePort) MinimumBalanceForRentExemption(context.Context, uint64) (uint64, error) {
	return 0, nil
}

func (f *fakePort) LatestBlockhash(context.Context) (string, error) {
	return "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N", nil
}

func (f *fakePort) SendAndConfirm(_ context.Context, b ledger.Bundle) (string, error) {
	f.sent = append(f.sent, b)
	return "sig-send", nil
}

func (f *fakePort) RequestAirdrop(_ context.Context, _ string, lamports uint64) (string, error) {
	if f.airdropErr != nil {
		return "", f.airdropErr
	}
	f.airdrops = append(f.airdrops, lamports)
	return "sig-airdrop", nil
}

func (f *fakePort) Balance(context.Context, string) (uint64, error) {
	return f.balance, f.balanceErr
}

func TestEnsureFundedSkipsWhenBalanceSuffices(t *testing.T) {
	require := require.New(t)
	port := &fakePort{balance: 2 * ledger.LamportsPerSOL}
	u := NewFundingUsecase(port, NewSubmitter(port, nil), nil, nil)

	sig, err := u.EnsureFunded(context.Background(), types.NewAccount().PublicKey, 2*ledger.LamportsPerSOL)
	require.NoError(err)
	require.Empty(sig)
	require.Empty(port.airdrops)
}

func TestEnsureFundedAirdropsBelowThreshold(t *testing.T) {
	require := require.New(t)
	port := &fakePort{balance: 1}
	u := NewFundingUsecase(port, NewSubmitter(port, nil), nil, nil)

	sig, err := u.EnsureFunded(context.Background(), types.NewAccount().PublicKey, ledger.LamportsPerSOL)
	require.NoError(err)
	require.Equal("sig-airdrop", sig)
	require.Equal([]uint64{ledger.LamportsPerSOL}, port.airdrops)
}

func TestEnsureFundedAirdropFailure(t *testing.T) {
	require := require.New(t)
	port := &fakePort{airdropErr: errors.New("429 too many requests")}
	u := NewFundingUsecase(port, NewSubmitter(port, nil), nil, nil)

	_, err := u.EnsureFunded(context.Background(), types.NewAccount().PublicKey, ledger.LamportsPerSOL)
	require.ErrorIs(err, ErrFundingFailed)
	require.Equal(operation.ErrorTypeFunding, Classify(err))
}

func TestEnsureFundedFromFaucet(t *testing.T) {
	require := require.New(t)
	port := &fakePort{balance: 100}
	faucet := types.NewAccount()
	u := NewFundingUsecase(port, NewSubmitter(port, nil), &faucet, nil)

	to := types.NewAccount().PublicKey
	sig, err := u.EnsureFunded(context.Background(), to, 1_000)
	require.NoError(err)
	require.Equal("sig-send", sig)
	require.Empty(port.airdrops)

	require.Len(port.sent, 1)
	b := port.sent[0]
	require.Equal(faucet.PublicKey, b.FeePayer)
	require.NotEmpty(b.RecentBlockhash)
	require.Len(b.Instructions, 1)
	require.Equal(to, b.Instructions[0].Accounts[1].PubKey)
}

func TestEnsureFundedFromFaucetOnLocalLedger(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := localledger.New(nil)

	faucet := types.NewAccount()
	_, err := l.RequestAirdrop(ctx, faucet.PublicKey.ToBase58(), 10*ledger.LamportsPerSOL)
	require.NoError(err)

	u := NewFundingUsecase(l, NewSubmitter(l, nil), &faucet, nil)
	to := types.NewAccount().PublicKey
	_, err = u.EnsureFunded(ctx, to, ledger.LamportsPerSOL)
	require.NoError(err)

	got, err := l.Balance(ctx, to.ToBase58())
	require.NoError(err)
	require.Equal(ledger.LamportsPerSOL, got)
}
