package usecase

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	"permdelegate/internal/domain/ledger"
)

// FundingUsecase keeps an account above a lamport threshold so it can pay
// fees and rent. It requests an airdrop, or pays from a faucet wallet when
// one is configured.
type FundingUsecase struct {
	ledger ledger.Port
	submit *Submitter
	faucet *types.Account
	log    *zap.Logger
}

// NewFundingUsecase: faucet may be nil (airdrop mode).
func NewFundingUsecase(l ledger.Port, submit *Submitter, faucet *types.Account, logger *zap.Logger) *FundingUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FundingUsecase{
		ledger: l,
		submit: submit,
		faucet: faucet,
		log:    logger.Named("funding"),
	}
}

// EnsureFunded tops up account when its balance is below minLamports.
// It returns the funding signature, or "" when nothing had to be done.
func (u *FundingUsecase) EnsureFunded(ctx context.Context, account common.PublicKey, minLamports uint64) (string, error) {
	if u == nil || u.ledger == nil {
		return "", ErrNilUsecase
	}
	addr := account.ToBase58()

	balance, err := u.ledger.Balance(ctx, addr)
	if err != nil {
		return "", fmt.Errorf("%w: balance of %s: %w", ErrFundingFailed, addr, err)
	}
	if balance >= minLamports {
		u.log.Debug("balance sufficient",
			zap.String("account", addr),
			zap.Uint64("balance", balance),
		)
		return "", nil
	}

	if u.faucet != nil {
		return u.fromFaucet(ctx, account, minLamports-balance)
	}

	sig, err := u.ledger.RequestAirdrop(ctx, addr, minLamports)
	if err != nil {
		return sig, fmt.Errorf("%w: airdrop to %s: %w", ErrFundingFailed, addr, err)
	}
	u.log.Info("airdrop confirmed",
		zap.String("account", addr),
		zap.Uint64("lamports", minLamports),
		zap.String("tx", sig),
	)
	return sig, nil
}

func (u *FundingUsecase) fromFaucet(ctx context.Context, to common.PublicKey, lamports uint64) (string, error) {
	if u.submit == nil {
		return "", ErrNilUsecase
	}
	b := ledger.NewBundle(
		u.faucet.PublicKey,
		[]types.Account{*u.faucet},
		system.Transfer(system.TransferParam{
			From:   u.faucet.PublicKey,
			To:     to,
			Amount: lamports,
		}),
	)
	sig, err := u.submit.Submit(ctx, b)
	if err != nil {
		return sig, fmt.Errorf("%w: faucet transfer to %s: %w", ErrFundingFailed, to.ToBase58(), err)
	}
	u.log.Info("faucet transfer confirmed",
		zap.String("account", to.ToBase58()),
		zap.Uint64("lamports", lamports),
		zap.String("tx", sig),
	)
	return sig, nil
}
