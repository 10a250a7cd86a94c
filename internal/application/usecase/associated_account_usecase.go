package usecase

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	"permdelegate/internal/domain/ledger"
	tokendom "permdelegate/internal/domain/token"
	"permdelegate/internal/infra/solana"
)

// AssociatedAccountCreator derives and creates per-(owner, mint) token accounts.
type AssociatedAccountCreator struct {
	submit *Submitter
	log    *zap.Logger
}

func NewAssociatedAccountCreator(submit *Submitter, logger *zap.Logger) *AssociatedAccountCreator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssociatedAccountCreator{submit: submit, log: logger.Named("associated_account")}
}

// Resolve derives the associated token account of owner for mint.
// No ledger round-trip.
func (u *AssociatedAccountCreator) Resolve(owner, mint common.PublicKey) (tokendom.Account, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint, solana.Token2022ProgramID)
	if err != nil {
		return tokendom.Account{}, err
	}
	return tokendom.New(ata.ToBase58(), owner.ToBase58(), mint.ToBase58())
}

// Create submits the non-idempotent creation instruction, paid and signed by
// payer. An account that already exists makes the transaction fail.
func (u *AssociatedAccountCreator) Create(ctx context.Context, payer types.Account, owner, mint common.PublicKey) (tokendom.Account, string, error) {
	if u == nil || u.submit == nil {
		return tokendom.Account{}, "", ErrNilUsecase
	}
	if len(payer.PrivateKey) == 0 {
		return tokendom.Account{}, "", ErrInvalidPrincipal
	}

	acc, err := u.Resolve(owner, mint)
	if err != nil {
		return tokendom.Account{}, "", err
	}

	b := ledger.NewBundle(
		payer.PublicKey,
		[]types.Account{payer},
		solana.CreateAssociatedTokenAccount(solana.CreateAssociatedTokenAccountParam{
			Funder:                 payer.PublicKey,
			Owner:                  owner,
			Mint:                   mint,
			AssociatedTokenAccount: common.PublicKeyFromString(acc.Address),
			TokenProgramID:         solana.Token2022ProgramID,
		}),
	)

	sig, err := u.submit.Submit(ctx, b)
	if err != nil {
		return tokendom.Account{}, sig, fmt.Errorf("create associated account %s: %w", acc.Address, err)
	}

	u.log.Info("associated account created",
		zap.String("owner", acc.Owner),
		zap.String("account", acc.Address),
		zap.String("tx", sig),
	)
	return acc, sig, nil
}
