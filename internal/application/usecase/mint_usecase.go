package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	"permdelegate/internal/domain/ledger"
	mintdom "permdelegate/internal/domain/mint"
	"permdelegate/internal/infra/solana"
)

// MintInitializer creates a Token-2022 mint carrying the permanent-delegate
// extension in one atomic transaction.
type MintInitializer struct {
	ledger ledger.Port
	submit *Submitter
	now    func() time.Time
	log    *zap.Logger
}

func NewMintInitializer(l ledger.Port, submit *Submitter, logger *zap.Logger) *MintInitializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MintInitializer{
		ledger: l,
		submit: submit,
		now:    func() time.Time { return time.Now().UTC() },
		log:    logger.Named("mint_initializer"),
	}
}

type InitializeMintParams struct {
	// Authority pays, and becomes mint authority, freeze authority and
	// permanent delegate.
	Authority types.Account
	// Mint is the fresh keypair of the account being allocated.
	Mint     types.Account
	Decimals uint8
}

// BuildInitializeMint returns the three ordered instructions:
// allocate, bind the permanent delegate, initialize the base mint.
// The extension must be initialized before the base mint record.
func (u *MintInitializer) BuildInitializeMint(ctx context.Context, p InitializeMintParams) (ledger.Bundle, error) {
	if u == nil || u.ledger == nil {
		return ledger.Bundle{}, ErrNilUsecase
	}
	if len(p.Authority.PrivateKey) == 0 || len(p.Mint.PrivateKey) == 0 {
		return ledger.Bundle{}, ErrInvalidPrincipal
	}

	space, err := solana.MintAccountLen(solana.ExtensionPermanentDelegate)
	if err != nil {
		return ledger.Bundle{}, err
	}
	rent, err := u.ledger.MinimumBalanceForRentExemption(ctx, space)
	if err != nil {
		return ledger.Bundle{}, fmt.Errorf("rent exemption for %d bytes: %w", space, err)
	}

	authority := p.Authority.PublicKey
	mintKey := p.Mint.PublicKey
	freeze := authority

	return ledger.NewBundle(
		authority,
		[]types.Account{p.Authority, p.Mint},
		system.CreateAccount(system.CreateAccountParam{
			From:     authority,
			New:      mintKey,
			Owner:    solana.Token2022ProgramID,
			Lamports: rent,
			Space:    space,
		}),
		solana.InitializePermanentDelegate(solana.InitializePermanentDelegateParam{
			Mint:     mintKey,
			Delegate: authority,
		}),
		solana.InitializeMint(solana.InitializeMintParam{
			Decimals:   p.Decimals,
			Mint:       mintKey,
			MintAuth:   authority,
			FreezeAuth: &freeze,
		}),
	), nil
}

// InitializeMint submits the creation transaction and returns the
// initialized mint.
func (u *MintInitializer) InitializeMint(ctx context.Context, p InitializeMintParams) (mintdom.Mint, string, error) {
	b, err := u.BuildInitializeMint(ctx, p)
	if err != nil {
		return mintdom.Mint{}, "", err
	}

	m, err := mintdom.NewUninitialized(p.Mint.PublicKey.ToBase58())
	if err != nil {
		return mintdom.Mint{}, "", err
	}

	sig, err := u.submit.Submit(ctx, b)
	if err != nil {
		return mintdom.Mint{}, sig, fmt.Errorf("initialize mint %s: %w", m.Address, err)
	}

	authority := p.Authority.PublicKey.ToBase58()
	if err := m.Initialize(p.Decimals, authority, authority, authority, u.now()); err != nil {
		return mintdom.Mint{}, sig, err
	}

	u.log.Info("mint initialized",
		zap.String("mint", m.Address),
		zap.Uint8("decimals", m.Decimals),
		zap.String("permanentDelegate", m.PermanentDelegate),
		zap.String("tx", sig),
	)
	return m, sig, nil
}
