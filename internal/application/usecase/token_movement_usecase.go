package usecase

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	"permdelegate/internal/domain/ledger"
	mintdom "permdelegate/internal/domain/mint"
	tokendom "permdelegate/internal/domain/token"
	"permdelegate/internal/infra/solana"
)

// TokenMovementEngine issues mint-to, delegated transfer and delegated burn,
// one instruction per transaction, each confirmed before returning.
//
// Transfer and burn are signed by the permanent delegate only. No per-account
// delegation is ever supplied; the holder does not sign.
type TokenMovementEngine struct {
	submit *Submitter
	log    *zap.Logger
}

func NewTokenMovementEngine(submit *Submitter, logger *zap.Logger) *TokenMovementEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenMovementEngine{submit: submit, log: logger.Named("token_movement")}
}

// MintTo credits amount raw units to dest. The mint account co-signs
// alongside the mint authority.
func (u *TokenMovementEngine) MintTo(
	ctx context.Context,
	authority, mintAcc types.Account,
	m *mintdom.Mint,
	dest tokendom.Account,
	amount uint64,
) (string, error) {
	if err := u.precheck(m, authority); err != nil {
		return "", err
	}
	if len(mintAcc.PrivateKey) == 0 {
		return "", ErrInvalidPrincipal
	}
	if amount == 0 {
		return "", mintdom.ErrInvalidAmount
	}
	if !dest.BelongsTo(m.Address) {
		return "", tokendom.ErrMintMismatch
	}

	b := ledger.NewBundle(
		authority.PublicKey,
		[]types.Account{authority, mintAcc},
		solana.MintTo(solana.MintToParam{
			Mint:    mintAcc.PublicKey,
			To:      common.PublicKeyFromString(dest.Address),
			Auth:    authority.PublicKey,
			Signers: []common.PublicKey{authority.PublicKey, mintAcc.PublicKey},
			Amount:  amount,
		}),
	)

	sig, err := u.submit.Submit(ctx, b)
	if err != nil {
		return sig, fmt.Errorf("mint %d to %s: %w", amount, dest.Address, err)
	}
	if err := m.RecordMinted(amount); err != nil {
		return sig, err
	}

	u.log.Info("minted",
		zap.String("to", dest.Address),
		zap.Uint64("amount", amount),
		zap.String("tx", sig),
	)
	return sig, nil
}

// Transfer moves amount from src to dst under the delegate's signature,
// asserting decimals.
func (u *TokenMovementEngine) Transfer(
	ctx context.Context,
	delegate types.Account,
	m *mintdom.Mint,
	src, dst tokendom.Account,
	amount uint64,
	decimals uint8,
) (string, error) {
	if err := u.precheck(m, delegate); err != nil {
		return "", err
	}
	if err := m.CheckDecimals(decimals); err != nil {
		return "", err
	}
	if err := tokendom.CheckMovement(m.Address, src, dst, amount); err != nil {
		return "", err
	}

	b := ledger.NewBundle(
		delegate.PublicKey,
		[]types.Account{delegate},
		solana.TransferChecked(solana.TransferCheckedParam{
			From:     common.PublicKeyFromString(src.Address),
			Mint:     common.PublicKeyFromString(m.Address),
			To:       common.PublicKeyFromString(dst.Address),
			Auth:     delegate.PublicKey,
			Amount:   amount,
			Decimals: decimals,
		}),
	)

	sig, err := u.submit.Submit(ctx, b)
	if err != nil {
		return sig, fmt.Errorf("transfer %d from %s to %s: %w", amount, src.Address, dst.Address, err)
	}
	if err := m.RecordTransferred(amount); err != nil {
		return sig, err
	}

	u.log.Info("transferred",
		zap.String("from", src.Address),
		zap.String("to", dst.Address),
		zap.Uint64("amount", amount),
		zap.Bool("permanentDelegate", m.IsPermanentDelegate(delegate.PublicKey.ToBase58())),
		zap.String("tx", sig),
	)
	return sig, nil
}

// Burn destroys amount from holder under the delegate's signature,
// asserting decimals.
func (u *TokenMovementEngine) Burn(
	ctx context.Context,
	delegate types.Account,
	m *mintdom.Mint,
	holder tokendom.Account,
	amount uint64,
	decimals uint8,
) (string, error) {
	if err := u.precheck(m, delegate); err != nil {
		return "", err
	}
	if err := m.CheckDecimals(decimals); err != nil {
		return "", err
	}
	if amount == 0 {
		return "", tokendom.ErrInvalidAmount
	}
	if !holder.BelongsTo(m.Address) {
		return "", tokendom.ErrMintMismatch
	}

	b := ledger.NewBundle(
		delegate.PublicKey,
		[]types.Account{delegate},
		solana.BurnChecked(solana.BurnCheckedParam{
			Account:  common.PublicKeyFromString(holder.Address),
			Mint:     common.PublicKeyFromString(m.Address),
			Auth:     delegate.PublicKey,
			Amount:   amount,
			Decimals: decimals,
		}),
	)

	sig, err := u.submit.Submit(ctx, b)
	if err != nil {
		return sig, fmt.Errorf("burn %d from %s: %w", amount, holder.Address, err)
	}
	if err := m.RecordBurned(amount); err != nil {
		return sig, err
	}

	u.log.Info("burned",
		zap.String("from", holder.Address),
		zap.Uint64("amount", amount),
		zap.String("tx", sig),
	)
	return sig, nil
}

func (u *TokenMovementEngine) precheck(m *mintdom.Mint, signer types.Account) error {
	if u == nil || u.submit == nil || m == nil {
		return ErrNilUsecase
	}
	if len(signer.PrivateKey) == 0 {
		return ErrInvalidPrincipal
	}
	if !m.IsInitialized() {
		return mintdom.ErrNotInitialized
	}
	return nil
}
