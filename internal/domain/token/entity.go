package token

import (
	"errors"
	"strings"

	mintdom "permdelegate/internal/domain/mint"
)

// Account is the associated token account holding one owner's balance of one mint.
// Its address is derived from (owner, mint, token program) and is never stored
// anywhere else.
type Account struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Mint    string `json:"mint"`
}

// Errors
var (
	ErrInvalidAddress = errors.New("token: invalid address")
	ErrInvalidOwner   = errors.New("token: invalid owner")
	ErrInvalidMint    = errors.New("token: invalid mint")
	ErrMintMismatch   = errors.New("token: account belongs to another mint")
	ErrInvalidAmount  = errors.New("token: amount must be > 0")
)

// Constructors

func New(address, owner, mint string) (Account, error) {
	a := Account{
		Address: strings.TrimSpace(address),
		Owner:   strings.TrimSpace(owner),
		Mint:    strings.TrimSpace(mint),
	}
	if err := a.validate(); err != nil {
		return Account{}, err
	}
	return a, nil
}

// Behaviour

// BelongsTo reports whether the account holds balances of mint.
func (a Account) BelongsTo(mint string) bool {
	return a.Mint == strings.TrimSpace(mint)
}

// CheckMovement validates the local preconditions of moving amount from src to dst
// under mint. Ownership is deliberately not part of it: the permanent delegate
// moves funds from any holder.
func CheckMovement(mint string, src, dst Account, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if !src.BelongsTo(mint) || !dst.BelongsTo(mint) {
		return ErrMintMismatch
	}
	return nil
}

// Validation

func (a Account) validate() error {
	if !mintdom.IsValidBase58Pubkey(a.Address) {
		return ErrInvalidAddress
	}
	if !mintdom.IsValidBase58Pubkey(a.Owner) {
		return ErrInvalidOwner
	}
	if !mintdom.IsValidBase58Pubkey(a.Mint) {
		return ErrInvalidMint
	}
	return nil
}
