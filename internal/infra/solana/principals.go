package solana

import "github.com/blocto/solana-go-sdk/types"

// Principals is the set of fresh, independent signing credentials of one run.
// None of them has prior ledger history and none is persisted.
type Principals struct {
	// Authority is fee payer, mint authority, freeze authority and permanent delegate.
	Authority types.Account
	// Mint is the keypair of the mint account being created.
	Mint types.Account
	// Party1 is an ordinary holder whose funds the delegate moves.
	Party1 types.Account
}

// NewPrincipals generates a fresh bundle. Pass it explicitly to every step.
func NewPrincipals() Principals {
	return Principals{
		Authority: types.NewAccount(),
		Mint:      types.NewAccount(),
		Party1:    types.NewAccount(),
	}
}
