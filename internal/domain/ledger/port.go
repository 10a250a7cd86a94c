// internal/domain/ledger/port.go
package ledger

import (
	"context"
	"errors"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL uint64 = 1_000_000_000

var (
	// ErrTransactionFailed is returned when the ledger accepted the request but the
	// executing program rejected the transaction (insufficient funds, decimals
	// mismatch, bad signer set, ...). It is never retryable.
	ErrTransactionFailed = errors.New("ledger: transaction failed")

	// ErrInvalidInstruction accompanies ErrTransactionFailed when the program
	// refused the instruction's arguments, e.g. a decimals mismatch.
	ErrInvalidInstruction = errors.New("ledger: program rejected instruction arguments")

	// ErrAccountNotFound is returned by read operations for an address that holds no state.
	ErrAccountNotFound = errors.New("ledger: account not found")

	ErrEmptyBundle        = errors.New("ledger: bundle has no instructions")
	ErrMissingBlockhash   = errors.New("ledger: bundle has no recent blockhash")
	ErrFeePayerNotSigner  = errors.New("ledger: fee payer is not in the signer set")
	ErrMissingSignature   = errors.New("ledger: required signature missing")
	ErrUnexpectedSigner   = errors.New("ledger: signer is not referenced by any instruction")
	ErrNotConfigured      = errors.New("ledger: client not configured")
	ErrUnknownAccountData = errors.New("ledger: unexpected account data")
)

// Port is the gateway to the remote execution engine.
//
// Every call blocks until the engine answers. SendAndConfirm only returns once
// the transaction reached the configured commitment (or failed), so a caller
// issuing calls one after another always observes the effects of earlier ones.
type Port interface {
	MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	LatestBlockhash(ctx context.Context) (string, error)
	SendAndConfirm(ctx context.Context, b Bundle) (string, error)
	RequestAirdrop(ctx context.Context, account string, lamports uint64) (string, error)
	Balance(ctx context.Context, account string) (uint64, error)
}

// MintInfo is the read-side view of an on-ledger mint.
type MintInfo struct {
	Initialized       bool
	Decimals          uint8
	Supply            uint64
	MintAuthority     string
	FreezeAuthority   string
	PermanentDelegate string
}

// Inspector reads token state back from the ledger.
type Inspector interface {
	TokenAccountBalance(ctx context.Context, account string) (uint64, error)
	MintInfo(ctx context.Context, mint string) (MintInfo, error)
}

// Ledger is what the driver needs from a ledger backend.
type Ledger interface {
	Port
	Inspector
}
