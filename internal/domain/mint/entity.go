// internal/domain/mint/entity.go
package mint

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ------------------------------------------------------
// Entity: Mint (one token type carrying the permanent-delegate extension)
// ------------------------------------------------------
//
// Lifecycle:
//
//	Uninitialized -> Initialized -> {Minted, Transferred, Burned}*
//
// Initialized is entered exactly once. Decimals and PermanentDelegate are
// written by the initialization transaction and never change afterwards.
type Mint struct {
	Address           string    `json:"address"`
	Decimals          uint8     `json:"decimals"`
	MintAuthority     string    `json:"mintAuthority"`
	FreezeAuthority   string    `json:"freezeAuthority,omitempty"`
	PermanentDelegate string    `json:"permanentDelegate"`
	State             State     `json:"state"`
	InitializedAt     time.Time `json:"initializedAt"`

	// Supply mirrors what this process has minted minus what it has burned.
	// The ledger stays authoritative.
	Supply uint64 `json:"supply"`
}

type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitialized   State = "initialized"
	StateMinted        State = "minted"
	StateTransferred   State = "transferred"
	StateBurned        State = "burned"
)

// ------------------------------------------------------
// Errors
// ------------------------------------------------------

var (
	ErrInvalidAddress           = errors.New("mint: invalid address")
	ErrInvalidMintAuthority     = errors.New("mint: invalid mintAuthority")
	ErrInvalidFreezeAuthority   = errors.New("mint: invalid freezeAuthority")
	ErrInvalidPermanentDelegate = errors.New("mint: invalid permanentDelegate")
	ErrInvalidInitializedAt     = errors.New("mint: invalid initializedAt")
	ErrNotInitialized           = errors.New("mint: not initialized")
	ErrAlreadyInitialized       = errors.New("mint: already initialized")
	ErrInvalidTransition        = errors.New("mint: invalid state transition")
	ErrDecimalsMismatch         = errors.New("mint: decimals mismatch")
	ErrInvalidAmount            = errors.New("mint: invalid amount")
	ErrSupplyOverflow           = errors.New("mint: supply overflow")
	ErrSupplyUnderflow          = errors.New("mint: supply underflow")
)

// ------------------------------------------------------
// Constructors
// ------------------------------------------------------

// NewUninitialized returns the pre-creation view of a mint at address.
func NewUninitialized(address string) (Mint, error) {
	m := Mint{
		Address: strings.TrimSpace(address),
		State:   StateUninitialized,
	}
	if !IsValidBase58Pubkey(m.Address) {
		return Mint{}, ErrInvalidAddress
	}
	return m, nil
}

// Initialize moves an uninitialized mint to Initialized and fixes its
// decimals and authorities. freezeAuthority may be empty.
func (m *Mint) Initialize(
	decimals uint8,
	mintAuthority string,
	freezeAuthority string,
	permanentDelegate string,
	at time.Time,
) error {
	if m.State != StateUninitialized {
		return ErrAlreadyInitialized
	}

	next := *m
	next.Decimals = decimals
	next.MintAuthority = strings.TrimSpace(mintAuthority)
	next.FreezeAuthority = strings.TrimSpace(freezeAuthority)
	next.PermanentDelegate = strings.TrimSpace(permanentDelegate)
	next.InitializedAt = at.UTC()
	next.State = StateInitialized
	next.Supply = 0

	if err := next.validate(); err != nil {
		return err
	}
	*m = next
	return nil
}

// ------------------------------------------------------
// Behaviour
// ------------------------------------------------------

// IsInitialized reports whether the mint left the Uninitialized state.
func (m Mint) IsInitialized() bool {
	return m.State != "" && m.State != StateUninitialized
}

// CheckDecimals enforces the checked-operation discipline: the caller supplied
// decimals must equal the recorded ones.
func (m Mint) CheckDecimals(decimals uint8) error {
	if !m.IsInitialized() {
		return ErrNotInitialized
	}
	if decimals != m.Decimals {
		return fmt.Errorf("%w: mint=%d supplied=%d", ErrDecimalsMismatch, m.Decimals, decimals)
	}
	return nil
}

// IsPermanentDelegate reports whether authority is the mint-level delegate.
func (m Mint) IsPermanentDelegate(authority string) bool {
	a := strings.TrimSpace(authority)
	return a != "" && a == m.PermanentDelegate
}

// RecordMinted applies a confirmed mint-to.
func (m *Mint) RecordMinted(amount uint64) error {
	if err := m.transition(StateMinted, amount); err != nil {
		return err
	}
	if m.Supply+amount < m.Supply {
		return ErrSupplyOverflow
	}
	m.Supply += amount
	m.State = StateMinted
	return nil
}

// RecordTransferred applies a confirmed delegated transfer. Supply is unchanged.
func (m *Mint) RecordTransferred(amount uint64) error {
	if err := m.transition(StateTransferred, amount); err != nil {
		return err
	}
	m.State = StateTransferred
	return nil
}

// RecordBurned applies a confirmed delegated burn.
func (m *Mint) RecordBurned(amount uint64) error {
	if err := m.transition(StateBurned, amount); err != nil {
		return err
	}
	if amount > m.Supply {
		return ErrSupplyUnderflow
	}
	m.Supply -= amount
	m.State = StateBurned
	return nil
}

func (m Mint) transition(to State, amount uint64) error {
	if !m.IsInitialized() {
		return ErrNotInitialized
	}
	switch to {
	case StateMinted, StateTransferred, StateBurned:
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.State, to)
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ------------------------------------------------------
// Validation
// ------------------------------------------------------

func (m Mint) validate() error {
	if !IsValidBase58Pubkey(m.Address) {
		return ErrInvalidAddress
	}
	if !IsValidBase58Pubkey(m.MintAuthority) {
		return ErrInvalidMintAuthority
	}
	if m.FreezeAuthority != "" && !IsValidBase58Pubkey(m.FreezeAuthority) {
		return ErrInvalidFreezeAuthority
	}
	if !IsValidBase58Pubkey(m.PermanentDelegate) {
		return ErrInvalidPermanentDelegate
	}
	if m.InitializedAt.IsZero() {
		return ErrInvalidInitializedAt
	}
	return nil
}

// ------------------------------------------------------
// Helpers
// ------------------------------------------------------

// Solana pubkeys are 32 bytes base58-encoded; observed length is 32..44.
const (
	base58MinLen   = 32
	base58MaxLen   = 44
	base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
)

// IsValidBase58Pubkey is a cheap shape check; it does not decode.
func IsValidBase58Pubkey(s string) bool {
	if s = strings.TrimSpace(s); s == "" {
		return false
	}
	if len(s) < base58MinLen || len(s) > base58MaxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(base58Alphabet, rune(s[i])) {
			return false
		}
	}
	return true
}
