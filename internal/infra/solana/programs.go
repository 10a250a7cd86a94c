// internal/infra/solana/programs.go
package solana

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
)

// well-known program/sysvar ids
var (
	SystemProgramID                    = common.PublicKeyFromString("11111111111111111111111111111111")
	Token2022ProgramID                 = common.PublicKeyFromString("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	SPLAssociatedTokenAccountProgramID = common.PublicKeyFromString("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SysVarRentPubkey                   = common.PublicKeyFromString("SysvarRent111111111111111111111111111111111")
)

// Token account layout sizes (spl-token / token-2022).
const (
	MintBaseSize     uint64 = 82
	AccountBaseSize  uint64 = 165
	MultisigSize     uint64 = 355
	accountTypeSize  uint64 = 1
	tlvHeaderSize    uint64 = 4 // u16 type + u16 length
	extensionTypeLen uint64 = 2
)

var ErrUnsupportedExtension = errors.New("solana: unsupported extension type")

// ExtensionType is the token-2022 extension discriminator.
type ExtensionType uint16

const (
	ExtensionImmutableOwner    ExtensionType = 7
	ExtensionPermanentDelegate ExtensionType = 12
)

func (e ExtensionType) String() string {
	switch e {
	case ExtensionImmutableOwner:
		return "immutableOwner"
	case ExtensionPermanentDelegate:
		return "permanentDelegate"
	default:
		return fmt.Sprintf("extension(%d)", uint16(e))
	}
}

func (e ExtensionType) dataLen() (uint64, error) {
	switch e {
	case ExtensionImmutableOwner:
		return 0, nil
	case ExtensionPermanentDelegate:
		return 32, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedExtension, uint16(e))
	}
}

// MintAccountLen returns the space needed by a mint carrying exts.
// Without extensions it is the plain 82-byte mint; with extensions the base is
// padded to the token-account size, followed by the account-type byte and one
// TLV entry per extension.
func MintAccountLen(exts ...ExtensionType) (uint64, error) {
	return accountLenWithExtensions(MintBaseSize, exts)
}

// TokenAccountLen is MintAccountLen for token (holder) accounts.
func TokenAccountLen(exts ...ExtensionType) (uint64, error) {
	return accountLenWithExtensions(AccountBaseSize, exts)
}

func accountLenWithExtensions(base uint64, exts []ExtensionType) (uint64, error) {
	if len(exts) == 0 {
		return base, nil
	}

	size := AccountBaseSize + accountTypeSize
	seen := make(map[ExtensionType]struct{}, len(exts))
	for _, e := range exts {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}

		n, err := e.dataLen()
		if err != nil {
			return 0, err
		}
		size += tlvHeaderSize + n
	}

	// a token-2022 account must never be mistaken for a multisig
	if size == MultisigSize {
		size += extensionTypeLen
	}
	return size, nil
}
