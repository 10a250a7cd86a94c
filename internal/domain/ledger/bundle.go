// internal/domain/ledger/bundle.go
package ledger

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// Bundle is one signed transaction in the making: ordered instructions, the fee
// payer, the signing credentials and the ordering anchor (recent blockhash).
// It is built, submitted once and discarded.
type Bundle struct {
	Instructions    []types.Instruction
	FeePayer        common.PublicKey
	Signers         []types.Account
	RecentBlockhash string
}

// NewBundle builds a bundle without an anchor; the submitter stamps the
// blockhash right before sending.
func NewBundle(feePayer common.PublicKey, signers []types.Account, ins ...types.Instruction) Bundle {
	return Bundle{
		Instructions: ins,
		FeePayer:     feePayer,
		Signers:      signers,
	}
}

// WithBlockhash returns a copy of b anchored to blockhash.
func (b Bundle) WithBlockhash(blockhash string) Bundle {
	b.RecentBlockhash = blockhash
	return b
}

// SignerSet returns the public keys of every signing credential.
func (b Bundle) SignerSet() map[common.PublicKey]struct{} {
	set := make(map[common.PublicKey]struct{}, len(b.Signers))
	for _, s := range b.Signers {
		set[s.PublicKey] = struct{}{}
	}
	return set
}

// Validate checks the bundle locally before anything is sent:
//   - at least one instruction and a recent blockhash
//   - the fee payer signs
//   - every account meta flagged as signer has a credential
//   - every credential is used (fee payer or a signer meta)
func (b Bundle) Validate() error {
	if len(b.Instructions) == 0 {
		return ErrEmptyBundle
	}
	if b.RecentBlockhash == "" {
		return ErrMissingBlockhash
	}

	signers := b.SignerSet()
	if _, ok := signers[b.FeePayer]; !ok {
		return fmt.Errorf("%w: %s", ErrFeePayerNotSigner, b.FeePayer.ToBase58())
	}

	used := map[common.PublicKey]struct{}{b.FeePayer: {}}
	for i, ins := range b.Instructions {
		for _, meta := range ins.Accounts {
			if !meta.IsSigner {
				continue
			}
			if _, ok := signers[meta.PubKey]; !ok {
				return fmt.Errorf("%w: instruction %d account %s", ErrMissingSignature, i, meta.PubKey.ToBase58())
			}
			used[meta.PubKey] = struct{}{}
		}
	}
	for pk := range signers {
		if _, ok := used[pk]; !ok {
			return fmt.Errorf("%w: %s", ErrUnexpectedSigner, pk.ToBase58())
		}
	}
	return nil
}

// Transaction compiles and signs the bundle into a wire transaction.
func (b Bundle) Transaction() (types.Transaction, error) {
	if err := b.Validate(); err != nil {
		return types.Transaction{}, err
	}
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        b.FeePayer,
			RecentBlockhash: b.RecentBlockhash,
			Instructions:    b.Instructions,
		}),
		Signers: b.Signers,
	})
	if err != nil {
		return types.Transaction{}, fmt.Errorf("ledger: NewTransaction: %w", err)
	}
	return tx, nil
}
