package localledger

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/types"

	"permdelegate/internal/infra/solana"
)

// Accounts:
// 0. [writable,signer] funder
// 1. [writable] associated token account address
// 2. [] owner
// 3. [] mint
// 4. [] system program
// 5. [] token program
func (x *execContext) executeAssociatedAccount(ins types.Instruction) error {
	idempotent := false
	if len(ins.Data) > 0 {
		switch solana.AssociatedTokenAccountInstruction(ins.Data[0]) {
		case solana.AssociatedTokenAccountCreate:
		case solana.AssociatedTokenAccountCreateIdempotent:
			idempotent = true
		default:
			return fmt.Errorf("%w: associated account %d", ErrUnsupportedInstruction, ins.Data[0])
		}
	}
	if len(ins.Accounts) < 6 {
		return ErrNotEnoughAccountKeys
	}

	funder := ins.Accounts[0].PubKey
	ataKey := ins.Accounts[1].PubKey
	owner := ins.Accounts[2].PubKey
	mintKey := ins.Accounts[3].PubKey
	tokenProgram := ins.Accounts[5].PubKey

	if tokenProgram != solana.Token2022ProgramID {
		return fmt.Errorf("%w: token program %s", ErrIncorrectProgramID, tokenProgram.ToBase58())
	}
	want, _, err := solana.FindAssociatedTokenAddress(owner, mintKey, tokenProgram)
	if err != nil || want != ataKey {
		return fmt.Errorf("%w: %s", ErrInvalidSeeds, ataKey.ToBase58())
	}

	if existing := x.accounts[ataKey]; existing != nil && (existing.lamports > 0 || existing.space > 0) {
		if idempotent && existing.token != nil && existing.token.owner == owner && existing.token.mint == mintKey {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrAccountInUse, ataKey.ToBase58())
	}
	if !x.signed(funder) {
		return fmt.Errorf("%w: funder %s", ErrMissingRequiredSignature, funder.ToBase58())
	}
	if _, err := x.initializedMint(mintKey); err != nil {
		return err
	}

	space, err := solana.TokenAccountLen(solana.ExtensionImmutableOwner)
	if err != nil {
		return err
	}
	rent := minimumBalance(space)
	payer := x.accounts[funder]
	if payer == nil || payer.lamports < rent {
		return fmt.Errorf("%w: associated account needs %d", ErrInsufficientLamports, rent)
	}
	payer.lamports -= rent

	x.accounts[ataKey] = &account{
		lamports: rent,
		space:    space,
		owner:    solana.Token2022ProgramID,
		token: &tokenState{
			mint:  mintKey,
			owner: owner,
		},
	}
	return nil
}
