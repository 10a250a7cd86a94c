// internal/infra/solana/associated_account.go
package solana

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// AssociatedTokenAccountInstruction is the ATA program discriminator.
type AssociatedTokenAccountInstruction uint8

const (
	AssociatedTokenAccountCreate           AssociatedTokenAccountInstruction = 0
	AssociatedTokenAccountCreateIdempotent AssociatedTokenAccountInstruction = 1
)

// FindAssociatedTokenAddress derives the per-(owner, mint) token account under
// tokenProgramID. Pure function; no ledger round-trip.
func FindAssociatedTokenAddress(owner, mint, tokenProgramID common.PublicKey) (common.PublicKey, uint8, error) {
	ata, bump, err := common.FindProgramAddress(
		[][]byte{
			owner.Bytes(),
			programOrDefault(tokenProgramID).Bytes(),
			mint.Bytes(),
		},
		SPLAssociatedTokenAccountProgramID,
	)
	if err != nil {
		return common.PublicKey{}, 0, fmt.Errorf("solana: derive associated token address: %w", err)
	}
	return ata, bump, nil
}

type CreateAssociatedTokenAccountParam struct {
	Funder                 common.PublicKey
	Owner                  common.PublicKey
	Mint                   common.PublicKey
	AssociatedTokenAccount common.PublicKey
	TokenProgramID         common.PublicKey
}

// CreateAssociatedTokenAccount builds the non-idempotent Create instruction:
// it fails on-ledger when the account already exists.
//
// Accounts:
// 0. [writable,signer] funder
// 1. [writable] associated token account address
// 2. [] owner
// 3. [] mint
// 4. [] system program
// 5. [] token program
func CreateAssociatedTokenAccount(param CreateAssociatedTokenAccountParam) types.Instruction {
	return types.Instruction{
		ProgramID: SPLAssociatedTokenAccountProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: param.Funder, IsSigner: true, IsWritable: true},
			{PubKey: param.AssociatedTokenAccount, IsSigner: false, IsWritable: true},
			{PubKey: param.Owner, IsSigner: false, IsWritable: false},
			{PubKey: param.Mint, IsSigner: false, IsWritable: false},
			{PubKey: SystemProgramID, IsSigner: false, IsWritable: false},
			{PubKey: programOrDefault(param.TokenProgramID), IsSigner: false, IsWritable: false},
		},
		Data: []byte{byte(AssociatedTokenAccountCreate)},
	}
}
