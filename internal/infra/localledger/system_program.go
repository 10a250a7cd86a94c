package localledger

import (
	"encoding/binary"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"

	"permdelegate/internal/infra/solana"
)

// system instruction discriminators (u32 little endian)
const (
	systemCreateAccount uint32 = 0
	systemTransfer      uint32 = 2
)

type createAccountData struct {
	Instruction uint32
	Lamports    uint64
	Space       uint64
	Owner       common.PublicKey
}

type transferData struct {
	Instruction uint32
	Lamports    uint64
}

func (x *execContext) executeSystem(ins types.Instruction) error {
	if len(ins.Data) < 4 {
		return ErrInvalidInstructionData
	}
	switch binary.LittleEndian.Uint32(ins.Data[:4]) {
	case systemCreateAccount:
		var d createAccountData
		if err := borsh.Deserialize(&d, ins.Data); err != nil {
			return fmt.Errorf("%w: create account: %v", ErrInvalidInstructionData, err)
		}
		return x.createAccount(ins.Accounts, d)
	case systemTransfer:
		var d transferData
		if err := borsh.Deserialize(&d, ins.Data); err != nil {
			return fmt.Errorf("%w: transfer: %v", ErrInvalidInstructionData, err)
		}
		return x.transferLamports(ins.Accounts, d)
	default:
		return fmt.Errorf("%w: system %d", ErrUnsupportedInstruction, binary.LittleEndian.Uint32(ins.Data[:4]))
	}
}

// Accounts:
// 0. [writable,signer] funding account
// 1. [writable,signer] new account
func (x *execContext) createAccount(metas []types.AccountMeta, d createAccountData) error {
	if len(metas) < 2 {
		return ErrNotEnoughAccountKeys
	}
	from, to := metas[0].PubKey, metas[1].PubKey
	if !x.signed(from) || !x.signed(to) {
		return ErrMissingRequiredSignature
	}
	if existing := x.accounts[to]; existing != nil && (existing.lamports > 0 || existing.space > 0) {
		return fmt.Errorf("%w: %s", ErrAccountInUse, to.ToBase58())
	}
	if d.Space > maxPermittedDataLength {
		return fmt.Errorf("%w: space %d", ErrInvalidInstructionData, d.Space)
	}

	src := x.accounts[from]
	if src == nil || src.lamports < d.Lamports {
		return fmt.Errorf("%w: create account needs %d", ErrInsufficientLamports, d.Lamports)
	}
	src.lamports -= d.Lamports

	x.accounts[to] = &account{
		lamports: d.Lamports,
		space:    d.Space,
		owner:    d.Owner,
	}
	return nil
}

// Accounts:
// 0. [writable,signer] from
// 1. [writable] to
func (x *execContext) transferLamports(metas []types.AccountMeta, d transferData) error {
	if len(metas) < 2 {
		return ErrNotEnoughAccountKeys
	}
	from, to := metas[0].PubKey, metas[1].PubKey
	if !x.signed(from) {
		return ErrMissingRequiredSignature
	}

	src := x.accounts[from]
	if src == nil || src.lamports < d.Lamports {
		return fmt.Errorf("%w: transfer needs %d", ErrInsufficientLamports, d.Lamports)
	}
	dst := x.accounts[to]
	if dst == nil {
		dst = &account{owner: solana.SystemProgramID}
		x.accounts[to] = dst
	}
	if dst.lamports+d.Lamports < dst.lamports {
		return ErrOverflow
	}
	src.lamports -= d.Lamports
	dst.lamports += d.Lamports
	return nil
}
