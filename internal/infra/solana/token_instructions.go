// internal/infra/solana/token_instructions.go
package solana

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
)

// Instruction is the token-2022 instruction discriminator (first data byte).
type Instruction uint8

const (
	InstructionInitializeMint              Instruction = 0
	InstructionMintTo                      Instruction = 7
	InstructionTransferChecked             Instruction = 12
	InstructionBurnChecked                 Instruction = 15
	InstructionInitializePermanentDelegate Instruction = 35
)

// ============================================================
// Instruction data layouts (borsh == spl pack for these shapes)
// ============================================================

type InitializeMintData struct {
	Instruction     Instruction
	Decimals        uint8
	MintAuthority   common.PublicKey
	FreezeAuthority *common.PublicKey
}

type InitializePermanentDelegateData struct {
	Instruction Instruction
	Delegate    common.PublicKey
}

type MintToData struct {
	Instruction Instruction
	Amount      uint64
}

type TransferCheckedData struct {
	Instruction Instruction
	Amount      uint64
	Decimals    uint8
}

type BurnCheckedData struct {
	Instruction Instruction
	Amount      uint64
	Decimals    uint8
}

func mustEncode(v any) []byte {
	data, err := borsh.Serialize(v)
	if err != nil {
		panic(err)
	}
	return data
}

func programOrDefault(id common.PublicKey) common.PublicKey {
	if id == (common.PublicKey{}) {
		return Token2022ProgramID
	}
	return id
}

// appendAuthority follows the spl convention: with no extra signers the
// authority itself signs; otherwise the authority is listed read-only and each
// extra signer follows as a read-only signer.
func appendAuthority(metas []types.AccountMeta, auth common.PublicKey, signers []common.PublicKey) []types.AccountMeta {
	metas = append(metas, types.AccountMeta{PubKey: auth, IsSigner: len(signers) == 0, IsWritable: false})
	for _, s := range signers {
		metas = append(metas, types.AccountMeta{PubKey: s, IsSigner: true, IsWritable: false})
	}
	return metas
}

// ============================================================
// Builders
// ============================================================

type InitializePermanentDelegateParam struct {
	ProgramID common.PublicKey
	Mint      common.PublicKey
	Delegate  common.PublicKey
}

// InitializePermanentDelegate binds delegate to mint. It must run before
// InitializeMint on the same account.
//
// Accounts:
// 0. [writable] mint
func InitializePermanentDelegate(param InitializePermanentDelegateParam) types.Instruction {
	return types.Instruction{
		ProgramID: programOrDefault(param.ProgramID),
		Accounts: []types.AccountMeta{
			{PubKey: param.Mint, IsSigner: false, IsWritable: true},
		},
		Data: mustEncode(InitializePermanentDelegateData{
			Instruction: InstructionInitializePermanentDelegate,
			Delegate:    param.Delegate,
		}),
	}
}

type InitializeMintParam struct {
	ProgramID  common.PublicKey
	Decimals   uint8
	Mint       common.PublicKey
	MintAuth   common.PublicKey
	FreezeAuth *common.PublicKey
}

// InitializeMint writes the base mint record.
//
// Accounts:
// 0. [writable] mint
// 1. [] rent sysvar
func InitializeMint(param InitializeMintParam) types.Instruction {
	return types.Instruction{
		ProgramID: programOrDefault(param.ProgramID),
		Accounts: []types.AccountMeta{
			{PubKey: param.Mint, IsSigner: false, IsWritable: true},
			{PubKey: SysVarRentPubkey, IsSigner: false, IsWritable: false},
		},
		Data: mustEncode(InitializeMintData{
			Instruction:     InstructionInitializeMint,
			Decimals:        param.Decimals,
			MintAuthority:   param.MintAuth,
			FreezeAuthority: param.FreezeAuth,
		}),
	}
}

type MintToParam struct {
	ProgramID common.PublicKey
	Mint      common.PublicKey
	To        common.PublicKey
	Auth      common.PublicKey
	Signers   []common.PublicKey
	Amount    uint64
}

// MintTo credits Amount raw units to To.
//
// Accounts:
// 0. [writable] mint
// 1. [writable] destination token account
// 2. [] mint authority (signer when Signers is empty)
// 3.. [signer] Signers
func MintTo(param MintToParam) types.Instruction {
	metas := []types.AccountMeta{
		{PubKey: param.Mint, IsSigner: false, IsWritable: true},
		{PubKey: param.To, IsSigner: false, IsWritable: true},
	}
	return types.Instruction{
		ProgramID: programOrDefault(param.ProgramID),
		Accounts:  appendAuthority(metas, param.Auth, param.Signers),
		Data: mustEncode(MintToData{
			Instruction: InstructionMintTo,
			Amount:      param.Amount,
		}),
	}
}

type TransferCheckedParam struct {
	ProgramID common.PublicKey
	From      common.PublicKey
	Mint      common.PublicKey
	To        common.PublicKey
	Auth      common.PublicKey
	Signers   []common.PublicKey
	Amount    uint64
	Decimals  uint8
}

// TransferChecked moves Amount from From to To, asserting Decimals.
// Auth may be the source owner or the mint's permanent delegate.
//
// Accounts:
// 0. [writable] source token account
// 1. [] mint
// 2. [writable] destination token account
// 3. [] authority (signer when Signers is empty)
// 4.. [signer] Signers
func TransferChecked(param TransferCheckedParam) types.Instruction {
	metas := []types.AccountMeta{
		{PubKey: param.From, IsSigner: false, IsWritable: true},
		{PubKey: param.Mint, IsSigner: false, IsWritable: false},
		{PubKey: param.To, IsSigner: false, IsWritable: true},
	}
	return types.Instruction{
		ProgramID: programOrDefault(param.ProgramID),
		Accounts:  appendAuthority(metas, param.Auth, param.Signers),
		Data: mustEncode(TransferCheckedData{
			Instruction: InstructionTransferChecked,
			Amount:      param.Amount,
			Decimals:    param.Decimals,
		}),
	}
}

type BurnCheckedParam struct {
	ProgramID common.PublicKey
	Account   common.PublicKey
	Mint      common.PublicKey
	Auth      common.PublicKey
	Signers   []common.PublicKey
	Amount    uint64
	Decimals  uint8
}

// BurnChecked destroys Amount from Account, asserting Decimals.
//
// Accounts:
// 0. [writable] token account
// 1. [writable] mint
// 2. [] authority (signer when Signers is empty)
// 3.. [signer] Signers
func BurnChecked(param BurnCheckedParam) types.Instruction {
	metas := []types.AccountMeta{
		{PubKey: param.Account, IsSigner: false, IsWritable: true},
		{PubKey: param.Mint, IsSigner: false, IsWritable: true},
	}
	return types.Instruction{
		ProgramID: programOrDefault(param.ProgramID),
		Accounts:  appendAuthority(metas, param.Auth, param.Signers),
		Data: mustEncode(BurnCheckedData{
			Instruction: InstructionBurnChecked,
			Amount:      param.Amount,
			Decimals:    param.Decimals,
		}),
	}
}
