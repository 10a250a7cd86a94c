package localledger

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"

	"permdelegate/internal/infra/solana"
)

func (x *execContext) executeToken(ins types.Instruction) error {
	if len(ins.Data) == 0 {
		return ErrInvalidInstructionData
	}

	switch solana.Instruction(ins.Data[0]) {
	case solana.InstructionInitializePermanentDelegate:
		var d solana.InitializePermanentDelegateData
		if err := borsh.Deserialize(&d, ins.Data); err != nil {
			return fmt.Errorf("%w: initialize permanent delegate: %v", ErrInvalidInstructionData, err)
		}
		return x.initializePermanentDelegate(ins.Accounts, d)

	case solana.InstructionInitializeMint:
		var d solana.InitializeMintData
		if err := borsh.Deserialize(&d, ins.Data); err != nil {
			return fmt.Errorf("%w: initialize mint: %v", ErrInvalidInstructionData, err)
		}
		return x.initializeMint(ins.Accounts, d)

	case solana.InstructionMintTo:
		var d solana.MintToData
		if err := borsh.Deserialize(&d, ins.Data); err != nil {
			return fmt.Errorf("%w: mint to: %v", ErrInvalidInstructionData, err)
		}
		return x.mintTo(ins.Accounts, d)

	case solana.InstructionTransferChecked:
		var d solana.TransferCheckedData
		if err := borsh.Deserialize(&d, ins.Data); err != nil {
			return fmt.Errorf("%w: transfer checked: %v", ErrInvalidInstructionData, err)
		}
		return x.transferChecked(ins.Accounts, d)

	case solana.InstructionBurnChecked:
		var d solana.BurnCheckedData
		if err := borsh.Deserialize(&d, ins.Data); err != nil {
			return fmt.Errorf("%w: burn checked: %v", ErrInvalidInstructionData, err)
		}
		return x.burnChecked(ins.Accounts, d)

	default:
		return fmt.Errorf("%w: token %d", ErrUnsupportedInstruction, ins.Data[0])
	}
}

// ============================================================
// account loaders
// ============================================================

// programAccount returns pk when it is owned by the token program.
func (x *execContext) programAccount(pk common.PublicKey) (*account, error) {
	acc := x.accounts[pk]
	if acc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUninitializedAccount, pk.ToBase58())
	}
	if acc.owner != solana.Token2022ProgramID {
		return nil, fmt.Errorf("%w: %s", ErrIncorrectProgramID, pk.ToBase58())
	}
	return acc, nil
}

func (x *execContext) initializedMint(pk common.PublicKey) (*mintState, error) {
	acc, err := x.programAccount(pk)
	if err != nil {
		return nil, err
	}
	if acc.token != nil {
		return nil, fmt.Errorf("%w: %s is a token account", ErrInvalidAccountData, pk.ToBase58())
	}
	if acc.mint == nil || !acc.mint.initialized {
		return nil, fmt.Errorf("%w: mint %s", ErrUninitializedAccount, pk.ToBase58())
	}
	return acc.mint, nil
}

func (x *execContext) tokenAccount(pk common.PublicKey) (*tokenState, error) {
	acc, err := x.programAccount(pk)
	if err != nil {
		return nil, err
	}
	if acc.token == nil {
		return nil, fmt.Errorf("%w: token account %s", ErrUninitializedAccount, pk.ToBase58())
	}
	return acc.token, nil
}

// ============================================================
// authorization
// ============================================================

// authorizeMovement decides whether auth may move or burn holder's balance.
// The permanent delegate is accepted for every holder; otherwise only the
// holder's owner is. Per-account delegation is not modelled.
func (x *execContext) authorizeMovement(m *mintState, holder *tokenState, auth common.PublicKey) error {
	if m.permanentDelegate != nil && *m.permanentDelegate == auth {
		if !x.signed(auth) {
			return fmt.Errorf("%w: permanent delegate %s", ErrMissingRequiredSignature, auth.ToBase58())
		}
		return nil
	}
	if holder.owner != auth {
		return fmt.Errorf("%w: authority %s", ErrOwnerMismatch, auth.ToBase58())
	}
	if !x.signed(auth) {
		return fmt.Errorf("%w: owner %s", ErrMissingRequiredSignature, auth.ToBase58())
	}
	return nil
}

// ============================================================
// handlers
// ============================================================

func (x *execContext) initializePermanentDelegate(metas []types.AccountMeta, d solana.InitializePermanentDelegateData) error {
	if len(metas) < 1 {
		return ErrNotEnoughAccountKeys
	}
	acc, err := x.programAccount(metas[0].PubKey)
	if err != nil {
		return err
	}
	if acc.token != nil {
		return ErrInvalidAccountData
	}
	if acc.mint == nil {
		acc.mint = &mintState{}
	}
	if acc.mint.initialized || acc.mint.hasExtension(solana.ExtensionPermanentDelegate) {
		return fmt.Errorf("%w: permanent delegate on %s", ErrAlreadyInitialized, metas[0].PubKey.ToBase58())
	}

	need, err := solana.MintAccountLen(append(acc.mint.extensions, solana.ExtensionPermanentDelegate)...)
	if err != nil {
		return err
	}
	if acc.space < need {
		return fmt.Errorf("%w: space %d < %d", ErrInvalidAccountData, acc.space, need)
	}

	delegate := d.Delegate
	acc.mint.permanentDelegate = &delegate
	acc.mint.extensions = append(acc.mint.extensions, solana.ExtensionPermanentDelegate)
	return nil
}

func (x *execContext) initializeMint(metas []types.AccountMeta, d solana.InitializeMintData) error {
	if len(metas) < 2 {
		return ErrNotEnoughAccountKeys
	}
	acc, err := x.programAccount(metas[0].PubKey)
	if err != nil {
		return err
	}
	if acc.token != nil {
		return ErrInvalidAccountData
	}
	if acc.mint == nil {
		acc.mint = &mintState{}
	}
	if acc.mint.initialized {
		return fmt.Errorf("%w: mint %s", ErrAlreadyInitialized, metas[0].PubKey.ToBase58())
	}
	if acc.lamports < minimumBalance(acc.space) {
		return fmt.Errorf("%w: %d < %d", ErrNotRentExempt, acc.lamports, minimumBalance(acc.space))
	}

	// every byte allocated for extensions must already be claimed by an
	// initialized extension; this is what forces extension-first ordering
	want, err := solana.MintAccountLen(acc.mint.extensions...)
	if err != nil {
		return err
	}
	if want != acc.space {
		return fmt.Errorf("%w: mint space %d, initialized extensions need %d", ErrInvalidAccountData, acc.space, want)
	}

	auth := d.MintAuthority
	acc.mint.mintAuthority = &auth
	if d.FreezeAuthority != nil {
		fa := *d.FreezeAuthority
		acc.mint.freezeAuthority = &fa
	}
	acc.mint.decimals = d.Decimals
	acc.mint.initialized = true
	return nil
}

func (x *execContext) mintTo(metas []types.AccountMeta, d solana.MintToData) error {
	if len(metas) < 3 {
		return ErrNotEnoughAccountKeys
	}
	mintKey, destKey, auth := metas[0].PubKey, metas[1].PubKey, metas[2].PubKey

	m, err := x.initializedMint(mintKey)
	if err != nil {
		return err
	}
	dest, err := x.tokenAccount(destKey)
	if err != nil {
		return err
	}
	if dest.mint != mintKey {
		return ErrMintMismatch
	}

	if m.mintAuthority == nil {
		return ErrMintAuthorityDisabled
	}
	if *m.mintAuthority != auth {
		return fmt.Errorf("%w: mint authority %s", ErrOwnerMismatch, auth.ToBase58())
	}
	if !x.signed(auth) {
		return fmt.Errorf("%w: mint authority %s", ErrMissingRequiredSignature, auth.ToBase58())
	}

	if m.supply+d.Amount < m.supply || dest.amount+d.Amount < dest.amount {
		return ErrOverflow
	}
	m.supply += d.Amount
	dest.amount += d.Amount
	return nil
}

func (x *execContext) transferChecked(metas []types.AccountMeta, d solana.TransferCheckedData) error {
	if len(metas) < 4 {
		return ErrNotEnoughAccountKeys
	}
	srcKey, mintKey, dstKey, auth := metas[0].PubKey, metas[1].PubKey, metas[2].PubKey, metas[3].PubKey

	src, err := x.tokenAccount(srcKey)
	if err != nil {
		return err
	}
	dst, err := x.tokenAccount(dstKey)
	if err != nil {
		return err
	}
	if src.mint != mintKey || dst.mint != mintKey {
		return ErrMintMismatch
	}
	m, err := x.initializedMint(mintKey)
	if err != nil {
		return err
	}
	if d.Decimals != m.decimals {
		return fmt.Errorf("%w: mint=%d supplied=%d", ErrMintDecimalsMismatch, m.decimals, d.Decimals)
	}
	if src.amount < d.Amount {
		return fmt.Errorf("%w: balance %d < %d", ErrInsufficientFunds, src.amount, d.Amount)
	}
	if err := x.authorizeMovement(m, src, auth); err != nil {
		return err
	}

	if srcKey == dstKey {
		return nil
	}
	if dst.amount+d.Amount < dst.amount {
		return ErrOverflow
	}
	src.amount -= d.Amount
	dst.amount += d.Amount
	return nil
}

func (x *execContext) burnChecked(metas []types.AccountMeta, d solana.BurnCheckedData) error {
	if len(metas) < 3 {
		return ErrNotEnoughAccountKeys
	}
	holderKey, mintKey, auth := metas[0].PubKey, metas[1].PubKey, metas[2].PubKey

	holder, err := x.tokenAccount(holderKey)
	if err != nil {
		return err
	}
	if holder.mint != mintKey {
		return ErrMintMismatch
	}
	m, err := x.initializedMint(mintKey)
	if err != nil {
		return err
	}
	if d.Decimals != m.decimals {
		return fmt.Errorf("%w: mint=%d supplied=%d", ErrMintDecimalsMismatch, m.decimals, d.Decimals)
	}
	if holder.amount < d.Amount {
		return fmt.Errorf("%w: balance %d < %d", ErrInsufficientFunds, holder.amount, d.Amount)
	}
	if err := x.authorizeMovement(m, holder, auth); err != nil {
		return err
	}

	holder.amount -= d.Amount
	m.supply -= d.Amount
	return nil
}
