// Package localledger is an in-process execution engine for the three programs
// the driver talks to: System, Token-2022 (permanent delegate, checked
// transfer/burn) and Associated Token Account. It executes the same bundles the
// RPC adapter would send, atomically and one at a time.
package localledger

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"permdelegate/internal/domain/ledger"
	"permdelegate/internal/infra/solana"
)

// Ledger implements ledger.Ledger in memory.
type Ledger struct {
	mu sync.Mutex

	accounts    map[common.PublicKey]*account
	blockhashes []string
	processed   map[string]struct{}
	slot        uint64

	feePerSignature uint64
	log             *zap.Logger
}

var _ ledger.Ledger = (*Ledger)(nil)

func New(logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		accounts:        make(map[common.PublicKey]*account),
		processed:       make(map[string]struct{}),
		feePerSignature: defaultFeePerSignature,
		log:             logger.Named("localledger"),
	}
	l.advance()
	return l
}

// advance moves to the next slot and publishes a new blockhash.
// Caller holds mu (or is the constructor).
func (l *Ledger) advance() string {
	l.slot++
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], l.slot)
	h := sha256.Sum256(append([]byte("localledger/blockhash/"), seed[:]...))
	bh := base58.Encode(h[:])

	l.blockhashes = append(l.blockhashes, bh)
	if len(l.blockhashes) > maxRecentBlockhashes {
		l.blockhashes = l.blockhashes[len(l.blockhashes)-maxRecentBlockhashes:]
	}
	return bh
}

func (l *Ledger) knownBlockhash(bh string) bool {
	for _, h := range l.blockhashes {
		if h == bh {
			return true
		}
	}
	return false
}

// ============================================================
// ledger.Port
// ============================================================

func (l *Ledger) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return minimumBalance(size), nil
}

func (l *Ledger) LatestBlockhash(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.advance(), nil
}

func (l *Ledger) RequestAirdrop(ctx context.Context, addr string, lamports uint64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pk, err := parsePubkey(addr)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc := l.accounts[pk]
	if acc == nil {
		acc = &account{owner: solana.SystemProgramID}
		l.accounts[pk] = acc
	}
	if acc.lamports+lamports < acc.lamports {
		return "", fmt.Errorf("%w: airdrop: %w", ledger.ErrTransactionFailed, ErrOverflow)
	}
	acc.lamports += lamports

	l.advance()
	h := sha256.Sum256([]byte(fmt.Sprintf("localledger/airdrop/%s/%d/%d", addr, lamports, l.slot)))
	sig := base58.Encode(h[:])
	l.processed[sig] = struct{}{}
	return sig, nil
}

func (l *Ledger) Balance(ctx context.Context, addr string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pk, err := parsePubkey(addr)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if acc := l.accounts[pk]; acc != nil {
		return acc.lamports, nil
	}
	return 0, nil
}

// SendAndConfirm executes b atomically. The fee is charged even when an
// instruction fails; every other effect is discarded on failure.
func (l *Ledger) SendAndConfirm(ctx context.Context, b ledger.Bundle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := b.Validate(); err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.knownBlockhash(b.RecentBlockhash) {
		return "", fmt.Errorf("%w: %w", ledger.ErrTransactionFailed, ErrBlockhashNotFound)
	}

	sig := signBundle(b)
	if _, dup := l.processed[sig]; dup {
		return "", fmt.Errorf("%w: %w", ledger.ErrTransactionFailed, ErrAlreadyProcessed)
	}

	fee := l.feePerSignature * uint64(len(b.Signers))
	payer := l.accounts[b.FeePayer]
	if payer == nil || payer.lamports < fee {
		return "", fmt.Errorf("%w: %w", ledger.ErrTransactionFailed, ErrInsufficientFundsForFee)
	}
	payer.lamports -= fee
	l.processed[sig] = struct{}{}
	l.advance()

	x := &execContext{
		accounts: cloneAccounts(l.accounts),
		signers:  b.SignerSet(),
	}
	for i, ins := range b.Instructions {
		if err := x.execute(ins); err != nil {
			l.log.Debug("transaction failed",
				zap.String("tx", sig),
				zap.Int("instruction", i),
				zap.Error(err),
			)
			if invalidArguments(err) {
				return sig, fmt.Errorf("%w: %w: instruction %d: %w", ledger.ErrTransactionFailed, ledger.ErrInvalidInstruction, i, err)
			}
			return sig, fmt.Errorf("%w: instruction %d: %w", ledger.ErrTransactionFailed, i, err)
		}
	}

	l.accounts = x.accounts
	l.log.Debug("transaction confirmed",
		zap.String("tx", sig),
		zap.Int("instructions", len(b.Instructions)),
		zap.Uint64("slot", l.slot),
	)
	return sig, nil
}

// ============================================================
// ledger.Inspector
// ============================================================

func (l *Ledger) TokenAccountBalance(ctx context.Context, addr string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pk, err := parsePubkey(addr)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc := l.accounts[pk]
	if acc == nil || acc.token == nil {
		return 0, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, addr)
	}
	return acc.token.amount, nil
}

func (l *Ledger) MintInfo(ctx context.Context, mint string) (ledger.MintInfo, error) {
	if err := ctx.Err(); err != nil {
		return ledger.MintInfo{}, err
	}
	pk, err := parsePubkey(mint)
	if err != nil {
		return ledger.MintInfo{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc := l.accounts[pk]
	if acc == nil {
		return ledger.MintInfo{}, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, mint)
	}
	if acc.owner != solana.Token2022ProgramID || acc.token != nil {
		return ledger.MintInfo{}, fmt.Errorf("%w: %s is not a mint", ledger.ErrUnknownAccountData, mint)
	}
	if acc.mint == nil {
		return ledger.MintInfo{}, nil
	}

	m := acc.mint
	return ledger.MintInfo{
		Initialized:       m.initialized,
		Decimals:          m.decimals,
		Supply:            m.supply,
		MintAuthority:     pubkeyString(m.mintAuthority),
		FreezeAuthority:   pubkeyString(m.freezeAuthority),
		PermanentDelegate: pubkeyString(m.permanentDelegate),
	}, nil
}

// ============================================================
// execution
// ============================================================

type execContext struct {
	accounts map[common.PublicKey]*account
	signers  map[common.PublicKey]struct{}
}

func (x *execContext) signed(pk common.PublicKey) bool {
	_, ok := x.signers[pk]
	return ok
}

func (x *execContext) execute(ins types.Instruction) error {
	switch ins.ProgramID {
	case solana.SystemProgramID:
		return x.executeSystem(ins)
	case solana.Token2022ProgramID:
		return x.executeToken(ins)
	case solana.SPLAssociatedTokenAccountProgramID:
		return x.executeAssociatedAccount(ins)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedProgram, ins.ProgramID.ToBase58())
	}
}

// signBundle derives a deterministic signature for b: the fee payer's ed25519
// signature over a digest of the anchored instructions.
func signBundle(b ledger.Bundle) string {
	h := sha256.New()
	h.Write([]byte(b.RecentBlockhash))
	h.Write(b.FeePayer.Bytes())
	for _, ins := range b.Instructions {
		h.Write(ins.ProgramID.Bytes())
		for _, m := range ins.Accounts {
			h.Write(m.PubKey.Bytes())
		}
		h.Write(ins.Data)
	}
	digest := h.Sum(nil)

	for _, s := range b.Signers {
		if s.PublicKey == b.FeePayer {
			return base58.Encode(ed25519.Sign(s.PrivateKey, digest))
		}
	}
	return base58.Encode(digest)
}

func parsePubkey(s string) (common.PublicKey, error) {
	t := strings.TrimSpace(s)
	raw, err := base58.Decode(t)
	if err != nil || len(raw) != 32 {
		return common.PublicKey{}, fmt.Errorf("localledger: invalid address %q", s)
	}
	return common.PublicKeyFromBytes(raw), nil
}

func pubkeyString(pk *common.PublicKey) string {
	if pk == nil {
		return ""
	}
	return pk.ToBase58()
}
