// internal/infra/solana/ledger.go
package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	"go.uber.org/zap"

	"permdelegate/internal/domain/ledger"
)

const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"

	defaultPollInterval = 500 * time.Millisecond
)

func commitmentRank(c string) int {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}

// ValidCommitment reports whether c is one of processed/confirmed/finalized.
func ValidCommitment(c string) bool {
	return commitmentRank(c) > 0
}

// RPCLedger implements ledger.Ledger against a Solana JSON-RPC node.
// Everything goes through the blocto client except the jsonParsed mint read.
// Reads, preflight and confirmation all use Commitment, so a step sees the
// state its predecessor was confirmed at.
type RPCLedger struct {
	RPC    *client.Client
	Reader RPCClient

	Commitment   string        // e.g. "confirmed"
	PollInterval time.Duration // signature status polling period

	log *zap.Logger
}

var _ ledger.Ledger = (*RPCLedger)(nil)

// NewRPCLedger constructs the adapter. Empty rpcURL means LocalnetEndpoint.
func NewRPCLedger(rpcURL, commitment string, poll time.Duration, logger *zap.Logger) *RPCLedger {
	u := strings.TrimSpace(rpcURL)
	if u == "" {
		u = LocalnetEndpoint
	}
	commitment = strings.ToLower(strings.TrimSpace(commitment))
	if !ValidCommitment(commitment) {
		commitment = CommitmentConfirmed
	}
	if poll <= 0 {
		poll = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RPCLedger{
		RPC:          client.NewClient(u),
		Reader:       NewJSONRPCClient(u, commitment),
		Commitment:   commitment,
		PollInterval: poll,
		log:          logger.Named("rpc_ledger"),
	}
}

func (l *RPCLedger) ready() error {
	if l == nil || l.RPC == nil || l.Reader == nil {
		return ledger.ErrNotConfigured
	}
	return nil
}

func (l *RPCLedger) commitment() rpc.Commitment {
	return rpc.Commitment(l.Commitment)
}

func (l *RPCLedger) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	if err := l.ready(); err != nil {
		return 0, err
	}
	lamports, err := l.RPC.GetMinimumBalanceForRentExemptionWithConfig(ctx, size, client.GetMinimumBalanceForRentExemptionConfig{
		Commitment: l.commitment(),
	})
	if err != nil {
		return 0, fmt.Errorf("rpc_ledger: GetMinimumBalanceForRentExemption: %w", err)
	}
	return lamports, nil
}

func (l *RPCLedger) LatestBlockhash(ctx context.Context) (string, error) {
	if err := l.ready(); err != nil {
		return "", err
	}
	latest, err := l.RPC.GetLatestBlockhashWithConfig(ctx, client.GetLatestBlockhashConfig{
		Commitment: l.commitment(),
	})
	if err != nil {
		return "", fmt.Errorf("rpc_ledger: GetLatestBlockhash: %w", err)
	}
	return latest.Blockhash, nil
}

// SendAndConfirm signs, sends and blocks until the configured commitment is
// reached. Program failures (preflight or on-chain) wrap ledger.ErrTransactionFailed.
func (l *RPCLedger) SendAndConfirm(ctx context.Context, b ledger.Bundle) (string, error) {
	if err := l.ready(); err != nil {
		return "", err
	}

	tx, err := b.Transaction()
	if err != nil {
		return "", err
	}

	sig, err := l.RPC.SendTransactionWithConfig(ctx, tx, client.SendTransactionConfig{
		PreflightCommitment: l.commitment(),
	})
	if err != nil {
		return "", classifySendError(err)
	}

	l.log.Debug("submitted",
		zap.String("tx", maskShort(sig)),
		zap.String("feePayer", maskShort(b.FeePayer.ToBase58())),
		zap.Int("instructions", len(b.Instructions)),
	)

	if err := l.waitForConfirmation(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// RequestAirdrop asks the node's faucet for lamports and waits for the
// airdrop transaction to confirm.
func (l *RPCLedger) RequestAirdrop(ctx context.Context, account string, lamports uint64) (string, error) {
	if err := l.ready(); err != nil {
		return "", err
	}
	addr := strings.TrimSpace(account)
	sig, err := l.RPC.RequestAirdropWithConfig(ctx, addr, lamports, client.RequestAirdropConfig{
		Commitment: l.commitment(),
	})
	if err != nil {
		return "", fmt.Errorf("rpc_ledger: RequestAirdrop: %w", err)
	}
	if err := l.waitForConfirmation(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

func (l *RPCLedger) Balance(ctx context.Context, account string) (uint64, error) {
	if err := l.ready(); err != nil {
		return 0, err
	}
	bal, err := l.RPC.GetBalanceWithConfig(ctx, strings.TrimSpace(account), client.GetBalanceConfig{
		Commitment: l.commitment(),
	})
	if err != nil {
		return 0, fmt.Errorf("rpc_ledger: GetBalance: %w", err)
	}
	return bal, nil
}

func (l *RPCLedger) TokenAccountBalance(ctx context.Context, account string) (uint64, error) {
	if err := l.ready(); err != nil {
		return 0, err
	}
	amt, err := l.RPC.GetTokenAccountBalanceWithConfig(ctx, strings.TrimSpace(account), client.GetTokenAccountBalanceConfig{
		Commitment: l.commitment(),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, maskShort(account))
		}
		return 0, fmt.Errorf("rpc_ledger: GetTokenAccountBalance: %w", err)
	}
	return amt.Amount, nil
}

func (l *RPCLedger) MintInfo(ctx context.Context, mint string) (ledger.MintInfo, error) {
	if err := l.ready(); err != nil {
		return ledger.MintInfo{}, err
	}
	info, err := l.Reader.GetMintAccount(ctx, mint)
	if err != nil {
		return ledger.MintInfo{}, fmt.Errorf("rpc_ledger: getAccountInfo: %w", err)
	}
	if info == nil {
		return ledger.MintInfo{}, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, maskShort(mint))
	}

	supply, err := strconv.ParseUint(strings.TrimSpace(info.Supply), 10, 64)
	if err != nil {
		return ledger.MintInfo{}, fmt.Errorf("%w: supply %q: %v", ledger.ErrUnknownAccountData, info.Supply, err)
	}

	out := ledger.MintInfo{
		Initialized:       info.IsInitialized,
		Decimals:          info.Decimals,
		Supply:            supply,
		PermanentDelegate: info.PermanentDelegate(),
	}
	if info.MintAuthority != nil {
		out.MintAuthority = *info.MintAuthority
	}
	if info.FreezeAuthority != nil {
		out.FreezeAuthority = *info.FreezeAuthority
	}
	return out, nil
}

// waitForConfirmation polls getSignatureStatuses until the signature reaches
// l.Commitment or reports an execution error. It only gives up when ctx ends.
func (l *RPCLedger) waitForConfirmation(ctx context.Context, sig string) error {
	want := commitmentRank(l.Commitment)
	start := time.Now()

	for polls := 1; ; polls++ {
		statuses, err := l.RPC.GetSignatureStatusesWithConfig(ctx, []string{sig}, client.GetSignatureStatusesConfig{})
		if err != nil {
			// blocto flattens transport errors, so surface ctx's own error
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("rpc_ledger: waiting for %s: %w", maskShort(sig), ctxErr)
			}
			return fmt.Errorf("rpc_ledger: GetSignatureStatuses: %w", err)
		}

		if len(statuses) > 0 && statuses[0] != nil {
			st := statuses[0]
			if st.Err != nil {
				detail, _ := json.Marshal(st.Err)
				return rejected(fmt.Sprintf("tx=%s err=%s", sig, detail))
			}
			if got := confirmationStatus(st); commitmentRank(got) >= want {
				l.log.Debug("confirmed",
					zap.String("tx", maskShort(sig)),
					zap.String("status", got),
					zap.Uint64("slot", st.Slot),
					zap.Duration("elapsed", time.Since(start)),
				)
				return nil
			}
		}

		if polls%20 == 0 {
			l.log.Info("still waiting for confirmation",
				zap.String("tx", maskShort(sig)),
				zap.Duration("elapsed", time.Since(start)),
			)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("rpc_ledger: waiting for %s: %w", maskShort(sig), ctx.Err())
		case <-time.After(l.PollInterval):
		}
	}
}

func confirmationStatus(st *rpc.SignatureStatus) string {
	if st == nil || st.ConfirmationStatus == nil {
		return ""
	}
	return string(*st.ConfirmationStatus)
}

// classifySendError separates program rejections surfaced by preflight
// simulation from transport failures.
func classifySendError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "simulation failed") ||
		strings.Contains(msg, "custom program error") ||
		strings.Contains(msg, "insufficient funds") ||
		strings.Contains(msg, "already in use") {
		return rejected(err.Error())
	}
	return fmt.Errorf("rpc_ledger: SendTransaction: %w", err)
}

// token-2022 MintDecimalsMismatch is custom error 18
var invalidArgumentMarkers = []string{
	"custom program error: 0x12",
	`"custom":18}`,
	"invalid instruction data",
	"invalidinstructiondata",
	"not enough account keys",
	"notenoughaccountkeys",
}

func rejected(detail string) error {
	msg := strings.ToLower(detail)
	for _, m := range invalidArgumentMarkers {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %w: %s", ledger.ErrTransactionFailed, ledger.ErrInvalidInstruction, detail)
		}
	}
	return fmt.Errorf("%w: %s", ledger.ErrTransactionFailed, detail)
}

func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "could not find account") ||
		strings.Contains(msg, "invalid param")
}

func maskShort(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	if len(t) <= 10 {
		return t
	}
	return t[:4] + "***" + t[len(t)-4:]
}
