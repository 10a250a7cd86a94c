package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"permdelegate/internal/domain/ledger"
	"permdelegate/internal/infra/solana"
)

const (
	LedgerRPC    = "rpc"
	LedgerMemory = "memory"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"

	// MaxAirdropSOL keeps AirdropSOL * LamportsPerSOL within a uint64.
	MaxAirdropSOL = math.MaxUint64 / ledger.LamportsPerSOL
)

var (
	ErrInvalidLedgerMode   = errors.New("config: ledger must be rpc or memory")
	ErrInvalidCommitment   = errors.New("config: commitment must be processed, confirmed or finalized")
	ErrInvalidLogFormat    = errors.New("config: log format must be console or json")
	ErrZeroAmount          = errors.New("config: amounts must be > 0")
	ErrZeroAirdrop         = errors.New("config: airdrop must be > 0 SOL")
	ErrAirdropTooLarge     = errors.New("config: airdrop does not fit in lamports")
	ErrInvalidPollInterval = errors.New("config: poll interval must be > 0")
)

// Config holds the settings of one run. Environment first, flags override.
type Config struct {
	RPCURL     string
	LedgerMode string

	Decimals       uint8
	MintAmount     uint64
	TransferAmount uint64
	BurnAmount     uint64
	AirdropSOL     uint64

	PollInterval time.Duration
	Commitment   string

	// FaucetSecret names a Secret Manager version holding a funding keypair.
	// Empty means fund by airdrop.
	FaucetSecret string
	GCPCreds     string

	LogFormat string
}

// Load reads the environment. Malformed numbers fall back to defaults and are
// reported by the returned error; the Config is usable either way.
func Load() (*Config, error) {
	var errs []error
	cfg := &Config{
		RPCURL:     getenvDefault("SOLANA_RPC_URL", solana.LocalnetEndpoint),
		LedgerMode: getenvDefault("LEDGER_MODE", LedgerRPC),

		Decimals:       uint8(getenvUint("TOKEN_DECIMALS", 0, 8, &errs)),
		MintAmount:     getenvUint("MINT_AMOUNT", 10, 64, &errs),
		TransferAmount: getenvUint("TRANSFER_AMOUNT", 10, 64, &errs),
		BurnAmount:     getenvUint("BURN_AMOUNT", 3, 64, &errs),
		AirdropSOL:     getenvUint("AIRDROP_SOL", 2, 64, &errs),

		PollInterval: getenvDuration("CONFIRM_POLL_INTERVAL", 500*time.Millisecond, &errs),
		Commitment:   getenvDefault("CONFIRM_COMMITMENT", solana.CommitmentConfirmed),

		FaucetSecret: os.Getenv("FAUCET_KEY_SECRET"),
		GCPCreds:     os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		LogFormat: getenvDefault("LOG_FORMAT", LogFormatConsole),
	}
	return cfg, errors.Join(errs...)
}

// BindFlags registers a flag per setting, defaulting to the current values.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.RPCURL, "rpc-url", c.RPCURL, "ledger JSON-RPC endpoint")
	fs.StringVar(&c.LedgerMode, "ledger", c.LedgerMode, "ledger backend: rpc or memory")
	fs.Uint8Var(&c.Decimals, "decimals", c.Decimals, "mint decimals")
	fs.Uint64Var(&c.MintAmount, "mint-amount", c.MintAmount, "raw units minted to party1")
	fs.Uint64Var(&c.TransferAmount, "transfer-amount", c.TransferAmount, "raw units the delegate moves from party1 to the authority")
	fs.Uint64Var(&c.BurnAmount, "burn-amount", c.BurnAmount, "raw units the delegate burns from the authority")
	fs.Uint64Var(&c.AirdropSOL, "airdrop-sol", c.AirdropSOL, "minimum SOL balance kept on each principal")
	fs.DurationVar(&c.PollInterval, "poll-interval", c.PollInterval, "signature status polling period")
	fs.StringVar(&c.Commitment, "commitment", c.Commitment, "confirmation level: processed, confirmed or finalized")
	fs.StringVar(&c.FaucetSecret, "faucet-secret", c.FaucetSecret, "Secret Manager version of a funding keypair (empty: airdrop)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log encoding: console or json")
}

// Validate normalizes and checks the settings.
func (c *Config) Validate() error {
	c.LedgerMode = strings.ToLower(strings.TrimSpace(c.LedgerMode))
	c.Commitment = strings.ToLower(strings.TrimSpace(c.Commitment))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.RPCURL = strings.TrimSpace(c.RPCURL)
	c.FaucetSecret = strings.TrimSpace(c.FaucetSecret)

	switch c.LedgerMode {
	case LedgerRPC, LedgerMemory:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLedgerMode, c.LedgerMode)
	}
	if !solana.ValidCommitment(c.Commitment) {
		return fmt.Errorf("%w: %q", ErrInvalidCommitment, c.Commitment)
	}
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}
	// amounts above the minted supply are allowed: they fail on the ledger
	if c.MintAmount == 0 || c.TransferAmount == 0 || c.BurnAmount == 0 {
		return ErrZeroAmount
	}
	if c.AirdropSOL == 0 {
		return ErrZeroAirdrop
	}
	if c.AirdropSOL > MaxAirdropSOL {
		return fmt.Errorf("%w: %d > %d", ErrAirdropTooLarge, c.AirdropSOL, MaxAirdropSOL)
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.RPCURL == "" {
		c.RPCURL = solana.LocalnetEndpoint
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvUint(key string, def uint64, bits int, errs *[]error) uint64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, bits)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("config: %s=%q: %w", key, v, err))
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("config: %s=%q: %w", key, v, err))
		return def
	}
	return d
}
