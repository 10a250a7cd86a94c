// Package di wires the ledger backend, the optional faucet wallet and the
// usecases so that main stays thin.
package di

import (
	"context"
	"fmt"
	"io"

	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	"permdelegate/internal/application/usecase"
	"permdelegate/internal/domain/ledger"
	"permdelegate/internal/infra/config"
	"permdelegate/internal/infra/localledger"
	"permdelegate/internal/infra/solana"
)

// Container is the bundle of dependencies main uses.
type Container struct {
	Config *config.Config
	Ledger ledger.Ledger

	Submitter *usecase.Submitter
	Funding   *usecase.FundingUsecase
	Mints     *usecase.MintInitializer
	Accounts  *usecase.AssociatedAccountCreator
	Movement  *usecase.TokenMovementEngine
	Scenario  *usecase.DelegateScenario

	cleanupFn []func()
}

// Close releases external clients.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.cleanupFn) - 1; i >= 0; i-- {
		c.cleanupFn[i]()
	}
}

// NewContainer builds everything from a validated cfg. Console output of the
// scenario goes to out.
func NewContainer(ctx context.Context, cfg *config.Config, out io.Writer, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("di: config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Container{Config: cfg}

	// 1. ledger backend
	switch cfg.LedgerMode {
	case config.LedgerMemory:
		c.Ledger = localledger.New(logger)
	default:
		c.Ledger = solana.NewRPCLedger(cfg.RPCURL, cfg.Commitment, cfg.PollInterval, logger)
	}

	// 2. optional faucet wallet
	var faucet *types.Account
	if cfg.FaucetSecret != "" {
		loader, closeFn, err := solana.NewFaucetKeyLoader(ctx, cfg.GCPCreds, logger)
		if err != nil {
			return nil, fmt.Errorf("di: faucet loader: %w", err)
		}
		c.cleanupFn = append(c.cleanupFn, closeFn)

		acc, err := loader.Load(ctx, cfg.FaucetSecret)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("di: faucet key: %w", err)
		}
		faucet = &acc
	}

	// 3. usecases
	c.Submitter = usecase.NewSubmitter(c.Ledger, logger)
	c.Funding = usecase.NewFundingUsecase(c.Ledger, c.Submitter, faucet, logger)
	c.Mints = usecase.NewMintInitializer(c.Ledger, c.Submitter, logger)
	c.Accounts = usecase.NewAssociatedAccountCreator(c.Submitter, logger)
	c.Movement = usecase.NewTokenMovementEngine(c.Submitter, logger)
	c.Scenario = usecase.NewDelegateScenario(c.Funding, c.Mints, c.Accounts, c.Movement, c.Ledger, out, logger)

	logger.Info("container ready",
		zap.String("ledger", cfg.LedgerMode),
		zap.String("rpc", cfg.RPCURL),
		zap.Bool("faucet", faucet != nil),
	)
	return c, nil
}

// ScenarioConfig derives the run parameters from the config.
func (c *Container) ScenarioConfig() usecase.ScenarioConfig {
	return usecase.ScenarioConfig{
		Decimals:        c.Config.Decimals,
		MintAmount:      c.Config.MintAmount,
		TransferAmount:  c.Config.TransferAmount,
		BurnAmount:      c.Config.BurnAmount,
		FundingLamports: c.Config.AirdropSOL * ledger.LamportsPerSOL,
	}
}
