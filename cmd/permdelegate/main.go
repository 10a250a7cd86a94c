package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"permdelegate/internal/infra/config"
	"permdelegate/internal/infra/solana"
	"permdelegate/internal/platform/di"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "permdelegate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := pflag.NewFlagSet("permdelegate", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, cfg, os.Stdout, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	res, err := container.Scenario.Run(ctx, solana.NewPrincipals(), container.ScenarioConfig())
	if err != nil {
		logger.Error("run aborted", zap.Int("steps", len(res.Operations)), zap.Error(err))
		return err
	}

	logger.Info("run complete",
		zap.String("mint", res.Mint.Address),
		zap.Uint64("supply", res.Supply),
	)
	return nil
}

func newLogger(format string) (*zap.Logger, error) {
	if format == config.LogFormatJSON {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
