package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"permdelegate/internal/domain/ledger"
)

// Submitter anchors a bundle to a fresh blockhash, checks it locally and
// blocks until the ledger confirms it. There is no retry.
type Submitter struct {
	ledger ledger.Port
	log    *zap.Logger
}

func NewSubmitter(l ledger.Port, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{ledger: l, log: logger.Named("submitter")}
}

func (s *Submitter) Submit(ctx context.Context, b ledger.Bundle) (string, error) {
	if s == nil || s.ledger == nil {
		return "", ErrNilUsecase
	}

	blockhash, err := s.ledger.LatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("latest blockhash: %w", err)
	}
	b = b.WithBlockhash(blockhash)

	if err := b.Validate(); err != nil {
		return "", err
	}

	sig, err := s.ledger.SendAndConfirm(ctx, b)
	if err != nil {
		return sig, err
	}

	s.log.Debug("confirmed",
		zap.String("tx", sig),
		zap.Int("instructions", len(b.Instructions)),
		zap.Int("signers", len(b.Signers)),
	)
	return sig, nil
}
