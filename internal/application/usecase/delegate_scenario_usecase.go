package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"

	"permdelegate/internal/domain/ledger"
	mintdom "permdelegate/internal/domain/mint"
	"permdelegate/internal/domain/operation"
	tokendom "permdelegate/internal/domain/token"
	"permdelegate/internal/infra/solana"
)

// ScenarioConfig are the knobs of one delegate run.
type ScenarioConfig struct {
	Decimals        uint8
	MintAmount      uint64
	TransferAmount  uint64
	BurnAmount      uint64
	FundingLamports uint64
}

// DefaultScenarioConfig: whole-unit tokens, mint 10, move all 10, burn 3.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		Decimals:        0,
		MintAmount:      10,
		TransferAmount:  10,
		BurnAmount:      3,
		FundingLamports: 2 * ledger.LamportsPerSOL,
	}
}

// ScenarioResult is what a run observed. Operations is filled even when the
// run aborted.
type ScenarioResult struct {
	Mint         mintdom.Mint
	AuthorityATA tokendom.Account
	Party1ATA    tokendom.Account

	AuthorityBalance uint64
	Party1Balance    uint64
	Supply           uint64

	Operations []operation.Operation
}

// DelegateScenario drives the full lifecycle, strictly in order:
// fund, initialize mint, create both associated accounts, mint to party1,
// transfer party1 -> authority and burn from authority, both signed by the
// permanent delegate only. The first failure aborts the run.
type DelegateScenario struct {
	funding   *FundingUsecase
	mints     *MintInitializer
	accounts  *AssociatedAccountCreator
	movement  *TokenMovementEngine
	inspector ledger.Inspector

	out io.Writer
	now operation.NowFunc
	log *zap.Logger
}

func NewDelegateScenario(
	funding *FundingUsecase,
	mints *MintInitializer,
	accounts *AssociatedAccountCreator,
	movement *TokenMovementEngine,
	inspector ledger.Inspector,
	out io.Writer,
	logger *zap.Logger,
) *DelegateScenario {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DelegateScenario{
		funding:   funding,
		mints:     mints,
		accounts:  accounts,
		movement:  movement,
		inspector: inspector,
		out:       out,
		now:       func() time.Time { return time.Now().UTC() },
		log:       logger.Named("delegate_scenario"),
	}
}

// Run executes the lifecycle for p.
func (s *DelegateScenario) Run(ctx context.Context, p solana.Principals, cfg ScenarioConfig) (res ScenarioResult, err error) {
	if s == nil || s.funding == nil || s.mints == nil || s.accounts == nil || s.movement == nil {
		return res, ErrNilUsecase
	}

	j := operation.NewJournal(s.now)
	defer func() { res.Operations = j.Operations() }()

	authority, mintAcc, party1 := p.Authority, p.Mint, p.Party1
	s.printPrincipals(authority, mintAcc, party1, cfg.Decimals)

	// funding
	for _, acc := range []types.Account{authority, party1} {
		if _, err := s.step(j, operation.KindFund, acc.PublicKey.ToBase58(), func() (string, error) {
			return s.funding.EnsureFunded(ctx, acc.PublicKey, cfg.FundingLamports)
		}); err != nil {
			return res, err
		}
	}

	// mint
	var m mintdom.Mint
	if _, err := s.step(j, operation.KindInitMint, mintAcc.PublicKey.ToBase58(), func() (string, error) {
		var (
			sig string
			err error
		)
		m, sig, err = s.mints.InitializeMint(ctx, InitializeMintParams{
			Authority: authority,
			Mint:      mintAcc,
			Decimals:  cfg.Decimals,
		})
		return sig, err
	}); err != nil {
		return res, err
	}
	res.Mint = m

	// associated accounts, each paid by its owner
	create := func(owner types.Account) (tokendom.Account, error) {
		var acc tokendom.Account
		_, err := s.step(j, operation.KindCreateAccount, owner.PublicKey.ToBase58(), func() (string, error) {
			var (
				sig string
				err error
			)
			acc, sig, err = s.accounts.Create(ctx, owner, owner.PublicKey, mintAcc.PublicKey)
			return sig, err
		})
		return acc, err
	}
	authorityATA, err := create(authority)
	if err != nil {
		return res, err
	}
	res.AuthorityATA = authorityATA
	party1ATA, err := create(party1)
	if err != nil {
		return res, err
	}
	res.Party1ATA = party1ATA

	s.printAccounts(authorityATA, party1ATA)

	// movement
	if _, err := s.step(j, operation.KindMintTo, fmt.Sprintf("%d -> %s", cfg.MintAmount, party1ATA.Address), func() (string, error) {
		return s.movement.MintTo(ctx, authority, mintAcc, &m, party1ATA, cfg.MintAmount)
	}); err != nil {
		return res, err
	}

	if _, err := s.step(j, operation.KindTransfer, fmt.Sprintf("%d %s -> %s", cfg.TransferAmount, party1ATA.Address, authorityATA.Address), func() (string, error) {
		return s.movement.Transfer(ctx, authority, &m, party1ATA, authorityATA, cfg.TransferAmount, cfg.Decimals)
	}); err != nil {
		return res, err
	}

	if _, err := s.step(j, operation.KindBurn, fmt.Sprintf("%d from %s", cfg.BurnAmount, authorityATA.Address), func() (string, error) {
		return s.movement.Burn(ctx, authority, &m, authorityATA, cfg.BurnAmount, cfg.Decimals)
	}); err != nil {
		return res, err
	}
	res.Mint = m

	if err := s.readBack(ctx, &res); err != nil {
		return res, err
	}
	s.printSummary(res, j.Operations())
	return res, nil
}

// step journals fn as one operation.
func (s *DelegateScenario) step(j *operation.Journal, kind operation.Kind, detail string, fn func() (string, error)) (string, error) {
	op, err := j.Begin(kind, detail)
	if err != nil {
		return "", err
	}

	sig, err := fn()
	if err != nil {
		et := Classify(err)
		j.Fail(op, et, err)
		s.log.Error("step failed",
			zap.Int("seq", op.Seq),
			zap.String("kind", string(kind)),
			zap.String("errorType", string(et)),
			zap.Bool("retryable", Retryable(err)),
			zap.Error(err),
		)
		return sig, fmt.Errorf("%s: %w", kind, err)
	}

	j.Succeed(op, sig)
	return sig, nil
}

func (s *DelegateScenario) readBack(ctx context.Context, res *ScenarioResult) error {
	if s.inspector == nil {
		return nil
	}
	var err error
	if res.AuthorityBalance, err = s.inspector.TokenAccountBalance(ctx, res.AuthorityATA.Address); err != nil {
		return fmt.Errorf("authority balance: %w", err)
	}
	if res.Party1Balance, err = s.inspector.TokenAccountBalance(ctx, res.Party1ATA.Address); err != nil {
		return fmt.Errorf("party1 balance: %w", err)
	}
	info, err := s.inspector.MintInfo(ctx, res.Mint.Address)
	if err != nil {
		return fmt.Errorf("mint info: %w", err)
	}
	res.Supply = info.Supply
	return nil
}

// printPrincipals runs before any ledger call so a failed run still shows
// which keys it used.
func (s *DelegateScenario) printPrincipals(authority, mintAcc, party1 types.Account, decimals uint8) {
	fmt.Fprintf(s.out, "authority:      %s\n", authority.PublicKey.ToBase58())
	fmt.Fprintf(s.out, "mint:           %s\n", mintAcc.PublicKey.ToBase58())
	fmt.Fprintf(s.out, "decimals:       %d\n", decimals)
	fmt.Fprintf(s.out, "party1:         %s\n", party1.PublicKey.ToBase58())
}

func (s *DelegateScenario) printAccounts(authorityATA, party1ATA tokendom.Account) {
	fmt.Fprintf(s.out, "authority ata:  %s\n", authorityATA.Address)
	fmt.Fprintf(s.out, "party1 ata:     %s\n", party1ATA.Address)
}

func (s *DelegateScenario) printSummary(res ScenarioResult, ops []operation.Operation) {
	fmt.Fprintf(s.out, "authority balance: %d\n", res.AuthorityBalance)
	fmt.Fprintf(s.out, "party1 balance:    %d\n", res.Party1Balance)
	fmt.Fprintf(s.out, "supply:            %d\n", res.Supply)
	for _, op := range ops {
		sig := "-"
		if op.TxSignature != nil {
			sig = *op.TxSignature
		}
		fmt.Fprintf(s.out, "  #%d %-26s %-9s %s\n", op.Seq, op.Kind, op.Status, sig)
	}
}
