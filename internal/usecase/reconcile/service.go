package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/brokersync/internal/domain"
	"github.com/simaogato/brokersync/internal/usecase/matcher"
)

const (
	// adjustmentMemo labels the single balance-adjustment entry on the
	// assets account
	adjustmentMemo = "Daily Account Adjustment"

	// adjustmentPrecision is the number of fractional digits the adjustment
	// amount is rounded to before thresholding
	adjustmentPrecision = 3
)

// minAdjustment is the smallest absolute adjustment worth recording.
// Anything below one cent is price-quote jitter, not real drift.
var minAdjustment = decimal.New(1, -2)

// AssetValuer computes the brokerage account's total current asset value
type AssetValuer interface {
	TotalAssets(ctx context.Context) (decimal.Decimal, error)
}

// TransferCollector produces the normalized, chronologically ordered
// transfer history
type TransferCollector interface {
	Collect(ctx context.Context) ([]domain.Transfer, error)
}

// Config holds the per-run reconciliation parameters
type Config struct {
	AssetsAccountName  string
	HoldingAccountName string

	// Lookback bounds how far back transfers are replayed and ledger
	// transactions are loaded for matching
	Lookback time.Duration

	// DryRun logs the entries that would be created without creating them
	DryRun bool
}

// Service orchestrates one reconciliation run: one asset-balance adjustment
// on the assets account, then a cutoff-bounded transfer replay on the
// holding account with matching against already-recorded entries.
type Service struct {
	Ledger    domain.Ledger
	Valuer    AssetValuer
	Collector TransferCollector
	Config    Config
	Log       zerolog.Logger

	// Now is the run's clock; overridable in tests
	Now func() time.Time
}

// NewService creates a new reconcile Service instance
func NewService(ledger domain.Ledger, valuer AssetValuer, collector TransferCollector, config Config, log zerolog.Logger) *Service {
	return &Service{
		Ledger:    ledger,
		Valuer:    valuer,
		Collector: collector,
		Config:    config,
		Log:       log,
		Now:       time.Now,
	}
}

// Outcome classifies what happened to one transfer during the replay
type Outcome string

const (
	// OutcomeCreated means a new unapproved ledger entry was created
	OutcomeCreated Outcome = "CREATED"
	// OutcomeMatched means an existing ledger entry was claimed, so the
	// transfer was already recorded
	OutcomeMatched Outcome = "MATCHED"
	// OutcomeFailed means entry creation errored; earlier entries in the
	// run stay committed
	OutcomeFailed Outcome = "FAILED"
)

// TransferResult records the outcome of one replayed transfer
type TransferResult struct {
	Transfer domain.Transfer
	Outcome  Outcome
	Err      error
}

// Report summarizes one reconciliation run
type Report struct {
	// AssetAdjustment is the signed difference between real and recorded
	// asset value, rounded; AssetEntryCreated reports whether it cleared
	// the threshold and produced an entry
	AssetAdjustment   decimal.Decimal
	AssetEntryCreated bool

	Results []TransferResult
}

// count returns the number of results with the given outcome
func (r *Report) count(outcome Outcome) int {
	n := 0
	for _, result := range r.Results {
		if result.Outcome == outcome {
			n++
		}
	}
	return n
}

// Created returns how many new holding-account entries were created
func (r *Report) Created() int { return r.count(OutcomeCreated) }

// Matched returns how many transfers were already recorded
func (r *Report) Matched() int { return r.count(OutcomeMatched) }

// Failed returns how many entry creations errored
func (r *Report) Failed() int { return r.count(OutcomeFailed) }

// Run executes one reconciliation to completion.
// Logic:
//  1. Resolve the budget and the two named accounts; either missing is fatal
//  2. Reconcile the assets account: one approved adjustment entry when real
//     and recorded value differ by at least a cent
//  3. Reconcile the holding account: replay transfers newer than the
//     lookback cutoff, claiming matching existing entries and creating
//     unapproved entries for the rest
//
// Ledger entries are individually atomic: a creation failure partway through
// the replay leaves earlier entries committed, is recorded in the report,
// and does not stop the remaining transfers. Run returns the report together
// with the joined creation errors, if any.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	budget, err := s.Ledger.DefaultBudget(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve budget: %w", err)
	}

	assetsAccount, err := s.Ledger.FindAccountByName(ctx, budget.ID, s.Config.AssetsAccountName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assets account %q: %w", s.Config.AssetsAccountName, err)
	}

	holdingAccount, err := s.Ledger.FindAccountByName(ctx, budget.ID, s.Config.HoldingAccountName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve holding account %q: %w", s.Config.HoldingAccountName, err)
	}

	report := &Report{}

	if err := s.reconcileAssets(ctx, budget.ID, assetsAccount, report); err != nil {
		return report, err
	}

	if err := s.reconcileHoldings(ctx, budget.ID, holdingAccount, report); err != nil {
		return report, err
	}

	return report, nil
}

// reconcileAssets compares the real total asset value against the ledger's
// recorded balance and records one approved adjustment entry when the
// difference clears the threshold
func (s *Service) reconcileAssets(ctx context.Context, budgetID uuid.UUID, account *domain.Account, report *Report) error {
	realValue, err := s.Valuer.TotalAssets(ctx)
	if err != nil {
		return fmt.Errorf("failed to value assets: %w", err)
	}

	adjustment := realValue.Sub(account.BalanceDollars()).Round(adjustmentPrecision)
	report.AssetAdjustment = adjustment

	if adjustment.Abs().LessThan(minAdjustment) {
		s.Log.Info().Str("balance", account.BalanceDollars().String()).Msg("no asset adjustment needed")
		return nil
	}

	s.Log.Info().Str("adjustment", adjustment.String()).Msg("adjusting assets account")
	if s.Config.DryRun {
		report.AssetEntryCreated = true
		return nil
	}

	// The adjustment is pure arithmetic with no external ambiguity, so it
	// does not need human review
	_, err = s.Ledger.CreateTransaction(ctx, budgetID, domain.NewEntry{
		AccountID: account.ID,
		Amount:    adjustment,
		Memo:      adjustmentMemo,
		Date:      s.Now().UTC(),
		Approved:  true,
	})
	if err != nil {
		return fmt.Errorf("failed to create adjustment entry: %w", err)
	}

	report.AssetEntryCreated = true
	return nil
}

// reconcileHoldings replays transfers newer than the lookback cutoff against
// the holding account, skipping those that match an existing entry
func (s *Service) reconcileHoldings(ctx context.Context, budgetID uuid.UUID, account *domain.Account, report *Report) error {
	cutoff := s.Now().Add(-s.Config.Lookback).UTC()

	all, err := s.Collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect transfers: %w", err)
	}

	recent := make([]domain.Transfer, 0, len(all))
	for _, transfer := range all {
		if transfer.IsOlderThan(cutoff) {
			s.Log.Debug().Time("date", transfer.Date).Str("memo", transfer.Memo).Msg("ignoring old transfer")
			continue
		}
		recent = append(recent, transfer)
	}

	if len(recent) == 0 {
		s.Log.Info().Time("cutoff", cutoff).Msg("no transfers within lookback window")
		return nil
	}

	pool, err := matcher.New(ctx, s.Ledger, budgetID, account.ID, cutoff)
	if err != nil {
		return err
	}

	var failures []error
	for _, transfer := range recent {
		if claimed := pool.PopMatching(transfer.Amount); claimed != nil {
			s.Log.Info().
				Str("amount", transfer.Amount.String()).
				Str("memo", transfer.Memo).
				Str("matched_id", claimed.ID.String()).
				Msg("transfer already recorded")
			report.Results = append(report.Results, TransferResult{Transfer: transfer, Outcome: OutcomeMatched})
			continue
		}

		s.Log.Info().
			Str("amount", transfer.Amount.String()).
			Str("memo", transfer.Memo).
			Time("date", transfer.Date).
			Bool("dry_run", s.Config.DryRun).
			Msg("adding new transfer")

		if s.Config.DryRun {
			report.Results = append(report.Results, TransferResult{Transfer: transfer, Outcome: OutcomeCreated})
			continue
		}

		// New entries are unapproved: synthesized transfers need human
		// review before being treated as reconciled
		_, err := s.Ledger.CreateTransaction(ctx, budgetID, domain.NewEntry{
			AccountID: account.ID,
			Amount:    transfer.Amount,
			Memo:      transfer.Memo,
			Date:      transfer.Date,
			Approved:  false,
		})
		if err != nil {
			wrapped := fmt.Errorf("failed to create entry for %q (%s): %w", transfer.Memo, transfer.Amount, err)
			s.Log.Error().Err(err).Str("memo", transfer.Memo).Msg("entry creation failed")
			report.Results = append(report.Results, TransferResult{Transfer: transfer, Outcome: OutcomeFailed, Err: wrapped})
			failures = append(failures, wrapped)
			continue
		}

		report.Results = append(report.Results, TransferResult{Transfer: transfer, Outcome: OutcomeCreated})
	}

	return errors.Join(failures...)
}
