package matcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/brokersync/internal/domain"
)

// amountPrecision is the number of fractional digits amounts are rounded to
// before differencing. Three digits is the ledger's milliunit resolution, so
// rounding here absorbs minor-unit conversion artifacts.
const amountPrecision = 3

// tolerance is the maximum amount difference at which a pooled transaction
// is still considered a match. One cent absorbs rounding drift between the
// two systems' minor-unit representations.
var tolerance = decimal.New(1, -2)

// Matcher holds the pool of not-yet-claimed ledger transactions for one
// (budget, account, since) scope. It is an approximate nearest-amount
// matcher: the two systems share no common transaction identifier, so
// amount proximity within the cutoff window is the only correlation signal.
//
// The pool is scoped to a single reconciliation run and is not safe for
// concurrent use.
type Matcher struct {
	pool []domain.LedgerTransaction
}

// New loads all non-deleted transactions on the account since the given
// time into the pool, once, eagerly. Loading eagerly keeps the per-claim
// cost local and minimizes round-trips to the ledger service.
func New(ctx context.Context, ledger domain.Ledger, budgetID, accountID uuid.UUID, since time.Time) (*Matcher, error) {
	rows, err := ledger.ListTransactions(ctx, budgetID, accountID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger transactions: %w", err)
	}

	pool := make([]domain.LedgerTransaction, 0, len(rows))
	for _, row := range rows {
		if row.Deleted {
			continue
		}
		pool = append(pool, row)
	}

	return &Matcher{pool: pool}, nil
}

// Remaining returns the number of unclaimed transactions left in the pool
func (m *Matcher) Remaining() int {
	return len(m.pool)
}

// PopMatching finds the pooled transaction closest in amount to the query,
// claims it, and returns it. A claimed transaction leaves the pool and can
// never be claimed again within the run.
//
// Both amounts are rounded to three fractional digits before differencing.
// If two transactions are equally close, the one with the earlier date is
// claimed. Returns nil, leaving the pool unchanged, when the pool is empty
// or the closest difference exceeds the one-cent tolerance.
func (m *Matcher) PopMatching(amount decimal.Decimal) *domain.LedgerTransaction {
	if len(m.pool) == 0 {
		return nil
	}

	target := amount.Round(amountPrecision)

	best := -1
	var bestDiff decimal.Decimal
	for i, candidate := range m.pool {
		diff := candidate.DollarAmount().Round(amountPrecision).Sub(target).Abs()
		switch {
		case best < 0 || diff.LessThan(bestDiff):
			best, bestDiff = i, diff
		case diff.Equal(bestDiff) && candidate.Date.Before(m.pool[best].Date):
			best = i
		}
	}

	if bestDiff.GreaterThan(tolerance) {
		return nil
	}

	claimed := m.pool[best]
	m.pool = append(m.pool[:best], m.pool[best+1:]...)
	return &claimed
}
