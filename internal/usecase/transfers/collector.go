package transfers

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/simaogato/brokersync/internal/domain"
)

// Collector derives the normalized transfer history from the brokerage's
// heterogeneous event categories
type Collector struct {
	Events domain.EventReader
	Log    zerolog.Logger
}

// NewCollector creates a new Collector instance
func NewCollector(events domain.EventReader, log zerolog.Logger) *Collector {
	return &Collector{Events: events, Log: log}
}

// Collect fetches every event category, maps each row to a normalized
// Transfer, and returns the full set sorted ascending by date.
//
// Categories are fetched and mapped independently: a fetch failure in one
// category is recorded and the remaining categories still run, with the
// joined error returned at the end so every failing category is reported at
// once. Data-integrity failures (non-USD currency, unmappable direction key)
// abort immediately instead — they mean the inputs cannot be trusted.
func (c *Collector) Collect(ctx context.Context) ([]domain.Transfer, error) {
	categories := []struct {
		name string
		fn   func(context.Context) ([]domain.Transfer, error)
	}{
		{"internal_transfers", c.internalTransfers},
		{"received_transfers", c.receivedTransfers},
		{"card_settlements", c.cardSettlements},
		{"stock_trades", c.stockTrades},
		{"dividends", c.dividends},
		{"interest", c.interest},
	}

	var all []domain.Transfer
	var failures []error

	for _, category := range categories {
		mapped, err := category.fn(ctx)
		if err != nil {
			if domain.IsIntegrityError(err) {
				return nil, fmt.Errorf("%s: %w", category.name, err)
			}
			failures = append(failures, fmt.Errorf("%s: %w", category.name, err))
			continue
		}
		c.Log.Debug().Str("category", category.name).Int("count", len(mapped)).Msg("collected transfers")
		all = append(all, mapped...)
	}

	if len(failures) > 0 {
		return nil, errors.Join(failures...)
	}

	// Downstream consumers apply a cutoff filter and expect stable
	// chronological presentation
	domain.SortTransfers(all)
	return all, nil
}

// internalTransfers maps transfers initiated from within the brokerage.
// Deposits are inflows, everything else is an outflow.
func (c *Collector) internalTransfers(ctx context.Context) ([]domain.Transfer, error) {
	rows, err := c.Events.ListTransfers(ctx)
	if err != nil {
		return nil, err
	}

	mapped := make([]domain.Transfer, 0, len(rows))
	for _, row := range rows {
		amount := row.Amount
		if row.Direction != domain.DirectionDeposit {
			amount = amount.Neg()
		}
		mapped = append(mapped, domain.NewTransfer(amount, row.CreatedAt, domain.TransferTypeInternal, ""))
	}
	return mapped, nil
}

// receivedTransfers maps transfers initiated from outside accounts
func (c *Collector) receivedTransfers(ctx context.Context) ([]domain.Transfer, error) {
	rows, err := c.Events.ListReceivedTransfers(ctx)
	if err != nil {
		return nil, err
	}

	mapped := make([]domain.Transfer, 0, len(rows))
	for _, row := range rows {
		if err := requireUSD(row.CurrencyCode); err != nil {
			return nil, err
		}
		amount, err := domain.SignedAmount(row.Amount, row.Direction, domain.DirectionCredit, domain.DirectionDebit)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, domain.NewTransfer(amount, row.CreatedAt, domain.TransferTypeExternal, ""))
	}
	return mapped, nil
}

// cardSettlements maps debit-card history, keeping only rows that settled
// as card transactions
func (c *Collector) cardSettlements(ctx context.Context) ([]domain.Transfer, error) {
	rows, err := c.Events.ListSettledTransactions(ctx)
	if err != nil {
		return nil, err
	}

	mapped := make([]domain.Transfer, 0, len(rows))
	for _, row := range rows {
		if row.SourceType != domain.SourceTypeSettledCard {
			continue
		}
		if err := requireUSD(row.CurrencyCode); err != nil {
			return nil, err
		}
		amount, err := domain.SignedAmount(row.Amount, row.Direction, domain.DirectionCredit, domain.DirectionDebit)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, domain.NewTransfer(amount, row.InitiatedAt, domain.TransferTypeCard, ""))
	}
	return mapped, nil
}

// stockTrades maps filled orders. Buying reduces cash, selling increases it.
func (c *Collector) stockTrades(ctx context.Context) ([]domain.Transfer, error) {
	rows, err := c.Events.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	mapped := make([]domain.Transfer, 0, len(rows))
	for _, row := range rows {
		if !row.Filled() {
			c.Log.Debug().Str("state", row.State).Msg("ignoring order that is not marked filled")
			continue
		}

		instrument, err := c.Events.GetInstrument(ctx, row.InstrumentRef)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve instrument %s: %w", row.InstrumentRef, err)
		}

		amount, err := domain.SignedAmount(row.Outflow(), row.Side, domain.OrderSideSell, domain.OrderSideBuy)
		if err != nil {
			return nil, err
		}

		action := "Sold"
		if amount.IsNegative() {
			action = "Purchased"
		}
		memo := fmt.Sprintf("Robinhood %s %s", instrument.Symbol, action)

		mapped = append(mapped, domain.NewTransfer(amount, row.LastTransactionAt, domain.TransferTypeStockTrade, memo))
	}
	return mapped, nil
}

// dividends maps paid dividend payouts. Dividends are always inflows, so the
// stated amount is used as-is.
func (c *Collector) dividends(ctx context.Context) ([]domain.Transfer, error) {
	rows, err := c.Events.ListDividends(ctx)
	if err != nil {
		return nil, err
	}

	mapped := make([]domain.Transfer, 0, len(rows))
	for _, row := range rows {
		// Voided and pending dividends never moved cash
		if !row.Paid() {
			continue
		}

		instrument, err := c.Events.GetInstrument(ctx, row.InstrumentRef)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve instrument %s: %w", row.InstrumentRef, err)
		}

		memo := fmt.Sprintf("Dividend from %s", instrument.Symbol)
		mapped = append(mapped, domain.NewTransfer(row.Amount, row.PaidAt, domain.TransferTypeDividend, memo))
	}
	return mapped, nil
}

// interest maps interest payments on swept cash
func (c *Collector) interest(ctx context.Context) ([]domain.Transfer, error) {
	rows, err := c.Events.ListSweeps(ctx)
	if err != nil {
		return nil, err
	}

	mapped := make([]domain.Transfer, 0, len(rows))
	for _, row := range rows {
		if err := requireUSD(row.CurrencyCode); err != nil {
			return nil, err
		}
		amount, err := domain.SignedAmount(row.Amount, row.Direction, domain.DirectionCredit, domain.DirectionDebit)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, domain.NewTransfer(amount, row.PayDate, domain.TransferTypeInterest, ""))
	}
	return mapped, nil
}

// requireUSD rejects monetary rows in any currency other than USD
func requireUSD(code string) error {
	if code != domain.CurrencyUSD {
		return fmt.Errorf("%w: got %q, only %s is supported", domain.ErrUnsupportedCurrency, code, domain.CurrencyUSD)
	}
	return nil
}
