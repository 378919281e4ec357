package valuation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/brokersync/internal/domain"
)

// Service computes the total current value of assets held in the brokerage
// account
type Service struct {
	Portfolio domain.PortfolioReader
}

// NewService creates a new valuation Service instance
func NewService(portfolio domain.PortfolioReader) *Service {
	return &Service{Portfolio: portfolio}
}

// TotalAssets computes the total current dollar value of equities plus
// crypto held in the account.
// Logic:
//  1. Sum price * quantity over equity positions, skipping zero-quantity
//     rows and inactive instruments
//  2. Sum mark price * quantity over crypto holdings, skipping zero-quantity
//     rows
//
// Valuation is all-or-nothing: a failed price lookup on any non-skipped
// position fails the whole computation rather than silently understating
// assets.
func (s *Service) TotalAssets(ctx context.Context) (decimal.Decimal, error) {
	stocks, err := s.stockAssets(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	crypto, err := s.cryptoAssets(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return stocks.Add(crypto), nil
}

// stockAssets returns the total value held in equities
func (s *Service) stockAssets(ctx context.Context) (decimal.Decimal, error) {
	positions, err := s.Portfolio.ListPositions(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list positions: %w", err)
	}

	total := decimal.Zero
	for _, position := range positions {
		// The brokerage reports rows for instruments the account never
		// actually bought
		if position.Quantity.IsZero() {
			continue
		}

		instrument, err := s.Portfolio.GetInstrument(ctx, position.InstrumentRef)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to resolve instrument %s: %w", position.InstrumentRef, err)
		}

		// A delisted symbol may have been folded into a different one;
		// quote lookups on it fail outright
		if instrument.Inactive() {
			continue
		}

		quote, err := s.Portfolio.GetQuote(ctx, instrument.Symbol)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to quote %s: %w", instrument.Symbol, err)
		}

		total = total.Add(quote.EffectivePrice().Mul(position.Quantity))
	}

	return total, nil
}

// cryptoAssets returns the total value held in crypto
func (s *Service) cryptoAssets(ctx context.Context) (decimal.Decimal, error) {
	holdings, err := s.Portfolio.ListCryptoHoldings(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list crypto holdings: %w", err)
	}

	total := decimal.Zero
	for _, holding := range holdings {
		if holding.QuantityAvailable.IsZero() {
			continue
		}

		quote, err := s.Portfolio.GetCryptoQuote(ctx, holding.CurrencyCode)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to quote crypto %s: %w", holding.CurrencyCode, err)
		}

		total = total.Add(quote.MarkPrice.Mul(holding.QuantityAvailable))
	}

	return total, nil
}
