package valuation

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simaogato/brokersync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPortfolioReader is a mock implementation of PortfolioReader for testing
type MockPortfolioReader struct {
	mock.Mock
}

func (m *MockPortfolioReader) ListPositions(ctx context.Context) ([]domain.Position, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Position), args.Error(1)
}

func (m *MockPortfolioReader) GetInstrument(ctx context.Context, ref string) (*domain.Instrument, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Instrument), args.Error(1)
}

func (m *MockPortfolioReader) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockPortfolioReader) ListCryptoHoldings(ctx context.Context) ([]domain.CryptoHolding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CryptoHolding), args.Error(1)
}

func (m *MockPortfolioReader) GetCryptoQuote(ctx context.Context, code string) (*domain.CryptoQuote, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CryptoQuote), args.Error(1)
}

func TestTotalAssets_StocksPlusCrypto(t *testing.T) {
	ctx := context.Background()
	portfolio := new(MockPortfolioReader)
	service := NewService(portfolio)

	// Setup: one active position of 10 shares at $500, one crypto holding
	// of 2 BTC at $250
	portfolio.On("ListPositions", ctx).Return([]domain.Position{
		{InstrumentRef: "/instruments/tsla/", Quantity: decimal.NewFromInt(10)},
	}, nil)
	portfolio.On("GetInstrument", ctx, "/instruments/tsla/").Return(&domain.Instrument{Symbol: "TSLA", State: "active"}, nil)
	portfolio.On("GetQuote", ctx, "TSLA").Return(&domain.Quote{LastTradePrice: decimal.NewFromInt(500)}, nil)
	portfolio.On("ListCryptoHoldings", ctx).Return([]domain.CryptoHolding{
		{CurrencyCode: "BTC", QuantityAvailable: decimal.NewFromInt(2)},
	}, nil)
	portfolio.On("GetCryptoQuote", ctx, "BTC").Return(&domain.CryptoQuote{MarkPrice: decimal.NewFromInt(250)}, nil)

	// Execute
	total, err := service.TotalAssets(ctx)

	// Assert: 10*500 + 2*250 = 5500
	assert.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(5500)), "expected 5500, got %s", total)

	portfolio.AssertExpectations(t)
}

func TestTotalAssets_SkipsZeroQuantityPositions(t *testing.T) {
	ctx := context.Background()
	portfolio := new(MockPortfolioReader)
	service := NewService(portfolio)

	// A position with quantity 0 must contribute exactly 0 and trigger no
	// instrument or quote lookup
	portfolio.On("ListPositions", ctx).Return([]domain.Position{
		{InstrumentRef: "/instruments/ghost/", Quantity: decimal.Zero},
	}, nil)
	portfolio.On("ListCryptoHoldings", ctx).Return([]domain.CryptoHolding{}, nil)

	total, err := service.TotalAssets(ctx)

	assert.NoError(t, err)
	assert.True(t, total.IsZero())
	portfolio.AssertNotCalled(t, "GetInstrument", mock.Anything, mock.Anything)
	portfolio.AssertNotCalled(t, "GetQuote", mock.Anything, mock.Anything)
}

func TestTotalAssets_SkipsInactiveInstruments(t *testing.T) {
	ctx := context.Background()
	portfolio := new(MockPortfolioReader)
	service := NewService(portfolio)

	// An inactive instrument contributes exactly 0 regardless of quantity
	portfolio.On("ListPositions", ctx).Return([]domain.Position{
		{InstrumentRef: "/instruments/delisted/", Quantity: decimal.NewFromInt(100)},
	}, nil)
	portfolio.On("GetInstrument", ctx, "/instruments/delisted/").Return(&domain.Instrument{Symbol: "GONE", State: "inactive"}, nil)
	portfolio.On("ListCryptoHoldings", ctx).Return([]domain.CryptoHolding{}, nil)

	total, err := service.TotalAssets(ctx)

	assert.NoError(t, err)
	assert.True(t, total.IsZero())
	portfolio.AssertNotCalled(t, "GetQuote", mock.Anything, mock.Anything)
}

func TestTotalAssets_PrefersExtendedHoursPrice(t *testing.T) {
	ctx := context.Background()
	portfolio := new(MockPortfolioReader)
	service := NewService(portfolio)

	extended := decimal.NewFromFloat(101.50)
	portfolio.On("ListPositions", ctx).Return([]domain.Position{
		{InstrumentRef: "/instruments/tsla/", Quantity: decimal.NewFromInt(1)},
	}, nil)
	portfolio.On("GetInstrument", ctx, "/instruments/tsla/").Return(&domain.Instrument{Symbol: "TSLA", State: "active"}, nil)
	portfolio.On("GetQuote", ctx, "TSLA").Return(&domain.Quote{
		LastTradePrice:         decimal.NewFromInt(100),
		LastExtendedHoursPrice: &extended,
	}, nil)
	portfolio.On("ListCryptoHoldings", ctx).Return([]domain.CryptoHolding{}, nil)

	total, err := service.TotalAssets(ctx)

	assert.NoError(t, err)
	assert.True(t, total.Equal(extended))
}

func TestTotalAssets_QuoteFailureFailsWholeValuation(t *testing.T) {
	ctx := context.Background()
	portfolio := new(MockPortfolioReader)
	service := NewService(portfolio)

	// Valuation is all-or-nothing: a failed quote on a non-skipped position
	// must not produce a partial total
	portfolio.On("ListPositions", ctx).Return([]domain.Position{
		{InstrumentRef: "/instruments/good/", Quantity: decimal.NewFromInt(5)},
		{InstrumentRef: "/instruments/bad/", Quantity: decimal.NewFromInt(5)},
	}, nil)
	portfolio.On("GetInstrument", ctx, "/instruments/good/").Return(&domain.Instrument{Symbol: "GOOD", State: "active"}, nil)
	portfolio.On("GetQuote", ctx, "GOOD").Return(&domain.Quote{LastTradePrice: decimal.NewFromInt(10)}, nil)
	portfolio.On("GetInstrument", ctx, "/instruments/bad/").Return(&domain.Instrument{Symbol: "BAD", State: "active"}, nil)
	portfolio.On("GetQuote", ctx, "BAD").Return(nil, errors.New("quote service unavailable"))

	_, err := service.TotalAssets(ctx)

	assert.Error(t, err)
}

func TestTotalAssets_SkipsZeroQuantityCrypto(t *testing.T) {
	ctx := context.Background()
	portfolio := new(MockPortfolioReader)
	service := NewService(portfolio)

	portfolio.On("ListPositions", ctx).Return([]domain.Position{}, nil)
	portfolio.On("ListCryptoHoldings", ctx).Return([]domain.CryptoHolding{
		{CurrencyCode: "DOGE", QuantityAvailable: decimal.Zero},
	}, nil)

	total, err := service.TotalAssets(ctx)

	assert.NoError(t, err)
	assert.True(t, total.IsZero())
	portfolio.AssertNotCalled(t, "GetCryptoQuote", mock.Anything, mock.Anything)
}
