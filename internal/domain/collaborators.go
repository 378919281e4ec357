package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PortfolioReader exposes the brokerage operations valuation depends on
type PortfolioReader interface {
	// ListPositions retrieves every equity position on the account,
	// including zero-quantity rows the brokerage reports for instruments
	// that were never bought
	ListPositions(ctx context.Context) ([]Position, error)

	// GetInstrument resolves an instrument reference to its symbol and state
	GetInstrument(ctx context.Context, ref string) (*Instrument, error)

	// GetQuote retrieves the current price quote for a symbol
	GetQuote(ctx context.Context, symbol string) (*Quote, error)

	// ListCryptoHoldings retrieves every crypto position on the account
	ListCryptoHoldings(ctx context.Context) ([]CryptoHolding, error)

	// GetCryptoQuote retrieves the current market price for a crypto
	// currency code
	GetCryptoQuote(ctx context.Context, code string) (*CryptoQuote, error)
}

// EventReader exposes the brokerage cash-movement history the transfer
// normalizer consumes
type EventReader interface {
	// GetInstrument resolves an instrument reference to its symbol and state
	GetInstrument(ctx context.Context, ref string) (*Instrument, error)

	// ListTransfers retrieves transfers initiated from within the brokerage
	ListTransfers(ctx context.Context) ([]AccountTransfer, error)

	// ListReceivedTransfers retrieves transfers initiated from outside
	// accounts
	ListReceivedTransfers(ctx context.Context) ([]ReceivedTransfer, error)

	// ListSettledTransactions retrieves debit-card transaction history
	ListSettledTransactions(ctx context.Context) ([]CardTransaction, error)

	// ListOrders retrieves stock order history
	ListOrders(ctx context.Context) ([]Order, error)

	// ListDividends retrieves dividend payout history
	ListDividends(ctx context.Context) ([]Dividend, error)

	// ListSweeps retrieves interest payments on swept cash
	ListSweeps(ctx context.Context) ([]Sweep, error)
}

// Brokerage is the full brokerage API surface the sync consumes
type Brokerage interface {
	PortfolioReader
	EventReader
}

// Ledger is the budgeting-ledger API surface the sync consumes
type Ledger interface {
	// DefaultBudget retrieves the budget the API token is scoped to
	DefaultBudget(ctx context.Context) (*Budget, error)

	// FindAccountByName retrieves the account with the given name.
	// Returns an error wrapping ErrAccountNotFound if no such account
	// exists in the budget.
	FindAccountByName(ctx context.Context, budgetID uuid.UUID, name string) (*Account, error)

	// ListTransactions retrieves transactions on an account dated on or
	// after since, including soft-deleted rows (callers filter on Deleted)
	ListTransactions(ctx context.Context, budgetID, accountID uuid.UUID, since time.Time) ([]LedgerTransaction, error)

	// CreateTransaction creates a new transaction and returns the created row
	CreateTransaction(ctx context.Context, budgetID uuid.UUID, entry NewEntry) (*LedgerTransaction, error)
}
