package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is a budget in the ledger service
type Budget struct {
	ID   uuid.UUID
	Name string
}

// Account is a ledger account. Balance is in milliunits (thousandths of a
// dollar), the ledger's native integer representation.
type Account struct {
	ID      uuid.UUID
	Name    string
	Balance int64
}

// BalanceDollars converts the milliunit balance to decimal dollars
func (a Account) BalanceDollars() decimal.Decimal {
	return decimal.New(a.Balance, -3)
}

// LedgerTransaction is an existing transaction on a ledger account.
// Amount is in milliunits. Soft-deleted rows carry Deleted=true and must be
// excluded from matching.
type LedgerTransaction struct {
	ID      uuid.UUID
	Amount  int64
	Date    time.Time
	Memo    string
	Deleted bool
}

// DollarAmount converts the milliunit amount to decimal dollars
func (t LedgerTransaction) DollarAmount() decimal.Decimal {
	return decimal.New(t.Amount, -3)
}

// Milliunits converts decimal dollars to the ledger's integer milliunits,
// rounding half away from zero.
func Milliunits(dollars decimal.Decimal) int64 {
	return dollars.Shift(3).Round(0).IntPart()
}

// NewEntry is the input for creating a ledger transaction
type NewEntry struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Memo      string
	Date      time.Time
	Approved  bool
}
