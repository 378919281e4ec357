package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instrument states and event keys as the brokerage reports them.
const (
	InstrumentStateInactive = "inactive"

	DirectionDeposit = "deposit"
	DirectionCredit  = "credit"
	DirectionDebit   = "debit"

	SourceTypeSettledCard = "settled_card_transaction"

	OrderStateFilled = "filled"
	OrderSideBuy     = "buy"
	OrderSideSell    = "sell"

	DividendStatePaid = "paid"

	CurrencyUSD = "USD"
)

// Position is an equity position held in the brokerage account.
// InstrumentRef points at the instrument resource; the symbol and listing
// state require a secondary lookup.
type Position struct {
	InstrumentRef string
	Quantity      decimal.Decimal
}

// Instrument is the resolved identity of a traded instrument
type Instrument struct {
	Symbol string
	State  string
}

// Inactive reports whether the instrument is delisted or otherwise inactive.
// Quote lookups on inactive instruments are unreliable or fail outright.
func (i Instrument) Inactive() bool {
	return i.State == InstrumentStateInactive
}

// Quote is the current price of an equity instrument
type Quote struct {
	LastTradePrice         decimal.Decimal
	LastExtendedHoursPrice *decimal.Decimal
}

// EffectivePrice prefers the extended-hours price when present, falling back
// to the last regular-session trade price.
func (q Quote) EffectivePrice() decimal.Decimal {
	if q.LastExtendedHoursPrice != nil {
		return *q.LastExtendedHoursPrice
	}
	return q.LastTradePrice
}

// CryptoHolding is a crypto currency position
type CryptoHolding struct {
	CurrencyCode      string
	QuantityAvailable decimal.Decimal
}

// CryptoQuote is the current market price of a crypto pair
type CryptoQuote struct {
	MarkPrice decimal.Decimal
}

// AccountTransfer is a transfer initiated from within the brokerage to or
// from a linked outside account. Direction is "deposit" or "withdraw".
type AccountTransfer struct {
	Amount    decimal.Decimal
	Direction string
	CreatedAt time.Time
}

// ReceivedTransfer is a transfer initiated from an outside account into the
// brokerage. Direction is credit/debit.
type ReceivedTransfer struct {
	Amount       decimal.Decimal
	CurrencyCode string
	Direction    string
	CreatedAt    time.Time
}

// CardTransaction is a debit-card event. Only rows whose SourceType marks
// them as a settled card transaction represent actual cash movement.
type CardTransaction struct {
	Amount       decimal.Decimal
	CurrencyCode string
	Direction    string
	SourceType   string
	InitiatedAt  time.Time
}

// Execution is a single fill of an order
type Execution struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Order is a stock order. Only filled orders with at least one execution
// moved cash.
type Order struct {
	InstrumentRef     string
	State             string
	Side              string
	Executions        []Execution
	LastTransactionAt time.Time
}

// Filled reports whether the order settled with at least one execution
func (o Order) Filled() bool {
	return o.State == OrderStateFilled && len(o.Executions) > 0
}

// Outflow is the total cash the order moved, unsigned: the sum of
// price * quantity over its executions.
func (o Order) Outflow() decimal.Decimal {
	total := decimal.Zero
	for _, execution := range o.Executions {
		total = total.Add(execution.Price.Mul(execution.Quantity))
	}
	return total
}

// Dividend is a dividend payout. Only "paid" dividends count; voided and
// pending ones are excluded.
type Dividend struct {
	InstrumentRef string
	State         string
	Amount        decimal.Decimal
	PaidAt        time.Time
}

// Paid reports whether the dividend actually went through
func (d Dividend) Paid() bool {
	return d.State == DividendStatePaid
}

// Sweep is an interest payment on swept cash. Direction is credit/debit.
type Sweep struct {
	Amount       decimal.Decimal
	CurrencyCode string
	Direction    string
	PayDate      time.Time
}
