package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TransferType categorizes the upstream event a Transfer was derived from
type TransferType string

const (
	TransferTypeInternal   TransferType = "INTERNAL_TRANSFER"
	TransferTypeExternal   TransferType = "EXTERNAL_TRANSFER"
	TransferTypeCard       TransferType = "CARD_SETTLEMENT"
	TransferTypeStockTrade TransferType = "STOCK_TRADE"
	TransferTypeDividend   TransferType = "DIVIDEND"
	TransferTypeInterest   TransferType = "INTEREST"
)

// Label returns the human-readable form used in default memos
func (t TransferType) Label() string {
	switch t {
	case TransferTypeInternal:
		return "Internal Transfers"
	case TransferTypeExternal:
		return "External Transfers"
	case TransferTypeCard:
		return "Settled Transactions"
	case TransferTypeStockTrade:
		return "Stock Purchase"
	case TransferTypeDividend:
		return "Dividends"
	case TransferTypeInterest:
		return "Interest"
	default:
		return string(t)
	}
}

// Transfer represents one normalized cash movement on the brokerage account.
// Positive amounts flow into the holding account, negative amounts flow out.
// A Transfer is immutable once constructed; it lives only for the duration of
// a single reconciliation run.
type Transfer struct {
	Amount decimal.Decimal
	Date   time.Time
	Type   TransferType
	Memo   string
}

// NewTransfer constructs a Transfer. The date is normalized to UTC and an
// empty memo is replaced with a category-derived label.
func NewTransfer(amount decimal.Decimal, date time.Time, transferType TransferType, memo string) Transfer {
	if memo == "" {
		memo = fmt.Sprintf("Transfer Type: %s", transferType.Label())
	}
	return Transfer{
		Amount: amount,
		Date:   date.UTC(),
		Type:   transferType,
		Memo:   memo,
	}
}

// IsOlderThan reports whether the transfer predates the cutoff
func (t Transfer) IsOlderThan(cutoff time.Time) bool {
	return t.Date.Before(cutoff)
}

// SortTransfers orders transfers ascending by date. The sort is stable so
// same-instant transfers keep their collection order.
func SortTransfers(transfers []Transfer) {
	sort.SliceStable(transfers, func(i, j int) bool {
		return transfers[i].Date.Before(transfers[j].Date)
	})
}

// SignedAmount derives a signed amount from a two-way direction mapping:
// key == pos keeps the amount positive, key == neg negates it, and anything
// else is a data-integrity error. The sign is never defaulted.
func SignedAmount(amount decimal.Decimal, key, pos, neg string) (decimal.Decimal, error) {
	switch key {
	case pos:
		return amount, nil
	case neg:
		return amount.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: key %q matched neither %q nor %q",
			ErrUnmappedDirection, key, pos, neg)
	}
}

// eventTimeLayouts are the timestamp formats the brokerage emits. Dividends
// and sweeps carry date-only pay dates; everything else is RFC 3339.
var eventTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseEventTime parses an upstream ISO-8601 timestamp and normalizes it to
// UTC so transfers from every category sort on a single reference.
func ParseEventTime(value string) (time.Time, error) {
	for _, layout := range eventTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable event timestamp %q", value)
}
