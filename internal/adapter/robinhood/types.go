package robinhood

import "github.com/shopspring/decimal"

// Wire types for the brokerage REST API. Quantities and prices come over the
// wire as decimal strings; shopspring/decimal unmarshals them directly.

// moneyRow is the nested amount object carried by cash-management rows
type moneyRow struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
}

type positionRow struct {
	Instrument string          `json:"instrument"`
	Quantity   decimal.Decimal `json:"quantity"`
}

type instrumentRow struct {
	Symbol string `json:"symbol"`
	State  string `json:"state"`
}

type quoteRow struct {
	LastTradePrice              decimal.Decimal  `json:"last_trade_price"`
	LastExtendedHoursTradePrice *decimal.Decimal `json:"last_extended_hours_trade_price"`
}

type cryptoHoldingRow struct {
	Currency struct {
		Code string `json:"code"`
	} `json:"currency"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
}

type cryptoQuoteRow struct {
	MarkPrice decimal.Decimal `json:"mark_price"`
}

type transferRow struct {
	Amount    decimal.Decimal `json:"amount"`
	Direction string          `json:"direction"`
	CreatedAt string          `json:"created_at"`
}

type receivedTransferRow struct {
	Amount    moneyRow `json:"amount"`
	Direction string   `json:"direction"`
	CreatedAt string   `json:"created_at"`
}

type cardTransactionRow struct {
	Amount      moneyRow `json:"amount"`
	Direction   string   `json:"direction"`
	SourceType  string   `json:"source_type"`
	InitiatedAt string   `json:"initiated_at"`
}

type executionRow struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

type orderRow struct {
	Instrument        string         `json:"instrument"`
	State             string         `json:"state"`
	Side              string         `json:"side"`
	Executions        []executionRow `json:"executions"`
	LastTransactionAt string         `json:"last_transaction_at"`
}

type dividendRow struct {
	Instrument string          `json:"instrument"`
	State      string          `json:"state"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     string          `json:"paid_at"`
}

type sweepRow struct {
	Amount    moneyRow `json:"amount"`
	Direction string   `json:"direction"`
	PayDate   string   `json:"pay_date"`
}
