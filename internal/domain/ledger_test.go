package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccount_BalanceDollars(t *testing.T) {
	account := Account{Balance: 5400000} // $5,400.00 in milliunits

	assert.True(t, account.BalanceDollars().Equal(decimal.NewFromInt(5400)))
}

func TestLedgerTransaction_DollarAmount(t *testing.T) {
	transaction := LedgerTransaction{Amount: -75010}

	assert.True(t, transaction.DollarAmount().Equal(decimal.NewFromFloat(-75.01)))
}

func TestMilliunits(t *testing.T) {
	tests := []struct {
		name    string
		dollars decimal.Decimal
		want    int64
	}{
		{"whole dollars", decimal.NewFromInt(100), 100000},
		{"cents", decimal.NewFromFloat(250.25), 250250},
		{"negative", decimal.NewFromFloat(-75.00), -75000},
		{"sub-milliunit rounds", decimal.NewFromFloat(0.0015), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Milliunits(tt.dollars))
		})
	}
}

func TestMilliunits_RoundTrips(t *testing.T) {
	amount := decimal.NewFromFloat(123.45)

	back := LedgerTransaction{Amount: Milliunits(amount)}.DollarAmount()

	assert.True(t, back.Equal(amount))
}
