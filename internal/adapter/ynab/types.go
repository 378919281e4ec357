package ynab

import "github.com/google/uuid"

// Wire types for the ledger REST API. Every response nests its payload
// under "data"; amounts and balances are integer milliunits.

type budgetRow struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type budgetsResponse struct {
	Data struct {
		Budgets []budgetRow `json:"budgets"`
	} `json:"data"`
}

type accountRow struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Balance int64     `json:"balance"`
}

type accountsResponse struct {
	Data struct {
		Accounts []accountRow `json:"accounts"`
	} `json:"data"`
}

type transactionRow struct {
	ID      uuid.UUID `json:"id"`
	Date    string    `json:"date"`
	Amount  int64     `json:"amount"`
	Memo    string    `json:"memo"`
	Deleted bool      `json:"deleted"`
}

type transactionsResponse struct {
	Data struct {
		Transactions []transactionRow `json:"transactions"`
	} `json:"data"`
}

type saveTransaction struct {
	AccountID uuid.UUID `json:"account_id"`
	Date      string    `json:"date"`
	Amount    int64     `json:"amount"`
	Memo      string    `json:"memo,omitempty"`
	PayeeName string    `json:"payee_name"`
	Cleared   string    `json:"cleared"`
	Approved  bool      `json:"approved"`
}

type saveTransactionRequest struct {
	Transaction saveTransaction `json:"transaction"`
}

type saveTransactionResponse struct {
	Data struct {
		Transaction transactionRow `json:"transaction"`
	} `json:"data"`
}
