package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/simaogato/brokersync/internal/domain"
)

const (
	// DefaultBaseURL is the production ledger API host
	DefaultBaseURL = "https://api.ynab.com/v1"

	// defaultPayee labels entries this sync creates
	defaultPayee = "Robinhood"

	// dateLayout is the ledger's date-only wire format
	dateLayout = "2006-01-02"

	maxRetries = 4
)

// Client is a bearer-token REST client for the budgeting-ledger API,
// implementing domain.Ledger
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// check it meets the interface
var _ domain.Ledger = (*Client)(nil)

// NewClient creates a new ledger Client. A nil httpClient falls back to a
// default with a request timeout.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// DefaultBudget retrieves the first budget on the token, the ledger's
// "last used" convention for single-budget accounts
func (c *Client) DefaultBudget(ctx context.Context) (*domain.Budget, error) {
	var resp budgetsResponse
	if err := c.do(ctx, http.MethodGet, "/budgets", nil, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data.Budgets) == 0 {
		return nil, errors.New("ledger returned no budgets for this token")
	}

	first := resp.Data.Budgets[0]
	return &domain.Budget{ID: first.ID, Name: first.Name}, nil
}

// FindAccountByName retrieves the budget's account with the given name
func (c *Client) FindAccountByName(ctx context.Context, budgetID uuid.UUID, name string) (*domain.Account, error) {
	var resp accountsResponse
	path := fmt.Sprintf("/budgets/%s/accounts", budgetID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	for _, row := range resp.Data.Accounts {
		if row.Name == name {
			return &domain.Account{ID: row.ID, Name: row.Name, Balance: row.Balance}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrAccountNotFound, name)
}

// ListTransactions retrieves transactions on an account dated on or after
// since. Soft-deleted rows are returned with Deleted set; callers filter.
func (c *Client) ListTransactions(ctx context.Context, budgetID, accountID uuid.UUID, since time.Time) ([]domain.LedgerTransaction, error) {
	var resp transactionsResponse
	path := fmt.Sprintf("/budgets/%s/accounts/%s/transactions?since_date=%s",
		budgetID, accountID, since.UTC().Format(dateLayout))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	transactions := make([]domain.LedgerTransaction, 0, len(resp.Data.Transactions))
	for _, row := range resp.Data.Transactions {
		date, err := time.Parse(dateLayout, row.Date)
		if err != nil {
			return nil, fmt.Errorf("unparseable transaction date %q: %w", row.Date, err)
		}
		transactions = append(transactions, domain.LedgerTransaction{
			ID:      row.ID,
			Amount:  row.Amount,
			Date:    date.UTC(),
			Memo:    row.Memo,
			Deleted: row.Deleted,
		})
	}
	return transactions, nil
}

// CreateTransaction creates a cleared transaction on the budget and returns
// the created row. The dollar amount is converted to milliunits on the wire.
func (c *Client) CreateTransaction(ctx context.Context, budgetID uuid.UUID, entry domain.NewEntry) (*domain.LedgerTransaction, error) {
	date := entry.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	request := saveTransactionRequest{
		Transaction: saveTransaction{
			AccountID: entry.AccountID,
			Date:      date.UTC().Format(dateLayout),
			Amount:    domain.Milliunits(entry.Amount),
			Memo:      entry.Memo,
			PayeeName: defaultPayee,
			Cleared:   "cleared",
			Approved:  entry.Approved,
		},
	}

	var resp saveTransactionResponse
	path := fmt.Sprintf("/budgets/%s/transactions", budgetID)
	if err := c.do(ctx, http.MethodPost, path, request, &resp); err != nil {
		return nil, err
	}

	created := resp.Data.Transaction
	createdDate, err := time.Parse(dateLayout, created.Date)
	if err != nil {
		return nil, fmt.Errorf("unparseable transaction date %q: %w", created.Date, err)
	}
	return &domain.LedgerTransaction{
		ID:      created.ID,
		Amount:  created.Amount,
		Date:    createdDate.UTC(),
		Memo:    created.Memo,
		Deleted: created.Deleted,
	}, nil
}

// do performs an authenticated request and decodes the response, retrying
// transient failures (network errors, 5xx) with exponential backoff. Client
// errors are permanent.
func (c *Client) do(ctx context.Context, method, path string, payload, v any) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = encoded
	}

	operation := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= 500 && method == http.MethodGet:
			return fmt.Errorf("ledger returned status %d: %s", resp.StatusCode, respBody)
		case resp.StatusCode >= 400:
			// Entry creation is not idempotent upstream, so writes are
			// never retried on 5xx
			return backoff.Permanent(fmt.Errorf("ledger returned status %d: %s", resp.StatusCode, respBody))
		}

		if err := json.Unmarshal(respBody, v); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode ledger response: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.Retry(operation, policy)
}
