package robinhood

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/simaogato/brokersync/internal/domain"
)

const (
	// DefaultBaseURL is the production brokerage API host
	DefaultBaseURL = "https://api.robinhood.com"

	maxRetries = 4

	positionsPath      = "/positions/"
	cryptoHoldingsPath = "/nummus/holdings/"
	transfersPath      = "/ach/transfers/"
	receivedPath       = "/ach/received/transfers/"
	cardPath           = "/minerva/history/transactions/"
	ordersPath         = "/orders/"
	dividendsPath      = "/dividends/"
	sweepsPath         = "/sweeps/"
)

// Client is a bearer-token REST client for the brokerage API, implementing
// domain.Brokerage. Runs are single-threaded; the client is not safe for
// concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	// instruments caches resolved instrument refs; valuation and order
	// mapping hit the same handful of instruments repeatedly
	instruments map[string]*domain.Instrument
}

// check it meets the interface
var _ domain.Brokerage = (*Client)(nil)

// NewClient creates a new brokerage Client. A nil httpClient falls back to
// a default with a request timeout.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		http:        httpClient,
		instruments: make(map[string]*domain.Instrument),
	}
}

// ListPositions retrieves every equity position on the account
func (c *Client) ListPositions(ctx context.Context) ([]domain.Position, error) {
	rows, err := listPages[positionRow](ctx, c, positionsPath)
	if err != nil {
		return nil, err
	}

	positions := make([]domain.Position, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, domain.Position{
			InstrumentRef: row.Instrument,
			Quantity:      row.Quantity,
		})
	}
	return positions, nil
}

// GetInstrument resolves an instrument reference to its symbol and state.
// Refs arrive as absolute URLs in upstream rows; relative paths are joined
// onto the base URL.
func (c *Client) GetInstrument(ctx context.Context, ref string) (*domain.Instrument, error) {
	if cached, ok := c.instruments[ref]; ok {
		return cached, nil
	}

	url := ref
	if !strings.HasPrefix(url, "http") {
		url = c.baseURL + url
	}

	var row instrumentRow
	if err := c.getJSON(ctx, url, &row); err != nil {
		return nil, err
	}

	instrument := &domain.Instrument{Symbol: row.Symbol, State: row.State}
	c.instruments[ref] = instrument
	return instrument, nil
}

// GetQuote retrieves the current price quote for a symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	var row quoteRow
	if err := c.getJSON(ctx, fmt.Sprintf("%s/quotes/%s/", c.baseURL, symbol), &row); err != nil {
		return nil, err
	}
	return &domain.Quote{
		LastTradePrice:         row.LastTradePrice,
		LastExtendedHoursPrice: row.LastExtendedHoursTradePrice,
	}, nil
}

// ListCryptoHoldings retrieves every crypto position on the account
func (c *Client) ListCryptoHoldings(ctx context.Context) ([]domain.CryptoHolding, error) {
	rows, err := listPages[cryptoHoldingRow](ctx, c, cryptoHoldingsPath)
	if err != nil {
		return nil, err
	}

	holdings := make([]domain.CryptoHolding, 0, len(rows))
	for _, row := range rows {
		holdings = append(holdings, domain.CryptoHolding{
			CurrencyCode:      row.Currency.Code,
			QuantityAvailable: row.QuantityAvailable,
		})
	}
	return holdings, nil
}

// GetCryptoQuote retrieves the current market price for a crypto currency
// code, quoted against USD
func (c *Client) GetCryptoQuote(ctx context.Context, code string) (*domain.CryptoQuote, error) {
	var row cryptoQuoteRow
	url := fmt.Sprintf("%s/marketdata/forex/quotes/%sUSD/", c.baseURL, code)
	if err := c.getJSON(ctx, url, &row); err != nil {
		return nil, err
	}
	return &domain.CryptoQuote{MarkPrice: row.MarkPrice}, nil
}

// ListTransfers retrieves transfers initiated from within the brokerage
func (c *Client) ListTransfers(ctx context.Context) ([]domain.AccountTransfer, error) {
	rows, err := listPages[transferRow](ctx, c, transfersPath)
	if err != nil {
		return nil, err
	}

	transfers := make([]domain.AccountTransfer, 0, len(rows))
	for _, row := range rows {
		createdAt, err := domain.ParseEventTime(row.CreatedAt)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, domain.AccountTransfer{
			Amount:    row.Amount,
			Direction: row.Direction,
			CreatedAt: createdAt,
		})
	}
	return transfers, nil
}

// ListReceivedTransfers retrieves transfers initiated from outside accounts
func (c *Client) ListReceivedTransfers(ctx context.Context) ([]domain.ReceivedTransfer, error) {
	rows, err := listPages[receivedTransferRow](ctx, c, receivedPath)
	if err != nil {
		return nil, err
	}

	transfers := make([]domain.ReceivedTransfer, 0, len(rows))
	for _, row := range rows {
		createdAt, err := domain.ParseEventTime(row.CreatedAt)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, domain.ReceivedTransfer{
			Amount:       row.Amount.Amount,
			CurrencyCode: row.Amount.CurrencyCode,
			Direction:    row.Direction,
			CreatedAt:    createdAt,
		})
	}
	return transfers, nil
}

// ListSettledTransactions retrieves debit-card transaction history
func (c *Client) ListSettledTransactions(ctx context.Context) ([]domain.CardTransaction, error) {
	rows, err := listPages[cardTransactionRow](ctx, c, cardPath)
	if err != nil {
		return nil, err
	}

	transactions := make([]domain.CardTransaction, 0, len(rows))
	for _, row := range rows {
		initiatedAt, err := domain.ParseEventTime(row.InitiatedAt)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, domain.CardTransaction{
			Amount:       row.Amount.Amount,
			CurrencyCode: row.Amount.CurrencyCode,
			Direction:    row.Direction,
			SourceType:   row.SourceType,
			InitiatedAt:  initiatedAt,
		})
	}
	return transactions, nil
}

// ListOrders retrieves stock order history
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := listPages[orderRow](ctx, c, ordersPath)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		order := domain.Order{
			InstrumentRef: row.Instrument,
			State:         row.State,
			Side:          row.Side,
		}
		// Unfilled orders carry empty or zero timestamps; only parse what
		// the normalizer will actually consume
		if row.LastTransactionAt != "" {
			lastTransactionAt, err := domain.ParseEventTime(row.LastTransactionAt)
			if err != nil {
				return nil, err
			}
			order.LastTransactionAt = lastTransactionAt
		}
		for _, execution := range row.Executions {
			order.Executions = append(order.Executions, domain.Execution{
				Price:    execution.Price,
				Quantity: execution.Quantity,
			})
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// ListDividends retrieves dividend payout history
func (c *Client) ListDividends(ctx context.Context) ([]domain.Dividend, error) {
	rows, err := listPages[dividendRow](ctx, c, dividendsPath)
	if err != nil {
		return nil, err
	}

	dividends := make([]domain.Dividend, 0, len(rows))
	for _, row := range rows {
		dividend := domain.Dividend{
			InstrumentRef: row.Instrument,
			State:         row.State,
			Amount:        row.Amount,
		}
		// Unpaid dividends have no pay date yet
		if row.PaidAt != "" {
			paidAt, err := domain.ParseEventTime(row.PaidAt)
			if err != nil {
				return nil, err
			}
			dividend.PaidAt = paidAt
		}
		dividends = append(dividends, dividend)
	}
	return dividends, nil
}

// ListSweeps retrieves interest payments on swept cash
func (c *Client) ListSweeps(ctx context.Context) ([]domain.Sweep, error) {
	rows, err := listPages[sweepRow](ctx, c, sweepsPath)
	if err != nil {
		return nil, err
	}

	sweeps := make([]domain.Sweep, 0, len(rows))
	for _, row := range rows {
		payDate, err := domain.ParseEventTime(row.PayDate)
		if err != nil {
			return nil, err
		}
		sweeps = append(sweeps, domain.Sweep{
			Amount:       row.Amount.Amount,
			CurrencyCode: row.Amount.CurrencyCode,
			Direction:    row.Direction,
			PayDate:      payDate,
		})
	}
	return sweeps, nil
}

// listPages fetches a paginated collection endpoint, following next cursors
// until exhausted
func listPages[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	next := c.baseURL + path
	for next != "" {
		var page struct {
			Results []T    `json:"results"`
			Next    string `json:"next"`
		}
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Results...)
		next = page.Next
	}
	return out, nil
}

// getJSON performs an authenticated GET and decodes the response body,
// retrying transient failures (network errors, 5xx) with exponential
// backoff. Client errors are permanent.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("brokerage returned status %d: %s", resp.StatusCode, body)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("brokerage returned status %d: %s", resp.StatusCode, body))
		}

		if err := json.Unmarshal(body, v); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode brokerage response: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.Retry(operation, policy)
}
