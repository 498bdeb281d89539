// Package kalshi talks to the Kalshi trade API v2: market listings, per-market
// status and order placement. Auth is a static bearer token.
package kalshi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/kalshibot/internal/types"
)

const (
	DemoAPI = "https://demo.kalshi.com/trade-api/v2"
)

var hundred = decimal.NewFromInt(100)

// APIError is a non-2xx response from the API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client is a minimal Kalshi REST client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client; timeout bounds every request
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DemoAPI
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// MARKETS
// ═══════════════════════════════════════════════════════════════════════════════

// marketJSON is the wire shape; prices are integer cents
type marketJSON struct {
	Ticker      string           `json:"ticker"`
	EventTicker string           `json:"event_ticker"`
	Status      string           `json:"status"`
	YesPrice    *decimal.Decimal `json:"yes_price"`
	NoPrice     *decimal.Decimal `json:"no_price"`
	Result      string           `json:"result"`
	SettledSide string           `json:"settled_side"`
}

// ListMarkets returns the markets matching the event ticker suffix. Sides
// with a missing or out-of-range price are left zero so the scanner skips them.
func (c *Client) ListMarkets(ctx context.Context, suffix string) ([]types.MarketQuote, error) {
	q := url.Values{}
	if suffix != "" {
		q.Set("event_ticker_suffix", suffix)
	}
	path := "/markets"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Markets []marketJSON `json:"markets"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse markets: %w", err)
	}

	quotes := make([]types.MarketQuote, 0, len(resp.Markets))
	for _, m := range resp.Markets {
		if m.Ticker == "" {
			log.Debug().Msg("Skipping market without ticker")
			continue
		}
		quotes = append(quotes, types.MarketQuote{
			Ticker:   m.Ticker,
			YesPrice: centsToProb(m.YesPrice),
			NoPrice:  centsToProb(m.NoPrice),
		})
	}

	log.Debug().Str("suffix", suffix).Int("markets", len(quotes)).Msg("Fetched markets")
	return quotes, nil
}

// GetMarket returns the status of one market. Both the documented
// {"market": {...}} envelope and a bare market object are accepted.
func (c *Client) GetMarket(ctx context.Context, ticker string) (types.MarketStatus, error) {
	body, err := c.get(ctx, "/markets/"+url.PathEscape(ticker))
	if err != nil {
		return types.MarketStatus{}, err
	}

	var envelope struct {
		Market *marketJSON `json:"market"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return types.MarketStatus{}, fmt.Errorf("parse market %s: %w", ticker, err)
	}
	m := envelope.Market
	if m == nil {
		m = &marketJSON{}
		if err := json.Unmarshal(body, m); err != nil {
			return types.MarketStatus{}, fmt.Errorf("parse market %s: %w", ticker, err)
		}
	}

	status := types.MarketStatus{Ticker: ticker, Status: types.StatusOpen}
	if !isSettled(m.Status) {
		return status, nil
	}
	status.Status = types.StatusSettled

	raw := m.SettledSide
	if raw == "" {
		raw = m.Result
	}
	side, err := types.ParseSide(raw)
	if err != nil {
		return types.MarketStatus{}, fmt.Errorf("market %s settled without a side: %w", ticker, err)
	}
	status.SettledSide = side
	return status, nil
}

func isSettled(status string) bool {
	switch strings.ToLower(status) {
	case "resolved", "settled", "finalized", "determined":
		return true
	}
	return false
}

// centsToProb maps 1..100 cents to (0,1]; anything else becomes zero (invalid)
func centsToProb(cents *decimal.Decimal) decimal.Decimal {
	if cents == nil {
		return decimal.Zero
	}
	p := cents.Div(hundred)
	if !types.ValidPrice(p) {
		return decimal.Zero
	}
	return p
}

// ═══════════════════════════════════════════════════════════════════════════════
// ORDERS
// ═══════════════════════════════════════════════════════════════════════════════

type orderRequest struct {
	Ticker        string `json:"ticker"`
	Side          string `json:"side"`
	Action        string `json:"action"`
	Type          string `json:"type"`
	Count         int64  `json:"count"`
	ClientOrderID string `json:"client_order_id"`
}

// PlaceOrder submits a market buy for count contracts of side
func (c *Client) PlaceOrder(ctx context.Context, ticker string, side types.Side, count int64) (*types.OrderResult, error) {
	req := orderRequest{
		Ticker:        ticker,
		Side:          string(side),
		Action:        "buy",
		Type:          "market",
		Count:         count,
		ClientOrderID: uuid.NewString(),
	}

	body, err := c.post(ctx, "/portfolio/orders", req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Order struct {
			OrderID string `json:"order_id"`
			Status  string `json:"status"`
		} `json:"order"`
	}
	// A 2xx means the exchange has the order; an unreadable body must not undo that.
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Warn().
			Err(err).
			Str("client_order_id", req.ClientOrderID).
			Str("market", ticker).
			Msg("⚠️ Order accepted but response unreadable, using client order id")
		return &types.OrderResult{OrderID: req.ClientOrderID, Accepted: true}, nil
	}

	orderID := resp.Order.OrderID
	if orderID == "" {
		orderID = req.ClientOrderID
	}
	return &types.OrderResult{OrderID: orderID, Accepted: true, Status: resp.Order.Status}, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// HTTP HELPERS
// ═══════════════════════════════════════════════════════════════════════════════

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.addHeaders(req)
	return c.doRequest(req)
}

func (c *Client) post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req)
	return c.doRequest(req)
}

func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) doRequest(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
