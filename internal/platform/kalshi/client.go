// Package kalshi adapts the Kalshi trade API's public market data into the
// common normalized market view.
package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/signalboard/signalboard/internal/domain"
)

// Client is the REST client for the Kalshi trade API. Only public market
// data endpoints are used; no credentials are required, though Kalshi may
// answer 401 for some regions, which callers treat as "provider
// unavailable" rather than a fatal error.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Kalshi REST client.
//
// baseURL is the API root, e.g. "https://api.elections.kalshi.com/trade-api/v2".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListMarkets returns open events normalized to the common market view.
func (c *Client) ListMarkets(ctx context.Context, opts domain.ListOpts) ([]domain.NormalizedMarket, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(opts.Limit))
	params.Set("status", "open")

	path := "/events?" + params.Encode()

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("kalshi: list events: %w", err)
	}

	var resp struct {
		Events []APIEvent `json:"events"`
		Cursor string     `json:"cursor"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kalshi: decode events: %w", err)
	}

	markets := make([]domain.NormalizedMarket, 0, len(resp.Events))
	for i := range resp.Events {
		markets = append(markets, Normalize(resp.Events[i]))
	}

	return markets, nil
}

// GetMarket returns a single event by its ticker.
func (c *Client) GetMarket(ctx context.Context, ticker string) (domain.NormalizedMarket, error) {
	path := fmt.Sprintf("/events/%s", url.PathEscape(ticker))

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.NormalizedMarket{}, fmt.Errorf("kalshi: get event %s: %w", ticker, err)
	}

	var resp struct {
		Event APIEvent `json:"event"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.NormalizedMarket{}, fmt.Errorf("kalshi: decode event: %w", err)
	}

	return Normalize(resp.Event), nil
}

// Provider implements the adapter identity used by the market service.
func (c *Client) Provider() domain.Provider {
	return domain.ProviderKalshi
}

// doGet sends an unauthenticated GET request to the trade API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
