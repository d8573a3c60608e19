// Package simmer adapts the Simmer markets API into the common normalized
// market view. Requests are HMAC-signed when credentials are configured.
package simmer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/signalboard/signalboard/internal/crypto"
	"github.com/signalboard/signalboard/internal/domain"
)

// Client is the REST client for the Simmer markets API.
type Client struct {
	baseURL    string
	auth       *crypto.HMACAuth
	httpClient *http.Client
}

// NewClient creates a new Simmer REST client.
//
// baseURL is the API root, e.g. "https://api.simmer.markets/api". auth may
// be nil or unconfigured, in which case requests go out unsigned.
func NewClient(baseURL string, auth *crypto.HMACAuth) *Client {
	return &Client{
		baseURL: baseURL,
		auth:    auth,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListMarkets returns active markets normalized to the common view. Markets
// in any other lifecycle state (initializing, resolved, disputed, cancelled)
// are filtered out.
func (c *Client) ListMarkets(ctx context.Context, opts domain.ListOpts) ([]domain.NormalizedMarket, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(opts.Limit))

	path := "/markets?" + params.Encode()

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("simmer: list markets: %w", err)
	}

	var resp struct {
		Markets []APIMarket `json:"markets"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("simmer: decode markets: %w", err)
	}

	markets := make([]domain.NormalizedMarket, 0, len(resp.Markets))
	for i := range resp.Markets {
		if resp.Markets[i].Status != "active" {
			continue
		}
		markets = append(markets, Normalize(resp.Markets[i]))
	}

	return markets, nil
}

// GetMarket returns a single market by its UUID.
func (c *Client) GetMarket(ctx context.Context, id string) (domain.NormalizedMarket, error) {
	path := fmt.Sprintf("/markets/%s", url.PathEscape(id))

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.NormalizedMarket{}, fmt.Errorf("simmer: get market %s: %w", id, err)
	}

	var market APIMarket
	if err := json.Unmarshal(body, &market); err != nil {
		return domain.NormalizedMarket{}, fmt.Errorf("simmer: decode market: %w", err)
	}

	return Normalize(market), nil
}

// Provider implements the adapter identity used by the market service.
func (c *Client) Provider() domain.Provider {
	return domain.ProviderSimmer
}

// doGet sends a GET request, attaching HMAC auth headers when configured.
// The signature covers the path without the query string, matching what the
// Simmer API verifies.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.auth.Configured() {
		signPath, _, _ := strings.Cut(path, "?")
		for k, v := range c.auth.Headers(http.MethodGet, signPath, "") {
			req.Header.Set(k, v)
		}
	}

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
