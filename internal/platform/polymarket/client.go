// Package polymarket adapts the Polymarket Gamma API into the common
// normalized market view.
package polymarket

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

// GammaClient is the REST client for the Polymarket Gamma API, which
// provides event discovery, metadata, and pricing.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string) *GammaClient {
	return &GammaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListMarkets returns open events normalized to the common market view.
// Only active, unclosed events are requested.
func (g *GammaClient) ListMarkets(ctx context.Context, opts domain.ListOpts) ([]domain.NormalizedMarket, error) {
	params := url.Values{}
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("limit", strconv.Itoa(opts.Limit))
	params.Set("offset", strconv.Itoa(opts.Offset))

	path := "/events?" + params.Encode()

	body, err := g.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: list events: %w", err)
	}

	var events []APIEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode events: %w", err)
	}

	markets := make([]domain.NormalizedMarket, 0, len(events))
	for i := range events {
		markets = append(markets, Normalize(events[i]))
	}

	return markets, nil
}

// GetMarket returns a single event looked up by its URL slug.
func (g *GammaClient) GetMarket(ctx context.Context, slug string) (domain.NormalizedMarket, error) {
	path := fmt.Sprintf("/events/slug/%s", url.PathEscape(slug))

	body, err := g.doGet(ctx, path)
	if err != nil {
		return domain.NormalizedMarket{}, fmt.Errorf("polymarket/gamma: get event %s: %w", slug, err)
	}

	var event APIEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return domain.NormalizedMarket{}, fmt.Errorf("polymarket/gamma: decode event: %w", err)
	}

	return Normalize(event), nil
}

// Provider implements the adapter identity used by the market service.
func (g *GammaClient) Provider() domain.Provider {
	return domain.ProviderPolymarket
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
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
