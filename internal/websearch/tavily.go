// Package websearch enriches analysis prompts with recent news via the
// Tavily search API. Search is optional: a missing key or a failed call
// degrades to an empty context, never to a failed analysis.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/signalboard/signalboard/internal/domain"
)

// ClientConfig holds the Tavily API settings.
type ClientConfig struct {
	BaseURL    string // API root, e.g. "https://api.tavily.com"
	APIKey     string
	MaxResults int
	Topic      string // e.g. "news"
	Timeout    time.Duration
}

// Client calls the Tavily search API.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient creates a Tavily search client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.Topic == "" {
		cfg.Topic = "news"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Configured reports whether an API key is present. An unconfigured client
// fails every Search call with domain.ErrNoAPIKey so callers can skip
// enrichment cleanly.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Search runs one query and returns the top results plus Tavily's
// synthesized answer when available.
func (c *Client) Search(ctx context.Context, query string) (domain.SearchContext, error) {
	if !c.Configured() {
		return domain.SearchContext{}, fmt.Errorf("websearch: %w", domain.ErrNoAPIKey)
	}

	reqBody := struct {
		Query         string `json:"query"`
		MaxResults    int    `json:"max_results"`
		Topic         string `json:"topic"`
		IncludeAnswer bool   `json:"include_answer"`
	}{
		Query:         query,
		MaxResults:    c.cfg.MaxResults,
		Topic:         c.cfg.Topic,
		IncludeAnswer: true,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return domain.SearchContext{}, fmt.Errorf("websearch: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return domain.SearchContext{}, fmt.Errorf("websearch: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.SearchContext{}, fmt.Errorf("websearch: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return domain.SearchContext{}, fmt.Errorf("websearch: API error %d: %s", resp.StatusCode, string(respBody))
	}

	var decoded struct {
		Answer  string `json:"answer"`
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.SearchContext{}, fmt.Errorf("websearch: decode response: %w", err)
	}

	out := domain.SearchContext{Answer: decoded.Answer}
	for _, r := range decoded.Results {
		out.Results = append(out.Results, domain.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
		})
	}
	return out, nil
}
