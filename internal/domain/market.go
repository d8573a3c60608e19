package domain

import (
	"fmt"
	"strings"
	"time"
)

// Provider identifies the upstream prediction-market platform a record came
// from. The set is closed; adapters and the URL resolver switch exhaustively
// over it.
type Provider string

const (
	ProviderPolymarket Provider = "polymarket"
	ProviderKalshi     Provider = "kalshi"
	ProviderSimmer     Provider = "simmer"
)

// Providers lists every supported provider in resolution precedence order.
var Providers = []Provider{ProviderPolymarket, ProviderKalshi, ProviderSimmer}

// ParseProvider validates a provider string from user input.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderPolymarket:
		return ProviderPolymarket, nil
	case ProviderKalshi:
		return ProviderKalshi, nil
	case ProviderSimmer:
		return ProviderSimmer, nil
	default:
		return "", fmt.Errorf("domain: %w: %q", ErrUnsupportedProvider, s)
	}
}

// Outcome is one resolvable branch of a market. For multi-outcome markets
// YesPrice is the market-implied probability of this branch winning.
type Outcome struct {
	Name           string  `json:"name"`
	YesPrice       float64 `json:"yesPrice"`
	NoPrice        float64 `json:"noPrice"`
	ResolutionRule string  `json:"resolutionRule,omitempty"`
	Active         bool    `json:"active"`
}

// NormalizedMarket is the provider-agnostic view of one market. Every price
// field is a probability in [0,1]; display layers multiply by 100 exactly
// once (see FormatPercent).
type NormalizedMarket struct {
	Provider    Provider  `json:"provider"`
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Question    string    `json:"question"`
	Description string    `json:"description"`
	Outcomes    []Outcome `json:"outcomes"`

	Volume           float64 `json:"volume"`
	Volume24hr       float64 `json:"volume24hr"`
	Liquidity        float64 `json:"liquidity"`
	CompetitiveScore float64 `json:"competitiveScore"`

	BestBid            float64 `json:"bestBid"`
	BestAsk            float64 `json:"bestAsk"`
	LastTradePrice     float64 `json:"lastTradePrice"`
	OneHourPriceChange float64 `json:"oneHourPriceChange"`
	OneDayPriceChange  float64 `json:"oneDayPriceChange"`

	Tags             []string   `json:"tags,omitempty"`
	ResolutionSource string     `json:"resolutionSource,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
}

// NoDescription is the placeholder substituted when a provider record has no
// usable description text.
const NoDescription = "No description available"

// ActiveOutcomes returns only the outcomes eligible for signal computation
// and display, preserving input order.
func (m NormalizedMarket) ActiveOutcomes() []Outcome {
	out := make([]Outcome, 0, len(m.Outcomes))
	for _, o := range m.Outcomes {
		if o.Active {
			out = append(out, o)
		}
	}
	return out
}

// OutcomeNames returns the names of all active outcomes in order.
func (m NormalizedMarket) OutcomeNames() []string {
	active := m.ActiveOutcomes()
	names := make([]string, 0, len(active))
	for _, o := range active {
		names = append(names, o.Name)
	}
	return names
}

// FormatPercent renders a probability as a whole percentage string. Zero and
// out-of-range values render as "N/A" since 0 is never a valid price. This is
// the single place probabilities are scaled for display.
func FormatPercent(p float64) string {
	if p <= 0 || p > 1 {
		return "N/A"
	}
	return fmt.Sprintf("%.0f%%", p*100)
}

// MarketRef identifies a market on one provider, as extracted from a URL.
type MarketRef struct {
	Provider   Provider `json:"provider"`
	Identifier string   `json:"identifier"`
}

// ScoredMarket pairs a normalized market with its search relevance score.
type ScoredMarket struct {
	Market NormalizedMarket `json:"market"`
	Score  float64          `json:"score"`
}

// ListOpts carries standard pagination parameters.
type ListOpts struct {
	Limit  int
	Offset int
}
