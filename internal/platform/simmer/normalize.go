package simmer

import (
	"strings"
	"time"

	"github.com/signalboard/signalboard/internal/domain"
)

// Normalize converts a Simmer market into the provider-agnostic view. Simmer
// markets are binary with a single probability field: the Yes outcome takes
// it directly and the No outcome takes its complement, with last-trade
// semantics flipped the same way.
func Normalize(m APIMarket) domain.NormalizedMarket {
	yesPrice := m.Probability
	noPrice := 1 - m.Probability
	active := m.Status == "active"

	nm := domain.NormalizedMarket{
		Provider:       domain.ProviderSimmer,
		ID:             m.ID,
		Slug:           m.ID,
		Question:       m.Question,
		Description:    description(m),
		Volume:         m.TotalVolume,
		Liquidity:      m.LiquidityParam,
		LastTradePrice: yesPrice,
		Tags:           m.Tags,
		Outcomes: []domain.Outcome{
			{Name: "Yes", YesPrice: yesPrice, NoPrice: noPrice, ResolutionRule: m.ResolutionCriteria, Active: active},
			{Name: "No", YesPrice: noPrice, NoPrice: yesPrice, ResolutionRule: m.ResolutionCriteria, Active: active},
		},
	}
	if nm.Question == "" {
		nm.Question = "No question available"
	}
	if len(m.SourceURLs) > 0 {
		nm.ResolutionSource = strings.Join(m.SourceURLs, ", ")
	}
	if t, err := time.Parse(time.RFC3339, m.ResolvesAt); err == nil {
		nm.EndDate = &t
	}
	return nm
}

// description prefers the market context over the resolution criteria, the
// same order the detail view uses.
func description(m APIMarket) string {
	if m.Context != "" {
		return m.Context
	}
	if m.ResolutionCriteria != "" {
		return m.ResolutionCriteria
	}
	return domain.NoDescription
}
