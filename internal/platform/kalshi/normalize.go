package kalshi

import (
	"time"

	"github.com/signalboard/signalboard/internal/domain"
)

// centsScale converts Kalshi's cent-denominated quotes into probabilities.
// The division happens here exactly once; everything downstream works in
// [0,1] like the other providers.
const centsScale = 100.0

// Normalize converts a Kalshi event into the provider-agnostic market view.
// Kalshi markets are always binary, so two synthetic Yes/No outcomes are
// generated from the bid quotes.
func Normalize(e APIEvent) domain.NormalizedMarket {
	yesPrice := e.YesBid / centsScale
	noPrice := e.NoBid / centsScale
	active := e.Status == "" || e.Status == "open" || e.Status == "active"

	m := domain.NormalizedMarket{
		Provider:    domain.ProviderKalshi,
		ID:          e.EventTicker,
		Slug:        e.EventTicker,
		Question:    e.Title,
		Description: e.Subtitle,
		Volume:      e.Volume,
		Liquidity:   e.OpenInterest,
		BestBid:     yesPrice,
		BestAsk:     e.YesAsk / centsScale,
		Outcomes: []domain.Outcome{
			{Name: "Yes", YesPrice: yesPrice, NoPrice: noPrice, Active: active},
			{Name: "No", YesPrice: noPrice, NoPrice: yesPrice, Active: active},
		},
	}
	if m.Question == "" {
		m.Question = "No title available"
	}
	if m.Description == "" {
		m.Description = domain.NoDescription
	}
	if t, err := time.Parse(time.RFC3339, e.ExpirationTime); err == nil {
		m.EndDate = &t
	}
	return m
}
