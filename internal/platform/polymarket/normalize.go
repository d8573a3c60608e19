package polymarket

import (
	"time"

	"github.com/signalboard/signalboard/internal/domain"
)

// Normalize converts a Gamma APIEvent into the provider-agnostic market view.
// It never fails: missing or malformed fields degrade to documented defaults
// so one bad record cannot sink a whole listing.
func Normalize(e APIEvent) domain.NormalizedMarket {
	m := domain.NormalizedMarket{
		Provider:         domain.ProviderPolymarket,
		ID:               e.ID,
		Slug:             e.Slug,
		Question:         e.Title,
		Description:      e.Description,
		Volume:           float64(e.Volume),
		Volume24hr:       e.Volume24hr,
		Liquidity:        float64(e.Liquidity),
		CompetitiveScore: e.Competitive,
		ResolutionSource: e.ResolutionSource,
	}
	if m.Question == "" {
		m.Question = "Unknown"
	}
	if m.Description == "" {
		m.Description = domain.NoDescription
	}
	for _, tag := range e.Tags {
		if tag.Label != "" {
			m.Tags = append(m.Tags, tag.Label)
		}
	}
	if t, err := time.Parse(time.RFC3339, e.EndDate); err == nil {
		m.EndDate = &t
	}

	if len(e.Markets) > 0 {
		m.Outcomes = groupedOutcomes(e.Markets)

		// The first sub-market supplies the primary pricing fields.
		primary := &e.Markets[0]
		m.BestBid = primary.BestBid
		m.BestAsk = primary.BestAsk
		m.LastTradePrice = primary.LastTradePrice
		m.OneDayPriceChange = primary.OneDayPriceChange
		m.OneHourPriceChange = primary.OneHourPriceChange
		return m
	}

	// No grouped sub-markets: fall back to the flat outcomes list paired with
	// the flat outcomePrices, then pricing from the top-level record.
	m.Outcomes = flatOutcomes(e.Outcomes, e.OutcomePrices)
	m.BestBid = e.BestBid
	m.BestAsk = e.BestAsk
	m.LastTradePrice = e.LastTradePrice
	m.OneDayPriceChange = e.OneDayPriceChange
	m.OneHourPriceChange = e.OneHourPriceChange
	return m
}

// groupedOutcomes builds one outcome per sub-market that carries a group item
// title and is not explicitly inactive, preserving input order. The
// sub-market description holds that outcome's resolution rules.
func groupedOutcomes(markets []APISubMarket) []domain.Outcome {
	outcomes := make([]domain.Outcome, 0, len(markets))
	for i := range markets {
		sm := &markets[i]
		if sm.GroupItemTitle == "" || sm.inactive() {
			continue
		}
		outcomes = append(outcomes, domain.Outcome{
			Name:           sm.GroupItemTitle,
			YesPrice:       sm.yesPrice(),
			NoPrice:        sm.noPrice(),
			ResolutionRule: sm.Description,
			Active:         true,
		})
	}
	return outcomes
}

// flatOutcomes pairs outcome names with prices by index. Names without a
// matching price get 0; for the common binary pair the second price doubles
// as the first outcome's no-side.
func flatOutcomes(names, prices []string) []domain.Outcome {
	outcomes := make([]domain.Outcome, 0, len(names))
	for i, name := range names {
		o := domain.Outcome{
			Name:     name,
			YesPrice: priceAt(prices, i),
			Active:   true,
		}
		if len(names) == 2 {
			o.NoPrice = priceAt(prices, 1-i)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}
