package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexStrings unmarshals from a JSON array of strings or from a JSON string
// that itself contains an encoded array, e.g. "[\"0.62\",\"0.38\"]". The Gamma
// API uses both shapes for outcomes and outcomePrices depending on endpoint.
// Decoding happens here exactly once; everything downstream sees []string.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*f = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = nil
		return nil
	}
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		// Malformed encoded array degrades to empty, not to a failed event.
		*f = nil
		return nil
	}
	*f = arr
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string. Gamma sends
// volume as a string on some endpoints and a number on others.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(n)
	return nil
}

// APITag is a topic tag attached to a Gamma event.
type APITag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// APISubMarket is one entry of an event's "markets" array. For grouped events
// each sub-market represents a single outcome option identified by its
// groupItemTitle.
type APISubMarket struct {
	ID                 string      `json:"id"`
	Question           string      `json:"question"`
	Slug               string      `json:"slug"`
	Description        string      `json:"description"` // resolution rules for this outcome
	Outcomes           flexStrings `json:"outcomes"`
	OutcomePrices      flexStrings `json:"outcomePrices"`
	Volume             flexFloat   `json:"volume"`
	VolumeNum          float64     `json:"volumeNum"`
	Liquidity          flexFloat   `json:"liquidity"`
	LiquidityNum       float64     `json:"liquidityNum"`
	Volume24hr         float64     `json:"volume24hr"`
	EndDate            string      `json:"endDate"`
	StartDate          string      `json:"startDate"`
	BestBid            float64     `json:"bestBid"`
	BestAsk            float64     `json:"bestAsk"`
	LastTradePrice     float64     `json:"lastTradePrice"`
	OneDayPriceChange  float64     `json:"oneDayPriceChange"`
	OneHourPriceChange float64     `json:"oneHourPriceChange"`
	Competitive        float64     `json:"competitive"`
	ResolutionSource   string      `json:"resolutionSource"`
	GroupItemTitle     string      `json:"groupItemTitle"`
	GroupItemThreshold string      `json:"groupItemThreshold"`
	Active             *flexBool   `json:"active"`
	Closed             bool        `json:"closed"`
}

// inactive reports whether the sub-market is explicitly inactive. A missing
// "active" field counts as active.
func (m *APISubMarket) inactive() bool {
	return m.Active != nil && !bool(*m.Active)
}

// yesPrice and noPrice read the decoded outcomePrices pair, defaulting to 0.
func (m *APISubMarket) yesPrice() float64 {
	return priceAt(m.OutcomePrices, 0)
}

func (m *APISubMarket) noPrice() float64 {
	return priceAt(m.OutcomePrices, 1)
}

func priceAt(prices []string, i int) float64 {
	if i >= len(prices) {
		return 0
	}
	p, err := strconv.ParseFloat(prices[i], 64)
	if err != nil {
		return 0
	}
	return p
}

// APIEvent represents an event as returned by the Polymarket Gamma API.
// An event groups one or more related sub-markets.
type APIEvent struct {
	ID                 string         `json:"id"`
	Ticker             string         `json:"ticker"`
	Slug               string         `json:"slug"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	ResolutionSource   string         `json:"resolutionSource"`
	Active             flexBool       `json:"active"`
	Closed             bool           `json:"closed"`
	Volume             flexFloat      `json:"volume"`
	Volume24hr         float64        `json:"volume24hr"`
	Liquidity          flexFloat      `json:"liquidity"`
	Competitive        float64        `json:"competitive"`
	EndDate            string         `json:"endDate"`
	StartDate          string         `json:"startDate"`
	Markets            []APISubMarket `json:"markets"`
	Tags               []APITag       `json:"tags"`
	Outcomes           flexStrings    `json:"outcomes"`      // flat fallback when markets is empty
	OutcomePrices      flexStrings    `json:"outcomePrices"` // flat fallback when markets is empty
	BestBid            float64        `json:"bestBid"`
	BestAsk            float64        `json:"bestAsk"`
	LastTradePrice     float64        `json:"lastTradePrice"`
	OneDayPriceChange  float64        `json:"oneDayPriceChange"`
	OneHourPriceChange float64        `json:"oneHourPriceChange"`
}
