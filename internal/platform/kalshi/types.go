package kalshi

// APIEvent represents an event as returned by the Kalshi trade API. Bid and
// ask quotes arrive in cents.
type APIEvent struct {
	EventTicker    string  `json:"event_ticker"`
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle"`
	ImageURL       string  `json:"image_url"`
	ExpirationTime string  `json:"expiration_time"`
	YesBid         float64 `json:"yes_bid"`
	NoBid          float64 `json:"no_bid"`
	YesAsk         float64 `json:"yes_ask"`
	NoAsk          float64 `json:"no_ask"`
	Volume         float64 `json:"volume"`
	OpenInterest   float64 `json:"open_interest"`
	Status         string  `json:"status"`
}
