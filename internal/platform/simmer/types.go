package simmer

// APIMarket represents a market as returned by the Simmer API. Probability
// fields are already in [0,1].
type APIMarket struct {
	ID                 string   `json:"id"`
	Question           string   `json:"question"`
	Context            string   `json:"context"`
	ResolutionCriteria string   `json:"resolution_criteria"`
	Status             string   `json:"status"` // initializing, active, resolved, disputed, cancelled
	Probability        float64  `json:"probability"`
	CurrentProbability float64  `json:"current_probability"`
	InitialProbability float64  `json:"initial_probability"`
	TotalVolume        float64  `json:"total_volume"`
	LiquidityParam     float64  `json:"liquidity_param"`
	SharesYes          float64  `json:"shares_yes"`
	SharesNo           float64  `json:"shares_no"`
	CreatedAt          string   `json:"created_at"`
	ResolvesAt         string   `json:"resolves_at"`
	SourceURLs         []string `json:"source_urls"`
	Tags               []string `json:"tags"`
}
