package domain

import "time"

// SignalResult is the validated output of one market analysis. Outcome always
// matches one key of Outcomes case-insensitively, and the Outcomes values sum
// to 100 after rescaling.
type SignalResult struct {
	Outcome             string             `json:"outcome"`
	Confidence          int                `json:"confidence"`
	Outcomes            map[string]int     `json:"outcomes"`
	Reasoning           string             `json:"reasoning"`
	ComparativeAnalysis string             `json:"comparativeAnalysis"`
}

// Analysis wraps a SignalResult with the request context it was produced for.
// Analyses are published on the signal bus, appended to the durable stream,
// and archived monthly.
type Analysis struct {
	ID        string       `json:"id"`
	Provider  Provider     `json:"provider"`
	MarketID  string       `json:"market_id"`
	Question  string       `json:"question"`
	Result    SignalResult `json:"result"`
	CreatedAt time.Time    `json:"created_at"`
}

// SearchContext carries optional web-search enrichment folded into the LLM
// prompt. A zero value means search was unavailable or disabled.
type SearchContext struct {
	Results []SearchResult `json:"results,omitempty"`
	Answer  string         `json:"answer,omitempty"`
}

// SearchResult is one document returned by the web search collaborator.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Empty reports whether the context contributes nothing to the prompt.
func (s SearchContext) Empty() bool {
	return len(s.Results) == 0 && s.Answer == ""
}
