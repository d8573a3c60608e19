package search

import (
	"strings"
	"testing"

	"github.com/signalboard/signalboard/internal/domain"
)

func market(title, desc string) domain.NormalizedMarket {
	return domain.NormalizedMarket{Question: title, Description: desc}
}

func scoreOf(title, desc, query string) float64 {
	words := strings.Fields(strings.ToLower(query))
	return Score(market(title, desc), strings.Join(words, " "), words)
}

func TestScoreTiers(t *testing.T) {
	// All titles are >= 50 chars so the short-title bonus stays out of the way.
	pad := strings.Repeat(" padding padding padding padding", 2)

	tests := []struct {
		name  string
		title string
		desc  string
		query string
		want  float64
	}{
		{"exact match", "will it rain", "", "will it rain", 100 + 10},
		{"prefix", "will it rain tomorrow in london" + pad, "", "will it rain", 80},
		{"substring", "forecast: will it rain tomorrow" + pad, "", "will it rain", 60},
		{"partial words", "rain expected somewhere" + pad, "", "will it rain", 40.0 / 3},
		{"no words", "completely unrelated" + pad, "", "election", 0},
		{"description bonus", "unmatched words" + pad, "will it rain though", "will it rain", 20},
		{"short title bonus", "rain?", "", "rain", 60 + 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreOf(tt.title, tt.desc, tt.query); got != tt.want {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankSortsAndTruncates(t *testing.T) {
	long := strings.Repeat("x", 50)
	markets := []domain.NormalizedMarket{
		market("something about rain "+long, ""),  // substring: 60
		market("rain "+long, ""),                  // prefix: 80
		market("rain", ""),                        // exact + short: 110
		market("unrelated but damp "+long, ""),    // 0
	}

	got := Rank(markets, "rain", 2)

	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].Score != 110 || got[1].Score != 80 {
		t.Errorf("scores = %v, %v, want 110, 80", got[0].Score, got[1].Score)
	}
}

func TestRankStableOnTies(t *testing.T) {
	long := strings.Repeat("x", 50)
	markets := []domain.NormalizedMarket{
		market("rain first "+long, ""),
		market("rain second "+long, ""),
	}

	got := Rank(markets, "rain", 0)

	if got[0].Market.Question != markets[0].Question {
		t.Errorf("tie order not preserved: %q first", got[0].Market.Question)
	}
}

func TestRankCollapsesWhitespace(t *testing.T) {
	got := Rank([]domain.NormalizedMarket{market("will it rain", "")}, "  will   it\train ", 0)

	if len(got) != 1 || got[0].Score != 110 {
		t.Fatalf("got %+v, want single exact match", got)
	}
}

func TestRankEmptyQuery(t *testing.T) {
	if got := Rank([]domain.NormalizedMarket{market("a", "")}, "   ", 5); got != nil {
		t.Errorf("blank query should rank nothing, got %v", got)
	}
}

func TestMergeGlobalResort(t *testing.T) {
	a := []domain.ScoredMarket{{Market: market("a1", ""), Score: 90}, {Market: market("a2", ""), Score: 30}}
	b := []domain.ScoredMarket{{Market: market("b1", ""), Score: 60}}

	got := Merge(2, a, b)

	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].Score != 90 || got[1].Score != 60 {
		t.Errorf("merged scores = %v, %v", got[0].Score, got[1].Score)
	}
}

func TestMatches(t *testing.T) {
	m := domain.NormalizedMarket{
		Question:    "Who wins the title?",
		Description: "Football season finale",
		Tags:        []string{"Sports", "Premier League"},
	}

	for _, q := range []string{"title", "football", "premier league"} {
		if !Matches(m, q) {
			t.Errorf("Matches(%q) = false", q)
		}
	}
	if Matches(m, "weather") {
		t.Error("Matches(weather) = true")
	}
	if Matches(m, "  ") {
		t.Error("blank query should not match")
	}
}
