// Package search ranks normalized markets against a free-text query.
package search

import (
	"sort"
	"strings"

	"github.com/signalboard/signalboard/internal/domain"
)

const shortTitleLen = 50

// Rank scores markets against query and returns the top results in
// descending score order. The function is pure and deterministic: ties keep
// the input order, and a non-positive limit means no truncation.
func Rank(markets []domain.NormalizedMarket, query string, limit int) []domain.ScoredMarket {
	words := queryWords(query)
	if len(words) == 0 {
		return nil
	}
	q := strings.Join(words, " ")

	scored := make([]domain.ScoredMarket, 0, len(markets))
	for i := range markets {
		scored = append(scored, domain.ScoredMarket{Market: markets[i], Score: Score(markets[i], q, words)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Merge combines per-provider ranked lists, re-sorts them globally by score,
// and truncates to limit. Ties keep the order lists were supplied in.
func Merge(limit int, lists ...[]domain.ScoredMarket) []domain.ScoredMarket {
	var merged []domain.ScoredMarket
	for _, l := range lists {
		merged = append(merged, l...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// Score computes the relevance of one market for a query. q must be the
// lower-cased whitespace-collapsed query and words its split form.
//
// Base score: 100 exact title match, 80 title prefix, 60 title substring,
// else 40 scaled by the fraction of query words found in the title.
// Bonuses: +20 when the description contains the query, +10 for short titles.
func Score(m domain.NormalizedMarket, q string, words []string) float64 {
	title := strings.ToLower(m.Question)
	desc := strings.ToLower(m.Description)

	var score float64
	switch {
	case title == q:
		score = 100
	case strings.HasPrefix(title, q):
		score = 80
	case strings.Contains(title, q):
		score = 60
	default:
		found := 0
		for _, w := range words {
			if strings.Contains(title, w) {
				found++
			}
		}
		score = 40 * float64(found) / float64(len(words))
	}

	if strings.Contains(desc, q) {
		score += 20
	}
	if len(m.Question) < shortTitleLen {
		score += 10
	}
	return score
}

// Matches reports whether a market should enter ranking at all: the query
// must appear as a substring of the title, description, or joined tag text.
func Matches(m domain.NormalizedMarket, query string) bool {
	q := strings.Join(queryWords(query), " ")
	if q == "" {
		return false
	}
	if strings.Contains(strings.ToLower(m.Question), q) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Description), q) {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(m.Tags, " ")), q)
}

// queryWords lower-cases the query and splits it on whitespace, collapsing
// runs so no empty words are produced.
func queryWords(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
