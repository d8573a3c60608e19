package signal

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/signalboard/signalboard/internal/domain"
)

// Placeholder strings substituted when the model omits a text field.
const (
	defaultReasoning   = "Analysis completed"
	defaultComparative = "Comparative analysis completed"
)

// rawResult mirrors the JSON shape the model is asked to produce.
// Confidences are decoded as floats since models emit both 75 and 75.0.
type rawResult struct {
	Outcome             string             `json:"outcome"`
	Confidence          float64            `json:"confidence"`
	Outcomes            map[string]float64 `json:"outcomes"`
	Reasoning           string             `json:"reasoning"`
	ComparativeAnalysis string             `json:"comparativeAnalysis"`
}

// ParseResponse turns raw model output into a well-formed SignalResult. It
// never fails: unparseable output degrades to an even spread over the
// market's outcome names (or a 50/50 yes/no guess when none are known) with
// the raw text preserved as reasoning. After parsing, the outcome
// confidences are rescaled to sum to exactly 100.
func ParseResponse(raw string, outcomeNames []string) domain.SignalResult {
	obj, ok := extractJSON(raw)
	if !ok {
		return degradedResult(raw, outcomeNames)
	}

	var parsed rawResult
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return degradedResult(raw, outcomeNames)
	}

	outcome := parsed.Outcome
	if outcome == "" {
		outcome = "no"
	}

	confidence := parsed.Confidence
	if confidence == 0 {
		if v, found := lookupFold(parsed.Outcomes, outcome); found {
			confidence = v
		} else {
			confidence = 50
		}
	}
	confidence = math.Min(100, math.Max(0, confidence))

	outcomes := parsed.Outcomes
	if len(outcomes) == 0 {
		outcomes = synthesizeOutcomes(outcome, confidence, outcomeNames)
	}

	result := domain.SignalResult{
		Outcome:             outcome,
		Confidence:          int(math.Round(confidence)),
		Outcomes:            rescale(outcomes),
		Reasoning:           parsed.Reasoning,
		ComparativeAnalysis: parsed.ComparativeAnalysis,
	}
	if result.Reasoning == "" {
		result.Reasoning = defaultReasoning
	}
	if result.ComparativeAnalysis == "" {
		result.ComparativeAnalysis = defaultComparative
	}

	// Outcome must name a key of the map. If the model's pick is not there,
	// fall back to the highest-confidence key so the result stays coherent.
	if _, found := lookupFoldInt(result.Outcomes, result.Outcome); !found {
		result.Outcome = topOutcome(result.Outcomes)
		result.Confidence = result.Outcomes[result.Outcome]
	}

	return result
}

// synthesizeOutcomes builds a confidence map when the model omitted one. When
// the predicted name is one of the market's known outcomes, that name keeps
// the scalar confidence and the remainder is spread evenly across the other
// known names. Otherwise a binary map is synthesized from the prediction.
func synthesizeOutcomes(outcome string, confidence float64, names []string) map[string]float64 {
	if len(names) >= 2 && containsFold(names, outcome) {
		out := make(map[string]float64, len(names))
		rest := (100 - confidence) / float64(len(names)-1)
		for _, n := range names {
			if strings.EqualFold(n, outcome) {
				out[n] = confidence
			} else {
				out[n] = rest
			}
		}
		return out
	}

	complement := "no"
	if strings.EqualFold(outcome, "no") {
		complement = "yes"
	}
	return map[string]float64{
		strings.ToLower(outcome): confidence,
		complement:               100 - confidence,
	}
}

// degradedResult is the fallback when no JSON could be recovered: confidence
// is spread evenly over the market's known outcome names, the predicted
// outcome is the first known name the text mentions, and the whole raw text
// is preserved for the user to read. Without known names it falls back to a
// 50/50 yes/no guess keyed off whether the text mentions "yes".
func degradedResult(raw string, names []string) domain.SignalResult {
	if len(names) >= 2 {
		lower := strings.ToLower(raw)
		outcome := names[0]
		for _, n := range names {
			if strings.Contains(lower, strings.ToLower(n)) {
				outcome = n
				break
			}
		}
		spread := make(map[string]float64, len(names))
		for _, n := range names {
			spread[n] = 1
		}
		outcomes := rescale(spread)
		return domain.SignalResult{
			Outcome:             outcome,
			Confidence:          outcomes[outcome],
			Outcomes:            outcomes,
			Reasoning:           raw,
			ComparativeAnalysis: defaultComparative,
		}
	}

	outcome := "no"
	if strings.Contains(strings.ToLower(raw), "yes") {
		outcome = "yes"
	}
	return domain.SignalResult{
		Outcome:             outcome,
		Confidence:          50,
		Outcomes:            map[string]int{"yes": 50, "no": 50},
		Reasoning:           raw,
		ComparativeAnalysis: defaultComparative,
	}
}

// extractJSON returns the first balanced {...} object in text. Brace depth
// is tracked outside JSON string literals so braces in prose or values do
// not derail the scan. Only the first balanced object is considered; text
// with several fragments yields the first one, a documented limitation.
func extractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// rescale rounds the confidence map to integers summing to exactly 100.
// Every value is scaled by 100/sum, and any rounding residue lands on the
// largest entry so the invariant holds for maps of any arity.
func rescale(outcomes map[string]float64) map[string]int {
	var sum float64
	for _, v := range outcomes {
		sum += v
	}
	if sum <= 0 {
		// Nothing usable; spread evenly.
		out := make(map[string]int, len(outcomes))
		share := 100 / len(outcomes)
		for k := range outcomes {
			out[k] = share
		}
		out[topOutcomeFloat(outcomes)] += 100 - share*len(outcomes)
		return out
	}

	scale := 100 / sum
	out := make(map[string]int, len(outcomes))
	total := 0
	for k, v := range outcomes {
		out[k] = int(math.Round(v * scale))
		total += out[k]
	}
	if total != 100 {
		out[topOutcome(out)] += 100 - total
	}
	return out
}

// topOutcome returns the key with the highest value, breaking ties
// lexicographically for determinism.
func topOutcome(outcomes map[string]int) string {
	keys := make([]string, 0, len(outcomes))
	for k := range outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if outcomes[k] > outcomes[best] {
			best = k
		}
	}
	return best
}

func topOutcomeFloat(outcomes map[string]float64) string {
	keys := make([]string, 0, len(outcomes))
	for k := range outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if outcomes[k] > outcomes[best] {
			best = k
		}
	}
	return best
}

// containsFold reports whether names contains s, compared case-insensitively.
func containsFold(names []string, s string) bool {
	for _, n := range names {
		if strings.EqualFold(n, s) {
			return true
		}
	}
	return false
}

// lookupFold finds a map entry by case-insensitive key.
func lookupFold(m map[string]float64, key string) (float64, bool) {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return 0, false
}

func lookupFoldInt(m map[string]int, key string) (int, bool) {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return 0, false
}
