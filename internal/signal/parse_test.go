package signal

import (
	"strings"
	"testing"
)

func sumOutcomes(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func TestParseResponseWellFormed(t *testing.T) {
	raw := `Here is my analysis.
{"outcome":"yes","confidence":72,"outcomes":{"yes":72,"no":28},"reasoning":"because","comparativeAnalysis":"others unlikely"}`

	got := ParseResponse(raw, nil)

	if got.Outcome != "yes" || got.Confidence != 72 {
		t.Errorf("outcome/confidence = %q/%d", got.Outcome, got.Confidence)
	}
	if got.Outcomes["yes"] != 72 || got.Outcomes["no"] != 28 {
		t.Errorf("outcomes = %v", got.Outcomes)
	}
	if got.Reasoning != "because" || got.ComparativeAnalysis != "others unlikely" {
		t.Errorf("text fields = %q / %q", got.Reasoning, got.ComparativeAnalysis)
	}
}

func TestParseResponseRescalesBinary(t *testing.T) {
	raw := `{"outcome":"yes","confidence":60,"outcomes":{"yes":60,"no":60}}`

	got := ParseResponse(raw, nil)

	if sumOutcomes(got.Outcomes) != 100 {
		t.Fatalf("outcomes sum = %d, want 100: %v", sumOutcomes(got.Outcomes), got.Outcomes)
	}
	if got.Outcomes["yes"] != 50 || got.Outcomes["no"] != 50 {
		t.Errorf("outcomes = %v, want 50/50", got.Outcomes)
	}
}

func TestParseResponseRescalesNary(t *testing.T) {
	raw := `{"outcome":"NVIDIA","confidence":60,"outcomes":{"NVIDIA":60,"Microsoft":30,"Apple":20}}`

	got := ParseResponse(raw, nil)

	if sumOutcomes(got.Outcomes) != 100 {
		t.Fatalf("outcomes sum = %d, want 100: %v", sumOutcomes(got.Outcomes), got.Outcomes)
	}
	if got.Outcome != "NVIDIA" {
		t.Errorf("outcome = %q", got.Outcome)
	}
	if got.Outcomes["NVIDIA"] <= got.Outcomes["Microsoft"] {
		t.Errorf("ordering lost after rescale: %v", got.Outcomes)
	}
}

func TestParseResponseDefaults(t *testing.T) {
	got := ParseResponse(`{"outcomes":{"yes":70,"no":30}}`, nil)

	if got.Outcome != "no" {
		t.Errorf("outcome = %q, want default no", got.Outcome)
	}
	if got.Confidence != 30 {
		t.Errorf("confidence = %d, want 30 from outcomes map", got.Confidence)
	}
	if got.Reasoning != defaultReasoning || got.ComparativeAnalysis != defaultComparative {
		t.Errorf("placeholders not applied: %q / %q", got.Reasoning, got.ComparativeAnalysis)
	}
}

func TestParseResponseSynthesizesOutcomeMap(t *testing.T) {
	got := ParseResponse(`{"outcome":"yes","confidence":80,"reasoning":"r"}`, nil)

	if got.Outcomes["yes"] != 80 || got.Outcomes["no"] != 20 {
		t.Errorf("outcomes = %v, want yes:80 no:20", got.Outcomes)
	}
}

func TestParseResponseSynthesizesFromKnownOutcomes(t *testing.T) {
	names := []string{"NVIDIA", "Microsoft", "Apple"}

	got := ParseResponse(`{"outcome":"NVIDIA","confidence":70}`, names)

	if got.Outcome != "NVIDIA" || got.Confidence != 70 {
		t.Errorf("outcome/confidence = %q/%d", got.Outcome, got.Confidence)
	}
	if got.Outcomes["NVIDIA"] != 70 || got.Outcomes["Microsoft"] != 15 || got.Outcomes["Apple"] != 15 {
		t.Errorf("outcomes = %v, want NVIDIA:70 Microsoft:15 Apple:15", got.Outcomes)
	}
	if sumOutcomes(got.Outcomes) != 100 {
		t.Errorf("outcomes sum = %d, want 100", sumOutcomes(got.Outcomes))
	}
}

func TestParseResponseDegradedYes(t *testing.T) {
	raw := "I think YES is likely but cannot produce structured output."

	got := ParseResponse(raw, nil)

	if got.Outcome != "yes" || got.Confidence != 50 {
		t.Errorf("outcome/confidence = %q/%d", got.Outcome, got.Confidence)
	}
	if got.Outcomes["yes"] != 50 || got.Outcomes["no"] != 50 {
		t.Errorf("outcomes = %v", got.Outcomes)
	}
	if got.Reasoning != raw {
		t.Errorf("reasoning should carry the raw text")
	}
}

func TestParseResponseDegradedNo(t *testing.T) {
	got := ParseResponse("the market will not resolve affirmatively", nil)

	if got.Outcome != "no" {
		t.Errorf("outcome = %q, want no", got.Outcome)
	}
}

func TestParseResponseDegradedKeysKnownOutcomes(t *testing.T) {
	names := []string{"NVIDIA", "Microsoft", "Apple"}
	raw := "Microsoft looks strongest here but I cannot produce structured output."

	got := ParseResponse(raw, names)

	if got.Outcome != "Microsoft" {
		t.Errorf("outcome = %q, want the mentioned known name", got.Outcome)
	}
	for _, n := range names {
		if _, ok := got.Outcomes[n]; !ok {
			t.Errorf("outcomes %v missing known name %q", got.Outcomes, n)
		}
	}
	if sumOutcomes(got.Outcomes) != 100 {
		t.Errorf("outcomes sum = %d, want 100", sumOutcomes(got.Outcomes))
	}
	if got.Confidence != got.Outcomes["Microsoft"] {
		t.Errorf("confidence %d disagrees with outcomes entry %d", got.Confidence, got.Outcomes["Microsoft"])
	}
	if got.Reasoning != raw {
		t.Errorf("reasoning should carry the raw text")
	}
}

func TestParseResponseMalformedJSON(t *testing.T) {
	raw := `{"outcome": "yes", "confidence": not-a-number}`

	got := ParseResponse(raw, nil)

	if got.Outcome != "yes" || got.Reasoning != raw {
		t.Errorf("malformed JSON should degrade, got %+v", got)
	}
}

func TestParseResponseCaseInsensitiveOutcomeMatch(t *testing.T) {
	got := ParseResponse(`{"outcome":"Yes","outcomes":{"yes":90,"no":10}}`, nil)

	if got.Outcome != "Yes" {
		t.Errorf("outcome = %q, model casing should survive", got.Outcome)
	}
	if got.Confidence != 90 {
		t.Errorf("confidence = %d, want 90", got.Confidence)
	}
}

func TestParseResponseOutcomeNotInMap(t *testing.T) {
	got := ParseResponse(`{"outcome":"Tesla","outcomes":{"NVIDIA":70,"Apple":30}}`, nil)

	if _, ok := got.Outcomes[got.Outcome]; !ok {
		t.Fatalf("outcome %q not a key of %v", got.Outcome, got.Outcomes)
	}
	if got.Outcome != "NVIDIA" {
		t.Errorf("outcome = %q, want highest-confidence fallback", got.Outcome)
	}
}

func TestExtractJSONBalanced(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain object", `{"a":1}`, `{"a":1}`, true},
		{"surrounded by prose", `sure! {"a":1} hope that helps`, `{"a":1}`, true},
		{"nested object", `{"a":{"b":2}}`, `{"a":{"b":2}}`, true},
		{
			"first of multiple objects",
			`{"first":1} and later {"second":2}`,
			`{"first":1}`,
			true,
		},
		{
			"braces inside strings ignored",
			`{"text":"look: } and { inside"}`,
			`{"text":"look: } and { inside"}`,
			true,
		},
		{
			"escaped quote inside string",
			`{"text":"he said \"}\" loudly"}`,
			`{"text":"he said \"}\" loudly"}`,
			true,
		},
		{"no object", "just words", "", false},
		{"unbalanced", `{"a":1`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSON(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("extractJSON(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseResponseAlwaysSumsTo100(t *testing.T) {
	inputs := []string{
		`{"outcome":"yes","outcomes":{"yes":33,"no":33}}`,
		`{"outcome":"a","outcomes":{"a":1,"b":1,"c":1}}`,
		`{"outcome":"yes","outcomes":{"yes":0,"no":0}}`,
		`{"outcome":"yes","confidence":101}`,
		"no structure at all",
		"",
		strings.Repeat("{", 10),
	}

	for _, in := range inputs {
		got := ParseResponse(in, nil)
		if sum := sumOutcomes(got.Outcomes); sum != 100 {
			t.Errorf("ParseResponse(%q): outcomes sum = %d, want 100 (%v)", in, sum, got.Outcomes)
		}
	}
}
