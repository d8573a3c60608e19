package simmer

import (
	"testing"

	"github.com/signalboard/signalboard/internal/domain"
)

func TestNormalizeSyntheticYesNo(t *testing.T) {
	m := Normalize(APIMarket{
		ID:                 "3fa85f64-5717-4562-b3fc-2c963f66afa6",
		Question:           "Will it rain tomorrow?",
		Status:             "active",
		Probability:        0.73,
		TotalVolume:        420,
		ResolutionCriteria: "Resolves YES if measurable rain falls at the station.",
	})

	if m.Provider != domain.ProviderSimmer {
		t.Fatalf("provider = %q", m.Provider)
	}
	if len(m.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(m.Outcomes))
	}
	yes, no := m.Outcomes[0], m.Outcomes[1]
	if yes.Name != "Yes" || yes.YesPrice != 0.73 {
		t.Errorf("yes outcome = %q %v", yes.Name, yes.YesPrice)
	}
	if no.Name != "No" || no.YesPrice != 1-0.73 {
		t.Errorf("no outcome = %q %v", no.Name, no.YesPrice)
	}
	if yes.NoPrice != no.YesPrice || no.NoPrice != yes.YesPrice {
		t.Errorf("no-side prices not flipped: %+v %+v", yes, no)
	}
	if yes.ResolutionRule == "" || no.ResolutionRule != yes.ResolutionRule {
		t.Errorf("resolution rule not carried to both outcomes")
	}
	if m.LastTradePrice != 0.73 {
		t.Errorf("lastTradePrice = %v, want 0.73", m.LastTradePrice)
	}
}

func TestNormalizeInactiveStatus(t *testing.T) {
	for _, status := range []string{"initializing", "resolved", "disputed", "cancelled"} {
		m := Normalize(APIMarket{ID: "x", Question: "q", Status: status})
		if len(m.ActiveOutcomes()) != 0 {
			t.Errorf("status %q should yield no active outcomes", status)
		}
	}
}

func TestNormalizeDescriptionPriority(t *testing.T) {
	both := Normalize(APIMarket{Context: "ctx", ResolutionCriteria: "rules"})
	if both.Description != "ctx" {
		t.Errorf("description = %q, want context first", both.Description)
	}
	rulesOnly := Normalize(APIMarket{ResolutionCriteria: "rules"})
	if rulesOnly.Description != "rules" {
		t.Errorf("description = %q, want resolution criteria", rulesOnly.Description)
	}
	neither := Normalize(APIMarket{})
	if neither.Description != domain.NoDescription {
		t.Errorf("description = %q, want placeholder", neither.Description)
	}
}
