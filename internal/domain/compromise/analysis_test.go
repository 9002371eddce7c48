package compromise

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/furnidex/internal/domain/preference"
)

func TestBandFor(t *testing.T) {
	tests := []struct {
		sim  float64
		want FitBand
	}{
		{0.95, FitExcellent},
		{0.8, FitGood},
		{0.61, FitGood},
		{0.5, FitModerate},
		{0.4, FitLoose},
		{0, FitLoose},
	}
	for _, tt := range tests {
		if got := BandFor(tt.sim); got != tt.want {
			t.Errorf("BandFor(%v) = %s, want %s", tt.sim, got, tt.want)
		}
	}
}

func TestFitBand_Explain(t *testing.T) {
	if got := FitExcellent.Explain(0.87); got != "Excellent match (87% similar)" {
		t.Errorf("got %q", got)
	}
}

func TestMarketNote(t *testing.T) {
	b := 600.0
	note := MarketNote(preference.Constraints{Budget: &b, Material: "leather"})
	if !strings.Contains(note, "Leather typically starts at $1000") {
		t.Errorf("note = %q", note)
	}
	if !strings.Contains(note, "fabric") {
		t.Errorf("expected a suggestion, got %q", note)
	}

	rich := 5000.0
	if MarketNote(preference.Constraints{Budget: &rich, Material: "leather"}) != "" {
		t.Error("realistic budget must not produce a note")
	}
	if MarketNote(preference.Constraints{Material: "leather"}) != "" {
		t.Error("no budget must not produce a note")
	}
}
