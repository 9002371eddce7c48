package activity

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		ok   bool
	}{
		{"view", Event{UserID: "u1", Type: TypeView, ProductID: "p1"}, true},
		{"search", Event{UserID: "u1", Type: TypeSearch, SearchQuery: "blue sofa"}, true},
		{"missing user", Event{Type: TypeView, ProductID: "p1"}, false},
		{"click without product", Event{UserID: "u1", Type: TypeClick}, false},
		{"empty search", Event{UserID: "u1", Type: TypeSearch, SearchQuery: "  "}, false},
		{"unknown type", Event{UserID: "u1", Type: "purchase"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, domain.ErrInvalidQuery) {
				t.Fatalf("err = %v, want ErrInvalidQuery", err)
			}
		})
	}
}

func TestProfileText(t *testing.T) {
	events := []Event{
		{Type: TypeSearch, SearchQuery: "velvet sofa"},
		{Type: TypeView, ProductName: "Harbor Sofa", Category: "sofa"},
		{Type: TypeClick, ProductName: "", Category: ""},
	}
	if got := ProfileText(events); got != "velvet sofa Harbor Sofa sofa" {
		t.Errorf("ProfileText() = %q", got)
	}
}

func TestProfileText_Window(t *testing.T) {
	events := make([]Event, ProfileWindow+5)
	for i := range events {
		events[i] = Event{Type: TypeSearch, SearchQuery: "x"}
	}
	events[0].SearchQuery = "dropped"
	if got := ProfileText(events); len(got) != 2*ProfileWindow-1 {
		t.Errorf("ProfileText() length = %d", len(got))
	}
}
