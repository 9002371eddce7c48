package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/furnidex/internal/domain/activity"
)

func at(min int) time.Time {
	return time.Date(2026, 5, 1, 10, min, 0, 0, time.UTC)
}

func TestAppend_WritesEventAndCounters(t *testing.T) {
	ms := newMemStore()
	r := New(ms, 24*time.Hour)

	e := activity.Event{
		ID: "e1", UserID: "u1", Type: activity.TypeView,
		ProductID: "sofa-1", ProductName: "Oslo Sofa", Category: "Sofa", Price: 949.5, Timestamp: at(0),
	}
	if err := r.Append(context.Background(), e); err != nil {
		t.Fatal(err)
	}

	h := ms.hashes["furnidex:activity:u1:event:e1"]
	if h["event_type"] != "view" || h["price"] != "949.5" || h["product_id"] != "sofa-1" {
		t.Errorf("event hash = %v", h)
	}
	if _, ok := h["search_query"]; ok {
		t.Error("empty fields must not be written")
	}
	c := ms.hashes["furnidex:activity:u1:counters"]
	if c["total"] != "1" || c["category:sofa"] != "1" {
		t.Errorf("counters = %v", c)
	}
	if ms.expires["furnidex:activity:u1:counters"] != 24*time.Hour {
		t.Error("counters should share the event TTL")
	}
}

func TestSummary(t *testing.T) {
	ms := newMemStore()
	r := New(ms, 0)
	ctx := context.Background()

	events := []activity.Event{
		{ID: "a", UserID: "u1", Type: activity.TypeSearch, SearchQuery: "blue sofa under $600", Timestamp: at(0)},
		{ID: "b", UserID: "u1", Type: activity.TypeView, ProductID: "s1", ProductName: "Oslo Sofa", Category: "sofa", Timestamp: at(1)},
		{ID: "c", UserID: "u1", Type: activity.TypeClick, ProductID: "c1", ProductName: "Bistro Chair", Category: "chair", Timestamp: at(2)},
		{ID: "z", UserID: "u2", Type: activity.TypeView, ProductID: "x", Category: "bed", Timestamp: at(3)},
	}
	// insert out of order; summary must order by timestamp
	for _, i := range []int{2, 0, 3, 1} {
		if err := r.Append(ctx, events[i]); err != nil {
			t.Fatal(err)
		}
	}

	s, err := r.Summary(ctx, "u1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalEvents != 3 || s.Categories["sofa"] != 1 || s.Categories["chair"] != 1 {
		t.Errorf("summary counters = %+v", s)
	}
	if len(s.Recent) != 2 || s.Recent[0].ID != "c" || s.Recent[1].ID != "b" {
		t.Errorf("recent = %+v", s.Recent)
	}
	want := "blue sofa under $600 Oslo Sofa sofa Bistro Chair chair"
	if s.ProfileText != want {
		t.Errorf("profile = %q, want %q", s.ProfileText, want)
	}
}

func TestSummary_UnknownUser(t *testing.T) {
	s, err := New(newMemStore(), 0).Summary(context.Background(), "ghost", 10)
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalEvents != 0 || len(s.Recent) != 0 || s.ProfileText != "" {
		t.Errorf("summary = %+v", s)
	}
}

func TestSummary_ScanError(t *testing.T) {
	ms := newMemStore()
	ms.scanErr = errors.New("boom")
	if _, err := New(ms, 0).Summary(context.Background(), "u1", 10); err == nil {
		t.Fatal("expected error")
	}
}
