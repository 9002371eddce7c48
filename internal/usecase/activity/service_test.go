package activity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/furnidex/internal/domain"
	domact "github.com/kailas-cloud/furnidex/internal/domain/activity"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
)

func TestRecord_EnrichesAndStamps(t *testing.T) {
	repo := &mockRepo{}
	products := mockProducts{"sofa-1": {ID: "sofa-1", Name: "Harbor Sofa", Category: "sofa", Price: 949}}
	svc := New(repo, products, 0)
	svc.newID = func() string { return "evt-1" }
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	got, err := svc.Record(context.Background(), domact.Event{UserID: "u-1", Type: domact.TypeView, ProductID: "sofa-1"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got.ID != "evt-1" || !got.Timestamp.Equal(fixed) {
		t.Errorf("id %q ts %v", got.ID, got.Timestamp)
	}
	if got.ProductName != "Harbor Sofa" || got.Category != "sofa" || got.Price != 949 {
		t.Errorf("not enriched: %+v", got)
	}
	if len(repo.appended) != 1 || repo.appended[0].ID != "evt-1" {
		t.Errorf("appended = %+v", repo.appended)
	}
}

func TestRecord_DefaultIDIsUUID(t *testing.T) {
	svc := New(&mockRepo{}, nil, 0)
	got, err := svc.Record(context.Background(), domact.Event{UserID: "u", Type: domact.TypeSearch, SearchQuery: "sofa"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(got.ID) != 36 || strings.Count(got.ID, "-") != 4 {
		t.Errorf("id %q is not a uuid", got.ID)
	}
}

func TestRecord_KeepsClientTimestamp(t *testing.T) {
	svc := New(&mockRepo{}, nil, 0)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := svc.Record(context.Background(),
		domact.Event{UserID: "u", Type: domact.TypeSearch, SearchQuery: "lamp", Timestamp: ts})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v", got.Timestamp)
	}
}

func TestRecord_Validation(t *testing.T) {
	svc := New(&mockRepo{}, nil, 0)
	bad := []domact.Event{
		{UserID: "", Type: domact.TypeSearch, SearchQuery: "x"},
		{UserID: "has space", Type: domact.TypeSearch, SearchQuery: "x"},
		{UserID: strings.Repeat("u", 129), Type: domact.TypeSearch, SearchQuery: "x"},
		{UserID: "u", Type: domact.TypeView},
		{UserID: "u", Type: "purchase", ProductID: "p"},
	}
	for _, e := range bad {
		if _, err := svc.Record(context.Background(), e); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("Record(%+v) = %v, want ErrInvalidQuery", e, err)
		}
	}
}

func TestRecord_UnknownProduct(t *testing.T) {
	svc := New(&mockRepo{}, mockProducts{}, 0)
	_, err := svc.Record(context.Background(), domact.Event{UserID: "u", Type: domact.TypeClick, ProductID: "ghost"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRecord_SkipsLookupWhenPayloadComplete(t *testing.T) {
	svc := New(&mockRepo{}, mockProducts{}, 0)
	e := domact.Event{UserID: "u", Type: domact.TypeClick, ProductID: "p", ProductName: "Lamp", Category: "lamp"}
	if _, err := svc.Record(context.Background(), e); err != nil {
		t.Errorf("Record: %v", err)
	}
}

func TestRecord_AppendError(t *testing.T) {
	boom := errors.New("redis down")
	svc := New(&mockRepo{appendErr: boom}, nil, 0)
	_, err := svc.Record(context.Background(), domact.Event{UserID: "u", Type: domact.TypeSearch, SearchQuery: "x"})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestSummary(t *testing.T) {
	var gotRecent int
	repo := &mockRepo{summaryFn: func(_ context.Context, userID string, recent int) (domact.Summary, error) {
		gotRecent = recent
		return domact.Summary{UserID: userID, TotalEvents: 3}, nil
	}}
	svc := New(repo, mockProducts{"x": catalog.Item{}}, 5)

	sum, err := svc.Summary(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.TotalEvents != 3 || gotRecent != 5 {
		t.Errorf("summary %+v recent %d", sum, gotRecent)
	}
	if _, err := svc.Summary(context.Background(), "bad id"); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("bad id err = %v", err)
	}
}
