// Package activity stores shopper interaction events as Redis hashes.
package activity

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/furnidex/internal/db"
	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/activity"
)

// KeyPrefix namespaces activity keys.
const KeyPrefix = domain.KeyPrefix + "activity:"

const (
	fieldEventType   = "event_type"
	fieldProductID   = "product_id"
	fieldProductName = "product_name"
	fieldCategory    = "category"
	fieldPrice       = "price"
	fieldQuery       = "search_query"
	fieldTimestamp   = "timestamp"

	counterTotal    = "total"
	counterCategory = "category:"
)

type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo persists events per user. Events and counters share the retention TTL.
type Repo struct {
	store store
	ttl   time.Duration
}

// New creates a Repo. ttl of zero keeps events forever.
func New(s store, ttl time.Duration) *Repo {
	return &Repo{store: s, ttl: ttl}
}

func eventKey(userID, id string) string { return KeyPrefix + userID + ":event:" + id }
func counterKey(userID string) string   { return KeyPrefix + userID + ":counters" }

// Append writes the event and bumps the user's counters.
func (r *Repo) Append(ctx context.Context, e activity.Event) error {
	fields := map[string]string{
		fieldEventType: string(e.Type),
		fieldTimestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if e.ProductID != "" {
		fields[fieldProductID] = e.ProductID
	}
	if e.ProductName != "" {
		fields[fieldProductName] = e.ProductName
	}
	if e.Category != "" {
		fields[fieldCategory] = e.Category
	}
	if e.Price > 0 {
		fields[fieldPrice] = strconv.FormatFloat(e.Price, 'f', -1, 64)
	}
	if e.SearchQuery != "" {
		fields[fieldQuery] = e.SearchQuery
	}

	item := db.HashSetItem{Key: eventKey(e.UserID, e.ID), Fields: fields, TTL: r.ttl}
	if err := r.store.HSetMulti(ctx, []db.HashSetItem{item}); err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	ck := counterKey(e.UserID)
	if err := r.store.HIncrBy(ctx, ck, counterTotal, 1); err != nil {
		return fmt.Errorf("count event: %w", err)
	}
	if e.Category != "" {
		if err := r.store.HIncrBy(ctx, ck, counterCategory+strings.ToLower(e.Category), 1); err != nil {
			return fmt.Errorf("count category: %w", err)
		}
	}
	if r.ttl > 0 {
		if err := r.store.Expire(ctx, ck, r.ttl, false); err != nil {
			return fmt.Errorf("expire counters: %w", err)
		}
	}
	return nil
}

// Summary aggregates the user's counters and the most recent events (newest first).
func (r *Repo) Summary(ctx context.Context, userID string, recent int) (activity.Summary, error) {
	s := activity.Summary{UserID: userID, Categories: map[string]int{}}

	counters, err := r.store.HGetAll(ctx, counterKey(userID))
	if err != nil {
		return s, fmt.Errorf("read counters: %w", err)
	}
	for k, v := range counters {
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		switch {
		case k == counterTotal:
			s.TotalEvents = n
		case strings.HasPrefix(k, counterCategory):
			s.Categories[strings.TrimPrefix(k, counterCategory)] = n
		}
	}

	events, err := r.events(ctx, userID)
	if err != nil {
		return s, err
	}
	s.ProfileText = activity.ProfileText(events)

	for i := len(events) - 1; i >= 0 && len(s.Recent) < recent; i-- {
		s.Recent = append(s.Recent, events[i])
	}
	return s, nil
}

// events returns every retained event of the user, oldest first.
func (r *Repo) events(ctx context.Context, userID string) ([]activity.Event, error) {
	prefix := KeyPrefix + userID + ":event:"
	keys, err := r.store.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	events := make([]activity.Event, 0, len(keys))
	for i, h := range hashes {
		if len(h) == 0 {
			continue // expired between SCAN and HGETALL
		}
		events = append(events, fromHash(userID, strings.TrimPrefix(keys[i], prefix), h))
	}
	sort.SliceStable(events, func(a, b int) bool {
		if events[a].Timestamp.Equal(events[b].Timestamp) {
			return events[a].ID < events[b].ID
		}
		return events[a].Timestamp.Before(events[b].Timestamp)
	})
	return events, nil
}

func fromHash(userID, id string, h map[string]string) activity.Event {
	e := activity.Event{
		ID:          id,
		UserID:      userID,
		Type:        activity.Type(h[fieldEventType]),
		ProductID:   h[fieldProductID],
		ProductName: h[fieldProductName],
		Category:    h[fieldCategory],
		SearchQuery: h[fieldQuery],
	}
	if p, err := strconv.ParseFloat(h[fieldPrice], 64); err == nil {
		e.Price = p
	}
	if ts, err := time.Parse(time.RFC3339Nano, h[fieldTimestamp]); err == nil {
		e.Timestamp = ts
	}
	return e
}
