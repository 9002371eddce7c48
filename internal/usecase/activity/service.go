// Package activity records shopper events and serves per-user summaries.
package activity

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/furnidex/internal/domain"
	domact "github.com/kailas-cloud/furnidex/internal/domain/activity"
)

var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_.@-]{1,128}$`)

// DefaultRecent is how many events a summary returns.
const DefaultRecent = 10

// Service handles the activity log.
type Service struct {
	repo     Repository
	products ProductReader
	recent   int
	now      func() time.Time
	newID    func() string
}

// New creates an activity service. products may be nil, in which case events
// are stored as submitted.
func New(repo Repository, products ProductReader, recent int) *Service {
	if recent <= 0 {
		recent = DefaultRecent
	}
	return &Service{
		repo: repo, products: products, recent: recent,
		now: time.Now, newID: func() string { return uuid.NewString() },
	}
}

// Record validates, enriches and stores one event.
func (s *Service) Record(ctx context.Context, e domact.Event) (domact.Event, error) {
	if err := validateUserID(e.UserID); err != nil {
		return domact.Event{}, err
	}
	if err := e.Validate(); err != nil {
		return domact.Event{}, err
	}

	if e.ProductID != "" && s.products != nil && (e.ProductName == "" || e.Category == "") {
		it, _, err := s.products.Retrieve(ctx, e.ProductID)
		if err != nil {
			return domact.Event{}, fmt.Errorf("resolve product: %w", err)
		}
		if e.ProductName == "" {
			e.ProductName = it.Name
		}
		if e.Category == "" {
			e.Category = it.Category
		}
		if e.Price == 0 {
			e.Price = it.Price
		}
	}

	e.ID = s.newID()
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	if err := s.repo.Append(ctx, e); err != nil {
		return domact.Event{}, fmt.Errorf("append event: %w", err)
	}
	return e, nil
}

// Summary returns counters, recent events and profile text for a user.
func (s *Service) Summary(ctx context.Context, userID string) (domact.Summary, error) {
	if err := validateUserID(userID); err != nil {
		return domact.Summary{}, err
	}
	sum, err := s.repo.Summary(ctx, userID, s.recent)
	if err != nil {
		return domact.Summary{}, fmt.Errorf("summary: %w", err)
	}
	return sum, nil
}

func validateUserID(id string) error {
	if !userIDRegex.MatchString(id) {
		return fmt.Errorf("user_id must be 1-128 characters of letters, digits, '_', '.', '@' or '-': %w",
			domain.ErrInvalidQuery)
	}
	return nil
}
