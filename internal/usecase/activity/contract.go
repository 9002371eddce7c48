package activity

import (
	"context"

	domact "github.com/kailas-cloud/furnidex/internal/domain/activity"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// Repository stores events and aggregates summaries.
type Repository interface {
	Append(ctx context.Context, e domact.Event) error
	Summary(ctx context.Context, userID string, recent int) (domact.Summary, error)
}

// ProductReader resolves product payloads for view and click events.
type ProductReader interface {
	Retrieve(ctx context.Context, id string, spaces ...vector.Space) (catalog.Item, map[vector.Space][]float32, error)
}
