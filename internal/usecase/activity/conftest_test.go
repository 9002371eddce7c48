package activity

import (
	"context"

	"github.com/kailas-cloud/furnidex/internal/domain"
	domact "github.com/kailas-cloud/furnidex/internal/domain/activity"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

type mockRepo struct {
	appended  []domact.Event
	appendErr error
	summaryFn func(ctx context.Context, userID string, recent int) (domact.Summary, error)
}

func (m *mockRepo) Append(_ context.Context, e domact.Event) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, e)
	return nil
}

func (m *mockRepo) Summary(ctx context.Context, userID string, recent int) (domact.Summary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(ctx, userID, recent)
	}
	return domact.Summary{UserID: userID}, nil
}

type mockProducts map[string]catalog.Item

func (m mockProducts) Retrieve(_ context.Context, id string, _ ...vector.Space) (catalog.Item, map[vector.Space][]float32, error) {
	it, ok := m[id]
	if !ok {
		return catalog.Item{}, nil, domain.ErrNotFound
	}
	return it, nil, nil
}
