package store

import (
	"context"

	"PowerPrice/internal/model"
)

// NoopStore is used when no backend is configured; the rate lives in memory only.
type NoopStore struct{}

// NewNoopStore creates a store that remembers nothing.
func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) LoadRate(_ context.Context, _ string) (*model.ConversionRate, error) {
	return nil, nil
}
func (n *NoopStore) SaveRate(_ context.Context, _ string, _ model.ConversionRate) error { return nil }
func (n *NoopStore) Close() error                                                      { return nil }
