package observability

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*InstrumentedUserStore)(nil)

// InstrumentedUserStore decorates a driven.UserStore with operation metrics.
type InstrumentedUserStore struct {
	next    driven.UserStore
	metrics *Metrics
	backend string
}

// InstrumentUserStore wraps next so every call is counted and timed under
// the given backend label.
func InstrumentUserStore(next driven.UserStore, metrics *Metrics, backend string) *InstrumentedUserStore {
	return &InstrumentedUserStore{next: next, metrics: metrics, backend: backend}
}

// Get delegates to the wrapped store.
func (s *InstrumentedUserStore) Get(ctx context.Context, id string) (model.User, error) {
	start := time.Now()
	u, err := s.next.Get(ctx, id)
	s.metrics.ObserveStore(s.backend, "get", err, time.Since(start))
	return u, err
}

// Update delegates to the wrapped store.
func (s *InstrumentedUserStore) Update(ctx context.Context, id string, patch model.UserPatch) (model.User, error) {
	start := time.Now()
	u, err := s.next.Update(ctx, id, patch)
	s.metrics.ObserveStore(s.backend, "update", err, time.Since(start))
	return u, err
}

// Consume delegates to the wrapped store. Running out of credits is a
// business outcome and is not counted as a store error.
func (s *InstrumentedUserStore) Consume(ctx context.Context, id string) (model.User, error) {
	start := time.Now()
	u, err := s.next.Consume(ctx, id)
	observed := err
	if errors.Is(err, driven.ErrInsufficientCredits) {
		observed = nil
	}
	s.metrics.ObserveStore(s.backend, "consume", observed, time.Since(start))
	return u, err
}
