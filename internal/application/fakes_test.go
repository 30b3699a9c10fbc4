package application

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
)

// --- Fake implementations for service tests ---

type memUserStore struct {
	mu      sync.Mutex
	users   map[string]model.User
	writes  int
	getErr  error
	failErr error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]model.User{}}
}

func (m *memUserStore) Get(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return model.User{}, m.getErr
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return model.DefaultUser(id), nil
}

func (m *memUserStore) Update(_ context.Context, id string, patch model.UserPatch) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return model.User{}, m.failErr
	}
	u, ok := m.users[id]
	if !ok {
		u = model.DefaultUser(id)
	}
	u = patch.Apply(u)
	m.users[id] = u
	m.writes++
	return u, nil
}

func (m *memUserStore) Consume(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return model.User{}, m.failErr
	}
	u, ok := m.users[id]
	if !ok {
		u = model.DefaultUser(id)
	}
	charged, ok := u.ChargeIfFree()
	if !ok {
		return u, driven.ErrInsufficientCredits
	}
	if charged.Plan.Metered() {
		m.users[id] = charged
		m.writes++
	}
	return charged, nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	content string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.content, f.err
}

type fakeGateway struct {
	keyID    string
	requests []model.OrderRequest
	order    model.Order
	err      error
}

func (f *fakeGateway) CreateOrder(_ context.Context, req model.OrderRequest) (model.Order, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return model.Order{}, f.err
	}
	order := f.order
	order.Amount = req.Amount
	order.Currency = req.Currency
	order.Receipt = req.Receipt
	return order, nil
}

func (f *fakeGateway) KeyID() string { return f.keyID }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
