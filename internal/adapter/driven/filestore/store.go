// Package filestore implements the UserStore port on a single JSON document
// mapping user id to record.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*Store)(nil)

// record is the on-disk shape of one user. LastPayment is epoch milliseconds.
type record struct {
	Email       string `json:"email"`
	Plan        string `json:"plan"`
	Credits     int    `json:"credits"`
	LastPayment *int64 `json:"lastPayment,omitempty"`
}

// Store keeps users in a JSON file. Every operation re-reads the file under
// a mutex, and writes replace it atomically, so a crash mid-write leaves the
// previous version intact.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// New creates a Store backed by path. The file is created on first write.
func New(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Get returns the stored user or the default record.
func (s *Store) Get(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	return lookup(users, id), nil
}

// Update merges patch onto the current record and rewrites the file.
func (s *Store) Update(_ context.Context, id string, patch model.UserPatch) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	updated := patch.Apply(lookup(users, id))
	users[id] = toRecord(updated)

	if err := s.save(users); err != nil {
		return model.User{}, fmt.Errorf("update user %q: %w", id, err)
	}
	return updated, nil
}

// Consume debits one credit from a free user. Paid users are returned
// unchanged without a write.
func (s *Store) Consume(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	current := lookup(users, id)

	charged, ok := current.ChargeIfFree()
	if !ok {
		return model.User{}, fmt.Errorf("consume credit for %q: %w", id, driven.ErrInsufficientCredits)
	}
	if !charged.Plan.Metered() {
		return charged, nil
	}

	users[id] = toRecord(charged)
	if err := s.save(users); err != nil {
		return model.User{}, fmt.Errorf("consume credit for %q: %w", id, err)
	}
	return charged, nil
}

// load reads the mapping. A missing or unparseable file reads as empty.
func (s *Store) load() map[string]record {
	users := make(map[string]record)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("user file unreadable, treating as empty", "path", s.path, "error", err)
		}
		return users
	}

	if err := json.Unmarshal(data, &users); err != nil {
		s.logger.Warn("user file corrupt, treating as empty", "path", s.path, "error", err)
		return make(map[string]record)
	}
	return users
}

func (s *Store) save(users map[string]record) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func lookup(users map[string]record, id string) model.User {
	rec, ok := users[id]
	if !ok {
		return model.DefaultUser(id)
	}

	plan, err := model.ParsePlan(rec.Plan)
	if err != nil {
		plan = model.PlanFree
	}

	u := model.User{ID: id, Plan: plan, Credits: rec.Credits}
	if rec.LastPayment != nil {
		t := time.UnixMilli(*rec.LastPayment).UTC()
		u.LastPaymentAt = &t
	}
	return u
}

func toRecord(u model.User) record {
	rec := record{Email: u.ID, Plan: string(u.Plan), Credits: u.Credits}
	if u.LastPaymentAt != nil {
		ms := u.LastPaymentAt.UnixMilli()
		rec.LastPayment = &ms
	}
	return rec
}
