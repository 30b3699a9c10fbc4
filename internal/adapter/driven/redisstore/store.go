// Package redisstore implements the UserStore port on Redis. Each user is a
// JSON value under "<prefix>:user:<id>"; writes use optimistic WATCH
// transactions.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
)

// maxTxRetries bounds how often a conflicting WATCH transaction is retried.
const maxTxRetries = 16

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*Store)(nil)

type record struct {
	Plan        string `json:"plan"`
	Credits     int    `json:"credits"`
	LastPayment *int64 `json:"lastPayment,omitempty"`
}

// Store is the Redis-backed user store.
type Store struct {
	client *redis.Client
	prefix string
}

// Open parses url, connects and pings the server.
func Open(ctx context.Context, url, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return New(client, prefix), nil
}

// New wraps an existing client.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "postpilot"
	}
	return &Store{client: client, prefix: prefix}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(id string) string {
	return s.prefix + ":user:" + id
}

// Get returns the stored user or the default record.
func (s *Store) Get(ctx context.Context, id string) (model.User, error) {
	u, err := s.read(ctx, s.client, id)
	if err != nil {
		return model.User{}, fmt.Errorf("get user %q: %w", id, err)
	}
	return u, nil
}

// Update merges patch onto the current record and stores it.
func (s *Store) Update(ctx context.Context, id string, patch model.UserPatch) (model.User, error) {
	var updated model.User

	err := s.transact(ctx, id, func(tx *redis.Tx, current model.User) error {
		updated = patch.Apply(current)
		return s.write(ctx, tx, updated)
	})
	if err != nil {
		return model.User{}, fmt.Errorf("update user %q: %w", id, err)
	}
	return updated, nil
}

// Consume debits one credit from a free user. Paid users are returned
// unchanged.
func (s *Store) Consume(ctx context.Context, id string) (model.User, error) {
	var charged model.User

	err := s.transact(ctx, id, func(tx *redis.Tx, current model.User) error {
		var ok bool
		if charged, ok = current.ChargeIfFree(); !ok {
			return driven.ErrInsufficientCredits
		}
		if !charged.Plan.Metered() {
			return nil
		}
		return s.write(ctx, tx, charged)
	})
	if err != nil {
		return model.User{}, fmt.Errorf("consume credit for %q: %w", id, err)
	}
	return charged, nil
}

// transact runs fn with the key watched, retrying when another client
// modified it before EXEC.
func (s *Store) transact(ctx context.Context, id string, fn func(tx *redis.Tx, current model.User) error) error {
	key := s.key(id)

	txf := func(tx *redis.Tx) error {
		current, err := s.read(ctx, tx, id)
		if err != nil {
			return err
		}
		return fn(tx, current)
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("transaction on %s: too many conflicts", key)
}

func (s *Store) write(ctx context.Context, tx *redis.Tx, u model.User) error {
	rec := record{Plan: string(u.Plan), Credits: u.Credits}
	if u.LastPaymentAt != nil {
		ms := u.LastPaymentAt.UnixMilli()
		rec.LastPayment = &ms
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(u.ID), data, 0)
		return nil
	})
	return err
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Store) read(ctx context.Context, c getter, id string) (model.User, error) {
	data, err := c.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.DefaultUser(id), nil
	}
	if err != nil {
		return model.User{}, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.User{}, fmt.Errorf("decode user: %w", err)
	}

	plan, err := model.ParsePlan(rec.Plan)
	if err != nil {
		return model.User{}, err
	}

	u := model.User{ID: id, Plan: plan, Credits: rec.Credits}
	if rec.LastPayment != nil {
		t := time.UnixMilli(*rec.LastPayment).UTC()
		u.LastPaymentAt = &t
	}
	return u, nil
}
