package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port.
type UserRepo struct {
	db  *DB
	now func() time.Time
}

// NewUserRepo creates a UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db, now: time.Now}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectUser = `SELECT id, plan, credits, last_payment_at FROM users WHERE id = ?`

const upsertUser = `
	INSERT INTO users (id, plan, credits, last_payment_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		plan = excluded.plan,
		credits = excluded.credits,
		last_payment_at = excluded.last_payment_at,
		updated_at = excluded.updated_at`

// Get returns the stored user, or the default free user when id is unknown.
// Reading never creates a row.
func (r *UserRepo) Get(ctx context.Context, id string) (model.User, error) {
	u, err := loadUser(ctx, r.db.Reader, id)
	if err != nil {
		return model.User{}, fmt.Errorf("get user %q: %w", id, err)
	}
	return u, nil
}

// Update merges patch onto the current record (or the default) and stores it.
func (r *UserRepo) Update(ctx context.Context, id string, patch model.UserPatch) (model.User, error) {
	var updated model.User

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		current, err := loadUser(ctx, tx, id)
		if err != nil {
			return err
		}

		updated = patch.Apply(current)
		return r.save(ctx, tx, updated)
	})
	if err != nil {
		return model.User{}, fmt.Errorf("update user %q: %w", id, err)
	}

	return updated, nil
}

// Consume debits one credit from a free user inside a single write
// transaction. Paid users are returned unchanged. A free user with no credits
// gets driven.ErrInsufficientCredits.
func (r *UserRepo) Consume(ctx context.Context, id string) (model.User, error) {
	var charged model.User

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		current, err := loadUser(ctx, tx, id)
		if err != nil {
			return err
		}

		var ok bool
		if charged, ok = current.ChargeIfFree(); !ok {
			return driven.ErrInsufficientCredits
		}
		if !charged.Plan.Metered() {
			return nil
		}
		return r.save(ctx, tx, charged)
	})
	if err != nil {
		return model.User{}, fmt.Errorf("consume credit for %q: %w", id, err)
	}

	return charged, nil
}

func (r *UserRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *UserRepo) save(ctx context.Context, tx *sql.Tx, u model.User) error {
	var paidAt sql.NullString
	if u.LastPaymentAt != nil {
		paidAt = sql.NullString{String: u.LastPaymentAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	_, err := tx.ExecContext(ctx, upsertUser,
		u.ID, string(u.Plan), u.Credits, paidAt, r.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func loadUser(ctx context.Context, q queryer, id string) (model.User, error) {
	var (
		u      model.User
		plan   string
		paidAt sql.NullString
	)

	err := q.QueryRowContext(ctx, selectUser, id).Scan(&u.ID, &plan, &u.Credits, &paidAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultUser(id), nil
	}
	if err != nil {
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}

	u.Plan, err = model.ParsePlan(plan)
	if err != nil {
		return model.User{}, err
	}

	if paidAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, paidAt.String)
		if err != nil {
			return model.User{}, fmt.Errorf("parse last_payment_at: %w", err)
		}
		u.LastPaymentAt = &t
	}

	return u, nil
}
