package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
)

// ErrInsufficientCredits is returned by UserStore.Consume when a free-plan
// user has no credits left. The record is not modified.
var ErrInsufficientCredits = errors.New("insufficient credits")

// UserStore defines the driven port for user plan persistence.
type UserStore interface {
	// Get returns the stored user, or model.DefaultUser(id) when none exists.
	// Reading never persists the default record.
	Get(ctx context.Context, id string) (model.User, error)

	// Update merges patch onto the current (or default) record, persists it,
	// and returns the merged result.
	Update(ctx context.Context, id string, patch model.UserPatch) (model.User, error)

	// Consume atomically debits one credit from a free-plan user and returns
	// the updated record. Paid plans are returned unchanged. Returns
	// ErrInsufficientCredits if a free-plan user has no credits left.
	Consume(ctx context.Context, id string) (model.User, error)
}
