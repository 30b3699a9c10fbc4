package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
	"github.com/ericfisherdev/postpilot/internal/observability"
)

// ErrQuotaExhausted is returned when a free-plan user has no credits left.
// It is a normal business outcome, not a failure.
var ErrQuotaExhausted = errors.New("no credits left")

// DefaultGuestID is the identity used for callers that do not supply one.
const DefaultGuestID = "guest"

// GenerationService meters post generation against the caller's credits.
type GenerationService struct {
	users     driven.UserStore
	generator driven.TextGenerator
	guestID   string
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewGenerationService creates a GenerationService. An empty guestID falls
// back to DefaultGuestID; metrics may be nil.
func NewGenerationService(
	users driven.UserStore,
	generator driven.TextGenerator,
	guestID string,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *GenerationService {
	if guestID == "" {
		guestID = DefaultGuestID
	}
	return &GenerationService{
		users:     users,
		generator: generator,
		guestID:   guestID,
		metrics:   metrics,
		logger:    logger,
	}
}

// ResolveUserID maps an empty identifier onto the shared guest identity.
func (s *GenerationService) ResolveUserID(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return s.guestID
	}
	return userID
}

// Generate produces a post for userID. Free users are checked before the
// provider is called and debited only after it succeeds, so a failed call
// never costs a credit. Returns ErrQuotaExhausted without calling the
// provider when the user cannot generate.
func (s *GenerationService) Generate(ctx context.Context, userID string, opts model.PostOptions) (model.GenerationResult, error) {
	id := s.ResolveUserID(userID)

	user, err := s.users.Get(ctx, id)
	if err != nil {
		s.metrics.ObserveGeneration("unknown", observability.OutcomeError)
		return model.GenerationResult{}, fmt.Errorf("load user %q: %w", id, err)
	}

	plan := string(user.Plan)
	if !user.CanGenerate() {
		s.metrics.ObserveGeneration(plan, observability.OutcomeQuotaExceeded)
		return model.GenerationResult{}, ErrQuotaExhausted
	}

	start := time.Now()
	content, err := s.generator.Generate(ctx, BuildPrompt(opts))
	s.metrics.ObserveProviderLatency(time.Since(start))
	if err != nil {
		s.logger.Error("generation failed", "user", id, "format", opts.Format, "error", err)
		s.metrics.ObserveGeneration(plan, observability.OutcomeProviderError)
		return model.GenerationResult{}, fmt.Errorf("generate post: %w", err)
	}

	charged := user
	if user.Plan.Metered() {
		charged, err = s.users.Consume(ctx, id)
		if errors.Is(err, driven.ErrInsufficientCredits) {
			// Another request spent the last credit while this one was generating.
			s.metrics.ObserveGeneration(plan, observability.OutcomeQuotaExceeded)
			return model.GenerationResult{}, ErrQuotaExhausted
		}
		if err != nil {
			s.metrics.ObserveGeneration(plan, observability.OutcomeError)
			return model.GenerationResult{}, fmt.Errorf("debit credit for %q: %w", id, err)
		}
	}

	s.metrics.ObserveGeneration(plan, observability.OutcomeSuccess)
	s.logger.Info("post generated",
		"user", id,
		"plan", charged.Plan,
		"format", opts.Format,
		"length", opts.Length,
		"credits_remaining", charged.CreditsRemaining(),
	)

	return model.GenerationResult{
		Content:          strings.TrimSpace(content),
		CreditsRemaining: charged.CreditsRemaining(),
		User:             charged,
	}, nil
}
