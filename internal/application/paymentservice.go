package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
	"github.com/ericfisherdev/postpilot/internal/observability"
)

var (
	// ErrInvalidSignature is returned when a payment callback signature does
	// not match. No state is changed.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrPaymentsNotConfigured is returned when no gateway secret is set.
	ErrPaymentsNotConfigured = errors.New("payments are not configured")

	// ErrInvalidAmount is returned for non-positive or oversized order amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrPlanNotPurchasable is returned for plans that cannot be bought.
	ErrPlanNotPurchasable = errors.New("plan is not purchasable")
)

// maxOrderAmount caps order amounts in major units.
const maxOrderAmount = 10_000_000

// PaymentService creates gateway orders and applies plan upgrades for
// verified payment callbacks.
type PaymentService struct {
	users    driven.UserStore
	gateway  driven.PaymentGateway
	currency string
	secret   string
	now      func() time.Time
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewPaymentService creates a PaymentService. secret is the gateway key
// secret used to verify callback signatures.
func NewPaymentService(
	users driven.UserStore,
	gateway driven.PaymentGateway,
	currency string,
	secret string,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		users:    users,
		gateway:  gateway,
		currency: currency,
		secret:   secret,
		now:      time.Now,
		metrics:  metrics,
		logger:   logger,
	}
}

// WithClock replaces the service clock. Intended for tests.
func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	s.now = now
	return s
}

// KeyID returns the public gateway key handed to the checkout widget.
func (s *PaymentService) KeyID() string {
	return s.gateway.KeyID()
}

// CreateOrder opens a gateway order for amount major units of the configured
// currency, tagged with the user and plan. Fractional amounts are rounded to
// the nearest minor unit.
func (s *PaymentService) CreateOrder(ctx context.Context, amount float64, plan model.Plan, userID string) (model.Order, error) {
	if !(amount > 0) || amount > maxOrderAmount {
		return model.Order{}, ErrInvalidAmount
	}
	minor := int64(math.Round(amount * 100))
	if minor < 1 {
		return model.Order{}, ErrInvalidAmount
	}
	if !plan.Purchasable() {
		return model.Order{}, ErrPlanNotPurchasable
	}

	req := model.OrderRequest{
		Amount:   minor,
		Currency: s.currency,
		Receipt:  fmt.Sprintf("rcpt_%d", s.now().UnixMilli()),
		Notes: map[string]string{
			"email": userID,
			"plan":  string(plan),
		},
	}

	order, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		s.logger.Error("order creation failed", "user", userID, "plan", plan, "amount", req.Amount, "error", err)
		s.metrics.ObserveOrder(string(plan), observability.OutcomeProviderError)
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.metrics.ObserveOrder(string(plan), observability.OutcomeSuccess)
	s.logger.Info("order created", "user", userID, "plan", plan, "order_id", order.ID, "amount", order.Amount)
	return order, nil
}

// VerifyPayment checks the callback signature and, on a match, moves the user
// onto the paid plan with its credit allotment and a payment timestamp.
func (s *PaymentService) VerifyPayment(ctx context.Context, cb model.PaymentCallback) (model.User, error) {
	if s.secret == "" {
		return model.User{}, ErrPaymentsNotConfigured
	}
	if !cb.Plan.Purchasable() {
		return model.User{}, ErrPlanNotPurchasable
	}

	if !VerifyPaymentSignature(cb.OrderID, cb.PaymentID, cb.Signature, s.secret) {
		s.logger.Warn("payment signature mismatch", "user", cb.UserID, "order_id", cb.OrderID, "payment_id", cb.PaymentID)
		s.metrics.ObserveVerification(string(cb.Plan), observability.OutcomeInvalid)
		return model.User{}, ErrInvalidSignature
	}

	user, err := GrantPlan(ctx, s.users, cb.UserID, cb.Plan, s.now())
	if err != nil {
		s.metrics.ObserveVerification(string(cb.Plan), observability.OutcomeError)
		return model.User{}, err
	}

	s.metrics.ObserveVerification(string(cb.Plan), observability.OutcomeSuccess)
	s.logger.Info("payment verified", "user", cb.UserID, "plan", cb.Plan, "order_id", cb.OrderID, "payment_id", cb.PaymentID)
	return user, nil
}

// GrantPlan moves userID onto plan with its full credit allotment and records
// paidAt as the last payment time.
func GrantPlan(ctx context.Context, users driven.UserStore, userID string, plan model.Plan, paidAt time.Time) (model.User, error) {
	credits := plan.Allotment()
	paidAt = paidAt.UTC()

	user, err := users.Update(ctx, userID, model.UserPatch{
		Plan:          &plan,
		Credits:       &credits,
		LastPaymentAt: &paidAt,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("grant plan %s to %q: %w", plan, userID, err)
	}
	return user, nil
}
