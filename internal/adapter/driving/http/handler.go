// Package httphandler is the JSON API driving adapter.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ericfisherdev/postpilot/internal/application"
	"github.com/ericfisherdev/postpilot/internal/domain/model"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
	"github.com/ericfisherdev/postpilot/internal/observability"
)

const (
	maxBodyBytes  = 64 << 10
	maxTopicRunes = 2000
	maxToneRunes  = 60
	defaultTone   = "professional"

	msgQuotaExhausted = "No credits left. Please upgrade!"
	msgInternal       = "internal server error"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	users      driven.UserStore
	generation *application.GenerationService
	payments   *application.PaymentService
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	users driven.UserStore,
	generation *application.GenerationService,
	payments *application.PaymentService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		users:      users,
		generation: generation,
		payments:   payments,
		logger:     logger,
	}
}

// RegisterAPIRoutes registers every /api route on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/generate-linkedin", h.GenerateLinkedIn)
	mux.HandleFunc("POST /api/create-order", h.CreateOrder)
	mux.HandleFunc("POST /api/verify-payment", h.VerifyPayment)
	mux.HandleFunc("GET /api/user/{email}", h.GetUser)
	mux.HandleFunc("GET /api/health", h.Health)
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with the standard middleware chain.
func NewServeMux(h *Handler, logger *slog.Logger, metrics *observability.Metrics) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger, metrics)
}

// GenerateLinkedIn produces a post for the caller, metering free users.
func (h *Handler) GenerateLinkedIn(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeBody(w, r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts, msg := parsePostOptions(req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.generation.Generate(r.Context(), req.Email, opts)
	if err != nil {
		h.writeGenerationError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Success:          true,
		Content:          result.Content,
		CreditsRemaining: result.CreditsRemaining,
	})
}

func (h *Handler) writeGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, application.ErrQuotaExhausted) {
		writeError(w, http.StatusOK, msgQuotaExhausted)
		return
	}

	h.logger.Error("generation request failed", "error", err, "request_id", RequestIDFromContext(r.Context()))

	var pe *driven.ProviderError
	switch {
	case errors.As(err, &pe):
		writeError(w, http.StatusInternalServerError, "AI generation failed: "+pe.Message)
	case errors.Is(err, driven.ErrMalformedResponse):
		writeError(w, http.StatusInternalServerError, "AI generation failed: "+driven.ErrMalformedResponse.Error())
	case errors.Is(err, driven.ErrProviderUnavailable):
		writeError(w, http.StatusInternalServerError, "AI generation failed: "+driven.ErrProviderUnavailable.Error())
	default:
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// parsePostOptions validates a generation request. It returns a non-empty
// message describing the first invalid field.
func parsePostOptions(req GenerateRequest) (model.PostOptions, string) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return model.PostOptions{}, "topic is required"
	}
	if utf8.RuneCountInString(topic) > maxTopicRunes {
		return model.PostOptions{}, "topic is too long"
	}

	format, err := model.ParsePostFormat(strings.TrimSpace(req.Format))
	if err != nil {
		return model.PostOptions{}, "invalid format: expected story, howto, list, contrarian or question"
	}

	length, err := model.ParsePostLength(strings.TrimSpace(req.Length))
	if err != nil {
		return model.PostOptions{}, "invalid length: expected short, medium or long"
	}

	tone := strings.TrimSpace(req.Tone)
	if tone == "" {
		tone = defaultTone
	}
	if utf8.RuneCountInString(tone) > maxToneRunes {
		return model.PostOptions{}, "tone is too long"
	}

	return model.PostOptions{
		Topic:  topic,
		Format: format,
		Tone:   tone,
		Length: length,
		Emojis: req.Emojis,
	}, ""
}

// CreateOrder opens a gateway order for a plan purchase.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeBody(w, r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	plan, err := model.ParsePlan(strings.TrimSpace(req.Plan))
	if err != nil || !plan.Purchasable() {
		writeError(w, http.StatusBadRequest, "invalid plan: expected starter or unlimited")
		return
	}

	if h.payments.KeyID() == "" {
		writeError(w, http.StatusServiceUnavailable, "payments are not configured")
		return
	}

	order, err := h.payments.CreateOrder(r.Context(), req.Amount, plan, email)
	if err != nil {
		var pe *driven.ProviderError
		switch {
		case errors.Is(err, application.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "invalid amount")
		case errors.As(err, &pe):
			writeError(w, http.StatusInternalServerError, pe.Message)
		default:
			h.logger.Error("order creation failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
			writeError(w, http.StatusInternalServerError, "order creation failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, CreateOrderResponse{
		Success:       true,
		OrderID:       order.ID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		RazorpayKeyID: h.payments.KeyID(),
	})
}

// VerifyPayment checks a checkout callback signature and grants the plan.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequest
	if !decodeBody(w, r, &req) {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeFailure(w, http.StatusBadRequest, "email is required")
		return
	}

	plan, err := model.ParsePlan(strings.TrimSpace(req.Plan))
	if err != nil || !plan.Purchasable() {
		writeFailure(w, http.StatusBadRequest, "invalid plan: expected starter or unlimited")
		return
	}

	user, err := h.payments.VerifyPayment(r.Context(), model.PaymentCallback{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		UserID:    email,
		Plan:      plan,
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidSignature):
			writeFailure(w, http.StatusBadRequest, "Invalid signature")
		case errors.Is(err, application.ErrPaymentsNotConfigured):
			writeFailure(w, http.StatusServiceUnavailable, "payments are not configured")
		default:
			h.logger.Error("payment verification failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
			writeFailure(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	writeJSON(w, http.StatusOK, VerifyPaymentResponse{
		Success: true,
		Message: "Payment verified!",
		Plan:    string(user.Plan),
		Credits: user.Credits,
	})
}

// GetUser returns the plan state for an identifier. Unknown identifiers read
// as the default free record and are not persisted.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PathValue("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := h.users.Get(r.Context(), email)
	if err != nil {
		h.logger.Error("failed to get user", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, GetUserResponse{Success: true, User: toUserResponse(user)})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthNow())
}

// decodeBody decodes a size-limited JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v) == nil
}
