package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a failure body carrying message under "error".
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

// writeFailure writes a failure body carrying message under "message". The
// payment verification endpoint reports failures this way.
func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// GenerateRequest is the body of POST /api/generate-linkedin.
type GenerateRequest struct {
	Topic  string `json:"topic"`
	Format string `json:"format"`
	Tone   string `json:"tone"`
	Length string `json:"length"`
	Emojis bool   `json:"emojis"`
	Email  string `json:"email"`
}

// GenerateResponse is returned for a successful generation.
type GenerateResponse struct {
	Success          bool   `json:"success"`
	Content          string `json:"content"`
	CreditsRemaining int    `json:"creditsRemaining"`
}

// CreateOrderRequest is the body of POST /api/create-order. Amount is in
// major currency units and may carry a fraction.
type CreateOrderRequest struct {
	Amount float64 `json:"amount"`
	Plan   string  `json:"plan"`
	Email  string  `json:"email"`
}

// CreateOrderResponse is returned once the gateway accepted the order.
type CreateOrderResponse struct {
	Success       bool   `json:"success"`
	OrderID       string `json:"orderId"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	RazorpayKeyID string `json:"razorpayKeyId"`
}

// VerifyPaymentRequest is the body of POST /api/verify-payment, as posted by
// the checkout widget handler.
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	Email     string `json:"email"`
	Plan      string `json:"plan"`
}

// VerifyPaymentResponse is returned after a plan grant.
type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Plan    string `json:"plan"`
	Credits int    `json:"credits"`
}

// UserResponse is the JSON representation of a user record. LastPayment is
// epoch milliseconds.
type UserResponse struct {
	Email       string `json:"email"`
	Plan        string `json:"plan"`
	Credits     int    `json:"credits"`
	LastPayment *int64 `json:"lastPayment,omitempty"`
}

// GetUserResponse wraps a user record.
type GetUserResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// HealthResponse is the JSON response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toUserResponse(u model.User) UserResponse {
	resp := UserResponse{
		Email:   u.ID,
		Plan:    string(u.Plan),
		Credits: u.Credits,
	}
	if u.LastPaymentAt != nil {
		ms := u.LastPaymentAt.UnixMilli()
		resp.LastPayment = &ms
	}
	return resp
}

func healthNow() HealthResponse {
	return HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
}
