// Package razorpay implements the PaymentGateway port against the Razorpay
// Orders REST API.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
)

const (
	// DefaultBaseURL is the production Razorpay API endpoint.
	DefaultBaseURL = "https://api.razorpay.com"

	providerName = "razorpay"

	maxResponseBytes = 1 << 20
)

// Compile-time interface satisfaction check.
var _ driven.PaymentGateway = (*Client)(nil)

// Client creates orders using HTTP basic auth with the key id and secret.
type Client struct {
	http    *http.Client
	baseURL string
	keyID   string
	secret  string
}

// NewClient creates a Client. An empty baseURL falls back to DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL, keyID, secret string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		keyID:   keyID,
		secret:  secret,
	}
}

// KeyID returns the public key id handed to the checkout widget.
func (c *Client) KeyID() string {
	return c.keyID
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	Error    *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder posts req to /v1/orders and returns the gateway's order.
func (c *Client) CreateOrder(ctx context.Context, req model.OrderRequest) (model.Order, error) {
	if c.keyID == "" || c.secret == "" {
		return model.Order{}, &driven.ProviderError{Provider: providerName, Message: "API keys not configured"}
	}

	bodyBytes, err := json.Marshal(orderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return model.Order{}, fmt.Errorf("marshaling order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(bodyBytes))
	if err != nil {
		return model.Order{}, fmt.Errorf("creating order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.secret)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return model.Order{}, fmt.Errorf("%w: %w", driven.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.Order{}, fmt.Errorf("%w: reading body: %w", driven.ErrProviderUnavailable, err)
	}

	var orderResp orderResponse
	if err := json.Unmarshal(raw, &orderResp); err != nil {
		return model.Order{}, fmt.Errorf("%w: HTTP %d: %w", driven.ErrMalformedResponse, resp.StatusCode, err)
	}

	if orderResp.Error != nil {
		return model.Order{}, &driven.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Code:       orderResp.Error.Code,
			Message:    orderResp.Error.Description,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Order{}, fmt.Errorf("%w: HTTP %d without error payload", driven.ErrMalformedResponse, resp.StatusCode)
	}
	if orderResp.ID == "" {
		return model.Order{}, fmt.Errorf("%w: order id missing", driven.ErrMalformedResponse)
	}

	return model.Order{
		ID:       orderResp.ID,
		Amount:   orderResp.Amount,
		Currency: orderResp.Currency,
		Receipt:  orderResp.Receipt,
		Status:   orderResp.Status,
	}, nil
}
