package driven

import (
	"context"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
)

// PaymentGateway defines the driven port for the payment provider.
// Gateway errors are reported as *ProviderError, ErrMalformedResponse, or
// ErrProviderUnavailable.
type PaymentGateway interface {
	// CreateOrder opens an order for req.Amount minor units.
	CreateOrder(ctx context.Context, req model.OrderRequest) (model.Order, error)

	// KeyID returns the public key identifier handed to the checkout widget.
	KeyID() string
}
