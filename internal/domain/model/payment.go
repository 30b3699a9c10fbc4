package model

// OrderRequest is sent to the payment gateway to open a new order.
// Amount is expressed in minor currency units (paise, cents).
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is the gateway-side record of an intended charge.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// PaymentCallback carries the values returned by the checkout widget after
// the user completes a payment client-side.
type PaymentCallback struct {
	OrderID   string
	PaymentID string
	Signature string
	UserID    string
	Plan      Plan
}
