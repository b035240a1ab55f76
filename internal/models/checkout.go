package models

import "github.com/google/uuid"

// CheckoutState is the orchestrator's per-session state machine position.
type CheckoutState string

const (
	CheckoutStateIdle            CheckoutState = "idle"
	CheckoutStateAwaitingPayment CheckoutState = "awaiting_external_payment"
	CheckoutStateAwaitingSubmit  CheckoutState = "awaiting_order_submission"
	CheckoutStateOrderCreated    CheckoutState = "order_created"
)

// IsTerminal reports whether the session reached its success state.
func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateOrderCreated
}

type BeginCheckoutRequest struct {
	BuyerName       string  `json:"buyer_name" validate:"required"`
	BuyerEmail      string  `json:"buyer_email" validate:"required,email"`
	DeliveryAddress Address `json:"delivery_address" validate:"required"`
	Notes           string  `json:"notes"`
}

// CheckoutSnapshot is the externally visible view of a checkout session.
type CheckoutSnapshot struct {
	Nonce       uuid.UUID     `json:"nonce"`
	State       CheckoutState `json:"state"`
	RedirectURL string        `json:"redirect_url,omitempty"`
	OrderID     string        `json:"order_id,omitempty"`
	LastError   string        `json:"last_error,omitempty"`
}
