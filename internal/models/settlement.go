package models

import (
	"time"

	"github.com/google/uuid"
)

// SettlementGap records a checkout where the provider captured the payment
// but order creation failed. These rows are the input to manual
// reconciliation; nothing in this service resolves them automatically.
type SettlementGap struct {
	ID           uuid.UUID `json:"id"`
	Nonce        uuid.UUID `json:"nonce"`
	BuyerID      string    `json:"buyer_id"`
	Amount       float64   `json:"amount"`
	PaymentState string    `json:"payment_state"`
	Cause        string    `json:"cause"`
	CreatedAt    time.Time `json:"created_at"`
	Resolved     bool      `json:"resolved"`
}
