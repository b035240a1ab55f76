package models

import (
	"time"
)

// CartItem is one cart line: a snapshot of the product plus the quantity
// pending checkout. ProductID may be empty for catalog entries that only
// carry a slug; the submission policy decides what happens to such lines.
type CartItem struct {
	ProductID string  `json:"product_id,omitempty"`
	Slug      string  `json:"slug,omitempty"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Key is the product identity the cart is keyed by.
func (i CartItem) Key() string {
	if i.ProductID != "" {
		return i.ProductID
	}

	return i.Slug
}

func (i CartItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

type Cart struct {
	BuyerID   string              `json:"buyer_id"`
	Items     map[string]CartItem `json:"items"`
	Total     float64             `json:"total"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate freely before writing the
// cart back to the store.
func (c *Cart) Clone() *Cart {
	items := make(map[string]CartItem, len(c.Items))
	for k, v := range c.Items {
		items[k] = v
	}

	return &Cart{
		BuyerID:   c.BuyerID,
		Items:     items,
		Total:     c.Total,
		UpdatedAt: c.UpdatedAt,
	}
}

type AddItemRequest struct {
	ProductID string  `json:"product_id"`
	Slug      string  `json:"slug"`
	Title     string  `json:"title" validate:"required"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

type CartItemRequest struct {
	ProductKey string `json:"product_key" validate:"required"`
}
