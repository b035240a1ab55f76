package models

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusUnknown   OrderStatus = "unknown"
)

// ParseOrderStatus is the single place backend status text becomes a typed
// value. Unmapped strings become OrderStatusUnknown instead of a guess.
func ParseOrderStatus(s string) OrderStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return OrderStatusPending
	case "confirmed":
		return OrderStatusConfirmed
	case "shipping":
		return OrderStatusShipping
	case "delivered":
		return OrderStatusDelivered
	case "cancelled":
		return OrderStatusCancelled
	default:
		return OrderStatusUnknown
	}
}

type Address struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
}

// OrderItem is the server-side snapshot of a cart line at order time.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// Order is owned by the Order API. It is created exactly once per successful
// checkout and never mutated locally afterwards.
type Order struct {
	ID              string      `json:"id"`
	BuyerID         string      `json:"buyer_id"`
	Items           []OrderItem `json:"line_items"`
	DeliveryAddress Address     `json:"delivery_address"`
	Total           float64     `json:"total"`
	Status          OrderStatus `json:"status"`
	PaymentMethod   string      `json:"payment_method"`
	PaymentStatus   string      `json:"payment_status,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending confirmed shipping delivered cancelled"`
}
