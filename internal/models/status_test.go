package models_test

import (
	"testing"

	"github.com/farmcart/checkout-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestParsePaymentStatus(t *testing.T) {
	cases := []struct {
		raw      string
		expected models.PaymentStatus
	}{
		{"approved", models.PaymentStatusApproved},
		{"APPROVED", models.PaymentStatusApproved},
		{" Rejected ", models.PaymentStatusRejected},
		{"pending", models.PaymentStatusPending},
		{"in_mediation", models.PaymentStatusUnknown},
		{"", models.PaymentStatusUnknown},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, models.ParsePaymentStatus(tc.raw), "raw=%q", tc.raw)
	}
}

func TestParseCallbackResult(t *testing.T) {
	cases := []struct {
		raw      string
		expected models.CallbackResult
	}{
		{"success", models.CallbackSuccess},
		{"SUCCESS", models.CallbackSuccess},
		{"Failure", models.CallbackFailure},
		{" pending ", models.CallbackPending},
		{"cancelled", models.CallbackNone},
		{"", models.CallbackNone},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, models.ParseCallbackResult(tc.raw), "raw=%q", tc.raw)
	}
}

func TestParseOrderStatus(t *testing.T) {
	cases := []struct {
		raw      string
		expected models.OrderStatus
	}{
		{"pending", models.OrderStatusPending},
		{"CONFIRMED", models.OrderStatusConfirmed},
		{"Shipping", models.OrderStatusShipping},
		{"delivered", models.OrderStatusDelivered},
		{"cancelled", models.OrderStatusCancelled},
		{"on_hold", models.OrderStatusUnknown},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, models.ParseOrderStatus(tc.raw), "raw=%q", tc.raw)
	}
}

func TestCartItemKey(t *testing.T) {

	t.Run("Product ID wins over slug", func(t *testing.T) {
		item := models.CartItem{ProductID: "p-1", Slug: "tomatoes"}
		assert.Equal(t, "p-1", item.Key())
	})

	t.Run("Slug used when product ID is empty", func(t *testing.T) {
		item := models.CartItem{Slug: "tomatoes"}
		assert.Equal(t, "tomatoes", item.Key())
	})
}

func TestCheckoutStateIsTerminal(t *testing.T) {
	assert.True(t, models.CheckoutStateOrderCreated.IsTerminal())
	assert.False(t, models.CheckoutStateIdle.IsTerminal())
	assert.False(t, models.CheckoutStateAwaitingPayment.IsTerminal())
	assert.False(t, models.CheckoutStateAwaitingSubmit.IsTerminal())
}
