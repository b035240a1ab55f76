package models

import "strings"

// PaymentStatus is the provider-side state of a payment, as reported by the
// payment status endpoint.
type PaymentStatus string

const (
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusUnknown  PaymentStatus = "unknown"
)

// ParsePaymentStatus canonicalizes provider status text. Anything outside the
// closed set maps to PaymentStatusUnknown.
func ParsePaymentStatus(s string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved":
		return PaymentStatusApproved
	case "rejected":
		return PaymentStatusRejected
	case "pending":
		return PaymentStatusPending
	default:
		return PaymentStatusUnknown
	}
}

// CallbackResult is the three-valued outcome delivered by the provider's
// browser redirect. CallbackNone means the value was unrecognized and the
// orchestrator must not change state.
type CallbackResult string

const (
	CallbackNone    CallbackResult = "none"
	CallbackSuccess CallbackResult = "success"
	CallbackFailure CallbackResult = "failure"
	CallbackPending CallbackResult = "pending"
)

func ParseCallbackResult(s string) CallbackResult {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return CallbackSuccess
	case "failure":
		return CallbackFailure
	case "pending":
		return CallbackPending
	default:
		return CallbackNone
	}
}

// Payment method tags sent to the Order API.
const (
	PaymentMethodExternal        = "external-provider"
	PaymentMethodExternalPending = "external-provider-pending"
	PaymentMethodManual          = "manual"
)
