package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/farmcart/checkout-service/internal/errors"
	"github.com/farmcart/checkout-service/internal/metrics"
	"github.com/farmcart/checkout-service/internal/models"
	repository "github.com/farmcart/checkout-service/internal/repositories"
	"github.com/farmcart/checkout-service/pkg/orders"
	"github.com/farmcart/checkout-service/pkg/payments"
	"github.com/farmcart/checkout-service/pkg/sendgrid"
	"github.com/google/uuid"
)

// checkoutSession is one buyer's progress through checkout. The nonce is the
// session's identity on the wire: payment callbacks carry it back, and a
// callback whose nonce no longer matches a live session is discarded.
type checkoutSession struct {
	nonce           uuid.UUID
	buyer           models.UserSession
	buyerName       string
	buyerEmail      string
	deliveryAddress models.Address
	notes           string

	state           models.CheckoutState
	paymentMethod   string
	paymentCaptured bool
	redirectURL     string
	preferenceID    string
	orderID         string
	lastError       string
	submitting      bool
	abandoned       bool
}

// CheckoutService drives the checkout state machine:
//
//	Idle -> AwaitingExternalPayment -> AwaitingOrderSubmission -> OrderCreated
//
// Failures exit to Idle with the cart retained so the buyer can retry. The
// one exception is a submission failure after the provider has captured the
// payment; that is a settlement gap and is journaled for reconciliation
// instead of being retried.
type CheckoutService struct {
	logger      *slog.Logger
	carts       *CartService
	payments    payments.Client
	orders      orders.Client
	settlements repository.SettlementRepository
	email       sendgrid.EmailService
	opsEmail    string

	// allowPartialSubmit drops cart lines without a product id at submission
	// time instead of aborting the checkout.
	allowPartialSubmit bool

	mu       sync.RWMutex
	sessions map[uuid.UUID]*checkoutSession
	byBuyer  map[string]uuid.UUID
}

func NewCheckoutService(
	logger *slog.Logger,
	carts *CartService,
	paymentsClient payments.Client,
	ordersClient orders.Client,
	settlements repository.SettlementRepository,
	email sendgrid.EmailService,
	opsEmail string,
	allowPartialSubmit bool,
) *CheckoutService {
	return &CheckoutService{
		logger:             logger,
		carts:              carts,
		payments:           paymentsClient,
		orders:             ordersClient,
		settlements:        settlements,
		email:              email,
		opsEmail:           opsEmail,
		allowPartialSubmit: allowPartialSubmit,
		sessions:           make(map[uuid.UUID]*checkoutSession),
		byBuyer:            make(map[string]uuid.UUID),
	}
}

// Begin opens a fresh session for the buyer. Any previous unfinished session
// is superseded; its nonce stops matching, so late callbacks for it are
// discarded rather than applied to the new attempt.
func (c *CheckoutService) Begin(ctx context.Context, buyer *models.UserSession, req *models.BeginCheckoutRequest) (*models.CheckoutSnapshot, error) {

	cart, err := c.carts.GetCart(ctx, buyer.BuyerID)
	if err != nil {
		return nil, err
	}

	if len(cart.Items) == 0 {
		return nil, errors.ValidationError("Cannot begin checkout with an empty cart")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prevNonce, ok := c.byBuyer[buyer.BuyerID]; ok {
		if prev, ok := c.sessions[prevNonce]; ok {
			prev.abandoned = true
			delete(c.sessions, prevNonce)

			c.logger.InfoContext(ctx, "Superseding unfinished checkout session",
				slog.String("buyer_id", buyer.BuyerID),
				slog.String("stale_nonce", prevNonce.String()))
		}
	}

	session := &checkoutSession{
		nonce:           uuid.New(),
		buyer:           *buyer,
		buyerName:       req.BuyerName,
		buyerEmail:      req.BuyerEmail,
		deliveryAddress: req.DeliveryAddress,
		notes:           req.Notes,
		state:           models.CheckoutStateIdle,
	}

	c.sessions[session.nonce] = session
	c.byBuyer[buyer.BuyerID] = session.nonce

	return snapshotOf(session), nil
}

// StartExternalPayment creates a payment preference for the current cart and
// moves the session to AwaitingExternalPayment. The caller redirects the
// buyer's browser to the returned URL; nothing else happens until the
// provider calls back.
func (c *CheckoutService) StartExternalPayment(ctx context.Context, nonce uuid.UUID) (*models.CheckoutSnapshot, error) {

	c.mu.Lock()

	session, ok := c.sessions[nonce]
	if !ok {
		c.mu.Unlock()
		return nil, errors.NotFoundError("Checkout session not found")
	}

	if session.state != models.CheckoutStateIdle {
		c.mu.Unlock()
		return nil, errors.StateConflictError("External payment can only start from an idle checkout")
	}

	buyerID := session.buyer.BuyerID
	payer := &payments.Payer{Name: session.buyerName, Email: session.buyerEmail}

	c.mu.Unlock()

	cart, err := c.carts.GetCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	if len(cart.Items) == 0 {
		return nil, errors.ValidationError("Cannot start a payment for an empty cart")
	}

	items := make([]payments.Item, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, payments.Item{
			ID:        line.Key(),
			Title:     line.Title,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	preference, err := c.payments.CreatePreference(ctx, items, payer, nonce.String())

	c.mu.Lock()
	defer c.mu.Unlock()

	if current, ok := c.sessions[nonce]; !ok || current != session {
		return nil, errors.NotFoundError("Checkout session was abandoned")
	}

	if err != nil {
		session.lastError = err.Error()

		c.logger.ErrorContext(ctx, "Failed to create payment preference",
			slog.String("buyer_id", buyerID),
			slog.String("error", err.Error()))

		return nil, err
	}

	session.state = models.CheckoutStateAwaitingPayment
	session.redirectURL = preference.RedirectURL
	session.preferenceID = preference.PreferenceID
	session.lastError = ""

	c.logger.InfoContext(ctx, "Payment preference created",
		slog.String("buyer_id", buyerID),
		slog.String("preference_id", preference.PreferenceID))

	return snapshotOf(session), nil
}

// HandleCallback delivers the provider's browser redirect into the state
// machine. The raw result is parsed case-insensitively; an unrecognized
// value changes nothing, and a nonce that matches no live session means the
// event belongs to a superseded or abandoned checkout and is discarded.
func (c *CheckoutService) HandleCallback(ctx context.Context, nonce uuid.UUID, rawResult string) (*models.CheckoutSnapshot, error) {

	result := models.ParseCallbackResult(rawResult)
	metrics.RecordPaymentCallback(string(result))

	if result == models.CallbackNone {
		c.logger.WarnContext(ctx, "Ignoring payment callback with unrecognized result",
			slog.String("raw_result", rawResult),
			slog.String("nonce", nonce.String()))

		return nil, errors.BadRequestError("Unrecognized payment callback result")
	}

	c.mu.Lock()

	session, ok := c.sessions[nonce]
	if !ok {
		c.mu.Unlock()

		c.logger.InfoContext(ctx, "Discarding payment callback for unknown or stale session",
			slog.String("nonce", nonce.String()),
			slog.String("result", string(result)))

		return nil, errors.NotFoundError("Checkout session not found")
	}

	if session.state != models.CheckoutStateAwaitingPayment {
		c.mu.Unlock()

		c.logger.WarnContext(ctx, "Ignoring payment callback outside the awaiting-payment state",
			slog.String("nonce", nonce.String()),
			slog.String("state", string(session.state)))

		return nil, errors.StateConflictError("No external payment is awaiting a callback")
	}

	switch result {
	case models.CallbackFailure:
		session.state = models.CheckoutStateIdle
		session.redirectURL = ""
		session.preferenceID = ""
		session.lastError = "External payment failed or was cancelled"

		snap := snapshotOf(session)
		c.mu.Unlock()

		return snap, nil

	case models.CallbackSuccess:
		session.paymentCaptured = true
		session.paymentMethod = models.PaymentMethodExternal

	case models.CallbackPending:
		// The provider may still settle the charge, so a pending outcome is
		// treated as captured for reconciliation purposes.
		session.paymentCaptured = true
		session.paymentMethod = models.PaymentMethodExternalPending
	}

	c.mu.Unlock()

	return c.submit(ctx, session)
}

// SubmitManual skips the external provider entirely and submits the order
// tagged for offline payment.
func (c *CheckoutService) SubmitManual(ctx context.Context, nonce uuid.UUID) (*models.CheckoutSnapshot, error) {

	c.mu.Lock()

	session, ok := c.sessions[nonce]
	if !ok {
		c.mu.Unlock()
		return nil, errors.NotFoundError("Checkout session not found")
	}

	if session.state != models.CheckoutStateIdle {
		c.mu.Unlock()
		return nil, errors.StateConflictError("Manual submission is only valid from an idle checkout")
	}

	session.paymentMethod = models.PaymentMethodManual
	session.paymentCaptured = false

	c.mu.Unlock()

	return c.submit(ctx, session)
}

// Abandon drops the session. An in-flight submission keeps running on its
// own detached context; if it succeeds the cart is still cleared, silently.
func (c *CheckoutService) Abandon(ctx context.Context, nonce uuid.UUID) error {

	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions[nonce]
	if !ok {
		return errors.NotFoundError("Checkout session not found")
	}

	session.abandoned = true
	delete(c.sessions, nonce)

	if c.byBuyer[session.buyer.BuyerID] == nonce {
		delete(c.byBuyer, session.buyer.BuyerID)
	}

	c.logger.InfoContext(ctx, "Checkout session abandoned",
		slog.String("buyer_id", session.buyer.BuyerID),
		slog.String("nonce", nonce.String()))

	return nil
}

// Snapshot returns the externally visible view of a session.
func (c *CheckoutService) Snapshot(ctx context.Context, nonce uuid.UUID) (*models.CheckoutSnapshot, error) {

	c.mu.RLock()
	defer c.mu.RUnlock()

	session, ok := c.sessions[nonce]
	if !ok {
		return nil, errors.NotFoundError("Checkout session not found")
	}

	return snapshotOf(session), nil
}

// submit is the single path into the Order API. At most one submission per
// session may be in flight; a second attempt gets a state conflict instead
// of a second order.
func (c *CheckoutService) submit(ctx context.Context, session *checkoutSession) (*models.CheckoutSnapshot, error) {

	c.mu.Lock()

	if session.submitting {
		c.mu.Unlock()
		return nil, errors.StateConflictError("An order submission is already in progress")
	}

	session.submitting = true
	session.state = models.CheckoutStateAwaitingSubmit

	buyer := session.buyer
	address := session.deliveryAddress
	notes := session.notes
	method := session.paymentMethod
	captured := session.paymentCaptured
	nonce := session.nonce

	c.mu.Unlock()

	// Abandoning the checkout must not cancel an order that may already be
	// accepted upstream, so the outbound call runs on a detached context.
	submitCtx := context.WithoutCancel(ctx)

	cart, err := c.carts.GetCart(submitCtx, buyer.BuyerID)
	if err != nil {
		return nil, c.failSubmission(submitCtx, session, cart, captured, err)
	}

	lines, err := c.buildLines(cart)
	if err != nil {
		return nil, c.failSubmission(submitCtx, session, cart, captured, err)
	}

	order, err := c.orders.Submit(submitCtx, buyer.Token, &orders.CreateOrderRequest{
		BuyerID:         buyer.BuyerID,
		LineItems:       lines,
		DeliveryAddress: address,
		PaymentMethod:   method,
		Notes:           notes,
	})
	if err != nil {
		return nil, c.failSubmission(submitCtx, session, cart, captured, err)
	}

	c.mu.Lock()

	session.submitting = false
	session.state = models.CheckoutStateOrderCreated
	session.orderID = order.ID
	session.redirectURL = ""
	session.lastError = ""
	abandoned := session.abandoned

	snap := snapshotOf(session)

	c.mu.Unlock()

	// Cleared even when the buyer abandoned the session mid-flight: the
	// order exists, so the cart must not survive to create a second one.
	if err := c.carts.ClearCart(submitCtx, buyer.BuyerID); err != nil {
		c.logger.ErrorContext(submitCtx, "Failed to clear cart after order creation",
			slog.String("buyer_id", buyer.BuyerID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()))
	}

	metrics.RecordOrderCreated(method)

	c.logger.InfoContext(submitCtx, "Order created",
		slog.String("buyer_id", buyer.BuyerID),
		slog.String("order_id", order.ID),
		slog.String("payment_method", method),
		slog.String("nonce", nonce.String()),
		slog.Bool("session_abandoned", abandoned))

	c.sendConfirmationEmail(submitCtx, session, order)

	return snap, nil
}

// failSubmission resets the session after a failed submission. An ordinary
// failure returns the buyer to Idle with the cart intact; a failure after a
// captured payment is a settlement gap and is journaled before surfacing.
func (c *CheckoutService) failSubmission(ctx context.Context, session *checkoutSession, cart *models.Cart, captured bool, cause error) error {

	c.mu.Lock()

	session.submitting = false
	session.state = models.CheckoutStateIdle
	session.lastError = cause.Error()

	buyer := session.buyer
	nonce := session.nonce
	method := session.paymentMethod

	c.mu.Unlock()

	if !captured {
		c.logger.ErrorContext(ctx, "Order submission failed",
			slog.String("buyer_id", buyer.BuyerID),
			slog.String("nonce", nonce.String()),
			slog.String("error", cause.Error()))

		return cause
	}

	amount := 0.0
	if cart != nil {
		amount = cart.Total
	}

	gap := &models.SettlementGap{
		ID:           uuid.New(),
		Nonce:        nonce,
		BuyerID:      buyer.BuyerID,
		Amount:       amount,
		PaymentState: method,
		Cause:        cause.Error(),
	}

	c.logger.ErrorContext(ctx, "SETTLEMENT GAP: payment captured but order creation failed",
		slog.String("buyer_id", buyer.BuyerID),
		slog.String("nonce", nonce.String()),
		slog.Float64("amount", amount),
		slog.String("payment_state", method),
		slog.String("error", cause.Error()))

	metrics.RecordSettlementGap()

	if err := c.settlements.Record(ctx, gap); err != nil {
		// The journal is the reconciliation source of truth; losing the row
		// leaves only this log line, so it carries the full gap.
		c.logger.ErrorContext(ctx, "Failed to journal settlement gap",
			slog.String("buyer_id", buyer.BuyerID),
			slog.String("nonce", nonce.String()),
			slog.Float64("amount", amount),
			slog.String("error", err.Error()))
	}

	c.alertOps(ctx, gap)

	return errors.SettlementGapError("Payment was captured but the order could not be created").WithError(cause)
}

// buildLines converts cart lines to the Order API wire form, applying the
// missing-product-id policy.
func (c *CheckoutService) buildLines(cart *models.Cart) ([]orders.LineItem, error) {

	if cart == nil || len(cart.Items) == 0 {
		return nil, errors.ValidationError("Cannot submit an order for an empty cart")
	}

	lines := make([]orders.LineItem, 0, len(cart.Items))

	for _, item := range cart.Items {
		if item.ProductID == "" {
			if c.allowPartialSubmit {
				c.logger.Warn("Dropping cart line without a product id",
					slog.String("buyer_id", cart.BuyerID),
					slog.String("title", item.Title))

				continue
			}

			return nil, errors.ValidationError(fmt.Sprintf("Cart line %q has no product id and cannot be ordered", item.Title))
		}

		lines = append(lines, orders.LineItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	if len(lines) == 0 {
		return nil, errors.ValidationError("No cart line has a product id; nothing can be ordered")
	}

	return lines, nil
}

func (c *CheckoutService) sendConfirmationEmail(ctx context.Context, session *checkoutSession, order *models.Order) {

	if c.email == nil || session.buyerEmail == "" {
		return
	}

	req := &models.EmailNotificationRequest{
		To:      session.buyerEmail,
		Subject: fmt.Sprintf("Your order %s is confirmed", order.ID),
		Content: fmt.Sprintf("Hi %s,\n\nWe received your order %s. We'll let you know when it ships.",
			session.buyerName, order.ID),
	}

	if err := c.email.Send(ctx, req); err != nil {
		c.logger.WarnContext(ctx, "Failed to send order confirmation email",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()))
	}
}

func (c *CheckoutService) alertOps(ctx context.Context, gap *models.SettlementGap) {

	if c.email == nil || c.opsEmail == "" {
		return
	}

	req := &models.EmailNotificationRequest{
		To:      c.opsEmail,
		Subject: fmt.Sprintf("Settlement gap for buyer %s", gap.BuyerID),
		Content: fmt.Sprintf(
			"A payment was captured but order creation failed.\n\nGap id: %s\nNonce: %s\nBuyer: %s\nAmount: %.2f\nPayment state: %s\nCause: %s",
			gap.ID, gap.Nonce, gap.BuyerID, gap.Amount, gap.PaymentState, gap.Cause),
	}

	if err := c.email.Send(ctx, req); err != nil {
		c.logger.ErrorContext(ctx, "Failed to send settlement gap alert",
			slog.String("gap_id", gap.ID.String()),
			slog.String("error", err.Error()))
	}
}

func snapshotOf(session *checkoutSession) *models.CheckoutSnapshot {
	return &models.CheckoutSnapshot{
		Nonce:       session.nonce,
		State:       session.state,
		RedirectURL: session.redirectURL,
		OrderID:     session.orderID,
		LastError:   session.lastError,
	}
}
