package handlers

import (
	"log/slog"
	"net/http"

	"github.com/farmcart/checkout-service/internal/api/middleware"
	"github.com/farmcart/checkout-service/internal/errors"
	"github.com/farmcart/checkout-service/internal/models"
	"github.com/farmcart/checkout-service/internal/services"
	"github.com/farmcart/checkout-service/internal/utils"
	"github.com/farmcart/checkout-service/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
	sessionService  *services.SessionService
	validator       *validator.Validate
}

func NewCheckoutHandler(checkoutService *services.CheckoutService, sessionService *services.SessionService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		sessionService:  sessionService,
		validator:       validator.New(),
	}
}

// Begin opens a checkout session for the buyer's current cart.
func (h *CheckoutHandler) Begin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.BeginCheckoutRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		buyer, err := h.sessionService.Resolve(r.Context(), claims, middleware.TokenFromContext(r.Context()))
		if err != nil {
			logger.Error("Failed to resolve buyer session", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		snapshot, err := h.checkoutService.Begin(r.Context(), buyer, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		logger.Info("Checkout session opened", slog.String("nonce", snapshot.Nonce.String()))
		response.Success(w, http.StatusCreated, snapshot)
	}
}

// StartExternalPayment creates the provider preference and returns the
// redirect URL the client sends the buyer's browser to.
func (h *CheckoutHandler) StartExternalPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		nonce, err := utils.ParseNonce(r, "nonce")
		if err != nil {
			response.Error(w, err)
			return
		}

		snapshot, err := h.checkoutService.StartExternalPayment(r.Context(), nonce)
		if err != nil {
			logger.Error("Failed to start external payment",
				slog.String("nonce", nonce.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, snapshot)
	}
}

// SubmitManual submits the order for offline payment.
func (h *CheckoutHandler) SubmitManual() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		nonce, err := utils.ParseNonce(r, "nonce")
		if err != nil {
			response.Error(w, err)
			return
		}

		snapshot, err := h.checkoutService.SubmitManual(r.Context(), nonce)
		if err != nil {
			logger.Error("Manual order submission failed",
				slog.String("nonce", nonce.String()),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, snapshot)
	}
}

func (h *CheckoutHandler) Snapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		nonce, err := utils.ParseNonce(r, "nonce")
		if err != nil {
			response.Error(w, err)
			return
		}

		snapshot, err := h.checkoutService.Snapshot(r.Context(), nonce)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, snapshot)
	}
}

func (h *CheckoutHandler) Abandon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		nonce, err := utils.ParseNonce(r, "nonce")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.checkoutService.Abandon(r.Context(), nonce); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]bool{"abandoned": true})
	}
}
