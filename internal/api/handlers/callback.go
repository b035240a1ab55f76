package handlers

import (
	"log/slog"
	"net/http"

	"github.com/farmcart/checkout-service/internal/api/middleware"
	"github.com/farmcart/checkout-service/internal/errors"
	"github.com/farmcart/checkout-service/internal/services"
	"github.com/farmcart/checkout-service/internal/utils/response"
	"github.com/google/uuid"
)

// CallbackHandler receives the payment provider's browser redirects. This is
// the one public surface: the provider cannot authenticate as the buyer, so
// the nonce in the query string is the only link back to a session.
type CallbackHandler struct {
	checkoutService *services.CheckoutService
}

func NewCallbackHandler(checkoutService *services.CheckoutService) *CallbackHandler {
	return &CallbackHandler{checkoutService: checkoutService}
}

func (h *CallbackHandler) PaymentCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		result := r.PathValue("result")

		rawNonce := r.URL.Query().Get("nonce")
		if rawNonce == "" {
			response.Error(w, errors.BadRequestError("Callback is missing the checkout nonce"))
			return
		}

		nonce, err := uuid.Parse(rawNonce)
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid checkout nonce"))
			return
		}

		snapshot, err := h.checkoutService.HandleCallback(r.Context(), nonce, result)
		if err != nil {
			// A callback for a superseded or already-settled session carries
			// no actionable state; the browser just gets an acknowledgement.
			if errors.HasCode(err, errors.ErrCodeNotFound) || errors.HasCode(err, errors.ErrCodeStateConflict) {
				logger.Info("Payment callback discarded",
					slog.String("nonce", nonce.String()),
					slog.String("result", result))
				response.Success(w, http.StatusOK, map[string]bool{"acknowledged": true})
				return
			}

			logger.Error("Payment callback processing failed",
				slog.String("nonce", nonce.String()),
				slog.String("result", result),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, snapshot)
	}
}
