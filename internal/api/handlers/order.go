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

type OrderHandler struct {
	orderService *services.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService, validator: validator.New()}
}

func (h *OrderHandler) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		orders, err := h.orderService.History(r.Context(), middleware.TokenFromContext(r.Context()), claims.BuyerID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]any{
			"orders": orders,
			"total":  len(orders),
		})
	}
}

func (h *OrderHandler) Detail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		orderID := r.PathValue("id")
		if orderID == "" {
			response.Error(w, errors.BadRequestError("Order ID is required"))
			return
		}

		order, err := h.orderService.Detail(r.Context(), middleware.TokenFromContext(r.Context()), orderID)
		if err != nil {
			response.Error(w, err)
			return
		}

		// Orders belong to the buyer who placed them.
		if order.BuyerID != claims.BuyerID {
			response.Error(w, errors.ForbiddenError("You can only view your own orders"))
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

func (h *OrderHandler) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		orderID := r.PathValue("id")
		if orderID == "" {
			response.Error(w, errors.BadRequestError("Order ID is required"))
			return
		}

		var req models.CancelOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.Cancel(r.Context(), middleware.TokenFromContext(r.Context()), orderID, req.Reason)
		if err != nil {
			logger.Error("Failed to cancel order",
				slog.String("order_id", orderID),
				slog.String("buyer_id", claims.BuyerID),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}
