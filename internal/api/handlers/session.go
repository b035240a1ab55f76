package handlers

import (
	"net/http"

	"github.com/farmcart/checkout-service/internal/api/middleware"
	"github.com/farmcart/checkout-service/internal/errors"
	"github.com/farmcart/checkout-service/internal/services"
	"github.com/farmcart/checkout-service/internal/utils/response"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Logout clears the persisted buyer session. The token itself stays valid
// until it expires; the storefront's user API owns revocation.
func (h *SessionHandler) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		if err := h.sessionService.Logout(r.Context(), claims.BuyerID); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]bool{"logged_out": true})
	}
}
