package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"payflow/internal/lifecycle"
	"payflow/internal/service"
)

// CallbackHandler handles the redirect-completion entry point.
type CallbackHandler struct {
	paymentService *service.PaymentService
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(paymentService *service.PaymentService) *CallbackHandler {
	return &CallbackHandler{paymentService: paymentService}
}

// PaymentCallback handles GET /payment/callback?order_id=...
//
// This is the sole contract for the redirect path: the checkout page
// returns the browser here with the order id in the query string. A
// missing order id is an error state, never a crash.
func (h *CallbackHandler) PaymentCallback(c *gin.Context) {
	state, err := h.paymentService.Callback(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		if errors.Is(err, lifecycle.ErrInvalidCallback) {
			respondJSON(c, http.StatusBadRequest, toLifecycleResponse(state))
			return
		}
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toLifecycleResponse(state))
}
