package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"payflow/internal/domain"
	"payflow/internal/lifecycle"
	"payflow/internal/service"
)

// defaultCurrency applies when the caller omits the currency. This
// deployment collects in INR.
const defaultCurrency = "INR"

// PaymentHandler handles HTTP requests for payment lifecycles.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// SubmitPaymentRequest is the HTTP request body for initiating a payment.
type SubmitPaymentRequest struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	CustomerPhone string  `json:"customer_phone"`
	Note          string  `json:"note"`
}

// SubmitPayment handles POST /v1/payments
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	var req SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	state, err := h.paymentService.Submit(c.Request.Context(), domain.PaymentRequest{
		Amount:        req.Amount,
		Currency:      currency,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Note:          req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toLifecycleResponse(state))
}

// GetPayment handles GET /v1/payments/:order_id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	orderID := c.Param("order_id")

	state, err := h.paymentService.State(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := toLifecycleResponse(state)
	if resp.OrderID == "" {
		resp.OrderID = orderID
	}
	respondJSON(c, http.StatusOK, resp)
}

// VerifyPayment handles POST /v1/payments/:order_id/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	orderID := c.Param("order_id")

	state, err := h.paymentService.Verify(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toLifecycleResponse(state))
}

// CheckoutResultRequest is the HTTP request body an embedded widget posts
// back after an inline checkout resolves.
type CheckoutResultRequest struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Redirect bool `json:"redirect"`
}

// CompleteCheckout handles POST /v1/payments/:order_id/checkout-result
func (h *PaymentHandler) CompleteCheckout(c *gin.Context) {
	orderID := c.Param("order_id")

	var req CheckoutResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result := lifecycle.CheckoutResult{}
	if req.Error != nil {
		result.ErrorMessage = req.Error.Message
		if result.ErrorMessage == "" {
			result.ErrorMessage = "payment failed"
		}
	}

	state, err := h.paymentService.CompleteCheckout(c.Request.Context(), orderID, result)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toLifecycleResponse(state))
}

// JournalEntryResponse is the HTTP view of a journal entry.
type JournalEntryResponse struct {
	OrderID       string    `json:"order_id"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListPayments handles GET /v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.paymentService.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]JournalEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, JournalEntryResponse{
			OrderID:       e.OrderID,
			Amount:        e.Amount,
			Currency:      e.Currency,
			CustomerName:  e.CustomerName,
			CustomerPhone: e.CustomerPhone,
			Status:        string(e.Status),
			Message:       e.Message,
			CreatedAt:     e.CreatedAt,
			UpdatedAt:     e.UpdatedAt,
		})
	}

	respondJSON(c, http.StatusOK, resp)
}
