package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"payflow/internal/domain"
	"payflow/internal/lifecycle"
	"payflow/internal/repository"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/lifecycle errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, lifecycle.ErrInvalidAmount),
		errors.Is(err, lifecycle.ErrMissingCustomerName),
		errors.Is(err, lifecycle.ErrInvalidCustomerPhone),
		errors.Is(err, lifecycle.ErrInvalidCustomerEmail),
		errors.Is(err, lifecycle.ErrInvalidCallback):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, lifecycle.ErrOperationInFlight),
		errors.Is(err, lifecycle.ErrAlreadySubmitted),
		errors.Is(err, lifecycle.ErrLifecycleComplete):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// CustomerResponse is the customer block of an order response.
type CustomerResponse struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

// OrderResponse is the HTTP view of a processor order.
type OrderResponse struct {
	OrderID   string           `json:"order_id"`
	Amount    float64          `json:"order_amount"`
	Currency  string           `json:"order_currency"`
	Status    string           `json:"order_status"`
	CreatedAt time.Time        `json:"created_at"`
	Customer  CustomerResponse `json:"customer_details"`
}

// AttemptResponse is the HTTP view of a payment attempt.
type AttemptResponse struct {
	PaymentID string    `json:"payment_id"`
	Amount    float64   `json:"payment_amount"`
	Method    string    `json:"payment_method"`
	Status    string    `json:"payment_status"`
	Gateway   string    `json:"payment_gateway"`
	Time      time.Time `json:"payment_time"`
}

// LifecycleResponse is the HTTP view of a payment's lifecycle state.
type LifecycleResponse struct {
	OrderID     string            `json:"order_id,omitempty"`
	Status      string            `json:"status"`
	Message     string            `json:"message"`
	CheckoutURL string            `json:"checkout_url,omitempty"`
	Order       *OrderResponse    `json:"order,omitempty"`
	Payments    []AttemptResponse `json:"payments,omitempty"`
	ErrorDetail string            `json:"error_detail,omitempty"`
}

func toLifecycleResponse(state domain.LifecycleState) LifecycleResponse {
	resp := LifecycleResponse{
		Status:      string(state.Status),
		Message:     state.Message,
		CheckoutURL: state.CheckoutURL,
		ErrorDetail: state.ErrorDetail,
	}

	if state.Order != nil {
		resp.OrderID = state.Order.OrderID
		resp.Order = &OrderResponse{
			OrderID:   state.Order.OrderID,
			Amount:    state.Order.Amount,
			Currency:  state.Order.Currency,
			Status:    string(state.Order.Status),
			CreatedAt: state.Order.CreatedAt,
			Customer: CustomerResponse{
				CustomerID:    state.Order.Customer.CustomerID,
				CustomerName:  state.Order.Customer.CustomerName,
				CustomerPhone: state.Order.Customer.CustomerPhone,
			},
		}
	}

	for _, a := range state.Attempts {
		resp.Payments = append(resp.Payments, AttemptResponse{
			PaymentID: a.PaymentID,
			Amount:    a.Amount,
			Method:    a.Method,
			Status:    a.Status,
			Gateway:   a.Gateway,
			Time:      a.Time,
		})
	}

	return resp
}
