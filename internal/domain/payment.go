package domain

import "time"

// OrderStatus is the order lifecycle status as reported by the payment
// processor. The processor owns this value; this service never writes it.
type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "ACTIVE"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusExpired   OrderStatus = "EXPIRED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsPaid returns true if the order has been settled successfully.
func (s OrderStatus) IsPaid() bool {
	return s == OrderStatusPaid
}

// IsClosed returns true if the order reached a legitimate processor-level
// end state other than success (expired or cancelled).
func (s OrderStatus) IsClosed() bool {
	switch s {
	case OrderStatusExpired, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentRequest carries the caller-supplied details for a new payment.
// Immutable once submitted.
type PaymentRequest struct {
	Amount        float64
	Currency      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Note          string
}

// CustomerDetails is the customer record the processor attaches to an order.
type CustomerDetails struct {
	CustomerID    string
	CustomerName  string
	CustomerPhone string
}

// Order is the processor's record of an intent to collect a payment.
// Read-only to this service; status changes happen out-of-band on the
// processor side.
type Order struct {
	OrderID          string
	PaymentSessionID string
	Amount           float64
	Currency         string
	Status           OrderStatus
	CreatedAt        time.Time
	Customer         CustomerDetails
}

// PaymentAttempt is a single payment attempt recorded against an order.
// Attempts are display data; the authoritative outcome is Order.Status.
type PaymentAttempt struct {
	PaymentID string
	Amount    float64
	Method    string
	Status    string
	Gateway   string
	Time      time.Time
}
