package gateway

import (
	"context"
	"net/http"
	"time"

	"payflow/internal/domain"
)

type paymentDTO struct {
	CFPaymentID    string  `json:"cf_payment_id"`
	PaymentAmount  float64 `json:"payment_amount"`
	PaymentMethod  string  `json:"payment_method"`
	PaymentStatus  string  `json:"payment_status"`
	PaymentGateway string  `json:"payment_gateway"`
	PaymentTime    string  `json:"payment_time"`
}

func (d paymentDTO) toDomain() domain.PaymentAttempt {
	paymentTime, _ := time.Parse(time.RFC3339, d.PaymentTime)

	return domain.PaymentAttempt{
		PaymentID: d.CFPaymentID,
		Amount:    d.PaymentAmount,
		Method:    d.PaymentMethod,
		Status:    d.PaymentStatus,
		Gateway:   d.PaymentGateway,
		Time:      paymentTime,
	}
}

// FetchOrder reads the authoritative order record.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var dto orderDTO
	if err := c.doJSON(ctx, http.MethodGet, "/orders/"+orderID, nil, &dto, "failed to fetch order"); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// FetchPayments reads the payment attempts recorded for an order, in the
// processor's chronological order.
func (c *Client) FetchPayments(ctx context.Context, orderID string) ([]domain.PaymentAttempt, error) {
	var dtos []paymentDTO
	if err := c.doJSON(ctx, http.MethodGet, "/orders/"+orderID+"/payments", nil, &dtos, "failed to fetch payments"); err != nil {
		return nil, err
	}

	attempts := make([]domain.PaymentAttempt, 0, len(dtos))
	for _, d := range dtos {
		attempts = append(attempts, d.toDomain())
	}
	return attempts, nil
}
