package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"payflow/internal/domain"
)

const defaultOrderNote = "Payment for order"

type customerDetailsDTO struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone"`
}

type createOrderRequest struct {
	OrderAmount     float64            `json:"order_amount"`
	OrderCurrency   string             `json:"order_currency"`
	OrderNote       string             `json:"order_note,omitempty"`
	CustomerDetails customerDetailsDTO `json:"customer_details"`
}

type orderDTO struct {
	OrderID          string             `json:"order_id"`
	PaymentSessionID string             `json:"payment_session_id"`
	OrderAmount      float64            `json:"order_amount"`
	OrderCurrency    string             `json:"order_currency"`
	OrderStatus      string             `json:"order_status"`
	CreatedAt        string             `json:"created_at"`
	CustomerDetails  customerDetailsDTO `json:"customer_details"`
}

func (d orderDTO) toDomain() *domain.Order {
	// The processor's timestamp is display data; a malformed one is not
	// worth failing the whole order for.
	createdAt, _ := time.Parse(time.RFC3339, d.CreatedAt)

	return &domain.Order{
		OrderID:          d.OrderID,
		PaymentSessionID: d.PaymentSessionID,
		Amount:           d.OrderAmount,
		Currency:         d.OrderCurrency,
		Status:           domain.OrderStatus(d.OrderStatus),
		CreatedAt:        createdAt,
		Customer: domain.CustomerDetails{
			CustomerID:    d.CustomerDetails.CustomerID,
			CustomerName:  d.CustomerDetails.CustomerName,
			CustomerPhone: d.CustomerDetails.CustomerPhone,
		},
	}
}

// CreateOrder creates a pending order on the processor. A failure
// surfaces the processor's message verbatim when present, or a fixed
// fallback otherwise.
func (c *Client) CreateOrder(ctx context.Context, req domain.PaymentRequest) (*domain.Order, error) {
	note := req.Note
	if note == "" {
		note = defaultOrderNote
	}

	body := createOrderRequest{
		OrderAmount:   req.Amount,
		OrderCurrency: req.Currency,
		OrderNote:     note,
		CustomerDetails: customerDetailsDTO{
			CustomerID:    "cust_" + uuid.NewString(),
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
		},
	}

	var dto orderDTO
	if err := c.doJSON(ctx, http.MethodPost, "/orders", body, &dto, "failed to create order"); err != nil {
		return nil, err
	}

	return dto.toDomain(), nil
}
