package lifecycle

import (
	"context"

	"payflow/internal/domain"
)

// OrderService creates a pending order on the payment processor and
// returns it together with its checkout session token.
type OrderService interface {
	CreateOrder(ctx context.Context, req domain.PaymentRequest) (*domain.Order, error)
}

// VerificationService reads the processor's authoritative records for an
// order. Both reads are independent; callers fetch them concurrently.
type VerificationService interface {
	FetchOrder(ctx context.Context, orderID string) (*domain.Order, error)
	FetchPayments(ctx context.Context, orderID string) ([]domain.PaymentAttempt, error)
}

// CheckoutOptions is the input contract of the checkout widget.
type CheckoutOptions struct {
	PaymentSessionID string
	ReturnURL        string
}

// CheckoutResult is the output contract of the checkout widget.
//
// Exactly one of three shapes applies: ErrorMessage is set when the user
// aborted or failed before reaching the gateway (inline path only);
// RedirectURL is set when completion happens out-of-process and the
// outcome will arrive later through the callback entry point; neither set
// means the checkout completed in-process and the order can be verified
// immediately.
type CheckoutResult struct {
	ErrorMessage string
	RedirectURL  string
}

// CheckoutWidget drives the user through payment entry for one checkout
// session. Implementations must be safe to call once per session; the
// controller guarantees it never issues a second checkout while a first
// one is outstanding.
type CheckoutWidget interface {
	Checkout(ctx context.Context, opts CheckoutOptions) (*CheckoutResult, error)
}
