package domain

// UIStatus is the single user-facing status derived from backend truth.
type UIStatus string

const (
	StatusIdle             UIStatus = "IDLE"
	StatusCreatingOrder    UIStatus = "CREATING_ORDER"
	StatusAwaitingCheckout UIStatus = "AWAITING_CHECKOUT"
	StatusVerifying        UIStatus = "VERIFYING"
	StatusSucceeded        UIStatus = "SUCCEEDED"
	StatusFailed           UIStatus = "FAILED"
	StatusPending          UIStatus = "PENDING"
	StatusError            UIStatus = "ERROR"
)

// IsTerminal returns true if no further transition is possible for the
// current order. Pending is deliberately not terminal: it is re-enterable
// through a manual re-verify.
func (s UIStatus) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusError:
		return true
	default:
		return false
	}
}

// LifecycleState is the derived view of one payment's progress. It is
// reconstructed from the processor's records on every verification, so a
// stale copy never survives a re-verify.
type LifecycleState struct {
	Status      UIStatus
	Message     string
	Order       *Order
	Attempts    []PaymentAttempt
	CheckoutURL string
	ErrorDetail string
}
