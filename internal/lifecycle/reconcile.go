package lifecycle

import (
	"fmt"

	"payflow/internal/domain"
)

// Reconcile maps an authoritative order snapshot (plus the best-effort
// attempts list) to a user-facing lifecycle state. The mapping is pure and
// total: the same snapshot always produces the same status, no matter
// whether the snapshot was reached through the inline or the redirect
// completion path.
//
// Only Order.Status decides the outcome. The attempts list is display
// data from an independent read and must never downgrade a paid order.
func Reconcile(order *domain.Order, attempts []domain.PaymentAttempt) domain.LifecycleState {
	state := domain.LifecycleState{
		Order:    order,
		Attempts: attempts,
	}

	switch {
	case order.Status.IsPaid():
		state.Status = domain.StatusSucceeded
		state.Message = "payment completed successfully"

	case order.Status.IsClosed():
		state.Status = domain.StatusFailed
		state.Message = fmt.Sprintf("payment not completed: order %s", order.Status)

	default:
		// Anything else the processor reports (ACTIVE included) means the
		// payment may still be settling. Never a terminal error.
		state.Status = domain.StatusPending
		state.Message = "payment is being processed, check back shortly"
	}

	return state
}

// errorState builds the terminal error view for failures where no
// authoritative outcome could be determined.
func errorState(message, detail string) domain.LifecycleState {
	return domain.LifecycleState{
		Status:      domain.StatusError,
		Message:     message,
		ErrorDetail: detail,
	}
}
