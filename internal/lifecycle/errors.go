package lifecycle

import "errors"

var (
	// ErrInvalidAmount is returned when the payment amount is not a positive number.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrMissingCustomerName is returned when the customer name is empty.
	ErrMissingCustomerName = errors.New("customer name is required")

	// ErrInvalidCustomerPhone is returned when the phone is not exactly 10 digits.
	ErrInvalidCustomerPhone = errors.New("customer phone must be a 10-digit number")

	// ErrInvalidCustomerEmail is returned when the email does not look like an email.
	ErrInvalidCustomerEmail = errors.New("customer email is not a valid email address")

	// ErrOperationInFlight is returned when a submit or verify is attempted
	// while a previous operation on the same controller is still running.
	ErrOperationInFlight = errors.New("another operation is in flight for this payment")

	// ErrAlreadySubmitted is returned when submit is called on a controller
	// that has already left the idle state.
	ErrAlreadySubmitted = errors.New("payment already submitted")

	// ErrMissingPaymentSession is returned when the processor reports a
	// successful order that carries no payment session id. This is a
	// contract violation on the processor side and is never retried.
	ErrMissingPaymentSession = errors.New("no payment session id received from processor")

	// ErrInvalidCallback is returned when the redirect callback lacks the
	// order_id query parameter.
	ErrInvalidCallback = errors.New("invalid payment callback: order_id missing")

	// ErrLifecycleComplete is returned when verify is requested after the
	// lifecycle already reached a terminal status.
	ErrLifecycleComplete = errors.New("payment lifecycle already complete")
)
