package lifecycle

import (
	"math"
	"regexp"
	"strings"

	"payflow/internal/domain"
)

var (
	phonePattern = regexp.MustCompile(`^\d{10}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidateRequest checks a payment request at the boundary, before any
// network call is made. It returns the first field-level error found, so
// a rejected request never leaves the idle state.
func ValidateRequest(req domain.PaymentRequest) error {
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return ErrInvalidAmount
	}

	if strings.TrimSpace(req.CustomerName) == "" {
		return ErrMissingCustomerName
	}

	if !phonePattern.MatchString(req.CustomerPhone) {
		return ErrInvalidCustomerPhone
	}

	if !emailPattern.MatchString(req.CustomerEmail) {
		return ErrInvalidCustomerEmail
	}

	return nil
}
