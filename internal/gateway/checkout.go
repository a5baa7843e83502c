package gateway

import (
	"context"
	"errors"
	"net/url"

	"github.com/rs/zerolog"

	"payflow/internal/lifecycle"
)

// HostedCheckout is the redirect-style checkout adapter: it hands the
// user a payment page URL built from the checkout session token and
// resolves out-of-process, through the callback entry point.
type HostedCheckout struct {
	checkoutURL string
	log         zerolog.Logger
}

var _ lifecycle.CheckoutWidget = (*HostedCheckout)(nil)

// NewHostedCheckout creates the hosted checkout adapter. checkoutURL is
// the processor's payment page, e.g. https://payments.example.com/pay.
func NewHostedCheckout(checkoutURL string, log zerolog.Logger) *HostedCheckout {
	return &HostedCheckout{checkoutURL: checkoutURL, log: log}
}

// Checkout builds the hosted payment page link for one checkout session.
// The widget never completes in-process for this adapter; the outcome
// arrives later when the browser returns to the callback URL.
func (h *HostedCheckout) Checkout(ctx context.Context, opts lifecycle.CheckoutOptions) (*lifecycle.CheckoutResult, error) {
	if opts.PaymentSessionID == "" {
		return nil, errors.New("payment session id is required")
	}

	u, err := url.Parse(h.checkoutURL)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("payment_session_id", opts.PaymentSessionID)
	if opts.ReturnURL != "" {
		q.Set("return_url", opts.ReturnURL)
	}
	u.RawQuery = q.Encode()

	h.log.Info().Str("checkout_url", u.String()).Msg("hosted_checkout_link_built")
	return &lifecycle.CheckoutResult{RedirectURL: u.String()}, nil
}
