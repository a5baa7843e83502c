package lifecycle

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"payflow/internal/domain"
)

// Deps bundles the collaborators a controller needs. The widget handle is
// injected explicitly; there is no process-global SDK instance.
type Deps struct {
	Orders   OrderService
	Verifier VerificationService
	Widget   CheckoutWidget
	// ReturnURL is the callback location the redirect-completion path
	// returns to, with order_id appended by the processor.
	ReturnURL string
	Logger    zerolog.Logger
}

// Controller owns the lifecycle of a single payment: it creates the
// order, hands off to the checkout widget, and reconciles the outcome
// from the processor's records. Transitions within one controller are
// strictly sequential; a second submit or verify while one is running is
// rejected rather than queued.
type Controller struct {
	mu      sync.Mutex
	gen     uint64
	busy    bool
	orderID string
	state   domain.LifecycleState

	orders    OrderService
	verifier  VerificationService
	widget    CheckoutWidget
	returnURL string
	log       zerolog.Logger
}

// New creates a controller in the idle state, ready for a submission.
func New(deps Deps) *Controller {
	return &Controller{
		state:     domain.LifecycleState{Status: domain.StatusIdle},
		orders:    deps.Orders,
		verifier:  deps.Verifier,
		widget:    deps.Widget,
		returnURL: deps.ReturnURL,
		log:       deps.Logger,
	}
}

// NewFromCallback creates a controller re-hydrated from a redirect
// callback. It never sees the submitting instance: the order id in the
// query string is all it needs to enter verification directly. A missing
// order_id yields a controller already in the error state, plus
// ErrInvalidCallback for the transport layer.
func NewFromCallback(deps Deps, query url.Values) (*Controller, error) {
	c := New(deps)

	orderID := strings.TrimSpace(query.Get("order_id"))
	if orderID == "" {
		c.state = errorState(ErrInvalidCallback.Error(), "missing order_id query parameter")
		return c, ErrInvalidCallback
	}

	c.orderID = orderID
	c.state = domain.LifecycleState{Status: domain.StatusVerifying, Message: "verifying payment"}
	return c, nil
}

// OrderID returns the processor order id this controller is bound to, or
// empty before an order exists.
func (c *Controller) OrderID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderID
}

// State returns a snapshot of the current lifecycle state.
func (c *Controller) State() domain.LifecycleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Supersede marks this controller as replaced. Any in-flight operation
// will have its result discarded instead of applied, so a late response
// can never mutate a view that moved on.
func (c *Controller) Supersede() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
}

// Submit runs the full initiation flow: boundary validation, order
// creation, checkout hand-off and, when the widget completes in-process,
// immediate verification. Collaborator failures are folded into the
// returned state; the error return is reserved for caller mistakes
// (invalid input, re-entrant calls).
func (c *Controller) Submit(ctx context.Context, req domain.PaymentRequest) (domain.LifecycleState, error) {
	// Validation short-circuits before any network call and before the
	// machine leaves idle.
	if err := ValidateRequest(req); err != nil {
		return c.State(), err
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return c.State(), ErrOperationInFlight
	}
	if c.state.Status != domain.StatusIdle {
		c.mu.Unlock()
		return c.State(), ErrAlreadySubmitted
	}
	c.busy = true
	gen := c.gen
	c.state = domain.LifecycleState{Status: domain.StatusCreatingOrder, Message: "creating order"}
	c.mu.Unlock()

	order, err := c.orders.CreateOrder(ctx, req)
	if err != nil {
		c.log.Warn().Err(err).Msg("order_creation_failed")
		return c.apply(gen, errorState(err.Error(), "order creation failed")), nil
	}

	if order.PaymentSessionID == "" {
		c.log.Error().Str("order_id", order.OrderID).Msg("order_without_payment_session")
		return c.apply(gen, errorState(ErrMissingPaymentSession.Error(), "processor contract violation")), nil
	}

	c.mu.Lock()
	if c.gen == gen {
		c.orderID = order.OrderID
		c.state = domain.LifecycleState{
			Status:  domain.StatusAwaitingCheckout,
			Message: "order created, opening checkout",
			Order:   order,
		}
	}
	c.mu.Unlock()

	c.log.Info().
		Str("order_id", order.OrderID).
		Float64("amount", order.Amount).
		Msg("order_created")

	result, err := c.widget.Checkout(ctx, CheckoutOptions{
		PaymentSessionID: order.PaymentSessionID,
		ReturnURL:        c.returnURL,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("order_id", order.OrderID).Msg("checkout_failed")
		st := errorState("checkout could not be started", err.Error())
		st.Order = order
		return c.apply(gen, st), nil
	}

	if result.ErrorMessage != "" {
		// The user aborted or failed before reaching the gateway. No
		// verification call is made for this shape.
		st := errorState(result.ErrorMessage, "checkout reported an error")
		st.Order = order
		return c.apply(gen, st), nil
	}

	if result.RedirectURL != "" {
		// Out-of-process completion. The browser navigates away and the
		// outcome arrives later through the callback entry point.
		return c.apply(gen, domain.LifecycleState{
			Status:      domain.StatusAwaitingCheckout,
			Message:     "redirecting to checkout",
			Order:       order,
			CheckoutURL: result.RedirectURL,
		}), nil
	}

	// Inline completion without an error: verify right away.
	c.transient(gen, domain.LifecycleState{
		Status:  domain.StatusVerifying,
		Message: "verifying payment",
		Order:   order,
	})
	return c.apply(gen, c.fetchAndReconcile(ctx, order.OrderID)), nil
}

// CompleteCheckout applies an inline checkout result delivered after the
// fact (an embedded widget reporting back through the API). A widget
// error transitions straight to the error state without any verification
// call; anything else triggers a full verification.
func (c *Controller) CompleteCheckout(ctx context.Context, result CheckoutResult) (domain.LifecycleState, error) {
	if result.ErrorMessage != "" {
		c.mu.Lock()
		if c.busy {
			c.mu.Unlock()
			return c.State(), ErrOperationInFlight
		}
		// A late or duplicate error report must not overwrite an outcome
		// that was already settled from the processor's records.
		if c.state.Status.IsTerminal() {
			c.mu.Unlock()
			return c.State(), ErrLifecycleComplete
		}
		st := errorState(result.ErrorMessage, "checkout reported an error")
		st.Order = c.state.Order
		c.state = st
		c.mu.Unlock()
		return c.State(), nil
	}

	return c.Verify(ctx)
}

// Verify re-derives the lifecycle state from the processor's records.
// Safe to call any number of times from the pending state; both backend
// records are re-fetched from scratch on every call.
func (c *Controller) Verify(ctx context.Context) (domain.LifecycleState, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return c.State(), ErrOperationInFlight
	}
	if c.state.Status.IsTerminal() {
		c.mu.Unlock()
		return c.State(), ErrLifecycleComplete
	}
	if c.orderID == "" {
		c.mu.Unlock()
		return c.State(), ErrInvalidCallback
	}
	c.busy = true
	gen := c.gen
	orderID := c.orderID
	prevOrder := c.state.Order
	c.state = domain.LifecycleState{
		Status:  domain.StatusVerifying,
		Message: "verifying payment",
		Order:   prevOrder,
	}
	c.mu.Unlock()

	return c.apply(gen, c.fetchAndReconcile(ctx, orderID)), nil
}

// fetchAndReconcile fetches the order and its payment attempts
// concurrently. Both reads are always attempted; if either fails the
// outcome cannot be determined and the result is the error state.
func (c *Controller) fetchAndReconcile(ctx context.Context, orderID string) domain.LifecycleState {
	var (
		wg       sync.WaitGroup
		order    *domain.Order
		attempts []domain.PaymentAttempt
		orderErr error
		payErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		order, orderErr = c.verifier.FetchOrder(ctx, orderID)
	}()
	go func() {
		defer wg.Done()
		attempts, payErr = c.verifier.FetchPayments(ctx, orderID)
	}()
	wg.Wait()

	if orderErr != nil {
		c.log.Warn().Err(orderErr).Str("order_id", orderID).Msg("order_fetch_failed")
		return errorState("failed to verify payment status", orderErr.Error())
	}
	if payErr != nil {
		c.log.Warn().Err(payErr).Str("order_id", orderID).Msg("payments_fetch_failed")
		return errorState("failed to verify payment status", payErr.Error())
	}

	state := Reconcile(order, attempts)
	c.log.Info().
		Str("order_id", orderID).
		Str("order_status", string(order.Status)).
		Str("ui_status", string(state.Status)).
		Int("attempts", len(attempts)).
		Msg("payment_verified")
	return state
}

// transient publishes an intermediate state while an operation is still
// running, unless the controller has been superseded.
func (c *Controller) transient(gen uint64, st domain.LifecycleState) {
	c.mu.Lock()
	if c.gen == gen {
		c.state = st
	}
	c.mu.Unlock()
}

// apply finishes an operation. A result computed under an old generation
// is dropped: the controller was superseded while the call was in flight
// and its view must not change.
func (c *Controller) apply(gen uint64, st domain.LifecycleState) domain.LifecycleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if c.gen != gen {
		c.log.Debug().Str("order_id", c.orderID).Msg("stale_result_discarded")
		return c.state
	}
	c.state = st
	return c.state
}
