package lifecycle

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payflow/internal/domain"
)

// fakeOrders returns a canned order or error.
type fakeOrders struct {
	mu    sync.Mutex
	order *domain.Order
	err   error
	calls int
}

func (f *fakeOrders) CreateOrder(ctx context.Context, req domain.PaymentRequest) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	order := *f.order
	return &order, nil
}

// fakeVerifier returns canned verification snapshots and counts calls.
type fakeVerifier struct {
	mu         sync.Mutex
	order      *domain.Order
	attempts   []domain.PaymentAttempt
	orderErr   error
	payErr     error
	orderCalls int
}

func (f *fakeVerifier) FetchOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderCalls++
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	order := *f.order
	return &order, nil
}

func (f *fakeVerifier) FetchPayments(ctx context.Context, orderID string) ([]domain.PaymentAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payErr != nil {
		return nil, f.payErr
	}
	return f.attempts, nil
}

func (f *fakeVerifier) setOrder(order *domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = order
}

func (f *fakeVerifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderCalls
}

// blockingVerifier parks FetchOrder until released, to exercise in-flight
// and stale-response behavior.
type blockingVerifier struct {
	order   *domain.Order
	started chan struct{}
	release chan struct{}
}

func (b *blockingVerifier) FetchOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	b.started <- struct{}{}
	<-b.release
	order := *b.order
	return &order, nil
}

func (b *blockingVerifier) FetchPayments(ctx context.Context, orderID string) ([]domain.PaymentAttempt, error) {
	return nil, nil
}

// fakeWidget resolves with a canned checkout result.
type fakeWidget struct {
	mu     sync.Mutex
	result *CheckoutResult
	err    error
	calls  int
}

func (f *fakeWidget) Checkout(ctx context.Context, opts CheckoutOptions) (*CheckoutResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func paidOrder() *domain.Order {
	return &domain.Order{
		OrderID:          "order-1",
		PaymentSessionID: "session-1",
		Amount:           500,
		Currency:         "INR",
		Status:           domain.OrderStatusPaid,
	}
}

func activeOrder() *domain.Order {
	o := paidOrder()
	o.Status = domain.OrderStatusActive
	return o
}

func testDeps(orders OrderService, verifier VerificationService, widget CheckoutWidget) Deps {
	return Deps{
		Orders:    orders,
		Verifier:  verifier,
		Widget:    widget,
		ReturnURL: "http://localhost:8080/payment/callback",
		Logger:    zerolog.Nop(),
	}
}

func TestSubmit_InlineSuccess(t *testing.T) {
	orders := &fakeOrders{order: activeOrder()}
	verifier := &fakeVerifier{order: paidOrder()}
	widget := &fakeWidget{result: &CheckoutResult{}}

	c := New(testDeps(orders, verifier, widget))
	state, err := c.Submit(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, state.Status)
	assert.Equal(t, "order-1", state.Order.OrderID)
	assert.Equal(t, 500.0, state.Order.Amount)
	assert.Equal(t, 1, widget.calls)
}

func TestSubmit_ValidationFailureStaysIdle(t *testing.T) {
	orders := &fakeOrders{order: activeOrder()}
	c := New(testDeps(orders, &fakeVerifier{}, &fakeWidget{result: &CheckoutResult{}}))

	req := validRequest()
	req.Amount = 0
	state, err := c.Submit(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, domain.StatusIdle, state.Status)
	assert.Equal(t, 0, orders.calls, "no network call on validation failure")
}

func TestSubmit_OrderCreationFailureSurfacesMessageVerbatim(t *testing.T) {
	orders := &fakeOrders{err: errors.New("insufficient limit")}
	c := New(testDeps(orders, &fakeVerifier{}, &fakeWidget{result: &CheckoutResult{}}))

	state, err := c.Submit(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, state.Status)
	assert.Equal(t, "insufficient limit", state.Message)
}

func TestSubmit_MissingPaymentSessionIsFatal(t *testing.T) {
	order := activeOrder()
	order.PaymentSessionID = ""
	orders := &fakeOrders{order: order}
	verifier := &fakeVerifier{order: paidOrder()}
	widget := &fakeWidget{result: &CheckoutResult{}}

	c := New(testDeps(orders, verifier, widget))
	state, err := c.Submit(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, state.Status)
	assert.Equal(t, ErrMissingPaymentSession.Error(), state.Message)
	assert.Equal(t, 0, widget.calls, "checkout must not open without a session")
	assert.Equal(t, 0, verifier.callCount())
}

func TestSubmit_WidgetErrorSkipsVerification(t *testing.T) {
	orders := &fakeOrders{order: activeOrder()}
	verifier := &fakeVerifier{order: paidOrder()}
	widget := &fakeWidget{result: &CheckoutResult{ErrorMessage: "user cancelled"}}

	c := New(testDeps(orders, verifier, widget))
	state, err := c.Submit(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, state.Status)
	assert.Equal(t, "user cancelled", state.Message)
	assert.Equal(t, 0, verifier.callCount(), "no verification after an inline widget error")
}

func TestSubmit_RedirectParksInAwaitingCheckout(t *testing.T) {
	orders := &fakeOrders{order: activeOrder()}
	verifier := &fakeVerifier{order: paidOrder()}
	widget := &fakeWidget{result: &CheckoutResult{RedirectURL: "https://payments.example.com/pay?payment_session_id=session-1"}}

	c := New(testDeps(orders, verifier, widget))
	state, err := c.Submit(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingCheckout, state.Status)
	assert.Contains(t, state.CheckoutURL, "session-1")
	assert.Equal(t, 0, verifier.callCount(), "verification waits for the callback")
}

func TestSubmit_SecondSubmitRejected(t *testing.T) {
	orders := &fakeOrders{order: activeOrder()}
	verifier := &fakeVerifier{order: paidOrder()}
	widget := &fakeWidget{result: &CheckoutResult{}}

	c := New(testDeps(orders, verifier, widget))
	_, err := c.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestCallback_MissingOrderIDIsError(t *testing.T) {
	deps := testDeps(&fakeOrders{}, &fakeVerifier{}, &fakeWidget{})

	c, err := NewFromCallback(deps, url.Values{})

	assert.ErrorIs(t, err, ErrInvalidCallback)
	state := c.State()
	assert.Equal(t, domain.StatusError, state.Status)
	assert.Contains(t, state.Message, "invalid payment callback")
}

func TestCallback_VerifiesPaidOrder(t *testing.T) {
	verifier := &fakeVerifier{order: paidOrder()}
	deps := testDeps(&fakeOrders{}, verifier, &fakeWidget{})

	c, err := NewFromCallback(deps, url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerifying, c.State().Status)

	state, err := c.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, state.Status)
}

func TestPathEquivalence_InlineAndRedirectAgree(t *testing.T) {
	// Same final order snapshot must yield the same view regardless of
	// which completion path produced it.
	verifier := &fakeVerifier{order: paidOrder()}

	inline := New(testDeps(&fakeOrders{order: activeOrder()}, verifier, &fakeWidget{result: &CheckoutResult{}}))
	inlineState, err := inline.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	redirect, err := NewFromCallback(testDeps(&fakeOrders{}, verifier, &fakeWidget{}), url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)
	redirectState, err := redirect.Verify(context.Background())
	require.NoError(t, err)

	assert.Equal(t, inlineState.Status, redirectState.Status)
	assert.Equal(t, inlineState.Order.OrderID, redirectState.Order.OrderID)
	assert.Equal(t, inlineState.Order.Amount, redirectState.Order.Amount)
}

func TestVerify_FetchFailureIsError(t *testing.T) {
	verifier := &fakeVerifier{orderErr: errors.New("connection refused")}
	c, err := NewFromCallback(testDeps(&fakeOrders{}, verifier, &fakeWidget{}), url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)

	state, err := c.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, state.Status)
	assert.Equal(t, "failed to verify payment status", state.Message)
}

func TestVerify_PaymentsFetchFailureIsError(t *testing.T) {
	// Either backend read failing means the outcome is undeterminable.
	verifier := &fakeVerifier{order: paidOrder(), payErr: errors.New("timeout")}
	c, err := NewFromCallback(testDeps(&fakeOrders{}, verifier, &fakeWidget{}), url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)

	state, err := c.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, state.Status)
}

func TestVerify_PendingThenRetrySucceeds(t *testing.T) {
	verifier := &fakeVerifier{order: activeOrder()}
	c, err := NewFromCallback(testDeps(&fakeOrders{}, verifier, &fakeWidget{}), url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)

	state, err := c.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, state.Status)

	// The payment settles out-of-band; a manual retry re-fetches from
	// scratch and picks it up.
	verifier.setOrder(paidOrder())

	state, err = c.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, state.Status)
	assert.Equal(t, 2, verifier.callCount())
}

func TestVerify_TerminalStateRejectsRetry(t *testing.T) {
	verifier := &fakeVerifier{order: paidOrder()}
	c, err := NewFromCallback(testDeps(&fakeOrders{}, verifier, &fakeWidget{}), url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)

	_, err = c.Verify(context.Background())
	require.NoError(t, err)

	_, err = c.Verify(context.Background())
	assert.ErrorIs(t, err, ErrLifecycleComplete)
}

func TestVerify_ConcurrentVerifyRejected(t *testing.T) {
	verifier := &blockingVerifier{
		order:   paidOrder(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	c, err := NewFromCallback(testDeps(&fakeOrders{}, verifier, &fakeWidget{}), url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)

	done := make(chan domain.LifecycleState, 1)
	go func() {
		state, _ := c.Verify(context.Background())
		done <- state
	}()

	<-verifier.started
	_, err = c.Verify(context.Background())
	assert.ErrorIs(t, err, ErrOperationInFlight)

	close(verifier.release)
	state := <-done
	assert.Equal(t, domain.StatusSucceeded, state.Status)
}

func TestVerify_StaleResultDiscardedAfterSupersede(t *testing.T) {
	verifier := &blockingVerifier{
		order:   paidOrder(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	c, err := NewFromCallback(testDeps(&fakeOrders{}, verifier, &fakeWidget{}), url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)

	done := make(chan domain.LifecycleState, 1)
	go func() {
		state, _ := c.Verify(context.Background())
		done <- state
	}()

	<-verifier.started
	// The view moved on before the response landed.
	c.Supersede()
	close(verifier.release)

	state := <-done
	assert.NotEqual(t, domain.StatusSucceeded, state.Status, "late result must not be applied")
	assert.Equal(t, domain.StatusVerifying, c.State().Status)
}

func TestCompleteCheckout_WidgetErrorGoesToErrorState(t *testing.T) {
	verifier := &fakeVerifier{order: paidOrder()}
	c, err := NewFromCallback(testDeps(&fakeOrders{}, verifier, &fakeWidget{}), url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)

	state, err := c.CompleteCheckout(context.Background(), CheckoutResult{ErrorMessage: "payment failed"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusError, state.Status)
	assert.Equal(t, "payment failed", state.Message)
	assert.Equal(t, 0, verifier.callCount())
}

func TestCompleteCheckout_ErrorAfterTerminalStateRejected(t *testing.T) {
	verifier := &fakeVerifier{order: paidOrder()}
	c, err := NewFromCallback(testDeps(&fakeOrders{}, verifier, &fakeWidget{}), url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)

	state, err := c.Verify(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StatusSucceeded, state.Status)

	// A duplicate error report arriving after settlement must not flip
	// the outcome.
	state, err = c.CompleteCheckout(context.Background(), CheckoutResult{ErrorMessage: "user cancelled"})

	assert.ErrorIs(t, err, ErrLifecycleComplete)
	assert.Equal(t, domain.StatusSucceeded, state.Status)
	assert.Equal(t, domain.StatusSucceeded, c.State().Status)
}

func TestCompleteCheckout_SuccessVerifies(t *testing.T) {
	verifier := &fakeVerifier{order: paidOrder()}
	c, err := NewFromCallback(testDeps(&fakeOrders{}, verifier, &fakeWidget{}), url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)

	state, err := c.CompleteCheckout(context.Background(), CheckoutResult{})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSucceeded, state.Status)
	assert.Equal(t, 1, verifier.callCount())
}

func TestRegistry_PutSupersedesPrevious(t *testing.T) {
	deps := testDeps(&fakeOrders{}, &fakeVerifier{order: paidOrder()}, &fakeWidget{})

	first, err := NewFromCallback(deps, url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)
	second, err := NewFromCallback(deps, url.Values{"order_id": {"order-1"}})
	require.NoError(t, err)

	registry := NewRegistry()
	registry.Put("order-1", first)
	registry.Put("order-1", second)

	got, ok := registry.Get("order-1")
	require.True(t, ok)
	assert.Same(t, second, got)

	registry.Remove("order-1")
	_, ok = registry.Get("order-1")
	assert.False(t, ok)
}
