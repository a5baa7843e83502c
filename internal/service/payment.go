package service

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"payflow/internal/cache"
	"payflow/internal/domain"
	"payflow/internal/events"
	"payflow/internal/lifecycle"
	"payflow/internal/repository"
)

// PaymentService coordinates payment lifecycles: it owns the controller
// registry and fans derived states out to the journal, the snapshot
// cache and the event stream. Those sinks are best effort; the flow
// itself only depends on the processor.
type PaymentService struct {
	deps      lifecycle.Deps
	registry  *lifecycle.Registry
	journal   repository.JournalRepository
	snapshots *cache.SnapshotStore
	publisher events.Publisher
	log       zerolog.Logger
}

// NewPaymentService creates a new PaymentService. journal and snapshots
// may be nil when the deployment runs without Postgres or Redis.
func NewPaymentService(
	deps lifecycle.Deps,
	journal repository.JournalRepository,
	snapshots *cache.SnapshotStore,
	publisher events.Publisher,
	log zerolog.Logger,
) *PaymentService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &PaymentService{
		deps:      deps,
		registry:  lifecycle.NewRegistry(),
		journal:   journal,
		snapshots: snapshots,
		publisher: publisher,
		log:       log,
	}
}

// Submit starts a fresh lifecycle for one payment request.
func (s *PaymentService) Submit(ctx context.Context, req domain.PaymentRequest) (domain.LifecycleState, error) {
	controller := lifecycle.New(s.deps)

	state, err := controller.Submit(ctx, req)
	if err != nil {
		return state, err
	}

	if state.Order != nil {
		s.registry.Put(state.Order.OrderID, controller)
		s.journalCreate(ctx, state, req)
		s.recordOutcome(ctx, state.Order.OrderID, state)
	}

	return state, nil
}

// State returns the current view for an order: the live controller when
// one exists, the cached snapshot next, the journal as a last resort.
func (s *PaymentService) State(ctx context.Context, orderID string) (domain.LifecycleState, error) {
	if controller, ok := s.registry.Get(orderID); ok {
		return controller.State(), nil
	}

	if s.snapshots != nil {
		snap, err := s.snapshots.Get(ctx, orderID)
		if err != nil {
			s.log.Warn().Err(err).Str("order_id", orderID).Msg("snapshot_read_failed")
		} else if snap != nil {
			return domain.LifecycleState{
				Status:   snap.Status,
				Message:  snap.Message,
				Order:    snap.Order,
				Attempts: snap.Attempts,
			}, nil
		}
	}

	if s.journal != nil {
		entry, err := s.journal.GetByOrderID(ctx, orderID)
		if err != nil {
			return domain.LifecycleState{}, err
		}
		return domain.LifecycleState{
			Status:  entry.Status,
			Message: entry.Message,
		}, nil
	}

	return domain.LifecycleState{}, repository.ErrNotFound
}

// Verify re-runs verification for an order. When no live controller is
// registered (a restart, or a poll from another node), a fresh one is
// re-hydrated from the order id alone, exactly like the redirect path.
func (s *PaymentService) Verify(ctx context.Context, orderID string) (domain.LifecycleState, error) {
	controller, err := s.controllerFor(ctx, orderID)
	if err != nil {
		return lifecycle.New(s.deps).State(), err
	}

	state, err := controller.Verify(ctx)
	if err != nil {
		return state, err
	}

	s.recordOutcome(ctx, orderID, state)
	return state, nil
}

// CompleteCheckout applies an inline widget result for an order.
func (s *PaymentService) CompleteCheckout(ctx context.Context, orderID string, result lifecycle.CheckoutResult) (domain.LifecycleState, error) {
	controller, err := s.controllerFor(ctx, orderID)
	if err != nil {
		return lifecycle.New(s.deps).State(), err
	}

	state, err := controller.CompleteCheckout(ctx, result)
	if err != nil {
		return state, err
	}

	s.recordOutcome(ctx, orderID, state)
	return state, nil
}

// Callback handles the redirect-completion entry point. The query is the
// raw callback query string; a missing order_id yields the error state
// plus lifecycle.ErrInvalidCallback.
func (s *PaymentService) Callback(ctx context.Context, query url.Values) (domain.LifecycleState, error) {
	controller, err := lifecycle.NewFromCallback(s.deps, query)
	if err != nil {
		return controller.State(), err
	}

	orderID := controller.OrderID()
	s.registry.Put(orderID, controller)

	state, err := controller.Verify(ctx)
	if err != nil {
		return state, err
	}

	s.recordOutcome(ctx, orderID, state)
	return state, nil
}

// List returns the most recent journal entries.
func (s *PaymentService) List(ctx context.Context, limit int) ([]*domain.JournalEntry, error) {
	if s.journal == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.journal.List(ctx, limit)
}

func (s *PaymentService) controllerFor(ctx context.Context, orderID string) (*lifecycle.Controller, error) {
	if controller, ok := s.registry.Get(orderID); ok {
		return controller, nil
	}

	// Terminal controllers are released from the registry; a settled
	// outcome recorded in the sinks must not be re-entered through a
	// late verify or checkout-result call.
	if st, err := s.State(ctx, orderID); err == nil && st.Status.IsTerminal() {
		return nil, lifecycle.ErrLifecycleComplete
	}

	controller, err := lifecycle.NewFromCallback(s.deps, url.Values{"order_id": {orderID}})
	if err != nil {
		return nil, err
	}
	s.registry.Put(orderID, controller)
	return controller, nil
}

func (s *PaymentService) journalCreate(ctx context.Context, state domain.LifecycleState, req domain.PaymentRequest) {
	if s.journal == nil || state.Order == nil {
		return
	}

	entry := &domain.JournalEntry{
		ID:            uuid.NewString(),
		OrderID:       state.Order.OrderID,
		Amount:        state.Order.Amount,
		Currency:      state.Order.Currency,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Status:        state.Status,
		Message:       state.Message,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.journal.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("order_id", entry.OrderID).Msg("journal_create_failed")
	}
}

// recordOutcome fans the derived state out to the display sinks and the
// event stream.
func (s *PaymentService) recordOutcome(ctx context.Context, orderID string, state domain.LifecycleState) {
	if s.snapshots != nil {
		if err := s.snapshots.Set(ctx, orderID, state); err != nil {
			s.log.Warn().Err(err).Str("order_id", orderID).Msg("snapshot_write_failed")
		}
	}

	if s.journal != nil {
		err := s.journal.UpdateStatus(ctx, orderID, state.Status, state.Message)
		if err != nil && err != repository.ErrNotFound {
			s.log.Warn().Err(err).Str("order_id", orderID).Msg("journal_update_failed")
		}
	}

	event := events.LifecycleEvent{
		OrderID:    orderID,
		Status:     state.Status,
		Message:    state.Message,
		OccurredAt: time.Now().UTC(),
	}
	if state.Order != nil {
		event.Amount = state.Order.Amount
		event.Currency = state.Order.Currency
	}
	s.publisher.PublishLifecycle(ctx, event)

	// A settled lifecycle needs no live controller; reads are served by
	// the sinks from here on. Eviction keeps the registry bounded by the
	// number of in-flight payments.
	if state.Status.IsTerminal() {
		s.registry.Remove(orderID)
	}
}
