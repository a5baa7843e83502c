package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"payflow/internal/domain"
	"payflow/internal/events"
	"payflow/internal/lifecycle"
	"payflow/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK ORDER SERVICE
// ──────────────────────────────────────────────

// MockOrderService is a mock implementation of lifecycle.OrderService.
type MockOrderService struct {
	mu    sync.Mutex
	Order *domain.Order

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockOrderService creates a mock order service returning the given order.
func NewMockOrderService(order *domain.Order) *MockOrderService {
	return &MockOrderService{Order: order}
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req domain.PaymentRequest) (*domain.Order, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	// Return a copy to avoid mutation issues.
	order := *m.Order
	return &order, nil
}

// ──────────────────────────────────────────────
// MOCK VERIFICATION SERVICE
// ──────────────────────────────────────────────

// MockVerificationService is a mock implementation of lifecycle.VerificationService.
type MockVerificationService struct {
	mu       sync.Mutex
	order    *domain.Order
	attempts []domain.PaymentAttempt

	// Counters for verification
	FetchOrderCallCount int32

	// Error injection
	FetchOrderError    error
	FetchPaymentsError error
}

// NewMockVerificationService creates a mock verification service.
func NewMockVerificationService(order *domain.Order, attempts []domain.PaymentAttempt) *MockVerificationService {
	return &MockVerificationService{order: order, attempts: attempts}
}

// SetOrder swaps the order snapshot subsequent fetches return.
func (m *MockVerificationService) SetOrder(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = order
}

func (m *MockVerificationService) FetchOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	atomic.AddInt32(&m.FetchOrderCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchOrderError != nil {
		return nil, m.FetchOrderError
	}
	order := *m.order
	return &order, nil
}

func (m *MockVerificationService) FetchPayments(ctx context.Context, orderID string) ([]domain.PaymentAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchPaymentsError != nil {
		return nil, m.FetchPaymentsError
	}
	return m.attempts, nil
}

// ──────────────────────────────────────────────
// MOCK CHECKOUT WIDGET
// ──────────────────────────────────────────────

// MockWidget is a mock implementation of lifecycle.CheckoutWidget.
type MockWidget struct {
	mu     sync.Mutex
	Result *lifecycle.CheckoutResult

	CheckoutCallCount int32

	CheckoutError error
}

// NewMockWidget creates a mock widget resolving with the given result.
func NewMockWidget(result *lifecycle.CheckoutResult) *MockWidget {
	return &MockWidget{Result: result}
}

func (m *MockWidget) Checkout(ctx context.Context, opts lifecycle.CheckoutOptions) (*lifecycle.CheckoutResult, error) {
	atomic.AddInt32(&m.CheckoutCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CheckoutError != nil {
		return nil, m.CheckoutError
	}
	result := *m.Result
	return &result, nil
}

// ──────────────────────────────────────────────
// MOCK JOURNAL REPOSITORY
// ──────────────────────────────────────────────

// MockJournalRepository is an in-memory implementation of repository.JournalRepository.
type MockJournalRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.JournalEntry

	CreateCallCount int32

	CreateError error
}

// NewMockJournalRepository creates a new mock journal repository.
func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{
		entries: make(map[string]*domain.JournalEntry),
	}
}

func (m *MockJournalRepository) Create(ctx context.Context, entry *domain.JournalEntry) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *entry
	m.entries[entry.OrderID] = &copied
	return nil
}

func (m *MockJournalRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (m *MockJournalRepository) UpdateStatus(ctx context.Context, orderID string, status domain.UIStatus, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	entry.Status = status
	entry.Message = message
	entry.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockJournalRepository) List(ctx context.Context, limit int) ([]*domain.JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.JournalEntry, 0, len(m.entries))
	for _, e := range m.entries {
		copied := *e
		result = append(result, &copied)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// GetEntry returns an entry for test assertions.
func (m *MockJournalRepository) GetEntry(orderID string) *domain.JournalEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[orderID]
}

// ──────────────────────────────────────────────
// RECORDING EVENT PUBLISHER
// ──────────────────────────────────────────────

// RecordingPublisher captures published lifecycle events.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.LifecycleEvent
}

// NewRecordingPublisher creates a new RecordingPublisher.
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) PublishLifecycle(ctx context.Context, event events.LifecycleEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *RecordingPublisher) Close() {}

// Events returns the captured events.
func (p *RecordingPublisher) Events() []events.LifecycleEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.LifecycleEvent, len(p.events))
	copy(out, p.events)
	return out
}
