package repository

import (
	"context"

	"payflow/internal/domain"
)

// JournalRepository defines the persistence operations for the payment
// journal.
type JournalRepository interface {
	// Create persists a new journal entry.
	Create(ctx context.Context, entry *domain.JournalEntry) error

	// GetByOrderID retrieves the journal entry for a processor order id.
	GetByOrderID(ctx context.Context, orderID string) (*domain.JournalEntry, error)

	// UpdateStatus records the latest derived status for an order.
	UpdateStatus(ctx context.Context, orderID string, status domain.UIStatus, message string) error

	// List returns the most recent journal entries, newest first.
	List(ctx context.Context, limit int) ([]*domain.JournalEntry, error)
}
