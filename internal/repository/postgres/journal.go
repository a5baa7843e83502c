package postgres

import (
	"context"
	"database/sql"
	"errors"

	"payflow/internal/domain"
	"payflow/internal/repository"
)

// JournalRepository is a PostgreSQL implementation of repository.JournalRepository.
type JournalRepository struct {
	q Querier
}

// NewJournalRepository creates a new PostgreSQL journal repository.
func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{q: db}
}

// NewJournalRepositoryWithTx creates a journal repository using a transaction.
func NewJournalRepositoryWithTx(tx *sql.Tx) *JournalRepository {
	return &JournalRepository{q: tx}
}

// Create persists a new journal entry.
func (r *JournalRepository) Create(ctx context.Context, entry *domain.JournalEntry) error {
	query := `
		INSERT INTO payment_journal (id, order_id, amount, currency, customer_name, customer_phone, status, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		entry.ID,
		entry.OrderID,
		entry.Amount,
		entry.Currency,
		entry.CustomerName,
		entry.CustomerPhone,
		entry.Status,
		entry.Message,
		entry.CreatedAt,
	)

	return err
}

// GetByOrderID retrieves the journal entry for a processor order id.
func (r *JournalRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.JournalEntry, error) {
	query := `
		SELECT id, order_id, amount, currency, customer_name, customer_phone, status, message, created_at, updated_at
		FROM payment_journal WHERE order_id = $1
	`

	var entry domain.JournalEntry
	err := r.q.QueryRowContext(ctx, query, orderID).Scan(
		&entry.ID,
		&entry.OrderID,
		&entry.Amount,
		&entry.Currency,
		&entry.CustomerName,
		&entry.CustomerPhone,
		&entry.Status,
		&entry.Message,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &entry, nil
}

// UpdateStatus records the latest derived status for an order.
func (r *JournalRepository) UpdateStatus(ctx context.Context, orderID string, status domain.UIStatus, message string) error {
	query := `UPDATE payment_journal SET status = $1, message = $2, updated_at = NOW() WHERE order_id = $3`

	result, err := r.q.ExecContext(ctx, query, status, message, orderID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns the most recent journal entries, newest first.
func (r *JournalRepository) List(ctx context.Context, limit int) ([]*domain.JournalEntry, error) {
	query := `
		SELECT id, order_id, amount, currency, customer_name, customer_phone, status, message, created_at, updated_at
		FROM payment_journal ORDER BY created_at DESC LIMIT $1
	`

	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		var entry domain.JournalEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.OrderID,
			&entry.Amount,
			&entry.Currency,
			&entry.CustomerName,
			&entry.CustomerPhone,
			&entry.Status,
			&entry.Message,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
