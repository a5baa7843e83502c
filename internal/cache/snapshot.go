package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"payflow/internal/domain"
)

// SnapshotStore keeps the latest derived lifecycle state per order in
// Redis, so status polls and the callback page do not have to hit the
// processor for every read. Snapshots are short-lived display data; a
// verification always re-derives from the processor.
type SnapshotStore struct {
	client *redis.Client
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// SnapshotTTL bounds how long a stale snapshot can be served.
const SnapshotTTL = 60 * time.Second

const snapshotPrefix = "payflow:state:"

// Snapshot is the cached view of a lifecycle state.
type Snapshot struct {
	OrderID    string                  `json:"order_id"`
	Status     domain.UIStatus         `json:"status"`
	Message    string                  `json:"message"`
	Order      *domain.Order           `json:"order,omitempty"`
	Attempts   []domain.PaymentAttempt `json:"attempts,omitempty"`
	CapturedAt time.Time               `json:"captured_at"`
}

// Get retrieves the snapshot for an order. Returns nil on cache miss.
func (s *SnapshotStore) Get(ctx context.Context, orderID string) (*Snapshot, error) {
	key := snapshotPrefix + orderID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Set stores the latest derived state for an order.
func (s *SnapshotStore) Set(ctx context.Context, orderID string, state domain.LifecycleState) error {
	snap := Snapshot{
		OrderID:    orderID,
		Status:     state.Status,
		Message:    state.Message,
		Order:      state.Order,
		Attempts:   state.Attempts,
		CapturedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, snapshotPrefix+orderID, data, SnapshotTTL).Err()
}
