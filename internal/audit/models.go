package audit

import (
	"context"
	"time"

	"cultiva/pkg/domain"
)

// Event mirrors a committed registry mutation for the external global
// audit aggregator. The per-farm history trail in the registry store is
// the source of truth; events are a downstream copy and carry the entry id
// they correspond to. Keep it transport-agnostic so sinks can fan out.
type Event struct {
	ID        string        `json:"id"`
	FarmID    domain.FarmID `json:"farm_id"`
	EntryID   uint32        `json:"entry_id,omitempty"`
	Action    string        `json:"action"`
	Performer domain.Actor  `json:"performer"`
	Details   string        `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// Admin-plane actions mirrored without a farm id. External readers group
// them under farm id 0.
const (
	ActionPaused        = "Paused"
	ActionUnpaused      = "Unpaused"
	ActionAdminTransfer = "Admin Transferred"
)

// Sink receives mirrored events. Implementations: in-memory store (tests),
// postgres outbox, kafka producer.
type Sink interface {
	Append(ctx context.Context, event Event) error
}
