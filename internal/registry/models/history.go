package models

import (
	"time"

	"cultiva/pkg/domain"
)

// MaxHistoryEntries caps the audit trail per farm. The cap is a hard
// resource-protection ceiling: the mutation that would write the 51st
// entry fails and rolls back in full.
const MaxHistoryEntries = 50

const (
	MaxActionLen  = 50
	MaxDetailsLen = 200
)

// History actions recorded by each mutating operation. External readers
// (audit aggregator, dispute resolution) match on these strings, so they
// are part of the wire contract.
const (
	ActionRegistered      = "Registered"
	ActionUpdatedDetails  = "Updated Details"
	ActionCertified       = "Certified"
	ActionRevoked         = "Revoked"
	ActionAddedCollab     = "Added Collaborator"
	ActionStatusUpdated   = "Status Updated"
	ActionSetRevenueShare = "Set Revenue Share"
)

// HistoryEntry is one immutable record of a prior mutating action.
// EntryID is a per-farm sequence, contiguous from 1.
type HistoryEntry struct {
	FarmID    domain.FarmID `json:"farm_id"`
	EntryID   uint32        `json:"entry_id"`
	Action    string        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	Performer domain.Actor  `json:"performer"`
	Details   string        `json:"details"`
}

// Truncate clamps free-form detail text to the history column bound.
// Mutations never fail because a detail string ran long; the trail keeps
// the prefix.
func Truncate(details string) string {
	if len(details) > MaxDetailsLen {
		return details[:MaxDetailsLen]
	}
	return details
}
