package models

import (
	"time"

	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
)

// RevenueShare is a percentage-split agreement per (farm, participant).
// TotalReceived and LastPayoutAt are owned by the external escrow ledger
// but live here for lookup; this registry only validates and records the
// percentage, it never moves value. Setting a share defines or redefines
// the agreement, so both payout fields reset to zero.
type RevenueShare struct {
	FarmID        domain.FarmID `json:"farm_id"`
	Participant   domain.Actor  `json:"participant"`
	Percentage    uint8         `json:"percentage"`
	TotalReceived uint64        `json:"total_received"`
	LastPayoutAt  time.Time     `json:"last_payout_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func NewRevenueShare(farmID domain.FarmID, participant domain.Actor, percentage int, now time.Time) (*RevenueShare, error) {
	if percentage < 0 || percentage > 100 {
		return nil, dErrors.New(dErrors.CodeInvalidPercentage, "percentage must be between 0 and 100")
	}
	return &RevenueShare{
		FarmID:      farmID,
		Participant: participant,
		Percentage:  uint8(percentage),
		UpdatedAt:   now,
	}, nil
}
