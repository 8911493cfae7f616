package models

import (
	"strings"
	"time"

	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
)

const MaxStatusLen = 20

// StatusPending is the lifecycle stage every farm starts in.
const StatusPending = "Pending"

// FarmStatus tracks the operational lifecycle stage and public visibility
// of a farm. Created at registration, overwritten by updateStatus.
type FarmStatus struct {
	FarmID    domain.FarmID `json:"farm_id"`
	Status    string        `json:"status"`
	Visible   bool          `json:"visible"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func NewFarmStatus(farmID domain.FarmID, now time.Time) *FarmStatus {
	return &FarmStatus{
		FarmID:    farmID,
		Status:    StatusPending,
		Visible:   true,
		UpdatedAt: now,
	}
}

// ValidateStatus checks a caller-supplied lifecycle stage.
func ValidateStatus(status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return dErrors.New(dErrors.CodeInvalidDetails, "status cannot be empty")
	}
	if len(status) > MaxStatusLen {
		return dErrors.New(dErrors.CodeInvalidDetails, "status exceeds 20 characters")
	}
	return nil
}

// ApplyUpdate overwrites the stage and visibility.
func (s *FarmStatus) ApplyUpdate(status string, visible bool, now time.Time) {
	s.Status = strings.TrimSpace(status)
	s.Visible = visible
	s.UpdatedAt = now
}
