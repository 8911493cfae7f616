package models

import (
	"strings"
	"time"

	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
)

const (
	MaxLevelLen = 50
	MaxNotesLen = 500
)

// Certification is the current compliance record for a farm. At most one
// exists per farm; Certified=false means revoked or never granted, and the
// record is retained so history stays queryable.
type Certification struct {
	FarmID    domain.FarmID `json:"farm_id"`
	Certified bool          `json:"certified"`
	Certifier domain.Actor  `json:"certifier"`
	Level     string        `json:"level"`
	Expiry    int64         `json:"expiry"`
	Notes     string        `json:"notes"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func NewCertification(farmID domain.FarmID, certifier domain.Actor, level string, expiry int64, notes string, now time.Time) (*Certification, error) {
	level = strings.TrimSpace(level)
	if len(level) > MaxLevelLen {
		return nil, dErrors.New(dErrors.CodeInvalidDetails, "certification level exceeds 50 characters")
	}
	if len(notes) > MaxNotesLen {
		return nil, dErrors.New(dErrors.CodeInvalidDetails, "certification notes exceed 500 characters")
	}
	return &Certification{
		FarmID:    farmID,
		Certified: true,
		Certifier: certifier,
		Level:     level,
		Expiry:    expiry,
		Notes:     notes,
		UpdatedAt: now,
	}, nil
}

// ApplyRevocation clears the certified flag while retaining the record.
func (c *Certification) ApplyRevocation(now time.Time) {
	c.Certified = false
	c.UpdatedAt = now
}
