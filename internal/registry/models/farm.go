package models

import (
	"strings"
	"time"

	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
	strutil "cultiva/pkg/platform/strings"
)

// Field bounds enforced at creation and update time. They mirror the
// on-ledger schema the external collaborators were built against, so a
// reimplementation must not relax them.
const (
	MaxNameLen     = 100
	MaxLocationLen = 200
	MaxCategoryLen = 50
	MaxTagLen      = 20
	MaxTags        = 10
)

// Farm is the canonical record for a certified entity.
//
// Invariants:
//   - Name and Location are non-empty and within bounds
//   - Owner is immutable after creation (no transfer operation exists)
//   - RegisteredAt is immutable after construction
type Farm struct {
	ID           domain.FarmID `json:"id"`
	Owner        domain.Actor  `json:"owner"`
	Name         string        `json:"name"`
	Location     string        `json:"location"`
	RegisteredAt time.Time     `json:"registered_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func NewFarm(id domain.FarmID, owner domain.Actor, name, location string, now time.Time) (*Farm, error) {
	name = strings.TrimSpace(name)
	location = strings.TrimSpace(location)
	if err := validateDetails(name, location); err != nil {
		return nil, err
	}
	return &Farm{
		ID:           id,
		Owner:        owner,
		Name:         name,
		Location:     location,
		RegisteredAt: now,
		UpdatedAt:    now,
	}, nil
}

// ApplyDetails overwrites the mutable descriptive fields. Validate first
// via ValidateDetails so staged transactions fail before any write.
func (f *Farm) ApplyDetails(name, location string, now time.Time) {
	f.Name = strings.TrimSpace(name)
	f.Location = strings.TrimSpace(location)
	f.UpdatedAt = now
}

// ValidateDetails checks the descriptive fields shared by registration and
// detail updates.
func ValidateDetails(name, location string) error {
	return validateDetails(strings.TrimSpace(name), strings.TrimSpace(location))
}

func validateDetails(name, location string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeInvalidDetails, "farm name cannot be empty")
	}
	if len(name) > MaxNameLen {
		return dErrors.New(dErrors.CodeInvalidDetails, "farm name exceeds 100 characters")
	}
	if location == "" {
		return dErrors.New(dErrors.CodeInvalidDetails, "farm location cannot be empty")
	}
	if len(location) > MaxLocationLen {
		return dErrors.New(dErrors.CodeInvalidDetails, "farm location exceeds 200 characters")
	}
	return nil
}

// Category is the classification metadata attached to a farm at
// registration. It is not independently mutable.
type Category struct {
	FarmID  domain.FarmID `json:"farm_id"`
	Primary string        `json:"primary"`
	Tags    []string      `json:"tags"`
}

func NewCategory(farmID domain.FarmID, primary string, tags []string) (*Category, error) {
	primary = strings.TrimSpace(primary)
	if len(primary) > MaxCategoryLen {
		return nil, dErrors.New(dErrors.CodeInvalidDetails, "category exceeds 50 characters")
	}
	cleaned := strutil.DedupeAndTrim(tags)
	if len(cleaned) > MaxTags {
		return nil, dErrors.New(dErrors.CodeInvalidDetails, "at most 10 tags allowed")
	}
	for _, tag := range cleaned {
		if len(tag) > MaxTagLen {
			return nil, dErrors.New(dErrors.CodeInvalidDetails, "tag exceeds 20 characters")
		}
	}
	return &Category{FarmID: farmID, Primary: primary, Tags: cleaned}, nil
}
