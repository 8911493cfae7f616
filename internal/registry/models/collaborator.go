package models

import (
	"strings"
	"time"

	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
	strutil "cultiva/pkg/platform/strings"
)

const (
	MaxRoleLen        = 50
	MaxPermissionLen  = 20
	MaxPermissionTags = 5
)

// Collaborator is a delegated actor associated with a farm. Permissions
// are stored as opaque tags and never interpreted by this registry; any
// enforcement based on them belongs to external collaborators.
type Collaborator struct {
	FarmID      domain.FarmID `json:"farm_id"`
	Actor       domain.Actor  `json:"actor"`
	Role        string        `json:"role"`
	Permissions []string      `json:"permissions"`
	AddedAt     time.Time     `json:"added_at"`
}

func NewCollaborator(farmID domain.FarmID, actor domain.Actor, role string, permissions []string, now time.Time) (*Collaborator, error) {
	role = strings.TrimSpace(role)
	if len(role) > MaxRoleLen {
		return nil, dErrors.New(dErrors.CodeInvalidDetails, "role exceeds 50 characters")
	}
	cleaned := strutil.DedupeAndTrimLower(permissions)
	if len(cleaned) > MaxPermissionTags {
		return nil, dErrors.New(dErrors.CodeInvalidDetails, "at most 5 permission tags allowed")
	}
	for _, perm := range cleaned {
		if len(perm) > MaxPermissionLen {
			return nil, dErrors.New(dErrors.CodeInvalidDetails, "permission tag exceeds 20 characters")
		}
	}
	return &Collaborator{
		FarmID:      farmID,
		Actor:       actor,
		Role:        role,
		Permissions: cleaned,
		AddedAt:     now,
	}, nil
}
