package handler

import (
	"strconv"

	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
)

// Request bodies do transport-shape validation only (presence, parseable
// handles). Length bounds and semantic rules belong to the domain layer so
// every caller gets them, not just HTTP.

type registerFarmRequest struct {
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

func (r *registerFarmRequest) validate() error {
	return nil
}

type updateDetailsRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (r *updateDetailsRequest) validate() error {
	return nil
}

type certifyRequest struct {
	Level  string `json:"level"`
	Expiry int64  `json:"expiry"`
	Notes  string `json:"notes"`
}

func (r *certifyRequest) validate() error {
	return nil
}

type revokeRequest struct {
	Reason string `json:"reason"`
}

func (r *revokeRequest) validate() error {
	return nil
}

type addCollaboratorRequest struct {
	Actor       string   `json:"actor"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func (r *addCollaboratorRequest) validate() error {
	if _, ok := domain.ParseActor(r.Actor); !ok {
		return dErrors.New(dErrors.CodeInvalidDetails, "collaborator actor is required")
	}
	return nil
}

func (r *addCollaboratorRequest) actor() (domain.Actor, error) {
	actor, ok := domain.ParseActor(r.Actor)
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidDetails, "collaborator actor is required")
	}
	return actor, nil
}

type updateStatusRequest struct {
	Status  string `json:"status"`
	Visible bool   `json:"visible"`
}

func (r *updateStatusRequest) validate() error {
	return nil
}

type setShareRequest struct {
	Percentage int `json:"percentage"`
}

func (r *setShareRequest) validate() error {
	return nil
}

type transferAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

// The domain layer only answers "may this caller transfer"; an empty
// target handle is a malformed request, caught here.
func (r *transferAdminRequest) validate() error {
	if _, ok := domain.ParseActor(r.NewAdmin); !ok {
		return dErrors.New(dErrors.CodeInvalidDetails, "new_admin is required")
	}
	return nil
}

func (r *transferAdminRequest) actor() (domain.Actor, error) {
	actor, ok := domain.ParseActor(r.NewAdmin)
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidDetails, "new_admin is required")
	}
	return actor, nil
}

func parseEntryID(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidDetails, "invalid history entry id")
	}
	return uint32(n), nil
}
