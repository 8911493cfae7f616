package service

import (
	"context"
	"errors"
	"fmt"

	"cultiva/internal/audit"
	"cultiva/internal/registry/models"
	"cultiva/internal/registry/store"
	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
	"cultiva/pkg/platform/sentinel"
	"cultiva/pkg/requestcontext"
)

// AddCollaborator inserts a delegated actor under a farm. Owner only; the
// (farm, collaborator) pair must not already exist. There is no removal or
// permission-update operation in this registry.
func (s *Service) AddCollaborator(ctx context.Context, caller domain.Actor, id domain.FarmID, collaborator domain.Actor, role string, permissions []string) error {
	ctx, span := s.startSpan(ctx, "registry.AddCollaborator")
	defer span.End()

	now := requestcontext.Now(ctx)
	var event audit.Event
	err := s.store.Update(ctx, func(tx store.Tx) error {
		if err := requireActive(tx); err != nil {
			return err
		}
		farm, err := loadFarm(tx, id)
		if err != nil {
			return err
		}
		if farm.Owner != caller {
			return dErrors.New(dErrors.CodeUnauthorized, "only the farm owner may add collaborators")
		}

		collab, err := models.NewCollaborator(id, collaborator, role, permissions, now)
		if err != nil {
			return err
		}
		if err := tx.InsertCollaborator(collab); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeAlreadyRegistered, "collaborator already registered for farm")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store collaborator")
		}

		entry := &models.HistoryEntry{
			FarmID:    id,
			Action:    models.ActionAddedCollab,
			Timestamp: now,
			Performer: caller,
			Details:   fmt.Sprintf("Collaborator %s as %s", collaborator, collab.Role),
		}
		entryID, err := appendHistory(tx, entry)
		if err != nil {
			return err
		}
		event = audit.Event{
			FarmID:    id,
			EntryID:   entryID,
			Action:    models.ActionAddedCollab,
			Performer: caller,
			Details:   entry.Details,
			Timestamp: now,
			RequestID: requestcontext.RequestID(ctx),
		}
		return nil
	})
	if err != nil {
		s.countFailure("add_collaborator", err)
		return err
	}

	s.finishMutation(ctx, "add_collaborator", event)
	return nil
}

// GetCollaborator returns the record for one (farm, actor) pair, or nil.
func (s *Service) GetCollaborator(ctx context.Context, id domain.FarmID, collaborator domain.Actor) (*models.Collaborator, error) {
	var collab *models.Collaborator
	err := s.store.View(ctx, func(tx store.ReadTx) error {
		c, err := tx.Collaborator(id, collaborator)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return err
		}
		collab = c
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load collaborator")
	}
	return collab, nil
}
