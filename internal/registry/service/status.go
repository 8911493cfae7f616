package service

import (
	"context"
	"errors"

	"cultiva/internal/audit"
	"cultiva/internal/registry/models"
	"cultiva/internal/registry/store"
	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
	"cultiva/pkg/platform/sentinel"
	"cultiva/pkg/requestcontext"
)

// UpdateStatus overwrites the farm's lifecycle stage and visibility.
// Owner or admin.
func (s *Service) UpdateStatus(ctx context.Context, caller domain.Actor, id domain.FarmID, newStatus string, visible bool) error {
	ctx, span := s.startSpan(ctx, "registry.UpdateStatus")
	defer span.End()

	now := requestcontext.Now(ctx)
	var event audit.Event
	err := s.store.Update(ctx, func(tx store.Tx) error {
		if err := requireActive(tx); err != nil {
			return err
		}
		status, err := tx.Status(id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "no status record for farm")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status")
		}
		farm, err := loadFarm(tx, id)
		if err != nil {
			return err
		}
		admin, err := isAdmin(tx, caller)
		if err != nil {
			return err
		}
		if !admin && farm.Owner != caller {
			return dErrors.New(dErrors.CodeUnauthorized, "only the owner or admin may update status")
		}
		if err := models.ValidateStatus(newStatus); err != nil {
			return err
		}

		status.ApplyUpdate(newStatus, visible, now)
		if err := tx.PutStatus(status); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store status")
		}

		entry := &models.HistoryEntry{
			FarmID:    id,
			Action:    models.ActionStatusUpdated,
			Timestamp: now,
			Performer: caller,
			Details:   status.Status,
		}
		entryID, err := appendHistory(tx, entry)
		if err != nil {
			return err
		}
		event = audit.Event{
			FarmID:    id,
			EntryID:   entryID,
			Action:    models.ActionStatusUpdated,
			Performer: caller,
			Details:   entry.Details,
			Timestamp: now,
			RequestID: requestcontext.RequestID(ctx),
		}
		return nil
	})
	if err != nil {
		s.countFailure("update_status", err)
		return err
	}

	s.invalidate(ctx, id)
	s.finishMutation(ctx, "update_status", event)
	return nil
}

// GetStatus returns the operational status row, or nil. Like
// GetCertification it reads through the snapshot cache when configured.
func (s *Service) GetStatus(ctx context.Context, id domain.FarmID) (*models.FarmStatus, error) {
	if s.cache != nil {
		if status, err := s.cache.FindStatus(ctx, id); err == nil && status != nil {
			return status, nil
		}
	}

	var status *models.FarmStatus
	err := s.store.View(ctx, func(tx store.ReadTx) error {
		st, err := tx.Status(id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return err
		}
		status = st
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status")
	}

	if status != nil && s.cache != nil {
		if err := s.cache.SaveStatus(ctx, status); err != nil {
			s.logger.WarnContext(ctx, "status cache save failed", "error", err, "farm_id", id)
		}
	}
	return status, nil
}
