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

// Register creates a farm with its category and initial status, appends
// the "Registered" history entry and returns the freshly issued id. Any
// authenticated caller may register; the caller becomes the immutable
// owner.
func (s *Service) Register(ctx context.Context, caller domain.Actor, name, location, category string, tags []string) (domain.FarmID, error) {
	ctx, span := s.startSpan(ctx, "registry.Register")
	defer span.End()

	now := requestcontext.Now(ctx)
	var (
		farmID domain.FarmID
		event  audit.Event
	)
	err := s.store.Update(ctx, func(tx store.Tx) error {
		if err := requireActive(tx); err != nil {
			return err
		}

		id, err := tx.NextFarmID()
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate farm id")
		}
		farm, err := models.NewFarm(id, caller, name, location, now)
		if err != nil {
			return err
		}
		cat, err := models.NewCategory(id, category, tags)
		if err != nil {
			return err
		}
		status := models.NewFarmStatus(id, now)

		if err := tx.PutFarm(farm); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store farm")
		}
		if err := tx.PutCategory(cat); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store category")
		}
		if err := tx.PutStatus(status); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store status")
		}

		entry := &models.HistoryEntry{
			FarmID:    id,
			Action:    models.ActionRegistered,
			Timestamp: now,
			Performer: caller,
			Details:   fmt.Sprintf("Farm %q registered at %s", farm.Name, farm.Location),
		}
		entryID, err := appendHistory(tx, entry)
		if err != nil {
			return err
		}

		farmID = id
		event = audit.Event{
			FarmID:    id,
			EntryID:   entryID,
			Action:    models.ActionRegistered,
			Performer: caller,
			Details:   entry.Details,
			Timestamp: now,
			RequestID: requestcontext.RequestID(ctx),
		}
		return nil
	})
	if err != nil {
		s.countFailure("register", err)
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.FarmsRegistered.Inc()
	}
	s.finishMutation(ctx, "register", event)
	return farmID, nil
}

// UpdateDetails overwrites the farm's descriptive fields. Owner only.
func (s *Service) UpdateDetails(ctx context.Context, caller domain.Actor, id domain.FarmID, name, location string) error {
	ctx, span := s.startSpan(ctx, "registry.UpdateDetails")
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
			return dErrors.New(dErrors.CodeUnauthorized, "only the farm owner may update details")
		}
		if err := models.ValidateDetails(name, location); err != nil {
			return err
		}

		farm.ApplyDetails(name, location, now)
		if err := tx.PutFarm(farm); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store farm")
		}

		entry := &models.HistoryEntry{
			FarmID:    id,
			Action:    models.ActionUpdatedDetails,
			Timestamp: now,
			Performer: caller,
			Details:   fmt.Sprintf("Name %q, location %q", farm.Name, farm.Location),
		}
		entryID, err := appendHistory(tx, entry)
		if err != nil {
			return err
		}
		event = audit.Event{
			FarmID:    id,
			EntryID:   entryID,
			Action:    models.ActionUpdatedDetails,
			Performer: caller,
			Details:   entry.Details,
			Timestamp: now,
			RequestID: requestcontext.RequestID(ctx),
		}
		return nil
	})
	if err != nil {
		s.countFailure("update_details", err)
		return err
	}

	s.finishMutation(ctx, "update_details", event)
	return nil
}

// GetFarm is a point lookup. Absence is a normal empty result, not an
// error.
func (s *Service) GetFarm(ctx context.Context, id domain.FarmID) (*models.Farm, error) {
	var farm *models.Farm
	err := s.store.View(ctx, func(tx store.ReadTx) error {
		f, err := tx.Farm(id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return err
		}
		farm = f
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load farm")
	}
	return farm, nil
}

// GetCategory returns the classification metadata for a farm, or nil.
func (s *Service) GetCategory(ctx context.Context, id domain.FarmID) (*models.Category, error) {
	var category *models.Category
	err := s.store.View(ctx, func(tx store.ReadTx) error {
		c, err := tx.Category(id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return err
		}
		category = c
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load category")
	}
	return category, nil
}
