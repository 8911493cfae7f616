package service

import (
	"context"
	"errors"

	"cultiva/internal/registry/models"
	"cultiva/internal/registry/store"
	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
	"cultiva/pkg/platform/sentinel"
)

// GetHistoryEntry looks up one trail entry by its per-farm ordinal.
// Entry ids are contiguous from 1, so callers can walk the trail with
// GetHistoryCount and a loop. Absent entries return nil.
func (s *Service) GetHistoryEntry(ctx context.Context, id domain.FarmID, entryID uint32) (*models.HistoryEntry, error) {
	var entry *models.HistoryEntry
	err := s.store.View(ctx, func(tx store.ReadTx) error {
		e, err := tx.HistoryEntry(id, entryID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history entry")
	}
	return entry, nil
}

// GetHistoryCount returns how many trail entries a farm has accrued.
// Unknown farms report zero.
func (s *Service) GetHistoryCount(ctx context.Context, id domain.FarmID) (uint32, error) {
	var count uint32
	err := s.store.View(ctx, func(tx store.ReadTx) error {
		c, err := tx.HistoryCount(id)
		if err != nil {
			return err
		}
		count = c
		return nil
	})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count history")
	}
	return count, nil
}

// GetHistory returns the full trail for a farm, oldest first. Convenience
// read for the portal; bounded by models.MaxHistoryEntries.
func (s *Service) GetHistory(ctx context.Context, id domain.FarmID) ([]*models.HistoryEntry, error) {
	var entries []*models.HistoryEntry
	err := s.store.View(ctx, func(tx store.ReadTx) error {
		count, err := tx.HistoryCount(id)
		if err != nil {
			return err
		}
		entries = make([]*models.HistoryEntry, 0, count)
		for i := uint32(1); i <= count; i++ {
			e, err := tx.HistoryEntry(id, i)
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history")
	}
	return entries, nil
}
