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

// SetShare defines or redefines the revenue-split agreement for one
// (farm, participant) pair. Owner only. Redefining resets the payout
// bookkeeping owned by the external escrow ledger.
func (s *Service) SetShare(ctx context.Context, caller domain.Actor, id domain.FarmID, participant domain.Actor, percentage int) error {
	ctx, span := s.startSpan(ctx, "registry.SetShare")
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
			return dErrors.New(dErrors.CodeUnauthorized, "only the farm owner may set revenue shares")
		}

		share, err := models.NewRevenueShare(id, participant, percentage, now)
		if err != nil {
			return err
		}
		if err := tx.PutShare(share); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store revenue share")
		}

		entry := &models.HistoryEntry{
			FarmID:    id,
			Action:    models.ActionSetRevenueShare,
			Timestamp: now,
			Performer: caller,
			Details:   fmt.Sprintf("Participant %s at %d%%", participant, share.Percentage),
		}
		entryID, err := appendHistory(tx, entry)
		if err != nil {
			return err
		}
		event = audit.Event{
			FarmID:    id,
			EntryID:   entryID,
			Action:    models.ActionSetRevenueShare,
			Performer: caller,
			Details:   entry.Details,
			Timestamp: now,
			RequestID: requestcontext.RequestID(ctx),
		}
		return nil
	})
	if err != nil {
		s.countFailure("set_share", err)
		return err
	}

	s.finishMutation(ctx, "set_share", event)
	return nil
}

// GetShare returns the agreement for one (farm, participant) pair, or nil.
func (s *Service) GetShare(ctx context.Context, id domain.FarmID, participant domain.Actor) (*models.RevenueShare, error) {
	var share *models.RevenueShare
	err := s.store.View(ctx, func(tx store.ReadTx) error {
		sh, err := tx.Share(id, participant)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return err
		}
		share = sh
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load revenue share")
	}
	return share, nil
}
