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

// Certify upserts the certification record with certified=true. The
// admin or the farm's own owner may certify; owner self-attestation is a
// deliberate interim trust policy, preserved as specified by product.
func (s *Service) Certify(ctx context.Context, caller domain.Actor, id domain.FarmID, level string, expiry int64, notes string) error {
	ctx, span := s.startSpan(ctx, "registry.Certify")
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
		admin, err := isAdmin(tx, caller)
		if err != nil {
			return err
		}
		if !admin && farm.Owner != caller {
			return dErrors.New(dErrors.CodeUnauthorized, "only the admin or the farm owner may certify")
		}

		cert, err := models.NewCertification(id, caller, level, expiry, notes, now)
		if err != nil {
			return err
		}
		if err := tx.PutCertification(cert); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store certification")
		}

		entry := &models.HistoryEntry{
			FarmID:    id,
			Action:    models.ActionCertified,
			Timestamp: now,
			Performer: caller,
			Details:   fmt.Sprintf("Level: %s", cert.Level),
		}
		entryID, err := appendHistory(tx, entry)
		if err != nil {
			return err
		}
		event = audit.Event{
			FarmID:    id,
			EntryID:   entryID,
			Action:    models.ActionCertified,
			Performer: caller,
			Details:   entry.Details,
			Timestamp: now,
			RequestID: requestcontext.RequestID(ctx),
		}
		return nil
	})
	if err != nil {
		s.countFailure("certify", err)
		return err
	}

	s.invalidate(ctx, id)
	s.finishMutation(ctx, "certify", event)
	return nil
}

// Revoke clears the certified flag while retaining the record so history
// stays queryable. Admin only; even the owner cannot revoke.
func (s *Service) Revoke(ctx context.Context, caller domain.Actor, id domain.FarmID, reason string) error {
	ctx, span := s.startSpan(ctx, "registry.Revoke")
	defer span.End()

	now := requestcontext.Now(ctx)
	var event audit.Event
	err := s.store.Update(ctx, func(tx store.Tx) error {
		if err := requireActive(tx); err != nil {
			return err
		}
		cert, err := tx.Certification(id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "no certification record for farm")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certification")
		}
		admin, err := isAdmin(tx, caller)
		if err != nil {
			return err
		}
		if !admin {
			return dErrors.New(dErrors.CodeUnauthorized, "only the admin may revoke certification")
		}

		cert.ApplyRevocation(now)
		if err := tx.PutCertification(cert); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store certification")
		}

		entry := &models.HistoryEntry{
			FarmID:    id,
			Action:    models.ActionRevoked,
			Timestamp: now,
			Performer: caller,
			Details:   reason,
		}
		entryID, err := appendHistory(tx, entry)
		if err != nil {
			return err
		}
		event = audit.Event{
			FarmID:    id,
			EntryID:   entryID,
			Action:    models.ActionRevoked,
			Performer: caller,
			Details:   entry.Details,
			Timestamp: now,
			RequestID: requestcontext.RequestID(ctx),
		}
		return nil
	})
	if err != nil {
		s.countFailure("revoke", err)
		return err
	}

	s.invalidate(ctx, id)
	s.finishMutation(ctx, "revoke", event)
	return nil
}

// GetCertification returns the current certification record, or nil when
// none was ever granted. Reads go through the snapshot cache when one is
// configured; misses and cache failures fall back to the store.
func (s *Service) GetCertification(ctx context.Context, id domain.FarmID) (*models.Certification, error) {
	if s.cache != nil {
		if cert, err := s.cache.FindCertification(ctx, id); err == nil && cert != nil {
			return cert, nil
		}
	}

	var cert *models.Certification
	err := s.store.View(ctx, func(tx store.ReadTx) error {
		c, err := tx.Certification(id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return err
		}
		cert = c
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certification")
	}

	if cert != nil && s.cache != nil {
		if err := s.cache.SaveCertification(ctx, cert); err != nil {
			s.logger.WarnContext(ctx, "certification cache save failed", "error", err, "farm_id", id)
		}
	}
	return cert, nil
}
