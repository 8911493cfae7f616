package service

import (
	"context"
	"fmt"

	"cultiva/internal/audit"
	"cultiva/internal/registry/store"
	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
	"cultiva/pkg/requestcontext"
)

// Pause freezes every mutating operation. Admin only, and deliberately
// not gated on the pause flag itself: pausing an already-paused registry
// is a no-op that still succeeds. No farm is touched, so no history entry
// is written; the mirror still records the action under farm id 0.
func (s *Service) Pause(ctx context.Context, caller domain.Actor) error {
	return s.setPaused(ctx, caller, true, audit.ActionPaused, "pause")
}

// Unpause lifts the freeze. Admin only.
func (s *Service) Unpause(ctx context.Context, caller domain.Actor) error {
	return s.setPaused(ctx, caller, false, audit.ActionUnpaused, "unpause")
}

func (s *Service) setPaused(ctx context.Context, caller domain.Actor, paused bool, action, op string) error {
	ctx, span := s.startSpan(ctx, "registry."+action)
	defer span.End()

	now := requestcontext.Now(ctx)
	err := s.store.Update(ctx, func(tx store.Tx) error {
		admin, err := isAdmin(tx, caller)
		if err != nil {
			return err
		}
		if !admin {
			return dErrors.New(dErrors.CodeUnauthorized, "only the admin may change the pause state")
		}
		if err := tx.SetPaused(paused); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set pause flag")
		}
		return nil
	})
	if err != nil {
		s.countFailure(op, err)
		return err
	}

	s.finishMutation(ctx, op, audit.Event{
		Action:    action,
		Performer: caller,
		Timestamp: now,
		RequestID: requestcontext.RequestID(ctx),
	})
	return nil
}

// TransferAdmin hands the admin role to another actor. Admin only. The
// outgoing admin loses every privilege the moment the transfer commits.
// Transfers work while paused — otherwise a paused registry with a lost
// admin key could never recover.
func (s *Service) TransferAdmin(ctx context.Context, caller, newAdmin domain.Actor) error {
	ctx, span := s.startSpan(ctx, "registry.TransferAdmin")
	defer span.End()

	now := requestcontext.Now(ctx)
	err := s.store.Update(ctx, func(tx store.Tx) error {
		admin, err := isAdmin(tx, caller)
		if err != nil {
			return err
		}
		if !admin {
			return dErrors.New(dErrors.CodeUnauthorized, "only the admin may transfer the admin role")
		}
		if err := tx.SetAdmin(newAdmin); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set admin")
		}
		return nil
	})
	if err != nil {
		s.countFailure("transfer_admin", err)
		return err
	}

	s.finishMutation(ctx, "transfer_admin", audit.Event{
		Action:    audit.ActionAdminTransfer,
		Performer: caller,
		Details:   fmt.Sprintf("New admin %s", newAdmin),
		Timestamp: now,
		RequestID: requestcontext.RequestID(ctx),
	})
	return nil
}

// IsPaused reports the current pause flag.
func (s *Service) IsPaused(ctx context.Context) (bool, error) {
	var paused bool
	err := s.store.View(ctx, func(tx store.ReadTx) error {
		p, err := tx.Paused()
		if err != nil {
			return err
		}
		paused = p
		return nil
	})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read pause flag")
	}
	return paused, nil
}

// GetAdmin returns the current admin actor.
func (s *Service) GetAdmin(ctx context.Context) (domain.Actor, error) {
	var admin domain.Actor
	err := s.store.View(ctx, func(tx store.ReadTx) error {
		a, err := tx.Admin()
		if err != nil {
			return err
		}
		admin = a
		return nil
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read admin")
	}
	return admin, nil
}

// FarmCount reports how many farms have ever been registered (the counter
// value; ids are never reused or reclaimed).
func (s *Service) FarmCount(ctx context.Context) (uint64, error) {
	var count uint64
	err := s.store.View(ctx, func(tx store.ReadTx) error {
		c, err := tx.FarmCounter()
		if err != nil {
			return err
		}
		count = c
		return nil
	})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read farm counter")
	}
	return count, nil
}
