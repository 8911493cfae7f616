// Package store defines the transactional contract every registry
// persistence backend satisfies. The hosting ledger evaluates each public
// operation as one indivisible unit, so the contract is stage-then-commit:
// services do all validation and every write inside a single Update
// closure, and a non-nil return discards the whole staged set.
package store

import (
	"context"

	"cultiva/internal/registry/models"
	"cultiva/pkg/domain"
)

// Store is the persistence boundary for the registry. Implementations:
// memory (snapshot clone and swap) and postgres (database transaction).
type Store interface {
	// View runs fn against a read-only snapshot.
	View(ctx context.Context, fn func(tx ReadTx) error) error
	// Update runs fn against a staged copy of state and commits the
	// staged writes only when fn returns nil. On error nothing is
	// observable — including allocated farm ids.
	Update(ctx context.Context, fn func(tx Tx) error) error
}

// ReadTx exposes point lookups keyed by farm id (plus the three process
// scalars). Absent rows return sentinel.ErrNotFound; implementations
// reserve other errors for infrastructure failures.
type ReadTx interface {
	Admin() (domain.Actor, error)
	Paused() (bool, error)
	FarmCounter() (uint64, error)

	Farm(id domain.FarmID) (*models.Farm, error)
	Category(id domain.FarmID) (*models.Category, error)
	Certification(id domain.FarmID) (*models.Certification, error)
	Status(id domain.FarmID) (*models.FarmStatus, error)
	Collaborator(id domain.FarmID, actor domain.Actor) (*models.Collaborator, error)
	Share(id domain.FarmID, participant domain.Actor) (*models.RevenueShare, error)
	HistoryEntry(id domain.FarmID, entryID uint32) (*models.HistoryEntry, error)
	HistoryCount(id domain.FarmID) (uint32, error)
}

// Tx stages writes on top of a ReadTx snapshot.
type Tx interface {
	ReadTx

	SetAdmin(actor domain.Actor) error
	SetPaused(paused bool) error

	// NextFarmID allocates the next id from the monotonic counter.
	// Allocation is part of the staged set: a rolled-back transaction
	// leaks no ids.
	NextFarmID() (domain.FarmID, error)

	PutFarm(farm *models.Farm) error
	PutCategory(category *models.Category) error
	PutCertification(cert *models.Certification) error
	PutStatus(status *models.FarmStatus) error
	// InsertCollaborator fails with sentinel.ErrConflict when the
	// (farm, actor) key already exists.
	InsertCollaborator(collab *models.Collaborator) error
	PutShare(share *models.RevenueShare) error

	// AppendHistory assigns the next per-farm entry id and stages the
	// entry. Returns sentinel.ErrLimitExceeded when the trail is at
	// models.MaxHistoryEntries; the enclosing Update must then fail.
	AppendHistory(entry *models.HistoryEntry) (uint32, error)
}
