// Package postgres backs the registry store with PostgreSQL. Update runs
// inside a serializable database transaction, which gives the same
// all-or-nothing semantics the memory store gets from clone-and-swap:
// the allocated farm id, every staged row and the history append commit
// together or not at all.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cultiva/internal/registry/models"
	"cultiva/internal/registry/store"
	"cultiva/pkg/domain"
	"cultiva/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// Schema creates the registry tables. Applied on startup; every statement
// is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS registry_meta (
	id           BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
	admin        TEXT NOT NULL,
	paused       BOOLEAN NOT NULL DEFAULT FALSE,
	farm_counter BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS farms (
	farm_id       BIGINT PRIMARY KEY,
	owner_actor   TEXT NOT NULL,
	name          TEXT NOT NULL,
	location      TEXT NOT NULL,
	registered_at TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS farm_categories (
	farm_id  BIGINT PRIMARY KEY REFERENCES farms(farm_id),
	primary_category TEXT NOT NULL,
	tags     TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS farm_certifications (
	farm_id    BIGINT PRIMARY KEY REFERENCES farms(farm_id),
	certified  BOOLEAN NOT NULL,
	certifier  TEXT NOT NULL,
	level      TEXT NOT NULL,
	expiry     BIGINT NOT NULL,
	notes      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS farm_statuses (
	farm_id    BIGINT PRIMARY KEY REFERENCES farms(farm_id),
	status     TEXT NOT NULL,
	visible    BOOLEAN NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS farm_collaborators (
	farm_id     BIGINT NOT NULL REFERENCES farms(farm_id),
	actor       TEXT NOT NULL,
	role        TEXT NOT NULL,
	permissions TEXT[] NOT NULL DEFAULT '{}',
	added_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (farm_id, actor)
);

CREATE TABLE IF NOT EXISTS farm_revenue_shares (
	farm_id        BIGINT NOT NULL REFERENCES farms(farm_id),
	participant    TEXT NOT NULL,
	percentage     SMALLINT NOT NULL,
	total_received BIGINT NOT NULL,
	last_payout_at TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (farm_id, participant)
);

CREATE TABLE IF NOT EXISTS farm_history (
	farm_id   BIGINT NOT NULL REFERENCES farms(farm_id),
	entry_id  INTEGER NOT NULL,
	action    TEXT NOT NULL,
	ts        TIMESTAMPTZ NOT NULL,
	performer TEXT NOT NULL,
	details   TEXT NOT NULL,
	PRIMARY KEY (farm_id, entry_id)
);
`

// Store is the PostgreSQL-backed registry store.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema and seeds the singleton meta row with the
// initial admin. The admin argument only takes effect on first boot;
// later transfers live in the row.
func New(ctx context.Context, pool *pgxpool.Pool, admin domain.Actor) (*Store, error) {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return nil, fmt.Errorf("apply registry schema: %w", err)
	}
	_, err := pool.Exec(ctx,
		`INSERT INTO registry_meta (admin) VALUES ($1) ON CONFLICT (id) DO NOTHING`, string(admin))
	if err != nil {
		return nil, fmt.Errorf("seed registry meta: %w", err)
	}
	return &Store{pool: pool}, nil
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(tx store.ReadTx) error) error {
	pgtx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin read tx: %w", err)
	}
	defer pgtx.Rollback(ctx)

	if err := fn(&tx{ctx: ctx, tx: pgtx}); err != nil {
		return err
	}
	return pgtx.Commit(ctx)
}

// Update runs fn in a serializable transaction and commits only when fn
// returns nil.
func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	pgtx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer pgtx.Rollback(ctx)

	if err := fn(&tx{ctx: ctx, tx: pgtx}); err != nil {
		return err
	}
	if err := pgtx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type tx struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *tx) Admin() (domain.Actor, error) {
	var admin string
	err := t.tx.QueryRow(t.ctx, `SELECT admin FROM registry_meta`).Scan(&admin)
	if err != nil {
		return "", fmt.Errorf("read admin: %w", err)
	}
	return domain.Actor(admin), nil
}

func (t *tx) Paused() (bool, error) {
	var paused bool
	err := t.tx.QueryRow(t.ctx, `SELECT paused FROM registry_meta`).Scan(&paused)
	if err != nil {
		return false, fmt.Errorf("read paused: %w", err)
	}
	return paused, nil
}

func (t *tx) FarmCounter() (uint64, error) {
	var counter int64
	err := t.tx.QueryRow(t.ctx, `SELECT farm_counter FROM registry_meta`).Scan(&counter)
	if err != nil {
		return 0, fmt.Errorf("read farm counter: %w", err)
	}
	return uint64(counter), nil
}

func (t *tx) Farm(id domain.FarmID) (*models.Farm, error) {
	var farm models.Farm
	err := t.tx.QueryRow(t.ctx,
		`SELECT farm_id, owner_actor, name, location, registered_at, updated_at
		 FROM farms WHERE farm_id = $1`, int64(id)).
		Scan(&farm.ID, &farm.Owner, &farm.Name, &farm.Location, &farm.RegisteredAt, &farm.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err, "read farm")
	}
	return &farm, nil
}

func (t *tx) Category(id domain.FarmID) (*models.Category, error) {
	var cat models.Category
	err := t.tx.QueryRow(t.ctx,
		`SELECT farm_id, primary_category, tags FROM farm_categories WHERE farm_id = $1`, int64(id)).
		Scan(&cat.FarmID, &cat.Primary, &cat.Tags)
	if err != nil {
		return nil, mapNoRows(err, "read category")
	}
	return &cat, nil
}

func (t *tx) Certification(id domain.FarmID) (*models.Certification, error) {
	var cert models.Certification
	err := t.tx.QueryRow(t.ctx,
		`SELECT farm_id, certified, certifier, level, expiry, notes, updated_at
		 FROM farm_certifications WHERE farm_id = $1`, int64(id)).
		Scan(&cert.FarmID, &cert.Certified, &cert.Certifier, &cert.Level, &cert.Expiry, &cert.Notes, &cert.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err, "read certification")
	}
	return &cert, nil
}

func (t *tx) Status(id domain.FarmID) (*models.FarmStatus, error) {
	var status models.FarmStatus
	err := t.tx.QueryRow(t.ctx,
		`SELECT farm_id, status, visible, updated_at FROM farm_statuses WHERE farm_id = $1`, int64(id)).
		Scan(&status.FarmID, &status.Status, &status.Visible, &status.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err, "read status")
	}
	return &status, nil
}

func (t *tx) Collaborator(id domain.FarmID, actor domain.Actor) (*models.Collaborator, error) {
	var collab models.Collaborator
	err := t.tx.QueryRow(t.ctx,
		`SELECT farm_id, actor, role, permissions, added_at
		 FROM farm_collaborators WHERE farm_id = $1 AND actor = $2`, int64(id), string(actor)).
		Scan(&collab.FarmID, &collab.Actor, &collab.Role, &collab.Permissions, &collab.AddedAt)
	if err != nil {
		return nil, mapNoRows(err, "read collaborator")
	}
	return &collab, nil
}

func (t *tx) Share(id domain.FarmID, participant domain.Actor) (*models.RevenueShare, error) {
	var share models.RevenueShare
	err := t.tx.QueryRow(t.ctx,
		`SELECT farm_id, participant, percentage, total_received, last_payout_at, updated_at
		 FROM farm_revenue_shares WHERE farm_id = $1 AND participant = $2`, int64(id), string(participant)).
		Scan(&share.FarmID, &share.Participant, &share.Percentage, &share.TotalReceived, &share.LastPayoutAt, &share.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err, "read revenue share")
	}
	return &share, nil
}

func (t *tx) HistoryEntry(id domain.FarmID, entryID uint32) (*models.HistoryEntry, error) {
	var entry models.HistoryEntry
	err := t.tx.QueryRow(t.ctx,
		`SELECT farm_id, entry_id, action, ts, performer, details
		 FROM farm_history WHERE farm_id = $1 AND entry_id = $2`, int64(id), int32(entryID)).
		Scan(&entry.FarmID, &entry.EntryID, &entry.Action, &entry.Timestamp, &entry.Performer, &entry.Details)
	if err != nil {
		return nil, mapNoRows(err, "read history entry")
	}
	return &entry, nil
}

func (t *tx) HistoryCount(id domain.FarmID) (uint32, error) {
	var count int32
	err := t.tx.QueryRow(t.ctx,
		`SELECT COALESCE(MAX(entry_id), 0) FROM farm_history WHERE farm_id = $1`, int64(id)).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return uint32(count), nil
}

func (t *tx) SetAdmin(actor domain.Actor) error {
	_, err := t.tx.Exec(t.ctx, `UPDATE registry_meta SET admin = $1`, string(actor))
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	return nil
}

func (t *tx) SetPaused(paused bool) error {
	_, err := t.tx.Exec(t.ctx, `UPDATE registry_meta SET paused = $1`, paused)
	if err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	return nil
}

func (t *tx) NextFarmID() (domain.FarmID, error) {
	var counter int64
	err := t.tx.QueryRow(t.ctx,
		`UPDATE registry_meta SET farm_counter = farm_counter + 1 RETURNING farm_counter`).
		Scan(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate farm id: %w", err)
	}
	return domain.FarmID(counter), nil
}

func (t *tx) PutFarm(farm *models.Farm) error {
	_, err := t.tx.Exec(t.ctx,
		`INSERT INTO farms (farm_id, owner_actor, name, location, registered_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (farm_id) DO UPDATE SET
		   name = EXCLUDED.name, location = EXCLUDED.location, updated_at = EXCLUDED.updated_at`,
		int64(farm.ID), string(farm.Owner), farm.Name, farm.Location, farm.RegisteredAt, farm.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put farm: %w", err)
	}
	return nil
}

func (t *tx) PutCategory(category *models.Category) error {
	_, err := t.tx.Exec(t.ctx,
		`INSERT INTO farm_categories (farm_id, primary_category, tags)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (farm_id) DO UPDATE SET
		   primary_category = EXCLUDED.primary_category, tags = EXCLUDED.tags`,
		int64(category.FarmID), category.Primary, category.Tags)
	if err != nil {
		return fmt.Errorf("put category: %w", err)
	}
	return nil
}

func (t *tx) PutCertification(cert *models.Certification) error {
	_, err := t.tx.Exec(t.ctx,
		`INSERT INTO farm_certifications (farm_id, certified, certifier, level, expiry, notes, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (farm_id) DO UPDATE SET
		   certified = EXCLUDED.certified, certifier = EXCLUDED.certifier,
		   level = EXCLUDED.level, expiry = EXCLUDED.expiry,
		   notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at`,
		int64(cert.FarmID), cert.Certified, string(cert.Certifier), cert.Level, cert.Expiry, cert.Notes, cert.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put certification: %w", err)
	}
	return nil
}

func (t *tx) PutStatus(status *models.FarmStatus) error {
	_, err := t.tx.Exec(t.ctx,
		`INSERT INTO farm_statuses (farm_id, status, visible, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (farm_id) DO UPDATE SET
		   status = EXCLUDED.status, visible = EXCLUDED.visible, updated_at = EXCLUDED.updated_at`,
		int64(status.FarmID), status.Status, status.Visible, status.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put status: %w", err)
	}
	return nil
}

func (t *tx) InsertCollaborator(collab *models.Collaborator) error {
	_, err := t.tx.Exec(t.ctx,
		`INSERT INTO farm_collaborators (farm_id, actor, role, permissions, added_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		int64(collab.FarmID), string(collab.Actor), collab.Role, collab.Permissions, collab.AddedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert collaborator: %w", err)
	}
	return nil
}

func (t *tx) PutShare(share *models.RevenueShare) error {
	_, err := t.tx.Exec(t.ctx,
		`INSERT INTO farm_revenue_shares (farm_id, participant, percentage, total_received, last_payout_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (farm_id, participant) DO UPDATE SET
		   percentage = EXCLUDED.percentage, total_received = EXCLUDED.total_received,
		   last_payout_at = EXCLUDED.last_payout_at, updated_at = EXCLUDED.updated_at`,
		int64(share.FarmID), string(share.Participant), int16(share.Percentage),
		int64(share.TotalReceived), share.LastPayoutAt, share.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put revenue share: %w", err)
	}
	return nil
}

func (t *tx) AppendHistory(entry *models.HistoryEntry) (uint32, error) {
	count, err := t.HistoryCount(entry.FarmID)
	if err != nil {
		return 0, err
	}
	if count >= models.MaxHistoryEntries {
		return 0, sentinel.ErrLimitExceeded
	}
	entryID := count + 1
	_, err = t.tx.Exec(t.ctx,
		`INSERT INTO farm_history (farm_id, entry_id, action, ts, performer, details)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		int64(entry.FarmID), int32(entryID), entry.Action, entry.Timestamp, string(entry.Performer), entry.Details)
	if err != nil {
		return 0, fmt.Errorf("append history: %w", err)
	}
	return entryID, nil
}

func mapNoRows(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
