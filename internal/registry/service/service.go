// Package service implements the registry engine: farm records,
// certification state, collaborators, revenue shares and the bounded audit
// trail, all behind the pause switch and role checks. Every mutating
// operation validates in a fixed order — pause, existence, authorization,
// input, history capacity — inside one store transaction, so a failure at
// any step leaves no partial state.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"cultiva/internal/audit"
	"cultiva/internal/registry/metrics"
	"cultiva/internal/registry/models"
	"cultiva/internal/registry/store"
	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
	"cultiva/pkg/platform/sentinel"
	"cultiva/pkg/requestcontext"
)

// MirrorPublisher forwards committed mutations to the external audit
// aggregator. Emission happens after commit; the trail in the store is the
// source of truth and a failed emit is logged, not surfaced.
type MirrorPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// SnapshotCache caches the read views consumed by the verification portal
// (certification, status). Cache failures are soft.
type SnapshotCache interface {
	SaveCertification(ctx context.Context, cert *models.Certification) error
	FindCertification(ctx context.Context, id domain.FarmID) (*models.Certification, error)
	SaveStatus(ctx context.Context, status *models.FarmStatus) error
	FindStatus(ctx context.Context, id domain.FarmID) (*models.FarmStatus, error)
	Invalidate(ctx context.Context, id domain.FarmID) error
}

// Service orchestrates the certified-farm registry.
type Service struct {
	store   store.Store
	logger  *slog.Logger
	mirror  MirrorPublisher
	cache   SnapshotCache
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMirror(mirror MirrorPublisher) Option {
	return func(s *Service) {
		s.mirror = mirror
	}
}

func WithCache(cache SnapshotCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service around a transactional store.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		tracer: otel.Tracer("cultiva/registry"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// requireActive is the pause gate. It runs before every other check in
// every mutating operation; pause takes precedence over authorization and
// input validation.
func requireActive(tx store.ReadTx) error {
	paused, err := tx.Paused()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read pause flag")
	}
	if paused {
		return dErrors.New(dErrors.CodePaused, "registry is paused")
	}
	return nil
}

// isAdmin reports whether caller is the current process-wide admin.
func isAdmin(tx store.ReadTx, caller domain.Actor) (bool, error) {
	admin, err := tx.Admin()
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read admin")
	}
	return caller == admin, nil
}

// loadFarm resolves the existence check shared by most mutators.
func loadFarm(tx store.ReadTx, id domain.FarmID) (*models.Farm, error) {
	farm, err := tx.Farm(id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "farm not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load farm")
	}
	return farm, nil
}

// appendHistory stages the trail entry that closes every mutation. The
// 51st entry for a farm is a hard ceiling: the sentinel becomes an
// InvalidDetails failure and aborts the enclosing transaction.
func appendHistory(tx store.Tx, entry *models.HistoryEntry) (uint32, error) {
	entry.Details = models.Truncate(entry.Details)
	entryID, err := tx.AppendHistory(entry)
	if err != nil {
		if errors.Is(err, sentinel.ErrLimitExceeded) {
			return 0, dErrors.New(dErrors.CodeInvalidDetails, "history log is full")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append history")
	}
	return entryID, nil
}

// finishMutation handles the post-commit side channel shared by all
// mutators: structured audit log line, mirror emission, metrics.
func (s *Service) finishMutation(ctx context.Context, op string, event audit.Event) {
	s.logger.InfoContext(ctx, event.Action,
		"log_type", "audit",
		"operation", op,
		"farm_id", event.FarmID,
		"entry_id", event.EntryID,
		"performer", event.Performer,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.mirror != nil {
		if err := s.mirror.Emit(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "audit mirror emit failed", "error", err, "operation", op)
		}
	}
	if s.metrics != nil {
		s.metrics.MutationCommitted(op)
		if event.EntryID > 0 {
			s.metrics.HistoryEntries.Inc()
		}
	}
}

func (s *Service) countFailure(op string, err error) {
	if s.metrics != nil {
		s.metrics.MutationRejected(op, string(dErrors.CodeOf(err)))
	}
}

func (s *Service) invalidate(ctx context.Context, id domain.FarmID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", "error", err, "farm_id", id)
	}
}

func (s *Service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name)
}
