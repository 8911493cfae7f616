package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	platformmetrics "cultiva/internal/platform/metrics"
	"cultiva/internal/platform/middleware"
	"cultiva/internal/registry/models"
	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
	"cultiva/pkg/platform/httputil"
	"cultiva/pkg/requestcontext"
)

// Service defines the registry operations the HTTP layer exposes.
type Service interface {
	Register(ctx context.Context, caller domain.Actor, name, location, category string, tags []string) (domain.FarmID, error)
	UpdateDetails(ctx context.Context, caller domain.Actor, id domain.FarmID, name, location string) error
	Certify(ctx context.Context, caller domain.Actor, id domain.FarmID, level string, expiry int64, notes string) error
	Revoke(ctx context.Context, caller domain.Actor, id domain.FarmID, reason string) error
	AddCollaborator(ctx context.Context, caller domain.Actor, id domain.FarmID, collaborator domain.Actor, role string, permissions []string) error
	UpdateStatus(ctx context.Context, caller domain.Actor, id domain.FarmID, status string, visible bool) error
	SetShare(ctx context.Context, caller domain.Actor, id domain.FarmID, participant domain.Actor, percentage int) error

	Pause(ctx context.Context, caller domain.Actor) error
	Unpause(ctx context.Context, caller domain.Actor) error
	TransferAdmin(ctx context.Context, caller, newAdmin domain.Actor) error

	GetFarm(ctx context.Context, id domain.FarmID) (*models.Farm, error)
	GetCategory(ctx context.Context, id domain.FarmID) (*models.Category, error)
	GetCertification(ctx context.Context, id domain.FarmID) (*models.Certification, error)
	GetStatus(ctx context.Context, id domain.FarmID) (*models.FarmStatus, error)
	GetCollaborator(ctx context.Context, id domain.FarmID, collaborator domain.Actor) (*models.Collaborator, error)
	GetShare(ctx context.Context, id domain.FarmID, participant domain.Actor) (*models.RevenueShare, error)
	GetHistoryEntry(ctx context.Context, id domain.FarmID, entryID uint32) (*models.HistoryEntry, error)
	GetHistory(ctx context.Context, id domain.FarmID) ([]*models.HistoryEntry, error)
	GetHistoryCount(ctx context.Context, id domain.FarmID) (uint32, error)
	IsPaused(ctx context.Context) (bool, error)
	GetAdmin(ctx context.Context) (domain.Actor, error)
	FarmCount(ctx context.Context) (uint64, error)
}

// Handler exposes the registry over HTTP. Mutations require a bearer
// token; read views are public.
type Handler struct {
	logger    *slog.Logger
	registry  Service
	metrics   *platformmetrics.Metrics
	validator middleware.ActorValidator
}

func New(registry Service, logger *slog.Logger, metrics *platformmetrics.Metrics, validator middleware.ActorValidator) *Handler {
	return &Handler{
		logger:    logger,
		registry:  registry,
		metrics:   metrics,
		validator: validator,
	}
}

// Register mounts the registry routes on the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.RequestTime)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.Latency(h.metrics))

		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)
			r.Use(middleware.RequireActor(h.validator, h.logger))

			r.Post("/registry/farms", h.handleRegisterFarm)
			r.Put("/registry/farms/{farmID}", h.handleUpdateDetails)
			r.Put("/registry/farms/{farmID}/certification", h.handleCertify)
			r.Post("/registry/farms/{farmID}/certification/revoke", h.handleRevoke)
			r.Post("/registry/farms/{farmID}/collaborators", h.handleAddCollaborator)
			r.Put("/registry/farms/{farmID}/status", h.handleUpdateStatus)
			r.Put("/registry/farms/{farmID}/shares/{participant}", h.handleSetShare)

			r.Post("/admin/pause", h.handlePause)
			r.Post("/admin/unpause", h.handleUnpause)
			r.Post("/admin/transfer", h.handleTransferAdmin)
		})

		r.Get("/registry/farms/{farmID}", h.handleGetFarm)
		r.Get("/registry/farms/{farmID}/category", h.handleGetCategory)
		r.Get("/registry/farms/{farmID}/certification", h.handleGetCertification)
		r.Get("/registry/farms/{farmID}/status", h.handleGetStatus)
		r.Get("/registry/farms/{farmID}/collaborators/{actor}", h.handleGetCollaborator)
		r.Get("/registry/farms/{farmID}/shares/{participant}", h.handleGetShare)
		r.Get("/registry/farms/{farmID}/history", h.handleGetHistory)
		r.Get("/registry/farms/{farmID}/history/{entryID}", h.handleGetHistoryEntry)
		r.Get("/registry/farms/count", h.handleGetFarmCount)
		r.Get("/registry/paused", h.handleGetPaused)
		r.Get("/admin", h.handleGetAdmin)
	})
}

func (h *Handler) handleRegisterFarm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req registerFarmRequest
	if !h.decode(w, r, &req) {
		return
	}

	farmID, err := h.registry.Register(ctx, caller, req.Name, req.Location, req.Category, req.Tags)
	if err != nil {
		h.fail(ctx, w, "register farm", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"farm_id": farmID})
}

func (h *Handler) handleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}

	var req updateDetailsRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.registry.UpdateDetails(ctx, caller, farmID, req.Name, req.Location); err != nil {
		h.fail(ctx, w, "update details", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCertify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}

	var req certifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.registry.Certify(ctx, caller, farmID, req.Level, req.Expiry, req.Notes); err != nil {
		h.fail(ctx, w, "certify", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}

	var req revokeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.registry.Revoke(ctx, caller, farmID, req.Reason); err != nil {
		h.fail(ctx, w, "revoke certification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddCollaborator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}

	var req addCollaboratorRequest
	if !h.decode(w, r, &req) {
		return
	}
	collaborator, err := req.actor()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.registry.AddCollaborator(ctx, caller, farmID, collaborator, req.Role, req.Permissions); err != nil {
		h.fail(ctx, w, "add collaborator", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.registry.UpdateStatus(ctx, caller, farmID, req.Status, req.Visible); err != nil {
		h.fail(ctx, w, "update status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}
	participant, ok := h.participant(w, r)
	if !ok {
		return
	}

	var req setShareRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.registry.SetShare(ctx, caller, farmID, participant, req.Percentage); err != nil {
		h.fail(ctx, w, "set revenue share", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	if err := h.registry.Pause(ctx, caller); err != nil {
		h.fail(ctx, w, "pause", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	if err := h.registry.Unpause(ctx, caller); err != nil {
		h.fail(ctx, w, "unpause", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req transferAdminRequest
	if !h.decode(w, r, &req) {
		return
	}
	newAdmin, err := req.actor()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.registry.TransferAdmin(ctx, caller, newAdmin); err != nil {
		h.fail(ctx, w, "transfer admin", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetFarm(w http.ResponseWriter, r *http.Request) {
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}
	farm, err := h.registry.GetFarm(r.Context(), farmID)
	if err != nil {
		h.fail(r.Context(), w, "get farm", err)
		return
	}
	h.writeOptional(w, farm == nil, farm)
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}
	category, err := h.registry.GetCategory(r.Context(), farmID)
	if err != nil {
		h.fail(r.Context(), w, "get category", err)
		return
	}
	h.writeOptional(w, category == nil, category)
}

func (h *Handler) handleGetCertification(w http.ResponseWriter, r *http.Request) {
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}
	cert, err := h.registry.GetCertification(r.Context(), farmID)
	if err != nil {
		h.fail(r.Context(), w, "get certification", err)
		return
	}
	h.writeOptional(w, cert == nil, cert)
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}
	status, err := h.registry.GetStatus(r.Context(), farmID)
	if err != nil {
		h.fail(r.Context(), w, "get status", err)
		return
	}
	h.writeOptional(w, status == nil, status)
}

func (h *Handler) handleGetCollaborator(w http.ResponseWriter, r *http.Request) {
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}
	actor, ok := domain.ParseActor(chi.URLParam(r, "actor"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidDetails, "invalid actor handle"))
		return
	}
	collab, err := h.registry.GetCollaborator(r.Context(), farmID, actor)
	if err != nil {
		h.fail(r.Context(), w, "get collaborator", err)
		return
	}
	h.writeOptional(w, collab == nil, collab)
}

func (h *Handler) handleGetShare(w http.ResponseWriter, r *http.Request) {
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}
	participant, ok := h.participant(w, r)
	if !ok {
		return
	}
	share, err := h.registry.GetShare(r.Context(), farmID, participant)
	if err != nil {
		h.fail(r.Context(), w, "get revenue share", err)
		return
	}
	h.writeOptional(w, share == nil, share)
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}
	entries, err := h.registry.GetHistory(r.Context(), farmID)
	if err != nil {
		h.fail(r.Context(), w, "get history", err)
		return
	}
	count, err := h.registry.GetHistoryCount(r.Context(), farmID)
	if err != nil {
		h.fail(r.Context(), w, "get history", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"count":   count,
		"entries": entries,
	})
}

func (h *Handler) handleGetHistoryEntry(w http.ResponseWriter, r *http.Request) {
	farmID, ok := h.farmID(w, r)
	if !ok {
		return
	}
	entryID, err := parseEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entry, err := h.registry.GetHistoryEntry(r.Context(), farmID, entryID)
	if err != nil {
		h.fail(r.Context(), w, "get history entry", err)
		return
	}
	h.writeOptional(w, entry == nil, entry)
}

func (h *Handler) handleGetFarmCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.registry.FarmCount(r.Context())
	if err != nil {
		h.fail(r.Context(), w, "get farm count", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"count": count})
}

func (h *Handler) handleGetPaused(w http.ResponseWriter, r *http.Request) {
	paused, err := h.registry.IsPaused(r.Context())
	if err != nil {
		h.fail(r.Context(), w, "get paused", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"paused": paused})
}

func (h *Handler) handleGetAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.registry.GetAdmin(r.Context())
	if err != nil {
		h.fail(r.Context(), w, "get admin", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"admin": admin})
}

// caller reads the authenticated actor set by RequireActor. A missing
// actor means the middleware chain is misconfigured.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor := requestcontext.Actor(r.Context())
	if actor.IsZero() {
		h.logger.ErrorContext(r.Context(), "actor missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return actor, true
}

func (h *Handler) farmID(w http.ResponseWriter, r *http.Request) (domain.FarmID, bool) {
	id, err := domain.ParseFarmID(chi.URLParam(r, "farmID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidDetails, "invalid farm id"))
		return 0, false
	}
	return id, true
}

func (h *Handler) participant(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	participant, ok := domain.ParseActor(chi.URLParam(r, "participant"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidDetails, "invalid participant handle"))
		return "", false
	}
	return participant, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{ validate() error }) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidDetails, "invalid request body"))
		return false
	}
	if err := v.validate(); err != nil {
		httputil.WriteError(w, err)
		return false
	}
	return true
}

func (h *Handler) writeOptional(w http.ResponseWriter, absent bool, v any) {
	if absent {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no record for farm"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

// fail logs and translates a domain failure. Expected domain outcomes log
// at warn; anything uncoded is an internal error.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "operation failed",
			"operation", op,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		h.logger.WarnContext(ctx, "operation rejected",
			"operation", op,
			"code", code,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
