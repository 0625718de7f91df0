package criteriahandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrkey/internal/domain/audit"
	"hrkey/internal/domain/auth"
	"hrkey/internal/domain/criteria"
	"hrkey/internal/platform/jobs"
	"hrkey/internal/transport/http/api"
	"hrkey/internal/transport/http/middleware"
	"hrkey/internal/transport/http/shared"
)

type Handler struct {
	Service *criteria.Service
	Audit   *audit.Service
	Perms   middleware.PermissionStore
	Jobs    *jobs.Service
	// Recompute, when set, is queued after every weight change.
	Recompute jobs.RunFunc
}

func NewHandler(service *criteria.Service, auditor *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Audit: auditor, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermCriteriaRead, h.Perms)
	write := middleware.RequirePermission(auth.PermCriteriaWrite, h.Perms)

	r.Route("/evaluation-criteria", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(write).Put("/{id}", h.handleUpdate)
	})
	r.With(read).Get("/dimension-weights", h.handleWeights)
	r.With(write).Put("/dimension-weights", h.handleUpdateWeights)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, criteria.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "criterion not found", reqID)
	case errors.Is(err, criteria.ErrInvalidDimension):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "dimension", Reason: err.Error()}})
	case errors.Is(err, criteria.ErrInvalidType):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "type", Reason: err.Error()}})
	case errors.Is(err, criteria.ErrInvalidWeight):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "dimension", Reason: err.Error()}})
	default:
		slog.Warn("criteria request failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusInternalServerError, "criteria_error", "criteria request failed", reqID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []criteria.Criterion{}
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload criteria.CriterionInput
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	c, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Audit.Record(r.Context(), middleware.AuditEntry(r, "criterion.create", "criterion", strconv.FormatInt(c.ID, 10), nil, c)); err != nil {
		slog.Warn("audit criterion.create failed", "err", err)
	}
	api.Created(w, c, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(r, "id")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid criterion id", reqID)
		return
	}
	var payload criteria.CriterionInput
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	c, err := h.Service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Audit.Record(r.Context(), middleware.AuditEntry(r, "criterion.update", "criterion", strconv.FormatInt(id, 10), nil, c)); err != nil {
		slog.Warn("audit criterion.update failed", "err", err)
	}
	api.Success(w, c, reqID)
}

func (h *Handler) handleWeights(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Weights(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []criteria.DimensionWeight{}
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateWeights(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload []criteria.DimensionWeight
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}
	if len(payload) == 0 {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "weights", Reason: "at least one weight is required"}})
		return
	}
	before, err := h.Service.Weights(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	after, err := h.Service.UpdateWeights(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Audit.Record(r.Context(), middleware.AuditEntry(r, "dimension_weights.update", "dimension_weights", "", before, after)); err != nil {
		slog.Warn("audit dimension_weights.update failed", "err", err)
	}
	if h.Recompute != nil && h.Jobs != nil {
		if err := h.Jobs.Enqueue(jobs.JobEvaluationRecompute, h.Recompute); err != nil {
			slog.Warn("recompute after weight change not queued", "err", err)
		}
	}
	api.Success(w, after, reqID)
}
