package evaluationshandler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrkey/internal/domain/audit"
	"hrkey/internal/domain/auth"
	"hrkey/internal/domain/evaluations"
	"hrkey/internal/platform/jobs"
	"hrkey/internal/transport/http/api"
	"hrkey/internal/transport/http/middleware"
	"hrkey/internal/transport/http/shared"
)

type Handler struct {
	Service *evaluations.Service
	Audit   *audit.Service
	Jobs    *jobs.Service
	Idem    middleware.IdempotencyBackend
	Perms   middleware.PermissionStore
}

func NewHandler(service *evaluations.Service, auditor *audit.Service, jobsSvc *jobs.Service, idem middleware.IdempotencyBackend, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Audit: auditor, Jobs: jobsSvc, Idem: idem, Perms: perms}
}

// RegisterRoutes uses flat paths so the period and window routes of the
// rounds handler can share the /evaluations prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)
	write := middleware.RequirePermission(auth.PermEvaluationsWrite, h.Perms)
	manage := middleware.RequirePermission(auth.PermRoundsManage, h.Perms)

	r.With(read).Get("/evaluations", h.handleList)
	r.With(write, middleware.Idempotency(h.Idem)).Post("/evaluations", h.handleSubmit)
	r.With(read).Get("/evaluations/latest", h.handleLatest)
	r.With(manage).Post("/evaluations/recompute", h.handleRecompute)
	r.With(read).Get("/evaluations/{id}", h.handleGet)
	r.With(read).Get("/evaluation-responses", h.handleResponses)
	r.With(read).Get("/individual-goals", h.handleGoals)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, evaluations.ErrInvalidSubmission):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", err.Error(), nil, reqID)
	case errors.Is(err, evaluations.ErrWindowClosed):
		api.Fail(w, http.StatusForbidden, "window_closed", "evaluation window is closed", reqID)
	case errors.Is(err, evaluations.ErrRoundClosed):
		api.Fail(w, http.StatusConflict, "round_closed", "round is closed and read-only", reqID)
	case errors.Is(err, evaluations.ErrForbiddenScope):
		api.Fail(w, http.StatusForbidden, "forbidden_scope", "employee outside your team", reqID)
	case errors.Is(err, evaluations.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
	case errors.Is(err, evaluations.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", reqID)
	default:
		slog.Warn("evaluation request failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusInternalServerError, "evaluation_error", "evaluation request failed", reqID)
	}
}

func scopeOf(r *http.Request) string {
	user, _ := middleware.GetUser(r.Context())
	return user.Scope()
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload evaluations.Submission
	if err := shared.DecodeJSON(r, &payload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", reqID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Struct(payload)
	for _, issue := range payload.Check() {
		v.Add(issue.Field, issue.Reason)
	}
	if v.Reject(w, reqID) {
		return
	}

	result, err := h.Service.Submit(r.Context(), scopeOf(r), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	action := "evaluation.update"
	if result.Created {
		action = "evaluation.create"
	}
	entityID := strconv.FormatInt(result.ID, 10)
	if err := h.Audit.Record(r.Context(), middleware.AuditEntry(r, action, "evaluation", entityID, nil, result)); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
	if result.Created {
		api.Created(w, result, reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := shared.QueryID(r, "employee_id")
	if !ok {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "employee_id", Reason: "must be a positive integer"}})
		return
	}
	filter := evaluations.ListFilter{RoundCode: r.URL.Query().Get("round_code"), EmployeeID: employeeID}
	items, err := h.Service.List(r.Context(), scopeOf(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []evaluations.Evaluation{}
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := shared.QueryID(r, "employee_id")
	if !ok || employeeID == 0 {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "employee_id", Reason: "required"}})
		return
	}
	latest, err := h.Service.Latest(r.Context(), scopeOf(r), employeeID, r.URL.Query().Get("round_code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, latest, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "id")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid evaluation id", middleware.GetRequestID(r.Context()))
		return
	}
	ev, err := h.Service.Get(r.Context(), scopeOf(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, ev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleResponses(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.QueryID(r, "evaluation_id")
	if !ok || id == 0 {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "evaluation_id", Reason: "required"}})
		return
	}
	items, err := h.Service.Responses(r.Context(), scopeOf(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []evaluations.Response{}
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handleGoals(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.QueryID(r, "evaluation_id")
	if !ok || id == 0 {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "evaluation_id", Reason: "required"}})
		return
	}
	items, err := h.Service.Goals(r.Context(), scopeOf(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []evaluations.Goal{}
	}
	api.Success(w, items, reqID)
}

type recomputeRequest struct {
	RoundCode string `json:"round_code" validate:"max=64"`
	Wait      bool   `json:"wait"`
}

// handleRecompute queues a rescore of the round. With wait set the job runs
// inline and the summary is returned.
func (h *Handler) handleRecompute(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload recomputeRequest
	if err := shared.DecodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, reqID) {
		return
	}
	run := func(ctx context.Context) (any, error) {
		return h.Service.Recompute(ctx, payload.RoundCode)
	}

	if err := h.Audit.Record(r.Context(), middleware.AuditEntry(r, "evaluation.recompute", "round", payload.RoundCode, nil, payload)); err != nil {
		slog.Warn("audit evaluation.recompute failed", "err", err)
	}

	if payload.Wait {
		summary, err := h.Jobs.RunNow(r.Context(), jobs.JobEvaluationRecompute, run)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.Success(w, summary, reqID)
		return
	}
	if err := h.Jobs.Enqueue(jobs.JobEvaluationRecompute, run); err != nil {
		api.Fail(w, http.StatusServiceUnavailable, "queue_full", "job queue is full, retry later", reqID)
		return
	}
	api.Accepted(w, map[string]string{"status": "queued", "job_type": jobs.JobEvaluationRecompute, "round_code": payload.RoundCode}, reqID)
}
