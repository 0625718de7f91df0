package reportshandler

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrkey/internal/domain/auth"
	"hrkey/internal/domain/reports"
	"hrkey/internal/transport/http/api"
	"hrkey/internal/transport/http/middleware"
)

const pdfContentType = "application/pdf"

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermReportsRead, h.Perms)
	merit := middleware.RequirePermission(auth.PermMeritRead, h.Perms)

	r.With(read).Get("/ninebox", h.handleNineBox)
	r.Route("/reports", func(r chi.Router) {
		r.With(read).Get("/pdi", h.handlePDI)
		r.With(read).Get("/pdi.pdf", h.handlePDIPDF)
		r.With(merit).Get("/merit-simulation", h.handleMeritSimulation)
		r.With(merit).Get("/merit", h.handleMerit)
		r.With(merit).Get("/merit.pdf", h.handleMeritPDF)
	})
}

func fail(w http.ResponseWriter, r *http.Request, code string, err error) {
	slog.Warn("report failed", "report", code, "err", err)
	api.Fail(w, http.StatusInternalServerError, code, "failed to build report", middleware.GetRequestID(r.Context()))
}

func scopeOf(r *http.Request) string {
	user, _ := middleware.GetUser(r.Context())
	return user.Scope()
}

func (h *Handler) handleNineBox(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.Service.NineBox(r.Context(), scopeOf(r), q.Get("round_code"), q.Get("manager_name"))
	if err != nil {
		fail(w, r, "ninebox_failed", err)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) pdi(r *http.Request) (reports.PDIReport, error) {
	q := r.URL.Query()
	return h.Service.PDI(r.Context(), scopeOf(r), q.Get("round_code"), q.Get("empresa"))
}

func (h *Handler) handlePDI(w http.ResponseWriter, r *http.Request) {
	report, err := h.pdi(r)
	if err != nil {
		fail(w, r, "pdi_failed", err)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePDIPDF(w http.ResponseWriter, r *http.Request) {
	report, err := h.pdi(r)
	if err != nil {
		fail(w, r, "pdi_failed", err)
		return
	}
	var buf bytes.Buffer
	if err := reports.WritePDIPDF(&buf, report); err != nil {
		fail(w, r, "pdi_pdf_failed", err)
		return
	}
	api.WriteFile(w, pdfContentType, "relatorio-pdi.pdf", buf.Bytes())
}

func (h *Handler) handleMeritSimulation(w http.ResponseWriter, r *http.Request) {
	sim, err := h.Service.MeritSimulation(r.Context())
	if err != nil {
		fail(w, r, "merit_failed", err)
		return
	}
	api.Success(w, sim, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMerit(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.MeritReport(r.Context())
	if err != nil {
		fail(w, r, "merit_failed", err)
		return
	}
	if groups == nil {
		groups = []reports.MeritGroup{}
	}
	api.Success(w, groups, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMeritPDF(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.MeritReport(r.Context())
	if err != nil {
		fail(w, r, "merit_failed", err)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteMeritPDF(&buf, groups, time.Now().UTC()); err != nil {
		fail(w, r, "merit_pdf_failed", err)
		return
	}
	api.WriteFile(w, pdfContentType, "relatorio-merito.pdf", buf.Bytes())
}
