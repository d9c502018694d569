package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appcases "github.com/bryanwahyu/incident-orchestrator/internal/application/cases"
	domain "github.com/bryanwahyu/incident-orchestrator/internal/domain/cases"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/capa"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/evidence"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/oracle"
	"github.com/bryanwahyu/incident-orchestrator/internal/domain/report"
	"github.com/bryanwahyu/incident-orchestrator/internal/middleware"
)

type Router struct {
	svc *appcases.Service
}

func NewRouter(svc *appcases.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/cases", r.wrap(r.handleCreateCase))
		rt.Get("/cases", r.wrap(r.handleListCases))
		rt.Get("/cases/{id}", r.wrap(r.handleGetCase))
		rt.Get("/cases/{id}/status", r.wrap(r.handleStatus))
		rt.Get("/cases/{id}/export", r.wrap(r.handleExport))
		rt.Get("/cases/{id}/similar", r.wrap(r.handleSimilar))
		rt.Post("/cases/{id}/evidence", r.wrap(r.handleAddEvidence))
		rt.Post("/cases/{id}/investigate", r.wrap(r.handleInvestigate))
		rt.Post("/cases/{id}/report", r.wrap(r.handleReport))
		rt.Post("/cases/{id}/diagram", r.wrap(r.handleDiagram))
		rt.Post("/cases/{id}/capa", r.wrap(r.handleCreateCAPA))
		rt.Patch("/cases/{id}/capa/{actionID}", r.wrap(r.handleUpdateCAPA))
		rt.Post("/cases/{id}/close", r.wrap(r.handleClose))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, domain.ErrInvalidMetadata),
				errors.Is(err, evidence.ErrUnsupportedType),
				errors.Is(err, evidence.ErrEmptyContent):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domain.ErrCaseState):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, oracle.ErrQuotaExceeded):
				http.Error(w, "analysis quota exceeded", http.StatusTooManyRequests)
			case errors.Is(err, report.ErrGeneration):
				http.Error(w, err.Error(), http.StatusInternalServerError)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/{tenant}/cases
func (r *Router) handleCreateCase(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	var md domain.Metadata
	if err := json.NewDecoder(req.Body).Decode(&md); err != nil {
		return err
	}

	c, err := r.svc.CreateInvestigation(req.Context(), tenant, md)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, c)
}

// GET /v1/{tenant}/cases?state=&limit=
func (r *Router) handleListCases(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	state := domain.State(req.URL.Query().Get("state"))
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.List(req.Context(), tenant, state, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Case{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/{tenant}/cases/{id}
func (r *Router) handleGetCase(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.CaseID(chi.URLParam(req, "id"))

	c, err := r.svc.Get(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, c)
}

// GET /v1/{tenant}/cases/{id}/status
func (r *Router) handleStatus(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.CaseID(chi.URLParam(req, "id"))

	status, err := r.svc.GetInvestigationStatus(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, status)
}

// GET /v1/{tenant}/cases/{id}/export
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.CaseID(chi.URLParam(req, "id"))

	data, err := r.svc.ExportCase(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+string(id)+`.json"`)
	_, err = w.Write(data)
	return err
}

// GET /v1/{tenant}/cases/{id}/similar
func (r *Router) handleSimilar(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.CaseID(chi.URLParam(req, "id"))

	matches, err := r.svc.SimilarCases(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, matches)
}

// POST /v1/{tenant}/cases/{id}/evidence
// Body: {"type": "witness_statement", "content": "...", "metadata": {...}}
func (r *Router) handleAddEvidence(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.CaseID(chi.URLParam(req, "id"))

	var body struct {
		Type        string            `json:"type"`
		Content     string            `json:"content"`
		ContentType string            `json:"content_type"`
		Metadata    map[string]string `json:"metadata"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}

	item, err := r.svc.AddEvidence(req.Context(), tenant, id, body.Type,
		strings.NewReader(body.Content), int64(len(body.Content)), body.ContentType, body.Metadata)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, item)
}

// POST /v1/{tenant}/cases/{id}/investigate
func (r *Router) handleInvestigate(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.CaseID(chi.URLParam(req, "id"))

	middleware.IncrementInvestigations()
	middleware.IncrementInvestigationsRunning()
	defer middleware.DecrementInvestigationsRunning()

	result, err := r.svc.Investigate(req.Context(), tenant, id)
	if err != nil {
		middleware.IncrementInvestigationsFailed()
		return err
	}
	return writeJSON(w, http.StatusOK, result)
}

// POST /v1/{tenant}/cases/{id}/report
// Body: {"template": "OSHA_PSM", "language": "en", "format": "md"}
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.CaseID(chi.URLParam(req, "id"))

	var body struct {
		Template string `json:"template"`
		Language string `json:"language"`
		Format   string `json:"format"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := middleware.ValidateReportTemplate(body.Template); err != nil {
		return err
	}

	key, err := r.svc.GenerateReport(req.Context(), tenant, id, body.Template, body.Language, body.Format)
	if err != nil {
		return err
	}
	middleware.IncrementReportsGenerated()
	return writeJSON(w, http.StatusOK, map[string]string{"report_key": key})
}

// POST /v1/{tenant}/cases/{id}/diagram
// Body: {"type": "5_why", "format": "dot"}
func (r *Router) handleDiagram(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.CaseID(chi.URLParam(req, "id"))

	var body struct {
		Type   string `json:"type"`
		Format string `json:"format"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}

	key, err := r.svc.GenerateDiagram(req.Context(), tenant, id, body.Type, body.Format)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"diagram_key": key})
}

// POST /v1/{tenant}/cases/{id}/capa
func (r *Router) handleCreateCAPA(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.CaseID(chi.URLParam(req, "id"))

	tracker, err := r.svc.CreateCAPATracker(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, tracker)
}

// PATCH /v1/{tenant}/cases/{id}/capa/{actionID}
// Body: {"status": "in_progress"}
func (r *Router) handleUpdateCAPA(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.CaseID(chi.URLParam(req, "id"))
	actionID := chi.URLParam(req, "actionID")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}

	a, err := r.svc.UpdateCAPAStatus(req.Context(), tenant, id, actionID, capa.Status(body.Status))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// POST /v1/{tenant}/cases/{id}/close
func (r *Router) handleClose(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.CaseID(chi.URLParam(req, "id"))

	c, err := r.svc.CloseCase(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, c)
}
