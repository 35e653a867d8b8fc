// Package chi exposes the orchestrator over HTTP.
package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askgate/internal/domain/outcome"
	healthuc "github.com/kailas-cloud/askgate/internal/usecase/health"
	orchestrateuc "github.com/kailas-cloud/askgate/internal/usecase/orchestrate"
)

// Server handles the ask API.
type Server struct {
	orchestrator *orchestrateuc.Service
	health       *healthuc.Service
	logger       *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	orchestrator *orchestrateuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{orchestrator: orchestrator, health: health, logger: logger}
}

// Routes mounts the API on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/ask", s.handleAsk)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
}

type askRequest struct {
	Query string `json:"query"`
	// Context is an optional geo/context hint passed to the synthesizer.
	Context string `json:"context,omitempty"`
}

// citationDTO is the stable citation shape consumed by the UI.
type citationDTO struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	ContentPreview string  `json:"contentPreview"`
	Score          float64 `json:"score"`
}

type backendReportDTO struct {
	Status string `json:"status"`
	Raw    int    `json:"raw"`
	Kept   int    `json:"kept"`
}

type diagnosticsDTO struct {
	Backends map[string]backendReportDTO `json:"backends"`
	Evidence int                         `json:"evidence"`
}

type askResponse struct {
	Answer      string         `json:"answer"`
	Sentinel    string         `json:"sentinel"`
	Citations   []citationDTO  `json:"citations"`
	Diagnostics diagnosticsDTO `json:"diagnostics"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleAsk handles POST /v1/ask. Orchestration never fails; the only error
// responses here are malformed requests.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "query is required")
		return
	}

	out := s.orchestrator.Orchestrate(r.Context(), req.Query, req.Context)

	writeJSON(w, http.StatusOK, toAskResponse(out))
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}

func toAskResponse(out outcome.Outcome) askResponse {
	citations := make([]citationDTO, 0, len(out.Citations))
	for _, c := range out.Citations {
		citations = append(citations, citationDTO{
			Title:          c.Title,
			URL:            c.URL,
			ContentPreview: c.ContentPreview,
			Score:          c.Score,
		})
	}

	backends := make(map[string]backendReportDTO, len(out.Diagnostics.Backends))
	for id, report := range out.Diagnostics.Backends {
		backends[id.String()] = backendReportDTO{
			Status: string(report.Status),
			Raw:    report.Raw,
			Kept:   report.Kept,
		}
	}

	return askResponse{
		Answer:    out.Text,
		Sentinel:  string(out.Sentinel),
		Citations: citations,
		Diagnostics: diagnosticsDTO{
			Backends: backends,
			Evidence: out.Diagnostics.Evidence,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
