package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/crashlens/crashlens/api/schemas"
	"github.com/crashlens/crashlens/internal/analyzer"
)

// Handlers manages HTTP request handling for the analysis API.
type Handlers struct {
	log      *zap.Logger
	analyzer *analyzer.Analyzer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(logger *zap.Logger, a *analyzer.Analyzer) *Handlers {
	return &Handlers{
		log:      logger.Named("handlers"),
		analyzer: a,
	}
}

// RegisterRoutes sets up the routing for the API server.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	// Liveness endpoint (unversioned)
	r.Get("/healthz", h.HandleHealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", h.HandleAnalyze)
	})
}

// HandleHealthCheck confirms the server is responsive.
func (h *Handlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleAnalyze accepts an AnalyzeRequest and returns the validated report or
// a classified error.
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req schemas.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		h.respondAnalysisError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, report)
}

// respondAnalysisError maps the analyzer's error taxonomy onto HTTP statuses.
// Diagnostic detail is surfaced in the message; this service is an internal
// tool, so parse errors and provider messages are acceptable in responses.
func (h *Handlers) respondAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analyzer.ErrEmptyLog):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analyzer.ErrBadReply):
		// Malformed reply or schema violation; the upstream model misbehaved.
		h.log.Error("Upstream reply failed validation", zap.Error(err))
		h.respondWithError(w, http.StatusBadGateway, err.Error())
	default:
		// Provider or transport failure.
		h.log.Error("Analysis failed", zap.Error(err))
		h.respondWithError(w, http.StatusBadGateway, fmt.Sprintf("Analysis failed: %v", err))
	}
}

// errorResponse is the standardized JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// respondWithError sends a standardized JSON error response.
func (h *Handlers) respondWithError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: message}); err != nil {
		h.log.Error("Failed to encode error response", zap.Error(err))
	}
}

// respondWithJSON sends a JSON response with the given status code.
func (h *Handlers) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}
