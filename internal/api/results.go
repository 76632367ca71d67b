package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Effnets/internal/ahp"
	"github.com/MikeSquared-Agency/Effnets/internal/analysis"
)

// Analyzer is the part of the analysis runner the API reads from.
type Analyzer interface {
	Latest() *analysis.Report
	ComputeWeights(b ahp.Bundle) (ahp.WeightVector, error)
	Run(ctx context.Context) (*analysis.Report, error)
}

type ResultsHandler struct {
	analyzer Analyzer
	logger   *slog.Logger
}

func NewResultsHandler(a Analyzer, logger *slog.Logger) *ResultsHandler {
	return &ResultsHandler{analyzer: a, logger: logger}
}

// report writes 503 and returns nil until the first run has finished.
func (h *ResultsHandler) report(w http.ResponseWriter) *analysis.Report {
	rep := h.analyzer.Latest()
	if rep == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no analysis results yet"})
	}
	return rep
}

// Stakeholders lists the weightings of the latest run.
// GET /api/v1/stakeholders
func (h *ResultsHandler) Stakeholders(w http.ResponseWriter, r *http.Request) {
	rep := h.report(w)
	if rep == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":       rep.RunID,
		"stakeholders": rep.Stakeholders(),
	})
}

// Weights returns every weight vector of the latest run.
// GET /api/v1/weights
func (h *ResultsHandler) Weights(w http.ResponseWriter, r *http.Request) {
	rep := h.report(w)
	if rep == nil {
		return
	}
	writeJSON(w, http.StatusOK, rep.Weights)
}

// ComputeWeights weighs a posted comparison bundle.
// POST /api/v1/weights
func (h *ResultsHandler) ComputeWeights(w http.ResponseWriter, r *http.Request) {
	var b ahp.Bundle
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(b.Matrices) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "matrices are required"})
		return
	}

	wv, err := h.analyzer.ComputeWeights(b)
	if err != nil {
		var merr *ahp.MatrixError
		if errors.As(err, &merr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error(), "matrix": merr.Matrix})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, wv)
}

// Indicators returns the indicator matrix of a scenario.
// GET /api/v1/scenarios/{scenario}/indicators
func (h *ResultsHandler) Indicators(w http.ResponseWriter, r *http.Request) {
	scenario, ok := scenarioParam(w, r)
	if !ok {
		return
	}
	rep := h.report(w)
	if rep == nil {
		return
	}
	m, found := rep.Matrix(scenario)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "scenario not rated"})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Results returns a stakeholder's score table. With ?scenario=<name> the
// ranking of that scenario is included.
// GET /api/v1/results/{stakeholder}
func (h *ResultsHandler) Results(w http.ResponseWriter, r *http.Request) {
	rep := h.report(w)
	if rep == nil {
		return
	}
	table, found := rep.Result(chi.URLParam(r, "stakeholder"))
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "stakeholder not found"})
		return
	}

	scenario := r.URL.Query().Get("scenario")
	if scenario == "" {
		writeJSON(w, http.StatusOK, table)
		return
	}
	ranking, err := table.Ranking(scenario)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"table":   table,
		"ranking": ranking,
	})
}

// Run recomputes the analysis from the configured inputs.
// POST /api/v1/runs
func (h *ResultsHandler) Run(w http.ResponseWriter, r *http.Request) {
	rep, err := h.analyzer.Run(r.Context())
	if err != nil {
		h.logger.Error("analysis run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"run_id":   rep.RunID,
		"status":   rep.Status(),
		"failures": rep.Failures,
		"outputs":  rep.Outputs,
	})
}

func scenarioParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	s, err := strconv.Atoi(chi.URLParam(r, "scenario"))
	if err != nil || s < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scenario"})
		return 0, false
	}
	return s, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
