package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Effnets/internal/scoring"
)

type ExplainHandler struct {
	analyzer Analyzer
}

func NewExplainHandler(a Analyzer) *ExplainHandler {
	return &ExplainHandler{analyzer: a}
}

// Explain returns the per-criterion breakdown of every alternative of a
// scenario under one stakeholder's weights, plus the Pareto frontier of the
// scenario. ?alternative=<n> narrows the breakdown to one alternative.
// GET /api/v1/scenarios/{scenario}/explain/{stakeholder}
func (h *ExplainHandler) Explain(w http.ResponseWriter, r *http.Request) {
	scenario, ok := scenarioParam(w, r)
	if !ok {
		return
	}
	rep := h.analyzer.Latest()
	if rep == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no analysis results yet"})
		return
	}

	m, found := rep.Matrix(scenario)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "scenario not rated"})
		return
	}
	weights, found := rep.Weighting(chi.URLParam(r, "stakeholder"))
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "stakeholder not found"})
		return
	}

	alternatives := m.Alternatives
	if v := r.URL.Query().Get("alternative"); v != "" {
		a, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid alternative"})
			return
		}
		alternatives = []int{a}
	}

	breakdowns := make([]scoring.Breakdown, 0, len(alternatives))
	for _, a := range alternatives {
		b, err := scoring.Explain(m, weights, a)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		breakdowns = append(breakdowns, b)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":          rep.RunID,
		"scenario":        scenario,
		"stakeholder":     weights.Stakeholder,
		"breakdowns":      breakdowns,
		"pareto_frontier": scoring.ComputeFrontier(scoring.Candidates(m)),
	})
}
