package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Effnets/internal/ahp"
	"github.com/MikeSquared-Agency/Effnets/internal/dataset"
	"github.com/MikeSquared-Agency/Effnets/internal/export"
	"github.com/MikeSquared-Agency/Effnets/internal/indicators"
	"github.com/MikeSquared-Agency/Effnets/internal/scoring"
	"github.com/MikeSquared-Agency/Effnets/internal/store"
)

// EqualWeights labels the weighting that splits every level equally.
const EqualWeights = "Equal Weights"

// Failure kinds.
const (
	FailWeights  = "weights"
	FailScenario = "scenario"
	FailResults  = "results"
	FailDetail   = "detail"
	FailStore    = "store"
)

// Failure is one isolated error; the rest of the run went on without the
// failing stakeholder or scenario.
type Failure struct {
	Kind        string `json:"kind"`
	Stakeholder string `json:"stakeholder,omitempty"`
	Scenario    int    `json:"scenario,omitempty"`
	Error       string `json:"error"`
}

// Report is the outcome of one run.
type Report struct {
	RunID       uuid.UUID `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Hierarchy   string    `json:"hierarchy"`
	DERStrategy string    `json:"der_strategy"`

	NrScenarios    int      `json:"nr_scenarios"`
	NrAlternatives int      `json:"nr_alternatives"`
	Criteria       []string `json:"criteria"`

	Weights      []ahp.WeightVector        `json:"weights"`
	Matrices     []indicators.Matrix       `json:"matrices"`
	Results      []scoring.ScoreTable      `json:"results"`
	Fairness     *indicators.ScenarioTable `json:"fairness,omitempty"`
	DERCostRatio *indicators.ScenarioTable `json:"der_cost_ratio,omitempty"`
	Totals       []dataset.Total           `json:"totals"`
	Failures     []Failure                 `json:"failures,omitempty"`
	Outputs      []string                  `json:"outputs,omitempty"`

	tree *ahp.Tree
}

func (r *Report) fail(f Failure) { r.Failures = append(r.Failures, f) }

// Tree returns the criteria tree the run was weighted with.
func (r *Report) Tree() *ahp.Tree { return r.tree }

// Stakeholders lists the weightings that produced a score table.
func (r *Report) Stakeholders() []string {
	out := make([]string, len(r.Results))
	for i, t := range r.Results {
		out[i] = t.Stakeholder
	}
	return out
}

// Weighting returns the weight vector of a stakeholder.
func (r *Report) Weighting(stakeholder string) (ahp.WeightVector, bool) {
	for _, w := range r.Weights {
		if w.Stakeholder == stakeholder {
			return w, true
		}
	}
	return ahp.WeightVector{}, false
}

// Result returns the score table of a stakeholder.
func (r *Report) Result(stakeholder string) (scoring.ScoreTable, bool) {
	for _, t := range r.Results {
		if t.Stakeholder == stakeholder {
			return t, true
		}
	}
	return scoring.ScoreTable{}, false
}

// Matrix returns the indicator matrix of a scenario.
func (r *Report) Matrix(scenario int) (indicators.Matrix, bool) {
	for _, m := range r.Matrices {
		if m.Scenario == scenario {
			return m, true
		}
	}
	return indicators.Matrix{}, false
}

// Best maps every stakeholder to its top alternative per scenario column.
func (r *Report) Best() map[string][]int {
	out := make(map[string][]int, len(r.Results))
	for _, t := range r.Results {
		for _, s := range t.Scenarios {
			b, err := t.Best(s)
			if err != nil {
				continue
			}
			out[t.Stakeholder] = append(out[t.Stakeholder], b.Alternative)
		}
	}
	return out
}

// Status is partial when anything failed.
func (r *Report) Status() store.RunStatus {
	if len(r.Failures) > 0 {
		return store.RunPartial
	}
	return store.RunCompleted
}

func (r *Report) exports() export.Outputs {
	return export.Outputs{
		Weights:      r.Weights,
		Matrices:     r.Matrices,
		Results:      r.Results,
		Fairness:     r.Fairness,
		DERCostRatio: r.DERCostRatio,
		Totals:       r.Totals,
	}
}

// Run flattens the report into result rows.
func (r *Report) Run() *store.Run {
	run := store.NewRun(r.Hierarchy, r.DERStrategy, r.NrScenarios, r.NrAlternatives)
	run.ID = r.RunID
	run.StartedAt = r.StartedAt

	for _, w := range r.Weights {
		for i, c := range w.Criteria {
			run.Weights = append(run.Weights, store.WeightRow{Stakeholder: w.Stakeholder, Criterion: c, Weight: w.Values[i]})
		}
	}
	for _, m := range r.Matrices {
		for i, c := range m.Criteria {
			for j, a := range m.Alternatives {
				run.Indicators = append(run.Indicators, store.IndicatorRow{Scenario: m.Scenario, Criterion: c, Alternative: a, Value: m.Values[i][j]})
			}
		}
	}
	for _, t := range r.Results {
		for a, alt := range t.Alternatives {
			for j, s := range t.Scenarios {
				run.Scores = append(run.Scores, store.ScoreRow{Stakeholder: t.Stakeholder, Scenario: s, Alternative: alt, Score: t.Scores[a][j]})
			}
		}
	}
	for _, f := range r.Failures {
		run.Failures = append(run.Failures, store.FailureRow{Stakeholder: f.Stakeholder, Scenario: f.Scenario, Error: f.Kind + ": " + f.Error})
	}
	run.Finish()
	if !r.FinishedAt.IsZero() {
		run.FinishedAt = r.FinishedAt
	}
	return run
}
