package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial" // some stakeholders or scenarios failed
)

// Run is one analysis run flattened into rows. Rows are written once and
// never read back by the analysis.
type Run struct {
	ID             uuid.UUID `json:"run_id"`
	Status         RunStatus `json:"status"`
	Hierarchy      string    `json:"hierarchy"`
	DERStrategy    string    `json:"der_strategy"`
	NrScenarios    int       `json:"nr_scenarios"`
	NrAlternatives int       `json:"nr_alternatives"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`

	Weights    []WeightRow    `json:"weights,omitempty"`
	Indicators []IndicatorRow `json:"indicators,omitempty"`
	Scores     []ScoreRow     `json:"scores,omitempty"`
	Failures   []FailureRow   `json:"failures,omitempty"`
}

type WeightRow struct {
	Stakeholder string  `json:"stakeholder"`
	Criterion   string  `json:"criterion"`
	Weight      float64 `json:"weight"`
}

type IndicatorRow struct {
	Scenario    int     `json:"scenario"`
	Criterion   string  `json:"criterion"`
	Alternative int     `json:"alternative"`
	Value       float64 `json:"value"`
}

type ScoreRow struct {
	Stakeholder string  `json:"stakeholder"`
	Scenario    string  `json:"scenario"`
	Alternative int     `json:"alternative"`
	Score       float64 `json:"score"`
}

type FailureRow struct {
	Stakeholder string `json:"stakeholder,omitempty"`
	Scenario    int    `json:"scenario,omitempty"`
	Error       string `json:"error"`
}

// NewRun starts a run record with a fresh id.
func NewRun(hierarchy, derStrategy string, nrScenarios, nrAlternatives int) *Run {
	return &Run{
		ID:             uuid.New(),
		Status:         RunCompleted,
		Hierarchy:      hierarchy,
		DERStrategy:    derStrategy,
		NrScenarios:    nrScenarios,
		NrAlternatives: nrAlternatives,
		StartedAt:      time.Now().UTC(),
	}
}

// Finish stamps the end time and marks the run partial when failures were
// recorded.
func (r *Run) Finish() {
	r.FinishedAt = time.Now().UTC()
	if len(r.Failures) > 0 {
		r.Status = RunPartial
	}
}

type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	Close() error
}
