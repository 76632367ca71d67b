package scoring

import (
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/Effnets/internal/ahp"
	"github.com/MikeSquared-Agency/Effnets/internal/indicators"
)

// Scorer combines the indicator engine with a criteria tree: the tree's
// leaves fix the rows of every performance-indicator matrix.
type Scorer struct {
	engine   *indicators.Engine
	criteria []indicators.Criterion
	logger   *slog.Logger
}

// NewScorer creates a Scorer over the leaves of tree.
func NewScorer(engine *indicators.Engine, tree *ahp.Tree, logger *slog.Logger) *Scorer {
	leaves := tree.Leaves()
	criteria := make([]indicators.Criterion, len(leaves))
	for i, l := range leaves {
		criteria[i] = indicators.Criterion{Name: l.Name, Indicator: l.Indicator}
	}
	return &Scorer{engine: engine, criteria: criteria, logger: logger}
}

// Criteria returns the criterion labels in matrix row order.
func (s *Scorer) Criteria() []string {
	out := make([]string, len(s.criteria))
	for i, c := range s.criteria {
		out[i] = c.Name
	}
	return out
}

// PerformanceIndicators computes the indicator matrix of one scenario for
// alternatives 1..n.
func (s *Scorer) PerformanceIndicators(scenario, n int) (indicators.Matrix, error) {
	return s.engine.Matrix(scenario, n, s.criteria)
}

// RateScenario scores alternatives 1..n of a scenario with one weighting.
func (s *Scorer) RateScenario(scenario, n int, weights ahp.WeightVector) ([]float64, error) {
	m, err := s.PerformanceIndicators(scenario, n)
	if err != nil {
		return nil, err
	}
	return RatingScenario(m, weights)
}

// Results rates scenarios 1..nrScenarios with one weighting and assembles
// the score table. names labels the scenarios; when empty, scenarios are
// labelled by id.
func (s *Scorer) Results(nrScenarios, n int, weights ahp.WeightVector, names []string) (ScoreTable, error) {
	if nrScenarios < 1 {
		return ScoreTable{}, fmt.Errorf("number of scenarios must be positive, got %d", nrScenarios)
	}
	if len(names) != 0 && len(names) != nrScenarios {
		return ScoreTable{}, fmt.Errorf("%d scenario names for %d scenarios", len(names), nrScenarios)
	}

	matrices := make([]indicators.Matrix, nrScenarios)
	for sc := 1; sc <= nrScenarios; sc++ {
		m, err := s.PerformanceIndicators(sc, n)
		if err != nil {
			return ScoreTable{}, fmt.Errorf("stakeholder %s scenario %d: %w", weights.Stakeholder, sc, err)
		}
		matrices[sc-1] = m
	}
	if len(names) == 0 {
		names = ScenarioNames(nrScenarios)
	}
	table, err := Tabulate(matrices, names, weights)
	if err != nil {
		return ScoreTable{}, err
	}
	s.logger.Debug("rated scenarios", "stakeholder", weights.Stakeholder, "scenarios", nrScenarios)
	return table, nil
}

// ScenarioNames returns the default labels "Scenario 1".."Scenario n".
func ScenarioNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Scenario %d", i+1)
	}
	return out
}

// Tabulate rates precomputed indicator matrices, one per scenario column,
// with one weighting. All matrices must cover the same alternatives.
func Tabulate(matrices []indicators.Matrix, names []string, weights ahp.WeightVector) (ScoreTable, error) {
	if len(matrices) == 0 {
		return ScoreTable{}, fmt.Errorf("no scenarios to rate for %s", weights.Stakeholder)
	}
	if len(names) != len(matrices) {
		return ScoreTable{}, fmt.Errorf("%d scenario names for %d scenarios", len(names), len(matrices))
	}

	alts := matrices[0].Alternatives
	table := ScoreTable{
		Stakeholder:  weights.Stakeholder,
		Alternatives: append([]int(nil), alts...),
		Scenarios:    append([]string(nil), names...),
		Scores:       make([][]float64, len(alts)),
	}
	for a := range table.Scores {
		table.Scores[a] = make([]float64, len(matrices))
	}

	for j, m := range matrices {
		if len(m.Alternatives) != len(alts) {
			return ScoreTable{}, fmt.Errorf("scenario %d has %d alternatives, expected %d", m.Scenario, len(m.Alternatives), len(alts))
		}
		scores, err := RatingScenario(m, weights)
		if err != nil {
			return ScoreTable{}, fmt.Errorf("stakeholder %s scenario %d: %w", weights.Stakeholder, m.Scenario, err)
		}
		for a, v := range scores {
			table.Scores[a][j] = v
		}
	}
	return table, nil
}
