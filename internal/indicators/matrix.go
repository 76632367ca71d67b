package indicators

import "fmt"

// Criterion pairs a criterion label with the indicator that scores it.
type Criterion struct {
	Name      string
	Indicator string
}

// Matrix is the performance-indicator matrix of one scenario: one row per
// criterion, one column per alternative.
type Matrix struct {
	Scenario     int         `json:"scenario"`
	Criteria     []string    `json:"criteria"`
	Alternatives []int       `json:"alternatives"`
	Values       [][]float64 `json:"values"`
}

// Row returns the values of one criterion.
func (m Matrix) Row(criterion string) ([]float64, bool) {
	for i, c := range m.Criteria {
		if c == criterion {
			return m.Values[i], true
		}
	}
	return nil, false
}

// Column returns every criterion's value for alternative a.
func (m Matrix) Column(a int) ([]float64, error) {
	for j, alt := range m.Alternatives {
		if alt == a {
			out := make([]float64, len(m.Values))
			for i := range m.Values {
				out[i] = m.Values[i][j]
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("scenario %d has no alternative %d", m.Scenario, a)
}

// Matrix evaluates every criterion for alternatives 1..n of a scenario and
// stacks the rows in criteria order.
func (e *Engine) Matrix(scenario, n int, criteria []Criterion) (Matrix, error) {
	if err := checkCount(n); err != nil {
		return Matrix{}, err
	}
	m := Matrix{
		Scenario:     scenario,
		Criteria:     make([]string, len(criteria)),
		Alternatives: alternatives(n),
		Values:       make([][]float64, len(criteria)),
	}
	for i, c := range criteria {
		row, err := e.Compute(c.Indicator, scenario, n)
		if err != nil {
			return Matrix{}, fmt.Errorf("scenario %d criterion %s: %w", scenario, c.Name, err)
		}
		m.Criteria[i] = c.Name
		m.Values[i] = row
	}
	return m, nil
}

// ScenarioTable holds one indicator across scenarios: one row per scenario,
// one column per alternative.
type ScenarioTable struct {
	Indicator    string      `json:"indicator"`
	Scenarios    []int       `json:"scenarios"`
	Alternatives []int       `json:"alternatives"`
	Values       [][]float64 `json:"values"`
}

// Append adds the row of one scenario.
func (t *ScenarioTable) Append(scenario int, values []float64) {
	t.Scenarios = append(t.Scenarios, scenario)
	t.Values = append(t.Values, values)
}

// ScenarioTable evaluates indicator id for every listed scenario.
func (e *Engine) ScenarioTable(id string, scenarios []int, n int) (ScenarioTable, error) {
	t := ScenarioTable{Indicator: id, Alternatives: alternatives(n)}
	for _, s := range scenarios {
		row, err := e.Compute(id, s, n)
		if err != nil {
			return ScenarioTable{}, fmt.Errorf("scenario %d: %w", s, err)
		}
		t.Append(s, row)
	}
	return t, nil
}
