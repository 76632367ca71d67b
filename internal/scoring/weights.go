package scoring

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/MikeSquared-Agency/Effnets/internal/ahp"
	"github.com/MikeSquared-Agency/Effnets/internal/indicators"
)

// alignedWeights orders the weight vector by the matrix's criteria. Every
// criterion must carry exactly one weight.
func alignedWeights(m indicators.Matrix, w ahp.WeightVector) ([]float64, error) {
	if len(w.Values) != len(w.Criteria) {
		return nil, fmt.Errorf("%d weights for %d criteria", len(w.Values), len(w.Criteria))
	}
	if len(w.Criteria) != len(m.Criteria) {
		return nil, fmt.Errorf("weights cover %d criteria, indicator matrix has %d", len(w.Criteria), len(m.Criteria))
	}
	out := make([]float64, len(m.Criteria))
	for i, c := range m.Criteria {
		v, ok := w.Get(c)
		if !ok {
			return nil, fmt.Errorf("no weight for criterion %q", c)
		}
		out[i] = v
	}
	return out, nil
}

// RatingScenario multiplies every criterion row by its weight and sums down
// the criteria: one score per alternative. Weights are not renormalised, so
// scores are linear in them.
func RatingScenario(m indicators.Matrix, w ahp.WeightVector) ([]float64, error) {
	weights, err := alignedWeights(m, w)
	if err != nil {
		return nil, err
	}
	rows, cols := len(m.Values), len(m.Alternatives)
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("empty indicator matrix for scenario %d", m.Scenario)
	}

	data := make([]float64, 0, rows*cols)
	for i, row := range m.Values {
		if len(row) != cols {
			return nil, fmt.Errorf("criterion %s has %d values for %d alternatives", m.Criteria[i], len(row), cols)
		}
		data = append(data, row...)
	}

	var scores mat.VecDense
	scores.MulVec(mat.NewDense(rows, cols, data).T(), mat.NewVecDense(rows, weights))
	out := make([]float64, cols)
	for j := range out {
		out[j] = scores.AtVec(j)
	}
	return out, nil
}
