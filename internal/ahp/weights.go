package ahp

import (
	"fmt"
	"math"
)

// WeightVector holds one stakeholder's absolute criteria weights.
// Values must sum to 1.0 (±1e-6 tolerance).
type WeightVector struct {
	Stakeholder string    `json:"stakeholder"`
	Criteria    []string  `json:"criteria"`
	Values      []float64 `json:"values"`

	// Consistency ratio per comparison matrix key.
	Consistency map[string]float64 `json:"consistency,omitempty"`
}

// Sum returns the total of all weights.
func (w WeightVector) Sum() float64 {
	var total float64
	for _, v := range w.Values {
		total += v
	}
	return total
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w WeightVector) Validate() error {
	if len(w.Values) != len(w.Criteria) {
		return fmt.Errorf("%d weights for %d criteria", len(w.Values), len(w.Criteria))
	}
	if math.Abs(w.Sum()-1.0) > 1e-6 {
		return fmt.Errorf("weights sum to %.6f, must sum to 1.0", w.Sum())
	}
	for i, v := range w.Values {
		if v < 0 {
			return fmt.Errorf("negative weight for %s: %f", w.Criteria[i], v)
		}
	}
	return nil
}

// Get returns the weight of a criterion.
func (w WeightVector) Get(criterion string) (float64, bool) {
	for i, c := range w.Criteria {
		if c == criterion {
			return w.Values[i], true
		}
	}
	return 0, false
}

// Scale returns a copy with every weight multiplied by k.
func (w WeightVector) Scale(k float64) WeightVector {
	out := w
	out.Values = make([]float64, len(w.Values))
	for i, v := range w.Values {
		out.Values[i] = v * k
	}
	return out
}

// MaxConsistencyRatio returns the worst consistency ratio and its matrix key.
func (w WeightVector) MaxConsistencyRatio() (string, float64) {
	var key string
	var worst float64
	for k, v := range w.Consistency {
		if v > worst || (v == worst && k < key) {
			key, worst = k, v
		}
	}
	return key, worst
}

// ExtractWeights composes a 3×3 main matrix and the Efficient Grid and
// Political Objectives sub-matrices into the five-criteria weight vector.
func ExtractWeights(main, efficientGrid, political Matrix) (WeightVector, error) {
	return FiveCriteriaTree().Weights(Bundle{
		Matrices: map[string]Matrix{
			MatrixMain:                main,
			MatrixEfficientGrid:       efficientGrid,
			MatrixPoliticalObjectives: political,
		},
	})
}

// RelativeWeights looks up the stakeholder's bundle and weighs tree with it.
func RelativeWeights(tree *Tree, bundles []Bundle, stakeholder string) (WeightVector, error) {
	for _, b := range bundles {
		if b.Stakeholder == stakeholder {
			w, err := tree.Weights(b)
			if err != nil {
				return WeightVector{}, fmt.Errorf("stakeholder %s: %w", stakeholder, err)
			}
			return w, nil
		}
	}
	return WeightVector{}, fmt.Errorf("no comparison bundle for stakeholder %q", stakeholder)
}
