package scoring

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Effnets/internal/ahp"
	"github.com/MikeSquared-Agency/Effnets/internal/indicators"
)

// FactorResult captures one criterion's contribution to an alternative's
// score.
type FactorResult struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Weighted  float64 `json:"weighted"`
	Available bool    `json:"available"`
	Reason    string  `json:"reason"`
}

// Breakdown explains the score of one alternative under one weighting.
type Breakdown struct {
	Stakeholder string         `json:"stakeholder"`
	Scenario    int            `json:"scenario"`
	Alternative int            `json:"alternative"`
	TotalScore  float64        `json:"total_score"`
	Factors     []FactorResult `json:"factors"`
}

// Explain breaks the score of alternative down by criterion.
func Explain(m indicators.Matrix, w ahp.WeightVector, alternative int) (Breakdown, error) {
	weights, err := alignedWeights(m, w)
	if err != nil {
		return Breakdown{}, err
	}
	col, err := m.Column(alternative)
	if err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		Stakeholder: w.Stakeholder,
		Scenario:    m.Scenario,
		Alternative: alternative,
		Factors:     make([]FactorResult, len(col)),
	}
	for i, v := range col {
		b.Factors[i] = FactorResult{
			Name:      m.Criteria[i],
			Score:     v,
			Weight:    weights[i],
			Weighted:  v * weights[i],
			Available: !math.IsNaN(v),
			Reason:    describe(v),
		}
		b.TotalScore += b.Factors[i].Weighted
	}
	return b, nil
}

// describe reads an indicator value on the 1.5-centred scale.
func describe(v float64) string {
	switch {
	case math.IsNaN(v):
		return "unavailable"
	case v == 0.5:
		return "same as reference"
	case v > 0.5:
		return fmt.Sprintf("better than reference by %.3f", v-0.5)
	default:
		return fmt.Sprintf("worse than reference by %.3f", 0.5-v)
	}
}
