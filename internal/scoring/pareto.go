package scoring

import "github.com/MikeSquared-Agency/Effnets/internal/indicators"

// ParetoCandidate is one alternative scored on every criterion.
type ParetoCandidate struct {
	Alternative int       `json:"alternative"`
	Values      []float64 `json:"values"` // higher is better
}

// Candidates turns the columns of an indicator matrix into candidates.
func Candidates(m indicators.Matrix) []ParetoCandidate {
	out := make([]ParetoCandidate, len(m.Alternatives))
	for j, a := range m.Alternatives {
		values := make([]float64, len(m.Values))
		for i := range m.Values {
			values[i] = m.Values[i][j]
		}
		out[j] = ParetoCandidate{Alternative: a, Values: values}
	}
	return out
}

// ComputeFrontier returns the Pareto-optimal candidates from the input set.
// A candidate is dominated if another candidate is >= on every criterion
// and strictly better on at least one.
// O(n^2) dominance check; tariff alternatives are few.
func ComputeFrontier(candidates []ParetoCandidate) []ParetoCandidate {
	if len(candidates) <= 1 {
		return candidates
	}

	var frontier []ParetoCandidate
	for i := range candidates {
		dominated := false
		for j := range candidates {
			if i == j {
				continue
			}
			if dominates(candidates[j], candidates[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, candidates[i])
		}
	}
	return frontier
}

// dominates returns true if a dominates b.
func dominates(a, b ParetoCandidate) bool {
	if len(a.Values) != len(b.Values) {
		return false
	}
	strictly := false
	for i := range a.Values {
		if a.Values[i] < b.Values[i] {
			return false
		}
		if a.Values[i] > b.Values[i] {
			strictly = true
		}
	}
	return strictly
}
