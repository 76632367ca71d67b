package scoring

import (
	"fmt"
	"sort"
)

// ScoreTable holds one stakeholder's scores: one row per alternative, one
// column per scenario.
type ScoreTable struct {
	Stakeholder  string      `json:"stakeholder"`
	Alternatives []int       `json:"alternatives"`
	Scenarios    []string    `json:"scenarios"`
	Scores       [][]float64 `json:"scores"`
}

// RankedAlternative is one entry of a ranking.
type RankedAlternative struct {
	Rank        int     `json:"rank"`
	Alternative int     `json:"alternative"`
	Score       float64 `json:"score"`
}

// Scenario returns the column of the named scenario.
func (t ScoreTable) Scenario(name string) ([]float64, error) {
	for j, s := range t.Scenarios {
		if s == name {
			col := make([]float64, len(t.Scores))
			for i := range t.Scores {
				col[i] = t.Scores[i][j]
			}
			return col, nil
		}
	}
	return nil, fmt.Errorf("no scenario %q in results for %s", name, t.Stakeholder)
}

// Ranking orders the alternatives of a scenario by descending score. Ties
// keep ascending alternative order and share a rank.
func (t ScoreTable) Ranking(scenario string) ([]RankedAlternative, error) {
	col, err := t.Scenario(scenario)
	if err != nil {
		return nil, err
	}
	out := make([]RankedAlternative, len(col))
	for i, v := range col {
		out[i] = RankedAlternative{Alternative: t.Alternatives[i], Score: v}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	for i := range out {
		out[i].Rank = i + 1
		if i > 0 && out[i].Score == out[i-1].Score {
			out[i].Rank = out[i-1].Rank
		}
	}
	return out, nil
}

// Best returns the top-ranked alternative of a scenario.
func (t ScoreTable) Best(scenario string) (RankedAlternative, error) {
	r, err := t.Ranking(scenario)
	if err != nil {
		return RankedAlternative{}, err
	}
	if len(r) == 0 {
		return RankedAlternative{}, fmt.Errorf("no alternatives in results for %s", t.Stakeholder)
	}
	return r[0], nil
}
