package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Contribution splits network costs into a usage-related (peak driven) and
// a capacity-related (contracted capacity driven) share. Both lie in [0,1]
// and sum to 1.
type Contribution struct {
	UsageRelated    float64 `json:"usage_related" yaml:"usage_related"`
	CapacityRelated float64 `json:"capacity_related" yaml:"capacity_related"`
}

// Validate checks that both shares are finite, lie in [0,1] and sum to 1
// within GroupShareTolerance.
func (c Contribution) Validate() error {
	for _, v := range []float64{c.UsageRelated, c.CapacityRelated} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("shares must lie in [0,1], got %v/%v", c.UsageRelated, c.CapacityRelated)
		}
	}
	if sum := c.UsageRelated + c.CapacityRelated; math.Abs(sum-1) > GroupShareTolerance {
		return fmt.Errorf("shares sum to %.4f, must sum to 1", sum)
	}
	return nil
}

// Validate checks every pair of the table.
func (c Contributions) Validate() error {
	for _, k := range c.Keys() {
		if k.Scenario <= 0 || k.Alternative <= 0 {
			return &DataError{Key: Key{Scenario: k.Scenario, Alternative: k.Alternative}, Reason: "identifiers must be positive"}
		}
		if err := c[k].Validate(); err != nil {
			return &DataError{Key: Key{Scenario: k.Scenario, Alternative: k.Alternative}, Reason: "cost contribution: " + err.Error()}
		}
	}
	return nil
}

// DefaultBaseContribution is the status-quo cost split assumed for the
// baseline scenario under the volumetric tariff.
func DefaultBaseContribution() Contribution {
	return Contribution{UsageRelated: 0.41, CapacityRelated: 0.59}
}

// PairKey identifies a (scenario, alternative) pair.
type PairKey struct {
	Scenario    int
	Alternative int
}

// Contributions is the cost-contribution table per (scenario, alternative).
type Contributions map[PairKey]Contribution

// Get returns the contribution of one pair.
func (c Contributions) Get(scenario, alternative int) (Contribution, error) {
	v, ok := c[PairKey{Scenario: scenario, Alternative: alternative}]
	if !ok {
		return Contribution{}, &DataError{
			Key:    Key{Scenario: scenario, Alternative: alternative},
			Reason: "no cost contribution",
		}
	}
	return v, nil
}

// Keys returns the table keys ordered by scenario, then alternative.
func (c Contributions) Keys() []PairKey {
	keys := make([]PairKey, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Scenario != keys[j].Scenario {
			return keys[i].Scenario < keys[j].Scenario
		}
		return keys[i].Alternative < keys[j].Alternative
	})
	return keys
}

// Calibrate scales the base split by how the aggregated simultaneous peak and
// contracted capacity of every pair compare to the baseline pair, then
// renormalises each pair to sum 1.
func Calibrate(ds *Dataset, base Contribution, baselineScenario, baselineAlternative int) (Contributions, error) {
	peakBase, err := ds.Sum(baselineScenario, baselineAlternative, SimultaneousPeak)
	if err != nil {
		return nil, err
	}
	capBase, err := ds.Sum(baselineScenario, baselineAlternative, ContractedCapacity)
	if err != nil {
		return nil, err
	}
	baseKey := Key{Scenario: baselineScenario, Alternative: baselineAlternative}
	if peakBase == 0 {
		return nil, &DataError{Key: baseKey, Reason: "baseline simultaneous peak is zero"}
	}
	if capBase == 0 {
		return nil, &DataError{Key: baseKey, Reason: "baseline contracted capacity is zero"}
	}

	out := Contributions{}
	for _, s := range ds.Scenarios() {
		for _, a := range ds.Alternatives(s) {
			peak, err := ds.Sum(s, a, SimultaneousPeak)
			if err != nil {
				return nil, err
			}
			capacity, err := ds.Sum(s, a, ContractedCapacity)
			if err != nil {
				return nil, err
			}
			ur := base.UsageRelated * peak / peakBase
			cr := base.CapacityRelated * capacity / capBase
			if ur+cr == 0 {
				return nil, &DataError{Key: Key{Scenario: s, Alternative: a}, Reason: "peak and capacity are both zero"}
			}
			out[PairKey{Scenario: s, Alternative: a}] = Contribution{
				UsageRelated:    ur / (ur + cr),
				CapacityRelated: cr / (ur + cr),
			}
		}
	}
	return out, nil
}

// ReadContributionsCSV loads a precomputed table with the columns
// Scenario, Alternative, Usage Related, Capacity Related.
func ReadContributionsCSV(r io.Reader) (Contributions, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cols := []string{"scenario", "alternative", "usage related", "capacity related"}
	for _, col := range cols {
		if _, ok := index[col]; !ok {
			return nil, &SchemaError{Column: col, Reason: "missing required column"}
		}
	}

	out := Contributions{}
	line := 1
	for {
		line++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		vals := make([]float64, len(cols))
		for i, col := range cols {
			raw := ""
			if pos := index[col]; pos < len(row) {
				raw = strings.TrimSpace(row[pos])
			}
			if vals[i], err = strconv.ParseFloat(raw, 64); err != nil || math.IsInf(vals[i], 0) {
				return nil, &SchemaError{Column: col, Line: line, Reason: fmt.Sprintf("not a number: %q", raw)}
			}
		}
		for i, col := range cols[:2] {
			if vals[i] != math.Trunc(vals[i]) {
				return nil, &SchemaError{Column: col, Line: line, Reason: fmt.Sprintf("not an integer: %v", vals[i])}
			}
		}
		key := PairKey{Scenario: int(vals[0]), Alternative: int(vals[1])}
		if _, dup := out[key]; dup {
			return nil, &DataError{Key: Key{Scenario: key.Scenario, Alternative: key.Alternative}, Reason: "duplicate cost contribution"}
		}
		out[key] = Contribution{
			UsageRelated:    vals[2],
			CapacityRelated: vals[3],
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadContributionsCSV reads a contribution table from a file.
func LoadContributionsCSV(path string) (Contributions, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cost contributions: %w", err)
	}
	defer file.Close()
	return ReadContributionsCSV(file)
}
