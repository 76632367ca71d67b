package dataset

import (
	"fmt"
	"math"
	"sort"
)

// GroupShareTolerance bounds how far the group shares of one
// (scenario, alternative) pair may deviate from 1.
const GroupShareTolerance = 1e-3

// Record is one customer group under one tariff alternative in one scenario.
type Record struct {
	Scenario      int `json:"scenario"`
	Alternative   int `json:"alternative"`
	CustomerGroup int `json:"customer_group"`

	GroupShare           float64 `json:"group_share"`
	CostShare            float64 `json:"cost_share"`
	PeakShare            float64 `json:"peak_share"`
	CapacityShare        float64 `json:"capacity_share"`
	EnergyShare          float64 `json:"energy_share"`
	ElectricityPurchased float64 `json:"electricity_purchased"`
	SimultaneousPeak     float64 `json:"simultaneous_peak"`
	ContractedCapacity   float64 `json:"contracted_capacity"`

	// Optional, not used by any criterion.
	Losses      *float64 `json:"losses,omitempty"`
	LossesShare *float64 `json:"losses_share,omitempty"`
}

// Key identifies a record.
type Key struct {
	Scenario      int
	Alternative   int
	CustomerGroup int
}

func (k Key) String() string {
	return fmt.Sprintf("scenario=%d alternative=%d group=%d", k.Scenario, k.Alternative, k.CustomerGroup)
}

func (r Record) Key() Key {
	return Key{Scenario: r.Scenario, Alternative: r.Alternative, CustomerGroup: r.CustomerGroup}
}

// Dataset is the read-only input table. It is built once by New and never
// changes afterwards; every accessor hands out copies.
type Dataset struct {
	records []Record
	index   map[Key]int
}

// New validates records and returns a Dataset holding its own copy of them.
func New(records []Record) (*Dataset, error) {
	ds := &Dataset{
		records: make([]Record, len(records)),
		index:   make(map[Key]int, len(records)),
	}
	copy(ds.records, records)

	for i, r := range ds.records {
		if r.Scenario <= 0 || r.Alternative <= 0 || r.CustomerGroup <= 0 {
			return nil, &DataError{Key: r.Key(), Reason: "identifiers must be positive"}
		}
		if _, dup := ds.index[r.Key()]; dup {
			return nil, &DataError{Key: r.Key(), Reason: "duplicate record"}
		}
		for _, f := range Fields {
			if v := f.Value(r); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &DataError{Key: r.Key(), Reason: fmt.Sprintf("%s is not finite: %v", f, v)}
			}
		}
		ds.index[r.Key()] = i
	}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (ds *Dataset) validate() error {
	for _, s := range ds.Scenarios() {
		var reference []int
		for _, a := range ds.Alternatives(s) {
			groups := ds.Groups(s, a)
			if reference == nil {
				reference = groups
			} else if !sameInts(reference, groups) {
				return &DataError{
					Key:    Key{Scenario: s, Alternative: a},
					Reason: fmt.Sprintf("customer groups %v differ from %v", groups, reference),
				}
			}

			var total float64
			for _, g := range groups {
				total += ds.records[ds.index[Key{s, a, g}]].GroupShare
			}
			if math.Abs(total-1) > GroupShareTolerance {
				return &DataError{
					Key:    Key{Scenario: s, Alternative: a},
					Reason: fmt.Sprintf("group shares sum to %.4f, must sum to 1", total),
				}
			}
		}
	}
	return nil
}

// Len returns the number of records.
func (ds *Dataset) Len() int { return len(ds.records) }

// Records returns a copy of all records in input order.
func (ds *Dataset) Records() []Record {
	out := make([]Record, len(ds.records))
	copy(out, ds.records)
	return out
}

// Lookup returns the record for (scenario, alternative, group).
func (ds *Dataset) Lookup(scenario, alternative, group int) (Record, error) {
	k := Key{Scenario: scenario, Alternative: alternative, CustomerGroup: group}
	i, ok := ds.index[k]
	if !ok {
		return Record{}, &DataError{Key: k, Reason: "record not found"}
	}
	return ds.records[i], nil
}

// Select returns copies of the records of one (scenario, alternative) pair
// ordered by customer group.
func (ds *Dataset) Select(scenario, alternative int) []Record {
	var out []Record
	for _, r := range ds.records {
		if r.Scenario == scenario && r.Alternative == alternative {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerGroup < out[j].CustomerGroup })
	return out
}

// Sum adds up one field over all customer groups of a (scenario, alternative)
// pair.
func (ds *Dataset) Sum(scenario, alternative int, f Field) (float64, error) {
	recs := ds.Select(scenario, alternative)
	if len(recs) == 0 {
		return 0, &DataError{
			Key:    Key{Scenario: scenario, Alternative: alternative},
			Reason: "no records for " + f.String(),
		}
	}
	var total float64
	for _, r := range recs {
		total += f.Value(r)
	}
	return total, nil
}

// Column returns one field of a (scenario, alternative) pair as a vector
// ordered by customer group.
func (ds *Dataset) Column(scenario, alternative int, f Field) ([]float64, error) {
	recs := ds.Select(scenario, alternative)
	if len(recs) == 0 {
		return nil, &DataError{
			Key:    Key{Scenario: scenario, Alternative: alternative},
			Reason: "no records for " + f.String(),
		}
	}
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = f.Value(r)
	}
	return out, nil
}

// Scenarios returns the distinct scenario ids in ascending order.
func (ds *Dataset) Scenarios() []int {
	seen := map[int]bool{}
	for _, r := range ds.records {
		seen[r.Scenario] = true
	}
	return sortedKeys(seen)
}

// Alternatives returns the distinct alternative ids of a scenario.
func (ds *Dataset) Alternatives(scenario int) []int {
	seen := map[int]bool{}
	for _, r := range ds.records {
		if r.Scenario == scenario {
			seen[r.Alternative] = true
		}
	}
	return sortedKeys(seen)
}

// Groups returns the customer group ids of a (scenario, alternative) pair.
func (ds *Dataset) Groups(scenario, alternative int) []int {
	seen := map[int]bool{}
	for _, r := range ds.records {
		if r.Scenario == scenario && r.Alternative == alternative {
			seen[r.CustomerGroup] = true
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
