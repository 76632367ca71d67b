package dataset

// Total aggregates the customer groups of one (scenario, alternative) pair.
type Total struct {
	Scenario             int     `json:"scenario"`
	Alternative          int     `json:"alternative"`
	SimultaneousPeak     float64 `json:"simultaneous_peak"`
	ContractedCapacity   float64 `json:"contracted_capacity"`
	ElectricityPurchased float64 `json:"electricity_purchased"`
}

// Totals returns one Total per (scenario, alternative) pair, ordered by
// scenario then alternative.
func Totals(ds *Dataset) []Total {
	var out []Total
	for _, s := range ds.Scenarios() {
		for _, a := range ds.Alternatives(s) {
			t := Total{Scenario: s, Alternative: a}
			for _, r := range ds.Select(s, a) {
				t.SimultaneousPeak += r.SimultaneousPeak
				t.ContractedCapacity += r.ContractedCapacity
				t.ElectricityPurchased += r.ElectricityPurchased
			}
			out = append(out, t)
		}
	}
	return out
}
