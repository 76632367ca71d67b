package indicators

import (
	"fmt"
	"sort"
)

// Indicator ids referenced by criteria trees.
const (
	UsageRelatedCosts    = "usage_related_costs"
	CapacityRelatedCosts = "capacity_related_costs"
	EfficientGridID      = "efficient_grid"
	FairnessID           = "fairness"
	DERExpansionID       = "der_expansion"
	ElectricityUsageID   = "electricity_usage"
	ReflectionOfCostsID  = "reflection_of_costs"
	UsageReductionID     = "usage_reduction"
	CapacityReductionID  = "capacity_reduction"
	PurchasedReductionID = "purchased_reduction"
	DERCostRatioID       = "der_cost_ratio"
	DERProxyID           = "der_proxy"
)

// Func computes one indicator for alternatives 1..n of a scenario.
type Func func(e *Engine, scenario, n int) ([]float64, error)

var registry = map[string]Func{
	UsageRelatedCosts:    (*Engine).UsageRelated,
	CapacityRelatedCosts: (*Engine).CapacityRelated,
	EfficientGridID:      (*Engine).EfficientGrid,
	FairnessID:           (*Engine).Fairness,
	DERExpansionID:       (*Engine).DERExpansion,
	ElectricityUsageID:   (*Engine).ElectricityUsage,
	ReflectionOfCostsID:  (*Engine).ReflectionOfCosts,
	UsageReductionID:     (*Engine).UsageReduction,
	CapacityReductionID:  (*Engine).CapacityReduction,
	PurchasedReductionID: (*Engine).PurchasedReduction,
	DERCostRatioID:       (*Engine).DERCostRatio,
	DERProxyID:           (*Engine).DERProxy,
}

// Known reports whether id names a registered indicator.
func Known(id string) bool {
	_, ok := registry[id]
	return ok
}

// IDs returns every registered indicator id, sorted.
func IDs() []string {
	out := make([]string, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Compute evaluates the indicator registered under id.
func (e *Engine) Compute(id string, scenario, n int) ([]float64, error) {
	fn, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown indicator %q", id)
	}
	values, err := fn(e, scenario, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return values, nil
}
