package indicators

import (
	"fmt"
	"sort"

	"github.com/MikeSquared-Agency/Effnets/internal/dataset"
	"github.com/MikeSquared-Agency/Effnets/internal/pvproxy"
)

// EfficientGrid is 0.5 × (ReflectionOfCosts + ur × UsageReduction +
// cr × CapacityReduction) with the pair's cost contributions ur and cr.
func (e *Engine) EfficientGrid(scenario, n int) ([]float64, error) {
	roc, err := e.ReflectionOfCosts(scenario, n)
	if err != nil {
		return nil, err
	}
	usage, err := e.UsageReduction(scenario, n)
	if err != nil {
		return nil, err
	}
	capacity, err := e.CapacityReduction(scenario, n)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i, a := range alternatives(n) {
		c, err := e.contrib.Get(scenario, a)
		if err != nil {
			return nil, err
		}
		out[i] = 0.5 * (roc[i] + c.UsageRelated*usage[i] + c.CapacityRelated*capacity[i])
	}
	return out, nil
}

// UsageRelated is the average of how well cost shares follow peak shares
// and the simultaneous-peak reduction.
func (e *Engine) UsageRelated(scenario, n int) ([]float64, error) {
	fit, err := e.reflectionOf(scenario, n, dataset.PeakShare)
	if err != nil {
		return nil, err
	}
	red, err := e.UsageReduction(scenario, n)
	if err != nil {
		return nil, err
	}
	return average(fit, red), nil
}

// CapacityRelated is the average of how well cost shares follow capacity
// shares and the contracted-capacity reduction.
func (e *Engine) CapacityRelated(scenario, n int) ([]float64, error) {
	fit, err := e.reflectionOf(scenario, n, dataset.CapacityShare)
	if err != nil {
		return nil, err
	}
	red, err := e.CapacityReduction(scenario, n)
	if err != nil {
		return nil, err
	}
	return average(fit, red), nil
}

// ElectricityUsage is the average of how well cost shares follow energy
// shares and the purchased-electricity reduction.
func (e *Engine) ElectricityUsage(scenario, n int) ([]float64, error) {
	fit, err := e.reflectionOf(scenario, n, dataset.EnergyShare)
	if err != nil {
		return nil, err
	}
	red, err := e.PurchasedReduction(scenario, n)
	if err != nil {
		return nil, err
	}
	return average(fit, red), nil
}

// RelativeCostShare is CostShare / GroupShare of one record.
func (e *Engine) RelativeCostShare(scenario, alternative, group int) (float64, error) {
	r, err := e.ds.Lookup(scenario, alternative, group)
	if err != nil {
		return 0, err
	}
	if r.GroupShare == 0 {
		return 0, &dataset.DataError{Key: r.Key(), Reason: "group share is zero"}
	}
	return r.CostShare / r.GroupShare, nil
}

// baselineShare is the relative cost share of group in the baseline
// scenario under the reference alternative. It must be non-zero.
func (e *Engine) baselineShare(group int) (float64, error) {
	base, err := e.RelativeCostShare(e.baselineScenario, e.reference, group)
	if err != nil {
		return 0, err
	}
	if base == 0 {
		return 0, &dataset.DataError{
			Key:    dataset.Key{Scenario: e.baselineScenario, Alternative: e.reference, CustomerGroup: group},
			Reason: "baseline relative cost share is zero",
		}
	}
	return base, nil
}

// Fairness is 1.5 − rcs/baseline for the inflexible customer group, with
// the baseline taken from the baseline scenario and reference alternative.
func (e *Engine) Fairness(scenario, n int) ([]float64, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	base, err := e.baselineShare(e.inflexibleGroup)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, a := range alternatives(n) {
		rcs, err := e.RelativeCostShare(scenario, a, e.inflexibleGroup)
		if err != nil {
			return nil, err
		}
		out[i] = 1.5 - rcs/base
	}
	return out, nil
}

// DERExpansion scores the incentive to adopt distributed energy resources
// with the configured strategy.
func (e *Engine) DERExpansion(scenario, n int) ([]float64, error) {
	switch e.der {
	case DERCostRatioOnly:
		return e.DERCostRatio(scenario, n)
	case DERProxyOnly:
		return e.DERProxy(scenario, n)
	default:
		ratio, err := e.DERCostRatio(scenario, n)
		if err != nil {
			return nil, err
		}
		proxy, err := e.DERProxy(scenario, n)
		if err != nil {
			return nil, err
		}
		return average(ratio, proxy), nil
	}
}

// DERCostRatio compares the PV group's relative cost share with the
// inflexible group's, each against its own baseline:
// 1.5 − (rcs_pv/base_pv) / (rcs_inflexible/base_inflexible).
func (e *Engine) DERCostRatio(scenario, n int) ([]float64, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	basePV, err := e.baselineShare(e.pvGroup)
	if err != nil {
		return nil, err
	}
	baseInflexible, err := e.baselineShare(e.inflexibleGroup)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i, a := range alternatives(n) {
		pv, err := e.RelativeCostShare(scenario, a, e.pvGroup)
		if err != nil {
			return nil, err
		}
		inflexible, err := e.RelativeCostShare(scenario, a, e.inflexibleGroup)
		if err != nil {
			return nil, err
		}
		if inflexible == 0 {
			return nil, &dataset.DataError{
				Key:    dataset.Key{Scenario: scenario, Alternative: a, CustomerGroup: e.inflexibleGroup},
				Reason: "relative cost share is zero",
			}
		}
		out[i] = 1.5 - (pv/basePV)/(inflexible/baseInflexible)
	}
	return out, nil
}

// DERProxy is savings(a)/savings(reference) − 0.5, where savings weighs the
// PV proxy reductions of each adopter group's configurations by the group's
// share of the adopting population.
func (e *Engine) DERProxy(scenario, n int) ([]float64, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	if e.pv == nil {
		return nil, fmt.Errorf("no PV proxy table configured")
	}
	ref, err := e.Savings(scenario, e.reference)
	if err != nil {
		return nil, err
	}
	// A non-positive reference would flip or blow up the ratio.
	if ref <= 0 {
		return nil, &dataset.DataError{
			Key:    dataset.Key{Scenario: scenario, Alternative: e.reference},
			Reason: fmt.Sprintf("reference PV savings must be positive, got %v", ref),
		}
	}
	out := make([]float64, n)
	for i, a := range alternatives(n) {
		s, err := e.Savings(scenario, a)
		if err != nil {
			return nil, err
		}
		out[i] = s/ref - 0.5
	}
	return out, nil
}

// Savings is the population-weighted PV proxy reduction a newly adopting
// customer could expect under alternative's tariff.
func (e *Engine) Savings(scenario, alternative int) (float64, error) {
	var total, weighted float64
	for _, g := range sortedGroups(e.adopters) {
		r, err := e.ds.Lookup(scenario, alternative, g)
		if err != nil {
			return 0, err
		}
		var mean float64
		configs := e.adopters[g]
		for _, c := range configs {
			v, err := e.pv.Get(c, pvproxy.Tariff(alternative))
			if err != nil {
				return 0, &dataset.DataError{Key: r.Key(), Reason: err.Error()}
			}
			mean += v / float64(len(configs))
		}
		total += r.GroupShare
		weighted += r.GroupShare * mean
	}
	if total == 0 {
		return 0, &dataset.DataError{
			Key:    dataset.Key{Scenario: scenario, Alternative: alternative},
			Reason: "adopter group shares sum to zero",
		}
	}
	return weighted / total, nil
}

func sortedGroups(m map[int][]pvproxy.Configuration) []int {
	out := make([]int, 0, len(m))
	for g := range m {
		out = append(out, g)
	}
	sort.Ints(out)
	return out
}
