package indicators

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/MikeSquared-Agency/Effnets/internal/dataset"
)

// Reduction returns 1.5 − aggregate(a)/aggregate(reference) for every
// alternative 1..n, where aggregate sums f over all customer groups.
func (e *Engine) Reduction(scenario, n int, f dataset.Field) ([]float64, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	ref, err := e.ds.Sum(scenario, e.reference, f)
	if err != nil {
		return nil, err
	}
	if ref == 0 {
		return nil, &dataset.DataError{
			Key:    dataset.Key{Scenario: scenario, Alternative: e.reference},
			Reason: "reference aggregate " + f.String() + " is zero",
		}
	}

	out := make([]float64, n)
	for i, a := range alternatives(n) {
		agg, err := e.ds.Sum(scenario, a, f)
		if err != nil {
			return nil, err
		}
		out[i] = 1.5 - agg/ref
	}
	return out, nil
}

// UsageReduction is the relative reduction of the simultaneous peak.
func (e *Engine) UsageReduction(scenario, n int) ([]float64, error) {
	return e.Reduction(scenario, n, dataset.SimultaneousPeak)
}

// CapacityReduction is the relative reduction of contracted capacity.
func (e *Engine) CapacityReduction(scenario, n int) ([]float64, error) {
	return e.Reduction(scenario, n, dataset.ContractedCapacity)
}

// PurchasedReduction is the relative reduction of purchased electricity.
func (e *Engine) PurchasedReduction(scenario, n int) ([]float64, error) {
	return e.Reduction(scenario, n, dataset.ElectricityPurchased)
}

// reflection scores how well cost shares follow a cost driver across
// customer groups: Pearson correlation times the slope of driver on cost
// share folded into (0,1].
func reflection(key dataset.Key, costShare, driver []float64) (float64, error) {
	if len(costShare) < 2 {
		return 0, &dataset.DataError{Key: key, Reason: "reflection needs at least two customer groups"}
	}
	r := stat.Correlation(costShare, driver, nil)
	if math.IsNaN(r) {
		return 0, &dataset.DataError{Key: key, Reason: "cost share or cost driver is constant across groups"}
	}
	_, slope := stat.LinearRegression(costShare, driver, nil, false)
	if slope == 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, &dataset.DataError{Key: key, Reason: "cost driver slope is zero"}
	}
	b := math.Abs(slope)
	return r * math.Min(b, 1/b), nil
}

// ReflectionOfCosts measures how well cost shares follow the blended
// peak/capacity cost driver of each alternative.
func (e *Engine) ReflectionOfCosts(scenario, n int) ([]float64, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, a := range alternatives(n) {
		c, err := e.contrib.Get(scenario, a)
		if err != nil {
			return nil, err
		}
		cost, peak, capacity, err := e.columns(scenario, a, dataset.CostShare, dataset.PeakShare, dataset.CapacityShare)
		if err != nil {
			return nil, err
		}
		driver := make([]float64, len(peak))
		floats.ScaleTo(driver, c.UsageRelated, peak)
		floats.AddScaled(driver, c.CapacityRelated, capacity)

		v, err := reflection(dataset.Key{Scenario: scenario, Alternative: a}, cost, driver)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// reflectionOf is reflection(CostShare, f) for every alternative.
func (e *Engine) reflectionOf(scenario, n int, f dataset.Field) ([]float64, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, a := range alternatives(n) {
		cost, driver, _, err := e.columns(scenario, a, dataset.CostShare, f, f)
		if err != nil {
			return nil, err
		}
		v, err := reflection(dataset.Key{Scenario: scenario, Alternative: a}, cost, driver)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Engine) columns(scenario, alternative int, a, b, c dataset.Field) ([]float64, []float64, []float64, error) {
	x, err := e.ds.Column(scenario, alternative, a)
	if err != nil {
		return nil, nil, nil, err
	}
	y, err := e.ds.Column(scenario, alternative, b)
	if err != nil {
		return nil, nil, nil, err
	}
	z, err := e.ds.Column(scenario, alternative, c)
	if err != nil {
		return nil, nil, nil, err
	}
	return x, y, z, nil
}

func average(a, b []float64) []float64 {
	out := make([]float64, len(a))
	floats.AddTo(out, a, b)
	floats.Scale(0.5, out)
	return out
}
