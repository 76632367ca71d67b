// Package indicators computes the per-alternative decision criteria of one
// scenario from the immutable dataset. All values use the 1.5-centred
// relative-reduction form: the reference alternative scores 0.5.
package indicators

import (
	"fmt"

	"github.com/MikeSquared-Agency/Effnets/internal/dataset"
	"github.com/MikeSquared-Agency/Effnets/internal/pvproxy"
)

// DERStrategy selects how the Expansion of DER criterion is computed.
type DERStrategy string

const (
	DERBlended       DERStrategy = "blended"
	DERProxyOnly     DERStrategy = "proxy_only"
	DERCostRatioOnly DERStrategy = "cost_ratio_only"
)

// ParseDERStrategy maps a config value to a strategy. Empty means blended.
func ParseDERStrategy(s string) (DERStrategy, error) {
	switch DERStrategy(s) {
	case "", DERBlended:
		return DERBlended, nil
	case DERProxyOnly, DERCostRatioOnly:
		return DERStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown DER strategy %q", s)
	}
}

func (s DERStrategy) needsProxy() bool { return s != DERCostRatioOnly }

// Engine evaluates indicators over one dataset.
type Engine struct {
	ds      *dataset.Dataset
	contrib dataset.Contributions
	pv      pvproxy.Table

	reference        int
	baselineScenario int
	inflexibleGroup  int
	pvGroup          int
	adopters         map[int][]pvproxy.Configuration
	der              DERStrategy
}

// Option configures an Engine.
type Option func(*Engine)

// WithReferenceAlternative sets the alternative every reduction is measured
// against.
func WithReferenceAlternative(a int) Option { return func(e *Engine) { e.reference = a } }

// WithBaselineScenario sets the scenario holding the fairness and DER
// baselines.
func WithBaselineScenario(s int) Option { return func(e *Engine) { e.baselineScenario = s } }

// WithInflexibleGroup sets the customer group used by Fairness.
func WithInflexibleGroup(g int) Option { return func(e *Engine) { e.inflexibleGroup = g } }

// WithPVGroup sets the customer group that already owns PV.
func WithPVGroup(g int) Option { return func(e *Engine) { e.pvGroup = g } }

// WithAdopters maps customer groups that could newly adopt DER to the
// configurations they would choose between.
func WithAdopters(adopters map[int][]pvproxy.Configuration) Option {
	return func(e *Engine) { e.adopters = adopters }
}

// WithDERStrategy selects the Expansion of DER strategy.
func WithDERStrategy(s DERStrategy) Option { return func(e *Engine) { e.der = s } }

// WithContributions supplies a precomputed cost-contribution table. Without
// it the engine calibrates one from the dataset.
func WithContributions(c dataset.Contributions) Option { return func(e *Engine) { e.contrib = c } }

// WithPVProxy supplies the PV cost-reduction proxy table.
func WithPVProxy(t pvproxy.Table) Option { return func(e *Engine) { e.pv = t } }

// DefaultAdopters returns the inflexible group choosing between PV and
// PV+Battery and the EV group choosing between EV+PV and EV+PV+Battery.
func DefaultAdopters() map[int][]pvproxy.Configuration {
	return map[int][]pvproxy.Configuration{
		1: {pvproxy.PV, pvproxy.PVBattery},
		3: {pvproxy.EVPV, pvproxy.EVPVBattery},
	}
}

// New builds an engine. The dataset is only read.
func New(ds *dataset.Dataset, opts ...Option) (*Engine, error) {
	if ds == nil {
		return nil, fmt.Errorf("indicators: nil dataset")
	}
	e := &Engine{
		ds:               ds,
		reference:        1,
		baselineScenario: 1,
		inflexibleGroup:  1,
		pvGroup:          2,
		adopters:         DefaultAdopters(),
		der:              DERBlended,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.contrib == nil {
		c, err := dataset.Calibrate(ds, dataset.DefaultBaseContribution(), e.baselineScenario, e.reference)
		if err != nil {
			return nil, fmt.Errorf("calibrate cost contributions: %w", err)
		}
		e.contrib = c
	} else if err := e.contrib.Validate(); err != nil {
		return nil, err
	}
	if e.der.needsProxy() && e.pv == nil {
		return nil, fmt.Errorf("DER strategy %s needs a PV proxy table", e.der)
	}
	return e, nil
}

// Contributions returns the cost-contribution table in use.
func (e *Engine) Contributions() dataset.Contributions { return e.contrib }

// Dataset returns the dataset the engine reads.
func (e *Engine) Dataset() *dataset.Dataset { return e.ds }

func alternatives(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func checkCount(n int) error {
	if n < 1 {
		return fmt.Errorf("number of alternatives must be positive, got %d", n)
	}
	return nil
}
