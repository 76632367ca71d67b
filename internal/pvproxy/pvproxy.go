// Package pvproxy estimates how much a household saves on network charges
// by adopting PV (optionally with a battery, optionally alongside an EV)
// under each tariff alternative. The result feeds the DER expansion
// indicator as a precomputed table.
package pvproxy

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Configuration is a technology bundle a household could adopt.
type Configuration string

const (
	PV          Configuration = "PV"
	PVBattery   Configuration = "PV+Battery"
	EVPV        Configuration = "EV+PV"
	EVPVBattery Configuration = "EV+PV+Battery"
)

// Configurations lists every configuration in table order.
var Configurations = []Configuration{PV, PVBattery, EVPV, EVPVBattery}

// HasEV reports whether the configuration includes an electric vehicle.
func (c Configuration) HasEV() bool { return c == EVPV || c == EVPVBattery }

// HasBattery reports whether the configuration includes a home battery.
func (c Configuration) HasBattery() bool { return c == PVBattery || c == EVPVBattery }

// Tariff is a network tariff design. Values equal the alternative ids of the
// input table.
type Tariff int

const (
	Volumetric     Tariff = 1
	MonthlyPeak    Tariff = 2
	YearlyPeak     Tariff = 3
	CapacityTiered Tariff = 4
)

// Tariffs lists every tariff in alternative order.
var Tariffs = []Tariff{Volumetric, MonthlyPeak, YearlyPeak, CapacityTiered}

func (t Tariff) String() string {
	switch t {
	case Volumetric:
		return "Volumetric Tariff"
	case MonthlyPeak:
		return "Monthly Power Peak"
	case YearlyPeak:
		return "Yearly Power Peak"
	case CapacityTiered:
		return "Capacity Tariff"
	default:
		return fmt.Sprintf("Tariff %d", int(t))
	}
}

// ErrTierExceeded is returned when a peak is above the largest capacity tier.
var ErrTierExceeded = errors.New("peak exceeds largest capacity tier")

// DefaultTiers returns the contracted-capacity tiers in kVA, ascending.
func DefaultTiers() []float64 {
	tiers := []float64{3, 5, 7}
	for _, amps := range []float64{6, 10, 13, 16, 20, 25, 32, 35, 40, 50, 63} {
		tiers = append(tiers, amps*1.44)
	}
	sort.Float64s(tiers)
	return tiers
}

// Tier returns the smallest tier that covers peak.
func Tier(tiers []float64, peak float64) (float64, error) {
	i := sort.SearchFloat64s(tiers, peak)
	if i == len(tiers) {
		return 0, fmt.Errorf("%w: %.2f kVA", ErrTierExceeded, peak)
	}
	return tiers[i], nil
}

// Battery is a home battery run greedily for self-consumption.
type Battery struct {
	CapacityKWh float64 `yaml:"capacity_kwh"`
	PowerKW     float64 `yaml:"power_kw"`
	Efficiency  float64 `yaml:"efficiency"` // applied when charging
}

// Profiles are aligned average-power series in kW with a fixed step.
type Profiles struct {
	Start     time.Time
	Step      time.Duration
	Household []float64
	PV        []float64
	EV        []float64
}

func (p Profiles) validate() error {
	if p.Step <= 0 {
		return fmt.Errorf("profile step must be positive")
	}
	n := len(p.Household)
	if n == 0 {
		return fmt.Errorf("household profile is empty")
	}
	if len(p.PV) != n || len(p.EV) != n {
		return fmt.Errorf("profile lengths differ: household=%d pv=%d ev=%d", n, len(p.PV), len(p.EV))
	}
	return nil
}

// ResidualLoad returns the power drawn from the grid: load minus PV, with an
// optional battery shifting surplus into later deficits. Feed-in is clipped
// to zero.
func ResidualLoad(load, pv []float64, battery *Battery, step time.Duration) []float64 {
	hours := step.Hours()
	var soc float64
	out := make([]float64, len(load))
	for i := range load {
		net := load[i] - pv[i]
		if battery != nil {
			if net < 0 {
				charge := math.Min(-net, battery.PowerKW)
				if battery.Efficiency > 0 {
					charge = math.Min(charge, (battery.CapacityKWh-soc)/(hours*battery.Efficiency))
				} else {
					charge = 0
				}
				soc += charge * hours * battery.Efficiency
				net += charge
			} else {
				discharge := math.Min(net, math.Min(battery.PowerKW, soc/hours))
				soc -= discharge * hours
				net -= discharge
			}
		}
		out[i] = math.Max(net, 0)
	}
	return out
}

// Bills are the billing determinants of one load series.
type Bills struct {
	EnergyKWh    float64
	MonthlyPeaks float64 // sum over (year, month) of the monthly maximum
	YearlyPeak   float64
	Tier         float64
}

// Bill computes the billing determinants of a grid-load series.
func Bill(load []float64, start time.Time, step time.Duration, tiers []float64) (Bills, error) {
	if len(load) == 0 {
		return Bills{}, fmt.Errorf("empty load series")
	}
	b := Bills{
		EnergyKWh:  floats.Sum(load) * step.Hours(),
		YearlyPeak: floats.Max(load),
	}

	type month struct {
		year  int
		month time.Month
	}
	monthly := map[month]float64{}
	for i, v := range load {
		at := start.Add(time.Duration(i) * step)
		m := month{at.Year(), at.Month()}
		monthly[m] = math.Max(monthly[m], v)
	}
	for _, v := range monthly {
		b.MonthlyPeaks += v
	}

	tier, err := Tier(tiers, b.YearlyPeak)
	if err != nil {
		return Bills{}, err
	}
	b.Tier = tier
	return b, nil
}

// Charge returns the billing quantity a tariff charges for.
func (b Bills) Charge(t Tariff) float64 {
	switch t {
	case Volumetric:
		return b.EnergyKWh
	case MonthlyPeak:
		return b.MonthlyPeaks
	case YearlyPeak:
		return b.YearlyPeak
	case CapacityTiered:
		return b.Tier
	default:
		return 0
	}
}

// Settings parameterise the simulation.
type Settings struct {
	PVScale float64 // multiplier applied to the PV profile
	Battery Battery
	Tiers   []float64
}

// Simulate bills the household with and without each configuration and
// returns the relative reduction of the charged quantity per tariff. The
// reference for EV configurations is household plus EV without PV.
func Simulate(p Profiles, s Settings) (Table, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	tiers := s.Tiers
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}

	pv := make([]float64, len(p.PV))
	copy(pv, p.PV)
	floats.Scale(s.PVScale, pv)
	none := make([]float64, len(p.PV))

	withEV := make([]float64, len(p.Household))
	floats.AddTo(withEV, p.Household, p.EV)

	table := Table{}
	for _, c := range Configurations {
		load := p.Household
		if c.HasEV() {
			load = withEV
		}
		var battery *Battery
		if c.HasBattery() {
			b := s.Battery
			battery = &b
		}

		before, err := Bill(ResidualLoad(load, none, nil, p.Step), p.Start, p.Step, tiers)
		if err != nil {
			return nil, fmt.Errorf("%s reference: %w", c, err)
		}
		after, err := Bill(ResidualLoad(load, pv, battery, p.Step), p.Start, p.Step, tiers)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}

		table[c] = map[Tariff]float64{}
		for _, t := range Tariffs {
			base := before.Charge(t)
			if base == 0 {
				return nil, fmt.Errorf("%s under %s: reference charge is zero", c, t)
			}
			table[c][t] = (base - after.Charge(t)) / base
		}
	}
	return table, nil
}
