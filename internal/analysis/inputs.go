package analysis

import (
	"fmt"

	"github.com/MikeSquared-Agency/Effnets/internal/ahp"
	"github.com/MikeSquared-Agency/Effnets/internal/config"
	"github.com/MikeSquared-Agency/Effnets/internal/dataset"
	"github.com/MikeSquared-Agency/Effnets/internal/pvproxy"
)

// Inputs are the fully materialised tables one run works on.
type Inputs struct {
	Dataset *dataset.Dataset

	// Contributions is nil when the engine should calibrate them.
	Contributions dataset.Contributions

	// PVProxy may be nil when the DER strategy does not need it.
	PVProxy pvproxy.Table

	Tree    *ahp.Tree
	Bundles []ahp.Bundle
}

// LoadInputs reads every input named in cfg. Unset optional paths fall back
// to calibration, simulation or the built-in tree and bundles.
func LoadInputs(cfg *config.Config) (Inputs, error) {
	a := cfg.Analysis
	var in Inputs

	ds, err := dataset.LoadCSV(a.InputPath)
	if err != nil {
		return Inputs{}, err
	}
	in.Dataset = ds

	if a.ContributionsPath != "" {
		c, err := dataset.LoadContributionsCSV(a.ContributionsPath)
		if err != nil {
			return Inputs{}, err
		}
		in.Contributions = c
	} else {
		base := dataset.Contribution{
			UsageRelated:    cfg.Calibration.UsageRelated,
			CapacityRelated: cfg.Calibration.CapacityRelated,
		}
		c, err := dataset.Calibrate(ds, base, a.BaselineScenario, a.ReferenceAlternative)
		if err != nil {
			return Inputs{}, fmt.Errorf("calibrate contributions: %w", err)
		}
		in.Contributions = c
	}

	switch {
	case a.PVProxyPath != "":
		t, err := pvproxy.LoadTable(a.PVProxyPath)
		if err != nil {
			return Inputs{}, err
		}
		in.PVProxy = t
	case cfg.PV.ProfilesPath != "":
		t, err := simulateProxy(cfg)
		if err != nil {
			return Inputs{}, err
		}
		in.PVProxy = t
	}

	if a.CriteriaTreePath != "" {
		in.Tree, err = ahp.LoadTree(a.CriteriaTreePath)
	} else {
		in.Tree, err = ahp.TreeByName(a.Hierarchy)
	}
	if err != nil {
		return Inputs{}, err
	}

	if a.BundlesPath != "" {
		in.Bundles, err = ahp.LoadBundles(a.BundlesPath)
		if err != nil {
			return Inputs{}, err
		}
	} else {
		in.Bundles = ahp.DefaultBundles()
	}
	return in, nil
}

func simulateProxy(cfg *config.Config) (pvproxy.Table, error) {
	start, err := cfg.PVStart()
	if err != nil {
		return nil, err
	}
	p, err := pvproxy.LoadProfiles(cfg.PV.ProfilesPath, start, cfg.PVStep())
	if err != nil {
		return nil, err
	}
	t, err := pvproxy.Simulate(p, pvproxy.Settings{
		PVScale: cfg.PV.PVScale,
		Battery: pvproxy.Battery{
			CapacityKWh: cfg.PV.Battery.CapacityKWh,
			PowerKW:     cfg.PV.Battery.PowerKW,
			Efficiency:  cfg.PV.Battery.Efficiency,
		},
		Tiers: cfg.PV.Tiers,
	})
	if err != nil {
		return nil, fmt.Errorf("simulate pv proxy: %w", err)
	}
	return t, nil
}
