package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Effnets/internal/ahp"
	"github.com/MikeSquared-Agency/Effnets/internal/config"
	"github.com/MikeSquared-Agency/Effnets/internal/dataset"
	"github.com/MikeSquared-Agency/Effnets/internal/export"
	"github.com/MikeSquared-Agency/Effnets/internal/pvproxy"
	"github.com/MikeSquared-Agency/Effnets/internal/store"
)

// MockStore implements store.Store for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveRun(ctx context.Context, run *store.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockStore) Close() error { return nil }

// MockHermes implements hermes.Client for testing
type MockHermes struct {
	mock.Mock
}

func (m *MockHermes) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockHermes) Subscribe(subject string, handler func(string, []byte)) error {
	args := m.Called(subject, handler)
	return args.Error(0)
}

func (m *MockHermes) Close() {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rec(s, a, g int, share, cost, agg float64) dataset.Record {
	return dataset.Record{
		Scenario: s, Alternative: a, CustomerGroup: g,
		GroupShare: share, CostShare: cost,
		PeakShare: cost, CapacityShare: cost, EnergyShare: cost,
		ElectricityPurchased: agg, SimultaneousPeak: agg, ContractedCapacity: agg,
	}
}

func scenarioRecords(s int, scale float64) []dataset.Record {
	return []dataset.Record{
		rec(s, 1, 1, 0.5, 0.4, 100*scale),
		rec(s, 1, 2, 0.2, 0.2, 50*scale),
		rec(s, 1, 3, 0.3, 0.4, 50*scale),
		rec(s, 2, 1, 0.5, 0.3, 50*scale),
		rec(s, 2, 2, 0.2, 0.3, 25*scale),
		rec(s, 2, 3, 0.3, 0.4, 25*scale),
	}
}

func sampleDataset(t *testing.T, scenarios ...int) *dataset.Dataset {
	t.Helper()
	var records []dataset.Record
	for _, s := range scenarios {
		records = append(records, scenarioRecords(s, float64(s))...)
	}
	ds, err := dataset.New(records)
	require.NoError(t, err)
	return ds
}

func proxyTable() pvproxy.Table {
	return pvproxy.Table{
		pvproxy.PV:          {pvproxy.Volumetric: 0.2, pvproxy.MonthlyPeak: 0.1},
		pvproxy.PVBattery:   {pvproxy.Volumetric: 0.4, pvproxy.MonthlyPeak: 0.3},
		pvproxy.EVPV:        {pvproxy.Volumetric: 0.3, pvproxy.MonthlyPeak: 0.6},
		pvproxy.EVPVBattery: {pvproxy.Volumetric: 0.5, pvproxy.MonthlyPeak: 0.8},
	}
}

func testConfig(t *testing.T, nrScenarios int) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Analysis.NrScenarios = nrScenarios
	cfg.Analysis.NrAlternatives = 2
	cfg.Analysis.OutputDir = filepath.Join(t.TempDir(), "results")
	return cfg
}

func hasSuffix(suffix string) interface{} {
	return mock.MatchedBy(func(s string) bool { return strings.HasSuffix(s, suffix) })
}

func TestExecuteIsolatesFailures(t *testing.T) {
	cfg := testConfig(t, 3) // scenario 3 is not in the data
	st := &MockStore{}
	st.On("SaveRun", mock.Anything, mock.AnythingOfType("*store.Run")).Return(nil)
	h := &MockHermes{}
	h.On("Publish", mock.Anything, mock.Anything).Return(nil)

	r := NewRunner(cfg, st, h, discardLogger())
	bundles := append(ahp.DefaultBundles(), ahp.Bundle{Stakeholder: "Broken"})
	rep, err := r.Execute(context.Background(), Inputs{
		Dataset: sampleDataset(t, 1, 2),
		PVProxy: proxyTable(),
		Tree:    ahp.FiveCriteriaTree(),
		Bundles: bundles,
	})
	require.NoError(t, err)

	assert.Equal(t, store.RunPartial, rep.Status())
	assert.Equal(t, []string{EqualWeights, "Authority", "DSO", "Politics", "Regulator", "Third Party"}, rep.Stakeholders())
	require.Len(t, rep.Matrices, 2)
	assert.Equal(t, ahp.FiveCriteriaTree().Criteria(), rep.Criteria)

	var kinds []string
	for _, f := range rep.Failures {
		kinds = append(kinds, f.Kind)
	}
	assert.ElementsMatch(t, []string{FailWeights, FailScenario}, kinds)

	dso, ok := rep.Result("DSO")
	require.True(t, ok)
	assert.Equal(t, []string{"Scenario 1", "Scenario 2"}, dso.Scenarios)
	assert.Equal(t, []int{1, 2}, dso.Alternatives)

	require.NotNil(t, rep.Fairness)
	assert.Equal(t, []int{1, 2}, rep.Fairness.Scenarios)
	assert.InDelta(t, 0.5, rep.Fairness.Values[0][0], 1e-12)
	require.NotNil(t, rep.DERCostRatio)
	assert.Len(t, rep.Totals, 4)

	for _, name := range []string{export.EndRatingFile("Scenario 1"), export.IndicatorsFile, export.WeightsFile, export.FairnessFile} {
		_, err := os.Stat(filepath.Join(cfg.Analysis.OutputDir, name))
		assert.NoError(t, err, name)
	}

	assert.Same(t, rep, r.Latest())
	assert.Len(t, rep.Best()["DSO"], 2)

	st.AssertNumberOfCalls(t, "SaveRun", 1)
	saved := st.Calls[0].Arguments.Get(1).(*store.Run)
	assert.Equal(t, rep.RunID, saved.ID)
	assert.Equal(t, store.RunPartial, saved.Status)
	assert.Len(t, saved.Scores, 6*2*2)
	assert.Len(t, saved.Failures, 2)

	h.AssertCalled(t, "Publish", hasSuffix(".started"), mock.Anything)
	h.AssertCalled(t, "Publish", hasSuffix(".completed"), mock.Anything)
	h.AssertCalled(t, "Publish", hasSuffix(".failure"), mock.Anything)
}

func TestExecuteWithoutSinks(t *testing.T) {
	cfg := testConfig(t, 1)
	cfg.Analysis.OutputDir = ""
	cfg.Analysis.Hierarchy = "four"
	cfg.Analysis.DERStrategy = "cost_ratio_only"

	r := NewRunner(cfg, nil, nil, discardLogger())
	rep, err := r.Execute(context.Background(), Inputs{
		Dataset: sampleDataset(t, 1),
		Tree:    ahp.FourCriteriaTree(),
		Bundles: ahp.DefaultBundles(),
	})
	require.NoError(t, err)
	assert.Equal(t, store.RunCompleted, rep.Status())
	assert.Empty(t, rep.Outputs)
	assert.Equal(t, "cost_ratio_only", rep.DERStrategy)

	eq, ok := rep.Weighting(EqualWeights)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 6, 1.0 / 6}, eq.Values, 1e-12)

	w, err := r.ComputeWeights(ahp.DefaultBundles()[0])
	require.NoError(t, err)
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
}

func TestExecuteNothingRated(t *testing.T) {
	cfg := testConfig(t, 1)
	r := NewRunner(cfg, nil, nil, discardLogger())

	contrib := dataset.Contributions{
		{Scenario: 2, Alternative: 1}: dataset.DefaultBaseContribution(),
		{Scenario: 2, Alternative: 2}: dataset.DefaultBaseContribution(),
	}
	rep, err := r.Execute(context.Background(), Inputs{
		Dataset:       sampleDataset(t, 2),
		Contributions: contrib,
		PVProxy:       proxyTable(),
		Tree:          ahp.FiveCriteriaTree(),
		Bundles:       ahp.DefaultBundles(),
	})
	assert.True(t, errors.Is(err, ErrNothingRated))
	require.NotNil(t, rep)
	assert.Len(t, rep.Failures, 1)
	assert.Nil(t, r.Latest())

	_, err = r.ComputeWeights(ahp.DefaultBundles()[0])
	assert.Error(t, err)
}

func TestExecuteNeedsProxy(t *testing.T) {
	cfg := testConfig(t, 1)
	r := NewRunner(cfg, nil, nil, discardLogger())
	_, err := r.Execute(context.Background(), Inputs{
		Dataset: sampleDataset(t, 1),
		Tree:    ahp.FiveCriteriaTree(),
	})
	assert.Error(t, err)
}

func TestLoadInputs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.csv")
	var b strings.Builder
	b.WriteString(strings.Join(dataset.RequiredColumns, ",") + "\n")
	for _, r := range scenarioRecords(1, 1) {
		cols := []float64{float64(r.Scenario), float64(r.Alternative), float64(r.CustomerGroup),
			r.GroupShare, r.CostShare, r.PeakShare, r.CapacityShare, r.EnergyShare,
			r.ElectricityPurchased, r.SimultaneousPeak, r.ContractedCapacity}
		cells := make([]string, len(cols))
		for i, v := range cols {
			cells[i] = strconvFloat(v)
		}
		b.WriteString(strings.Join(cells, ",") + "\n")
	}
	require.NoError(t, os.WriteFile(input, []byte(b.String()), 0o644))

	cfg := testConfig(t, 1)
	cfg.Analysis.InputPath = input

	in, err := LoadInputs(cfg)
	require.NoError(t, err)
	assert.Equal(t, 6, in.Dataset.Len())
	assert.Len(t, in.Contributions, 2)
	assert.Nil(t, in.PVProxy)
	assert.Equal(t, ahp.FiveCriteriaTree().Criteria(), in.Tree.Criteria())
	assert.Len(t, in.Bundles, 5)

	c, err := in.Contributions.Get(1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.41, c.UsageRelated, 1e-12)

	cfg.Analysis.InputPath = filepath.Join(dir, "missing.csv")
	_, err = LoadInputs(cfg)
	assert.Error(t, err)
}

func strconvFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
