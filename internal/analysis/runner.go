// Package analysis drives one complete evaluation: weights for every
// stakeholder, indicator matrices for every scenario, score tables, and the
// export of all of it.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Effnets/internal/ahp"
	"github.com/MikeSquared-Agency/Effnets/internal/config"
	"github.com/MikeSquared-Agency/Effnets/internal/dataset"
	"github.com/MikeSquared-Agency/Effnets/internal/export"
	"github.com/MikeSquared-Agency/Effnets/internal/hermes"
	"github.com/MikeSquared-Agency/Effnets/internal/indicators"
	"github.com/MikeSquared-Agency/Effnets/internal/metrics"
	"github.com/MikeSquared-Agency/Effnets/internal/scoring"
	"github.com/MikeSquared-Agency/Effnets/internal/store"
)

// ErrNothingRated is returned when no weighting could rate any scenario.
var ErrNothingRated = errors.New("no scenario could be rated")

// Runner executes analysis runs and keeps the latest report. Store and
// hermes client are optional.
type Runner struct {
	cfg    *config.Config
	store  store.Store
	hermes hermes.Client
	logger *slog.Logger

	// serialises runs triggered from the API and from run requests
	runMu sync.Mutex

	mu     sync.RWMutex
	latest *Report
}

func NewRunner(cfg *config.Config, s store.Store, h hermes.Client, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, store: s, hermes: h, logger: logger}
}

// Latest returns the report of the last successful run, or nil.
func (r *Runner) Latest() *Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Run loads the configured inputs and executes them.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	in, err := LoadInputs(r.cfg)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("load inputs: %w", err)
	}
	return r.Execute(ctx, in)
}

// Execute evaluates in. Failures of single stakeholders or scenarios are
// recorded in the report; only a run that rates nothing returns an error.
func (r *Runner) Execute(ctx context.Context, in Inputs) (*Report, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if in.Dataset == nil || in.Tree == nil {
		return nil, errors.New("inputs need a dataset and a criteria tree")
	}
	a := r.cfg.Analysis
	rep := &Report{
		RunID:          uuid.New(),
		StartedAt:      time.Now().UTC(),
		Hierarchy:      a.Hierarchy,
		NrScenarios:    a.NrScenarios,
		NrAlternatives: a.NrAlternatives,
		tree:           in.Tree,
	}
	if a.CriteriaTreePath != "" {
		rep.Hierarchy = filepath.Base(a.CriteriaTreePath)
	}
	logger := r.logger.With("run_id", rep.RunID)

	der, err := indicators.ParseDERStrategy(a.DERStrategy)
	if err != nil {
		return nil, err
	}
	rep.DERStrategy = string(der)

	opts := []indicators.Option{
		indicators.WithReferenceAlternative(a.ReferenceAlternative),
		indicators.WithBaselineScenario(a.BaselineScenario),
		indicators.WithInflexibleGroup(a.InflexibleGroup),
		indicators.WithPVGroup(a.PVGroup),
		indicators.WithDERStrategy(der),
	}
	if in.Contributions != nil {
		opts = append(opts, indicators.WithContributions(in.Contributions))
	}
	if in.PVProxy != nil {
		opts = append(opts, indicators.WithPVProxy(in.PVProxy))
	}
	engine, err := indicators.New(in.Dataset, opts...)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("indicator engine: %w", err)
	}
	scorer := scoring.NewScorer(engine, in.Tree, logger)
	rep.Criteria = scorer.Criteria()

	r.publish(hermes.SubjectRunStarted(rep.RunID.String()), hermes.RunStartedEvent{
		RunID:          rep.RunID.String(),
		Hierarchy:      rep.Hierarchy,
		NrScenarios:    a.NrScenarios,
		NrAlternatives: a.NrAlternatives,
		Timestamp:      rep.StartedAt,
	})
	logger.Info("analysis started", "hierarchy", rep.Hierarchy, "der_strategy", der,
		"scenarios", a.NrScenarios, "alternatives", a.NrAlternatives, "stakeholders", len(in.Bundles))

	r.weigh(rep, in, logger)

	names := a.ScenarioNames
	if len(names) == 0 {
		names = scoring.ScenarioNames(a.NrScenarios)
	}
	var rated []string
	var scenarios []int
	for s := 1; s <= a.NrScenarios; s++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := scorer.PerformanceIndicators(s, a.NrAlternatives)
		if err != nil {
			r.recordFailure(rep, Failure{Kind: FailScenario, Scenario: s, Error: err.Error()}, logger)
			continue
		}
		for i, c := range m.Criteria {
			for j, alt := range m.Alternatives {
				metrics.RecordIndicator(s, c, alt, m.Values[i][j])
			}
		}
		rep.Matrices = append(rep.Matrices, m)
		rated = append(rated, names[s-1])
		scenarios = append(scenarios, s)
	}

	if len(rep.Matrices) > 0 {
		for _, w := range rep.Weights {
			t, err := scoring.Tabulate(rep.Matrices, rated, w)
			if err != nil {
				r.recordFailure(rep, Failure{Kind: FailResults, Stakeholder: w.Stakeholder, Error: err.Error()}, logger)
				continue
			}
			for i, alt := range t.Alternatives {
				for j, s := range t.Scenarios {
					metrics.RecordScore(t.Stakeholder, s, alt, t.Scores[i][j])
				}
			}
			rep.Results = append(rep.Results, t)
		}

		if t, err := engine.ScenarioTable(indicators.FairnessID, scenarios, a.NrAlternatives); err != nil {
			r.recordFailure(rep, Failure{Kind: FailDetail, Error: err.Error()}, logger)
		} else {
			rep.Fairness = &t
		}
		if t, err := engine.ScenarioTable(indicators.DERCostRatioID, scenarios, a.NrAlternatives); err != nil {
			r.recordFailure(rep, Failure{Kind: FailDetail, Error: err.Error()}, logger)
		} else {
			rep.DERCostRatio = &t
		}
	}
	rep.Totals = dataset.Totals(in.Dataset)

	if len(rep.Results) == 0 {
		rep.FinishedAt = time.Now().UTC()
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		logger.Error("analysis produced no results", "failures", len(rep.Failures))
		return rep, ErrNothingRated
	}

	if a.OutputDir != "" {
		paths, err := export.WriteAll(a.OutputDir, rep.exports())
		rep.Outputs = paths
		if err != nil {
			metrics.RunsTotal.WithLabelValues("failed").Inc()
			return rep, fmt.Errorf("export: %w", err)
		}
	}
	rep.FinishedAt = time.Now().UTC()

	if r.store != nil {
		if err := r.store.SaveRun(ctx, rep.Run()); err != nil {
			r.recordFailure(rep, Failure{Kind: FailStore, Error: err.Error()}, logger)
		}
	}

	duration := rep.FinishedAt.Sub(rep.StartedAt)
	metrics.RunDuration.Observe(duration.Seconds())
	metrics.RunsTotal.WithLabelValues(string(rep.Status())).Inc()

	outputs := make(map[string]string, len(rep.Outputs))
	for _, p := range rep.Outputs {
		outputs[filepath.Base(p)] = p
	}
	r.publish(hermes.SubjectRunCompleted(rep.RunID.String()), hermes.RunCompletedEvent{
		RunID:        rep.RunID.String(),
		Status:       string(rep.Status()),
		Stakeholders: rep.Stakeholders(),
		Best:         rep.Best(),
		Failures:     len(rep.Failures),
		DurationMs:   duration.Milliseconds(),
		Outputs:      outputs,
	})
	logger.Info("analysis finished", "status", rep.Status(), "results", len(rep.Results),
		"failures", len(rep.Failures), "outputs", len(rep.Outputs), "duration_ms", duration.Milliseconds())

	r.mu.Lock()
	r.latest = rep
	r.mu.Unlock()
	return rep, nil
}

// weigh computes equal weights plus one weight vector per bundle.
func (r *Runner) weigh(rep *Report, in Inputs, logger *slog.Logger) {
	rep.Weights = append(rep.Weights, in.Tree.EqualWeights(EqualWeights))
	for _, b := range in.Bundles {
		w, err := in.Tree.Weights(b)
		if err != nil {
			r.recordFailure(rep, Failure{Kind: FailWeights, Stakeholder: b.Stakeholder, Error: err.Error()}, logger)
			continue
		}
		for key, cr := range w.Consistency {
			metrics.ConsistencyRatio.WithLabelValues(b.Stakeholder, key).Set(cr)
		}
		if key, cr := w.MaxConsistencyRatio(); cr > r.cfg.Analysis.MaxConsistencyRatio {
			logger.Warn("inconsistent comparison matrix", "stakeholder", b.Stakeholder, "matrix", key, "consistency_ratio", cr)
		}
		rep.Weights = append(rep.Weights, w)
	}
}

// ComputeWeights weighs an ad-hoc bundle with the latest run's tree.
func (r *Runner) ComputeWeights(b ahp.Bundle) (ahp.WeightVector, error) {
	rep := r.Latest()
	if rep == nil || rep.tree == nil {
		return ahp.WeightVector{}, errors.New("no analysis has run yet")
	}
	return rep.tree.Weights(b)
}

func (r *Runner) recordFailure(rep *Report, f Failure, logger *slog.Logger) {
	rep.fail(f)
	metrics.FailuresTotal.WithLabelValues(f.Kind).Inc()
	logger.Error("analysis step failed", "kind", f.Kind, "stakeholder", f.Stakeholder, "scenario", f.Scenario, "error", f.Error)
	r.publish(hermes.SubjectRunFailure(rep.RunID.String()), hermes.RunFailureEvent{
		RunID:       rep.RunID.String(),
		Stakeholder: f.Stakeholder,
		Scenario:    f.Scenario,
		Error:       f.Kind + ": " + f.Error,
	})
}

func (r *Runner) publish(subject string, event interface{}) {
	if r.hermes == nil {
		return
	}
	if err := r.hermes.Publish(subject, event); err != nil {
		r.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
