// Package export writes analysis results as flat CSV tables.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/MikeSquared-Agency/Effnets/internal/ahp"
	"github.com/MikeSquared-Agency/Effnets/internal/dataset"
	"github.com/MikeSquared-Agency/Effnets/internal/indicators"
	"github.com/MikeSquared-Agency/Effnets/internal/scoring"
)

// File names inside the output directory.
const (
	IndicatorsFile = "resultmatrix.csv"
	WeightsFile    = "weighting.csv"
	EndResultsFile = "endresults.csv"
	FairnessFile   = "fairness.csv"
	DERFile        = "pvrentability.csv"
	TotalsFile     = "values.csv"
)

var errNothing = errors.New("nothing to write")

// EndRatingFile names the per-scenario comparison of every weighting.
func EndRatingFile(scenario string) string {
	return fmt.Sprintf("end_rating_%s.csv", scenario)
}

// Outputs is everything one run exports. Empty parts are skipped.
type Outputs struct {
	Weights      []ahp.WeightVector
	Matrices     []indicators.Matrix
	Results      []scoring.ScoreTable
	Fairness     *indicators.ScenarioTable
	DERCostRatio *indicators.ScenarioTable
	Totals       []dataset.Total
}

// WriteAll writes every non-empty part of out into dir and returns the
// paths written.
func WriteAll(dir string, out Outputs) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		if err := writeFile(path, fn); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	if len(out.Results) > 0 {
		for _, scenario := range out.Results[0].Scenarios {
			if err := write(EndRatingFile(scenario), func(w io.Writer) error {
				return WriteEndRating(w, out.Results, scenario)
			}); err != nil {
				return written, err
			}
		}
		if err := write(EndResultsFile, func(w io.Writer) error { return WriteEndResults(w, out.Results) }); err != nil {
			return written, err
		}
	}
	if len(out.Matrices) > 0 {
		if err := write(IndicatorsFile, func(w io.Writer) error { return WriteMatrices(w, out.Matrices) }); err != nil {
			return written, err
		}
	}
	if len(out.Weights) > 0 {
		if err := write(WeightsFile, func(w io.Writer) error { return WriteWeights(w, out.Weights) }); err != nil {
			return written, err
		}
	}
	if out.Fairness != nil {
		if err := write(FairnessFile, func(w io.Writer) error { return WriteScenarioTable(w, *out.Fairness) }); err != nil {
			return written, err
		}
	}
	if out.DERCostRatio != nil {
		if err := write(DERFile, func(w io.Writer) error { return WriteScenarioTable(w, *out.DERCostRatio) }); err != nil {
			return written, err
		}
	}
	if len(out.Totals) > 0 {
		if err := write(TotalsFile, func(w io.Writer) error { return WriteTotals(w, out.Totals) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteEndRating writes one scenario's scores with one column per
// weighting, in the order of results.
func WriteEndRating(w io.Writer, results []scoring.ScoreTable, scenario string) error {
	if len(results) == 0 {
		return errNothing
	}
	cw := csv.NewWriter(w)
	header := []string{"Alternative"}
	columns := make([][]float64, len(results))
	for i, t := range results {
		col, err := t.Scenario(scenario)
		if err != nil {
			return err
		}
		header = append(header, t.Stakeholder)
		columns[i] = col
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for a, alt := range results[0].Alternatives {
		row := []string{strconv.Itoa(alt)}
		for _, col := range columns {
			row = append(row, formatFloat(col[a]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return flush(cw)
}

// WriteEndResults stacks every score table: one row per stakeholder and
// alternative, one column per scenario.
func WriteEndResults(w io.Writer, results []scoring.ScoreTable) error {
	if len(results) == 0 {
		return errNothing
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Stakeholder", "Alternative"}, results[0].Scenarios...)); err != nil {
		return err
	}
	for _, t := range results {
		for a, alt := range t.Alternatives {
			row := []string{t.Stakeholder, strconv.Itoa(alt)}
			for _, v := range t.Scores[a] {
				row = append(row, formatFloat(v))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	return flush(cw)
}

// WriteMatrices writes indicator matrices: one row per scenario and
// criterion, one column per alternative.
func WriteMatrices(w io.Writer, matrices []indicators.Matrix) error {
	if len(matrices) == 0 {
		return errNothing
	}
	cw := csv.NewWriter(w)
	header := []string{"Scenario", "Criterion"}
	for _, a := range matrices[0].Alternatives {
		header = append(header, "Alternative "+strconv.Itoa(a))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, m := range matrices {
		for i, c := range m.Criteria {
			row := []string{strconv.Itoa(m.Scenario), c}
			for _, v := range m.Values[i] {
				row = append(row, formatFloat(v))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	return flush(cw)
}

// WriteWeights writes one row per weighting, one column per criterion.
func WriteWeights(w io.Writer, weights []ahp.WeightVector) error {
	if len(weights) == 0 {
		return errNothing
	}
	cw := csv.NewWriter(w)
	criteria := weights[0].Criteria
	if err := cw.Write(append([]string{"Stakeholder"}, criteria...)); err != nil {
		return err
	}
	for _, wv := range weights {
		row := []string{wv.Stakeholder}
		for _, c := range criteria {
			v, ok := wv.Get(c)
			if !ok {
				return fmt.Errorf("weighting %s has no criterion %q", wv.Stakeholder, c)
			}
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return flush(cw)
}

// WriteScenarioTable writes one indicator with one row per scenario.
func WriteScenarioTable(w io.Writer, t indicators.ScenarioTable) error {
	cw := csv.NewWriter(w)
	header := []string{"Scenario"}
	for _, a := range t.Alternatives {
		header = append(header, "Alternative "+strconv.Itoa(a))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, s := range t.Scenarios {
		row := []string{strconv.Itoa(s)}
		for _, v := range t.Values[i] {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return flush(cw)
}

// WriteTotals writes the aggregated values of every (scenario, alternative)
// pair.
func WriteTotals(w io.Writer, totals []dataset.Total) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Scenario", "Alternative", "Aggregated Peak", "Contracted Capacity", "Electricity Purchased"}); err != nil {
		return err
	}
	for _, t := range totals {
		if err := cw.Write([]string{
			strconv.Itoa(t.Scenario),
			strconv.Itoa(t.Alternative),
			formatFloat(t.SimultaneousPeak),
			formatFloat(t.ContractedCapacity),
			formatFloat(t.ElectricityPurchased),
		}); err != nil {
			return err
		}
	}
	return flush(cw)
}

func flush(cw *csv.Writer) error {
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
