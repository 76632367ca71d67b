package ahp

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bundle holds one stakeholder's comparison matrices keyed by the matrix
// names used in a criteria tree.
type Bundle struct {
	Stakeholder string            `yaml:"stakeholder" json:"stakeholder"`
	Matrices    map[string]Matrix `yaml:"matrices" json:"matrices"`
}

// UnmarshalYAML accepts judgments written as numbers or fractions ("1/7").
func (m *Matrix) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: comparison matrix must be a sequence of rows", value.Line)
	}
	out := make(Matrix, len(value.Content))
	for i, row := range value.Content {
		if row.Kind != yaml.SequenceNode {
			return fmt.Errorf("line %d: matrix row must be a sequence", row.Line)
		}
		out[i] = make([]float64, len(row.Content))
		for j, cell := range row.Content {
			v, err := parseJudgment(cell.Value)
			if err != nil {
				return fmt.Errorf("line %d: %w", cell.Line, err)
			}
			out[i][j] = v
		}
	}
	*m = out
	return nil
}

func parseJudgment(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid judgment %q", s)
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("invalid judgment %q", s)
		}
		return n / d, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid judgment %q", s)
	}
	return v, nil
}

type bundleFile struct {
	Stakeholders []Bundle `yaml:"stakeholders"`
}

// ParseBundles reads stakeholder bundles from YAML and validates every
// matrix.
func ParseBundles(data []byte) ([]Bundle, error) {
	var f bundleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stakeholder bundles: %w", err)
	}
	seen := map[string]bool{}
	for _, b := range f.Stakeholders {
		if b.Stakeholder == "" {
			return nil, fmt.Errorf("stakeholder bundle without a name")
		}
		if seen[b.Stakeholder] {
			return nil, fmt.Errorf("duplicate stakeholder bundle %q", b.Stakeholder)
		}
		seen[b.Stakeholder] = true
		for key, m := range b.Matrices {
			if err := m.Validate(); err != nil {
				return nil, fmt.Errorf("stakeholder %s: %w", b.Stakeholder, withName(err, key))
			}
		}
	}
	return f.Stakeholders, nil
}

// LoadBundles reads stakeholder bundles from a YAML file.
func LoadBundles(path string) ([]Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stakeholder bundles: %w", err)
	}
	return ParseBundles(data)
}

// DefaultBundles returns the expert judgments collected from the five
// stakeholder representatives.
func DefaultBundles() []Bundle {
	return []Bundle{
		{
			Stakeholder: "Authority",
			Matrices: map[string]Matrix{
				MatrixMain: {
					{1, 6, 5},
					{1.0 / 6, 1, 2},
					{1.0 / 5, 1.0 / 2, 1},
				},
				MatrixEfficientGrid:       {{1, 3}, {1.0 / 3, 1}},
				MatrixPoliticalObjectives: {{1, 1.0 / 4}, {4, 1}},
			},
		},
		{
			Stakeholder: "DSO",
			Matrices: map[string]Matrix{
				MatrixMain: {
					{1, 7, 9},
					{1.0 / 7, 1, 3},
					{1.0 / 9, 1.0 / 3, 1},
				},
				MatrixEfficientGrid:       {{1, 1.0 / 5}, {5, 1}},
				MatrixPoliticalObjectives: {{1, 1}, {1, 1}},
			},
		},
		{
			Stakeholder: "Politics",
			Matrices: map[string]Matrix{
				MatrixMain: {
					{1, 1.0 / 5, 1.0 / 5},
					{5, 1, 1},
					{5, 1, 1},
				},
				MatrixEfficientGrid:       {{1, 5}, {1.0 / 5, 1}},
				MatrixPoliticalObjectives: {{1, 3}, {1.0 / 3, 1}},
			},
		},
		{
			Stakeholder: "Regulator",
			Matrices: map[string]Matrix{
				MatrixMain: {
					{1, 9, 7},
					{1.0 / 9, 1, 2},
					{1.0 / 7, 1.0 / 2, 1},
				},
				MatrixEfficientGrid:       {{1, 1.0 / 7}, {7, 1}},
				MatrixPoliticalObjectives: {{1, 1}, {1, 1}},
			},
		},
		{
			Stakeholder: "Third Party",
			Matrices: map[string]Matrix{
				MatrixMain: {
					{1, 5, 1},
					{1.0 / 5, 1, 1.0 / 5},
					{1, 5, 1},
				},
				MatrixEfficientGrid:       {{1, 5}, {1.0 / 5, 1}},
				MatrixPoliticalObjectives: {{1, 1.0 / 3}, {3, 1}},
			},
		},
	}
}
