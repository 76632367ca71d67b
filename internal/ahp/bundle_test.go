package ahp

import (
	"testing"
)

const bundlesYAML = `
stakeholders:
  - stakeholder: DSO
    matrices:
      Main:
        - [1, 7, 9]
        - [1/7, 1, 3]
        - [1/9, 1/3, 1]
      Efficient Grid:
        - [1, 1/5]
        - [5, 1]
      Political Objectives:
        - [1, 1]
        - [1, 1]
`

func TestParseBundles(t *testing.T) {
	bundles, err := ParseBundles([]byte(bundlesYAML))
	if err != nil {
		t.Fatalf("ParseBundles failed: %v", err)
	}
	if len(bundles) != 1 || bundles[0].Stakeholder != "DSO" {
		t.Fatalf("unexpected bundles %+v", bundles)
	}
	got := bundles[0].Matrices[MatrixMain][1][0]
	if got != 1.0/7 {
		t.Errorf("expected 1/7, got %v", got)
	}

	parsed, err := FiveCriteriaTree().Weights(bundles[0])
	if err != nil {
		t.Fatal(err)
	}
	builtin, _ := FiveCriteriaTree().Weights(DefaultBundles()[1])
	for i := range parsed.Values {
		if d := parsed.Values[i] - builtin.Values[i]; d > 1e-12 || d < -1e-12 {
			t.Errorf("%s: parsed %f, built-in %f", parsed.Criteria[i], parsed.Values[i], builtin.Values[i])
		}
	}
}

func TestParseBundlesRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad fraction", "stakeholders:\n  - stakeholder: A\n    matrices:\n      Main: [[1, 1/0], [1, 1]]\n"},
		{"not reciprocal", "stakeholders:\n  - stakeholder: A\n    matrices:\n      Main: [[1, 3], [3, 1]]\n"},
		{"no name", "stakeholders:\n  - matrices: {}\n"},
		{"duplicate", "stakeholders:\n  - stakeholder: A\n  - stakeholder: A\n"},
		{"row not a sequence", "stakeholders:\n  - stakeholder: A\n    matrices:\n      Main: [1, 2]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBundles([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

const fourTreeYAML = `
name: Tariff Design
matrix: Main
children:
  - name: Efficient Grid
    indicator: efficient_grid
  - name: Fairness and Customer Acceptance
    indicator: fairness
  - name: Political Objectives
    matrix: Political Objectives
    children:
      - name: Expansion of DER
        indicator: der_expansion
      - name: Efficient Electricity Usage
        indicator: electricity_usage
`

func TestParseTree(t *testing.T) {
	tree, err := ParseTree([]byte(fourTreeYAML))
	if err != nil {
		t.Fatalf("ParseTree failed: %v", err)
	}
	want := FourCriteriaTree().Leaves()
	got := tree.Leaves()
	if len(got) != len(want) {
		t.Fatalf("expected %d leaves, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("leaf %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseTreeRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"leaf root", "name: x\nindicator: fairness\n"},
		{"missing matrix", "name: x\nchildren:\n  - {name: a, indicator: fairness}\n  - {name: b, indicator: der_expansion}\n"},
		{"leaf without indicator", "name: x\nchildren:\n  - {name: a}\n"},
		{"duplicate leaf", "name: x\nmatrix: M\nchildren:\n  - {name: a, indicator: fairness}\n  - {name: a, indicator: fairness}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTree([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSingleChildCompositeNeedsNoMatrix(t *testing.T) {
	tree, err := NewTree(&Composite{Name: "root", Children: []Criterion{&Leaf{Name: "only", Indicator: "fairness"}}})
	if err != nil {
		t.Fatal(err)
	}
	w, err := tree.Weights(Bundle{Stakeholder: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Values) != 1 || w.Values[0] != 1 {
		t.Errorf("expected [1], got %v", w.Values)
	}
}

func TestTreeByName(t *testing.T) {
	if tr, err := TreeByName("four"); err != nil || len(tr.Leaves()) != 4 {
		t.Errorf("four: %v", err)
	}
	if tr, err := TreeByName("five"); err != nil || len(tr.Leaves()) != 5 {
		t.Errorf("five: %v", err)
	}
	if _, err := TreeByName("six"); err == nil {
		t.Error("expected error for unknown hierarchy")
	}
}
