package ahp

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Criterion is a node of a criteria hierarchy: either a Leaf or a Composite.
type Criterion interface {
	Label() string
	isCriterion()
}

// Leaf is a decision criterion scored by the indicator with the given id.
type Leaf struct {
	Name      string
	Indicator string
}

// Composite groups sub-criteria whose local weights come from the
// comparison matrix stored under Matrix in a stakeholder bundle. A
// composite with a single child needs no matrix.
type Composite struct {
	Name     string
	Matrix   string
	Children []Criterion
}

func (l *Leaf) Label() string      { return l.Name }
func (c *Composite) Label() string { return c.Name }
func (*Leaf) isCriterion()         {}
func (*Composite) isCriterion()    {}

// Tree is a validated criteria hierarchy.
type Tree struct {
	root   *Composite
	leaves []*Leaf
}

// NewTree validates root and indexes its leaves in depth-first order.
func NewTree(root *Composite) (*Tree, error) {
	t := &Tree{root: root}
	seen := map[string]bool{}
	if err := t.collect(root, seen); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) collect(c Criterion, seen map[string]bool) error {
	switch n := c.(type) {
	case *Leaf:
		if n.Name == "" || n.Indicator == "" {
			return fmt.Errorf("criteria tree: leaf %q needs a name and an indicator", n.Name)
		}
		if seen[n.Name] {
			return fmt.Errorf("criteria tree: duplicate criterion %q", n.Name)
		}
		seen[n.Name] = true
		t.leaves = append(t.leaves, n)
	case *Composite:
		if len(n.Children) == 0 {
			return fmt.Errorf("criteria tree: %q has no children", n.Name)
		}
		if len(n.Children) > 1 && n.Matrix == "" {
			return fmt.Errorf("criteria tree: %q needs a comparison matrix", n.Name)
		}
		for _, child := range n.Children {
			if err := t.collect(child, seen); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("criteria tree: unexpected node %T", c)
	}
	return nil
}

// Leaves returns the leaf criteria in weight-vector order.
func (t *Tree) Leaves() []Leaf {
	out := make([]Leaf, len(t.leaves))
	for i, l := range t.leaves {
		out[i] = *l
	}
	return out
}

// Criteria returns the leaf names in weight-vector order.
func (t *Tree) Criteria() []string {
	out := make([]string, len(t.leaves))
	for i, l := range t.leaves {
		out[i] = l.Name
	}
	return out
}

// Weights composes the bundle's local priorities down the hierarchy: the
// absolute weight of a child is its local priority times the absolute
// weight of its parent.
func (t *Tree) Weights(b Bundle) (WeightVector, error) {
	w := WeightVector{
		Stakeholder: b.Stakeholder,
		Criteria:    t.Criteria(),
		Consistency: map[string]float64{},
	}
	abs := map[string]float64{}
	err := t.walk(t.root, 1, abs, func(c *Composite) ([]float64, error) {
		m, ok := b.Matrices[c.Matrix]
		if !ok {
			return nil, &MatrixError{Matrix: c.Matrix, Reason: "missing from bundle " + b.Stakeholder}
		}
		if m.Size() != len(c.Children) {
			return nil, &MatrixError{Matrix: c.Matrix, Reason: fmt.Sprintf("size %d does not match %d sub-criteria of %q", m.Size(), len(c.Children), c.Name)}
		}
		p, err := Priorities(m)
		if err != nil {
			return nil, withName(err, c.Matrix)
		}
		cr, err := ConsistencyRatio(m)
		if err != nil {
			return nil, withName(err, c.Matrix)
		}
		w.Consistency[c.Matrix] = cr
		return p, nil
	})
	if err != nil {
		return WeightVector{}, err
	}
	w.Values = make([]float64, len(t.leaves))
	for i, l := range t.leaves {
		w.Values[i] = abs[l.Name]
	}
	return w, nil
}

// EqualWeights splits the weight equally among siblings at every level,
// which is what an all-ones comparison matrix would yield.
func (t *Tree) EqualWeights(label string) WeightVector {
	abs := map[string]float64{}
	_ = t.walk(t.root, 1, abs, func(c *Composite) ([]float64, error) {
		p := make([]float64, len(c.Children))
		for i := range p {
			p[i] = 1 / float64(len(p))
		}
		return p, nil
	})
	w := WeightVector{Stakeholder: label, Criteria: t.Criteria(), Values: make([]float64, len(t.leaves))}
	for i, l := range t.leaves {
		w.Values[i] = abs[l.Name]
	}
	return w
}

func (t *Tree) walk(c Criterion, weight float64, abs map[string]float64, local func(*Composite) ([]float64, error)) error {
	switch n := c.(type) {
	case *Leaf:
		abs[n.Name] = weight
	case *Composite:
		p := []float64{1}
		if len(n.Children) > 1 {
			var err error
			if p, err = local(n); err != nil {
				return err
			}
		}
		for i, child := range n.Children {
			if err := t.walk(child, weight*p[i], abs, local); err != nil {
				return err
			}
		}
	}
	return nil
}

func withName(err error, name string) error {
	if me, ok := err.(*MatrixError); ok && me.Matrix == "" {
		return &MatrixError{Matrix: name, Reason: me.Reason}
	}
	return err
}

// Criterion labels of the built-in hierarchies.
const (
	CriterionUsageRelated     = "Reflection of Usage-Related Costs"
	CriterionCapacityRelated  = "Reflection of Capacity-Related Costs"
	CriterionEfficientGrid    = "Efficient Grid"
	CriterionFairness         = "Fairness and Customer Acceptance"
	CriterionDERExpansion     = "Expansion of DER"
	CriterionElectricityUsage = "Efficient Electricity Usage"
)

// Matrix keys of the built-in hierarchies.
const (
	MatrixMain                = "Main"
	MatrixEfficientGrid       = "Efficient Grid"
	MatrixPoliticalObjectives = "Political Objectives"
)

// FiveCriteriaTree splits Efficient Grid into usage- and capacity-related
// cost reflection.
func FiveCriteriaTree() *Tree {
	t, _ := NewTree(&Composite{
		Name:   "Tariff Design",
		Matrix: MatrixMain,
		Children: []Criterion{
			&Composite{
				Name:   CriterionEfficientGrid,
				Matrix: MatrixEfficientGrid,
				Children: []Criterion{
					&Leaf{Name: CriterionUsageRelated, Indicator: "usage_related_costs"},
					&Leaf{Name: CriterionCapacityRelated, Indicator: "capacity_related_costs"},
				},
			},
			&Leaf{Name: CriterionFairness, Indicator: "fairness"},
			politicalObjectives(),
		},
	})
	return t
}

// FourCriteriaTree scores Efficient Grid as a single criterion.
func FourCriteriaTree() *Tree {
	t, _ := NewTree(&Composite{
		Name:   "Tariff Design",
		Matrix: MatrixMain,
		Children: []Criterion{
			&Leaf{Name: CriterionEfficientGrid, Indicator: "efficient_grid"},
			&Leaf{Name: CriterionFairness, Indicator: "fairness"},
			politicalObjectives(),
		},
	})
	return t
}

func politicalObjectives() *Composite {
	return &Composite{
		Name:   "Political Objectives",
		Matrix: MatrixPoliticalObjectives,
		Children: []Criterion{
			&Leaf{Name: CriterionDERExpansion, Indicator: "der_expansion"},
			&Leaf{Name: CriterionElectricityUsage, Indicator: "electricity_usage"},
		},
	}
}

// TreeByName returns a built-in hierarchy: "five" or "four".
func TreeByName(name string) (*Tree, error) {
	switch name {
	case "five", "":
		return FiveCriteriaTree(), nil
	case "four":
		return FourCriteriaTree(), nil
	default:
		return nil, fmt.Errorf("unknown criteria hierarchy %q", name)
	}
}

// NodeSpec is the YAML form of a criteria hierarchy.
type NodeSpec struct {
	Name      string     `yaml:"name"`
	Indicator string     `yaml:"indicator,omitempty"`
	Matrix    string     `yaml:"matrix,omitempty"`
	Children  []NodeSpec `yaml:"children,omitempty"`
}

func (s NodeSpec) build() Criterion {
	if len(s.Children) == 0 {
		return &Leaf{Name: s.Name, Indicator: s.Indicator}
	}
	c := &Composite{Name: s.Name, Matrix: s.Matrix}
	for _, child := range s.Children {
		c.Children = append(c.Children, child.build())
	}
	return c
}

// ParseTree builds a hierarchy from YAML. The root must have children.
func ParseTree(data []byte) (*Tree, error) {
	var spec NodeSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse criteria tree: %w", err)
	}
	root, ok := spec.build().(*Composite)
	if !ok {
		return nil, fmt.Errorf("criteria tree: root %q has no children", spec.Name)
	}
	return NewTree(root)
}

// LoadTree reads a hierarchy from a YAML file.
func LoadTree(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read criteria tree: %w", err)
	}
	return ParseTree(data)
}
