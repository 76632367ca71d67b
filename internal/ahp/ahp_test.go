package ahp

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrioritiesTwoByTwo(t *testing.T) {
	p, err := Priorities(Matrix{{1, 3}, {1.0 / 3, 1}})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p[0], 1e-9)
	assert.InDelta(t, 0.25, p[1], 1e-9)
}

func TestPrioritiesIdentityPreference(t *testing.T) {
	p, err := Priorities(Matrix{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}})
	require.NoError(t, err)
	for i := range p {
		assert.InDelta(t, 1.0/3, p[i], 1e-9)
	}
}

func TestPrioritiesConsistentMatrix(t *testing.T) {
	w := []float64{0.5, 0.3, 0.2}
	m := make(Matrix, 3)
	for i := range m {
		m[i] = make([]float64, 3)
		for j := range m[i] {
			m[i][j] = w[i] / w[j]
		}
	}
	p, err := Priorities(m)
	require.NoError(t, err)
	for i := range w {
		assert.InDelta(t, w[i], p[i], 1e-9)
	}

	cr, err := ConsistencyRatio(m)
	require.NoError(t, err)
	assert.InDelta(t, 0, cr, 1e-9)
}

func TestPrioritiesRandomReciprocal(t *testing.T) {
	scale := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		n := 2 + trial%2
		m := make(Matrix, n)
		for i := range m {
			m[i] = make([]float64, n)
			m[i][i] = 1
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				v := scale[rng.Intn(len(scale))]
				if rng.Intn(2) == 0 {
					v = 1 / v
				}
				m[i][j], m[j][i] = v, 1/v
			}
		}

		p, err := Priorities(m)
		require.NoError(t, err)
		var sum float64
		for _, v := range p {
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1, sum, 1e-9, "matrix %v", m)
	}
}

func TestPrioritiesRejectsInvalidMatrix(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
	}{
		{"empty", Matrix{}},
		{"not square", Matrix{{1, 2}, {0.5}}},
		{"non-positive", Matrix{{1, 0}, {0, 1}}},
		{"bad diagonal", Matrix{{2, 1}, {1, 1}}},
		{"not reciprocal", Matrix{{1, 3}, {3, 1}}},
		{"nan", Matrix{{1, math.NaN()}, {1, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Priorities(tt.m)
			var me *MatrixError
			assert.True(t, errors.As(err, &me), "expected MatrixError, got %v", err)
		})
	}
}

func TestConsistencyRatioInconsistent(t *testing.T) {
	dso := DefaultBundles()[1]
	require.Equal(t, "DSO", dso.Stakeholder)

	cr, err := ConsistencyRatio(dso.Matrices[MatrixMain])
	require.NoError(t, err)
	assert.Greater(t, cr, 0.0)
	assert.Less(t, cr, 0.2)

	cr, err = ConsistencyRatio(dso.Matrices[MatrixEfficientGrid])
	require.NoError(t, err)
	assert.Zero(t, cr)
}

func TestExtractWeights(t *testing.T) {
	for _, b := range DefaultBundles() {
		t.Run(b.Stakeholder, func(t *testing.T) {
			w, err := ExtractWeights(b.Matrices[MatrixMain], b.Matrices[MatrixEfficientGrid], b.Matrices[MatrixPoliticalObjectives])
			require.NoError(t, err)
			require.Len(t, w.Values, 5)
			assert.NoError(t, w.Validate())
			assert.InDelta(t, 1, w.Sum(), 1e-9)

			main, _ := Priorities(b.Matrices[MatrixMain])
			eg, _ := Priorities(b.Matrices[MatrixEfficientGrid])
			po, _ := Priorities(b.Matrices[MatrixPoliticalObjectives])
			want := []float64{eg[0] * main[0], eg[1] * main[0], main[1], po[0] * main[2], po[1] * main[2]}
			for i := range want {
				assert.InDelta(t, want[i], w.Values[i], 1e-12, w.Criteria[i])
			}
		})
	}
}

func TestExtractWeightsPolitics(t *testing.T) {
	b := DefaultBundles()[2]
	w, err := FiveCriteriaTree().Weights(b)
	require.NoError(t, err)

	// Politics' main matrix is perfectly consistent: 1/11, 5/11, 5/11.
	fairness, ok := w.Get(CriterionFairness)
	require.True(t, ok)
	assert.InDelta(t, 5.0/11, fairness, 1e-9)

	usage, _ := w.Get(CriterionUsageRelated)
	assert.InDelta(t, 5.0/6/11, usage, 1e-9)

	der, _ := w.Get(CriterionDERExpansion)
	assert.InDelta(t, 0.75*5/11, der, 1e-9)
}

func TestFourCriteriaTree(t *testing.T) {
	b := DefaultBundles()[1]
	w, err := FourCriteriaTree().Weights(b)
	require.NoError(t, err)
	require.Equal(t, []string{CriterionEfficientGrid, CriterionFairness, CriterionDERExpansion, CriterionElectricityUsage}, w.Criteria)
	assert.InDelta(t, 1, w.Sum(), 1e-9)

	main, _ := Priorities(b.Matrices[MatrixMain])
	assert.InDelta(t, main[0], w.Values[0], 1e-12)
	_, hasEG := w.Consistency[MatrixEfficientGrid]
	assert.False(t, hasEG, "four-criteria tree must not use the Efficient Grid matrix")
}

func TestEqualWeights(t *testing.T) {
	four := FourCriteriaTree().EqualWeights("Equal Weights")
	assert.Equal(t, "Equal Weights", four.Stakeholder)
	want := []float64{1.0 / 3, 1.0 / 3, 1.0 / 6, 1.0 / 6}
	for i := range want {
		assert.InDelta(t, want[i], four.Values[i], 1e-12)
	}

	five := FiveCriteriaTree().EqualWeights("Equal Weights")
	want = []float64{1.0 / 6, 1.0 / 6, 1.0 / 3, 1.0 / 6, 1.0 / 6}
	for i := range want {
		assert.InDelta(t, want[i], five.Values[i], 1e-12)
	}
}

func TestWeightsMatrixSizeMismatch(t *testing.T) {
	b := Bundle{Stakeholder: "x", Matrices: map[string]Matrix{
		MatrixMain:                {{1, 2}, {0.5, 1}},
		MatrixPoliticalObjectives: {{1, 1}, {1, 1}},
	}}
	_, err := FourCriteriaTree().Weights(b)
	var me *MatrixError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, MatrixMain, me.Matrix)
}

func TestWeightsMissingMatrix(t *testing.T) {
	b := Bundle{Stakeholder: "x", Matrices: map[string]Matrix{MatrixMain: {{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}}}
	_, err := FourCriteriaTree().Weights(b)
	var me *MatrixError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, MatrixPoliticalObjectives, me.Matrix)
}

func TestRelativeWeights(t *testing.T) {
	w, err := RelativeWeights(FiveCriteriaTree(), DefaultBundles(), "Regulator")
	require.NoError(t, err)
	assert.Equal(t, "Regulator", w.Stakeholder)
	assert.NoError(t, w.Validate())

	_, err = RelativeWeights(FiveCriteriaTree(), DefaultBundles(), "Nobody")
	assert.Error(t, err)
}

func TestWeightVectorScale(t *testing.T) {
	w := FourCriteriaTree().EqualWeights("eq")
	s := w.Scale(2)
	assert.InDelta(t, 2, s.Sum(), 1e-12)
	assert.InDelta(t, 1, w.Sum(), 1e-12, "Scale must not modify the receiver")
}
