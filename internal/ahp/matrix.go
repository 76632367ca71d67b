package ahp

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ReciprocalTolerance bounds |a_ij*a_ji - 1| and |a_ii - 1|. Judgments
// rounded to three decimals (0.143 for 1/7) are accepted.
const ReciprocalTolerance = 1e-2

// Matrix is a pairwise comparison matrix: entry (i,j) states how much more
// important criterion i is than criterion j.
type Matrix [][]float64

// MatrixError reports a comparison matrix that cannot be used for weighting.
type MatrixError struct {
	Matrix string
	Reason string
}

func (e *MatrixError) Error() string {
	if e.Matrix == "" {
		return "matrix: " + e.Reason
	}
	return fmt.Sprintf("matrix %q: %s", e.Matrix, e.Reason)
}

// Size returns N for an N×N matrix.
func (m Matrix) Size() int { return len(m) }

// Validate checks that m is square, strictly positive, has a unit diagonal
// and is reciprocal within ReciprocalTolerance.
func (m Matrix) Validate() error {
	n := len(m)
	if n == 0 {
		return &MatrixError{Reason: "empty"}
	}
	for i, row := range m {
		if len(row) != n {
			return &MatrixError{Reason: fmt.Sprintf("not square: row %d has %d entries, want %d", i, len(row), n)}
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return &MatrixError{Reason: fmt.Sprintf("entry (%d,%d)=%v is not a positive number", i, j, v)}
			}
		}
	}
	for i := 0; i < n; i++ {
		if math.Abs(m[i][i]-1) > ReciprocalTolerance {
			return &MatrixError{Reason: fmt.Sprintf("diagonal entry (%d,%d)=%v, want 1", i, i, m[i][i])}
		}
		for j := i + 1; j < n; j++ {
			if math.Abs(m[i][j]*m[j][i]-1) > ReciprocalTolerance {
				return &MatrixError{Reason: fmt.Sprintf("entries (%d,%d)=%v and (%d,%d)=%v are not reciprocal", i, j, m[i][j], j, i, m[j][i])}
			}
		}
	}
	return nil
}

// Priorities returns the normalised principal eigenvector of m: one
// non-negative weight per criterion, summing to 1.
func Priorities(m Matrix) ([]float64, error) {
	p, _, err := principal(m)
	return p, err
}

// randomIndex holds Saaty's random consistency indices by matrix size.
var randomIndex = map[int]float64{
	1: 0.00, 2: 0.00, 3: 0.58, 4: 0.90, 5: 1.12,
	6: 1.24, 7: 1.32, 8: 1.41, 9: 1.45, 10: 1.49,
}

// ConsistencyRatio returns Saaty's CR = CI/RI with CI = (λmax-n)/(n-1).
// Matrices up to 2×2 are always consistent and yield 0.
func ConsistencyRatio(m Matrix) (float64, error) {
	_, lambda, err := principal(m)
	if err != nil {
		return 0, err
	}
	n := m.Size()
	ri, ok := randomIndex[n]
	if !ok {
		return 0, &MatrixError{Reason: fmt.Sprintf("no random index for size %d", n)}
	}
	if ri == 0 {
		return 0, nil
	}
	ci := (lambda - float64(n)) / float64(n-1)
	return math.Max(ci, 0) / ri, nil
}

// principal selects the eigenpair with the largest eigenvalue modulus. For a
// positive reciprocal matrix that is the real Perron root, whose eigenvector
// has components of one sign.
func principal(m Matrix) ([]float64, float64, error) {
	if err := m.Validate(); err != nil {
		return nil, 0, err
	}
	n := m.Size()
	if n == 1 {
		return []float64{1}, 1, nil
	}

	data := make([]float64, 0, n*n)
	for _, row := range m {
		data = append(data, row...)
	}
	var eig mat.Eigen
	if ok := eig.Factorize(mat.NewDense(n, n, data), mat.EigenRight); !ok {
		return nil, 0, &MatrixError{Reason: "eigendecomposition failed"}
	}

	values := eig.Values(nil)
	dominant := 0
	for i := range values {
		if cmplx.Abs(values[i]) > cmplx.Abs(values[dominant]) {
			dominant = i
		}
	}

	var vectors mat.CDense
	eig.VectorsTo(&vectors)
	p := make([]float64, n)
	for i := range p {
		p[i] = real(vectors.At(i, dominant))
	}
	sum := floats.Sum(p)
	if sum == 0 {
		return nil, 0, &MatrixError{Reason: "principal eigenvector sums to zero"}
	}
	floats.Scale(1/sum, p)
	for i := range p {
		// rounding noise around zero weights
		if p[i] < 0 && p[i] > -1e-12 {
			p[i] = 0
		}
	}
	return p, real(values[dominant]), nil
}
