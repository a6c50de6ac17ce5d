package marc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Dissimilarity matrices are flat []float64 of length n×n in row-major order:
// m[i*n+j] is the dissimilarity between conformers i and j. Valid matrices are
// symmetric within symTol and zero on the diagonal.

// symTol is the absolute tolerance for the symmetry and zero-diagonal checks.
const symTol = 1e-6

// CheckMatrix verifies that m is an n×n dissimilarity matrix: correct length,
// symmetric within tolerance, zero diagonal, no NaNs. Violations are
// MalformedMatrix errors.
func CheckMatrix(m []float64, n int) error {
	if len(m) != n*n {
		return fmt.Errorf("marc: matrix length %d does not match n*n = %d (n=%d): %w",
			len(m), n*n, n, ErrMalformedMatrix)
	}
	for i := 0; i < n; i++ {
		if d := m[i*n+i]; math.Abs(d) > symTol {
			return fmt.Errorf("marc: matrix diagonal entry (%d,%d) = %g is not zero: %w",
				i, i, d, ErrMalformedMatrix)
		}
		for j := i + 1; j < n; j++ {
			a, b := m[i*n+j], m[j*n+i]
			if math.IsNaN(a) || math.IsNaN(b) {
				return fmt.Errorf("marc: matrix entry (%d,%d) is NaN: %w", i, j, ErrMalformedMatrix)
			}
			if math.Abs(a-b) > symTol {
				return fmt.Errorf("marc: matrix entries (%d,%d)=%g and (%d,%d)=%g differ beyond tolerance: %w",
					i, j, a, j, i, b, ErrMalformedMatrix)
			}
		}
	}
	return nil
}

// NormalizeMatrix returns abs(m) scaled by 1/max(abs(m)), so every entry lies
// in [0,1]. The absolute value guards against signed metrics such as relative
// energies. A zero maximum means every conformer is identical under the metric
// and is a DegenerateMetric error. m is not modified.
func NormalizeMatrix(m []float64, n int) ([]float64, error) {
	if len(m) != n*n {
		return nil, fmt.Errorf("marc: matrix length %d does not match n*n = %d: %w",
			len(m), n*n, ErrMalformedMatrix)
	}
	out := make([]float64, len(m))
	for i, v := range m {
		out[i] = math.Abs(v)
	}
	maxAbs := floats.Max(out)
	if maxAbs == 0 {
		return nil, fmt.Errorf("marc: matrix maximum is zero: %w", ErrDegenerateMetric)
	}
	floats.Scale(1/maxAbs, out)
	return out, nil
}

// MixMatrices combines one or more dissimilarity matrices into a composite:
// each input is min-max normalized, the normalized matrices are multiplied
// elementwise, and the product is normalized again so the composite lies in
// [0,1]. With a single input this reduces to NormalizeMatrix. Inputs are not
// modified.
func MixMatrices(n int, ms ...[]float64) ([]float64, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("marc: no matrices to mix: %w", ErrInvalidSelection)
	}
	composite, err := NormalizeMatrix(ms[0], n)
	if err != nil {
		return nil, err
	}
	if len(ms) == 1 {
		return composite, nil
	}
	for _, m := range ms[1:] {
		norm, err := NormalizeMatrix(m, n)
		if err != nil {
			return nil, err
		}
		floats.Mul(composite, norm)
	}
	return NormalizeMatrix(composite, n)
}

// oneMinus returns 1−m elementwise: the affinity matrix corresponding to a
// normalized dissimilarity matrix.
func oneMinus(m []float64) []float64 {
	out := make([]float64, len(m))
	for i, v := range m {
		out[i] = 1 - v
	}
	return out
}
