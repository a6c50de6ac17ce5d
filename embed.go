package marc

import (
	"fmt"
	"math"
	"math/rand"
)

// Embedding parameters. The restart count mirrors the pipeline's fixed
// configuration; it is not user-tunable.
const (
	embedRestarts = 50
	embedMaxIter  = 300
	embedEps      = 1e-6
)

// Embed projects an n×n dissimilarity matrix into rank-dimensional Euclidean
// coordinates by SMACOF stress majorization: starting from random coordinates,
// each Guttman transform step is guaranteed not to increase the raw stress
// Σ(d_ij − dist_ij)², and iteration stops when the relative stress improvement
// drops below tolerance. The best of embedRestarts random starts is returned,
// so distances in the embedding approximate the input dissimilarities without
// any bit-for-bit determinism guarantee across seeds.
//
// The result is flat row-major, n rows by rank columns.
func Embed(diss []float64, n, rank int, rng *rand.Rand) ([]float64, error) {
	if err := CheckMatrix(diss, n); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, fmt.Errorf("marc: cannot embed %d points: %w", n, ErrInsufficientData)
	}
	if rank < 1 {
		return nil, fmt.Errorf("marc: embedding rank must be >= 1, got %d: %w", rank, ErrInvalidSelection)
	}

	// Scale the random starting box to the data spread.
	var maxD float64
	for _, v := range diss {
		if v > maxD {
			maxD = v
		}
	}
	if maxD == 0 {
		return nil, fmt.Errorf("marc: all dissimilarities are zero: %w", ErrDegenerateMetric)
	}

	best := make([]float64, n*rank)
	bestStress := math.Inf(1)

	for restart := 0; restart < embedRestarts; restart++ {
		x := make([]float64, n*rank)
		for i := range x {
			x[i] = (rng.Float64() - 0.5) * maxD
		}

		stress := smacofStress(diss, x, n, rank)
		for iter := 0; iter < embedMaxIter; iter++ {
			x = guttmanTransform(diss, x, n, rank)
			next := smacofStress(diss, x, n, rank)
			if stress-next < embedEps*stress {
				stress = next
				break
			}
			stress = next
		}

		if stress < bestStress {
			bestStress = stress
			copy(best, x)
		}
	}

	return best, nil
}

// guttmanTransform performs one SMACOF majorization step with unit weights,
// x' = (1/n)·B(x)·x, which elementwise is
// x'_i = (1/n) Σ_{j≠i} (d_ij/dist_ij)·(x_i − x_j).
func guttmanTransform(diss, x []float64, n, rank int) []float64 {
	out := make([]float64, n*rank)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			dist := embedDist(x, i, j, rank)
			var ratio float64
			if dist > 0 {
				ratio = diss[i*n+j] / dist
			}
			for d := 0; d < rank; d++ {
				out[i*rank+d] += ratio * (x[i*rank+d] - x[j*rank+d])
			}
		}
		for d := 0; d < rank; d++ {
			out[i*rank+d] /= float64(n)
		}
	}
	return out
}

// smacofStress computes the raw stress Σ_{i<j} (d_ij − dist_ij)².
func smacofStress(diss, x []float64, n, rank int) float64 {
	var stress float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := diss[i*n+j] - embedDist(x, i, j, rank)
			stress += r * r
		}
	}
	return stress
}

func embedDist(x []float64, i, j, rank int) float64 {
	var sum float64
	for d := 0; d < rank; d++ {
		v := x[i*rank+d] - x[j*rank+d]
		sum += v * v
	}
	return math.Sqrt(sum)
}
