package marc

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// RMSD computes the minimum root-mean-square deviation between two conformers
// after optimal superposition (Kabsch algorithm): both coordinate sets are
// centered on their centroids, the 3×3 covariance matrix is decomposed by SVD,
// and the singular values give the RMSD of the best rigid-body alignment
// directly, with a sign correction for improper rotations. Atom counts must
// match.
func RMSD(a, b Molecule) (float64, error) {
	n := a.NumAtoms()
	if n != b.NumAtoms() {
		return 0, fmt.Errorf("marc: RMSD of conformers with %d and %d atoms: %w",
			n, b.NumAtoms(), ErrInputMismatch)
	}
	if n == 0 {
		return 0, fmt.Errorf("marc: RMSD of empty conformers: %w", ErrInsufficientData)
	}

	ca := centroid(a.Coords)
	cb := centroid(b.Coords)

	// E0 = Σ|x_i|² + Σ|y_i|² over the centered coordinates, and the 3×3
	// covariance C = X·Yᵀ accumulated in one pass.
	var e0 float64
	var c [9]float64
	for i := 0; i < n; i++ {
		var x, y [3]float64
		for d := 0; d < 3; d++ {
			x[d] = a.Coords[i][d] - ca[d]
			y[d] = b.Coords[i][d] - cb[d]
			e0 += x[d]*x[d] + y[d]*y[d]
		}
		for r := 0; r < 3; r++ {
			for s := 0; s < 3; s++ {
				c[r*3+s] += x[r] * y[s]
			}
		}
	}

	cm := mat.NewDense(3, 3, c[:])
	var svd mat.SVD
	if ok := svd.Factorize(cm, mat.SVDNone); !ok {
		return 0, fmt.Errorf("marc: SVD of covariance matrix failed: %w", ErrMalformedMatrix)
	}
	vals := svd.Values(nil)

	// A negative determinant means the best orthogonal transform is an
	// improper rotation; flipping the sign of the smallest singular value
	// restricts the optimum to proper rotations.
	sum := vals[0] + vals[1]
	if mat.Det(cm) < 0 {
		sum -= vals[2]
	} else {
		sum += vals[2]
	}

	msd := (e0 - 2*sum) / float64(n)
	if msd < 0 {
		// Identical structures can land a hair below zero numerically.
		msd = 0
	}
	return math.Sqrt(msd), nil
}

func centroid(coords [][3]float64) [3]float64 {
	var c [3]float64
	for _, p := range coords {
		for d := 0; d < 3; d++ {
			c[d] += p[d]
		}
	}
	for d := 0; d < 3; d++ {
		c[d] /= float64(len(coords))
	}
	return c
}

// RMSDMatrix computes the full pairwise RMSD dissimilarity matrix for the
// ensemble. Returns a flat []float64 of length n×n.
func RMSDMatrix(ens Ensemble) ([]float64, error) {
	return rmsdMatrixRange(ens, 0, len(ens), make([]float64, len(ens)*len(ens)))
}

func rmsdMatrixRange(ens Ensemble, start, end int, result []float64) ([]float64, error) {
	n := len(ens)
	for i := start; i < end; i++ {
		for j := i + 1; j < n; j++ {
			d, err := RMSD(ens[i], ens[j])
			if err != nil {
				return nil, err
			}
			result[i*n+j] = d
			result[j*n+i] = d
		}
	}
	return result, nil
}

// RMSDMatrixParallel computes the pairwise RMSD matrix using multiple
// goroutines. Rows are split into contiguous ranges, one per worker; ranges do
// not overlap so writes need no synchronization. Falls back to the sequential
// version if numWorkers <= 1. The result matches RMSDMatrix exactly.
func RMSDMatrixParallel(ens Ensemble, numWorkers int) ([]float64, error) {
	n := len(ens)
	if numWorkers <= 1 || n <= 1 {
		return RMSDMatrix(ens)
	}

	result := make([]float64, n*n)

	var wg sync.WaitGroup
	errs := make([]error, numWorkers)
	rowsPerWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > n {
			endRow = n
		}
		if startRow >= n {
			break
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			_, errs[w] = rmsdMatrixRange(ens, start, end, result)
		}(w, startRow, endRow)
	}

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
