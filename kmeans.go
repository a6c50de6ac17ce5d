package marc

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

const kmeansMaxIter = 100

// kmeansResult is one converged k-means run over flat row-major data.
type kmeansResult struct {
	labels    []int
	centroids []float64 // flat, k rows by dims columns
	inertia   float64   // within-cluster sum of squared distances
}

// kMeans runs Lloyd's algorithm nInit times with k-means++ seeding and keeps
// the run with the lowest inertia. data is flat row-major, n rows by dims
// columns. k must satisfy 1 <= k <= n; callers validate.
func kMeans(data []float64, n, dims, k, nInit int, rng *rand.Rand) kmeansResult {
	best := kmeansResult{inertia: math.Inf(1)}
	for run := 0; run < nInit; run++ {
		res := kMeansOnce(data, n, dims, k, rng)
		if res.inertia < best.inertia {
			best = res
		}
	}
	return best
}

func kMeansOnce(data []float64, n, dims, k int, rng *rand.Rand) kmeansResult {
	centroids := kMeansPlusPlusInit(data, n, dims, k, rng)
	labels := make([]int, n)

	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := assignLabels(data, centroids, labels, n, dims, k)

		// Recompute centroids as member means. An emptied cluster is
		// reseeded with the point farthest from its assigned centroid.
		counts := make([]int, k)
		next := make([]float64, k*dims)
		for i := 0; i < n; i++ {
			c := labels[i]
			counts[c]++
			floats.Add(next[c*dims:(c+1)*dims], data[i*dims:(i+1)*dims])
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				far := farthestPoint(data, centroids, labels, n, dims)
				copy(next[c*dims:(c+1)*dims], data[far*dims:(far+1)*dims])
				labels[far] = c
				changed = true
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c*dims:(c+1)*dims])
		}
		centroids = next

		if !changed {
			break
		}
	}

	var inertia float64
	for i := 0; i < n; i++ {
		c := labels[i]
		d := floats.Distance(data[i*dims:(i+1)*dims], centroids[c*dims:(c+1)*dims], 2)
		inertia += d * d
	}
	return kmeansResult{labels: labels, centroids: centroids, inertia: inertia}
}

// assignLabels sets each point's label to its nearest centroid and reports
// whether any label changed. Ties go to the lowest centroid index.
func assignLabels(data, centroids []float64, labels []int, n, dims, k int) bool {
	changed := false
	for i := 0; i < n; i++ {
		bestC := 0
		bestD := math.Inf(1)
		for c := 0; c < k; c++ {
			d := floats.Distance(data[i*dims:(i+1)*dims], centroids[c*dims:(c+1)*dims], 2)
			if d < bestD {
				bestD = d
				bestC = c
			}
		}
		if labels[i] != bestC {
			labels[i] = bestC
			changed = true
		}
	}
	return changed
}

// kMeansPlusPlusInit seeds k centroids: the first uniformly at random, each
// subsequent one with probability proportional to the squared distance to the
// nearest centroid chosen so far.
func kMeansPlusPlusInit(data []float64, n, dims, k int, rng *rand.Rand) []float64 {
	centroids := make([]float64, k*dims)
	first := rng.Intn(n)
	copy(centroids[:dims], data[first*dims:(first+1)*dims])

	minSq := make([]float64, n)
	for i := 0; i < n; i++ {
		d := floats.Distance(data[i*dims:(i+1)*dims], centroids[:dims], 2)
		minSq[i] = d * d
	}

	for c := 1; c < k; c++ {
		total := floats.Sum(minSq)
		var pick int
		if total == 0 {
			pick = rng.Intn(n)
		} else {
			target := rng.Float64() * total
			var cum float64
			pick = n - 1
			for i := 0; i < n; i++ {
				cum += minSq[i]
				if cum >= target {
					pick = i
					break
				}
			}
		}
		copy(centroids[c*dims:(c+1)*dims], data[pick*dims:(pick+1)*dims])
		for i := 0; i < n; i++ {
			d := floats.Distance(data[i*dims:(i+1)*dims], centroids[c*dims:(c+1)*dims], 2)
			if sq := d * d; sq < minSq[i] {
				minSq[i] = sq
			}
		}
	}
	return centroids
}

// farthestPoint returns the index of the point farthest from its assigned
// centroid.
func farthestPoint(data, centroids []float64, labels []int, n, dims int) int {
	far := 0
	farD := -1.0
	for i := 0; i < n; i++ {
		c := labels[i]
		d := floats.Distance(data[i*dims:(i+1)*dims], centroids[c*dims:(c+1)*dims], 2)
		if d > farD {
			farD = d
			far = i
		}
	}
	return far
}
