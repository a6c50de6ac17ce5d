package marc

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// gapKMeansInit is the k-means restart count used inside the gap statistic.
// Cheaper than the strategy-level restart count since each candidate k is
// clustered nrefs+1 times.
const gapKMeansInit = 5

// CandidateCounts derives the candidate cluster counts for an ensemble of n
// members: round(n·p) for p in {1%, 5%, 10%, 25%, 50%}, clamped to [2, 50] and
// de-duplicated. Testing every k up to n is infeasible for large ensembles, so
// candidates are anchored to fixed population fractions.
func CandidateCounts(n int) []int {
	fractions := []float64{0.01, 0.05, 0.10, 0.25, 0.50}
	seen := make(map[int]bool)
	var ks []int
	for _, p := range fractions {
		k := int(math.Round(float64(n) * p))
		if k < 2 {
			k = 2
		}
		if k > 50 {
			k = 50
		}
		if !seen[k] {
			seen[k] = true
			ks = append(ks, k)
		}
	}
	sort.Ints(ks)
	return ks
}

// GapStatistic computes the gap value for each candidate cluster count over an
// embedding. For each k, the real data is clustered with k-means and its
// dispersion (sum of point-to-assigned-centroid Euclidean distances) compared
// against the mean log-dispersion of nrefs reference datasets drawn uniformly
// within the embedding's per-dimension bounding box:
//
//	gap(k) = mean(log(refDispersion)) − log(dispersion)
//
// Reference evaluations are independent and are split across numWorkers
// goroutines; the returned values do not depend on the worker count because
// every clustering run draws from its own child generator seeded from rng.
func GapStatistic(data []float64, n, dims int, ks []int, nrefs, numWorkers int, rng *rand.Rand) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("marc: gap statistic needs at least 2 points, got %d: %w", n, ErrInsufficientData)
	}
	for _, k := range ks {
		if k < 1 || k > n {
			return nil, fmt.Errorf("marc: candidate cluster count %d outside [1,%d]: %w", k, n, ErrInsufficientData)
		}
	}

	// Per-dimension bounding box of the real embedding.
	mins := make([]float64, dims)
	maxs := make([]float64, dims)
	for d := 0; d < dims; d++ {
		mins[d] = math.Inf(1)
		maxs[d] = math.Inf(-1)
	}
	for i := 0; i < n; i++ {
		for d := 0; d < dims; d++ {
			v := data[i*dims+d]
			mins[d] = math.Min(mins[d], v)
			maxs[d] = math.Max(maxs[d], v)
		}
	}

	// References are sampled up front from the parent generator so results
	// are reproducible for a fixed seed regardless of worker scheduling.
	refs := make([][]float64, nrefs)
	for r := range refs {
		ref := make([]float64, n*dims)
		for i := 0; i < n; i++ {
			for d := 0; d < dims; d++ {
				ref[i*dims+d] = mins[d] + rng.Float64()*(maxs[d]-mins[d])
			}
		}
		refs[r] = ref
	}

	gaps := make([]float64, len(ks))
	for ki, k := range ks {
		res := kMeans(data, n, dims, k, gapKMeansInit, rng)
		disp := dispersion(data, res, n, dims)

		refSeeds := make([]int64, nrefs)
		for r := range refSeeds {
			refSeeds[r] = rng.Int63()
		}
		logRefDisps := make([]float64, nrefs)

		workers := numWorkers
		if workers < 1 {
			workers = 1
		}
		refsPerWorker := (nrefs + workers - 1) / workers

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			start := w * refsPerWorker
			end := start + refsPerWorker
			if end > nrefs {
				end = nrefs
			}
			if start >= nrefs {
				break
			}

			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				for r := start; r < end; r++ {
					refRng := rand.New(rand.NewSource(refSeeds[r]))
					refRes := kMeans(refs[r], n, dims, k, gapKMeansInit, refRng)
					logRefDisps[r] = math.Log(dispersion(refs[r], refRes, n, dims))
				}
			}(start, end)
		}
		wg.Wait()

		gaps[ki] = stat.Mean(logRefDisps, nil) - math.Log(disp)
	}
	return gaps, nil
}

// SelectClusterCount picks the candidate count with the largest gap value,
// floored at 2: a single cluster is never an acceptable answer when the goal
// is a representative subset.
func SelectClusterCount(data []float64, n, dims, numWorkers int, rng *rand.Rand) (int, error) {
	ks := CandidateCounts(n)
	nrefs := n
	if nrefs < 50 {
		nrefs = 50
	}
	gaps, err := GapStatistic(data, n, dims, ks, nrefs, numWorkers, rng)
	if err != nil {
		return 0, err
	}
	best := ks[floats.MaxIdx(gaps)]
	if best < 2 {
		best = 2
	}
	return best, nil
}

// dispersion is the total within-cluster dispersion: the sum of Euclidean
// distances from each point to its assigned centroid.
func dispersion(data []float64, res kmeansResult, n, dims int) float64 {
	var sum float64
	for i := 0; i < n; i++ {
		c := res.labels[i]
		sum += floats.Distance(data[i*dims:(i+1)*dims], res.centroids[c*dims:(c+1)*dims], 2)
	}
	return sum
}
