package marc

import (
	"math"
	"sort"
)

// Affinity propagation parameters, matching the reference implementation's
// defaults: damping factor, iteration cap, and the number of iterations the
// exemplar set must stay unchanged to declare convergence.
const (
	affinityDamping  = 0.5
	affinityMaxIter  = 200
	affinityConvIter = 15
)

// affinityPropagation clusters by message passing over a precomputed n×n
// similarity matrix (higher = more similar). Self-similarities (preferences)
// are set to the median of the off-diagonal similarities, which lets the
// algorithm choose the number of clusters on its own. Responsibilities and
// availabilities are updated with damping until the exemplar set is stable for
// affinityConvIter iterations or the iteration cap is reached.
//
// Returns dense cluster labels (0..k−1, ordered by exemplar index) and the
// exemplar index of each cluster. Exemplars are always members of their own
// cluster.
func affinityPropagation(sim []float64, n int) (labels []int, exemplars []int) {
	s := make([]float64, len(sim))
	copy(s, sim)

	// Median off-diagonal similarity as the preference.
	pref := medianOffDiagonal(s, n)
	for i := 0; i < n; i++ {
		s[i*n+i] = pref
	}

	r := make([]float64, n*n)
	a := make([]float64, n*n)

	stable := 0
	var lastExemplars []int

	for iter := 0; iter < affinityMaxIter; iter++ {
		// Responsibilities: r(i,k) = s(i,k) − max_{k'≠k}(a(i,k') + s(i,k')).
		for i := 0; i < n; i++ {
			max1, max2 := math.Inf(-1), math.Inf(-1)
			arg1 := -1
			for k := 0; k < n; k++ {
				v := a[i*n+k] + s[i*n+k]
				if v > max1 {
					max2 = max1
					max1 = v
					arg1 = k
				} else if v > max2 {
					max2 = v
				}
			}
			for k := 0; k < n; k++ {
				sub := max1
				if k == arg1 {
					sub = max2
				}
				r[i*n+k] = affinityDamping*r[i*n+k] + (1-affinityDamping)*(s[i*n+k]-sub)
			}
		}

		// Availabilities: a(i,k) = min(0, r(k,k) + Σ_{i'∉{i,k}} max(0, r(i',k)))
		// and a(k,k) = Σ_{i'≠k} max(0, r(i',k)).
		for k := 0; k < n; k++ {
			var posSum float64
			for i := 0; i < n; i++ {
				if i != k && r[i*n+k] > 0 {
					posSum += r[i*n+k]
				}
			}
			for i := 0; i < n; i++ {
				var v float64
				if i == k {
					v = posSum
				} else {
					v = r[k*n+k] + posSum
					if r[i*n+k] > 0 {
						v -= r[i*n+k]
					}
					if v > 0 {
						v = 0
					}
				}
				a[i*n+k] = affinityDamping*a[i*n+k] + (1-affinityDamping)*v
			}
		}

		// Current exemplar set: points with positive evidence for themselves.
		var current []int
		for k := 0; k < n; k++ {
			if r[k*n+k]+a[k*n+k] > 0 {
				current = append(current, k)
			}
		}
		if equalInts(current, lastExemplars) && len(current) > 0 {
			stable++
			if stable >= affinityConvIter {
				break
			}
		} else {
			stable = 0
		}
		lastExemplars = current
	}

	exemplars = lastExemplars
	if len(exemplars) == 0 {
		// No point accumulated positive self-evidence; collapse to a single
		// cluster around the strongest candidate.
		best := 0
		bestV := math.Inf(-1)
		for k := 0; k < n; k++ {
			if v := r[k*n+k] + a[k*n+k]; v > bestV {
				bestV = v
				best = k
			}
		}
		exemplars = []int{best}
	}
	sort.Ints(exemplars)

	// Assign every point to the exemplar with the highest similarity;
	// exemplars belong to themselves.
	labels = make([]int, n)
	exemplarCluster := make(map[int]int, len(exemplars))
	for c, e := range exemplars {
		exemplarCluster[e] = c
	}
	for i := 0; i < n; i++ {
		if c, ok := exemplarCluster[i]; ok {
			labels[i] = c
			continue
		}
		bestC := 0
		bestS := math.Inf(-1)
		for c, e := range exemplars {
			if v := sim[i*n+e]; v > bestS {
				bestS = v
				bestC = c
			}
		}
		labels[i] = bestC
	}
	return labels, exemplars
}

func medianOffDiagonal(s []float64, n int) float64 {
	vals := make([]float64, 0, n*n-n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				vals = append(vals, s[i*n+j])
			}
		}
	}
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 0 {
		return (vals[mid-1] + vals[mid]) / 2
	}
	return vals[mid]
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
