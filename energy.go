package marc

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/stat"
)

// FilterByEnergy drops representatives of high-energy clusters. For each
// cluster it computes the mean and population standard deviation of its
// members' energies; with lowest the minimum cluster average, cluster c's
// representative is retained iff
//
//	avg(c) <= lowest + 0.5·std(c) + ewin
//
// The comparison is non-strict so the lowest-average cluster itself always
// survives, even with zero spread and a zero window.
//
// The result is the retained representatives in cluster-id order, always a
// subset of the input, so applying the filter twice with the same window is
// idempotent. Every cluster member must have an energy; a missing one is a
// MissingEnergy error raised before any filtering.
func FilterByEnergy(p *Partition, energies []float64, ewin float64) ([]int, error) {
	if len(energies) != len(p.Labels) {
		return nil, fmt.Errorf("marc: %d energies for %d conformers: %w",
			len(energies), len(p.Labels), ErrInputMismatch)
	}

	k := p.NumClusters()
	avgs := make([]float64, k)
	stds := make([]float64, k)
	for c, members := range p.Clusters {
		vals := make([]float64, len(members))
		for i, idx := range members {
			vals[i] = energies[idx]
		}
		avgs[c] = stat.Mean(vals, nil)
		stds[c] = stat.PopStdDev(vals, nil)
	}

	lowest := avgs[0]
	for _, v := range avgs[1:] {
		if v < lowest {
			lowest = v
		}
	}

	kept := make([]int, 0, k)
	for c := 0; c < k; c++ {
		if avgs[c] <= lowest+0.5*stds[c]+ewin {
			kept = append(kept, p.Representatives[c])
		} else {
			log.Printf("marc: dropping representative %d, cluster %d average energy %.4f above window",
				p.Representatives[c], c, avgs[c])
		}
	}
	return kept, nil
}
