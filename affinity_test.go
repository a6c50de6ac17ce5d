package marc

import (
	"math/rand"
	"testing"
)

// blockSimilarity builds an n×n similarity matrix with two blocks: high
// within-block similarity, low across. A little symmetric jitter breaks the
// exact ties that a perfectly uniform block matrix would have (real
// dissimilarity data is never exactly tied, and message passing needs the
// asymmetry to settle on specific exemplars).
func blockSimilarity(n, split int) []float64 {
	rng := rand.New(rand.NewSource(42))
	s := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			base := 0.1
			if (i < split) == (j < split) {
				base = 0.9
			}
			v := base + (rng.Float64()-0.5)*0.02
			s[i*n+j] = v
			s[j*n+i] = v
		}
		s[i*n+i] = 1
	}
	return s
}

func TestAffinityPropagationTwoBlocks(t *testing.T) {
	n := 8
	labels, exemplars := affinityPropagation(blockSimilarity(n, 4), n)

	if len(labels) != n {
		t.Fatalf("labels length: got %d, want %d", len(labels), n)
	}
	if len(exemplars) != 2 {
		t.Fatalf("exemplar count: got %d (%v), want 2", len(exemplars), exemplars)
	}

	// Block membership must be respected.
	for i := 1; i < 4; i++ {
		if labels[i] != labels[0] {
			t.Errorf("point %d left block 0: %v", i, labels)
		}
	}
	for i := 5; i < 8; i++ {
		if labels[i] != labels[4] {
			t.Errorf("point %d left block 1: %v", i, labels)
		}
	}
	if labels[0] == labels[4] {
		t.Errorf("blocks merged: %v", labels)
	}

	// Exemplars are members of their own clusters.
	for c, e := range exemplars {
		if labels[e] != c {
			t.Errorf("exemplar %d of cluster %d carries label %d", e, c, labels[e])
		}
	}
}

func TestAffinityPropagationLabelsDense(t *testing.T) {
	n := 6
	labels, exemplars := affinityPropagation(blockSimilarity(n, 3), n)
	k := len(exemplars)
	seen := make([]int, k)
	for _, l := range labels {
		if l < 0 || l >= k {
			t.Fatalf("label %d outside [0,%d)", l, k)
		}
		seen[l]++
	}
	for c, count := range seen {
		if count == 0 {
			t.Errorf("cluster %d empty", c)
		}
	}
}

func TestMedianOffDiagonal(t *testing.T) {
	s := []float64{
		0, 1, 2,
		1, 0, 3,
		2, 3, 0,
	}
	// Off-diagonal values: 1,2,1,3,2,3 → sorted 1,1,2,2,3,3 → median 2.
	if got := medianOffDiagonal(s, 3); got != 2 {
		t.Errorf("median: got %f, want 2", got)
	}
}
