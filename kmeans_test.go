package marc

import (
	"math/rand"
	"testing"
)

// twoBlobs returns flat 2-D data with n points split between two well
// separated blobs around (0,0) and (100,100).
func twoBlobs(n int, rng *rand.Rand) []float64 {
	data := make([]float64, n*2)
	for i := 0; i < n; i++ {
		cx, cy := 0.0, 0.0
		if i >= n/2 {
			cx, cy = 100.0, 100.0
		}
		data[i*2] = cx + rng.Float64()
		data[i*2+1] = cy + rng.Float64()
	}
	return data
}

func TestKMeansTwoBlobs(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := 20
	data := twoBlobs(n, rng)

	res := kMeans(data, n, 2, 2, 10, rng)
	if len(res.labels) != n {
		t.Fatalf("labels length: got %d, want %d", len(res.labels), n)
	}

	// Points in the same blob must share a label, across blobs differ.
	for i := 1; i < n/2; i++ {
		if res.labels[i] != res.labels[0] {
			t.Errorf("point %d not in blob 0's cluster", i)
		}
	}
	for i := n/2 + 1; i < n; i++ {
		if res.labels[i] != res.labels[n/2] {
			t.Errorf("point %d not in blob 1's cluster", i)
		}
	}
	if res.labels[0] == res.labels[n/2] {
		t.Error("blobs collapsed into one cluster")
	}
}

func TestKMeansLabelsDense(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := 12
	data := twoBlobs(n, rng)
	k := 3

	res := kMeans(data, n, 2, k, 10, rng)
	seen := make([]int, k)
	for _, l := range res.labels {
		if l < 0 || l >= k {
			t.Fatalf("label %d outside [0,%d)", l, k)
		}
		seen[l]++
	}
	for c, count := range seen {
		if count == 0 {
			t.Errorf("cluster %d is empty", c)
		}
	}
}

func TestKMeansSingleCluster(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	data := []float64{0, 0, 1, 1, 2, 2}
	res := kMeans(data, 3, 2, 1, 5, rng)
	for i, l := range res.labels {
		if l != 0 {
			t.Errorf("point %d: label %d, want 0", i, l)
		}
	}
	// Centroid must be the mean point (1,1).
	if res.centroids[0] != 1 || res.centroids[1] != 1 {
		t.Errorf("centroid: got (%f,%f), want (1,1)", res.centroids[0], res.centroids[1])
	}
}

func TestKMeansKEqualsN(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	data := []float64{0, 0, 10, 0, 0, 10}
	res := kMeans(data, 3, 2, 3, 5, rng)
	if res.inertia > 1e-12 {
		t.Errorf("k=n inertia: got %g, want 0", res.inertia)
	}
	seen := map[int]bool{}
	for _, l := range res.labels {
		if seen[l] {
			t.Errorf("label %d used twice with k=n", l)
		}
		seen[l] = true
	}
}
