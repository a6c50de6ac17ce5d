package marc

import (
	"errors"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestCandidateCounts(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{10, []int{2, 3, 5}},       // 1%,5%,10% clamp to 2; 25%→3 (rounded); 50%→5
		{100, []int{2, 5, 10, 25, 50}},
		{1000, []int{10, 50}},      // 10,50,100,250,500 clamp to ≤50
		{4, []int{2}},
	}
	for _, tt := range tests {
		got := CandidateCounts(tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("CandidateCounts(%d): got %v, want %v", tt.n, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("CandidateCounts(%d): got %v, want %v", tt.n, got, tt.want)
				break
			}
		}
	}
}

func TestGapStatisticBimodal(t *testing.T) {
	// Two well-separated 5-point clusters in 2-D: the gap must peak at k=2
	// among candidates {2,3,4}.
	rng := rand.New(rand.NewSource(17))
	n := 10
	data := make([]float64, n*2)
	for i := 0; i < 5; i++ {
		data[i*2] = rng.Float64() * 0.5
		data[i*2+1] = rng.Float64() * 0.5
	}
	for i := 5; i < 10; i++ {
		data[i*2] = 50 + rng.Float64()*0.5
		data[i*2+1] = 50 + rng.Float64()*0.5
	}

	ks := []int{2, 3, 4}
	gaps, err := GapStatistic(data, n, 2, ks, 20, 2, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gaps) != 3 {
		t.Fatalf("gap count: got %d, want 3", len(gaps))
	}
	if best := ks[floats.MaxIdx(gaps)]; best != 2 {
		t.Errorf("gap statistic selected k=%d, want 2 (gaps: %v)", best, gaps)
	}
}

func TestGapStatisticRejectsBadCandidates(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := []float64{0, 0, 1, 1, 2, 2}
	if _, err := GapStatistic(data, 3, 2, []int{5}, 5, 1, rng); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected InsufficientData for k > n, got %v", err)
	}
}

func TestGapStatisticWorkerCountInvariance(t *testing.T) {
	// Same seed, different worker counts: results must match because every
	// reference clustering draws from its own pre-seeded child generator.
	n := 10
	data := make([]float64, n*2)
	base := rand.New(rand.NewSource(23))
	for i := range data {
		data[i] = base.Float64() * 10
	}

	run := func(workers int) []float64 {
		rng := rand.New(rand.NewSource(99))
		gaps, err := GapStatistic(data, n, 2, []int{2, 3}, 10, workers, rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return gaps
	}

	one := run(1)
	four := run(4)
	for i := range one {
		if one[i] != four[i] {
			t.Errorf("gap %d differs across worker counts: %g vs %g", i, one[i], four[i])
		}
	}
}

func TestSelectClusterCountFloor(t *testing.T) {
	// Any outcome must be at least 2.
	rng := rand.New(rand.NewSource(31))
	n := 10
	data := make([]float64, n*2)
	for i := range data {
		data[i] = rng.Float64()
	}
	k, err := SelectClusterCount(data, n, 2, 2, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k < 2 {
		t.Errorf("selected count %d below floor of 2", k)
	}
}
