package marc

import (
	"errors"
	"testing"
)

func TestFilterByEnergyDropsHighCluster(t *testing.T) {
	// Two clusters with averages 1.0 and 5.0 and no spread: a zero window
	// keeps only the low-energy cluster's representative.
	p := &Partition{
		Labels:          []int{0, 0, 1, 1},
		Clusters:        [][]int{{0, 1}, {2, 3}},
		Representatives: []int{0, 2},
	}
	energies := []float64{1.0, 1.0, 5.0, 5.0}

	kept, err := FilterByEnergy(p, energies, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kept) != 1 || kept[0] != 0 {
		t.Errorf("kept %v, want [0]", kept)
	}
}

func TestFilterByEnergyWindowKeepsBoth(t *testing.T) {
	p := &Partition{
		Labels:          []int{0, 0, 1, 1},
		Clusters:        [][]int{{0, 1}, {2, 3}},
		Representatives: []int{0, 2},
	}
	energies := []float64{1.0, 1.0, 5.0, 5.0}

	kept, err := FilterByEnergy(p, energies, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kept) != 2 {
		t.Errorf("kept %v, want both representatives", kept)
	}
}

func TestFilterByEnergySpreadWidensAcceptance(t *testing.T) {
	// Cluster 1 averages 1.4 above the lowest, but half its spread covers
	// the excess: 1.0 + 0.5·3.0 + 0 > 2.4.
	p := &Partition{
		Labels:          []int{0, 0, 1, 1},
		Clusters:        [][]int{{0, 1}, {2, 3}},
		Representatives: []int{1, 3},
	}
	energies := []float64{1.0, 1.0, -0.6, 5.4} // cluster 1: avg 2.4, pop std 3.0

	kept, err := FilterByEnergy(p, energies, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kept) != 2 {
		t.Errorf("kept %v, want both representatives", kept)
	}
}

func TestFilterByEnergySubsetAndIdempotent(t *testing.T) {
	p := &Partition{
		Labels:          []int{0, 1, 2, 0, 1, 2},
		Clusters:        [][]int{{0, 3}, {1, 4}, {2, 5}},
		Representatives: []int{0, 1, 2},
	}
	energies := []float64{1, 3, 9, 1, 3, 9}

	kept, err := FilterByEnergy(p, energies, 2.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Subset of the input representatives.
	in := map[int]bool{0: true, 1: true, 2: true}
	for _, r := range kept {
		if !in[r] {
			t.Errorf("representative %d not in input set", r)
		}
	}

	// Re-filtering the surviving clusters with the same window changes
	// nothing: the lowest cluster always survives and the criterion only
	// references the global lowest average.
	kept2, err := FilterByEnergy(p, energies, 2.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kept) != len(kept2) {
		t.Fatalf("filter not deterministic: %v vs %v", kept, kept2)
	}
	for i := range kept {
		if kept[i] != kept2[i] {
			t.Errorf("filter not idempotent: %v vs %v", kept, kept2)
		}
	}
}

func TestFilterByEnergyLengthMismatch(t *testing.T) {
	p := &Partition{
		Labels:          []int{0, 0},
		Clusters:        [][]int{{0, 1}},
		Representatives: []int{0},
	}
	if _, err := FilterByEnergy(p, []float64{1}, 0); !errors.Is(err, ErrInputMismatch) {
		t.Errorf("expected InputMismatch, got %v", err)
	}
}
