package marc

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const waterTrajectory = `3
-76.40250000
O    0.00000000   0.00000000   0.11779000
H    0.00000000   0.75545000  -0.47116000
H    0.00000000  -0.75545000  -0.47116000
3
-76.40191000
O    0.00000000   0.00000000   0.11900000
H    0.00000000   0.76000000  -0.46900000
H    0.00000000  -0.76000000  -0.46900000
`

func TestReadXYZTrajectory(t *testing.T) {
	ens, err := ReadXYZ(strings.NewReader(waterTrajectory), "water")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ens) != 2 {
		t.Fatalf("frames: got %d, want 2", len(ens))
	}
	if ens[0].NumAtoms() != 3 {
		t.Errorf("atoms: got %d, want 3", ens[0].NumAtoms())
	}
	if !ens[0].HasEnergy || ens[0].Energy != -76.40250000 {
		t.Errorf("frame 0 energy: got %v %v", ens[0].HasEnergy, ens[0].Energy)
	}
	if ens[1].Atoms[1] != "H" {
		t.Errorf("frame 1 atom 1: got %q, want H", ens[1].Atoms[1])
	}
	if ens[0].Coords[1][1] != 0.75545 {
		t.Errorf("frame 0 atom 1 y: got %f", ens[0].Coords[1][1])
	}
}

func TestReadXYZNoEnergyComment(t *testing.T) {
	input := "1\njust a title\nC 0.0 0.0 0.0\n"
	ens, err := ReadXYZ(strings.NewReader(input), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ens[0].HasEnergy {
		t.Error("energy parsed from a non-numeric comment")
	}
}

func TestReadXYZErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad count line", "three\nc\nC 0 0 0\n"},
		{"truncated frame", "3\nc\nO 0 0 0\nH 0 0 0\n"},
		{"bad coordinate", "1\nc\nC 0 x 0\n"},
		{"short atom line", "1\nc\nC 0 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadXYZ(strings.NewReader(tt.input), "bad"); !errors.Is(err, ErrInputMismatch) {
				t.Errorf("expected InputMismatch, got %v", err)
			}
		})
	}
}

func TestWriteXYZRoundTrip(t *testing.T) {
	ens, err := ReadXYZ(strings.NewReader(waterTrajectory), "water")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteXYZ(&buf, ens[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := ReadXYZ(strings.NewReader(buf.String()), "back")
	if err != nil {
		t.Fatalf("re-reading written xyz: %v", err)
	}
	if len(back) != 1 {
		t.Fatalf("frames: got %d, want 1", len(back))
	}
	if back[0].Energy != ens[0].Energy {
		t.Errorf("energy: got %f, want %f", back[0].Energy, ens[0].Energy)
	}
	for i := range back[0].Coords {
		if back[0].Coords[i] != ens[0].Coords[i] {
			t.Errorf("atom %d coordinates: got %v, want %v", i, back[0].Coords[i], ens[0].Coords[i])
		}
	}
}

func TestWriteRepresentatives(t *testing.T) {
	dir := t.TempDir()
	ens, err := ReadXYZ(strings.NewReader(waterTrajectory), "water")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	paths, err := WriteRepresentatives(dir, "water", ens, []int{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths: got %d, want 2", len(paths))
	}
	want := filepath.Join(dir, "water_selected_00.xyz")
	if paths[0] != want {
		t.Errorf("first path: got %q, want %q", paths[0], want)
	}
	// First written file holds ensemble index 1.
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), "-76.40191000") {
		t.Errorf("representative 0 should be conformer 1, file:\n%s", data)
	}
}

func TestWriteRepresentativesBadIndex(t *testing.T) {
	ens := Ensemble{mol("a", [3]float64{0, 0, 0})}
	if _, err := WriteRepresentatives(t.TempDir(), "x", ens, []int{3}); !errors.Is(err, ErrInputMismatch) {
		t.Errorf("expected InputMismatch, got %v", err)
	}
}
