package marc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadXYZ parses an xyz file or trajectory from r. A trajectory is a
// concatenation of frames, each frame being an atom-count line, a comment
// line, and one "symbol x y z" line per atom. If the comment line contains a
// parseable float, it is taken as the conformer's energy. name labels the
// resulting conformers.
func ReadXYZ(r io.Reader, name string) (Ensemble, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("marc: reading %s: %w", name, err)
	}
	// Drop trailing blank lines some generators leave behind.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("marc: %s is empty: %w", name, ErrInputMismatch)
	}

	nAtoms, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || nAtoms <= 0 {
		return nil, fmt.Errorf("marc: %s: first line is not an atom count: %w", name, ErrInputMismatch)
	}
	frame := nAtoms + 2
	if len(lines)%frame != 0 {
		return nil, fmt.Errorf("marc: %s: %d lines is not a multiple of frame size %d: %w",
			name, len(lines), frame, ErrInputMismatch)
	}

	var ens Ensemble
	for pos := 0; pos < len(lines); pos += frame {
		mol, err := parseFrame(lines[pos:pos+frame], fmt.Sprintf("%s[%d]", name, len(ens)))
		if err != nil {
			return nil, err
		}
		ens = append(ens, mol)
	}
	return ens, nil
}

func parseFrame(lines []string, name string) (Molecule, error) {
	nAtoms, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || nAtoms != len(lines)-2 {
		return Molecule{}, fmt.Errorf("marc: %s: inconsistent atom count: %w", name, ErrInputMismatch)
	}

	mol := Molecule{
		Name:   name,
		Atoms:  make([]string, 0, nAtoms),
		Coords: make([][3]float64, 0, nAtoms),
	}
	if energy, ok := parseEnergyComment(lines[1]); ok {
		mol.Energy = energy
		mol.HasEnergy = true
	}

	for _, line := range lines[2:] {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return Molecule{}, fmt.Errorf("marc: %s: bad atom line %q: %w", name, line, ErrInputMismatch)
		}
		var xyz [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return Molecule{}, fmt.Errorf("marc: %s: bad coordinate %q: %w", name, fields[i+1], ErrInputMismatch)
			}
			xyz[i] = v
		}
		mol.Atoms = append(mol.Atoms, fields[0])
		mol.Coords = append(mol.Coords, xyz)
	}
	return mol, nil
}

// parseEnergyComment extracts an energy from an xyz comment line. The first
// field that parses as a float wins; conformer generators commonly write
// either a bare number or "Energy = <value>".
func parseEnergyComment(line string) (float64, bool) {
	for _, f := range strings.Fields(line) {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// ReadXYZFile loads an ensemble from a single xyz file or trajectory.
func ReadXYZFile(path string) (Ensemble, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("marc: %w", err)
	}
	defer f.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadXYZ(f, base)
}

// ReadXYZFiles loads one conformer per file and concatenates them in argument
// order. Each file must hold exactly one frame.
func ReadXYZFiles(paths []string) (Ensemble, error) {
	var ens Ensemble
	for _, p := range paths {
		e, err := ReadXYZFile(p)
		if err != nil {
			return nil, err
		}
		if len(e) != 1 {
			return nil, fmt.Errorf("marc: %s holds %d frames, expected 1: %w", p, len(e), ErrInputMismatch)
		}
		ens = append(ens, e[0])
	}
	return ens, nil
}

// WriteXYZ writes one conformer in xyz format. The energy, when present, goes
// on the comment line.
func WriteXYZ(w io.Writer, m Molecule) error {
	if _, err := fmt.Fprintf(w, "%d\n", m.NumAtoms()); err != nil {
		return err
	}
	comment := m.Name
	if m.HasEnergy {
		comment = fmt.Sprintf("%.8f", m.Energy)
	}
	if _, err := fmt.Fprintf(w, "%s\n", comment); err != nil {
		return err
	}
	for i, a := range m.Atoms {
		c := m.Coords[i]
		if _, err := fmt.Fprintf(w, "%-3s %14.8f %14.8f %14.8f\n", a, c[0], c[1], c[2]); err != nil {
			return err
		}
	}
	return nil
}

// WriteRepresentatives writes each selected conformer to
// <dir>/<basename>_selected_<NN>.xyz, numbered in representative order.
// Returns the written paths.
func WriteRepresentatives(dir, basename string, ens Ensemble, reps []int) ([]string, error) {
	paths := make([]string, 0, len(reps))
	for i, idx := range reps {
		if idx < 0 || idx >= len(ens) {
			return nil, fmt.Errorf("marc: representative index %d out of range [0,%d): %w",
				idx, len(ens), ErrInputMismatch)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_selected_%02d.xyz", basename, i))
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("marc: %w", err)
		}
		err = WriteXYZ(f, ens[idx])
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("marc: writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
