package marc

import (
	"fmt"
	"log"
)

// Molecule is one conformer: an atom identity list with matching 3-D
// coordinates and an optional scalar energy. Atoms and Coords always have the
// same length.
type Molecule struct {
	Name   string
	Atoms  []string
	Coords [][3]float64

	// Energy is only meaningful when HasEnergy is true.
	Energy    float64
	HasEnergy bool
}

// NumAtoms returns the number of atoms in the conformer.
func (m Molecule) NumAtoms() int { return len(m.Atoms) }

// Heavy returns a copy of the molecule with all hydrogen atoms removed.
func (m Molecule) Heavy() Molecule {
	out := Molecule{
		Name:      m.Name,
		Energy:    m.Energy,
		HasEnergy: m.HasEnergy,
	}
	for i, a := range m.Atoms {
		if a == "H" || a == "h" {
			continue
		}
		out.Atoms = append(out.Atoms, a)
		out.Coords = append(out.Coords, m.Coords[i])
	}
	return out
}

// Ensemble is the ordered set of candidate conformers. The slice index is the
// identity every matrix and cluster assignment is expressed in; the order never
// changes after loading.
type Ensemble []Molecule

// Validate checks that every member has the same atom count and atom identity
// sequence as member 0. A mismatch makes pairwise geometric comparison
// meaningless and is fatal.
func (e Ensemble) Validate() error {
	if len(e) == 0 {
		return fmt.Errorf("marc: empty ensemble: %w", ErrInsufficientData)
	}
	ref := e[0]
	for i := 1; i < len(e); i++ {
		if len(e[i].Atoms) != len(ref.Atoms) {
			return fmt.Errorf("marc: conformer %d has %d atoms, conformer 0 has %d: %w",
				i, len(e[i].Atoms), len(ref.Atoms), ErrInputMismatch)
		}
		for j, a := range e[i].Atoms {
			if a != ref.Atoms[j] {
				return fmt.Errorf("marc: conformer %d atom %d is %q, conformer 0 has %q: %w",
					i, j, a, ref.Atoms[j], ErrInputMismatch)
			}
		}
	}
	return nil
}

// HasEnergies reports whether every member carries an energy.
func (e Ensemble) HasEnergies() bool {
	for _, m := range e {
		if !m.HasEnergy {
			return false
		}
	}
	return true
}

// Energies returns the per-member energy vector. Any member without an energy
// is a MissingEnergy error.
func (e Ensemble) Energies() ([]float64, error) {
	out := make([]float64, len(e))
	for i, m := range e {
		if !m.HasEnergy {
			return nil, fmt.Errorf("marc: conformer %d has no energy: %w", i, ErrMissingEnergy)
		}
		out[i] = m.Energy
	}
	return out, nil
}

// SetEnergies overwrites the per-member energies, e.g. from a separate energy
// file produced by a higher level of theory. Intended to be called at most
// once, before the pipeline runs.
func (e Ensemble) SetEnergies(energies []float64) error {
	if len(energies) != len(e) {
		return fmt.Errorf("marc: %d energies for %d conformers: %w",
			len(energies), len(e), ErrInputMismatch)
	}
	for i := range e {
		if e[i].HasEnergy {
			log.Printf("marc: overwriting energy of conformer %d", i)
		}
		e[i].Energy = energies[i]
		e[i].HasEnergy = true
	}
	return nil
}

// StripHydrogens returns a new ensemble with hydrogens removed from every
// member. Conformer order is preserved.
func (e Ensemble) StripHydrogens() Ensemble {
	out := make(Ensemble, len(e))
	for i, m := range e {
		out[i] = m.Heavy()
	}
	return out
}
