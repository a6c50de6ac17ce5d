package marc

import (
	"fmt"
	"log"
	"math"
)

// Metric keys selectable at configuration time. The compound keys multiply
// the normalized component matrices (see MixMatrices).
const (
	MetricRMSD     = "rmsd"   // pairwise heavy-atom RMSD
	MetricEnergy   = "erel"   // pairwise absolute energy difference
	MetricDihedral = "da"     // pairwise mean absolute dihedral difference
	MetricEWRMSD   = "ewrmsd" // rmsd × erel
	MetricEWDA     = "ewda"   // da × erel
	MetricMix      = "mix"    // rmsd × erel × da
)

// ValidMetrics lists the accepted metric keys.
var ValidMetrics = []string{MetricRMSD, MetricEnergy, MetricDihedral, MetricEWRMSD, MetricEWDA, MetricMix}

// metricComponent is one named raw dissimilarity matrix feeding the mixer.
type metricComponent struct {
	label  string
	matrix []float64
}

// metricComponents builds the raw component matrices for a metric key, in a
// fixed order. Unknown keys are InvalidSelection errors.
func metricComponents(ens Ensemble, metric string, workers int) ([]metricComponent, error) {
	var labels []string
	switch metric {
	case MetricRMSD:
		labels = []string{MetricRMSD}
	case MetricEnergy:
		labels = []string{MetricEnergy}
	case MetricDihedral:
		labels = []string{MetricDihedral}
	case MetricEWRMSD:
		labels = []string{MetricRMSD, MetricEnergy}
	case MetricEWDA:
		labels = []string{MetricDihedral, MetricEnergy}
	case MetricMix:
		labels = []string{MetricRMSD, MetricEnergy, MetricDihedral}
	default:
		return nil, fmt.Errorf("marc: unknown metric %q: %w", metric, ErrInvalidSelection)
	}

	components := make([]metricComponent, 0, len(labels))
	for _, label := range labels {
		var m []float64
		var err error
		switch label {
		case MetricRMSD:
			m, err = RMSDMatrixParallel(ens, workers)
		case MetricEnergy:
			m, err = EnergyMatrix(ens)
		case MetricDihedral:
			m, err = DihedralMatrix(ens)
		}
		if err != nil {
			return nil, err
		}
		components = append(components, metricComponent{label: label, matrix: m})
	}
	return components, nil
}

// EnergyMatrix builds the pairwise absolute energy difference matrix. Every
// conformer must carry an energy.
func EnergyMatrix(ens Ensemble) ([]float64, error) {
	energies, err := ens.Energies()
	if err != nil {
		return nil, err
	}
	n := len(ens)
	m := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := math.Abs(energies[i] - energies[j])
			m[i*n+j] = d
			m[j*n+i] = d
		}
	}
	return m, nil
}

// DihedralMatrix builds the pairwise dissimilarity matrix over dihedral
// angles. Rotatable torsions are enumerated once from the bond graph of
// conformer 0 (bonds inferred from covalent radii); each matrix entry is the
// mean absolute circular difference of the torsion angles between the two
// conformers, in radians.
func DihedralMatrix(ens Ensemble) ([]float64, error) {
	if len(ens) == 0 {
		return nil, fmt.Errorf("marc: empty ensemble: %w", ErrInsufficientData)
	}
	bonds := inferBonds(ens[0])
	torsions := enumerateTorsions(ens[0].NumAtoms(), bonds)
	if len(torsions) == 0 {
		log.Printf("marc: no torsions found in %q, dihedral metric will be degenerate", ens[0].Name)
	}

	// Topology is taken from conformer 0. A differing bond set elsewhere is
	// reported but does not change the torsion list.
	for i := 1; i < len(ens); i++ {
		if len(inferBonds(ens[i])) != len(bonds) {
			log.Printf("marc: conformer %d bond count differs from conformer 0, torsion list may not transfer", i)
		}
	}

	n := len(ens)
	angles := make([][]float64, n)
	for i, mol := range ens {
		angles[i] = make([]float64, len(torsions))
		for t, q := range torsions {
			angles[i][t] = dihedralAngle(mol.Coords[q[0]], mol.Coords[q[1]], mol.Coords[q[2]], mol.Coords[q[3]])
		}
	}

	m := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var sum float64
			for t := range torsions {
				sum += math.Abs(wrapAngle(angles[i][t] - angles[j][t]))
			}
			var d float64
			if len(torsions) > 0 {
				d = sum / float64(len(torsions))
			}
			m[i*n+j] = d
			m[j*n+i] = d
		}
	}
	return m, nil
}

// covalentRadii holds single-bond covalent radii in Ångström for the elements
// that show up in typical organic conformer ensembles.
var covalentRadii = map[string]float64{
	"H": 0.31, "B": 0.84, "C": 0.76, "N": 0.71, "O": 0.66, "F": 0.57,
	"Si": 1.11, "P": 1.07, "S": 1.05, "Cl": 1.02, "Br": 1.20, "I": 1.39,
}

const defaultCovalentRadius = 0.77

// bondTolerance is the slack added to the sum of covalent radii when deciding
// whether two atoms are bonded.
const bondTolerance = 0.4

// inferBonds returns the atom index pairs closer than the sum of their
// covalent radii plus tolerance.
func inferBonds(m Molecule) [][2]int {
	var bonds [][2]int
	for i := 0; i < m.NumAtoms(); i++ {
		ri, ok := covalentRadii[m.Atoms[i]]
		if !ok {
			ri = defaultCovalentRadius
		}
		for j := i + 1; j < m.NumAtoms(); j++ {
			rj, ok := covalentRadii[m.Atoms[j]]
			if !ok {
				rj = defaultCovalentRadius
			}
			if dist3(m.Coords[i], m.Coords[j]) <= ri+rj+bondTolerance {
				bonds = append(bonds, [2]int{i, j})
			}
		}
	}
	return bonds
}

// enumerateTorsions lists one a-b-c-d quadruple per neighbor combination
// around every bond b-c.
func enumerateTorsions(nAtoms int, bonds [][2]int) [][4]int {
	adj := make([][]int, nAtoms)
	for _, b := range bonds {
		adj[b[0]] = append(adj[b[0]], b[1])
		adj[b[1]] = append(adj[b[1]], b[0])
	}

	var torsions [][4]int
	for _, bond := range bonds {
		b, c := bond[0], bond[1]
		for _, a := range adj[b] {
			if a == c {
				continue
			}
			for _, d := range adj[c] {
				if d == b || d == a {
					continue
				}
				torsions = append(torsions, [4]int{a, b, c, d})
			}
		}
	}
	return torsions
}

// dihedralAngle computes the signed torsion angle a-b-c-d in radians.
func dihedralAngle(a, b, c, d [3]float64) float64 {
	b1 := sub3(b, a)
	b2 := sub3(c, b)
	b3 := sub3(d, c)

	n1 := cross3(b1, b2)
	n2 := cross3(b2, b3)

	y := dot3(cross3(n1, n2), norm3(b2))
	x := dot3(n1, n2)
	return math.Atan2(y, x)
}

// wrapAngle maps an angle difference to (-π, π].
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func sub3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm3(a [3]float64) [3]float64 {
	l := math.Sqrt(dot3(a, a))
	if l == 0 {
		return a
	}
	return [3]float64{a[0] / l, a[1] / l, a[2] / l}
}

func dist3(a, b [3]float64) float64 {
	return math.Sqrt(dot3(sub3(a, b), sub3(a, b)))
}
