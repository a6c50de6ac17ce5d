package marc

import (
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"slices"
	"time"
)

// Config controls representative selection.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Metric selects the dissimilarity metric: one of ValidMetrics.
	// Compound keys mix their normalized component matrices elementwise.
	// Default: "ewrmsd" (RMSD weighted by relative energy).
	Metric string

	// Algorithm selects the clustering strategy: one of ValidAlgorithms.
	// Default: "kmeans".
	Algorithm string

	// NumClusters fixes the number of clusters. 0 selects the count
	// automatically with the gap statistic. Ignored by "affprop", which
	// determines the count itself. Default: 0 (auto).
	NumClusters int

	// EnergyWindow enables the energy acceptance filter when >= 0: a
	// cluster's representative is kept only if the cluster's average energy
	// lies within the window above the lowest cluster average (plus half the
	// cluster's energy spread). Negative disables the filter.
	// Default: -1 (disabled).
	EnergyWindow float64

	// Rank is the dimensionality of the MDS embedding used by centroid-based
	// clustering and cluster-count selection. Default: 2.
	Rank int

	// Workers bounds the goroutines used for pairwise RMSD and gap-statistic
	// reference evaluations. 0 means runtime.NumCPU(). Parallelism never
	// changes results for a fixed seed. Default: 0 (auto).
	Workers int

	// Seed seeds the pseudo-random source behind embedding restarts, k-means
	// initialization, and gap-statistic reference sampling. 0 draws a seed
	// from the clock. Ignored when Rand is set.
	Seed int64

	// Rand overrides Seed with an explicit generator, for deterministic
	// fixtures. Default: nil.
	Rand *rand.Rand

	// Renderer, when set, receives a single-linkage dendrogram for every
	// component dissimilarity matrix that gets built. Side-effect only; a
	// render failure is logged, not propagated. Default: nil.
	Renderer DendrogramRenderer
}

// DefaultConfig returns a Config with the standard pipeline settings.
func DefaultConfig() Config {
	return Config{
		Metric:       MetricEWRMSD,
		Algorithm:    AlgorithmKMeans,
		EnergyWindow: -1,
		Rank:         2,
	}
}

// Selection is the outcome of representative selection.
type Selection struct {
	// Representatives holds the selected ensemble indices, one per retained
	// cluster, in cluster-id order.
	Representatives []int

	// Partition is the full cluster assignment the representatives were
	// drawn from, before any energy filtering.
	Partition *Partition

	// Composite is the normalized dissimilarity matrix the clustering ran
	// on, flat n×n row-major.
	Composite []float64
}

func validateConfig(cfg *Config) error {
	if !slices.Contains(ValidMetrics, cfg.Metric) {
		return fmt.Errorf("marc: unknown metric %q: %w", cfg.Metric, ErrInvalidSelection)
	}
	if !slices.Contains(ValidAlgorithms, cfg.Algorithm) {
		return fmt.Errorf("marc: unknown clustering algorithm %q: %w", cfg.Algorithm, ErrInvalidSelection)
	}
	if cfg.NumClusters < 0 {
		return fmt.Errorf("marc: NumClusters must be >= 0, got %d: %w", cfg.NumClusters, ErrInvalidSelection)
	}
	if cfg.Rank < 1 {
		return fmt.Errorf("marc: Rank must be >= 1, got %d: %w", cfg.Rank, ErrInvalidSelection)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("marc: Workers must be >= 0, got %d: %w", cfg.Workers, ErrInvalidSelection)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Metric == "" {
		cfg.Metric = MetricEWRMSD
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmKMeans
	}
	if cfg.Rank == 0 {
		cfg.Rank = 2
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Rand == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		cfg.Rand = rand.New(rand.NewSource(seed))
	}
}

// Select runs the full representative-selection pipeline on an ensemble:
// metric matrices → composite → clustering → representatives → optional
// energy filter. The ensemble is not modified.
func Select(ens Ensemble, cfg Config) (*Selection, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if err := ens.Validate(); err != nil {
		return nil, err
	}
	n := len(ens)
	if n < 2 {
		return nil, fmt.Errorf("marc: cannot select representatives from %d conformers: %w",
			n, ErrInsufficientData)
	}
	if !ens.HasEnergies() && cfg.EnergyWindow < 0 {
		log.Printf("marc: ensemble has conformers without energies, energy-weighted metrics will fail if requested")
	}

	components, err := metricComponents(ens, cfg.Metric, cfg.Workers)
	if err != nil {
		return nil, err
	}
	if cfg.Renderer != nil {
		for _, comp := range components {
			rows, err := Linkage(comp.matrix, n)
			if err != nil {
				return nil, err
			}
			if err := cfg.Renderer.RenderDendrogram(rows, comp.label); err != nil {
				log.Printf("marc: dendrogram render for %q failed: %v", comp.label, err)
			}
		}
	}

	raw := make([][]float64, len(components))
	for i, comp := range components {
		raw[i] = comp.matrix
	}
	composite, err := MixMatrices(n, raw...)
	if err != nil {
		return nil, err
	}

	strategy, err := NewStrategy(cfg.Algorithm, cfg.Rank, cfg.Workers, cfg.Rand)
	if err != nil {
		return nil, err
	}
	part, err := strategy.Cluster(composite, n, cfg.NumClusters)
	if err != nil {
		return nil, err
	}

	reps := part.Representatives
	if cfg.EnergyWindow >= 0 {
		energies, err := ens.Energies()
		if err != nil {
			return nil, err
		}
		reps, err = FilterByEnergy(part, energies, cfg.EnergyWindow)
		if err != nil {
			return nil, err
		}
	}

	return &Selection{
		Representatives: reps,
		Partition:       part,
		Composite:       composite,
	}, nil
}
