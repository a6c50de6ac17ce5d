// Package marc selects the most representative conformers from a 3-D
// molecular ensemble.
//
// Given an ensemble of conformers (same atoms, different geometries), marc
// builds pairwise dissimilarity matrices under one or more metrics (RMSD,
// relative energy, dihedral angles), combines them into a composite matrix,
// decides how many representatives to keep using the gap statistic, partitions
// the ensemble with one of three clustering strategies, and extracts one
// representative conformer per cluster. An optional energy window drops
// representatives of high-energy clusters.
//
// Basic usage:
//
//	ens, err := marc.ReadXYZFile("conformers.xyz")
//	cfg := marc.DefaultConfig()
//	cfg.Metric = marc.MetricEWRMSD
//	sel, err := marc.Select(ens, cfg)
//	// sel.Representatives holds the chosen ensemble indices
//
// Clustering strategies are selected by name:
//
//	cfg.Algorithm = marc.AlgorithmKMeans        // MDS embedding + k-means
//	cfg.Algorithm = marc.AlgorithmAgglomerative // single-linkage + nearest centroid
//	cfg.Algorithm = marc.AlgorithmAffinity      // affinity propagation exemplars
//
// All matrices are flat []float64 in row-major order, n×n for n conformers.
// Randomized stages (embedding restarts, k-means initialization, gap-statistic
// reference sampling) draw from Config.Rand, so a fixed Config.Seed gives
// reproducible selections.
package marc
