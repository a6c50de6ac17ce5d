package marc

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Clustering algorithm names selectable at configuration time.
const (
	AlgorithmKMeans        = "kmeans"
	AlgorithmAgglomerative = "agglomerative"
	AlgorithmAffinity      = "affprop"
)

// ValidAlgorithms lists the accepted clustering algorithm names.
var ValidAlgorithms = []string{AlgorithmKMeans, AlgorithmAgglomerative, AlgorithmAffinity}

// strategyKMeansInit is the k-means restart count for strategy-level
// clustering (the gap statistic uses the cheaper gapKMeansInit).
const strategyKMeansInit = 50

// Partition is the output contract shared by all clustering strategies: a
// dense labeling of the ensemble, the inverse grouping, and one representative
// ensemble index per cluster.
type Partition struct {
	// Labels maps ensemble index to cluster id. Cluster ids are dense,
	// 0..K−1, and every index appears in exactly one cluster.
	Labels []int

	// Clusters maps cluster id to its member indices in ascending order.
	Clusters [][]int

	// Representatives holds one ensemble index per cluster, in cluster-id
	// order. Each representative is a member of its own cluster.
	Representatives []int
}

// NumClusters returns the number of clusters in the partition.
func (p *Partition) NumClusters() int { return len(p.Clusters) }

// Strategy partitions an ensemble given its normalized dissimilarity matrix
// and identifies one representative per cluster. k <= 0 requests automatic
// cluster-count selection via the gap statistic; exemplar-based strategies
// determine the count themselves and ignore k entirely.
type Strategy interface {
	Cluster(diss []float64, n, k int) (*Partition, error)
}

// NewStrategy returns the clustering strategy registered under name. rank is
// the embedding dimensionality for centroid-based strategies, workers bounds
// gap-statistic parallelism, and rng feeds every randomized sub-step. Unknown
// names are InvalidSelection errors.
func NewStrategy(name string, rank, workers int, rng *rand.Rand) (Strategy, error) {
	switch name {
	case AlgorithmKMeans:
		return &KMeansStrategy{Rank: rank, Workers: workers, Rand: rng}, nil
	case AlgorithmAgglomerative:
		return &AgglomerativeStrategy{Rank: rank, Workers: workers, Rand: rng}, nil
	case AlgorithmAffinity:
		return &AffinityStrategy{}, nil
	default:
		return nil, fmt.Errorf("marc: unknown clustering algorithm %q: %w", name, ErrInvalidSelection)
	}
}

// KMeansStrategy embeds the dissimilarity matrix (SMACOF), clusters the
// embedding with k-means, and takes as representative the member whose
// embedded coordinate is nearest its cluster centroid.
type KMeansStrategy struct {
	Rank    int
	Workers int
	Rand    *rand.Rand
}

func (s *KMeansStrategy) Cluster(diss []float64, n, k int) (*Partition, error) {
	if err := checkClusterInput(diss, n); err != nil {
		return nil, err
	}

	x, err := Embed(diss, n, s.Rank, s.Rand)
	if err != nil {
		return nil, err
	}
	k, err = s.resolveCount(x, n, k)
	if err != nil {
		return nil, err
	}

	res := kMeans(x, n, s.Rank, k, strategyKMeansInit, s.Rand)

	reps := make([]int, k)
	for c := 0; c < k; c++ {
		reps[c] = nearestToCentroid(x, res.centroids[c*s.Rank:(c+1)*s.Rank], res.labels, c, s.Rank)
	}
	return newPartition(res.labels, reps, k), nil
}

func (s *KMeansStrategy) resolveCount(x []float64, n, k int) (int, error) {
	if k <= 0 {
		var err error
		k, err = SelectClusterCount(x, n, s.Rank, s.Workers, s.Rand)
		if err != nil {
			return 0, err
		}
	}
	if k >= n {
		return 0, fmt.Errorf("marc: %d clusters requested for %d conformers: %w", k, n, ErrInsufficientData)
	}
	return k, nil
}

// AgglomerativeStrategy merges the affinity matrix 1−dissimilarity with
// single linkage until k clusters remain, then fits a nearest-centroid model
// over the original dissimilarity rows to pick each cluster's representative.
type AgglomerativeStrategy struct {
	Rank    int
	Workers int
	Rand    *rand.Rand
}

func (s *AgglomerativeStrategy) Cluster(diss []float64, n, k int) (*Partition, error) {
	if err := checkClusterInput(diss, n); err != nil {
		return nil, err
	}

	if k <= 0 {
		x, err := Embed(diss, n, s.Rank, s.Rand)
		if err != nil {
			return nil, err
		}
		k, err = SelectClusterCount(x, n, s.Rank, s.Workers, s.Rand)
		if err != nil {
			return nil, err
		}
	}
	if k >= n {
		return nil, fmt.Errorf("marc: %d clusters requested for %d conformers: %w", k, n, ErrInsufficientData)
	}

	labels := singleLinkageCut(oneMinus(diss), n, k)

	// Nearest-centroid representatives in dissimilarity row space: each
	// cluster's centroid is the mean of its members' matrix rows, and the
	// representative is the member whose row is closest to it.
	reps := make([]int, k)
	for c := 0; c < k; c++ {
		centroidRow := make([]float64, n)
		count := 0
		for i := 0; i < n; i++ {
			if labels[i] == c {
				floats.Add(centroidRow, diss[i*n:(i+1)*n])
				count++
			}
		}
		floats.Scale(1/float64(count), centroidRow)
		reps[c] = nearestToCentroid(diss, centroidRow, labels, c, n)
	}
	return newPartition(labels, reps, k), nil
}

// AffinityStrategy runs affinity propagation on the affinity matrix
// 1−dissimilarity. The cluster count is self-selected and any requested k is
// ignored; the representatives are the algorithm's own exemplars.
type AffinityStrategy struct{}

func (s *AffinityStrategy) Cluster(diss []float64, n, _ int) (*Partition, error) {
	if err := checkClusterInput(diss, n); err != nil {
		return nil, err
	}
	labels, exemplars := affinityPropagation(oneMinus(diss), n)
	return newPartition(labels, exemplars, len(exemplars)), nil
}

// checkClusterInput applies the shared strategy preconditions: a well-formed
// symmetric matrix over at least two conformers.
func checkClusterInput(diss []float64, n int) error {
	if n < 2 {
		return fmt.Errorf("marc: cannot cluster %d conformers: %w", n, ErrInsufficientData)
	}
	return CheckMatrix(diss, n)
}

// nearestToCentroid returns the index of the cluster-c member whose row of
// data (flat, dims columns) has the smallest Euclidean distance to centroid.
// The first index achieving the minimum wins.
func nearestToCentroid(data, centroid []float64, labels []int, c, dims int) int {
	best := -1
	bestD := math.Inf(1)
	for i, label := range labels {
		if label != c {
			continue
		}
		if d := floats.Distance(data[i*dims:(i+1)*dims], centroid, 2); d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}

// newPartition assembles the Labels/Clusters/Representatives triple from a
// dense labeling.
func newPartition(labels, reps []int, k int) *Partition {
	clusters := make([][]int, k)
	for i, c := range labels {
		clusters[c] = append(clusters[c], i)
	}
	return &Partition{Labels: labels, Clusters: clusters, Representatives: reps}
}
