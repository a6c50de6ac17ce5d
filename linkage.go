package marc

import (
	"math"
	"sort"
)

// minSpanningTree computes a minimum spanning tree over a dense n×n weight
// matrix using Prim's algorithm. Returns n−1 edges as [from, to, weight]
// triples in the order they were added.
func minSpanningTree(m []float64, n int) [][3]float64 {
	if n <= 1 {
		return nil
	}

	inTree := make([]bool, n)
	currentDistances := make([]float64, n)

	// Start from node 0: seed distances from its row in the matrix.
	inTree[0] = true
	currentNode := 0
	currentDistances[0] = math.Inf(1)
	for j := 1; j < n; j++ {
		currentDistances[j] = m[j]
	}

	edges := make([][3]float64, 0, n-1)

	for i := 0; i < n-1; i++ {
		// Nearest node not yet in the tree.
		minDist := math.Inf(1)
		minNode := -1
		for j := 0; j < n; j++ {
			if !inTree[j] && currentDistances[j] < minDist {
				minDist = currentDistances[j]
				minNode = j
			}
		}
		if minNode == -1 {
			for j := 0; j < n; j++ {
				if !inTree[j] {
					minNode = j
					minDist = currentDistances[j]
					break
				}
			}
		}

		edges = append(edges, [3]float64{
			float64(currentNode),
			float64(minNode),
			minDist,
		})

		inTree[minNode] = true
		currentNode = minNode

		for k := 0; k < n; k++ {
			if !inTree[k] {
				if d := m[minNode*n+k]; d < currentDistances[k] {
					currentDistances[k] = d
				}
			}
		}
	}

	return edges
}

// unionFind is a disjoint-set structure with path compression and union by
// size, sized for 2n−1 elements so dendrogram cluster IDs (original points
// 0..n−1, merged clusters n..2n−2) can be stored as roots.
type unionFind struct {
	parent    []int
	size      []int
	nextLabel int
}

func newUnionFind(n int) *unionFind {
	total := 2*n - 1
	if total < 1 {
		total = 1
	}
	parent := make([]int, total)
	size := make([]int, total)
	for i := range parent {
		parent[i] = -1 // -1 means "is a root"
	}
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	return &unionFind{parent: parent, size: size, nextLabel: n}
}

func (uf *unionFind) find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

func (uf *unionFind) union(x, y int) int {
	rootX := uf.find(x)
	rootY := uf.find(y)
	if rootX == rootY {
		return rootX
	}
	if uf.size[rootX] < uf.size[rootY] {
		rootX, rootY = rootY, rootX
	}
	uf.parent[rootY] = rootX
	uf.size[rootX] += uf.size[rootY]
	return rootX
}

// Linkage computes the single-linkage dendrogram of an n×n dissimilarity
// matrix in scipy format: each row is [left, right, distance, mergedSize],
// with merged cluster IDs starting at n. Intended for dendrogram rendering;
// clustering cuts use singleLinkageCut.
func Linkage(m []float64, n int) ([][4]float64, error) {
	if err := CheckMatrix(m, n); err != nil {
		return nil, err
	}
	return linkageFromMST(minSpanningTree(m, n), n), nil
}

// linkageFromMST converts MST edges into sorted scipy-format dendrogram rows.
func linkageFromMST(mstEdges [][3]float64, n int) [][4]float64 {
	if len(mstEdges) == 0 {
		return nil
	}

	sorted := make([][3]float64, len(mstEdges))
	copy(sorted, mstEdges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i][2] < sorted[j][2]
	})

	uf := newUnionFind(n)
	result := make([][4]float64, 0, len(sorted))

	for _, edge := range sorted {
		a := uf.find(int(edge[0]))
		b := uf.find(int(edge[1]))
		newSize := uf.size[a] + uf.size[b]

		result = append(result, [4]float64{float64(a), float64(b), edge[2], float64(newSize)})

		// Relabel the merged root to the next dendrogram cluster ID.
		uf.size[uf.nextLabel] = newSize
		uf.parent[a] = uf.nextLabel
		uf.parent[b] = uf.nextLabel
		uf.nextLabel++
	}

	return result
}

// singleLinkageCut merges the n−k smallest MST edges and labels the resulting
// k connected components. Labels are dense, 0..k−1, assigned in order of each
// component's first member index.
func singleLinkageCut(m []float64, n, k int) []int {
	edges := minSpanningTree(m, n)
	sort.Slice(edges, func(i, j int) bool {
		return edges[i][2] < edges[j][2]
	})

	uf := newUnionFind(n)
	for i := 0; i < n-k && i < len(edges); i++ {
		uf.union(int(edges[i][0]), int(edges[i][1]))
	}

	labels := make([]int, n)
	rootLabel := make(map[int]int)
	next := 0
	for i := 0; i < n; i++ {
		root := uf.find(i)
		label, ok := rootLabel[root]
		if !ok {
			label = next
			rootLabel[root] = label
			next++
		}
		labels[i] = label
	}
	return labels
}
