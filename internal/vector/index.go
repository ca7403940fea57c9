// Package vector provides a per-document flat vector index with Euclidean
// nearest-neighbor search.
package vector

import (
	"fmt"
	"sort"
)

// Hit is a single nearest-neighbor result.
type Hit struct {
	ChunkIndex int     // position of the chunk in the source document
	Distance   float64 // Euclidean distance to the query
}

// FlatIndex is a brute-force L2 index over one document's chunk embeddings.
// It is built once with all vectors and is read-only afterwards, so concurrent
// searches are safe without locking.
type FlatIndex struct {
	dimensions int
	vectors    [][]float32
}

// NewFlatIndex builds an index over vectors, where vectors[i] is the embedding
// of the document's i-th chunk. All vectors must share the same non-zero
// dimension and the set must not be empty; partial indices are never built.
func NewFlatIndex(vectors [][]float32) (*FlatIndex, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no vectors to index")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("zero-dimension vector at position 0")
	}
	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector dimension mismatch at position %d: got %d, expected %d", i, len(v), dim)
		}
		vec := make([]float32, dim)
		copy(vec, v)
		stored[i] = vec
	}
	return &FlatIndex{dimensions: dim, vectors: stored}, nil
}

// Search returns the k nearest chunks to query by Euclidean distance, nearest
// first. Ties are broken by original chunk order. k larger than the index size
// returns everything.
func (idx *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), idx.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}
	hits := make([]Hit, len(idx.vectors))
	for i, vec := range idx.vectors {
		hits[i] = Hit{ChunkIndex: i, Distance: EuclideanDistance(query, vec)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Size returns the number of indexed vectors.
func (idx *FlatIndex) Size() int {
	return len(idx.vectors)
}

// Dimensions returns the embedding dimension of the index.
func (idx *FlatIndex) Dimensions() int {
	return idx.dimensions
}
