package vector

import (
	"math"
	"testing"
)

func TestFlatIndex_SearchOrdering(t *testing.T) {
	// Ten 2-d vectors along the x axis; query at origin.
	vectors := make([][]float32, 10)
	for i := range vectors {
		vectors[i] = []float32{float32(i), 0}
	}
	idx, err := NewFlatIndex(vectors)
	if err != nil {
		t.Fatalf("NewFlatIndex: %v", err)
	}
	hits, err := idx.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	seen := make(map[int]bool)
	for i, h := range hits {
		if h.ChunkIndex != i {
			t.Errorf("hit %d: ChunkIndex=%d", i, h.ChunkIndex)
		}
		if seen[h.ChunkIndex] {
			t.Errorf("duplicate chunk %d in results", h.ChunkIndex)
		}
		seen[h.ChunkIndex] = true
		if i > 0 && hits[i].Distance < hits[i-1].Distance {
			t.Errorf("distances not non-decreasing at %d", i)
		}
	}
}

func TestFlatIndex_TieBreakByChunkOrder(t *testing.T) {
	// Chunks 0, 1, 2 are all equidistant from the query.
	vectors := [][]float32{{1, 0}, {0, 1}, {-1, 0}}
	idx, err := NewFlatIndex(vectors)
	if err != nil {
		t.Fatalf("NewFlatIndex: %v", err)
	}
	hits, err := idx.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i, h := range hits {
		if h.ChunkIndex != i {
			t.Errorf("tie break: position %d has chunk %d", i, h.ChunkIndex)
		}
	}
}

func TestFlatIndex_KLargerThanSize(t *testing.T) {
	idx, _ := NewFlatIndex([][]float32{{0}, {1}})
	hits, err := idx.Search([]float32{0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("expected all vectors, got %d", len(hits))
	}
}

func TestNewFlatIndex_Empty(t *testing.T) {
	if _, err := NewFlatIndex(nil); err == nil {
		t.Error("expected error for empty vector set")
	}
}

func TestNewFlatIndex_DimensionMismatch(t *testing.T) {
	if _, err := NewFlatIndex([][]float32{{1, 2}, {1}}); err == nil {
		t.Error("expected error for mixed dimensions")
	}
}

func TestEuclideanDistance(t *testing.T) {
	d := EuclideanDistance([]float32{0, 0}, []float32{3, 4})
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("distance: got %f", d)
	}
	if !math.IsInf(EuclideanDistance([]float32{1}, []float32{1, 2}), 1) {
		t.Error("length mismatch should be +Inf")
	}
}

func TestStore_PutGetRemove(t *testing.T) {
	s := NewStore()
	idx, _ := NewFlatIndex([][]float32{{1}})
	s.Put("doc1", idx)
	if got, ok := s.Get("doc1"); !ok || got != idx {
		t.Error("Get after Put failed")
	}
	replacement, _ := NewFlatIndex([][]float32{{2}})
	s.Put("doc1", replacement)
	if got, _ := s.Get("doc1"); got != replacement {
		t.Error("Put should replace existing index")
	}
	s.Remove("doc1")
	if _, ok := s.Get("doc1"); ok {
		t.Error("Get after Remove should miss")
	}
	if s.Len() != 0 {
		t.Errorf("Len: got %d", s.Len())
	}
}
