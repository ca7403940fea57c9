package vector

import "sync"

// Store maps document ids to their built indices. It replaces the ambient
// process-wide registry: the retrieval service owns a Store, indices are
// created on upload, replaced on re-upload, and removable under memory
// pressure or document deletion.
type Store struct {
	mu      sync.RWMutex
	indices map[string]*FlatIndex
}

// NewStore returns an empty index store.
func NewStore() *Store {
	return &Store{indices: make(map[string]*FlatIndex)}
}

// Put registers the index for docID, replacing any previous index.
func (s *Store) Put(docID string, idx *FlatIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indices[docID] = idx
}

// Get returns the index for docID, if one has been built.
func (s *Store) Get(docID string) (*FlatIndex, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indices[docID]
	return idx, ok
}

// Remove drops the index for docID.
func (s *Store) Remove(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indices, docID)
}

// Len returns the number of stored indices.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.indices)
}
