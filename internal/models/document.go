// Package models defines core data structures for documents, discussion turns, and execution plans.
package models

import "time"

// Document represents an uploaded document with its extracted text.
// ContentHash identifies the source bytes so re-ingesting unchanged content
// is a no-op.
type Document struct {
	ID          string    `json:"id" db:"id"`
	Filename    string    `json:"filename" db:"filename"`
	ContentType string    `json:"content_type" db:"content_type"`
	Content     string    `json:"content" db:"content"`
	ContentHash string    `json:"content_hash,omitempty" db:"content_hash"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentChunk is one contiguous passage of a document, the unit of retrieval.
// Chunks of a document are ordered and non-overlapping; joined in order they
// reconstruct the source text up to whitespace normalization.
type DocumentChunk struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Content    string    `json:"content" db:"content"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Embedding  []float32 `json:"-" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DocumentInput is the input for uploading a document.
type DocumentInput struct {
	ID          string `json:"id,omitempty"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Content     string `json:"content"`
}
