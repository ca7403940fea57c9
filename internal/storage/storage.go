// Package storage defines persistence for documents, chunks, and chat history.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kaiwa/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Storage defines document, chunk, and chat message persistence operations.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	GetDocumentByHash(ctx context.Context, hash string) (*models.Document, error)
	GetDocumentByFilename(ctx context.Context, filename string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context) ([]*models.Document, error)

	// Chunk operations
	ReplaceChunks(ctx context.Context, docID string, chunks []*models.DocumentChunk) error
	GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.DocumentChunk, error)

	// Chat history
	SaveTurn(ctx context.Context, docID, message, response string, agentID int) (int64, error)
	GetTurnsByDocumentID(ctx context.Context, docID string, limit int) ([]*models.ChatRecord, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
