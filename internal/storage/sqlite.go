// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kaiwa/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT,
		content_type TEXT,
		content TEXT NOT NULL,
		content_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
	CREATE INDEX IF NOT EXISTS idx_documents_content_hash ON documents(content_hash);
	CREATE INDEX IF NOT EXISTS idx_documents_filename ON documents(filename);

	CREATE TABLE IF NOT EXISTS document_chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		content TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON document_chunks(document_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_document_chunk ON document_chunks(document_id, chunk_index);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id TEXT NOT NULL,
		message TEXT NOT NULL,
		response TEXT NOT NULL DEFAULT '',
		agent_id INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chat_messages_document_id ON chat_messages(document_id);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateDocument inserts a document.
func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *models.Document) error {
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, content_type, content, content_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.ContentType, doc.Content, doc.ContentHash, doc.CreatedAt, doc.UpdatedAt,
	)
	return err
}

// GetDocument returns a document by ID. Missing documents yield ErrNotFound.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, content_type, content, content_hash, created_at, updated_at
		 FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, err
}

// GetDocumentByHash returns the most recently updated document whose content
// hash matches, or ErrNotFound.
func (s *SQLiteStorage) GetDocumentByHash(ctx context.Context, hash string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, content_type, content, content_hash, created_at, updated_at
		 FROM documents WHERE content_hash = ? ORDER BY updated_at DESC LIMIT 1`, hash)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document with hash %s: %w", hash, ErrNotFound)
	}
	return doc, err
}

// GetDocumentByFilename returns the most recently updated document with the
// given filename, or ErrNotFound.
func (s *SQLiteStorage) GetDocumentByFilename(ctx context.Context, filename string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, content_type, content, content_hash, created_at, updated_at
		 FROM documents WHERE filename = ? ORDER BY updated_at DESC LIMIT 1`, filename)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %q: %w", filename, ErrNotFound)
	}
	return doc, err
}

func scanDocument(row *sql.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(&doc.ID, &doc.Filename, &doc.ContentType, &doc.Content, &doc.ContentHash, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns all documents ordered by creation time.
func (s *SQLiteStorage) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, content_type, content, content_hash, created_at, updated_at
		 FROM documents ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.ContentType, &doc.Content, &doc.ContentHash, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// UpdateDocument updates an existing document (re-upload path).
func (s *SQLiteStorage) UpdateDocument(ctx context.Context, doc *models.Document) error {
	doc.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET filename = ?, content_type = ?, content = ?, content_hash = ?, updated_at = ?
		 WHERE id = ?`,
		doc.Filename, doc.ContentType, doc.Content, doc.ContentHash, doc.UpdatedAt, doc.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, ErrNotFound)
	}
	return nil
}

// DeleteDocument removes a document and its chunks and chat history.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE document_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceChunks atomically replaces all chunks for a document. Used on upload
// and re-upload so a document's chunk set always matches exactly one build.
func (s *SQLiteStorage) ReplaceChunks(ctx context.Context, docID string, chunks []*models.DocumentChunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = ?`, docID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO document_chunks (id, document_id, content, chunk_index, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, chunk := range chunks {
		chunk.CreatedAt = now
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Content, chunk.ChunkIndex, chunk.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetChunksByDocumentID returns all chunks for a document ordered by chunk_index.
func (s *SQLiteStorage) GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.DocumentChunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, content, chunk_index, created_at
		 FROM document_chunks WHERE document_id = ? ORDER BY chunk_index`,
		docID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.DocumentChunk
	for rows.Next() {
		var chunk models.DocumentChunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.ChunkIndex, &chunk.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

// SaveTurn persists one exchange and returns the record id.
func (s *SQLiteStorage) SaveTurn(ctx context.Context, docID, message, response string, agentID int) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (document_id, message, response, agent_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		docID, message, response, agentID, time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save turn: %w", err)
	}
	return result.LastInsertId()
}

// GetTurnsByDocumentID returns the most recent chat records for a document,
// oldest first. limit <= 0 returns everything.
func (s *SQLiteStorage) GetTurnsByDocumentID(ctx context.Context, docID string, limit int) ([]*models.ChatRecord, error) {
	q := `SELECT id, document_id, message, response, agent_id, created_at
	      FROM chat_messages WHERE document_id = ? ORDER BY id`
	args := []any{docID}
	if limit > 0 {
		q = `SELECT id, document_id, message, response, agent_id, created_at FROM (
		       SELECT id, document_id, message, response, agent_id, created_at
		       FROM chat_messages WHERE document_id = ? ORDER BY id DESC LIMIT ?
		     ) ORDER BY id`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.ChatRecord
	for rows.Next() {
		var rec models.ChatRecord
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.Message, &rec.Response, &rec.AgentID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// CountDocuments returns the number of stored documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// CountChunks returns the number of stored chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
