// Package ingest turns uploaded or dropped files into stored, indexed
// documents: extract text, persist the document record, and build the
// per-document vector index.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/extract"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/retrieval"
	"github.com/hyperjump/kaiwa/internal/storage"
)

// Ingestor owns the upload path shared by the HTTP API, the CLI, and the
// drop-folder watcher.
type Ingestor struct {
	storage   storage.Storage
	retrieval *retrieval.Service
	extractor *extract.Extractor
	logger    *zap.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Ingestor) { i.logger = logger }
}

// NewIngestor creates an ingestor over the given collaborators.
func NewIngestor(st storage.Storage, ret *retrieval.Service, ex *extract.Extractor, opts ...Option) *Ingestor {
	i := &Ingestor{storage: st, retrieval: ret, extractor: ex, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IngestBytes stores raw file content as a document. Content already ingested
// (by hash) is returned as-is, and a changed file with a known filename
// replaces that document in place, so re-scanning a drop folder never
// duplicates documents. Extraction failures are recorded in-band as an error
// marker so the analysis pipeline can report them to the user; only usable
// text is indexed.
func (i *Ingestor) IngestBytes(ctx context.Context, filename string, data []byte) (*models.Document, error) {
	hash := contentHash(data)
	existing, err := i.storage.GetDocumentByHash(ctx, hash)
	if err == nil {
		i.logger.Debug("content already ingested",
			zap.String("id", existing.ID), zap.String("filename", filename))
		return existing, nil
	}
	if !storage.IsNotFound(err) {
		return nil, fmt.Errorf("look up document by hash: %w", err)
	}

	ext := filepath.Ext(filename)
	text, err := i.extractor.ExtractBytes(data, ext)
	if err != nil {
		i.logger.Warn("extraction failed, storing error marker",
			zap.String("filename", filename), zap.Error(err))
		text = fmt.Sprintf("%s %v", extract.ErrorMarker, err)
	}

	prior, err := i.storage.GetDocumentByFilename(ctx, filename)
	if err == nil {
		return i.replaceDocument(ctx, prior, contentTypeFor(ext), text, hash)
	}
	if !storage.IsNotFound(err) {
		return nil, fmt.Errorf("look up document by filename: %w", err)
	}

	now := time.Now()
	doc := &models.Document{
		ID:          uuid.New().String(),
		Filename:    filename,
		ContentType: contentTypeFor(ext),
		Content:     text,
		ContentHash: hash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := i.storage.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	if usable(text) {
		if err := i.retrieval.IndexDocument(ctx, doc.ID, text); err != nil {
			return nil, fmt.Errorf("index document %s: %w", doc.ID, err)
		}
	}
	i.logger.Info("ingested document",
		zap.String("id", doc.ID),
		zap.String("filename", filename),
		zap.Bool("indexed", usable(text)))
	return doc, nil
}

// replaceDocument updates a known document with new content and rebuilds its
// index under the same id.
func (i *Ingestor) replaceDocument(ctx context.Context, doc *models.Document, contentType, text, hash string) (*models.Document, error) {
	doc.ContentType = contentType
	doc.Content = text
	doc.ContentHash = hash
	if err := i.storage.UpdateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("update document %s: %w", doc.ID, err)
	}
	if usable(text) {
		if err := i.retrieval.IndexDocument(ctx, doc.ID, text); err != nil {
			return nil, fmt.Errorf("index document %s: %w", doc.ID, err)
		}
	} else {
		i.retrieval.RemoveDocument(doc.ID)
	}
	i.logger.Info("replaced document content",
		zap.String("id", doc.ID), zap.String("filename", doc.Filename))
	return doc, nil
}

// IngestFile ingests the file at path. Unsupported extensions are rejected.
func (i *Ingestor) IngestFile(ctx context.Context, path string) (*models.Document, error) {
	ext := filepath.Ext(path)
	if !extract.Supported(ext) {
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return i.IngestBytes(ctx, filepath.Base(path), data)
}

// Ingest stores a document whose text content is already available. Content
// already ingested (by hash) is returned as-is.
func (i *Ingestor) Ingest(ctx context.Context, input *models.DocumentInput) (*models.Document, error) {
	hash := contentHash([]byte(input.Content))
	if existing, err := i.storage.GetDocumentByHash(ctx, hash); err == nil {
		return existing, nil
	} else if !storage.IsNotFound(err) {
		return nil, fmt.Errorf("look up document by hash: %w", err)
	}

	now := time.Now()
	doc := &models.Document{
		ID:          input.ID,
		Filename:    input.Filename,
		ContentType: input.ContentType,
		Content:     input.Content,
		ContentHash: hash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.ContentType == "" {
		doc.ContentType = "text/plain"
	}
	if err := i.storage.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	if usable(doc.Content) {
		if err := i.retrieval.IndexDocument(ctx, doc.ID, doc.Content); err != nil {
			return nil, fmt.Errorf("index document %s: %w", doc.ID, err)
		}
	}
	return doc, nil
}

// DeleteDocument removes the document, its chunks and chat history, and
// evicts its in-memory index.
func (i *Ingestor) DeleteDocument(ctx context.Context, id string) error {
	i.retrieval.RemoveDocument(id)
	if err := i.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// RebuildIndices reconstructs the in-memory vector indices from stored
// documents, typically at startup. Documents that fail to index are skipped
// with a warning so one bad document does not block the rest.
func (i *Ingestor) RebuildIndices(ctx context.Context) error {
	docs, err := i.storage.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for _, doc := range docs {
		if !usable(doc.Content) {
			continue
		}
		if err := i.retrieval.IndexDocument(ctx, doc.ID, doc.Content); err != nil {
			i.logger.Warn("rebuild index failed", zap.String("id", doc.ID), zap.Error(err))
			continue
		}
	}
	i.logger.Info("rebuilt vector indices", zap.Int("documents", len(docs)))
	return nil
}

// usable reports whether text can feed the indexing and analysis pipeline.
func usable(text string) bool {
	return strings.TrimSpace(text) != "" && !extract.IsErrorMarker(text)
}

// contentHash identifies source bytes for ingest deduplication.
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// contentTypeFor maps a file extension to a MIME type, defaulting to
// text/plain for unknown extensions.
func contentTypeFor(ext string) string {
	if ct := mime.TypeByExtension(strings.ToLower(ext)); ct != "" {
		return ct
	}
	return "text/plain"
}
