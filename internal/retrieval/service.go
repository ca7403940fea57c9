package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperjump/kaiwa/internal/config"
	"github.com/hyperjump/kaiwa/internal/embedding"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/storage"
	"github.com/hyperjump/kaiwa/internal/vector"
	"go.uber.org/zap"
)

// broadMarkers are phrases that mark a request as broad (summary-like), which
// widens retrieval. Matching is case-insensitive substring.
var broadMarkers = []string{
	"summarize", "summary", "overview", "key points", "main points",
	"explain", "in detail", "takeaways", "themes",
}

// Service composes the chunker, embedder, and vector index store into
// document indexing and passage retrieval.
type Service struct {
	storage  storage.Storage
	embedder embedding.Embedder
	store    *vector.Store
	chunker  *Chunker
	config   *config.RetrievalConfig
	logger   *zap.Logger // optional; when set, logs debug events
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets a logger for debug output (index builds, query k, etc.).
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a retrieval service with the given dependencies. The
// index store is injected so its lifecycle (create on upload, replace on
// re-upload, evict on delete) is owned here rather than by a process global.
func NewService(
	st storage.Storage,
	embedder embedding.Embedder,
	store *vector.Store,
	cfg *config.RetrievalConfig,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		storage:  st,
		embedder: embedder,
		store:    store,
		chunker:  NewChunker(cfg.MaxChunkWords),
		config:   cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexDocument chunks and embeds text and builds the document's vector index.
// Any embedding failure aborts the whole build; a partial index is never
// registered. Zero chunks (empty text) is a hard failure.
func (s *Service) IndexDocument(ctx context.Context, docID, text string) error {
	texts := s.chunker.Chunk(text)
	if len(texts) == 0 {
		return fmt.Errorf("document %s has no indexable content", docID)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed document %s: %w", docID, err)
	}
	idx, err := vector.NewFlatIndex(vectors)
	if err != nil {
		return fmt.Errorf("failed to build index for document %s: %w", docID, err)
	}

	chunks := make([]*models.DocumentChunk, len(texts))
	for i, content := range texts {
		chunks[i] = &models.DocumentChunk{
			ID:         fmt.Sprintf("%s_%s", docID, uuid.New().String()[:8]),
			DocumentID: docID,
			Content:    content,
			ChunkIndex: i,
		}
	}
	if err := s.storage.ReplaceChunks(ctx, docID, chunks); err != nil {
		return fmt.Errorf("failed to store chunks for document %s: %w", docID, err)
	}

	s.store.Put(docID, idx)
	if s.logger != nil {
		s.logger.Debug("document indexed",
			zap.String("document_id", docID),
			zap.Int("chunks", len(texts)),
			zap.Int("dimensions", idx.Dimensions()),
		)
	}
	return nil
}

// RemoveDocument evicts the document's index.
func (s *Service) RemoveDocument(docID string) {
	s.store.Remove(docID)
}

// HasIndex reports whether an index has been built for the document.
func (s *Service) HasIndex(docID string) bool {
	_, ok := s.store.Get(docID)
	return ok
}

// Context returns the retrieval context for a query against the document: the
// top-k chunks nearest to the query, joined nearest-first with blank lines.
// Broad queries (summaries, overviews) use a larger k than specific ones.
// When no index exists for the document, the full extracted text is returned
// unbounded; callers apply the outbound character budget.
func (s *Service) Context(ctx context.Context, doc *models.Document, query string) (string, error) {
	idx, ok := s.store.Get(doc.ID)
	if !ok {
		if s.logger != nil {
			s.logger.Debug("no index for document, using full text", zap.String("document_id", doc.ID))
		}
		return doc.Content, nil
	}

	k := s.config.SpecificTopK
	if IsBroadQuery(query) {
		k = s.config.BroadTopK
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}
	hits, err := idx.Search(queryVec, k)
	if err != nil {
		return "", fmt.Errorf("vector search failed: %w", err)
	}

	chunks, err := s.storage.GetChunksByDocumentID(ctx, doc.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load chunks: %w", err)
	}
	byIndex := make(map[int]string, len(chunks))
	for _, c := range chunks {
		byIndex[c.ChunkIndex] = c.Content
	}

	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		if content, ok := byIndex[h.ChunkIndex]; ok {
			parts = append(parts, content)
		}
	}
	if s.logger != nil {
		s.logger.Debug("retrieved context",
			zap.String("document_id", doc.ID),
			zap.Int("k", k),
			zap.Int("hits", len(parts)),
		)
	}
	return strings.Join(parts, "\n\n"), nil
}

// IsBroadQuery reports whether the request asks for wide coverage (summary,
// overview) rather than a specific fact.
func IsBroadQuery(query string) bool {
	q := strings.ToLower(query)
	for _, marker := range broadMarkers {
		if strings.Contains(q, marker) {
			return true
		}
	}
	return false
}
