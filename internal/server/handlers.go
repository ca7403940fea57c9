package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/discussion"
	"github.com/hyperjump/kaiwa/internal/models"
)

// maxUploadBytes bounds multipart uploads.
const maxUploadBytes = 32 << 20

// processMessageRequest is the wire shape of one user turn.
type processMessageRequest struct {
	DocumentID     string   `json:"document_id"`
	Message        string   `json:"message"`
	AgentID        int      `json:"agent_id"`
	AgentModelType string   `json:"agent_model_type"`
	History        []string `json:"discussion_history"`
	IsSingleAgent  bool     `json:"is_single_agent"`
	IsFinalSummary bool     `json:"is_final_summary"`
	IsLastTurn     bool     `json:"is_last_turn"`
	MasterAgentID  int      `json:"master_agent_id"`
	IsPodcastMode  bool     `json:"is_podcast_mode"`
}

// turnResponse flattens a TurnResult with the router debug fields.
type turnResponse struct {
	Response           string            `json:"response"`
	Confidence         float64           `json:"confidence"`
	MessageID          *int64            `json:"message_id"`
	IsFinalSummary     bool              `json:"is_final_summary,omitempty"`
	IsPodcastMode      bool              `json:"is_podcast_mode,omitempty"`
	DocumentError      bool              `json:"document_error,omitempty"`
	DiscussionRequired bool              `json:"discussion_required"`
	InitiatorAgentID   int               `json:"initiator_agent_id"`
	RespondingAgentIDs []int             `json:"responding_agent_ids"`
	RevisedPrompt      models.PromptSpec `json:"revised_prompt"`
	RouterFallback     bool              `json:"router_fallback,omitempty"`
}

func toTurnResponse(res *models.TurnResult) turnResponse {
	return turnResponse{
		Response:           res.Response,
		Confidence:         res.Confidence,
		MessageID:          res.MessageID,
		IsFinalSummary:     res.IsFinalSummary,
		IsPodcastMode:      res.IsPodcastMode,
		DocumentError:      res.DocumentError,
		DiscussionRequired: res.Plan.DiscussionRequired,
		InitiatorAgentID:   res.Plan.InitiatorAgentID,
		RespondingAgentIDs: res.Plan.RespondingAgentIDs,
		RevisedPrompt:      res.Plan.RevisedPrompt,
		RouterFallback:     res.Plan.Fallback,
	}
}

// handleUploadDocument accepts either a multipart file upload (field "file")
// or a JSON DocumentInput body.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		s.handleUploadFile(w, r)
		return
	}

	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(input.Content) == "" {
		s.respondError(w, http.StatusBadRequest, "content is required")
		return
	}
	doc, err := s.ingestor.Ingest(r.Context(), &input)
	if err != nil {
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{
		"id":       doc.ID,
		"filename": doc.Filename,
		"message":  "Document uploaded successfully",
	})
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "read upload")
		return
	}
	s.logger.Debug("upload request", zap.String("filename", header.Filename), zap.Int("bytes", len(data)))

	doc, err := s.ingestor.IngestBytes(r.Context(), header.Filename, data)
	if err != nil {
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{
		"id":       doc.ID,
		"filename": doc.Filename,
		"message":  "Document uploaded successfully",
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.storage.GetDocument(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	if err := s.ingestor.DeleteDocument(r.Context(), id); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	records, err := s.storage.GetTurnsByDocumentID(r.Context(), id, 50)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"messages": records})
}

func (s *Server) handleProcessMessage(w http.ResponseWriter, r *http.Request) {
	var req processMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("process message",
		zap.String("document_id", req.DocumentID),
		zap.Int("agent_id", req.AgentID),
		zap.String("agent_model_type", req.AgentModelType))

	res, err := s.orchestrator.HandleTurn(r.Context(), &models.TurnRequest{
		DocumentID:    req.DocumentID,
		Message:       req.Message,
		AgentID:       req.AgentID,
		AgentStyle:    req.AgentModelType,
		History:       req.History,
		MasterAgentID: req.MasterAgentID,
		Flags: models.TurnFlags{
			IsSingleAgent:  req.IsSingleAgent,
			IsFinalSummary: req.IsFinalSummary,
			IsLastTurn:     req.IsLastTurn,
			IsPodcastMode:  req.IsPodcastMode,
		},
	})
	if err != nil {
		s.respondTurnError(w, req.Message, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toTurnResponse(res))
}

// respondTurnError maps orchestrator errors to HTTP statuses, carrying the
// best-known plan fields on upstream failures so clients can still render
// router diagnostics.
func (s *Server) respondTurnError(w http.ResponseWriter, message string, err error) {
	var inputErr *discussion.InputError
	if errors.As(err, &inputErr) {
		status := http.StatusBadRequest
		if inputErr.NotFound {
			status = http.StatusNotFound
		}
		s.respondError(w, status, inputErr.Reason)
		return
	}

	var upstream *discussion.UpstreamError
	if errors.As(err, &upstream) {
		s.logger.Error("turn failed upstream", zap.String("op", upstream.Op), zap.Error(upstream.Err))
		s.respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":                err.Error(),
			"response":             "",
			"confidence":           0,
			"message_id":           nil,
			"discussion_required":  upstream.Plan.DiscussionRequired,
			"initiator_agent_id":   upstream.Plan.InitiatorAgentID,
			"responding_agent_ids": upstream.Plan.RespondingAgentIDs,
			"revised_prompt":       upstream.Plan.RevisedPrompt,
		})
		return
	}

	s.logger.Error("turn failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.storage.CountChunks(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docCount,
		"chunks":    chunkCount,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
