// Package discussion drives one user turn end to end: plan the turn, prompt
// each responding agent in order, persist the answers, and summarize when the
// turn is terminal.
package discussion

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/agent"
	"github.com/hyperjump/kaiwa/internal/extract"
	"github.com/hyperjump/kaiwa/internal/llm"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/storage"
)

// cannotAnalyzeText is returned when the document has no usable content.
const cannotAnalyzeText = "The document has very little data to analyze or I am not able to answer based on the document."

// ContextProvider supplies the document context for a query: retrieved
// passages when the document is indexed, the full text otherwise.
type ContextProvider interface {
	Context(ctx context.Context, doc *models.Document, query string) (string, error)
}

// Planner classifies a user instruction into an execution plan.
type Planner interface {
	Route(ctx context.Context, message, docContext string) (*models.ExecutionPlan, error)
}

// Config carries the orchestrator's tunables.
type Config struct {
	// Model is the generation model used for agent and summary turns.
	Model string
	// HistoryWindow bounds how many recent discussion lines are replayed.
	HistoryWindow int
	// MaxContextChars bounds the document content included in prompts.
	MaxContextChars int
}

// Orchestrator executes user turns against a document.
type Orchestrator struct {
	storage  storage.Storage
	contexts ContextProvider
	planner  Planner
	gen      llm.Generator
	cfg      Config
	logger   *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// NewOrchestrator creates an orchestrator over the given collaborators.
func NewOrchestrator(st storage.Storage, contexts ContextProvider, planner Planner, gen llm.Generator, cfg Config, opts ...Option) *Orchestrator {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 10
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 8000
	}
	o := &Orchestrator{
		storage:  st,
		contexts: contexts,
		planner:  planner,
		gen:      gen,
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HandleTurn runs one user turn to completion. Unreadable or empty documents
// yield a zero-confidence "cannot analyze" result rather than an error; a
// failing responder fails the whole turn with no partial results.
func (o *Orchestrator) HandleTurn(ctx context.Context, req *models.TurnRequest) (*models.TurnResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	doc, err := o.storage.GetDocument(ctx, req.DocumentID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, &InputError{Reason: fmt.Sprintf("document %s not found", req.DocumentID), NotFound: true}
		}
		return nil, fmt.Errorf("load document: %w", err)
	}

	if strings.TrimSpace(doc.Content) == "" || extract.IsErrorMarker(doc.Content) {
		o.logger.Warn("document has no usable content", zap.String("document_id", doc.ID))
		return &models.TurnResult{
			Response:      cannotAnalyzeText,
			Confidence:    0,
			DocumentError: true,
			Plan:          models.DebugFrom(nil, req.Message),
		}, nil
	}

	docContext, err := o.contexts.Context(ctx, doc, req.Message)
	if err != nil {
		return nil, &UpstreamError{Op: "retrieve context", Plan: models.DebugFrom(nil, req.Message), Err: err}
	}

	if req.Flags.IsPodcastMode {
		return o.podcastTurn(ctx, req, docContext)
	}

	// Terminal turns go straight to the summarizer; there is nothing left to
	// route once the discussion is being closed.
	if !req.Flags.IsSingleAgent && (req.Flags.IsFinalSummary || req.Flags.IsLastTurn) {
		return o.summarize(ctx, req, docContext)
	}

	plan, err := o.plan(ctx, req, docContext)
	if err != nil {
		return nil, err
	}
	return o.respond(ctx, req, plan, docContext)
}

func validateRequest(req *models.TurnRequest) error {
	switch {
	case req.DocumentID == "":
		return &InputError{Reason: "missing document_id"}
	case strings.TrimSpace(req.Message) == "":
		return &InputError{Reason: "missing message"}
	case req.AgentID <= 0:
		return &InputError{Reason: "missing agent_id"}
	}
	return nil
}

// plan picks the fast path when the caller already narrowed the turn to one
// agent, otherwise asks the planner for a classification.
func (o *Orchestrator) plan(ctx context.Context, req *models.TurnRequest, docContext string) (*models.ExecutionPlan, error) {
	if req.Flags.IsSingleAgent {
		return models.SingleAgentPlan(req.AgentID, req.Message), nil
	}
	plan, err := o.planner.Route(ctx, req.Message, docContext)
	if err != nil {
		return nil, &UpstreamError{Op: "route message", Plan: models.DebugFrom(nil, req.Message), Err: err}
	}
	return plan, nil
}

// pendingTurn is a responder's answer held back until the whole turn succeeds.
type pendingTurn struct {
	agentID     int
	instruction string
	answer      string
}

// respond runs the per-responder generation loop in plan order. Each answer is
// appended to the history before the next responder's prompt is built, so a
// later agent sees the earlier answers. Nothing is persisted until every
// responder has answered, so a failing responder leaves no partial records.
func (o *Orchestrator) respond(ctx context.Context, req *models.TurnRequest, plan *models.ExecutionPlan, docContext string) (*models.TurnResult, error) {
	profile := agent.ForStyle(req.AgentStyle)
	singleAgent := !plan.DiscussionRequired && len(plan.RespondingAgentIDs) == 1

	history := append([]string(nil), req.History...)
	var answers []string
	var pending []pendingTurn

	for _, agentID := range plan.RespondingAgentIDs {
		instruction := plan.RevisedPrompt.For(agentID)
		if instruction == "" {
			instruction = req.Message
		}

		msgs := buildAgentMessages(profile, agentID, instruction, docContext, history, o.cfg.HistoryWindow, o.cfg.MaxContextChars, singleAgent)
		raw, err := o.gen.Generate(ctx, &llm.Request{
			Model:    o.cfg.Model,
			Messages: msgs,
			Sampling: &profile.Sampling,
		})
		if err != nil {
			return nil, &UpstreamError{Op: fmt.Sprintf("generate agent %d response", agentID), Plan: models.DebugFrom(plan, req.Message), Err: err}
		}

		answer := FormatResponse(raw)
		if answer == "" {
			o.logger.Warn("agent produced empty answer", zap.Int("agent_id", agentID))
			continue
		}
		history = append(history, fmt.Sprintf("Agent %d: %s", agentID, answer))
		answers = append(answers, answer)
		pending = append(pending, pendingTurn{agentID: agentID, instruction: instruction, answer: answer})
	}

	var messageID *int64
	for _, p := range pending {
		id, err := o.storage.SaveTurn(ctx, req.DocumentID, p.instruction, p.answer, p.agentID)
		if err != nil {
			return nil, fmt.Errorf("persist agent %d turn: %w", p.agentID, err)
		}
		messageID = &id
	}

	response := strings.Join(answers, "\n\n")
	if len(answers) > 1 {
		// Multi-responder turns keep the speaker labels so the reader can
		// tell the voices apart.
		response = strings.Join(history[len(history)-len(answers):], "\n\n")
	}
	return &models.TurnResult{
		Response:   response,
		Confidence: Confidence(response),
		MessageID:  messageID,
		Plan:       models.DebugFrom(plan, req.Message),
	}, nil
}
