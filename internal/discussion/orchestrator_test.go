package discussion

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/kaiwa/internal/llm"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/storage"
)

type stubContexts struct {
	text string
	err  error
}

func (s *stubContexts) Context(_ context.Context, doc *models.Document, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.text != "" {
		return s.text, nil
	}
	return doc.Content, nil
}

type stubPlanner struct {
	plan *models.ExecutionPlan
	err  error
}

func (s *stubPlanner) Route(_ context.Context, message, _ string) (*models.ExecutionPlan, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.plan != nil {
		return s.plan, nil
	}
	return models.DefaultPlan(message), nil
}

func newTestStorage(t *testing.T) storage.Storage {
	t.Helper()
	st, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func seedDocument(t *testing.T, st storage.Storage, content string) *models.Document {
	t.Helper()
	doc := &models.Document{
		ID:          "doc-1",
		Filename:    "report.txt",
		ContentType: "text/plain",
		Content:     content,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := st.CreateDocument(context.Background(), doc); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	return doc
}

func newOrchestrator(st storage.Storage, planner Planner, gen llm.Generator) *Orchestrator {
	return NewOrchestrator(st, &stubContexts{}, planner, gen, Config{Model: "llama3"})
}

func TestHandleTurnInputValidation(t *testing.T) {
	o := newOrchestrator(newTestStorage(t), &stubPlanner{}, &llm.MockGenerator{})

	cases := []*models.TurnRequest{
		{Message: "hello", AgentID: 1},
		{DocumentID: "doc-1", AgentID: 1},
		{DocumentID: "doc-1", Message: "hello"},
	}
	for i, req := range cases {
		_, err := o.HandleTurn(context.Background(), req)
		var inputErr *InputError
		if !errors.As(err, &inputErr) {
			t.Errorf("case %d: expected InputError, got %v", i, err)
		}
	}
}

func TestHandleTurnDocumentNotFound(t *testing.T) {
	o := newOrchestrator(newTestStorage(t), &stubPlanner{}, &llm.MockGenerator{})

	_, err := o.HandleTurn(context.Background(), &models.TurnRequest{
		DocumentID: "missing", Message: "hello", AgentID: 1,
	})
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError for missing document, got %v", err)
	}
}

func TestHandleTurnEmptyDocumentGuard(t *testing.T) {
	for _, content := range []string{"   \n  ", "Error reading file: permission denied"} {
		st := newTestStorage(t)
		seedDocument(t, st, content)
		gen := &llm.MockGenerator{Responses: []string{"should never be called"}}
		o := newOrchestrator(st, &stubPlanner{}, gen)

		res, err := o.HandleTurn(context.Background(), &models.TurnRequest{
			DocumentID: "doc-1", Message: "summarize", AgentID: 1, AgentStyle: "critical",
		})
		if err != nil {
			t.Fatalf("guard must not error: %v", err)
		}
		if !res.DocumentError {
			t.Error("document_error not set")
		}
		if res.Confidence != 0 {
			t.Errorf("confidence = %v, want 0", res.Confidence)
		}
		if res.MessageID != nil {
			t.Error("guard result must not be persisted")
		}
		if res.Response != cannotAnalyzeText {
			t.Errorf("response = %q", res.Response)
		}
		if len(gen.Requests) != 0 {
			t.Error("no agent should be invoked on an unusable document")
		}
	}
}

func TestHandleTurnSingleAgentFastPath(t *testing.T) {
	st := newTestStorage(t)
	seedDocument(t, st, "The quarterly report shows revenue grew twelve percent.")
	gen := &llm.MockGenerator{Responses: []string{"Revenue grew twelve percent, driven by the new product line."}}
	planner := &stubPlanner{err: errors.New("planner must not be called on the fast path")}
	o := newOrchestrator(st, planner, gen)

	res, err := o.HandleTurn(context.Background(), &models.TurnRequest{
		DocumentID: "doc-1", Message: "What happened to revenue?", AgentID: 2, AgentStyle: "analytical",
		Flags: models.TurnFlags{IsSingleAgent: true},
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if res.Response == "" || res.MessageID == nil {
		t.Fatalf("expected persisted answer, got %+v", res)
	}
	if res.Plan.DiscussionRequired || len(res.Plan.RespondingAgentIDs) != 1 || res.Plan.RespondingAgentIDs[0] != 2 {
		t.Errorf("fast-path plan wrong: %+v", res.Plan)
	}
	if len(gen.Requests) != 1 {
		t.Fatalf("generation calls = %d, want 1", len(gen.Requests))
	}
	// Single-agent prompts must carry the self-contained directive.
	last := gen.Requests[0].Messages[len(gen.Requests[0].Messages)-1]
	if !strings.Contains(last.Content, "ONLY agent") {
		t.Errorf("single-agent directive missing: %q", last.Content)
	}
}

func TestHandleTurnDiscussionSequencing(t *testing.T) {
	st := newTestStorage(t)
	seedDocument(t, st, "Solar adoption is accelerating while grid storage lags behind.")
	gen := &llm.MockGenerator{Responses: []string{
		"Storage is the bottleneck. Agent 1, how would you prioritize investment?",
		"I would prioritize storage subsidies first.",
	}}
	planner := &stubPlanner{plan: &models.ExecutionPlan{
		DiscussionRequired: true,
		InitiatorAgentID:   2,
		RespondingAgentIDs: []int{2, 1},
		RevisedPrompt:      models.SharedPrompt("Discuss the grid storage gap."),
	}}
	o := newOrchestrator(st, planner, gen)

	res, err := o.HandleTurn(context.Background(), &models.TurnRequest{
		DocumentID: "doc-1", Message: "Let Agent 2 start a discussion with Agent 1 about storage.",
		AgentID: 2, AgentStyle: "critical",
		History: []string{"User: Let Agent 2 start a discussion with Agent 1 about storage."},
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if len(gen.Requests) != 2 {
		t.Fatalf("generation calls = %d, want 2", len(gen.Requests))
	}

	// The second responder's prompt must contain the first responder's answer.
	second := gen.Requests[1]
	var sawFirstAnswer bool
	for _, m := range second.Messages {
		if strings.Contains(m.Content, "Storage is the bottleneck.") {
			sawFirstAnswer = true
		}
	}
	if !sawFirstAnswer {
		t.Error("second responder's prompt does not include the first answer")
	}

	if !strings.Contains(res.Response, "Agent 2:") || !strings.Contains(res.Response, "Agent 1:") {
		t.Errorf("multi-agent response lost speaker labels: %q", res.Response)
	}

	// Both answers persisted.
	records, err := st.GetTurnsByDocumentID(context.Background(), "doc-1", 10)
	if err != nil {
		t.Fatalf("GetTurnsByDocumentID: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("persisted records = %d, want 2", len(records))
	}
}

func TestHandleTurnAtomicFailure(t *testing.T) {
	st := newTestStorage(t)
	seedDocument(t, st, "Document body under discussion.")
	gen := &llm.MockGenerator{Err: errors.New("upstream offline")}
	planner := &stubPlanner{plan: &models.ExecutionPlan{
		DiscussionRequired: true,
		InitiatorAgentID:   1,
		RespondingAgentIDs: []int{1, 2},
		RevisedPrompt:      models.SharedPrompt("Discuss the document."),
	}}
	o := newOrchestrator(st, planner, gen)

	_, err := o.HandleTurn(context.Background(), &models.TurnRequest{
		DocumentID: "doc-1", Message: "Let the agents discuss the document.", AgentID: 1, AgentStyle: "practical",
	})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Plan.InitiatorAgentID != 1 {
		t.Errorf("error must carry plan debug, got %+v", upstream.Plan)
	}

	records, err := st.GetTurnsByDocumentID(context.Background(), "doc-1", 10)
	if err != nil {
		t.Fatalf("GetTurnsByDocumentID: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("failed turn must not leave partial records, found %d", len(records))
	}
}

func TestHandleTurnAtomicFailureMidDiscussion(t *testing.T) {
	st := newTestStorage(t)
	seedDocument(t, st, "Document body under discussion.")
	// The first responder answers, the second responder's generation fails.
	gen := &llm.MockGenerator{
		Responses: []string{"The document argues for a phased rollout."},
		Err:       errors.New("upstream offline"),
		FailAt:    2,
	}
	planner := &stubPlanner{plan: &models.ExecutionPlan{
		DiscussionRequired: true,
		InitiatorAgentID:   1,
		RespondingAgentIDs: []int{1, 2},
		RevisedPrompt:      models.SharedPrompt("Discuss the rollout plan."),
	}}
	o := newOrchestrator(st, planner, gen)

	_, err := o.HandleTurn(context.Background(), &models.TurnRequest{
		DocumentID: "doc-1", Message: "Let the agents discuss the rollout.", AgentID: 1, AgentStyle: "practical",
	})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if len(gen.Requests) != 2 {
		t.Fatalf("generation calls = %d, want 2", len(gen.Requests))
	}

	records, err := st.GetTurnsByDocumentID(context.Background(), "doc-1", 10)
	if err != nil {
		t.Fatalf("GetTurnsByDocumentID: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("failed turn left %d partial record(s) behind", len(records))
	}
}

func TestHandleTurnRouterFallbackStillCompletes(t *testing.T) {
	st := newTestStorage(t)
	seedDocument(t, st, "A short report about supply chains.")
	gen := &llm.MockGenerator{Responses: []string{"The report covers supply chain resilience."}}
	o := newOrchestrator(st, &stubPlanner{}, gen) // stub returns the fallback plan

	res, err := o.HandleTurn(context.Background(), &models.TurnRequest{
		DocumentID: "doc-1", Message: "Summarize the document.", AgentID: 1, AgentStyle: "analytical",
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !res.Plan.Fallback {
		t.Error("fallback not observable in plan debug")
	}
	if res.Response == "" {
		t.Error("turn must still complete on fallback")
	}
}

func TestHandleTurnFinalSummary(t *testing.T) {
	st := newTestStorage(t)
	seedDocument(t, st, "Detailed findings about market entry options.")
	gen := &llm.MockGenerator{Responses: []string{
		"Answering your Previous question: direct entry is viable. Overall the discussion favored a phased approach.",
	}}
	planner := &stubPlanner{err: errors.New("router must not run on a terminal turn")}
	o := newOrchestrator(st, planner, gen)

	history := []string{
		"User: Let the agents discuss market entry options.",
		"Agent 1: A joint venture spreads the risk.",
		"Agent 2: I disagree on timing. Would direct entry be viable this year?",
	}
	res, err := o.HandleTurn(context.Background(), &models.TurnRequest{
		DocumentID: "doc-1", Message: "Wrap up the discussion.", AgentID: 1, AgentStyle: "critical",
		History: history, MasterAgentID: 1,
		Flags: models.TurnFlags{IsLastTurn: true},
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !res.IsFinalSummary {
		t.Error("is_final_summary not set")
	}
	if res.MessageID != nil {
		t.Error("summary is not persisted as a turn record")
	}

	req := gen.Requests[len(gen.Requests)-1]
	directive := req.Messages[len(req.Messages)-1].Content
	if !strings.Contains(directive, "Would direct entry be viable this year?") {
		t.Error("summary directive missing the last agent question")
	}
	if !strings.Contains(directive, "Let the agents discuss market entry options.") {
		t.Error("summary directive missing the initial user prompt")
	}
	if !strings.Contains(directive, "DO NOT ask any follow-up questions") {
		t.Error("summary directive must forbid further questions")
	}
}

func TestHandleTurnPodcastMode(t *testing.T) {
	st := newTestStorage(t)
	seedDocument(t, st, "A report on deep sea mining.")
	script := "Agent 1: Welcome to the show!\nAgent 2: Today we dig into deep sea mining."
	gen := &llm.MockGenerator{Responses: []string{script}}
	planner := &stubPlanner{err: errors.New("router must not run in podcast mode")}
	o := newOrchestrator(st, planner, gen)

	res, err := o.HandleTurn(context.Background(), &models.TurnRequest{
		DocumentID: "doc-1", Message: "Deep sea mining", AgentID: 1, AgentStyle: "creative",
		Flags: models.TurnFlags{IsPodcastMode: true},
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !res.IsPodcastMode {
		t.Error("is_podcast_mode not set")
	}
	if res.Response != script {
		t.Errorf("podcast script must be returned verbatim, got %q", res.Response)
	}
	if res.MessageID == nil {
		t.Error("podcast script should be persisted")
	}
}
