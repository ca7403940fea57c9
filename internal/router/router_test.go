package router

import (
	"context"
	"strings"
	"testing"

	"github.com/hyperjump/kaiwa/internal/llm"
)

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, true},
		{"surrounding prose", `Sure! Here is the plan: {"a": 1} hope that helps`, `{"a": 1}`, true},
		{"nested object", `{"revised_prompt": {"1": "x", "2": "y"}}`, `{"revised_prompt": {"1": "x", "2": "y"}}`, true},
		{"brace in string", `{"a": "close } brace"}`, `{"a": "close } brace"}`, true},
		{"no object", "no json here", "", false},
		{"unclosed", `{"a": 1`, "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractJSONObject(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRouteSingleAgentLabelStripped(t *testing.T) {
	gen := &llm.MockGenerator{Responses: []string{
		`{"discussion_required": false, "initiator_agent_id": 1, "responding_agent_ids": [1], "revised_prompt": "What are your thoughts?"}`,
	}}
	r := NewRouter(gen, "llama3")

	plan, err := r.Route(context.Background(), "Agent 1, what are your thoughts?", "doc text")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if plan.DiscussionRequired {
		t.Error("expected no discussion")
	}
	if plan.InitiatorAgentID != 1 {
		t.Errorf("initiator = %d, want 1", plan.InitiatorAgentID)
	}
	if len(plan.RespondingAgentIDs) != 1 || plan.RespondingAgentIDs[0] != 1 {
		t.Errorf("responders = %v, want [1]", plan.RespondingAgentIDs)
	}
	if got := plan.RevisedPrompt.For(1); strings.Contains(got, "Agent 1") {
		t.Errorf("label not stripped: %q", got)
	}
	if plan.Fallback {
		t.Error("genuine decision marked as fallback")
	}
}

func TestRouteSplitRepair(t *testing.T) {
	// Classifier under-structures the independent-instruction case: string
	// prompt still carries both labels. The repair pass must split it.
	gen := &llm.MockGenerator{Responses: []string{
		`{"discussion_required": false, "initiator_agent_id": 1, "responding_agent_ids": [1,2], "revised_prompt": "Agent 1 give me 3 key points and Agent 2 tell me the risks"}`,
	}}
	r := NewRouter(gen, "llama3")

	plan, err := r.Route(context.Background(), "Agent 1 give me 3 key points and Agent 2 tell me the risks", "doc")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !plan.RevisedPrompt.IsPerAgent {
		t.Fatalf("expected per-agent prompt after repair, got shared %q", plan.RevisedPrompt.Shared)
	}
	if got := plan.RevisedPrompt.For(1); got != "give me 3 key points" {
		t.Errorf("agent 1 instruction = %q", got)
	}
	if got := plan.RevisedPrompt.For(2); got != "tell me the risks" {
		t.Errorf("agent 2 instruction = %q", got)
	}
}

func TestRouteDiscussionOrdering(t *testing.T) {
	gen := &llm.MockGenerator{Responses: []string{
		`{"discussion_required": true, "initiator_agent_id": 2, "responding_agent_ids": [2,1], "revised_prompt": "Start a discussion about the main findings."}`,
	}}
	r := NewRouter(gen, "llama3")

	plan, err := r.Route(context.Background(), "Let Agent 2 start a discussion with Agent 1 about the main findings.", "doc")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !plan.DiscussionRequired || plan.InitiatorAgentID != 2 {
		t.Errorf("discussion=%v initiator=%d, want true/2", plan.DiscussionRequired, plan.InitiatorAgentID)
	}
	if len(plan.RespondingAgentIDs) != 2 || plan.RespondingAgentIDs[0] != 2 || plan.RespondingAgentIDs[1] != 1 {
		t.Errorf("responders = %v, want [2 1]", plan.RespondingAgentIDs)
	}
}

func TestRouteMalformedFallsBack(t *testing.T) {
	gen := &llm.MockGenerator{Responses: []string{"I could not decide, sorry."}}
	r := NewRouter(gen, "llama3")

	plan, err := r.Route(context.Background(), "Summarize the document.", "doc")
	if err != nil {
		t.Fatalf("Route must not fail on malformed output: %v", err)
	}
	if !plan.Fallback {
		t.Error("fallback plan not observable")
	}
	if plan.DiscussionRequired || plan.InitiatorAgentID != 1 {
		t.Errorf("fallback shape wrong: %+v", plan)
	}
	if got := plan.RevisedPrompt.For(1); got != "Summarize the document." {
		t.Errorf("fallback must carry the original message, got %q", got)
	}
}

func TestRouteDerivesMissingResponders(t *testing.T) {
	gen := &llm.MockGenerator{Responses: []string{
		`{"discussion_required": true, "initiator_agent_id": 1, "revised_prompt": "Discuss the implications of AI."}`,
	}}
	r := NewRouter(gen, "llama3")

	plan, err := r.Route(context.Background(), "Let the agents discuss the implications of AI.", "doc")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(plan.RespondingAgentIDs) != 2 || plan.RespondingAgentIDs[0] != 1 || plan.RespondingAgentIDs[1] != 2 {
		t.Errorf("derived responders = %v, want [1 2]", plan.RespondingAgentIDs)
	}
}

func TestSplitAgentMentions(t *testing.T) {
	got := SplitAgentMentions("Agent 1 summarize the intro and Agent 2 list the open risks")
	if got[1] != "summarize the intro" {
		t.Errorf("agent 1 = %q", got[1])
	}
	if got[2] != "list the open risks" {
		t.Errorf("agent 2 = %q", got[2])
	}

	if out := SplitAgentMentions("no mentions at all"); len(out) != 0 {
		t.Errorf("expected empty map, got %v", out)
	}
}
