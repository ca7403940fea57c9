package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// PromptSpec is the revised prompt of an execution plan. It is either a single
// shared instruction or a mapping from agent id to that agent's private
// instruction. In the wire format the mapping keys are agent ids as strings.
type PromptSpec struct {
	Shared     string
	PerAgent   map[int]string
	IsPerAgent bool
}

// SharedPrompt returns a PromptSpec carrying one instruction for all responders.
func SharedPrompt(s string) PromptSpec {
	return PromptSpec{Shared: s}
}

// PerAgentPrompt returns a PromptSpec with one private instruction per agent id.
func PerAgentPrompt(m map[int]string) PromptSpec {
	return PromptSpec{PerAgent: m, IsPerAgent: true}
}

// For returns the instruction for the given agent. For a shared prompt every
// agent receives the same instruction; for a per-agent prompt an agent without
// an entry receives the empty string.
func (p PromptSpec) For(agentID int) string {
	if p.IsPerAgent {
		return p.PerAgent[agentID]
	}
	return p.Shared
}

// UnmarshalJSON accepts either a JSON string or an object of id->instruction.
func (p *PromptSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = SharedPrompt(s)
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("revised_prompt must be a string or an object of agent id to instruction")
	}
	perAgent := make(map[int]string, len(m))
	for k, v := range m {
		id, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("revised_prompt key %q is not an agent id", k)
		}
		perAgent[id] = v
	}
	*p = PerAgentPrompt(perAgent)
	return nil
}

// MarshalJSON emits a string for shared prompts and an object for per-agent prompts.
func (p PromptSpec) MarshalJSON() ([]byte, error) {
	if !p.IsPerAgent {
		return json.Marshal(p.Shared)
	}
	m := make(map[string]string, len(p.PerAgent))
	for id, instr := range p.PerAgent {
		m[strconv.Itoa(id)] = instr
	}
	return json.Marshal(m)
}

// ExecutionPlan is the router's structured decision for how one user turn is
// carried out. Produced fresh per turn and consumed immediately; never persisted.
type ExecutionPlan struct {
	DiscussionRequired bool       `json:"discussion_required"`
	InitiatorAgentID   int        `json:"initiator_agent_id"`
	RespondingAgentIDs []int      `json:"responding_agent_ids"`
	RevisedPrompt      PromptSpec `json:"revised_prompt"`

	// Fallback is set when the plan is the documented single-agent default
	// used after a classification failure, so callers can tell it apart
	// from a genuine router decision.
	Fallback bool `json:"fallback,omitempty"`
}

// DefaultPlan is the single-agent fallback plan: agent 1, no discussion, the
// original message unmodified.
func DefaultPlan(message string) *ExecutionPlan {
	return &ExecutionPlan{
		DiscussionRequired: false,
		InitiatorAgentID:   1,
		RespondingAgentIDs: []int{1},
		RevisedPrompt:      SharedPrompt(message),
		Fallback:           true,
	}
}

// SingleAgentPlan is the fast-path plan addressing exactly one agent with the
// message unchanged.
func SingleAgentPlan(agentID int, message string) *ExecutionPlan {
	return &ExecutionPlan{
		DiscussionRequired: false,
		InitiatorAgentID:   agentID,
		RespondingAgentIDs: []int{agentID},
		RevisedPrompt:      SharedPrompt(message),
	}
}

// Validate reports whether the plan is internally consistent: at least one
// responder and no duplicate responder ids.
func (p *ExecutionPlan) Validate() error {
	if len(p.RespondingAgentIDs) == 0 {
		return fmt.Errorf("plan has no responding agents")
	}
	seen := make(map[int]bool, len(p.RespondingAgentIDs))
	for _, id := range p.RespondingAgentIDs {
		if seen[id] {
			return fmt.Errorf("duplicate responding agent id %d", id)
		}
		seen[id] = true
	}
	return nil
}

// ResponderSet returns the sorted distinct responder ids.
func (p *ExecutionPlan) ResponderSet() []int {
	set := make(map[int]bool, len(p.RespondingAgentIDs))
	for _, id := range p.RespondingAgentIDs {
		set[id] = true
	}
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
