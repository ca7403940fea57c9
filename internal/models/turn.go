package models

import "time"

// TurnFlags control how a turn is executed.
type TurnFlags struct {
	IsSingleAgent  bool `json:"is_single_agent"`
	IsFinalSummary bool `json:"is_final_summary"`
	IsLastTurn     bool `json:"is_last_turn"`
	IsPodcastMode  bool `json:"is_podcast_mode"`
}

// TurnRequest is one user turn handed to the discussion orchestrator.
type TurnRequest struct {
	DocumentID    string    `json:"document_id"`
	Message       string    `json:"message"`
	AgentID       int       `json:"agent_id"`
	AgentStyle    string    `json:"agent_model_type"`
	History       []string  `json:"discussion_history"`
	MasterAgentID int       `json:"master_agent_id"`
	Flags         TurnFlags `json:"flags"`
}

// PlanDebug carries the router's decision fields so callers can render
// diagnostics even when the turn itself fails.
type PlanDebug struct {
	DiscussionRequired bool       `json:"discussion_required"`
	InitiatorAgentID   int        `json:"initiator_agent_id"`
	RespondingAgentIDs []int      `json:"responding_agent_ids"`
	RevisedPrompt      PromptSpec `json:"revised_prompt"`
	Fallback           bool       `json:"router_fallback,omitempty"`
}

// DebugFrom builds PlanDebug from an execution plan. A nil plan yields the
// zero value with the original message as the revised prompt.
func DebugFrom(plan *ExecutionPlan, message string) PlanDebug {
	if plan == nil {
		return PlanDebug{RevisedPrompt: SharedPrompt(message)}
	}
	return PlanDebug{
		DiscussionRequired: plan.DiscussionRequired,
		InitiatorAgentID:   plan.InitiatorAgentID,
		RespondingAgentIDs: plan.RespondingAgentIDs,
		RevisedPrompt:      plan.RevisedPrompt,
		Fallback:           plan.Fallback,
	}
}

// TurnResult is the outcome of one user turn.
type TurnResult struct {
	Response       string    `json:"response"`
	Confidence     float64   `json:"confidence"`
	MessageID      *int64    `json:"message_id"`
	IsFinalSummary bool      `json:"is_final_summary,omitempty"`
	IsPodcastMode  bool      `json:"is_podcast_mode,omitempty"`
	DocumentError  bool      `json:"document_error,omitempty"`
	Plan           PlanDebug `json:"plan"`
}

// ChatRecord is one persisted exchange: the instruction sent on behalf of the
// user and the responding agent's final text.
type ChatRecord struct {
	ID         int64     `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Message    string    `json:"message" db:"message"`
	Response   string    `json:"response" db:"response"`
	AgentID    int       `json:"agent_id" db:"agent_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
