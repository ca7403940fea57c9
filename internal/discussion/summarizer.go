package discussion

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/agent"
	"github.com/hyperjump/kaiwa/internal/llm"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/pkg/utils"
)

// questionRe extracts the first sentence ending in a question mark from an
// agent's last turn, so the summary can answer it before concluding.
var questionRe = regexp.MustCompile(`([A-Z][^\n.!?]*\?)`)

// userLinePrefix marks the history line carrying the user's original request.
const userLinePrefix = "User:"

// lastAgentQuestion returns the most recent unanswered question from the last
// history line, or "" when there is none.
func lastAgentQuestion(history []string) string {
	if len(history) == 0 {
		return ""
	}
	if m := questionRe.FindStringSubmatch(history[len(history)-1]); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// initialUserPrompt returns the first history line literally authored by the
// user, stripped of its prefix.
func initialUserPrompt(history []string) string {
	for _, turn := range history {
		if strings.HasPrefix(turn, userLinePrefix) {
			return strings.TrimSpace(strings.TrimPrefix(turn, userLinePrefix))
		}
	}
	return ""
}

// buildSummaryPrompt composes the synthesis directive: answer any outstanding
// question first, enumerate everything discussed, then conclude against the
// user's original request. The output is terminal and self-contained.
func buildSummaryPrompt(history []string) string {
	var b strings.Builder
	if q := lastAgentQuestion(history); q != "" {
		b.WriteString("The previous agent asked: '" + q + "' Please answer this question first in your summary.\n")
	}
	b.WriteString("The above is a discussion between multiple agents. As the master agent, your FINAL response should do the following: " +
		"\n- First of all answer the questions raised by the previous agent(Start by saying Answering your Previous question:(answer)).After that: " +
		"\n- List ALL important points, insights, and takeaways discussed in the conversation and found in the document. " +
		"\n- Include any consensus, disagreements, and final recommendations. " +
		"\n- Your response must be a complete, self-contained summary for the user. " +
		"\n- DO NOT ask any follow-up questions or continue the discussion. " +
		"\n- DO NOT ask the user or other agents anything. " +
		"\n- Only summarize and conclude. " +
		"\n- Make your summary as exhaustive as possible, covering all key points from the document and the discussion. " +
		"\n- Write in a human-like, conversational style, but do not leave anything important out. " +
		"\n- If any agent asked a question that was not answered, do your best to answer it in the summary. " +
		"\n- This is the FINAL response of the discussion, make it comprehensive and conclusive.")
	if initial := initialUserPrompt(history); initial != "" {
		b.WriteString("\n\nFinally, carefully read the user's initial prompt again: '" + initial + "'. " +
			"Based on everything discussed so far and all insights from the document, provide a conclusive result, solution, or recommendation that directly addresses the user's original request. " +
			"If the user asked for a specific type of conclusion (e.g., risk mitigation strategies), make sure to provide that at the end of your summary, using all the knowledge from the discussion and document in a concise yet rich manner.")
	}
	return b.String()
}

// summarize closes a multi-agent discussion with one master-agent call. The
// turn is never routed: the master agent and directive are fixed, so no
// classification is needed. The summary is returned with is_final_summary set
// and is not itself re-entered into the discussion history.
func (o *Orchestrator) summarize(ctx context.Context, req *models.TurnRequest, docContext string) (*models.TurnResult, error) {
	masterID := req.MasterAgentID
	if masterID <= 0 {
		masterID = req.AgentID
	}
	profile := agent.ForStyle(req.AgentStyle)
	plan := models.SingleAgentPlan(masterID, req.Message)

	msgs := []llm.Message{
		llm.System(agent.Render(profile, masterID)),
		llm.System(documentPrimacy),
		llm.User("Document Content:\n" + utils.TruncateChars(docContext, o.cfg.MaxContextChars)),
	}
	msgs = replayHistory(msgs, req.History, 0)
	msgs = append(msgs, llm.User(buildSummaryPrompt(req.History)))

	raw, err := o.gen.Generate(ctx, &llm.Request{
		Model:    o.cfg.Model,
		Messages: msgs,
		Sampling: &profile.Sampling,
	})
	if err != nil {
		return nil, &UpstreamError{Op: "generate final summary", Plan: models.DebugFrom(plan, req.Message), Err: err}
	}

	o.logger.Info("generated final summary", zap.String("document_id", req.DocumentID), zap.Int("master_agent_id", masterID))
	return &models.TurnResult{
		Response:       FormatResponse(raw),
		Confidence:     Confidence(raw),
		IsFinalSummary: true,
		Plan:           models.DebugFrom(plan, req.Message),
	}, nil
}
