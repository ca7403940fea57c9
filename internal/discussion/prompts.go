package discussion

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kaiwa/internal/agent"
	"github.com/hyperjump/kaiwa/internal/llm"
	"github.com/hyperjump/kaiwa/pkg/utils"
)

// documentPrimacy directs agents to treat the retrieved document content as
// their primary evidence source.
const documentPrimacy = "The following document content should be used as the primary source for your answers. Only use your own knowledge to supplement or clarify if needed."

// agentLinePrefix marks discussion history lines authored by an agent; every
// other line is replayed as a user message.
const agentLinePrefix = "Agent"

// lastTurns returns the window most recent history lines; window <= 0 keeps
// everything.
func lastTurns(history []string, window int) []string {
	if window > 0 && len(history) > window {
		return history[len(history)-window:]
	}
	return history
}

// replayHistory appends at most window history lines to msgs, mapping agent
// lines to the assistant role and everything else to the user role.
func replayHistory(msgs []llm.Message, history []string, window int) []llm.Message {
	for _, turn := range lastTurns(history, window) {
		if strings.HasPrefix(turn, agentLinePrefix) {
			msgs = append(msgs, llm.Assistant(turn))
		} else {
			msgs = append(msgs, llm.User(turn))
		}
	}
	return msgs
}

// buildAgentMessages assembles the full message list for one responder: the
// persona bound to the agent id, the document-primacy directive, the bounded
// document context, the replayed history window, and the instruction itself.
func buildAgentMessages(profile *agent.Profile, agentID int, instruction, docContext string, history []string, window, maxDocChars int, singleAgent bool) []llm.Message {
	recent := lastTurns(history, window)
	msgs := []llm.Message{
		llm.System(agent.Render(profile, agentID)),
		llm.System(documentPrimacy),
		llm.User("Document Content:\n" + utils.TruncateChars(docContext, maxDocChars)),
	}
	msgs = replayHistory(msgs, recent, 0)

	var full string
	if singleAgent {
		full = fmt.Sprintf("Current Instruction: %s\n\n"+
			"IMPORTANT: You are the ONLY agent. Provide a single, well-structured response. Do not ask questions, do not mention other agents, and do not break this into multiple responses.",
			instruction)
	} else {
		full = fmt.Sprintf("Discussion History:\n%s\n\nCurrent Instruction: %s\n\n"+
			"Remember: You are Agent %d. Respond to the current instruction or any questions directed to you. Keep your response focused and concise.",
			strings.Join(recent, "\n"), instruction, agentID)
	}
	return append(msgs, llm.User(full))
}
