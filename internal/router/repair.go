package router

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/kaiwa/internal/models"
)

var (
	mentionRe      = regexp.MustCompile(`[Aa]gent\s+(\d+)`)
	leadingJoinRe  = regexp.MustCompile(`(?i)^(and|then|also)\s+`)
	trailingJoinRe = regexp.MustCompile(`(?i)\s+(and|then|also)[\s.,]*$`)
)

// SplitAgentMentions parses a message for agent mentions ("Agent 1", "Agent 2")
// and returns each mentioned agent's instruction: the text span between its
// label and the next mention, with the label and joining conjunctions trimmed.
// Agents whose span is empty are omitted; a message with no mentions yields an
// empty map.
func SplitAgentMentions(message string) map[int]string {
	matches := mentionRe.FindAllStringSubmatchIndex(message, -1)
	if len(matches) == 0 {
		return map[int]string{}
	}
	out := make(map[int]string, len(matches))
	for i, m := range matches {
		id, err := strconv.Atoi(message[m[2]:m[3]])
		if err != nil {
			continue
		}
		start := m[1]
		end := len(message)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		instr := strings.TrimSpace(message[start:end])
		instr = strings.TrimSpace(strings.TrimLeft(instr, ",:"))
		instr = leadingJoinRe.ReplaceAllString(instr, "")
		instr = trailingJoinRe.ReplaceAllString(instr, "")
		instr = strings.TrimSpace(instr)
		if instr != "" {
			out[id] = instr
		}
	}
	return out
}

// normalize applies deterministic post-processing to a freshly parsed plan:
// it derives a responder list when the classifier omitted one, and repairs the
// under-structured independent-instruction case where two individually
// addressed agents still share one string prompt.
func normalize(plan *models.ExecutionPlan) {
	if plan.InitiatorAgentID == 0 {
		plan.InitiatorAgentID = 1
	}
	if len(plan.RespondingAgentIDs) == 0 {
		if plan.DiscussionRequired {
			plan.RespondingAgentIDs = []int{1, 2}
		} else {
			plan.RespondingAgentIDs = []int{plan.InitiatorAgentID}
		}
	}
	repairSplit(plan)
}

// repairSplit triggers only when the prompt is a plain string that literally
// addresses both Agent 1 and Agent 2, the responders are exactly {1,2}, and no
// discussion was requested. Both per-agent spans must parse non-empty for the
// override to apply.
func repairSplit(plan *models.ExecutionPlan) {
	if plan.DiscussionRequired || plan.RevisedPrompt.IsPerAgent {
		return
	}
	shared := plan.RevisedPrompt.Shared
	if !strings.Contains(shared, "Agent 1") || !strings.Contains(shared, "Agent 2") {
		return
	}
	set := plan.ResponderSet()
	if len(set) != 2 || set[0] != 1 || set[1] != 2 {
		return
	}
	parts := SplitAgentMentions(shared)
	if parts[1] == "" || parts[2] == "" {
		return
	}
	plan.RevisedPrompt = models.PerAgentPrompt(map[int]string{1: parts[1], 2: parts[2]})
}
