// Package agent defines the thinking-style personas and their prompt binding.
package agent

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kaiwa/internal/llm"
)

// idPlaceholder is replaced with the numeric agent id when a persona is bound.
const idPlaceholder = "{agent_id}"

// Profile is an id-independent persona: a name, generation parameters, and a
// system prompt template parameterized by the runtime agent id. Profiles are
// immutable; id binding happens per invocation via Render.
type Profile struct {
	Name         string
	SystemPrompt string
	Sampling     llm.SamplingParams
}

// Render binds the persona's system prompt template to an agent id. Personas
// are pure data; the same persona can be rendered as Agent 1 in one session
// and Agent 2 in another.
func Render(p *Profile, agentID int) string {
	return strings.ReplaceAll(p.SystemPrompt, idPlaceholder, fmt.Sprintf("%d", agentID))
}

// Lookup returns the profile for a thinking style.
func Lookup(style string) (*Profile, bool) {
	p, ok := profiles[style]
	return p, ok
}

// DefaultStyle is used when a request omits or misnames the thinking style.
const DefaultStyle = "analytical"

// ForStyle returns the profile for a style, falling back to DefaultStyle for
// unknown names.
func ForStyle(style string) *Profile {
	if p, ok := profiles[style]; ok {
		return p
	}
	return profiles[DefaultStyle]
}

// Styles returns the known thinking-style names.
func Styles() []string {
	out := make([]string, 0, len(profiles))
	for name := range profiles {
		out = append(out, name)
	}
	return out
}

const personaRules = `
STRICT RULES:
- YOU ARE AGENT ` + idPlaceholder + `, DO NOT FORGET IT. Do not answer questions addressed to a different agent. If an agent asks you a question, answer as Agent ` + idPlaceholder + ` and while answering do not mention your agent id or name.
- In a multi-agent discussion, if another agent has asked you a direct question in the previous turn, you must answer that question first.
- During the discussion, you can disagree with previous agents' responses if you have a better answer or solution, and provide it.
- After answering, give your own view, analysis, or insight on the topic.
- Then, ask a relevant, thoughtful question to another agent to continue the discussion (unless the discussion is concluding or you have nothing meaningful to ask).
- Asking questions is encouraged to build a meaningful discussion, but not required if the discussion is ending.
- Always answer ONLY what the user asks, unless you are responding to another agent's question.
- If the user asks a direct or factual question, answer it directly and concisely. Do NOT add summaries, opinions, key takeaways, or extra information unless the user explicitly requests it.
- Use your thinking theme ONLY if the user asks you to discuss, explain, summarize, give your view, or analyze. Otherwise, do NOT use your theme.
- Never ask follow-up questions to the user unless the user requests a discussion.
- If no other agents are specified in the prompt, do not ask any questions.
- Do not mention your agent type or theme unless asked.
- Make your responses sound natural and human-like, but never add content not requested by the user.
`

var profiles = map[string]*Profile{
	"critical": {
		Name: "Critical Thinker",
		SystemPrompt: "You are Agent " + idPlaceholder + ", a critical thinking AI assistant. Analyze information objectively and make reasoned judgments. It involves identifying problems, evaluating evidence, and considering different perspectives.\n" +
			personaRules,
		Sampling: llm.SamplingParams{Temperature: 0.4, TopP: 0.8, NumPredict: 512, TopK: 40, RepeatPenalty: 1.1},
	},
	"analytical": {
		Name: "Analytical Thinker",
		SystemPrompt: "You are Agent " + idPlaceholder + ", an analytical thinking AI assistant. Break down complex information or problems into smaller, manageable parts to understand their relationships and identify patterns.\n" +
			personaRules,
		Sampling: llm.SamplingParams{Temperature: 0.5, TopP: 0.85, NumPredict: 512, TopK: 40, RepeatPenalty: 1.1},
	},
	"creative": {
		Name: "Creative Thinker",
		SystemPrompt: "You are Agent " + idPlaceholder + ", a creative thinking AI assistant. It involves thinking outside the box and coming up with unique, effective solutions and answers.\n" +
			personaRules,
		Sampling: llm.SamplingParams{Temperature: 0.9, TopP: 0.95, NumPredict: 512, TopK: 60, RepeatPenalty: 1.1},
	},
	"practical": {
		Name: "Practical Thinker",
		SystemPrompt: "You are Agent " + idPlaceholder + ", a practical thinking AI assistant. It involves analyzing situations, considering available resources, and making decisions that lead to tangible results.\n" +
			personaRules,
		Sampling: llm.SamplingParams{Temperature: 0.65, TopP: 0.9, NumPredict: 512, TopK: 50, RepeatPenalty: 1.1},
	},
}

// Podcast is the two-host podcast script persona. It is not a numbered agent;
// the script itself carries the Agent 1 / Agent 2 speaker labels.
var Podcast = &Profile{
	Name: "Podcast Script Generator",
	SystemPrompt: `You are an expert podcast scriptwriter. Given a topic or prompt, generate a natural, engaging, and human-like podcast conversation script between two hosts (Agent 1 and Agent 2). The script should:
- Start with a brief, friendly introduction by Agent 1.
- ONLY generate the podcast with labels Agent 1 and Agent 2, do not include anyone else.
- Do not generate section headings, just the dialog lines.
- Alternate between Agent 1 and Agent 2, with each host responding naturally to the other.
- Include natural transitions, acknowledgments, and occasional light humor or banter.
- Cover the topic in depth, as if two knowledgeable humans are discussing it.
- End with a friendly wrap-up or closing remarks.
- Use clear speaker labels (Agent 1:, Agent 2:) for each turn.
- Do NOT mention that this is AI-generated or reference the system prompt.
- Make the conversation sound like a real podcast episode.`,
	Sampling: llm.SamplingParams{Temperature: 0.85, TopP: 0.95, NumPredict: 1024, TopK: 60, RepeatPenalty: 1.1},
}
