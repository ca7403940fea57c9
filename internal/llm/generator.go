// Package llm provides the text generation client used for agent answers,
// routing classification, and summaries.
package llm

import "context"

// Role values for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat message in a generation request.
type Message struct {
	Role    string
	Content string
}

// SamplingParams are the generation parameters of an agent persona.
type SamplingParams struct {
	Temperature   float64
	TopP          float64
	NumPredict    int
	TopK          int
	RepeatPenalty float64
}

// Request is a single generation request. When ForceJSON is set the model is
// constrained to produce a single JSON object.
type Request struct {
	Model     string
	Messages  []Message
	Sampling  *SamplingParams
	ForceJSON bool
}

// Generator produces completions. Implementations are blocking and
// synchronous; callers abort by cancelling ctx.
type Generator interface {
	Generate(ctx context.Context, req *Request) (string, error)
	Close() error
}

// System returns a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User returns a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant returns an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }
