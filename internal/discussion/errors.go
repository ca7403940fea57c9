package discussion

import (
	"fmt"

	"github.com/hyperjump/kaiwa/internal/models"
)

// InputError reports a request that cannot start a turn: missing document,
// agent, or message. NotFound distinguishes a referenced document that does
// not exist from a malformed request.
type InputError struct {
	Reason   string
	NotFound bool
}

func (e *InputError) Error() string {
	return "invalid turn request: " + e.Reason
}

// UpstreamError is fatal to the current turn: the embedding or generation
// service failed. It carries the best-known plan fields so callers can still
// render the router's decision.
type UpstreamError struct {
	Op   string
	Plan models.PlanDebug
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
