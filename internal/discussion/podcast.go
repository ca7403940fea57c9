package discussion

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/agent"
	"github.com/hyperjump/kaiwa/internal/llm"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/pkg/utils"
)

// podcastTurn generates a two-host podcast script over the document. The raw
// script keeps its Agent 1/Agent 2 speaker labels, so it is persisted and
// returned without format normalization.
func (o *Orchestrator) podcastTurn(ctx context.Context, req *models.TurnRequest, docContext string) (*models.TurnResult, error) {
	prompt := fmt.Sprintf("Podcast Topic: %s\n\nDocument Content (for reference):\n%s",
		req.Message, utils.TruncateChars(docContext, o.cfg.MaxContextChars))

	script, err := o.gen.Generate(ctx, &llm.Request{
		Model: o.cfg.Model,
		Messages: []llm.Message{
			llm.System(agent.Podcast.SystemPrompt),
			llm.User(prompt),
		},
		Sampling: &agent.Podcast.Sampling,
	})
	if err != nil {
		return nil, &UpstreamError{Op: "generate podcast script", Plan: models.DebugFrom(nil, req.Message), Err: err}
	}

	var messageID *int64
	if script != "" {
		id, err := o.storage.SaveTurn(ctx, req.DocumentID, req.Message, script, 1)
		if err != nil {
			return nil, fmt.Errorf("persist podcast script: %w", err)
		}
		messageID = &id
	}

	o.logger.Info("generated podcast script", zap.String("document_id", req.DocumentID))
	return &models.TurnResult{
		Response:      script,
		Confidence:    Confidence(script),
		MessageID:     messageID,
		IsPodcastMode: true,
		Plan:          models.DebugFrom(nil, req.Message),
	}, nil
}
