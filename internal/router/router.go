// Package router classifies a user instruction into an execution plan:
// single answer, independent per-agent instructions, or a discussion.
package router

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/llm"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/pkg/utils"
)

// maxDocContextChars bounds the document excerpt shown to the classifier.
const maxDocContextChars = 4000

// Router turns a user instruction plus document context into an ExecutionPlan
// via one classification call. Classification failures never fail the turn:
// the fallback plan addresses agent 1 with the original message unmodified.
type Router struct {
	gen    llm.Generator
	model  string
	logger *zap.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// NewRouter creates a router that classifies with the given model.
func NewRouter(gen llm.Generator, model string, opts ...Option) *Router {
	r := &Router{gen: gen, model: model, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route classifies message against docContext and returns the plan. The only
// error it returns is an upstream generation failure; a response the router
// cannot parse yields the observable fallback plan instead.
func (r *Router) Route(ctx context.Context, message, docContext string) (*models.ExecutionPlan, error) {
	req := &llm.Request{
		Model: r.model,
		Messages: []llm.Message{
			llm.System(systemPrompt),
			llm.User(fmt.Sprintf("Document: %s\nPrompt: %s", utils.TruncateChars(docContext, maxDocContextChars), message)),
		},
		ForceJSON: true,
	}
	raw, err := r.gen.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("route message: %w", err)
	}

	plan, ok := ParsePlan(raw)
	if !ok {
		r.logger.Warn("classifier returned no parseable plan, using fallback",
			zap.String("raw", utils.TruncateChars(raw, 200)))
		return models.DefaultPlan(message), nil
	}
	normalize(plan)
	if err := plan.Validate(); err != nil {
		r.logger.Warn("classifier plan invalid, using fallback", zap.Error(err))
		return models.DefaultPlan(message), nil
	}
	r.logger.Debug("routed message",
		zap.Bool("discussion_required", plan.DiscussionRequired),
		zap.Int("initiator", plan.InitiatorAgentID),
		zap.Ints("responders", plan.RespondingAgentIDs))
	return plan, nil
}
