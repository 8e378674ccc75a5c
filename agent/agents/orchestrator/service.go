package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	nodex "github.com/tanpawarit/hcp-interaction-logger/agent/nodes"
	statex "github.com/tanpawarit/hcp-interaction-logger/agent/state"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

var (
	ErrInvalidMessage     = nodex.ErrInvalidMessage
	ErrInvalidInteraction = nodex.ErrInvalidInteraction
)

// Request is one chat turn: the new user message, the prior turns, and the
// interaction the user is currently focused on, if any.
type Request struct {
	Message       string
	History       []statex.Turn
	InteractionID *int64
}

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator runs the chat workflows. Each call is independent; nothing
// is remembered between requests.
type Orchestrator struct {
	store     interaction.Store
	models    contractx.Registry
	tools     contractx.ToolGateway
	extractor contractx.Extractor

	updateRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
	fetchRunner  compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
	logRunner    compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	store interaction.Store,
	models contractx.Registry,
	tools contractx.ToolGateway,
	extractor contractx.Extractor,
	opts ...Option,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("interaction store is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}

	o := &Orchestrator{
		store:     store,
		models:    models,
		tools:     tools,
		extractor: extractor,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	ctx := context.Background()
	var err error
	if o.updateRunner, err = o.compileDecisionGraph(ctx, models.Decider(), nodex.ReplyUpdate, "orchestrator.update_from_chat"); err != nil {
		return nil, err
	}
	if o.fetchRunner, err = o.compileDecisionGraph(ctx, models.FetchDecider(), nodex.ReplyLookup, "orchestrator.fetch_from_chat"); err != nil {
		return nil, err
	}
	if o.logRunner, err = o.compileLoggingGraph(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// LogFromChat extracts a record from the conversation and saves it, or keeps
// the conversation going when the record is not complete yet.
func (o *Orchestrator) LogFromChat(ctx context.Context, req Request) (contractx.TurnResult, error) {
	return o.logRunner.Invoke(ctx, toGraphInput(req))
}

// UpdateFromChat lets the decision model fetch or update an existing record.
func (o *Orchestrator) UpdateFromChat(ctx context.Context, req Request) (contractx.TurnResult, error) {
	return o.updateRunner.Invoke(ctx, toGraphInput(req))
}

// FetchFromChat is UpdateFromChat restricted to lookups.
func (o *Orchestrator) FetchFromChat(ctx context.Context, req Request) (contractx.TurnResult, error) {
	return o.fetchRunner.Invoke(ctx, toGraphInput(req))
}

func toGraphInput(req Request) nodex.GraphInput {
	return nodex.GraphInput{
		Message:       req.Message,
		History:       req.History,
		InteractionID: req.InteractionID,
	}
}
