package assistant

import (
	"context"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	promptx "github.com/tanpawarit/hcp-interaction-logger/agent/prompt"
	statex "github.com/tanpawarit/hcp-interaction-logger/agent/state"
	toolx "github.com/tanpawarit/hcp-interaction-logger/agent/tool"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

type deciderImpl struct {
	runner  compose.Runnable[map[string]any, *schema.Message]
	allowed []contractx.ToolKind
	now     func() time.Time
}

var _ contractx.Decider = (*deciderImpl)(nil)

func newDecider(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	graphName string,
	allowed ...contractx.ToolKind,
) (*deciderImpl, error) {
	toolModel, err := chatModel.WithTools(toolx.Infos(allowed...))
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for %s: %v", contractx.ErrModelInvoke, graphName, err)
	}

	runner, err := compileChatGraph(ctx, toolModel, systemPrompt, graphName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	return &deciderImpl{
		runner:  runner,
		allowed: append([]contractx.ToolKind(nil), allowed...),
		now:     time.Now,
	}, nil
}

func (d *deciderImpl) Decide(ctx context.Context, conv *statex.Conversation) (contractx.Decision, error) {
	if err := conv.Validate(); err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}

	msg, err := d.runner.Invoke(ctx, map[string]any{
		promptx.ContextNoteKey: conv.ContextNote(),
		promptx.CurrentDateVar: d.now().Format(interaction.DateLayout),
		historyKey:             conv.Messages(),
	})
	if err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: decision invoke: %v", contractx.ErrModelInvoke, err)
	}

	decision, err := toolx.ParseCalls(msg, d.allowed...)
	if err != nil {
		return contractx.Decision{}, err
	}

	if msg != nil && len(msg.ToolCalls) > 1 {
		zerolog.Ctx(ctx).Debug().
			Int("tool_calls", len(msg.ToolCalls)).
			Msg("decision returned several tool calls; honoring the first")
	}
	return decision, nil
}
