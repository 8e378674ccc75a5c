package assistant

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	statex "github.com/tanpawarit/hcp-interaction-logger/agent/state"
)

type conversantImpl struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Conversant = (*conversantImpl)(nil)

func newConversant(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*conversantImpl, error) {
	runner, err := compileChatGraph(ctx, chatModel, systemPrompt, "assistant.converse_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return &conversantImpl{runner: runner}, nil
}

// Reply asks the conversation model for the next question. It never calls tools.
func (c *conversantImpl) Reply(ctx context.Context, conv *statex.Conversation) (string, error) {
	if err := conv.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}

	msg, err := c.runner.Invoke(ctx, map[string]any{
		historyKey: conv.Messages(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: converse invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: empty converse response", contractx.ErrSchemaViolation)
	}
	return strings.TrimSpace(msg.Content), nil
}
