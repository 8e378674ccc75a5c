package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
)

func ExecuteTool(ctx context.Context, in *GraphState, tools contractx.ToolGateway) (*GraphState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	decision := anchorDecision(in.Decision, in.Conversation.InteractionID)
	res, err := tools.Execute(ctx, decision)
	if err != nil {
		return nil, err
	}

	in.Decision = decision
	in.ToolResult = &res
	return in, nil
}

// anchorDecision fills the focused interaction id into an update call that names none.
func anchorDecision(d contractx.Decision, anchor *int64) contractx.Decision {
	if d.Kind != contractx.ToolUpdate || d.Update == nil || anchor == nil {
		return d
	}
	if d.Update.InteractionID != nil {
		return d
	}

	update := *d.Update
	id := *anchor
	update.InteractionID = &id
	d.Update = &update
	return d
}
