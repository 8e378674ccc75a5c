package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
)

const (
	NodeExecuteTool   = "execute_tool"
	NodeFinalizeReply = "finalize_reply"
)

func Decide(ctx context.Context, in *GraphState, decider contractx.Decider) (*GraphState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	decision, err := decider.Decide(ctx, in.Conversation)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("tool", string(decision.Kind)).
		Bool("anchored", in.Conversation.InteractionID != nil).
		Msg("decision made")

	in.Decision = decision
	return in, nil
}

func RouteAfterDecide(in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Decision.HasTool() {
		return NodeExecuteTool, nil
	}
	return NodeFinalizeReply, nil
}
