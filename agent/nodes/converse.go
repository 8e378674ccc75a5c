package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
)

func Converse(ctx context.Context, in *GraphState, conversant contractx.Conversant) (GraphOutput, error) {
	if in == nil || in.Conversation == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply, err := conversant.Reply(ctx, in.Conversation)
	if err != nil {
		return GraphOutput{}, err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = FallbackReply
	}

	return GraphOutput{
		Status:        contractx.TurnContinue,
		Response:      reply,
		InteractionID: in.Conversation.InteractionID,
	}, nil
}
