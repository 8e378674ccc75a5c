package orchestratornode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	statex "github.com/tanpawarit/hcp-interaction-logger/agent/state"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

var (
	ErrInvalidMessage     = errors.New("message is empty")
	ErrInvalidInteraction = errors.New("interaction id must be positive")
)

type GraphInput struct {
	Message       string
	History       []statex.Turn
	InteractionID *int64
}

type GraphOutput = contractx.TurnResult

// GraphState carries one turn through a workflow and is dropped when the request ends.
type GraphState struct {
	Conversation *statex.Conversation
	Now          time.Time

	Decision   contractx.Decision
	ToolResult *contractx.ToolResult

	Parsed *interaction.Interaction
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, ErrInvalidMessage
	}
	if in.InteractionID != nil && *in.InteractionID <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidInteraction, *in.InteractionID)
	}

	conv := statex.NewConversation(in.History, in.Message, in.InteractionID)
	if err := conv.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	return &GraphState{
		Conversation: conv,
		Now:          nowFn().UTC(),
	}, nil
}
