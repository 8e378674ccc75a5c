package contract

import (
	"context"

	statex "github.com/tanpawarit/hcp-interaction-logger/agent/state"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

type Decider interface {
	Decide(ctx context.Context, conv *statex.Conversation) (Decision, error)
}

type Conversant interface {
	Reply(ctx context.Context, conv *statex.Conversation) (string, error)
}

// Extractor turns free text into a record. A nil record with a nil error
// means the text did not name an HCP.
type Extractor interface {
	FromText(ctx context.Context, text string) (*interaction.Interaction, error)
	FromTranscript(ctx context.Context, conv *statex.Conversation) (*interaction.Interaction, error)
}

type Registry interface {
	Decider() Decider
	FetchDecider() Decider
	Conversant() Conversant
}

type ToolGateway interface {
	Execute(ctx context.Context, d Decision) (ToolResult, error)
}
