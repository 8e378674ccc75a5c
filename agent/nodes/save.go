package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

const SavedReply = "Great! I've got it all saved."

func Save(ctx context.Context, in *GraphState, store interaction.Store) (GraphOutput, error) {
	if in == nil || in.Parsed == nil {
		return GraphOutput{}, fmt.Errorf("%w: nothing to save", contractx.ErrValidation)
	}

	saved, err := store.Insert(ctx, in.Parsed, interaction.MethodChat)
	if err != nil {
		return GraphOutput{}, fmt.Errorf("save chat interaction: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("interaction_id", saved.ID).
		Str("method", string(saved.LoggingMethod)).
		Msg("interaction logged")

	id := saved.ID
	return GraphOutput{
		Status:        contractx.TurnSuccess,
		Response:      SavedReply,
		InteractionID: &id,
		Record:        saved,
	}, nil
}
