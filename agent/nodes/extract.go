package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
)

const (
	NodeSave     = "save"
	NodeConverse = "converse"
)

// Extract never fails the turn. Extraction errors and invalid records both
// leave Parsed empty so the conversation continues.
func Extract(ctx context.Context, in *GraphState, extractor contractx.Extractor) (*GraphState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	logger := zerolog.Ctx(ctx)
	in.Parsed = nil

	rec, err := extractor.FromTranscript(ctx, in.Conversation)
	if err != nil {
		logger.Warn().Err(err).Msg("extraction failed, continuing conversation")
		return in, nil
	}
	if rec == nil {
		return in, nil
	}
	if err := rec.Validate(); err != nil {
		logger.Info().Err(err).Str("hcp_name", rec.HCPName).Msg("extracted record rejected")
		return in, nil
	}

	in.Parsed = rec
	return in, nil
}

func RouteAfterExtract(in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Parsed != nil {
		return NodeSave, nil
	}
	return NodeConverse, nil
}
