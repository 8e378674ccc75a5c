package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

const (
	msgNeedTarget     = "To update, I need either the interaction's ID or the HCP name and date."
	msgNoMatch        = "Could not find a matching interaction to update."
	msgMultipleMatch  = "Found multiple interactions. Please be more specific about which one to update."
	msgNothingToApply = "No new data provided to update."
)

// Gateway executes fetch and update tool calls against the interaction store.
// Tool failures are reported in the result, never as a returned error.
type Gateway struct {
	store interaction.Store
}

var _ contractx.ToolGateway = (*Gateway)(nil)

func NewGateway(store interaction.Store) (*Gateway, error) {
	if store == nil {
		return nil, errors.New("interaction store is required")
	}
	return &Gateway{store: store}, nil
}

func (g *Gateway) Execute(ctx context.Context, d contractx.Decision) (contractx.ToolResult, error) {
	switch d.Kind {
	case contractx.ToolFetch:
		if d.Fetch == nil {
			return contractx.ToolResult{}, fmt.Errorf("%w: fetch decision without args", contractx.ErrValidation)
		}
		res := g.Fetch(ctx, *d.Fetch)
		return contractx.ToolResult{Kind: d.Kind, Fetch: &res}, nil
	case contractx.ToolUpdate:
		if d.Update == nil {
			return contractx.ToolResult{}, fmt.Errorf("%w: update decision without args", contractx.ErrValidation)
		}
		return contractx.ToolResult{Kind: d.Kind, Text: g.Update(ctx, *d.Update)}, nil
	default:
		return contractx.ToolResult{}, fmt.Errorf("%w: no tool selected", contractx.ErrValidation)
	}
}

// Fetch looks records up by HCP name and date without modifying anything.
func (g *Gateway) Fetch(ctx context.Context, args contractx.FetchArgs) contractx.FetchResult {
	logger := zerolog.Ctx(ctx)
	name := strings.TrimSpace(args.HCPName)
	date := strings.TrimSpace(args.InteractionDate)

	matches, err := g.store.FindByNameAndDate(ctx, name, date)
	if err != nil {
		logger.Warn().Err(err).Str("hcp_name", name).Str("date", date).Msg("fetch lookup failed")
		return contractx.FetchResult{Status: contractx.FetchError, Message: err.Error()}
	}

	switch len(matches) {
	case 0:
		return contractx.FetchResult{Status: contractx.FetchNotFound, Data: []interaction.Summary{}}
	case 1:
		rec, err := g.store.GetFullByNameAndDate(ctx, name, date)
		if err != nil {
			logger.Warn().Err(err).Str("hcp_name", name).Str("date", date).Msg("fetch full record failed")
			return contractx.FetchResult{Status: contractx.FetchError, Message: err.Error()}
		}
		return contractx.FetchResult{Status: contractx.FetchSuccess, Data: rec}
	default:
		return contractx.FetchResult{Status: contractx.FetchMultipleFound, Data: matches}
	}
}

// Update applies the new_* fields to one record and describes the outcome in text.
func (g *Gateway) Update(ctx context.Context, args contractx.UpdateArgs) string {
	logger := zerolog.Ctx(ctx)

	var targetID int64
	if args.InteractionID != nil && *args.InteractionID > 0 {
		targetID = *args.InteractionID
	} else {
		if args.HCPName == nil || args.InteractionDate == nil {
			return msgNeedTarget
		}
		matches, err := g.store.FindByNameAndDate(ctx, *args.HCPName, *args.InteractionDate)
		if err != nil {
			logger.Warn().Err(err).Msg("update lookup failed")
			return fmt.Sprintf("An error occurred: %v", err)
		}
		switch len(matches) {
		case 0:
			return msgNoMatch
		case 1:
			targetID = matches[0].ID
		default:
			return msgMultipleMatch
		}
	}

	patch := PatchFromArgs(args)
	if patch.IsEmpty() {
		return msgNothingToApply
	}

	ok, err := g.store.UpdatePartial(ctx, targetID, patch)
	switch {
	case errors.Is(err, interaction.ErrValidation):
		return fmt.Sprintf("Could not update interaction with ID %d: %v.", targetID, err)
	case err != nil:
		logger.Warn().Err(err).Int64("interaction_id", targetID).Msg("update failed")
		return fmt.Sprintf("An error occurred: %v", err)
	case !ok:
		return fmt.Sprintf("Failed to update interaction with ID %d.", targetID)
	}

	logger.Info().Int64("interaction_id", targetID).Msg("interaction updated from chat")
	return fmt.Sprintf("Successfully updated interaction with ID %d.", targetID)
}

// PatchFromArgs maps the new_* tool arguments onto a store patch.
func PatchFromArgs(args contractx.UpdateArgs) interaction.Patch {
	patch := interaction.Patch{
		HCPName:          args.NewHCPName,
		InteractionType:  args.NewInteractionType,
		InteractionDate:  args.NewInteractionDate,
		Summary:          args.NewSummary,
		Outcomes:         args.NewOutcomes,
		FollowUp:         args.NewFollowUp,
		DiscussionTopics: args.NewDiscussionTopics,
	}
	if args.NewSentiment != nil {
		s := interaction.Sentiment(*args.NewSentiment)
		patch.Sentiment = &s
	}
	return patch
}
