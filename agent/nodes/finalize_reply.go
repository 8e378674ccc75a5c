package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

// FallbackReply is used when the model answers with neither text nor a tool call.
const FallbackReply = "Sorry, I didn't catch that. Could you rephrase your request?"

// ReplyMode decides how a fetch result maps to a turn status.
type ReplyMode int

const (
	// ReplyUpdate keeps the turn open after any fetch so the user can follow up with an edit.
	ReplyUpdate ReplyMode = iota
	// ReplyLookup ends the turn once a fetch finds at least one record.
	ReplyLookup
)

func FinalizeReply(in *GraphState, mode ReplyMode) (GraphOutput, error) {
	if in == nil || in.Conversation == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	out := GraphOutput{InteractionID: in.Conversation.InteractionID}
	if in.ToolResult == nil {
		out.Status = contractx.TurnContinue
		out.Response = strings.TrimSpace(in.Decision.Reply)
		if out.Response == "" {
			out.Response = FallbackReply
		}
		return out, nil
	}

	switch in.ToolResult.Kind {
	case contractx.ToolUpdate:
		out.Status = contractx.TurnSuccess
		out.ToolOutput = in.ToolResult.Text
		out.Response = in.ToolResult.Text
		if in.Decision.Update != nil && in.Decision.Update.InteractionID != nil {
			out.InteractionID = in.Decision.Update.InteractionID
		}
	case contractx.ToolFetch:
		fetched := in.ToolResult.Fetch
		if fetched == nil {
			return GraphOutput{}, fmt.Errorf("%w: fetch tool returned no result", contractx.ErrValidation)
		}
		out.Fetched = fetched
		out.Response = describeFetch(*fetched)
		out.Status = contractx.TurnContinue
		if mode == ReplyLookup && fetched.Found() {
			out.Status = contractx.TurnSuccess
		}
		if rec, ok := fetched.Data.(*interaction.Interaction); ok && rec != nil {
			id := rec.ID
			out.InteractionID = &id
			out.Record = rec
		}
	default:
		return GraphOutput{}, fmt.Errorf("%w: unknown tool result %q", contractx.ErrValidation, in.ToolResult.Kind)
	}
	return out, nil
}

func describeFetch(res contractx.FetchResult) string {
	switch res.Status {
	case contractx.FetchSuccess:
		if rec, ok := res.Data.(*interaction.Interaction); ok && rec != nil {
			return fmt.Sprintf("Found interaction with ID %d.", rec.ID)
		}
		return "Found a matching interaction."
	case contractx.FetchMultipleFound:
		if list, ok := res.Data.([]interaction.Summary); ok {
			return fmt.Sprintf("Found %d matching interactions. Please tell me which one you mean.", len(list))
		}
		return "Found multiple matching interactions. Please tell me which one you mean."
	case contractx.FetchNotFound:
		return "Could not find a matching interaction."
	default:
		return fmt.Sprintf("An error occurred: %s", res.Message)
	}
}
