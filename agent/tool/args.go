package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/spf13/cast"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

// ParseCalls converts a model reply into a Decision. Only the first tool call
// is honored; a tool outside allowed is a schema violation.
func ParseCalls(msg *schema.Message, allowed ...contractx.ToolKind) (contractx.Decision, error) {
	if msg == nil {
		return contractx.Decision{}, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
	}

	decision := contractx.Decision{Reply: strings.TrimSpace(msg.Content)}
	if len(msg.ToolCalls) == 0 {
		return decision, nil
	}

	call := msg.ToolCalls[0]
	name := strings.TrimSpace(call.Function.Name)
	kind, ok := kindByName[name]
	if !ok || !isAllowed(kind, allowed) {
		return contractx.Decision{}, fmt.Errorf("%w: %w: %q", contractx.ErrSchemaViolation, contractx.ErrToolNotAllowed, name)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return contractx.Decision{}, fmt.Errorf("%w: invalid args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
		}
	}

	decision.Kind = kind
	switch kind {
	case contractx.ToolFetch:
		decision.Fetch = &contractx.FetchArgs{
			HCPName:         deref(optString(args, "hcp_name")),
			InteractionDate: deref(optString(args, "interaction_date")),
		}
	case contractx.ToolUpdate:
		update, err := parseUpdateArgs(args)
		if err != nil {
			return contractx.Decision{}, fmt.Errorf("%w: tool=%s: %v", contractx.ErrSchemaViolation, name, err)
		}
		decision.Update = update
	}
	return decision, nil
}

func isAllowed(kind contractx.ToolKind, allowed []contractx.ToolKind) bool {
	for _, k := range allowed {
		if k == kind {
			return true
		}
	}
	return false
}

func parseUpdateArgs(args map[string]any) (*contractx.UpdateArgs, error) {
	out := &contractx.UpdateArgs{
		HCPName:            optString(args, "hcp_name"),
		InteractionDate:    optString(args, "interaction_date"),
		NewHCPName:         optString(args, "new_hcp_name"),
		NewInteractionType: optString(args, "new_interaction_type"),
		NewInteractionDate: optString(args, "new_interaction_date"),
		NewSummary:         optString(args, "new_summary"),
		NewSentiment:       optString(args, "new_sentiment"),
		NewOutcomes:        optString(args, "new_outcomes"),
		NewFollowUp:        optString(args, "new_follow_up"),
	}

	if raw, ok := args["interaction_id"]; ok && raw != nil {
		id, err := parseInteractionID(raw)
		if err != nil {
			return nil, fmt.Errorf("interaction_id: %w", err)
		}
		if id > 0 {
			out.InteractionID = &id
		}
	}

	if raw, ok := args["new_discussion_topics"]; ok && raw != nil {
		switch v := raw.(type) {
		case string:
			out.NewDiscussionTopics = interaction.SplitTopics(v)
		default:
			list, err := cast.ToStringSliceE(v)
			if err != nil {
				return nil, fmt.Errorf("new_discussion_topics: %w", err)
			}
			out.NewDiscussionTopics = interaction.NormalizeTopics(list)
		}
	}
	return out, nil
}

// parseInteractionID accepts JSON numbers and decimal strings only. Strings
// are parsed in base 10 so "010" stays 10.
func parseInteractionID(raw any) (int64, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optString reads a scalar argument as a trimmed string. Missing, null, and blank values are nil.
func optString(args map[string]any, key string) *string {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
