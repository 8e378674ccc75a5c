package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

func nullableString(desc string) map[string]any {
	return map[string]any{
		"type":        []string{"string", "null"},
		"description": desc,
	}
}

// recordSchema is the strict response schema: every field is required but nullable.
var recordSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"hcpName":         nullableString("Name of the healthcare professional"),
		"interactionType": nullableString("Kind of interaction, e.g. Meeting or Call"),
		"interactionDate": nullableString("Date of the interaction in YYYY-MM-DD format"),
		"summary":         nullableString("Short summary of the interaction"),
		"discussionTopics": map[string]any{
			"type":        []string{"array", "null"},
			"items":       map[string]any{"type": "string"},
			"description": "Key topics discussed",
		},
		"sentiment": map[string]any{
			"type":        []string{"string", "null"},
			"enum":        []any{"Positive", "Neutral", "Negative", nil},
			"description": "Overall sentiment of the HCP",
		},
		"outcomes": nullableString("Outcomes or agreements"),
		"followUp": nullableString("Follow-up actions"),
	},
	"required": []string{
		"hcpName", "interactionType", "interactionDate", "summary",
		"discussionTopics", "sentiment", "outcomes", "followUp",
	},
}

type extraction struct {
	HCPName          *string            `json:"hcpName"`
	InteractionType  *string            `json:"interactionType"`
	InteractionDate  *string            `json:"interactionDate"`
	Date             *string            `json:"date"`
	Summary          *string            `json:"summary"`
	DiscussionTopics interaction.Topics `json:"discussionTopics"`
	Sentiment        *string            `json:"sentiment"`
	Outcomes         *string            `json:"outcomes"`
	FollowUp         *string            `json:"followUp"`
}

func decode(content string) (extraction, error) {
	raw := stripFence(content)
	if raw == "" {
		return extraction{}, fmt.Errorf("%w: extraction output is empty", contractx.ErrSchemaViolation)
	}

	var out extraction
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(&out); err != nil {
		return extraction{}, fmt.Errorf("%w: decode extraction: %v", contractx.ErrSchemaViolation, err)
	}
	return out, nil
}

// stripFence removes a surrounding ```json fence some models add despite the response format.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// toRecord applies the defaulting rules. It returns nil when no HCP is named.
func (x extraction) toRecord(today string) *interaction.Interaction {
	name := clean(x.HCPName)
	if name == nil {
		return nil
	}

	date := clean(x.InteractionDate)
	if date == nil {
		date = clean(x.Date)
	}
	if date == nil {
		date = &today
	}

	var sentiment *interaction.Sentiment
	if s := clean(x.Sentiment); s != nil {
		if parsed, err := interaction.ParseSentiment(*s); err == nil {
			sentiment = &parsed
		}
	}

	var topics interaction.Topics
	if x.DiscussionTopics != nil {
		topics = interaction.NormalizeTopics(x.DiscussionTopics)
	}

	return &interaction.Interaction{
		HCPName:          *name,
		InteractionType:  clean(x.InteractionType),
		InteractionDate:  date,
		Summary:          clean(x.Summary),
		DiscussionTopics: topics,
		Sentiment:        sentiment,
		Outcomes:         clean(x.Outcomes),
		FollowUp:         clean(x.FollowUp),
	}
}

func clean(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}
