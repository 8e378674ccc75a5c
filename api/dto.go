package api

import (
	"strings"

	"github.com/samber/lo"
	statex "github.com/tanpawarit/hcp-interaction-logger/agent/state"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

// recordFields is the editable part of a record as the form sends and receives it.
type recordFields struct {
	HCPName          string                 `json:"hcpName"`
	InteractionType  *string                `json:"interactionType"`
	InteractionDate  *string                `json:"interactionDate"`
	Summary          *string                `json:"summary"`
	DiscussionTopics interaction.Topics     `json:"discussionTopics"`
	Sentiment        *interaction.Sentiment `json:"sentiment"`
	Outcomes         *string                `json:"outcomes"`
	FollowUp         *string                `json:"followUp"`
}

func (f recordFields) record() *interaction.Interaction {
	return &interaction.Interaction{
		HCPName:          strings.TrimSpace(f.HCPName),
		InteractionType:  f.InteractionType,
		InteractionDate:  f.InteractionDate,
		Summary:          f.Summary,
		DiscussionTopics: f.DiscussionTopics,
		Sentiment:        f.Sentiment,
		Outcomes:         f.Outcomes,
		FollowUp:         f.FollowUp,
	}
}

func fieldsOf(rec *interaction.Interaction) recordFields {
	return recordFields{
		HCPName:          rec.HCPName,
		InteractionType:  rec.InteractionType,
		InteractionDate:  rec.InteractionDate,
		Summary:          rec.Summary,
		DiscussionTopics: rec.DiscussionTopics,
		Sentiment:        rec.Sentiment,
		Outcomes:         rec.Outcomes,
		FollowUp:         rec.FollowUp,
	}
}

type chatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type chatRequest struct {
	Message       string        `json:"message"`
	ChatHistory   []chatMessage `json:"chatHistory"`
	InteractionID *int64        `json:"interactionId"`
}

func (c chatRequest) history() []statex.Turn {
	return lo.Map(c.ChatHistory, func(m chatMessage, _ int) statex.Turn {
		return statex.Turn{Sender: statex.Sender(m.Sender), Text: m.Text}
	})
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type turnResponse struct {
	Status        string `json:"status"`
	Response      string `json:"response"`
	InteractionID *int64 `json:"interactionId,omitempty"`
}

// extractResponse keeps data even when it is null.
type extractResponse struct {
	Status string        `json:"status"`
	Data   *recordFields `json:"data"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
