package contract

import (
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

// ToolKind is the closed set of actions a decision can select.
type ToolKind string

const (
	ToolNone   ToolKind = ""
	ToolFetch  ToolKind = "fetch"
	ToolUpdate ToolKind = "update"
)

// Decision is the decision model's verdict for one turn. Exactly one of
// Fetch/Update is set when Kind names a tool; Reply carries the model's text.
type Decision struct {
	Kind   ToolKind
	Fetch  *FetchArgs
	Update *UpdateArgs
	Reply  string
}

func (d Decision) HasTool() bool {
	return d.Kind != ToolNone
}

type FetchArgs struct {
	HCPName         string `json:"hcp_name"`
	InteractionDate string `json:"interaction_date"`
}

// UpdateArgs identifies a record (by id, or by name and date) and carries the new values.
type UpdateArgs struct {
	InteractionID   *int64  `json:"interaction_id,omitempty"`
	HCPName         *string `json:"hcp_name,omitempty"`
	InteractionDate *string `json:"interaction_date,omitempty"`

	NewHCPName          *string            `json:"new_hcp_name,omitempty"`
	NewInteractionType  *string            `json:"new_interaction_type,omitempty"`
	NewInteractionDate  *string            `json:"new_interaction_date,omitempty"`
	NewSummary          *string            `json:"new_summary,omitempty"`
	NewSentiment        *string            `json:"new_sentiment,omitempty"`
	NewOutcomes         *string            `json:"new_outcomes,omitempty"`
	NewFollowUp         *string            `json:"new_follow_up,omitempty"`
	NewDiscussionTopics interaction.Topics `json:"new_discussion_topics,omitempty"`
}

type FetchStatus string

const (
	FetchSuccess       FetchStatus = "success"
	FetchNotFound      FetchStatus = "not_found"
	FetchMultipleFound FetchStatus = "multiple_found"
	FetchError         FetchStatus = "error"
)

// FetchResult is returned verbatim to clients. Data holds a full record on
// success and a list of summaries when several records match.
type FetchResult struct {
	Status  FetchStatus `json:"status"`
	Data    any         `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Found reports whether the lookup produced something a client can show.
func (r FetchResult) Found() bool {
	return r.Status == FetchSuccess || r.Status == FetchMultipleFound
}

type ToolResult struct {
	Kind  ToolKind
	Fetch *FetchResult
	Text  string
}

type TurnStatus string

const (
	TurnSuccess  TurnStatus = "success"
	TurnContinue TurnStatus = "continue"
)

// TurnResult is what a workflow hands back to the HTTP layer after one user turn.
type TurnResult struct {
	Status        TurnStatus
	Response      string
	Fetched       *FetchResult
	ToolOutput    string
	InteractionID *int64
	Record        *interaction.Interaction
}
