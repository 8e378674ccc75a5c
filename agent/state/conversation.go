package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"
)

var (
	ErrEmptyMessage       = errors.New("message is empty")
	ErrInvalidInteraction = errors.New("interaction id must be positive")
)

// Conversation is the in-memory view of one chat exchange. It is rebuilt from
// the client's history on every request and never persisted.
type Conversation struct {
	Turns []Turn `json:"turns"`

	// InteractionID pins tool calls to a record the user is already looking at.
	InteractionID *int64 `json:"interaction_id,omitempty"`
}

type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

type Turn struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

/* ----------------------------- constructors ----------------------------- */

// NewConversation appends message as the latest user turn after history.
// Any sender other than "user" is treated as the agent.
func NewConversation(history []Turn, message string, interactionID *int64) *Conversation {
	turns := lo.FilterMap(history, func(t Turn, _ int) (Turn, bool) {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			return Turn{}, false
		}
		return Turn{Sender: normalizeSender(t.Sender), Text: text}, true
	})
	turns = append(turns, Turn{Sender: SenderUser, Text: strings.TrimSpace(message)})

	return &Conversation{
		Turns:         turns,
		InteractionID: interactionID,
	}
}

func normalizeSender(s Sender) Sender {
	if strings.EqualFold(strings.TrimSpace(string(s)), string(SenderUser)) {
		return SenderUser
	}
	return SenderAgent
}

/* ------------------------------ accessors ------------------------------- */

func (c *Conversation) Validate() error {
	if c == nil || len(c.Turns) == 0 {
		return ErrEmptyMessage
	}
	last := c.Turns[len(c.Turns)-1]
	if last.Sender != SenderUser || strings.TrimSpace(last.Text) == "" {
		return ErrEmptyMessage
	}
	if c.InteractionID != nil && *c.InteractionID <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidInteraction, *c.InteractionID)
	}
	return nil
}

// Latest returns the newest user message.
func (c *Conversation) Latest() string {
	if c == nil || len(c.Turns) == 0 {
		return ""
	}
	return c.Turns[len(c.Turns)-1].Text
}

// Transcript renders the turns as "sender: text" lines for extraction prompts.
func (c *Conversation) Transcript() string {
	if c == nil {
		return ""
	}
	lines := lo.Map(c.Turns, func(t Turn, _ int) string {
		return fmt.Sprintf("%s: %s", t.Sender, t.Text)
	})
	return strings.Join(lines, "\n")
}

// Messages converts the turns to chat messages in order.
func (c *Conversation) Messages() []*schema.Message {
	if c == nil {
		return nil
	}
	return lo.Map(c.Turns, func(t Turn, _ int) *schema.Message {
		if t.Sender == SenderUser {
			return schema.UserMessage(t.Text)
		}
		return schema.AssistantMessage(t.Text, nil)
	})
}

// ContextNote is appended to the decision prompt when the conversation is anchored.
func (c *Conversation) ContextNote() string {
	if c == nil || c.InteractionID == nil {
		return ""
	}
	return fmt.Sprintf(
		"[System note: The user is focused on interaction ID: %d. Use this ID for any update tool calls.]",
		*c.InteractionID,
	)
}
