package interaction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

var (
	ErrNotFound   = errors.New("interaction not found")
	ErrValidation = errors.New("interaction validation failed")
)

// DateLayout is the calendar date format used for interactionDate.
const DateLayout = "2006-01-02"

// Method records how an interaction entered the system. It is set once at creation.
type Method string

const (
	MethodForm Method = "form"
	MethodChat Method = "chat"
)

func (m Method) Valid() bool {
	return m == MethodForm || m == MethodChat
}

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// ParseSentiment maps a label to its canonical form, ignoring case and surrounding space.
func ParseSentiment(raw string) (Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "positive":
		return SentimentPositive, nil
	case "neutral":
		return SentimentNeutral, nil
	case "negative":
		return SentimentNegative, nil
	default:
		return "", fmt.Errorf("%w: sentiment must be one of Positive, Neutral, or Negative, got %q", ErrValidation, raw)
	}
}

// ValidateDate reports whether raw is an ISO calendar date (YYYY-MM-DD).
func ValidateDate(raw string) error {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(raw)); err != nil {
		return fmt.Errorf("%w: date must be in YYYY-MM-DD format, got %q", ErrValidation, raw)
	}
	return nil
}

// Interaction is one logged meeting with a healthcare professional.
type Interaction struct {
	bun.BaseModel `bun:"table:hcp_interactions,alias:hi"`

	ID               int64      `bun:"id,pk,autoincrement" json:"id"`
	HCPName          string     `bun:"hcp_name,notnull,type:varchar(255)" json:"hcpName"`
	InteractionType  *string    `bun:"interaction_type,type:varchar(50)" json:"interactionType"`
	InteractionDate  *string    `bun:"interaction_date,type:varchar(10)" json:"interactionDate"`
	Summary          *string    `bun:"summary,type:text" json:"summary"`
	DiscussionTopics Topics     `bun:"discussion_topics,type:jsonb,nullzero" json:"discussionTopics"`
	Sentiment        *Sentiment `bun:"sentiment,type:varchar(20)" json:"sentiment"`
	Outcomes         *string    `bun:"outcomes,type:text" json:"outcomes"`
	FollowUp         *string    `bun:"follow_up,type:text" json:"followUp"`
	LoggingMethod    Method     `bun:"logging_method,notnull,type:varchar(10)" json:"loggingMethod"`
	CreatedAt        time.Time  `bun:"created_at,notnull" json:"createdAt"`
}

// Validate checks the fields a record needs before it can be stored.
func (i *Interaction) Validate() error {
	if i == nil {
		return fmt.Errorf("%w: record is nil", ErrValidation)
	}
	if strings.TrimSpace(i.HCPName) == "" {
		return fmt.Errorf("%w: hcpName is required", ErrValidation)
	}
	if i.InteractionDate != nil {
		if err := ValidateDate(*i.InteractionDate); err != nil {
			return err
		}
	}
	if i.Sentiment != nil {
		if _, err := ParseSentiment(string(*i.Sentiment)); err != nil {
			return err
		}
	}
	return nil
}

// Summary is the short form returned when several records match a lookup.
type Summary struct {
	ID              int64   `bun:"id" json:"id"`
	HCPName         string  `bun:"hcp_name" json:"hcpName"`
	InteractionDate *string `bun:"interaction_date" json:"interactionDate"`
	Summary         *string `bun:"summary" json:"summary"`
}
