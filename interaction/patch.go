package interaction

import (
	"fmt"
	"strings"
)

// Patch carries the fields of a partial update. A nil field is left untouched,
// so omitting a field (or sending null) never clears a stored value.
type Patch struct {
	HCPName          *string    `json:"hcpName"`
	InteractionType  *string    `json:"interactionType"`
	InteractionDate  *string    `json:"interactionDate"`
	Summary          *string    `json:"summary"`
	DiscussionTopics Topics     `json:"discussionTopics"`
	Sentiment        *Sentiment `json:"sentiment"`
	Outcomes         *string    `json:"outcomes"`
	FollowUp         *string    `json:"followUp"`
}

func (p Patch) IsEmpty() bool {
	return p.HCPName == nil &&
		p.InteractionType == nil &&
		p.InteractionDate == nil &&
		p.Summary == nil &&
		p.DiscussionTopics == nil &&
		p.Sentiment == nil &&
		p.Outcomes == nil &&
		p.FollowUp == nil
}

// Normalize validates the patch and returns a copy with canonical values.
func (p Patch) Normalize() (Patch, error) {
	out := p
	if out.HCPName != nil {
		name := strings.TrimSpace(*out.HCPName)
		if name == "" {
			return Patch{}, fmt.Errorf("%w: hcpName cannot be blank", ErrValidation)
		}
		out.HCPName = &name
	}
	if out.InteractionDate != nil {
		date := strings.TrimSpace(*out.InteractionDate)
		if err := ValidateDate(date); err != nil {
			return Patch{}, err
		}
		out.InteractionDate = &date
	}
	if out.Sentiment != nil {
		s, err := ParseSentiment(string(*out.Sentiment))
		if err != nil {
			return Patch{}, err
		}
		out.Sentiment = &s
	}
	if out.DiscussionTopics != nil {
		out.DiscussionTopics = NormalizeTopics(out.DiscussionTopics)
	}
	return out, nil
}

// Record builds a new, unsaved Interaction from the patch fields.
func (p Patch) Record() *Interaction {
	rec := &Interaction{
		InteractionType:  p.InteractionType,
		InteractionDate:  p.InteractionDate,
		Summary:          p.Summary,
		DiscussionTopics: p.DiscussionTopics,
		Sentiment:        p.Sentiment,
		Outcomes:         p.Outcomes,
		FollowUp:         p.FollowUp,
	}
	if p.HCPName != nil {
		rec.HCPName = *p.HCPName
	}
	return rec
}
