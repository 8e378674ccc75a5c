package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
)

var (
	//go:embed template/decision.txt
	decisionRaw string

	//go:embed template/converse.txt
	converseRaw string

	//go:embed template/extract_form.txt
	extractFormRaw string

	//go:embed template/extract_chat.txt
	extractChatRaw string
)

const (
	// ContextNoteKey is the decision prompt variable carrying the anchored interaction hint.
	ContextNoteKey = "context_note"
	// CurrentDateVar is the decision prompt variable carrying today's date.
	CurrentDateVar = "current_date"
	// CurrentDateKey is substituted into the extraction prompts.
	CurrentDateKey = "{" + CurrentDateVar + "}"
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Decision    string
	Converse    string
	ExtractForm string
	ExtractChat string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Decision:    strings.TrimSpace(decisionRaw),
		Converse:    strings.TrimSpace(converseRaw),
		ExtractForm: strings.TrimSpace(extractFormRaw),
		ExtractChat: strings.TrimSpace(extractChatRaw),
	}
}

func (p PromptSet) Validate() error {
	for name, body := range map[string]string{
		"decision":     p.Decision,
		"converse":     p.Converse,
		"extract_form": p.ExtractForm,
		"extract_chat": p.ExtractChat,
	} {
		if strings.TrimSpace(body) == "" {
			return fmt.Errorf("%w: %s", contractx.ErrPromptMissing, name)
		}
	}
	if !strings.Contains(p.Decision, "{"+ContextNoteKey+"}") {
		return fmt.Errorf("%w: decision prompt lacks {%s}", contractx.ErrPromptMissing, ContextNoteKey)
	}
	if !strings.Contains(p.Decision, CurrentDateKey) {
		return fmt.Errorf("%w: decision prompt lacks %s", contractx.ErrPromptMissing, CurrentDateKey)
	}
	return nil
}

// WithDate fills the current date into an extraction prompt.
func WithDate(body, date string) string {
	return strings.ReplaceAll(body, CurrentDateKey, date)
}
