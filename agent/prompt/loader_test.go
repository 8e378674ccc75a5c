package prompt

import (
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
)

func TestLoadPromptSetIsComplete(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	if err := set.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestFStringPromptsHaveNoStrayBraces(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	for name, body := range map[string]string{"decision": set.Decision, "converse": set.Converse} {
		stripped := strings.ReplaceAll(body, "{"+ContextNoteKey+"}", "")
		stripped = strings.ReplaceAll(stripped, CurrentDateKey, "")
		if strings.ContainsAny(stripped, "{}") {
			t.Fatalf("%s prompt contains braces outside known variables", name)
		}
	}
}

func TestWithDate(t *testing.T) {
	t.Parallel()

	out := WithDate(LoadPromptSet().ExtractForm, "2025-02-14")
	if strings.Contains(out, CurrentDateKey) {
		t.Fatal("expected date placeholder to be replaced")
	}
	if !strings.Contains(out, "2025-02-14") {
		t.Fatal("expected date in prompt")
	}
}

func TestValidateRequiresDecisionDate(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	set.Decision = strings.ReplaceAll(set.Decision, CurrentDateKey, "today")
	if err := set.Validate(); !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
}
