package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	openrouterx "github.com/tanpawarit/hcp-interaction-logger/pkg/openrouter"
)

// Role selects which model settings a component uses.
type Role string

const (
	RoleDecision     Role = "decision"
	RoleExtraction   Role = "extraction"
	RoleConversation Role = "conversation"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	DecisionModel           string  `envconfig:"DECISION_MODEL" split_words:"true"`
	ExtractionModel         string  `envconfig:"EXTRACTION_MODEL" split_words:"true"`
	ConversationModel       string  `envconfig:"CONVERSATION_MODEL" split_words:"true"`
	DecisionTemperature     float32 `envconfig:"DECISION_TEMPERATURE" split_words:"true" default:"-1"`
	ExtractionTemperature   float32 `envconfig:"EXTRACTION_TEMPERATURE" split_words:"true" default:"-1"`
	ConversationTemperature float32 `envconfig:"CONVERSATION_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// For returns the client settings for role, falling back to the defaults
// when no role-specific model or temperature is set. A negative temperature means unset.
func (c Config) For(role Role) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(m string, t float32) {
		if v := strings.TrimSpace(m); v != "" {
			modelName = v
		}
		if t >= 0 {
			temp = t
		}
	}

	switch role {
	case RoleDecision:
		override(c.DecisionModel, c.DecisionTemperature)
	case RoleExtraction:
		override(c.ExtractionModel, c.ExtractionTemperature)
	case RoleConversation:
		override(c.ConversationModel, c.ConversationTemperature)
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
