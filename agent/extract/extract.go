package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	promptx "github.com/tanpawarit/hcp-interaction-logger/agent/prompt"
	statex "github.com/tanpawarit/hcp-interaction-logger/agent/state"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

// Extractor pulls an interaction record out of free text with a
// schema-constrained chat completion.
type Extractor struct {
	client      *openaisdk.Client
	model       string
	temperature float64
	prompts     promptx.PromptSet
	now         func() time.Time
}

var _ contractx.Extractor = (*Extractor)(nil)

type Option func(*Extractor)

func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

func WithTemperature(t float32) Option {
	return func(e *Extractor) {
		if t >= 0 {
			e.temperature = float64(t)
		}
	}
}

func WithPrompts(p promptx.PromptSet) Option {
	return func(e *Extractor) {
		e.prompts = p
	}
}

func New(client *openaisdk.Client, model string, opts ...Option) (*Extractor, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("%w: extraction model is required", contractx.ErrValidation)
	}

	e := &Extractor{
		client:  client,
		model:   model,
		prompts: promptx.LoadPromptSet(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if strings.TrimSpace(e.prompts.ExtractForm) == "" || strings.TrimSpace(e.prompts.ExtractChat) == "" {
		return nil, fmt.Errorf("%w: extraction prompts", contractx.ErrPromptMissing)
	}
	return e, nil
}

// FromText extracts every field it can find in a single block of text.
func (e *Extractor) FromText(ctx context.Context, text string) (*interaction.Interaction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is empty", contractx.ErrValidation)
	}
	return e.extract(ctx, e.prompts.ExtractForm, text)
}

// FromTranscript extracts a record from the whole conversation so far.
func (e *Extractor) FromTranscript(ctx context.Context, conv *statex.Conversation) (*interaction.Interaction, error) {
	if err := conv.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}
	return e.extract(ctx, e.prompts.ExtractChat, conv.Transcript())
}

func (e *Extractor) extract(ctx context.Context, systemPrompt, input string) (*interaction.Interaction, error) {
	today := e.now().Format(interaction.DateLayout)

	resp, err := e.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(e.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(promptx.WithDate(systemPrompt, today)),
			openaisdk.UserMessage(input),
		},
		Temperature: openaisdk.Float(e.temperature),
		ResponseFormat: openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openaisdk.ResponseFormatJSONSchemaParam{
				JSONSchema: openaisdk.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "interaction_record",
					Description: openaisdk.String("Structured details of one HCP interaction"),
					Schema:      recordSchema,
					Strict:      openaisdk.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: extraction request: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: extraction returned no choices", contractx.ErrSchemaViolation)
	}

	out, err := decode(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	rec := out.toRecord(today)
	if rec == nil {
		zerolog.Ctx(ctx).Debug().Msg("extraction found no hcp name")
	}
	return rec, nil
}
