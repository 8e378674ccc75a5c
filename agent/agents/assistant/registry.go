package assistant

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	llmx "github.com/tanpawarit/hcp-interaction-logger/agent/llm"
	promptx "github.com/tanpawarit/hcp-interaction-logger/agent/prompt"
)

type registryImpl struct {
	decider      contractx.Decider
	fetchDecider contractx.Decider
	conversant   contractx.Conversant
}

func (r *registryImpl) Decider() contractx.Decider {
	return r.decider
}

func (r *registryImpl) FetchDecider() contractx.Decider {
	return r.fetchDecider
}

func (r *registryImpl) Conversant() contractx.Conversant {
	return r.conversant
}

// NewRegistry builds the decision and conversation models from cfg.
func NewRegistry(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	decisionCfg := cfg.For(llmx.RoleDecision)
	decisionModel, err := decisionCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create decision model: %v", contractx.ErrModelInvoke, err)
	}
	conversationCfg := cfg.For(llmx.RoleConversation)
	conversationModel, err := conversationCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create conversation model: %v", contractx.ErrModelInvoke, err)
	}

	return NewRegistryWithModels(ctx, decisionModel, conversationModel, promptx.LoadPromptSet())
}

// NewRegistryWithModels compiles the agents over already constructed models.
func NewRegistryWithModels(
	ctx context.Context,
	decisionModel einomodel.ToolCallingChatModel,
	conversationModel einomodel.BaseChatModel,
	prompts promptx.PromptSet,
) (contractx.Registry, error) {
	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	decider, err := newDecider(ctx, decisionModel, prompts.Decision, "assistant.decision_graph",
		contractx.ToolFetch, contractx.ToolUpdate)
	if err != nil {
		return nil, err
	}
	fetchDecider, err := newDecider(ctx, decisionModel, prompts.Decision, "assistant.fetch_decision_graph",
		contractx.ToolFetch)
	if err != nil {
		return nil, err
	}
	conversant, err := newConversant(ctx, conversationModel, prompts.Converse)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		decider:      decider,
		fetchDecider: fetchDecider,
		conversant:   conversant,
	}, nil
}
