package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	nodex "github.com/tanpawarit/hcp-interaction-logger/agent/nodes"
)

func (o *Orchestrator) addValidateNode(graph *compose.Graph[nodex.GraphInput, nodex.GraphOutput]) error {
	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return fmt.Errorf("add node validate_request: %w", err)
	}
	return nil
}

func addEdges(graph *compose.Graph[nodex.GraphInput, nodex.GraphOutput], edges [][2]string) error {
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// compileDecisionGraph builds validate -> decide -> [execute_tool] -> finalize_reply.
func (o *Orchestrator) compileDecisionGraph(
	ctx context.Context,
	decider contractx.Decider,
	mode nodex.ReplyMode,
	name string,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	if decider == nil {
		return nil, fmt.Errorf("compile %s: decider is nil", name)
	}

	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := o.addValidateNode(graph); err != nil {
		return nil, err
	}

	if err := graph.AddLambdaNode("decide",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Decide(ctx, in, decider)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node decide: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeExecuteTool,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecuteTool(ctx, in, o.tools)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeExecuteTool, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeFinalizeReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in, mode)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeFinalizeReply, err)
	}

	if err := graph.AddBranch("decide", compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.RouteAfterDecide(in)
		},
		map[string]bool{nodex.NodeExecuteTool: true, nodex.NodeFinalizeReply: true},
	)); err != nil {
		return nil, fmt.Errorf("add branch decide: %w", err)
	}

	if err := addEdges(graph, [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "decide"},
		{nodex.NodeExecuteTool, nodex.NodeFinalizeReply},
		{nodex.NodeFinalizeReply, compose.END},
	}); err != nil {
		return nil, err
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(name))
	if err != nil {
		return nil, fmt.Errorf("compile %s graph: %w", name, err)
	}
	return runner, nil
}

// compileLoggingGraph builds validate -> extract -> save | converse.
func (o *Orchestrator) compileLoggingGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := o.addValidateNode(graph); err != nil {
		return nil, err
	}

	if err := graph.AddLambdaNode("extract",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Extract(ctx, in, o.extractor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeSave,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.Save(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeSave, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeConverse,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.Converse(ctx, in, o.models.Conversant())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeConverse, err)
	}

	if err := graph.AddBranch("extract", compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.RouteAfterExtract(in)
		},
		map[string]bool{nodex.NodeSave: true, nodex.NodeConverse: true},
	)); err != nil {
		return nil, fmt.Errorf("add branch extract: %w", err)
	}

	if err := addEdges(graph, [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "extract"},
		{nodex.NodeSave, compose.END},
		{nodex.NodeConverse, compose.END},
	}); err != nil {
		return nil, err
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.log_from_chat"))
	if err != nil {
		return nil, fmt.Errorf("compile logging graph: %w", err)
	}
	return runner, nil
}
