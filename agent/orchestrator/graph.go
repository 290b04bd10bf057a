package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	querynodex "github.com/finsightai/finsight/agent/nodes"
)

func (o *Orchestrator) compileHandleQueryGraph(
	ctx context.Context,
) (compose.Runnable[querynodex.GraphInput, querynodex.GraphOutput], error) {
	graph := compose.NewGraph[querynodex.GraphInput, querynodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_query",
		compose.InvokableLambda(func(ctx context.Context, in querynodex.GraphInput) (*querynodex.GraphState, error) {
			return querynodex.ValidateQuery(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_query: %w", err)
	}

	if err := graph.AddLambdaNode("check_input",
		compose.InvokableLambda(func(ctx context.Context, in *querynodex.GraphState) (*querynodex.GraphState, error) {
			return querynodex.CheckInput(in, o.guard)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node check_input: %w", err)
	}

	if err := graph.AddLambdaNode("load_history",
		compose.InvokableLambda(func(ctx context.Context, in *querynodex.GraphState) (*querynodex.GraphState, error) {
			return querynodex.LoadHistory(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_history: %w", err)
	}

	if err := graph.AddLambdaNode("route",
		compose.InvokableLambda(func(ctx context.Context, in *querynodex.GraphState) (*querynodex.GraphState, error) {
			return querynodex.Route(ctx, in, o.router, o.registry.IDs())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route: %w", err)
	}

	if err := graph.AddLambdaNode("execute",
		compose.InvokableLambda(func(ctx context.Context, in *querynodex.GraphState) (*querynodex.GraphState, error) {
			return querynodex.Execute(ctx, in, o.registry, o.retriever, o.cfg.ToolTimeout)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute: %w", err)
	}

	if err := graph.AddLambdaNode("assemble",
		compose.InvokableLambda(func(ctx context.Context, in *querynodex.GraphState) (*querynodex.GraphState, error) {
			return querynodex.Assemble(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node assemble: %w", err)
	}

	if err := graph.AddLambdaNode("generate",
		compose.InvokableLambda(func(ctx context.Context, in *querynodex.GraphState) (*querynodex.GraphState, error) {
			return querynodex.Generate(ctx, in, o.backend, o.systemPrompt)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate: %w", err)
	}

	if err := graph.AddLambdaNode("check_output",
		compose.InvokableLambda(func(ctx context.Context, in *querynodex.GraphState) (*querynodex.GraphState, error) {
			return querynodex.CheckOutput(in, o.guard)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node check_output: %w", err)
	}

	if err := graph.AddLambdaNode("save_history",
		compose.InvokableLambda(func(ctx context.Context, in *querynodex.GraphState) (*querynodex.GraphState, error) {
			return querynodex.SaveHistory(ctx, in, o.store, o.cfg.MaxHistoryTurns, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_history: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *querynodex.GraphState) (querynodex.GraphOutput, error) {
			return querynodex.Finalize(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_query"},
		{"validate_query", "check_input"},
		{"check_input", "load_history"},
		{"load_history", "route"},
		{"route", "execute"},
		{"execute", "assemble"},
		{"assemble", "generate"},
		{"generate", "check_output"},
		{"check_output", "save_history"},
		{"save_history", "finalize"},
		{"finalize", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_query"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
