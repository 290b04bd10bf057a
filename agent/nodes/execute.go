package querynode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	contractx "github.com/finsightai/finsight/agent/contract"
	toolx "github.com/finsightai/finsight/agent/tool"
)

// Execute fans the plan out: every selected tool runs concurrently under its
// own timeout, and retrieval runs alongside when the plan asks for it. Tool
// failures are absorbed into the invocation record; the query itself fails
// only when the plan had work to do and nothing at all produced grounding.
func Execute(
	ctx context.Context,
	in *GraphState,
	registry *toolx.Registry,
	retriever contractx.Retriever,
	toolTimeout time.Duration,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.skip() {
		return in, nil
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: tool registry is required", contractx.ErrValidation)
	}
	if toolTimeout <= 0 {
		toolTimeout = 10 * time.Second
	}

	invocations := make([]contractx.ToolInvocation, len(in.Plan.Tools))
	var passages []contractx.Passage

	group, groupCtx := errgroup.WithContext(ctx)

	for i, sel := range in.Plan.Tools {
		invocations[i] = contractx.ToolInvocation{
			ToolID: sel.ToolID,
			Args:   sel.Args,
			Status: contractx.InvocationPending,
		}

		i := i
		group.Go(func() error {
			invocations[i] = runTool(groupCtx, registry, invocations[i], toolTimeout)
			return nil
		})
	}

	if in.Plan.NeedsRetrieval && retriever != nil {
		group.Go(func() error {
			found, err := retriever.Retrieve(groupCtx, in.Query.Text, in.Plan.RetrievalTopK)
			if err != nil {
				log.Warn().Err(err).
					Str("query_id", in.QueryID).
					Msg("retrieval failed, continuing with tool results only")
				return nil
			}
			passages = found
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes the fan-out.
	_ = group.Wait()

	in.Invocations = invocations
	in.Passages = passages

	if err := ctx.Err(); err != nil {
		in.fail(fmt.Errorf("%w: tool execution interrupted: %v", contractx.ErrTimeout, err))
		return in, nil
	}
	if noGrounding(in) {
		in.fail(fmt.Errorf("%w: every tool failed and retrieval found nothing", contractx.ErrNoGrounding))
	}
	return in, nil
}

func runTool(
	ctx context.Context,
	registry *toolx.Registry,
	inv contractx.ToolInvocation,
	timeout time.Duration,
) contractx.ToolInvocation {
	started := time.Now()

	tool, ok := registry.Get(inv.ToolID)
	if !ok {
		inv.Status = contractx.InvocationFailed
		inv.Err = contractx.NewToolError(contractx.ToolErrInvalidArgument, "unknown tool %q", inv.ToolID)
		inv.Latency = time.Since(started)
		return inv
	}

	toolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := tool.Invoke(toolCtx, inv.Args)
	inv.Latency = time.Since(started)
	if err != nil {
		inv.Status = contractx.InvocationFailed
		inv.Err = contractx.AsToolError(err)
		return inv
	}

	inv.Status = contractx.InvocationSucceeded
	inv.Output = output
	return inv
}

// noGrounding reports whether a plan that had work to do produced no usable
// material at all. Pure narrative plans with an empty corpus are handled by
// the assembler, not treated as failure.
func noGrounding(in *GraphState) bool {
	if len(in.Plan.Tools) == 0 {
		return false
	}
	for _, inv := range in.Invocations {
		if inv.Status == contractx.InvocationSucceeded {
			return false
		}
	}
	return len(in.Passages) == 0
}
