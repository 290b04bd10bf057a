package querynode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/finsightai/finsight/agent/contract"
)

// Generate runs the single reasoning completion over the assembled prompt.
// Backend failures mark the query failed instead of erroring the graph, so
// the trace still reaches the caller.
func Generate(ctx context.Context, in *GraphState, backend contractx.Backend, systemPrompt string) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.skip() {
		return in, nil
	}
	if backend == nil {
		return nil, fmt.Errorf("%w: reasoning backend is required", contractx.ErrValidation)
	}

	draft, err := backend.Complete(ctx, systemPrompt, in.Assembled.Prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			in.fail(fmt.Errorf("%w: completion exceeded query deadline: %v", contractx.ErrTimeout, err))
		} else {
			in.fail(fmt.Errorf("%w: completion failed: %v", contractx.ErrBackend, err))
		}
		return in, nil
	}

	draft = strings.TrimSpace(draft)
	if draft == "" {
		in.fail(fmt.Errorf("%w: backend returned an empty completion", contractx.ErrBackend))
		return in, nil
	}

	in.Draft = draft
	return in, nil
}
