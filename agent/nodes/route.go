package querynode

import (
	"context"
	"fmt"

	contractx "github.com/finsightai/finsight/agent/contract"
)

// Route produces the plan for this query over the tools the engine actually
// has. Routing never errors; unclassifiable queries arrive here as
// retrieval-only plans.
func Route(ctx context.Context, in *GraphState, router contractx.Router, available []string) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.skip() {
		return in, nil
	}
	if router == nil {
		return nil, fmt.Errorf("%w: router is required", contractx.ErrValidation)
	}

	in.Plan = router.Route(ctx, in.Query, available)
	return in, nil
}
