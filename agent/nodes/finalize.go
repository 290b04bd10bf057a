package querynode

import (
	"errors"
	"fmt"

	assemblerx "github.com/finsightai/finsight/agent/assembler"
	contractx "github.com/finsightai/finsight/agent/contract"
)

// Finalize builds the terminal Response. Blocked queries get the fixed policy
// message with no sources and no trace; failed queries keep their trace and
// carry the query-level error in the output.
func Finalize(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if in.Blocked {
		return GraphOutput{
			Response: contractx.Response{
				Answer:    contractx.PolicyMessage,
				ToolTrace: []contractx.ToolTraceEntry{},
				Blocked:   true,
				Reason:    string(in.BlockReason),
			},
		}, nil
	}

	if in.Failed {
		return GraphOutput{
			Response: contractx.Response{
				ToolTrace: assemblerx.Trace(in.Invocations),
				Failed:    true,
				Reason:    failReason(in.FailErr),
			},
			Err: in.FailErr,
		}, nil
	}

	if in.Answer == "" {
		return GraphOutput{}, fmt.Errorf("%w: finalize reached with no answer", contractx.ErrValidation)
	}

	return GraphOutput{
		Response: contractx.Response{
			Answer:      in.Answer,
			Sources:     in.Assembled.Sources,
			ToolTrace:   in.Assembled.Trace,
			Disclaimers: in.Disclaimers,
		},
	}, nil
}

func failReason(err error) string {
	switch {
	case errors.Is(err, contractx.ErrNoGrounding):
		return "no_grounding"
	case errors.Is(err, contractx.ErrTimeout):
		return "timeout"
	case errors.Is(err, contractx.ErrBackend):
		return "backend_error"
	case err != nil:
		return "internal_error"
	default:
		return ""
	}
}
