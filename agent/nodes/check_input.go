package querynode

import (
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/finsightai/finsight/agent/contract"
)

// CheckInput applies the input guardrail. A disallowed verdict marks the
// state blocked; the graph keeps running so finalize can emit the policy
// response, but every stage after this one is a no-op.
func CheckInput(in *GraphState, guard contractx.Guardrail) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if guard == nil {
		return nil, fmt.Errorf("%w: guardrail is required", contractx.ErrValidation)
	}

	verdict := guard.CheckInput(in.Query.Text)
	if !verdict.Allowed {
		in.Blocked = true
		in.BlockReason = verdict.ReasonCode
		log.Info().
			Str("query_id", in.QueryID).
			Str("reason", string(verdict.ReasonCode)).
			Msg("query blocked by input guardrail")
		return in, nil
	}

	if verdict.SanitizedText != "" {
		in.Query.Text = verdict.SanitizedText
	}
	return in, nil
}
