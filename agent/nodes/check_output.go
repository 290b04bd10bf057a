package querynode

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/finsightai/finsight/agent/contract"
	guardrailx "github.com/finsightai/finsight/agent/guardrail"
)

// CheckOutput applies the output guardrail to the draft answer against the
// grounding material gathered for this query. A block here yields the same
// policy response as an input block; sanitization may rewrite the answer and
// attach disclaimers.
func CheckOutput(in *GraphState, guard contractx.Guardrail) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.skip() {
		return in, nil
	}
	if guard == nil {
		return nil, fmt.Errorf("%w: guardrail is required", contractx.ErrValidation)
	}

	verdict := guard.CheckOutput(in.Draft, in.Assembled.Grounding)
	if !verdict.Allowed {
		in.Blocked = true
		in.BlockReason = verdict.ReasonCode
		log.Info().
			Str("query_id", in.QueryID).
			Str("reason", string(verdict.ReasonCode)).
			Msg("draft answer blocked by output guardrail")
		return in, nil
	}

	answer := in.Draft
	if verdict.SanitizedText != "" {
		answer = verdict.SanitizedText
	}
	if strings.Contains(answer, guardrailx.Disclaimer) && !strings.Contains(in.Draft, guardrailx.Disclaimer) {
		in.Disclaimers = append(in.Disclaimers, guardrailx.Disclaimer)
	}

	in.Answer = answer
	return in, nil
}
