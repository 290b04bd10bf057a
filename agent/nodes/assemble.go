package querynode

import (
	"fmt"

	assemblerx "github.com/finsightai/finsight/agent/assembler"
	contractx "github.com/finsightai/finsight/agent/contract"
)

// Assemble merges history, tool results, and passages into the grounded
// prompt.
func Assemble(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.skip() {
		return in, nil
	}

	in.Assembled = assemblerx.Build(assemblerx.Input{
		Query:       in.Query,
		History:     in.Conversation.Window(historyWindow),
		Passages:    in.Passages,
		Invocations: in.Invocations,
	})
	return in, nil
}

// historyWindow bounds how many stored turns reach the prompt.
const historyWindow = 10
