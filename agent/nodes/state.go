// Package querynode holds the node functions of the query orchestration
// graph. Each node takes the shared GraphState, does one stage of work, and
// passes the state on. Policy blocks and query-level failures are carried as
// flags in the state rather than as graph errors, so the finalize node can
// still emit a full Response with its trace.
package querynode

import (
	"errors"
	"strings"
	"time"

	assemblerx "github.com/finsightai/finsight/agent/assembler"
	contractx "github.com/finsightai/finsight/agent/contract"
	statex "github.com/finsightai/finsight/agent/state"
)

var (
	ErrInvalidQuery        = errors.New("query text is empty")
	ErrInvalidConversation = errors.New("conversation id is empty")
)

type GraphInput struct {
	QueryID        string
	Text           string
	ConversationID string
}

// GraphOutput carries both the response and the query-level error so that a
// failed run still surfaces its tool trace to the caller.
type GraphOutput struct {
	Response contractx.Response
	Err      error
}

type GraphState struct {
	QueryID string
	Query   contractx.Query

	Blocked     bool
	BlockReason contractx.ReasonCode

	Failed  bool
	FailErr error

	Conversation *statex.Conversation

	Plan        contractx.Plan
	Invocations []contractx.ToolInvocation
	Passages    []contractx.Passage

	Assembled assemblerx.Output

	Draft       string
	Answer      string
	Disclaimers []string
}

// skip reports whether downstream work should be bypassed because the query
// was already blocked or failed.
func (s *GraphState) skip() bool {
	return s.Blocked || s.Failed
}

func (s *GraphState) fail(err error) {
	if s.Failed {
		return
	}
	s.Failed = true
	s.FailErr = err
}

// ValidateQuery checks the raw input and seeds the graph state.
func ValidateQuery(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	if nowFn == nil {
		nowFn = time.Now
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidQuery
	}
	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		return nil, ErrInvalidConversation
	}

	return &GraphState{
		QueryID: in.QueryID,
		Query: contractx.Query{
			Text:           text,
			ConversationID: conversationID,
			ReceivedAt:     nowFn().UTC(),
		},
	}, nil
}
