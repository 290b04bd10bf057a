package querynode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/finsightai/finsight/agent/contract"
	statex "github.com/finsightai/finsight/agent/state"
)

// SaveHistory persists the exchange. Blocked and failed queries are never
// written back; a save failure is logged and the answer still returned.
func SaveHistory(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	maxTurns int,
	nowFn func() time.Time,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.skip() {
		return in, nil
	}
	if store == nil {
		return nil, fmt.Errorf("%w: state store is required", contractx.ErrValidation)
	}
	if nowFn == nil {
		nowFn = time.Now
	}

	now := nowFn()
	in.Conversation.Append(statex.RoleUser, in.Query.Text, now, maxTurns)
	in.Conversation.Append(statex.RoleAssistant, in.Answer, now, maxTurns)

	if err := store.Save(ctx, in.Conversation); err != nil {
		log.Warn().Err(err).
			Str("query_id", in.QueryID).
			Str("conversation_id", in.Query.ConversationID).
			Msg("history save failed, answer returned anyway")
	}
	return in, nil
}
