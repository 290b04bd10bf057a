package querynode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/finsightai/finsight/agent/contract"
	statex "github.com/finsightai/finsight/agent/state"
)

// LoadHistory fetches the conversation window. A missing conversation starts
// a fresh one; a store failure degrades to an empty history rather than
// failing the query.
func LoadHistory(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.skip() {
		return in, nil
	}
	if store == nil {
		return nil, fmt.Errorf("%w: state store is required", contractx.ErrValidation)
	}

	conversation, err := store.Load(ctx, in.Query.ConversationID)
	switch {
	case errors.Is(err, statex.ErrConversationNotFound):
		conversation = statex.NewConversation(in.Query.ConversationID)
	case err != nil:
		log.Warn().Err(err).
			Str("query_id", in.QueryID).
			Str("conversation_id", in.Query.ConversationID).
			Msg("history load failed, continuing without history")
		conversation = statex.NewConversation(in.Query.ConversationID)
	}

	in.Conversation = conversation
	return in, nil
}
