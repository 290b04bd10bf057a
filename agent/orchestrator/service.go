// Package orchestrator runs the full query pipeline: input guardrail,
// routing, tool and retrieval fan-out, assembly, one reasoning completion,
// output guardrail, and history persistence. One HandleQuery call is one
// run of the compiled graph.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/finsightai/finsight/agent/contract"
	querynodex "github.com/finsightai/finsight/agent/nodes"
	statex "github.com/finsightai/finsight/agent/state"
	toolx "github.com/finsightai/finsight/agent/tool"
)

var (
	ErrInvalidQuery        = querynodex.ErrInvalidQuery
	ErrInvalidConversation = querynodex.ErrInvalidConversation
)

type Config struct {
	QueryTimeout    time.Duration `envconfig:"QUERY_TIMEOUT" default:"60s"`
	ToolTimeout     time.Duration `envconfig:"TOOL_TIMEOUT" default:"10s"`
	MaxHistoryTurns int           `envconfig:"MAX_HISTORY_TURNS" default:"20"`
}

type Orchestrator struct {
	store     statex.Store
	guard     contractx.Guardrail
	router    contractx.Router
	registry  *toolx.Registry
	retriever contractx.Retriever
	backend   contractx.Backend

	systemPrompt string
	cfg          Config

	graphRunner compose.Runnable[querynodex.GraphInput, querynodex.GraphOutput]

	now func() time.Time
}

// New wires the pipeline and compiles the query graph. Every collaborator is
// required except retriever: a nil retriever disables passage retrieval, and
// plans that ask for it proceed on tool results alone.
func New(
	store statex.Store,
	guard contractx.Guardrail,
	router contractx.Router,
	registry *toolx.Registry,
	retriever contractx.Retriever,
	backend contractx.Backend,
	systemPrompt string,
	cfg Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if guard == nil {
		return nil, errors.New("guardrail is required")
	}
	if router == nil {
		return nil, errors.New("router is required")
	}
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if backend == nil {
		return nil, errors.New("reasoning backend is required")
	}
	if systemPrompt == "" {
		return nil, errors.New("system prompt is required")
	}

	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 60 * time.Second
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = 10 * time.Second
	}
	if cfg.MaxHistoryTurns <= 0 {
		cfg.MaxHistoryTurns = statex.DefaultMaxTurns
	}

	o := &Orchestrator{
		store:        store,
		guard:        guard,
		router:       router,
		registry:     registry,
		retriever:    retriever,
		backend:      backend,
		systemPrompt: systemPrompt,
		cfg:          cfg,
		now:          time.Now,
	}

	graphRunner, err := o.compileHandleQueryGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleQuery runs one query to completion under the configured deadline.
// The Response is always meaningful when err is nil; blocked queries return
// the policy message, not an error. Query-level failures return both the
// Response carrying the trace and the sentinel error.
func (o *Orchestrator) HandleQuery(ctx context.Context, text string, conversationID string) (contractx.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.QueryTimeout)
	defer cancel()

	queryID := uuid.NewString()
	log.Debug().
		Str("query_id", queryID).
		Str("conversation_id", conversationID).
		Msg("handling query")

	out, err := o.graphRunner.Invoke(ctx, querynodex.GraphInput{
		QueryID:        queryID,
		Text:           text,
		ConversationID: conversationID,
	})
	if err != nil {
		return contractx.Response{}, err
	}

	if out.Err != nil {
		log.Warn().Err(out.Err).Str("query_id", queryID).Msg("query failed")
	}
	return out.Response, out.Err
}
