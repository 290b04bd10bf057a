package contract

import "context"

// Router turns a query into a Plan. It never fails past this boundary: when
// classification cannot produce a plan it degrades to a retrieval-only Plan.
type Router interface {
	Route(ctx context.Context, q Query, available []string) Plan
}

// Retriever wraps the vector index. Deterministic for a fixed index state and
// query; an empty corpus or below-threshold similarity yields an empty slice,
// not an error.
type Retriever interface {
	Retrieve(ctx context.Context, queryText string, topK int) ([]Passage, error)
}

// Backend is the reasoning collaborator: one blocking, cancellable completion
// call per query.
type Backend interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Guardrail applies policy before and after the reasoning step. Both checks
// are pure functions of their inputs; the filter holds no mutable state.
type Guardrail interface {
	CheckInput(text string) Verdict
	CheckOutput(text string, grounding []string) Verdict
}
