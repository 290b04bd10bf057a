package tool

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/finsightai/finsight/agent/contract"
	websearchx "github.com/finsightai/finsight/pkg/websearch"
)

type fakeSearcher struct {
	results []websearchx.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]websearchx.Result, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestWebSearch(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{
		results: []websearchx.Result{
			{Title: "Fed holds rates", Snippet: "The Fed held rates steady.", Source: "https://example.com/fed"},
		},
	}
	tool := NewWebSearch(searcher)

	out, err := tool.Invoke(context.Background(), map[string]any{"query": "fed interest rate decision"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	result, ok := out.(SearchOutput)
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}
	if len(result.Results) != 1 || result.Results[0].Title != "Fed holds rates" {
		t.Fatalf("unexpected results: %+v", result.Results)
	}
	if len(searcher.queries) != 1 || searcher.queries[0] != "fed interest rate decision" {
		t.Fatalf("unexpected queries: %v", searcher.queries)
	}
}

func TestWebSearchRequiresQuery(t *testing.T) {
	t.Parallel()

	tool := NewWebSearch(&fakeSearcher{})
	_, err := tool.Invoke(context.Background(), map[string]any{})

	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrInvalidArgument {
		t.Fatalf("expected invalid_argument ToolError, got %v", err)
	}
}

func TestWebSearchNoResults(t *testing.T) {
	t.Parallel()

	tool := NewWebSearch(&fakeSearcher{})
	_, err := tool.Invoke(context.Background(), map[string]any{"query": "obscure nonsense"})

	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrNoData {
		t.Fatalf("expected no_data ToolError, got %v", err)
	}
}

func TestWebSearchBackendUnavailable(t *testing.T) {
	t.Parallel()

	tool := NewWebSearch(&fakeSearcher{err: errors.New("dns failure")})
	_, err := tool.Invoke(context.Background(), map[string]any{"query": "markets"})

	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrBackendUnavailable {
		t.Fatalf("expected backend_unavailable ToolError, got %v", err)
	}
}
