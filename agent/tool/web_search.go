package tool

import (
	"context"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/finsightai/finsight/agent/contract"
	websearchx "github.com/finsightai/finsight/pkg/websearch"
)

// Searcher is the external lookup collaborator.
type Searcher interface {
	Search(ctx context.Context, query string) ([]websearchx.Result, error)
}

// WebSearch performs a bounded external lookup. Failures surface as
// backend_unavailable, which the orchestrator treats as recoverable: the
// query proceeds without this tool's contribution.
type WebSearch struct {
	client Searcher
}

var _ Tool = (*WebSearch)(nil)

func NewWebSearch(client Searcher) *WebSearch {
	return &WebSearch{client: client}
}

func (w *WebSearch) ID() string { return ToolWebSearch }

func (w *WebSearch) Info() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolWebSearch,
		Desc: "Search the web for current financial information and return a small ranked list of results.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "Search query", Required: true},
		}),
	}
}

// SearchOutput is a small ranked result list.
type SearchOutput struct {
	Query   string              `json:"query"`
	Results []websearchx.Result `json:"results"`
}

func (w *WebSearch) Invoke(ctx context.Context, args map[string]any) (any, error) {
	query := stringArg(args, "query")
	if query == "" {
		return nil, contractx.NewToolError(contractx.ToolErrInvalidArgument, "query is required")
	}

	results, err := w.client.Search(ctx, query)
	if err != nil {
		return nil, contractx.NewToolError(contractx.ToolErrBackendUnavailable, "web search: %v", err)
	}
	if len(results) == 0 {
		return nil, contractx.NewToolError(contractx.ToolErrNoData, "no search results for %q", query)
	}

	return SearchOutput{Query: query, Results: results}, nil
}
