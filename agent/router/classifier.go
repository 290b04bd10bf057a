package router

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/finsightai/finsight/agent/contract"
)

// LLMClassifier resolves queries the heuristic taxonomy cannot place. It runs
// a single structured completion whose JSON body is parsed straight into a
// Classification.
type LLMClassifier struct {
	runner compose.Runnable[map[string]any, Classification]
}

var _ Classifier = (*LLMClassifier)(nil)

// NewLLMClassifier compiles the classification graph against the given chat
// model and system prompt.
func NewLLMClassifier(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*LLMClassifier, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: classifier system prompt is required", contractx.ErrValidation)
	}

	runner, err := compileClassifierGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, err
	}
	return &LLMClassifier{runner: runner}, nil
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	out, err := c.runner.Invoke(ctx, map[string]any{"input": text})
	if err != nil {
		return Classification{}, fmt.Errorf("%w: classify query: %v", contractx.ErrBackend, err)
	}

	out.Categories = normalizeCategories(out.Categories)
	if len(out.Categories) == 0 {
		return Classification{}, fmt.Errorf("%w: classifier returned no usable categories", contractx.ErrSchemaViolation)
	}
	return out, nil
}

// normalizeCategories keeps only known category labels, preserving order and
// dropping duplicates.
func normalizeCategories(categories []string) []string {
	known := map[string]bool{
		categoryCalculation:      true,
		categoryStructuredLookup: true,
		categorySentiment:        true,
		categoryWebLookup:        true,
		categoryNarrative:        true,
	}

	var out []string
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if known[c] && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func compileClassifierGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, Classification], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	parser := schema.NewMessageJSONParser[Classification](&schema.MessageJSONParseConfig{
		ParseFrom: schema.MessageParseFromContent,
	})

	graph := compose.NewGraph[map[string]any, Classification]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add classifier prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add classifier model node: %w", err)
	}
	if err := graph.AddLambdaNode("parse_json", compose.MessageParser(parser)); err != nil {
		return nil, fmt.Errorf("add classifier parser node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add classifier edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add classifier edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", "parse_json"); err != nil {
		return nil, fmt.Errorf("add classifier edge model->parse: %w", err)
	}
	if err := graph.AddEdge("parse_json", compose.END); err != nil {
		return nil, fmt.Errorf("add classifier edge parse->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("router.classifier_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile classifier graph: %w", err)
	}
	return runner, nil
}
