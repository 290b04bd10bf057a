package tool

import (
	"context"
	"errors"
	"math"
	"testing"

	contractx "github.com/finsightai/finsight/agent/contract"
	"github.com/finsightai/finsight/finstore"
)

type fakeSentimentStore struct {
	buckets []finstore.SentimentBucket
	err     error
	filters []finstore.NewsFilter
}

func (f *fakeSentimentStore) SentimentBreakdown(ctx context.Context, filter finstore.NewsFilter) ([]finstore.SentimentBucket, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return f.buckets, nil
}

func TestSentimentAggregation(t *testing.T) {
	t.Parallel()

	store := &fakeSentimentStore{
		buckets: []finstore.SentimentBucket{
			{Sentiment: "positive", Count: 6, AvgScore: 0.8},
			{Sentiment: "negative", Count: 2, AvgScore: -0.5},
			{Sentiment: "neutral", Count: 2, AvgScore: 0.0},
		},
	}
	tool := NewSentiment(store)

	out, err := tool.Invoke(context.Background(), map[string]any{"company": "Apple"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	result, ok := out.(SentimentOutput)
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}
	if result.Articles != 10 {
		t.Fatalf("articles = %d, want 10", result.Articles)
	}
	// (0.8*6 - 0.5*2 + 0*2) / 10
	if math.Abs(result.Average-0.38) > 1e-9 {
		t.Fatalf("average = %v, want 0.38", result.Average)
	}
	if len(store.filters) != 1 || store.filters[0].Company != "Apple" {
		t.Fatalf("unexpected filter: %+v", store.filters)
	}
}

func TestSentimentSectorFilter(t *testing.T) {
	t.Parallel()

	store := &fakeSentimentStore{
		buckets: []finstore.SentimentBucket{{Sentiment: "positive", Count: 3, AvgScore: 0.6}},
	}
	tool := NewSentiment(store)

	out, err := tool.Invoke(context.Background(), map[string]any{
		"sector": "technology",
		"from":   "2024-01-01",
		"to":     "2024-03-31",
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result := out.(SentimentOutput); result.Sector != "technology" {
		t.Fatalf("sector = %q, want technology", result.Sector)
	}
	if store.filters[0].From.IsZero() || store.filters[0].To.IsZero() {
		t.Fatalf("date range not forwarded: %+v", store.filters[0])
	}
}

func TestSentimentNoData(t *testing.T) {
	t.Parallel()

	tool := NewSentiment(&fakeSentimentStore{})
	_, err := tool.Invoke(context.Background(), map[string]any{"company": "Unknown Corp"})

	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrNoData {
		t.Fatalf("expected no_data ToolError, got %v", err)
	}
}

func TestSentimentBackendUnavailable(t *testing.T) {
	t.Parallel()

	tool := NewSentiment(&fakeSentimentStore{err: errors.New("connection reset")})
	_, err := tool.Invoke(context.Background(), map[string]any{"company": "Apple"})

	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrBackendUnavailable {
		t.Fatalf("expected backend_unavailable ToolError, got %v", err)
	}
}
