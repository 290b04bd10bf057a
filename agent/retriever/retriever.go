// Package retriever wraps the vector index collaborator. Retrieval is
// deterministic for a fixed index state and query: same embedding, same
// top-k, same ordering.
package retriever

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/finsightai/finsight/agent/contract"
	"github.com/finsightai/finsight/finstore"
)

type Config struct {
	TopK     int     `envconfig:"TOP_K" split_words:"true" default:"5"`
	MinScore float64 `envconfig:"MIN_SCORE" split_words:"true" default:"0.2"`
}

// Embedder produces the query embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PassageIndex is the nearest-neighbour slice of the dataset collaborator.
type PassageIndex interface {
	NearestPassages(ctx context.Context, vec []float32, limit int) ([]finstore.PassageRow, error)
}

// PGVector retrieves grounding passages from the pgvector-backed corpus.
type PGVector struct {
	embedder Embedder
	index    PassageIndex
	minScore float64
	topK     int
}

var _ contractx.Retriever = (*PGVector)(nil)

func New(embedder Embedder, index PassageIndex, cfg Config) (*PGVector, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if index == nil {
		return nil, fmt.Errorf("passage index is required")
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}

	return &PGVector{
		embedder: embedder,
		index:    index,
		minScore: cfg.MinScore,
		topK:     topK,
	}, nil
}

// Retrieve returns at most topK passages ordered by descending similarity
// with ties broken by ascending source id. An empty corpus or similarity
// below the floor yields an empty slice, not an error.
func (r *PGVector) Retrieve(ctx context.Context, queryText string, topK int) ([]contractx.Passage, error) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return nil, nil
	}
	if topK <= 0 {
		topK = r.topK
	}

	vec, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Overfetch so source-level dedup cannot starve the result set.
	rows, err := r.index.NearestPassages(ctx, vec, topK*2)
	if err != nil {
		return nil, fmt.Errorf("index scan: %w", err)
	}

	passages := make([]contractx.Passage, 0, len(rows))
	for _, row := range rows {
		score := 1 - row.Distance
		if score < r.minScore {
			continue
		}

		metadata := map[string]string{}
		if row.Company != "" {
			metadata["company"] = row.Company
		}
		if row.Sector != "" {
			metadata["sector"] = row.Sector
		}
		if !row.PublishDate.IsZero() {
			metadata["publish_date"] = row.PublishDate.Format("2006-01-02")
		}

		passages = append(passages, contractx.Passage{
			SourceID: row.SourceID,
			Text:     row.Content,
			Score:    score,
			Metadata: metadata,
		})
	}

	passages = contractx.DedupePassages(passages)
	if len(passages) > topK {
		passages = passages[:topK]
	}
	return passages, nil
}
