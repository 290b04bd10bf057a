package tool

import (
	"context"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/finsightai/finsight/agent/contract"
	"github.com/finsightai/finsight/finstore"
)

// SentimentStore is the dataset slice used by the sentiment aggregator.
type SentimentStore interface {
	SentimentBreakdown(ctx context.Context, filter finstore.NewsFilter) ([]finstore.SentimentBucket, error)
}

// Sentiment aggregates labelled news sentiment over a filtered subset of the
// corpus. An empty subset is a no_data failure, never a zero-valued result,
// so the assembler cannot mistake absence for neutrality.
type Sentiment struct {
	store SentimentStore
}

var _ Tool = (*Sentiment)(nil)

func NewSentiment(store SentimentStore) *Sentiment {
	return &Sentiment{store: store}
}

func (s *Sentiment) ID() string { return ToolSentiment }

func (s *Sentiment) Info() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolSentiment,
		Desc: "Aggregate news sentiment (label counts and average score) for a company, sector, or date range.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"company": {Type: schema.String, Desc: "Company to aggregate sentiment for", Required: false},
			"sector":  {Type: schema.String, Desc: "Sector to aggregate sentiment for", Required: false},
			"from":    {Type: schema.String, Desc: "Start date YYYY-MM-DD", Required: false},
			"to":      {Type: schema.String, Desc: "End date YYYY-MM-DD", Required: false},
		}),
	}
}

// SentimentOutput is the aggregated sentiment for one filtered subset.
type SentimentOutput struct {
	Company  string                     `json:"company,omitempty"`
	Sector   string                     `json:"sector,omitempty"`
	Buckets  []finstore.SentimentBucket `json:"buckets"`
	Articles int                        `json:"articles"`
	Average  float64                    `json:"average_score"`
}

func (s *Sentiment) Invoke(ctx context.Context, args map[string]any) (any, error) {
	from, err := dateArg(args, "from")
	if err != nil {
		return nil, err
	}
	to, err := dateArg(args, "to")
	if err != nil {
		return nil, err
	}

	filter := finstore.NewsFilter{
		Company: stringArg(args, "company"),
		Sector:  stringArg(args, "sector"),
		From:    from,
		To:      to,
	}

	buckets, err := s.store.SentimentBreakdown(ctx, filter)
	if err != nil {
		return nil, contractx.NewToolError(contractx.ToolErrBackendUnavailable, "sentiment aggregate: %v", err)
	}
	if len(buckets) == 0 {
		return nil, contractx.NewToolError(contractx.ToolErrNoData, "no news matches company=%q sector=%q", filter.Company, filter.Sector)
	}

	articles := 0
	weighted := 0.0
	for _, b := range buckets {
		articles += b.Count
		weighted += b.AvgScore * float64(b.Count)
	}

	out := SentimentOutput{
		Company:  filter.Company,
		Sector:   filter.Sector,
		Buckets:  buckets,
		Articles: articles,
	}
	if articles > 0 {
		out.Average = weighted / float64(articles)
	}
	return out, nil
}
