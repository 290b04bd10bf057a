package tool

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/finsightai/finsight/agent/contract"
	"github.com/finsightai/finsight/finstore"
)

// MarketDataStore is the slice of the dataset collaborator the market data
// tool needs. Only parameterized accessors; no query strings.
type MarketDataStore interface {
	PriceSeries(ctx context.Context, company string, from, to time.Time) ([]finstore.PricePoint, error)
	LatestClose(ctx context.Context, company string) (*finstore.PricePoint, error)
	IndicatorSeries(ctx context.Context, indicator string, from, to time.Time) ([]finstore.IndicatorPoint, error)
}

var allowedMetrics = map[string]struct{}{
	"close":  {},
	"open":   {},
	"high":   {},
	"low":    {},
	"volume": {},
}

// MarketData answers bounded, read-only lookups against structured price and
// indicator records. Only a fixed, validated set of filters (company, metric,
// indicator, date range) is accepted; free-form query text is rejected.
type MarketData struct {
	store MarketDataStore
}

var _ Tool = (*MarketData)(nil)

func NewMarketData(store MarketDataStore) *MarketData {
	return &MarketData{store: store}
}

func (m *MarketData) ID() string { return ToolMarketData }

func (m *MarketData) Info() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolMarketData,
		Desc: "Look up stock prices (by company, metric, date range) or economic indicator series from the financial database.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"company":   {Type: schema.String, Desc: "Company name for price lookups", Required: false},
			"metric":    {Type: schema.String, Desc: "Price metric: close, open, high, low, volume", Required: false},
			"indicator": {Type: schema.String, Desc: "Economic indicator name, e.g. GDP, inflation", Required: false},
			"from":      {Type: schema.String, Desc: "Start date YYYY-MM-DD", Required: false},
			"to":        {Type: schema.String, Desc: "End date YYYY-MM-DD", Required: false},
		}),
	}
}

// PriceOutput is the structured result of a price lookup.
type PriceOutput struct {
	Company string                `json:"company"`
	Metric  string                `json:"metric"`
	Latest  *finstore.PricePoint  `json:"latest,omitempty"`
	Series  []finstore.PricePoint `json:"series,omitempty"`
}

// IndicatorOutput is the structured result of an indicator lookup.
type IndicatorOutput struct {
	Indicator string                    `json:"indicator"`
	Series    []finstore.IndicatorPoint `json:"series"`
}

func (m *MarketData) Invoke(ctx context.Context, args map[string]any) (any, error) {
	if query := stringArg(args, "query"); query != "" {
		return nil, contractx.NewToolError(contractx.ToolErrInvalidArgument, "free-form queries are not accepted; use company/metric/indicator filters")
	}

	from, err := dateArg(args, "from")
	if err != nil {
		return nil, err
	}
	to, err := dateArg(args, "to")
	if err != nil {
		return nil, err
	}

	company := stringArg(args, "company")
	indicator := stringArg(args, "indicator")

	switch {
	case company != "":
		return m.lookupPrices(ctx, company, stringArg(args, "metric"), from, to)
	case indicator != "":
		return m.lookupIndicator(ctx, indicator, from, to)
	default:
		return nil, contractx.NewToolError(contractx.ToolErrInvalidArgument, "company or indicator is required")
	}
}

func (m *MarketData) lookupPrices(ctx context.Context, company, metric string, from, to time.Time) (any, error) {
	if metric == "" {
		metric = "close"
	}
	if _, ok := allowedMetrics[metric]; !ok {
		return nil, contractx.NewToolError(contractx.ToolErrInvalidArgument, "unsupported metric %q", metric)
	}

	if from.IsZero() && to.IsZero() {
		latest, err := m.store.LatestClose(ctx, company)
		if err != nil {
			return nil, contractx.NewToolError(contractx.ToolErrBackendUnavailable, "price lookup: %v", err)
		}
		if latest == nil {
			return nil, contractx.NewToolError(contractx.ToolErrNoData, "no price data for company %q", company)
		}
		return PriceOutput{Company: company, Metric: metric, Latest: latest}, nil
	}

	series, err := m.store.PriceSeries(ctx, company, from, to)
	if err != nil {
		return nil, contractx.NewToolError(contractx.ToolErrBackendUnavailable, "price series: %v", err)
	}
	if len(series) == 0 {
		return nil, contractx.NewToolError(contractx.ToolErrNoData, "no price data for company %q in range", company)
	}
	return PriceOutput{Company: company, Metric: metric, Series: series}, nil
}

func (m *MarketData) lookupIndicator(ctx context.Context, indicator string, from, to time.Time) (any, error) {
	series, err := m.store.IndicatorSeries(ctx, indicator, from, to)
	if err != nil {
		return nil, contractx.NewToolError(contractx.ToolErrBackendUnavailable, "indicator series: %v", err)
	}
	if len(series) == 0 {
		return nil, contractx.NewToolError(contractx.ToolErrNoData, "no data for indicator %q", indicator)
	}
	return IndicatorOutput{Indicator: indicator, Series: series}, nil
}
