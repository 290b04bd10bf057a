package tool

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/finsightai/finsight/agent/contract"
	"github.com/finsightai/finsight/finstore"
)

type fakeMarketStore struct {
	latest     *finstore.PricePoint
	series     []finstore.PricePoint
	indicators []finstore.IndicatorPoint
	err        error

	priceCalls     []string
	indicatorCalls []string
}

func (f *fakeMarketStore) PriceSeries(ctx context.Context, company string, from, to time.Time) ([]finstore.PricePoint, error) {
	f.priceCalls = append(f.priceCalls, company)
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func (f *fakeMarketStore) LatestClose(ctx context.Context, company string) (*finstore.PricePoint, error) {
	f.priceCalls = append(f.priceCalls, company)
	if f.err != nil {
		return nil, f.err
	}
	return f.latest, nil
}

func (f *fakeMarketStore) IndicatorSeries(ctx context.Context, indicator string, from, to time.Time) ([]finstore.IndicatorPoint, error) {
	f.indicatorCalls = append(f.indicatorCalls, indicator)
	if f.err != nil {
		return nil, f.err
	}
	return f.indicators, nil
}

func TestMarketDataLatestClose(t *testing.T) {
	t.Parallel()

	store := &fakeMarketStore{
		latest: &finstore.PricePoint{
			Company: "Apple",
			Date:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Close:   175.5,
			Volume:  1250000,
		},
	}
	md := NewMarketData(store)

	out, err := md.Invoke(context.Background(), map[string]any{"company": "Apple"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	price, ok := out.(PriceOutput)
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}
	if price.Latest == nil || price.Latest.Close != 175.5 {
		t.Fatalf("unexpected latest: %+v", price.Latest)
	}
	if price.Metric != "close" {
		t.Fatalf("metric = %q, want close", price.Metric)
	}
}

func TestMarketDataSeriesWithDateRange(t *testing.T) {
	t.Parallel()

	store := &fakeMarketStore{
		series: []finstore.PricePoint{
			{Company: "Apple", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 170},
			{Company: "Apple", Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: 172},
		},
	}
	md := NewMarketData(store)

	out, err := md.Invoke(context.Background(), map[string]any{
		"company": "Apple",
		"from":    "2024-01-01",
		"to":      "2024-01-31",
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if price := out.(PriceOutput); len(price.Series) != 2 {
		t.Fatalf("series length = %d, want 2", len(price.Series))
	}
}

func TestMarketDataRejectsFreeFormQuery(t *testing.T) {
	t.Parallel()

	md := NewMarketData(&fakeMarketStore{})
	_, err := md.Invoke(context.Background(), map[string]any{
		"query": "SELECT * FROM stock_prices; DROP TABLE stock_prices",
	})

	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrInvalidArgument {
		t.Fatalf("expected invalid_argument ToolError, got %v", err)
	}
}

func TestMarketDataNoData(t *testing.T) {
	t.Parallel()

	md := NewMarketData(&fakeMarketStore{})
	_, err := md.Invoke(context.Background(), map[string]any{"company": "Unknown Corp"})

	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrNoData {
		t.Fatalf("expected no_data ToolError, got %v", err)
	}
}

func TestMarketDataBackendUnavailable(t *testing.T) {
	t.Parallel()

	md := NewMarketData(&fakeMarketStore{err: errors.New("connection refused")})
	_, err := md.Invoke(context.Background(), map[string]any{"company": "Apple"})

	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrBackendUnavailable {
		t.Fatalf("expected backend_unavailable ToolError, got %v", err)
	}
}

func TestMarketDataUnsupportedMetric(t *testing.T) {
	t.Parallel()

	md := NewMarketData(&fakeMarketStore{})
	_, err := md.Invoke(context.Background(), map[string]any{
		"company": "Apple",
		"metric":  "vwap",
	})

	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrInvalidArgument {
		t.Fatalf("expected invalid_argument ToolError, got %v", err)
	}
}

func TestMarketDataIndicatorSeries(t *testing.T) {
	t.Parallel()

	store := &fakeMarketStore{
		indicators: []finstore.IndicatorPoint{
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Indicator: "GDP", Value: 2.1, Period: "Q1"},
		},
	}
	md := NewMarketData(store)

	out, err := md.Invoke(context.Background(), map[string]any{"indicator": "GDP"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if ind := out.(IndicatorOutput); len(ind.Series) != 1 || ind.Series[0].Value != 2.1 {
		t.Fatalf("unexpected indicator output: %+v", ind)
	}
}

func TestMarketDataRequiresCompanyOrIndicator(t *testing.T) {
	t.Parallel()

	md := NewMarketData(&fakeMarketStore{})
	_, err := md.Invoke(context.Background(), map[string]any{})

	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrInvalidArgument {
		t.Fatalf("expected invalid_argument ToolError, got %v", err)
	}
}

func TestMarketDataInvalidDate(t *testing.T) {
	t.Parallel()

	md := NewMarketData(&fakeMarketStore{})
	_, err := md.Invoke(context.Background(), map[string]any{
		"company": "Apple",
		"from":    "last tuesday",
	})

	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrInvalidArgument {
		t.Fatalf("expected invalid_argument ToolError, got %v", err)
	}
}
