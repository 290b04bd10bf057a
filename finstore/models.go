package finstore

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
)

// NewsRecord is one financial news headline with its labelled sentiment.
type NewsRecord struct {
	bun.BaseModel `bun:"table:financial_news"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	Date           time.Time `bun:"date" json:"date"`
	Company        string    `bun:"company" json:"company"`
	Sector         string    `bun:"sector" json:"sector"`
	Headline       string    `bun:"headline" json:"headline"`
	Sentiment      string    `bun:"sentiment" json:"sentiment"`
	SentimentScore float64   `bun:"sentiment_score" json:"sentiment_score"`
}

// PricePoint is one daily OHLCV record for a company.
type PricePoint struct {
	bun.BaseModel `bun:"table:stock_prices"`

	Company string    `bun:"company" json:"company"`
	Date    time.Time `bun:"date" json:"date"`
	Open    float64   `bun:"open_price" json:"open"`
	High    float64   `bun:"high_price" json:"high"`
	Low     float64   `bun:"low_price" json:"low"`
	Close   float64   `bun:"close_price" json:"close"`
	Volume  int64     `bun:"volume" json:"volume"`
}

// IndicatorPoint is one observation of an economic indicator series.
type IndicatorPoint struct {
	bun.BaseModel `bun:"table:economic_indicators"`

	Date      time.Time `bun:"date" json:"date"`
	Indicator string    `bun:"indicator" json:"indicator"`
	Value     float64   `bun:"value" json:"value"`
	Period    string    `bun:"period" json:"period"`
}

// Company is a reference row for companies present in the datasets.
type Company struct {
	bun.BaseModel `bun:"table:companies"`

	ID     int64  `bun:"id,pk,autoincrement" json:"id"`
	Name   string `bun:"name" json:"name"`
	Sector string `bun:"sector" json:"sector"`
}

// PassageRow is one embedded corpus chunk served to the retriever. The
// Distance column is populated only by nearest-neighbour queries.
type PassageRow struct {
	bun.BaseModel `bun:"table:passages"`

	ID          int64           `bun:"id,pk,autoincrement"`
	SourceID    string          `bun:"source_id"`
	Content     string          `bun:"content"`
	Company     string          `bun:"company"`
	Sector      string          `bun:"sector"`
	PublishDate time.Time       `bun:"publish_date"`
	Embedding   pgvector.Vector `bun:"embedding,type:vector(1536)"`

	Distance float64 `bun:"distance,scanonly"`
}

// SentimentBucket is one row of a sentiment aggregation.
type SentimentBucket struct {
	Sentiment string  `bun:"sentiment" json:"sentiment"`
	Count     int     `bun:"count" json:"count"`
	AvgScore  float64 `bun:"avg_score" json:"avg_score"`
}
