// Package finstore provides read-only, parameterized access to the
// structured financial datasets. No free-form query strings cross this
// boundary; every accessor accepts only a fixed set of validated filters.
package finstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" split_words:"true" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"10s"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"8"`
}

// Store is the dataset collaborator consumed by the tools and the retriever.
type Store struct {
	db *bun.DB
}

func NewDB(cfg Config) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithDialTimeout(cfg.DialTimeout),
		pgdriver.WithReadTimeout(cfg.ReadTimeout),
	))
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func New(db *bun.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &Store{db: db}, nil
}

func MustNew(db *bun.DB) *Store {
	store, err := New(db)
	if err != nil {
		panic(err)
	}
	return store
}

// NewsFilter narrows the news corpus. At least one of Company or Sector must
// be set for targeted lookups; a fully empty filter selects everything.
type NewsFilter struct {
	Company string
	Sector  string
	From    time.Time
	To      time.Time
	Limit   int
}

func (f NewsFilter) apply(q *bun.SelectQuery) *bun.SelectQuery {
	if c := strings.TrimSpace(f.Company); c != "" {
		q = q.Where("company = ?", c)
	}
	if s := strings.TrimSpace(f.Sector); s != "" {
		q = q.Where("sector = ?", s)
	}
	if !f.From.IsZero() {
		q = q.Where("date >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("date <= ?", f.To)
	}
	return q
}

func (s *Store) NewsRecords(ctx context.Context, filter NewsFilter) ([]NewsRecord, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var records []NewsRecord
	q := s.db.NewSelect().Model(&records)
	q = filter.apply(q)
	if err := q.Order("date DESC").Limit(limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select news records: %w", err)
	}
	return records, nil
}

// SentimentBreakdown aggregates the news subset matched by the filter into
// label counts and average scores, most frequent label first.
func (s *Store) SentimentBreakdown(ctx context.Context, filter NewsFilter) ([]SentimentBucket, error) {
	var buckets []SentimentBucket
	q := s.db.NewSelect().
		Model((*NewsRecord)(nil)).
		ColumnExpr("sentiment").
		ColumnExpr("count(*) AS count").
		ColumnExpr("avg(sentiment_score) AS avg_score")
	q = filter.apply(q)
	if err := q.GroupExpr("sentiment").OrderExpr("count DESC, sentiment ASC").Scan(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("aggregate sentiment: %w", err)
	}
	return buckets, nil
}

func (s *Store) PriceSeries(ctx context.Context, company string, from, to time.Time) ([]PricePoint, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, errors.New("company is required")
	}

	var points []PricePoint
	q := s.db.NewSelect().Model(&points).Where("company = ?", company)
	if !from.IsZero() {
		q = q.Where("date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("date <= ?", to)
	}
	if err := q.Order("date ASC").Limit(500).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select price series: %w", err)
	}
	return points, nil
}

func (s *Store) LatestClose(ctx context.Context, company string) (*PricePoint, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, errors.New("company is required")
	}

	point := new(PricePoint)
	err := s.db.NewSelect().Model(point).
		Where("company = ?", company).
		Order("date DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select latest close: %w", err)
	}
	return point, nil
}

func (s *Store) IndicatorSeries(ctx context.Context, indicator string, from, to time.Time) ([]IndicatorPoint, error) {
	indicator = strings.TrimSpace(indicator)
	if indicator == "" {
		return nil, errors.New("indicator is required")
	}

	var points []IndicatorPoint
	q := s.db.NewSelect().Model(&points).Where("lower(indicator) = lower(?)", indicator)
	if !from.IsZero() {
		q = q.Where("date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("date <= ?", to)
	}
	if err := q.Order("date ASC").Limit(500).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select indicator series: %w", err)
	}
	return points, nil
}

func (s *Store) Companies(ctx context.Context) ([]Company, error) {
	var companies []Company
	if err := s.db.NewSelect().Model(&companies).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select companies: %w", err)
	}
	return companies, nil
}

// NearestPassages runs a cosine-distance nearest-neighbour scan over the
// embedded corpus. Rows come back in ascending distance order; ties are
// broken by source id so results are stable for a fixed index state.
func (s *Store) NearestPassages(ctx context.Context, vec []float32, limit int) ([]PassageRow, error) {
	if limit <= 0 {
		return nil, nil
	}

	var rows []PassageRow
	err := s.db.NewSelect().
		Model(&rows).
		Column("source_id", "content", "company", "sector", "publish_date").
		ColumnExpr("embedding <=> ? AS distance", pgvector.NewVector(vec)).
		OrderExpr("distance ASC, source_id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("nearest passages: %w", err)
	}
	return rows, nil
}
