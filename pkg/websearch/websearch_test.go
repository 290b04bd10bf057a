package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchParsesInstantAnswer(t *testing.T) {
	t.Parallel()

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `{
			"Heading": "Federal Reserve",
			"AbstractText": "The Federal Reserve held rates steady.",
			"AbstractURL": "https://example.com/fed",
			"RelatedTopics": [
				{"Text": "FOMC meeting schedule", "FirstURL": "https://example.com/fomc"},
				{"Text": "", "FirstURL": "https://example.com/empty"},
				{"Text": "Interest rate history", "FirstURL": "https://example.com/history"}
			]
		}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, MaxResults: 2})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	results, err := client.Search(context.Background(), "fed rate decision")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotQuery != "fed rate decision" {
		t.Fatalf("query = %q", gotQuery)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (max)", len(results))
	}
	if results[0].Title != "Federal Reserve" || results[0].Source != "https://example.com/fed" {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[1].Title != "FOMC meeting schedule" {
		t.Fatalf("unexpected second result: %+v", results[1])
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{URL: "https://api.duckduckgo.com"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.Search(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearchHTTPErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.Search(context.Background(), "markets"); err == nil {
		t.Fatal("expected error for http 429")
	}
}

func TestSearchNoAnswer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Heading":"","AbstractText":"","RelatedTopics":[]}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	results, err := client.Search(context.Background(), "gibberish")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %+v, want none", results)
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewClient(Config{URL: "://bad"}); err == nil {
		t.Fatal("expected error for malformed url")
	}
}
