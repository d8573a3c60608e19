package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/signalboard/signalboard/internal/domain"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req struct {
			Query         string `json:"query"`
			MaxResults    int    `json:"max_results"`
			IncludeAnswer bool   `json:"include_answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "fed rate cut" || req.MaxResults != 5 || !req.IncludeAnswer {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"answer": "Probably.",
			"results": []map[string]string{
				{"title": "Fed watch", "url": "https://example.com/a", "content": "Rates likely to fall."},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k"})
	got, err := c.Search(context.Background(), "fed rate cut")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got.Answer != "Probably." || len(got.Results) != 1 {
		t.Errorf("got %+v", got)
	}
	if got.Empty() {
		t.Error("result should not be empty")
	}
}

func TestSearchMissingKey(t *testing.T) {
	c := NewClient(ClientConfig{BaseURL: "http://localhost:0"})

	_, err := c.Search(context.Background(), "q")
	if !errors.Is(err, domain.ErrNoAPIKey) {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k"})
	if _, err := c.Search(context.Background(), "q"); err == nil {
		t.Fatal("want error for 502 response")
	}
}
