package sound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testResolver(srv *httptest.Server) *Resolver {
	return &Resolver{httpClient: srv.Client(), baseURL: srv.URL}
}

func TestResolveReturnsFirstHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "airhorn" {
			t.Errorf("query name = %q, want airhorn", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"name": "Airhorn", "sound": "https://cdn.example.com/airhorn.mp3"},
				{"name": "Airhorn 2", "sound": "https://cdn.example.com/airhorn2.mp3"},
			},
		})
	}))
	defer srv.Close()

	got, err := testResolver(srv).Resolve(context.Background(), "airhorn")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "https://cdn.example.com/airhorn.mp3" {
		t.Fatalf("Resolve() = %q", got)
	}
}

func TestResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer srv.Close()

	_, err := testResolver(srv).Resolve(context.Background(), "nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestResolveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := testResolver(srv).Resolve(context.Background(), "x"); err == nil {
		t.Fatalf("Resolve() expected error on non-200")
	}
}
