package planet

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testFeature(id string, acquired time.Time) Feature {
	return Feature{
		Type: "Feature",
		ID:   id,
		Properties: Properties{
			Acquired:   acquired,
			ItemType:   "PSScene",
			CloudCover: 0.05,
		},
	}
}

func TestClient_QuickSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.Method != http.MethodPost {
			t.Errorf("expected POST request, got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/quick-search") {
			t.Errorf("expected path /quick-search, got %s", r.URL.Path)
		}
		user, _, ok := r.BasicAuth()
		if !ok || user != "test-key" {
			t.Errorf("expected basic auth with API key, got %q", user)
		}

		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if len(req.ItemTypes) != 1 || req.ItemTypes[0] != "PSScene" {
			t.Errorf("expected item_types [PSScene], got %v", req.ItemTypes)
		}

		response := SearchResponse{
			Type: "FeatureCollection",
			Features: []Feature{
				testFeature("20240101_180000_0f28", time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)),
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	req := SearchRequest{
		ItemTypes: []string{"PSScene"},
		Filter:    CloudCoverBelow(0.1),
	}

	result, err := client.QuickSearch(context.Background(), req)
	if err != nil {
		t.Fatalf("QuickSearch failed: %v", err)
	}

	if len(result.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(result.Features))
	}
	if result.Features[0].ID != "20240101_180000_0f28" {
		t.Errorf("expected item 20240101_180000_0f28, got %s", result.Features[0].ID)
	}
}

func TestClient_QuickSearch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "invalid API key"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key", 30*time.Second)

	_, err := client.QuickSearch(context.Background(), SearchRequest{ItemTypes: []string{"PSScene"}})
	if err == nil {
		t.Fatal("expected error for 401 response, got nil")
	}

	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should contain status code 401: %v", err)
	}
}

func TestClient_QuickSearch_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("not valid json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	_, err := client.QuickSearch(context.Background(), SearchRequest{ItemTypes: []string{"PSScene"}})
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}

	if !strings.Contains(err.Error(), "decode") {
		t.Errorf("error should mention decode failure: %v", err)
	}
}

func TestClient_QuickSearch_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(1 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.QuickSearch(ctx, SearchRequest{ItemTypes: []string{"PSScene"}})
	if err == nil {
		t.Fatal("expected context cancellation error, got nil")
	}
}

func TestClient_SearchAll_FollowsNextLinks(t *testing.T) {
	// Three pages of two features each, chained by _next links.
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")

		var response SearchResponse
		switch page {
		case "2":
			response = SearchResponse{
				Type: "FeatureCollection",
				Features: []Feature{
					testFeature("item-3", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)),
					testFeature("item-4", time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC)),
				},
				Links: SearchLinks{Next: server.URL + "/quick-search?page=3"},
			}
		case "3":
			response = SearchResponse{
				Type: "FeatureCollection",
				Features: []Feature{
					testFeature("item-5", time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)),
					testFeature("item-6", time.Date(2024, 1, 3, 11, 0, 0, 0, time.UTC)),
				},
			}
		default:
			response = SearchResponse{
				Type: "FeatureCollection",
				Features: []Feature{
					testFeature("item-1", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)),
					testFeature("item-2", time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)),
				},
				Links: SearchLinks{Next: server.URL + "/quick-search?page=2"},
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	features, err := client.SearchAll(context.Background(), SearchRequest{ItemTypes: []string{"PSScene"}}, 0)
	if err != nil {
		t.Fatalf("SearchAll failed: %v", err)
	}

	if len(features) != 6 {
		t.Fatalf("expected 6 features across pages, got %d", len(features))
	}
	if features[0].ID != "item-1" || features[5].ID != "item-6" {
		t.Errorf("features out of order: first=%s last=%s", features[0].ID, features[5].ID)
	}
}

func TestClient_SearchAll_RespectsLimit(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Every page links to another, so only the limit stops the walk.
		response := SearchResponse{
			Type: "FeatureCollection",
			Features: []Feature{
				testFeature("a", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)),
				testFeature("b", time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)),
			},
			Links: SearchLinks{Next: server.URL + "/quick-search"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	features, err := client.SearchAll(context.Background(), SearchRequest{ItemTypes: []string{"PSScene"}}, 3)
	if err != nil {
		t.Fatalf("SearchAll failed: %v", err)
	}

	if len(features) != 3 {
		t.Errorf("expected exactly 3 features, got %d", len(features))
	}
}

func TestClient_GetItem_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/item-types/PSScene/items/item-1") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(testFeature("item-1", time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	item, err := client.GetItem(context.Background(), "PSScene", "item-1")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}

	if item.ID != "item-1" {
		t.Errorf("expected item-1, got %s", item.ID)
	}
	if item.AcquiredDate() != "2024-06-15" {
		t.Errorf("expected acquired date 2024-06-15, got %s", item.AcquiredDate())
	}
}

func TestClient_GetItem_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "item not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	_, err := client.GetItem(context.Background(), "PSScene", "missing")
	if err == nil {
		t.Fatal("expected error for 404 response, got nil")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should contain status code 404: %v", err)
	}
}

func TestClient_WithLogger(t *testing.T) {
	client := NewClient("http://example.com", "test-key", 30*time.Second)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client = client.WithLogger(logger)

	if client.logger != logger {
		t.Error("logger was not set correctly")
	}
}

func TestFilters_ComposeToExpectedJSON(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	filter := And(
		AcquiredBetween(start, end),
		CloudCoverBelow(0.1),
		StringIn("quality_category", "standard"),
		Downloadable(),
	)

	data, err := json.Marshal(filter)
	if err != nil {
		t.Fatalf("failed to marshal filter: %v", err)
	}

	s := string(data)
	for _, want := range []string{
		`"type":"AndFilter"`,
		`"type":"DateRangeFilter"`,
		`"field_name":"acquired"`,
		`"gte":"2024-01-01T00:00:00Z"`,
		`"type":"RangeFilter"`,
		`"field_name":"cloud_cover"`,
		`"lte":0.1`,
		`"type":"StringInFilter"`,
		`"config":["standard"]`,
		`"type":"PermissionFilter"`,
		`"config":["assets:download"]`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("filter JSON missing %s: %s", want, s)
		}
	}
}
