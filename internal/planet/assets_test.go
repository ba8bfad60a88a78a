package planet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_Assets_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/item-types/PSScene/items/item-1/assets") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		assets := map[string]Asset{
			"ortho_analytic_4b": {
				Status: AssetInactive,
				Links:  AssetLinks{Activate: "https://example.com/activate"},
			},
			"ortho_visual": {
				Status:   AssetActive,
				Location: "https://example.com/download/visual",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(assets)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	assets, err := client.Assets(context.Background(), "PSScene", "item-1")
	if err != nil {
		t.Fatalf("Assets failed: %v", err)
	}

	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}
	if assets["ortho_visual"].Status != AssetActive {
		t.Errorf("expected ortho_visual active, got %s", assets["ortho_visual"].Status)
	}
	visual := assets["ortho_visual"]
	if !visual.Active() {
		t.Error("Active() should be true for an active asset")
	}
	analytic := assets["ortho_analytic_4b"]
	if analytic.Active() {
		t.Error("Active() should be false for an inactive asset")
	}
}

func TestClient_Activate(t *testing.T) {
	var activated atomic.Bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/activate" {
			activated.Store(true)
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	asset := &Asset{
		Status: AssetInactive,
		Links:  AssetLinks{Activate: server.URL + "/activate"},
	}

	if err := client.Activate(context.Background(), asset); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if !activated.Load() {
		t.Error("activation endpoint was never called")
	}
}

func TestClient_Activate_NoLink(t *testing.T) {
	client := NewClient("http://example.com", "test-key", 30*time.Second)

	err := client.Activate(context.Background(), &Asset{Status: AssetInactive})
	if err == nil {
		t.Fatal("expected error for asset without activation link, got nil")
	}
}

func TestClient_WaitAsset_BecomesActive(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)

		asset := Asset{Status: AssetActivating}
		if n >= 3 {
			asset = Asset{Status: AssetActive, Location: "https://example.com/download"}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]Asset{"ortho_visual": asset})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	asset, err := client.WaitAsset(context.Background(), "PSScene", "item-1", "ortho_visual", time.Millisecond, 10)
	if err != nil {
		t.Fatalf("WaitAsset failed: %v", err)
	}

	if asset.Location != "https://example.com/download" {
		t.Errorf("expected download location, got %q", asset.Location)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected polling to stop at the third fetch, got %d", got)
	}
}

func TestClient_WaitAsset_DeadlineExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]Asset{"ortho_visual": {Status: AssetActivating}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	_, err := client.WaitAsset(context.Background(), "PSScene", "item-1", "ortho_visual", time.Millisecond, 3)
	if err == nil {
		t.Fatal("expected deadline error, got nil")
	}
	if !errors.Is(err, ErrActivationDeadline) {
		t.Errorf("expected ErrActivationDeadline, got %v", err)
	}
}

func TestClient_WaitAsset_UnknownAssetType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]Asset{"ortho_visual": {Status: AssetActive}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	_, err := client.WaitAsset(context.Background(), "PSScene", "item-1", "basic_udm2", time.Millisecond, 3)
	if err == nil {
		t.Fatal("expected error for unknown asset type, got nil")
	}
	if !strings.Contains(err.Error(), "basic_udm2") {
		t.Errorf("error should name the missing asset type: %v", err)
	}
}

func TestClient_WaitAsset_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]Asset{"ortho_visual": {Status: AssetActivating}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.WaitAsset(ctx, "PSScene", "item-1", "ortho_visual", time.Hour, 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
