package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// orderServer serves a fixed sequence of states, one per fetch, repeating
// the last state once the sequence is exhausted.
func orderServer(t *testing.T, states ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		state := states[len(states)-1]
		if n <= len(states) {
			state = states[n-1]
		}

		order := Order{ID: "order-123", State: state}
		if state == StateSuccess || state == StatePartial {
			order.Links.Results = []Result{{Name: "out.zip", Location: "https://example.com/out.zip"}}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(order)
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func TestClient_Wait_StopsOnSuccess(t *testing.T) {
	server, calls := orderServer(t, StateQueued, StateRunning, StateSuccess, StateSuccess)

	client := NewClient(server.URL, "test-key", 30*time.Second)

	order, err := client.Wait(context.Background(), "order-123", time.Millisecond, 10)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	if order.State != StateSuccess {
		t.Errorf("expected state success, got %s", order.State)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("polling must stop at the first terminal status: expected 3 fetches, got %d", got)
	}
}

func TestClient_Wait_PartialReturnsOrder(t *testing.T) {
	server, _ := orderServer(t, StateRunning, StatePartial)

	client := NewClient(server.URL, "test-key", 30*time.Second)

	order, err := client.Wait(context.Background(), "order-123", time.Millisecond, 10)
	if err != nil {
		t.Fatalf("Wait failed on partial: %v", err)
	}

	if order.State != StatePartial {
		t.Errorf("expected state partial, got %s", order.State)
	}
	if len(order.Links.Results) == 0 {
		t.Error("partial order should still carry its delivered results")
	}
}

func TestClient_Wait_FailedState(t *testing.T) {
	server, calls := orderServer(t, StateQueued, StateFailed)

	client := NewClient(server.URL, "test-key", 30*time.Second)

	_, err := client.Wait(context.Background(), "order-123", time.Millisecond, 10)
	if err == nil {
		t.Fatal("expected error for failed order, got nil")
	}
	if !errors.Is(err, ErrOrderFailed) {
		t.Errorf("expected ErrOrderFailed, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("polling must stop at the failure: expected 2 fetches, got %d", got)
	}
}

func TestClient_Wait_CancelledState(t *testing.T) {
	server, _ := orderServer(t, StateCancelled)

	client := NewClient(server.URL, "test-key", 30*time.Second)

	_, err := client.Wait(context.Background(), "order-123", time.Millisecond, 10)
	if !errors.Is(err, ErrOrderFailed) {
		t.Errorf("expected ErrOrderFailed for cancelled order, got %v", err)
	}
}

func TestClient_Wait_DeadlineExhausted(t *testing.T) {
	server, calls := orderServer(t, StateRunning)

	client := NewClient(server.URL, "test-key", 30*time.Second)

	_, err := client.Wait(context.Background(), "order-123", time.Millisecond, 5)
	if err == nil {
		t.Fatal("expected deadline error, got nil")
	}
	if !errors.Is(err, ErrWaitDeadline) {
		t.Errorf("expected ErrWaitDeadline, got %v", err)
	}
	if got := calls.Load(); got != 5 {
		t.Errorf("expected exactly 5 fetches, got %d", got)
	}
}

func TestClient_Wait_ContextCancelled(t *testing.T) {
	server, _ := orderServer(t, StateRunning)

	client := NewClient(server.URL, "test-key", 30*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Wait(ctx, "order-123", time.Hour, 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClient_Wait_GetError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 30*time.Second)

	_, err := client.Wait(context.Background(), "order-123", time.Millisecond, 10)
	if err == nil {
		t.Fatal("expected error when status fetch fails, got nil")
	}
}
