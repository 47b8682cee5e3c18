package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testEvent(status Status) Event {
	return Event{
		Status:    status,
		PeriodKey: "20260801T000000Z_20260815T000000Z",
		Provider:  "hetzner",
		At:        time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestLogNotifier(t *testing.T) {
	var buf strings.Builder
	n := NewLogNotifier(&buf)

	event := testEvent(StatusCompleted)
	event.Detail = "3 entities"
	if err := n.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	line := buf.String()
	for _, want := range []string{"run completed", "provider=hetzner", "detail=3 entities"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %q: %s", want, line)
		}
	}
}

func TestWebhookNotifier(t *testing.T) {
	var received Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL)
	if err := n.Notify(context.Background(), testEvent(StatusStarted)); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if received.Status != StatusStarted {
		t.Errorf("received status = %s, want started", received.Status)
	}
	if received.Provider != "hetzner" {
		t.Errorf("received provider = %s, want hetzner", received.Provider)
	}
}

func TestWebhookNotifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL)
	if err := n.Notify(context.Background(), testEvent(StatusFailed)); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestWebhookNotifier_Unreachable(t *testing.T) {
	n := NewWebhookNotifier("http://127.0.0.1:1")
	if err := n.Notify(context.Background(), testEvent(StatusStarted)); err == nil {
		t.Fatal("expected error for unreachable endpoint")
	}
}
