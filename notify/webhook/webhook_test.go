package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fuselage-sh/fuselage/iox"
	"github.com/fuselage-sh/fuselage/notify"
)

func testEvent() *notify.RunCompleted {
	return &notify.RunCompleted{
		ContractVersion:  "1",
		EventType:        "run_completed",
		BundleID:         "bundle-1",
		RunID:            "run-001",
		Outcome:          "success",
		ResourcesTotal:   3,
		ResourcesChanged: 2,
		Timestamp:        "2026-02-07T12:00:00Z",
		DurationMs:       1500,
	}
}

func TestNotifySendsJSONPost(t *testing.T) {
	var received notify.RunCompleted
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("got method %q, want %q", r.Method, http.MethodPost)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("got Content-Type %q, want %q", ct, "application/json")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	n, err := New(Config{URL: ts.URL, Retries: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer iox.DiscardClose(n)

	if err := n.Notify(t.Context(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received.RunID != "run-001" {
		t.Errorf("got RunID %q, want %q", received.RunID, "run-001")
	}
	if received.EventType != "run_completed" {
		t.Errorf("got EventType %q, want %q", received.EventType, "run_completed")
	}
	if received.Outcome != "success" {
		t.Errorf("got Outcome %q, want %q", received.Outcome, "success")
	}
}

func TestNotifySendsCorrelationHeaders(t *testing.T) {
	var bundleID, runID, outcome string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bundleID = r.Header.Get("X-Fuselage-Bundle-Id")
		runID = r.Header.Get("X-Fuselage-Run-Id")
		outcome = r.Header.Get("X-Fuselage-Outcome")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	n, err := New(Config{URL: ts.URL, Retries: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer iox.DiscardClose(n)

	event := testEvent()
	event.Outcome = "failed"
	if err := n.Notify(t.Context(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundleID != "bundle-1" {
		t.Errorf("got X-Fuselage-Bundle-Id %q, want %q", bundleID, "bundle-1")
	}
	if runID != "run-001" {
		t.Errorf("got X-Fuselage-Run-Id %q, want %q", runID, "run-001")
	}
	if outcome != "failed" {
		t.Errorf("got X-Fuselage-Outcome %q, want %q", outcome, "failed")
	}
}

func TestNotifySendsCustomHeaders(t *testing.T) {
	var authHeader string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	n, err := New(Config{
		URL:     ts.URL,
		Headers: map[string]string{"Authorization": "Bearer test-token"},
		Retries: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer iox.DiscardClose(n)

	if err := n.Notify(t.Context(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authHeader != "Bearer test-token" {
		t.Errorf("got Authorization %q, want %q", authHeader, "Bearer test-token")
	}
}

func TestNotifyRetriesOn5xxThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	n, err := New(Config{URL: ts.URL, Retries: 3, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer iox.DiscardClose(n)

	if err := n.Notify(t.Context(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("got %d attempts, want 3", got)
	}
}

func TestNotifyExhaustsRetriesOn5xx(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	n, err := New(Config{URL: ts.URL, Retries: 2, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer iox.DiscardClose(n)

	if err := n.Notify(t.Context(), testEvent()); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("got %d attempts, want 3", got)
	}
}

func TestNotify4xxFailsImmediatelyWithoutRetry(t *testing.T) {
	codes := []int{400, 401, 403, 404}
	for _, code := range codes {
		t.Run(http.StatusText(code), func(t *testing.T) {
			var attempts atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				attempts.Add(1)
				w.WriteHeader(code)
			}))
			defer ts.Close()

			n, err := New(Config{URL: ts.URL, Retries: 3})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer iox.DiscardClose(n)

			if err := n.Notify(t.Context(), testEvent()); err == nil {
				t.Fatal("expected an error for a non-retriable status")
			}
			if got := attempts.Load(); got != 1 {
				t.Errorf("got %d attempts, want 1", got)
			}
		})
	}
}

func TestNotifyContextCanceledDuringRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	n, err := New(Config{URL: ts.URL, Retries: 0, Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer iox.DiscardClose(n)

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	if err := n.Notify(ctx, testEvent()); err == nil {
		t.Fatal("expected an error from a canceled context")
	}
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected an error when URL is empty")
	}
}

func TestNewRejectsNegativeRetries(t *testing.T) {
	if _, err := New(Config{URL: "http://example.com", Retries: -1}); err == nil {
		t.Fatal("expected an error for negative retries")
	}
}

func TestNewDefaultTimeout(t *testing.T) {
	n, err := New(Config{URL: "http://example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.config.Timeout != DefaultTimeout {
		t.Errorf("got %v, want %v", n.config.Timeout, DefaultTimeout)
	}
}
