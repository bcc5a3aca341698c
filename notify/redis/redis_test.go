package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

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

func asyncReceive(sub *miniredis.Subscriber) <-chan miniredis.PubsubMessage {
	ch := make(chan miniredis.PubsubMessage, 1)
	go func() { ch <- <-sub.Messages() }()
	return ch
}

func waitMessage(t *testing.T, ch <-chan miniredis.PubsubMessage) miniredis.PubsubMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for pub/sub message")
		return miniredis.PubsubMessage{}
	}
}

func TestNotifyPublishesToDefaultChannel(t *testing.T) {
	mr := miniredis.RunT(t)

	n, err := New(Config{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = n.Close() }()

	sub := mr.NewSubscriber()
	sub.Subscribe(DefaultChannel)
	ch := asyncReceive(sub)

	if err := n.Notify(t.Context(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := waitMessage(t, ch)
	if msg.Channel != DefaultChannel {
		t.Errorf("got channel %q, want %q", msg.Channel, DefaultChannel)
	}

	var received notify.RunCompleted
	if err := json.Unmarshal([]byte(msg.Message), &received); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received.RunID != "run-001" {
		t.Errorf("got RunID %q, want %q", received.RunID, "run-001")
	}
	if received.Outcome != "success" {
		t.Errorf("got Outcome %q, want %q", received.Outcome, "success")
	}
}

func TestNotifyUsesCustomChannel(t *testing.T) {
	mr := miniredis.RunT(t)

	n, err := New(Config{URL: "redis://" + mr.Addr(), Channel: "custom:notifications"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = n.Close() }()

	sub := mr.NewSubscriber()
	sub.Subscribe("custom:notifications")
	ch := asyncReceive(sub)

	if err := n.Notify(t.Context(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := waitMessage(t, ch)
	if msg.Channel != "custom:notifications" {
		t.Errorf("got channel %q, want %q", msg.Channel, "custom:notifications")
	}
}

func TestNotifyFailedOutcomeAlsoPublishesToFailedChannel(t *testing.T) {
	mr := miniredis.RunT(t)

	n, err := New(Config{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = n.Close() }()

	alerts := mr.NewSubscriber()
	alerts.Subscribe(DefaultChannel + failedSuffix)
	ch := asyncReceive(alerts)

	event := testEvent()
	event.Outcome = "failed"
	if err := n.Notify(t.Context(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := waitMessage(t, ch)
	var received notify.RunCompleted
	if err := json.Unmarshal([]byte(msg.Message), &received); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received.RunID != "run-001" {
		t.Errorf("got RunID %q, want %q", received.RunID, "run-001")
	}
}

func TestNotifySuccessOutcomeDoesNotPublishToFailedChannel(t *testing.T) {
	mr := miniredis.RunT(t)

	n, err := New(Config{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = n.Close() }()

	alerts := mr.NewSubscriber()
	alerts.Subscribe(DefaultChannel + failedSuffix)
	ch := asyncReceive(alerts)

	if err := n.Notify(t.Context(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case msg := <-ch:
		t.Fatalf("expected no failure-channel publish for a success outcome, got %v", msg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNotifyExhaustsRetriesOnUnreachableServer(t *testing.T) {
	n, err := New(Config{URL: "redis://127.0.0.1:1", Retries: 1, Timeout: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = n.Close() }()

	if err := n.Notify(t.Context(), testEvent()); err == nil {
		t.Fatal("expected an error against an unreachable server")
	}
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected an error when URL is empty")
	}
}

func TestNewRejectsNegativeRetries(t *testing.T) {
	if _, err := New(Config{URL: "redis://localhost:6379", Retries: -1}); err == nil {
		t.Fatal("expected an error for negative retries")
	}
}
