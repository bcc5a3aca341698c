// Package redis implements a Redis pub/sub Notifier.
//
// Publishes run-completed events as JSON to a configurable channel.
// Retries with exponential backoff on connection errors.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fuselage-sh/fuselage/notify"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "fuselage:run_completed"

// failedSuffix is appended to Channel to form the channel a failed run
// is additionally published to, so operators can subscribe to failures
// alone without filtering the full event stream.
const failedSuffix = ":failed"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the Redis pub/sub Notifier.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel name (default: fuselage:run_completed).
	Channel string
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure (default 3).
	Retries int
}

// Notifier publishes run-completed events via Redis PUBLISH.
type Notifier struct {
	config Config
	client *goredis.Client
}

// New creates a Redis Notifier from the given config.
func New(cfg Config) (*Notifier, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis notifier requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis notifier: invalid URL: %w", err)
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}

	return &Notifier{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// Notify sends event as a JSON PUBLISH to the configured channel,
// retrying with exponential backoff on failure.
func (n *Notifier) Notify(ctx context.Context, event *notify.RunCompleted) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	var lastErr error
	attempts := 1 + n.config.Retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("redis: context canceled: %w", err)
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return fmt.Errorf("redis: context canceled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		publishCtx, cancel := context.WithTimeout(ctx, n.config.Timeout)
		lastErr = n.client.Publish(publishCtx, n.config.Channel, body).Err()
		cancel()

		if lastErr == nil {
			n.publishFailureAlert(ctx, event.Outcome, body)
			return nil
		}
	}

	return fmt.Errorf("redis: failed after %d attempts: %w", attempts, lastErr)
}

// publishFailureAlert republishes body to the channel's failed-suffix
// sibling when outcome is not "success", so a dedicated alerting
// subscriber never has to deserialize the full event stream to find
// failures. Best-effort: a failure here does not fail Notify, since the
// primary publish already succeeded.
func (n *Notifier) publishFailureAlert(ctx context.Context, outcome string, body []byte) {
	if outcome == "success" {
		return
	}
	alertCtx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()
	n.client.Publish(alertCtx, n.config.Channel+failedSuffix, body)
}

// Close releases the Redis client.
func (n *Notifier) Close() error {
	return n.client.Close()
}

var _ notify.Notifier = (*Notifier)(nil)
