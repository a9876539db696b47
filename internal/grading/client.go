package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/certprep/certprep-backend/internal/config"
	"github.com/certprep/certprep-backend/internal/model"
)

// ErrTimeout is returned when no grading reply arrives within the
// configured exchange timeout. The request stays on the queue; the worker
// still grades it and persists the result, so the caller can fetch the
// score later through the result endpoint.
var ErrTimeout = errors.New("grading reply timed out")

// Client performs the request/reply exchange with the grading service over
// Redis lists. A completion snapshot is pushed to the shared request queue
// and the caller blocks on a reply key correlated by session id.
type Client struct {
	rdb     *redis.Client
	timeout time.Duration
	log     zerolog.Logger
}

// NewClient creates a grading client with the given exchange timeout.
func NewClient(rdb *redis.Client, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		rdb:     rdb,
		timeout: timeout,
		log:     log.With().Str("component", "grading_client").Logger(),
	}
}

// Enqueue publishes a snapshot to the grading request queue without
// waiting for the reply. Safe to repeat for the same session: the worker's
// result write and reply push are both idempotent.
func (c *Client) Enqueue(ctx context.Context, snap *model.ExamCompletionSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.rdb.RPush(ctx, config.QueueKey.GradingRequestsQueue, payload).Err(); err != nil {
		return fmt.Errorf("publish grading request: %w", err)
	}
	return nil
}

// Exchange publishes the snapshot and blocks until the correlated reply
// arrives or the timeout elapses. Timeout surfaces as ErrTimeout.
func (c *Client) Exchange(ctx context.Context, snap *model.ExamCompletionSnapshot) (*model.ExamResult, error) {
	if err := c.Enqueue(ctx, snap); err != nil {
		return nil, err
	}

	replyKey := config.CacheKey.GradingReplyKey(snap.SessionID.String())

	item, err := c.rdb.BLPop(ctx, c.timeout, replyKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.log.Warn().
				Str("session_id", snap.SessionID.String()).
				Dur("timeout", c.timeout).
				Msg("No grading reply within timeout")
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("await grading reply: %w", err)
	}
	if len(item) < 2 {
		return nil, ErrTimeout
	}

	var result model.ExamResult
	if err := json.Unmarshal([]byte(item[1]), &result); err != nil {
		return nil, fmt.Errorf("unmarshal grading reply: %w", err)
	}
	return &result, nil
}
