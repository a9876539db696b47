package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/certprep/certprep-backend/internal/config"
	"github.com/certprep/certprep-backend/internal/grading"
	"github.com/certprep/certprep-backend/internal/model"
	"github.com/certprep/certprep-backend/internal/repository"
)

const gradingPollTimeout = 1 * time.Second

// GradingWorker consumes completion snapshots from the grading request
// queue, grades them, persists the result on the session row, and pushes
// the reply to the snapshot's correlation key.
//
// Persisting before replying means a session is never left ungraded even
// when the completing caller has already timed out: the result lands in
// the store and stays retrievable through the result endpoint.
type GradingWorker struct {
	sessionRepo *repository.SessionRepository
	rdb         *redis.Client
	replyTTL    time.Duration
	log         zerolog.Logger
}

// NewGradingWorker creates a new GradingWorker.
func NewGradingWorker(sessionRepo *repository.SessionRepository, rdb *redis.Client, replyTTL time.Duration, log zerolog.Logger) *GradingWorker {
	return &GradingWorker{
		sessionRepo: sessionRepo,
		rdb:         rdb,
		replyTTL:    replyTTL,
		log:         log.With().Str("component", "grading_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *GradingWorker) Start(ctx context.Context) {
	w.log.Info().Msg("GradingWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Draining remaining requests...")
			w.drain(context.Background())
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *GradingWorker) processNext(ctx context.Context) {
	item, err := w.rdb.BLPop(ctx, gradingPollTimeout, config.QueueKey.GradingRequestsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(item) < 2 {
		return
	}

	if err := w.grade(ctx, []byte(item[1])); err != nil {
		w.log.Error().Err(err).Msg("Grading failed — requeueing")
		w.rdb.RPush(ctx, config.QueueKey.GradingRequestsQueue, item[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *GradingWorker) grade(ctx context.Context, raw []byte) error {
	var snap model.ExamCompletionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// Poison message, drop it.
		w.log.Error().Err(err).Msg("Invalid snapshot payload, dropping")
		return nil
	}

	result := grading.Score(&snap, time.Now())

	breakdown, err := json.Marshal(result.TopicBreakdown)
	if err != nil {
		return err
	}

	// Persist first, reply second. The reply is best-effort delivery to a
	// possibly-departed caller; the store is the source of truth.
	if err := w.sessionRepo.SetResult(ctx, snap.SessionID, result.Percentage, result.Passed, breakdown); err != nil {
		return err
	}

	reply, err := json.Marshal(result)
	if err != nil {
		return err
	}

	replyKey := config.CacheKey.GradingReplyKey(snap.SessionID.String())
	pipe := w.rdb.Pipeline()
	pipe.RPush(ctx, replyKey, reply)
	pipe.Expire(ctx, replyKey, w.replyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Warn().Err(err).
			Str("session_id", snap.SessionID.String()).
			Msg("Result persisted but reply publish failed")
	}

	w.log.Info().
		Str("session_id", snap.SessionID.String()).
		Float64("percentage", result.Percentage).
		Bool("passed", result.Passed).
		Msg("Session graded")
	return nil
}

// drain processes all remaining queued requests before shutdown.
func (w *GradingWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPop(ctx, config.QueueKey.GradingRequestsQueue).Result()
		if err != nil {
			break
		}
		if err := w.grade(ctx, []byte(raw)); err != nil {
			w.log.Error().Err(err).Msg("Drain grading error")
			w.rdb.RPush(ctx, config.QueueKey.GradingRequestsQueue, raw)
			break
		}
		drained++
	}
	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining requests")
	}
}
