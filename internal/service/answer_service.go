package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/certprep/certprep-backend/internal/model"
	"github.com/certprep/certprep-backend/internal/repository"
)

// AnswerService validates and records answer submissions against a
// session, maintaining the session aggregates with idempotent
// resubmission semantics.
type AnswerService struct {
	sessionRepo  *repository.SessionRepository
	questionRepo *repository.QuestionRepository
	feedback     FeedbackPolicy
	log          zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(
	sessionRepo *repository.SessionRepository,
	questionRepo *repository.QuestionRepository,
	log zerolog.Logger,
) *AnswerService {
	return &AnswerService{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		log:          log.With().Str("component", "answer_service").Logger(),
	}
}

// Submit records one answer submission. Correctness is exact set equality
// between the selection and the stored correct-option set; the counter
// deltas are computed against the locked answer row inside the store
// transaction, so repeated and concurrent resubmissions keep the session
// invariants intact. Time deltas accumulate on every call.
func (s *AnswerService) Submit(ctx context.Context, sessionID uuid.UUID, userID int, req *model.SubmitAnswerRequest) (*model.AnswerFeedback, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		return nil, ErrNotOwner
	}
	if session.Status != model.SessionStatusInProgress {
		return nil, ErrSessionNotActive
	}

	now := time.Now()
	answer, err := s.sessionRepo.SubmitAnswer(ctx, sessionID, req.QuestionID,
		func(a *model.SessionAnswer) model.CounterDelta {
			return a.ApplySubmission(req.SelectedOptionIDs, req.TimeSpentSeconds, req.Flagged, now)
		})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrQuestionNotInSession
		case errors.Is(err, repository.ErrSessionNotActive):
			return nil, ErrSessionNotActive
		}
		return nil, fmt.Errorf("submit answer: %w", err)
	}

	// The explanation lives in the catalog and is only resolved when the
	// mode reveals it.
	explanation := ""
	if s.feedback.Reveals(session.Mode) {
		question, err := s.questionRepo.GetByID(ctx, req.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("resolve question: %w", err)
		}
		explanation = question.Explanation
	}

	fb := s.feedback.Build(session.Mode, answer, explanation)
	return &fb, nil
}
