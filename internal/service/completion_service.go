package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/certprep/certprep-backend/internal/grading"
	"github.com/certprep/certprep-backend/internal/model"
	"github.com/certprep/certprep-backend/internal/repository"
)

// CompletionService closes a session, assembles the completion snapshot,
// and exchanges it with the grading service for a final score.
type CompletionService struct {
	sessionRepo  *repository.SessionRepository
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	grading      *grading.Client
	log          zerolog.Logger
}

// NewCompletionService creates a new CompletionService.
func NewCompletionService(
	sessionRepo *repository.SessionRepository,
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	gradingClient *grading.Client,
	log zerolog.Logger,
) *CompletionService {
	return &CompletionService{
		sessionRepo:  sessionRepo,
		examRepo:     examRepo,
		questionRepo: questionRepo,
		grading:      gradingClient,
		log:          log.With().Str("component", "completion_service").Logger(),
	}
}

// CompletedSession is the response to a successful completion: the
// terminal session state plus the grading reply.
type CompletedSession struct {
	Session *model.ExamSession `json:"session"`
	Result  *model.ExamResult  `json:"result"`
}

// Complete transitions the session to COMPLETED and blocks on the grading
// exchange. The transition commits before the exchange: if the grading
// reply never arrives the session stays COMPLETED with the score pending,
// and the grading worker's persisted result resolves it out of band (the
// caller retries through GetResult).
func (s *CompletionService) Complete(ctx context.Context, sessionID uuid.UUID, userID int) (*CompletedSession, error) {
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

	completed, err := s.sessionRepo.Complete(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Already completed, or a concurrent completion won.
			return nil, ErrSessionNotActive
		}
		return nil, fmt.Errorf("complete session: %w", err)
	}

	exam, err := s.examRepo.GetByID(ctx, completed.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	answers, err := s.sessionRepo.ListAnswers(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	questions, err := s.questionRepo.ListByExam(ctx, completed.ExamID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	snap := BuildSnapshot(completed, exam, answers, questions)

	result, err := s.grading.Exchange(ctx, snap)
	if err != nil {
		if errors.Is(err, grading.ErrTimeout) {
			s.log.Warn().
				Str("session_id", sessionID.String()).
				Msg("Session completed but grading reply pending")
			return nil, ErrGradingUnavailable
		}
		return nil, fmt.Errorf("grading exchange: %w", err)
	}

	completed.FinalPercent = &result.Percentage
	completed.Passed = &result.Passed
	breakdown, err := json.Marshal(result.TopicBreakdown)
	if err != nil {
		s.log.Error().Err(err).
			Str("session_id", sessionID.String()).
			Msg("Marshal topic breakdown failed")
	} else {
		completed.TopicBreakdown = breakdown
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Float64("percentage", result.Percentage).
		Bool("passed", result.Passed).
		Msg("Session completed and graded")

	return &CompletedSession{Session: completed, Result: result}, nil
}

// GetResult returns the graded result of a completed session from the
// store. Serves callers whose completion call timed out on the exchange.
func (s *CompletionService) GetResult(ctx context.Context, sessionID uuid.UUID, userID int) (*model.ExamResult, error) {
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
	if session.Status != model.SessionStatusCompleted {
		return nil, ErrSessionNotCompleted
	}
	if session.FinalPercent == nil || session.Passed == nil {
		// The original request may never have reached the queue (Redis
		// down at completion time). Re-enqueue so the worker can land
		// the result before the caller's next retry.
		if err := s.requeueGrading(ctx, session); err != nil {
			s.log.Warn().Err(err).
				Str("session_id", sessionID.String()).
				Msg("Grading re-enqueue failed")
		}
		return nil, ErrResultPending
	}

	result := &model.ExamResult{
		SessionID:      session.ID,
		Percentage:     *session.FinalPercent,
		Passed:         *session.Passed,
		CorrectCount:   session.CorrectCount,
		TotalQuestions: session.TotalQuestions,
	}
	if len(session.TopicBreakdown) > 0 {
		if err := json.Unmarshal(session.TopicBreakdown, &result.TopicBreakdown); err != nil {
			return nil, fmt.Errorf("unmarshal topic breakdown: %w", err)
		}
	}
	if session.FinishedAt != nil {
		result.GradedAt = *session.FinishedAt
	}
	return result, nil
}

// requeueGrading rebuilds the completion snapshot of a graded-but-pending
// session and puts it back on the grading queue.
func (s *CompletionService) requeueGrading(ctx context.Context, session *model.ExamSession) error {
	exam, err := s.examRepo.GetByID(ctx, session.ExamID)
	if err != nil {
		return fmt.Errorf("get exam: %w", err)
	}
	answers, err := s.sessionRepo.ListAnswers(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("list answers: %w", err)
	}
	questions, err := s.questionRepo.ListByExam(ctx, session.ExamID)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}

	snap := BuildSnapshot(session, exam, answers, questions)
	if err := s.grading.Enqueue(ctx, snap); err != nil {
		return err
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Msg("Pending session re-enqueued for grading")
	return nil
}

// BuildSnapshot assembles the completion snapshot handed to the grading
// service, resolving question text and explanations from the catalog.
func BuildSnapshot(session *model.ExamSession, exam *model.Exam, answers []model.SessionAnswer, questions []model.Question) *model.ExamCompletionSnapshot {
	questionByID := make(map[uuid.UUID]*model.Question, len(questions))
	for i := range questions {
		questionByID[questions[i].ID] = &questions[i]
	}

	snap := &model.ExamCompletionSnapshot{
		SessionID:        session.ID,
		UserID:           session.UserID,
		ExamID:           session.ExamID,
		CertificationID:  session.CertificationID,
		Mode:             session.Mode,
		PassingScore:     exam.PassingScore,
		TotalQuestions:   session.TotalQuestions,
		TimeSpentSeconds: session.TimeSpentSeconds,
		StartedAt:        session.StartedAt,
		Answers:          make([]model.SnapshotAnswer, 0, len(answers)),
	}
	if session.FinishedAt != nil {
		snap.FinishedAt = *session.FinishedAt
	}

	for _, a := range answers {
		sa := model.SnapshotAnswer{
			QuestionID:        a.QuestionID,
			SelectedOptionIDs: a.SelectedOptionIDs,
			CorrectOptionIDs:  a.CorrectOptionIDs,
			Correctness:       a.Correctness,
			Flagged:           a.Flagged,
			TimeSpentSeconds:  a.TimeSpentSeconds,
		}
		if q, ok := questionByID[a.QuestionID]; ok {
			sa.TopicID = q.TopicID
			sa.QuestionText = q.QuestionText
			sa.Explanation = q.Explanation
		}
		snap.Answers = append(snap.Answers, sa)
	}

	return snap
}
