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

// SessionService creates exam sessions, enforces the one-active-session
// rule per (user, exam), and serves session state for resume.
type SessionService struct {
	sessionRepo  *repository.SessionRepository
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		examRepo:     examRepo,
		questionRepo: questionRepo,
		log:          log.With().Str("component", "session_service").Logger(),
	}
}

// StartedSession is the response to a successful session start: the new
// session plus the question list with correct answers stripped.
type StartedSession struct {
	Session   *model.ExamSession           `json:"session"`
	Questions []model.QuestionForCandidate `json:"questions"`
}

// Start creates a new session for (user, exam) with one answer placeholder
// per question, each carrying the question's correct-option set.
//
// Exclusivity is enforced twice: an application-level check that produces
// a friendly ActiveSessionError with the existing id, and the store's
// partial unique index that closes the check-then-insert race. A conflict
// at insert time is resolved by fetching the winner's id.
func (s *SessionService) Start(ctx context.Context, examID uuid.UUID, userID int, mode model.SessionMode) (*StartedSession, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotAvailable
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam.Status != model.ExamStatusPublished {
		return nil, ErrExamNotAvailable
	}

	questions, err := s.questionRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	if existing, err := s.sessionRepo.FindActive(ctx, userID, examID); err == nil {
		return nil, &ActiveSessionError{ExistingSessionID: existing.ID}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check active session: %w", err)
	}

	session := &model.ExamSession{
		ExamID:          examID,
		CertificationID: exam.CertificationID,
		UserID:          userID,
		Mode:            mode,
		TotalQuestions:  len(questions),
		DurationMinutes: exam.DurationMinutes,
	}

	answers := make([]model.SessionAnswer, len(questions))
	candidateQuestions := make([]model.QuestionForCandidate, len(questions))
	for i, q := range questions {
		answers[i] = model.SessionAnswer{
			QuestionID:       q.ID,
			CorrectOptionIDs: q.CorrectOptionIDs,
			Correctness:      model.CorrectnessUnanswered,
		}
		candidateQuestions[i] = model.QuestionForCandidate{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options:      q.Options,
			OrderNum:     q.OrderNum,
		}
	}

	if err := s.sessionRepo.CreateWithAnswers(ctx, session, answers); err != nil {
		if errors.Is(err, repository.ErrDuplicateActiveSession) {
			existing, fetchErr := s.sessionRepo.FindActive(ctx, userID, examID)
			if fetchErr != nil {
				return nil, fmt.Errorf("concurrent start detected, fetch failed: %w", fetchErr)
			}
			return nil, &ActiveSessionError{ExistingSessionID: existing.ID}
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("exam_id", examID.String()).
		Int("user_id", userID).
		Str("mode", string(mode)).
		Int("questions", len(questions)).
		Msg("Session started")

	return &StartedSession{Session: session, Questions: candidateQuestions}, nil
}

// GetState returns the session with per-question progress for resume.
// Correct-option sets are never included.
func (s *SessionService) GetState(ctx context.Context, sessionID uuid.UUID, userID int) (*model.SessionState, error) {
	session, err := s.getOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	answers, err := s.sessionRepo.ListAnswers(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	progress := make([]model.AnswerProgress, len(answers))
	for i, a := range answers {
		progress[i] = model.AnswerProgress{
			QuestionID:        a.QuestionID,
			SelectedOptionIDs: a.SelectedOptionIDs,
			Answered:          a.Correctness != model.CorrectnessUnanswered,
			Flagged:           a.Flagged,
			TimeSpentSeconds:  a.TimeSpentSeconds,
			AnsweredAt:        a.AnsweredAt,
		}
	}

	return &model.SessionState{
		Session:          *session,
		Answers:          progress,
		RemainingSeconds: session.RemainingSeconds(time.Now()),
	}, nil
}

// ListByUser returns all of a user's sessions, newest first.
func (s *SessionService) ListByUser(ctx context.Context, userID int) ([]model.ExamSession, error) {
	return s.sessionRepo.ListByUser(ctx, userID)
}

// VerifyActiveForExam checks that the user holds an IN_PROGRESS session
// for the given exam. Guards the exam paper endpoint against IDOR.
func (s *SessionService) VerifyActiveForExam(ctx context.Context, examID uuid.UUID, userID int) error {
	if _, err := s.sessionRepo.FindActive(ctx, userID, examID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotActive
		}
		return fmt.Errorf("find active session: %w", err)
	}
	return nil
}

// getOwned loads a session and verifies ownership.
func (s *SessionService) getOwned(ctx context.Context, sessionID uuid.UUID, userID int) (*model.ExamSession, error) {
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
	return session, nil
}
