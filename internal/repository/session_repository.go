package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certprep/certprep-backend/internal/model"
)

// ErrDuplicateActiveSession is returned when creating a session collides
// with the partial unique index over (user_id, exam_id) for IN_PROGRESS
// rows. The index closes the check-then-insert race: two concurrent starts
// can both pass the application-level check, but only one insert commits.
var ErrDuplicateActiveSession = errors.New("an in-progress session already exists for this user and exam")

// ErrSessionNotActive is returned by SubmitAnswer when the session left
// IN_PROGRESS between the caller's precondition check and the write.
// COMPLETED is terminal; the store refuses late submissions outright.
var ErrSessionNotActive = errors.New("session is not in progress")

const sessionColumns = `id, exam_id, certification_id, user_id, mode, status,
	started_at, finished_at, total_questions, duration_minutes,
	answered_count, correct_count, wrong_count, unanswered_count,
	flagged_count, time_spent_seconds, final_percent, passed, topic_breakdown`

// SessionRepository is the durable store for exam sessions and their
// per-question answer records.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func scanSession(row pgx.Row) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(&s.ID, &s.ExamID, &s.CertificationID, &s.UserID, &s.Mode, &s.Status,
		&s.StartedAt, &s.FinishedAt, &s.TotalQuestions, &s.DurationMinutes,
		&s.AnsweredCount, &s.CorrectCount, &s.WrongCount, &s.UnansweredCount,
		&s.FlaggedCount, &s.TimeSpentSeconds, &s.FinalPercent, &s.Passed, &s.TopicBreakdown)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateWithAnswers persists a new session row plus one answer placeholder
// per question in a single transaction. The placeholders carry the
// correct-option sets copied from the catalog at start time.
func (r *SessionRepository) CreateWithAnswers(ctx context.Context, s *model.ExamSession, answers []model.SessionAnswer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO exam_sessions
		 (exam_id, certification_id, user_id, mode, status, total_questions, duration_minutes, unanswered_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $6)
		 RETURNING id, started_at`,
		s.ExamID, s.CertificationID, s.UserID, s.Mode, model.SessionStatusInProgress,
		s.TotalQuestions, s.DurationMinutes,
	).Scan(&s.ID, &s.StartedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateActiveSession
		}
		return fmt.Errorf("insert session: %w", err)
	}

	rows := make([][]any, len(answers))
	for i, a := range answers {
		rows[i] = []any{s.ID, a.QuestionID, a.CorrectOptionIDs, model.CorrectnessUnanswered}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"session_answers"},
		[]string{"session_id", "question_id", "correct_option_ids", "correctness"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy answers: %w", err)
	}

	s.Status = model.SessionStatusInProgress
	s.UnansweredCount = s.TotalQuestions
	return tx.Commit(ctx)
}

// GetByID retrieves a session by its id.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id))
}

// FindActive retrieves the IN_PROGRESS session for a (user, exam) pair.
// Returns pgx.ErrNoRows if none exists.
func (r *SessionRepository) FindActive(ctx context.Context, userID int, examID uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM exam_sessions
		 WHERE user_id = $1 AND exam_id = $2 AND status = $3`,
		userID, examID, model.SessionStatusInProgress))
}

// ListByUser retrieves all sessions for a given user, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID int) ([]model.ExamSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM exam_sessions
		 WHERE user_id = $1
		 ORDER BY started_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.ExamSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// ListAnswers retrieves all answer records of a session in question order.
func (r *SessionRepository) ListAnswers(ctx context.Context, sessionID uuid.UUID) ([]model.SessionAnswer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sa.session_id, sa.question_id, sa.correct_option_ids, sa.selected_option_ids,
		        sa.correctness, sa.flagged, sa.time_spent_seconds, sa.answered_at
		 FROM session_answers sa
		 JOIN questions q ON q.id = sa.question_id
		 WHERE sa.session_id = $1
		 ORDER BY q.order_num ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.SessionAnswer
	for rows.Next() {
		var a model.SessionAnswer
		if err := rows.Scan(&a.SessionID, &a.QuestionID, &a.CorrectOptionIDs, &a.SelectedOptionIDs,
			&a.Correctness, &a.Flagged, &a.TimeSpentSeconds, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// SubmitAnswer serializes a submission against its answer row and applies
// the resulting counter delta to the session aggregates.
//
// The answer row is locked with FOR UPDATE so concurrent resubmissions of
// the same question compute their deltas against the value they actually
// observed. The session row is then locked for the status check, which
// serializes submissions against Complete and keeps the relative-increment
// counter update atomic.
func (r *SessionRepository) SubmitAnswer(
	ctx context.Context,
	sessionID, questionID uuid.UUID,
	apply func(a *model.SessionAnswer) model.CounterDelta,
) (*model.SessionAnswer, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	a := &model.SessionAnswer{}
	err = tx.QueryRow(ctx,
		`SELECT session_id, question_id, correct_option_ids, selected_option_ids,
		        correctness, flagged, time_spent_seconds, answered_at
		 FROM session_answers
		 WHERE session_id = $1 AND question_id = $2
		 FOR UPDATE`,
		sessionID, questionID,
	).Scan(&a.SessionID, &a.QuestionID, &a.CorrectOptionIDs, &a.SelectedOptionIDs,
		&a.Correctness, &a.Flagged, &a.TimeSpentSeconds, &a.AnsweredAt)
	if err != nil {
		return nil, err
	}

	// Locking the session row serializes against Complete: a completion
	// that committed first is observed here, and one that is in flight
	// blocks until this submission commits.
	var status model.SessionStatus
	if err := tx.QueryRow(ctx,
		`SELECT status FROM exam_sessions WHERE id = $1 FOR UPDATE`, sessionID,
	).Scan(&status); err != nil {
		return nil, fmt.Errorf("check session status: %w", err)
	}
	if status != model.SessionStatusInProgress {
		return nil, ErrSessionNotActive
	}

	delta := apply(a)

	_, err = tx.Exec(ctx,
		`UPDATE session_answers
		 SET selected_option_ids = $1, correctness = $2, flagged = $3,
		     time_spent_seconds = $4, answered_at = $5
		 WHERE session_id = $6 AND question_id = $7`,
		a.SelectedOptionIDs, a.Correctness, a.Flagged,
		a.TimeSpentSeconds, a.AnsweredAt, sessionID, questionID)
	if err != nil {
		return nil, fmt.Errorf("update answer: %w", err)
	}

	if !delta.IsZero() {
		_, err = tx.Exec(ctx,
			`UPDATE exam_sessions
			 SET answered_count = answered_count + $1,
			     correct_count = correct_count + $2,
			     wrong_count = wrong_count + $3,
			     unanswered_count = unanswered_count + $4,
			     flagged_count = flagged_count + $5,
			     time_spent_seconds = time_spent_seconds + $6
			 WHERE id = $7`,
			delta.Answered, delta.Correct, delta.Wrong,
			delta.Unanswered, delta.Flagged, delta.TimeSpent, sessionID)
		if err != nil {
			return nil, fmt.Errorf("update counters: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return a, nil
}

// Complete transitions a session to COMPLETED and stamps finished_at.
// The WHERE clause makes the transition terminal: a session that is not
// IN_PROGRESS matches no row and pgx.ErrNoRows is returned.
func (r *SessionRepository) Complete(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`UPDATE exam_sessions
		 SET status = $1, finished_at = NOW()
		 WHERE id = $2 AND status = $3
		 RETURNING `+sessionColumns,
		model.SessionStatusCompleted, id, model.SessionStatusInProgress))
}

// SetResult persists the grading outcome on a completed session row.
// Called by the grading worker; this is the reconciliation path for
// callers that timed out waiting for the grading reply.
func (r *SessionRepository) SetResult(ctx context.Context, id uuid.UUID, percentage float64, passed bool, topicBreakdown []byte) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET final_percent = $1, passed = $2, topic_breakdown = $3
		 WHERE id = $4`,
		percentage, passed, topicBreakdown, id)
	return err
}
