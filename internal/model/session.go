package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// SessionMode controls what a submission response reveals.
// PRACTICE reveals correctness and explanations immediately;
// TIMED withholds both until grading.
type SessionMode string

const (
	SessionModePractice SessionMode = "PRACTICE"
	SessionModeTimed    SessionMode = "TIMED"
)

// ExamSession represents one user's attempt at one exam, from start to
// completion. The running counters satisfy, at every observable point:
//
//	AnsweredCount + UnansweredCount == TotalQuestions
//	CorrectCount + WrongCount == AnsweredCount
type ExamSession struct {
	ID              uuid.UUID     `json:"id"`
	ExamID          uuid.UUID     `json:"exam_id"`
	CertificationID uuid.UUID     `json:"certification_id"`
	UserID          int           `json:"user_id"`
	Mode            SessionMode   `json:"mode"`
	Status          SessionStatus `json:"status"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      *time.Time    `json:"finished_at,omitempty"`

	TotalQuestions  int `json:"total_questions"`
	DurationMinutes int `json:"duration_minutes"`

	AnsweredCount    int `json:"answered_count"`
	CorrectCount     int `json:"correct_count"`
	WrongCount       int `json:"wrong_count"`
	UnansweredCount  int `json:"unanswered_count"`
	FlaggedCount     int `json:"flagged_count"`
	TimeSpentSeconds int `json:"time_spent_seconds"`

	FinalPercent   *float64        `json:"final_percent,omitempty"`
	Passed         *bool           `json:"passed,omitempty"`
	TopicBreakdown json.RawMessage `json:"topic_breakdown,omitempty"`
}

// Apply folds a submission's counter delta into the session aggregates.
func (s *ExamSession) Apply(d CounterDelta) {
	s.AnsweredCount += d.Answered
	s.CorrectCount += d.Correct
	s.WrongCount += d.Wrong
	s.UnansweredCount += d.Unanswered
	s.FlaggedCount += d.Flagged
	s.TimeSpentSeconds += d.TimeSpent
}

// RemainingSeconds returns the seconds left on a TIMED session's clock,
// clamped at zero. PRACTICE sessions have no deadline and return -1.
func (s *ExamSession) RemainingSeconds(now time.Time) int {
	if s.Mode != SessionModeTimed {
		return -1
	}
	deadline := s.StartedAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
	remaining := deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return int(remaining.Seconds())
}

// StartSessionRequest is the payload for starting a new exam session.
type StartSessionRequest struct {
	ExamID uuid.UUID   `json:"exam_id" binding:"required"`
	Mode   SessionMode `json:"mode" binding:"required,oneof=PRACTICE TIMED"`
}

// SubmitAnswerRequest is the payload for submitting an answer to a question.
// TimeSpentSeconds is a delta since the last submission, not a total.
type SubmitAnswerRequest struct {
	QuestionID        uuid.UUID `json:"question_id" binding:"required"`
	SelectedOptionIDs []string  `json:"selected_option_ids" binding:"required,min=1,dive,min=1"`
	TimeSpentSeconds  int       `json:"time_spent_seconds" binding:"min=0"`
	Flagged           *bool     `json:"flagged" binding:"omitempty"`
}

// SessionState is the resume payload: the session plus every answer the
// candidate may still act on, with correct-option sets stripped.
type SessionState struct {
	Session          ExamSession      `json:"session"`
	Answers          []AnswerProgress `json:"answers"`
	RemainingSeconds int              `json:"remaining_seconds"`
}

// AnswerProgress is a candidate-facing view of one answer record.
type AnswerProgress struct {
	QuestionID        uuid.UUID  `json:"question_id"`
	SelectedOptionIDs []string   `json:"selected_option_ids,omitempty"`
	Answered          bool       `json:"answered"`
	Flagged           bool       `json:"flagged"`
	TimeSpentSeconds  int        `json:"time_spent_seconds"`
	AnsweredAt        *time.Time `json:"answered_at,omitempty"`
}
