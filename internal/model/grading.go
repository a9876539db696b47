package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamCompletionSnapshot is the request message handed to the grading
// service when a session completes. It is assembled once, exchanged, and
// discarded — never persisted by the session engine.
type ExamCompletionSnapshot struct {
	SessionID        uuid.UUID        `json:"session_id"`
	UserID           int              `json:"user_id"`
	ExamID           uuid.UUID        `json:"exam_id"`
	CertificationID  uuid.UUID        `json:"certification_id"`
	Mode             SessionMode      `json:"mode"`
	PassingScore     float64          `json:"passing_score"`
	TotalQuestions   int              `json:"total_questions"`
	TimeSpentSeconds int              `json:"time_spent_seconds"`
	StartedAt        time.Time        `json:"started_at"`
	FinishedAt       time.Time        `json:"finished_at"`
	Answers          []SnapshotAnswer `json:"answers"`
}

// SnapshotAnswer is one graded question inside a completion snapshot,
// with question text and explanation resolved from the catalog.
type SnapshotAnswer struct {
	QuestionID        uuid.UUID   `json:"question_id"`
	TopicID           *uuid.UUID  `json:"topic_id,omitempty"`
	QuestionText      string      `json:"question_text"`
	Explanation       string      `json:"explanation,omitempty"`
	SelectedOptionIDs []string    `json:"selected_option_ids,omitempty"`
	CorrectOptionIDs  []string    `json:"correct_option_ids"`
	Correctness       Correctness `json:"correctness"`
	Flagged           bool        `json:"flagged"`
	TimeSpentSeconds  int         `json:"time_spent_seconds"`
}

// ExamResult is the grading reply: the final score for a completed session.
type ExamResult struct {
	SessionID      uuid.UUID    `json:"session_id"`
	Percentage     float64      `json:"percentage"`
	Passed         bool         `json:"passed"`
	CorrectCount   int          `json:"correct_count"`
	TotalQuestions int          `json:"total_questions"`
	TopicBreakdown []TopicScore `json:"topic_breakdown,omitempty"`
	GradedAt       time.Time    `json:"graded_at"`
}

// TopicScore is the per-topic slice of an exam result.
type TopicScore struct {
	TopicID    uuid.UUID `json:"topic_id"`
	Total      int       `json:"total"`
	Correct    int       `json:"correct"`
	Percentage float64   `json:"percentage"`
}
