package websocket

import (
	"time"

	"github.com/google/uuid"

	"github.com/certprep/certprep-backend/internal/model"
)

// EventType discriminates the messages pushed on a session progress stream.
type EventType string

const (
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
)

// ProgressEvent is one frame on the session progress stream: the running
// counters and the remaining clock of an in-progress session.
type ProgressEvent struct {
	Type             EventType           `json:"type"`
	SessionID        uuid.UUID           `json:"session_id"`
	Status           model.SessionStatus `json:"status"`
	AnsweredCount    int                 `json:"answered_count"`
	UnansweredCount  int                 `json:"unanswered_count"`
	FlaggedCount     int                 `json:"flagged_count"`
	TimeSpentSeconds int                 `json:"time_spent_seconds"`
	RemainingSeconds int                 `json:"remaining_seconds"`
}

// NewProgressEvent builds a progress frame from a session snapshot.
func NewProgressEvent(s *model.ExamSession, now time.Time) ProgressEvent {
	eventType := EventProgress
	if s.Status == model.SessionStatusCompleted {
		eventType = EventCompleted
	}
	return ProgressEvent{
		Type:             eventType,
		SessionID:        s.ID,
		Status:           s.Status,
		AnsweredCount:    s.AnsweredCount,
		UnansweredCount:  s.UnansweredCount,
		FlaggedCount:     s.FlaggedCount,
		TimeSpentSeconds: s.TimeSpentSeconds,
		RemainingSeconds: s.RemainingSeconds(now),
	}
}
