package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Domain errors shared across the session engine services.
var (
	ErrExamNotAvailable     = errors.New("exam is not available")
	ErrNoQuestions          = errors.New("exam has no questions")
	ErrSessionNotFound      = errors.New("session not found")
	ErrNotOwner             = errors.New("session does not belong to this user")
	ErrSessionNotActive     = errors.New("session is not in progress")
	ErrSessionNotCompleted  = errors.New("session is not completed")
	ErrQuestionNotInSession = errors.New("question does not belong to this session")
	ErrResultPending        = errors.New("grading result is not available yet")
	ErrGradingUnavailable   = errors.New("grading service did not reply in time")
)

// ActiveSessionError rejects a session start while another IN_PROGRESS
// session exists for the same (user, exam). It carries the existing
// session id so the caller can resume it instead of retrying blindly.
type ActiveSessionError struct {
	ExistingSessionID uuid.UUID
}

func (e *ActiveSessionError) Error() string {
	return fmt.Sprintf("session %s is already in progress for this exam", e.ExistingSessionID)
}
