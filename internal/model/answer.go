package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Correctness is the tri-state outcome of an answer. An answer starts
// UNANSWERED and becomes CORRECT or INCORRECT on first submission; it can
// flip between the two on resubmission but never returns to UNANSWERED.
type Correctness string

const (
	CorrectnessUnanswered Correctness = "UNANSWERED"
	CorrectnessCorrect    Correctness = "CORRECT"
	CorrectnessIncorrect  Correctness = "INCORRECT"
)

// SessionAnswer is the record of a single question within a session.
// One row is pre-created per question at session start with the
// correct-option set copied from the catalog.
type SessionAnswer struct {
	SessionID         uuid.UUID   `json:"session_id"`
	QuestionID        uuid.UUID   `json:"question_id"`
	CorrectOptionIDs  []string    `json:"-"`
	SelectedOptionIDs []string    `json:"selected_option_ids,omitempty"`
	Correctness       Correctness `json:"correctness"`
	Flagged           bool        `json:"flagged"`
	TimeSpentSeconds  int         `json:"time_spent_seconds"`
	AnsweredAt        *time.Time  `json:"answered_at,omitempty"`
}

// CounterDelta describes the relative adjustments a single submission
// produces against the session aggregates. Deltas are computed against the
// answer state the writer actually observed, so applying them with atomic
// increments keeps the session invariants intact under concurrency.
type CounterDelta struct {
	Answered   int
	Correct    int
	Wrong      int
	Unanswered int
	Flagged    int
	TimeSpent  int
}

// IsZero reports whether the delta would not move any session counter.
func (d CounterDelta) IsZero() bool {
	return d == CounterDelta{}
}

// ApplySubmission records a submission on the answer and returns the
// counter delta the session must absorb.
//
// The three resubmission branches are exhaustive over Correctness:
//   - first submission: answered +1, unanswered -1, correct or wrong +1
//   - correctness flipped: one unit moves between correct and wrong
//   - correctness unchanged: no counter moves
//
// Time deltas always accumulate; a flag change adjusts the flagged count
// by exactly ±1.
func (a *SessionAnswer) ApplySubmission(selected []string, timeSpentDelta int, flagged *bool, now time.Time) CounterDelta {
	var d CounterDelta

	next := CorrectnessIncorrect
	if OptionSetsEqual(selected, a.CorrectOptionIDs) {
		next = CorrectnessCorrect
	}

	switch a.Correctness {
	case CorrectnessUnanswered:
		d.Answered = 1
		d.Unanswered = -1
		if next == CorrectnessCorrect {
			d.Correct = 1
		} else {
			d.Wrong = 1
		}
		at := now
		a.AnsweredAt = &at

	case CorrectnessCorrect:
		if next == CorrectnessIncorrect {
			d.Correct = -1
			d.Wrong = 1
		}

	case CorrectnessIncorrect:
		if next == CorrectnessCorrect {
			d.Correct = 1
			d.Wrong = -1
		}
	}

	a.SelectedOptionIDs = selected
	a.Correctness = next

	a.TimeSpentSeconds += timeSpentDelta
	d.TimeSpent = timeSpentDelta

	if flagged != nil && *flagged != a.Flagged {
		if *flagged {
			d.Flagged = 1
		} else {
			d.Flagged = -1
		}
		a.Flagged = *flagged
	}

	return d
}

// OptionSetsEqual compares two option-id slices as sets. Exact set
// equality is required for a correct answer — not subset or superset.
func OptionSetsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// AnswerFeedback is the submission response. Answered is always true;
// the remaining fields are populated only when the session mode reveals
// them (see service.FeedbackPolicy).
type AnswerFeedback struct {
	QuestionID       uuid.UUID `json:"question_id"`
	Answered         bool      `json:"answered"`
	IsCorrect        *bool     `json:"is_correct,omitempty"`
	CorrectOptionIDs []string  `json:"correct_option_ids,omitempty"`
	Explanation      string    `json:"explanation,omitempty"`
}
