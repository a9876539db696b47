package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func boolPtr(b bool) *bool { return &b }

func newTestAnswer(correct ...string) *SessionAnswer {
	return &SessionAnswer{
		SessionID:        uuid.New(),
		QuestionID:       uuid.New(),
		CorrectOptionIDs: correct,
		Correctness:      CorrectnessUnanswered,
	}
}

func TestApplySubmissionFirstSubmission(t *testing.T) {
	now := time.Now()

	t.Run("correct", func(t *testing.T) {
		a := newTestAnswer("a", "c")
		d := a.ApplySubmission([]string{"c", "a"}, 10, nil, now)

		if a.Correctness != CorrectnessCorrect {
			t.Fatalf("correctness = %s, want CORRECT", a.Correctness)
		}
		want := CounterDelta{Answered: 1, Correct: 1, Unanswered: -1, TimeSpent: 10}
		if d != want {
			t.Fatalf("delta = %+v, want %+v", d, want)
		}
		if a.AnsweredAt == nil || !a.AnsweredAt.Equal(now) {
			t.Fatalf("answered_at not stamped on first submission")
		}
	})

	t.Run("incorrect", func(t *testing.T) {
		a := newTestAnswer("a", "c")
		d := a.ApplySubmission([]string{"a"}, 0, nil, now)

		if a.Correctness != CorrectnessIncorrect {
			t.Fatalf("correctness = %s, want INCORRECT", a.Correctness)
		}
		want := CounterDelta{Answered: 1, Wrong: 1, Unanswered: -1}
		if d != want {
			t.Fatalf("delta = %+v, want %+v", d, want)
		}
	})
}

func TestApplySubmissionResubmission(t *testing.T) {
	now := time.Now()

	t.Run("flip wrong to correct", func(t *testing.T) {
		a := newTestAnswer("b")
		a.ApplySubmission([]string{"a"}, 5, nil, now)

		d := a.ApplySubmission([]string{"b"}, 3, nil, now.Add(time.Second))

		want := CounterDelta{Correct: 1, Wrong: -1, TimeSpent: 3}
		if d != want {
			t.Fatalf("delta = %+v, want %+v", d, want)
		}
		if a.TimeSpentSeconds != 8 {
			t.Fatalf("time_spent = %d, want 8 (deltas accumulate)", a.TimeSpentSeconds)
		}
	})

	t.Run("flip correct to wrong", func(t *testing.T) {
		a := newTestAnswer("b")
		a.ApplySubmission([]string{"b"}, 0, nil, now)

		d := a.ApplySubmission([]string{"a"}, 0, nil, now)

		want := CounterDelta{Correct: -1, Wrong: 1}
		if d != want {
			t.Fatalf("delta = %+v, want %+v", d, want)
		}
	})

	t.Run("same correctness is a counter no-op", func(t *testing.T) {
		a := newTestAnswer("b")
		a.ApplySubmission([]string{"a"}, 0, nil, now)
		first := *a.AnsweredAt

		d := a.ApplySubmission([]string{"c"}, 0, nil, now.Add(time.Minute))

		if !d.IsZero() {
			t.Fatalf("delta = %+v, want zero", d)
		}
		if a.Correctness != CorrectnessIncorrect {
			t.Fatalf("correctness = %s, want INCORRECT", a.Correctness)
		}
		if !a.AnsweredAt.Equal(first) {
			t.Fatalf("answered_at changed on resubmission")
		}
		if got := a.SelectedOptionIDs; len(got) != 1 || got[0] != "c" {
			t.Fatalf("selected = %v, want latest selection recorded", got)
		}
	})

	t.Run("never returns to unanswered", func(t *testing.T) {
		a := newTestAnswer("b")
		a.ApplySubmission([]string{"b"}, 0, nil, now)
		a.ApplySubmission([]string{"a"}, 0, nil, now)
		a.ApplySubmission([]string{"b"}, 0, nil, now)

		if a.Correctness == CorrectnessUnanswered {
			t.Fatal("answer regressed to UNANSWERED")
		}
	})
}

func TestApplySubmissionFlagging(t *testing.T) {
	now := time.Now()

	a := newTestAnswer("b")

	d := a.ApplySubmission([]string{"b"}, 0, boolPtr(true), now)
	if d.Flagged != 1 || !a.Flagged {
		t.Fatalf("flag set: delta = %+v, flagged = %v", d, a.Flagged)
	}

	// Same value again: no adjustment.
	d = a.ApplySubmission([]string{"b"}, 0, boolPtr(true), now)
	if d.Flagged != 0 {
		t.Fatalf("repeated flag produced delta %d", d.Flagged)
	}

	// Omitted flag: state untouched.
	d = a.ApplySubmission([]string{"b"}, 0, nil, now)
	if d.Flagged != 0 || !a.Flagged {
		t.Fatalf("nil flag changed state: delta = %+v, flagged = %v", d, a.Flagged)
	}

	d = a.ApplySubmission([]string{"b"}, 0, boolPtr(false), now)
	if d.Flagged != -1 || a.Flagged {
		t.Fatalf("flag clear: delta = %+v, flagged = %v", d, a.Flagged)
	}
}

// Counter invariants must hold after every submission sequence:
// answered + unanswered == total and correct + wrong == answered.
func TestSessionInvariantsUnderSubmissionSequences(t *testing.T) {
	now := time.Now()

	answers := []*SessionAnswer{
		newTestAnswer("a"),
		newTestAnswer("b", "c"),
		newTestAnswer("d"),
	}
	s := &ExamSession{
		TotalQuestions:  len(answers),
		UnansweredCount: len(answers),
	}

	steps := []struct {
		idx      int
		selected []string
		flag     *bool
	}{
		{0, []string{"a"}, nil},             // correct
		{1, []string{"b"}, boolPtr(true)},   // wrong, flagged
		{0, []string{"x"}, nil},             // flip to wrong
		{1, []string{"c", "b"}, nil},        // flip to correct
		{1, []string{"b", "c"}, nil},        // no-op
		{0, []string{"a"}, boolPtr(false)},  // flip back to correct
		{2, []string{"d"}, boolPtr(true)},   // correct, flagged
	}

	for i, step := range steps {
		d := answers[step.idx].ApplySubmission(step.selected, 1, step.flag, now)
		s.Apply(d)

		if s.AnsweredCount+s.UnansweredCount != s.TotalQuestions {
			t.Fatalf("step %d: answered(%d) + unanswered(%d) != total(%d)",
				i, s.AnsweredCount, s.UnansweredCount, s.TotalQuestions)
		}
		if s.CorrectCount+s.WrongCount != s.AnsweredCount {
			t.Fatalf("step %d: correct(%d) + wrong(%d) != answered(%d)",
				i, s.CorrectCount, s.WrongCount, s.AnsweredCount)
		}
	}

	if s.AnsweredCount != 3 || s.CorrectCount != 3 || s.WrongCount != 0 {
		t.Fatalf("final counters = %+v", s)
	}
	// Questions 1 and 2 were flagged and never cleared; the false on
	// question 0 is a no-op because it was never flagged.
	if s.FlaggedCount != 2 {
		t.Fatalf("flagged_count = %d, want 2", s.FlaggedCount)
	}
	if s.TimeSpentSeconds != len(steps) {
		t.Fatalf("time_spent = %d, want %d", s.TimeSpentSeconds, len(steps))
	}
}

func TestOptionSetsEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{"identical", []string{"a", "b"}, []string{"a", "b"}, true},
		{"order independent", []string{"b", "a"}, []string{"a", "b"}, true},
		{"subset is not equal", []string{"a"}, []string{"a", "b"}, false},
		{"superset is not equal", []string{"a", "b", "c"}, []string{"a", "b"}, false},
		{"disjoint", []string{"x"}, []string{"y"}, false},
		{"both empty", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OptionSetsEqual(tt.a, tt.b); got != tt.want {
				t.Fatalf("OptionSetsEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestOptionSetsEqualDoesNotMutateInputs(t *testing.T) {
	a := []string{"c", "a", "b"}
	b := []string{"b", "c", "a"}
	OptionSetsEqual(a, b)
	if a[0] != "c" || b[0] != "b" {
		t.Fatal("inputs were sorted in place")
	}
}

func TestRemainingSeconds(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := &ExamSession{
		Mode:            SessionModeTimed,
		StartedAt:       start,
		DurationMinutes: 90,
	}

	if got := s.RemainingSeconds(start.Add(30 * time.Minute)); got != 3600 {
		t.Fatalf("remaining = %d, want 3600", got)
	}
	if got := s.RemainingSeconds(start.Add(2 * time.Hour)); got != 0 {
		t.Fatalf("expired remaining = %d, want 0 (clamped)", got)
	}

	s.Mode = SessionModePractice
	if got := s.RemainingSeconds(start); got != -1 {
		t.Fatalf("practice remaining = %d, want -1", got)
	}
}
