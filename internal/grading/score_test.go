package grading

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/certprep/certprep-backend/internal/model"
)

func snapshotWith(passing float64, answers ...model.SnapshotAnswer) *model.ExamCompletionSnapshot {
	return &model.ExamCompletionSnapshot{
		SessionID:      uuid.New(),
		PassingScore:   passing,
		TotalQuestions: len(answers),
		Answers:        answers,
	}
}

func answer(c model.Correctness, topic *uuid.UUID) model.SnapshotAnswer {
	return model.SnapshotAnswer{
		QuestionID:  uuid.New(),
		TopicID:     topic,
		Correctness: c,
	}
}

func TestScorePercentageAndPass(t *testing.T) {
	now := time.Now()

	snap := snapshotWith(70,
		answer(model.CorrectnessCorrect, nil),
		answer(model.CorrectnessCorrect, nil),
		answer(model.CorrectnessCorrect, nil),
		answer(model.CorrectnessIncorrect, nil),
		answer(model.CorrectnessCorrect, nil),
	)

	result := Score(snap, now)

	if result.Percentage != 80.0 {
		t.Fatalf("percentage = %v, want 80.0", result.Percentage)
	}
	if !result.Passed {
		t.Fatal("80% against a passing score of 70 must pass")
	}
	if result.CorrectCount != 4 {
		t.Fatalf("correct_count = %d, want 4", result.CorrectCount)
	}
	if !result.GradedAt.Equal(now) {
		t.Fatalf("graded_at = %v, want %v", result.GradedAt, now)
	}
}

func TestScorePassBoundary(t *testing.T) {
	now := time.Now()

	// Exactly at the passing score passes.
	snap := snapshotWith(50,
		answer(model.CorrectnessCorrect, nil),
		answer(model.CorrectnessIncorrect, nil),
	)
	if r := Score(snap, now); !r.Passed {
		t.Fatalf("percentage %v at passing score 50 must pass", r.Percentage)
	}

	// Just below fails.
	snap = snapshotWith(50,
		answer(model.CorrectnessCorrect, nil),
		answer(model.CorrectnessIncorrect, nil),
		answer(model.CorrectnessIncorrect, nil),
	)
	if r := Score(snap, now); r.Passed {
		t.Fatalf("percentage %v below passing score 50 must fail", r.Percentage)
	}
}

func TestScoreRoundsToTwoDecimals(t *testing.T) {
	// 1/3 => 33.333... => 33.33
	snap := snapshotWith(0,
		answer(model.CorrectnessCorrect, nil),
		answer(model.CorrectnessIncorrect, nil),
		answer(model.CorrectnessIncorrect, nil),
	)
	if r := Score(snap, time.Now()); r.Percentage != 33.33 {
		t.Fatalf("percentage = %v, want 33.33", r.Percentage)
	}

	// 2/3 => 66.666... => 66.67
	snap = snapshotWith(0,
		answer(model.CorrectnessCorrect, nil),
		answer(model.CorrectnessCorrect, nil),
		answer(model.CorrectnessIncorrect, nil),
	)
	if r := Score(snap, time.Now()); r.Percentage != 66.67 {
		t.Fatalf("percentage = %v, want 66.67", r.Percentage)
	}
}

func TestScoreUnansweredCountsAgainst(t *testing.T) {
	snap := snapshotWith(70,
		answer(model.CorrectnessCorrect, nil),
		answer(model.CorrectnessUnanswered, nil),
	)

	result := Score(snap, time.Now())

	if result.Percentage != 50.0 {
		t.Fatalf("percentage = %v, want 50.0 (unanswered is not correct)", result.Percentage)
	}
}

func TestScoreEmptySnapshot(t *testing.T) {
	snap := snapshotWith(70)

	result := Score(snap, time.Now())

	if result.Percentage != 0 {
		t.Fatalf("percentage = %v, want 0", result.Percentage)
	}
	if result.Passed {
		t.Fatal("zero-question snapshot must not pass a 70 threshold")
	}
}

func TestScoreTopicBreakdown(t *testing.T) {
	networking := uuid.New()
	security := uuid.New()

	snap := snapshotWith(70,
		answer(model.CorrectnessCorrect, &networking),
		answer(model.CorrectnessIncorrect, &networking),
		answer(model.CorrectnessCorrect, &security),
		answer(model.CorrectnessCorrect, nil), // untopiced: in total, not in breakdown
	)

	result := Score(snap, time.Now())

	if result.Percentage != 75.0 {
		t.Fatalf("percentage = %v, want 75.0", result.Percentage)
	}
	if len(result.TopicBreakdown) != 2 {
		t.Fatalf("breakdown has %d topics, want 2", len(result.TopicBreakdown))
	}

	// First-seen order is preserved.
	net := result.TopicBreakdown[0]
	if net.TopicID != networking || net.Total != 2 || net.Correct != 1 || net.Percentage != 50.0 {
		t.Fatalf("networking breakdown = %+v", net)
	}
	sec := result.TopicBreakdown[1]
	if sec.TopicID != security || sec.Total != 1 || sec.Correct != 1 || sec.Percentage != 100.0 {
		t.Fatalf("security breakdown = %+v", sec)
	}
}
