package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/certprep/certprep-backend/internal/model"
)

func TestBuildSnapshot(t *testing.T) {
	topicID := uuid.New()
	q1 := model.Question{
		ID:           uuid.New(),
		TopicID:      &topicID,
		QuestionText: "Which port does HTTPS use?",
		Explanation:  "443 is the registered port for HTTPS.",
		OrderNum:     1,
	}
	q2 := model.Question{
		ID:           uuid.New(),
		QuestionText: "Which records map names to IPv4 addresses?",
		OrderNum:     2,
	}

	finishedAt := time.Now()
	session := &model.ExamSession{
		ID:               uuid.New(),
		ExamID:           uuid.New(),
		CertificationID:  uuid.New(),
		UserID:           42,
		Mode:             model.SessionModeTimed,
		Status:           model.SessionStatusCompleted,
		StartedAt:        finishedAt.Add(-30 * time.Minute),
		FinishedAt:       &finishedAt,
		TotalQuestions:   2,
		TimeSpentSeconds: 900,
	}
	exam := &model.Exam{ID: session.ExamID, PassingScore: 70}

	answers := []model.SessionAnswer{
		{
			SessionID:         session.ID,
			QuestionID:        q1.ID,
			CorrectOptionIDs:  []string{"b"},
			SelectedOptionIDs: []string{"b"},
			Correctness:       model.CorrectnessCorrect,
			TimeSpentSeconds:  500,
		},
		{
			SessionID:        session.ID,
			QuestionID:       q2.ID,
			CorrectOptionIDs: []string{"a"},
			Correctness:      model.CorrectnessUnanswered,
			Flagged:          true,
		},
	}

	snap := BuildSnapshot(session, exam, answers, []model.Question{q1, q2})

	if snap.SessionID != session.ID || snap.UserID != 42 {
		t.Fatalf("snapshot identity = %s/%d", snap.SessionID, snap.UserID)
	}
	if snap.PassingScore != 70 {
		t.Fatalf("passing_score = %v, want 70 (from exam)", snap.PassingScore)
	}
	if snap.TotalQuestions != 2 || snap.TimeSpentSeconds != 900 {
		t.Fatalf("aggregates = %d/%d", snap.TotalQuestions, snap.TimeSpentSeconds)
	}
	if !snap.FinishedAt.Equal(finishedAt) {
		t.Fatalf("finished_at = %v, want %v", snap.FinishedAt, finishedAt)
	}
	if len(snap.Answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(snap.Answers))
	}

	first := snap.Answers[0]
	if first.TopicID == nil || *first.TopicID != topicID {
		t.Fatalf("topic_id not resolved from catalog: %v", first.TopicID)
	}
	if first.QuestionText != q1.QuestionText || first.Explanation != q1.Explanation {
		t.Fatalf("question text/explanation not resolved: %+v", first)
	}
	if first.Correctness != model.CorrectnessCorrect {
		t.Fatalf("correctness = %s", first.Correctness)
	}

	second := snap.Answers[1]
	if second.TopicID != nil {
		t.Fatalf("untopiced question got topic %v", second.TopicID)
	}
	if second.Correctness != model.CorrectnessUnanswered || !second.Flagged {
		t.Fatalf("unanswered answer not carried verbatim: %+v", second)
	}
}
