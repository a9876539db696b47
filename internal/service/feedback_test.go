package service

import (
	"testing"

	"github.com/google/uuid"

	"github.com/certprep/certprep-backend/internal/model"
)

func TestFeedbackPolicyReveals(t *testing.T) {
	var p FeedbackPolicy

	if !p.Reveals(model.SessionModePractice) {
		t.Fatal("PRACTICE must reveal correctness")
	}
	if p.Reveals(model.SessionModeTimed) {
		t.Fatal("TIMED must not reveal correctness")
	}
}

func TestFeedbackPolicyBuild(t *testing.T) {
	var p FeedbackPolicy

	answer := &model.SessionAnswer{
		QuestionID:       uuid.New(),
		CorrectOptionIDs: []string{"a", "c"},
		Correctness:      model.CorrectnessCorrect,
	}

	t.Run("practice reveals everything", func(t *testing.T) {
		fb := p.Build(model.SessionModePractice, answer, "the explanation")

		if !fb.Answered {
			t.Fatal("answered must always be true")
		}
		if fb.IsCorrect == nil || !*fb.IsCorrect {
			t.Fatalf("is_correct = %v, want true", fb.IsCorrect)
		}
		if len(fb.CorrectOptionIDs) != 2 {
			t.Fatalf("correct_option_ids = %v, want revealed", fb.CorrectOptionIDs)
		}
		if fb.Explanation != "the explanation" {
			t.Fatalf("explanation = %q, want revealed", fb.Explanation)
		}
	})

	t.Run("practice reveals incorrect too", func(t *testing.T) {
		wrong := &model.SessionAnswer{
			QuestionID:       answer.QuestionID,
			CorrectOptionIDs: []string{"a"},
			Correctness:      model.CorrectnessIncorrect,
		}
		fb := p.Build(model.SessionModePractice, wrong, "")

		if fb.IsCorrect == nil || *fb.IsCorrect {
			t.Fatalf("is_correct = %v, want false", fb.IsCorrect)
		}
	})

	t.Run("timed withholds everything", func(t *testing.T) {
		fb := p.Build(model.SessionModeTimed, answer, "the explanation")

		if !fb.Answered {
			t.Fatal("answered must always be true")
		}
		if fb.IsCorrect != nil {
			t.Fatalf("is_correct = %v, want withheld", fb.IsCorrect)
		}
		if fb.CorrectOptionIDs != nil {
			t.Fatalf("correct_option_ids = %v, want withheld", fb.CorrectOptionIDs)
		}
		if fb.Explanation != "" {
			t.Fatalf("explanation = %q, want withheld", fb.Explanation)
		}
	})
}
