package service

import (
	"github.com/certprep/certprep-backend/internal/model"
)

// FeedbackPolicy decides what a submission response reveals. It is a pure
// decision table over the session mode:
//
//	mode     | is_correct | correct_option_ids | explanation
//	PRACTICE | yes        | yes                | yes
//	TIMED    | no         | no                 | no
type FeedbackPolicy struct{}

// Reveals reports whether the mode discloses correctness details
// immediately after each submission.
func (FeedbackPolicy) Reveals(mode model.SessionMode) bool {
	return mode == model.SessionModePractice
}

// Build assembles the submission response for the given mode. Answered is
// always true; everything else is withheld outside PRACTICE mode.
func (p FeedbackPolicy) Build(mode model.SessionMode, a *model.SessionAnswer, explanation string) model.AnswerFeedback {
	fb := model.AnswerFeedback{
		QuestionID: a.QuestionID,
		Answered:   true,
	}

	if !p.Reveals(mode) {
		return fb
	}

	isCorrect := a.Correctness == model.CorrectnessCorrect
	fb.IsCorrect = &isCorrect
	fb.CorrectOptionIDs = a.CorrectOptionIDs
	fb.Explanation = explanation
	return fb
}
