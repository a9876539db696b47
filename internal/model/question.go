package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Question represents a single exam question with its correct-option set.
// The correct-option set never leaves the server in candidate-facing payloads.
type Question struct {
	ID               uuid.UUID       `json:"id"`
	ExamID           uuid.UUID       `json:"exam_id"`
	TopicID          *uuid.UUID      `json:"topic_id,omitempty"`
	QuestionText     string          `json:"question_text"`
	Explanation      string          `json:"explanation,omitempty"`
	Options          json.RawMessage `json:"options"`
	CorrectOptionIDs []string        `json:"correct_option_ids"`
	OrderNum         int             `json:"order_num"`
}

// AddQuestionRequest is the payload for adding a question to an exam.
type AddQuestionRequest struct {
	TopicID          *uuid.UUID      `json:"topic_id" binding:"omitempty"`
	QuestionText     string          `json:"question_text" binding:"required,min=1,max=4000"`
	Explanation      string          `json:"explanation" binding:"omitempty,max=4000"`
	Options          json.RawMessage `json:"options" binding:"required"`
	CorrectOptionIDs []string        `json:"correct_option_ids" binding:"required,min=1,dive,min=1"`
	OrderNum         int             `json:"order_num" binding:"min=0"`
}
