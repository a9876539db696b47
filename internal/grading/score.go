package grading

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/certprep/certprep-backend/internal/model"
)

// Score grades a completion snapshot into a final exam result.
// Percentage is correct/total scaled to 100 and rounded to two decimals;
// pass/fail compares against the exam's passing score. Questions without a
// topic are counted in the totals but excluded from the topic breakdown.
func Score(snap *model.ExamCompletionSnapshot, now time.Time) *model.ExamResult {
	correct := 0
	perTopic := make(map[uuid.UUID]*model.TopicScore)
	var topicOrder []uuid.UUID

	for _, a := range snap.Answers {
		isCorrect := a.Correctness == model.CorrectnessCorrect
		if isCorrect {
			correct++
		}

		if a.TopicID == nil {
			continue
		}
		ts, ok := perTopic[*a.TopicID]
		if !ok {
			ts = &model.TopicScore{TopicID: *a.TopicID}
			perTopic[*a.TopicID] = ts
			topicOrder = append(topicOrder, *a.TopicID)
		}
		ts.Total++
		if isCorrect {
			ts.Correct++
		}
	}

	var breakdown []model.TopicScore
	for _, id := range topicOrder {
		ts := perTopic[id]
		ts.Percentage = percentage(ts.Correct, ts.Total)
		breakdown = append(breakdown, *ts)
	}

	pct := percentage(correct, snap.TotalQuestions)

	return &model.ExamResult{
		SessionID:      snap.SessionID,
		Percentage:     pct,
		Passed:         pct >= snap.PassingScore,
		CorrectCount:   correct,
		TotalQuestions: snap.TotalQuestions,
		TopicBreakdown: breakdown,
		GradedAt:       now,
	}
}

func percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}
