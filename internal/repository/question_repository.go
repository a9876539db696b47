package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certprep/certprep-backend/internal/model"
)

// QuestionRepository handles question catalog data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// BulkInsert adds questions to an exam in a single batch.
func (r *QuestionRepository) BulkInsert(ctx context.Context, examID uuid.UUID, questions []model.AddQuestionRequest) error {
	batch := &pgx.Batch{}
	for _, q := range questions {
		batch.Queue(
			`INSERT INTO questions (exam_id, topic_id, question_text, explanation, options, correct_option_ids, order_num)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			examID, q.TopicID, q.QuestionText, q.Explanation, q.Options, q.CorrectOptionIDs, q.OrderNum,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range questions {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, topic_id, question_text, explanation, options, correct_option_ids, order_num
		 FROM questions
		 WHERE id = $1`, id,
	).Scan(&q.ID, &q.ExamID, &q.TopicID, &q.QuestionText, &q.Explanation,
		&q.Options, &q.CorrectOptionIDs, &q.OrderNum)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByExam retrieves an exam's questions in order, correct-option sets
// included. Callers strip the sets before anything reaches a candidate.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, topic_id, question_text, explanation, options, correct_option_ids, order_num
		 FROM questions
		 WHERE exam_id = $1
		 ORDER BY order_num ASC`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ExamID, &q.TopicID, &q.QuestionText, &q.Explanation,
			&q.Options, &q.CorrectOptionIDs, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
