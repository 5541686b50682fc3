package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
)

// QuestionRepository handles question and answer data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `q.id, q.type, q.locale_id, q.source_id, q.difficulty, q.text,
	 q.has_open_choice, q.open_valid_answer, q.answer_comment`

// GetByID retrieves a question with all its answers (soft-deleted included,
// quiz history needs them) and tag IDs.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions q WHERE q.id = $1`, id,
	).Scan(&q.ID, &q.Type, &q.LocaleID, &q.SourceID, &q.Difficulty, &q.Text,
		&q.HasOpenChoice, &q.OpenValidAnswer, &q.AnswerComment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrQuestionNotFound
		}
		return nil, err
	}

	if err := r.loadAnswers(ctx, []*model.Question{q}); err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, []*model.Question{q}); err != nil {
		return nil, err
	}
	return q, nil
}

// ListByIDs retrieves the given questions with their answers, keyed by ID.
// Missing IDs are silently absent from the result.
func (r *QuestionRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Question, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*model.Question{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions q WHERE q.id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*model.Question
	for rows.Next() {
		q := &model.Question{}
		if err := rows.Scan(&q.ID, &q.Type, &q.LocaleID, &q.SourceID, &q.Difficulty, &q.Text,
			&q.HasOpenChoice, &q.OpenValidAnswer, &q.AnswerComment); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadAnswers(ctx, questions); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return byID, nil
}

// ListCandidates retrieves the questions matching the quiz generation
// filters, with their answers loaded. Tag IDs are expected to be already
// expanded through the tag hierarchy.
func (r *QuestionRepository) ListCandidates(ctx context.Context, localeID, contestID *uuid.UUID, tagIDs []uuid.UUID) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions q WHERE 1=1`
	var args []any

	if localeID != nil {
		args = append(args, *localeID)
		query += fmt.Sprintf(" AND q.locale_id = $%d", len(args))
	}
	if contestID != nil {
		args = append(args, *contestID)
		query += fmt.Sprintf(" AND q.source_id = $%d", len(args))
	}
	if len(tagIDs) > 0 {
		args = append(args, tagIDs)
		query += fmt.Sprintf(
			" AND EXISTS (SELECT 1 FROM question_tags qt WHERE qt.question_id = q.id AND qt.tag_id = ANY($%d))",
			len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Type, &q.LocaleID, &q.SourceID, &q.Difficulty, &q.Text,
			&q.HasOpenChoice, &q.OpenValidAnswer, &q.AnswerComment); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ptrs := make([]*model.Question, len(questions))
	for i := range questions {
		ptrs[i] = &questions[i]
	}
	if err := r.loadAnswers(ctx, ptrs); err != nil {
		return nil, err
	}
	return questions, nil
}

// List retrieves questions for management, newest first, with pagination.
func (r *QuestionRepository) List(ctx context.Context, page, perPage int) ([]model.Question, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions q
		 ORDER BY q.created_at DESC
		 LIMIT $1 OFFSET $2`, perPage, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Type, &q.LocaleID, &q.SourceID, &q.Difficulty, &q.Text,
			&q.HasOpenChoice, &q.OpenValidAnswer, &q.AnswerComment); err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	ptrs := make([]*model.Question, len(questions))
	for i := range questions {
		ptrs[i] = &questions[i]
	}
	if err := r.loadAnswers(ctx, ptrs); err != nil {
		return nil, 0, err
	}
	if err := r.loadTags(ctx, ptrs); err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// Create inserts a question with its answers and tag links.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO questions (id, type, locale_id, source_id, difficulty, text,
		                        has_open_choice, open_valid_answer, answer_comment)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		q.ID, q.Type, q.LocaleID, q.SourceID, q.Difficulty, q.Text,
		q.HasOpenChoice, q.OpenValidAnswer, q.AnswerComment)
	if err != nil {
		return err
	}

	if err := insertAnswers(ctx, tx, q); err != nil {
		return err
	}
	if err := replaceTags(ctx, tx, q); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update rewrites the question row and its tag links. When replaceAnswers is
// set, the current answers are soft-deleted and q.Answers inserted as fresh
// rows, so quizzes already referencing the old answers keep resolving them.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question, replaceAnswers bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE questions
		 SET type = $2, locale_id = $3, source_id = $4, difficulty = $5, text = $6,
		     has_open_choice = $7, open_valid_answer = $8, answer_comment = $9,
		     updated_at = now()
		 WHERE id = $1`,
		q.ID, q.Type, q.LocaleID, q.SourceID, q.Difficulty, q.Text,
		q.HasOpenChoice, q.OpenValidAnswer, q.AnswerComment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrQuestionNotFound
	}

	if replaceAnswers {
		_, err = tx.Exec(ctx,
			`UPDATE answers SET is_deleted = TRUE
			 WHERE id IN (SELECT answer_id FROM question_answers WHERE question_id = $1)
			    OR id IN (SELECT a.linked_answer_id FROM question_answers qa
			              JOIN answers a ON a.id = qa.answer_id
			              WHERE qa.question_id = $1 AND a.linked_answer_id IS NOT NULL)`,
			q.ID)
		if err != nil {
			return err
		}
		if err := insertAnswers(ctx, tx, q); err != nil {
			return err
		}
	}

	if err := replaceTags(ctx, tx, q); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes a question. Quiz history rows referencing it are removed by
// the schema's cascade.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrQuestionNotFound
	}
	return nil
}

// insertAnswers inserts q.Answers (and their linked counterparts) and links
// them to the question. Answer IDs are minted here when absent.
func insertAnswers(ctx context.Context, tx pgx.Tx, q *model.Question) error {
	for i := range q.Answers {
		a := &q.Answers[i]

		var linkedID *uuid.UUID
		if a.LinkedTo != nil {
			if a.LinkedTo.ID == uuid.Nil {
				a.LinkedTo.ID = uuid.New()
			}
			linkedID = &a.LinkedTo.ID
			_, err := tx.Exec(ctx,
				`INSERT INTO answers (id, text, is_correct) VALUES ($1, $2, $3)`,
				a.LinkedTo.ID, a.LinkedTo.Text, a.LinkedTo.IsCorrect)
			if err != nil {
				return err
			}
		}

		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO answers (id, text, is_correct, linked_answer_id)
			 VALUES ($1, $2, $3, $4)`,
			a.ID, a.Text, a.IsCorrect, linkedID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO question_answers (question_id, answer_id, position)
			 VALUES ($1, $2, $3)`,
			q.ID, a.ID, i)
		if err != nil {
			return err
		}
	}
	return nil
}

// replaceTags rewrites the question's tag links to match q.TagIDs.
func replaceTags(ctx context.Context, tx pgx.Tx, q *model.Question) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM question_tags WHERE question_id = $1`, q.ID); err != nil {
		return err
	}
	for _, tagID := range q.TagIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO question_tags (question_id, tag_id) VALUES ($1, $2)`,
			q.ID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// loadAnswers fills the Answers slice of each question, soft-deleted rows
// included, with linked right-side answers resolved.
func (r *QuestionRepository) loadAnswers(ctx context.Context, questions []*model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(questions))
	byID := make(map[uuid.UUID]*model.Question, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
		byID[q.ID] = q
	}

	rows, err := r.pool.Query(ctx,
		`SELECT qa.question_id,
		        a.id, a.text, a.is_correct, a.is_deleted,
		        la.id, la.text, la.is_correct
		 FROM question_answers qa
		 JOIN answers a ON a.id = qa.answer_id
		 LEFT JOIN answers la ON la.id = a.linked_answer_id
		 WHERE qa.question_id = ANY($1)
		 ORDER BY qa.question_id, qa.position`, ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var questionID uuid.UUID
		var a model.Answer
		var laID *uuid.UUID
		var laText *string
		var laCorrect *bool
		if err := rows.Scan(&questionID, &a.ID, &a.Text, &a.IsCorrect, &a.IsDeleted,
			&laID, &laText, &laCorrect); err != nil {
			return err
		}
		if laID != nil {
			a.LinkedTo = &model.Answer{ID: *laID, Text: *laText, IsCorrect: *laCorrect}
		}
		if q, ok := byID[questionID]; ok {
			q.Answers = append(q.Answers, a)
		}
	}
	return rows.Err()
}

// loadTags fills the TagIDs slice of each question.
func (r *QuestionRepository) loadTags(ctx context.Context, questions []*model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(questions))
	byID := make(map[uuid.UUID]*model.Question, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
		byID[q.ID] = q
	}

	rows, err := r.pool.Query(ctx,
		`SELECT question_id, tag_id FROM question_tags WHERE question_id = ANY($1)`, ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var questionID, tagID uuid.UUID
		if err := rows.Scan(&questionID, &tagID); err != nil {
			return err
		}
		if q, ok := byID[questionID]; ok {
			q.TagIDs = append(q.TagIDs, tagID)
		}
	}
	return rows.Err()
}
