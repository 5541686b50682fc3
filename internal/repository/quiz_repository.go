package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
)

// ErrSlugConflict is returned when a quiz insert hits the slug unique
// constraint. slugs are short, so collisions do happen; callers retry with
// a fresh one.
var ErrSlugConflict = errors.New("quizz slug already taken")

// QuizRepository handles quiz session data access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

// Create inserts a quiz and all its question rows in one transaction.
// The answer_ids snapshot of each question is persisted as-is.
func (r *QuizRepository) Create(ctx context.Context, quizz *model.Quizz) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if quizz.ID == uuid.Nil {
		quizz.ID = uuid.New()
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO quizzes (id, slug, user_id, ip, started_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		quizz.ID, quizz.Slug, quizz.UserID, quizz.IP, quizz.StartedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "quizzes_slug_key" {
			return ErrSlugConflict
		}
		return err
	}

	for i := range quizz.Questions {
		qq := &quizz.Questions[i]
		if qq.ID == uuid.Nil {
			qq.ID = uuid.New()
		}
		qq.QuizzID = quizz.ID
		_, err = tx.Exec(ctx,
			`INSERT INTO quizz_questions (id, quizz_id, question_id, order_num, answer_ids)
			 VALUES ($1, $2, $3, $4, $5)`,
			qq.ID, qq.QuizzID, qq.QuestionID, qq.Order, qq.AnswerIDs)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetBySlug retrieves a quiz with its question rows (ordered) and any graded
// answers. The underlying questions are not loaded here.
func (r *QuizRepository) GetBySlug(ctx context.Context, slug string) (*model.Quizz, error) {
	quizz := &model.Quizz{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, slug, user_id, ip, started_at, finished_at
		 FROM quizzes WHERE slug = $1`, slug,
	).Scan(&quizz.ID, &quizz.Slug, &quizz.UserID, &quizz.IP, &quizz.StartedAt, &quizz.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrQuizzNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, quizz_id, question_id, order_num, answer_ids,
		        started_at, finished_at, open_answer, success, points
		 FROM quizz_questions
		 WHERE quizz_id = $1
		 ORDER BY order_num`, quizz.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var qq model.QuizzQuestion
		if err := rows.Scan(&qq.ID, &qq.QuizzID, &qq.QuestionID, &qq.Order, &qq.AnswerIDs,
			&qq.StartedAt, &qq.FinishedAt, &qq.OpenAnswer, &qq.Success, &qq.Points); err != nil {
			return nil, err
		}
		quizz.Questions = append(quizz.Questions, qq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadGradedAnswers(ctx, quizz); err != nil {
		return nil, err
	}
	return quizz, nil
}

// UpdateStartedAt re-stamps the quiz start time.
func (r *QuizRepository) UpdateStartedAt(ctx context.Context, quizzID uuid.UUID, startedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET started_at = $2 WHERE id = $1`, quizzID, startedAt)
	return err
}

// MarkQuestionStarted stamps the question start time.
func (r *QuizRepository) MarkQuestionStarted(ctx context.Context, quizzQuestionID uuid.UUID, startedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizz_questions SET started_at = $2 WHERE id = $1`,
		quizzQuestionID, startedAt)
	return err
}

// SaveGradedQuestion persists a grading result and its per-answer rows, and
// optionally closes the quiz, atomically. The finished_at guard makes
// concurrent double-submits lose cleanly.
func (r *QuizRepository) SaveGradedQuestion(ctx context.Context, qq *model.QuizzQuestion, answers []model.QuizzAnswer, quizzFinishedAt *time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE quizz_questions
		 SET finished_at = $2, open_answer = $3, success = $4, points = $5
		 WHERE id = $1 AND finished_at IS NULL`,
		qq.ID, qq.FinishedAt, qq.OpenAnswer, qq.Success, qq.Points)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAlreadyGraded
	}

	for i := range answers {
		a := &answers[i]
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.QuizzQuestionID = qq.ID
		_, err = tx.Exec(ctx,
			`INSERT INTO quizz_answers (id, quizz_question_id, proposed_answer_id, is_checked, linked_to_id)
			 VALUES ($1, $2, $3, $4, $5)`,
			a.ID, a.QuizzQuestionID, a.ProposedAnswerID, a.IsChecked, a.LinkedToID)
		if err != nil {
			return err
		}
	}

	if quizzFinishedAt != nil {
		_, err = tx.Exec(ctx,
			`UPDATE quizzes SET finished_at = $2 WHERE id = $1 AND finished_at IS NULL`,
			qq.QuizzID, quizzFinishedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ScrubIPs clears the recorded IP of quizzes created before the cutoff.
// Returns the number of scrubbed rows.
func (r *QuizRepository) ScrubIPs(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET ip = NULL
		 WHERE ip IS NOT NULL AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// loadGradedAnswers fills the Answers slice of each graded question row.
func (r *QuizRepository) loadGradedAnswers(ctx context.Context, quizz *model.Quizz) error {
	if len(quizz.Questions) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(quizz.Questions))
	byID := make(map[uuid.UUID]*model.QuizzQuestion, len(quizz.Questions))
	for i := range quizz.Questions {
		qq := &quizz.Questions[i]
		ids[i] = qq.ID
		byID[qq.ID] = qq
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, quizz_question_id, proposed_answer_id, is_checked, linked_to_id
		 FROM quizz_answers
		 WHERE quizz_question_id = ANY($1)`, ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a model.QuizzAnswer
		if err := rows.Scan(&a.ID, &a.QuizzQuestionID, &a.ProposedAnswerID, &a.IsChecked, &a.LinkedToID); err != nil {
			return err
		}
		if qq, ok := byID[a.QuizzQuestionID]; ok {
			qq.Answers = append(qq.Answers, a)
		}
	}
	return rows.Err()
}
