package grading

import (
	"errors"
	"testing"
	"time"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
	"github.com/google/uuid"
)

var now = time.Date(2024, 5, 12, 15, 30, 0, 0, time.UTC)

func strptr(s string) *string { return &s }

func openQuestion(difficulty int, valid string) (*model.Question, *model.QuizzQuestion) {
	q := &model.Question{
		ID:              uuid.New(),
		Type:            model.QuestionTypeOpen,
		Difficulty:      difficulty,
		Text:            "Capital of France?",
		OpenValidAnswer: strptr(valid),
	}
	qq := &model.QuizzQuestion{ID: uuid.New(), QuestionID: q.ID, Order: 0}
	return q, qq
}

func mcqQuestion(difficulty int, correctness ...bool) (*model.Question, *model.QuizzQuestion) {
	q := &model.Question{
		ID:         uuid.New(),
		Type:       model.QuestionTypeMCQ,
		Difficulty: difficulty,
		Text:       "Which of these are red grapes?",
	}
	qq := &model.QuizzQuestion{ID: uuid.New(), QuestionID: q.ID, Order: 0}
	for _, correct := range correctness {
		a := model.Answer{ID: uuid.New(), Text: "choice", IsCorrect: correct}
		q.Answers = append(q.Answers, a)
		qq.AnswerIDs = append(qq.AnswerIDs, a.ID)
	}
	return q, qq
}

func linkedQuestion(difficulty, pairs int) (*model.Question, *model.QuizzQuestion) {
	q := &model.Question{
		ID:         uuid.New(),
		Type:       model.QuestionTypeLinked,
		Difficulty: difficulty,
		Text:       "Match each wine to its region",
	}
	qq := &model.QuizzQuestion{ID: uuid.New(), QuestionID: q.ID, Order: 0}
	for i := 0; i < pairs; i++ {
		right := &model.Answer{ID: uuid.New(), Text: "region"}
		left := model.Answer{ID: uuid.New(), Text: "wine", LinkedTo: right}
		q.Answers = append(q.Answers, left)
		qq.AnswerIDs = append(qq.AnswerIDs, left.ID)
	}
	return q, qq
}

func TestGradeOpen(t *testing.T) {
	cases := []struct {
		name        string
		submitted   string
		wantSuccess model.QuestionSuccess
		wantPoints  float64
	}{
		{"exact ignoring case", "paris", model.SuccessPerfect, 3},
		{"one letter off", "Pariis", model.SuccessAlmost, 1.5},
		{"way off", "xyz", model.SuccessFailed, 0},
		{"empty answer", "", model.SuccessFailed, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, qq := openQuestion(3, "Paris")
			rows, err := Grade(q, qq, model.AnswerSubmission{OpenAnswer: tc.submitted}, now)
			if err != nil {
				t.Fatalf("Grade failed: %v", err)
			}
			if len(rows) != 0 {
				t.Errorf("open grading should create no answer rows, got %d", len(rows))
			}
			assertGraded(t, qq, tc.wantSuccess, tc.wantPoints)
			if qq.OpenAnswer == nil || *qq.OpenAnswer != tc.submitted {
				t.Errorf("submitted answer not recorded: %v", qq.OpenAnswer)
			}
		})
	}
}

func TestGradeMCQ(t *testing.T) {
	t.Run("exactly the correct boxes is perfect", func(t *testing.T) {
		q, qq := mcqQuestion(2, true, true, false, false)
		sub := model.AnswerSubmission{CheckedAnswerIDs: []uuid.UUID{q.Answers[0].ID, q.Answers[1].ID}}

		rows, err := Grade(q, qq, sub, now)
		if err != nil {
			t.Fatalf("Grade failed: %v", err)
		}
		assertGraded(t, qq, model.SuccessPerfect, 2)
		if len(rows) != 4 {
			t.Fatalf("expected one row per proposed answer, got %d", len(rows))
		}
		for i, row := range rows {
			wantChecked := i < 2
			if row.IsChecked == nil || *row.IsChecked != wantChecked {
				t.Errorf("row %d checked state = %v, want %v", i, row.IsChecked, wantChecked)
			}
			if row.LinkedToID != nil {
				t.Errorf("MCQ row %d has a link target", i)
			}
		}
	})

	t.Run("one correct box missed is almost", func(t *testing.T) {
		// 4 answers, 2 correct; only one ticked. Match count is 3 (one
		// checked-correct plus two untouched-incorrect) = total − 1.
		q, qq := mcqQuestion(2, true, true, false, false)
		sub := model.AnswerSubmission{CheckedAnswerIDs: []uuid.UUID{q.Answers[0].ID}}

		if _, err := Grade(q, qq, sub, now); err != nil {
			t.Fatalf("Grade failed: %v", err)
		}
		assertGraded(t, qq, model.SuccessAlmost, 2*3.0/4.0)
	})

	t.Run("ticking everything is penalized", func(t *testing.T) {
		q, qq := mcqQuestion(3, true, false, false, false)
		sub := model.AnswerSubmission{CheckedAnswerIDs: []uuid.UUID{
			q.Answers[0].ID, q.Answers[1].ID, q.Answers[2].ID, q.Answers[3].ID,
		}}

		if _, err := Grade(q, qq, sub, now); err != nil {
			t.Fatalf("Grade failed: %v", err)
		}
		// correct=1, wrong checked=3 → raw score negative, floored at 0.
		assertGraded(t, qq, model.SuccessFailed, 0)
	})

	t.Run("open choice adds points but never changes the tier", func(t *testing.T) {
		q, qq := mcqQuestion(3, true, false, false)
		q.HasOpenChoice = true
		q.OpenValidAnswer = strptr("Chablis")

		// All boxes right but the open slot wrong: perfect tier, partial points.
		sub := model.AnswerSubmission{
			CheckedAnswerIDs: []uuid.UUID{q.Answers[0].ID},
			OtherAnswer:      strptr("nothing close"),
		}
		if _, err := Grade(q, qq, sub, now); err != nil {
			t.Fatalf("Grade failed: %v", err)
		}
		assertGraded(t, qq, model.SuccessPerfect, 3*3.0/4.0)
		if qq.OpenAnswer == nil || *qq.OpenAnswer != "nothing close" {
			t.Errorf("other answer not recorded: %v", qq.OpenAnswer)
		}
	})

	t.Run("open choice exact match earns the full unit", func(t *testing.T) {
		q, qq := mcqQuestion(2, true, false, false)
		q.HasOpenChoice = true
		q.OpenValidAnswer = strptr("Chablis")

		sub := model.AnswerSubmission{
			CheckedAnswerIDs: []uuid.UUID{q.Answers[0].ID},
			OtherAnswer:      strptr("chablis !"),
		}
		if _, err := Grade(q, qq, sub, now); err != nil {
			t.Fatalf("Grade failed: %v", err)
		}
		assertGraded(t, qq, model.SuccessPerfect, 2)
	})

	t.Run("blank open slot with no valid answer is exact", func(t *testing.T) {
		q, qq := mcqQuestion(1, true)
		q.HasOpenChoice = true // OpenValidAnswer stays nil: must be left blank

		sub := model.AnswerSubmission{CheckedAnswerIDs: []uuid.UUID{q.Answers[0].ID}}
		if _, err := Grade(q, qq, sub, now); err != nil {
			t.Fatalf("Grade failed: %v", err)
		}
		assertGraded(t, qq, model.SuccessPerfect, 1)
	})

	t.Run("unknown answer id is rejected without mutation", func(t *testing.T) {
		q, qq := mcqQuestion(2, true, false)
		sub := model.AnswerSubmission{CheckedAnswerIDs: []uuid.UUID{uuid.New()}}

		_, err := Grade(q, qq, sub, now)
		if !errors.Is(err, model.ErrInvalidSubmission) {
			t.Fatalf("expected ErrInvalidSubmission, got %v", err)
		}
		if qq.IsFinished() || qq.Points != nil || qq.Success != nil {
			t.Errorf("question mutated on invalid submission: %+v", qq)
		}
	})

	t.Run("answers outside the snapshot are not gradable", func(t *testing.T) {
		q, qq := mcqQuestion(2, true, false)
		// An answer added to the question after generation.
		late := model.Answer{ID: uuid.New(), Text: "late addition", IsCorrect: true}
		q.Answers = append(q.Answers, late)

		sub := model.AnswerSubmission{CheckedAnswerIDs: []uuid.UUID{late.ID}}
		if _, err := Grade(q, qq, sub, now); !errors.Is(err, model.ErrInvalidSubmission) {
			t.Fatalf("expected ErrInvalidSubmission for post-generation answer, got %v", err)
		}

		// Grading against the snapshot only counts the original two answers.
		sub = model.AnswerSubmission{CheckedAnswerIDs: []uuid.UUID{q.Answers[0].ID}}
		rows, err := Grade(q, qq, sub, now)
		if err != nil {
			t.Fatalf("Grade failed: %v", err)
		}
		if len(rows) != 2 {
			t.Errorf("expected 2 snapshot rows, got %d", len(rows))
		}
		assertGraded(t, qq, model.SuccessPerfect, 2)
	})
}

func TestGradeLinked(t *testing.T) {
	links := func(q *model.Question, correctCount int) map[uuid.UUID]uuid.UUID {
		// Link the first correctCount pairs correctly, then rotate the rest
		// among themselves so they are all wrong.
		m := make(map[uuid.UUID]uuid.UUID)
		var wrong []model.Answer
		for i, a := range q.Answers {
			if i < correctCount {
				m[a.ID] = a.LinkedTo.ID
			} else {
				wrong = append(wrong, a)
			}
		}
		for i, a := range wrong {
			if len(wrong) > 1 {
				m[a.ID] = wrong[(i+1)%len(wrong)].LinkedTo.ID
			} else {
				// Single leftover: point it at another pair's right side.
				m[a.ID] = q.Answers[0].LinkedTo.ID
			}
		}
		return m
	}

	t.Run("two of three pairs is almost", func(t *testing.T) {
		q, qq := linkedQuestion(3, 3)
		sub := model.AnswerSubmission{Links: links(q, 2)}

		rows, err := Grade(q, qq, sub, now)
		if err != nil {
			t.Fatalf("Grade failed: %v", err)
		}
		assertGraded(t, qq, model.SuccessAlmost, 3*2.0/3.0)
		if len(rows) != 3 {
			t.Fatalf("expected one row per pair, got %d", len(rows))
		}
		for _, row := range rows {
			if row.LinkedToID == nil || row.IsChecked != nil {
				t.Errorf("linked row should carry a link target only: %+v", row)
			}
		}
	})

	t.Run("all pairs correct is perfect", func(t *testing.T) {
		q, qq := linkedQuestion(2, 4)
		if _, err := Grade(q, qq, model.AnswerSubmission{Links: links(q, 4)}, now); err != nil {
			t.Fatalf("Grade failed: %v", err)
		}
		assertGraded(t, qq, model.SuccessPerfect, 2)
	})

	t.Run("one of three pairs is failed", func(t *testing.T) {
		q, qq := linkedQuestion(3, 3)
		if _, err := Grade(q, qq, model.AnswerSubmission{Links: links(q, 1)}, now); err != nil {
			t.Fatalf("Grade failed: %v", err)
		}
		assertGraded(t, qq, model.SuccessFailed, 3*1.0/3.0)
	})

	t.Run("one of two pairs never reaches almost", func(t *testing.T) {
		// total−1 == 1 but the tier requires more than one correct link.
		q, qq := linkedQuestion(1, 2)
		if _, err := Grade(q, qq, model.AnswerSubmission{Links: links(q, 1)}, now); err != nil {
			t.Fatalf("Grade failed: %v", err)
		}
		assertGraded(t, qq, model.SuccessFailed, 0.5)
	})

	t.Run("missing link is rejected", func(t *testing.T) {
		q, qq := linkedQuestion(2, 3)
		m := links(q, 3)
		delete(m, q.Answers[0].ID)

		if _, err := Grade(q, qq, model.AnswerSubmission{Links: m}, now); !errors.Is(err, model.ErrInvalidSubmission) {
			t.Fatalf("expected ErrInvalidSubmission, got %v", err)
		}
		if qq.IsFinished() {
			t.Error("question mutated on invalid submission")
		}
	})

	t.Run("link target outside the question is rejected", func(t *testing.T) {
		q, qq := linkedQuestion(2, 2)
		m := links(q, 2)
		m[q.Answers[0].ID] = uuid.New()

		if _, err := Grade(q, qq, model.AnswerSubmission{Links: m}, now); !errors.Is(err, model.ErrInvalidSubmission) {
			t.Fatalf("expected ErrInvalidSubmission, got %v", err)
		}
	})
}

func TestGradeIsIdempotentGuarded(t *testing.T) {
	q, qq := openQuestion(2, "Paris")
	if _, err := Grade(q, qq, model.AnswerSubmission{OpenAnswer: "Paris"}, now); err != nil {
		t.Fatalf("first grading failed: %v", err)
	}

	pointsBefore := *qq.Points
	successBefore := *qq.Success

	_, err := Grade(q, qq, model.AnswerSubmission{OpenAnswer: "something else"}, now.Add(time.Minute))
	if !errors.Is(err, model.ErrAlreadyGraded) {
		t.Fatalf("expected ErrAlreadyGraded, got %v", err)
	}
	if *qq.Points != pointsBefore || *qq.Success != successBefore {
		t.Error("repeat grading changed the stored result")
	}
	if !qq.FinishedAt.Equal(now) {
		t.Error("repeat grading touched finished_at")
	}
}

func assertGraded(t *testing.T, qq *model.QuizzQuestion, wantSuccess model.QuestionSuccess, wantPoints float64) {
	t.Helper()
	if qq.FinishedAt == nil || !qq.FinishedAt.Equal(now) {
		t.Fatalf("finished_at not set to grading time: %v", qq.FinishedAt)
	}
	if qq.Success == nil || *qq.Success != wantSuccess {
		t.Errorf("success = %v, want %v", qq.Success, wantSuccess)
	}
	const eps = 1e-9
	if qq.Points == nil || *qq.Points < wantPoints-eps || *qq.Points > wantPoints+eps {
		t.Errorf("points = %v, want %v", qq.Points, wantPoints)
	}
}
