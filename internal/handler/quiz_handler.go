package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/middleware"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/response"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/service"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/validator"
)

// QuizHandler handles quiz generation, progress and answering.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// Create godoc
// POST /api/v1/quizzes
// Generates a new quiz from the requested filters. Works for anonymous
// players; an authenticated player gets the quiz attached to their account.
func (h *QuizHandler) Create(c *gin.Context) {
	var req model.CreateQuizzRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var userID *int
	if viewer := middleware.GetViewer(c); viewer != nil {
		userID = &viewer.UserID
	}

	quizz, err := h.quizService.Generate(c.Request.Context(), req, userID, c.ClientIP())
	if err != nil {
		if errors.Is(err, model.ErrNoMatchingQuestions) {
			response.Fail(c, http.StatusNotFound, response.ErrNoMatchingQuestions)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	payload := quizzView(quizz)
	// The pool may be smaller than what the player asked for; the quiz is
	// still created, just shorter.
	if quizz.QuestionsTotal() < req.QuestionsCount {
		payload["requested_count"] = req.QuestionsCount
		payload["fewer_than_requested"] = true
	}
	response.Success(c, http.StatusCreated, payload)
}

// Get godoc
// GET /api/v1/quizzes/:slug
// Returns a quiz: its current question while running, the full corrected
// results once finished.
func (h *QuizHandler) Get(c *gin.Context) {
	quizz, err := h.quizService.Get(c.Request.Context(), c.Param("slug"), middleware.GetViewer(c))
	if err != nil {
		failQuizzError(c, err)
		return
	}

	response.Success(c, http.StatusOK, quizzView(quizz))
}

// Answer godoc
// POST /api/v1/quizzes/:slug/answer
// Grades the submitted answer against the quiz's current question.
func (h *QuizHandler) Answer(c *gin.Context) {
	var sub model.AnswerSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			validator.TranslateErrors(err))
		return
	}

	graded, quizz, err := h.quizService.RegisterAnswer(
		c.Request.Context(), c.Param("slug"), middleware.GetViewer(c), sub)
	if err != nil {
		failQuizzError(c, err)
		return
	}

	payload := gin.H{
		"result": resultView(graded),
		"quizz":  quizzView(quizz),
	}
	response.Success(c, http.StatusOK, payload)
}

func failQuizzError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrQuizzNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, model.ErrQuizzFinished):
		response.Fail(c, http.StatusConflict, response.ErrQuizzFinished)
	case errors.Is(err, model.ErrAlreadyGraded):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyGraded)
	case errors.Is(err, model.ErrInvalidSubmission):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidSubmission)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Presentation
// ────────────────────────────────────────────────────────────────────────────

// quizzView serializes a quiz for the player. While the quiz is running only
// the current question is exposed, with its solutions stripped. Once
// finished, every question comes back fully corrected.
func quizzView(quizz *model.Quizz) gin.H {
	view := gin.H{
		"slug":               quizz.Slug,
		"started_at":         quizz.StartedAt,
		"finished_at":        quizz.FinishedAt,
		"questions_total":    quizz.QuestionsTotal(),
		"questions_finished": quizz.QuestionsFinished(),
		"questions_left":     quizz.QuestionsLeft(),
		"score":              quizz.Points(),
	}

	if quizz.IsRunning() {
		if current := quizz.CurrentQuestion(); current != nil {
			view["current_question"] = playableQuestionView(current)
		}
		return view
	}

	results := make([]gin.H, 0, len(quizz.Questions))
	for i := range quizz.Questions {
		results = append(results, resultView(&quizz.Questions[i]))
	}
	view["results"] = results
	return view
}

// playableQuestionView shows a question as the player sees it: the proposed
// answers from the quiz's snapshot, without any correctness information.
func playableQuestionView(qq *model.QuizzQuestion) gin.H {
	q := qq.Question
	view := gin.H{
		"order":      qq.Order,
		"started_at": qq.StartedAt,
	}
	if q == nil {
		return view
	}

	view["type"] = q.Type
	view["text"] = q.Text
	view["difficulty"] = q.Difficulty

	switch q.Type {
	case model.QuestionTypeMCQ:
		answers := make([]gin.H, 0, len(qq.AnswerIDs))
		for _, a := range snapshotAnswers(qq) {
			answers = append(answers, gin.H{"id": a.ID, "text": a.Text})
		}
		view["answers"] = answers
		view["has_open_choice"] = q.HasOpenChoice
	case model.QuestionTypeLinked:
		var left, right []gin.H
		for _, a := range snapshotAnswers(qq) {
			left = append(left, gin.H{"id": a.ID, "text": a.Text})
			if a.LinkedTo != nil {
				right = append(right, gin.H{"id": a.LinkedTo.ID, "text": a.LinkedTo.Text})
			}
		}
		view["answers"] = left
		view["link_targets"] = right
	}
	return view
}

// resultView serializes a graded question with its correction.
func resultView(qq *model.QuizzQuestion) gin.H {
	view := gin.H{
		"order":       qq.Order,
		"success":     qq.Success,
		"points":      qq.Points,
		"finished_at": qq.FinishedAt,
	}

	q := qq.Question
	if q == nil {
		return view
	}

	view["type"] = q.Type
	view["text"] = q.Text
	view["difficulty"] = q.Difficulty
	view["comment"] = q.AnswerComment

	switch q.Type {
	case model.QuestionTypeOpen:
		view["answer"] = qq.OpenAnswer
		view["valid_answer"] = q.OpenValidAnswer
	case model.QuestionTypeMCQ:
		answers := make([]gin.H, 0, len(qq.Answers))
		checkedByID := make(map[uuid.UUID]bool, len(qq.Answers))
		for _, qa := range qq.Answers {
			if qa.IsChecked != nil {
				checkedByID[qa.ProposedAnswerID] = *qa.IsChecked
			}
		}
		for _, a := range snapshotAnswers(qq) {
			answers = append(answers, gin.H{
				"id":         a.ID,
				"text":       a.Text,
				"is_correct": a.IsCorrect,
				"checked":    checkedByID[a.ID],
			})
		}
		view["answers"] = answers
		if q.HasOpenChoice {
			view["other_answer"] = qq.OpenAnswer
			view["other_valid_answer"] = q.OpenValidAnswer
		}
	case model.QuestionTypeLinked:
		linkedByID := make(map[uuid.UUID]*uuid.UUID, len(qq.Answers))
		for i := range qq.Answers {
			linkedByID[qq.Answers[i].ProposedAnswerID] = qq.Answers[i].LinkedToID
		}
		pairs := make([]gin.H, 0, len(qq.AnswerIDs))
		for _, a := range snapshotAnswers(qq) {
			if a.LinkedTo == nil {
				continue
			}
			pair := gin.H{
				"id":         a.ID,
				"text":       a.Text,
				"correct_to": gin.H{"id": a.LinkedTo.ID, "text": a.LinkedTo.Text},
			}
			if to := linkedByID[a.ID]; to != nil {
				pair["linked_to"] = *to
			}
			pairs = append(pairs, pair)
		}
		view["pairs"] = pairs
	}
	return view
}

// snapshotAnswers resolves the question answers a quiz question snapshotted
// at generation time, falling back to the currently selectable ones for
// rows predating the snapshot column.
func snapshotAnswers(qq *model.QuizzQuestion) []model.Answer {
	q := qq.Question
	if q == nil {
		return nil
	}
	if len(qq.AnswerIDs) == 0 {
		return q.SelectableAnswers()
	}
	inSnapshot := make(map[uuid.UUID]bool, len(qq.AnswerIDs))
	for _, id := range qq.AnswerIDs {
		inSnapshot[id] = true
	}
	answers := make([]model.Answer, 0, len(qq.AnswerIDs))
	for _, a := range q.Answers {
		if inSnapshot[a.ID] {
			answers = append(answers, a)
		}
	}
	return answers
}
