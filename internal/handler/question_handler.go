package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/response"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/service"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/validator"
)

// QuestionHandler handles question authoring endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
	taxonomyService *service.TaxonomyService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService, taxonomyService *service.TaxonomyService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		taxonomyService: taxonomyService,
	}
}

// List godoc
// GET /api/v1/questions?page=1&per_page=20
func (h *QuestionHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	questions, total, err := h.questionService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"questions": questions,
		"total":     total,
		"page":      page,
		"per_page":  perPage,
	})
}

// Get godoc
// GET /api/v1/questions/:id
// Returns a question with its tag set reduced for display.
func (h *QuestionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.questionService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	reduced, err := h.taxonomyService.ReduceTags(c.Request.Context(), question.TagIDs)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"question":     question,
		"reduced_tags": reduced,
	})
}

// Delete godoc
// DELETE /api/v1/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, model.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// CreateOpen godoc
// POST /api/v1/questions/open
func (h *QuestionHandler) CreateOpen(c *gin.Context) {
	var req model.SaveOpenQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	question, err := h.questionService.CreateOpen(c.Request.Context(), req)
	h.saved(c, http.StatusCreated, question, err)
}

// UpdateOpen godoc
// PUT /api/v1/questions/open/:id
func (h *QuestionHandler) UpdateOpen(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	var req model.SaveOpenQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	question, err := h.questionService.UpdateOpen(c.Request.Context(), id, req)
	h.saved(c, http.StatusOK, question, err)
}

// CreateMCQ godoc
// POST /api/v1/questions/mcq
func (h *QuestionHandler) CreateMCQ(c *gin.Context) {
	var req model.SaveMCQQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	question, err := h.questionService.CreateMCQ(c.Request.Context(), req)
	h.saved(c, http.StatusCreated, question, err)
}

// UpdateMCQ godoc
// PUT /api/v1/questions/mcq/:id
func (h *QuestionHandler) UpdateMCQ(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	var req model.SaveMCQQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	question, err := h.questionService.UpdateMCQ(c.Request.Context(), id, req)
	h.saved(c, http.StatusOK, question, err)
}

// CreateLinked godoc
// POST /api/v1/questions/linked
func (h *QuestionHandler) CreateLinked(c *gin.Context) {
	var req model.SaveLinkedQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	question, err := h.questionService.CreateLinked(c.Request.Context(), req)
	h.saved(c, http.StatusCreated, question, err)
}

// UpdateLinked godoc
// PUT /api/v1/questions/linked/:id
func (h *QuestionHandler) UpdateLinked(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	var req model.SaveLinkedQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	question, err := h.questionService.UpdateLinked(c.Request.Context(), id, req)
	h.saved(c, http.StatusOK, question, err)
}

func (h *QuestionHandler) saved(c *gin.Context, status int, question *model.Question, err error) {
	if err != nil {
		switch {
		case errors.Is(err, model.ErrQuestionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrQuestionTypeMismatch):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, status, gin.H{"question": question})
}
