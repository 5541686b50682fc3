package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/repository"
)

// ErrQuestionTypeMismatch is returned when an update payload targets a
// question of another type. Questions never change type after creation.
var ErrQuestionTypeMismatch = errors.New("question type mismatch")

// QuestionService handles question authoring business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// Get retrieves a question by ID.
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// List retrieves questions for management, paginated.
func (s *QuestionService) List(ctx context.Context, page, perPage int) ([]model.Question, int64, error) {
	return s.questionRepo.List(ctx, page, perPage)
}

// Delete removes a question and, through the schema cascade, the quiz
// history rows that referenced it.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("question_id", id.String()).Msg("question deleted")
	return nil
}

// CreateOpen creates a free-text question.
func (s *QuestionService) CreateOpen(ctx context.Context, req model.SaveOpenQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		Type:            model.QuestionTypeOpen,
		LocaleID:        req.LocaleID,
		SourceID:        req.SourceID,
		Difficulty:      req.Difficulty,
		Text:            req.Text,
		OpenValidAnswer: &req.ValidAnswer,
		AnswerComment:   req.Comment,
		TagIDs:          req.TagIDs,
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// UpdateOpen updates a free-text question. Open questions carry no proposed
// answers, so nothing needs soft-deleting.
func (s *QuestionService) UpdateOpen(ctx context.Context, id uuid.UUID, req model.SaveOpenQuestionRequest) (*model.Question, error) {
	existing, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Type != model.QuestionTypeOpen {
		return nil, ErrQuestionTypeMismatch
	}

	q := &model.Question{
		ID:              id,
		Type:            model.QuestionTypeOpen,
		LocaleID:        req.LocaleID,
		SourceID:        req.SourceID,
		Difficulty:      req.Difficulty,
		Text:            req.Text,
		OpenValidAnswer: &req.ValidAnswer,
		AnswerComment:   req.Comment,
		TagIDs:          req.TagIDs,
	}
	if err := s.questionRepo.Update(ctx, q, false); err != nil {
		return nil, err
	}
	return q, nil
}

// CreateMCQ creates a multiple-choices question.
func (s *QuestionService) CreateMCQ(ctx context.Context, req model.SaveMCQQuestionRequest) (*model.Question, error) {
	q := mcqFromRequest(uuid.Nil, req)
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// UpdateMCQ updates a multiple-choices question. The previous answers are
// soft-deleted and the payload's inserted fresh: quizzes generated before
// the edit keep grading against the answers they snapshotted.
func (s *QuestionService) UpdateMCQ(ctx context.Context, id uuid.UUID, req model.SaveMCQQuestionRequest) (*model.Question, error) {
	existing, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Type != model.QuestionTypeMCQ {
		return nil, ErrQuestionTypeMismatch
	}

	q := mcqFromRequest(id, req)
	if err := s.questionRepo.Update(ctx, q, true); err != nil {
		return nil, err
	}
	return q, nil
}

// CreateLinked creates a pair-matching question.
func (s *QuestionService) CreateLinked(ctx context.Context, req model.SaveLinkedQuestionRequest) (*model.Question, error) {
	q := linkedFromRequest(uuid.Nil, req)
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// UpdateLinked updates a pair-matching question, soft-deleting the previous
// pairs like UpdateMCQ does.
func (s *QuestionService) UpdateLinked(ctx context.Context, id uuid.UUID, req model.SaveLinkedQuestionRequest) (*model.Question, error) {
	existing, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Type != model.QuestionTypeLinked {
		return nil, ErrQuestionTypeMismatch
	}

	q := linkedFromRequest(id, req)
	if err := s.questionRepo.Update(ctx, q, true); err != nil {
		return nil, err
	}
	return q, nil
}

func mcqFromRequest(id uuid.UUID, req model.SaveMCQQuestionRequest) *model.Question {
	answers := make([]model.Answer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = model.Answer{Text: a.Text, IsCorrect: a.IsCorrect}
	}
	return &model.Question{
		ID:              id,
		Type:            model.QuestionTypeMCQ,
		LocaleID:        req.LocaleID,
		SourceID:        req.SourceID,
		Difficulty:      req.Difficulty,
		Text:            req.Text,
		HasOpenChoice:   req.HasOpenChoice,
		OpenValidAnswer: req.OpenValidAnswer,
		AnswerComment:   req.Comment,
		TagIDs:          req.TagIDs,
		Answers:         answers,
	}
}

func linkedFromRequest(id uuid.UUID, req model.SaveLinkedQuestionRequest) *model.Question {
	answers := make([]model.Answer, len(req.Pairs))
	for i, p := range req.Pairs {
		answers[i] = model.Answer{
			Text:     p.Left,
			LinkedTo: &model.Answer{Text: p.Right},
		}
	}
	return &model.Question{
		ID:            id,
		Type:          model.QuestionTypeLinked,
		LocaleID:      req.LocaleID,
		SourceID:      req.SourceID,
		Difficulty:    req.Difficulty,
		Text:          req.Text,
		AnswerComment: req.Comment,
		TagIDs:        req.TagIDs,
		Answers:       answers,
	}
}
