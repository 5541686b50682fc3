package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/config"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/grading"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/repository"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/sampler"
)

// slugRetries bounds the slug collision retry loop. The slug space is large
// enough that hitting this means something is badly wrong with the database.
const slugRetries = 5

// startedAtStaleness is how old a quiz start time may get before viewing an
// untouched quiz re-stamps it. Players often generate a quiz and only sit
// down to take it later; the timer should not count that gap.
const startedAtStaleness = time.Hour

// QuizzProgress is the payload published on the quiz progress channel after
// each graded answer.
type QuizzProgress struct {
	Slug              string                `json:"slug"`
	QuestionOrder     int                   `json:"question_order"`
	Success           model.QuestionSuccess `json:"success"`
	Points            float64               `json:"points"`
	QuestionsFinished int                   `json:"questions_finished"`
	QuestionsTotal    int                   `json:"questions_total"`
	Finished          bool                  `json:"finished"`
	Score             model.Score           `json:"score"`
}

// QuizService handles quiz generation, retrieval and answer grading.
type QuizService struct {
	quizRepo     *repository.QuizRepository
	questionRepo *repository.QuestionRepository
	taxonomyRepo *repository.TaxonomyRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	quizRepo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	taxonomyRepo *repository.TaxonomyRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		taxonomyRepo: taxonomyRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "quiz_service").Logger(),
	}
}

// Generate builds a new quiz from the requested filters for the given player
// (nil userID for anonymous players). The drawn questions are persisted with
// a snapshot of their active answer IDs so later question edits cannot
// affect this quiz.
func (s *QuizService) Generate(ctx context.Context, req model.CreateQuizzRequest, userID *int, ip string) (*model.Quizz, error) {
	tagIDs := req.TagIDs
	if len(tagIDs) > 0 {
		tags, err := s.taxonomyRepo.ListTags(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tags: %w", err)
		}
		// Asking for a tag also selects its whole subtree.
		tagIDs = model.NewTagTree(tags).Expand(tagIDs)
	}

	pool, err := s.questionRepo.ListCandidates(ctx, req.LocaleID, req.ContestID, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	rng := newRNG()
	drawn := sampler.Generate(rng, pool, req.QuestionsCount, req.Difficulty)
	if len(drawn) == 0 {
		return nil, model.ErrNoMatchingQuestions
	}

	quizz := &model.Quizz{
		UserID:    userID,
		StartedAt: time.Now(),
	}
	if ip != "" {
		quizz.IP = &ip
	}
	for i := range drawn {
		q := drawn[i]
		selectable := q.SelectableAnswers()
		answerIDs := make([]uuid.UUID, len(selectable))
		for j, a := range selectable {
			answerIDs[j] = a.ID
		}
		quizz.Questions = append(quizz.Questions, model.QuizzQuestion{
			QuestionID: q.ID,
			Order:      i + 1,
			AnswerIDs:  answerIDs,
			Question:   &drawn[i],
		})
	}

	for attempt := 0; ; attempt++ {
		quizz.Slug = model.NewSlug(rng)
		err = s.quizRepo.Create(ctx, quizz)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrSlugConflict) && attempt < slugRetries {
			s.log.Warn().Str("slug", quizz.Slug).Msg("quizz slug collision, retrying")
			continue
		}
		return nil, fmt.Errorf("create quizz: %w", err)
	}

	s.log.Info().
		Str("slug", quizz.Slug).
		Int("questions", len(quizz.Questions)).
		Msg("quizz generated")
	return quizz, nil
}

// Get retrieves a quiz by slug for the given viewer. Access denials surface
// as model.ErrQuizzNotFound so quiz existence cannot be probed.
//
// Viewing a running, untouched quiz whose start time is more than an hour
// old re-stamps it to now, and serving the current question stamps its own
// start time once.
func (s *QuizService) Get(ctx context.Context, slug string, viewer *model.Viewer) (*model.Quizz, error) {
	quizz, err := s.quizRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !quizz.VisibleTo(viewer) {
		return nil, model.ErrQuizzNotFound
	}
	if err := s.attachQuestions(ctx, quizz); err != nil {
		return nil, err
	}

	if quizz.IsRunning() {
		now := time.Now()
		if quizz.QuestionsFinished() == 0 && now.Sub(quizz.StartedAt) > startedAtStaleness {
			if err := s.quizRepo.UpdateStartedAt(ctx, quizz.ID, now); err != nil {
				return nil, fmt.Errorf("update started_at: %w", err)
			}
			quizz.StartedAt = now
		}
		current := quizz.CurrentQuestion()
		// Re-stamp on re-display too: a question left open for over an
		// hour was abandoned, not pondered.
		if current != nil && (current.StartedAt == nil || now.Sub(*current.StartedAt) > startedAtStaleness) {
			if err := s.quizRepo.MarkQuestionStarted(ctx, current.ID, now); err != nil {
				return nil, fmt.Errorf("mark question started: %w", err)
			}
			current.StartedAt = &now
		}
	}

	return quizz, nil
}

// RegisterAnswer grades the submission against the quiz's current question,
// persists the result and publishes a progress event. Answering the last
// question also closes the quiz. Returns the graded question and the quiz.
func (s *QuizService) RegisterAnswer(ctx context.Context, slug string, viewer *model.Viewer, sub model.AnswerSubmission) (*model.QuizzQuestion, *model.Quizz, error) {
	quizz, err := s.quizRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if !quizz.VisibleTo(viewer) {
		return nil, nil, model.ErrQuizzNotFound
	}
	if !quizz.IsRunning() {
		return nil, nil, model.ErrQuizzFinished
	}
	if err := s.attachQuestions(ctx, quizz); err != nil {
		return nil, nil, err
	}

	current := quizz.CurrentQuestion()
	if current == nil {
		return nil, nil, model.ErrQuizzFinished
	}
	if current.Question == nil {
		return nil, nil, fmt.Errorf("question %s of quizz %s no longer exists", current.QuestionID, slug)
	}

	now := time.Now()
	answers, err := grading.Grade(current.Question, current, sub, now)
	if err != nil {
		return nil, nil, err
	}

	var quizzFinishedAt *time.Time
	if quizz.QuestionsLeft() == 0 {
		quizzFinishedAt = &now
		quizz.FinishedAt = &now
	}

	if err := s.quizRepo.SaveGradedQuestion(ctx, current, answers, quizzFinishedAt); err != nil {
		return nil, nil, err
	}
	current.Answers = answers

	s.publishProgress(ctx, quizz, current)

	return current, quizz, nil
}

func (s *QuizService) attachQuestions(ctx context.Context, quizz *model.Quizz) error {
	ids := make([]uuid.UUID, len(quizz.Questions))
	for i := range quizz.Questions {
		ids[i] = quizz.Questions[i].QuestionID
	}
	questions, err := s.questionRepo.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	for i := range quizz.Questions {
		qq := &quizz.Questions[i]
		qq.Question = questions[qq.QuestionID]
	}
	return nil
}

func (s *QuizService) publishProgress(ctx context.Context, quizz *model.Quizz, graded *model.QuizzQuestion) {
	progress := QuizzProgress{
		Slug:              quizz.Slug,
		QuestionOrder:     graded.Order,
		QuestionsFinished: quizz.QuestionsFinished(),
		QuestionsTotal:    quizz.QuestionsTotal(),
		Finished:          !quizz.IsRunning(),
		Score:             quizz.Points(),
	}
	if graded.Success != nil {
		progress.Success = *graded.Success
	}
	if graded.Points != nil {
		progress.Points = *graded.Points
	}

	payload, err := json.Marshal(progress)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal progress payload")
		return
	}
	channel := config.CacheKey.QuizzProgressChannel(quizz.Slug)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		// Progress events are best-effort; grading already succeeded.
		s.log.Warn().Err(err).Str("channel", channel).Msg("publish progress")
	}
}

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
