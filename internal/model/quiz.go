package model

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// QuestionSuccess is the categorical grade of an answered question,
// independent of the numeric points.
//
// For MCQ and linked questions the tier is derived from the count of correct
// answers; for open questions an ALMOST is granted when the submitted text is
// very close to the valid answer.
type QuestionSuccess string

const (
	SuccessPerfect QuestionSuccess = "PERFECT"
	SuccessAlmost  QuestionSuccess = "ALMOST"
	SuccessFailed  QuestionSuccess = "FAILED"
)

// SlugLength is the length of quiz slugs. Quizzes can belong to anonymous
// players, so they are addressed by a random slug rather than a guessable ID.
const SlugLength = 8

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewSlug draws a random quiz slug from the given source. Uniqueness is the
// caller's concern (retry on collision).
func NewSlug(rng *rand.Rand) string {
	b := make([]byte, SlugLength)
	for i := range b {
		b[i] = slugAlphabet[rng.IntN(len(slugAlphabet))]
	}
	return string(b)
}

// QuizzAnswer records what the player did with one proposed answer of a
// graded MCQ or LINKED question. Exactly one of IsChecked (MCQ) and
// LinkedToID (LINKED) is set.
type QuizzAnswer struct {
	ID               uuid.UUID  `json:"id"`
	QuizzQuestionID  uuid.UUID  `json:"quizz_question_id"`
	ProposedAnswerID uuid.UUID  `json:"proposed_answer_id"`
	IsChecked        *bool      `json:"is_checked,omitempty"`
	LinkedToID       *uuid.UUID `json:"linked_to_id,omitempty"`
}

// QuizzQuestion is one question instance inside a quiz, holding both the
// snapshot of what was asked and, once graded, what the player answered.
//
// AnswerIDs is the set of proposed answer IDs active when the quiz was
// generated. Grading resolves answers through this snapshot, never through
// the question's current answer set, so later edits cannot change how a
// running quiz is scored.
type QuizzQuestion struct {
	ID         uuid.UUID        `json:"id"`
	QuizzID    uuid.UUID        `json:"quizz_id"`
	QuestionID uuid.UUID        `json:"question_id"`
	Order      int              `json:"order"`
	AnswerIDs  []uuid.UUID      `json:"answer_ids,omitempty"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	OpenAnswer *string          `json:"open_answer,omitempty"`
	Success    *QuestionSuccess `json:"success,omitempty"`
	Points     *float64         `json:"points,omitempty"`

	Question *Question     `json:"question,omitempty"`
	Answers  []QuizzAnswer `json:"answers,omitempty"`
}

// IsFinished reports whether this question has been graded.
func (qq *QuizzQuestion) IsFinished() bool {
	return qq.FinishedAt != nil
}

// Score aggregates quiz points: what the player earned, the attainable
// maximum (sum of difficulties), and the success ratio between 0 and 1.
type Score struct {
	Earned float64 `json:"earned"`
	Max    float64 `json:"max"`
	Ratio  float64 `json:"ratio"`
}

// Quizz is a quiz passed by a player. All questions are created up front at
// generation time; grading then fills them in strictly in order.
type Quizz struct {
	ID         uuid.UUID  `json:"id"`
	Slug       string     `json:"slug"`
	UserID     *int       `json:"user_id,omitempty"`
	IP         *string    `json:"-"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Questions sorted by Order; the order field is authoritative.
	Questions []QuizzQuestion `json:"questions,omitempty"`
}

// IsRunning reports whether the quiz still has unanswered questions.
func (q *Quizz) IsRunning() bool {
	return q.FinishedAt == nil
}

// CurrentQuestion returns the earliest unfinished question by order, or nil
// when everything has been answered.
func (q *Quizz) CurrentQuestion() *QuizzQuestion {
	var current *QuizzQuestion
	for i := range q.Questions {
		qq := &q.Questions[i]
		if qq.IsFinished() {
			continue
		}
		if current == nil || qq.Order < current.Order {
			current = qq
		}
	}
	return current
}

// QuestionsTotal returns the number of questions in the quiz.
func (q *Quizz) QuestionsTotal() int {
	return len(q.Questions)
}

// QuestionsFinished returns the number of graded questions.
func (q *Quizz) QuestionsFinished() int {
	n := 0
	for i := range q.Questions {
		if q.Questions[i].IsFinished() {
			n++
		}
	}
	return n
}

// QuestionsLeft returns the number of questions still to answer.
func (q *Quizz) QuestionsLeft() int {
	return q.QuestionsTotal() - q.QuestionsFinished()
}

// Points sums earned points and the attainable maximum over the quiz.
// Ungraded questions contribute nothing to Earned but their difficulty still
// counts toward Max. Requires questions to be loaded with their Question.
func (q *Quizz) Points() Score {
	var s Score
	for i := range q.Questions {
		qq := &q.Questions[i]
		if qq.Points != nil {
			s.Earned += *qq.Points
		}
		if qq.Question != nil {
			s.Max += float64(qq.Question.Difficulty)
		}
	}
	if s.Max > 0 {
		s.Ratio = s.Earned / s.Max
	}
	return s
}

// Viewer is the principal asking to see a quiz. A nil *Viewer means an
// unauthenticated visitor.
type Viewer struct {
	UserID     int
	CanViewAll bool
}

// VisibleTo implements the quiz visibility rule: a running quiz belongs to
// its owner only (an anonymous quiz is visible to unauthenticated visitors
// only); a finished quiz is additionally visible to principals holding the
// view-all capability.
func (q *Quizz) VisibleTo(v *Viewer) bool {
	var allowed bool
	if q.UserID == nil {
		allowed = v == nil
	} else {
		allowed = v != nil && *q.UserID == v.UserID
	}

	if !q.IsRunning() {
		allowed = allowed || (v != nil && v.CanViewAll)
	}

	return allowed
}

// ────────────────────────────────────────────────────────────────────────────
// Request DTOs
// ────────────────────────────────────────────────────────────────────────────

// CreateQuizzRequest is the payload for generating a new quiz.
// Difficulty 0 means indifferent; 1–3 biases selection toward that tier and
// excludes anything harder.
type CreateQuizzRequest struct {
	QuestionsCount int         `json:"questions_count" binding:"required,min=1,max=100"`
	LocaleID       *uuid.UUID  `json:"locale_id"`
	ContestID      *uuid.UUID  `json:"contest_id"`
	TagIDs         []uuid.UUID `json:"tag_ids"`
	Difficulty     int         `json:"difficulty" binding:"min=0,max=3"`
}

// AnswerSubmission is the raw answer payload for the current question of a
// quiz. Which fields are meaningful depends on the question type; the grader
// validates the payload against the question before any mutation.
type AnswerSubmission struct {
	// OpenAnswer is the free-text answer of an OPEN question. May be empty.
	OpenAnswer string `json:"open_answer"`
	// CheckedAnswerIDs are the MCQ answers the player ticked.
	CheckedAnswerIDs []uuid.UUID `json:"checked_answer_ids"`
	// OtherAnswer fills the MCQ open-choice slot, when the question has one.
	OtherAnswer *string `json:"other_answer"`
	// Links maps each left-side answer ID to the right-side answer ID the
	// player linked it to.
	Links map[uuid.UUID]uuid.UUID `json:"links"`
}
