package model

import (
	"github.com/google/uuid"
)

// QuestionType discriminates the three question variants.
type QuestionType string

const (
	// QuestionTypeOpen is a free-text question graded by tolerant distance
	// against a single valid answer.
	QuestionTypeOpen QuestionType = "OPEN"
	// QuestionTypeMCQ is a multiple-choices question; zero or more of the
	// proposed answers are correct, and an optional "other" free-text slot
	// may be attached.
	QuestionTypeMCQ QuestionType = "MCQ"
	// QuestionTypeLinked is a pair-matching question; each left-side answer
	// must be linked to its right-side counterpart.
	QuestionTypeLinked QuestionType = "LINKED"
)

// Answer is a proposed answer to an MCQ or LINKED question.
//
// For MCQ, IsCorrect tells whether the answer should be checked. For LINKED,
// IsCorrect is meaningless; LinkedTo points to the right-side answer this
// left-side answer pairs with.
//
// Answers are soft-deleted: quiz history references answers as they were
// when the quiz was taken, so a replaced answer is flagged IsDeleted and
// excluded from new quizzes but never removed.
type Answer struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	IsCorrect bool      `json:"is_correct"`
	LinkedTo  *Answer   `json:"linked_to,omitempty"`
	IsDeleted bool      `json:"is_deleted,omitempty"`
}

// Question represents a single quiz question with its proposed answers.
//
// Depending on Type:
//   - OPEN: Answers is empty; the correct answer is OpenValidAnswer.
//   - MCQ: Answers holds the choices; if HasOpenChoice, an "other" input is
//     shown and matched against OpenValidAnswer (a nil OpenValidAnswer means
//     the input must be left blank).
//   - LINKED: Answers holds the left-side answers, each carrying its
//     LinkedTo right-side counterpart.
type Question struct {
	ID              uuid.UUID    `json:"id"`
	Type            QuestionType `json:"type"`
	LocaleID        uuid.UUID    `json:"locale_id"`
	SourceID        *uuid.UUID   `json:"source_id,omitempty"`
	Difficulty      int          `json:"difficulty"`
	Text            string       `json:"text"`
	HasOpenChoice   bool         `json:"has_open_choice"`
	OpenValidAnswer *string      `json:"open_valid_answer,omitempty"`
	AnswerComment   *string      `json:"answer_comment,omitempty"`
	TagIDs          []uuid.UUID  `json:"tag_ids,omitempty"`
	Answers         []Answer     `json:"answers,omitempty"`
}

// SelectableAnswers returns the answers a player can interact with,
// filtering out soft-deleted ones.
func (q *Question) SelectableAnswers() []Answer {
	selectable := make([]Answer, 0, len(q.Answers))
	for _, a := range q.Answers {
		if !a.IsDeleted {
			selectable = append(selectable, a)
		}
	}
	return selectable
}

// ────────────────────────────────────────────────────────────────────────────
// Request DTOs
// ────────────────────────────────────────────────────────────────────────────

// AnswerInput describes one proposed answer in a question management payload.
type AnswerInput struct {
	Text      string `json:"text" binding:"required,min=1,max=256"`
	IsCorrect bool   `json:"is_correct"`
}

// AnswerPairInput describes one left/right pair for a LINKED question.
type AnswerPairInput struct {
	Left  string `json:"left" binding:"required,min=1,max=256"`
	Right string `json:"right" binding:"required,min=1,max=256"`
}

// SaveOpenQuestionRequest is the payload for creating or updating an open question.
type SaveOpenQuestionRequest struct {
	Text        string      `json:"text" binding:"required,min=1,max=256"`
	ValidAnswer string      `json:"valid_answer" binding:"required,min=1,max=1024"`
	LocaleID    uuid.UUID   `json:"locale_id" binding:"required"`
	SourceID    *uuid.UUID  `json:"source_id"`
	Difficulty  int         `json:"difficulty" binding:"required,min=1,max=3"`
	Comment     *string     `json:"comment"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
}

// SaveMCQQuestionRequest is the payload for creating or updating an MCQ question.
type SaveMCQQuestionRequest struct {
	Text            string        `json:"text" binding:"required,min=1,max=256"`
	Answers         []AnswerInput `json:"answers" binding:"required,min=1,dive"`
	HasOpenChoice   bool          `json:"has_open_choice"`
	OpenValidAnswer *string       `json:"open_valid_answer" binding:"omitempty,max=1024"`
	LocaleID        uuid.UUID     `json:"locale_id" binding:"required"`
	SourceID        *uuid.UUID    `json:"source_id"`
	Difficulty      int           `json:"difficulty" binding:"required,min=1,max=3"`
	Comment         *string       `json:"comment"`
	TagIDs          []uuid.UUID   `json:"tag_ids"`
}

// SaveLinkedQuestionRequest is the payload for creating or updating a linked question.
type SaveLinkedQuestionRequest struct {
	Text       string            `json:"text" binding:"required,min=1,max=256"`
	Pairs      []AnswerPairInput `json:"pairs" binding:"required,min=1,dive"`
	LocaleID   uuid.UUID         `json:"locale_id" binding:"required"`
	SourceID   *uuid.UUID        `json:"source_id"`
	Difficulty int               `json:"difficulty" binding:"required,min=1,max=3"`
	Comment    *string           `json:"comment"`
	TagIDs     []uuid.UUID       `json:"tag_ids"`
}
