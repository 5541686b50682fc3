package model

import "errors"

var (
	// ErrNoMatchingQuestions is returned when no question satisfies the
	// quiz generation filters. Callers should suggest different filters,
	// not crash.
	ErrNoMatchingQuestions = errors.New("no questions match the requested criteria")
	// ErrInvalidSubmission indicates the submitted answer payload failed
	// structural validation. Nothing is graded or persisted.
	ErrInvalidSubmission = errors.New("invalid answer submission")
	// ErrAlreadyGraded indicates a grading attempt on a question whose
	// finished_at is already set. Treated as a rejected no-op.
	ErrAlreadyGraded = errors.New("question already graded")
	// ErrQuizzNotFound indicates the quiz does not exist. Access denials
	// are also surfaced as this error to avoid leaking existence.
	ErrQuizzNotFound = errors.New("quizz not found")
	// ErrQuestionNotFound indicates a question ID does not resolve.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuizzFinished indicates an answer was submitted to a quiz with
	// no remaining unanswered question.
	ErrQuizzFinished = errors.New("quizz is already finished")
)
