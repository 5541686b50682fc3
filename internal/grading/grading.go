// Package grading turns a raw answer submission into a success tier, points
// and the per-answer records to persist. Grading is pure: it validates, then
// mutates the QuizzQuestion in memory and returns the created QuizzAnswer
// rows; persistence is the caller's job.
package grading

import (
	"fmt"
	"time"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/textproc"
	"github.com/google/uuid"
)

// almostThreshold is the exclusive gentle-distance bound under which a wrong
// open answer still earns half credit.
const almostThreshold = 4

// Grade grades the submission against the question and fills in the
// QuizzQuestion (finished_at, success, points, submitted data snapshot).
//
// The question's Answers must carry the full answer rows referenced by the
// QuizzQuestion's snapshot; Grade resolves the gradable set through that
// snapshot so edits made after quiz generation cannot change the outcome.
//
// Returns model.ErrAlreadyGraded when finished_at is already set, and
// model.ErrInvalidSubmission when the payload does not fit the question.
// In both cases nothing is mutated.
func Grade(q *model.Question, qq *model.QuizzQuestion, sub model.AnswerSubmission, now time.Time) ([]model.QuizzAnswer, error) {
	if qq.IsFinished() {
		return nil, model.ErrAlreadyGraded
	}

	switch q.Type {
	case model.QuestionTypeOpen:
		return nil, gradeOpen(q, qq, sub, now)
	case model.QuestionTypeMCQ:
		return gradeMCQ(q, qq, sub, now)
	case model.QuestionTypeLinked:
		return gradeLinked(q, qq, sub, now)
	default:
		return nil, fmt.Errorf("%w: unknown question type %q", model.ErrInvalidSubmission, q.Type)
	}
}

// snapshotAnswers resolves the answers the quiz question was generated with.
// With no snapshot recorded, the currently selectable answers are used.
func snapshotAnswers(q *model.Question, qq *model.QuizzQuestion) []model.Answer {
	if len(qq.AnswerIDs) == 0 {
		return q.SelectableAnswers()
	}
	inSnapshot := make(map[uuid.UUID]struct{}, len(qq.AnswerIDs))
	for _, id := range qq.AnswerIDs {
		inSnapshot[id] = struct{}{}
	}
	answers := make([]model.Answer, 0, len(qq.AnswerIDs))
	for _, a := range q.Answers {
		if _, ok := inSnapshot[a.ID]; ok {
			answers = append(answers, a)
		}
	}
	return answers
}

// openAnswerScore maps a gentle distance to the open-answer credit scale:
// exact 1.0, close 0.5, otherwise 0.
func openAnswerScore(valid *string, submitted string) float64 {
	target := ""
	if valid != nil {
		target = *valid
	}
	distance := textproc.GentleDistance(target, submitted)
	switch {
	case distance == 0:
		return 1.0
	case distance < almostThreshold:
		return 0.5
	default:
		return 0.0
	}
}

// gradeOpen compares the submitted text to the valid answer; the gentle
// distance decides between full, half and no points.
func gradeOpen(q *model.Question, qq *model.QuizzQuestion, sub model.AnswerSubmission, now time.Time) error {
	submitted := sub.OpenAnswer

	var (
		points  float64
		success model.QuestionSuccess
	)
	switch score := openAnswerScore(q.OpenValidAnswer, submitted); score {
	case 1.0:
		points = float64(q.Difficulty)
		success = model.SuccessPerfect
	case 0.5:
		points = float64(q.Difficulty) / 2.0
		success = model.SuccessAlmost
	default:
		points = 0
		success = model.SuccessFailed
	}

	qq.FinishedAt = &now
	qq.OpenAnswer = &submitted
	qq.Points = &points
	qq.Success = &success
	return nil
}

// gradeMCQ awards points in proportion to correctly ticked answers, with a
// penalty for incorrectly ticked ones so ticking everything does not pay.
// An open-choice slot contributes one extra unit to the denominator and its
// own distance-based sub-score to the numerator; it never changes the
// success tier.
func gradeMCQ(q *model.Question, qq *model.QuizzQuestion, sub model.AnswerSubmission, now time.Time) ([]model.QuizzAnswer, error) {
	answers := snapshotAnswers(q, qq)

	proposed := make(map[uuid.UUID]struct{}, len(answers))
	for _, a := range answers {
		proposed[a.ID] = struct{}{}
	}

	checked := make(map[uuid.UUID]struct{}, len(sub.CheckedAnswerIDs))
	for _, id := range sub.CheckedAnswerIDs {
		if _, ok := proposed[id]; !ok {
			return nil, fmt.Errorf("%w: checked answer %s is not part of this question", model.ErrInvalidSubmission, id)
		}
		checked[id] = struct{}{}
	}

	var (
		openScore float64
		openUnits float64
		otherText *string
	)
	if q.HasOpenChoice {
		openUnits = 1
		submitted := ""
		if sub.OtherAnswer != nil {
			submitted = *sub.OtherAnswer
		}
		openScore = openAnswerScore(q.OpenValidAnswer, submitted)
		otherText = &submitted
	}

	var (
		correct      int
		wrongChecked int
	)
	quizzAnswers := make([]model.QuizzAnswer, 0, len(answers))
	for _, a := range answers {
		_, userChecked := checked[a.ID]
		if userChecked == a.IsCorrect {
			correct++
		} else if userChecked && !a.IsCorrect {
			wrongChecked++
		}

		isChecked := userChecked
		quizzAnswers = append(quizzAnswers, model.QuizzAnswer{
			ID:               uuid.New(),
			QuizzQuestionID:  qq.ID,
			ProposedAnswerID: a.ID,
			IsChecked:        &isChecked,
		})
	}

	points := float64(q.Difficulty) *
		((float64(correct) - float64(wrongChecked) + openScore) / (float64(len(answers)) + openUnits))
	if points < 0 {
		points = 0
	}

	success := successTier(correct, len(answers))

	qq.FinishedAt = &now
	qq.OpenAnswer = otherText
	qq.Points = &points
	qq.Success = &success
	qq.Answers = quizzAnswers
	return quizzAnswers, nil
}

// gradeLinked checks each left-side answer against its paired right-side
// answer. Badly linked answers earn nothing.
func gradeLinked(q *model.Question, qq *model.QuizzQuestion, sub model.AnswerSubmission, now time.Time) ([]model.QuizzAnswer, error) {
	all := snapshotAnswers(q, qq)

	// Only left-side answers with a pair are gradable.
	pairs := make([]model.Answer, 0, len(all))
	rightSide := make(map[uuid.UUID]struct{}, len(all))
	for _, a := range all {
		if a.LinkedTo != nil {
			pairs = append(pairs, a)
			rightSide[a.LinkedTo.ID] = struct{}{}
		}
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: question has no linkable answers", model.ErrInvalidSubmission)
	}

	for _, a := range pairs {
		target, ok := sub.Links[a.ID]
		if !ok {
			return nil, fmt.Errorf("%w: missing link for answer %s", model.ErrInvalidSubmission, a.ID)
		}
		if _, ok := rightSide[target]; !ok {
			return nil, fmt.Errorf("%w: link target %s is not part of this question", model.ErrInvalidSubmission, target)
		}
	}

	correct := 0
	quizzAnswers := make([]model.QuizzAnswer, 0, len(pairs))
	for _, a := range pairs {
		target := sub.Links[a.ID]
		if target == a.LinkedTo.ID {
			correct++
		}

		linkedTo := target
		quizzAnswers = append(quizzAnswers, model.QuizzAnswer{
			ID:               uuid.New(),
			QuizzQuestionID:  qq.ID,
			ProposedAnswerID: a.ID,
			LinkedToID:       &linkedTo,
		})
	}

	points := float64(q.Difficulty) * (float64(correct) / float64(len(pairs)))
	success := successTier(correct, len(pairs))

	qq.FinishedAt = &now
	qq.Points = &points
	qq.Success = &success
	qq.Answers = quizzAnswers
	return quizzAnswers, nil
}

// successTier applies the shared MCQ/LINKED tier rule: all correct is
// PERFECT, exactly one short is ALMOST (but only past two correct answers),
// anything else FAILED.
func successTier(correct, total int) model.QuestionSuccess {
	switch {
	case correct == total:
		return model.SuccessPerfect
	case correct == total-1 && correct > 1:
		return model.SuccessAlmost
	default:
		return model.SuccessFailed
	}
}
