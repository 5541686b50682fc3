package model

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func finishedQuestion(order int, points float64, difficulty int) QuizzQuestion {
	now := time.Now()
	success := SuccessPerfect
	return QuizzQuestion{
		ID:         uuid.New(),
		Order:      order,
		FinishedAt: &now,
		Points:     &points,
		Success:    &success,
		Question:   &Question{Difficulty: difficulty},
	}
}

func pendingQuestion(order, difficulty int) QuizzQuestion {
	return QuizzQuestion{
		ID:       uuid.New(),
		Order:    order,
		Question: &Question{Difficulty: difficulty},
	}
}

func TestCurrentQuestionFollowsOrder(t *testing.T) {
	quizz := &Quizz{Questions: []QuizzQuestion{
		finishedQuestion(0, 1, 1),
		pendingQuestion(2, 2),
		pendingQuestion(1, 3),
	}}

	current := quizz.CurrentQuestion()
	if current == nil || current.Order != 1 {
		t.Fatalf("expected the earliest unfinished question (order 1), got %+v", current)
	}

	if left := quizz.QuestionsLeft(); left != 2 {
		t.Errorf("questions left = %d, want 2", left)
	}
}

func TestCurrentQuestionNilWhenAllFinished(t *testing.T) {
	quizz := &Quizz{Questions: []QuizzQuestion{
		finishedQuestion(0, 1, 1),
		finishedQuestion(1, 2, 2),
	}}

	if current := quizz.CurrentQuestion(); current != nil {
		t.Errorf("expected nil current question, got order %d", current.Order)
	}
	if left := quizz.QuestionsLeft(); left != 0 {
		t.Errorf("questions left = %d, want 0", left)
	}
}

func TestPointsAggregation(t *testing.T) {
	quizz := &Quizz{Questions: []QuizzQuestion{
		finishedQuestion(0, 3, 3),
		finishedQuestion(1, 1, 2),
		pendingQuestion(2, 1),
	}}

	score := quizz.Points()
	if score.Earned != 4 {
		t.Errorf("earned = %v, want 4", score.Earned)
	}
	if score.Max != 6 {
		t.Errorf("max = %v, want 6", score.Max)
	}
	if want := 4.0 / 6.0; score.Ratio != want {
		t.Errorf("ratio = %v, want %v", score.Ratio, want)
	}
}

func TestVisibility(t *testing.T) {
	owner := 42
	now := time.Now()

	running := func(userID *int) *Quizz { return &Quizz{UserID: userID} }
	finished := func(userID *int) *Quizz { return &Quizz{UserID: userID, FinishedAt: &now} }

	cases := []struct {
		name   string
		quizz  *Quizz
		viewer *Viewer
		want   bool
	}{
		{"owner sees own running quiz", running(&owner), &Viewer{UserID: owner}, true},
		{"other user cannot see a running quiz", running(&owner), &Viewer{UserID: 7}, false},
		{"anonymous cannot see an owned running quiz", running(&owner), nil, false},
		{"anonymous sees an anonymous running quiz", running(nil), nil, true},
		{"logged-in user cannot see an anonymous running quiz", running(nil), &Viewer{UserID: 7}, false},
		{"view-all does not extend to running quizzes", running(&owner), &Viewer{UserID: 7, CanViewAll: true}, false},
		{"owner sees own finished quiz", finished(&owner), &Viewer{UserID: owner}, true},
		{"view-all sees finished quizzes", finished(&owner), &Viewer{UserID: 7, CanViewAll: true}, true},
		{"plain user cannot see another's finished quiz", finished(&owner), &Viewer{UserID: 7}, false},
		{"view-all sees finished anonymous quizzes", finished(nil), &Viewer{UserID: 7, CanViewAll: true}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.quizz.VisibleTo(tc.viewer); got != tc.want {
				t.Errorf("VisibleTo = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewSlug(t *testing.T) {
	rng := rand.New(rand.NewPCG(99, 100))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		slug := NewSlug(rng)
		if len(slug) != SlugLength {
			t.Fatalf("slug %q has length %d, want %d", slug, len(slug), SlugLength)
		}
		for _, r := range slug {
			if !strings.ContainsRune(slugAlphabet, r) {
				t.Fatalf("slug %q contains %q outside the alphabet", slug, r)
			}
		}
		seen[slug] = true
	}
	if len(seen) < 95 {
		t.Errorf("only %d distinct slugs out of 100 draws", len(seen))
	}
}
