package sampler

import (
	"math/rand/v2"
	"testing"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
	"github.com/google/uuid"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func makePool(difficulties ...int) []model.Question {
	pool := make([]model.Question, len(difficulties))
	for i, d := range difficulties {
		pool[i] = model.Question{ID: uuid.New(), Type: model.QuestionTypeOpen, Difficulty: d}
	}
	return pool
}

func TestGenerateEmptyPool(t *testing.T) {
	if got := Generate(testRNG(1), nil, 10, DifficultyIndifferent); got != nil {
		t.Errorf("expected nil for empty pool, got %d questions", len(got))
	}
}

func TestGenerateCountCoversPool(t *testing.T) {
	pool := makePool(1, 2, 3, 1, 2)

	got := Generate(testRNG(7), pool, 10, DifficultyIndifferent)
	if len(got) != len(pool) {
		t.Fatalf("expected the whole pool, got %d of %d", len(got), len(pool))
	}

	seen := make(map[uuid.UUID]int)
	for _, q := range got {
		seen[q.ID]++
	}
	for _, q := range pool {
		if seen[q.ID] != 1 {
			t.Errorf("question %s selected %d times, want exactly once", q.ID, seen[q.ID])
		}
	}
}

func TestGenerateShufflesFullPool(t *testing.T) {
	pool := makePool(1, 1, 1, 1, 1, 1, 1, 1, 1, 1)

	// At least one of a handful of seeds must produce a different order;
	// ten fixed-point shuffles in a row would be astronomically unlikely.
	varied := false
	for seed := uint64(1); seed <= 10 && !varied; seed++ {
		got := Generate(testRNG(seed), pool, len(pool), DifficultyIndifferent)
		for i := range got {
			if got[i].ID != pool[i].ID {
				varied = true
				break
			}
		}
	}
	if !varied {
		t.Error("full-pool selection never changed the order across seeds")
	}
}

func TestGenerateExcludesHarderQuestions(t *testing.T) {
	pool := makePool(1, 2, 3, 3, 3)

	got := Generate(testRNG(3), pool, 10, 2)
	if len(got) != 2 {
		t.Fatalf("expected the 2 allowed questions, got %d", len(got))
	}
	for _, q := range got {
		if q.Difficulty > 2 {
			t.Errorf("selected question of difficulty %d above preference 2", q.Difficulty)
		}
	}
}

func TestGenerateAllCandidatesTooHard(t *testing.T) {
	pool := makePool(2, 3, 3)
	if got := Generate(testRNG(5), pool, 5, 1); got != nil {
		t.Errorf("expected nil when every candidate is harder than the preference, got %d", len(got))
	}
}

func TestGenerateIndifferentKeepsEverything(t *testing.T) {
	pool := makePool(1, 2, 3)
	got := Generate(testRNG(11), pool, 3, DifficultyIndifferent)
	if len(got) != 3 {
		t.Fatalf("indifferent preference must exclude nothing, got %d of 3", len(got))
	}
}

func TestGenerateWeightedDrawSize(t *testing.T) {
	pool := makePool(1, 1, 2, 2, 2, 3, 3, 1, 2, 3)

	got := Generate(testRNG(13), pool, 4, 3)
	if len(got) != 4 {
		t.Fatalf("expected 4 drawn questions, got %d", len(got))
	}
	known := make(map[uuid.UUID]bool, len(pool))
	for _, q := range pool {
		known[q.ID] = true
	}
	for _, q := range got {
		if !known[q.ID] {
			t.Errorf("drew a question that is not in the pool: %s", q.ID)
		}
	}
}

func TestGenerateBiasTowardPreferredDifficulty(t *testing.T) {
	// Half the pool at difficulty 2 (weight 180), half at difficulty 1
	// (weight 120). Over many draws the preferred tier must dominate.
	pool := makePool(2, 2, 2, 2, 2, 1, 1, 1, 1, 1)
	rng := testRNG(17)

	preferred := 0
	const draws = 200
	for i := 0; i < draws; i++ {
		got := Generate(rng, pool, 1, 2)
		if len(got) != 1 {
			t.Fatalf("expected a single question, got %d", len(got))
		}
		if got[0].Difficulty == 2 {
			preferred++
		}
	}

	// Expected share is 60%; anything at or below a coin flip across 200
	// draws means the weighting is not applied.
	if preferred <= draws/2 {
		t.Errorf("preferred difficulty drawn %d/%d times, expected a clear majority", preferred, draws)
	}
}

func TestQuestionWeight(t *testing.T) {
	cases := []struct {
		difficulty int
		preference int
		want       int
	}{
		{3, 3, 180},
		{2, 3, 120},
		{1, 3, 90},
		{1, 1, 180},
		{2, 1, 100}, // above preference: weight untouched (exclusion is elsewhere)
		{1, DifficultyIndifferent, 100},
		{3, DifficultyIndifferent, 100},
	}

	for _, tc := range cases {
		q := model.Question{Difficulty: tc.difficulty}
		if got := questionWeight(q, tc.preference); got != tc.want {
			t.Errorf("questionWeight(difficulty=%d, pref=%d) = %d, want %d",
				tc.difficulty, tc.preference, got, tc.want)
		}
	}
}

func TestWeightedChoicesSkipsNonPositiveWeights(t *testing.T) {
	pool := makePool(1, 2)
	weights := []int{0, 50}

	got := weightedChoices(testRNG(23), pool, weights, 20)
	for _, q := range got {
		if q.ID != pool[1].ID {
			t.Errorf("zero-weight question was drawn")
		}
	}
}
