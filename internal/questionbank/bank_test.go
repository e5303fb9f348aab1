package questionbank

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"mlarcade/internal/model"
)

func makeQuestion(id string, level int, points int) model.Question {
	return model.Question{
		ID:            id,
		Category:      model.CategoryDataMatrix,
		Level:         level,
		Type:          model.QuestionTypeMultipleChoice,
		Title:         "TEST",
		Question:      "pick the first option",
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: model.ChoiceAnswer(0),
		Explanation:   "the first option is correct",
		Points:        points,
		TimeLimit:     30,
	}
}

func spreadCatalog() []model.Question {
	var qs []model.Question
	for level := 1; level <= 9; level++ {
		for i := 0; i < 3; i++ {
			qs = append(qs, makeQuestion(fmt.Sprintf("q%d_%d", level, i), level, 100))
		}
	}
	return qs
}

func TestFilters(t *testing.T) {
	bank := New(spreadCatalog())

	assert.Equal(t, 27, bank.Len())
	assert.Len(t, bank.ByLevel(4), 3)
	assert.Len(t, bank.ByLevelRange(2, 4), 9)
	assert.Len(t, bank.ByCategory(model.CategoryDataMatrix), 27)
	assert.Empty(t, bank.ByCategory(model.CategoryNeuralForge))
}

func TestRandomSampleReturnsWholePoolWhenSmall(t *testing.T) {
	catalog := []model.Question{
		makeQuestion("a", 1, 100),
		makeQuestion("b", 1, 100),
		makeQuestion("c", 1, 100),
	}
	bank := New(catalog)

	sample := bank.RandomSample(10, 0)
	assert.Len(t, sample, 3)

	seen := map[string]int{}
	for _, q := range sample {
		seen[q.ID]++
	}
	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, 1, seen[id], "question %s should appear exactly once", id)
	}
}

func TestRandomSampleByLevel(t *testing.T) {
	bank := New(spreadCatalog())

	sample := bank.RandomSample(2, 5)
	assert.Len(t, sample, 2)
	for _, q := range sample {
		assert.Equal(t, 5, q.Level)
	}
}

func TestLevelPoolBands(t *testing.T) {
	bank := New(spreadCatalog())

	for _, q := range bank.LevelPool(2) {
		assert.LessOrEqual(t, q.Level, 3)
	}
	for _, q := range bank.LevelPool(5) {
		assert.GreaterOrEqual(t, q.Level, 3)
		assert.LessOrEqual(t, q.Level, 6)
	}
	for _, q := range bank.LevelPool(8) {
		assert.GreaterOrEqual(t, q.Level, 6)
	}
}

func TestQuestionsForLevelUsesLevelTable(t *testing.T) {
	bank := New(spreadCatalog())

	for level, req := range LevelRequirements {
		qs := bank.QuestionsForLevel(level)
		want := req.QuestionsCount
		if pool := len(bank.LevelPool(level)); pool < want {
			want = pool
		}
		assert.Len(t, qs, want, "level %d", level)
	}

	assert.Nil(t, bank.QuestionsForLevel(42))
}

func TestComputeScore(t *testing.T) {
	questions := []model.Question{
		makeQuestion("a", 1, 100),
		makeQuestion("b", 1, 200),
		makeQuestion("c", 1, 300),
	}
	right := model.ChoiceAnswer(0)
	wrong := model.ChoiceAnswer(2)

	score := ComputeScore(questions, []*model.Answer{&right, &wrong, nil})
	assert.Equal(t, 100, score.TotalScore)
	assert.Equal(t, 1, score.CorrectAnswers)
	assert.Equal(t, 3, score.TotalQuestions)
	assert.InDelta(t, 33.33, score.Accuracy, 0.01)
}

func TestComputeScorePerfect(t *testing.T) {
	questions := []model.Question{
		makeQuestion("a", 1, 100),
		makeQuestion("b", 1, 200),
	}
	right := model.ChoiceAnswer(0)

	score := ComputeScore(questions, []*model.Answer{&right, &right})
	assert.Equal(t, 300, score.TotalScore)
	assert.Equal(t, 100.0, score.Accuracy)
}

func TestComputeScoreEmptySet(t *testing.T) {
	score := ComputeScore(nil, nil)
	assert.Equal(t, 0, score.TotalQuestions)
	assert.Equal(t, 0.0, score.Accuracy, "empty set must not divide by zero")
}

func TestNextLevelReturnsHighestUnlocked(t *testing.T) {
	assert.Equal(t, 1, NextLevel(1, 0))
	assert.Equal(t, 2, NextLevel(1, 400))
	assert.Equal(t, 3, NextLevel(1, 800))
	assert.Equal(t, 6, NextLevel(1, 2100))
	// A huge score jumps straight to the top, not just one level up.
	assert.Equal(t, 9, NextLevel(5, 1000000))
	assert.Equal(t, 9, NextLevel(9, 1000000))
	assert.Equal(t, 5, NextLevel(5, 0))
}

func TestDefaultCatalog(t *testing.T) {
	bank := Default()
	assert.Equal(t, 20, bank.Len())

	for _, q := range bank.All() {
		assert.NotEmpty(t, q.ID)
		assert.Positive(t, q.Points, "question %s", q.ID)
		assert.Positive(t, q.TimeLimit, "question %s", q.ID)
		assert.GreaterOrEqual(t, q.Level, 1, "question %s", q.ID)
		assert.LessOrEqual(t, q.Level, MaxLevel, "question %s", q.ID)
		if q.Type == model.QuestionTypeMultipleChoice {
			assert.True(t, q.CorrectAnswer.IsChoice, "question %s", q.ID)
			assert.Less(t, q.CorrectAnswer.Choice, len(q.Options), "question %s", q.ID)
		}
	}
}
