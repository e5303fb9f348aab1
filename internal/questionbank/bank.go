package questionbank

import (
	"math/rand"

	"mlarcade/internal/model"
)

// LevelRequirements maps each level to the score needed to unlock it and
// the number of questions a run of that level draws.
var LevelRequirements = map[int]model.LevelRequirement{
	1: {MinScore: 0, QuestionsCount: 5},
	2: {MinScore: 400, QuestionsCount: 5},
	3: {MinScore: 800, QuestionsCount: 6},
	4: {MinScore: 1200, QuestionsCount: 6},
	5: {MinScore: 1600, QuestionsCount: 7},
	6: {MinScore: 2000, QuestionsCount: 7},
	7: {MinScore: 2500, QuestionsCount: 8},
	8: {MinScore: 3000, QuestionsCount: 8},
	9: {MinScore: 3500, QuestionsCount: 10},
}

// MaxLevel is the final level of the arcade.
const MaxLevel = 9

// Bank is an in-memory question catalog with filter and sampling
// operations. It is immutable after construction.
type Bank struct {
	questions []model.Question
}

// New builds a bank from a catalog slice. The slice is copied so callers
// cannot mutate the bank afterwards.
func New(catalog []model.Question) *Bank {
	qs := make([]model.Question, len(catalog))
	copy(qs, catalog)
	return &Bank{questions: qs}
}

// All returns every question in the catalog.
func (b *Bank) All() []model.Question {
	out := make([]model.Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Len returns the catalog size.
func (b *Bank) Len() int {
	return len(b.questions)
}

// ByCategory returns all questions in the given category.
func (b *Bank) ByCategory(category model.Category) []model.Question {
	return b.filter(func(q model.Question) bool { return q.Category == category })
}

// ByLevel returns all questions at exactly the given level.
func (b *Bank) ByLevel(level int) []model.Question {
	return b.filter(func(q model.Question) bool { return q.Level == level })
}

// ByLevelRange returns all questions with min <= level <= max.
func (b *Bank) ByLevelRange(min, max int) []model.Question {
	return b.filter(func(q model.Question) bool { return q.Level >= min && q.Level <= max })
}

// RandomSample draws count questions without replacement using a uniform
// shuffle. A level of 0 draws from the whole catalog, otherwise from that
// level only. Pools smaller than count return the whole pool.
func (b *Bank) RandomSample(count, level int) []model.Question {
	pool := b.questions
	if level > 0 {
		pool = b.ByLevel(level)
	}
	return samplePool(pool, count)
}

// LevelPool returns the question pool a run of the given level draws from.
// Levels 1-3 use beginner questions, 4-6 the mid band, 7-9 the top band.
func (b *Bank) LevelPool(level int) []model.Question {
	switch {
	case level <= 3:
		return b.ByLevelRange(1, 3)
	case level <= 6:
		return b.ByLevelRange(3, 6)
	default:
		return b.ByLevelRange(6, MaxLevel)
	}
}

// QuestionsForLevel samples a full question set for a run of the given
// level, sized by the level table.
func (b *Bank) QuestionsForLevel(level int) []model.Question {
	req, ok := LevelRequirements[level]
	if !ok {
		return nil
	}
	return samplePool(b.LevelPool(level), req.QuestionsCount)
}

func (b *Bank) filter(keep func(model.Question) bool) []model.Question {
	var out []model.Question
	for _, q := range b.questions {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

func samplePool(pool []model.Question, count int) []model.Question {
	shuffled := make([]model.Question, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}

// ComputeScore compares each answer to the correct answer at the matching
// index. Nil slots count as unanswered. Accuracy is 0 for an empty set,
// never NaN.
func ComputeScore(questions []model.Question, answers []*model.Answer) model.ScoreSummary {
	summary := model.ScoreSummary{TotalQuestions: len(questions)}
	for i, q := range questions {
		if i >= len(answers) || answers[i] == nil {
			continue
		}
		if *answers[i] == q.CorrectAnswer {
			summary.TotalScore += q.Points
			summary.CorrectAnswers++
		}
	}
	if summary.TotalQuestions > 0 {
		summary.Accuracy = float64(summary.CorrectAnswers) / float64(summary.TotalQuestions) * 100
	}
	return summary
}

// NextLevel scans levels above current in ascending order and returns the
// highest level whose threshold totalScore meets, capped at MaxLevel.
// Returns current unchanged when no threshold is met.
func NextLevel(current, totalScore int) int {
	next := current
	for level := current + 1; level <= MaxLevel; level++ {
		if totalScore >= LevelRequirements[level].MinScore {
			next = level
		}
	}
	return next
}
