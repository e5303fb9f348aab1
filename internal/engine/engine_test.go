package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlarcade/internal/model"
	"mlarcade/internal/questionbank"
)

// memStore is an in-memory stats store so tests can observe persistence
// without touching disk.
type memStore struct {
	mu    sync.Mutex
	stats *model.GameStats
	saves int
}

func (m *memStore) Load(ctx context.Context) (*model.GameStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stats == nil {
		return model.DefaultGameStats(), nil
	}
	cp := *m.stats
	return &cp, nil
}

func (m *memStore) Save(ctx context.Context, stats *model.GameStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *stats
	m.stats = &cp
	m.saves++
	return nil
}

func (m *memStore) saved() (*model.GameStats, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats, m.saves
}

func makeQuestions(n, level, points, timeLimit int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:            fmt.Sprintf("q%d_%d", level, i),
			Category:      model.CategoryDataMatrix,
			Level:         level,
			Type:          model.QuestionTypeMultipleChoice,
			Title:         "TEST",
			Question:      "pick the first option",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: model.ChoiceAnswer(0),
			Points:        points,
			TimeLimit:     timeLimit,
		}
	}
	return qs
}

// testConfig keeps the countdown effectively frozen and shrinks the
// feedback windows so tests advance quickly.
func testConfig() Config {
	return Config{
		TickInterval: time.Hour,
		AdvanceDelay: 5 * time.Millisecond,
		LevelUpDelay: 5 * time.Millisecond,
	}
}

func newTestEngine(t *testing.T, catalog []model.Question, cfg Config) (*Engine, *memStore) {
	t.Helper()
	st := &memStore{}
	eng := New(questionbank.New(catalog), st, cfg)
	t.Cleanup(eng.ResetGame)
	return eng, st
}

// recorder collects emitted events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(eng *Engine, kinds ...EventKind) {
	for _, kind := range kinds {
		eng.On(kind, func(ev Event) {
			r.mu.Lock()
			r.events = append(r.events, ev)
			r.mu.Unlock()
		})
	}
}

func (r *recorder) ofKind(kind EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Kind() == kind {
			out = append(out, ev)
		}
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStartGameInitializesState(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())

	eng.StartGame(1)
	snap := eng.Snapshot()

	assert.Equal(t, model.StatusPlaying, snap.Status)
	assert.Equal(t, 1, snap.CurrentLevel)
	assert.Equal(t, 3, snap.Lives)
	assert.Equal(t, 0, snap.TotalScore)
	assert.Len(t, snap.Questions, 5)
	assert.Len(t, snap.Answers, 5)
	assert.Equal(t, 30, snap.TimeRemaining)
	assert.Len(t, snap.PowerUps, 4)
}

func TestStartGameUnknownLevelFallsBackToOne(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())

	eng.StartGame(42)
	assert.Equal(t, 1, eng.Snapshot().CurrentLevel)
}

func TestAnswerQuestionIsNoopInMenu(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())
	rec := &recorder{}
	rec.record(eng, EventCorrectAnswer, EventWrongAnswer)

	eng.AnswerQuestion(model.ChoiceAnswer(0))

	assert.Equal(t, model.StatusMenu, eng.Snapshot().Status)
	assert.Empty(t, rec.ofKind(EventCorrectAnswer))
	assert.Empty(t, rec.ofKind(EventWrongAnswer))
}

func TestCorrectAnswerAwardsPointsAndTimeBonus(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())
	rec := &recorder{}
	rec.record(eng, EventCorrectAnswer)

	eng.StartGame(1)
	eng.AnswerQuestion(model.ChoiceAnswer(0))

	evs := rec.ofKind(EventCorrectAnswer)
	require.Len(t, evs, 1)
	ev := evs[0].(CorrectAnswerEvent)

	// Full time remaining means the full 100-point time bonus.
	assert.Equal(t, 100, ev.TimeBonus)
	assert.Equal(t, 200, ev.Points)
	assert.Equal(t, 1, ev.Streak)
	assert.Equal(t, 200, eng.Snapshot().TotalScore)
}

func TestStreakMultiplierTiers(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())
	rec := &recorder{}
	rec.record(eng, EventCorrectAnswer)

	eng.StartGame(1)
	for i := 0; i < 5; i++ {
		waitFor(t, "next question", func() bool {
			snap := eng.Snapshot()
			return snap.Status == model.StatusPlaying && snap.CurrentQuestionIndex == i
		})
		eng.AnswerQuestion(model.ChoiceAnswer(0))
	}

	evs := rec.ofKind(EventCorrectAnswer)
	require.Len(t, evs, 5)

	// 1x below a 3-streak, 1.5x from 3, 2x from 5. Time bonus is a flat
	// 100 here because the timer never ticks.
	wantPoints := []int{200, 200, 250, 250, 300}
	for i, ev := range evs {
		assert.Equal(t, wantPoints[i], ev.(CorrectAnswerEvent).Points, "answer %d", i+1)
	}
}

func TestStreakAchievementUnlocksOnce(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(7, 1, 100, 30), testConfig())
	rec := &recorder{}
	rec.record(eng, EventAchievementUnlocked)

	eng.StartGame(1)
	for i := 0; i < 5; i++ {
		waitFor(t, "next question", func() bool {
			snap := eng.Snapshot()
			return snap.Status == model.StatusPlaying && snap.CurrentQuestionIndex == i
		})
		eng.AnswerQuestion(model.ChoiceAnswer(0))
	}

	evs := rec.ofKind(EventAchievementUnlocked)
	require.Len(t, evs, 1)
	unlocked := evs[0].(AchievementUnlockedEvent).Achievement
	assert.Equal(t, "streak_5", unlocked.ID)
	assert.Equal(t, 250, unlocked.Points)

	snap := eng.Snapshot()
	require.Len(t, snap.Achievements, 1)
	// 200+200+250+250+300 from answers plus the 250 achievement bonus.
	assert.Equal(t, 1450, snap.TotalScore)
}

func TestWrongAnswersDrainLivesToGameOver(t *testing.T) {
	eng, st := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())
	rec := &recorder{}
	rec.record(eng, EventWrongAnswer, EventGameOver)

	eng.StartGame(1)
	for i := 0; i < 3; i++ {
		waitFor(t, "next question", func() bool {
			snap := eng.Snapshot()
			return snap.Status == model.StatusPlaying && snap.CurrentQuestionIndex == i
		})
		eng.AnswerQuestion(model.ChoiceAnswer(3))
	}

	waitFor(t, "game over", func() bool {
		return eng.Snapshot().Status == model.StatusGameOver
	})

	wrongs := rec.ofKind(EventWrongAnswer)
	require.Len(t, wrongs, 3)
	lives := []int{2, 1, 0}
	for i, ev := range wrongs {
		we := ev.(WrongAnswerEvent)
		assert.Equal(t, lives[i], we.LivesRemaining)
		assert.True(t, we.CorrectAnswer.IsChoice)
		assert.Equal(t, 0, we.CorrectAnswer.Choice)
	}

	require.Len(t, rec.ofKind(EventGameOver), 1)

	stats, saves := st.saved()
	require.NotNil(t, stats, "game over must persist stats")
	assert.Equal(t, 1, saves)
	assert.Equal(t, 1, stats.TotalGamesPlayed)
}

func TestWrongAnswerResetsStreak(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())

	eng.StartGame(1)
	eng.AnswerQuestion(model.ChoiceAnswer(0))
	waitFor(t, "second question", func() bool {
		snap := eng.Snapshot()
		return snap.Status == model.StatusPlaying && snap.CurrentQuestionIndex == 1
	})
	eng.AnswerQuestion(model.ChoiceAnswer(3))

	snap := eng.Snapshot()
	assert.Equal(t, 0, snap.Streak)
	assert.Equal(t, 2, snap.Lives)
}

func TestLevelCompleteAccuracyBonus(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())
	rec := &recorder{}
	rec.record(eng, EventLevelComplete)

	eng.StartGame(1)
	for i := 0; i < 5; i++ {
		waitFor(t, "next question", func() bool {
			snap := eng.Snapshot()
			return snap.Status == model.StatusPlaying && snap.CurrentQuestionIndex == i
		})
		eng.AnswerQuestion(model.ChoiceAnswer(0))
	}

	waitFor(t, "level complete", func() bool {
		return len(rec.ofKind(EventLevelComplete)) > 0
	})

	ev := rec.ofKind(EventLevelComplete)[0].(LevelCompleteEvent)
	assert.Equal(t, 1, ev.Level)
	assert.Equal(t, 100.0, ev.Score.Accuracy)
	assert.Equal(t, 1000, ev.Bonus, "perfect accuracy earns the top bonus")
}

func TestLevelUpRestoresOneLife(t *testing.T) {
	catalog := append(makeQuestions(5, 1, 500, 30), makeQuestions(5, 2, 500, 30)...)
	eng, _ := newTestEngine(t, catalog, testConfig())
	rec := &recorder{}
	rec.record(eng, EventLevelUp)

	eng.StartGame(1)

	// Lose one life, then clear the level with a high enough score to
	// unlock the next one.
	eng.AnswerQuestion(model.ChoiceAnswer(3))
	for i := 1; i < 5; i++ {
		waitFor(t, "next question", func() bool {
			snap := eng.Snapshot()
			return snap.Status == model.StatusPlaying && snap.CurrentQuestionIndex == i
		})
		eng.AnswerQuestion(model.ChoiceAnswer(0))
	}

	waitFor(t, "level up", func() bool {
		return len(rec.ofKind(EventLevelUp)) > 0
	})

	ev := rec.ofKind(EventLevelUp)[0].(LevelUpEvent)
	assert.Greater(t, ev.NewLevel, 1)
	assert.Equal(t, 3, ev.Lives, "level up restores one lost life")

	snap := eng.Snapshot()
	assert.Equal(t, model.StatusPlaying, snap.Status)
	assert.Equal(t, ev.NewLevel, snap.CurrentLevel)
	assert.Equal(t, 0, snap.CurrentQuestionIndex)
}

func TestVictoryAwardsBonus(t *testing.T) {
	eng, st := newTestEngine(t, makeQuestions(10, 9, 10, 30), testConfig())
	rec := &recorder{}
	rec.record(eng, EventLevelComplete, EventVictory)

	eng.StartGame(9)
	for i := 0; i < 10; i++ {
		waitFor(t, "next question", func() bool {
			snap := eng.Snapshot()
			return snap.Status == model.StatusPlaying && snap.CurrentQuestionIndex == i
		})
		eng.AnswerQuestion(model.ChoiceAnswer(0))
	}

	waitFor(t, "victory", func() bool {
		return eng.Snapshot().Status == model.StatusVictory
	})

	lc := rec.ofKind(EventLevelComplete)[0].(LevelCompleteEvent)
	vic := rec.ofKind(EventVictory)[0].(VictoryEvent)
	assert.Equal(t, lc.TotalScore+5000, vic.FinalScore)
	assert.Equal(t, vic.FinalScore, eng.Snapshot().TotalScore)

	stats, _ := st.saved()
	require.NotNil(t, stats)
	assert.Equal(t, 9, stats.HighestLevel)
	assert.Positive(t, stats.FastestCompletion)
}

func TestTimeBoostPowerUpExhausts(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())

	eng.StartGame(1)

	assert.True(t, eng.UsePowerUp("time_boost"))
	assert.Equal(t, 60, eng.Snapshot().TimeRemaining)

	assert.True(t, eng.UsePowerUp("time_boost"))
	assert.Equal(t, 90, eng.Snapshot().TimeRemaining)

	assert.False(t, eng.UsePowerUp("time_boost"), "third use must fail")
	assert.Equal(t, 90, eng.Snapshot().TimeRemaining)
}

func TestSkipQuestionAdvancesWithoutPenalty(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())

	eng.StartGame(1)
	require.True(t, eng.UsePowerUp("skip_question"))

	snap := eng.Snapshot()
	assert.Equal(t, 1, snap.CurrentQuestionIndex)
	assert.Equal(t, 3, snap.Lives)
	assert.Equal(t, 0, snap.Streak)
	assert.Equal(t, 0, snap.TotalScore)
	assert.Nil(t, snap.Answers[0], "skipped question stays unanswered")

	assert.False(t, eng.UsePowerUp("skip_question"), "only one skip per run")
}

func TestUsePowerUpRejectedOutsidePlay(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())

	assert.False(t, eng.UsePowerUp("time_boost"))
	assert.False(t, eng.UsePowerUp("no_such_power"))
}

func TestPauseResumePreservesTimeRemaining(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())

	eng.StartGame(1)
	eng.PauseGame()

	snap := eng.Snapshot()
	assert.Equal(t, model.StatusPaused, snap.Status)
	assert.Equal(t, 30, snap.TimeRemaining)

	// Answering while paused is a silent no-op.
	eng.AnswerQuestion(model.ChoiceAnswer(0))
	assert.Equal(t, 0, eng.Snapshot().TotalScore)

	eng.ResumeGame()
	snap = eng.Snapshot()
	assert.Equal(t, model.StatusPlaying, snap.Status)
	assert.Equal(t, 30, snap.TimeRemaining)
}

func TestPauseDuringFeedbackWindowDefersAdvance(t *testing.T) {
	cfg := testConfig()
	cfg.AdvanceDelay = 30 * time.Millisecond
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), cfg)

	eng.StartGame(1)
	eng.AnswerQuestion(model.ChoiceAnswer(0))
	eng.PauseGame()

	// Let the feedback window elapse while paused.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, eng.Snapshot().CurrentQuestionIndex, "advance must wait for resume")
	assert.Equal(t, model.StatusPaused, eng.Snapshot().Status)

	eng.ResumeGame()
	waitFor(t, "deferred advance", func() bool {
		return eng.Snapshot().CurrentQuestionIndex == 1
	})
}

func TestTimerExpiryCostsLife(t *testing.T) {
	cfg := testConfig()
	cfg.TickInterval = 5 * time.Millisecond
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 2), cfg)
	rec := &recorder{}
	rec.record(eng, EventTimeUp, EventTimerTick)

	eng.StartGame(1)
	waitFor(t, "time up", func() bool {
		return len(rec.ofKind(EventTimeUp)) > 0
	})

	ev := rec.ofKind(EventTimeUp)[0].(TimeUpEvent)
	assert.Equal(t, 2, ev.LivesRemaining)
	assert.Equal(t, 0, ev.CorrectAnswer.Choice)
	assert.True(t, ev.CorrectAnswer.IsChoice)
	assert.NotEmpty(t, rec.ofKind(EventTimerTick))
	assert.Nil(t, eng.Snapshot().Answers[0], "timeout records no answer")
}

func TestResetGameReturnsToMenuWithoutSaving(t *testing.T) {
	eng, st := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())

	eng.StartGame(1)
	eng.AnswerQuestion(model.ChoiceAnswer(0))
	eng.ResetGame()

	snap := eng.Snapshot()
	assert.Equal(t, model.StatusMenu, snap.Status)
	assert.Equal(t, 0, snap.TotalScore)
	assert.Equal(t, 3, snap.Lives)

	_, saves := st.saved()
	assert.Zero(t, saves, "reset must not persist stats")
}

func TestStatsMergeAcrossGames(t *testing.T) {
	eng, st := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())
	st.stats = &model.GameStats{
		TotalGamesPlayed: 2,
		HighestLevel:     5,
		TotalScore:       4000,
		LongestStreak:    8,
		Achievements:     []model.Achievement{},
	}

	eng.StartGame(1)
	// Two correct answers, then lose three lives.
	for i := 0; i < 2; i++ {
		waitFor(t, "next question", func() bool {
			snap := eng.Snapshot()
			return snap.Status == model.StatusPlaying && snap.CurrentQuestionIndex == i
		})
		eng.AnswerQuestion(model.ChoiceAnswer(0))
	}
	for i := 2; i < 5; i++ {
		waitFor(t, "next question", func() bool {
			snap := eng.Snapshot()
			return snap.Status == model.StatusPlaying && snap.CurrentQuestionIndex == i
		})
		eng.AnswerQuestion(model.ChoiceAnswer(3))
	}

	waitFor(t, "game over", func() bool {
		return eng.Snapshot().Status == model.StatusGameOver
	})

	stats, _ := st.saved()
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.TotalGamesPlayed)
	assert.Equal(t, 5, stats.HighestLevel, "a level 1 run cannot lower the record")
	assert.Equal(t, 4400, stats.TotalScore)
	assert.Equal(t, 8, stats.LongestStreak, "a 2-streak cannot beat the stored 8")
	assert.Equal(t, 2, stats.TotalCorrectAnswers)
	assert.Equal(t, 5, stats.TotalQuestions)
	assert.InDelta(t, 40.0, stats.AverageAccuracy, 0.01)
}

func TestScoreNeverDecreasesDuringRun(t *testing.T) {
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), testConfig())

	eng.StartGame(1)
	last := 0
	answers := []model.Answer{
		model.ChoiceAnswer(0),
		model.ChoiceAnswer(3),
		model.ChoiceAnswer(0),
		model.ChoiceAnswer(3),
	}
	for i, a := range answers {
		waitFor(t, "next question", func() bool {
			snap := eng.Snapshot()
			return snap.Status == model.StatusPlaying && snap.CurrentQuestionIndex == i
		})
		eng.AnswerQuestion(a)
		score := eng.Snapshot().TotalScore
		assert.GreaterOrEqual(t, score, last)
		last = score
	}
}

func TestStartGameDropsStalePendingAdvance(t *testing.T) {
	cfg := testConfig()
	cfg.AdvanceDelay = 30 * time.Millisecond
	eng, _ := newTestEngine(t, makeQuestions(5, 1, 100, 30), cfg)

	eng.StartGame(1)
	eng.AnswerQuestion(model.ChoiceAnswer(0))

	// Restart while the previous run's feedback window is still pending.
	eng.StartGame(1)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, eng.Snapshot().CurrentQuestionIndex,
		"the old run's advance must not touch the new run")
}
