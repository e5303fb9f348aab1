// Package engine owns the arcade game state machine: level progression,
// scoring, streaks, lives, power-ups, achievements and the per-question
// countdown.
package engine

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"mlarcade/internal/model"
	"mlarcade/internal/questionbank"
	"mlarcade/internal/store"
)

const (
	maxLives         = 3
	timeBoostSeconds = 30
	victoryBonus     = 5000

	streakAchievementAt = 5
	scoreAchievementAt  = 10000
)

// Config tunes the engine's timing. Tests shrink the delays; production
// uses DefaultConfig.
type Config struct {
	TickInterval time.Duration // Countdown resolution
	AdvanceDelay time.Duration // Feedback window before the next question
	LevelUpDelay time.Duration // Pause before auto-advancing levels
}

// DefaultConfig returns the standard arcade timings.
func DefaultConfig() Config {
	return Config{
		TickInterval: time.Second,
		AdvanceDelay: 2 * time.Second,
		LevelUpDelay: 3 * time.Second,
	}
}

// Engine is a single game session driver. One engine owns one GameState;
// all mutations are serialized behind its mutex, so concurrent calls from
// a UI (for example a rapid double-submit) cannot double-score.
type Engine struct {
	bank   *questionbank.Bank
	store  store.Store
	cfg    Config
	events *dispatcher
	sounds SoundBank

	mu             sync.Mutex
	state          model.GameState
	bestStreak     int
	pendingAdvance bool
	session        int // Bumped on StartGame/ResetGame so stale deferred tasks can't cross sessions

	timer   countdown
	advance delayed
	levelUp delayed
}

// New creates an engine in the menu state.
func New(bank *questionbank.Bank, st store.Store, cfg Config) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	e := &Engine{
		bank:   bank,
		store:  st,
		cfg:    cfg,
		events: newDispatcher(),
		sounds: nopSounds{},
	}
	e.state = initialState()
	return e
}

// SetSounds injects the audio cues. Safe to leave unset; cues are no-ops
// until then.
func (e *Engine) SetSounds(s SoundBank) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s != nil {
		e.sounds = s
	}
}

// On registers a handler for one event kind. Handlers run in subscription
// order, outside the state lock.
func (e *Engine) On(kind EventKind, h Handler) Subscription {
	return e.events.on(kind, h)
}

// Off removes a previously registered handler.
func (e *Engine) Off(kind EventKind, sub Subscription) {
	e.events.off(kind, sub)
}

func initialState() model.GameState {
	return model.GameState{
		CurrentLevel: 1,
		Lives:        maxLives,
		Status:       model.StatusMenu,
		PowerUps:     initialPowerUps(),
		Achievements: []model.Achievement{},
	}
}

func initialPowerUps() []model.PowerUp {
	return []model.PowerUp{
		{
			ID:          "time_boost",
			Type:        model.PowerUpTimeBoost,
			Name:        "NEURAL ACCELERATOR",
			Description: "Adds 30 seconds to current question timer",
			Icon:        "⚡",
			Uses:        2,
		},
		{
			ID:          "skip_question",
			Type:        model.PowerUpSkipQuestion,
			Name:        "QUANTUM BYPASS",
			Description: "Skip current question without penalty",
			Icon:        "🚀",
			Uses:        1,
		},
		{
			ID:          "eliminate_two",
			Type:        model.PowerUpEliminateTwo,
			Name:        "NEURAL FILTER",
			Description: "Eliminate 2 wrong answers (multiple choice only)",
			Icon:        "🎯",
			Uses:        2,
		},
		{
			ID:          "double_points",
			Type:        model.PowerUpDoublePoints,
			Name:        "SCORE AMPLIFIER",
			Description: "Double points for next correct answer",
			Icon:        "💎",
			Uses:        1,
		},
	}
}

// StartGame resets all state and begins a run at the given level. Unknown
// levels fall back to level 1.
func (e *Engine) StartGame(level int) {
	if _, ok := questionbank.LevelRequirements[level]; !ok {
		level = 1
	}

	e.advance.Cancel()
	e.levelUp.Cancel()

	e.mu.Lock()
	e.timer.Stop()
	e.session++
	e.state = initialState()
	e.bestStreak = 0
	e.pendingAdvance = false
	e.state.CurrentLevel = level
	e.state.StartTime = time.Now()
	e.loadLevelQuestions(level)
	e.state.Status = model.StatusPlaying
	snapshot := e.snapshotLocked()
	e.startTimerLocked()
	e.mu.Unlock()

	e.sounds.PlayLevelUp()
	e.events.emit(GameStartedEvent{State: snapshot})
}

func (e *Engine) loadLevelQuestions(level int) {
	e.state.Questions = e.bank.QuestionsForLevel(level)
	e.state.Answers = make([]*model.Answer, len(e.state.Questions))
	e.state.CurrentQuestionIndex = 0
	if len(e.state.Questions) > 0 {
		e.state.TimeRemaining = e.state.Questions[0].TimeLimit
	}
}

// CurrentQuestion returns the question being played, or nil outside a run.
func (e *Engine) CurrentQuestion() *model.Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentQuestionLocked()
}

func (e *Engine) currentQuestionLocked() *model.Question {
	if e.state.CurrentQuestionIndex >= len(e.state.Questions) {
		return nil
	}
	q := e.state.Questions[e.state.CurrentQuestionIndex]
	return &q
}

// AnswerQuestion scores a submitted answer. It is a no-op outside the
// playing state, which also guards against double submissions.
func (e *Engine) AnswerQuestion(answer model.Answer) {
	e.mu.Lock()
	if e.state.Status != model.StatusPlaying {
		e.mu.Unlock()
		return
	}
	question := e.currentQuestionLocked()
	if question == nil {
		e.mu.Unlock()
		return
	}

	e.timer.Stop()

	recorded := answer
	e.state.Answers[e.state.CurrentQuestionIndex] = &recorded

	var evs []Event
	var cue func()

	if answer == question.CorrectAnswer {
		cue = e.sounds.PlaySuccess
		e.state.Streak++
		if e.state.Streak > e.bestStreak {
			e.bestStreak = e.state.Streak
		}

		multiplier := 1.0
		switch {
		case e.state.Streak >= 5:
			multiplier = 2.0
		case e.state.Streak >= 3:
			multiplier = 1.5
		}

		timeBonus := int(math.Floor(float64(e.state.TimeRemaining) / float64(question.TimeLimit) * 100))
		points := int(math.Floor(float64(question.Points)*multiplier)) + timeBonus
		e.state.TotalScore += points

		evs = append(evs, CorrectAnswerEvent{
			Points:    points,
			Streak:    e.state.Streak,
			TimeBonus: timeBonus,
		})
		evs = append(evs, e.checkAchievementsLocked()...)
	} else {
		cue = e.sounds.PlayError
		e.state.Lives--
		e.state.Streak = 0

		evs = append(evs, WrongAnswerEvent{
			CorrectAnswer:  question.CorrectAnswer,
			Explanation:    question.Explanation,
			LivesRemaining: e.state.Lives,
		})

		if e.state.Lives <= 0 {
			evs = append(evs, e.gameOverLocked())
			e.mu.Unlock()
			cue()
			e.events.emit(evs...)
			return
		}
	}

	e.scheduleAdvanceLocked()
	e.mu.Unlock()

	cue()
	e.events.emit(evs...)
}

func (e *Engine) scheduleAdvanceLocked() {
	session := e.session
	e.advance.Schedule(e.cfg.AdvanceDelay, func() { e.advanceNext(session) })
}

// advanceNext runs after the feedback window. A pause during the window
// defers the advance until resume.
func (e *Engine) advanceNext(session int) {
	e.mu.Lock()
	if e.session != session {
		e.mu.Unlock()
		return
	}
	if e.state.Status == model.StatusPaused {
		e.pendingAdvance = true
		e.mu.Unlock()
		return
	}
	if e.state.Status != model.StatusPlaying {
		e.mu.Unlock()
		return
	}
	evs, cue := e.nextQuestionLocked()
	e.mu.Unlock()

	if cue != nil {
		cue()
	}
	e.events.emit(evs...)
}

func (e *Engine) nextQuestionLocked() ([]Event, func()) {
	e.state.CurrentQuestionIndex++

	if e.state.CurrentQuestionIndex >= len(e.state.Questions) {
		return e.completeLevelLocked()
	}

	question := e.state.Questions[e.state.CurrentQuestionIndex]
	e.state.TimeRemaining = question.TimeLimit
	e.startTimerLocked()
	return []Event{NextQuestionEvent{Question: question}}, nil
}

func (e *Engine) completeLevelLocked() ([]Event, func()) {
	e.timer.Stop()

	score := questionbank.ComputeScore(e.state.Questions, e.state.Answers)

	var bonus int
	switch {
	case score.Accuracy >= 90:
		bonus = 1000
	case score.Accuracy >= 75:
		bonus = 500
	case score.Accuracy >= 60:
		bonus = 250
	}
	e.state.TotalScore += bonus
	e.state.Status = model.StatusLevelComplete

	evs := []Event{LevelCompleteEvent{
		Level:      e.state.CurrentLevel,
		Score:      score,
		Bonus:      bonus,
		TotalScore: e.state.TotalScore,
	}}
	evs = append(evs, e.checkAchievementsLocked()...)

	next := questionbank.NextLevel(e.state.CurrentLevel, e.state.TotalScore)
	switch {
	case next > e.state.CurrentLevel && next <= questionbank.MaxLevel:
		session := e.session
		e.levelUp.Schedule(e.cfg.LevelUpDelay, func() { e.advanceToLevel(session, next) })
		return evs, e.sounds.PlayLevelUp
	case e.state.CurrentLevel >= questionbank.MaxLevel:
		evs = append(evs, e.victoryLocked())
		return evs, e.sounds.PlaySuccess
	default:
		// No level unlocked; the session stays on the results screen.
		return evs, e.sounds.PlayLevelUp
	}
}

func (e *Engine) advanceToLevel(session, level int) {
	e.mu.Lock()
	if e.session != session || e.state.Status != model.StatusLevelComplete {
		e.mu.Unlock()
		return
	}
	e.state.CurrentLevel = level
	e.loadLevelQuestions(level)
	e.state.Status = model.StatusPlaying
	if e.state.Lives < maxLives {
		e.state.Lives++
	}
	ev := LevelUpEvent{NewLevel: level, Lives: e.state.Lives}
	e.startTimerLocked()
	e.mu.Unlock()

	e.events.emit(ev)
}

// startTimerLocked launches the per-question countdown, replacing any
// previous one.
func (e *Engine) startTimerLocked() {
	e.timer.Start(e.cfg.TickInterval, e.tick)
}

func (e *Engine) tick() {
	e.mu.Lock()
	if e.state.Status != model.StatusPlaying {
		e.mu.Unlock()
		return
	}
	e.state.TimeRemaining--
	remaining := e.state.TimeRemaining

	evs := []Event{TimerTickEvent{TimeRemaining: remaining}}
	var cue func()
	if remaining <= 5 && remaining > 0 {
		cue = e.sounds.PlayHover // Warning ticks for the last seconds
	}

	if remaining <= 0 {
		timeUpEvs, timeUpCue := e.timeUpLocked()
		evs = append(evs, timeUpEvs...)
		cue = timeUpCue
	}
	e.mu.Unlock()

	if cue != nil {
		cue()
	}
	e.events.emit(evs...)
}

// timeUpLocked applies the timeout penalty: same as a wrong answer but no
// answer is recorded and a time-up event is emitted instead.
func (e *Engine) timeUpLocked() ([]Event, func()) {
	e.timer.Stop()

	e.state.Lives--
	e.state.Streak = 0

	ev := TimeUpEvent{LivesRemaining: e.state.Lives}
	if q := e.currentQuestionLocked(); q != nil {
		ev.CorrectAnswer = q.CorrectAnswer
	}
	evs := []Event{ev}

	if e.state.Lives <= 0 {
		evs = append(evs, e.gameOverLocked())
		return evs, e.sounds.PlayError
	}

	e.scheduleAdvanceLocked()
	return evs, e.sounds.PlayError
}

func (e *Engine) gameOverLocked() Event {
	e.timer.Stop()
	e.state.Status = model.StatusGameOver
	e.state.EndTime = time.Now()
	e.saveStatsLocked()

	return GameOverEvent{
		FinalScore: e.state.TotalScore,
		Level:      e.state.CurrentLevel,
		PlayTime:   e.state.EndTime.Sub(e.state.StartTime),
	}
}

func (e *Engine) victoryLocked() Event {
	e.timer.Stop()
	e.state.Status = model.StatusVictory
	e.state.EndTime = time.Now()
	e.state.TotalScore += victoryBonus
	e.saveStatsLocked()

	return VictoryEvent{
		FinalScore: e.state.TotalScore,
		PlayTime:   e.state.EndTime.Sub(e.state.StartTime),
	}
}

// UsePowerUp spends one use of the given power-up. Returns false when the
// power-up is unknown, exhausted, or no question is being played.
func (e *Engine) UsePowerUp(id string) bool {
	e.mu.Lock()
	if e.state.Status != model.StatusPlaying {
		e.mu.Unlock()
		return false
	}

	var powerUp *model.PowerUp
	for i := range e.state.PowerUps {
		if e.state.PowerUps[i].ID == id {
			powerUp = &e.state.PowerUps[i]
			break
		}
	}
	if powerUp == nil || powerUp.Uses <= 0 {
		e.mu.Unlock()
		return false
	}
	powerUp.Uses--

	var evs []Event
	var cue func()
	switch powerUp.Type {
	case model.PowerUpTimeBoost:
		e.state.TimeRemaining += timeBoostSeconds
	case model.PowerUpSkipQuestion:
		evs, cue = e.nextQuestionLocked()
	case model.PowerUpEliminateTwo, model.PowerUpDoublePoints:
		// Consumption only; the rendering layer applies the effect.
	}
	evs = append(evs, PowerUpUsedEvent{PowerUp: *powerUp})
	e.mu.Unlock()

	e.sounds.PlaySuccess()
	if cue != nil {
		cue()
	}
	e.events.emit(evs...)
	return true
}

// checkAchievementsLocked awards session achievements, each at most once.
func (e *Engine) checkAchievementsLocked() []Event {
	var evs []Event

	if e.state.Streak >= streakAchievementAt && !e.hasAchievementLocked("streak_5") {
		evs = append(evs, e.unlockLocked(model.Achievement{
			ID:          "streak_5",
			Name:        "NEURAL SYNCHRONIZATION",
			Description: "5 correct answers in a row",
			Icon:        "🔥",
			UnlockedAt:  time.Now(),
			Points:      250,
		}))
	}

	if e.state.TotalScore >= scoreAchievementAt && !e.hasAchievementLocked("score_10k") {
		evs = append(evs, e.unlockLocked(model.Achievement{
			ID:          "score_10k",
			Name:        "ALGORITHM MASTER",
			Description: "Reached 10,000 points",
			Icon:        "👑",
			UnlockedAt:  time.Now(),
			Points:      500,
		}))
	}

	return evs
}

func (e *Engine) hasAchievementLocked(id string) bool {
	for _, a := range e.state.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (e *Engine) unlockLocked(a model.Achievement) Event {
	e.state.Achievements = append(e.state.Achievements, a)
	e.state.TotalScore += a.Points
	return AchievementUnlockedEvent{Achievement: a}
}

// PauseGame suspends the countdown. Valid only while playing.
func (e *Engine) PauseGame() {
	e.mu.Lock()
	if e.state.Status != model.StatusPlaying {
		e.mu.Unlock()
		return
	}
	e.timer.Stop()
	e.state.Status = model.StatusPaused
	e.mu.Unlock()

	e.events.emit(GamePausedEvent{})
}

// ResumeGame restarts the countdown with the remaining time intact. Valid
// only while paused.
func (e *Engine) ResumeGame() {
	e.mu.Lock()
	if e.state.Status != model.StatusPaused {
		e.mu.Unlock()
		return
	}
	e.state.Status = model.StatusPlaying

	var evs []Event
	var cue func()
	if e.pendingAdvance {
		e.pendingAdvance = false
		evs, cue = e.nextQuestionLocked()
	} else {
		e.startTimerLocked()
	}
	e.mu.Unlock()

	if cue != nil {
		cue()
	}
	e.events.emit(GameResumedEvent{})
	e.events.emit(evs...)
}

// ResetGame force-returns to the menu, discarding the session without
// persisting stats.
func (e *Engine) ResetGame() {
	e.advance.Cancel()
	e.levelUp.Cancel()

	e.mu.Lock()
	e.timer.Stop()
	e.session++
	e.state = initialState()
	e.bestStreak = 0
	e.pendingAdvance = false
	e.mu.Unlock()

	e.events.emit(GameResetEvent{})
}

// Snapshot returns a copy of the current game state.
func (e *Engine) Snapshot() model.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() model.GameState {
	snapshot := e.state
	snapshot.Questions = append([]model.Question(nil), e.state.Questions...)
	snapshot.Answers = append([]*model.Answer(nil), e.state.Answers...)
	snapshot.PowerUps = append([]model.PowerUp(nil), e.state.PowerUps...)
	snapshot.Achievements = append([]model.Achievement(nil), e.state.Achievements...)
	return snapshot
}

// Stats returns the persisted champion stats.
func (e *Engine) Stats(ctx context.Context) (*model.GameStats, error) {
	return e.store.Load(ctx)
}

// saveStatsLocked merges the session into the stored champion stats and
// writes the whole record back. Storage failures are logged, never fatal.
func (e *Engine) saveStatsLocked() {
	ctx := context.Background()

	stats, err := e.store.Load(ctx)
	if err != nil {
		log.Printf("Failed to load stats, starting from defaults: %v", err)
		stats = model.DefaultGameStats()
	}

	stats.TotalGamesPlayed++
	if e.state.CurrentLevel > stats.HighestLevel {
		stats.HighestLevel = e.state.CurrentLevel
	}
	stats.TotalScore += e.state.TotalScore

	score := questionbank.ComputeScore(e.state.Questions, e.state.Answers)
	stats.TotalCorrectAnswers += score.CorrectAnswers
	stats.TotalQuestions += len(e.state.Questions)
	if stats.TotalQuestions > 0 {
		stats.AverageAccuracy = float64(stats.TotalCorrectAnswers) / float64(stats.TotalQuestions) * 100
	}

	if !e.state.EndTime.IsZero() {
		playTime := e.state.EndTime.Sub(e.state.StartTime).Milliseconds()
		if stats.FastestCompletion == 0 || playTime < stats.FastestCompletion {
			stats.FastestCompletion = playTime
		}
	}

	if e.bestStreak > stats.LongestStreak {
		stats.LongestStreak = e.bestStreak
	}
	stats.Achievements = append(stats.Achievements, e.state.Achievements...)

	if err := e.store.Save(ctx, stats); err != nil {
		log.Printf("Failed to save stats: %v", err)
	}
}
