package engine

import (
	"sync"
	"time"

	"mlarcade/internal/model"
)

// EventKind identifies an engine event
type EventKind string

const (
	EventGameStarted         EventKind = "game_started"
	EventCorrectAnswer       EventKind = "correct_answer"
	EventWrongAnswer         EventKind = "wrong_answer"
	EventTimeUp              EventKind = "time_up"
	EventNextQuestion        EventKind = "next_question"
	EventTimerTick           EventKind = "timer_tick"
	EventLevelComplete       EventKind = "level_complete"
	EventLevelUp             EventKind = "level_up"
	EventAchievementUnlocked EventKind = "achievement_unlocked"
	EventGameOver            EventKind = "game_over"
	EventVictory             EventKind = "victory"
	EventPowerUpUsed         EventKind = "power_up_used"
	EventGamePaused          EventKind = "game_paused"
	EventGameResumed         EventKind = "game_resumed"
	EventGameReset           EventKind = "game_reset"
)

// EventKinds lists every kind the engine emits, in a stable order.
var EventKinds = []EventKind{
	EventGameStarted,
	EventCorrectAnswer,
	EventWrongAnswer,
	EventTimeUp,
	EventNextQuestion,
	EventTimerTick,
	EventLevelComplete,
	EventLevelUp,
	EventAchievementUnlocked,
	EventGameOver,
	EventVictory,
	EventPowerUpUsed,
	EventGamePaused,
	EventGameResumed,
	EventGameReset,
}

// Event is an engine notification. Each kind carries its own payload type.
type Event interface {
	Kind() EventKind
}

// GameStartedEvent carries a snapshot of the freshly initialized state.
type GameStartedEvent struct {
	State model.GameState `json:"state"`
}

// CorrectAnswerEvent carries the point breakdown for a correct answer.
type CorrectAnswerEvent struct {
	Points    int `json:"points"`
	Streak    int `json:"streak"`
	TimeBonus int `json:"timeBonus"`
}

// WrongAnswerEvent carries the correction shown to the player.
type WrongAnswerEvent struct {
	CorrectAnswer  model.Answer `json:"correctAnswer"`
	Explanation    string       `json:"explanation"`
	LivesRemaining int          `json:"livesRemaining"`
}

// TimeUpEvent is emitted when the countdown expires with no answer.
type TimeUpEvent struct {
	LivesRemaining int          `json:"livesRemaining"`
	CorrectAnswer  model.Answer `json:"correctAnswer"`
}

// NextQuestionEvent announces the question now being played.
type NextQuestionEvent struct {
	Question model.Question `json:"question"`
}

// TimerTickEvent carries the remaining seconds after each tick.
type TimerTickEvent struct {
	TimeRemaining int `json:"timeRemaining"`
}

// LevelCompleteEvent carries the score breakdown for a finished level.
type LevelCompleteEvent struct {
	Level      int                `json:"level"`
	Score      model.ScoreSummary `json:"score"`
	Bonus      int                `json:"bonus"`
	TotalScore int                `json:"totalScore"`
}

// LevelUpEvent announces advancement to a newly unlocked level.
type LevelUpEvent struct {
	NewLevel int `json:"newLevel"`
	Lives    int `json:"lives"`
}

// AchievementUnlockedEvent carries the achievement just granted.
type AchievementUnlockedEvent struct {
	Achievement model.Achievement `json:"achievement"`
}

// GameOverEvent carries the final tally of a lost session.
type GameOverEvent struct {
	FinalScore int           `json:"finalScore"`
	Level      int           `json:"level"`
	PlayTime   time.Duration `json:"playTime"`
}

// VictoryEvent carries the final tally of a completed run.
type VictoryEvent struct {
	FinalScore int           `json:"finalScore"`
	PlayTime   time.Duration `json:"playTime"`
}

// PowerUpUsedEvent carries the power-up after its use count was spent.
type PowerUpUsedEvent struct {
	PowerUp model.PowerUp `json:"powerUp"`
}

// GamePausedEvent marks the countdown being suspended.
type GamePausedEvent struct{}

// GameResumedEvent marks the countdown being restarted.
type GameResumedEvent struct{}

// GameResetEvent marks a forced return to the menu.
type GameResetEvent struct{}

func (GameStartedEvent) Kind() EventKind         { return EventGameStarted }
func (CorrectAnswerEvent) Kind() EventKind       { return EventCorrectAnswer }
func (WrongAnswerEvent) Kind() EventKind         { return EventWrongAnswer }
func (TimeUpEvent) Kind() EventKind              { return EventTimeUp }
func (NextQuestionEvent) Kind() EventKind        { return EventNextQuestion }
func (TimerTickEvent) Kind() EventKind           { return EventTimerTick }
func (LevelCompleteEvent) Kind() EventKind       { return EventLevelComplete }
func (LevelUpEvent) Kind() EventKind             { return EventLevelUp }
func (AchievementUnlockedEvent) Kind() EventKind { return EventAchievementUnlocked }
func (GameOverEvent) Kind() EventKind            { return EventGameOver }
func (VictoryEvent) Kind() EventKind             { return EventVictory }
func (PowerUpUsedEvent) Kind() EventKind         { return EventPowerUpUsed }
func (GamePausedEvent) Kind() EventKind          { return EventGamePaused }
func (GameResumedEvent) Kind() EventKind         { return EventGameResumed }
func (GameResetEvent) Kind() EventKind           { return EventGameReset }

// Handler receives dispatched events.
type Handler func(Event)

// Subscription identifies a registered handler so it can be removed.
type Subscription int

type subscriber struct {
	id      Subscription
	handler Handler
}

// dispatcher routes events to handlers registered per kind. Handlers for a
// kind run in subscription order. Dispatch never runs while the engine
// state lock is held, so handlers may call back into the engine.
type dispatcher struct {
	mu     sync.RWMutex
	subs   map[EventKind][]subscriber
	nextID Subscription
}

func newDispatcher() *dispatcher {
	return &dispatcher{subs: make(map[EventKind][]subscriber)}
}

func (d *dispatcher) on(kind EventKind, h Handler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.subs[kind] = append(d.subs[kind], subscriber{id: d.nextID, handler: h})
	return d.nextID
}

func (d *dispatcher) off(kind EventKind, id Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	subs := d.subs[kind]
	for i, s := range subs {
		if s.id == id {
			d.subs[kind] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

func (d *dispatcher) emit(events ...Event) {
	for _, ev := range events {
		d.mu.RLock()
		subs := d.subs[ev.Kind()]
		handlers := make([]Handler, len(subs))
		for i, s := range subs {
			handlers[i] = s.handler
		}
		d.mu.RUnlock()

		for _, h := range handlers {
			h(ev)
		}
	}
}
