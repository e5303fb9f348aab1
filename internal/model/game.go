package model

import "time"

// GameStatus is the engine's state machine position
type GameStatus string

const (
	StatusMenu          GameStatus = "menu"
	StatusPlaying       GameStatus = "playing"
	StatusPaused        GameStatus = "paused"
	StatusGameOver      GameStatus = "game_over"
	StatusLevelComplete GameStatus = "level_complete"
	StatusVictory       GameStatus = "victory"
)

// PowerUpType defines the effect of a power-up
type PowerUpType string

const (
	PowerUpTimeBoost    PowerUpType = "time_boost"    // Adds seconds to the countdown
	PowerUpSkipQuestion PowerUpType = "skip_question" // Advance without penalty
	PowerUpEliminateTwo PowerUpType = "eliminate_two" // UI hint: removes two wrong options
	PowerUpDoublePoints PowerUpType = "double_points" // UI hint: doubles next correct answer
)

// PowerUp is a limited-use, player-invoked modifier
type PowerUp struct {
	ID          string      `json:"id"`
	Type        PowerUpType `json:"type"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Uses        int         `json:"uses"` // Remaining uses, floor 0
}

// Achievement is immutable once unlocked
type Achievement struct {
	ID          string    `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Icon        string    `json:"icon" bson:"icon"`
	UnlockedAt  time.Time `json:"unlockedAt" bson:"unlockedAt"`
	Points      int       `json:"points" bson:"points"` // Bonus awarded once
}

// GameState is the single mutable aggregate owned by the game engine.
// Answers holds one slot per question; nil means unanswered.
type GameState struct {
	CurrentLevel         int           `json:"currentLevel"`
	TotalScore           int           `json:"totalScore"`
	Lives                int           `json:"lives"`
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	Questions            []Question    `json:"questions"`
	Answers              []*Answer     `json:"answers"`
	TimeRemaining        int           `json:"timeRemaining"` // seconds
	Status               GameStatus    `json:"gameStatus"`
	Streak               int           `json:"streak"` // Consecutive correct answers
	PowerUps             []PowerUp     `json:"powerUps"`
	Achievements         []Achievement `json:"achievements"`
	StartTime            time.Time     `json:"startTime,omitzero"`
	EndTime              time.Time     `json:"endTime,omitzero"`
}

// ScoreSummary is the result of scoring a question set against answers
type ScoreSummary struct {
	TotalScore     int     `json:"totalScore"`
	CorrectAnswers int     `json:"correctAnswers"`
	TotalQuestions int     `json:"totalQuestions"`
	Accuracy       float64 `json:"accuracy"` // 0-100
}

// LevelRequirement maps a level to its entry threshold and question count
type LevelRequirement struct {
	MinScore       int `json:"minScore"`
	QuestionsCount int `json:"questionsCount"`
}
