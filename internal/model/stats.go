package model

// GameStats is the durable cross-session aggregate ("champion stats"),
// distinct from the per-session GameState. It is read once at engine
// construction and rewritten wholesale on every game over or victory.
type GameStats struct {
	TotalGamesPlayed    int           `json:"totalGamesPlayed" bson:"totalGamesPlayed"`
	HighestLevel        int           `json:"highestLevel" bson:"highestLevel"`
	TotalScore          int           `json:"totalScore" bson:"totalScore"` // Lifetime sum
	TotalCorrectAnswers int           `json:"totalCorrectAnswers" bson:"totalCorrectAnswers"`
	TotalQuestions      int           `json:"totalQuestions" bson:"totalQuestions"`
	AverageAccuracy     float64       `json:"averageAccuracy" bson:"averageAccuracy"`
	FastestCompletion   int64         `json:"fastestCompletion" bson:"fastestCompletion"` // Milliseconds, 0 = unset
	LongestStreak       int           `json:"longestStreak" bson:"longestStreak"`
	Achievements        []Achievement `json:"achievements" bson:"achievements"`
}

// DefaultGameStats returns the stats record used when nothing has been
// persisted yet, or when the persisted record cannot be parsed.
func DefaultGameStats() *GameStats {
	return &GameStats{
		HighestLevel: 1,
		Achievements: []Achievement{},
	}
}
