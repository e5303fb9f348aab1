// Package store persists the champion stats record across sessions.
package store

import (
	"context"

	"mlarcade/internal/model"
)

// Store reads and writes the single champion-stats record. Load returns
// defaults (never an error) when no record exists or the stored record
// cannot be parsed; corruption is a recovery path, not a failure.
type Store interface {
	Load(ctx context.Context) (*model.GameStats, error)
	Save(ctx context.Context, stats *model.GameStats) error
}

// statsKey is the fixed name the record is stored under.
const statsKey = "mlarcade:stats"
