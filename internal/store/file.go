package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"mlarcade/internal/model"
)

// FileStore keeps the stats record in a single JSON file, the local
// equivalent of the browser's localStorage record.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (*model.GameStats, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return model.DefaultGameStats(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stats file: %w", err)
	}

	var stats model.GameStats
	if err := json.Unmarshal(data, &stats); err != nil {
		log.Printf("Stats file %s is corrupt, falling back to defaults: %v", s.path, err)
		return model.DefaultGameStats(), nil
	}
	return &stats, nil
}

func (s *FileStore) Save(ctx context.Context, stats *model.GameStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create stats dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}
	return nil
}
