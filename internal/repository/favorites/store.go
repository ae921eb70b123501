// Package favorites persists the user's liked recipe identifiers in a
// local JSON file. The store is deliberately forgiving: a missing or
// corrupt file yields an empty list and a log line, never an error to the
// caller.
package favorites

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type payload struct {
	Favorites []int `json:"favorites"`
}

// Store reads and writes the favorites file.
type Store struct {
	path   string
	logger *zap.Logger
}

// New creates a favorites store backed by the given file path.
func New(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load returns the saved favorite identifiers. Missing or unreadable
// files return an empty list.
func (s *Store) Load() []int {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("No favorites file yet", zap.String("path", s.path))
		} else {
			s.logger.Error("Failed to read favorites", zap.String("path", s.path), zap.Error(err))
		}
		return []int{}
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Error("Corrupt favorites file", zap.String("path", s.path), zap.Error(err))
		return []int{}
	}
	if p.Favorites == nil {
		return []int{}
	}

	s.logger.Info("Favorites loaded",
		zap.String("path", s.path),
		zap.Int("count", len(p.Favorites)),
	)
	return p.Favorites
}

// Save writes the favorite identifiers, creating parent directories as
// needed. Returns false on failure.
func (s *Store) Save(ids []int) bool {
	if ids == nil {
		ids = []int{}
	}

	data, err := json.MarshalIndent(payload{Favorites: ids}, "", "  ")
	if err != nil {
		s.logger.Error("Failed to encode favorites", zap.Error(err))
		return false
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.logger.Error("Failed to create favorites dir", zap.String("dir", dir), zap.Error(err))
			return false
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Error("Failed to write favorites", zap.String("path", s.path), zap.Error(err))
		return false
	}

	s.logger.Info("Favorites saved",
		zap.String("path", s.path),
		zap.Int("count", len(ids)),
	)
	return true
}
