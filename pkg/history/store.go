// Package history is the JSON-file fallback store used in simulation mode:
// per-operator finished-session records kept in a single file on disk.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/model"
)

const storeFileName = "store.json"

// Store persists per-operator history records in a JSON file. Writes go
// through a temp file and rename so a crash never leaves a torn file.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

type storeFile struct {
	Histories map[string][]model.HistoryEntry `json:"historiques"`
}

// NewStore creates a store rooted at dataDir, creating the directory and an
// empty store file if needed.
func NewStore(dataDir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	s := &Store{
		path:   filepath.Join(dataDir, storeFileName),
		logger: logger.Named("history-store"),
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := s.write(&storeFile{Histories: map[string][]model.HistoryEntry{}}); err != nil {
			return nil, err
		}
		s.logger.Info("Initialized history store", zap.String("path", s.path))
	}

	return s, nil
}

// Append adds a record to the front of an operator's history.
func (s *Store) Append(operatorID string, entry model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}

	file.Histories[operatorID] = append([]model.HistoryEntry{entry}, file.Histories[operatorID]...)
	return s.write(file)
}

// Records returns an operator's history, newest first. Unknown operators get
// an empty slice.
func (s *Store) Records(operatorID string) ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return nil, err
	}

	records := file.Histories[operatorID]
	if records == nil {
		records = []model.HistoryEntry{}
	}
	return records, nil
}

// All returns every operator's history keyed by operator id.
func (s *Store) All() (map[string][]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return nil, err
	}
	return file.Histories, nil
}

func (s *Store) read() (*storeFile, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history store: %w", err)
	}

	file := &storeFile{}
	if err := json.Unmarshal(raw, file); err != nil {
		return nil, fmt.Errorf("failed to parse history store %s: %w", s.path, err)
	}
	if file.Histories == nil {
		file.Histories = map[string][]model.HistoryEntry{}
	}
	return file, nil
}

func (s *Store) write(file *storeFile) error {
	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write history store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace history store: %w", err)
	}
	return nil
}
