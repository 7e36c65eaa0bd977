package flags

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileFlagStore keeps flags in a single JSON file keyed by scope.
type FileFlagStore struct {
	filePath string
	mu       sync.RWMutex
}

// NewFileFlagStore creates a file-backed flag store.
func NewFileFlagStore(filePath string) *FileFlagStore {
	return &FileFlagStore{filePath: filePath}
}

// FilePath returns the path to the flag file.
func (s *FileFlagStore) FilePath() string {
	return s.filePath
}

// Load retrieves the flag of scope. A missing file means no flag.
func (s *FileFlagStore) Load(ctx context.Context, scope string) (PremiumFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.readAll()
	if err != nil {
		return PremiumFlag{}, err
	}
	return FlagFromValues(all[scope]), nil
}

// Save persists the flag of scope.
func (s *FileFlagStore) Save(ctx context.Context, scope string, flag PremiumFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return err
	}
	all[scope] = flag.Values()
	return s.writeAll(all)
}

// Clear removes the flag of scope.
func (s *FileFlagStore) Clear(ctx context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return err
	}
	if _, ok := all[scope]; !ok {
		return nil
	}
	delete(all, scope)
	return s.writeAll(all)
}

func (s *FileFlagStore) readAll() (map[string]map[string]string, error) {
	all := make(map[string]map[string]string)

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return all, nil
		}
		return nil, fmt.Errorf("read flag file: %w", err)
	}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode flag file: %w", err)
	}
	return all, nil
}

func (s *FileFlagStore) writeAll(all map[string]map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	// Write with restrictive permissions (user read/write only)
	return os.WriteFile(s.filePath, data, 0o600)
}
