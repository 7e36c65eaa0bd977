// Package persistence stores unified profiles on disk.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/coachly/internal/profiles/domain"
)

// FileRepository implements domain.Repository with a JSON file holding
// every profile keyed by user id.
type FileRepository struct {
	filePath string
	mu       sync.RWMutex
}

var _ domain.Repository = (*FileRepository)(nil)

// NewFileRepository creates a file-backed profile repository.
func NewFileRepository(filePath string) *FileRepository {
	return &FileRepository{filePath: filePath}
}

// FilePath returns the path to the profile file.
func (r *FileRepository) FilePath() string {
	return r.filePath
}

func (r *FileRepository) Load(ctx context.Context, userID string) (*domain.UnifiedProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all, err := r.readAll()
	if err != nil {
		return nil, err
	}
	profile, ok := all[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (r *FileRepository) Save(ctx context.Context, profile *domain.UnifiedProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.readAll()
	if err != nil {
		return err
	}
	all[profile.UserID] = profile

	if err := os.MkdirAll(filepath.Dir(r.filePath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.filePath, data, 0o600)
}

func (r *FileRepository) readAll() (map[string]*domain.UnifiedProfile, error) {
	all := make(map[string]*domain.UnifiedProfile)
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return all, nil
		}
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode profile file: %w", err)
	}
	return all, nil
}
