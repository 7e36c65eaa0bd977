// Package persistence stores the local session.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/coachly/internal/identity/domain"
)

// sessionFile is the on-disk layout. The anonymous id belongs to the device
// and outlives sign-in until the purchase backend has aliased it.
type sessionFile struct {
	domain.Session
	AnonymousID string `json:"anonymous_app_user_id,omitempty"`
}

func (f sessionFile) isEmpty() bool {
	return f.Session.IsZero() && f.AnonymousID == ""
}

// FileSessionRepository keeps the session in a JSON file.
type FileSessionRepository struct {
	filePath string
	mu       sync.RWMutex
}

var _ domain.Repository = (*FileSessionRepository)(nil)

// NewFileSessionRepository creates a file-backed session repository.
func NewFileSessionRepository(filePath string) *FileSessionRepository {
	return &FileSessionRepository{filePath: filePath}
}

// Load returns the zero session if no session file exists.
func (r *FileSessionRepository) Load(ctx context.Context) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, err := r.read()
	if err != nil {
		return domain.Session{}, err
	}
	return f.Session, nil
}

func (r *FileSessionRepository) Save(ctx context.Context, session domain.Session) error {
	return r.update(func(f *sessionFile) { f.Session = session })
}

// Clear signs out. A stored anonymous id is kept.
func (r *FileSessionRepository) Clear(ctx context.Context) error {
	return r.update(func(f *sessionFile) { f.Session = domain.Session{} })
}

// LoadAnonymousID returns "" when none is stored.
func (r *FileSessionRepository) LoadAnonymousID(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, err := r.read()
	if err != nil {
		return "", err
	}
	return f.AnonymousID, nil
}

func (r *FileSessionRepository) SaveAnonymousID(ctx context.Context, id string) error {
	return r.update(func(f *sessionFile) { f.AnonymousID = id })
}

func (r *FileSessionRepository) ClearAnonymousID(ctx context.Context) error {
	return r.update(func(f *sessionFile) { f.AnonymousID = "" })
}

func (r *FileSessionRepository) read() (sessionFile, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sessionFile{}, nil
		}
		return sessionFile{}, err
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return sessionFile{}, err
	}
	return f, nil
}

// update applies fn and writes the result. An empty file is removed.
func (r *FileSessionRepository) update(fn func(*sessionFile)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.read()
	if err != nil {
		return err
	}
	fn(&f)

	if f.isEmpty() {
		err := os.Remove(r.filePath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(r.filePath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.filePath, data, 0o600)
}
