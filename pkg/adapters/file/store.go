package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/rapidhire/pkg/domain"
)

// DefaultSessionDir is used when no base path is configured.
var DefaultSessionDir = filepath.Join(".rapidhire", "sessions")

const ext = ".json"

// Session IDs are "<chat>:<user>"; ':' is swapped so names stay portable.
var (
	toFileName   = strings.NewReplacer(":", "~", "/", "_")
	fromFileName = strings.NewReplacer("~", ":")
)

// Store implements ports.StateStore using the local filesystem.
// It stores sessions as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to DefaultSessionDir.
func New(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultSessionDir
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.BasePath, toFileName.Replace(sessionID)+ext)
}

// Save persists the session state to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Same directory as the destination, rename is only atomic within one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(sessionID)); err != nil {
		return fmt.Errorf("failed to rename temp file to valid session: %w", err)
	}
	return nil
}

// Load retrieves the session state from a JSON file.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}

	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}

	return &state, nil
}

// Delete removes the session file.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}

	err := os.Remove(s.path(sessionID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns all stored session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var sessions []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		sessions = append(sessions, fromFileName.Replace(strings.TrimSuffix(name, ext)))
	}

	return sessions, nil
}
