package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/rapidhire/pkg/domain"
)

// DeadLetterEntry is one line of the dead-letter file.
type DeadLetterEntry struct {
	Time        time.Time          `json:"time"`
	SessionID   string             `json:"session_id"`
	Error       string             `json:"error"`
	Application domain.Application `json:"application"`
	Row         []string           `json:"row"`
}

// DeadLetter implements ports.DeadLetter as an append-only JSON lines file.
// Operators replay its rows into the sheet by hand.
type DeadLetter struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewDeadLetter creates a dead-letter writer for path. The file is created on first use.
func NewDeadLetter(path string) *DeadLetter {
	return &DeadLetter{path: path, now: time.Now}
}

// Path returns the file the entries are written to.
func (d *DeadLetter) Path() string {
	return d.path
}

// Put appends app and the failure cause to the file.
func (d *DeadLetter) Put(ctx context.Context, sessionID string, app domain.Application, cause error) error {
	now := d.now()
	entry := DeadLetterEntry{
		Time:        now,
		SessionID:   sessionID,
		Application: app,
		Row:         app.Row(now, ""),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal dead letter: %w", err)
	}
	line = append(line, '\n')

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("failed to ensure dead letter directory: %w", err)
	}
	f, err := os.OpenFile(d.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open dead letter file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to write dead letter: %w", err)
	}
	return f.Sync()
}
