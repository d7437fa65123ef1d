package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LocalArchiver writes archived values below a directory on disk.
type LocalArchiver struct {
	BaseDir string
	now     func() time.Time
}

// NewLocalArchiver constructs an archiver that writes to baseDir, creating it
// when needed.
func NewLocalArchiver(baseDir string) (*LocalArchiver, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &LocalArchiver{BaseDir: baseDir, now: time.Now}, nil
}

// Archive writes entry.Data to a new file and returns its path.
func (l *LocalArchiver) Archive(_ context.Context, entry Entry) (Result, error) {
	if err := validate(entry); err != nil {
		return Result{}, err
	}

	key := objectKey("", entry, l.now())
	full := filepath.Join(l.BaseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Result{}, fmt.Errorf("create archive dir: %w", err)
	}
	if err := os.WriteFile(full, entry.Data, 0o644); err != nil {
		return Result{}, fmt.Errorf("write archive file: %w", err)
	}

	return Result{Key: key, Location: full}, nil
}
