// Package archive keeps a copy of a project field before it is rewritten in
// place, so a repair can always be undone by hand.
package archive

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrArchiveDisabled indicates that no archive backend is configured.
var ErrArchiveDisabled = errors.New("archive disabled")

// Entry is one value to archive.
type Entry struct {
	ProjectID string
	Field     string
	Reason    string
	Data      []byte
}

// Result identifies the stored copy.
type Result struct {
	Key      string
	Location string
}

// Archiver hides the backing implementation for storing archived values.
type Archiver interface {
	Archive(ctx context.Context, entry Entry) (Result, error)
}

type disabledArchiver struct{}

func (disabledArchiver) Archive(_ context.Context, _ Entry) (Result, error) {
	return Result{}, ErrArchiveDisabled
}

// Disabled returns an archiver that always signals a disabled archive.
func Disabled() Archiver {
	return disabledArchiver{}
}

// Config selects and configures a backend. Bucket and Region enable S3;
// otherwise LocalDir enables the filesystem backend.
type Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	KeyPrefix      string
	ForcePathStyle bool
	LocalDir       string
}

// New wires the backend the configuration asks for, or a disabled archiver.
func New(ctx context.Context, cfg Config) (Archiver, error) {
	switch {
	case cfg.Bucket != "" && cfg.Region != "":
		return NewS3Archiver(ctx, cfg)
	case cfg.LocalDir != "":
		return NewLocalArchiver(cfg.LocalDir)
	default:
		return Disabled(), nil
	}
}

func validate(entry Entry) error {
	if entry.ProjectID == "" {
		return errors.New("archive entry needs a project id")
	}
	if entry.Field == "" {
		return errors.New("archive entry needs a field")
	}
	return nil
}

// objectKey lays out archived copies as <prefix>/<project>/<time>-<field>-<uuid>.json.
func objectKey(prefix string, entry Entry, now time.Time) string {
	name := fmt.Sprintf("%s-%s-%s.json", now.UTC().Format("20060102T150405Z"), safeSegment(entry.Field), uuid.NewString())
	return path.Join(strings.Trim(prefix, "/"), safeSegment(entry.ProjectID), name)
}

func safeSegment(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, s)
}
