// Package storage writes received files to their destination.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"sharebox-go/internal/config"
)

var ErrInvalidName = errors.New("invalid file name")

type FileInfo struct {
	Name         string
	Size         int64
	ContentType  string
	ModifiedTime time.Time
}

// Writer receives one file. Close commits it; Abort discards everything
// written so far.
type Writer interface {
	io.WriteCloser
	Abort() error
	// Name is the name the file is stored under, which may differ from the
	// requested one when that was taken.
	Name() string
}

// Sink is a destination for received files.
type Sink interface {
	// Create opens a writer for name. Existing files are never overwritten.
	Create(ctx context.Context, name string) (Writer, error)

	Exists(ctx context.Context, name string) (bool, error)

	ListFiles(ctx context.Context, prefix string) ([]FileInfo, error)

	// Location describes where name ends up, for display.
	Location(name string) string

	Close() error
}

// NewSink creates a sink based on configuration
func NewSink(cfg config.StorageConfig) (Sink, error) {
	switch cfg.Provider {
	case "local":
		return NewLocalSink(cfg.LocalPath)
	case "gcs":
		return NewGCSSink(cfg.ProjectID, cfg.BucketName)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// CleanName reduces a remote file name to a single safe path element.
func CleanName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." || name == ".." || name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

// candidateName returns name for i == 0 and "stem (i).ext" after that.
func candidateName(name string, i int) string {
	if i == 0 {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = ext, ""
	}
	return fmt.Sprintf("%s (%d)%s", stem, i, ext)
}
