package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// maxNameAttempts bounds the " (n)" suffixes tried for a taken name.
const maxNameAttempts = 1000

type LocalSink struct {
	baseDir string
}

func NewLocalSink(baseDir string) (*LocalSink, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	return &LocalSink{baseDir: baseDir}, nil
}

// Create writes into a hidden temporary file that is renamed into place on
// Close. The final name is reserved up front with O_EXCL.
func (l *LocalSink) Create(ctx context.Context, name string) (Writer, error) {
	name, err := CleanName(name)
	if err != nil {
		return nil, err
	}

	final, err := l.reserve(name)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(l.baseDir, ".sharebox-*")
	if err != nil {
		os.Remove(final)
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &localWriter{file: tmp, final: final}, nil
}

func (l *LocalSink) reserve(name string) (string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		path := filepath.Join(l.baseDir, candidateName(name, i))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to reserve %s: %w", path, err)
		}
		f.Close()
		return path, nil
	}
	return "", fmt.Errorf("no free name for %s in %s", name, l.baseDir)
}

type localWriter struct {
	file  *os.File
	final string
	done  bool
}

func (w *localWriter) Write(p []byte) (int, error) {
	return w.file.Write(p)
}

func (w *localWriter) Name() string {
	return filepath.Base(w.final)
}

func (w *localWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	if err := w.file.Close(); err != nil {
		os.Remove(w.file.Name())
		os.Remove(w.final)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(w.file.Name(), w.final); err != nil {
		os.Remove(w.file.Name())
		os.Remove(w.final)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

func (w *localWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true

	w.file.Close()
	os.Remove(w.final)
	return os.Remove(w.file.Name())
}

func (l *LocalSink) Exists(ctx context.Context, name string) (bool, error) {
	name, err := CleanName(name)
	if err != nil {
		return false, err
	}
	fullPath := filepath.Join(l.baseDir, name)
	log.Debug().Str("path", fullPath).Msg("checking file existence")

	_, err = os.Stat(fullPath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("error checking file existence: %w", err)
}

func (l *LocalSink) Location(name string) string {
	return filepath.Join(l.baseDir, name)
}

func (l *LocalSink) ListFiles(ctx context.Context, prefix string) ([]FileInfo, error) {
	var files []FileInfo

	entries, err := os.ReadDir(l.baseDir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".sharebox-") || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}

		contentType, err := detectContentType(filepath.Join(l.baseDir, e.Name()))
		if err != nil {
			return nil, err
		}

		files = append(files, FileInfo{
			Name:         e.Name(),
			Size:         info.Size(),
			ContentType:  contentType,
			ModifiedTime: info.ModTime(),
		})
	}

	return files, nil
}

func detectContentType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to detect type of %s: %w", path, err)
	}
	return mtype.String(), nil
}

func (l *LocalSink) Close() error {
	return nil
}
