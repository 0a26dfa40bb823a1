package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"
)

// LocalStore keeps avatars in a directory on disk.
type LocalStore struct {
	dir string
	now clock
}

// NewLocalStore creates dir if needed and returns a store rooted there.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, now: time.Now}, nil
}

// Dir is the directory served at /images.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes content to a new file. The file is created exclusively; when the
// millisecond name is already taken the stamp is advanced until a free one is
// found, so concurrent uploads never overwrite each other.
func (s *LocalStore) Save(ctx context.Context, content io.ReadSeeker, ext string) (string, error) {
	millis := s.now().UnixMilli()
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		name := avatarName(millis+int64(attempt), ext)
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create avatar file: %w", err)
		}

		if _, err := io.Copy(f, content); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", fmt.Errorf("failed to write avatar file: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(f.Name())
			return "", fmt.Errorf("failed to close avatar file: %w", err)
		}
		return name, nil
	}
	return "", fmt.Errorf("no free avatar name after %d attempts", maxNameAttempts)
}

// Open returns the file for name.
func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	if !validName(name) {
		return nil, "", ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open avatar %s: %w", name, err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return f, contentType, nil
}
