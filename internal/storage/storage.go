package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned by Open when no avatar has the given name.
var ErrNotFound = errors.New("avatar not found")

// maxNameAttempts bounds how far Save advances the timestamp looking for a
// free name.
const maxNameAttempts = 1000

// AvatarStore persists uploaded avatar files under generated names.
type AvatarStore interface {
	// Save stores the content and returns its generated name,
	// "<unix-millis><ext>".
	Save(ctx context.Context, content io.ReadSeeker, ext string) (string, error)
	// Open returns the stored bytes and their content type.
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// Extension returns the extension of an uploaded file name, including the dot.
// Characters other than ASCII letters, digits, '-' and '_' are dropped so the
// stored name is always a plain URL path segment.
func Extension(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filepath.Base(filename)), ".")
	ext = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, ext)
	if ext == "" {
		return ""
	}
	return "." + ext
}

// avatarName builds the stored name for a millisecond timestamp.
func avatarName(millis int64, ext string) string {
	return strconv.FormatInt(millis, 10) + ext
}

// validName rejects names that could escape the avatar namespace.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

type clock func() time.Time
