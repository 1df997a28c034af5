package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// ChunkSize is the buffer size used when streaming media to disk.
	ChunkSize = 8 * 1024

	dirPermissions  = 0755
	filePermissions = 0644
)

var (
	// ErrInvalidName is returned for names that could escape the storage directory.
	ErrInvalidName = errors.New("store: invalid filename")
	// ErrNotFound is returned when no regular file exists under the name.
	ErrNotFound = errors.New("store: file not found")
)

// Store keeps saved media in a single flat directory. Writes to the same
// name are last-write-wins; nothing is locked or cached in memory.
type Store struct {
	dir string
}

// NewStore resolves dir to an absolute path and creates it if needed.
func NewStore(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("store: failed to resolve %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, dirPermissions); err != nil {
		return nil, fmt.Errorf("store: failed to create %q: %w", abs, err)
	}
	log.Debug().Str("dir", abs).Msg("store: ready")
	return &Store{dir: abs}, nil
}

// Dir returns the absolute storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// Resolve maps a bare filename to its absolute path inside the storage
// directory. Names with separators, dot segments, or that clean to a path
// outside the directory are rejected with ErrInvalidName.
func (s *Store) Resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", ErrInvalidName
	}
	full := filepath.Join(s.dir, name)
	rel, err := filepath.Rel(s.dir, full)
	if err != nil || rel != name {
		return "", ErrInvalidName
	}
	return full, nil
}

// Stat returns the path of an existing regular file called name.
func (s *Store) Stat(name string) (string, error) {
	full, err := s.Resolve(name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(full)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: failed to stat %q: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return full, nil
}

// Save streams r into the file called name, truncating any previous content,
// and returns the absolute path. Reads happen in ChunkSize pieces and only
// non-empty chunks are written. A failed save may leave a partial file.
func (s *Store) Save(name string, r io.Reader) (string, int64, error) {
	full, err := s.Resolve(name)
	if err != nil {
		return "", 0, err
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return "", 0, fmt.Errorf("store: failed to create %q: %w", name, err)
	}

	written, copyErr := copyChunks(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		return "", written, copyErr
	}
	if closeErr != nil {
		return "", written, fmt.Errorf("store: failed to close %q: %w", name, closeErr)
	}

	log.Debug().Str("filename", name).Int64("bytes", written).Msg("store: file saved")
	return full, written, nil
}

// ReadError marks a failure on the source side of a Save.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return "store: read failed: " + e.Err.Error()
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func copyChunks(w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, ChunkSize)
	var written int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, fmt.Errorf("store: write failed: %w", werr)
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, &ReadError{Err: err}
		}
	}
}
