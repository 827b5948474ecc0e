package host

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ooxml-tools/ooxml-validator/pkg/export"
	"github.com/ooxml-tools/ooxml-validator/pkg/util"
	"github.com/spf13/afero"
)

// ErrSurfaceDisposed is returned by Show after Dispose
var ErrSurfaceDisposed = errors.New("report surface has been disposed")

// FileSurface presents report markup by writing it to an HTML file.
// Each Show replaces the file content atomically, so a browser refresh
// always sees a complete page.
type FileSurface struct {
	fs       afero.Fs
	path     string
	mu       sync.Mutex
	shown    bool
	disposed bool
}

// NewFileSurface creates a surface backed by path
func NewFileSurface(fs afero.Fs, path string) *FileSurface {
	return &FileSurface{fs: fs, path: path}
}

// Path returns the report file path
func (s *FileSurface) Path() string {
	return s.path
}

// Show writes markup to the report file
func (s *FileSurface) Show(markup string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrSurfaceDisposed
	}

	if err := export.WriteFileAtomic(s.fs, s.path, []byte(markup)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	s.shown = true
	util.GetLogger().V(1).Info("Report updated", "path", s.path, "bytes", len(markup))
	return nil
}

// Dispose removes the report file. Calling it more than once is harmless.
func (s *FileSurface) Dispose() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil
	}
	s.disposed = true

	if !s.shown {
		return nil
	}
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove report: %w", err)
	}
	util.GetLogger().V(1).Info("Report disposed", "path", s.path)
	return nil
}

// Disposed reports whether Dispose was called
func (s *FileSurface) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
