// Package fileset discovers, sizes and deletes groups of files matched by
// directory/pattern rules.
package fileset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/lakshaymaurya-felt/reclaim/internal/core"
	"github.com/lakshaymaurya-felt/reclaim/internal/logging"
	"github.com/lakshaymaurya-felt/reclaim/pkg/whitelist"
)

// Config describes which entries belong to a FileSet. It must not be
// modified after being passed to New.
type Config struct {
	// Name is the human-readable category label, e.g. "System logs".
	Name string

	// Directories are the roots to search. An entry may be a glob
	// ("/tmp/upgrade*"); each existing match is searched.
	Directories []string

	// Patterns are matched against entry names inside each root.
	Patterns []string

	// Recursive extends matching to every nested subdirectory.
	Recursive bool

	// RemoveDirectories removes each root once nothing but empty
	// directories remains in it after a deletion.
	RemoveDirectories bool
}

// FileSet is a configured group of matched paths with a cached total size.
// A FileSet is empty until Refresh is called.
type FileSet struct {
	cfg     Config
	log     logging.Sink
	remover Remover
	guard   *whitelist.Whitelist

	mu       sync.RWMutex
	files    []string
	size     int64
	pretty   string
	failures []RemoveError
}

// Option customizes a FileSet.
type Option func(*FileSet)

// WithRemover replaces the filesystem remover.
func WithRemover(r Remover) Option {
	return func(s *FileSet) { s.remover = r }
}

// WithGuard sets the protected-path whitelist consulted before removals.
func WithGuard(w *whitelist.Whitelist) Option {
	return func(s *FileSet) { s.guard = w }
}

// New validates cfg and returns an empty FileSet. A malformed configuration
// is the only error New reports.
func New(cfg Config, log logging.Sink, opts ...Option) (*FileSet, error) {
	if log == nil {
		return nil, errors.New("fileset: nil log sink")
	}
	if len(cfg.Directories) == 0 {
		return nil, fmt.Errorf("fileset %q: no directories configured", cfg.Name)
	}
	if len(cfg.Patterns) == 0 {
		return nil, fmt.Errorf("fileset %q: no patterns configured", cfg.Name)
	}
	for _, d := range cfg.Directories {
		if err := validateDirectory(d); err != nil {
			return nil, fmt.Errorf("fileset %q: %w", cfg.Name, err)
		}
	}
	for _, p := range cfg.Patterns {
		if err := validatePattern(p); err != nil {
			return nil, fmt.Errorf("fileset %q: %w", cfg.Name, err)
		}
	}

	cfg.Directories = append([]string(nil), cfg.Directories...)
	cfg.Patterns = append([]string(nil), cfg.Patterns...)

	s := &FileSet{
		cfg:     cfg,
		log:     log,
		remover: OSRemover{},
		guard:   whitelist.New(),
		pretty:  core.FormatSize(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ─── Accessors ───────────────────────────────────────────────────────────────

// Name returns the configured label.
func (s *FileSet) Name() string { return s.cfg.Name }

// Config returns a copy of the configuration.
func (s *FileSet) Config() Config {
	c := s.cfg
	c.Directories = append([]string(nil), s.cfg.Directories...)
	c.Patterns = append([]string(nil), s.cfg.Patterns...)
	return c
}

// List returns the matched paths from the last scan. It does not rescan.
func (s *FileSet) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.files...)
}

// Size returns the total bytes covered by the last scan.
func (s *FileSet) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// PrettySize returns Size rendered by core.FormatSize.
func (s *FileSet) PrettySize() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pretty
}

// Failures returns the entries the last Delete could not remove.
func (s *FileSet) Failures() []RemoveError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RemoveError(nil), s.failures...)
}

// ─── Scan ────────────────────────────────────────────────────────────────────

// Refresh rescans the filesystem and replaces the matched list and size.
// Missing directories contribute nothing; unreadable subtrees are logged
// and skipped.
func (s *FileSet) Refresh() {
	s.log.Debugf("Initializing %s", s.cfg.Name)

	var matches []string
	for _, dir := range s.cfg.Directories {
		for _, root := range expandRoots(dir) {
			buckets := walkRoot(root, s.cfg.Patterns, s.cfg.Recursive, func(path string, err error) {
				s.log.Debugf("Skipping %s: %v", path, err)
			})
			for _, b := range buckets {
				matches = append(matches, b...)
			}
		}
	}

	r := newResolver()
	files := dedupe(r, matches)
	size := measure(r, files)

	s.mu.Lock()
	s.files = files
	s.size = size
	s.pretty = core.FormatSize(size)
	s.mu.Unlock()

	s.log.Debugf("Files in %v: %v", s.cfg.Directories, files)
}

// ─── Delete ──────────────────────────────────────────────────────────────────

// Delete removes every matched path and returns the bytes reclaimed,
// measured as the size before minus the size after a fresh scan.
//
// Without confirmation nothing is touched and ErrNotConfirmed is returned.
// Individual failures are logged as warnings and kept in Failures; they
// never abort the batch.
func (s *FileSet) Delete(confirmed bool) (core.Freed, error) {
	if !confirmed {
		s.log.Debugf("Not removing %s: not confirmed", s.cfg.Name)
		return 0, ErrNotConfirmed
	}

	s.log.Infof("Removing %s", s.cfg.Name)

	s.mu.RLock()
	previous := s.size
	files := append([]string(nil), s.files...)
	s.mu.RUnlock()

	var failures []RemoveError
	for _, p := range files {
		if err := s.removeEntry(p); err != nil {
			failures = append(failures, RemoveError{Path: p, Err: err})
		}
	}

	if s.cfg.RemoveDirectories {
		if err := s.RemoveEmptyRoots(); err != nil {
			s.log.Debugf("Root cleanup for %s incomplete: %v", s.cfg.Name, err)
		}
	}

	s.mu.Lock()
	s.failures = failures
	s.mu.Unlock()

	// Trust the filesystem, not the bookkeeping above.
	s.Refresh()

	return core.Freed(previous - s.Size()), nil
}

func (s *FileSet) removeEntry(path string) error {
	if s.guard.IsProtected(path) {
		s.log.Warnf("Not removing protected path %s", path)
		return ErrProtected
	}

	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debugf("Already gone: %s", path)
		return nil
	}
	if err != nil {
		s.log.Warnf("Could not remove %s: %v", path, err)
		return err
	}

	s.log.Debugf("Removing %s", path)
	mode := info.Mode()
	switch {
	case mode.IsDir():
		if p, found := s.protectedWithin(path); found {
			s.log.Warnf("Not removing %s: contains protected path %s", path, p)
			return ErrProtected
		}
		err = s.remover.RemoveAll(path)
	case mode.IsRegular(), mode&fs.ModeSymlink != 0:
		err = s.remover.Remove(path)
	default:
		s.log.Debugf("Not removing file %s.", path)
		return nil
	}

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warnf("Could not remove %s: %v", path, err)
		return err
	}
	return nil
}

// protectedWithin reports the first protected path below dir, if any.
func (s *FileSet) protectedWithin(dir string) (string, bool) {
	if len(s.guard.Patterns()) == 0 {
		return "", false
	}
	var hit string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != dir && s.guard.IsProtected(path) {
			hit = path
			return fs.SkipAll
		}
		return nil
	})
	return hit, hit != ""
}

// RemoveEmptyRoots removes every configured root that no longer holds any
// file, including the empty directories left inside it. Roots that are
// already gone are fine; roots still holding files are left in place with
// a warning.
func (s *FileSet) RemoveEmptyRoots() error {
	var errs []error
	for _, dir := range s.cfg.Directories {
		for _, root := range expandRoots(dir) {
			info, err := os.Lstat(root)
			if err != nil || !info.IsDir() {
				continue
			}
			if s.guard.IsProtected(root) {
				s.log.Warnf("Not removing protected directory %s", root)
				continue
			}
			busy, err := hasFiles(root)
			if err != nil {
				s.log.Warnf("Could not inspect %s: %v", root, err)
				errs = append(errs, err)
				continue
			}
			if busy {
				s.log.Warnf("Not removing %s: directory still holds files", root)
				continue
			}
			s.log.Debugf("Removing directory %s", root)
			if err := s.remover.RemoveAll(root); err != nil {
				s.log.Warnf("Could not remove %s: %v", root, err)
				errs = append(errs, RemoveError{Path: root, Err: err})
			}
		}
	}
	return errors.Join(errs...)
}
