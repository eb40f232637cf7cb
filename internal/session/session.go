// Package session runs cleanup categories and the journal vacuum for one
// invocation and keeps the running total of space freed.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lakshaymaurya-felt/reclaim/internal/config"
	"github.com/lakshaymaurya-felt/reclaim/internal/core"
	"github.com/lakshaymaurya-felt/reclaim/internal/fileset"
	"github.com/lakshaymaurya-felt/reclaim/internal/journal"
	"github.com/lakshaymaurya-felt/reclaim/pkg/whitelist"
)

// JournalKey identifies vacuum steps in Results.
const JournalKey = "system-journal"

// JournalName labels vacuum steps.
const JournalName = "Vacuum system journal"

// ErrUnknownCategory is returned for a key that names no category.
var ErrUnknownCategory = errors.New("unknown category")

// Entry pairs a category with its file set.
type Entry struct {
	Category config.Category
	Set      *fileset.FileSet
}

// Step records one completed operation.
type Step struct {
	Key      string
	Name     string
	Matched  int64
	Freed    core.Freed
	Failures int
	At       time.Time
}

// Observer is told about every completed step.
type Observer interface {
	ObserveStep(Step)
}

// Session owns the file sets and the vacuum for one run.
type Session struct {
	id       uuid.UUID
	log      *logrus.Entry
	settings config.Settings

	entries  []Entry
	index    map[string]int
	vacuum   *journal.Vacuum
	remover  fileset.Remover
	jopts    []journal.Option
	observer Observer
	now      func() time.Time

	// mu guards total and results, which operations running off the UI
	// goroutine update while views read them.
	mu      sync.Mutex
	total   core.Freed
	results []Step
}

// Option customizes a Session.
type Option func(*Session)

// WithRemover sets the remover used by every file set.
func WithRemover(r fileset.Remover) Option { return func(s *Session) { s.remover = r } }

// WithVacuum replaces the journal vacuum.
func WithVacuum(v *journal.Vacuum) Option { return func(s *Session) { s.vacuum = v } }

// WithJournal passes options to the default journal vacuum.
func WithJournal(opts ...journal.Option) Option {
	return func(s *Session) { s.jopts = append(s.jopts, opts...) }
}

// WithObserver registers o for completed steps.
func WithObserver(o Observer) Option { return func(s *Session) { s.observer = o } }

// New builds a file set per configured category. Sets start empty; call
// Refresh or Clean. Invalid settings are the only error.
func New(settings config.Settings, log logrus.FieldLogger, opts ...Option) (*Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	s := &Session{
		id:       id,
		log:      log.WithField("run", id.String()[:8]),
		settings: settings,
		index:    make(map[string]int, len(settings.Categories)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.vacuum == nil {
		s.vacuum = journal.New(s.log, s.jopts...)
	}

	guard := whitelist.New(settings.Protected...)
	setOpts := []fileset.Option{fileset.WithGuard(guard)}
	if s.remover != nil {
		setOpts = append(setOpts, fileset.WithRemover(s.remover))
	}

	for _, c := range settings.Categories {
		set, err := fileset.New(fileset.Config{
			Name:              c.Name,
			Directories:       c.Directories,
			Patterns:          c.Patterns,
			Recursive:         c.Recursive,
			RemoveDirectories: c.RemoveDirectories,
		}, s.log, setOpts...)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Key, err)
		}
		s.index[c.Key] = len(s.entries)
		s.entries = append(s.entries, Entry{Category: c, Set: set})
	}
	return s, nil
}

// ID returns the run identifier attached to every log line.
func (s *Session) ID() uuid.UUID { return s.id }

// Settings returns the settings the session was built from.
func (s *Session) Settings() config.Settings { return s.settings }

// Categories returns every entry in configured order.
func (s *Session) Categories() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Lookup returns the entry for key.
func (s *Session) Lookup(key string) (Entry, bool) {
	i, ok := s.index[key]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Refresh rescans every category.
func (s *Session) Refresh() {
	for _, e := range s.entries {
		e.Set.Refresh()
	}
}

// Total returns the bytes freed so far.
func (s *Session) Total() core.Freed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Results returns the completed steps in order.
func (s *Session) Results() []Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Step(nil), s.results...)
}

// ─── Operations ──────────────────────────────────────────────────────────────

// Clean rescans the category and deletes what it matches. Without
// confirmation nothing is removed and fileset.ErrNotConfirmed is returned.
func (s *Session) Clean(key string, confirmed bool) (core.Freed, error) {
	e, ok := s.Lookup(key)
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownCategory, key)
	}
	if !confirmed {
		return 0, fileset.ErrNotConfirmed
	}

	e.Set.Refresh()
	matched := e.Set.Size()
	freed, err := e.Set.Delete(true)
	if err != nil {
		return 0, err
	}

	s.record(Step{
		Key:      key,
		Name:     e.Category.Name,
		Matched:  matched,
		Freed:    freed,
		Failures: len(e.Set.Failures()),
	})
	if e.Category.Risky {
		s.log.Warnf("Please restart the owning service to free up space used by open files in %s.", e.Category.Name)
	}
	return freed, nil
}

// Vacuum runs the journal vacuum and records its result.
func (s *Session) Vacuum(ctx context.Context, req journal.Request) (core.Freed, error) {
	freed, err := s.vacuum.Run(ctx, req)
	if err != nil {
		return 0, err
	}
	s.record(Step{Key: JournalKey, Name: JournalName, Freed: freed})
	return freed, nil
}

// AllOptions selects what CleanAll covers beyond the default categories.
type AllOptions struct {
	// Journal configures the vacuum step.
	Journal journal.Request

	// SkipJournal leaves the journal alone.
	SkipJournal bool

	// CurrentLogs also cleans risky categories, after everything else.
	CurrentLogs bool
}

// CleanAll cleans every default category in order, vacuums the journal and
// finally, if asked, the risky categories. It returns what this call freed.
func (s *Session) CleanAll(ctx context.Context, opts AllOptions) (core.Freed, error) {
	var freed core.Freed
	for _, e := range s.entries {
		if !e.Category.Default || e.Category.Risky {
			continue
		}
		if err := ctx.Err(); err != nil {
			return freed, err
		}
		step, err := s.Clean(e.Category.Key, true)
		if err != nil {
			return freed, err
		}
		freed += step
	}

	if !opts.SkipJournal {
		step, err := s.Vacuum(ctx, opts.Journal)
		if err != nil {
			return freed, err
		}
		freed += step
	}

	if opts.CurrentLogs {
		for _, e := range s.entries {
			if !e.Category.Risky {
				continue
			}
			if err := ctx.Err(); err != nil {
				return freed, err
			}
			step, err := s.Clean(e.Category.Key, true)
			if err != nil {
				return freed, err
			}
			freed += step
		}
	}
	return freed, nil
}

func (s *Session) record(step Step) {
	step.At = s.now()
	s.mu.Lock()
	s.total += step.Freed
	s.results = append(s.results, step)
	s.mu.Unlock()
	s.log.Infof("%s: freed %s", step.Name, step.Freed)
	if s.observer != nil {
		s.observer.ObserveStep(step)
	}
}
