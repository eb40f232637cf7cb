// Package logging builds the diagnostic sink shared by the cleanup packages.
//
// Core packages only see Sink. The concrete logger is a logrus.Logger whose
// own output is discarded; a console hook and a rotating-file hook do the
// writing, each with its own level threshold.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink receives diagnostic events from the cleanup core. *logrus.Logger and
// *logrus.Entry both satisfy it.
type Sink interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

var (
	_ Sink = (*logrus.Logger)(nil)
	_ Sink = (*logrus.Entry)(nil)
)

// Verbosity selects the console threshold.
type Verbosity int

const (
	// Quiet shows warnings and errors only.
	Quiet Verbosity = iota
	// Verbose adds info messages.
	Verbose
	// Debug shows everything.
	Debug
)

// Options configures New.
type Options struct {
	// Name appears in every line, as in "<time> - cleanup - INFO - msg".
	Name string

	// Console receives console output. Defaults to os.Stdout.
	Console io.Writer

	// Verbosity is the console threshold.
	Verbosity Verbosity

	// File is the log file path. Empty disables file logging.
	File string

	// MaxSizeMB, MaxBackups and MaxAgeDays control rotation of File.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New creates the logger. The returned closer flushes and closes the log
// file; it is safe to call when file logging is disabled.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	if opts.Name == "" {
		opts.Name = "cleanup"
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	formatter := &LineFormatter{Name: opts.Name}

	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.DebugLevel)
	log.AddHook(&WriterHook{
		Writer:    opts.Console,
		LogLevels: levelsFor(opts.Verbosity),
		Formatter: formatter,
	})

	if opts.File == "" {
		return log, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	// lumberjack opens lazily; find out now rather than on the first line.
	probe, err := os.OpenFile(opts.File, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	_ = probe.Close()
	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    orDefault(opts.MaxSizeMB, 10),
		MaxBackups: orDefault(opts.MaxBackups, 5),
		MaxAge:     orDefault(opts.MaxAgeDays, 30),
		Compress:   true,
	}
	log.AddHook(&WriterHook{
		Writer:    file,
		LogLevels: levelsAtOrAbove(logrus.InfoLevel),
		Formatter: formatter,
	})
	return log, file, nil
}

func levelsFor(v Verbosity) []logrus.Level {
	switch v {
	case Debug:
		return levelsAtOrAbove(logrus.DebugLevel)
	case Verbose:
		return levelsAtOrAbove(logrus.InfoLevel)
	default:
		return levelsAtOrAbove(logrus.WarnLevel)
	}
}

// levelsAtOrAbove returns every level at least as severe as threshold. logrus
// orders levels from most severe (Panic=0) to least (Trace).
func levelsAtOrAbove(threshold logrus.Level) []logrus.Level {
	var out []logrus.Level
	for _, l := range logrus.AllLevels {
		if l <= threshold {
			out = append(out, l)
		}
	}
	return out
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ─── Hook & Formatter ────────────────────────────────────────────────────────

// WriterHook writes formatted entries at the configured levels to Writer.
type WriterHook struct {
	Writer    io.Writer
	LogLevels []logrus.Level
	Formatter logrus.Formatter
}

// Levels implements logrus.Hook.
func (h *WriterHook) Levels() []logrus.Level { return h.LogLevels }

// Fire implements logrus.Hook.
func (h *WriterHook) Fire(entry *logrus.Entry) error {
	line, err := h.Formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.Writer.Write(line)
	return err
}

// LineFormatter renders "<time> - <name> - <LEVEL> - <message> [k=v ...]".
type LineFormatter struct {
	Name string
}

// Format implements logrus.Formatter.
func (f *LineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	b.WriteString(entry.Time.Format("2006-01-02 15:04:05,000"))
	b.WriteString(" - ")
	b.WriteString(f.Name)
	b.WriteString(" - ")
	b.WriteString(levelName(entry.Level))
	b.WriteString(" - ")
	b.WriteString(entry.Message)
	for _, k := range sortedKeys(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func levelName(l logrus.Level) string {
	if l == logrus.WarnLevel {
		return "WARNING"
	}
	return strings.ToUpper(l.String())
}

func sortedKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
