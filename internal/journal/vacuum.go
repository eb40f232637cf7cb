// Package journal vacuums the systemd journal with journalctl and reports
// the space it freed.
//
// Freed space is taken from journalctl's own "freed ... of archived
// journals" report. Nothing is measured before or after the vacuum.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lakshaymaurya-felt/reclaim/internal/core"
	"github.com/lakshaymaurya-felt/reclaim/internal/logging"
)

const (
	// DefaultDays is the retention used when a Request leaves Days unset.
	DefaultDays = 2

	// DefaultBinary is the journal tool looked up on PATH.
	DefaultBinary = "journalctl"

	// DefaultBackupDir is where backups go when a Request names none.
	DefaultBackupDir = "/data/cvpbackup"
)

// Request describes one vacuum run.
type Request struct {
	// Days of history to keep. Unless DaysSet, zero means DefaultDays.
	Days int

	// DaysSet marks Days as chosen by the caller, so zero keeps no
	// archived history at all.
	DaysSet bool

	// Backup exports the whole journal to BackupDir before vacuuming.
	Backup bool

	// BackupDir receives the export. Empty means DefaultBackupDir.
	BackupDir string

	// Compress writes the export zstd-compressed.
	Compress bool
}

// Retention returns the effective number of days.
func (r Request) Retention() int {
	if r.Days == 0 && !r.DaysSet {
		return DefaultDays
	}
	return r.Days
}

func (r Request) backupDir() string {
	if r.BackupDir == "" {
		return DefaultBackupDir
	}
	return r.BackupDir
}

// Validate rejects requests that cannot be run.
func (r Request) Validate() error {
	if r.Days < 0 {
		return fmt.Errorf("vacuum time must not be negative, got %d days", r.Days)
	}
	return nil
}

// Vacuum runs journal retention.
type Vacuum struct {
	log    logging.Sink
	cmd    Commander
	parse  ParseFunc
	now    func() time.Time
	binary string
}

// Option customizes a Vacuum.
type Option func(*Vacuum)

// WithCommander replaces the process runner.
func WithCommander(c Commander) Option { return func(v *Vacuum) { v.cmd = c } }

// WithParser replaces ParseVacuumOutput.
func WithParser(p ParseFunc) Option { return func(v *Vacuum) { v.parse = p } }

// WithClock sets the time source used to name backups.
func WithClock(now func() time.Time) Option { return func(v *Vacuum) { v.now = now } }

// WithBinary sets the journal tool to run.
func WithBinary(name string) Option { return func(v *Vacuum) { v.binary = name } }

// New returns a Vacuum that logs to log.
func New(log logging.Sink, opts ...Option) *Vacuum {
	v := &Vacuum{
		log:    log,
		cmd:    ExecCommander{},
		parse:  ParseVacuumOutput,
		now:    time.Now,
		binary: DefaultBinary,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run optionally backs up the journal, vacuums everything older than the
// requested retention and returns the bytes journalctl reports as freed.
//
// A failed backup, a failing journalctl or an unreadable report is logged
// and yields 0 freed bytes. Run only returns an error for an invalid
// request or a cancelled context.
func (v *Vacuum) Run(ctx context.Context, req Request) (core.Freed, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	v.log.Infof("Cleaning system journal")

	if req.Backup {
		path, err := v.Backup(ctx, req.backupDir(), req.Compress)
		if err != nil {
			v.log.Warnf("Could not back up journal: %v", err)
		} else {
			v.log.Infof("Backed up current system journal to %s before cleanup", path)
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	arg := "--vacuum-time=" + strconv.Itoa(req.Retention()) + "d"
	v.log.Debugf("Running %s %s", v.binary, arg)
	out, err := v.cmd.CombinedOutput(ctx, v.binary, arg)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		v.log.Warnf("Could not vacuum system journal: %v", err)
		return 0, nil
	}
	v.log.Debugf("%s output: %s", v.binary, out)

	freed, err := v.parse(string(out))
	switch {
	case err == nil:
	case errors.Is(err, ErrNoFreedReport), errors.Is(err, ErrUnknownUnit):
		v.log.Warnf("Could not parse size unit. Freed space will be inaccurate: %v", err)
	default:
		v.log.Warnf("Could not read journalctl report: %v", err)
	}
	if freed < 0 {
		freed = 0
	}
	return core.Freed(freed), nil
}
