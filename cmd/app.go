package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/config"
	"github.com/lakshaymaurya-felt/reclaim/internal/core"
	"github.com/lakshaymaurya-felt/reclaim/internal/journal"
	"github.com/lakshaymaurya-felt/reclaim/internal/lock"
	"github.com/lakshaymaurya-felt/reclaim/internal/logging"
	"github.com/lakshaymaurya-felt/reclaim/internal/metrics"
	"github.com/lakshaymaurya-felt/reclaim/internal/session"
)

// app is everything a command needs for one run.
type app struct {
	settings config.Settings
	log      *logrus.Logger
	logClose io.Closer
	sess     *session.Session
	recorder *metrics.Recorder
	lock     *lock.Lock
}

// setup loads settings, applies global flags, builds the logger and the
// session. Mutating commands also take the run lock.
func setup(cmd *cobra.Command, mutating bool) (*app, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	log, closer, err := newLogger(cmd, settings.LogFile)
	if err != nil {
		return nil, err
	}
	a := &app{settings: settings, log: log, logClose: closer}

	if mutating {
		a.lock, err = lock.Acquire(settings.LockFile)
		if err != nil {
			_ = closer.Close()
			return nil, err
		}
	}

	var opts []session.Option
	if settings.MetricsTextfile != "" {
		a.recorder = metrics.NewRecorder()
		opts = append(opts, session.WithObserver(a.recorder))
	}
	if bin, err := core.LookupTool(journal.DefaultBinary); err == nil {
		opts = append(opts, session.WithJournal(journal.WithBinary(bin)))
	}

	a.sess, err = session.New(settings, log, opts...)
	if err != nil {
		a.close()
		return nil, err
	}
	log.Debugf("Run %s on %s with settings %+v", a.sess.ID(), core.PlatformString(), settings)
	return a, nil
}

func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return settings, err
	}
	flags := cmd.Flags()
	if flags.Changed("logfile") {
		settings.LogFile = logFile
	}
	if flags.Changed("metrics-textfile") {
		settings.MetricsTextfile = metricsFile
	}
	if flags.Changed("lock-file") {
		settings.LockFile = lockFile
	}
	return settings, nil
}

// newLogger builds the console and file logger. An unwritable log file is
// reported and file logging is skipped rather than failing the run.
func newLogger(cmd *cobra.Command, file string) (*logrus.Logger, io.Closer, error) {
	v := logging.Quiet
	switch {
	case debug:
		v = logging.Debug
	case verbose:
		v = logging.Verbose
	}
	opts := logging.Options{
		Name:      "cleanup",
		Console:   cmd.OutOrStdout(),
		Verbosity: v,
		File:      file,
	}

	log, closer, err := logging.New(opts)
	if err == nil {
		return log, closer, nil
	}
	fmt.Fprintf(os.Stderr, "Warning: not logging to %s: %v\n", file, err)
	opts.File = ""
	return logging.New(opts)
}

// close writes metrics, releases the lock and closes the log file.
func (a *app) close() {
	if a.recorder != nil {
		if err := a.recorder.WriteTextfile(a.settings.MetricsTextfile); err != nil {
			a.log.Warnf("Could not write metrics: %v", err)
		}
	}
	if err := a.lock.Release(); err != nil {
		a.log.Debugf("Releasing lock: %v", err)
	}
	_ = a.logClose.Close()
}

// ─── Journal flags ───────────────────────────────────────────────────────────

type journalFlags struct {
	vacuumTime int
	vacuumSet  bool
	noBackup   bool
	backupDir  string
	compress   bool
}

func addJournalFlags(c *cobra.Command, jf *journalFlags) {
	c.Flags().IntVar(&jf.vacuumTime, "vacuum-time", config.DefaultVacuumDays,
		"How many days of logs to keep when vacuuming the system journal")
	c.Flags().BoolVar(&jf.noBackup, "no-backup", false, "Do not back up the journal before vacuuming")
	c.Flags().StringVar(&jf.backupDir, "backup-dir", "", "Directory for journal backups (default "+config.DefaultBackupDir+")")
	c.Flags().BoolVar(&jf.compress, "compress-backup", false, "Compress journal backups with zstd")
}

// journalRequest layers journal flags over the settings.
func (a *app) journalRequest(jf journalFlags) journal.Request {
	req := journal.Request{
		Days:      a.settings.VacuumDays,
		DaysSet:   true,
		Backup:    a.settings.Backup,
		BackupDir: a.settings.BackupDir,
		Compress:  a.settings.CompressBackup,
	}
	if jf.vacuumSet {
		req.Days = jf.vacuumTime
	}
	if jf.noBackup {
		req.Backup = false
	}
	if jf.backupDir != "" {
		req.BackupDir = jf.backupDir
	}
	if jf.compress {
		req.Compress = true
	}
	return req
}
