// Package config holds the built-in cleanup categories and the optional
// settings file that overrides them.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/lakshaymaurya-felt/reclaim/internal/core"
)

const (
	appName = "reclaim"

	// DefaultVacuumDays is the journal retention used unless overridden.
	DefaultVacuumDays = 2

	// DefaultBackupDir receives journal exports.
	DefaultBackupDir = "/data/cvpbackup"

	// rootLogFile is where the log goes when running as root.
	rootLogFile = "/var/log/cleanup.log"
)

// Settings is the full runtime configuration. Flags are applied on top by
// the command layer.
type Settings struct {
	LogFile         string     `json:"log_file"`
	VacuumDays      int        `json:"vacuum_days"`
	BackupDir       string     `json:"backup_dir"`
	Backup          bool       `json:"backup"`
	CompressBackup  bool       `json:"compress_backup"`
	MetricsTextfile string     `json:"metrics_textfile,omitempty"`
	LockFile        string     `json:"lock_file"`
	Protected       []string   `json:"protected,omitempty"`
	Categories      []Category `json:"categories,omitempty"`
}

// Defaults returns the settings used when no file is present.
func Defaults() Settings {
	return Settings{
		LogFile:    defaultLogFile(),
		VacuumDays: DefaultVacuumDays,
		BackupDir:  DefaultBackupDir,
		Backup:     true,
		LockFile:   defaultLockFile(),
		Categories: GetCategories(),
	}
}

func defaultLogFile() string {
	if core.IsRoot() {
		return rootLogFile
	}
	return filepath.Join(xdg.StateHome, appName, "cleanup.log")
}

func defaultLockFile() string {
	if core.IsRoot() || xdg.RuntimeDir == "" {
		return filepath.Join("/run", appName+".lock")
	}
	return filepath.Join(xdg.RuntimeDir, appName+".lock")
}

// DefaultPath returns $XDG_CONFIG_HOME/reclaim/config.json.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.json")
}

// Load reads settings from path, or from DefaultPath when path is empty.
// A missing default file yields Defaults; a missing explicit file is an
// error. Categories in the file replace presets with the same key and add
// the rest.
func Load(path string) (Settings, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	s := Defaults()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}

	presets := s.Categories
	s.Categories = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Defaults(), fmt.Errorf("parse %s: %w", path, err)
	}
	if err := checkKeys(s.Categories); err != nil {
		return Defaults(), fmt.Errorf("%s: %w", path, err)
	}
	s.Categories = mergeCategories(presets, s.Categories)

	if err := s.Validate(); err != nil {
		return Defaults(), fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate reports the first problem that would make a run misbehave.
func (s Settings) Validate() error {
	if s.VacuumDays < 0 {
		return fmt.Errorf("vacuum_days must not be negative, got %d", s.VacuumDays)
	}
	if err := checkKeys(s.Categories); err != nil {
		return err
	}
	for _, c := range s.Categories {
		if len(c.Directories) == 0 {
			return fmt.Errorf("category %q: no directories", c.Key)
		}
		if len(c.Patterns) == 0 {
			return fmt.Errorf("category %q: no patterns", c.Key)
		}
		if c.Name == "" {
			return fmt.Errorf("category %q: empty name", c.Key)
		}
	}
	return nil
}

func checkKeys(categories []Category) error {
	seen := make(map[string]bool, len(categories))
	for i, c := range categories {
		if c.Key == "" {
			return fmt.Errorf("category %d: empty key", i)
		}
		if seen[c.Key] {
			return fmt.Errorf("duplicate category key %q", c.Key)
		}
		seen[c.Key] = true
	}
	return nil
}

// Category returns the category with key.
func (s Settings) Category(key string) (Category, bool) {
	for _, c := range s.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
