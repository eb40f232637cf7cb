package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	backupPrefix = "journalctl-"
	zstdSuffix   = ".zst"

	// backupLayout is an ISO-8601 UTC timestamp with microseconds. Parsing
	// with stampLayout accepts it with or without the fraction.
	backupLayout = "2006-01-02T15:04:05.000000"
	stampLayout  = "2006-01-02T15:04:05"
)

// Backup is one journal export found on disk.
type Backup struct {
	Path       string
	Size       int64
	Time       time.Time
	Compressed bool
}

// Backup exports the full journal into dir as journalctl-<UTC timestamp>,
// zstd-compressed with a .zst suffix when compress is set. It returns the
// file written. On failure no partial file is left behind.
func (v *Vacuum) Backup(ctx context.Context, dir string, compress bool) (path string, err error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	name := backupPrefix + v.now().UTC().Format(backupLayout)
	if compress {
		name += zstdSuffix
	}
	path = filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	var w io.Writer = f
	var enc *zstd.Encoder
	if compress {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return "", fmt.Errorf("zstd: %w", err)
		}
		w = enc
	}

	streamErr := v.cmd.Stream(ctx, w, v.binary, "--no-pager")
	var encErr error
	if enc != nil {
		encErr = enc.Close()
	}
	closeErr := f.Close()

	if err = errors.Join(streamErr, encErr, closeErr); err != nil {
		return "", fmt.Errorf("export journal: %w", err)
	}
	return path, nil
}

// ListBackups returns the journal exports in dir, newest first. A missing
// directory holds no backups.
func ListBackups(dir string) ([]Backup, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var backups []Backup
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) {
			continue
		}
		stamp := strings.TrimPrefix(name, backupPrefix)
		compressed := strings.HasSuffix(stamp, zstdSuffix)
		stamp = strings.TrimSuffix(stamp, zstdSuffix)

		info, err := e.Info()
		if err != nil {
			continue
		}
		b := Backup{
			Path:       filepath.Join(dir, name),
			Size:       info.Size(),
			Compressed: compressed,
		}
		// Exports written by other tools may carry a different stamp; fall
		// back to the file time.
		if t, err := time.Parse(stampLayout, stamp); err == nil {
			b.Time = t
		} else if t, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
			b.Time = t.UTC()
		} else {
			b.Time = info.ModTime().UTC()
		}
		backups = append(backups, b)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Time.After(backups[j].Time)
	})
	return backups, nil
}
