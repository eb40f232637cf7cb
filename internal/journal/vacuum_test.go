package journal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeCommander records invocations and replays canned results.
type fakeCommander struct {
	output    string
	outputErr error
	export    string
	exportErr error

	calls [][]string
}

func (f *fakeCommander) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.output), f.outputErr
}

func (f *fakeCommander) Stream(_ context.Context, w io.Writer, name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	if _, err := io.WriteString(w, f.export); err != nil {
		return err
	}
	return f.exportErr
}

func newVacuum(t *testing.T, cmd Commander, opts ...Option) (*Vacuum, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	fixed := time.Date(2024, 3, 5, 7, 8, 9, 123456000, time.UTC)
	opts = append([]Option{WithCommander(cmd), WithClock(func() time.Time { return fixed })}, opts...)
	return New(log, opts...), hook
}

func warnCount(hook *test.Hook) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			n++
		}
	}
	return n
}

func TestRunParsesFreedSpace(t *testing.T) {
	cmd := &fakeCommander{output: "Vacuuming done, freed 1.5M of archived journals from /var/log/journal.\n"}
	v, hook := newVacuum(t, cmd)

	freed, err := v.Run(context.Background(), Request{Days: 7})
	if err != nil {
		t.Fatal(err)
	}
	if freed != 1572864 {
		t.Errorf("freed = %d, want 1572864", freed)
	}
	if len(cmd.calls) != 1 || strings.Join(cmd.calls[0], " ") != "journalctl --vacuum-time=7d" {
		t.Errorf("calls = %v", cmd.calls)
	}
	if warnCount(hook) != 0 {
		t.Errorf("unexpected warnings")
	}
}

func TestRunDefaultRetention(t *testing.T) {
	cmd := &fakeCommander{output: "freed 0B of archived journals"}
	v, _ := newVacuum(t, cmd, WithBinary("/usr/bin/journalctl"))

	if _, err := v.Run(context.Background(), Request{}); err != nil {
		t.Fatal(err)
	}
	want := "/usr/bin/journalctl --vacuum-time=2d"
	if got := strings.Join(cmd.calls[0], " "); got != want {
		t.Errorf("ran %q, want %q", got, want)
	}
}

func TestRunExplicitZeroRetention(t *testing.T) {
	cmd := &fakeCommander{output: "freed 0B of archived journals"}
	v, _ := newVacuum(t, cmd, WithBinary("/usr/bin/journalctl"))

	if _, err := v.Run(context.Background(), Request{Days: 0, DaysSet: true}); err != nil {
		t.Fatal(err)
	}
	want := "/usr/bin/journalctl --vacuum-time=0d"
	if got := strings.Join(cmd.calls[0], " "); got != want {
		t.Errorf("ran %q, want %q", got, want)
	}
}

func TestRunRejectsNegativeDays(t *testing.T) {
	cmd := &fakeCommander{}
	v, _ := newVacuum(t, cmd)
	if _, err := v.Run(context.Background(), Request{Days: -1}); err == nil {
		t.Fatal("expected error")
	}
	if len(cmd.calls) != 0 {
		t.Errorf("tool invoked for invalid request: %v", cmd.calls)
	}
}

func TestRunUnparseableOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"unknown unit", "freed 3.0T of archived journals"},
		{"no report", "All good."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, hook := newVacuum(t, &fakeCommander{output: tt.output})
			freed, err := v.Run(context.Background(), Request{})
			if err != nil {
				t.Fatal(err)
			}
			if freed != 0 {
				t.Errorf("freed = %d, want 0", freed)
			}
			if warnCount(hook) != 1 {
				t.Errorf("warnings = %d, want 1", warnCount(hook))
			}
		})
	}
}

func TestRunToolFailure(t *testing.T) {
	cmd := &fakeCommander{output: "Access denied", outputErr: errors.New("exit status 1")}
	v, hook := newVacuum(t, cmd)

	freed, err := v.Run(context.Background(), Request{})
	if err != nil {
		t.Fatalf("tool failure surfaced: %v", err)
	}
	if freed != 0 {
		t.Errorf("freed = %d, want 0", freed)
	}
	if warnCount(hook) != 1 {
		t.Errorf("warnings = %d, want 1", warnCount(hook))
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v, _ := newVacuum(t, &fakeCommander{})
	if _, err := v.Run(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunCustomParser(t *testing.T) {
	v, _ := newVacuum(t, &fakeCommander{output: "anything"},
		WithParser(func(string) (int64, error) { return 42, nil }))
	freed, err := v.Run(context.Background(), Request{})
	if err != nil || freed != 42 {
		t.Errorf("got %d, %v", freed, err)
	}
}

// ─── Backup ──────────────────────────────────────────────────────────────────

func TestRunWithBackup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	cmd := &fakeCommander{
		export: "Mar 05 07:00:00 host kernel: hello\n",
		output: "freed 1K of archived journals",
	}
	v, _ := newVacuum(t, cmd)

	freed, err := v.Run(context.Background(), Request{Backup: true, BackupDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if freed != 1024 {
		t.Errorf("freed = %d, want 1024", freed)
	}
	if got := strings.Join(cmd.calls[0], " "); got != "journalctl --no-pager" {
		t.Errorf("backup ran %q before vacuum", got)
	}

	path := filepath.Join(dir, "journalctl-2024-03-05T07:08:09.123456")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != cmd.export {
		t.Errorf("backup = %q", data)
	}
}

func TestBackupCompressed(t *testing.T) {
	dir := t.TempDir()
	export := strings.Repeat("Mar 05 07:00:00 host sshd[1]: session opened\n", 200)
	v, _ := newVacuum(t, &fakeCommander{export: export})

	path, err := v.Backup(context.Background(), dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, ".zst") {
		t.Errorf("path = %s, want .zst suffix", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	plain, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	if string(plain) != export {
		t.Error("decoded backup differs from export")
	}
	if len(raw) >= len(export) {
		t.Errorf("compressed %d bytes into %d", len(export), len(raw))
	}
}

func TestBackupFailureDoesNotBlockVacuum(t *testing.T) {
	dir := t.TempDir()
	cmd := &fakeCommander{
		export:    "partial",
		exportErr: errors.New("journalctl failed (exit code 1)"),
		output:    "freed 2M of archived journals",
	}
	v, hook := newVacuum(t, cmd)

	freed, err := v.Run(context.Background(), Request{Backup: true, BackupDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if freed != 2<<20 {
		t.Errorf("freed = %d", freed)
	}
	if warnCount(hook) != 1 {
		t.Errorf("warnings = %d, want 1", warnCount(hook))
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("partial backup left behind: %v", entries)
	}
	if len(cmd.calls) != 2 {
		t.Errorf("vacuum not run after failed backup: %v", cmd.calls)
	}
}

func TestBackupUnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	v, _ := newVacuum(t, &fakeCommander{})
	if _, err := v.Backup(context.Background(), filepath.Join(blocker, "sub"), false); err == nil {
		t.Error("expected error creating a directory below a file")
	}
}

func TestListBackups(t *testing.T) {
	dir := t.TempDir()
	files := map[string]int{
		"journalctl-2024-01-01T00:00:00.000000":     10,
		"journalctl-2024-02-01T00:00:00.500000.zst": 20,
		"journalctl-2023-12-31T23:59:59":            30,
		"unrelated.txt":                             40,
	}
	for name, size := range files {
		if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := ListBackups(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("got %d backups, want 3", len(backups))
	}
	wantOrder := []int64{20, 10, 30}
	for i, b := range backups {
		if b.Size != wantOrder[i] {
			t.Errorf("backup %d: size %d, want %d", i, b.Size, wantOrder[i])
		}
	}
	if !backups[0].Compressed || backups[1].Compressed {
		t.Errorf("compression flags wrong: %+v", backups)
	}

	none, err := ListBackups(filepath.Join(dir, "missing"))
	if err != nil || len(none) != 0 {
		t.Errorf("missing dir: %v, %v", none, err)
	}
}
