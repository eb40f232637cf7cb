package menu

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/lakshaymaurya-felt/reclaim/internal/config"
	"github.com/lakshaymaurya-felt/reclaim/internal/journal"
	"github.com/lakshaymaurya-felt/reclaim/internal/session"
)

type stubCommander struct{ args []string }

func (c *stubCommander) CombinedOutput(_ context.Context, _ string, args ...string) ([]byte, error) {
	c.args = args
	return []byte("Vacuuming done, freed 2.0M of archived journals from /var/log/journal."), nil
}

func (c *stubCommander) Stream(context.Context, io.Writer, string, ...string) error { return nil }

func TestConfirmed(t *testing.T) {
	tests := map[string]bool{
		"y": true, "Y": true, "yes": true, " YES ": true, "Yes": true,
		"": false, "n": false, "no": false, "yeah": false, "ye": false,
	}
	for in, want := range tests {
		if got := Confirmed(in); got != want {
			t.Errorf("Confirmed(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 2, false},
		{" 7 ", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"two", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDays(tt.in, 2)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseDays(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func fixture(t *testing.T) (Model, string, *stubCommander) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "old.gz"), make([]byte, 64), 0o644); err != nil {
		t.Fatal(err)
	}

	settings := config.Defaults()
	settings.Categories = []config.Category{
		{Key: "gz", Name: "Archives", Directories: []string{dir}, Patterns: []string{"*.gz"}, Default: true},
	}
	log, _ := test.NewNullLogger()
	cmd := &stubCommander{}
	sess, err := session.New(settings, log, session.WithVacuum(journal.New(log, journal.WithCommander(cmd))))
	if err != nil {
		t.Fatal(err)
	}

	m := New(context.Background(), sess, journal.Request{})
	m = step(t, m, m.Init()())
	return m, dir, cmd
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestCleanNeedsYes(t *testing.T) {
	m, dir, _ := fixture(t)
	if !strings.Contains(m.View(), "64.0 B") {
		t.Fatalf("size not shown:\n%s", m.View())
	}

	m, _ = press(t, m, "enter")
	if m.mode != modeConfirm {
		t.Fatal("enter did not ask for confirmation")
	}
	m, _ = press(t, m, "n")
	m, cmd := press(t, m, "enter")
	if cmd != nil || m.busy {
		t.Error("declined prompt still started work")
	}
	if _, err := os.Stat(filepath.Join(dir, "old.gz")); err != nil {
		t.Error("file removed after declining")
	}

	m, _ = press(t, m, "d")
	m, _ = press(t, m, "y")
	m, cmd = press(t, m, "enter")
	if cmd == nil || !m.busy {
		t.Fatal("confirmed prompt did not start cleaning")
	}

	// Busy: further operations are refused.
	if _, again := press(t, m, "a"); again != nil {
		t.Error("second operation started while busy")
	}

	m = step(t, m, cmd())
	if m.busy || !strings.Contains(m.message, "Archives - Freed 64.0 B") {
		t.Errorf("message = %q", m.message)
	}
	if _, err := os.Stat(filepath.Join(dir, "old.gz")); !os.IsNotExist(err) {
		t.Error("file not removed")
	}
}

func TestJournalPrompt(t *testing.T) {
	m, _, cmd := fixture(t)

	m, _ = press(t, m, "j")
	if m.mode != modeJournal {
		t.Fatal("j did not open the journal prompt")
	}
	m, _ = press(t, m, "5")
	m, run := press(t, m, "enter")
	if run == nil {
		t.Fatal("vacuum not started")
	}
	m = step(t, m, run())
	if len(cmd.args) != 1 || cmd.args[0] != "--vacuum-time=5d" {
		t.Errorf("args = %v", cmd.args)
	}
	if !strings.Contains(m.message, "Freed 2.0 MB") {
		t.Errorf("message = %q", m.message)
	}
}

func TestJournalRow(t *testing.T) {
	m, _, _ := fixture(t)
	m, _ = press(t, m, "down")
	if !m.onJournal() {
		t.Fatal("cursor not on journal row")
	}
	m, _ = press(t, m, "enter")
	if m.mode != modeJournal {
		t.Error("enter on journal row did not open the journal prompt")
	}
	m, _ = press(t, m, "esc")
	if m.mode != modeList {
		t.Error("esc did not close the prompt")
	}
}

func TestShowFiles(t *testing.T) {
	m, dir, _ := fixture(t)
	m, _ = press(t, m, "s")
	if m.mode != modeFiles {
		t.Fatal("s did not open the file list")
	}
	if !strings.Contains(m.View(), filepath.Join(dir, "old.gz")) {
		t.Errorf("file not listed:\n%s", m.View())
	}
	m, _ = press(t, m, "esc")
	if m.mode != modeList {
		t.Error("esc did not return to the list")
	}
}

func TestViewWhileCleaning(t *testing.T) {
	m, dir, _ := fixture(t)

	clean := cleanCmd(m.sess, m.selected())
	done := make(chan tea.Msg)
	go func() { done <- clean() }()

	for i := 0; i < 200; i++ {
		m, _ = press(t, m, "down")
		_ = m.View()
	}
	m = step(t, m, <-done)

	if !strings.Contains(m.message, "Freed 64.0 B") {
		t.Errorf("message = %q", m.message)
	}
	if _, err := os.Stat(filepath.Join(dir, "old.gz")); err == nil {
		t.Error("file still present")
	}
	if got := m.sess.Total(); got != 64 {
		t.Errorf("total = %d, want 64", got)
	}
}
