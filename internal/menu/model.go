// Package menu is the interactive front end: a category list with cached
// sizes, per-category cleaning behind a y/N prompt, file listings and the
// journal vacuum.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lakshaymaurya-felt/reclaim/internal/core"
	"github.com/lakshaymaurya-felt/reclaim/internal/journal"
	"github.com/lakshaymaurya-felt/reclaim/internal/session"
)

// ─── Modes ───────────────────────────────────────────────────────────────────

type mode int

const (
	modeList mode = iota
	modeConfirm
	modeFiles
	modeJournal
)

// ─── Messages ────────────────────────────────────────────────────────────────

type scanDoneMsg struct{}

type opDoneMsg struct {
	label string
	freed core.Freed
	err   error
	risky bool
}

// ─── Model ───────────────────────────────────────────────────────────────────

// Model is the bubbletea Model for the interactive menu.
type Model struct {
	sess    *session.Session
	ctx     context.Context
	journal journal.Request

	cursor int
	mode   mode
	width  int
	height int
	offset int

	input   textinput.Model
	prompt  string
	pending tea.Cmd

	busy     bool
	scanned  bool
	message  string
	err      error
	quitting bool
}

// New returns a menu over sess. req supplies the journal backup settings
// and the default retention.
func New(ctx context.Context, sess *session.Session, req journal.Request) Model {
	ti := textinput.New()
	ti.CharLimit = 6
	ti.Width = 8
	return Model{
		sess:    sess,
		ctx:     ctx,
		journal: req,
		input:   ti,
		width:   80,
		height:  24,
		busy:    true,
	}
}

// Run shows the menu until the user quits.
func Run(ctx context.Context, sess *session.Session, req journal.Request) error {
	p := tea.NewProgram(New(ctx, sess, req), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return m.scan()
}

func (m Model) scan() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		sess.Refresh()
		return scanDoneMsg{}
	}
}

// ─── Commands ────────────────────────────────────────────────────────────────

func cleanCmd(sess *session.Session, e session.Entry) tea.Cmd {
	return func() tea.Msg {
		freed, err := sess.Clean(e.Category.Key, true)
		return opDoneMsg{label: e.Category.Name, freed: freed, err: err, risky: e.Category.Risky}
	}
}

func cleanAllCmd(ctx context.Context, sess *session.Session, req journal.Request, current bool) tea.Cmd {
	return func() tea.Msg {
		freed, err := sess.CleanAll(ctx, session.AllOptions{Journal: req, CurrentLogs: current})
		return opDoneMsg{label: "All categories", freed: freed, err: err, risky: current}
	}
}

func vacuumCmd(ctx context.Context, sess *session.Session, req journal.Request) tea.Cmd {
	return func() tea.Msg {
		freed, err := sess.Vacuum(ctx, req)
		return opDoneMsg{label: session.JournalName, freed: freed, err: err}
	}
}

// ─── tea.Model interface ─────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case scanDoneMsg:
		m.busy = false
		m.scanned = true
		return m, nil

	case opDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.message = ""
			return m, nil
		}
		m.err = nil
		m.message = fmt.Sprintf("%s - Freed %s", msg.label, msg.freed)
		if msg.risky {
			m.message += ". Restart the owning service to free space held by open files."
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) && msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeJournal:
			return m.updateJournal(msg)
		case modeFiles:
			return m.updateFiles(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, keys.Down):
		if m.cursor < m.itemCount()-1 {
			m.cursor++
		}
		return m, nil
	}

	// Everything below starts work; one operation at a time.
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Clean):
		if m.onJournal() {
			return m.openJournal()
		}
		e := m.selected()
		prompt := fmt.Sprintf("This will clean %s (%s) and cannot be undone. Are you sure you want to continue? (y/N)",
			e.Category.Name, e.Set.PrettySize())
		if e.Category.Risky {
			prompt = "WARNING! This may remove files that may be useful to debug issues.\n  " + prompt
		}
		return m.confirm(prompt, cleanCmd(m.sess, e))

	case key.Matches(msg, keys.Show):
		if m.onJournal() {
			return m, nil
		}
		m.mode = modeFiles
		m.offset = 0
		return m, nil

	case key.Matches(msg, keys.Journal):
		return m.openJournal()

	case key.Matches(msg, keys.All):
		return m.confirm("This will clean every default category and vacuum the journal. Continue? (y/N)",
			cleanAllCmd(m.ctx, m.sess, m.journal, false))

	case key.Matches(msg, keys.AllCurrent):
		return m.confirm("WARNING! This also removes current logs that may be useful to debug issues. Continue? (y/N)",
			cleanAllCmd(m.ctx, m.sess, m.journal, true))

	case key.Matches(msg, keys.Reload):
		m.busy = true
		m.message = ""
		m.err = nil
		return m, m.scan()
	}
	return m, nil
}

func (m Model) confirm(prompt string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.mode = modeConfirm
	m.prompt = prompt
	m.pending = cmd
	m.input.Reset()
	m.input.Placeholder = "N"
	return m, m.input.Focus()
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		answer := m.input.Value()
		cmd := m.pending
		m.mode = modeList
		m.pending = nil
		m.input.Blur()
		if !Confirmed(answer) {
			m.message = "Cancelled."
			return m, nil
		}
		m.busy = true
		m.message = "Working…"
		m.err = nil
		return m, cmd
	case tea.KeyEsc:
		m.mode = modeList
		m.pending = nil
		m.input.Blur()
		m.message = "Cancelled."
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) openJournal() (tea.Model, tea.Cmd) {
	m.mode = modeJournal
	m.input.Reset()
	m.input.Placeholder = strconv.Itoa(m.journal.Retention())
	m.prompt = "Days of journal history to keep:"
	return m, m.input.Focus()
}

func (m Model) updateJournal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		days, err := ParseDays(m.input.Value(), m.journal.Retention())
		m.mode = modeList
		m.input.Blur()
		if err != nil {
			m.err = err
			return m, nil
		}
		req := m.journal
		req.Days = days
		req.DaysSet = true
		m.busy = true
		m.message = "Vacuuming journal…"
		m.err = nil
		return m, vacuumCmd(m.ctx, m.sess, req)
	case tea.KeyEsc:
		m.mode = modeList
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateFiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	files := m.selected().Set.List()
	switch {
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
		m.mode = modeList
	case key.Matches(msg, keys.Up):
		if m.offset > 0 {
			m.offset--
		}
	case key.Matches(msg, keys.Down):
		if m.offset < len(files)-1 {
			m.offset++
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderView()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// itemCount is the number of rows: every category plus the journal.
func (m Model) itemCount() int { return len(m.sess.Categories()) + 1 }

func (m Model) onJournal() bool { return m.cursor == len(m.sess.Categories()) }

func (m Model) selected() session.Entry {
	return m.sess.Categories()[m.cursor]
}

// Confirmed reports whether answer is an explicit yes ("y" or "yes", any
// case). Anything else, including an empty answer, is a no.
func Confirmed(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes"
}

// ParseDays reads a positive retention in days; empty input means def.
func ParseDays(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid number of days %q: want a positive integer", s)
	}
	return n, nil
}
