// Package status shows filesystem usage next to what each cleanup category
// would reclaim, either as a live dashboard or as a one-shot table.
package status

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ─── Tab enumeration ─────────────────────────────────────────────────────────

// Tab identifies one of the dashboard sections.
type Tab int

const (
	TabOverview Tab = iota
	TabDisks
	TabCategories
)

// TabNames is the display label for each tab.
var TabNames = []string{"Overview", "Disks", "Categories"}

// ─── Messages ────────────────────────────────────────────────────────────────

type tickMsg time.Time

type reportMsg struct {
	report *Report
	err    error
}

// CollectFunc produces a fresh report.
type CollectFunc func(ctx context.Context) (*Report, error)

// ─── Model ───────────────────────────────────────────────────────────────────

// StatusModel is the bubbletea Model for the usage dashboard.
type StatusModel struct {
	Report          *Report
	Tab             Tab
	Width           int
	Height          int
	refreshInterval time.Duration
	collect         CollectFunc
	quitting        bool
	Err             error

	// UsedHistory holds the last readings of the fullest filesystem.
	UsedHistory []float64
}

// NewStatusModel creates a StatusModel that refreshes with collect every
// refreshInterval.
func NewStatusModel(collect CollectFunc, refreshInterval time.Duration) StatusModel {
	if refreshInterval <= 0 {
		refreshInterval = 5 * time.Second
	}
	return StatusModel{
		Width:           80,
		Height:          24,
		refreshInterval: refreshInterval,
		collect:         collect,
	}
}

func (m StatusModel) doTick() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m StatusModel) collectReport() tea.Cmd {
	collect := m.collect
	timeout := m.refreshInterval * 4
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		r, err := collect(ctx)
		return reportMsg{report: r, err: err}
	}
}

// ─── tea.Model interface ─────────────────────────────────────────────────────

func (m StatusModel) Init() tea.Cmd {
	// Collection and display stay sequential: the tick starts only after a
	// report arrives.
	return m.collectReport()
}

func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			m.Tab = (m.Tab + 1) % Tab(len(TabNames))
		case "shift+tab":
			if m.Tab == 0 {
				m.Tab = Tab(len(TabNames) - 1)
			} else {
				m.Tab--
			}
		case "1":
			m.Tab = TabOverview
		case "2":
			m.Tab = TabDisks
		case "3":
			m.Tab = TabCategories
		}
		return m, nil

	case tickMsg:
		return m, m.collectReport()

	case reportMsg:
		if msg.err != nil {
			m.Err = msg.err
			return m, m.doTick()
		}
		m.Err = nil
		m.Report = msg.report
		m.UsedHistory = appendF64(m.UsedHistory, fullest(msg.report.Disks), 60)
		return m, m.doTick()
	}

	return m, nil
}

func (m StatusModel) View() string {
	if m.quitting {
		return ""
	}
	return m.renderView()
}

// ─── History helpers ─────────────────────────────────────────────────────────

func appendF64(h []float64, v float64, maxLen int) []float64 {
	h = append(h, v)
	if len(h) > maxLen {
		h = h[1:]
	}
	return h
}

func fullest(disks []DiskUsage) float64 {
	var top float64
	for _, d := range disks {
		if d.UsedPercent > top {
			top = d.UsedPercent
		}
	}
	return top
}
