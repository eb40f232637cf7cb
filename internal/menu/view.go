package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/reclaim/internal/ui"
)

// ─── Color tokens ────────────────────────────────────────────────────────────

var (
	clrDim    = ui.ColorMuted
	clrName   = ui.ColorText
	clrRisky  = ui.ColorWarning
	clrCursor = ui.ColorPrimary
)

// ─── Top-level view ──────────────────────────────────────────────────────────

func (m Model) renderView() string {
	w := m.width
	if w < 50 {
		w = 50
	}

	var s strings.Builder
	s.WriteString(m.renderHeader(w))
	s.WriteString("\n")

	switch m.mode {
	case modeFiles:
		s.WriteString(m.renderFiles(w))
	default:
		s.WriteString(m.renderList(w))
	}

	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

// ─── Header ──────────────────────────────────────────────────────────────────

func (m Model) renderHeader(w int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Render("  " + ui.IconDiamond + " Cleanup")

	freed := lipgloss.NewStyle().
		Foreground(ui.ColorTextDim).
		Render(fmt.Sprintf("  Freed this session: %s    Run %s", m.sess.Total(), m.sess.ID().String()[:8]))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Width(w - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, freed))
}

// ─── Category list ───────────────────────────────────────────────────────────

func (m Model) renderList(w int) string {
	if !m.scanned {
		return lipgloss.NewStyle().
			Foreground(clrDim).
			Italic(true).
			Render("  Scanning…")
	}

	nameW := w - 30
	if nameW < 20 {
		nameW = 20
	}

	var lines []string
	for i, e := range m.sess.Categories() {
		name := e.Category.Name
		if len(name) > nameW {
			name = name[:nameW-1] + "…"
		}
		color := clrName
		if e.Category.Risky {
			color = clrRisky
		}
		nameStr := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%-*s", nameW, name))
		sizeStr := lipgloss.NewStyle().Foreground(ui.ColorTextDim).Render(fmt.Sprintf("%12s", e.Set.PrettySize()))
		lines = append(lines, m.row(i, fmt.Sprintf("%s %s", nameStr, sizeStr)))
	}

	journal := lipgloss.NewStyle().Foreground(ui.ColorSecondary).Render("Vacuum system journal")
	lines = append(lines, m.row(len(lines), journal))

	switch m.mode {
	case modeConfirm, modeJournal:
		prompt := lipgloss.NewStyle().Foreground(ui.ColorWarning).Bold(true).Render("  " + m.prompt)
		lines = append(lines, "", prompt, "  "+m.input.View())
	}

	return strings.Join(lines, "\n")
}

func (m Model) row(i int, body string) string {
	prefix := "   "
	if i == m.cursor {
		prefix = " " + lipgloss.NewStyle().Foreground(clrCursor).Bold(true).Render(ui.IconBlock) + " "
	}
	num := lipgloss.NewStyle().Foreground(clrDim).Render(fmt.Sprintf("%2d.", i))
	return prefix + num + " " + body
}

// ─── File listing ────────────────────────────────────────────────────────────

func (m Model) renderFiles(w int) string {
	e := m.selected()
	files := e.Set.List()

	title := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorCoral).
		Render(fmt.Sprintf("  %s %s  (%d entries, %s)", ui.IconChevron, e.Category.Name, len(files), e.Set.PrettySize()))
	if len(files) == 0 {
		return title + "\n" + lipgloss.NewStyle().Foreground(clrDim).Italic(true).Render("  (nothing matched)")
	}

	vh := m.height - 9
	if vh < 3 {
		vh = 3
	}
	lines := []string{title}
	for i := m.offset; i < len(files) && i < m.offset+vh; i++ {
		p := files[i]
		if len(p) > w-6 {
			p = "…" + p[len(p)-(w-7):]
		}
		lines = append(lines, "    "+ui.IconBullet+" "+p)
	}
	if len(files) > vh {
		lines = append(lines, lipgloss.NewStyle().Foreground(clrDim).Italic(true).
			Render(fmt.Sprintf("  ── %d/%d ──", min(m.offset+vh, len(files)), len(files))))
	}
	return strings.Join(lines, "\n")
}

// ─── Footer ──────────────────────────────────────────────────────────────────

func (m Model) renderFooter() string {
	var parts []string

	if m.err != nil {
		parts = append(parts, ui.ErrorStyle().Render("  "+ui.IconError+" "+m.err.Error()))
	} else if m.message != "" {
		parts = append(parts, ui.SuccessStyle().Render("  "+ui.IconCheck+" "+m.message))
	}

	var hints []string
	switch m.mode {
	case modeFiles:
		hints = []string{"↑/↓ scroll", "esc back"}
	case modeConfirm:
		hints = []string{"y/N then enter", "esc cancel"}
	case modeJournal:
		hints = []string{"enter run", "esc cancel"}
	default:
		for _, b := range keys.listHelp() {
			h := b.Help()
			hints = append(hints, h.Key+" "+h.Desc)
		}
	}
	parts = append(parts, ui.HintBarStyle().Render("  "+strings.Join(hints, "  "+ui.IconPipe+"  ")))
	return strings.Join(parts, "\n")
}
