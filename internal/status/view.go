package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/lakshaymaurya-felt/reclaim/internal/core"
	"github.com/lakshaymaurya-felt/reclaim/internal/ui"
)

var clrSpark = lipgloss.AdaptiveColor{Light: "#0891b2", Dark: "#22d3ee"}

// ─── Top-level renderer ─────────────────────────────────────────────────────

func (m StatusModel) renderView() string {
	w := m.Width
	if w < 50 {
		w = 50
	}

	var s strings.Builder
	s.WriteString(m.renderTabs(w))
	s.WriteString("\n")

	if m.Report == nil {
		s.WriteString(lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Render("  Scanning…"))
		if m.Err != nil {
			s.WriteString("\n" + m.renderStatusFooter())
		}
		return s.String()
	}

	switch m.Tab {
	case TabOverview:
		s.WriteString(m.renderOverview(w))
	case TabDisks:
		s.WriteString("\n" + DiskTable(m.Report.Disks))
	case TabCategories:
		s.WriteString("\n" + CategoryTable(m.Report.Categories))
	}

	s.WriteString("\n")
	s.WriteString(m.renderStatusFooter())
	return s.String()
}

// ─── Tab bar ─────────────────────────────────────────────────────────────────

func (m StatusModel) renderTabs(w int) string {
	active := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(ui.ColorPrimary).
		Padding(0, 2)

	inactive := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Padding(0, 2)

	var tabs []string
	for i, name := range TabNames {
		label := fmt.Sprintf("%d·%s", i+1, name)
		if Tab(i) == m.Tab {
			tabs = append(tabs, active.Render(label))
		} else {
			tabs = append(tabs, inactive.Render(label))
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	divider := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Render(strings.Repeat("─", w))

	return bar + "\n" + divider
}

// ─── Overview tab ────────────────────────────────────────────────────────────

func (m StatusModel) renderOverview(w int) string {
	r := m.Report

	headline := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Render(fmt.Sprintf("  %s %s reclaimable", ui.IconDiamond, core.FormatSize(r.Reclaim)))

	barW := 24
	if w > 100 {
		barW = 32
	}
	var lines []string
	for _, d := range r.Disks {
		lines = append(lines, fmt.Sprintf("  %-14s %s  %5.1f%%  %s free",
			d.Mountpoint, ui.UsageBar(d.UsedPercent, barW), d.UsedPercent,
			core.FormatSize(int64(d.Free))))
	}
	if len(lines) == 0 {
		lines = append(lines, "  (no filesystem data)")
	}
	if len(m.UsedHistory) > 1 {
		lines = append(lines, "", "  History  "+sparkline(m.UsedHistory, 30))
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))

	updated := lipgloss.NewStyle().
		Foreground(ui.ColorTextDim).
		Render("  Updated " + r.Collected.Format("15:04:05"))

	return lipgloss.JoinVertical(lipgloss.Left, "", headline, "", card, updated)
}

// ─── Tables ──────────────────────────────────────────────────────────────────

// DiskTable renders filesystem usage.
func DiskTable(disks []DiskUsage) string {
	t := ui.Table().Headers("Mount", "Type", "Size", "Used", "Free", "Use%")
	for _, d := range disks {
		t.Row(
			d.Mountpoint,
			d.Fstype,
			core.FormatSize(int64(d.Total)),
			core.FormatSize(int64(d.Used)),
			core.FormatSize(int64(d.Free)),
			fmt.Sprintf("%.1f%%", d.UsedPercent),
		)
	}
	return t.Render()
}

// CategoryTable renders what each category matches.
func CategoryTable(cats []CategorySummary) string {
	t := ui.Table().Headers("Key", "Category", "Files", "Size")
	for _, c := range cats {
		name := c.Name
		if c.Risky {
			name += " " + ui.IconWarning
		}
		t.Row(c.Key, name, humanize.Comma(int64(c.Files)), core.FormatSize(c.Size))
	}
	return t.Render()
}

// Render is the non-interactive form of the dashboard.
func Render(r *Report) string {
	title := ui.TitleStyle().Render(fmt.Sprintf("%s Filesystems", ui.IconDiamond))
	cats := ui.TitleStyle().Render(fmt.Sprintf("%s Categories  (%s reclaimable)", ui.IconDiamond, core.FormatSize(r.Reclaim)))
	return lipgloss.JoinVertical(lipgloss.Left,
		title, DiskTable(r.Disks), "", cats, CategoryTable(r.Categories))
}

// ─── Footer ──────────────────────────────────────────────────────────────────

func (m StatusModel) renderStatusFooter() string {
	hints := "  Tab/Shift-Tab switch  " + ui.IconPipe + "  1-3 jump  " + ui.IconPipe + "  q quit"
	footer := ui.HintBarStyle().Render(hints)

	if m.Err != nil {
		errStr := lipgloss.NewStyle().
			Foreground(ui.ColorError).
			Render("  " + ui.IconError + " " + m.Err.Error())
		return errStr + "\n" + footer
	}
	return footer
}

// ─── Drawing primitives ─────────────────────────────────────────────────────

// sparkline renders a mini chart of percentages using block chars.
func sparkline(data []float64, width int) string {
	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	d := data
	if len(d) > width {
		d = d[len(d)-width:]
	}

	var b strings.Builder
	for _, v := range d {
		idx := int(v / 100 * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}
	for i := len(d); i < width; i++ {
		b.WriteRune(blocks[0])
	}
	return lipgloss.NewStyle().Foreground(clrSpark).Render(b.String())
}
