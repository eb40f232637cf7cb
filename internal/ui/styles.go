// Package ui holds the shared terminal palette, icons and small render
// helpers used by the menu, the status view and the commands.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lakshaymaurya-felt/reclaim/internal/core"
)

// ─── Palette ─────────────────────────────────────────────────────────────────

var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#0f766e", Dark: "#2dd4bf"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#4f46e5", Dark: "#a5b4fc"}
	ColorCoral     = lipgloss.AdaptiveColor{Light: "#e11d48", Dark: "#fb7185"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	ColorError     = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	ColorText      = lipgloss.AdaptiveColor{Light: "#1f2937", Dark: "#e5e7eb"}
	ColorTextDim   = lipgloss.AdaptiveColor{Light: "#4b5563", Dark: "#9ca3af"}
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#6b7280"}
)

// ─── Icons ───────────────────────────────────────────────────────────────────

const (
	IconDiamond = "◆"
	IconChevron = "›"
	IconPipe    = "│"
	IconBullet  = "•"
	IconBlock   = "▌"
	IconCheck   = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconFolder  = "▸"
)

// ─── Styles ──────────────────────────────────────────────────────────────────

// TitleStyle renders section titles.
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
}

// HintBarStyle renders key hints at the bottom of a view.
func HintBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
}

// TagWarningStyle renders a small inverted warning tag.
func TagWarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1f2937")).
		Background(ColorWarning).
		Bold(true)
}

// WarningStyle renders warning text.
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
}

// SuccessStyle renders success text.
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}

// ErrorStyle renders error text.
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError)
}

// FormatSize is core.FormatSize, re-exported for views.
func FormatSize(bytes int64) string { return core.FormatSize(bytes) }

// ─── Bars ────────────────────────────────────────────────────────────────────

// UsageBar renders a ████░░░░ bar for pct (0–100), colored by severity.
func UsageBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}

	c := ColorSuccess
	switch {
	case pct >= 90:
		c = ColorError
	case pct >= 75:
		c = ColorCoral
	case pct >= 50:
		c = ColorWarning
	}

	f := lipgloss.NewStyle().Foreground(c).Render(strings.Repeat("█", filled))
	e := lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("░", width-filled))
	return f + e
}

// ─── Tables ──────────────────────────────────────────────────────────────────

// Table returns a rounded table with the shared header and cell styles.
func Table() *table.Table {
	header := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Padding(0, 1)
	cell := lipgloss.NewStyle().Foreground(ColorText).Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}
