package ui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type palette struct {
	fg, muted, accent, done, danger, particle lipgloss.Color
}

var (
	lightPalette = palette{
		fg:       lipgloss.Color("#1f2937"),
		muted:    lipgloss.Color("#6b7280"),
		accent:   lipgloss.Color("#6366f1"),
		done:     lipgloss.Color("#9ca3af"),
		danger:   lipgloss.Color("#dc2626"),
		particle: lipgloss.Color("#c7d2fe"),
	}
	darkPalette = palette{
		fg:       lipgloss.Color("#e5e7eb"),
		muted:    lipgloss.Color("#9ca3af"),
		accent:   lipgloss.Color("#a78bfa"),
		done:     lipgloss.Color("#6b7280"),
		danger:   lipgloss.Color("#f87171"),
		particle: lipgloss.Color("#4c1d95"),
	}
)

type styles struct {
	title     lipgloss.Style
	item      lipgloss.Style
	done      lipgloss.Style
	cursor    lipgloss.Style
	editing   lipgloss.Style
	muted     lipgloss.Style
	tab       lipgloss.Style
	tabActive lipgloss.Style
	danger    lipgloss.Style
	particle  lipgloss.Style
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		item:      lipgloss.NewStyle().Foreground(p.fg),
		done:      lipgloss.NewStyle().Foreground(p.done).Strikethrough(true),
		cursor:    lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		editing:   lipgloss.NewStyle().Foreground(p.accent).Italic(true),
		muted:     lipgloss.NewStyle().Foreground(p.muted),
		tab:       lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		tabActive: lipgloss.NewStyle().Foreground(p.accent).Bold(true).Underline(true).Padding(0, 1),
		danger:    lipgloss.NewStyle().Foreground(p.danger),
		particle:  lipgloss.NewStyle().Foreground(p.particle),
	}
}

// Plain makes task text safe to paint: escape sequences are removed and
// any remaining control characters become spaces.
func Plain(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
