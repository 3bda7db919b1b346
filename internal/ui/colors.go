// package ui defines terminal styling for CLI comparison runs
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// DefaultPalette is the stylesheet used by CLI progress rendering.
var DefaultPalette = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

// Title renders header text (user boundaries).
func (p *Palette) Title(s string) string { return p.title.Render(s) }

// OK renders success text (completed channels).
func (p *Palette) OK(s string) string { return p.ok.Render(s) }

// Err renders failure text (channel and user errors).
func (p *Palette) Err(s string) string { return p.err.Render(s) }

// Warn renders cautionary text.
func (p *Palette) Warn(s string) string { return p.warn.Render(s) }

// Help renders secondary text (per-page progress lines).
func (p *Palette) Help(s string) string { return p.help.Render(s) }

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
