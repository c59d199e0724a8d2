package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	titleColor = "#7D56F4"
	okColor    = "#04B575"
	errColor   = "#FF0000"
	warnColor  = "#FFA500"
	helpColor  = "#626262"
)

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	Title(string) string // Section headings
	OK(string) string    // Healthy counts
	Err(string) string   // Failures
	Warn(string) string  // Skips and unverified paths
	Help(string) string  // Hints and secondary text
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

// NewPalette builds a palette for output written to w. Colors are dropped when w is not a terminal.
func NewPalette(w io.Writer) *Palette {
	r := lipgloss.NewRenderer(w)
	return &Palette{
		title: NewBold(r, titleColor),
		ok:    NewBold(r, okColor),
		err:   NewBold(r, errColor),
		warn:  NewStyle(r, warnColor),
		help:  NewEm(r, helpColor),
	}
}

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) OK(s string) string    { return p.ok.Render(s) }
func (p *Palette) Err(s string) string   { return p.err.Render(s) }
func (p *Palette) Warn(s string) string  { return p.warn.Render(s) }
func (p *Palette) Help(s string) string  { return p.help.Render(s) }

func NewStyle(r *lipgloss.Renderer, fg string) lipgloss.Style {
	return r.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(r *lipgloss.Renderer, fg string) lipgloss.Style {
	return NewStyle(r, fg).Bold(true)
}

func NewEm(r *lipgloss.Renderer, fg string) lipgloss.Style {
	return NewStyle(r, fg).Italic(true)
}
