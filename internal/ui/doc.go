// Package ui holds the terminal styling used for console output.
//
// [Palette] wraps a handful of [lipgloss] styles (title, ok, error, warning, help) bound to a renderer for a
// specific writer, so redirected or captured output stays free of escape codes.
package ui
