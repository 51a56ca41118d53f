package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const statusLabelWidth = 20

// palette renders summaries, falling back to plain text off a terminal.
type palette struct {
	colorize bool
	title    lipgloss.Style
	muted    lipgloss.Style
	ok       lipgloss.Style
	warn     lipgloss.Style
	err      lipgloss.Style
}

func newPalette(w io.Writer) palette {
	colorize := shouldColorize(w)
	r := lipgloss.NewRenderer(w)
	return palette{
		colorize: colorize,
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		muted:    r.NewStyle().Foreground(lipgloss.Color("245")),
		ok:       r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		warn:     r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		err:      r.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	}
}

func (p palette) render(style lipgloss.Style, text string) string {
	if !p.colorize {
		return text
	}
	return style.Render(text)
}

func (p palette) heading(title string) string {
	return p.render(p.title, strings.TrimSpace(title))
}

// field renders an indented "label: value" row.
func (p palette) field(label, value string) string {
	return fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", value)
}

func (p palette) status(label string, kind statusKind, message string) string {
	text := "[" + statusKindLabel(kind) + "]"
	if message != "" {
		text += " " + message
	}
	switch kind {
	case statusOK:
		text = p.render(p.ok, text)
	case statusWarn:
		text = p.render(p.warn, text)
	case statusError:
		text = p.render(p.err, text)
	default:
		text = p.render(p.muted, text)
	}
	return p.field(label, text)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
