// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// progressLine redraws a single progress bar line on w.
type progressLine struct {
	w     io.Writer
	label string
	bar   progress.Model
	quiet bool
}

func newProgressLine(w io.Writer, label string, quiet bool) *progressLine {
	return &progressLine{
		w:     w,
		label: label,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		quiet: quiet,
	}
}

// Update draws done/total and ends the line once the run completes.
func (p *progressLine) Update(done, total int) {
	if p.quiet || total <= 0 {
		return
	}
	fmt.Fprintf(p.w, "\r%s %s %s", p.label, p.bar.ViewAs(float64(done)/float64(total)), dimStyle.Render(fmt.Sprintf("%d/%d", done, total)))
	if done >= total {
		fmt.Fprintln(p.w)
	}
}

func status(w io.Writer, style lipgloss.Style, tag, msg string) {
	fmt.Fprintf(w, "%s %s\n", style.Render(tag), msg)
}

// preview renders Markdown for the terminal.
func preview(w io.Writer, markdown string) error {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	out, err := r.Render(markdown)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, strings.TrimRight(out, "\n")+"\n")
	return err
}
