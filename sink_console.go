// sink_console.go: ConsoleSink writing to stdout/stderr
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss/v2"
)

// consoleStyles holds the per-level lipgloss styles used to highlight the
// %level token when a ConsoleSink's underlying writer is a terminal.
type consoleStyles struct {
	levels map[Level]lipgloss.Style
}

func newConsoleStyles(renderer *lipgloss.Renderer) *consoleStyles {
	return &consoleStyles{
		levels: map[Level]lipgloss.Style{
			LevelTrace: renderer.NewStyle().Foreground(lipgloss.Color("243")),
			LevelDebug: renderer.NewStyle().Foreground(lipgloss.Color("63")),
			LevelInfo:  renderer.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
			LevelWarn:  renderer.NewStyle().Foreground(lipgloss.Color("192")).Bold(true),
			LevelError: renderer.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
			LevelFatal: renderer.NewStyle().Foreground(lipgloss.Color("134")).Bold(true),
		},
	}
}

func (s *consoleStyles) render(level Level, text string) string {
	if style, ok := s.levels[level]; ok {
		return style.Render(text)
	}
	return text
}

// ConsoleSink writes formatted records to an *os.File (conventionally
// os.Stdout or os.Stderr), flushing after every Append. When the target is
// a terminal, the rendered %level token is colorized with lipgloss; when
// it is redirected to a file or pipe, lipgloss's renderer automatically
// degrades to plain text.
type ConsoleSink struct {
	sinkBase
	mu     sync.Mutex
	out    *os.File
	styles *consoleStyles
	color  bool
}

// NewConsoleSink returns a ConsoleSink writing to out (os.Stdout or
// os.Stderr), formatting records with layout and gating them at level.
func NewConsoleSink(name string, out *os.File, level Level, layout Layout, colorize bool) *ConsoleSink {
	renderer := lipgloss.NewRenderer(out)
	return &ConsoleSink{
		sinkBase: newSinkBase(name, level, layout),
		out:      out,
		styles:   newConsoleStyles(renderer),
		color:    colorize,
	}
}

// Append renders event through the sink's Layout and writes it to the
// underlying file, flushing immediately.
func (c *ConsoleSink) Append(event *Event) {
	if c.IsClosed() || !c.IsLevelEnabled(event.Level) {
		return
	}
	layout := c.Layout()
	if layout == nil {
		return
	}
	line := layout.Format(event)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.color {
		prefix := c.styles.render(event.Level, event.Level.String())
		line = colorizeLevelToken(line, event.Level.String(), prefix)
	}

	if _, err := c.out.Write(line); err != nil {
		reportDiagnostic("console-sink", newComponentError(ErrCodeFileWrite, err.Error()))
		return
	}
	_ = c.out.Sync()
}

// colorizeLevelToken replaces the first occurrence of plain with styled in
// line. Layouts render the level as plain text; this wraps that same
// substring with ANSI styling without reformatting the whole record.
func colorizeLevelToken(line []byte, plain, styled string) []byte {
	idx := indexOf(line, plain)
	if idx < 0 {
		return line
	}
	out := make([]byte, 0, len(line)+len(styled)-len(plain))
	out = append(out, line[:idx]...)
	out = append(out, styled...)
	out = append(out, line[idx+len(plain):]...)
	return out
}

func indexOf(haystack []byte, needle string) int {
	n := len(needle)
	if n == 0 || n > len(haystack) {
		return -1
	}
	for i := 0; i+n <= len(haystack); i++ {
		if string(haystack[i:i+n]) == needle {
			return i
		}
	}
	return -1
}

// Close marks the sink closed. The underlying os.Stdout/os.Stderr file
// itself is never closed, since the process does not own its lifecycle.
func (c *ConsoleSink) Close() error {
	c.markClosed()
	return nil
}
