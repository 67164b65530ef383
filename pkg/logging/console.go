package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Level is the console verbosity.
type Level int

const (
	// LevelQuiet shows only warnings, errors and the final result
	LevelQuiet Level = iota
	// LevelNormal shows workflow progress (default)
	LevelNormal
	// LevelVerbose shows every browser step
	LevelVerbose
	// LevelDebug shows all internal details
	LevelDebug
)

// ParseLevel converts a verbosity name into a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "quiet":
		return LevelQuiet, nil
	case "", "normal":
		return LevelNormal, nil
	case "verbose":
		return LevelVerbose, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelNormal, fmt.Errorf("unknown verbosity %q", name)
	}
}

// Console prints human-readable progress for a run.
type Console struct {
	level  Level
	writer io.Writer

	header  lipgloss.Style
	step    lipgloss.Style
	success lipgloss.Style
	info    lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style

	stepCount int
}

// NewConsole creates a console logger writing to stdout.
func NewConsole(level Level) *Console {
	return NewConsoleWriter(level, os.Stdout)
}

// NewConsoleWriter creates a console logger writing to w. Colors are only
// emitted when w is a terminal.
func NewConsoleWriter(level Level, w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		level:   level,
		writer:  w,
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		step:    r.NewStyle().Foreground(lipgloss.Color("6")),
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		info:    r.NewStyle().Foreground(lipgloss.Color("217")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		err:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Header prints a prominent header message
func (c *Console) Header(message string) {
	if c.level >= LevelNormal {
		rule := strings.Repeat("=", 60)
		fmt.Fprintf(c.writer, "\n%s\n%s\n%s\n", c.header.Render(rule), c.header.Render("  "+message), c.header.Render(rule))
	}
}

// Step prints a numbered workflow step
func (c *Console) Step(message string) {
	if c.level >= LevelNormal {
		c.stepCount++
		fmt.Fprintln(c.writer, c.step.Render(fmt.Sprintf("[%d] %s", c.stepCount, message)))
	}
}

// Successf prints a success message with checkmark
func (c *Console) Successf(format string, args ...interface{}) {
	if c.level >= LevelNormal {
		fmt.Fprintln(c.writer, c.success.Render("✓ "+fmt.Sprintf(format, args...)))
	}
}

// Infof prints an informational message
func (c *Console) Infof(format string, args ...interface{}) {
	if c.level >= LevelNormal {
		fmt.Fprintln(c.writer, c.info.Render(fmt.Sprintf(format, args...)))
	}
}

// Verbosef prints detailed information (only in verbose mode)
func (c *Console) Verbosef(format string, args ...interface{}) {
	if c.level >= LevelVerbose {
		fmt.Fprintln(c.writer, c.muted.Render("→ "+fmt.Sprintf(format, args...)))
	}
}

// Warnf prints a warning message
func (c *Console) Warnf(format string, args ...interface{}) {
	fmt.Fprintln(c.writer, c.warn.Render("⚠ Warning: "+fmt.Sprintf(format, args...)))
}

// Errorf prints an error message
func (c *Console) Errorf(format string, args ...interface{}) {
	fmt.Fprintln(c.writer, c.err.Render("✗ Error: "+fmt.Sprintf(format, args...)))
}

// Debugf prints debug information (only in debug mode)
func (c *Console) Debugf(format string, args ...interface{}) {
	if c.level >= LevelDebug {
		fmt.Fprintln(c.writer, c.muted.Render("[DEBUG] "+fmt.Sprintf(format, args...)))
	}
}
