// Package output provides formatted output for CLI results.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/remsh/remsh/internal/remote"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// Output handles formatted output.
type Output struct {
	w        io.Writer
	useColor bool
	debug    bool
}

// New creates a new output handler.
func New(w io.Writer) *Output {
	return &Output{
		w:        w,
		useColor: true,
	}
}

// SetColor enables or disables color output.
func (o *Output) SetColor(enabled bool) {
	o.useColor = enabled
}

// SetDebug enables or disables debug output.
func (o *Output) SetDebug(enabled bool) {
	o.debug = enabled
}

// color returns the string wrapped in color codes if enabled.
func (o *Output) color(c, s string) string {
	if !o.useColor {
		return s
	}
	return c + s + colorReset
}

// CommandResult prints the outcome of one command execution.
// Format: [indicator] command (exit=N, Ns) followed by captured stdout.
func (o *Output) CommandResult(command string, res *remote.Result) {
	indicator := "✓"
	statusColor := colorGreen
	if res.ExitStatus != 0 {
		indicator = "✗"
		statusColor = colorRed
	}

	o.printf("%s %s %s\n",
		o.color(statusColor, indicator),
		command,
		o.color(colorGray, fmt.Sprintf("(exit=%d, %ds)", res.ExitStatus, res.Elapsed)))

	if res.Stdout != "" {
		for _, line := range strings.Split(strings.TrimRight(res.Stdout, "\n"), "\n") {
			o.printf("  %s\n", line)
		}
	}
}

// Dispatched prints the outcome of a no-wait execution.
func (o *Output) Dispatched(command string, res *remote.Result) {
	indicator := "✓"
	statusColor := colorGreen
	if res.ExitStatus != 0 {
		indicator = "✗"
		statusColor = colorRed
	}
	o.printf("%s %s %s\n",
		o.color(statusColor, indicator),
		command,
		o.color(colorGray, fmt.Sprintf("(exit=%d, dispatched)", res.ExitStatus)))
}

// TransferResult prints the outcome of an upload or download.
func (o *Output) TransferResult(op, src, dst string, ok bool) {
	if ok {
		o.printf("%s %s %s %s %s\n", o.color(colorGreen, "✓"), op, src, o.color(colorGray, "→"), dst)
		return
	}
	o.printf("%s %s %s %s %s %s\n", o.color(colorRed, "✗"), op, src, o.color(colorGray, "→"), dst, o.color(colorRed, "failed"))
}

// Probe prints the outcome of an existence check or prefix search.
func (o *Output) Probe(label string, found bool) {
	if found {
		o.printf("%s %s\n", o.color(colorGreen, "✓"), label)
		return
	}
	o.printf("%s %s\n", o.color(colorCyan, "○"), label)
}

// Info prints an informational message.
func (o *Output) Info(format string, args ...any) {
	o.printf("%s %s\n", o.color(colorBlue, "INFO"), fmt.Sprintf(format, args...))
}

// Warn prints a warning message.
func (o *Output) Warn(format string, args ...any) {
	o.printf("%s %s\n", o.color(colorYellow, "WARN"), fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (o *Output) Error(format string, args ...any) {
	o.printf("%s %s\n", o.color(colorRed, "ERROR"), fmt.Sprintf(format, args...))
}

// Debug prints a debug message (only in debug mode).
func (o *Output) Debug(format string, args ...any) {
	if o.debug {
		o.printf("%s %s\n", o.color(colorGray, "DEBUG"), fmt.Sprintf(format, args...))
	}
}

func (o *Output) printf(format string, args ...any) {
	fmt.Fprintf(o.w, format, args...)
}
