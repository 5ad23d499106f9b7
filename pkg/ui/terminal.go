package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Logo printed at startup
const Logo = `
  ┌─┐ ┌─┐┬┌─┬ ┬┌┐ ┌─┐┌┬┐
  ├┴┐ └─┐├┴┐└┬┘├┴┐│ │ │
  └─┘ └─┘┴ ┴ ┴ └─┘└─┘ ┴   scheduled posting for Bluesky
`

var (
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Color functions for terminal output
var (
	Cyan    = cyanStyle.Render
	Yellow  = yellowStyle.Render
	Red     = redStyle.Render
	Green   = greenStyle.Render
	Magenta = magentaStyle.Render
	Dim     = dimStyle.Render
)

var (
	mu        sync.Mutex
	output    io.Writer = os.Stdout
	quietMode bool
)

// SetOutput redirects all console output
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Output returns the current console writer
func Output() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// SetQuietMode suppresses everything except errors
func SetQuietMode(quiet bool) {
	mu.Lock()
	defer mu.Unlock()
	quietMode = quiet
}

// IsQuietMode reports whether quiet mode is on
func IsQuietMode() bool {
	mu.Lock()
	defer mu.Unlock()
	return quietMode
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printf(format string, args ...interface{}) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintf(Output(), format, args...)
}

// PrintLogo prints the logo
func PrintLogo() {
	printf("%s\n", Cyan(Logo))
}

// PrintError prints an error message with optional detail. Errors are shown in quiet mode too.
func PrintError(msg string, args ...interface{}) {
	line := msg
	if len(args) > 0 {
		if detail := fmt.Sprintf("%v", args[0]); detail != "" {
			line = msg + ": " + detail
		}
	}
	fmt.Fprintln(Output(), Red(line))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	printf("%s\n", Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message with optional detail
func PrintWarning(msg string, args ...interface{}) {
	line := msg
	if len(args) > 0 {
		if detail := fmt.Sprintf("%v", args[0]); detail != "" {
			line = msg + ": " + detail
		}
	}
	printf("%s\n", Yellow(line))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	printf("%s\n", Magenta(msg))
}
