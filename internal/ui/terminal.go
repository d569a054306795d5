package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor reports whether ANSI colors should be used on stdout.
// GESTOR_COLOR=always|never wins over everything else; otherwise NO_COLOR,
// CLICOLOR_FORCE, CLICOLOR and TTY detection are consulted in that order.
func ShouldUseColor() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("GESTOR_COLOR"))) {
	case "always":
		return true
	case "never":
		return false
	}
	// Any non-empty NO_COLOR disables color (https://no-color.org).
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// BarWidth sizes progress bars to the terminal: a quarter of the stdout
// width, clamped to [10, 40]. It returns fallback when stdout is not a
// terminal.
func BarWidth(fallback int) int {
	if !isTerminal(os.Stdout) {
		return fallback
	}
	cols, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 {
		return fallback
	}
	return min(max(cols/4, 10), 40)
}
