// Package ui renders terminal output for the gestor CLI.
package ui

import (
	"fmt"
	"math"
	"strings"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorOK     = 114 // green
	colorWarn   = 179 // yellow
	colorFail   = 203 // red
)

var noColor bool

func render(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return render(colorCmd, s) }

func RenderOK(s string) string   { return render(colorOK, s) }
func RenderWarn(s string) string { return render(colorWarn, s) }
func RenderFail(s string) string { return render(colorFail, s) }

// RenderStatus colors a task status: DONE green, BLOCKED red, work in
// flight yellow and everything else muted.
func RenderStatus(status string) string {
	switch status {
	case "DONE":
		return RenderOK(status)
	case "BLOCKED":
		return RenderFail(status)
	case "IN_PROGRESS", "REVIEW":
		return RenderWarn(status)
	}
	return RenderMuted(status)
}

// RenderTrack renders an on-track flag.
func RenderTrack(onTrack bool) string {
	if onTrack {
		return RenderOK("on track")
	}
	return RenderFail("behind")
}

// Bar draws value/total as a bar of width cells. Values outside [0, total]
// are clamped; a non-positive total draws an empty bar.
func Bar(value, total float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		ratio := math.Max(0, math.Min(1, value/total))
		filled = int(math.Round(ratio * float64(width)))
	}
	return RenderAccent(strings.Repeat("█", filled)) + RenderMuted(strings.Repeat("░", width-filled))
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
