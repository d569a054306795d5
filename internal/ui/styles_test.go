package ui

import (
	"strings"
	"testing"
)

func TestBar(t *testing.T) {
	ForceNoColor()

	tests := []struct {
		name         string
		value, total float64
		width        int
		want         string
	}{
		{"Half", 5, 10, 4, "██░░"},
		{"Full", 10, 10, 3, "███"},
		{"Over", 15, 10, 3, "███"},
		{"Negative", -1, 10, 3, "░░░"},
		{"ZeroTotal", 5, 0, 2, "░░"},
		{"ZeroWidth", 5, 10, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bar(tt.value, tt.total, tt.width); got != tt.want {
				t.Errorf("Bar(%v, %v, %d) = %q, want %q", tt.value, tt.total, tt.width, got, tt.want)
			}
		})
	}
}

func TestRenderNoColor(t *testing.T) {
	ForceNoColor()
	for _, s := range []string{RenderStatus("DONE"), RenderTrack(false), RenderAccent("x")} {
		if strings.Contains(s, "\x1b[") {
			t.Errorf("unexpected escape sequence in %q", s)
		}
	}
	if RenderTrack(true) != "on track" {
		t.Errorf("RenderTrack(true) = %q", RenderTrack(true))
	}
}
