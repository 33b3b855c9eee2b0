package ui

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		max   int
		want  string
	}{
		{name: "short title unchanged", title: "Remove background", max: 60, want: "Remove background"},
		{name: "exactly max unchanged", title: strings.Repeat("a", 60), max: 60, want: strings.Repeat("a", 60)},
		{name: "long title truncated", title: strings.Repeat("a", 80), max: 60, want: strings.Repeat("a", 57) + "..."},
		{name: "multi-byte title truncated on rune boundary", title: strings.Repeat("请", 80), max: 60, want: strings.Repeat("请", 57) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateTitle(tt.title, tt.max)
			if got != tt.want {
				t.Errorf("truncateTitle(%q, %d) = %q, want %q", tt.title, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncated title is not valid UTF-8: %q", got)
			}
		})
	}
}
