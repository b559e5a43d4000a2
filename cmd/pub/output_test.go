package main

import "testing"

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"shorter than limit", "short", 10, "short"},
		{"exactly at limit", "exactly ten", 11, "exactly ten"},
		{"over limit gets ellipsis", "this is a longer string", 10, "this is..."},
		{"empty string", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateString(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		width  int
		indent string
		want   string
	}{
		{
			name:   "short text unchanged",
			text:   "short text",
			width:  60,
			indent: "  ",
			want:   "short text",
		},
		{
			name:   "wraps at word boundaries with indent",
			text:   "one two three four five",
			width:  10,
			indent: "  ",
			want:   "one two\n  three four\n  five",
		},
		{
			name:   "single long word stays whole",
			text:   "pneumonoultramicroscopic",
			width:  10,
			indent: "  ",
			want:   "pneumonoultramicroscopic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.width, tt.indent)
			if got != tt.want {
				t.Errorf("wrapText(%q, %d, %q) = %q, want %q", tt.text, tt.width, tt.indent, got, tt.want)
			}
		})
	}
}
