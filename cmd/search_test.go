package cmd

import (
	"strings"
	"testing"
	"text/template"

	"github.com/mattn/go-runewidth"

	"github.com/jfmyers9/beetle/pkg/beets"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "no padding when width is 0",
			input:    "Hello",
			width:    0,
			expected: "Hello",
		},
		{
			name:     "no padding when width is negative",
			input:    "Hello",
			width:    -1,
			expected: "Hello",
		},
		{
			name:     "pad short text with spaces",
			input:    "Hi",
			width:    10,
			expected: "Hi        ",
		},
		{
			name:     "exact width unchanged",
			input:    "Hello",
			width:    5,
			expected: "Hello",
		},
		{
			name:     "truncate long text with ellipsis",
			input:    "This is a very long string that needs truncation",
			width:    20,
			expected: "This is a very lo...",
		},
		{
			name:     "handle wide characters",
			input:    "日本語",
			width:    10,
			expected: "日本語    ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := padToWidth(tt.input, tt.width)
			if got != tt.expected {
				t.Errorf("padToWidth(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.expected)
			}
			if tt.width > 0 {
				if w := runewidth.StringWidth(got); w != tt.width {
					t.Errorf("display width = %d, want %d", w, tt.width)
				}
			}
		})
	}
}

func TestFormatItem(t *testing.T) {
	item := beets.Item{ID: "42", Title: "Clair de lune", Artist: "Claude Debussy", Album: "Suite bergamasque", Length: 301}

	tests := []struct {
		name     string
		format   string
		expected string
	}{
		{"default", "{{.Artist}} - {{.Title}}", "Claude Debussy - Clair de lune"},
		{"with length", "{{.Title}} ({{.Length}})", "Clair de lune (5:01)"},
		{"id and album", "{{.ID}} {{.Album}}", "42 Suite bergamasque"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := template.Must(template.New("output").Parse(tt.format))
			got, err := formatItem(item, tmpl)
			if err != nil {
				t.Fatalf("formatItem() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("formatItem() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatItem_MissingField(t *testing.T) {
	tmpl := template.Must(template.New("output").Parse("{{.Genre}}"))
	_, err := formatItem(beets.Item{}, tmpl)
	if err == nil || !strings.Contains(err.Error(), "template execution failed") {
		t.Errorf("formatItem() error = %v, want template execution failure", err)
	}
}
