package terminal

import (
	"strings"
	"testing"
)

func plainLines(lines [][]Span) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		var b strings.Builder
		for _, sp := range line {
			b.WriteString(sp.Text)
		}
		out = append(out, b.String())
	}
	return out
}

func TestWrapSpans(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		spans []Span
		width int
		want  []string
	}{
		{name: "no wrap", spans: []Span{{Text: "a b  c"}}, width: 0, want: []string{"a b c"}},
		{name: "greedy", spans: []Span{{Text: "aaa bbb ccc"}}, width: 7, want: []string{"aaa bbb", "ccc"}},
		{name: "long word", spans: []Span{{Text: "abcdefghij x"}}, width: 4, want: []string{"abcdefghij", "x"}},
		{name: "hard break", spans: []Span{{Text: "a"}, {Text: "\n"}, {Text: "b"}}, width: 0, want: []string{"a", "b"}},
		{name: "joined spans", spans: []Span{{Text: "hi @"}, {Text: "x@y.com", Link: "acct:x"}, {Text: "!"}}, width: 20, want: []string{"hi @x@y.com!"}},
		{name: "wide runes", spans: []Span{{Text: "日本 語"}}, width: 4, want: []string{"日本", "語"}},
		{name: "empty", spans: nil, width: 10, want: []string{""}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := plainLines(wrapSpans(tc.spans, tc.width))
			if strings.Join(got, "|") != strings.Join(tc.want, "|") {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestWrapSpansKeepsLinks(t *testing.T) {
	t.Parallel()
	lines := wrapSpans([]Span{{Text: "see "}, {Text: "the docs", Link: "https://x"}}, 0)
	var linked []string
	for _, sp := range lines[0] {
		if sp.Link != "" {
			linked = append(linked, sp.Text)
		}
	}
	if strings.Join(linked, ",") != "the,docs" {
		t.Fatalf("unexpected linked pieces %v", linked)
	}
}

func TestFitURL(t *testing.T) {
	t.Parallel()
	if got := fitURL("https://example.com/a", 0); got != "https://example.com/a" {
		t.Fatalf("unexpected unlimited url %q", got)
	}
	if got := fitURL("https://example.com/a", 15); got != "example.com/a" {
		t.Fatalf("expected scheme trimmed, got %q", got)
	}
	if got := fitURL("https://example.com/abcdef", 8); got != "https:/…" {
		t.Fatalf("expected truncated url, got %q", got)
	}
}
