package terminal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	reset     = "\x1b[0m"
	bold      = "\x1b[1m"
	italic    = "\x1b[3m"
	underline = "\x1b[4m"
)

// Style describes a terminal style as an ANSI prefix sequence.
type Style struct {
	Prefix string
}

// Styles groups the semantic styles used by the renderer.
type Styles struct {
	Text           Style
	Heading        [6]Style
	Emphasis       Style
	Strong         Style
	EmphasisStrong Style
	CodeInline     Style
	CodeBlock      Style
	Quote          Style
	ListMarker     Style
	LinkText       Style
	LinkURL        Style
	Mention        Style
	ThematicBreak  Style
}

// Theme provides named styles for terminal rendering.
type Theme interface {
	Name() string
	Styles() Styles
}

type theme struct {
	name   string
	styles Styles
}

func (t theme) Name() string   { return t.name }
func (t theme) Styles() Styles { return t.styles }

// NewTheme returns a Theme from a Styles definition.
func NewTheme(name string, styles Styles) Theme {
	return theme{name: name, styles: styles}
}

type palette struct {
	text, heading, h2, h3, emphasis, strong, code, quote, marker, link, url, mention, rule string
}

func fg(hex string) string {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", v>>16&0xff, v>>8&0xff, v&0xff)
}

func style(prefixes ...string) Style {
	var b strings.Builder
	for _, p := range prefixes {
		if p != "" {
			b.WriteString(p)
		}
	}
	return Style{Prefix: b.String()}
}

func stylesFromPalette(p palette) Styles {
	return Styles{
		Text:           style(fg(p.text)),
		Heading:        [6]Style{style(bold, fg(p.heading)), style(bold, fg(p.h2)), style(bold, fg(p.h3)), style(fg(p.h3)), style(fg(p.h3)), style(fg(p.h3))},
		Emphasis:       style(italic, fg(p.emphasis)),
		Strong:         style(bold, fg(p.strong)),
		EmphasisStrong: style(bold, italic, fg(p.strong)),
		CodeInline:     style(fg(p.code)),
		CodeBlock:      style(fg(p.code)),
		Quote:          style(fg(p.quote)),
		ListMarker:     style(fg(p.marker)),
		LinkText:       style(underline, fg(p.link)),
		LinkURL:        style(fg(p.url)),
		Mention:        style(bold, fg(p.mention)),
		ThematicBreak:  style(fg(p.rule)),
	}
}

var builtinThemes = map[string]Theme{
	"default": theme{name: "default", styles: stylesFromPalette(palette{
		text: "#d0d0d0", heading: "#5fafff", h2: "#87afff", h3: "#87d7ff", emphasis: "#d7afff", strong: "#ffffff",
		code: "#afd787", quote: "#8a8a8a", marker: "#5fafff", link: "#5fd7ff", url: "#808080", mention: "#ff87d7", rule: "#585858",
	})},
	"dracula": theme{name: "dracula", styles: stylesFromPalette(palette{
		text: "#f8f8f2", heading: "#bd93f9", h2: "#ff79c6", h3: "#8be9fd", emphasis: "#f1fa8c", strong: "#ffb86c",
		code: "#50fa7b", quote: "#6272a4", marker: "#ff79c6", link: "#8be9fd", url: "#6272a4", mention: "#ff79c6", rule: "#44475a",
	})},
	"nord": theme{name: "nord", styles: stylesFromPalette(palette{
		text: "#d8dee9", heading: "#88c0d0", h2: "#81a1c1", h3: "#5e81ac", emphasis: "#b48ead", strong: "#eceff4",
		code: "#a3be8c", quote: "#4c566a", marker: "#88c0d0", link: "#8fbcbb", url: "#4c566a", mention: "#ebcb8b", rule: "#434c5e",
	})},
	"gruvbox": theme{name: "gruvbox", styles: stylesFromPalette(palette{
		text: "#ebdbb2", heading: "#fabd2f", h2: "#fe8019", h3: "#b8bb26", emphasis: "#d3869b", strong: "#fbf1c7",
		code: "#8ec07c", quote: "#928374", marker: "#fe8019", link: "#83a598", url: "#928374", mention: "#fb4934", rule: "#504945",
	})},
	"solarized-dark": theme{name: "solarized-dark", styles: stylesFromPalette(palette{
		text: "#839496", heading: "#268bd2", h2: "#2aa198", h3: "#859900", emphasis: "#6c71c4", strong: "#93a1a1",
		code: "#859900", quote: "#586e75", marker: "#cb4b16", link: "#268bd2", url: "#586e75", mention: "#d33682", rule: "#073642",
	})},
}

// AvailableThemes returns the names of built-in themes.
func AvailableThemes() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a built-in theme by name.
func ThemeByName(name string) (Theme, bool) {
	if name == "" {
		return builtinThemes["default"], true
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	theme, ok := builtinThemes[normalized]
	return theme, ok
}

// DefaultTheme returns the default built-in theme.
func DefaultTheme() Theme {
	return builtinThemes["default"]
}

// BoringTheme returns a theme without any styling.
func BoringTheme() Theme {
	return NewTheme("boring", Styles{})
}
