package mention

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pkt.systems/mention/markdown"
)

func textToken(s string, level int) *markdown.Token {
	tok := markdown.NewToken(markdown.KindText, "", 0)
	tok.Content = s
	tok.Level = level
	return tok
}

func htmlInline(raw string) *markdown.Token {
	tok := markdown.NewToken(markdown.KindHTMLInline, "", 0)
	tok.Content = raw
	return tok
}

func linkOpen(href string) *markdown.Token {
	tok := markdown.NewToken(markdown.KindLinkOpen, "a", 1)
	tok.SetAttr("href", href)
	return tok
}

func linkClose() *markdown.Token {
	return markdown.NewToken(markdown.KindLinkClose, "a", -1)
}

func inlineBlock(children ...*markdown.Token) *markdown.Token {
	tok := markdown.NewToken(markdown.KindInline, "", 0)
	tok.Children = children
	return tok
}

// sourceText reassembles the source of a split sequence.
func sourceText(tokens []*markdown.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		if tok.Kind == markdown.KindMention {
			b.WriteString(tok.Markup)
			continue
		}
		b.WriteString(tok.Content)
	}
	return b.String()
}

func mentionsOf(tokens []*markdown.Token) []string {
	var out []string
	for _, tok := range tokens {
		if tok.Kind == markdown.KindMention {
			out = append(out, tok.Info)
		}
	}
	return out
}

func TestSplitTextPreservesSource(t *testing.T) {
	t.Parallel()
	opts := Options{LocalDomain: StaticDomain("x.com")}
	declining := Options{
		LocalDomain: StaticDomain("x.com"),
		Link: func(handle string, _ any) (string, bool) {
			if strings.HasSuffix(handle, "@b.com") {
				return "", false
			}
			return "https://social.example/" + handle, true
		},
	}
	inputs := []string{
		"",
		"plain text",
		"@a@b.com",
		"hi @a@b.com!",
		"@foo and @bar@baz.org, then @qux.",
		"trailing @",
		"héllo @jürgen@exämple.de ünïcode",
		"@a@b.com@c@d.com",
		"mail me: user@example.com",
	}
	for _, in := range inputs {
		for _, o := range []Options{{}, opts, declining} {
			got := SplitText(textToken(in, 2), o, nil)
			require.Equal(t, in, sourceText(got), "input %q", in)
			for _, tok := range got {
				require.Equal(t, 2, tok.Level, "input %q", in)
			}
		}
	}
}

func TestSplitTextNoMatchReturnsInput(t *testing.T) {
	t.Parallel()
	tok := textToken("nothing to see", 0)
	got := SplitText(tok, Options{}, nil)
	require.Len(t, got, 1)
	require.Same(t, tok, got[0])
}

func TestSplitTextBareHandle(t *testing.T) {
	t.Parallel()

	tok := textToken("hi @foo!", 1)
	got := SplitText(tok, Options{}, nil)
	require.Len(t, got, 1)
	require.Same(t, tok, got[0], "bare handle without resolver must stay text")

	got = SplitText(textToken("hi @foo!", 1), Options{LocalDomain: StaticDomain("x.com")}, nil)
	require.Len(t, got, 3)
	require.Equal(t, markdown.KindText, got[0].Kind)
	require.Equal(t, "hi ", got[0].Content)
	m := got[1]
	require.Equal(t, markdown.KindMention, m.Kind)
	require.Equal(t, "a", m.Tag)
	require.Equal(t, "@foo@x.com", m.Info)
	require.Equal(t, "@foo", m.Markup)
	require.Equal(t, 1, m.Level)
	href, ok := m.Attr("href")
	require.True(t, ok)
	require.Equal(t, "acct:@foo@x.com", href)
	require.Equal(t, "!", got[2].Content)
}

func TestSplitTextLocalDomainDeclines(t *testing.T) {
	t.Parallel()
	opts := Options{LocalDomain: func(bare string, _ any) (string, bool) {
		if bare == "@known" {
			return "x.com", true
		}
		return "", false
	}}
	got := SplitText(textToken("@unknown @known", 0), opts, nil)
	require.Equal(t, []string{"@known@x.com"}, mentionsOf(got))
	require.Equal(t, "@unknown ", got[0].Content, "declined bare handle folds into surrounding text")
}

func TestSplitTextLinkDeclines(t *testing.T) {
	t.Parallel()
	opts := Options{Link: func(handle string, _ any) (string, bool) {
		return "", false
	}}
	got := SplitText(textToken("a @a@b.com c", 0), opts, nil)
	require.Len(t, got, 3)
	for _, tok := range got {
		require.Equal(t, markdown.KindText, tok.Kind)
	}
	require.Equal(t, "a ", got[0].Content)
	require.Equal(t, "@a@b.com", got[1].Content)
	require.Equal(t, " c", got[2].Content)
}

func TestSplitTextEmptyLinkCountsAsDeclined(t *testing.T) {
	t.Parallel()
	opts := Options{Link: func(string, any) (string, bool) { return "", true }}
	got := SplitText(textToken("@a@b.com", 0), opts, nil)
	require.Empty(t, mentionsOf(got))
	require.Equal(t, "@a@b.com", sourceText(got))
}

func TestSplitTextLinkAndAttributes(t *testing.T) {
	t.Parallel()
	opts := Options{
		Link: LinkTemplate("https://{domain}/@{user}"),
		LinkAttributes: Attributes(
			markdown.Attr{Name: "class", Value: "u-url mention"},
			markdown.Attr{Name: "rel", Value: "nofollow"},
		),
		Label: func(handle string, _ any) string { return "label:" + handle },
	}
	got := SplitText(textToken("@a@b.com", 0), opts, nil)
	require.Len(t, got, 1, "empty tail must be omitted")
	m := got[0]
	require.Equal(t, []markdown.Attr{
		{Name: "class", Value: "u-url mention"},
		{Name: "rel", Value: "nofollow"},
		{Name: "href", Value: "https://b.com/@a"},
	}, m.Attrs)
	require.Equal(t, "label:@a@b.com", m.Content)
}

func TestSplitTextHrefAttributeIsOverridden(t *testing.T) {
	t.Parallel()
	opts := Options{LinkAttributes: Attributes(
		markdown.Attr{Name: "href", Value: "https://wrong"},
		markdown.Attr{Name: "class", Value: "m"},
	)}
	got := SplitText(textToken("@a@b.com", 0), opts, nil)
	require.Equal(t, []markdown.Attr{
		{Name: "href", Value: "acct:@a@b.com"},
		{Name: "class", Value: "m"},
	}, got[0].Attrs)
}

func TestSplitTextHooksReceiveEnv(t *testing.T) {
	t.Parallel()
	env := map[string]any{"domain": "env.example"}
	opts := Options{
		LocalDomain: func(_ string, env any) (string, bool) {
			d, ok := env.(map[string]any)["domain"].(string)
			return d, ok
		},
	}
	got := SplitText(textToken("@me", 0), opts, env)
	require.Equal(t, []string{"@me@env.example"}, mentionsOf(got))
	_, recorded := env[EnvKey]
	require.False(t, recorded, "splitting must not record mentions")
}

func TestSplitSkipsMarkdownLinks(t *testing.T) {
	t.Parallel()
	block := inlineBlock(
		linkOpen("https://example.com"),
		textToken("@a@b.com", 0),
		linkClose(),
		textToken(" @c@d.com", 0),
	)
	Split([]*markdown.Token{block}, Options{}, nil)
	require.Equal(t, []string{"@c@d.com"}, mentionsOf(block.Children))
	require.Equal(t, "@a@b.com", block.Children[1].Content)
}

func TestSplitSkipsNestedLinks(t *testing.T) {
	t.Parallel()
	block := inlineBlock(
		linkOpen("https://outer"),
		linkOpen("https://inner"),
		textToken("@a@b.com", 0),
		linkClose(),
		textToken("@c@d.com", 0),
		linkClose(),
		textToken("@e@f.com", 0),
	)
	Split([]*markdown.Token{block}, Options{}, nil)
	require.Equal(t, []string{"@e@f.com"}, mentionsOf(block.Children))
}

func TestSplitSkipsRawAnchors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		open string
	}{
		{name: "plain", open: "<a>"},
		{name: "attributes", open: `<a href="https://x" class="y">`},
		{name: "uppercase", open: `<A HREF="https://x">`},
		{name: "whitespace", open: "<a\n  href='x'>"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			block := inlineBlock(
				htmlInline(tc.open),
				textToken("@a@b.com", 0),
				htmlInline("</a>"),
				textToken(" @c@d.com", 0),
			)
			Split([]*markdown.Token{block}, Options{}, nil)
			require.Equal(t, []string{"@c@d.com"}, mentionsOf(block.Children))
		})
	}
}

func TestSplitIgnoresOtherRawTags(t *testing.T) {
	t.Parallel()
	block := inlineBlock(
		htmlInline("<abbr>"),
		textToken("@a@b.com", 0),
		htmlInline("</abbr>"),
		htmlInline("<br>"),
		textToken("@c@d.com", 0),
	)
	Split([]*markdown.Token{block}, Options{}, nil)
	require.Equal(t, []string{"@a@b.com", "@c@d.com"}, mentionsOf(block.Children))
}

func TestSplitClampsStrayClosers(t *testing.T) {
	t.Parallel()
	block := inlineBlock(
		linkClose(),
		htmlInline("</a>"),
		textToken("@a@b.com", 0),
	)
	Split([]*markdown.Token{block}, Options{}, nil)
	require.Equal(t, []string{"@a@b.com"}, mentionsOf(block.Children))
}

func TestSplitResetsDepthPerBlock(t *testing.T) {
	t.Parallel()
	first := inlineBlock(linkOpen("https://x"), textToken("@a@b.com", 0))
	second := inlineBlock(textToken("@c@d.com", 0))
	para := markdown.NewToken(markdown.KindParagraphOpen, "p", 1)
	Split([]*markdown.Token{first, para, second}, Options{}, nil)
	require.Empty(t, mentionsOf(first.Children))
	require.Equal(t, []string{"@c@d.com"}, mentionsOf(second.Children))
}
