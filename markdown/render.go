package markdown

import (
	"strings"

	"golang.org/x/net/html"
)

// RenderRule renders the token at idx. r gives access to the default
// rendering behaviour for delegation.
type RenderRule func(tokens []*Token, idx int, env any, r *Renderer) string

// Renderer turns a token stream into HTML. Rules are looked up by token kind;
// kinds without a rule are rendered by RenderToken.
type Renderer struct {
	Rules map[TokenKind]RenderRule

	xhtml  bool
	breaks bool
}

// NewRenderer returns a renderer with the default rule set.
func NewRenderer(opts ...Option) *Renderer {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return newRenderer(cfg)
}

func newRenderer(cfg config) *Renderer {
	r := &Renderer{xhtml: cfg.xhtml, breaks: cfg.breaks}
	r.Rules = map[TokenKind]RenderRule{
		KindText:       renderText,
		KindCodeInline: renderCodeInline,
		KindCodeBlock:  renderCodeBlock,
		KindFence:      renderFence,
		KindImage:      renderImage,
		KindHardBreak:  renderHardBreak,
		KindSoftBreak:  renderSoftBreak,
		KindHTMLBlock:  renderRaw,
		KindHTMLInline: renderRaw,
		KindOther:      renderNothing,
	}
	return r
}

// Render renders a block token stream.
func (r *Renderer) Render(tokens []*Token, env any) string {
	var b strings.Builder
	for i, tok := range tokens {
		if tok.Kind == KindInline {
			b.WriteString(r.RenderInline(tok.Children, env))
			continue
		}
		b.WriteString(r.renderAt(tokens, i, env))
	}
	return b.String()
}

// RenderInline renders the children of an inline token.
func (r *Renderer) RenderInline(tokens []*Token, env any) string {
	var b strings.Builder
	for i := range tokens {
		b.WriteString(r.renderAt(tokens, i, env))
	}
	return b.String()
}

func (r *Renderer) renderAt(tokens []*Token, idx int, env any) string {
	if rule, ok := r.Rules[tokens[idx].Kind]; ok && rule != nil {
		return rule(tokens, idx, env, r)
	}
	return r.RenderToken(tokens, idx)
}

// RenderToken is the default renderer: it emits the opening, closing or void
// tag of the token with its attributes. Out-of-range indices render nothing.
func (r *Renderer) RenderToken(tokens []*Token, idx int) string {
	if idx < 0 || idx >= len(tokens) {
		return ""
	}
	tok := tokens[idx]
	if tok.Hidden || tok.Tag == "" {
		return ""
	}
	var b strings.Builder
	if tok.Block && tok.Nesting != -1 && idx > 0 && tokens[idx-1].Hidden {
		b.WriteByte('\n')
	}
	if tok.Nesting == -1 {
		b.WriteString("</")
	} else {
		b.WriteByte('<')
	}
	b.WriteString(tok.Tag)
	b.WriteString(r.RenderAttrs(tok))
	if tok.Nesting == 0 && r.xhtml {
		b.WriteString(" /")
	}
	needLF := false
	if tok.Block {
		needLF = true
		if tok.Nesting == 1 && idx+1 < len(tokens) {
			next := tokens[idx+1]
			if next.Kind == KindInline || next.Hidden {
				needLF = false
			} else if next.Nesting == -1 && next.Tag == tok.Tag {
				needLF = false
			}
		}
	}
	if needLF {
		b.WriteString(">\n")
	} else {
		b.WriteByte('>')
	}
	return b.String()
}

// RenderAttrs renders the token attributes in order, each prefixed with a
// space. Values are HTML-escaped.
func (r *Renderer) RenderAttrs(tok *Token) string {
	if len(tok.Attrs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range tok.Attrs {
		b.WriteByte(' ')
		b.WriteString(html.EscapeString(a.Name))
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Value))
		b.WriteByte('"')
	}
	return b.String()
}

// RenderInlineAsText renders inline tokens as plain text, as used for image
// alt attributes.
func RenderInlineAsText(tokens []*Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		switch tok.Kind {
		case KindText, KindCodeInline, KindHTMLInline, KindImage:
			b.WriteString(tok.Content)
		case KindMention:
			b.WriteString(tok.Info)
		case KindSoftBreak, KindHardBreak:
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (r *Renderer) voidClose() string {
	if r.xhtml {
		return " />"
	}
	return ">"
}

func renderText(tokens []*Token, idx int, _ any, _ *Renderer) string {
	return html.EscapeString(tokens[idx].Content)
}

func renderCodeInline(tokens []*Token, idx int, _ any, r *Renderer) string {
	tok := tokens[idx]
	return "<code" + r.RenderAttrs(tok) + ">" + html.EscapeString(tok.Content) + "</code>"
}

func renderCodeBlock(tokens []*Token, idx int, _ any, r *Renderer) string {
	tok := tokens[idx]
	return "<pre" + r.RenderAttrs(tok) + "><code>" + html.EscapeString(tok.Content) + "</code></pre>\n"
}

func renderFence(tokens []*Token, idx int, _ any, r *Renderer) string {
	tok := tokens[idx]
	lang := ""
	if fields := strings.Fields(tok.Info); len(fields) > 0 {
		lang = fields[0]
	}
	class := ""
	if lang != "" {
		class = ` class="language-` + html.EscapeString(lang) + `"`
	}
	return "<pre><code" + class + ">" + html.EscapeString(tok.Content) + "</code></pre>\n"
}

func renderImage(tokens []*Token, idx int, _ any, r *Renderer) string {
	tok := *tokens[idx]
	tok.Attrs = append([]Attr(nil), tok.Attrs...)
	tok.SetAttr("alt", tok.Content)
	return "<img" + r.RenderAttrs(&tok) + r.voidClose()
}

func renderHardBreak(_ []*Token, _ int, _ any, r *Renderer) string {
	return "<br" + r.voidClose() + "\n"
}

func renderSoftBreak(_ []*Token, _ int, _ any, r *Renderer) string {
	if r.breaks {
		return "<br" + r.voidClose() + "\n"
	}
	return "\n"
}

func renderRaw(tokens []*Token, idx int, _ any, _ *Renderer) string {
	return tokens[idx].Content
}

func renderNothing([]*Token, int, any, *Renderer) string {
	return ""
}
