package terminal

import (
	"strconv"
	"strings"

	"pkt.systems/mention/markdown"
)

// Option configures a Renderer.
type Option func(*config)

type config struct {
	osc8 bool
}

// WithOSC8 enables or disables OSC 8 hyperlinks.
func WithOSC8(enabled bool) Option {
	return func(cfg *config) {
		cfg.osc8 = enabled
	}
}

// RenderRule appends the inline token at idx to w.
type RenderRule func(w *Inline, tokens []*markdown.Token, idx int, env any)

// Renderer renders a markdown token stream as styled terminal text. Inline
// tokens are dispatched through Rules by kind; kinds without a rule are
// dropped.
type Renderer struct {
	Rules map[markdown.TokenKind]RenderRule

	width  int
	styles Styles
	osc8   bool
}

// NewRenderer returns a renderer wrapping paragraphs at width columns. A
// width of zero disables wrapping.
func NewRenderer(width int, theme Theme, opts ...Option) *Renderer {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if theme == nil {
		theme = DefaultTheme()
	}
	r := &Renderer{width: width, styles: theme.Styles(), osc8: cfg.osc8}
	r.Rules = map[markdown.TokenKind]RenderRule{
		markdown.KindText:        ruleText,
		markdown.KindHTMLInline:  ruleText,
		markdown.KindSoftBreak:   ruleSoftBreak,
		markdown.KindHardBreak:   ruleHardBreak,
		markdown.KindCodeInline:  ruleCodeInline,
		markdown.KindEmOpen:      ruleEmphasis,
		markdown.KindEmClose:     ruleEmphasis,
		markdown.KindStrongOpen:  ruleEmphasis,
		markdown.KindStrongClose: ruleEmphasis,
		markdown.KindLinkOpen:    ruleLinkOpen,
		markdown.KindLinkClose:   ruleLinkClose,
		markdown.KindImage:       ruleImage,
	}
	return r
}

// Styles returns the active styles.
func (r *Renderer) Styles() Styles { return r.styles }

// OSC8 reports whether hyperlinks are emitted.
func (r *Renderer) OSC8() bool { return r.osc8 }

// Width returns the wrap width.
func (r *Renderer) Width() int { return r.width }

// Inline collects the spans of one inline token.
type Inline struct {
	r        *Renderer
	base     Style
	spans    []Span
	em       int
	strong   int
	link     string
	autolink bool
}

// Renderer returns the renderer driving w.
func (w *Inline) Renderer() *Renderer { return w.r }

// Link returns the target of the enclosing link, if any.
func (w *Inline) Link() string { return w.link }

// Style returns the style for text at the current position.
func (w *Inline) Style() Style {
	s := w.r.styles
	switch {
	case w.link != "":
		return s.LinkText
	case w.em > 0 && w.strong > 0:
		return s.EmphasisStrong
	case w.strong > 0:
		return s.Strong
	case w.em > 0:
		return s.Emphasis
	}
	return w.base
}

// Write appends text in the current style.
func (w *Inline) Write(text string) {
	if text == "" {
		return
	}
	w.spans = append(w.spans, Span{Text: text, Style: w.Style(), Link: w.link})
}

// WriteSpan appends sp as is.
func (w *Inline) WriteSpan(sp Span) {
	if sp.Text == "" {
		return
	}
	w.spans = append(w.spans, sp)
}

type prefix struct {
	text   string
	style  Style
	marker string
}

type listState struct {
	ordered bool
	next    int
}

type blockState struct {
	prefixes  []prefix
	lists     []listState
	heading   int
	needBlank bool
}

// Render renders a block token stream.
func (r *Renderer) Render(tokens []*markdown.Token, env any) string {
	var b strings.Builder
	st := &blockState{}
	for _, tok := range tokens {
		switch tok.Kind {
		case markdown.KindHeadingOpen:
			st.heading, _ = strconv.Atoi(strings.TrimPrefix(tok.Tag, "h"))
		case markdown.KindHeadingClose:
			st.heading = 0
			st.needBlank = true
		case markdown.KindParagraphClose:
			if !tok.Hidden {
				st.needBlank = true
			}
		case markdown.KindBlockquoteOpen:
			st.prefixes = append(st.prefixes, prefix{text: "> ", style: r.styles.Quote})
		case markdown.KindBlockquoteClose:
			st.popPrefix()
			st.needBlank = true
		case markdown.KindBulletListOpen, markdown.KindOrderedListOpen:
			start := 1
			if v, ok := tok.Attr("start"); ok {
				if n, err := strconv.Atoi(v); err == nil {
					start = n
				}
			}
			st.lists = append(st.lists, listState{ordered: tok.Kind == markdown.KindOrderedListOpen, next: start})
		case markdown.KindBulletListClose, markdown.KindOrderedListClose:
			if len(st.lists) > 0 {
				st.lists = st.lists[:len(st.lists)-1]
			}
			if len(st.lists) == 0 {
				st.needBlank = true
			}
		case markdown.KindListItemOpen:
			marker := "- "
			if n := len(st.lists); n > 0 && st.lists[n-1].ordered {
				marker = strconv.Itoa(st.lists[n-1].next) + ". "
				st.lists[n-1].next++
			}
			st.prefixes = append(st.prefixes, prefix{text: strings.Repeat(" ", len(marker)), style: r.styles.ListMarker, marker: marker})
		case markdown.KindListItemClose:
			st.popPrefix()
		case markdown.KindInline:
			r.writeInline(&b, st, tok.Children, env)
		case markdown.KindFence, markdown.KindCodeBlock:
			r.writeCode(&b, st, tok.Content)
			st.needBlank = true
		case markdown.KindHTMLBlock:
			for _, line := range strings.Split(strings.TrimRight(tok.Content, "\n"), "\n") {
				st.writeLine(&b, line)
			}
			st.needBlank = true
		case markdown.KindHR:
			st.writeLine(&b, styled(r.styles.ThematicBreak, "---"))
			st.needBlank = true
		}
	}
	return b.String()
}

func (r *Renderer) writeInline(b *strings.Builder, st *blockState, children []*markdown.Token, env any) {
	w := &Inline{r: r, base: r.styles.Text}
	if st.heading > 0 && st.heading <= len(r.styles.Heading) {
		w.base = r.styles.Heading[st.heading-1]
		w.Write(strings.Repeat("#", st.heading) + " ")
	}
	for i, tok := range children {
		if rule := r.Rules[tok.Kind]; rule != nil {
			rule(w, children, i, env)
		}
	}
	for _, line := range wrapSpans(w.spans, r.textWidth(st)) {
		st.writeLine(b, r.joinSpans(line))
	}
}

func (r *Renderer) writeCode(b *strings.Builder, st *blockState, content string) {
	width := r.textWidth(st)
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if width > 0 {
			line = truncateWithEllipsis(line, width)
		}
		st.writeLine(b, styled(r.styles.CodeBlock, line))
	}
}

func (r *Renderer) textWidth(st *blockState) int {
	if r.width <= 0 {
		return 0
	}
	width := r.width
	for _, p := range st.prefixes {
		width -= len(p.text)
	}
	if width < 10 {
		width = 10
	}
	return width
}

func (r *Renderer) joinSpans(spans []Span) string {
	var b strings.Builder
	for _, sp := range spans {
		text := styled(sp.Style, sp.Text)
		if r.osc8 && sp.Link != "" {
			text = hyperlink(sp.Link, text)
		}
		b.WriteString(text)
	}
	return b.String()
}

func (st *blockState) popPrefix() {
	if len(st.prefixes) > 0 {
		st.prefixes = st.prefixes[:len(st.prefixes)-1]
	}
}

func (st *blockState) writeLine(b *strings.Builder, line string) {
	if st.needBlank && b.Len() > 0 {
		b.WriteByte('\n')
	}
	st.needBlank = false
	for i := range st.prefixes {
		p := &st.prefixes[i]
		text := p.text
		if p.marker != "" {
			text = p.marker
			p.marker = ""
		}
		b.WriteString(styled(p.style, text))
	}
	b.WriteString(line)
	b.WriteByte('\n')
}

func styled(s Style, text string) string {
	if s.Prefix == "" || text == "" {
		return text
	}
	return s.Prefix + text + reset
}

func ruleText(w *Inline, tokens []*markdown.Token, idx int, _ any) {
	w.Write(tokens[idx].Content)
}

func ruleSoftBreak(w *Inline, _ []*markdown.Token, _ int, _ any) {
	w.Write(" ")
}

func ruleHardBreak(w *Inline, _ []*markdown.Token, _ int, _ any) {
	w.WriteSpan(Span{Text: "\n"})
}

func ruleCodeInline(w *Inline, tokens []*markdown.Token, idx int, _ any) {
	w.WriteSpan(Span{Text: tokens[idx].Content, Style: w.r.styles.CodeInline, Link: w.link})
}

func ruleEmphasis(w *Inline, tokens []*markdown.Token, idx int, _ any) {
	switch tokens[idx].Kind {
	case markdown.KindEmOpen:
		w.em++
	case markdown.KindEmClose:
		w.em = max(w.em-1, 0)
	case markdown.KindStrongOpen:
		w.strong++
	case markdown.KindStrongClose:
		w.strong = max(w.strong-1, 0)
	}
}

func ruleLinkOpen(w *Inline, tokens []*markdown.Token, idx int, _ any) {
	tok := tokens[idx]
	w.link, _ = tok.Attr("href")
	w.autolink = tok.Markup == "autolink"
}

func ruleLinkClose(w *Inline, _ []*markdown.Token, _ int, _ any) {
	url := w.link
	autolink := w.autolink
	w.link, w.autolink = "", false
	if url == "" || autolink || w.r.osc8 {
		return
	}
	limit := 0
	if w.r.width > 0 {
		limit = w.r.width / 2
	}
	w.WriteSpan(Span{Text: " (" + fitURL(url, limit) + ")", Style: w.r.styles.LinkURL})
}

func ruleImage(w *Inline, tokens []*markdown.Token, idx int, _ any) {
	tok := tokens[idx]
	src, _ := tok.Attr("src")
	w.WriteSpan(Span{Text: "[" + tok.Content + "]", Style: w.r.styles.LinkURL, Link: src})
}
