package markdown

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

func (md *Markdown) tokenize(src []byte) []*Token {
	root := md.parser.Parse(text.NewReader(src))
	b := &blockBuilder{source: src, html: md.cfg.html}
	b.walk(root)
	return b.tokens
}

type blockBuilder struct {
	source []byte
	html   bool
	tokens []*Token
	level  int
}

func (b *blockBuilder) push(kind TokenKind, tag string, nesting int) *Token {
	tok := NewToken(kind, tag, nesting)
	tok.Block = true
	if nesting < 0 {
		b.level--
	}
	tok.Level = b.level
	if nesting > 0 {
		b.level++
	}
	b.tokens = append(b.tokens, tok)
	return tok
}

func (b *blockBuilder) walk(parent ast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		b.block(n)
	}
}

func (b *blockBuilder) block(node ast.Node) {
	switch n := node.(type) {
	case *ast.Paragraph:
		b.paragraph(n, false)
	case *ast.TextBlock:
		// Tight list items: the paragraph exists but renders without <p>.
		b.paragraph(n, true)
	case *ast.Heading:
		tag := "h" + strconv.Itoa(n.Level)
		open := b.push(KindHeadingOpen, tag, 1)
		open.Markup = strings.Repeat("#", n.Level)
		b.inline(n)
		b.push(KindHeadingClose, tag, -1).Markup = open.Markup
	case *ast.Blockquote:
		b.push(KindBlockquoteOpen, "blockquote", 1).Markup = ">"
		b.walk(n)
		b.push(KindBlockquoteClose, "blockquote", -1).Markup = ">"
	case *ast.List:
		marker := string(n.Marker)
		if n.IsOrdered() {
			open := b.push(KindOrderedListOpen, "ol", 1)
			open.Markup = marker
			if n.Start != 1 {
				open.SetAttr("start", strconv.Itoa(n.Start))
			}
			b.walk(n)
			b.push(KindOrderedListClose, "ol", -1).Markup = marker
			return
		}
		b.push(KindBulletListOpen, "ul", 1).Markup = marker
		b.walk(n)
		b.push(KindBulletListClose, "ul", -1).Markup = marker
	case *ast.ListItem:
		b.push(KindListItemOpen, "li", 1)
		b.walk(n)
		b.push(KindListItemClose, "li", -1)
	case *ast.FencedCodeBlock:
		tok := b.push(KindFence, "code", 0)
		tok.Markup = "```"
		if n.Info != nil {
			tok.Info = strings.TrimSpace(string(n.Info.Segment.Value(b.source)))
		}
		tok.Content = b.lines(n)
	case *ast.CodeBlock:
		tok := b.push(KindCodeBlock, "code", 0)
		tok.Content = b.lines(n)
	case *ast.HTMLBlock:
		content := b.lines(n)
		if n.HasClosure() {
			content += string(n.ClosureLine.Value(b.source))
		}
		if b.html {
			b.push(KindHTMLBlock, "", 0).Content = content
			return
		}
		b.push(KindParagraphOpen, "p", 1)
		inline := b.push(KindInline, "", 0)
		inline.Content = strings.TrimRight(content, "\n")
		txt := NewToken(KindText, "", 0)
		txt.Content = inline.Content
		inline.Children = []*Token{txt}
		b.push(KindParagraphClose, "p", -1)
	case *ast.ThematicBreak:
		b.push(KindHR, "hr", 0).Markup = "---"
	default:
		b.push(KindOther, "", 0).Info = node.Kind().String()
	}
}

func (b *blockBuilder) paragraph(n ast.Node, hidden bool) {
	open := b.push(KindParagraphOpen, "p", 1)
	open.Hidden = hidden
	b.inline(n)
	b.push(KindParagraphClose, "p", -1).Hidden = hidden
}

func (b *blockBuilder) inline(n ast.Node) {
	tok := b.push(KindInline, "", 0)
	tok.Content = strings.TrimRight(b.lines(n), "\n")
	ib := &inlineBuilder{source: b.source, html: b.html}
	ib.walk(n)
	ib.flushText()
	tok.Children = ib.tokens
}

func (b *blockBuilder) lines(n ast.Node) string {
	var buf strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(b.source))
	}
	return buf.String()
}

// inlineBuilder flattens a goldmark inline subtree into tokens. Adjacent text
// runs are merged into one text token so a handle is never split across the
// delimiter runs goldmark leaves behind.
type inlineBuilder struct {
	source []byte
	html   bool
	tokens []*Token
	level  int
	raw    []byte
	text   strings.Builder
}

func (b *inlineBuilder) push(kind TokenKind, tag string, nesting int) *Token {
	tok := NewToken(kind, tag, nesting)
	if nesting < 0 {
		b.level--
	}
	tok.Level = b.level
	if nesting > 0 {
		b.level++
	}
	b.tokens = append(b.tokens, tok)
	return tok
}

func (b *inlineBuilder) walk(parent ast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		b.node(n)
	}
}

func (b *inlineBuilder) node(node ast.Node) {
	switch n := node.(type) {
	case *ast.Text:
		b.raw = append(b.raw, n.Segment.Value(b.source)...)
		switch {
		case n.HardLineBreak():
			b.flushText()
			b.push(KindHardBreak, "br", 0)
		case n.SoftLineBreak():
			b.flushText()
			b.push(KindSoftBreak, "br", 0)
		}
	case *ast.String:
		b.flushRaw()
		b.text.Write(n.Value)
	case *ast.CodeSpan:
		b.flushText()
		tok := b.push(KindCodeInline, "code", 0)
		tok.Markup = "`"
		tok.Content = b.codeSpan(n)
	case *ast.Emphasis:
		b.flushText()
		openKind, closeKind, tag, markup := KindEmOpen, KindEmClose, "em", "*"
		if n.Level >= 2 {
			openKind, closeKind, tag, markup = KindStrongOpen, KindStrongClose, "strong", "**"
		}
		b.push(openKind, tag, 1).Markup = markup
		b.walk(n)
		b.flushText()
		b.push(closeKind, tag, -1).Markup = markup
	case *ast.Link:
		b.flushText()
		open := b.push(KindLinkOpen, "a", 1)
		open.SetAttr("href", string(n.Destination))
		if len(n.Title) > 0 {
			open.SetAttr("title", string(n.Title))
		}
		b.walk(n)
		b.flushText()
		b.push(KindLinkClose, "a", -1)
	case *ast.AutoLink:
		b.flushText()
		url := string(n.URL(b.source))
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(url), "mailto:") {
			url = "mailto:" + url
		}
		open := b.push(KindLinkOpen, "a", 1)
		open.SetAttr("href", url)
		open.Markup = "autolink"
		open.Info = "auto"
		b.push(KindText, "", 0).Content = string(n.Label(b.source))
		closing := b.push(KindLinkClose, "a", -1)
		closing.Markup = "autolink"
		closing.Info = "auto"
	case *ast.Image:
		b.flushText()
		tok := b.push(KindImage, "img", 0)
		tok.SetAttr("src", string(n.Destination))
		tok.SetAttr("alt", "")
		if len(n.Title) > 0 {
			tok.SetAttr("title", string(n.Title))
		}
		tok.Content = plainText(n, b.source)
	case *ast.RawHTML:
		var raw []byte
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			raw = append(raw, seg.Value(b.source)...)
		}
		if !b.html {
			b.raw = append(b.raw, raw...)
			return
		}
		b.flushText()
		b.push(KindHTMLInline, "", 0).Content = string(raw)
	default:
		if node.HasChildren() {
			b.walk(node)
			return
		}
		b.flushText()
		b.push(KindOther, "", 0).Info = node.Kind().String()
	}
}

func (b *inlineBuilder) flushRaw() {
	if len(b.raw) == 0 {
		return
	}
	b.text.WriteString(decodeText(b.raw))
	b.raw = b.raw[:0]
}

func (b *inlineBuilder) flushText() {
	b.flushRaw()
	if b.text.Len() == 0 {
		return
	}
	b.push(KindText, "", 0).Content = b.text.String()
	b.text.Reset()
}

func (b *inlineBuilder) codeSpan(n *ast.CodeSpan) string {
	var buf strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		var v []byte
		switch c := c.(type) {
		case *ast.Text:
			v = c.Segment.Value(b.source)
		case *ast.String:
			v = c.Value
		}
		if len(v) > 0 && v[len(v)-1] == '\n' {
			buf.Write(v[:len(v)-1])
			buf.WriteByte(' ')
			continue
		}
		buf.Write(v)
	}
	return buf.String()
}

func decodeText(raw []byte) string {
	v := util.UnescapePunctuations(raw)
	v = util.ResolveNumericReferences(v)
	v = util.ResolveEntityNames(v)
	return string(v)
}

func plainText(n ast.Node, source []byte) string {
	var buf strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			buf.WriteString(decodeText(c.Segment.Value(source)))
		case *ast.String:
			buf.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
