package mention

import "pkt.systems/mention/markdown"

// Split rewrites the children of every inline token in tokens, replacing
// handles in plain text with mention tokens. Text inside a markdown link or a
// raw <a> element is left alone.
func Split(tokens []*markdown.Token, opts Options, env any) {
	for _, tok := range tokens {
		if tok.Kind != markdown.KindInline || len(tok.Children) == 0 {
			continue
		}
		tok.Children = splitChildren(tok.Children, opts, env)
	}
}

func splitChildren(children []*markdown.Token, opts Options, env any) []*markdown.Token {
	var linkDepth, anchorDepth int
	out := make([]*markdown.Token, 0, len(children))
	for _, tok := range children {
		switch tok.Kind {
		case markdown.KindLinkOpen:
			linkDepth++
		case markdown.KindLinkClose:
			linkDepth = decrement(linkDepth)
		case markdown.KindHTMLInline:
			switch classifyAnchor(tok.Content) {
			case anchorOpen:
				anchorDepth++
			case anchorClose:
				anchorDepth = decrement(anchorDepth)
			}
		case markdown.KindText:
			if linkDepth == 0 && anchorDepth == 0 {
				out = append(out, SplitText(tok, opts, env)...)
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}

// decrement keeps a stray closing tag from disabling the rest of the block.
func decrement(depth int) int {
	if depth > 0 {
		return depth - 1
	}
	return 0
}

// SplitText splits a text token against the handle pattern. The result holds
// text and mention tokens in source order at the level of tok. When nothing
// is converted the result is tok itself.
func SplitText(tok *markdown.Token, opts Options, env any) []*markdown.Token {
	text := tok.Content
	var out []*markdown.Token
	last := 0
	for m := range Matches(text) {
		handle := m.Handle()
		if !m.HasDomain {
			if opts.LocalDomain == nil {
				continue
			}
			domain, ok := opts.LocalDomain(handle, env)
			if !ok || domain == "" {
				continue
			}
			handle += "@" + domain
		}
		href := "acct:" + handle
		if opts.Link != nil {
			link, ok := opts.Link(handle, env)
			if !ok || link == "" {
				out = appendText(out, text[last:m.Offset], tok.Level)
				out = appendText(out, m.Text, tok.Level)
				last = m.End()
				continue
			}
			href = link
		}
		out = appendText(out, text[last:m.Offset], tok.Level)
		out = append(out, newMention(m, handle, href, tok.Level, opts, env))
		last = m.End()
	}
	if out == nil {
		return []*markdown.Token{tok}
	}
	return appendText(out, text[last:], tok.Level)
}

func appendText(out []*markdown.Token, s string, level int) []*markdown.Token {
	if s == "" {
		return out
	}
	tok := markdown.NewToken(markdown.KindText, "", 0)
	tok.Content = s
	tok.Level = level
	return append(out, tok)
}

func newMention(m Match, handle, href string, level int, opts Options, env any) *markdown.Token {
	tok := markdown.NewToken(markdown.KindMention, "a", 0)
	tok.Level = level
	tok.Info = handle
	tok.Markup = m.Text
	if opts.Label != nil {
		tok.Content = opts.Label(handle, env)
	} else {
		tok.Content = DefaultLabel(handle)
	}
	if opts.LinkAttributes != nil {
		for _, a := range opts.LinkAttributes(handle, env) {
			tok.SetAttr(a.Name, a.Value)
		}
	}
	tok.SetAttr("href", href)
	return tok
}
