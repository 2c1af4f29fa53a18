package mention

import (
	"pkt.systems/mention/markdown"
	"pkt.systems/mention/terminal"
)

// UseTerminal registers the mention rule on a terminal renderer. Mentions are
// written as their full handle in the Mention style and link to their href
// when hyperlinks are enabled.
func UseTerminal(r *terminal.Renderer) {
	r.Rules[markdown.KindMention] = renderTerminalMention
}

func renderTerminalMention(w *terminal.Inline, tokens []*markdown.Token, idx int, env any) {
	if idx < 0 || idx >= len(tokens) {
		return
	}
	tok := tokens[idx]
	if tok.Kind != markdown.KindMention {
		return
	}
	Record(env, tok.Info)
	href, _ := tok.Attr("href")
	w.WriteSpan(terminal.Span{
		Text:  tok.Info,
		Style: w.Renderer().Styles().Mention,
		Link:  href,
	})
}
