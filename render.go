package mention

import (
	"strings"

	"golang.org/x/net/html"
	"pkt.systems/mention/markdown"
)

// RenderMention renders a mention token as an anchor and records its handle
// in env. Other tokens are handed to the default renderer and out-of-range
// indices render nothing.
func RenderMention(tokens []*markdown.Token, idx int, env any, r *markdown.Renderer) string {
	if idx < 0 || idx >= len(tokens) {
		return ""
	}
	tok := tokens[idx]
	if tok.Kind != markdown.KindMention {
		return r.RenderToken(tokens, idx)
	}
	Record(env, tok.Info)
	return "<a" + r.RenderAttrs(tok) + ">" + tok.Content + "</a>"
}

// DefaultLabel renders "@", the user and, when present, "@" and the domain
// as separately classed spans.
func DefaultLabel(handle string) string {
	user, domain, hasDomain := SplitHandle(handle)
	var b strings.Builder
	b.WriteString(`<span class="mention-at">@</span><span class="mention-user">`)
	b.WriteString(html.EscapeString(user))
	b.WriteString(`</span>`)
	if hasDomain {
		b.WriteString(`<span class="mention-at">@</span><span class="mention-domain">`)
		b.WriteString(html.EscapeString(domain))
		b.WriteString(`</span>`)
	}
	return b.String()
}

// SplitHandle splits "@user@domain" into its parts. The leading "@" is
// optional.
func SplitHandle(handle string) (user, domain string, hasDomain bool) {
	return strings.Cut(strings.TrimPrefix(handle, "@"), "@")
}
