package mention

import "pkt.systems/mention/markdown"

// RuleName is the name under which the splitter is registered as a
// post-inline rule.
const RuleName = "mention"

// LocalDomainFunc returns the domain for a bare handle such as "@alice".
// Returning false leaves the handle as plain text.
type LocalDomainFunc func(bare string, env any) (string, bool)

// LinkFunc returns the link target for a full handle. Returning false keeps
// the matched text verbatim instead of producing a mention.
type LinkFunc func(handle string, env any) (string, bool)

// LinkAttributesFunc returns extra anchor attributes for a full handle. They
// are rendered before href.
type LinkAttributesFunc func(handle string, env any) []markdown.Attr

// LabelFunc returns the anchor body for a full handle as HTML.
type LabelFunc func(handle string, env any) string

// Options configures mention resolution. Every hook is optional; a nil hook
// falls back to the default behaviour.
type Options struct {
	// LocalDomain completes bare handles. Without it bare handles are never
	// converted.
	LocalDomain LocalDomainFunc
	// Link resolves the anchor target. Without it the target is
	// "acct:<handle>".
	Link LinkFunc
	// LinkAttributes adds attributes to the anchor. Defaults to none.
	LinkAttributes LinkAttributesFunc
	// Label renders the anchor body. Defaults to DefaultLabel.
	Label LabelFunc
}

// Plugin registers the splitter after inline tokenization and the mention
// render rule on md's renderer.
func Plugin(opts Options) markdown.Plugin {
	return func(md *markdown.Markdown) {
		md.AfterInline(RuleName, func(tokens []*markdown.Token, env any) error {
			Split(tokens, opts, env)
			return nil
		})
		md.Renderer.Rules[markdown.KindMention] = RenderMention
	}
}
