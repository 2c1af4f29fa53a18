package markdown

// TokenKind identifies what a Token represents.
type TokenKind uint8

const (
	// KindOther marks constructs the pipeline does not interpret. They are
	// passed through untouched and render as nothing.
	KindOther TokenKind = iota

	// KindInline is a block-level container whose Children hold inline tokens.
	KindInline
	KindParagraphOpen
	KindParagraphClose
	KindHeadingOpen
	KindHeadingClose
	KindBlockquoteOpen
	KindBlockquoteClose
	KindBulletListOpen
	KindBulletListClose
	KindOrderedListOpen
	KindOrderedListClose
	KindListItemOpen
	KindListItemClose
	KindFence
	KindCodeBlock
	KindHTMLBlock
	KindHR

	KindText
	KindSoftBreak
	KindHardBreak
	KindCodeInline
	KindEmOpen
	KindEmClose
	KindStrongOpen
	KindStrongClose
	KindLinkOpen
	KindLinkClose
	KindImage
	// KindHTMLInline carries raw inline markup verbatim in Content.
	KindHTMLInline
	// KindMention is produced by extensions that recognise @handle references.
	KindMention
)

var kindNames = [...]string{
	KindOther:            "other",
	KindInline:           "inline",
	KindParagraphOpen:    "paragraph_open",
	KindParagraphClose:   "paragraph_close",
	KindHeadingOpen:      "heading_open",
	KindHeadingClose:     "heading_close",
	KindBlockquoteOpen:   "blockquote_open",
	KindBlockquoteClose:  "blockquote_close",
	KindBulletListOpen:   "bullet_list_open",
	KindBulletListClose:  "bullet_list_close",
	KindOrderedListOpen:  "ordered_list_open",
	KindOrderedListClose: "ordered_list_close",
	KindListItemOpen:     "list_item_open",
	KindListItemClose:    "list_item_close",
	KindFence:            "fence",
	KindCodeBlock:        "code_block",
	KindHTMLBlock:        "html_block",
	KindHR:               "hr",
	KindText:             "text",
	KindSoftBreak:        "softbreak",
	KindHardBreak:        "hardbreak",
	KindCodeInline:       "code_inline",
	KindEmOpen:           "em_open",
	KindEmClose:          "em_close",
	KindStrongOpen:       "strong_open",
	KindStrongClose:      "strong_close",
	KindLinkOpen:         "link_open",
	KindLinkClose:        "link_close",
	KindImage:            "image",
	KindHTMLInline:       "html_inline",
	KindMention:          "mention",
}

func (k TokenKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Attr is a single HTML attribute. Attribute order is preserved on render.
type Attr struct {
	Name  string
	Value string
}

// Token is a node of the flat token stream produced by Parse.
type Token struct {
	Kind    TokenKind
	Tag     string
	Attrs   []Attr
	Nesting int
	Level   int
	Content string
	Markup  string
	Info    string
	// Children holds the inline tokens of a KindInline token.
	Children []*Token
	Block    bool
	Hidden   bool
}

// NewToken returns a token of the given kind with its tag and nesting set.
func NewToken(kind TokenKind, tag string, nesting int) *Token {
	return &Token{Kind: kind, Tag: tag, Nesting: nesting}
}

// Attr returns the value of the named attribute.
func (t *Token) Attr(name string) (string, bool) {
	for _, a := range t.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces the named attribute or appends it.
func (t *Token) SetAttr(name, value string) {
	for i := range t.Attrs {
		if t.Attrs[i].Name == name {
			t.Attrs[i].Value = value
			return
		}
	}
	t.Attrs = append(t.Attrs, Attr{Name: name, Value: value})
}
