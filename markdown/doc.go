// Package markdown parses CommonMark into a flat token stream and renders it
// to HTML.
//
// Block tokens come in open/close pairs with inline content held in the
// Children of KindInline tokens. Plugins add core rules that run after
// inline tokenization and render rules keyed by token kind, so extensions can
// rewrite the stream without touching the parser.
package markdown
