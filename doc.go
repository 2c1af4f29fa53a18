// Package mention turns "@user" and "@user@domain" handles in Markdown text
// into links.
//
// The package plugs into the token pipeline of package markdown. After inline
// tokenization a core rule walks the children of every inline token, skips
// text inside markdown links and raw <a> elements, and splits the remaining
// text tokens into text and mention tokens. The mention render rule emits an
// anchor and appends the rendered handle to the environment passed to Parse.
//
// Example:
//
//	md := markdown.New().Use(mention.Plugin(mention.Options{
//		LocalDomain: mention.StaticDomain("example.com"),
//	}))
//	env := &mention.Env{}
//	out, err := md.RenderString([]byte("hi @alice"), env)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Print(out)           // <p>hi <a href="acct:@alice@example.com">...</a></p>
//	fmt.Println(env.Mentions) // [@alice@example.com]
//
// Bare handles are only converted when Options.LocalDomain supplies a domain.
// Without Options.Link the anchor target is "acct:" followed by the handle.
//
// UseTerminal registers the same behaviour on a terminal.Renderer for ANSI
// previews.
package mention
