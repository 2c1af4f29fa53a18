// Package terminal renders a markdown token stream as themed ANSI text.
//
// Paragraphs are wrapped at the configured width after styling, so escape
// sequences and OSC 8 hyperlinks never count towards the line length.
package terminal
