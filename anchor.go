package mention

import (
	"strings"

	"golang.org/x/net/html"
)

type anchorKind uint8

const (
	notAnchor anchorKind = iota
	anchorOpen
	anchorClose
)

// classifyAnchor reports whether raw inline markup starts with an <a> start
// tag or an </a> end tag. Tag names are matched case-insensitively and
// attributes are ignored.
func classifyAnchor(raw string) anchorKind {
	z := html.NewTokenizer(strings.NewReader(raw))
	switch z.Next() {
	case html.StartTagToken:
		if name, _ := z.TagName(); string(name) == "a" {
			return anchorOpen
		}
	case html.EndTagToken:
		if name, _ := z.TagName(); string(name) == "a" {
			return anchorClose
		}
	}
	return notAnchor
}
