package mention

import (
	"iter"
	"regexp"
)

// handlePattern matches "@user" with an optional "@domain" suffix. The domain
// is one or more labels followed by a top-level label of at least two
// letters or digits.
var handlePattern = regexp.MustCompile(`(?i)@([\p{L}\p{N}._-]+)(?:@((?:[\p{L}\p{N}][\p{L}\p{N}_-]*\.)+[\p{L}\p{N}]{2,}))?`)

// Match is a candidate mention inside a text span. Offset and Length are byte
// offsets into the UTF-8 span; a match never splits a scalar value.
type Match struct {
	Offset    int
	Length    int
	Text      string
	User      string
	Domain    string
	HasDomain bool
}

// End returns the byte offset just past the match.
func (m Match) End() int {
	return m.Offset + m.Length
}

// Handle returns "@user" for bare matches and "@user@domain" otherwise.
func (m Match) Handle() string {
	if m.HasDomain {
		return "@" + m.User + "@" + m.Domain
	}
	return "@" + m.User
}

// Matches yields the non-overlapping candidates in s from left to right.
func Matches(s string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, loc := range handlePattern.FindAllStringSubmatchIndex(s, -1) {
			m := Match{
				Offset: loc[0],
				Length: loc[1] - loc[0],
				Text:   s[loc[0]:loc[1]],
				User:   s[loc[2]:loc[3]],
			}
			if loc[4] >= 0 {
				m.Domain = s[loc[4]:loc[5]]
				m.HasDomain = true
			}
			if !yield(m) {
				return
			}
		}
	}
}
