package mention

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"pkt.systems/mention/markdown"
)

// StaticDomain completes every bare handle with domain.
func StaticDomain(domain string) LocalDomainFunc {
	return func(string, any) (string, bool) {
		return domain, domain != ""
	}
}

// DomainTable completes bare handles from a lookup table. Handles are
// compared after Unicode case folding, with or without the leading "@".
// Handles missing from the table resolve to Fallback when it is set.
type DomainTable struct {
	Fallback string
	domains  map[string]string
}

// NewDomainTable returns a table holding entries.
func NewDomainTable(entries map[string]string, fallback string) *DomainTable {
	t := &DomainTable{Fallback: fallback, domains: make(map[string]string, len(entries))}
	for handle, domain := range entries {
		t.Set(handle, domain)
	}
	return t
}

// Set maps a bare handle to domain.
func (t *DomainTable) Set(handle, domain string) {
	if t.domains == nil {
		t.domains = make(map[string]string)
	}
	t.domains[foldHandle(handle)] = domain
}

// Len returns the number of table entries.
func (t *DomainTable) Len() int {
	return len(t.domains)
}

// Resolve implements LocalDomainFunc.
func (t *DomainTable) Resolve(bare string, _ any) (string, bool) {
	if domain, ok := t.domains[foldHandle(bare)]; ok && domain != "" {
		return domain, true
	}
	return t.Fallback, t.Fallback != ""
}

// foldHandle uses a fresh Caser per call; a Caser is not safe for concurrent use.
func foldHandle(handle string) string {
	return cases.Fold().String(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// LinkTemplate returns a link resolver that expands {handle}, {user} and
// {domain} in tmpl, each path-escaped. An empty tmpl yields "acct:<handle>".
// Handles whose domain appears in blocked are declined, which keeps them as
// plain text.
func LinkTemplate(tmpl string, blocked ...string) LinkFunc {
	deny := make(map[string]struct{}, len(blocked))
	for _, d := range blocked {
		if d = strings.TrimSpace(d); d != "" {
			deny[cases.Fold().String(d)] = struct{}{}
		}
	}
	return func(handle string, _ any) (string, bool) {
		user, domain, _ := SplitHandle(handle)
		if _, ok := deny[cases.Fold().String(domain)]; ok {
			return "", false
		}
		if tmpl == "" {
			return "acct:" + handle, true
		}
		r := strings.NewReplacer(
			"{handle}", url.PathEscape(handle),
			"{user}", url.PathEscape(user),
			"{domain}", url.PathEscape(domain),
		)
		return r.Replace(tmpl), true
	}
}

// Attributes returns a LinkAttributesFunc that always yields attrs.
func Attributes(attrs ...markdown.Attr) LinkAttributesFunc {
	fixed := append([]markdown.Attr(nil), attrs...)
	return func(string, any) []markdown.Attr {
		return append([]markdown.Attr(nil), fixed...)
	}
}
