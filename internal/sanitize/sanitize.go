// Package sanitize strips unsafe markup from rich-text content fields
// before they are stored.
package sanitize

import "github.com/microcosm-cc/bluemonday"

type Policy struct {
	policy *bluemonday.Policy
}

// NewPolicy allows basic formatting, lists, quotes and absolute links.
// Scripts, styles, iframes and event attributes are dropped.
func NewPolicy() *Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "b", "i", "h3", "h4",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.AllowRelativeURLs(false)
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &Policy{policy: p}
}

func (p *Policy) Sanitize(raw string) string {
	return p.policy.Sanitize(raw)
}

// SanitizePtr sanitizes an optional field in place.
func (p *Policy) SanitizePtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	s := p.policy.Sanitize(*raw)
	return &s
}
