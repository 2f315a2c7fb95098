package usecase

import (
	"strings"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/sanitize"
)

// ContentRules holds the per-collection prepare functions passed to
// NewContentUsecase.
type ContentRules struct {
	policy *sanitize.Policy
}

func NewContentRules(policy *sanitize.Policy) *ContentRules {
	return &ContentRules{policy: policy}
}

func required(v *domain.ValidationError, field, value, label string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, label+" is required")
	}
	return value
}

// trimList drops blank entries and never returns nil, so arrays are stored
// as '{}' rather than NULL.
func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r *ContentRules) Education(e *domain.Education) error {
	var v domain.ValidationError
	e.Institution = required(&v, "institution", e.Institution, "Institution")
	e.Degree = required(&v, "degree", e.Degree, "Degree")
	e.Period = required(&v, "period", e.Period, "Period")
	return v.Err()
}

func (r *ContentRules) Experience(e *domain.Experience) error {
	var v domain.ValidationError
	e.Title = required(&v, "title", e.Title, "Title")
	e.Company = required(&v, "company", e.Company, "Company")
	e.Period = required(&v, "period", e.Period, "Period")
	e.Responsibilities = trimList(e.Responsibilities)
	return v.Err()
}

func (r *ContentRules) Certification(c *domain.Certification) error {
	var v domain.ValidationError
	c.Title = required(&v, "title", c.Title, "Title")
	c.Issuer = required(&v, "issuer", c.Issuer, "Issuer")
	return v.Err()
}

func (r *ContentRules) Achievement(a *domain.Achievement) error {
	var v domain.ValidationError
	a.Title = required(&v, "title", a.Title, "Title")
	a.Description = r.policy.SanitizePtr(a.Description)
	a.Icon = domain.ParseIconType(string(a.Icon))
	return v.Err()
}

func (r *ContentRules) Project(p *domain.Project) error {
	var v domain.ValidationError
	p.Title = required(&v, "title", p.Title, "Title")
	p.ShortDescription = required(&v, "short_description", p.ShortDescription, "Short description")
	p.FullDescription = r.policy.SanitizePtr(p.FullDescription)
	p.Technologies = trimList(p.Technologies)
	p.Images = trimList(p.Images)
	return v.Err()
}

func (r *ContentRules) Publication(p *domain.Publication) error {
	var v domain.ValidationError
	p.Title = required(&v, "title", p.Title, "Title")
	p.Authors = trimList(p.Authors)
	if len(p.Authors) == 0 {
		v.Add("authors", "At least one author is required")
	}
	p.Description = r.policy.SanitizePtr(p.Description)
	return v.Err()
}
