package reveal

import "time"

// Section is one block of the public page and how it is revealed.
type Section struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Reveal Options `json:"reveal"`
}

// Sections is the public page in display order.
func Sections() []Section {
	return []Section{
		{ID: "hero", Label: "Home", Reveal: Options{Variant: VariantFade}},
		{ID: "education", Label: "Education", Reveal: Options{Variant: VariantFadeUp}},
		{ID: "experience", Label: "Experience", Reveal: Options{Variant: VariantFadeLeft}},
		{ID: "skills", Label: "Skills", Reveal: Options{Variant: VariantFadeRight, Delay: 100 * time.Millisecond}},
		{ID: "projects", Label: "Projects", Reveal: Options{Variant: VariantFadeUp}},
		{ID: "publications", Label: "Publications", Reveal: Options{Variant: VariantFadeUp, Delay: 100 * time.Millisecond}},
		{ID: "achievements", Label: "Achievements", Reveal: Options{Variant: VariantScale, Threshold: 0.2}},
		{ID: "contact", Label: "Contact", Reveal: Options{Variant: VariantFadeUp}},
	}
}
