package blocks

// Type is the closed set of block kinds the editor can place on a page.
type Type string

const (
	TypeHero         Type = "hero"
	TypeFeatures     Type = "features"
	TypeTestimonials Type = "testimonials"
	TypePricing      Type = "pricing"
	TypeFAQ          Type = "faq"
	TypeGallery      Type = "gallery"
	TypeContact      Type = "contact"
	TypeFooter       Type = "footer"
	TypeHeading      Type = "heading"
	TypeParagraph    Type = "paragraph"
	TypeButton       Type = "button"
	TypeImage        Type = "image"
	TypeVideo        Type = "video"
	TypeForm         Type = "form"
	TypeDivider      Type = "divider"
	TypeSpacer       Type = "spacer"
	TypeSocialLinks  Type = "social-links"
	TypeMap          Type = "map"
)

// palette order
var allTypes = []Type{
	TypeHero,
	TypeFeatures,
	TypeTestimonials,
	TypePricing,
	TypeFAQ,
	TypeGallery,
	TypeContact,
	TypeFooter,
	TypeHeading,
	TypeParagraph,
	TypeButton,
	TypeImage,
	TypeVideo,
	TypeForm,
	TypeDivider,
	TypeSpacer,
	TypeSocialLinks,
	TypeMap,
}

// Types returns every known block type in palette order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// Known reports whether t is part of the enumeration.
func (t Type) Known() bool {
	_, ok := registry[t]
	return ok
}

func (t Type) String() string { return string(t) }
