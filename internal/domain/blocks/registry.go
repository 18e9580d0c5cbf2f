package blocks

import (
	"bytes"
	"encoding/json"
)

type schema struct {
	// empty returns the zero variant that stored props decode into.
	empty func() Props
	// defaults returns the props a freshly added block starts with.
	defaults func() Props
}

var registry = map[Type]schema{
	TypeHero: {
		empty: func() Props { return &HeroProps{} },
		defaults: func() Props {
			return &HeroProps{
				Title:      "Welcome to our shop",
				Subtitle:   "Quality products, delivered with care",
				ButtonText: "Contact us",
				ButtonLink: "#contact",
			}
		},
	},
	TypeFeatures: {
		empty: func() Props { return &FeaturesProps{} },
		defaults: func() Props {
			return &FeaturesProps{
				Title: "Why choose us",
				Items: []FeatureItem{
					{Title: "Fast delivery", Desc: "Orders ship within 24 hours"},
					{Title: "Fair prices", Desc: "No hidden fees"},
					{Title: "Local support", Desc: "Talk to a real person"},
				},
			}
		},
	},
	TypeTestimonials: {
		empty: func() Props { return &TestimonialsProps{} },
		defaults: func() Props {
			return &TestimonialsProps{
				Title: "What customers say",
				Items: []Testimonial{
					{Name: "Aisha", Text: "Great service and friendly staff."},
					{Name: "Omar", Text: "My go-to shop in town."},
				},
			}
		},
	},
	TypePricing: {
		empty: func() Props { return &PricingProps{} },
		defaults: func() Props {
			return &PricingProps{
				Title: "Pricing",
				Plans: []PricingPlan{
					{Name: "Basic", Price: "₹499", Features: []string{"Feature one", "Feature two"}},
					{Name: "Premium", Price: "₹999", Features: []string{"Everything in Basic", "Priority support"}},
				},
			}
		},
	},
	TypeFAQ: {
		empty: func() Props { return &FAQProps{} },
		defaults: func() Props {
			return &FAQProps{
				Title: "Frequently asked questions",
				Items: []FAQItem{
					{Q: "Do you deliver?", A: "Yes, across the city."},
					{Q: "What are your hours?", A: "10am to 8pm, Monday to Saturday."},
				},
			}
		},
	},
	TypeGallery: {
		empty: func() Props { return &GalleryProps{} },
		defaults: func() Props {
			return &GalleryProps{Title: "Gallery", Images: []GalleryImage{}}
		},
	},
	TypeContact: {
		empty: func() Props { return &ContactProps{} },
		defaults: func() Props {
			return &ContactProps{Title: "Get in touch"}
		},
	},
	TypeFooter: {
		empty: func() Props { return &FooterProps{} },
		defaults: func() Props {
			return &FooterProps{Text: "All rights reserved.", Links: []Link{}}
		},
	},
	TypeHeading: {
		empty: func() Props { return &HeadingProps{} },
		defaults: func() Props {
			return &HeadingProps{Text: "Section heading", Level: 2}
		},
	},
	TypeParagraph: {
		empty: func() Props { return &ParagraphProps{} },
		defaults: func() Props {
			return &ParagraphProps{Text: "Write something about your shop."}
		},
	},
	TypeButton: {
		empty: func() Props { return &ButtonProps{} },
		defaults: func() Props {
			return &ButtonProps{Text: "Click here", Link: "#", Variant: "primary"}
		},
	},
	TypeImage: {
		empty: func() Props { return &ImageProps{} },
		defaults: func() Props {
			return &ImageProps{Src: "https://placehold.co/1200x600", Alt: "Image"}
		},
	},
	TypeVideo: {
		empty: func() Props { return &VideoProps{} },
		defaults: func() Props {
			return &VideoProps{URL: "https://www.youtube.com/embed/dQw4w9WgXcQ", Title: "Video"}
		},
	},
	TypeForm: {
		empty: func() Props { return &FormProps{} },
		defaults: func() Props {
			return &FormProps{
				Title: "Send us a message",
				Fields: []FormField{
					{Name: "name", Label: "Name", Type: "text", Required: true},
					{Name: "phone", Label: "Phone", Type: "tel", Required: false},
					{Name: "message", Label: "Message", Type: "textarea", Required: true},
				},
				SubmitText: "Send",
			}
		},
	},
	TypeDivider: {
		empty:    func() Props { return &DividerProps{} },
		defaults: func() Props { return &DividerProps{} },
	},
	TypeSpacer: {
		empty:    func() Props { return &SpacerProps{} },
		defaults: func() Props { return &SpacerProps{Height: DefaultSpacerHeight} },
	},
	TypeSocialLinks: {
		empty: func() Props { return &SocialLinksProps{} },
		defaults: func() Props {
			return &SocialLinksProps{Links: []SocialLink{
				{Platform: "instagram", URL: "https://instagram.com/"},
				{Platform: "facebook", URL: "https://facebook.com/"},
			}}
		},
	},
	TypeMap: {
		empty: func() Props { return &MapProps{} },
		defaults: func() Props {
			return &MapProps{Address: "Your shop address"}
		},
	},
}

// DefaultSpacerHeight is used when a spacer has no positive height.
const DefaultSpacerHeight = 48

// Defaults returns a fresh copy of the default props for t.
func Defaults(t Type) (Props, error) {
	s, ok := registry[t]
	if !ok {
		return nil, &SchemaError{Type: t, Reason: "unrecognized block type"}
	}
	return s.defaults(), nil
}

// DecodeProps decodes stored props for a block of type t. It never fails: unknown
// types and props that do not fit their variant come back as RawProps together
// with a warning describing why.
func DecodeProps(t Type, raw json.RawMessage) (Props, *MalformedBlockWarning) {
	trimmed := bytes.TrimSpace(raw)
	s, ok := registry[t]
	if !ok {
		return &RawProps{Type: t, Raw: compact(trimmed)}, &MalformedBlockWarning{Type: t, Reason: "unrecognized block type"}
	}
	p := s.empty()
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return p, nil
	}
	if err := json.Unmarshal(trimmed, p); err != nil {
		return &RawProps{Type: t, Raw: compact(trimmed)}, &MalformedBlockWarning{Type: t, Reason: "malformed props: " + err.Error()}
	}
	return p, nil
}

// DecodePropsStrict is the write-path counterpart of DecodeProps: anything that
// would come back as RawProps is a SchemaError instead.
func DecodePropsStrict(t Type, raw json.RawMessage) (Props, error) {
	if !t.Known() {
		return nil, &SchemaError{Type: t, Reason: "unrecognized block type"}
	}
	p, warn := DecodeProps(t, raw)
	if warn != nil {
		return nil, &SchemaError{Type: t, Reason: warn.Reason}
	}
	return p, nil
}

func compact(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		cp := make(json.RawMessage, len(raw))
		copy(cp, raw)
		return cp
	}
	return json.RawMessage(buf.Bytes())
}
