package blocks

import (
	"bytes"
	"encoding/json"
)

// Props is the per-type property set of a block. Each block type has exactly one
// concrete variant; RawProps carries anything the registry cannot decode.
type Props interface {
	BlockType() Type
}

// contentful is implemented by variants that are meaningless without a primary field.
// A stored block of such a type with the field missing renders as a fallback.
type contentful interface {
	hasContent() bool
}

type HeroProps struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	ButtonText      string `json:"buttonText"`
	ButtonLink      string `json:"buttonLink"`
	BackgroundImage string `json:"backgroundImage"`
}

type FeatureItem struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

type FeaturesProps struct {
	Title string        `json:"title"`
	Items []FeatureItem `json:"items"`
}

type Testimonial struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type TestimonialsProps struct {
	Title string        `json:"title"`
	Items []Testimonial `json:"items"`
}

type PricingPlan struct {
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Features []string `json:"features"`
}

type PricingProps struct {
	Title string        `json:"title"`
	Plans []PricingPlan `json:"plans"`
}

type FAQItem struct {
	Q string `json:"q"`
	A string `json:"a"`
}

type FAQProps struct {
	Title string    `json:"title"`
	Items []FAQItem `json:"items"`
}

type GalleryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

type GalleryProps struct {
	Title  string         `json:"title"`
	Images []GalleryImage `json:"images"`
}

type ContactProps struct {
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	WhatsApp string `json:"whatsapp"`
	Address  string `json:"address"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type FooterProps struct {
	Text  string `json:"text"`
	Links []Link `json:"links"`
}

type HeadingProps struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

type ParagraphProps struct {
	Text string `json:"text"`
}

type ButtonProps struct {
	Text    string `json:"text"`
	Link    string `json:"link"`
	Variant string `json:"variant"`
}

type ImageProps struct {
	Src     string `json:"src"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

type VideoProps struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type FormField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

type FormProps struct {
	Title      string      `json:"title"`
	Fields     []FormField `json:"fields"`
	SubmitText string      `json:"submitText"`
}

type DividerProps struct{}

type SpacerProps struct {
	Height int `json:"height"`
}

type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type SocialLinksProps struct {
	Links []SocialLink `json:"links"`
}

type MapProps struct {
	EmbedURL string `json:"embedUrl"`
	Address  string `json:"address"`
}

// RawProps keeps the stored props of a block verbatim. It is used for types
// outside the enumeration and for props that do not decode into their variant.
type RawProps struct {
	Type Type
	Raw  json.RawMessage
}

func (p *HeroProps) BlockType() Type         { return TypeHero }
func (p *FeaturesProps) BlockType() Type     { return TypeFeatures }
func (p *TestimonialsProps) BlockType() Type { return TypeTestimonials }
func (p *PricingProps) BlockType() Type      { return TypePricing }
func (p *FAQProps) BlockType() Type          { return TypeFAQ }
func (p *GalleryProps) BlockType() Type      { return TypeGallery }
func (p *ContactProps) BlockType() Type      { return TypeContact }
func (p *FooterProps) BlockType() Type       { return TypeFooter }
func (p *HeadingProps) BlockType() Type      { return TypeHeading }
func (p *ParagraphProps) BlockType() Type    { return TypeParagraph }
func (p *ButtonProps) BlockType() Type       { return TypeButton }
func (p *ImageProps) BlockType() Type        { return TypeImage }
func (p *VideoProps) BlockType() Type        { return TypeVideo }
func (p *FormProps) BlockType() Type         { return TypeForm }
func (p *DividerProps) BlockType() Type      { return TypeDivider }
func (p *SpacerProps) BlockType() Type       { return TypeSpacer }
func (p *SocialLinksProps) BlockType() Type  { return TypeSocialLinks }
func (p *MapProps) BlockType() Type          { return TypeMap }
func (p *RawProps) BlockType() Type          { return p.Type }

func (p *HeadingProps) hasContent() bool   { return p.Text != "" }
func (p *ParagraphProps) hasContent() bool { return p.Text != "" }
func (p *ButtonProps) hasContent() bool    { return p.Text != "" }
func (p *ImageProps) hasContent() bool     { return p.Src != "" }
func (p *VideoProps) hasContent() bool     { return p.URL != "" }
func (p *MapProps) hasContent() bool       { return p.EmbedURL != "" || p.Address != "" }

func (p *RawProps) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(p.Raw)) == 0 {
		return []byte("{}"), nil
	}
	return p.Raw, nil
}

// HasContent reports whether p carries the field its block type cannot render without.
// Variants without such a field always have content; RawProps never does.
func HasContent(p Props) bool {
	if p == nil {
		return false
	}
	if _, ok := p.(*RawProps); ok {
		return false
	}
	if c, ok := p.(contentful); ok {
		return c.hasContent()
	}
	return true
}

// cloneProps deep-copies p through its JSON form.
func cloneProps(p Props) Props {
	if p == nil {
		return nil
	}
	if raw, ok := p.(*RawProps); ok {
		cp := make(json.RawMessage, len(raw.Raw))
		copy(cp, raw.Raw)
		return &RawProps{Type: raw.Type, Raw: cp}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return p
	}
	out, _ := DecodeProps(p.BlockType(), b)
	return out
}
