package render

import (
	"bytes"
	"html/template"

	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/site"
)

// PageMeta is the document-level data a public or preview page needs around its blocks.
type PageMeta struct {
	Title       string
	Description string
	Keywords    string
	OGImage     string
	Lang        string
	NoIndex     bool
	// Branding adds the platform footer.
	Branding bool
	Reviews  []Review
}

// Review is a visitor review shown below the page content.
type Review struct {
	Name    string
	Rating  int
	Comment string
}

// WithReviews returns m showing list below the content.
func (m PageMeta) WithReviews(list []site.Review) PageMeta {
	m.Reviews = make([]Review, 0, len(list))
	for _, r := range list {
		m.Reviews = append(m.Reviews, Review{Name: r.ReviewerName, Rating: r.Rating, Comment: r.Comment})
	}
	return m
}

// MetaFor builds the page metadata for a stored page whose owner is on tier.
func MetaFor(p site.Page, tier string) PageMeta {
	title := p.SEOTitle
	if title == "" {
		title = p.Title
	}
	return PageMeta{
		Title:       title,
		Description: p.SEODescription,
		Keywords:    p.SEOKeywords,
		OGImage:     p.OGImage,
		Lang:        p.Lang,
		NoIndex:     !p.IsPublished(),
		Branding:    site.RulesFor(tier).ShowPlatformBranding,
	}
}

type pageView struct {
	PageMeta
	Content template.HTML
}

// RenderPage renders doc inside a complete HTML page.
func RenderPage(meta PageMeta, doc *blocks.Document, ctx Context) (Output, error) {
	out := Render(doc, ctx)
	if meta.Lang == "" {
		meta.Lang = "en"
	}
	if meta.Title == "" {
		meta.Title = "Kashpages"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "page", pageView{PageMeta: meta, Content: out.HTML}); err != nil {
		return Output{}, err
	}
	out.HTML = template.HTML(buf.String())
	return out, nil
}

// NotFound is the page shown for missing or unpublished shops.
func NotFound() string {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "notfound", nil); err != nil {
		return "Shop not found"
	}
	return buf.String()
}
