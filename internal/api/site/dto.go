package siteapi

import (
	"time"

	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/site"
)

type PageDTO struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	ShopSlug       *string    `json:"shop_slug,omitempty"`
	Lang           string     `json:"lang"`
	Status         string     `json:"status"`
	AdminNotes     string     `json:"admin_notes,omitempty"`
	TemplateID     *string    `json:"template_id,omitempty"`
	SEOTitle       string     `json:"seo_title"`
	SEODescription string     `json:"seo_description"`
	SEOKeywords    string     `json:"seo_keywords"`
	OGImage        string     `json:"og_image"`
	PublicURL      string     `json:"public_url"`
	ShopURL        string     `json:"shop_url,omitempty"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type DocumentDTO struct {
	Blocks   []blocks.Block                 `json:"blocks"`
	Warnings []blocks.MalformedBlockWarning `json:"warnings,omitempty"`
}

type TemplateDTO struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Active      bool   `json:"active"`
}

type GetTemplatesResponse struct {
	Templates []TemplateDTO `json:"templates"`
}

type GetTemplateResponse struct {
	Template TemplateDTO `json:"template"`
	DocumentDTO
}

type RevisionDTO struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type BlockTypeDTO struct {
	Type     blocks.Type  `json:"type"`
	Defaults blocks.Props `json:"defaults"`
}

func toTemplateDTO(t site.Template) TemplateDTO {
	return TemplateDTO{
		ID:          t.ID,
		Slug:        t.Slug,
		Name:        t.Name,
		Category:    t.Category,
		Description: t.Description,
		Thumbnail:   t.Thumbnail,
		Active:      t.Active,
	}
}

func toDocumentDTO(doc *blocks.Document, warnings []blocks.MalformedBlockWarning) DocumentDTO {
	return DocumentDTO{Blocks: doc.List(), Warnings: warnings}
}
