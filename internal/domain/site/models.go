package site

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusDraft       = "draft"
	StatusPending     = "pending"
	StatusPublished   = "published"
	StatusRejected    = "rejected"
	StatusUnpublished = "unpublished"
)

// Template is a read-only seed document users start a page from.
type Template struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Slug        string         `gorm:"not null;uniqueIndex" json:"slug" bson:"slug"`
	Name        string         `gorm:"not null" json:"name" bson:"name"`
	Category    string         `gorm:"not null;index;default:'general'" json:"category" bson:"category"`
	Description string         `json:"description" bson:"description"`
	Thumbnail   string         `json:"thumbnail" bson:"thumbnail"`
	Active      bool           `gorm:"not null;default:true" json:"active" bson:"active"`
	Schema      datatypes.JSON `json:"schema" bson:"schema"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Page is a user's shop page. ContentSchema holds the serialized block document.
type Page struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	OwnerID     string  `gorm:"size:36;not null;index;uniqueIndex:idx_pages_owner_slug" json:"owner_id" bson:"owner_id"`
	OwnerHandle string  `gorm:"not null;index" json:"owner_handle" bson:"owner_handle"`
	TemplateID  *string `gorm:"size:36;index" json:"template_id,omitempty" bson:"template_id,omitempty"`

	Title    string  `gorm:"not null" json:"title" bson:"title"`
	Slug     string  `gorm:"not null;uniqueIndex:idx_pages_owner_slug" json:"slug" bson:"slug"`
	ShopSlug *string `gorm:"uniqueIndex" json:"shop_slug,omitempty" bson:"shop_slug,omitempty"`
	Lang     string  `gorm:"not null;default:'en'" json:"lang" bson:"lang"`

	Status     string `gorm:"not null;default:'draft';index" json:"status" bson:"status"`
	AdminNotes string `json:"admin_notes,omitempty" bson:"admin_notes"`

	SEOTitle       string `json:"seo_title" bson:"seo_title"`
	SEODescription string `json:"seo_description" bson:"seo_description"`
	SEOKeywords    string `json:"seo_keywords" bson:"seo_keywords"`
	OGImage        string `json:"og_image" bson:"og_image"`

	ContentSchema datatypes.JSON `json:"content_schema" bson:"content_schema"`

	PublishedAt *time.Time `json:"published_at,omitempty" bson:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// Revision is a saved snapshot of a page's block document.
type Revision struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	PageID    string         `gorm:"size:36;not null;index" json:"page_id" bson:"page_id"`
	AuthorID  string         `gorm:"size:36" json:"author_id" bson:"author_id"`
	Label     string         `json:"label" bson:"label"`
	Snapshot  datatypes.JSON `json:"snapshot" bson:"snapshot"`
	CreatedAt time.Time      `gorm:"index" json:"created_at" bson:"created_at"`
}

func (t *Template) RecordID() string      { return t.ID }
func (t *Template) SetRecordID(id string) { t.ID = id }
func (p *Page) RecordID() string          { return p.ID }
func (p *Page) SetRecordID(id string)     { p.ID = id }
func (r *Revision) RecordID() string      { return r.ID }
func (r *Revision) SetRecordID(id string) { r.ID = id }

func (p *Page) IsPublished() bool { return p.Status == StatusPublished }
