package persist

import (
	"context"
	"strings"

	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/site"
	"kashpages/internal/store"

	"gorm.io/datatypes"
)

// NewTemplate describes a template an admin adds to the catalog.
type NewTemplate struct {
	Slug        string
	Name        string
	Category    string
	Description string
	Thumbnail   string
	Doc         *blocks.Document
}

// CreateTemplate adds an active template. Admin only.
func (a *Adapter) CreateTemplate(ctx context.Context, in NewTemplate) (*site.Template, error) {
	if !a.principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if !site.ValidSlug(in.Slug) {
		return nil, site.ErrInvalidSlug
	}
	raw, err := blocks.Marshal(in.Doc)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "general"
	}

	now := a.now()
	t := &site.Template{
		Slug:        in.Slug,
		Name:        strings.TrimSpace(in.Name),
		Category:    category,
		Description: in.Description,
		Thumbnail:   in.Thumbnail,
		Active:      true,
		Schema:      datatypes.JSON(raw),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := a.cols.Templates.Create(ctx, t)
	if err != nil {
		return nil, classify("create", Ref{Kind: KindTemplate}, err)
	}
	t.ID = id
	return t, nil
}

// SetTemplateActive hides or shows a template in the catalog. Admin only.
func (a *Adapter) SetTemplateActive(ctx context.Context, id string, active bool) error {
	if !a.principal.IsAdmin() {
		return ErrForbidden
	}
	if err := a.cols.Templates.Update(ctx, id, store.Fields{"active": active, "updated_at": a.now()}); err != nil {
		return classify("update", TemplateRef(id), err)
	}
	a.saved(ctx, TemplateRef(id))
	return nil
}
