package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kashpages/internal/domain/access"
	"kashpages/internal/domain/site"
	"kashpages/internal/store"

	"gorm.io/datatypes"
)

// ErrPageLimit is returned when the principal's plan allows no more pages.
var ErrPageLimit = errors.New("page limit reached for current plan")

// NewPage describes a page to create. An empty TemplateSlug starts from an empty document.
type NewPage struct {
	Title        string
	Slug         string
	Lang         string
	TemplateSlug string
}

// PageUpdate carries the page settings to change; nil fields are left alone.
// An empty ShopSlug clears it.
type PageUpdate struct {
	Title          *string
	Slug           *string
	ShopSlug       *string
	Lang           *string
	SEOTitle       *string
	SEODescription *string
	SEOKeywords    *string
	OGImage        *string
}

// ListPages returns the principal's own pages, most recently updated first.
func (a *Adapter) ListPages(ctx context.Context) ([]site.Page, error) {
	if a.principal.IsZero() {
		return []site.Page{}, nil
	}
	pages, err := a.cols.Pages.Query(ctx, store.Query{
		Filters: []store.Filter{store.Where("owner_id", a.principal.UserID)},
		OrderBy: "updated_at",
		Desc:    true,
	})
	if err != nil {
		return nil, classify("list", Ref{Kind: KindPage}, err)
	}
	return pages, nil
}

// Page returns a page the principal owns.
func (a *Adapter) Page(ctx context.Context, id string) (*site.Page, error) {
	return a.page(ctx, "load", id)
}

// CreatePage creates a draft page for the principal. A template's document is
// copied into the page; later template edits never reach it.
func (a *Adapter) CreatePage(ctx context.Context, in NewPage) (*site.Page, error) {
	if a.principal.IsZero() {
		return nil, ErrForbidden
	}

	existing, err := a.ListPages(ctx)
	if err != nil {
		return nil, err
	}
	if limit := access.ComputePolicy(a.principal).Rules.MaxPages; limit > 0 && len(existing) >= limit {
		return nil, ErrPageLimit
	}

	content := datatypes.JSON("[]")
	var templateID *string
	if in.TemplateSlug != "" {
		t, err := a.templateBySlug(ctx, in.TemplateSlug)
		if err != nil {
			return nil, err
		}
		if len(t.Schema) > 0 {
			content = append(datatypes.JSON(nil), t.Schema...)
		}
		templateID = &t.ID
		if in.Title == "" {
			in.Title = t.Name
		}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "My shop"
	}
	base := in.Slug
	if base == "" {
		base = title
	} else if !site.ValidSlug(base) {
		return nil, site.ErrInvalidSlug
	}
	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[p.Slug] = true
	}
	slug, err := site.UniqueSlug(base, func(s string) (bool, error) { return taken[s], nil })
	if err != nil {
		return nil, err
	}

	lang := in.Lang
	if lang == "" {
		lang = "en"
	}
	now := a.now()
	page := &site.Page{
		OwnerID:       a.principal.UserID,
		OwnerHandle:   a.principal.Handle,
		TemplateID:    templateID,
		Title:         title,
		Slug:          slug,
		Lang:          lang,
		Status:        site.StatusDraft,
		SEOTitle:      title,
		ContentSchema: content,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	id, err := a.cols.Pages.Create(ctx, page)
	if err != nil {
		return nil, classify("create", Ref{Kind: KindPage}, err)
	}
	page.ID = id
	return page, nil
}

// UpdatePage changes page settings. Slug changes are checked against the owner's
// other pages, shop slugs against every page.
func (a *Adapter) UpdatePage(ctx context.Context, id string, in PageUpdate) (*site.Page, error) {
	page, err := a.page(ctx, "update", id)
	if err != nil {
		return nil, err
	}

	fields := store.Fields{}
	set := func(name string, v *string) {
		if v != nil {
			fields[name] = strings.TrimSpace(*v)
		}
	}
	set("title", in.Title)
	set("lang", in.Lang)
	set("seo_title", in.SEOTitle)
	set("seo_description", in.SEODescription)
	set("seo_keywords", in.SEOKeywords)
	set("og_image", in.OGImage)

	if in.Slug != nil && *in.Slug != page.Slug {
		if !site.ValidSlug(*in.Slug) {
			return nil, site.ErrInvalidSlug
		}
		fields["slug"] = *in.Slug
	}
	if in.ShopSlug != nil {
		switch s := strings.TrimSpace(*in.ShopSlug); {
		case s == "":
			fields["shop_slug"] = nil
		case !site.ValidSlug(s):
			return nil, site.ErrInvalidSlug
		default:
			fields["shop_slug"] = s
		}
	}
	if len(fields) == 0 {
		return page, nil
	}
	fields["updated_at"] = a.now()

	if err := a.cols.Pages.Update(ctx, id, fields); err != nil {
		return nil, classify("update", PageRef(id), err)
	}
	a.saved(ctx, PageRef(id))
	return a.page(ctx, "update", id)
}

// DeletePage removes a page together with its revisions and reviews.
func (a *Adapter) DeletePage(ctx context.Context, id string) error {
	if _, err := a.page(ctx, "delete", id); err != nil {
		return err
	}
	revs, err := a.cols.Revisions.Query(ctx, store.Query{Filters: []store.Filter{store.Where("page_id", id)}})
	if err != nil {
		return classify("delete", PageRef(id), err)
	}
	for _, r := range revs {
		if err := a.cols.Revisions.Delete(ctx, r.ID); err != nil {
			return classify("delete", PageRef(id), err)
		}
	}
	if err := a.deleteReviews(ctx, id); err != nil {
		return err
	}
	if err := a.cols.Pages.Delete(ctx, id); err != nil {
		return classify("delete", PageRef(id), err)
	}
	a.saved(ctx, PageRef(id))
	return nil
}

// Submit asks for the page to be published. Without moderation it is published directly.
func (a *Adapter) Submit(ctx context.Context, id string) (*site.Page, error) {
	page, err := a.page(ctx, "submit", id)
	if err != nil {
		return nil, err
	}
	return a.transition(ctx, page, site.ActionSubmit, "")
}

func (a *Adapter) Unpublish(ctx context.Context, id string) (*site.Page, error) {
	page, err := a.page(ctx, "unpublish", id)
	if err != nil {
		return nil, err
	}
	return a.transition(ctx, page, site.ActionUnpublish, "")
}

// Moderate applies a moderator action to any page.
func (a *Adapter) Moderate(ctx context.Context, id string, action site.Action, notes string) (*site.Page, error) {
	if !a.principal.CanModerate() {
		return nil, ErrForbidden
	}
	switch action {
	case site.ActionApprove, site.ActionReject, site.ActionUnpublish:
	default:
		return nil, fmt.Errorf("%w: %s is not a moderation action", site.ErrInvalidTransition, action)
	}
	page, err := a.cols.Pages.Get(ctx, id)
	if err != nil {
		return nil, classify("moderate", PageRef(id), err)
	}
	return a.transition(ctx, page, action, notes)
}

// PendingPages lists pages waiting for review, oldest first.
func (a *Adapter) PendingPages(ctx context.Context) ([]site.Page, error) {
	return a.PagesByStatus(ctx, site.StatusPending)
}

// PagesByStatus lists every page in status, least recently updated first.
func (a *Adapter) PagesByStatus(ctx context.Context, status string) ([]site.Page, error) {
	if !a.principal.CanModerate() {
		return nil, ErrForbidden
	}
	pages, err := a.cols.Pages.Query(ctx, store.Query{
		Filters: []store.Filter{store.Where("status", status)},
		OrderBy: "updated_at",
	})
	if err != nil {
		return nil, classify("list", Ref{Kind: KindPage, ID: status}, err)
	}
	return pages, nil
}

func (a *Adapter) transition(ctx context.Context, page *site.Page, action site.Action, notes string) (*site.Page, error) {
	next, err := site.Transition(page.Status, action, a.moderated)
	if err != nil {
		return nil, err
	}

	now := a.now()
	fields := store.Fields{"status": next, "updated_at": now}
	if next == site.StatusPublished {
		fields["published_at"] = now
		page.PublishedAt = &now
	}
	if action == site.ActionReject || action == site.ActionApprove {
		fields["admin_notes"] = strings.TrimSpace(notes)
		page.AdminNotes = strings.TrimSpace(notes)
	}
	if err := a.cols.Pages.Update(ctx, page.ID, fields); err != nil {
		return nil, classify(string(action), PageRef(page.ID), err)
	}
	page.Status = next
	page.UpdatedAt = now
	a.saved(ctx, PageRef(page.ID))
	return page, nil
}

func (a *Adapter) templateBySlug(ctx context.Context, slug string) (*site.Template, error) {
	ref := Ref{Kind: KindTemplate, ID: slug}
	list, err := a.cols.Templates.Query(ctx, store.Query{
		Filters: []store.Filter{store.Where("slug", slug), store.Where("active", true)},
		Limit:   1,
	})
	if err != nil {
		return nil, classify("load", ref, err)
	}
	if len(list) == 0 {
		return nil, &NotFoundError{Ref: ref}
	}
	return &list[0], nil
}
