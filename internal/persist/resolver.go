package persist

import (
	"context"
	"time"

	"kashpages/internal/domain/analytics"
	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/plans"
	"kashpages/internal/domain/site"
	"kashpages/internal/store"

	"gorm.io/datatypes"
)

// Published is a page that may be shown to anonymous visitors.
type Published struct {
	Page      site.Page
	OwnerPlan string
	Doc       *blocks.Document
	Warnings  []blocks.MalformedBlockWarning
	// Reviews are the newest visible reviews; plans without reviews get none.
	Reviews []site.Review
}

// Resolver serves anonymous reads: published pages, the template catalog and
// analytics events recorded from public pages.
type Resolver struct {
	cols store.Collections
	now  func() time.Time
}

func NewResolver(cols store.Collections) *Resolver {
	return &Resolver{cols: cols, now: time.Now}
}

// ByOwnerSlug resolves /p/:owner/:slug. Pages that are not published are not found.
func (r *Resolver) ByOwnerSlug(ctx context.Context, handle, slug string) (*Published, error) {
	return r.published(ctx, Ref{Kind: KindPage, ID: handle + "/" + slug},
		store.Where("owner_handle", handle), store.Where("slug", slug))
}

// ByShopSlug resolves /s/:slug.
func (r *Resolver) ByShopSlug(ctx context.Context, shopSlug string) (*Published, error) {
	return r.published(ctx, Ref{Kind: KindPage, ID: shopSlug}, store.Where("shop_slug", shopSlug))
}

func (r *Resolver) published(ctx context.Context, ref Ref, filters ...store.Filter) (*Published, error) {
	filters = append(filters, store.Where("status", site.StatusPublished))
	pages, err := r.cols.Pages.Query(ctx, store.Query{Filters: filters, Limit: 1})
	if err != nil {
		return nil, classify("resolve", ref, err)
	}
	if len(pages) == 0 {
		return nil, &NotFoundError{Ref: ref}
	}
	page := pages[0]

	doc, warnings, err := blocks.Unmarshal(page.ContentSchema)
	if err != nil {
		return nil, &PersistenceError{Op: "decode", Ref: PageRef(page.ID), Err: err}
	}

	tier := plans.TierFree
	if owner, err := r.cols.Users.Get(ctx, page.OwnerID); err == nil {
		tier = plans.NormalizeTier(owner.Plan)
	}
	pub := &Published{Page: page, OwnerPlan: tier, Doc: doc, Warnings: warnings}
	if site.RulesFor(tier).Reviews {
		reviews, err := r.VisibleReviews(ctx, page.ID, PublicReviewLimit)
		if err != nil {
			return nil, err
		}
		pub.Reviews = reviews
	}
	return pub, nil
}

// Templates lists active templates, optionally of one category, by name.
func (r *Resolver) Templates(ctx context.Context, category string) ([]site.Template, error) {
	filters := []store.Filter{store.Where("active", true)}
	if category != "" {
		filters = append(filters, store.Where("category", category))
	}
	list, err := r.cols.Templates.Query(ctx, store.Query{Filters: filters, OrderBy: "name"})
	if err != nil {
		return nil, classify("list", Ref{Kind: KindTemplate}, err)
	}
	return list, nil
}

// TemplateBySlug returns an active template with its decoded document.
func (r *Resolver) TemplateBySlug(ctx context.Context, slug string) (*site.Template, *blocks.Document, []blocks.MalformedBlockWarning, error) {
	ref := Ref{Kind: KindTemplate, ID: slug}
	list, err := r.cols.Templates.Query(ctx, store.Query{
		Filters: []store.Filter{store.Where("slug", slug), store.Where("active", true)},
		Limit:   1,
	})
	if err != nil {
		return nil, nil, nil, classify("load", ref, err)
	}
	if len(list) == 0 {
		return nil, nil, nil, &NotFoundError{Ref: ref}
	}
	doc, warnings, err := blocks.Unmarshal(list[0].Schema)
	if err != nil {
		return nil, nil, nil, &PersistenceError{Op: "decode", Ref: TemplateRef(list[0].ID), Err: err}
	}
	return &list[0], doc, warnings, nil
}

// RecordEvent stores one engagement event for a page resolved earlier.
func (r *Resolver) RecordEvent(ctx context.Context, pageID, ownerID string, typ analytics.EventType, metadata []byte) error {
	ev := &analytics.Event{
		PageID:    pageID,
		OwnerID:   ownerID,
		Type:      string(typ),
		CreatedAt: r.now(),
	}
	if len(metadata) > 0 {
		ev.Metadata = datatypes.JSON(metadata)
	}
	if _, err := r.cols.Events.Create(ctx, ev); err != nil {
		return classify("record", Ref{Kind: KindEvent}, err)
	}
	return nil
}
