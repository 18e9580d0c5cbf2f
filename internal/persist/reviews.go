package persist

import (
	"context"

	"kashpages/internal/domain/site"
	"kashpages/internal/store"
)

// PublicReviewLimit caps how many visible reviews a published page shows.
const PublicReviewLimit = 10

// ReviewFilter narrows an owner's review list. Zero Rating means any rating.
type ReviewFilter struct {
	Rating int
	Search string
}

// Reviews lists a page's reviews, newest first, hidden ones included.
func (a *Adapter) Reviews(ctx context.Context, pageID string, f ReviewFilter) ([]site.Review, error) {
	if _, err := a.page(ctx, "reviews", pageID); err != nil {
		return nil, err
	}
	filters := []store.Filter{store.Where("page_id", pageID)}
	if f.Rating != 0 {
		filters = append(filters, store.Where("rating", f.Rating))
	}
	list, err := a.cols.Reviews.Query(ctx, store.Query{Filters: filters, OrderBy: "created_at", Desc: true})
	if err != nil {
		return nil, classify("reviews", PageRef(pageID), err)
	}
	out := list[:0]
	for _, r := range list {
		if r.Matches(f.Rating, f.Search) {
			out = append(out, r)
		}
	}
	return out, nil
}

// SetReviewVisible shows or hides one review on the public page.
func (a *Adapter) SetReviewVisible(ctx context.Context, pageID, reviewID string, visible bool) (*site.Review, error) {
	r, err := a.review(ctx, pageID, reviewID)
	if err != nil {
		return nil, err
	}
	if r.Visible == visible {
		return r, nil
	}
	if err := a.cols.Reviews.Update(ctx, r.ID, store.Fields{"is_visible": visible}); err != nil {
		return nil, classify("review", reviewRef(r.ID), err)
	}
	r.Visible = visible
	a.saved(ctx, PageRef(pageID))
	return r, nil
}

// DeleteReview removes a review. Deleting a review that is already gone succeeds.
func (a *Adapter) DeleteReview(ctx context.Context, pageID, reviewID string) error {
	r, err := a.review(ctx, pageID, reviewID)
	if IsNotFound(err) {
		if _, perr := a.page(ctx, "review", pageID); perr != nil {
			return perr
		}
		return nil
	}
	if err != nil {
		return err
	}
	if err := a.cols.Reviews.Delete(ctx, r.ID); err != nil {
		return classify("review", reviewRef(r.ID), err)
	}
	a.saved(ctx, PageRef(pageID))
	return nil
}

// review loads a review of a page the principal owns. A review of another page
// is reported as not found.
func (a *Adapter) review(ctx context.Context, pageID, reviewID string) (*site.Review, error) {
	if _, err := a.page(ctx, "review", pageID); err != nil {
		return nil, err
	}
	r, err := a.cols.Reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, classify("review", reviewRef(reviewID), err)
	}
	if r.PageID != pageID {
		return nil, &NotFoundError{Ref: reviewRef(reviewID)}
	}
	return r, nil
}

func (a *Adapter) deleteReviews(ctx context.Context, pageID string) error {
	list, err := a.cols.Reviews.Query(ctx, store.Query{Filters: []store.Filter{store.Where("page_id", pageID)}})
	if err != nil {
		return classify("delete", PageRef(pageID), err)
	}
	for _, r := range list {
		if err := a.cols.Reviews.Delete(ctx, r.ID); err != nil {
			return classify("delete", PageRef(pageID), err)
		}
	}
	return nil
}

func reviewRef(id string) Ref { return Ref{Kind: KindReview, ID: id} }

// AddReview stores a visitor review of a published page. New reviews are visible
// until the owner hides them.
func (r *Resolver) AddReview(ctx context.Context, page site.Page, in site.Review) (*site.Review, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	rev := &site.Review{
		PageID:        page.ID,
		OwnerID:       page.OwnerID,
		Rating:        in.Rating,
		ReviewerName:  in.ReviewerName,
		ReviewerEmail: in.ReviewerEmail,
		Comment:       in.Comment,
		Visible:       true,
		CreatedAt:     r.now(),
	}
	if _, err := r.cols.Reviews.Create(ctx, rev); err != nil {
		return nil, classify("review", Ref{Kind: KindReview}, err)
	}
	return rev, nil
}

// VisibleReviews returns the newest visible reviews of a page.
func (r *Resolver) VisibleReviews(ctx context.Context, pageID string, limit int) ([]site.Review, error) {
	list, err := r.cols.Reviews.Query(ctx, store.Query{
		Filters: []store.Filter{store.Where("page_id", pageID), store.Where("is_visible", true)},
		OrderBy: "created_at",
		Desc:    true,
		Limit:   limit,
	})
	if err != nil {
		return nil, classify("reviews", PageRef(pageID), err)
	}
	return list, nil
}
