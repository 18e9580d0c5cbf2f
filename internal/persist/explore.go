package persist

import (
	"context"
	"strings"

	"kashpages/internal/domain/site"
	"kashpages/internal/store"
)

const (
	DefaultExploreLimit = 24
	MaxExploreLimit     = 100
)

// Published lists published pages, newest first. A non-empty search keeps pages
// whose title, shop slug or owner handle contain it.
func (r *Resolver) Published(ctx context.Context, search string, limit int) ([]site.Page, error) {
	if limit <= 0 {
		limit = DefaultExploreLimit
	}
	limit = min(limit, MaxExploreLimit)
	search = strings.ToLower(strings.TrimSpace(search))

	q := store.Query{
		Filters: []store.Filter{store.Where("status", site.StatusPublished)},
		OrderBy: "created_at",
		Desc:    true,
	}
	if search == "" {
		q.Limit = limit
	}
	pages, err := r.cols.Pages.Query(ctx, q)
	if err != nil {
		return nil, classify("explore", Ref{Kind: KindPage}, err)
	}

	out := make([]site.Page, 0, min(len(pages), limit))
	for _, p := range pages {
		if len(out) == limit {
			break
		}
		if search == "" || matchesExplore(p, search) {
			out = append(out, p)
		}
	}
	return out, nil
}

func matchesExplore(p site.Page, search string) bool {
	shop := ""
	if p.ShopSlug != nil {
		shop = *p.ShopSlug
	}
	for _, s := range []string{p.Title, shop, p.OwnerHandle} {
		if strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}
