package persist

import (
	"context"
	"time"

	"kashpages/internal/domain/plans"
	"kashpages/internal/domain/site"
	"kashpages/internal/store"
)

// Stats is the platform overview shown to administrators.
type Stats struct {
	TotalUsers     int            `json:"total_users"`
	UsersPerPlan   map[string]int `json:"users_per_plan"`
	TotalPages     int            `json:"total_pages"`
	PagesPerStatus map[string]int `json:"pages_per_status"`
	RecentEvents   int            `json:"recent_events"`
}

// Stats counts users, pages and the events recorded since the given time.
// Zero buckets are left out of the per-plan and per-status maps.
func (a *Adapter) Stats(ctx context.Context, since time.Time) (*Stats, error) {
	if !a.principal.IsAdmin() {
		return nil, ErrForbidden
	}
	userRef, pageRef := Ref{Kind: KindUser}, Ref{Kind: KindPage}

	users, err := a.cols.Users.Count(ctx)
	if err != nil {
		return nil, classify("stats", userRef, err)
	}
	st := &Stats{TotalUsers: int(users), UsersPerPlan: map[string]int{}, PagesPerStatus: map[string]int{}}

	// empty and unknown plans count as free
	free := users
	for _, tier := range plans.Tiers {
		if tier == plans.TierFree {
			continue
		}
		n, err := a.cols.Users.Count(ctx, store.Where("plan", tier))
		if err != nil {
			return nil, classify("stats", userRef, err)
		}
		put(st.UsersPerPlan, tier, n)
		free -= n
	}
	put(st.UsersPerPlan, plans.TierFree, free)

	for _, status := range site.Statuses {
		n, err := a.cols.Pages.Count(ctx, store.Where("status", status))
		if err != nil {
			return nil, classify("stats", pageRef, err)
		}
		put(st.PagesPerStatus, status, n)
		st.TotalPages += int(n)
	}

	events, err := a.cols.Events.Count(ctx, store.Filter{Field: "created_at", Op: store.OpGte, Value: since})
	if err != nil {
		return nil, classify("stats", Ref{Kind: KindEvent}, err)
	}
	st.RecentEvents = int(events)
	return st, nil
}

func put(m map[string]int, key string, n int64) {
	if n > 0 {
		m[key] = int(n)
	}
}
