package persist

import (
	"context"
	"time"

	"kashpages/internal/domain/analytics"
	"kashpages/internal/store"
)

// Events returns a page's analytics events since the given time, oldest first.
// A zero since returns everything.
func (a *Adapter) Events(ctx context.Context, pageID string, since time.Time) ([]analytics.Event, error) {
	if _, err := a.page(ctx, "events", pageID); err != nil {
		return nil, err
	}
	filters := []store.Filter{store.Where("page_id", pageID)}
	if !since.IsZero() {
		filters = append(filters, store.Filter{Field: "created_at", Op: store.OpGte, Value: since})
	}
	events, err := a.cols.Events.Query(ctx, store.Query{Filters: filters, OrderBy: "created_at"})
	if err != nil {
		return nil, classify("events", PageRef(pageID), err)
	}
	return events, nil
}
