package gormstore_test

import (
	"context"
	"testing"
	"time"

	"kashpages/internal/domain/analytics"
	"kashpages/internal/domain/site"
	"kashpages/internal/store"
	"kashpages/internal/store/gormstore"
	"kashpages/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newPage(owner, slug, status string) *site.Page {
	return &site.Page{
		OwnerID:       owner,
		OwnerHandle:   owner,
		Title:         slug,
		Slug:          slug,
		Lang:          "en",
		Status:        status,
		ContentSchema: datatypes.JSON(`[]`),
	}
}

func TestCreateAssignsIDAndGet(t *testing.T) {
	ctx := context.Background()
	pages := testutil.Collections(t).Pages

	id, err := pages.Create(ctx, newPage("u1", "home", site.StatusDraft))
	require.NoError(t, err)
	assert.Len(t, id, 36)

	got, err := pages.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "home", got.Slug)
	assert.Equal(t, "u1", got.OwnerID)

	_, err = pages.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateConflict(t *testing.T) {
	ctx := context.Background()
	pages := testutil.Collections(t).Pages

	_, err := pages.Create(ctx, newPage("u1", "home", site.StatusDraft))
	require.NoError(t, err)

	_, err = pages.Create(ctx, newPage("u1", "home", site.StatusDraft))
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = pages.Create(ctx, newPage("u2", "home", site.StatusDraft))
	assert.NoError(t, err)
}

func TestQueryFiltersOrderLimit(t *testing.T) {
	ctx := context.Background()
	pages := testutil.Collections(t).Pages

	for _, p := range []*site.Page{
		newPage("u1", "a", site.StatusDraft),
		newPage("u1", "b", site.StatusPublished),
		newPage("u1", "c", site.StatusPending),
		newPage("u2", "d", site.StatusPublished),
	} {
		_, err := pages.Create(ctx, p)
		require.NoError(t, err)
	}

	got, err := pages.Query(ctx, store.Query{
		Filters: []store.Filter{store.Where("owner_id", "u1")},
		OrderBy: "slug",
		Desc:    true,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Slug)

	got, err = pages.Query(ctx, store.Query{
		Filters: []store.Filter{{Field: "status", Op: store.OpIn, Value: []string{site.StatusPublished, site.StatusPending}}},
		OrderBy: "slug",
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Slug)
	assert.Equal(t, "c", got[1].Slug)

	_, err = pages.Query(ctx, store.Query{OrderBy: "slug desc; --"})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	pages := testutil.Collections(t).Pages

	for _, p := range []*site.Page{
		newPage("u1", "a", site.StatusDraft),
		newPage("u1", "b", site.StatusPublished),
		newPage("u2", "c", site.StatusPublished),
	} {
		_, err := pages.Create(ctx, p)
		require.NoError(t, err)
	}

	n, err := pages.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = pages.Count(ctx, store.Where("status", site.StatusPublished), store.Where("owner_id", "u2"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = pages.Count(ctx, store.Filter{Field: "owner_id", Op: store.OpIn, Value: []string{"u1", "u3"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = pages.Count(ctx, store.Where("status; drop", "x"))
	assert.ErrorIs(t, err, store.ErrInvalidQuery)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	pages := testutil.Collections(t).Pages

	id, err := pages.Create(ctx, newPage("u1", "home", site.StatusDraft))
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, pages.Update(ctx, id, store.Fields{
		"content_schema": datatypes.JSON(`[{"id":"a","type":"divider","props":{},"order":0}]`),
		"updated_at":     now,
	}))
	got, err := pages.Get(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","type":"divider","props":{},"order":0}]`, string(got.ContentSchema))

	assert.ErrorIs(t, pages.Update(ctx, "missing", store.Fields{"title": "x"}), store.ErrNotFound)

	require.NoError(t, pages.Delete(ctx, id))
	require.NoError(t, pages.Delete(ctx, id))
	_, err = pages.Get(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestColumnsMatchDocumentFieldNames(t *testing.T) {
	db := testutil.DB(t)
	m := db.Migrator()
	assert.True(t, m.HasColumn(&analytics.Event{}, "event_type"))
	assert.False(t, m.HasColumn(&analytics.Event{}, "type"))
	assert.True(t, m.HasColumn(&site.Review{}, "is_visible"))

	events := gormstore.Open(db).Events
	_, err := events.Create(context.Background(), &analytics.Event{PageID: "p1", OwnerID: "u1", Type: string(analytics.EventView), CreatedAt: time.Now()})
	require.NoError(t, err)
	n, err := events.Count(context.Background(), store.Where("event_type", string(analytics.EventView)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
