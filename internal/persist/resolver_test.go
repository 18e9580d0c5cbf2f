package persist_test

import (
	"context"
	"testing"
	"time"

	"kashpages/internal/domain/analytics"
	"kashpages/internal/domain/plans"
	"kashpages/internal/domain/site"
	"kashpages/internal/domain/users"
	"kashpages/internal/persist"
	"kashpages/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverHidesUnpublishedPages(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	owner := testutil.User(t, cols, "yasmin", users.RoleUser, "pro")
	a := persist.NewAdapter(cols, owner, persist.WithModeration(true))
	r := persist.NewResolver(cols)

	page := newPage(t, a, "Yasmin Dry Fruits")
	_, err := a.Save(ctx, persist.PageRef(page.ID), sampleDoc(t))
	require.NoError(t, err)
	shop := "yasmin"
	_, err = a.UpdatePage(ctx, page.ID, persist.PageUpdate{ShopSlug: &shop})
	require.NoError(t, err)

	_, err = r.ByOwnerSlug(ctx, "yasmin", page.Slug)
	assert.True(t, persist.IsNotFound(err), "draft must not resolve")

	submitted, err := a.Submit(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, site.StatusPending, submitted.Status)
	_, err = r.ByShopSlug(ctx, "yasmin")
	assert.True(t, persist.IsNotFound(err), "pending must not resolve")

	_, err = a.Moderate(ctx, page.ID, site.ActionApprove, "")
	assert.ErrorIs(t, err, persist.ErrForbidden)

	mod := persist.NewAdapter(cols, testutil.User(t, cols, "mod", users.RoleModerator, "free"))
	pending, err := mod.PendingPages(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	approved, err := mod.Moderate(ctx, page.ID, site.ActionApprove, "looks good")
	require.NoError(t, err)
	assert.Equal(t, site.StatusPublished, approved.Status)
	assert.NotNil(t, approved.PublishedAt)

	pub, err := r.ByOwnerSlug(ctx, "yasmin", page.Slug)
	require.NoError(t, err)
	assert.Equal(t, page.ID, pub.Page.ID)
	assert.Equal(t, plans.TierPro, pub.OwnerPlan)
	assert.Equal(t, []string{"a", "b"}, pub.Doc.IDs())

	pub, err = r.ByShopSlug(ctx, "yasmin")
	require.NoError(t, err)
	assert.Equal(t, page.ID, pub.Page.ID)

	_, err = a.Unpublish(ctx, page.ID)
	require.NoError(t, err)
	_, err = r.ByShopSlug(ctx, "yasmin")
	assert.True(t, persist.IsNotFound(err))

	_, err = r.ByOwnerSlug(ctx, "nobody", "home")
	assert.True(t, persist.IsNotFound(err))
}

func TestSubmitWithoutModerationPublishes(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	a := persist.NewAdapter(cols, testutil.User(t, cols, "adil", users.RoleUser, "free"))
	page := newPage(t, a, "Adil")

	published, err := a.Submit(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, site.StatusPublished, published.Status)

	_, err = a.Submit(ctx, page.ID)
	assert.ErrorIs(t, err, site.ErrInvalidTransition)

	pub, err := persist.NewResolver(cols).ByOwnerSlug(ctx, "adil", "adil")
	require.NoError(t, err)
	assert.Equal(t, plans.TierFree, pub.OwnerPlan)
}

func TestTemplateCatalog(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	admin := persist.NewAdapter(cols, testutil.User(t, cols, "root", users.RoleAdmin, "business"))
	for _, in := range []persist.NewTemplate{
		{Slug: "grocery", Name: "Grocery", Category: "food", Doc: sampleDoc(t)},
		{Slug: "boutique", Name: "Boutique", Category: "fashion"},
		{Slug: "bakery", Name: "Bakery", Category: "food"},
	} {
		_, err := admin.CreateTemplate(ctx, in)
		require.NoError(t, err)
	}

	r := persist.NewResolver(cols)
	food, err := r.Templates(ctx, "food")
	require.NoError(t, err)
	require.Len(t, food, 2)
	assert.Equal(t, "Bakery", food[0].Name)

	all, err := r.Templates(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	tmpl, doc, _, err := r.TemplateBySlug(ctx, "grocery")
	require.NoError(t, err)
	assert.Equal(t, "Grocery", tmpl.Name)
	assert.Equal(t, 2, doc.Len())

	_, _, _, err = r.TemplateBySlug(ctx, "nope")
	assert.True(t, persist.IsNotFound(err))
}

func TestRecordAndListEvents(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	a := persist.NewAdapter(cols, testutil.User(t, cols, "saba", users.RoleUser, "pro"))
	page := newPage(t, a, "Saba")

	r := persist.NewResolver(cols)
	require.NoError(t, r.RecordEvent(ctx, page.ID, page.OwnerID, analytics.EventView, nil))
	require.NoError(t, r.RecordEvent(ctx, page.ID, page.OwnerID, analytics.EventWhatsAppClick, []byte(`{"ref":"hero"}`)))

	events, err := a.Events(ctx, page.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	summary := analytics.Summarize(page.ID, events)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Counts[analytics.EventWhatsAppClick])

	other := persist.NewAdapter(cols, testutil.User(t, cols, "zed", users.RoleUser, "pro"))
	_, err = other.Events(ctx, page.ID, time.Time{})
	assert.True(t, persist.IsNotFound(err))
}
