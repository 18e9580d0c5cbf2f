package persist_test

import (
	"context"
	"errors"
	"testing"

	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/site"
	"kashpages/internal/domain/users"
	"kashpages/internal/persist"
	"kashpages/internal/store"
	"kashpages/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc(t *testing.T) *blocks.Document {
	t.Helper()
	d, err := blocks.NewDocument(
		blocks.Block{ID: "a", Type: blocks.TypeHero, Props: &blocks.HeroProps{Title: "Spice Bazaar", Subtitle: "Since 1952"}, Order: 5},
		blocks.Block{ID: "b", Type: blocks.TypeParagraph, Props: &blocks.ParagraphProps{Text: "Saffron & walnuts"}, Order: 1},
	)
	require.NoError(t, err)
	return d
}

func newPage(t *testing.T, a *persist.Adapter, title string) *site.Page {
	t.Helper()
	p, err := a.CreatePage(context.Background(), persist.NewPage{Title: title})
	require.NoError(t, err)
	return p
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	owner := testutil.User(t, cols, "zara", users.RoleUser, "free")
	a := persist.NewAdapter(cols, owner, persist.WithClock(testutil.Clock()))

	page := newPage(t, a, "Zara Spices")
	assert.Equal(t, "zara-spices", page.Slug)
	assert.Equal(t, site.StatusDraft, page.Status)

	doc := sampleDoc(t)
	ref, err := a.Save(ctx, persist.PageRef(page.ID), doc)
	require.NoError(t, err)
	assert.Equal(t, persist.PageRef(page.ID), ref)

	back, warnings, err := a.Load(ctx, ref)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, doc.List(), back.List())
	assert.Equal(t, []string{"b", "a"}, idsOf(back.List()))
}

func TestSaveReplacesWholeDocument(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	a := persist.NewAdapter(cols, testutil.User(t, cols, "omar", users.RoleUser, "pro"))
	page := newPage(t, a, "Omar")

	_, err := a.Save(ctx, persist.PageRef(page.ID), sampleDoc(t))
	require.NoError(t, err)

	only, err := blocks.NewDocument(blocks.Block{ID: "z", Type: blocks.TypeDivider})
	require.NoError(t, err)
	_, err = a.Save(ctx, persist.PageRef(page.ID), only)
	require.NoError(t, err)

	back, _, err := a.Load(ctx, persist.PageRef(page.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, back.IDs())
}

func TestOtherOwnersPagesAreNotFound(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	owner := persist.NewAdapter(cols, testutil.User(t, cols, "amir", users.RoleUser, "free"))
	page := newPage(t, owner, "Amir")

	stranger := persist.NewAdapter(cols, testutil.User(t, cols, "bilal", users.RoleUser, "free"))
	_, _, err := stranger.Load(ctx, persist.PageRef(page.ID))
	assert.True(t, persist.IsNotFound(err))

	_, err = stranger.Save(ctx, persist.PageRef(page.ID), sampleDoc(t))
	assert.True(t, persist.IsNotFound(err))

	admin := persist.NewAdapter(cols, testutil.User(t, cols, "root", users.RoleAdmin, "business"))
	_, _, err = admin.Load(ctx, persist.PageRef(page.ID))
	assert.NoError(t, err)

	_, _, err = owner.Load(ctx, persist.PageRef("missing"))
	var nf *persist.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, persist.PageRef("missing"), nf.Ref)
}

func TestStoreOutageSurfacesPersistenceError(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	pages := testutil.NewFlaky(cols.Pages)
	cols.Pages = pages

	a := persist.NewAdapter(cols, testutil.User(t, cols, "sana", users.RoleUser, "free"))
	page := newPage(t, a, "Sana")

	pages.Down()
	_, err := a.Save(ctx, persist.PageRef(page.ID), sampleDoc(t))
	var pe *persist.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "save", pe.Op)
	assert.ErrorIs(t, err, testutil.ErrOutage)

	_, _, err = a.Load(ctx, persist.PageRef(page.ID))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "load", pe.Op)
	assert.False(t, persist.IsNotFound(err))

	pages.Up()
	_, _, err = a.Load(ctx, persist.PageRef(page.ID))
	assert.NoError(t, err)
}

func TestCorruptContentIsAPersistenceError(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	a := persist.NewAdapter(cols, testutil.User(t, cols, "noor", users.RoleUser, "free"))
	page := newPage(t, a, "Noor")

	require.NoError(t, cols.Pages.Update(ctx, page.ID, store.Fields{"content_schema": []byte(`"just a string"`)}))

	_, _, err := a.Load(ctx, persist.PageRef(page.ID))
	var pe *persist.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, blocks.ErrCorruptDocument)
}

func TestRevisionsAreBoundedAndRestorable(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	a := persist.NewAdapter(cols, testutil.User(t, cols, "farah", users.RoleUser, "free"),
		persist.WithClock(testutil.Clock()), persist.WithRevisionLimit(3))
	page := newPage(t, a, "Farah")

	doc := &blocks.Document{}
	for i := 0; i < 5; i++ {
		_, err := doc.Append(blocks.Block{ID: string(rune('a' + i)), Type: blocks.TypeDivider})
		require.NoError(t, err)
		_, err = a.Save(ctx, persist.PageRef(page.ID), doc)
		require.NoError(t, err)
	}

	revs, err := a.Revisions(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, revs, 3)
	assert.True(t, revs[0].CreatedAt.After(revs[1].CreatedAt))

	all, err := cols.Revisions.Query(ctx, store.Query{Filters: []store.Filter{store.Where("page_id", page.ID)}})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	oldest := revs[2]
	restored, _, err := a.Restore(ctx, page.ID, oldest.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, restored.IDs())

	back, _, err := a.Load(ctx, persist.PageRef(page.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, back.IDs())
}

func TestCreatePageCopiesTemplate(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	admin := persist.NewAdapter(cols, testutil.User(t, cols, "root", users.RoleAdmin, "business"))

	tmpl, err := admin.CreateTemplate(ctx, persist.NewTemplate{Slug: "bakery", Name: "Bakery", Category: "food", Doc: sampleDoc(t)})
	require.NoError(t, err)

	user := persist.NewAdapter(cols, testutil.User(t, cols, "hina", users.RoleUser, "pro"))
	page, err := user.CreatePage(ctx, persist.NewPage{TemplateSlug: "bakery"})
	require.NoError(t, err)
	assert.Equal(t, "Bakery", page.Title)
	require.NotNil(t, page.TemplateID)
	assert.Equal(t, tmpl.ID, *page.TemplateID)

	changed, err := blocks.NewDocument(blocks.Block{ID: "new", Type: blocks.TypeSpacer})
	require.NoError(t, err)
	_, err = admin.Save(ctx, persist.TemplateRef(tmpl.ID), changed)
	require.NoError(t, err)

	doc, _, err := user.Load(ctx, persist.PageRef(page.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, doc.IDs())

	_, err = user.CreatePage(ctx, persist.NewPage{TemplateSlug: "does-not-exist"})
	assert.True(t, persist.IsNotFound(err))
}

func TestTemplateWritesAreAdminOnly(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	admin := persist.NewAdapter(cols, testutil.User(t, cols, "root", users.RoleAdmin, "business"))
	tmpl, err := admin.CreateTemplate(ctx, persist.NewTemplate{Slug: "salon", Name: "Salon", Doc: &blocks.Document{}})
	require.NoError(t, err)
	assert.Equal(t, "general", tmpl.Category)

	user := persist.NewAdapter(cols, testutil.User(t, cols, "hina", users.RoleUser, "free"))
	_, err = user.Save(ctx, persist.TemplateRef(tmpl.ID), sampleDoc(t))
	assert.ErrorIs(t, err, persist.ErrForbidden)
	_, err = user.CreateTemplate(ctx, persist.NewTemplate{Slug: "x", Name: "X"})
	assert.ErrorIs(t, err, persist.ErrForbidden)

	require.NoError(t, admin.SetTemplateActive(ctx, tmpl.ID, false))
	_, _, err = user.Load(ctx, persist.TemplateRef(tmpl.ID))
	assert.True(t, persist.IsNotFound(err))
}

func TestPlanLimitsPageCount(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	free := persist.NewAdapter(cols, testutil.User(t, cols, "kiran", users.RoleUser, "free"))

	newPage(t, free, "First")
	_, err := free.CreatePage(ctx, persist.NewPage{Title: "Second"})
	assert.ErrorIs(t, err, persist.ErrPageLimit)

	pro := persist.NewAdapter(cols, testutil.User(t, cols, "lina", users.RoleUser, "pro"))
	a := newPage(t, pro, "Shop")
	b := newPage(t, pro, "Shop")
	assert.Equal(t, "shop", a.Slug)
	assert.Equal(t, "shop-2", b.Slug)
}

func TestUpdatePageValidatesSlugs(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	a := persist.NewAdapter(cols, testutil.User(t, cols, "meera", users.RoleUser, "pro"))
	page := newPage(t, a, "Meera")

	bad := "Not A Slug"
	_, err := a.UpdatePage(ctx, page.ID, persist.PageUpdate{Slug: &bad})
	assert.ErrorIs(t, err, site.ErrInvalidSlug)

	shop, title := "meera-crafts", "Meera Crafts"
	updated, err := a.UpdatePage(ctx, page.ID, persist.PageUpdate{ShopSlug: &shop, Title: &title})
	require.NoError(t, err)
	require.NotNil(t, updated.ShopSlug)
	assert.Equal(t, "meera-crafts", *updated.ShopSlug)
	assert.Equal(t, "Meera Crafts", updated.Title)

	other := persist.NewAdapter(cols, testutil.User(t, cols, "rafi", users.RoleUser, "pro"))
	second := newPage(t, other, "Rafi")
	_, err = other.UpdatePage(ctx, second.ID, persist.PageUpdate{ShopSlug: &shop})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestSavedHookRuns(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	var seen []persist.Ref
	a := persist.NewAdapter(cols, testutil.User(t, cols, "iqra", users.RoleUser, "free"),
		persist.OnSaved(func(_ context.Context, ref persist.Ref) { seen = append(seen, ref) }))
	page := newPage(t, a, "Iqra")

	_, err := a.Save(ctx, persist.PageRef(page.ID), sampleDoc(t))
	require.NoError(t, err)
	_, err = a.Submit(ctx, page.ID)
	require.NoError(t, err)

	assert.Equal(t, []persist.Ref{persist.PageRef(page.ID), persist.PageRef(page.ID)}, seen)
}

func TestSaveRunsHooksWhenRevisionFails(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	revs := testutil.NewFlaky(cols.Revisions)
	cols.Revisions = revs
	var seen []persist.Ref
	a := persist.NewAdapter(cols, testutil.User(t, cols, "zoya", users.RoleUser, "free"),
		persist.OnSaved(func(_ context.Context, ref persist.Ref) { seen = append(seen, ref) }))
	page := newPage(t, a, "Zoya")

	revs.Down()
	ref, err := a.Save(ctx, persist.PageRef(page.ID), sampleDoc(t))
	var pe *persist.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "revision", pe.Op)
	assert.Equal(t, persist.PageRef(page.ID), ref)
	assert.Equal(t, []persist.Ref{persist.PageRef(page.ID)}, seen)

	revs.Up()
	doc, _, err := a.Load(ctx, persist.PageRef(page.ID))
	require.NoError(t, err)
	assert.Equal(t, sampleDoc(t).IDs(), doc.IDs())
}

func TestDeletePageRemovesRevisions(t *testing.T) {
	ctx := context.Background()
	cols := testutil.Collections(t)
	a := persist.NewAdapter(cols, testutil.User(t, cols, "tariq", users.RoleUser, "free"))
	page := newPage(t, a, "Tariq")
	_, err := a.Save(ctx, persist.PageRef(page.ID), sampleDoc(t))
	require.NoError(t, err)

	require.NoError(t, a.DeletePage(ctx, page.ID))
	_, err = a.Page(ctx, page.ID)
	assert.True(t, persist.IsNotFound(err))

	revs, err := cols.Revisions.Query(ctx, store.Query{Filters: []store.Filter{store.Where("page_id", page.ID)}})
	require.NoError(t, err)
	assert.Empty(t, revs)
}

func TestErrorsUnwrap(t *testing.T) {
	err := &persist.PersistenceError{Op: "save", Ref: persist.PageRef("p1"), Err: testutil.ErrOutage}
	assert.True(t, errors.Is(err, testutil.ErrOutage))
	assert.Contains(t, err.Error(), "pages/p1")
}

func idsOf(list []blocks.Block) []string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.ID
	}
	return out
}
