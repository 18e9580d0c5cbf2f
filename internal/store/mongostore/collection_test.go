package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"kashpages/internal/domain/site"
	"kashpages/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/datatypes"
)

func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database("kashpages_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	require.NoError(t, EnsureIndexes(context.Background(), db))
	return db
}

func TestFilterTranslation(t *testing.T) {
	f := filter([]store.Filter{store.Where("id", "p1"), {Field: "status", Op: store.OpIn, Value: []string{"draft"}}})

	conds, ok := f["$and"].(bson.A)
	require.True(t, ok)
	require.Len(t, conds, 2)
	assert.Equal(t, bson.M{"_id": "p1"}, conds[0])
	assert.Empty(t, filter(nil))
}

func TestCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	pages := Open(testDB(t)).Pages

	id, err := pages.Create(ctx, &site.Page{OwnerID: "u1", OwnerHandle: "u1", Slug: "home", Title: "Home", Lang: "en", Status: site.StatusDraft, ContentSchema: datatypes.JSON(`[]`)})
	require.NoError(t, err)

	_, err = pages.Create(ctx, &site.Page{OwnerID: "u1", OwnerHandle: "u1", Slug: "home", Title: "Again", Lang: "en", Status: site.StatusDraft})
	assert.ErrorIs(t, err, store.ErrConflict)

	require.NoError(t, pages.Update(ctx, id, store.Fields{"status": site.StatusPublished}))
	got, err := pages.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, site.StatusPublished, got.Status)

	list, err := pages.Query(ctx, store.Query{Filters: []store.Filter{store.Where("status", site.StatusPublished)}, OrderBy: "slug", Limit: 5})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	n, err := pages.Count(ctx, store.Where("status", site.StatusPublished))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, pages.Delete(ctx, id))
	require.NoError(t, pages.Delete(ctx, id))
	_, err = pages.Get(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, pages.Update(ctx, id, store.Fields{"status": "draft"}), store.ErrNotFound)
}
