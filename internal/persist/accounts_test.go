package persist_test

import (
	"context"
	"testing"

	"kashpages/internal/domain/users"
	"kashpages/internal/persist"
	"kashpages/internal/store"
	"kashpages/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountsCreateAssignsUniqueHandles(t *testing.T) {
	ctx := context.Background()
	acc := persist.NewAccounts(testutil.Collections(t))

	first := &users.User{Name: "Spice Bazaar", Email: " Owner@Example.com "}
	require.NoError(t, acc.Create(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "spice-bazaar", first.Handle)
	assert.Equal(t, "owner@example.com", first.Email)
	assert.Equal(t, users.RoleUser, first.Role)
	assert.Equal(t, "free", first.Plan)

	second := &users.User{Name: "Spice Bazaar", Email: "other@example.com"}
	require.NoError(t, acc.Create(ctx, second))
	assert.Equal(t, "spice-bazaar-2", second.Handle)

	dup := &users.User{Name: "Dup", Email: "OWNER@example.com"}
	assert.ErrorIs(t, acc.Create(ctx, dup), persist.ErrEmailTaken)

	got, err := acc.ByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	require.NoError(t, acc.Update(ctx, first.ID, store.Fields{"plan": "pro"}))
	got, err = acc.ByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "pro", got.Plan)

	_, err = acc.ByGoogleSub(ctx, "sub-1")
	assert.True(t, persist.IsNotFound(err))

	list, err := acc.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
