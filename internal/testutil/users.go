package testutil

import (
	"context"
	"testing"
	"time"

	"kashpages/internal/domain/access"
	"kashpages/internal/domain/users"
	"kashpages/internal/store"
)

// User stores a user and returns the principal acting as them.
func User(tb testing.TB, cols store.Collections, handle, role, plan string) access.Principal {
	tb.Helper()
	now := time.Now().UTC()
	u := &users.User{
		Name:         handle,
		Handle:       handle,
		Email:        handle + "@example.com",
		AuthProvider: users.ProviderLocal,
		Role:         role,
		Plan:         plan,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := cols.Users.Create(context.Background(), u)
	if err != nil {
		tb.Fatalf("create user %s: %v", handle, err)
	}
	u.ID = id
	return access.FromUser(*u)
}
