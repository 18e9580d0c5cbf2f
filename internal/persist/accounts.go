package persist

import (
	"context"
	"errors"
	"strings"
	"time"

	"kashpages/internal/domain/plans"
	"kashpages/internal/domain/site"
	"kashpages/internal/domain/users"
	"kashpages/internal/store"
)

var ErrEmailTaken = errors.New("email already registered")

// Accounts stores user identities. It carries no principal; callers authorize.
type Accounts struct {
	cols store.Collections
	now  func() time.Time
}

func NewAccounts(cols store.Collections) *Accounts {
	return &Accounts{cols: cols, now: time.Now}
}

func (s *Accounts) ByID(ctx context.Context, id string) (*users.User, error) {
	u, err := s.cols.Users.Get(ctx, id)
	if err != nil {
		return nil, classify("load", Ref{Kind: KindUser, ID: id}, err)
	}
	return u, nil
}

func (s *Accounts) ByEmail(ctx context.Context, email string) (*users.User, error) {
	return s.one(ctx, Ref{Kind: KindUser, ID: email}, store.Where("email", normalizeEmail(email)))
}

func (s *Accounts) ByGoogleSub(ctx context.Context, sub string) (*users.User, error) {
	return s.one(ctx, Ref{Kind: KindUser, ID: sub}, store.Where("google_sub", sub))
}

// Create stores a new user with a unique handle derived from the name or email.
func (s *Accounts) Create(ctx context.Context, u *users.User) error {
	u.Email = normalizeEmail(u.Email)
	if _, err := s.ByEmail(ctx, u.Email); err == nil {
		return ErrEmailTaken
	} else if !IsNotFound(err) {
		return err
	}

	base := u.Handle
	if base == "" {
		base = u.Name
	}
	if base == "" {
		base = strings.SplitN(u.Email, "@", 2)[0]
	}
	handle, err := site.UniqueSlug(base, func(h string) (bool, error) {
		_, err := s.one(ctx, Ref{Kind: KindUser, ID: h}, store.Where("handle", h))
		if IsNotFound(err) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		return err
	}
	u.Handle = handle

	if u.Role == "" {
		u.Role = users.RoleUser
	}
	u.Plan = plans.NormalizeTier(u.Plan)
	if u.AuthProvider == "" {
		u.AuthProvider = users.ProviderLocal
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now

	id, err := s.cols.Users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrEmailTaken
		}
		return classify("create", Ref{Kind: KindUser}, err)
	}
	u.ID = id
	return nil
}

// Update changes stored user fields.
func (s *Accounts) Update(ctx context.Context, id string, fields store.Fields) error {
	fields["updated_at"] = s.now()
	if err := s.cols.Users.Update(ctx, id, fields); err != nil {
		return classify("update", Ref{Kind: KindUser, ID: id}, err)
	}
	return nil
}

// List returns users ordered by signup time, newest first.
func (s *Accounts) List(ctx context.Context, limit int) ([]users.User, error) {
	list, err := s.cols.Users.Query(ctx, store.Query{OrderBy: "created_at", Desc: true, Limit: limit})
	if err != nil {
		return nil, classify("list", Ref{Kind: KindUser}, err)
	}
	return list, nil
}

func (s *Accounts) one(ctx context.Context, ref Ref, filters ...store.Filter) (*users.User, error) {
	list, err := s.cols.Users.Query(ctx, store.Query{Filters: filters, Limit: 1})
	if err != nil {
		return nil, classify("load", ref, err)
	}
	if len(list) == 0 {
		return nil, &NotFoundError{Ref: ref}
	}
	return &list[0], nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
