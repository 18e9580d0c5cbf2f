package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/builder"
	"kashpages/internal/domain/site"
	"kashpages/internal/persist"
	"kashpages/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"schema", &blocks.SchemaError{Type: "carousel", Reason: "unknown block type"}, http.StatusUnprocessableEntity},
		{"review", fmt.Errorf("%w: rating must be between 1 and 5", site.ErrInvalidReview), http.StatusUnprocessableEntity},
		{"duplicate", fmt.Errorf("add: %w", &blocks.DuplicateIDError{ID: "b1"}), http.StatusBadRequest},
		{"reorder", blocks.ErrReorderMismatch, http.StatusBadRequest},
		{"slug", fmt.Errorf("slug %q: %w", "A B", site.ErrInvalidSlug), http.StatusBadRequest},
		{"not found", &persist.NotFoundError{Ref: persist.PageRef("p1")}, http.StatusNotFound},
		{"block", blocks.ErrBlockNotFound, http.StatusNotFound},
		{"session", builder.ErrSessionNotFound, http.StatusNotFound},
		{"forbidden", persist.ErrForbidden, http.StatusForbidden},
		{"page limit", persist.ErrPageLimit, http.StatusPaymentRequired},
		{"block limit", builder.ErrBlockLimit, http.StatusPaymentRequired},
		{"transition", fmt.Errorf("%w: approve from %q", site.ErrInvalidTransition, "draft"), http.StatusConflict},
		{"closed", builder.ErrSessionClosed, http.StatusConflict},
		{"conflict", fmt.Errorf("update pages/p1: %w", store.ErrConflict), http.StatusConflict},
		{"outage", &persist.PersistenceError{Op: "save", Ref: persist.PageRef("p1"), Err: errors.New("connection refused")}, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := From(tc.err)
			require.NotNil(t, got)
			assert.Equal(t, tc.code, got.Code)
			assert.ErrorIs(t, got, tc.err)
		})
	}
}

func TestFromKeepsAppError(t *testing.T) {
	app := Forbidden("Moderators only")
	assert.Same(t, app, From(fmt.Errorf("wrapped: %w", app)))
	assert.Nil(t, From(nil))
}

func TestMessagesHideInternals(t *testing.T) {
	got := From(&persist.PersistenceError{Op: "save", Ref: persist.PageRef("p1"), Err: errors.New("dial tcp 10.0.0.5:5432")})
	assert.NotContains(t, got.Message, "10.0.0.5")

	got = From(fmt.Errorf("%w: approve from %q", site.ErrInvalidTransition, "draft"))
	assert.Equal(t, "invalid status transition", got.Message)

	assert.Equal(t, "Internal server error", From(errors.New("secret detail")).Message)
}

func TestValidation(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
		Title string `validate:"max=5"`
	}
	err := validator.New().Struct(req{Title: "much too long"})
	require.Error(t, err)

	got := Validation(err)
	assert.Equal(t, http.StatusUnprocessableEntity, got.Code)
	assert.Contains(t, got.Message, "email is required")
	assert.Contains(t, got.Message, "title must be at most 5 characters")

	got = Validation(errors.New("unexpected EOF"))
	assert.Equal(t, http.StatusBadRequest, got.Code)
}
