// Package apierr maps domain errors onto HTTP responses.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/builder"
	"kashpages/internal/domain/site"
	"kashpages/internal/infra/token"
	"kashpages/internal/persist"
	"kashpages/internal/store"

	"github.com/go-playground/validator/v10"
)

// AppError is an error with the status and message the client should see.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func New(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string, err error) *AppError {
	return New(http.StatusBadRequest, message, err)
}
func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}
func Conflict(message string, err error) *AppError {
	return New(http.StatusConflict, message, err)
}
func Unavailable(message string, err error) *AppError {
	return New(http.StatusServiceUnavailable, message, err)
}
func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal server error", err)
}

// Validation turns request binding errors into a 422 naming the offending fields.
// Anything that is not a validator error is reported as a malformed body.
func Validation(err error) *AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return BadRequest("Malformed request body", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldMessage(fe))
	}
	return New(http.StatusUnprocessableEntity, strings.Join(parts, "; "), err)
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// From classifies err. Unknown errors become 500s.
func From(err error) *AppError {
	var (
		app  *AppError
		se   *blocks.SchemaError
		dup  *blocks.DuplicateIDError
		nf   *persist.NotFoundError
		pe   *persist.PersistenceError
		verr validator.ValidationErrors
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &app):
		return app
	case errors.As(err, &verr):
		return Validation(err)
	case errors.As(err, &se):
		return New(http.StatusUnprocessableEntity, se.Error(), err)
	case errors.Is(err, site.ErrInvalidReview):
		return New(http.StatusUnprocessableEntity, err.Error(), err)
	case errors.As(err, &dup):
		return BadRequest(dup.Error(), err)
	case errors.Is(err, blocks.ErrReorderMismatch), errors.Is(err, blocks.ErrEmptyID), errors.Is(err, site.ErrInvalidSlug):
		return BadRequest(rootMessage(err), err)
	case errors.As(err, &nf), errors.Is(err, blocks.ErrBlockNotFound), errors.Is(err, builder.ErrSessionNotFound):
		return New(http.StatusNotFound, rootMessage(err), err)
	case errors.Is(err, persist.ErrForbidden):
		return New(http.StatusForbidden, "Access denied", err)
	case errors.Is(err, token.ErrInvalidToken):
		return New(http.StatusUnauthorized, "Invalid or expired token", err)
	case errors.Is(err, builder.ErrBlockLimit), errors.Is(err, persist.ErrPageLimit):
		return New(http.StatusPaymentRequired, rootMessage(err), err)
	case errors.Is(err, site.ErrInvalidTransition),
		errors.Is(err, builder.ErrSessionClosed),
		errors.Is(err, builder.ErrNothingToUndo),
		errors.Is(err, builder.ErrNothingToRedo),
		errors.Is(err, persist.ErrEmailTaken),
		errors.Is(err, site.ErrNoFreeSlug):
		return Conflict(rootMessage(err), err)
	case errors.Is(err, store.ErrConflict):
		return Conflict("Already taken", err)
	case errors.As(err, &pe):
		return Unavailable("Storage is unavailable, please retry", err)
	default:
		return Internal(err)
	}
}

// rootMessage is the text of the innermost wrapped error, which is the one
// written for users; outer layers only add context.
func rootMessage(err error) string {
	var nf *persist.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
