package persist

import (
	"errors"
	"fmt"

	"kashpages/internal/store"
)

// ErrForbidden is returned when the principal may see a record but not change it.
var ErrForbidden = errors.New("not allowed")

// PersistenceError is a store failure during a save, load or lookup. The session
// that triggered it keeps its in-memory state; callers decide whether to retry.
type PersistenceError struct {
	Op  string
	Ref Ref
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Ref, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotFoundError means the referenced record does not exist or is not visible to the principal.
type NotFoundError struct {
	Ref Ref
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Ref)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func classify(op string, ref Ref, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return &NotFoundError{Ref: ref}
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrInvalidQuery):
		return fmt.Errorf("%s %s: %w", op, ref, err)
	default:
		return &PersistenceError{Op: op, Ref: ref, Err: err}
	}
}
