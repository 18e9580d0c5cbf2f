// Package store is the document/record store contract the persistence layer talks to.
// Each entity gets one Collection; drivers live in subpackages.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"kashpages/internal/domain/analytics"
	"kashpages/internal/domain/site"
	"kashpages/internal/domain/users"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record conflicts with an existing one")
	ErrInvalidQuery = errors.New("invalid query")
)

type Op string

const (
	OpEq  Op = "="
	OpNe  Op = "!="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpIn  Op = "in"
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

// Where is an equality filter.
func Where(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	// Limit <= 0 means no limit.
	Limit int
}

// Fields is a partial record keyed by stored field name.
type Fields map[string]any

// Record is implemented by every stored entity so drivers can assign ids on create.
type Record interface {
	RecordID() string
	SetRecordID(id string)
}

type Collection[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
	Query(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, filters ...Filter) (int64, error)
	Create(ctx context.Context, rec *T) (string, error)
	Update(ctx context.Context, id string, fields Fields) error
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
}

// Collections bundles the entity collections of one backing store.
type Collections struct {
	Users     Collection[users.User]
	Pages     Collection[site.Page]
	Templates Collection[site.Template]
	Revisions Collection[site.Revision]
	Reviews   Collection[site.Review]
	Events    Collection[analytics.Event]
}

var fieldName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Validate rejects field names and operators drivers cannot translate safely.
func (q Query) Validate() error {
	if q.OrderBy != "" && !fieldName.MatchString(q.OrderBy) {
		return fmt.Errorf("%w: order field %q", ErrInvalidQuery, q.OrderBy)
	}
	for _, f := range q.Filters {
		if !fieldName.MatchString(f.Field) {
			return fmt.Errorf("%w: field %q", ErrInvalidQuery, f.Field)
		}
		switch f.Op {
		case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn:
		default:
			return fmt.Errorf("%w: operator %q", ErrInvalidQuery, f.Op)
		}
	}
	return nil
}

// ValidateFields rejects partial records with unsafe field names.
func ValidateFields(fields Fields) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty update", ErrInvalidQuery)
	}
	for k := range fields {
		if !fieldName.MatchString(k) {
			return fmt.Errorf("%w: field %q", ErrInvalidQuery, k)
		}
	}
	return nil
}
