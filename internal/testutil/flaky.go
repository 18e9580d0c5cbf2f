package testutil

import (
	"context"
	"errors"
	"sync"

	"kashpages/internal/store"
)

// ErrOutage is what a Flaky collection returns while failing.
var ErrOutage = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

// Flaky wraps a collection and fails every call while an outage is switched on.
type Flaky[T any] struct {
	store.Collection[T]

	mu   sync.Mutex
	down bool
}

func NewFlaky[T any](c store.Collection[T]) *Flaky[T] {
	return &Flaky[T]{Collection: c}
}

func (f *Flaky[T]) Down() { f.set(true) }
func (f *Flaky[T]) Up()   { f.set(false) }

func (f *Flaky[T]) set(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *Flaky[T]) failing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.down
}

func (f *Flaky[T]) Get(ctx context.Context, id string) (*T, error) {
	if f.failing() {
		return nil, ErrOutage
	}
	return f.Collection.Get(ctx, id)
}

func (f *Flaky[T]) Query(ctx context.Context, q store.Query) ([]T, error) {
	if f.failing() {
		return nil, ErrOutage
	}
	return f.Collection.Query(ctx, q)
}

func (f *Flaky[T]) Count(ctx context.Context, filters ...store.Filter) (int64, error) {
	if f.failing() {
		return 0, ErrOutage
	}
	return f.Collection.Count(ctx, filters...)
}

func (f *Flaky[T]) Create(ctx context.Context, rec *T) (string, error) {
	if f.failing() {
		return "", ErrOutage
	}
	return f.Collection.Create(ctx, rec)
}

func (f *Flaky[T]) Update(ctx context.Context, id string, fields store.Fields) error {
	if f.failing() {
		return ErrOutage
	}
	return f.Collection.Update(ctx, id, fields)
}

func (f *Flaky[T]) Delete(ctx context.Context, id string) error {
	if f.failing() {
		return ErrOutage
	}
	return f.Collection.Delete(ctx, id)
}
