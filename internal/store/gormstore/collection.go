// Package gormstore implements the record store on GORM (postgres in production,
// sqlite for local runs and tests).
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kashpages/internal/domain/analytics"
	"kashpages/internal/domain/site"
	"kashpages/internal/domain/users"
	"kashpages/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Collection[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Collection[T] {
	return &Collection[T]{db: db}
}

// Open returns every entity collection backed by db.
func Open(db *gorm.DB) store.Collections {
	return store.Collections{
		Users:     New[users.User](db),
		Pages:     New[site.Page](db),
		Templates: New[site.Template](db),
		Revisions: New[site.Revision](db),
		Reviews:   New[site.Review](db),
		Events:    New[analytics.Event](db),
	}
}

// Models lists every stored entity for AutoMigrate.
func Models() []any {
	return []any{
		&users.User{},
		&site.Template{},
		&site.Page{},
		&site.Revision{},
		&site.Review{},
		&analytics.Event{},
	}
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	var out T
	if err := c.db.WithContext(ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (c *Collection[T]) Query(ctx context.Context, q store.Query) ([]T, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	tx := where(c.db.WithContext(ctx).Model(new(T)), q.Filters)
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		tx = tx.Order(q.OrderBy + " " + dir)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	out := make([]T, 0)
	if err := tx.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (c *Collection[T]) Count(ctx context.Context, filters ...store.Filter) (int64, error) {
	if err := (store.Query{Filters: filters}).Validate(); err != nil {
		return 0, err
	}
	var n int64
	if err := where(c.db.WithContext(ctx).Model(new(T)), filters).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func where(tx *gorm.DB, filters []store.Filter) *gorm.DB {
	for _, f := range filters {
		if f.Op == store.OpIn {
			tx = tx.Where(fmt.Sprintf("%s IN ?", f.Field), f.Value)
			continue
		}
		tx = tx.Where(fmt.Sprintf("%s %s ?", f.Field, f.Op), f.Value)
	}
	return tx
}

func (c *Collection[T]) Create(ctx context.Context, rec *T) (string, error) {
	r, ok := any(rec).(store.Record)
	if !ok {
		return "", fmt.Errorf("gormstore: %T does not implement store.Record", rec)
	}
	if strings.TrimSpace(r.RecordID()) == "" {
		r.SetRecordID(uuid.NewString())
	}
	if err := c.db.WithContext(ctx).Create(rec).Error; err != nil {
		return "", translate(err)
	}
	return r.RecordID(), nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, fields store.Fields) error {
	if err := store.ValidateFields(fields); err != nil {
		return err
	}
	res := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(map[string]any(fields))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T)).Error; err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	default:
		return err
	}
}
