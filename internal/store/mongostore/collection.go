// Package mongostore implements the record store on MongoDB. Field names are the
// bson tags of the domain models, which match the relational column names.
package mongostore

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
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	CollUsers     = "users"
	CollPages     = "pages"
	CollTemplates = "templates"
	CollRevisions = "revisions"
	CollReviews   = "reviews"
	CollEvents    = "analytics_events"
)

type Collection[T any] struct {
	coll *mongo.Collection
}

func New[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{coll: db.Collection(name)}
}

func Open(db *mongo.Database) store.Collections {
	return store.Collections{
		Users:     New[users.User](db, CollUsers),
		Pages:     New[site.Page](db, CollPages),
		Templates: New[site.Template](db, CollTemplates),
		Revisions: New[site.Revision](db, CollRevisions),
		Reviews:   New[site.Review](db, CollReviews),
		Events:    New[analytics.Event](db, CollEvents),
	}
}

// EnsureIndexes creates the unique and lookup indexes the relational schema gets from its tags.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		CollUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "handle", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "google_sub", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		CollPages: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "shop_slug", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		CollTemplates: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollRevisions: {
			{Keys: bson.D{{Key: "page_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollReviews: {
			{Keys: bson.D{{Key: "page_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollEvents: {
			{Keys: bson.D{{Key: "page_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongostore: indexes for %s: %w", name, err)
		}
	}
	return nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	var out T
	if err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (c *Collection[T]) Query(ctx context.Context, q store.Query) ([]T, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	opts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: field(q.OrderBy), Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := c.coll.Find(ctx, filter(q.Filters), opts)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (c *Collection[T]) Count(ctx context.Context, filters ...store.Filter) (int64, error) {
	if err := (store.Query{Filters: filters}).Validate(); err != nil {
		return 0, err
	}
	n, err := c.coll.CountDocuments(ctx, filter(filters))
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (c *Collection[T]) Create(ctx context.Context, rec *T) (string, error) {
	r, ok := any(rec).(store.Record)
	if !ok {
		return "", fmt.Errorf("mongostore: %T does not implement store.Record", rec)
	}
	if strings.TrimSpace(r.RecordID()) == "" {
		r.SetRecordID(uuid.NewString())
	}
	if _, err := c.coll.InsertOne(ctx, rec); err != nil {
		return "", translate(err)
	}
	return r.RecordID(), nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, fields store.Fields) error {
	if err := store.ValidateFields(fields); err != nil {
		return err
	}
	set, unset := bson.M{}, bson.M{}
	for k, v := range fields {
		// nil clears the field so sparse unique indexes skip it
		if v == nil {
			unset[field(k)] = ""
			continue
		}
		set[field(k)] = v
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if _, err := c.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return translate(err)
	}
	return nil
}

var ops = map[store.Op]string{
	store.OpNe:  "$ne",
	store.OpGt:  "$gt",
	store.OpGte: "$gte",
	store.OpLt:  "$lt",
	store.OpLte: "$lte",
	store.OpIn:  "$in",
}

func filter(filters []store.Filter) bson.M {
	if len(filters) == 0 {
		return bson.M{}
	}
	conds := make(bson.A, 0, len(filters))
	for _, f := range filters {
		if f.Op == store.OpEq {
			conds = append(conds, bson.M{field(f.Field): f.Value})
			continue
		}
		conds = append(conds, bson.M{field(f.Field): bson.M{ops[f.Op]: f.Value}})
	}
	return bson.M{"$and": conds}
}

// field maps the relational primary key onto Mongo's _id.
func field(name string) string {
	if name == "id" {
		return "_id"
	}
	return name
}

func translate(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	default:
		return err
	}
}
