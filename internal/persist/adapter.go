// Package persist maps block documents onto stored page and template records.
// It is the only layer that talks to the record store; every failure it returns is
// either a NotFoundError, a PersistenceError, or a conflict from the store.
package persist

import (
	"context"
	"fmt"
	"time"

	"kashpages/internal/domain/access"
	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/site"
	"kashpages/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
)

// DefaultRevisionLimit is how many snapshots are kept per page.
const DefaultRevisionLimit = 20

// SavedFunc is called after a document or page record changed.
type SavedFunc func(ctx context.Context, ref Ref)

// Adapter reads and writes block documents on behalf of one principal.
// Non-admin principals only ever see their own pages; any other page is reported
// as not found.
type Adapter struct {
	cols      store.Collections
	principal access.Principal
	now       func() time.Time
	revisions int
	moderated bool
	onSaved   []SavedFunc
	tracer    trace.Tracer
}

type Option func(*Adapter)

func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// WithRevisionLimit caps stored snapshots per page; n <= 0 disables revisions.
func WithRevisionLimit(n int) Option {
	return func(a *Adapter) { a.revisions = n }
}

// WithModeration makes submitted pages wait for a moderator.
func WithModeration(on bool) Option {
	return func(a *Adapter) { a.moderated = on }
}

// OnSaved registers a hook run after every successful write.
func OnSaved(fn SavedFunc) Option {
	return func(a *Adapter) { a.onSaved = append(a.onSaved, fn) }
}

func NewAdapter(cols store.Collections, principal access.Principal, opts ...Option) *Adapter {
	a := &Adapter{
		cols:      cols,
		principal: principal,
		now:       time.Now,
		revisions: DefaultRevisionLimit,
		tracer:    otel.Tracer("kashpages/persist"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Principal() access.Principal { return a.principal }

// Binder hands out adapters that share one set of options, one per request principal.
type Binder struct {
	cols store.Collections
	opts []Option
}

func NewBinder(cols store.Collections, opts ...Option) *Binder {
	return &Binder{cols: cols, opts: opts}
}

func (b *Binder) For(p access.Principal) *Adapter {
	return NewAdapter(b.cols, p, b.opts...)
}

// Save replaces the whole stored document behind ref with doc.
func (a *Adapter) Save(ctx context.Context, ref Ref, doc *blocks.Document) (out Ref, err error) {
	ctx, span := a.start(ctx, "persist.Save", ref)
	defer func() { end(span, err) }()

	raw, err := blocks.Marshal(doc)
	if err != nil {
		return Ref{}, err
	}

	switch ref.Kind {
	case KindPage:
		page, err := a.page(ctx, "save", ref.ID)
		if err != nil {
			return Ref{}, err
		}
		fields := store.Fields{"content_schema": datatypes.JSON(raw), "updated_at": a.now()}
		if err := a.cols.Pages.Update(ctx, page.ID, fields); err != nil {
			return Ref{}, classify("save", ref, err)
		}
		// the content is stored from here on, whatever happens to its snapshot
		a.saved(ctx, ref)
		if err := a.addRevision(ctx, page.ID, raw, "save"); err != nil {
			return ref, err
		}
		return ref, nil
	case KindTemplate:
		if !a.principal.IsAdmin() {
			return Ref{}, ErrForbidden
		}
		fields := store.Fields{"schema": datatypes.JSON(raw), "updated_at": a.now()}
		if err := a.cols.Templates.Update(ctx, ref.ID, fields); err != nil {
			return Ref{}, classify("save", ref, err)
		}
	default:
		return Ref{}, fmt.Errorf("persist: cannot save documents to %q", ref.Kind)
	}

	a.saved(ctx, ref)
	return ref, nil
}

// Load decodes the stored document behind ref. Blocks that could only be kept as
// fallbacks are reported as warnings, not errors.
func (a *Adapter) Load(ctx context.Context, ref Ref) (doc *blocks.Document, warnings []blocks.MalformedBlockWarning, err error) {
	ctx, span := a.start(ctx, "persist.Load", ref)
	defer func() { end(span, err) }()

	var raw []byte
	switch ref.Kind {
	case KindPage:
		page, err := a.page(ctx, "load", ref.ID)
		if err != nil {
			return nil, nil, err
		}
		raw = page.ContentSchema
	case KindTemplate:
		t, err := a.Template(ctx, ref.ID)
		if err != nil {
			return nil, nil, err
		}
		raw = t.Schema
	default:
		return nil, nil, fmt.Errorf("persist: cannot load documents from %q", ref.Kind)
	}

	doc, warnings, err = blocks.Unmarshal(raw)
	if err != nil {
		return nil, nil, &PersistenceError{Op: "decode", Ref: ref, Err: err}
	}
	if len(warnings) > 0 {
		span.SetAttributes(attribute.Int("blocks.warnings", len(warnings)))
	}
	return doc, warnings, nil
}

// Template returns an active template, or any template for admins.
func (a *Adapter) Template(ctx context.Context, id string) (*site.Template, error) {
	ref := TemplateRef(id)
	t, err := a.cols.Templates.Get(ctx, id)
	if err != nil {
		return nil, classify("load", ref, err)
	}
	if !t.Active && !a.principal.IsAdmin() {
		return nil, &NotFoundError{Ref: ref}
	}
	return t, nil
}

// page loads a page the principal owns.
func (a *Adapter) page(ctx context.Context, op, id string) (*site.Page, error) {
	ref := PageRef(id)
	if a.principal.IsZero() {
		return nil, &NotFoundError{Ref: ref}
	}
	p, err := a.cols.Pages.Get(ctx, id)
	if err != nil {
		return nil, classify(op, ref, err)
	}
	if !a.principal.Owns(p.OwnerID) {
		return nil, &NotFoundError{Ref: ref}
	}
	return p, nil
}

func (a *Adapter) saved(ctx context.Context, ref Ref) {
	for _, fn := range a.onSaved {
		fn(ctx, ref)
	}
}

func (a *Adapter) start(ctx context.Context, name string, ref Ref) (context.Context, trace.Span) {
	return a.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("store.kind", string(ref.Kind)),
		attribute.String("store.id", ref.ID),
		attribute.String("principal.id", a.principal.UserID),
	))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
