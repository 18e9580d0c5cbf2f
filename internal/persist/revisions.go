package persist

import (
	"context"

	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/site"
	"kashpages/internal/store"

	"gorm.io/datatypes"
)

func (a *Adapter) addRevision(ctx context.Context, pageID string, raw []byte, label string) error {
	if a.revisions <= 0 {
		return nil
	}
	rev := &site.Revision{
		PageID:    pageID,
		AuthorID:  a.principal.UserID,
		Label:     label,
		Snapshot:  datatypes.JSON(raw),
		CreatedAt: a.now(),
	}
	if _, err := a.cols.Revisions.Create(ctx, rev); err != nil {
		return classify("revision", PageRef(pageID), err)
	}
	return a.pruneRevisions(ctx, pageID)
}

func (a *Adapter) pruneRevisions(ctx context.Context, pageID string) error {
	revs, err := a.cols.Revisions.Query(ctx, store.Query{
		Filters: []store.Filter{store.Where("page_id", pageID)},
		OrderBy: "created_at",
		Desc:    true,
	})
	if err != nil {
		return classify("revision", PageRef(pageID), err)
	}
	for i := a.revisions; i < len(revs); i++ {
		if err := a.cols.Revisions.Delete(ctx, revs[i].ID); err != nil {
			return classify("revision", PageRef(pageID), err)
		}
	}
	return nil
}

// Revisions lists a page's snapshots, newest first.
func (a *Adapter) Revisions(ctx context.Context, pageID string) ([]site.Revision, error) {
	if _, err := a.page(ctx, "revisions", pageID); err != nil {
		return nil, err
	}
	revs, err := a.cols.Revisions.Query(ctx, store.Query{
		Filters: []store.Filter{store.Where("page_id", pageID)},
		OrderBy: "created_at",
		Desc:    true,
		Limit:   a.revisions,
	})
	if err != nil {
		return nil, classify("revisions", PageRef(pageID), err)
	}
	return revs, nil
}

// Restore saves the snapshot of revisionID as the page's current document.
func (a *Adapter) Restore(ctx context.Context, pageID, revisionID string) (*blocks.Document, []blocks.MalformedBlockWarning, error) {
	if _, err := a.page(ctx, "restore", pageID); err != nil {
		return nil, nil, err
	}
	ref := Ref{Kind: KindRevision, ID: revisionID}
	rev, err := a.cols.Revisions.Get(ctx, revisionID)
	if err != nil {
		return nil, nil, classify("restore", ref, err)
	}
	if rev.PageID != pageID {
		return nil, nil, &NotFoundError{Ref: ref}
	}

	doc, warnings, err := blocks.Unmarshal(rev.Snapshot)
	if err != nil {
		return nil, nil, &PersistenceError{Op: "decode", Ref: ref, Err: err}
	}
	if _, err := a.Save(ctx, PageRef(pageID), doc); err != nil {
		return nil, nil, err
	}
	return doc, warnings, nil
}
