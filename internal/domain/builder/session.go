// Package builder holds the in-memory editing state of one block document.
//
// A Session is created for one principal and one stored page or template. It
// mutates its document locally and only touches storage through its Store on
// Save and Reload. Mutations are serialized by the session; two saves of the
// same session never run concurrently.
package builder

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"kashpages/internal/domain/access"
	"kashpages/internal/domain/blocks"
	"kashpages/internal/domain/render"
	"kashpages/internal/persist"

	"github.com/google/uuid"
)

// State is the session lifecycle position.
type State string

const (
	StateEmpty   State = "empty"
	StateLoaded  State = "loaded"
	StateEditing State = "editing"
	StateSaved   State = "saved"
	StateClosed  State = "closed"
)

// DefaultUndoDepth is how many document snapshots Undo can walk back.
const DefaultUndoDepth = 40

// Store is the persistence a session saves to and reloads from.
type Store interface {
	Save(ctx context.Context, ref persist.Ref, doc *blocks.Document) (persist.Ref, error)
	Load(ctx context.Context, ref persist.Ref) (*blocks.Document, []blocks.MalformedBlockWarning, error)
}

type Session struct {
	id        string
	principal access.Principal
	ref       persist.Ref
	store     Store
	newID     func() string
	now       func() time.Time
	maxBlocks int
	undoDepth int

	mu         sync.Mutex
	doc        *blocks.Document
	selected   string
	mode       render.PreviewMode
	dirty      bool
	state      State
	version    uint64
	undo       []*blocks.Document
	redo       []*blocks.Document
	warnings   []blocks.MalformedBlockWarning
	lastActive time.Time

	saveMu sync.Mutex
}

type Option func(*Session)

// WithIDs replaces the block id generator.
func WithIDs(gen func() string) Option {
	return func(s *Session) { s.newID = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithBlockLimit caps the number of blocks; zero means unlimited.
func WithBlockLimit(n int) Option {
	return func(s *Session) { s.maxBlocks = n }
}

func WithUndoDepth(n int) Option {
	return func(s *Session) { s.undoDepth = n }
}

// New opens an empty session for ref. The block limit defaults to the principal's plan.
func New(principal access.Principal, ref persist.Ref, store Store, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		principal: principal,
		ref:       ref,
		store:     store,
		newID:     uuid.NewString,
		now:       time.Now,
		maxBlocks: access.ComputePolicy(principal).Rules.MaxBlocks,
		undoDepth: DefaultUndoDepth,
		doc:       &blocks.Document{},
		mode:      render.ModeDesktop,
		state:     StateEmpty,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastActive = s.now()
	return s
}

func (s *Session) ID() string                  { return s.id }
func (s *Session) Ref() persist.Ref            { return s.ref }
func (s *Session) Principal() access.Principal { return s.principal }

// AddBlock appends a block of type t with the registry defaults and selects it.
func (s *Session) AddBlock(t blocks.Type) (blocks.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touch(); err != nil {
		return blocks.Block{}, err
	}

	props, err := blocks.Defaults(t)
	if err != nil {
		return blocks.Block{}, err
	}
	if s.maxBlocks > 0 && s.doc.Len() >= s.maxBlocks {
		return blocks.Block{}, ErrBlockLimit
	}

	before := s.doc.Clone()
	b, err := s.doc.Append(blocks.Block{ID: s.freshID(), Type: t, Props: props})
	if err != nil {
		return blocks.Block{}, err
	}
	s.mutated(before)
	s.selected = b.ID
	return b, nil
}

// SelectBlock selects an existing block.
func (s *Session) SelectBlock(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touch(); err != nil {
		return err
	}
	if _, ok := s.doc.Get(id); !ok {
		return blocks.ErrBlockNotFound
	}
	s.selected = id
	return nil
}

func (s *Session) ClearSelection() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touch(); err != nil {
		return err
	}
	s.selected = ""
	return nil
}

// RemoveBlock deletes a block. Removing an absent id changes nothing and is not an error.
func (s *Session) RemoveBlock(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touch(); err != nil {
		return false, err
	}
	if _, ok := s.doc.Get(id); !ok {
		return false, nil
	}

	before := s.doc.Clone()
	s.doc.Remove(id)
	s.mutated(before)
	if s.selected == id {
		s.selected = ""
	}
	return true, nil
}

// UpdateBlock replaces the props of a block; the variant must match its type.
func (s *Session) UpdateBlock(id string, props blocks.Props) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touch(); err != nil {
		return err
	}

	before := s.doc.Clone()
	if err := s.doc.UpdateProps(id, props); err != nil {
		return err
	}
	s.mutated(before)
	return nil
}

// UpdateBlockJSON decodes raw strictly against the block's type and applies it.
func (s *Session) UpdateBlockJSON(id string, raw json.RawMessage) error {
	s.mu.Lock()
	b, ok := s.doc.Get(id)
	s.mu.Unlock()
	if !ok {
		return blocks.ErrBlockNotFound
	}
	props, err := blocks.DecodePropsStrict(b.Type, raw)
	if err != nil {
		return err
	}
	return s.UpdateBlock(id, props)
}

// Reorder renumbers the blocks to follow ids.
func (s *Session) Reorder(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touch(); err != nil {
		return err
	}

	before := s.doc.Clone()
	if err := s.doc.Reorder(ids); err != nil {
		return err
	}
	s.mutated(before)
	return nil
}

// SetPreviewMode changes the preview width only; the document is untouched.
func (s *Session) SetPreviewMode(mode render.PreviewMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touch(); err != nil {
		return err
	}
	s.mode = mode
	return nil
}

// Load replaces the session state with doc, clearing dirty, selection and history.
func (s *Session) Load(doc *blocks.Document, warnings ...blocks.MalformedBlockWarning) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touch(); err != nil {
		return err
	}
	if doc == nil {
		doc = &blocks.Document{}
	}
	s.doc = doc.Clone()
	s.warnings = warnings
	s.selected = ""
	s.dirty = false
	s.undo, s.redo = nil, nil
	s.state = StateLoaded
	s.version++
	return nil
}

// Reload loads the stored document. On failure the session keeps its current state.
func (s *Session) Reload(ctx context.Context) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	doc, warnings, err := s.store.Load(ctx, s.ref)
	if err != nil {
		return err
	}
	return s.Load(doc, warnings...)
}

// ToSaveable returns the exact bytes Save writes. It does not clear dirty.
func (s *Session) ToSaveable() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return blocks.Marshal(s.doc)
}

// Save writes the whole document. Concurrent calls on one session run one after
// another. Dirty is cleared only when nothing changed while the save was in flight;
// a failed save leaves the session dirty and returns the store error unchanged.
func (s *Session) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if err := s.touch(); err != nil {
		s.mu.Unlock()
		return err
	}
	doc := s.doc.Clone()
	version := s.version
	s.mu.Unlock()

	if _, err := s.store.Save(ctx, s.ref, doc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil
	}
	if s.version == version {
		s.dirty = false
		s.state = StateSaved
	}
	return nil
}

// Undo restores the document as it was before the last mutation.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touch(); err != nil {
		return err
	}
	if len(s.undo) == 0 {
		return ErrNothingToUndo
	}
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.doc)
	s.restore(prev)
	return nil
}

func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.touch(); err != nil {
		return err
	}
	if len(s.redo) == 0 {
		return ErrNothingToRedo
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, s.doc)
	s.restore(next)
	return nil
}

// Preview renders the current document with editor affordances.
func (s *Session) Preview() render.Output {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.Render(s.doc, render.Context{Mode: s.mode, Editor: true, SelectedID: s.selected})
}

// Close ends the session. Every later call fails with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateClosed
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// View is a read-only copy of the session state.
type View struct {
	ID         string                         `json:"id"`
	Ref        persist.Ref                    `json:"ref"`
	State      State                          `json:"state"`
	Dirty      bool                           `json:"dirty"`
	SelectedID string                         `json:"selected_id,omitempty"`
	Mode       render.PreviewMode             `json:"preview_mode"`
	Width      int                            `json:"width"`
	Blocks     []blocks.Block                 `json:"blocks"`
	Warnings   []blocks.MalformedBlockWarning `json:"warnings,omitempty"`
	CanUndo    bool                           `json:"can_undo"`
	CanRedo    bool                           `json:"can_redo"`
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:         s.id,
		Ref:        s.ref,
		State:      s.state,
		Dirty:      s.dirty,
		SelectedID: s.selected,
		Mode:       s.mode,
		Width:      s.mode.Width(),
		Blocks:     s.doc.Clone().List(),
		Warnings:   s.warnings,
		CanUndo:    len(s.undo) > 0,
		CanRedo:    len(s.redo) > 0,
	}
}

// touch fails on closed sessions and records activity. Callers hold mu.
func (s *Session) touch() error {
	if s.state == StateClosed {
		return ErrSessionClosed
	}
	s.lastActive = s.now()
	return nil
}

// mutated records before on the undo stack and marks the session dirty. Callers hold mu.
func (s *Session) mutated(before *blocks.Document) {
	s.undo = append(s.undo, before)
	if over := len(s.undo) - s.undoDepth; over > 0 {
		s.undo = s.undo[over:]
	}
	s.redo = nil
	s.markDirty()
}

func (s *Session) restore(doc *blocks.Document) {
	s.doc = doc
	if _, ok := s.doc.Get(s.selected); !ok {
		s.selected = ""
	}
	s.markDirty()
}

func (s *Session) markDirty() {
	s.dirty = true
	s.state = StateEditing
	s.version++
}

// freshID returns a generated id not used by any current block. Callers hold mu.
func (s *Session) freshID() string {
	for {
		id := s.newID()
		if _, taken := s.doc.Get(id); !taken && id != "" {
			return id
		}
	}
}
