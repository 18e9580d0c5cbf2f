package blocks

import (
	"cmp"
	"slices"
)

// Block is one typed, parameterized unit of page content.
type Block struct {
	ID    string `json:"id"`
	Type  Type   `json:"type"`
	Props Props  `json:"props"`
	Order int    `json:"order"`
}

// Document is the ordered set of blocks belonging to one page or template.
// Blocks are kept in insertion sequence; List projects them into display order.
// Callers must not mutate the Props of returned blocks; use UpdateProps.
type Document struct {
	blocks []Block
}

// NewDocument builds a document from blocks in the given insertion sequence,
// keeping their orders.
func NewDocument(bs ...Block) (*Document, error) {
	d := &Document{}
	for _, b := range bs {
		if err := d.Insert(b); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.blocks)
}

// List returns the blocks sorted by Order. Equal orders keep insertion sequence.
func (d *Document) List() []Block {
	if d == nil {
		return []Block{}
	}
	out := make([]Block, len(d.blocks))
	copy(out, d.blocks)
	slices.SortStableFunc(out, func(a, b Block) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}

// Get returns the block with the given id.
func (d *Document) Get(id string) (Block, bool) {
	i := d.index(id)
	if i < 0 {
		return Block{}, false
	}
	return d.blocks[i], true
}

// Insert adds b with its own Order.
func (d *Document) Insert(b Block) error {
	if b.ID == "" {
		return ErrEmptyID
	}
	if d.index(b.ID) >= 0 {
		return &DuplicateIDError{ID: b.ID}
	}
	if b.Props == nil {
		if b.Type.Known() {
			b.Props = registry[b.Type].empty()
		} else {
			b.Props = &RawProps{Type: b.Type}
		}
	}
	if b.Props.BlockType() != b.Type {
		return &SchemaError{Type: b.Type, Reason: "props variant " + string(b.Props.BlockType()) + " does not match block type"}
	}
	d.blocks = append(d.blocks, b)
	return nil
}

// Append adds b after every existing block and returns it with its assigned Order.
func (d *Document) Append(b Block) (Block, error) {
	b.Order = d.nextOrder()
	if err := d.Insert(b); err != nil {
		return Block{}, err
	}
	return b, nil
}

// nextOrder is the document length, or one past the highest order when gaps
// or explicit orders put that beyond the length.
func (d *Document) nextOrder() int {
	next := len(d.blocks)
	for _, b := range d.blocks {
		if b.Order+1 > next {
			next = b.Order + 1
		}
	}
	return next
}

// Remove deletes the block with id. Removing an absent id is a no-op.
// Other blocks keep their orders.
func (d *Document) Remove(id string) bool {
	i := d.index(id)
	if i < 0 {
		return false
	}
	d.blocks = slices.Delete(d.blocks, i, i+1)
	return true
}

// UpdateProps replaces the props of a block. The variant must match the block type.
func (d *Document) UpdateProps(id string, p Props) error {
	i := d.index(id)
	if i < 0 {
		return ErrBlockNotFound
	}
	if p == nil || p.BlockType() != d.blocks[i].Type {
		return &SchemaError{Type: d.blocks[i].Type, Reason: "props do not match block type"}
	}
	d.blocks[i].Props = p
	return nil
}

// Reorder renumbers blocks 0..n-1 following ids, which must name every block once.
func (d *Document) Reorder(ids []string) error {
	if len(ids) != len(d.blocks) {
		return ErrReorderMismatch
	}
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := pos[id]; dup {
			return ErrReorderMismatch
		}
		if d.index(id) < 0 {
			return ErrReorderMismatch
		}
		pos[id] = i
	}
	for i := range d.blocks {
		d.blocks[i].Order = pos[d.blocks[i].ID]
	}
	return nil
}

// Clone returns a deep copy; later edits to either document do not affect the other.
func (d *Document) Clone() *Document {
	out := &Document{}
	if d == nil {
		return out
	}
	out.blocks = make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		b.Props = cloneProps(b.Props)
		out.blocks[i] = b
	}
	return out
}

// IDs returns block ids in insertion sequence.
func (d *Document) IDs() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = b.ID
	}
	return out
}

func (d *Document) index(id string) int {
	if d == nil {
		return -1
	}
	return slices.IndexFunc(d.blocks, func(b Block) bool { return b.ID == id })
}
