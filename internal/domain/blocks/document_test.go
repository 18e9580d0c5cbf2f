package blocks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(bs []Block) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}

func TestListSortsByOrder(t *testing.T) {
	d, err := NewDocument(
		Block{ID: "a", Type: TypeHero, Order: 5},
		Block{ID: "b", Type: TypeParagraph, Order: 1},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a"}, ids(d.List()))
}

func TestListIsStableForTies(t *testing.T) {
	d, err := NewDocument(
		Block{ID: "x", Type: TypeDivider, Order: 2},
		Block{ID: "y", Type: TypeDivider, Order: 1},
		Block{ID: "z", Type: TypeDivider, Order: 2},
		Block{ID: "w", Type: TypeDivider, Order: 1},
	)
	require.NoError(t, err)

	first := d.List()
	assert.Equal(t, []string{"y", "w", "x", "z"}, ids(first))
	assert.Equal(t, first, d.List())
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	d, _ := NewDocument(Block{ID: "a", Type: TypeHero})

	err := d.Insert(Block{ID: "a", Type: TypeFooter})
	var dup *DuplicateIDError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "a", dup.ID)
	assert.Equal(t, 1, d.Len())
}

func TestInsertRejectsMismatchedProps(t *testing.T) {
	d := &Document{}
	err := d.Insert(Block{ID: "a", Type: TypeHero, Props: &FooterProps{}})
	var schemaErr *SchemaError
	assert.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, 0, d.Len())

	assert.ErrorIs(t, d.Insert(Block{Type: TypeHero}), ErrEmptyID)
}

func TestAppendAssignsNextOrder(t *testing.T) {
	d := &Document{}

	b, err := d.Append(Block{ID: "a", Type: TypeHero})
	require.NoError(t, err)
	assert.Equal(t, 0, b.Order)

	b, err = d.Append(Block{ID: "b", Type: TypeParagraph})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Order)

	require.NoError(t, d.Insert(Block{ID: "c", Type: TypeDivider, Order: 9}))
	b, err = d.Append(Block{ID: "d", Type: TypeDivider})
	require.NoError(t, err)
	assert.Equal(t, 10, b.Order)
	assert.Equal(t, "d", d.List()[3].ID)
}

func TestRemoveIsIdempotentAndKeepsGaps(t *testing.T) {
	d, _ := NewDocument(
		Block{ID: "a", Type: TypeHero, Order: 0},
		Block{ID: "b", Type: TypeParagraph, Order: 1},
		Block{ID: "c", Type: TypeFooter, Order: 2},
	)
	before := d.List()

	assert.False(t, d.Remove("missing"))
	assert.Equal(t, before, d.List())

	assert.True(t, d.Remove("b"))
	assert.False(t, d.Remove("b"))

	list := d.List()
	require.Len(t, list, 2)
	assert.Equal(t, 0, list[0].Order)
	assert.Equal(t, 2, list[1].Order)
}

func TestUpdateProps(t *testing.T) {
	d, _ := NewDocument(Block{ID: "a", Type: TypeHeading, Props: &HeadingProps{Text: "old"}})

	require.NoError(t, d.UpdateProps("a", &HeadingProps{Text: "new", Level: 3}))
	b, _ := d.Get("a")
	assert.Equal(t, &HeadingProps{Text: "new", Level: 3}, b.Props)

	assert.ErrorIs(t, d.UpdateProps("zzz", &HeadingProps{}), ErrBlockNotFound)

	var schemaErr *SchemaError
	assert.True(t, errors.As(d.UpdateProps("a", &ParagraphProps{}), &schemaErr))
}

func TestReorder(t *testing.T) {
	d, _ := NewDocument(
		Block{ID: "a", Type: TypeHero, Order: 0},
		Block{ID: "b", Type: TypeParagraph, Order: 7},
		Block{ID: "c", Type: TypeFooter, Order: 9},
	)

	require.NoError(t, d.Reorder([]string{"c", "a", "b"}))
	assert.Equal(t, []string{"c", "a", "b"}, ids(d.List()))

	assert.ErrorIs(t, d.Reorder([]string{"a", "b"}), ErrReorderMismatch)
	assert.ErrorIs(t, d.Reorder([]string{"a", "a", "b"}), ErrReorderMismatch)
	assert.ErrorIs(t, d.Reorder([]string{"a", "b", "x"}), ErrReorderMismatch)
}

func TestCloneIsDeep(t *testing.T) {
	d, _ := NewDocument(Block{ID: "a", Type: TypeFAQ, Props: &FAQProps{Items: []FAQItem{{Q: "q", A: "a"}}}})
	cp := d.Clone()
	assert.Equal(t, d.List(), cp.List())

	b, _ := cp.Get("a")
	b.Props.(*FAQProps).Items[0].A = "changed"

	orig, _ := d.Get("a")
	assert.Equal(t, "a", orig.Props.(*FAQProps).Items[0].A)
}
