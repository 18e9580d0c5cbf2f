package blocks

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	d := &Document{}
	for _, typ := range Types() {
		props, err := Defaults(typ)
		require.NoError(t, err)
		_, err = d.Append(Block{ID: "id-" + string(typ), Type: typ, Props: props})
		require.NoError(t, err)
	}
	require.NoError(t, d.Insert(Block{ID: "legacy", Type: "countdown", Props: &RawProps{Type: "countdown", Raw: []byte(`{"to":"<soon>"}`)}, Order: 3}))

	raw, err := Marshal(d)
	require.NoError(t, err)

	back, warnings, err := Unmarshal(raw)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "legacy", warnings[0].BlockID)

	assert.Equal(t, d.List(), back.List())
	assert.Equal(t, d.IDs(), back.IDs())
}

func TestMarshalEmitsStoredShape(t *testing.T) {
	d, _ := NewDocument(Block{ID: "a", Type: TypeParagraph, Props: &ParagraphProps{Text: "x & y"}, Order: 2})

	raw, err := Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","type":"paragraph","props":{"text":"x & y"},"order":2}]`, string(raw))

	raw, err = Marshal(&Document{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestUnmarshalKeepsUnknownTypes(t *testing.T) {
	raw := []byte(`[
		{"id":"1","type":"hero","props":{"title":"Hi"},"order":0},
		{"id":"2","type":"marquee","props":{"speed":3},"order":1},
		{"id":"3","type":"paragraph","props":{"text":"Bye"},"order":2}
	]`)

	d, warnings, err := Unmarshal(raw)
	require.NoError(t, err)
	require.Equal(t, 3, d.Len())
	require.Len(t, warnings, 1)
	assert.Equal(t, Type("marquee"), warnings[0].Type)

	b, ok := d.Get("2")
	require.True(t, ok)
	assert.IsType(t, &RawProps{}, b.Props)
}

func TestUnmarshalRepairsLegacyEntries(t *testing.T) {
	raw := []byte(`{"blocks":[
		{"id":1700000000000,"type":"heading","props":{"text":"A"},"order":1.0},
		{"type":"divider","props":{}},
		{"id":"dup","type":"spacer","props":{"height":10},"order":4},
		{"id":"dup","type":"spacer","props":null,"order":5},
		"garbage"
	]}`)

	d, warnings, err := Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"1700000000000", "legacy-1", "dup", "dup~3"}, d.IDs())
	assert.Len(t, warnings, 3)

	b, _ := d.Get("legacy-1")
	assert.Equal(t, 1, b.Order)
	b, _ = d.Get("1700000000000")
	assert.Equal(t, 1, b.Order)
}

func TestUnmarshalRekeyedIDsStayUnique(t *testing.T) {
	d, warnings, err := Unmarshal([]byte(`[
		{"id":"a","type":"divider"},
		{"id":"a~2","type":"divider"},
		{"id":"a","type":"divider"},
		{"id":"b","type":"divider"},
		{"id":"b","type":"divider"},
		{"id":"b~4","type":"divider"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a~2", "a~2-2", "b", "b~4-2", "b~4"}, d.IDs())
	dups := 0
	for _, w := range warnings {
		if strings.HasPrefix(w.Reason, "duplicate id") {
			dups++
		}
	}
	assert.Equal(t, 2, dups)

	assert.True(t, d.Remove("a~2"))
	assert.Equal(t, 5, d.Len())
	_, ok := d.Get("a~2-2")
	assert.True(t, ok)
}

func TestUnmarshalEmptyAndCorrupt(t *testing.T) {
	d, _, err := Unmarshal(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())

	d, _, err = Unmarshal([]byte("null"))
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())

	_, _, err = Unmarshal([]byte(`"just a string"`))
	assert.True(t, errors.Is(err, ErrCorruptDocument))
}

func TestUnmarshalStrict(t *testing.T) {
	d, err := UnmarshalStrict([]byte(`[
		{"id":"a","type":"heading","props":{"text":"Hi","level":2},"order":5},
		{"id":"b","type":"divider"}
	]`))
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())
	b, ok := d.Get("b")
	require.True(t, ok)
	assert.Equal(t, 6, b.Order)

	_, err = UnmarshalStrict([]byte(`[{"id":"a","type":"carousel","props":{}}]`))
	var se *SchemaError
	assert.ErrorAs(t, err, &se)

	_, err = UnmarshalStrict([]byte(`[{"id":"a","type":"spacer","props":{"height":"tall"}}]`))
	assert.ErrorAs(t, err, &se)

	_, err = UnmarshalStrict([]byte(`[{"id":"a","type":"divider"},{"id":"a","type":"divider"}]`))
	var dup *DuplicateIDError
	assert.ErrorAs(t, err, &dup)

	_, err = UnmarshalStrict([]byte(`[{"type":"divider"}]`))
	assert.ErrorIs(t, err, ErrEmptyID)

	_, err = UnmarshalStrict([]byte(`"nope"`))
	assert.ErrorIs(t, err, ErrCorruptDocument)

	d, err = UnmarshalStrict(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
}
