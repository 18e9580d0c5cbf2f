package blocks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrCorruptDocument is returned when stored content is not a block list at all.
var ErrCorruptDocument = errors.New("stored content is not a block list")

type storedBlock struct {
	ID    string `json:"id"`
	Type  Type   `json:"type"`
	Props Props  `json:"props"`
	Order int    `json:"order"`
}

// Marshal encodes d as a JSON array of {id, type, props, order} in insertion sequence.
func Marshal(d *Document) ([]byte, error) {
	out := make([]storedBlock, 0, d.Len())
	if d != nil {
		for _, b := range d.blocks {
			out = append(out, storedBlock{ID: b.ID, Type: b.Type, Props: b.Props, Order: b.Order})
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode blocks: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

type looseBlock struct {
	ID    any             `json:"id"`
	Type  string          `json:"type"`
	Props json.RawMessage `json:"props"`
	Order *float64        `json:"order"`
}

// Unmarshal decodes stored content leniently. Unknown types and undecodable props are
// kept as RawProps, missing ids are synthesized and duplicate ids re-keyed; each such
// repair is reported as a warning. Only content that is not a block list at all fails.
func Unmarshal(raw []byte) (*Document, []MalformedBlockWarning, error) {
	raw = bytes.TrimSpace(raw)
	d := &Document{}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return d, nil, nil
	}

	items, err := splitItems(raw)
	if err != nil {
		return nil, nil, err
	}

	stored := storedIDs(items)
	var warnings []MalformedBlockWarning
	for i, item := range items {
		var lb looseBlock
		if err := json.Unmarshal(item, &lb); err != nil {
			warnings = append(warnings, MalformedBlockWarning{Reason: fmt.Sprintf("entry %d dropped: %v", i, err)})
			continue
		}

		id := idString(lb.ID)
		if id == "" {
			id = fmt.Sprintf("legacy-%d", i)
			warnings = append(warnings, MalformedBlockWarning{BlockID: id, Type: Type(lb.Type), Reason: "missing id"})
		}
		if d.index(id) >= 0 {
			rekeyed := fmt.Sprintf("%s~%d", id, i)
			for n := 2; d.index(rekeyed) >= 0 || claimed(stored[i+1:], rekeyed); n++ {
				rekeyed = fmt.Sprintf("%s~%d-%d", id, i, n)
			}
			warnings = append(warnings, MalformedBlockWarning{BlockID: rekeyed, Type: Type(lb.Type), Reason: "duplicate id " + id})
			id = rekeyed
		}

		order := i
		if lb.Order != nil && !math.IsNaN(*lb.Order) && !math.IsInf(*lb.Order, 0) {
			order = int(math.Floor(*lb.Order))
		}

		t := Type(lb.Type)
		props, warn := DecodeProps(t, lb.Props)
		if warn != nil {
			warn.BlockID = id
			warnings = append(warnings, *warn)
		}

		d.blocks = append(d.blocks, Block{ID: id, Type: t, Props: props, Order: order})
	}
	return d, warnings, nil
}

// storedIDs lists the id each entry claims, empty for entries without one.
func storedIDs(items []json.RawMessage) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		var head struct {
			ID any `json:"id"`
		}
		if json.Unmarshal(item, &head) == nil {
			ids[i] = idString(head.ID)
		}
	}
	return ids
}

func claimed(ids []string, id string) bool {
	for _, s := range ids {
		if s == id {
			return true
		}
	}
	return false
}

// splitItems accepts a bare array or an object wrapping it under "blocks".
func splitItems(raw []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
		}
		return items, nil
	}
	var wrapped struct {
		Blocks []json.RawMessage `json:"blocks"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	return wrapped.Blocks, nil
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

type strictBlock struct {
	ID    string          `json:"id"`
	Type  Type            `json:"type"`
	Props json.RawMessage `json:"props"`
	Order *int            `json:"order"`
}

// UnmarshalStrict decodes a document submitted by an editor. Unlike Unmarshal it
// repairs nothing: unknown types or bad props are a SchemaError, a missing id is
// ErrEmptyID and a repeated id is a DuplicateIDError. Blocks without an order are
// appended.
func UnmarshalStrict(raw []byte) (*Document, error) {
	raw = bytes.TrimSpace(raw)
	d := &Document{}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return d, nil
	}
	items, err := splitItems(raw)
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		var sb strictBlock
		if err := json.Unmarshal(item, &sb); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptDocument, i, err)
		}
		props, err := DecodePropsStrict(sb.Type, sb.Props)
		if err != nil {
			return nil, err
		}
		b := Block{ID: sb.ID, Type: sb.Type, Props: props}
		if sb.Order == nil {
			if _, err := d.Append(b); err != nil {
				return nil, err
			}
			continue
		}
		b.Order = *sb.Order
		if err := d.Insert(b); err != nil {
			return nil, err
		}
	}
	return d, nil
}
