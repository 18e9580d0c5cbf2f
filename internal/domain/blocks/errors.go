package blocks

import (
	"errors"
	"fmt"
)

var (
	ErrBlockNotFound   = errors.New("block not found")
	ErrEmptyID         = errors.New("block id is empty")
	ErrReorderMismatch = errors.New("reorder must list every block exactly once")
)

// SchemaError is returned when a block cannot be created for its type.
type SchemaError struct {
	Type   Type
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: %s %q", e.Reason, string(e.Type))
}

// DuplicateIDError is returned when an inserted block reuses an id already in the document.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate block id %q", e.ID)
}

// MalformedBlockWarning describes a stored block that could only be kept as a fallback.
// It is collected, never returned as an error.
type MalformedBlockWarning struct {
	BlockID string `json:"blockId,omitempty"`
	Type    Type   `json:"type"`
	Reason  string `json:"reason"`
}

func (w MalformedBlockWarning) String() string {
	if w.BlockID == "" {
		return fmt.Sprintf("%s: %s", w.Type, w.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", w.BlockID, w.Type, w.Reason)
}
