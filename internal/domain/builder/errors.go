package builder

import "errors"

var (
	ErrSessionClosed   = errors.New("builder session is closed")
	ErrSessionNotFound = errors.New("builder session not found")
	ErrBlockLimit      = errors.New("block limit reached for current plan")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
)
