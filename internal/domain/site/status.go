package site

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Action is a status change requested by an owner or a moderator.
type Action string

const (
	ActionSubmit    Action = "submit"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionUnpublish Action = "unpublish"
)

// Transition returns the status a page moves to when action is applied.
// With moderation off, submitting publishes directly.
func Transition(from string, action Action, moderated bool) (string, error) {
	switch action {
	case ActionSubmit:
		switch from {
		case StatusDraft, StatusRejected, StatusUnpublished:
			if moderated {
				return StatusPending, nil
			}
			return StatusPublished, nil
		}
	case ActionApprove:
		if from == StatusPending {
			return StatusPublished, nil
		}
	case ActionReject:
		if from == StatusPending || from == StatusPublished {
			return StatusRejected, nil
		}
	case ActionUnpublish:
		if from == StatusPublished || from == StatusPending {
			return StatusUnpublished, nil
		}
	}
	return "", fmt.Errorf("%w: %s from %q", ErrInvalidTransition, action, from)
}

var Statuses = []string{StatusDraft, StatusPending, StatusPublished, StatusRejected, StatusUnpublished}

// ValidStatus reports whether s is one of the known page statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusPublished, StatusRejected, StatusUnpublished:
		return true
	}
	return false
}
