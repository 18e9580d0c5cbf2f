package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		from      string
		action    Action
		moderated bool
		want      string
	}{
		{StatusDraft, ActionSubmit, true, StatusPending},
		{StatusDraft, ActionSubmit, false, StatusPublished},
		{StatusRejected, ActionSubmit, true, StatusPending},
		{StatusUnpublished, ActionSubmit, true, StatusPending},
		{StatusPending, ActionApprove, true, StatusPublished},
		{StatusPending, ActionReject, true, StatusRejected},
		{StatusPublished, ActionReject, true, StatusRejected},
		{StatusPublished, ActionUnpublish, true, StatusUnpublished},
	}
	for _, tc := range cases {
		got, err := Transition(tc.from, tc.action, tc.moderated)
		require.NoError(t, err, "%s from %s", tc.action, tc.from)
		assert.Equal(t, tc.want, got)
	}
}

func TestTransitionRejectsInvalid(t *testing.T) {
	for _, tc := range []struct {
		from   string
		action Action
	}{
		{StatusPending, ActionSubmit},
		{StatusPublished, ActionSubmit},
		{StatusDraft, ActionApprove},
		{StatusDraft, ActionUnpublish},
		{StatusRejected, ActionReject},
	} {
		_, err := Transition(tc.from, tc.action, true)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}
