package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/field-service/internal/models"
)

func TestCanOverride(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPendingReview, StatusCompleted, true},
		{StatusInProgress, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, false},
		{StatusConfirmed, StatusCancelled, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusPendingReview, StatusCancelled, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusConfirmed, StatusInProgress, false},
		{StatusPendingReview, StatusConfirmed, false},
	}

	for _, tc := range cases {
		err := CanOverride(tc.from, tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
		}
	}
}

func TestOverrideMutatesOnlyOnSuccess(t *testing.T) {
	ap := &models.Appointment{Status: string(StatusInProgress)}
	require.ErrorIs(t, Override(ap, StatusCompleted), ErrInvalidTransition)
	assert.Equal(t, string(StatusInProgress), ap.Status)

	require.NoError(t, Override(ap, StatusCancelled))
	assert.Equal(t, string(StatusCancelled), ap.Status)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("pending_review")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingReview, s)
	assert.False(t, s.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())

	_, err = ParseStatus("done")
	assert.Error(t, err)
}
