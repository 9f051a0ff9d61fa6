package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"draft", "submitted", "under_review", "scored", "decided"} {
		got, err := ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, Status(valid), got)
	}

	_, err := ParseStatus("limbo")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestStatus_After(t *testing.T) {
	assert.True(t, StatusDecided.After(StatusDraft))
	assert.True(t, StatusUnderReview.After(StatusSubmitted))
	assert.False(t, StatusDraft.After(StatusDraft))
	assert.False(t, StatusDraft.After(StatusDecided))

	// Unknown statuses sort before any known one.
	assert.False(t, Status("limbo").After(StatusDraft))
	assert.True(t, StatusDraft.After(Status("limbo")))
}

func TestParseOperation(t *testing.T) {
	for _, valid := range []string{"read", "create", "update", "delete", "submit", "start_review", "decide", "override_status"} {
		got, err := ParseOperation(valid)
		require.NoError(t, err)
		assert.Equal(t, Operation(valid), got)
	}
	_, err := ParseOperation("approve")
	assert.Error(t, err)
}

func TestOperation_Classification(t *testing.T) {
	assert.True(t, OpSubmit.IsTransition())
	assert.True(t, OpOverrideStatus.IsTransition())
	assert.False(t, OpUpdate.IsTransition())

	assert.False(t, OpRead.IsWrite())
	assert.True(t, OpDelete.IsWrite())
	assert.True(t, OpDecide.IsWrite())
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"admin", "committee", "applicant"} {
		got, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, Role(valid), got)
	}
	_, err := ParseRole("superuser")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestParseResourceKind(t *testing.T) {
	for _, valid := range []string{"user", "application", "score"} {
		got, err := ParseResourceKind(valid)
		require.NoError(t, err)
		assert.Equal(t, ResourceKind(valid), got)
	}
	_, err := ParseResourceKind("widget")
	assert.Error(t, err)
}

func TestScoreKey(t *testing.T) {
	full := ScoreKey{ApplicationID: "app-1", ScorerID: "committee-1"}
	assert.False(t, full.IsNil())
	assert.Equal(t, "app-1/committee-1", full.String())

	assert.True(t, ScoreKey{ApplicationID: "app-1"}.IsNil())
	assert.True(t, ScoreKey{ScorerID: "committee-1"}.IsNil())
	assert.True(t, ScoreKey{}.IsNil())
}

func TestNewApplicationID(t *testing.T) {
	a, b := NewApplicationID(), NewApplicationID()
	assert.False(t, a.IsNil())
	assert.NotEqual(t, a, b)
}
