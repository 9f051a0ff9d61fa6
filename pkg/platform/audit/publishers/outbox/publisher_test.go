package outbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"grantgate/pkg/domain"
	"grantgate/pkg/platform/audit"
	"grantgate/pkg/platform/audit/mocks"
	auditmemory "grantgate/pkg/platform/audit/store/memory"
)

func event() audit.Event {
	return audit.Event{
		Category:   audit.CategoryCompliance,
		ActorID:    "admin-1",
		Action:     audit.ActionStatusOverridden,
		Resource:   domain.ResourceApplication,
		ResourceID: "app-1",
		Decision:   "allow",
	}
}

func TestEmit_PersistsAndStampsTimestamp(t *testing.T) {
	store := auditmemory.New()
	p := New(store)

	require.NoError(t, p.Emit(context.Background(), event()))

	stored, err := store.ListByActor(context.Background(), "admin-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, audit.ActionStatusOverridden, stored[0].Action)
	assert.False(t, stored[0].Timestamp.IsZero())
}

func TestEmit_RejectsIncompleteEvents(t *testing.T) {
	p := New(auditmemory.New())

	missingActor := event()
	missingActor.ActorID = ""
	assert.Error(t, p.Emit(context.Background(), missingActor))

	missingAction := event()
	missingAction.Action = ""
	assert.Error(t, p.Emit(context.Background(), missingAction))
}

// The fail-closed contract: a store failure must reach the caller.
func TestEmit_PropagatesStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(assert.AnError)

	p := New(store)
	err := p.Emit(context.Background(), event())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestClose_IsANoOp(t *testing.T) {
	assert.NoError(t, New(auditmemory.New()).Close())
}
