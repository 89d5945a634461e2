package sync

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSyncRun(t *testing.T) {
	t.Run("Valid run starts in progress", func(t *testing.T) {
		run, err := NewSyncRun(SyncTypeProducts, "acme")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, run.ID)
		assert.Equal(t, RunStatusInProgress, run.Status)
		assert.False(t, run.StartedAt.IsZero())
		assert.Nil(t, run.FinishedAt)
	})

	t.Run("Invalid type rejected", func(t *testing.T) {
		_, err := NewSyncRun(SyncType("NOPE"), "acme")
		assert.ErrorIs(t, err, ErrRunInvalidType)
	})
}

func TestSyncRun_Complete(t *testing.T) {
	run, _ := NewSyncRun(SyncTypeCategories, "acme")

	require.NoError(t, run.Complete(Counters{Processed: 10, Created: 4, Updated: 6}))
	assert.Equal(t, RunStatusSuccess, run.Status)
	assert.Equal(t, 10, run.Processed)
	assert.Equal(t, 4, run.Created)
	assert.Equal(t, 6, run.Updated)
	require.NotNil(t, run.FinishedAt)
	assert.GreaterOrEqual(t, run.DurationMS, int64(0))

	t.Run("Second finish rejected", func(t *testing.T) {
		assert.ErrorIs(t, run.Complete(Counters{}), ErrRunAlreadyFinished)
		assert.ErrorIs(t, run.Fail(Counters{}, "boom"), ErrRunAlreadyFinished)
	})
}

func TestSyncRun_Fail(t *testing.T) {
	run, _ := NewSyncRun(SyncTypeProducts, "acme")

	require.NoError(t, run.Fail(Counters{Processed: 3, Errors: 3}, "provider unreachable"))
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Equal(t, "provider unreachable", run.Message)
	assert.Equal(t, 3, run.Errors)
	assert.True(t, run.Status.IsTerminal())
}

func TestCounters_Add(t *testing.T) {
	total := Counters{Processed: 1, Created: 1}
	total.Add(Counters{Processed: 2, Updated: 1, Errors: 3})
	assert.Equal(t, Counters{Processed: 3, Created: 1, Updated: 1, Errors: 3}, total)
}
