package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/ladon/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractResult(t *testing.T, runID string) *domain.ResultSnapshot {
	t.Helper()
	cfg := domain.NewConfig(
		domain.WithID(runID),
		domain.WithClassName("contract"),
		domain.WithFlags(map[string]any{"user": "alice", "count": 42}),
	)
	r := domain.NewResult(cfg, nil, nil)
	_, err := r.Timer().For("execute", func() {})
	require.NoError(t, err)
	r.Recorder().Log(domain.LevelError, "assertion failed: totals", "expected: 1")
	require.NoError(t, r.RecordData("rows", 3))
	r.MarkFailure()
	return r.Snapshot()
}

// RunResultStoreContract runs a suite of tests to verify that a ResultStore
// implementation adheres to the defined interface contract.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := contractResult(t, runID)

		err := store.Save(ctx, runID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.StatusFailure, loaded.Status)
		assert.Equal(t, runID, loaded.Config.ID)
		assert.Equal(t, "contract", loaded.Config.ClassName)
		assert.Equal(t, "alice", loaded.Config.Flags["user"])
		// Serializing stores may turn ints into float64; presence is what counts.
		assert.NotNil(t, loaded.Config.Flags["count"])
		require.Len(t, loaded.Log, 1)
		assert.Equal(t, "assertion failed: totals", loaded.Log[0].Message())
		assert.Equal(t, []string{"assertion failed: totals", "expected: 1"}, loaded.Log[0].Lines)
		require.Len(t, loaded.Timings, 1)
		assert.Equal(t, "execute", loaded.Timings[0].Name)
		_, ok := loaded.DataValue("rows")
		assert.True(t, ok)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		snap := contractResult(t, runID)
		snap.Status = domain.StatusSuccess
		require.NoError(t, store.Save(ctx, runID, snap))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSuccess, loaded.Status)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, runID, contractResult(t, runID))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrResultNotFound, "Load after Delete should return ErrResultNotFound")

		assert.NoError(t, store.Delete(ctx, runID), "Delete of a missing run is a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		require.NoError(t, store.Save(ctx, id1, contractResult(t, id1)))
		require.NoError(t, store.Save(ctx, id2, contractResult(t, id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
