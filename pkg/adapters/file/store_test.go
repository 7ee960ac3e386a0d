package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/ladon/pkg/adapters/file"
	"github.com/aretw0/ladon/pkg/domain"
	"github.com/aretw0/ladon/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunResultStoreContract(t, store)
}

func TestFileStore_Layout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	store := file.New(dir)
	ctx := context.Background()

	runs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs, "a missing directory lists nothing")

	snap := domain.NewResult(domain.NewConfig(domain.WithID("run-1")), nil, nil).Snapshot()
	require.NoError(t, store.Save(ctx, "run-1", snap))

	data, err := os.ReadFile(filepath.Join(dir, "run-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status": "SUCCESS"`)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	runs, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, runs)
}

func TestFileStore_RejectsBadIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()
	snap := domain.NewResult(nil, nil, nil).Snapshot()

	assert.Error(t, store.Save(ctx, "", snap))
	assert.Error(t, store.Save(ctx, "../escape", snap))
	_, err := store.Load(ctx, "a/b")
	assert.Error(t, err)
}
