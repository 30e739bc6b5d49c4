package verify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSmokeRoundTrip(t *testing.T) {
	require.NoError(t, runStoreSmoke(context.Background()))
}

func TestStoreSmokeRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smoke.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	require.NoError(t, runStoreSmokeAt(context.Background(), path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "ephemeral store file must be removed after the check")
}

func TestStoreSmokeRemovesFileOnError(t *testing.T) {
	// A directory at the store path makes every database operation fail;
	// cleanup must still remove it.
	path := filepath.Join(t.TempDir(), "smoke.db")
	require.NoError(t, os.Mkdir(path, 0o755))

	err := runStoreSmokeAt(context.Background(), path)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "ephemeral store must be removed on failure too")
}

func TestStoreSmokeCheckResult(t *testing.T) {
	result := storeSmokeCheck(Config{})(context.Background())
	assert.True(t, result.Passed)
	assert.Equal(t, "Database Functionality", result.Name)
}
