package arbordb_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbordb/arbordb_sdk_go/pkg/arbordb"
)

func TestNewFromEnvDefaultsToMock(t *testing.T) {
	t.Setenv("ARBORDB_RUNTIME_MODE", "")
	t.Setenv("ARBORDB_URL", "")
	t.Setenv("ARBORDB_MOCK_SEED", "")

	client, mode, err := arbordb.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "mock", mode)

	require.NoError(t, arbordb.Set(context.Background(), client, "a", 1))
	got, err := arbordb.Get[int](context.Background(), client, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, *got)
}

func TestNewFromEnvMockSeed(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(`{"posts":{"a":{"title":"seeded"}}}`), 0o600))

	t.Setenv("ARBORDB_RUNTIME_MODE", "mock")
	t.Setenv("ARBORDB_MOCK_SEED", seed)

	client, mode, err := arbordb.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "mock", mode)

	got, err := arbordb.Get[map[string]any](context.Background(), client, "posts/a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "seeded", (*got)["title"])
}

func TestNewFromEnvHTTPMode(t *testing.T) {
	t.Setenv("ARBORDB_RUNTIME_MODE", "http")
	t.Setenv("ARBORDB_URL", "demo-project")
	t.Setenv("ARBORDB_CREDENTIALS_FILE", "")

	client, mode, err := arbordb.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http", mode)
	assert.Equal(t, "https://demo-project.arbordb.io", client.BaseURL())
}

func TestNewFromEnvHTTPModeRequiresURL(t *testing.T) {
	t.Setenv("ARBORDB_RUNTIME_MODE", "http")
	t.Setenv("ARBORDB_URL", "")

	_, _, err := arbordb.NewFromEnv()
	assert.Error(t, err)
}

func TestNewFromEnvRejectsUnknownMode(t *testing.T) {
	t.Setenv("ARBORDB_RUNTIME_MODE", "cluster")

	_, _, err := arbordb.NewFromEnv()
	assert.Error(t, err)
}
