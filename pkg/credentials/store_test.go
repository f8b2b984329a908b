package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalyze-client/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "credentials.json"), time.Hour)
}

func TestSaveRememberedPersistsToFile(t *testing.T) {
	store := newTestStore(t)
	pair := model.TokenPair{Access: "a", Refresh: "r"}

	require.NoError(t, store.Save(pair, true))
	assert.True(t, store.Remembered())

	loaded, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, pair, loaded)

	info, err := os.Stat(store.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveSessionOnlyDoesNotTouchDisk(t *testing.T) {
	store := newTestStore(t)
	pair := model.TokenPair{Access: "a", Refresh: "r"}

	require.NoError(t, store.Save(pair, false))
	assert.False(t, store.Remembered())

	loaded, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, pair, loaded)
}

func TestSaveSwitchingScopeClearsTheOther(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(model.TokenPair{Access: "file", Refresh: "f"}, true))
	require.NoError(t, store.Save(model.TokenPair{Access: "mem", Refresh: "m"}, false))

	assert.False(t, store.Remembered(), "file copy must be removed on a session-only save")
	loaded, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, "mem", loaded.Access)

	require.NoError(t, store.Save(model.TokenPair{Access: "file2", Refresh: "f2"}, true))
	assert.True(t, store.Remembered())
	loaded, ok = store.Load()
	require.True(t, ok)
	assert.Equal(t, "file2", loaded.Access)
}

func TestClearRemovesBothScopes(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(model.TokenPair{Access: "a", Refresh: "r"}, true))

	store.Clear()

	_, ok := store.Load()
	assert.False(t, ok)
	assert.False(t, store.Remembered())
}

func TestLoadWithNothingStored(t *testing.T) {
	store := newTestStore(t)
	_, ok := store.Load()
	assert.False(t, ok)
}

func TestJustLoggedInIsOneShot(t *testing.T) {
	store := newTestStore(t)

	assert.False(t, store.ConsumeJustLoggedIn())

	store.MarkJustLoggedIn()
	assert.True(t, store.ConsumeJustLoggedIn(), "first read wins")
	assert.False(t, store.ConsumeJustLoggedIn(), "flag must not survive its first read")
}
