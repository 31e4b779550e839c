package recorder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitor_Sweep(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-48 * time.Hour)

	touch := func(name string, mod time.Time) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		require.NoError(t, os.Chtimes(path, mod, mod))
		return path
	}

	stale := touch(TempFilePrefix+"a.wav", old)
	fresh := touch(TempFilePrefix+"b.wav", time.Now())
	unrelated := touch("episode_1.mp3", old)
	require.NoError(t, os.Mkdir(filepath.Join(dir, TempFilePrefix+"dir"), 0755))

	j := NewJanitor(dir, 24*time.Hour, time.Hour)
	assert.Equal(t, 1, j.Sweep())

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, fresh)
	assert.FileExists(t, unrelated)
	assert.DirExists(t, filepath.Join(dir, TempFilePrefix+"dir"))
}

func TestJanitor_MissingDirectory(t *testing.T) {
	j := NewJanitor(filepath.Join(t.TempDir(), "gone"), time.Hour, time.Hour)
	assert.Equal(t, 0, j.Sweep())
}

func TestJanitor_StartStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, TempFilePrefix+"x.wav")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	j := NewJanitor(dir, time.Minute, 10*time.Millisecond)
	j.Start(context.Background())
	defer j.Stop()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "initial sweep runs synchronously")
}
