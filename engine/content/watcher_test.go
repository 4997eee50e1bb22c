package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-content/engine/graphics"
)

func TestAssetName(t *testing.T) {
	root := "Content"
	cases := []struct {
		file string
		name string
		ok   bool
	}{
		{filepath.Join("Content", "fonts", "arial.xnb"), "fonts/arial", true},
		{filepath.Join("Content", "hero.png"), "hero", true},
		{filepath.Join("Content", "maps", "level.1.xnb"), "maps/level.1", true},
		{"Content", "", false},
		{filepath.Join("Other", "hero.xnb"), "", false},
	}
	for _, c := range cases {
		name, ok := AssetName(root, c.file)
		assert.Equal(t, c.ok, ok, c.file)
		assert.Equal(t, c.name, name, c.file)
	}
}

func TestWatcherReloadsChangedAssets(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "textures"), 0o755))
	file := filepath.Join(root, "textures", "stone.xnb")
	require.NoError(t, os.WriteFile(file, textureXNB(1, 1, 1), 0o644))

	cfg := DefaultConfig()
	cfg.RootDirectory = filepath.ToSlash(root)
	cfg.Watch = true
	dev := graphics.NewHeadlessDevice()
	m, err := NewContentManager(NewArena(nil), Services{Device: dev}, cfg, FileProvider{})
	require.NoError(t, err)
	defer m.Close()

	tex, err := Load[*graphics.Texture2D](m, "textures/stone")
	require.NoError(t, err)
	assert.Equal(t, 0, m.PollChanges())

	require.NoError(t, os.WriteFile(file, textureXNB(2, 2, 2), 0o644))
	require.Eventually(t, func() bool {
		m.PollChanges()
		return tex.Width == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, tex.Generation, uint32(2))
	assert.Equal(t, 1, dev.Live())

	require.NoError(t, m.Close())
	assert.Equal(t, 0, m.PollChanges())
}

func TestSetRootDirectoryMovesWatcher(t *testing.T) {
	oldRoot, newRoot := t.TempDir(), t.TempDir()
	file := filepath.Join(newRoot, "stone.xnb")
	require.NoError(t, os.WriteFile(file, textureXNB(1, 1, 1), 0o644))

	cfg := DefaultConfig()
	cfg.RootDirectory = filepath.ToSlash(oldRoot)
	cfg.Watch = true
	m, err := NewContentManager(NewArena(nil), Services{Device: graphics.NewHeadlessDevice()}, cfg, FileProvider{})
	require.NoError(t, err)
	defer m.Close()

	assert.Error(t, m.SetRootDirectory(filepath.Join(oldRoot, "missing")))
	assert.Equal(t, filepath.ToSlash(oldRoot), m.RootDirectory())

	require.NoError(t, m.SetRootDirectory(filepath.ToSlash(newRoot)))
	tex, err := Load[*graphics.Texture2D](m, "stone")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(file, textureXNB(2, 2, 2), 0o644))
	require.Eventually(t, func() bool {
		m.PollChanges()
		return tex.Width == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(root)
	require.NoError(t, err)
	defer w.Close()

	dir := filepath.Join(root, "sprites")
	require.NoError(t, os.Mkdir(dir, 0o755))
	// The new directory is only watched once its create event was handled.
	require.Eventually(t, func() bool {
		if err := os.WriteFile(filepath.Join(dir, "hero.png"), []byte{1}, 0o644); err != nil {
			return false
		}
		select {
		case name := <-w.Changes():
			return name == "sprites/hero"
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
