package content

import (
	"runtime"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/graphics"
)

func newTestManager(t *testing.T, a *Arena, dev graphics.Device, files fstest.MapFS) *ContentManager {
	t.Helper()
	cfg := DefaultConfig()
	m, err := NewContentManager(a, Services{Device: dev}, cfg, FSProvider{FS: files})
	require.NoError(t, err)
	return m
}

func TestArenaManagers(t *testing.T) {
	a := NewArena(nil)
	dev := graphics.NewHeadlessDevice()
	m1 := newTestManager(t, a, dev, fstest.MapFS{})
	m2 := newTestManager(t, a, dev, fstest.MapFS{})

	live := a.Managers()
	require.Len(t, live, 2)
	assert.ElementsMatch(t, []*ContentManager{m1, m2}, live)

	require.NoError(t, m1.Close())
	assert.Equal(t, []*ContentManager{m2}, a.Managers())
	require.NoError(t, m2.Close())
	assert.Empty(t, a.Managers())
}

func TestArenaForgetsCollectedManagers(t *testing.T) {
	a := NewArena(nil)
	dev := graphics.NewHeadlessDevice()
	func() {
		newTestManager(t, a, dev, fstest.MapFS{})
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return len(a.Managers()) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestArenaSharesGenericReaders(t *testing.T) {
	list := xnbList()
	a := NewArena(nil)
	dev := graphics.NewHeadlessDevice()
	m1 := newTestManager(t, a, dev, fstest.MapFS{"Content/numbers.xnb": {Data: list}})
	m2 := newTestManager(t, a, dev, fstest.MapFS{"Content/numbers.xnb": {Data: list}})
	defer m1.Close()
	defer m2.Close()

	v1, err := Load[[]int32](m1, "numbers")
	require.NoError(t, err)
	v2, err := Load[[]int32](m2, "numbers")
	require.NoError(t, err)
	assert.Equal(t, []int32{7, 8}, v1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, a.ReaderCache().Len())
}

func TestArenaReloadsEveryManager(t *testing.T) {
	a := NewArena(nil)
	dev := graphics.NewHeadlessDevice()
	files := fstest.MapFS{"Content/textures/stone.xnb": {Data: textureXNB(1, 1, 1)}}
	m1 := newTestManager(t, a, dev, files)
	m2 := newTestManager(t, a, dev, files)
	defer m1.Close()

	t1, err := Load[*graphics.Texture2D](m1, "textures/stone")
	require.NoError(t, err)
	t2, err := Load[*graphics.Texture2D](m2, "textures/stone")
	require.NoError(t, err)
	assert.NotSame(t, t1, t2)

	// An unloaded manager is skipped.
	m2.Unload()
	require.NoError(t, a.ReloadGraphicsAssets())
	assert.Equal(t, uint32(2), t1.Generation)
	assert.Equal(t, uint32(1), t2.Generation)
	require.NoError(t, m2.Close())

	require.NoError(t, a.ReloadAsset("textures/stone"))
	assert.Equal(t, uint32(3), t1.Generation)
	require.NoError(t, a.ReloadAsset("not/loaded"))
}

func TestArenaEvents(t *testing.T) {
	a := NewArena(nil)
	dev := graphics.NewHeadlessDevice()
	m := newTestManager(t, a, dev, fstest.MapFS{
		"Content/textures/stone.xnb": {Data: textureXNB(1, 1, 1)},
	})
	defer m.Close()
	tex, err := Load[*graphics.Texture2D](m, "textures/stone")
	require.NoError(t, err)

	bus := core.NewEventBus()
	require.True(t, a.Attach(bus))
	assert.False(t, a.Attach(bus), "second attach registers nothing")

	assert.False(t, bus.Fire(core.EVENT_CODE_DEVICE_RESET, nil, core.EventContext{}))
	assert.Equal(t, uint32(2), tex.Generation)

	bus.Fire(core.EVENT_CODE_ASSET_CHANGED, nil, core.EventContext{Name: `textures\stone`})
	assert.Equal(t, uint32(3), tex.Generation)

	bus.Fire(core.EVENT_CODE_ASSET_CHANGED, nil, core.EventContext{})
	assert.Equal(t, uint32(3), tex.Generation)

	a.Detach(bus)
	bus.Fire(core.EVENT_CODE_DEVICE_RESET, nil, core.EventContext{})
	assert.Equal(t, uint32(3), tex.Generation)
	assert.Equal(t, 1, dev.Live())
}
