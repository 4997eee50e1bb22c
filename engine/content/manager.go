// Package content loads compiled game assets by name and owns them until
// they are unloaded.
package content

import (
	"io"
	"path"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-content/engine/content/loaders"
	"github.com/spaghettifunk/anima-content/engine/content/xnb"
	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/graphics"
)

const containerExtension = ".xnb"

type loadedAsset struct {
	// name is the name the asset was first requested with.
	name   string
	value  any
	target reflect.Type
	// raw is set when the asset came from a raw loader instead of a container.
	raw bool
}

// ContentManager loads assets by name, caches them and owns every resource
// they hold. It is not safe for concurrent use; give each goroutine its own
// manager.
type ContentManager struct {
	id       uuid.UUID
	arena    *Arena
	provider Provider
	services ServiceProvider

	rootDirectory string
	rawFallback   bool
	rawLoaders    map[reflect.Type]loaders.Loader

	loaded map[string]*loadedAsset
	// loading holds the keys being decoded, to catch external reference cycles.
	loading     map[string]struct{}
	disposables []io.Closer
	owned       map[any]struct{}
	unloaded    bool

	device        graphics.Device
	deviceErr     error
	deviceFetched bool

	watcher *Watcher
	metrics core.LoadMetrics
	clock   *core.Clock
}

// NewContentManager creates a manager and registers it with arena. A nil
// config uses DefaultConfig and a nil provider reads from the file system.
func NewContentManager(arena *Arena, services ServiceProvider, config *Config, provider Provider) (*ContentManager, error) {
	if arena == nil {
		return nil, errors.New("content manager needs an arena")
	}
	if services == nil {
		return nil, errors.New("content manager needs a service provider")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if provider == nil {
		provider = FileProvider{}
	}
	m := &ContentManager{
		id:            uuid.New(),
		arena:         arena,
		provider:      provider,
		services:      services,
		rootDirectory: config.RootDirectory,
		rawFallback:   config.RawFallback,
		rawLoaders:    make(map[reflect.Type]loaders.Loader),
		loaded:        make(map[string]*loadedAsset),
		loading:       make(map[string]struct{}),
		owned:         make(map[any]struct{}),
		clock:         core.NewClock(),
	}
	textures := &loaders.TextureLoader{}
	m.RegisterRawLoader(textures)
	m.RegisterRawLoader(&loaders.BitmapFontLoader{Textures: textures})

	if config.Watch {
		if _, ok := provider.(FileProvider); !ok {
			return nil, errors.New("watching content requires the file system provider")
		}
		w, err := NewWatcher(config.RootDirectory)
		if err != nil {
			return nil, err
		}
		m.watcher = w
	}

	arena.register(m)
	core.LogDebug("content manager %s created (root %q)", m.id, m.rootDirectory)
	return m, nil
}

func (m *ContentManager) ID() uuid.UUID {
	return m.id
}

func (m *ContentManager) RootDirectory() string {
	return m.rootDirectory
}

// SetRootDirectory changes where assets are looked up. Cached assets are
// kept. A watching manager moves its watcher to the new root; if that fails
// the root is left unchanged.
func (m *ContentManager) SetRootDirectory(dir string) error {
	if m.watcher != nil {
		w, err := NewWatcher(dir)
		if err != nil {
			return errors.Wrapf(err, "watch %s", dir)
		}
		if err := m.watcher.Close(); err != nil {
			core.LogWarn("close watcher of %s: %v", m.rootDirectory, err)
		}
		m.watcher = w
	}
	m.rootDirectory = dir
	return nil
}

// RegisterRawLoader sets the fallback used for loader.TargetType(),
// replacing any previous one.
func (m *ContentManager) RegisterRawLoader(loader loaders.Loader) {
	m.rawLoaders[loader.TargetType()] = loader
}

// Stats returns load counters and the average load time.
func (m *ContentManager) Stats() core.Snapshot {
	return m.metrics.Snapshot()
}

// Loaded returns the cache keys of every loaded asset, sorted.
func (m *ContentManager) Loaded() []string {
	keys := lo.Keys(m.loaded)
	slices.Sort(keys)
	return keys
}

// Load returns the asset called name as target. A cached asset is returned
// as is; otherwise "<root>/<name>.xnb" is decoded, falling back to a raw
// loader for target when the container is missing or invalid. A nil target
// accepts whatever the container holds.
func (m *ContentManager) Load(name string, target reflect.Type) (any, error) {
	if m.unloaded {
		return nil, errors.Wrapf(core.ErrDisposed, "load %q", name)
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("empty asset name")
	}

	key := cacheKey(name)
	if a, ok := m.loaded[key]; ok {
		if target != nil && a.value != nil && !reflect.TypeOf(a.value).AssignableTo(target) {
			return nil, errors.Mark(
				errors.Newf("asset %q is loaded as %T, not %s", name, a.value, target),
				core.ErrTypeMismatch)
		}
		return a.value, nil
	}

	if _, busy := m.loading[key]; busy {
		return nil, core.FormatErrorf("asset %q references itself through external references", name)
	}
	m.loading[key] = struct{}{}
	defer delete(m.loading, key)

	m.clock.Start()
	v, raw, err := m.read(name, target, xnb.Fresh())
	m.clock.Stop()
	if err != nil {
		m.metrics.Failures++
		return nil, errors.Wrapf(err, "load asset %q", name)
	}
	m.loaded[key] = &loadedAsset{name: name, value: v, target: target, raw: raw}
	m.metrics.RecordLoad(float64(m.clock.Elapsed().Microseconds()) / 1000)
	core.LogDebug("loaded %s as %T in %s", name, v, m.clock.Elapsed())
	return v, nil
}

// read decodes name from its container, or from a raw source when the
// container path fails with a format or not found error.
func (m *ContentManager) read(name string, target reflect.Type, existing xnb.Instance) (any, bool, error) {
	v, err := m.readContainer(name, target, existing)
	if err == nil {
		return v, false, nil
	}
	if !m.rawFallback || !(errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrFormat)) {
		return nil, false, err
	}
	loader, ok := m.rawLoaders[target]
	if target == nil || !ok {
		return nil, false, err
	}

	v, rawErr := m.readRaw(loader, name, existing)
	if rawErr != nil {
		if errors.Is(rawErr, core.ErrNotFound) {
			return nil, false, errors.WithSecondaryError(err, rawErr)
		}
		return nil, false, errors.WithSecondaryError(rawErr, err)
	}
	m.metrics.Fallbacks++
	core.LogWarn("%s: container unusable (%v), loaded raw source", name, err)
	return v, true, nil
}

func (m *ContentManager) readContainer(name string, target reflect.Type, existing xnb.Instance) (any, error) {
	f, err := m.provider.Open(m.resolve(name) + containerExtension)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := xnb.NewContentReader(f, xnb.Options{
		AssetName: name,
		Catalog:   m.arena.Catalog(),
		Cache:     m.arena.ReaderCache(),
		Host:      m,
	})
	if err != nil {
		return nil, err
	}
	return r.ReadAsset(target, existing)
}

func (m *ContentManager) readRaw(loader loaders.Loader, name string, existing xnb.Instance) (any, error) {
	dev, err := m.GraphicsDevice()
	if err != nil {
		return nil, err
	}
	req := loaders.Request{
		Name: xnb.NormalizePath(name),
		Open: func(file string) (io.ReadCloser, error) {
			return m.provider.Open(m.resolve(file))
		},
		Device:   dev,
		Existing: existing,
		Record:   m.RecordDisposable,
	}
	if lp, ok := m.provider.(LocalProvider); ok {
		req.LocalPath = func(file string) (string, bool) {
			return lp.LocalPath(m.resolve(file))
		}
	}
	return loader.Load(req)
}

func (m *ContentManager) resolve(name string) string {
	return path.Join(xnb.NormalizePath(m.rootDirectory), xnb.NormalizePath(name))
}

// LoadExternal loads an asset referenced from inside another container.
func (m *ContentManager) LoadExternal(name string, target reflect.Type) (any, error) {
	return m.Load(name, target)
}

// RecordDisposable takes ownership of c; it is closed by Unload. Recording
// the same value twice has no effect.
func (m *ContentManager) RecordDisposable(c io.Closer) {
	if c == nil {
		return
	}
	if reflect.TypeOf(c).Comparable() {
		if _, ok := m.owned[c]; ok {
			return
		}
		m.owned[c] = struct{}{}
	}
	m.disposables = append(m.disposables, c)
}

// GraphicsDevice returns the device from the service provider, asking for it
// only once.
func (m *ContentManager) GraphicsDevice() (graphics.Device, error) {
	if !m.deviceFetched {
		m.device, m.deviceErr = m.services.GraphicsDevice()
		m.deviceFetched = true
	}
	return m.device, m.deviceErr
}

// Unload closes every resource the manager owns and empties the cache. The
// manager cannot load again afterwards. Close errors are logged and do not
// stop the remaining resources from being released.
func (m *ContentManager) Unload() {
	if m.unloaded {
		return
	}
	for _, c := range m.disposables {
		if err := c.Close(); err != nil {
			core.LogError("content manager %s: release %T: %v", m.id, c, err)
		}
	}
	m.disposables = nil
	m.owned = make(map[any]struct{})
	m.loaded = make(map[string]*loadedAsset)
	m.unloaded = true
	core.LogDebug("content manager %s unloaded", m.id)
}

// UnloadAsset forgets one cached asset so the next Load decodes it again.
// Its resources stay owned by the manager until Unload.
func (m *ContentManager) UnloadAsset(name string) bool {
	key := cacheKey(name)
	if _, ok := m.loaded[key]; !ok {
		return false
	}
	delete(m.loaded, key)
	return true
}

// ReloadGraphicsAssets decodes every cached asset again into the existing
// objects, keeping their identity. Used after the graphics device was lost.
func (m *ContentManager) ReloadGraphicsAssets() error {
	if m.unloaded {
		return errors.Wrap(core.ErrDisposed, "reload graphics assets")
	}
	var errs error
	for _, key := range m.Loaded() {
		if err := m.reload(m.loaded[key]); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	return errs
}

// ReloadAsset reloads one cached asset in place. Assets that are not loaded
// are ignored.
func (m *ContentManager) ReloadAsset(name string) error {
	if m.unloaded {
		return errors.Wrapf(core.ErrDisposed, "reload %q", name)
	}
	a, ok := m.loaded[cacheKey(name)]
	if !ok {
		return nil
	}
	return m.reload(a)
}

func (m *ContentManager) reload(a *loadedAsset) error {
	var (
		v   any
		err error
	)
	if a.raw {
		loader, ok := m.rawLoaders[a.target]
		if !ok {
			return errors.Newf("reload %q: no raw loader for %s", a.name, a.target)
		}
		v, err = m.readRaw(loader, a.name, xnb.InPlace(a.value))
	} else {
		v, err = m.readContainer(a.name, a.target, xnb.InPlace(a.value))
	}
	if err != nil {
		return errors.Wrapf(err, "reload %q", a.name)
	}
	a.value = v
	m.metrics.Reloads++
	return nil
}

// PollChanges reloads the assets whose files changed since the last call
// and returns how many were reloaded. It never blocks and does nothing when
// watching is disabled. Call it from the goroutine that owns the manager.
func (m *ContentManager) PollChanges() int {
	if m.watcher == nil || m.unloaded {
		return 0
	}
	seen := make(map[string]struct{})
	for {
		select {
		case name, ok := <-m.watcher.Changes():
			if !ok {
				return len(seen)
			}
			if _, dup := seen[name]; dup {
				continue
			}
			if _, cached := m.loaded[cacheKey(name)]; !cached {
				continue
			}
			seen[name] = struct{}{}
			if err := m.ReloadAsset(name); err != nil {
				core.LogError("%v", err)
			}
		default:
			return len(seen)
		}
	}
}

// Close unloads the manager and removes it from its arena.
func (m *ContentManager) Close() error {
	m.Unload()
	m.arena.unregister(m.id)
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

// cacheKey folds separators and case so equivalent names share one entry.
func cacheKey(name string) string {
	return strings.ToLower(xnb.NormalizePath(name))
}

// Load is ContentManager.Load with the target given as a type parameter.
func Load[T any](m *ContentManager, name string) (T, error) {
	var zero T
	v, err := m.Load(name, reflect.TypeFor[T]())
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.Mark(errors.Newf("asset %q is %T, not %s", name, v, reflect.TypeFor[T]()), core.ErrTypeMismatch)
	}
	return t, nil
}
