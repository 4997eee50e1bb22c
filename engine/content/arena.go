package content

import (
	"sync"
	"weak"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-content/engine/content/readers"
	"github.com/spaghettifunk/anima-content/engine/content/xnb"
	"github.com/spaghettifunk/anima-content/engine/core"
)

// Arena is the state shared by every content manager of a process: the
// reader catalog, the cache of shared generic readers and a weak list of live
// managers used for device reset broadcasts.
type Arena struct {
	catalog *xnb.Catalog
	readers *xnb.ReaderCache

	mu       sync.Mutex
	managers map[uuid.UUID]weak.Pointer[ContentManager]
}

// NewArena creates an arena over catalog. A nil catalog gets the built-in
// readers.
func NewArena(catalog *xnb.Catalog) *Arena {
	if catalog == nil {
		catalog = readers.Default()
	}
	return &Arena{
		catalog:  catalog,
		readers:  xnb.NewReaderCache(),
		managers: make(map[uuid.UUID]weak.Pointer[ContentManager]),
	}
}

func (a *Arena) Catalog() *xnb.Catalog {
	return a.catalog
}

func (a *Arena) ReaderCache() *xnb.ReaderCache {
	return a.readers
}

func (a *Arena) register(m *ContentManager) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.managers[m.id] = weak.Make(m)
}

func (a *Arena) unregister(id uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.managers, id)
}

// Managers returns the live managers ordered by ID. Entries whose manager was
// garbage collected are dropped.
func (a *Arena) Managers() []*ContentManager {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := lo.Keys(a.managers)
	slices.SortFunc(ids, func(x, y uuid.UUID) int {
		return slices.Compare(x[:], y[:])
	})
	live := make([]*ContentManager, 0, len(ids))
	for _, id := range ids {
		m := a.managers[id].Value()
		if m == nil {
			delete(a.managers, id)
			continue
		}
		live = append(live, m)
	}
	return live
}

// ReloadGraphicsAssets reloads the assets of every live manager. A failing
// manager does not stop the others; all failures are returned together.
func (a *Arena) ReloadGraphicsAssets() error {
	var errs error
	for _, m := range a.Managers() {
		if err := m.ReloadGraphicsAssets(); err != nil && !errors.Is(err, core.ErrDisposed) {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "content manager %s", m.ID()))
		}
	}
	return errs
}

// ReloadAsset reloads name in every live manager that has it cached.
func (a *Arena) ReloadAsset(name string) error {
	var errs error
	for _, m := range a.Managers() {
		if err := m.ReloadAsset(name); err != nil && !errors.Is(err, core.ErrDisposed) {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "content manager %s", m.ID()))
		}
	}
	return errs
}

// Attach subscribes the arena to device reset and asset changed events on
// bus. Handlers reload managers on the goroutine that fires the event, and
// managers are not safe for concurrent use: Fire those events only from the
// goroutine that owns every manager of the arena.
func (a *Arena) Attach(bus *core.EventBus) bool {
	reset := bus.Register(core.EVENT_CODE_DEVICE_RESET, a, onDeviceReset)
	changed := bus.Register(core.EVENT_CODE_ASSET_CHANGED, a, onAssetChanged)
	return reset && changed
}

func (a *Arena) Detach(bus *core.EventBus) {
	bus.Unregister(core.EVENT_CODE_DEVICE_RESET, a)
	bus.Unregister(core.EVENT_CODE_ASSET_CHANGED, a)
}

func onDeviceReset(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	a := listener.(*Arena)
	if err := a.ReloadGraphicsAssets(); err != nil {
		core.LogError("reload after device reset: %v", err)
	}
	// Other listeners may also need to react to a reset.
	return false
}

func onAssetChanged(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	a := listener.(*Arena)
	if data.Name == "" {
		return false
	}
	if err := a.ReloadAsset(data.Name); err != nil {
		core.LogError("reload %s: %v", data.Name, err)
	}
	return false
}
