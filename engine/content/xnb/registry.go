package xnb

import (
	"reflect"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-content/engine/core"
)

// TableEntry is one row of the type reader table in a container body.
type TableEntry struct {
	Name    string
	Version int32
}

// ReadTable reads the type reader table: a 7-bit count followed by that
// many (name, version) pairs.
func ReadTable(r *BinaryReader) ([]TableEntry, error) {
	count, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	// Each entry takes at least five bytes.
	if count > r.Remaining()/5 {
		return nil, core.FormatErrorf("type reader count %d exceeds remaining content", count)
	}
	entries := make([]TableEntry, count)
	for i := range entries {
		if entries[i].Name, err = r.ReadString(); err != nil {
			return nil, err
		}
		if entries[i].Version, err = r.ReadInt32(); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// ReaderCache holds generic and custom reader instances shared by every load
// in the process, keyed by canonical reader name.
type ReaderCache struct {
	mu      sync.Mutex
	readers map[string]TypeReader
}

func NewReaderCache() *ReaderCache {
	return &ReaderCache{
		readers: make(map[string]TypeReader),
	}
}

func (c *ReaderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.readers)
}

// TypeReaderManager maps table positions and target types to reader
// instances for one container.
type TypeReaderManager struct {
	catalog  *Catalog
	readers  []TypeReader
	byTarget map[reflect.Type]TypeReader
}

// Len returns the number of entries in the type reader table.
func (m *TypeReaderManager) Len() int {
	return len(m.readers)
}

// ReaderAt returns the reader at zero based table position i.
func (m *TypeReaderManager) ReaderAt(i int) (TypeReader, bool) {
	if i < 0 || i >= len(m.readers) {
		return nil, false
	}
	return m.readers[i], true
}

// ReaderFor returns the reader producing t, if the container has one.
func (m *TypeReaderManager) ReaderFor(t reflect.Type) (TypeReader, bool) {
	tr, ok := m.byTarget[t]
	return tr, ok
}

func (m *TypeReaderManager) Catalog() *Catalog {
	return m.catalog
}

// LoadTypeReaders reads the type reader table and resolves every entry.
// Resolution and initialization of new instances run under the cache lock so
// concurrent loads never observe a half initialized shared reader.
func LoadTypeReaders(r *BinaryReader, catalog *Catalog, cache *ReaderCache) (*TypeReaderManager, error) {
	entries, err := ReadTable(r)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = NewReaderCache()
	}

	m := &TypeReaderManager{
		catalog:  catalog,
		readers:  make([]TypeReader, len(entries)),
		byTarget: make(map[reflect.Type]TypeReader, len(entries)),
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()

	var (
		needsInit []TypeReader
		cached    []string
	)
	// Shared instances created by this load are only kept once every one of
	// them initialized.
	rollback := func() {
		for _, key := range cached {
			delete(cache.readers, key)
		}
	}
	for i, entry := range entries {
		tr, key, created, err := resolveReader(entry.Name, catalog, cache)
		if err != nil {
			rollback()
			return nil, core.AsFormatError(errors.Wrapf(err, "type reader %d", i))
		}
		m.readers[i] = tr
		if created {
			needsInit = append(needsInit, tr)
			if key != "" {
				cached = append(cached, key)
			}
		}
		if t := tr.TargetType(); t != nil {
			m.byTarget[t] = tr
		}
	}

	for _, tr := range needsInit {
		if init, ok := tr.(Initializer); ok {
			if err := init.Initialize(m); err != nil {
				rollback()
				return nil, core.AsFormatError(errors.Wrapf(err, "initialize %T", tr))
			}
		}
	}
	return m, nil
}

// resolveReader must be called with cache.mu held. key is non-empty when the
// reader lives in the shared cache.
func resolveReader(name string, catalog *Catalog, cache *ReaderCache) (tr TypeReader, key string, created bool, err error) {
	tn, err := ParseTypeName(name)
	if err != nil {
		return nil, "", false, err
	}
	entry, ok := catalog.Lookup(tn.Base)
	if !ok {
		return nil, "", false, errors.Newf("unknown type reader %q", name)
	}
	if tn.Array {
		return nil, "", false, errors.Newf("type reader name %q cannot be an array", name)
	}
	if len(tn.Args) != entry.Arity {
		return nil, "", false, errors.Newf("type reader %s takes %d type arguments, got %d", entry.Name, entry.Arity, len(tn.Args))
	}

	if entry.Kind == KindBuiltin {
		tr, err := entry.New(nil)
		if err != nil {
			return nil, "", false, err
		}
		return tr, "", true, nil
	}

	key = tn.String()
	if tr, ok := cache.readers[key]; ok {
		return tr, key, false, nil
	}
	args := make([]reflect.Type, len(tn.Args))
	for i, a := range tn.Args {
		if args[i], err = catalog.ResolveType(a); err != nil {
			return nil, "", false, err
		}
	}
	if tr, err = entry.New(args); err != nil {
		return nil, "", false, err
	}
	cache.readers[key] = tr
	core.LogDebug("type reader %s cached", key)
	return tr, key, true, nil
}
