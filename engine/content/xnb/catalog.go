package xnb

import (
	"reflect"
	"sync"

	"github.com/cockroachdb/errors"
)

// Kind is the closed set of ways a reader name can be resolved.
type Kind uint8

const (
	// KindBuiltin readers are non-generic and created fresh for every load.
	KindBuiltin Kind = iota
	// KindGeneric readers are instantiated from resolved type arguments and
	// shared through the ReaderCache.
	KindGeneric
	// KindCustom readers are registered by the host application and shared
	// through the ReaderCache.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindGeneric:
		return "generic"
	case KindCustom:
		return "custom"
	}
	return "unknown"
}

// Constructor builds a reader for the given resolved type arguments.
type Constructor func(args []reflect.Type) (TypeReader, error)

type ReaderEntry struct {
	Name  string
	Kind  Kind
	Arity int
	New   Constructor
}

// Catalog is the table of every reader and target type name the runtime
// knows. It replaces name based runtime type loading: anything not in the
// catalog is unresolvable.
type Catalog struct {
	mu      sync.RWMutex
	readers map[string]ReaderEntry
	targets map[string]reflect.Type
}

func NewCatalog() *Catalog {
	return &Catalog{
		readers: make(map[string]ReaderEntry),
		targets: make(map[string]reflect.Type),
	}
}

// AddBuiltin adds a non-generic reader. It panics on duplicates, since the
// built-in table is fixed at init time.
func (c *Catalog) AddBuiltin(name string, ctor func() TypeReader) {
	c.mustAdd(ReaderEntry{
		Name: name,
		Kind: KindBuiltin,
		New: func([]reflect.Type) (TypeReader, error) {
			return ctor(), nil
		},
	})
}

// AddGeneric adds a generic reader taking arity type arguments.
func (c *Catalog) AddGeneric(name string, arity int, ctor Constructor) {
	c.mustAdd(ReaderEntry{Name: name, Kind: KindGeneric, Arity: arity, New: ctor})
}

func (c *Catalog) mustAdd(e ReaderEntry) {
	if err := c.add(e); err != nil {
		panic(err)
	}
}

func (c *Catalog) add(e ReaderEntry) error {
	tn, err := ParseTypeName(e.Name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.readers[tn.Base]; ok {
		return errors.Newf("type reader %q already registered", tn.Base)
	}
	e.Name = tn.Base
	c.readers[tn.Base] = e
	return nil
}

// Register adds a host supplied reader under name. If the reader has a target
// type, that type also becomes resolvable by targetName so it can be used as
// a generic argument (List<MyType>). targetName may be empty.
func (c *Catalog) Register(name, targetName string, ctor func() TypeReader) error {
	if ctor == nil {
		return errors.New("nil reader constructor")
	}
	if err := c.add(ReaderEntry{
		Name: name,
		Kind: KindCustom,
		New: func([]reflect.Type) (TypeReader, error) {
			return ctor(), nil
		},
	}); err != nil {
		return err
	}
	if targetName != "" {
		if t := ctor().TargetType(); t != nil {
			return c.RegisterTarget(targetName, t)
		}
	}
	return nil
}

// RegisterTarget maps a target type name (as written in reader names) to a
// Go type.
func (c *Catalog) RegisterTarget(name string, t reflect.Type) error {
	tn, err := ParseTypeName(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.targets[tn.Base]; ok && prev != t {
		return errors.Newf("target type %q already mapped to %s", tn.Base, prev)
	}
	c.targets[tn.Base] = t
	return nil
}

func (c *Catalog) Lookup(base string) (ReaderEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.readers[base]
	return e, ok
}

// ResolveType maps a target type name to a Go type. Generic collections map
// to slices, maps and pointers.
func (c *Catalog) ResolveType(tn TypeName) (reflect.Type, error) {
	var t reflect.Type
	switch {
	case len(tn.Args) > 0:
		args := make([]reflect.Type, len(tn.Args))
		for i, a := range tn.Args {
			at, err := c.ResolveType(a)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		switch {
		case tn.Base == "List" && len(args) == 1:
			t = reflect.SliceOf(args[0])
		case tn.Base == "Dictionary" && len(args) == 2:
			if !args[0].Comparable() {
				return nil, errors.Newf("dictionary key type %s is not comparable", args[0])
			}
			t = reflect.MapOf(args[0], args[1])
		case tn.Base == "Nullable" && len(args) == 1:
			t = reflect.PointerTo(args[0])
		default:
			return nil, errors.Newf("unsupported generic target type %s", tn)
		}
	default:
		c.mu.RLock()
		base, ok := c.targets[tn.Base]
		c.mu.RUnlock()
		if !ok {
			return nil, errors.Newf("unknown target type %s", tn.Base)
		}
		t = base
	}
	if tn.Array {
		t = reflect.SliceOf(t)
	}
	return t, nil
}
