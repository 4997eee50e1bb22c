package xnb

import (
	"reflect"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/spaghettifunk/anima-content/engine/content/xnb/xnbtest"
	"github.com/spaghettifunk/anima-content/engine/core"
)

// boxReader is a generic test reader that counts constructions and
// initializations.
type boxReader struct {
	target reflect.Type
	inits  *atomic.Int32
	fail   bool
}

func (b *boxReader) TargetType() reflect.Type { return b.target }

func (b *boxReader) Read(r *ContentReader, _ Instance) (any, error) {
	return nil, nil
}

func (b *boxReader) Initialize(m *TypeReaderManager) error {
	b.inits.Inc()
	if b.fail {
		return errors.New("initialize failed")
	}
	return nil
}

type boxCatalog struct {
	*Catalog
	built *atomic.Int32
	inits *atomic.Int32
}

func newBoxCatalog(fail bool) boxCatalog {
	c := boxCatalog{Catalog: testCatalog(), built: atomic.NewInt32(0), inits: atomic.NewInt32(0)}
	c.AddGeneric("BoxReader", 1, func(args []reflect.Type) (TypeReader, error) {
		c.built.Inc()
		return &boxReader{target: reflect.PointerTo(args[0]), inits: c.inits, fail: fail}, nil
	})
	return c
}

func table(names ...string) *BinaryReader {
	return NewBinaryReader(xnbtest.NewBody().Names(names...).Bytes())
}

func TestGenericReadersAreShared(t *testing.T) {
	c := newBoxCatalog(false)
	cache := NewReaderCache()

	m1, err := LoadTypeReaders(table("BoxReader<Int32>", "Int32Reader"), c.Catalog, cache)
	require.NoError(t, err)
	m2, err := LoadTypeReaders(table("Game.BoxReader`1[[System.Int32, mscorlib]]"), c.Catalog, cache)
	require.NoError(t, err)

	a, _ := m1.ReaderAt(0)
	b, _ := m2.ReaderAt(0)
	assert.Same(t, a, b)
	assert.Equal(t, int32(1), c.built.Load())
	assert.Equal(t, int32(1), c.inits.Load())
	assert.Equal(t, 1, cache.Len())

	tr, ok := m1.ReaderFor(reflect.TypeFor[*int32]())
	require.True(t, ok)
	assert.Same(t, a, tr)
	_, ok = m1.ReaderFor(reflect.TypeFor[int32]())
	assert.True(t, ok)
}

func TestBuiltinReadersAreFresh(t *testing.T) {
	cache := NewReaderCache()
	m, err := LoadTypeReaders(table("Int32Reader", "StringReader"), testCatalog(), cache)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Zero(t, cache.Len())

	_, ok := m.ReaderAt(2)
	assert.False(t, ok)
}

func TestFailedInitializeLeavesCacheClean(t *testing.T) {
	c := newBoxCatalog(true)
	cache := NewReaderCache()

	_, err := LoadTypeReaders(table("BoxReader<Int32>"), c.Catalog, cache)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrFormat)
	assert.Zero(t, cache.Len())
}

func TestUnresolvableEntryLeavesCacheClean(t *testing.T) {
	c := newBoxCatalog(false)
	cache := NewReaderCache()

	_, err := LoadTypeReaders(table("BoxReader<Int32>", "BoxReader<Unknown>"), c.Catalog, cache)
	assert.ErrorIs(t, err, core.ErrFormat)
	assert.Zero(t, cache.Len())
}

func TestArityMismatch(t *testing.T) {
	c := newBoxCatalog(false)
	_, err := LoadTypeReaders(table("BoxReader"), c.Catalog, NewReaderCache())
	assert.ErrorIs(t, err, core.ErrFormat)
	_, err = LoadTypeReaders(table("Int32Reader<Int32>"), c.Catalog, NewReaderCache())
	assert.ErrorIs(t, err, core.ErrFormat)
}

func TestTableCountBeyondContent(t *testing.T) {
	_, err := ReadTable(NewBinaryReader([]byte{0x7f, 0x00}))
	assert.ErrorIs(t, err, core.ErrFormat)
}

func TestConcurrentResolutionBuildsOnce(t *testing.T) {
	c := newBoxCatalog(false)
	cache := NewReaderCache()

	const workers = 16
	readers := make([]TypeReader, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := LoadTypeReaders(table("BoxReader<Int32>"), c.Catalog, cache)
			if assert.NoError(t, err) {
				readers[i], _ = m.ReaderAt(0)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), c.built.Load())
	assert.Equal(t, int32(1), c.inits.Load())
	for _, tr := range readers[1:] {
		assert.Same(t, readers[0], tr)
	}
}

func TestCatalogRegister(t *testing.T) {
	c := testCatalog()
	err := c.Register("Other.NodeReader", "", func() TypeReader { return nodeReader{} })
	assert.Error(t, err, "duplicate base name")

	e, ok := c.Lookup("NodeReader")
	require.True(t, ok)
	assert.Equal(t, KindCustom, e.Kind)
	assert.Equal(t, "custom", e.Kind.String())

	tn, err := ParseTypeName("Dictionary<Int32,List<Node>>")
	require.NoError(t, err)
	rt, err := c.ResolveType(tn)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[map[int32][]*node](), rt)
}
