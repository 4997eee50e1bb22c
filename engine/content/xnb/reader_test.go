package xnb

import (
	"bytes"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-content/engine/content/xnb/xnbtest"
	"github.com/spaghettifunk/anima-content/engine/core"
)

func readContainer(t *testing.T, data []byte, target reflect.Type, host Host) (any, error) {
	t.Helper()
	r, err := NewContentReader(bytes.NewReader(data), Options{
		AssetName: "maps/level1",
		Catalog:   testCatalog(),
		Cache:     NewReaderCache(),
		Host:      host,
	})
	if err != nil {
		return nil, err
	}
	return r.ReadAsset(target, Fresh())
}

func TestReadAssetPrimitive(t *testing.T) {
	body := xnbtest.NewBody().Names("Int32Reader").Int7(0).Int7(1).Int32(42).Bytes()
	v, err := readContainer(t, xnbtest.Container(body), reflect.TypeFor[int32](), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)
}

func TestReadAssetNullPrimary(t *testing.T) {
	body := xnbtest.NewBody().Names("Int32Reader").Int7(0).Int7(0).Bytes()
	v, err := readContainer(t, xnbtest.Container(body), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestReadAssetTargetMismatch(t *testing.T) {
	body := xnbtest.NewBody().Names("Int32Reader").Int7(0).Int7(1).Int32(42).Bytes()
	_, err := readContainer(t, xnbtest.Container(body), reflect.TypeFor[string](), nil)
	assert.ErrorIs(t, err, core.ErrTypeMismatch)
	assert.ErrorIs(t, err, core.ErrFormat)
}

func TestReaderIndexOutOfRange(t *testing.T) {
	body := xnbtest.NewBody().Names("Int32Reader").Int7(0).Int7(2).Int32(42).Bytes()
	_, err := readContainer(t, xnbtest.Container(body), nil, nil)
	assert.ErrorIs(t, err, core.ErrFormat)
}

func TestUnknownReaderName(t *testing.T) {
	body := xnbtest.NewBody().Names("Game.MysteryReader").Int7(0).Int7(1).Bytes()
	_, err := readContainer(t, xnbtest.Container(body), nil, nil)
	assert.ErrorIs(t, err, core.ErrFormat)
	assert.Contains(t, err.Error(), "MysteryReader")
}

func TestCyclicSharedResources(t *testing.T) {
	// root -> a -> b -> a
	body := xnbtest.NewBody().
		Names("Game.NodeReader").
		Int7(2).
		Int7(1).String("root").Int7(1).
		Int7(1).String("a").Int7(2).
		Int7(1).String("b").Int7(1).
		Bytes()
	v, err := readContainer(t, xnbtest.Container(body), reflect.TypeFor[*node](), nil)
	require.NoError(t, err)

	root := v.(*node)
	require.NotNil(t, root.Next)
	a := root.Next
	require.NotNil(t, a.Next)
	b := a.Next
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "b", b.Name)
	assert.Same(t, a, b.Next)
}

func TestSharedResourceSlotOutOfRange(t *testing.T) {
	body := xnbtest.NewBody().
		Names("Game.NodeReader").
		Int7(1).
		Int7(1).String("root").Int7(5).
		Int7(1).String("a").Int7(0).
		Bytes()
	_, err := readContainer(t, xnbtest.Container(body), nil, nil)
	assert.ErrorIs(t, err, core.ErrFormat)
}

func TestSharedResourceTypeMismatch(t *testing.T) {
	body := xnbtest.NewBody().
		Names("Game.NodeReader", "Int32Reader").
		Int7(1).
		Int7(1).String("root").Int7(1).
		Int7(2).Int32(7).
		Bytes()
	_, err := readContainer(t, xnbtest.Container(body), nil, nil)
	assert.ErrorIs(t, err, core.ErrTypeMismatch)
	assert.ErrorIs(t, err, core.ErrFormat)
}

func TestTruncatedBody(t *testing.T) {
	body := xnbtest.NewBody().Names("Int32Reader").Int7(0).Int7(1).Int32(42).Bytes()
	data := xnbtest.Container(body)
	_, err := readContainer(t, data[:len(data)-2], nil, nil)
	assert.ErrorIs(t, err, core.ErrFormat)

	_, err = readContainer(t, data[:6], nil, nil)
	assert.ErrorIs(t, err, core.ErrFormat)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestStreamFailureIsIOError(t *testing.T) {
	_, err := NewContentReader(failingReader{}, Options{Catalog: testCatalog()})
	assert.ErrorIs(t, err, core.ErrIO)
	assert.NotErrorIs(t, err, core.ErrFormat)
}

func TestLZ4Container(t *testing.T) {
	text := strings.Repeat("content ", 64)
	body := xnbtest.NewBody().Names("StringReader").Int7(0).Int7(1).String(text).Bytes()
	data, err := xnbtest.CompressedLZ4(body)
	require.NoError(t, err)

	v, err := readContainer(t, data, reflect.TypeFor[string](), nil)
	require.NoError(t, err)
	assert.Equal(t, text, v)
}

func TestLZ4SizeBeyondExpansionLimit(t *testing.T) {
	payload := xnbtest.NewBody().UInt32(0x7ffffff0).Raw(0x10, 'x', 0, 0).Bytes()
	_, err := readContainer(t, xnbtest.ContainerWith('w', 5, FlagCompressedLZ4, payload), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrFormat)
	assert.Contains(t, err.Error(), "cannot decompress")
}

func TestLZXUnsupported(t *testing.T) {
	body := xnbtest.NewBody().Names("Int32Reader").Int7(0).Int7(1).Int32(1).Bytes()
	_, err := readContainer(t, xnbtest.ContainerWith('w', 5, FlagCompressedLZX, body), nil, nil)
	assert.ErrorIs(t, err, core.ErrFormat)
}

func TestDisposablesRecordedByHost(t *testing.T) {
	host := &recordingHost{}
	body := xnbtest.NewBody().Names("CloserReader").Int7(0).Int7(1).Bytes()
	v, err := readContainer(t, xnbtest.Container(body), nil, host)
	require.NoError(t, err)
	require.Len(t, host.recorded, 1)
	assert.Same(t, v, host.recorded[0])
}

func TestRecorderOverridesHost(t *testing.T) {
	host := &recordingHost{}
	var recorded int
	body := xnbtest.NewBody().Names("CloserReader").Int7(0).Int7(1).Bytes()
	r, err := NewContentReader(bytes.NewReader(xnbtest.Container(body)), Options{
		Catalog:  testCatalog(),
		Host:     host,
		Recorder: func(c io.Closer) { recorded++ },
	})
	require.NoError(t, err)
	_, err = r.ReadAsset(nil, Fresh())
	require.NoError(t, err)
	assert.Equal(t, 1, recorded)
	assert.Empty(t, host.recorded)
}

func TestExternalReferenceIsRelative(t *testing.T) {
	host := &recordingHost{}
	body := xnbtest.NewBody().Names("StringReader").Int7(0).Int7(1).String("x").
		String(`..\textures\stone`).String("").Bytes()
	r, err := NewContentReader(bytes.NewReader(xnbtest.Container(body)), Options{
		AssetName: "maps/level1",
		Catalog:   testCatalog(),
		Host:      host,
	})
	require.NoError(t, err)
	_, err = r.ReadAsset(nil, Fresh())
	require.NoError(t, err)

	v, err := r.ReadExternalReference(nil)
	require.NoError(t, err)
	assert.Equal(t, "textures/stone", v)
	v, err = r.ReadExternalReference(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, []string{"textures/stone"}, host.external)
}

func TestReadObjectAs(t *testing.T) {
	body := xnbtest.NewBody().Names("Int32Reader").Int7(0).Int7(1).Int32(5).Int7(1).Int32(6).Bytes()
	r, err := NewContentReader(bytes.NewReader(xnbtest.Container(body)), Options{Catalog: testCatalog()})
	require.NoError(t, err)
	_, err = r.ReadAsset(nil, Fresh())
	require.NoError(t, err)

	_, err = ReadObjectAs[string](r, Fresh())
	assert.ErrorIs(t, err, core.ErrTypeMismatch)
}
