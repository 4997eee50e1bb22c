package xnb

import (
	"io"
	"path"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/graphics"
)

// Host is the owner of a read: the content manager in production. It loads
// externally referenced assets, takes ownership of decoded resources and
// supplies the graphics device.
type Host interface {
	LoadExternal(name string, target reflect.Type) (any, error)
	RecordDisposable(c io.Closer)
	GraphicsDevice() (graphics.Device, error)
}

type Options struct {
	// AssetName is the requested asset, used to resolve external references.
	AssetName string
	Catalog   *Catalog
	Cache     *ReaderCache
	Host      Host
	// Recorder, when set, receives decoded resources instead of the host.
	Recorder func(io.Closer)
}

// Fixup is a deferred assignment of a shared resource: once every slot is
// decoded, Set is called with the value of Slot.
type Fixup struct {
	Slot     int
	Expected reflect.Type
	Set      func(any)
}

// ContentReader decodes one container. It is not safe for concurrent use.
type ContentReader struct {
	*BinaryReader

	header  Header
	opts    Options
	readers *TypeReaderManager

	sharedCount int
	fixups      []Fixup
}

// NewContentReader reads and validates the header, then buffers and
// decompresses the body. A stream shorter than the declared length is a
// format error; any other read failure is an I/O error.
func NewContentReader(stream io.Reader, opts Options) (*ContentReader, error) {
	if opts.Catalog == nil {
		return nil, errors.New("content reader needs a type reader catalog")
	}

	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(stream, buf); err != nil {
		return nil, classifyReadError(err, "read header")
	}
	var h Header
	if err := h.UnmarshalBinary(buf); err != nil {
		return nil, err
	}

	want := int64(h.Length) - HeaderSize
	body, err := io.ReadAll(io.LimitReader(stream, want))
	if err != nil {
		return nil, classifyReadError(err, "read body")
	}
	if int64(len(body)) != want {
		return nil, core.FormatErrorf("truncated container: body has %d bytes, header declares %d", len(body), want)
	}
	if body, err = decompressBody(h, body); err != nil {
		return nil, err
	}

	return &ContentReader{
		BinaryReader: NewBinaryReader(body),
		header:       h,
		opts:         opts,
	}, nil
}

func classifyReadError(err error, op string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return core.AsFormatError(errors.Wrapf(err, "%s: truncated container", op))
	}
	return core.AsIOError(errors.Wrap(err, op))
}

func (r *ContentReader) Header() Header {
	return r.header
}

func (r *ContentReader) AssetName() string {
	return r.opts.AssetName
}

// TypeReaders returns the resolved reader table, nil before ReadAsset.
func (r *ContentReader) TypeReaders() *TypeReaderManager {
	return r.readers
}

// ReadAsset decodes the whole container: the type reader table, the primary
// object, then every shared resource slot in order, and finally applies the
// queued fixups. target may be nil to accept any type.
func (r *ContentReader) ReadAsset(target reflect.Type, existing Instance) (any, error) {
	readers, err := LoadTypeReaders(r.BinaryReader, r.opts.Catalog, r.opts.Cache)
	if err != nil {
		return nil, err
	}
	r.readers = readers

	if r.sharedCount, err = r.ReadCount(); err != nil {
		return nil, err
	}

	asset, err := r.ReadObject(existing)
	if err != nil {
		return nil, err
	}
	if asset != nil && target != nil && !reflect.TypeOf(asset).AssignableTo(target) {
		return nil, typeMismatch(reflect.TypeOf(asset), target, "asset")
	}

	shared := make([]any, r.sharedCount)
	for i := range shared {
		if shared[i], err = r.ReadObject(Fresh()); err != nil {
			return nil, errors.Wrapf(err, "shared resource %d", i)
		}
	}
	if err := r.applyFixups(shared); err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		core.LogWarn("%s: %d trailing bytes after content", r.opts.AssetName, r.Remaining())
	}
	return asset, nil
}

func (r *ContentReader) applyFixups(shared []any) error {
	for _, f := range r.fixups {
		if f.Slot >= len(shared) {
			return core.FormatErrorf("shared resource slot %d out of range (%d slots)", f.Slot, len(shared))
		}
		v := shared[f.Slot]
		if v != nil && f.Expected != nil && !reflect.TypeOf(v).AssignableTo(f.Expected) {
			return typeMismatch(reflect.TypeOf(v), f.Expected, "shared resource")
		}
		f.Set(v)
	}
	r.fixups = nil
	return nil
}

// ReadObject reads a type reader index and decodes the value it selects.
// Index 0 yields the existing value unchanged (nil for Fresh).
func (r *ContentReader) ReadObject(existing Instance) (any, error) {
	idx, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	if idx == 0 {
		return existing.Value(), nil
	}
	tr, ok := r.readers.ReaderAt(idx - 1)
	if !ok {
		return nil, core.FormatErrorf("type reader index %d out of range (%d readers) at offset %d", idx, r.readers.Len(), r.Offset())
	}
	return r.ReadRawObject(tr, existing)
}

// ReadRawObject decodes a value with tr directly, without an index prefix.
func (r *ContentReader) ReadRawObject(tr TypeReader, existing Instance) (any, error) {
	if !readsIntoExisting(tr) {
		existing = Fresh()
	}
	v, err := tr.Read(r, existing)
	if err != nil {
		return nil, err
	}
	r.recordDisposable(v)
	return v, nil
}

func (r *ContentReader) recordDisposable(v any) {
	c, ok := v.(io.Closer)
	if !ok {
		return
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return
	}
	switch {
	case r.opts.Recorder != nil:
		r.opts.Recorder(c)
	case r.opts.Host != nil:
		r.opts.Host.RecordDisposable(c)
	}
}

// ReadSharedResource reads a shared resource index and queues set to receive
// the slot value once all slots are decoded. Index 0 queues nothing.
func (r *ContentReader) ReadSharedResource(expected reflect.Type, set func(any)) error {
	idx, err := r.ReadCount()
	if err != nil {
		return err
	}
	if idx == 0 {
		return nil
	}
	r.fixups = append(r.fixups, Fixup{Slot: idx - 1, Expected: expected, Set: set})
	return nil
}

// ReadExternalReference reads an asset name relative to the current asset and
// loads it through the host. An empty name yields nil.
func (r *ContentReader) ReadExternalReference(target reflect.Type) (any, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	if r.opts.Host == nil {
		return nil, errors.Newf("external reference %q without a content host", name)
	}
	return r.opts.Host.LoadExternal(resolveRelative(r.opts.AssetName, name), target)
}

// GraphicsDevice returns the device GPU backed readers upload to.
func (r *ContentReader) GraphicsDevice() (graphics.Device, error) {
	if r.opts.Host == nil {
		return nil, errors.New("no content host to provide a graphics device")
	}
	return r.opts.Host.GraphicsDevice()
}

// resolveRelative resolves ref against the directory of asset.
func resolveRelative(asset, ref string) string {
	ref = NormalizePath(ref)
	if path.IsAbs(ref) {
		return path.Clean(ref[1:])
	}
	return path.Join(path.Dir(NormalizePath(asset)), ref)
}

func typeMismatch(got, want reflect.Type, what string) error {
	err := errors.Newf("%s of type %s is not assignable to %s", what, got, want)
	return errors.Mark(errors.Mark(err, core.ErrTypeMismatch), core.ErrFormat)
}

// ReadObjectAs is ReadObject with a checked conversion to T. A null reference
// yields the zero T.
func ReadObjectAs[T any](r *ContentReader, existing Instance) (T, error) {
	var zero T
	v, err := r.ReadObject(existing)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, typeMismatch(reflect.TypeOf(v), reflect.TypeFor[T](), "object")
	}
	return t, nil
}

// ReadRawObjectAs is ReadRawObject with a checked conversion to T.
func ReadRawObjectAs[T any](r *ContentReader, tr TypeReader, existing Instance) (T, error) {
	var zero T
	v, err := r.ReadRawObject(tr, existing)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, typeMismatch(reflect.TypeOf(v), reflect.TypeFor[T](), "object")
	}
	return t, nil
}
