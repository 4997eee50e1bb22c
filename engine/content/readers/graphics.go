package readers

import (
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-content/engine/content/xnb"
	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/graphics"
)

// GPU backed readers decode into an existing object when one is supplied so
// reloading after a device reset keeps every reference to it valid.

type texture2DReader struct{}

func (texture2DReader) TargetType() reflect.Type { return reflect.TypeFor[*graphics.Texture2D]() }
func (texture2DReader) ReadsIntoExisting() bool  { return true }

func (texture2DReader) Read(r *xnb.ContentReader, existing xnb.Instance) (any, error) {
	format, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	width, err := r.ReadUInt32()
	if err != nil {
		return nil, err
	}
	height, err := r.ReadUInt32()
	if err != nil {
		return nil, err
	}
	levels, err := readLevels(r)
	if err != nil {
		return nil, err
	}
	dev, err := r.GraphicsDevice()
	if err != nil {
		return nil, err
	}

	t, ok := xnb.Existing[*graphics.Texture2D](existing)
	if !ok {
		t = &graphics.Texture2D{}
	}
	if err := t.Set(dev, graphics.SurfaceFormat(format), int32(width), int32(height), levels); err != nil {
		return nil, errors.Wrap(err, "upload texture")
	}
	return t, nil
}

type texture3DReader struct{}

func (texture3DReader) TargetType() reflect.Type { return reflect.TypeFor[*graphics.Texture3D]() }
func (texture3DReader) ReadsIntoExisting() bool  { return true }

func (texture3DReader) Read(r *xnb.ContentReader, existing xnb.Instance) (any, error) {
	format, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	var dims [3]uint32
	for i := range dims {
		if dims[i], err = r.ReadUInt32(); err != nil {
			return nil, err
		}
	}
	levels, err := readLevels(r)
	if err != nil {
		return nil, err
	}
	dev, err := r.GraphicsDevice()
	if err != nil {
		return nil, err
	}

	t, ok := xnb.Existing[*graphics.Texture3D](existing)
	if !ok {
		t = &graphics.Texture3D{}
	}
	if err := t.Set(dev, graphics.SurfaceFormat(format), int32(dims[0]), int32(dims[1]), int32(dims[2]), levels); err != nil {
		return nil, errors.Wrap(err, "upload volume texture")
	}
	return t, nil
}

type textureCubeReader struct{}

func (textureCubeReader) TargetType() reflect.Type { return reflect.TypeFor[*graphics.TextureCube]() }
func (textureCubeReader) ReadsIntoExisting() bool  { return true }

// Faces are stored one after the other, each with every mip level.
func (textureCubeReader) Read(r *xnb.ContentReader, existing xnb.Instance) (any, error) {
	format, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	size, err := r.ReadUInt32()
	if err != nil {
		return nil, err
	}
	count, err := r.ReadUInt32()
	if err != nil {
		return nil, err
	}
	var faces [6][][]byte
	for f := range faces {
		faces[f] = make([][]byte, 0, min(int(count), r.Remaining()))
		for l := uint32(0); l < count; l++ {
			level, err := readBlob(r)
			if err != nil {
				return nil, errors.Wrapf(err, "face %d level %d", f, l)
			}
			faces[f] = append(faces[f], level)
		}
	}
	dev, err := r.GraphicsDevice()
	if err != nil {
		return nil, err
	}

	t, ok := xnb.Existing[*graphics.TextureCube](existing)
	if !ok {
		t = &graphics.TextureCube{}
	}
	if err := t.Set(dev, graphics.SurfaceFormat(format), int32(size), faces); err != nil {
		return nil, errors.Wrap(err, "upload cube texture")
	}
	return t, nil
}

type indexBufferReader struct{}

func (indexBufferReader) TargetType() reflect.Type { return reflect.TypeFor[*graphics.IndexBuffer]() }
func (indexBufferReader) ReadsIntoExisting() bool  { return true }

func (indexBufferReader) Read(r *xnb.ContentReader, existing xnb.Instance) (any, error) {
	sixteenBit, err := r.ReadBoolean()
	if err != nil {
		return nil, err
	}
	data, err := readBlob(r)
	if err != nil {
		return nil, err
	}
	dev, err := r.GraphicsDevice()
	if err != nil {
		return nil, err
	}

	b, ok := xnb.Existing[*graphics.IndexBuffer](existing)
	if !ok {
		b = &graphics.IndexBuffer{}
	}
	if err := b.Set(dev, sixteenBit, data); err != nil {
		return nil, errors.Wrap(err, "upload index buffer")
	}
	return b, nil
}

type vertexDeclarationReader struct{}

func (vertexDeclarationReader) TargetType() reflect.Type {
	return reflect.TypeFor[*graphics.VertexDeclaration]()
}

func (vertexDeclarationReader) Read(r *xnb.ContentReader, _ xnb.Instance) (any, error) {
	return value(readVertexDeclaration(r))
}

func readVertexDeclaration(r *xnb.ContentReader) (*graphics.VertexDeclaration, error) {
	stride, err := r.ReadUInt32()
	if err != nil {
		return nil, err
	}
	count, err := r.ReadUInt32()
	if err != nil {
		return nil, err
	}
	// An element is 16 bytes.
	if int64(count)*16 > int64(r.Remaining()) {
		return nil, core.FormatErrorf("vertex declaration with %d elements exceeds remaining content", count)
	}
	decl := &graphics.VertexDeclaration{
		Stride:   stride,
		Elements: make([]graphics.VertexElement, count),
	}
	for i := range decl.Elements {
		e := &decl.Elements[i]
		if e.Offset, err = r.ReadUInt32(); err != nil {
			return nil, err
		}
		format, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		usage, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		if e.UsageIndex, err = r.ReadUInt32(); err != nil {
			return nil, err
		}
		e.Format = graphics.VertexElementFormat(format)
		e.Usage = graphics.VertexElementUsage(usage)
	}
	return decl, nil
}

type vertexBufferReader struct{}

func (vertexBufferReader) TargetType() reflect.Type { return reflect.TypeFor[*graphics.VertexBuffer]() }
func (vertexBufferReader) ReadsIntoExisting() bool  { return true }

// The declaration is stored inline, then the vertex count and
// count*stride bytes of vertex data.
func (vertexBufferReader) Read(r *xnb.ContentReader, existing xnb.Instance) (any, error) {
	decl, err := readVertexDeclaration(r)
	if err != nil {
		return nil, err
	}
	count, err := r.ReadUInt32()
	if err != nil {
		return nil, err
	}
	size := int64(count) * int64(decl.Stride)
	if size > int64(r.Remaining()) {
		return nil, core.FormatErrorf("vertex data of %d bytes exceeds remaining content", size)
	}
	data, err := r.ReadBytes(int(size))
	if err != nil {
		return nil, err
	}
	dev, err := r.GraphicsDevice()
	if err != nil {
		return nil, err
	}

	b, ok := xnb.Existing[*graphics.VertexBuffer](existing)
	if !ok {
		b = &graphics.VertexBuffer{}
	}
	if err := b.Set(dev, decl, count, data); err != nil {
		return nil, errors.Wrap(err, "upload vertex buffer")
	}
	return b, nil
}

type effectReader struct{}

func (effectReader) TargetType() reflect.Type { return reflect.TypeFor[*graphics.Effect]() }
func (effectReader) ReadsIntoExisting() bool  { return true }

func (effectReader) Read(r *xnb.ContentReader, existing xnb.Instance) (any, error) {
	code, err := readBlob(r)
	if err != nil {
		return nil, err
	}
	dev, err := r.GraphicsDevice()
	if err != nil {
		return nil, err
	}

	e, ok := xnb.Existing[*graphics.Effect](existing)
	if !ok {
		e = &graphics.Effect{}
	}
	if err := e.Set(dev, code); err != nil {
		return nil, errors.Wrap(err, "upload effect")
	}
	return e, nil
}

// readLevels reads a uint32 level count followed by that many blobs.
func readLevels(r *xnb.ContentReader) ([][]byte, error) {
	count, err := r.ReadUInt32()
	if err != nil {
		return nil, err
	}
	// Each level carries at least its size prefix.
	if int64(count)*4 > int64(r.Remaining()) {
		return nil, core.FormatErrorf("%d mip levels exceed remaining content", count)
	}
	levels := make([][]byte, count)
	for i := range levels {
		if levels[i], err = readBlob(r); err != nil {
			return nil, errors.Wrapf(err, "level %d", i)
		}
	}
	return levels, nil
}

// readBlob reads a uint32 byte count followed by the bytes.
func readBlob(r *xnb.ContentReader) ([]byte, error) {
	size, err := r.ReadUInt32()
	if err != nil {
		return nil, err
	}
	if int64(size) > int64(r.Remaining()) {
		return nil, core.FormatErrorf("blob of %d bytes exceeds remaining content", size)
	}
	return r.ReadBytes(int(size))
}
