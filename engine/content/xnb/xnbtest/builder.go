// Package xnbtest writes small XNB containers for tests.
package xnbtest

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4/v4"
)

// Reader is one row of the type reader table.
type Reader struct {
	Name    string
	Version int32
}

// Body accumulates the bytes of a container body. Methods return the body so
// fixtures read in encoding order.
type Body struct {
	buf bytes.Buffer
}

func NewBody() *Body {
	return &Body{}
}

func (b *Body) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *Body) Raw(p ...byte) *Body {
	b.buf.Write(p)
	return b
}

// Int7 writes a 7-bit encoded integer.
func (b *Body) Int7(v int) *Body {
	u := uint32(int32(v))
	for u >= 0x80 {
		b.buf.WriteByte(byte(u) | 0x80)
		u >>= 7
	}
	b.buf.WriteByte(byte(u))
	return b
}

func (b *Body) String(s string) *Body {
	b.Int7(len(s))
	b.buf.WriteString(s)
	return b
}

func (b *Body) Bool(v bool) *Body {
	if v {
		return b.Raw(1)
	}
	return b.Raw(0)
}

func (b *Body) Int16(v int16) *Body {
	return b.put(v)
}

func (b *Body) Int32(v int32) *Body {
	return b.put(v)
}

func (b *Body) UInt32(v uint32) *Body {
	return b.put(v)
}

func (b *Body) Int64(v int64) *Body {
	return b.put(v)
}

func (b *Body) Single(v float32) *Body {
	return b.put(math.Float32bits(v))
}

func (b *Body) Double(v float64) *Body {
	return b.put(math.Float64bits(v))
}

// Bytes32 writes an int32 length followed by p.
func (b *Body) Bytes32(p []byte) *Body {
	b.Int32(int32(len(p)))
	b.buf.Write(p)
	return b
}

func (b *Body) put(v any) *Body {
	// Writes to a bytes.Buffer cannot fail for fixed size values.
	_ = binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

// Readers writes the type reader table.
func (b *Body) Readers(readers ...Reader) *Body {
	b.Int7(len(readers))
	for _, r := range readers {
		b.String(r.Name)
		b.Int32(r.Version)
	}
	return b
}

// Names is Readers with every version set to zero.
func (b *Body) Names(names ...string) *Body {
	b.Int7(len(names))
	for _, n := range names {
		b.String(n)
		b.Int32(0)
	}
	return b
}

// Container prefixes body with a valid header for platform 'w'.
func Container(body []byte) []byte {
	return ContainerWith('w', 5, 0, body)
}

// ContainerWith builds a container with an explicit header. The length field
// always matches the returned slice.
func ContainerWith(platform, version, flags byte, body []byte) []byte {
	out := make([]byte, 10, 10+len(body))
	copy(out, "XNB")
	out[3] = platform
	out[4] = version
	out[5] = flags
	binary.LittleEndian.PutUint32(out[6:], uint32(10+len(body)))
	return append(out, body...)
}

// CompressedLZ4 builds an LZ4 compressed container. The body must be
// compressible; lz4 refuses to emit blocks larger than their input.
func CompressedLZ4(body []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(body)))
	n, err := lz4.CompressBlock(body, dst, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.New("body is not compressible")
	}
	payload := make([]byte, 4, 4+n)
	binary.LittleEndian.PutUint32(payload, uint32(len(body)))
	payload = append(payload, dst[:n]...)
	return ContainerWith('w', 5, 0x40, payload), nil
}
