package xnb

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/spaghettifunk/anima-content/engine/core"
)

// BinaryReader is a little-endian cursor over an in-memory container body.
// Every read is bounds checked; running past the end is a format error.
type BinaryReader struct {
	buf []byte
	off int
}

func NewBinaryReader(buf []byte) *BinaryReader {
	return &BinaryReader{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (r *BinaryReader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *BinaryReader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *BinaryReader) readN(n int) ([]byte, error) {
	if n < 0 {
		return nil, core.FormatErrorf("invalid read length %d at offset %d", n, r.off)
	}
	if n > r.Remaining() {
		return nil, core.FormatErrorf("unexpected end of content: need %d bytes at offset %d, %d remaining", n, r.off, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadBytes returns a copy of the next n bytes.
func (r *BinaryReader) ReadBytes(n int) ([]byte, error) {
	b, err := r.readN(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (r *BinaryReader) ReadByte() (byte, error) {
	b, err := r.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *BinaryReader) ReadSByte() (int8, error) {
	v, err := r.ReadByte()
	return int8(v), err
}

func (r *BinaryReader) ReadBoolean() (bool, error) {
	v, err := r.ReadByte()
	return v != 0, err
}

func (r *BinaryReader) ReadUInt16() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *BinaryReader) ReadInt16() (int16, error) {
	v, err := r.ReadUInt16()
	return int16(v), err
}

func (r *BinaryReader) ReadUInt32() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *BinaryReader) ReadInt32() (int32, error) {
	v, err := r.ReadUInt32()
	return int32(v), err
}

func (r *BinaryReader) ReadUInt64() (uint64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *BinaryReader) ReadInt64() (int64, error) {
	v, err := r.ReadUInt64()
	return int64(v), err
}

func (r *BinaryReader) ReadSingle() (float32, error) {
	u, err := r.ReadUInt32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

func (r *BinaryReader) ReadDouble() (float64, error) {
	u, err := r.ReadUInt64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// Read7BitEncodedInt reads a variable length integer: seven data bits per
// byte, high bit set on every byte but the last. At most five bytes.
func (r *BinaryReader) Read7BitEncodedInt() (int, error) {
	var result uint32
	for shift := uint(0); shift < 35; shift += 7 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return int(int32(result)), nil
		}
	}
	return 0, core.FormatErrorf("bad 7-bit encoded integer at offset %d", r.off)
}

// ReadCount reads a 7-bit encoded integer that must not be negative.
func (r *BinaryReader) ReadCount() (int, error) {
	n, err := r.Read7BitEncodedInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, core.FormatErrorf("negative count %d at offset %d", n, r.off)
	}
	return n, nil
}

// ReadString reads a 7-bit length prefixed UTF-8 string.
func (r *BinaryReader) ReadString() (string, error) {
	n, err := r.ReadCount()
	if err != nil {
		return "", err
	}
	b, err := r.readN(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadChar reads one UTF-8 encoded character.
func (r *BinaryReader) ReadChar() (rune, error) {
	if r.Remaining() == 0 {
		return 0, core.FormatErrorf("unexpected end of content: need a character at offset %d", r.off)
	}
	n := 1
	switch lead := r.buf[r.off]; {
	case lead < 0x80:
	case lead&0xe0 == 0xc0:
		n = 2
	case lead&0xf0 == 0xe0:
		n = 3
	case lead&0xf8 == 0xf0:
		n = 4
	default:
		return 0, core.FormatErrorf("invalid UTF-8 lead byte 0x%02x at offset %d", lead, r.off)
	}
	b, err := r.readN(n)
	if err != nil {
		return 0, err
	}
	c, size := utf8.DecodeRune(b)
	if c == utf8.RuneError || size != n {
		return 0, core.FormatErrorf("invalid UTF-8 character at offset %d", r.off-n)
	}
	return c, nil
}
