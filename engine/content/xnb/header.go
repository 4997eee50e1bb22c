package xnb

import (
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/anima-content/engine/core"
)

// Fixed container prologue (10 bytes). Integers are little-endian.
//
//	0 ..2  Magic    'X''N''B'
//	3      Platform u8, one of the known platform tags
//	4      Version  u8, must be FormatVersion
//	5      Flags    u8, bit 7 LZX, bit 6 LZ4
//	6 ..9  Length   u32, size of the whole container including this header
const (
	HeaderSize = 10
	Magic      = "XNB"

	FormatVersion byte = 5

	FlagCompressedLZX byte = 0x80
	FlagCompressedLZ4 byte = 0x40
)

var platforms = map[byte]string{
	'w': "Windows",
	'x': "Xbox 360",
	'm': "Windows Phone 7",
	'i': "iOS",
	'a': "Android",
	'd': "DesktopGL",
	'X': "macOS",
	'W': "Windows Store",
	'n': "Native Client",
	'M': "Windows Phone 8",
	'r': "Raspberry Pi",
	'P': "PlayStation 4",
	'v': "PlayStation Vita",
	'O': "Xbox One",
	'S': "Nintendo Switch",
	'G': "Stadia",
	'b': "WebAssembly",
}

// PlatformName returns a readable name for a platform tag.
func PlatformName(tag byte) (string, bool) {
	name, ok := platforms[tag]
	return name, ok
}

// Header describes an XNB container.
type Header struct {
	Platform byte
	Version  byte
	Flags    byte
	Length   uint32
}

// Compressed reports whether the body following the header is compressed.
func (h Header) Compressed() bool {
	return h.Flags&(FlagCompressedLZX|FlagCompressedLZ4) != 0
}

// MarshalBinary encodes the header to its 10-byte form.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	copy(buf[0:3], Magic)
	buf[3] = h.Platform
	buf[4] = h.Version
	buf[5] = h.Flags
	binary.LittleEndian.PutUint32(buf[6:10], h.Length)
	return buf, nil
}

// UnmarshalBinary decodes and validates a header. Every rule is checked
// before the caller looks at a single body byte.
func (h *Header) UnmarshalBinary(buf []byte) error {
	if len(buf) < HeaderSize {
		return core.FormatErrorf("short header: %d bytes", len(buf))
	}
	if string(buf[0:3]) != Magic {
		return core.FormatErrorf("bad magic %q", buf[0:3])
	}
	if _, ok := platforms[buf[3]]; !ok {
		return core.FormatErrorf("unknown platform tag %q", buf[3])
	}
	if buf[4] != FormatVersion {
		return core.FormatErrorf("unsupported format version %d (want %d)", buf[4], FormatVersion)
	}
	flags := buf[5]
	if flags&FlagCompressedLZX != 0 && flags&FlagCompressedLZ4 != 0 {
		return core.FormatErrorf("conflicting compression flags 0x%02x", flags)
	}
	length := binary.LittleEndian.Uint32(buf[6:10])
	if length < HeaderSize {
		return core.FormatErrorf("container length %d smaller than header", length)
	}
	h.Platform = buf[3]
	h.Version = buf[4]
	h.Flags = flags
	h.Length = length
	return nil
}

func (h Header) String() string {
	name, _ := PlatformName(h.Platform)
	compression := "none"
	switch {
	case h.Flags&FlagCompressedLZX != 0:
		compression = "lzx"
	case h.Flags&FlagCompressedLZ4 != 0:
		compression = "lz4"
	}
	return fmt.Sprintf("platform=%s version=%d compression=%s length=%d", name, h.Version, compression, h.Length)
}
