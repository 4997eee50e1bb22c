package xnb

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4/v4"

	"github.com/spaghettifunk/anima-content/engine/core"
)

// An LZ4 block expands by at most 255 to 1.
const maxLZ4Ratio = 255

// decompressBody turns the bytes after the header into the plain body.
// Compressed bodies start with the uncompressed size as a uint32.
func decompressBody(h Header, body []byte) ([]byte, error) {
	if !h.Compressed() {
		return body, nil
	}
	if h.Flags&FlagCompressedLZX != 0 {
		return nil, core.FormatErrorf("LZX compressed content is not supported")
	}
	if len(body) < 4 {
		return nil, core.FormatErrorf("compressed body too short: %d bytes", len(body))
	}
	size := binary.LittleEndian.Uint32(body[:4])
	if uint64(size) > uint64(len(body)-4)*maxLZ4Ratio {
		return nil, core.FormatErrorf("lz4 body of %d bytes cannot decompress to %d bytes", len(body)-4, size)
	}
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(body[4:], out)
	if err != nil {
		return nil, core.AsFormatError(errors.Wrap(err, "lz4 decompress"))
	}
	if uint32(n) != size {
		return nil, core.FormatErrorf("lz4 body decompressed to %d bytes, header says %d", n, size)
	}
	return out, nil
}
