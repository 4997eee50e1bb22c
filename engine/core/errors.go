package core

import (
	"github.com/cockroachdb/errors"
)

// Error classes. Concrete errors carry one of these as a mark so callers can
// branch with errors.Is without depending on message text.
var (
	// ErrFormat means the container bytes are not a valid asset: bad header,
	// unknown type reader, out of range reference, truncated body...
	ErrFormat = errors.New("invalid content format")
	// ErrIO means the underlying stream could not be opened or read.
	ErrIO = errors.New("content stream i/o failure")
	// ErrNotFound means no stream exists for the requested asset path.
	ErrNotFound = errors.New("content not found")
	// ErrDisposed is returned by a content manager after it has been unloaded.
	ErrDisposed = errors.New("content manager disposed")
	// ErrTypeMismatch means a decoded value is not of the requested type.
	ErrTypeMismatch = errors.New("content type mismatch")
)

// FormatErrorf builds a new error marked as ErrFormat.
func FormatErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrFormat)
}

// AsFormatError marks err as ErrFormat, keeping its message and chain.
func AsFormatError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, ErrFormat)
}

// AsIOError marks err as ErrIO, keeping its message and chain.
func AsIOError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, ErrIO)
}
