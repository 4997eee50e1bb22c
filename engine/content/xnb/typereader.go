package xnb

import "reflect"

// TypeReader decodes one target type. Read must consume exactly the bytes the
// content pipeline wrote for the value: there are no per-value length
// prefixes, so a reader that over or under reads desynchronizes the rest of
// the stream.
type TypeReader interface {
	// TargetType is the Go type Read produces. Structural readers that only
	// take part in dispatch by index return nil.
	TargetType() reflect.Type
	Read(r *ContentReader, existing Instance) (any, error)
}

// Initializer is implemented by readers that need other readers of the same
// container, e.g. to decode generic element values inline.
type Initializer interface {
	Initialize(m *TypeReaderManager) error
}

// InPlaceReader is implemented by readers able to decode into an already
// allocated value. Only they receive InPlace instances; every other reader is
// handed Fresh().
type InPlaceReader interface {
	ReadsIntoExisting() bool
}

// Instance tells a reader whether to allocate a new value or to overwrite an
// existing one, keeping its identity.
type Instance struct {
	value any
}

// Fresh asks the reader to allocate a new value.
func Fresh() Instance {
	return Instance{}
}

// InPlace asks the reader to decode into v. A nil v is the same as Fresh.
func InPlace(v any) Instance {
	return Instance{value: v}
}

func (i Instance) IsInPlace() bool {
	return i.value != nil
}

// Value returns the existing value, or nil for Fresh.
func (i Instance) Value() any {
	return i.value
}

// Existing returns the in-place value as a T when it is one.
func Existing[T any](i Instance) (T, bool) {
	v, ok := i.value.(T)
	return v, ok
}

func readsIntoExisting(tr TypeReader) bool {
	ipr, ok := tr.(InPlaceReader)
	return ok && ipr.ReadsIntoExisting()
}
