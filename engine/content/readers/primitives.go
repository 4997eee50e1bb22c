package readers

import (
	"reflect"
	"time"

	"github.com/spaghettifunk/anima-content/engine/content/xnb"
)

// valueReader decodes a fixed layout value type with a single read function.
type valueReader[T any] struct {
	read func(*xnb.ContentReader) (T, error)
}

func primitive[T any](read func(*xnb.ContentReader) (T, error)) func() xnb.TypeReader {
	return func() xnb.TypeReader {
		return valueReader[T]{read: read}
	}
}

func (v valueReader[T]) TargetType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (v valueReader[T]) Read(r *xnb.ContentReader, _ xnb.Instance) (any, error) {
	return value(v.read(r))
}

// value boxes a typed result, keeping nil for errors.
func value[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

// TimeSpan is stored as 100ns ticks.
func readTimeSpan(r *xnb.ContentReader) (time.Duration, error) {
	ticks, err := r.ReadInt64()
	if err != nil {
		return 0, err
	}
	return time.Duration(ticks) * 100, nil
}

const (
	ticksPerSecond = 10_000_000
	// seconds between 0001-01-01 and 1970-01-01
	unixEpochSeconds = 62_135_596_800

	dateTimeTicksMask = 1<<62 - 1
	dateTimeKindLocal = 2
)

// DateTime packs 100ns ticks since 0001-01-01 in the low 62 bits and the kind
// (unspecified, utc, local) in the top two.
func readDateTime(r *xnb.ContentReader) (time.Time, error) {
	packed, err := r.ReadUInt64()
	if err != nil {
		return time.Time{}, err
	}
	ticks := int64(packed & dateTimeTicksMask)
	t := time.Unix(ticks/ticksPerSecond-unixEpochSeconds, (ticks%ticksPerSecond)*100).UTC()
	if packed>>62 == dateTimeKindLocal {
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
	}
	return t, nil
}
