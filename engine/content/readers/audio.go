package readers

import (
	"reflect"
	"time"

	"github.com/spaghettifunk/anima-content/engine/audio"
	"github.com/spaghettifunk/anima-content/engine/content/xnb"
)

type soundEffectReader struct{}

func (soundEffectReader) TargetType() reflect.Type { return reflect.TypeFor[*audio.SoundEffect]() }

// Layout: format block, sample data, loop start, loop length, duration in
// milliseconds.
func (soundEffectReader) Read(r *xnb.ContentReader, _ xnb.Instance) (any, error) {
	format, err := readBlob(r)
	if err != nil {
		return nil, err
	}
	data, err := readBlob(r)
	if err != nil {
		return nil, err
	}
	s := &audio.SoundEffect{Format: format, Data: data}
	if s.LoopStart, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if s.LoopLength, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	ms, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	s.Duration = time.Duration(ms) * time.Millisecond
	return s, nil
}
