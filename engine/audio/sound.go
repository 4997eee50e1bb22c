package audio

import "time"

// SoundEffect is decoded PCM/ADPCM data plus its wave format header. Playback
// is owned by the audio backend.
type SoundEffect struct {
	// Format is the raw WAVEFORMATEX block.
	Format     []byte
	Data       []byte
	LoopStart  int32
	LoopLength int32
	Duration   time.Duration
}
