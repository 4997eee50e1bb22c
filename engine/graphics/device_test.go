package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadlessDevice(t *testing.T) {
	d := NewHeadlessDevice()
	h1, err := d.Upload(ResourceTexture2D, nil)
	require.NoError(t, err)
	h2, err := d.Upload(ResourceEffect, nil)
	require.NoError(t, err)
	assert.NotEqual(t, InvalidHandle, h1)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, d.Live())

	require.NoError(t, d.Release(h1))
	assert.Error(t, d.Release(h1))
	assert.Equal(t, 1, d.Live())
	assert.Equal(t, uint64(2), d.Uploads())
	assert.Equal(t, uint64(1), d.Releases())
}

func TestTextureSetReplacesUpload(t *testing.T) {
	d := NewHeadlessDevice()
	tex, err := NewTexture2D(d, SurfaceFormatColor, 1, 1, [][]byte{{1, 2, 3, 4}})
	require.NoError(t, err)
	first := tex.Handle()
	assert.Equal(t, uint32(1), tex.Generation)

	require.NoError(t, tex.Set(d, SurfaceFormatDxt1, 4, 4, [][]byte{make([]byte, 8)}))
	assert.NotEqual(t, first, tex.Handle())
	assert.Equal(t, uint32(2), tex.Generation)
	assert.Equal(t, SurfaceFormatDxt1, tex.Format)
	assert.Equal(t, 1, d.Live())

	require.NoError(t, tex.Close())
	require.NoError(t, tex.Close())
	assert.Equal(t, InvalidHandle, tex.Handle())
	assert.Equal(t, 0, d.Live())
}

func TestUploadWithoutDevice(t *testing.T) {
	var b IndexBuffer
	err := b.Set(nil, true, []byte{0, 0})
	assert.ErrorContains(t, err, "indexbuffer")
	assert.Equal(t, uint32(0), b.Generation)
}

func TestIndexCount(t *testing.T) {
	assert.Equal(t, 3, (&IndexBuffer{SixteenBit: true, Data: make([]byte, 6)}).IndexCount())
	assert.Equal(t, 2, (&IndexBuffer{Data: make([]byte, 8)}).IndexCount())
}

func TestSpriteFontGlyph(t *testing.T) {
	def := '?'
	f := &SpriteFont{Glyphs: map[rune]FontGlyph{
		'a': {Character: 'a'},
		'?': {Character: '?'},
	}}

	g, ok := f.Glyph('a')
	assert.True(t, ok)
	assert.Equal(t, 'a', g.Character)

	_, ok = f.Glyph('b')
	assert.False(t, ok)

	f.DefaultCharacter = &def
	g, ok = f.Glyph('b')
	assert.True(t, ok)
	assert.Equal(t, '?', g.Character)
}
