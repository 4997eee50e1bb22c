package xnb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-content/engine/core"
)

func TestRead7BitEncodedInt(t *testing.T) {
	cases := []struct {
		in   []byte
		want int
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0xff, 0x03}, 65535},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x07}, 1<<31 - 1},
	}
	for _, c := range cases {
		r := NewBinaryReader(c.in)
		got, err := r.Read7BitEncodedInt()
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
		assert.Zero(t, r.Remaining())
	}
}

func TestRead7BitEncodedIntTooLong(t *testing.T) {
	r := NewBinaryReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	_, err := r.Read7BitEncodedInt()
	assert.ErrorIs(t, err, core.ErrFormat)
}

func TestReadCountRejectsNegative(t *testing.T) {
	r := NewBinaryReader([]byte{0xff, 0xff, 0xff, 0xff, 0x0f})
	_, err := r.ReadCount()
	assert.ErrorIs(t, err, core.ErrFormat)
}

func TestReadPrimitives(t *testing.T) {
	r := NewBinaryReader([]byte{
		0x01,       // bool
		0x34, 0x12, // uint16
		0xfe, 0xff, 0xff, 0xff, // int32 -2
		0x00, 0x00, 0x80, 0x3f, // float32 1.0
	})
	b, err := r.ReadBoolean()
	require.NoError(t, err)
	assert.True(t, b)
	u, err := r.ReadUInt16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u)
	i, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-2), i)
	f, err := r.ReadSingle()
	require.NoError(t, err)
	assert.Equal(t, float32(1), f)
	assert.Equal(t, 11, r.Offset())
}

func TestReadStringAndChar(t *testing.T) {
	r := NewBinaryReader([]byte{0x03, 'h', 0xc3, 0xa9, 0xe2, 0x82, 0xac, 'z'})
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hé", s)
	c, err := r.ReadChar()
	require.NoError(t, err)
	assert.Equal(t, '€', c)
	c, err = r.ReadChar()
	require.NoError(t, err)
	assert.Equal(t, 'z', c)
}

func TestShortReadIsFormatError(t *testing.T) {
	r := NewBinaryReader([]byte{1, 2})
	_, err := r.ReadInt32()
	assert.ErrorIs(t, err, core.ErrFormat)
	// A failed read consumes nothing.
	assert.Equal(t, 0, r.Offset())

	_, err = NewBinaryReader([]byte{0x05, 'a'}).ReadString()
	assert.ErrorIs(t, err, core.ErrFormat)
}

func TestReadBytesCopies(t *testing.T) {
	buf := []byte{1, 2, 3}
	b, err := NewBinaryReader(buf).ReadBytes(3)
	require.NoError(t, err)
	b[0] = 9
	assert.Equal(t, byte(1), buf[0])
}
