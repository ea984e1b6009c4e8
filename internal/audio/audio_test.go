package audio

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameDuration(t *testing.T) {
	frame := make(Frame, 512)
	assert.Equal(t, 32*time.Millisecond, FrameDuration(frame, 16000))

	empty := Frame{}
	assert.Equal(t, time.Duration(0), FrameDuration(empty, 16000))
}

func TestConcat(t *testing.T) {
	a := Frame{1, 2, 3}
	b := Frame{4, 5}
	got := Concat([]Frame{a, b})
	assert.Equal(t, Frame{1, 2, 3, 4, 5}, got)

	assert.Empty(t, Concat(nil))
}

func TestEncodeWAV(t *testing.T) {
	samples := Frame{0, 1, -1, 32767}
	wav := EncodeWAV(samples, 16000)

	require.Len(t, wav, 44+len(samples)*2)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "data", string(wav[36:40]))

	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(len(samples)*2), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24])) // mono
}
