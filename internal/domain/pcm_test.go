package domain

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func s16Chunk(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// TestScalePCMFullVolumePassthrough verifies volumes at or above the
// passthrough threshold return the chunk bit-identical, without copying.
func TestScalePCMFullVolumePassthrough(t *testing.T) {
	chunk := s16Chunk(100, -100, 32767, -32768)

	for _, volume := range []float64{0.999, 1.0} {
		out := ScalePCM(chunk, 2, volume)
		assert.Equal(t, chunk, out)
		assert.Same(t, &chunk[0], &out[0], "passthrough must not copy")
	}
}

// TestScalePCMSilence verifies volumes at or below the silence threshold
// yield an all-zero chunk of the same length.
func TestScalePCMSilence(t *testing.T) {
	chunk := s16Chunk(100, -100, 32767, -32768)

	for _, volume := range []float64{0.001, 0.0} {
		out := ScalePCM(chunk, 2, volume)
		require.Len(t, out, len(chunk))
		for i, b := range out {
			assert.Zero(t, b, "byte %d", i)
		}
	}
}

// TestScalePCMSilenceUnsigned8Bit verifies 8-bit silence sits at the
// unsigned bias value, not at zero.
func TestScalePCMSilenceUnsigned8Bit(t *testing.T) {
	out := ScalePCM([]byte{0, 50, 200, 255}, 1, 0)

	assert.Equal(t, []byte{128, 128, 128, 128}, out)
}

func TestScalePCMHalfVolume(t *testing.T) {
	out := ScalePCM(s16Chunk(1000, -1000, 0), 2, 0.5)

	assert.Equal(t, s16Chunk(500, -500, 0), out)
}

// TestScalePCMClamps verifies scaled samples cannot leave the sample range.
func TestScalePCMClamps(t *testing.T) {
	out := ScalePCM(s16Chunk(32767, -32768), 2, 0.9)

	first := int16(binary.LittleEndian.Uint16(out))
	second := int16(binary.LittleEndian.Uint16(out[2:]))
	assert.LessOrEqual(t, first, int16(32767))
	assert.GreaterOrEqual(t, second, int16(-32768))
}

func TestScalePCMDoesNotModifyInput(t *testing.T) {
	chunk := s16Chunk(1000, -1000)
	backup := append([]byte(nil), chunk...)

	ScalePCM(chunk, 2, 0.5)

	assert.Equal(t, backup, chunk)
}

// TestScalePCM24Bit exercises the sign extension of 24-bit samples.
func TestScalePCM24Bit(t *testing.T) {
	// -1000 in 24-bit little-endian two's complement.
	chunk := []byte{0x18, 0xfc, 0xff}

	out := ScalePCM(chunk, 3, 0.5)

	sample := int32(uint32(out[0]) | uint32(out[1])<<8 | uint32(out[2])<<16)
	sample = sample << 8 >> 8
	assert.Equal(t, int32(-500), sample)
}

// TestScalePCMBadWidth verifies unusable widths pass the chunk through
// rather than corrupting it.
func TestScalePCMBadWidth(t *testing.T) {
	chunk := []byte{1, 2, 3, 4}

	assert.Equal(t, chunk, ScalePCM(chunk, 0, 0.5))
	assert.Equal(t, chunk, ScalePCM(chunk, 5, 0.5))
	assert.Equal(t, chunk, ScalePCM([]byte{1, 2, 3}, 2, 0.5))
}
