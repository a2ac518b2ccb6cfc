// Package domain implements raw PCM volume scaling.
package domain

import (
	"encoding/binary"
)

// Volume thresholds where scaling short-circuits.
const (
	// fullVolumeThreshold: at or above this the chunk passes through untouched.
	fullVolumeThreshold = 0.999

	// silenceThreshold: at or below this the chunk becomes silence directly.
	silenceThreshold = 0.001
)

// ScalePCM multiplies every sample in chunk by volume and clamps to the
// sample range. Samples are little-endian; width is bytes per sample.
// 8-bit audio is unsigned (bias 128), wider widths are signed.
//
// Volumes >= 0.999 return chunk unmodified (bit-identical passthrough).
// Volumes <= 0.001 return a silence buffer of the same length without
// touching the samples.
func ScalePCM(chunk []byte, width int, volume float64) []byte {
	if volume >= fullVolumeThreshold {
		return chunk
	}
	if width < 1 || width > 4 || len(chunk)%width != 0 {
		return chunk
	}
	if volume <= silenceThreshold {
		return silenceBuffer(len(chunk), width)
	}

	out := make([]byte, len(chunk))
	switch width {
	case 1:
		// Unsigned samples centered on 128.
		for i, b := range chunk {
			scaled := int(float64(int(b)-128)*volume) + 128
			out[i] = byte(clampInt(scaled, 0, 255))
		}
	case 2:
		for i := 0; i+1 < len(chunk); i += 2 {
			sample := int16(binary.LittleEndian.Uint16(chunk[i:]))
			scaled := clampInt(int(float64(sample)*volume), -32768, 32767)
			binary.LittleEndian.PutUint16(out[i:], uint16(int16(scaled)))
		}
	case 3:
		for i := 0; i+2 < len(chunk); i += 3 {
			sample := int32(uint32(chunk[i]) | uint32(chunk[i+1])<<8 | uint32(chunk[i+2])<<16)
			// Sign-extend 24-bit to 32-bit.
			sample = sample << 8 >> 8
			scaled := clampInt(int(float64(sample)*volume), -8388608, 8388607)
			out[i] = byte(scaled)
			out[i+1] = byte(scaled >> 8)
			out[i+2] = byte(scaled >> 16)
		}
	case 4:
		for i := 0; i+3 < len(chunk); i += 4 {
			sample := int32(binary.LittleEndian.Uint32(chunk[i:]))
			scaled := clampInt64(int64(float64(sample)*volume), -2147483648, 2147483647)
			binary.LittleEndian.PutUint32(out[i:], uint32(int32(scaled)))
		}
	}
	return out
}

// silenceBuffer returns an all-silence chunk: zero bytes for signed widths,
// the 128 bias value for unsigned 8-bit.
func silenceBuffer(length, width int) []byte {
	out := make([]byte, length)
	if width == 1 {
		for i := range out {
			out[i] = 128
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
