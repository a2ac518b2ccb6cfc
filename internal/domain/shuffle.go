// Package domain implements the deterministic playlist shuffle.
package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"strings"
)

// Linear congruential recurrence constants (Knuth's MMIX parameters).
// These are load-bearing: the same seed must produce the same permutation
// across runs and platforms.
const (
	lcgMultiplier uint64 = 6364136223846793005
	lcgIncrement  uint64 = 1442695040888963407
)

// NormalizeSeed turns user seed input into the seed actually used.
// A non-empty trimmed string is used verbatim; an empty or whitespace-only
// seed is replaced with a fresh random 64-bit value in decimal form.
func NormalizeSeed(seed string) string {
	trimmed := strings.TrimSpace(seed)
	if trimmed != "" {
		return trimmed
	}
	return randomSeed()
}

func randomSeed() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand read failures are effectively impossible; fall back
		// to a fixed seed rather than panic.
		return "1"
	}
	return strconv.FormatUint(binary.BigEndian.Uint64(b[:]), 10)
}

// seedToState derives the initial 64-bit LCG state from a seed string:
// the first 8 bytes of the SHA-256 digest, big-endian, forced non-zero.
func seedToState(seed string) uint64 {
	digest := sha256.Sum256([]byte(seed))
	state := binary.BigEndian.Uint64(digest[:8])
	if state == 0 {
		return 1
	}
	return state
}

func nextState(state uint64) uint64 {
	return state*lcgMultiplier + lcgIncrement
}

// SeededShuffle returns a seed-deterministic permutation of items.
// The input must already be in canonical order for reproducibility; the
// input slice is not modified.
//
// Algorithm: Fisher-Yates from the last element down to 1, advancing the
// LCG state once per step and using state mod (i+1) as the swap partner.
func SeededShuffle(items []string, seed string) []string {
	shuffled := make([]string, len(items))
	copy(shuffled, items)
	if len(shuffled) < 2 {
		return shuffled
	}

	state := seedToState(seed)
	for i := len(shuffled) - 1; i > 0; i-- {
		state = nextState(state)
		j := int(state % uint64(i+1))
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
