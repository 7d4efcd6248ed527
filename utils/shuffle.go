package utils

import (
	"encoding/binary"
	"math/rand"
	"strconv"

	"github.com/zeebo/blake3"
)

// KeyedRand returns a PRNG seeded from a keyed hash of the parts, so the same
// inputs always give the same sequence.
func KeyedRand(seed uint64, parts ...string) *rand.Rand {
	h := blake3.New()
	h.Write([]byte(strconv.FormatUint(seed, 10)))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(sum[:8]))))
}

// KeyedShuffle permutes n elements in place with a Fisher-Yates shuffle
// driven by KeyedRand.
func KeyedShuffle(n int, swap func(i, j int), seed uint64, parts ...string) {
	r := KeyedRand(seed, parts...)
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}
