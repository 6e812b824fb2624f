package playlist

import (
	"encoding/binary"
	"math/rand"
	"time"

	cryptorand "crypto/rand"
)

var random = rand.New(rand.NewSource(trueRandSeed()))

// Meme.
func trueRandSeed() (seed int64) {
	err := binary.Read(cryptorand.Reader, binary.LittleEndian, &seed)
	if err == nil {
		return
	}
	return time.Now().UnixNano()
}

// Shuffle returns a uniformly random permutation of [0, length) using
// Fisher-Yates.
func Shuffle(length int) []int {
	if length < 0 {
		length = 0
	}

	order := make([]int, length)
	for i := range order {
		order[i] = i
	}

	for i := 0; i < length-1; i++ {
		j := i + random.Intn(length-i)
		order[i], order[j] = order[j], order[i]
	}

	return order
}

// ShuffleOrder is a cached permutation of list indices. It is only rebuilt
// when the length of the list changes, so editing a list in place keeps the
// order stable.
type ShuffleOrder []int

// Ensure regenerates the order if it was built for a different length. It
// returns true if the order was regenerated.
func (o *ShuffleOrder) Ensure(length int) bool {
	if len(*o) == length && *o != nil {
		return false
	}
	*o = Shuffle(length)
	return true
}

// Position returns the position of the list index within the order, or -1.
func (o ShuffleOrder) Position(index int) int {
	for pos, ix := range o {
		if ix == index {
			return pos
		}
	}
	return -1
}

// Step moves delta positions away from the list index within the order,
// wrapping around both ends, and returns the list index found there. An index
// missing from the order is treated as position -1.
func (o ShuffleOrder) Step(index, delta int) int {
	if len(o) == 0 {
		return -1
	}

	pos := o.Position(index) + delta
	if pos >= len(o) {
		pos = 0
	}
	if pos < 0 {
		pos = len(o) - 1
	}

	return o[pos]
}
