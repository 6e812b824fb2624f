package muse

import (
	"math"
	"sync/atomic"
)

// PlayState wraps the current playback state. It is written by the mpv event
// goroutine and read from anywhere.
type PlayState struct {
	btr   uint64
	pos   uint64
	rem   uint64
	pause uint32
}

// NewPlayState creates a paused state with unknown times.
func NewPlayState() *PlayState {
	ps := &PlayState{}
	ps.reset()
	ps.updatePause(true)
	return ps
}

func (tc *PlayState) reset() {
	tc.updatePos(math.NaN())
	tc.updateRem(math.NaN())
	tc.updateBitrate(0)
}

func (tc *PlayState) updatePos(pos float64) {
	atomic.StoreUint64(&tc.pos, math.Float64bits(pos))
}

func (tc *PlayState) updateRem(rem float64) {
	atomic.StoreUint64(&tc.rem, math.Float64bits(rem))
}

func (tc *PlayState) updateBitrate(btr float64) {
	atomic.StoreUint64(&tc.btr, math.Float64bits(btr))
}

func (tc *PlayState) updatePause(pause bool) {
	var v uint32
	if pause {
		v = 1
	}
	atomic.StoreUint32(&tc.pause, v)
}

// Bitrate reads the bitrate atomically.
func (tc *PlayState) Bitrate() float64 {
	return math.Float64frombits(atomic.LoadUint64(&tc.btr))
}

// PlayTime reads the playback timestamps atomically.
func (tc *PlayState) PlayTime() (pos, rem float64) {
	pos = math.Float64frombits(atomic.LoadUint64(&tc.pos))
	rem = math.Float64frombits(atomic.LoadUint64(&tc.rem))
	return
}

// Paused reads the pause state atomically.
func (tc *PlayState) Paused() bool {
	return atomic.LoadUint32(&tc.pause) == 1
}
