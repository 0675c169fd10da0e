// This file is part of rerecord.
//
// rerecord is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// rerecord is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with rerecord.  If not, see <https://www.gnu.org/licenses/>.

// Package pollcount tracks, per control, how many times it has been
// polled since the current frame began, plus a data-ready bit set at
// subframe boundaries and cleared on first read within the current
// polling pass. The combined 32-bit layout (high bit data-ready, low 31
// bits polls) is preserved only where the state-snapshot codec needs an
// exact on-disk word; elsewhere the pair is kept apart (§9 design note).
package pollcount

import "github.com/jetsetilly/rerecord/movie/controls"

const readyBit = uint32(1) << 31

// Table is a poll-counter table: one counter per control index, plus a
// frame-level pending flag for the frame-start system poll.
type Table struct {
	counters       [controls.NumIndices]uint32
	frameStartPend bool
}

// NextFrame zeroes every counter and marks the frame-start poll pending.
func (t *Table) NextFrame() {
	for i := range t.counters {
		t.counters[i] = 0
	}
	t.frameStartPend = true
}

// SetAllReady sets every control's data-ready bit.
func (t *Table) SetAllReady() {
	for i := range t.counters {
		t.counters[i] |= readyBit
	}
}

// ClearFrameStartPending clears the frame-start pending flag, without
// otherwise disturbing the table. Used for continuation subframes, which
// only need to acknowledge the frame-start poll has already happened.
func (t *Table) ClearFrameStartPending() {
	t.frameStartPend = false
}

// FrameStartPending reports whether the frame-start system poll has yet
// to be issued this frame.
func (t *Table) FrameStartPending() bool {
	return t.frameStartPend
}

// Polls returns the number of times idx has been polled so far this
// frame, without consuming its data-ready bit.
func (t *Table) Polls(idx int) int {
	return int(t.counters[idx] &^ readyBit)
}

// Ready reports idx's data-ready bit without clearing it.
func (t *Table) Ready(idx int) bool {
	return t.counters[idx]&readyBit != 0
}

// GetPoll clears idx's data-ready bit and returns its polls value as it
// stood before this call (callers are responsible for incrementing it via
// Increment once they've consumed the read).
func (t *Table) GetPoll(idx int) int {
	p := t.Polls(idx)
	t.counters[idx] &^= readyBit
	return p
}

// Increment adds one to idx's polls count, preserving its data-ready bit.
func (t *Table) Increment(idx int) {
	ready := t.counters[idx] & readyBit
	polls := t.counters[idx]&^readyBit + 1
	t.counters[idx] = polls | ready
}

// MaxPolls returns the largest polls value across every control.
func (t *Table) MaxPolls() int {
	max := 0
	for i := range t.counters {
		if p := int(t.counters[i] &^ readyBit); p > max {
			max = p
		}
	}
	return max
}

// AllZero reports whether every control's polls value is zero. Used by
// the bridge's lag detection (a non-system poll counter is nonzero iff
// the control was polled this frame).
func (t *Table) AllZero() bool {
	for i := range t.counters {
		if t.counters[i]&^readyBit != 0 {
			return false
		}
	}
	return true
}

// Raw returns the combined 32-bit word (high bit data-ready, low 31 bits
// polls) for idx, for the state-snapshot codec's on-disk layout.
func (t *Table) Raw(idx int) uint32 {
	return t.counters[idx]
}

// SetRaw installs a combined 32-bit word for idx, for the state-snapshot
// codec's restore path.
func (t *Table) SetRaw(idx int, word uint32) {
	t.counters[idx] = word
}
