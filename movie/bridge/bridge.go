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

// Package bridge is the movie logic bridge (C5): the state machine that
// mediates between the emulator's per-poll input requests and the input
// track, maintaining per-control poll counters, data-ready flags,
// lag-frame accounting and delayed-reset bookkeeping. It is the central
// algorithm of the engine; see §4.4 of the specification this package
// implements.
package bridge

import (
	"github.com/jetsetilly/rerecord/curated"
	"github.com/jetsetilly/rerecord/logger"
	"github.com/jetsetilly/rerecord/movie/controls"
	"github.com/jetsetilly/rerecord/movie/pollcount"
	"github.com/jetsetilly/rerecord/movie/track"
)

// NoReset is the sentinel GetResetDelay returns when no reset has been
// committed for the current frame.
const NoReset = -1

// Bridge owns the input track and poll-counter table for the lifetime of
// a loaded movie, and drives the frame/subframe state machine.
type Bridge struct {
	track    *track.Track
	counters pollcount.Table

	frame         int
	firstSubframe int
	lagFrameCount int
	readonly      bool

	liveControls controls.Snapshot

	resetDelayThisFrame int
	resetCommitPending  bool

	rerecordCount string
	projectID     string
}

// New creates a Bridge over an empty track, in the given mode.
func New(projectID string, readonly bool) *Bridge {
	return &Bridge{
		track:               track.New(),
		readonly:            readonly,
		resetDelayThisFrame: NoReset,
		projectID:           projectID,
	}
}

// Open wraps an existing track (as loaded by the movie file codec) in a
// Bridge, positioned at frame 0, read-only, with zeroed counters — the
// load contract of §4.6.
func Open(projectID string, rerecordCount string, tr *track.Track) (*Bridge, error) {
	if tr.Length() > 0 && !tr.SubframeAt(0).IsFrameSync() {
		return nil, curated.Errorf(curated.CorruptMovie, "first subframe is not frame-synced")
	}
	return &Bridge{
		track:               tr,
		readonly:            true,
		resetDelayThisFrame: NoReset,
		projectID:           projectID,
		rerecordCount:       rerecordCount,
	}, nil
}

// Track exposes the underlying track to borrow-only consumers (the movie
// file and state-snapshot codecs). Callers must not mutate it directly.
func (b *Bridge) Track() *track.Track {
	return b.track
}

// Frame returns the current frame number (1-based once advanced past
// frame 0).
func (b *Bridge) Frame() int {
	return b.frame
}

// FirstSubframe returns the track index of the current frame's leading
// snapshot. Undefined (0) at frame 0.
func (b *Bridge) FirstSubframe() int {
	return b.firstSubframe
}

// LagFrameCount returns the number of frames whose poll counters were all
// zero at frame end.
func (b *Bridge) LagFrameCount() int {
	return b.lagFrameCount
}

// Readonly reports whether the bridge is in read-only (replay) mode.
func (b *Bridge) Readonly() bool {
	return b.readonly
}

// LiveControls returns the current working snapshot the UI edits between
// frames.
func (b *Bridge) LiveControls() controls.Snapshot {
	return b.liveControls
}

// SetLiveControls replaces the current working snapshot. Called by the UI
// after applying autohold/autofire and any reset request, before the next
// AdvanceSubframe.
func (b *Bridge) SetLiveControls(s controls.Snapshot) {
	b.liveControls = s
}

// ProjectID returns the opaque project identifier this bridge is bound
// to.
func (b *Bridge) ProjectID() string {
	return b.projectID
}

// RerecordCount returns the movie's own decimal rerecord count string
// (distinct from the process-wide rrdata identity set).
func (b *Bridge) RerecordCount() string {
	return b.rerecordCount
}

// SetRerecordCount sets the movie's own decimal rerecord count string.
func (b *Bridge) SetRerecordCount(s string) {
	b.rerecordCount = s
}

// GetResetDelay returns the reset delay committed for the current frame,
// or NoReset if no reset was requested this frame.
func (b *Bridge) GetResetDelay() int {
	return b.resetDelayThisFrame
}

// lag reports whether the frame that just ended (tracked by b.counters,
// not yet zeroed) was a lag frame: every non-system poll counter zero and
// no reset pending for the next frame. Frame 0 is never lag. Reset frames
// are explicitly not lag (§9 design note): a pending reset is treated as
// if a non-system poll had occurred.
func (b *Bridge) lag(resetPending bool) bool {
	if b.frame == 0 {
		return false
	}
	return b.counters.AllZero() && !resetPending
}

// AdvanceSubframe is called by the emulator before each poll pass.
// isFirstSubframeOfFrame indicates whether this is the first subframe of
// a new frame. The caller must have already updated LiveControls
// (autohold/autofire applied, reset fields possibly set) before calling.
// It returns the live controls for the caller to apply.
func (b *Bridge) AdvanceSubframe(isFirstSubframeOfFrame bool) controls.Snapshot {
	if !isFirstSubframeOfFrame {
		b.counters.ClearFrameStartPending()
		return b.liveControls
	}

	resetPending := b.liveControls.ResetRequested()
	lag := b.lag(resetPending)

	if lag {
		b.lagFrameCount++
	}

	if !b.readonly && lag {
		s := b.liveControls
		s.SetFrameSync(true)
		b.track.Append(s)
		logger.Logf(logger.Allow, "movie", "appended lag frame %d", b.frame+1)
	}

	b.counters.NextFrame()

	if b.frame == 0 {
		b.firstSubframe = 0
	} else {
		b.firstSubframe = b.firstSubframe + b.track.SubframesInFrame(b.frame)
	}
	b.frame++

	if !b.readonly && resetPending {
		b.resetDelayThisFrame = b.liveControls.ResetDelay()
		if b.firstSubframe < b.track.Length() {
			// the first subframe of this frame already exists (a frame
			// left over from before truncation); commit the reset fields onto it directly and the commit is
			// done immediately.
			snap := b.track.SubframeAt(b.firstSubframe)
			snap.SetReset(b.resetDelayThisFrame)
			b.track.SetSubframeAt(b.firstSubframe, snap)
			b.liveControls.ClearReset()
		} else {
			// the first subframe doesn't exist yet; Poll's append-new-frame
			// branch will copy live_controls, reset fields included, the
			// first time this frame is polled. Defer clearing until then.
			b.resetCommitPending = true
		}
	} else {
		b.resetDelayThisFrame = NoReset
	}

	return b.liveControls
}

// NextPollNumber returns the poll count for idx without clearing its
// data-ready bit (lsnes movie.hpp's next_poll_number: inspect how far
// into the frame a control is without disturbing poll bookkeeping).
func (b *Bridge) NextPollNumber(idx controls.Index) int {
	return b.counters.Polls(idx.Flat())
}

// Poll is called for every input read. It returns the polled value for
// idx, advancing the poll-counter table and, in read/write mode, the
// track.
func (b *Bridge) Poll(idx controls.Index) int16 {
	flat := idx.Flat()
	p := b.counters.GetPoll(flat)

	if b.readonly {
		if b.firstSubframe >= b.track.Length() {
			b.counters.Increment(flat)
			return 0
		}
		k := b.track.SubframesInFrame(b.frame)
		if k <= 0 {
			b.counters.Increment(flat)
			return 0
		}
		at := p
		if at >= k {
			at = k - 1
		}
		v := b.track.SubframeAt(b.firstSubframe + at).At(idx)
		b.counters.Increment(flat)
		return v
	}

	if b.firstSubframe >= b.track.Length() {
		s := b.liveControls
		s.SetFrameSync(true)
		b.track.Append(s)
		if b.resetCommitPending {
			b.resetCommitPending = false
			b.liveControls.ClearReset()
		}
		b.counters.Increment(flat)
		return s.At(idx)
	}

	k := b.track.SubframesInFrame(b.frame)
	v := b.liveControls.At(idx)

	if p < k {
		for s := p; s < k; s++ {
			snap := b.track.SubframeAt(b.firstSubframe + s)
			snap.SetAt(idx, v)
			b.track.SetSubframeAt(b.firstSubframe+s, snap)
		}
		b.counters.Increment(flat)
		return v
	}

	last := b.track.SubframeAt(b.track.Length() - 1).At(idx)
	if v != last {
		for b.track.Length() <= b.firstSubframe+p {
			clone := b.track.SubframeAt(b.track.Length() - 1)
			clone.SetFrameSync(false)
			b.track.Append(clone)
		}
		snap := b.track.SubframeAt(b.firstSubframe + p)
		snap.SetAt(idx, v)
		b.track.SetSubframeAt(b.firstSubframe+p, snap)
	}

	b.counters.Increment(flat)
	return v
}

// EditSubframe enforces the edit guard of §4.4: a subframe at index i may
// be modified only if i >= first_subframe + counters[control].polls for
// the control being changed.
func (b *Bridge) EditSubframe(i int, idx controls.Index, v int16) error {
	if i < b.firstSubframe+b.counters.Polls(idx.Flat()) {
		return curated.Errorf(curated.CannotEditPast, i, idx.Flat())
	}
	snap := b.track.SubframeAt(i)
	snap.SetAt(idx, v)
	b.track.SetSubframeAt(i, snap)
	return nil
}

// EnterReadOnly switches the bridge to read-only (replay) mode without
// touching the track or the playhead position. Unlike EnterReadWrite,
// this direction never needs truncation: replay never grows the track.
func (b *Bridge) EnterReadOnly() {
	b.readonly = true
	b.resetCommitPending = false
}

// EnterReadWrite transitions the bridge from read-only to read/write
// mode, applying §4.4's truncation policy. It is a no-op if the bridge is
// already in read/write mode.
func (b *Bridge) EnterReadWrite() {
	if !b.readonly {
		return
	}
	defer func() { b.readonly = false }()

	if b.firstSubframe >= b.track.Length() {
		for b.track.FrameCount() < b.frame-1 {
			b.track.Append(controls.Sync())
		}
		return
	}

	l := b.firstSubframe + b.counters.MaxPolls()
	b.track.Truncate(l)

	// Positions beyond the current frame's first subframe may still carry
	// a FRAME_SYNC bit left over from their previous life as the start of
	// a later frame that truncation has now folded into this one; they
	// are continuation subframes of the restored frame now; I5 requires
	// they read as such.
	for i := b.firstSubframe + 1; i < l; i++ {
		snap := b.track.SubframeAt(i)
		if snap.IsFrameSync() {
			snap.SetFrameSync(false)
			b.track.SetSubframeAt(i, snap)
		}
	}

	k := l - b.firstSubframe
	for flat := 0; flat < controls.NumIndices; flat++ {
		polls := b.counters.Polls(flat)
		if polls == 0 || polls >= k {
			continue
		}
		idx := controls.IndexFromFlat(flat)
		lastVal := b.track.SubframeAt(b.firstSubframe + polls - 1).At(idx)
		for s := polls; s < k; s++ {
			snap := b.track.SubframeAt(b.firstSubframe + s)
			snap.SetAt(idx, lastVal)
			b.track.SetSubframeAt(b.firstSubframe+s, snap)
		}
	}

	logger.Logf(logger.Allow, "movie", "entered read/write mode, truncated to %d subframes", l)
}

// Counters exposes the poll-counter table for the state-snapshot codec.
func (b *Bridge) Counters() *pollcount.Table {
	return &b.counters
}

// RestoreRaw installs frame/firstSubframe/lag/counters directly, as
// decoded by the state-snapshot codec, and places the bridge in read-only
// mode at that position (§4.7 restore contract). If the bridge was in
// read/write mode beforehand, it is immediately returned to read/write
// mode once restored, applying §4.4's truncation policy — loading a
// savestate while recording always truncates the track's future, the
// same instant a human would expect the playhead to jump.
func (b *Bridge) RestoreRaw(frame, firstSubframe, lagFrameCount int, counters pollcount.Table) {
	wasReadWrite := !b.readonly

	b.frame = frame
	b.firstSubframe = firstSubframe
	b.lagFrameCount = lagFrameCount
	b.counters = counters
	b.readonly = true
	b.resetDelayThisFrame = NoReset
	b.resetCommitPending = false

	if wasReadWrite {
		b.EnterReadWrite()
	}
}
