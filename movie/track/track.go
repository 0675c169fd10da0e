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

// Package track implements the input track: a growable ordered sequence
// of controls.Snapshot, indexed by subframe, with incremental frame
// counting and the read/write truncation policy the bridge drives.
package track

import "github.com/jetsetilly/rerecord/movie/controls"

// Track is a growable sequence of subframe snapshots.
type Track struct {
	subframes []controls.Snapshot

	// frame count cache, invalidated by any write that could move a frame
	// boundary (§4.2).
	cacheValid       bool
	frameCountCached int
}

// New returns an empty Track.
func New() *Track {
	return &Track{cacheValid: true, frameCountCached: 0}
}

// Length returns the number of subframes in the track.
func (tr *Track) Length() int {
	return len(tr.subframes)
}

// FrameCount returns the number of snapshots in the track with
// FRAME_SYNC=1 (invariant I2).
func (tr *Track) FrameCount() int {
	if tr.cacheValid {
		return tr.frameCountCached
	}
	tr.rebuildCache()
	return tr.frameCountCached
}

func (tr *Track) rebuildCache() {
	n := 0
	for _, s := range tr.subframes {
		if s.IsFrameSync() {
			n++
		}
	}
	tr.frameCountCached = n
	tr.cacheValid = true
}

func (tr *Track) invalidate() {
	tr.cacheValid = false
}

// SubframeAt returns the snapshot at subframe index i.
func (tr *Track) SubframeAt(i int) controls.Snapshot {
	return tr.subframes[i]
}

// SetSubframeAt overwrites the snapshot at subframe index i. The caller
// (the bridge) is responsible for enforcing the edit guard of §4.4 before calling this.
func (tr *Track) SetSubframeAt(i int, s controls.Snapshot) {
	tr.subframes[i] = s
	tr.invalidate()
}

// Append adds a snapshot to the end of the track, incrementing the frame
// count if it begins a new frame.
func (tr *Track) Append(s controls.Snapshot) {
	tr.subframes = append(tr.subframes, s)
	if tr.cacheValid && s.IsFrameSync() {
		tr.frameCountCached++
	} else if tr.cacheValid && !s.IsFrameSync() {
		// frame count unaffected; cache remains valid
	} else {
		tr.invalidate()
	}
}

// firstSubframeOfFrame returns the subframe index at which frame f (1
// based) begins, and true if frame f exists in the track.
func (tr *Track) firstSubframeOfFrame(f int) (int, bool) {
	if f < 1 {
		return 0, false
	}
	n := 0
	for i, s := range tr.subframes {
		if s.IsFrameSync() {
			n++
			if n == f {
				return i, true
			}
		}
	}
	return 0, false
}

// SubframesInFrame counts the consecutive snapshots starting at frame f's
// first subframe up to (but not including) the next FRAME_SYNC=1
// snapshot. Returns 0 if f is beyond the track.
func (tr *Track) SubframesInFrame(f int) int {
	start, ok := tr.firstSubframeOfFrame(f)
	if !ok {
		return 0
	}
	n := 1
	for i := start + 1; i < len(tr.subframes); i++ {
		if tr.subframes[i].IsFrameSync() {
			break
		}
		n++
	}
	return n
}

// ReadSubframe returns the snapshot at frame f, logical sub-index s. If s
// is beyond the frame's recorded subframes, the last available one is
// returned (polls beyond recorded data repeat the final recorded value).
// If frame f does not exist, a default sync snapshot is returned.
func (tr *Track) ReadSubframe(f, s int) controls.Snapshot {
	start, ok := tr.firstSubframeOfFrame(f)
	if !ok {
		return controls.Sync()
	}
	k := tr.SubframesInFrame(f)
	idx := s
	if idx >= k {
		idx = k - 1
	}
	return tr.subframes[start+idx]
}

// Truncate shortens the track to n subframes and recomputes the frame
// count.
func (tr *Track) Truncate(n int) {
	if n < len(tr.subframes) {
		tr.subframes = tr.subframes[:n]
	}
	tr.invalidate()
	tr.rebuildCache()
}

// FirstSubframeOfFrame exposes firstSubframeOfFrame for the state-snapshot
// codec, which needs to know where a restored frame starts in the track.
func (tr *Track) FirstSubframeOfFrame(f int) (int, bool) {
	return tr.firstSubframeOfFrame(f)
}
