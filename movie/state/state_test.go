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

package state_test

import (
	"testing"

	"github.com/jetsetilly/rerecord/movie/controls"
	"github.com/jetsetilly/rerecord/movie/pollcount"
	"github.com/jetsetilly/rerecord/movie/state"
	"github.com/jetsetilly/rerecord/movie/track"
	"github.com/jetsetilly/rerecord/test"
)

func buildTrack() *track.Track {
	tr := track.New()

	f1 := controls.Sync()
	f1.SetAt(controls.Index{Control: 4}, 1)
	tr.Append(f1)

	f2 := controls.Sync()
	f2.SetAt(controls.Index{Control: 4}, 3)
	tr.Append(f2)

	cont := f2
	cont.SetFrameSync(false)
	cont.SetAt(controls.Index{Control: 4}, 5)
	tr.Append(cont)

	return tr
}

func TestEncodeRestoreRoundTrip(t *testing.T) {
	tr := buildTrack()

	var counters pollcount.Table
	counters.Increment(controls.Index{Control: 4}.Flat())

	data := state.Encode("project-a", tr, 2, 1, &counters, 4)
	test.ExpectEquality(t, len(data), state.Size())

	frame, firstSubframe, lag, gotCounters, err := state.Restore(data, "project-a", tr)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, frame, 2)
	test.ExpectEquality(t, firstSubframe, 1)
	test.ExpectEquality(t, lag, 4)
	test.ExpectEquality(t, gotCounters.Polls(controls.Index{Control: 4}.Flat()), 1)
}

func TestRestoreRejectsWrongProject(t *testing.T) {
	tr := buildTrack()
	var counters pollcount.Table
	data := state.Encode("project-a", tr, 1, 0, &counters, 0)

	_, _, _, _, err := state.Restore(data, "project-b", tr)
	test.ExpectFailure(t, err)
}

func TestRestoreRejectsTruncatedData(t *testing.T) {
	tr := buildTrack()
	var counters pollcount.Table
	data := state.Encode("project-a", tr, 1, 0, &counters, 0)

	_, _, _, _, err := state.Restore(data[:len(data)-1], "project-a", tr)
	test.ExpectFailure(t, err)
}

func TestRestoreRejectsTrackMismatch(t *testing.T) {
	tr := buildTrack()
	var counters pollcount.Table
	counters.Increment(controls.Index{Control: 4}.Flat())
	data := state.Encode("project-a", tr, 2, 1, &counters, 0)

	other := buildTrack()
	s := other.SubframeAt(1)
	s.SetAt(controls.Index{Control: 4}, 999)
	other.SetSubframeAt(1, s)

	_, _, _, _, err := state.Restore(data, "project-a", other)
	test.ExpectFailure(t, err)
}

func TestRestoreFrontierSave(t *testing.T) {
	tr := buildTrack()
	var counters pollcount.Table
	data := state.Encode("project-a", tr, 3, tr.Length(), &counters, 0)

	_, firstSubframe, _, _, err := state.Restore(data, "project-a", tr)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, firstSubframe, tr.Length())
}
