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

package track_test

import (
	"testing"

	"github.com/jetsetilly/rerecord/movie/controls"
	"github.com/jetsetilly/rerecord/movie/track"
	"github.com/jetsetilly/rerecord/test"
)

func sync(set func(*controls.Snapshot)) controls.Snapshot {
	s := controls.Sync()
	if set != nil {
		set(&s)
	}
	return s
}

func cont(set func(*controls.Snapshot)) controls.Snapshot {
	var s controls.Snapshot
	if set != nil {
		set(&s)
	}
	return s
}

func TestAppendAndFrameCount(t *testing.T) {
	tr := track.New()
	test.ExpectEquality(t, tr.Length(), 0)
	test.ExpectEquality(t, tr.FrameCount(), 0)

	tr.Append(sync(nil))
	tr.Append(cont(nil))
	tr.Append(sync(nil))

	test.ExpectEquality(t, tr.Length(), 3)
	test.ExpectEquality(t, tr.FrameCount(), 2)
}

func TestSubframesInFrame(t *testing.T) {
	tr := track.New()
	tr.Append(sync(nil))
	tr.Append(cont(nil))
	tr.Append(cont(nil))
	tr.Append(sync(nil))

	test.ExpectEquality(t, tr.SubframesInFrame(1), 3)
	test.ExpectEquality(t, tr.SubframesInFrame(2), 1)
	test.ExpectEquality(t, tr.SubframesInFrame(3), 0)
}

func TestReadSubframeRepeatsLast(t *testing.T) {
	tr := track.New()
	tr.Append(sync(func(s *controls.Snapshot) { s.SetControl(0, 0, 4, 1) }))
	tr.Append(cont(func(s *controls.Snapshot) { s.SetControl(0, 0, 4, 2) }))

	test.ExpectEquality(t, tr.ReadSubframe(1, 0).Control(0, 0, 4), int16(1))
	test.ExpectEquality(t, tr.ReadSubframe(1, 1).Control(0, 0, 4), int16(2))
	// beyond recorded subframes: repeats the last one
	test.ExpectEquality(t, tr.ReadSubframe(1, 5).Control(0, 0, 4), int16(2))
}

func TestReadSubframeMissingFrame(t *testing.T) {
	tr := track.New()
	s := tr.ReadSubframe(1, 0)
	test.ExpectEquality(t, s.IsFrameSync(), true)
	test.ExpectEquality(t, s, controls.Sync())
}

func TestTruncate(t *testing.T) {
	tr := track.New()
	tr.Append(sync(nil))
	tr.Append(cont(nil))
	tr.Append(sync(nil))
	tr.Append(cont(nil))

	tr.Truncate(2)
	test.ExpectEquality(t, tr.Length(), 2)
	test.ExpectEquality(t, tr.FrameCount(), 1)
}

func TestSetSubframeAt(t *testing.T) {
	tr := track.New()
	tr.Append(sync(nil))
	tr.SetSubframeAt(0, sync(func(s *controls.Snapshot) { s.SetControl(0, 0, 0, 9) }))
	test.ExpectEquality(t, tr.SubframeAt(0).Control(0, 0, 0), int16(9))
}
