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

package controls_test

import (
	"testing"

	"github.com/jetsetilly/rerecord/movie/controls"
	"github.com/jetsetilly/rerecord/test"
)

func TestFrameSync(t *testing.T) {
	s := controls.Sync()
	test.ExpectEquality(t, s.IsFrameSync(), true)

	var blank controls.Snapshot
	test.ExpectEquality(t, blank.IsFrameSync(), false)
}

func TestReset(t *testing.T) {
	var s controls.Snapshot
	test.ExpectEquality(t, s.ResetRequested(), false)

	s.SetReset(30007)
	test.ExpectEquality(t, s.ResetRequested(), true)
	test.ExpectEquality(t, s.ResetDelay(), 30007)
	test.ExpectEquality(t, s.System(controls.ResetCyclesHi), int16(3))
	test.ExpectEquality(t, s.System(controls.ResetCyclesLo), int16(7))

	s.ClearReset()
	test.ExpectEquality(t, s.ResetRequested(), false)
	test.ExpectEquality(t, s.ResetDelay(), 0)
}

func TestControlAccessors(t *testing.T) {
	var s controls.Snapshot
	s.SetControl(0, 0, 4, 1)
	s.SetControl(0, 0, 5, 2)
	test.ExpectEquality(t, s.Control(0, 0, 4), int16(1))
	test.ExpectEquality(t, s.Control(0, 0, 5), int16(2))
	test.ExpectEquality(t, s.Control(0, 0, 6), int16(0))

	idx := controls.Index{Port: 0, Controller: 0, Control: 4}
	test.ExpectEquality(t, s.At(idx), int16(1))
	s.SetAt(idx, 9)
	test.ExpectEquality(t, s.Control(0, 0, 4), int16(9))
}

func TestIndexFlatIsDense(t *testing.T) {
	seen := make(map[int]bool)
	for p := 0; p < controls.MaxPorts; p++ {
		for c := 0; c < controls.MaxControllersPerPort; c++ {
			for k := 0; k < controls.ControllerControls; k++ {
				f := controls.Index{Port: p, Controller: c, Control: k}.Flat()
				test.ExpectEquality(t, seen[f], false)
				seen[f] = true
				test.ExpectEquality(t, f >= 0 && f < controls.NumIndices, true)
			}
		}
	}
	test.ExpectEquality(t, len(seen), controls.NumIndices)
}

func TestXOR(t *testing.T) {
	var a, b controls.Snapshot
	a.SetControl(0, 0, 4, 1)
	b.SetControl(0, 0, 4, 1)
	b.SetControl(0, 0, 5, 1)

	x := a.XOR(b)
	test.ExpectEquality(t, x.Control(0, 0, 4), int16(0))
	test.ExpectEquality(t, x.Control(0, 0, 5), int16(1))

	// XOR is its own inverse
	back := x.XOR(b)
	test.ExpectEquality(t, back.Equal(a), true)
}

func TestEqual(t *testing.T) {
	var a, b controls.Snapshot
	a.SetControl(1, 2, 3, 5)
	b.SetControl(1, 2, 3, 5)
	test.ExpectEquality(t, a.Equal(b), true)

	b.SetControl(1, 2, 3, 6)
	test.ExpectEquality(t, a.Equal(b), false)
}

func TestEqualIgnoringFrameSync(t *testing.T) {
	a := controls.Sync()
	a.SetControl(0, 0, 0, 1)

	b := a
	b.SetFrameSync(false)

	test.ExpectEquality(t, a.Equal(b), false)
	test.ExpectEquality(t, a.EqualIgnoringFrameSync(b), true)

	b.SetControl(0, 0, 0, 2)
	test.ExpectEquality(t, a.EqualIgnoringFrameSync(b), false)
}
