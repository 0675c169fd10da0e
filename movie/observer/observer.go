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

// Package observer implements the movie state observer (C10): a
// read-only status projection over a bridge, computed on demand and
// never mutating the engine it reports on.
package observer

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/rerecord/movie/bridge"
	"github.com/jetsetilly/rerecord/movie/controllermap"
	"github.com/jetsetilly/rerecord/movie/controls"
	"github.com/jetsetilly/rerecord/movie/ports"
)

// PollMarker overrides the numeric poll-count display with one of the
// special single-character markers of spec.md §4.9. The engine states
// these name (mid savepoint, mid video-refresh) aren't visible to the
// bridge itself, so the caller supplies the marker.
type PollMarker int

const (
	PollMarkerNone PollMarker = iota
	PollMarkerSavepoint
	PollMarkerVideoRefresh
	PollMarkerFrameStart
)

func (m PollMarker) String() string {
	switch m {
	case PollMarkerSavepoint:
		return "S"
	case PollMarkerVideoRefresh:
		return "V"
	case PollMarkerFrameStart:
		return "0"
	default:
		return ""
	}
}

// Flags are the per-frame engine-mode flags of spec.md §4.9.
type Flags struct {
	Recording bool // true: REC, false: PLAY
	Capturing bool // CAP: a dump is in progress
	Corrupt   bool // CORRUPT: the system has been flagged corrupt
}

func (f Flags) String() string {
	parts := []string{"PLAY"}
	if f.Recording {
		parts[0] = "REC"
	}
	if f.Capturing {
		parts = append(parts, "CAP")
	}
	if f.Corrupt {
		parts = append(parts, "CORRUPT")
	}
	return strings.Join(parts, " ")
}

// Status is a snapshot-style status structure, computed on demand.
type Status struct {
	Frame         int
	PollPosition  string // decimal poll count, or one of S/V/0
	LagFrameCount int
	MovieLength   int // frames recorded so far
	Flags         Flags

	// Controllers holds one textual dump per logical controller, in
	// logical-ID order.
	Controllers []string
}

// Snapshot builds a Status from the current bridge state and the
// already-composed effective controls (live XOR autohold XOR autofire,
// per controllermap.Effective). It is a pure read: neither b nor mapping
// is mutated.
func Snapshot(b *bridge.Bridge, flags Flags, marker PollMarker, mapping *controllermap.Mapping, effective controls.Snapshot) Status {
	pollPos := marker.String()
	if pollPos == "" {
		pollPos = fmt.Sprintf("%d", b.Counters().MaxPolls())
	}

	s := Status{
		Frame:         b.Frame(),
		PollPosition:  pollPos,
		LagFrameCount: b.LagFrameCount(),
		MovieLength:   b.Track().FrameCount(),
		Flags:         flags,
	}

	for lid := 0; ; lid++ {
		port, controller, ok := mapping.PhysicalOfLogical(lid)
		if !ok {
			break
		}
		s.Controllers = append(s.Controllers, dumpController(mapping.DeviceTypeOfLogical(lid), effective, port, controller))
	}

	return s
}

var gamepadButtonNames = [controls.ControllerControls]string{
	"Up", "Down", "Left", "Right", "A", "B", "X", "Y", "L", "R", "Select", "Start",
}

// analog device slot roles, matching movie/ports's codecs.go convention:
// axis X, axis Y, then two digital buttons.
const (
	analogX       = 0
	analogY       = 1
	analogButton1 = 2
	analogButton2 = 3
)

func dumpController(kind ports.DeviceKind, s controls.Snapshot, port, controller int) string {
	switch kind {
	case ports.DeviceGamepad:
		return dumpGamepad(s, port, controller)
	case ports.DeviceMouse, ports.DeviceScope, ports.DeviceJustifier:
		return dumpAnalog(s, port, controller)
	default:
		return "-"
	}
}

func dumpGamepad(s controls.Snapshot, port, controller int) string {
	var pressed []string
	for i, name := range gamepadButtonNames {
		if s.Control(port, controller, i) != 0 {
			pressed = append(pressed, name)
		}
	}
	if len(pressed) == 0 {
		return "-"
	}
	return strings.Join(pressed, "+")
}

func dumpAnalog(s controls.Snapshot, port, controller int) string {
	x := s.Control(port, controller, analogX)
	y := s.Control(port, controller, analogY)
	b1 := s.Control(port, controller, analogButton1) != 0
	b2 := s.Control(port, controller, analogButton2) != 0
	return fmt.Sprintf("%d,%d,%v,%v", x, y, b1, b2)
}
