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

package controllermap

import (
	"strconv"
	"strings"

	"github.com/jetsetilly/rerecord/curated"
	"github.com/jetsetilly/rerecord/movie/controls"
)

// buttonIndex names each gamepad control slot, matching the glyph order
// movie/ports uses for the external text form (§6): Up, Down, Left,
// Right, A, B, X, Y, L, R, Select, Start.
var buttonIndex = map[string]int{
	"up": 0, "down": 1, "left": 2, "right": 3,
	"a": 4, "b": 5, "x": 6, "y": 7,
	"l": 8, "r": 9, "select": 10, "start": 11,
}

// ResolveButton resolves a 1-based logical controller ID and a button
// name (spec.md §6's "+controller<N><button>" family of commands) to the
// control index it addresses, following generic/controller.cpp's
// "<logical>+<button>" naming convention.
func (m *Mapping) ResolveButton(logicalOneBased int, button string) (controls.Index, error) {
	control, ok := buttonIndex[strings.ToLower(button)]
	if !ok {
		return controls.Index{}, curated.Errorf(curated.InvalidArgument, button)
	}
	port, controller, ok := m.PhysicalOfLogical(logicalOneBased - 1)
	if !ok {
		return controls.Index{}, curated.Errorf(curated.InvalidArgument, logicalOneBased)
	}
	return controls.Index{Port: port, Controller: controller, Control: control}, nil
}

// ParseAutofirePattern parses the textual "button-list per frame"
// specification of spec.md §4.8's `autofire <buttons|->…` command: one
// whitespace-separated token per frame, "-" for an empty frame,
// otherwise a comma-separated list of "<logical><button>" entries (e.g.
// "1a,2start"). The result is suitable for AutofireState.SetPattern.
func ParseAutofirePattern(spec string, m *Mapping) ([]controls.Snapshot, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return nil, curated.Errorf(curated.InvalidArgument, "autofire pattern needs at least one frame")
	}

	pattern := make([]controls.Snapshot, 0, len(fields))
	for _, f := range fields {
		var s controls.Snapshot
		if f != "-" {
			for _, tok := range strings.Split(f, ",") {
				idx, err := parseButtonToken(tok, m)
				if err != nil {
					return nil, err
				}
				s.SetAt(idx, 1)
			}
		}
		pattern = append(pattern, s)
	}
	return pattern, nil
}

func parseButtonToken(tok string, m *Mapping) (controls.Index, error) {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	if i == 0 {
		return controls.Index{}, curated.Errorf(curated.InvalidArgument, tok)
	}
	lid, err := strconv.Atoi(tok[:i])
	if err != nil {
		return controls.Index{}, curated.Errorf(curated.InvalidArgument, tok)
	}
	return m.ResolveButton(lid, tok[i:])
}

// AutofireState is the per-frame autofire position tracker. spec.md §9's
// second Open Question notes a divergence between controller.cpp (a
// free-running counter) and mainloop.cpp (a per-frame index reset at
// loop start); the mainloop copy is taken as authoritative, so this
// state is always driven by the bridge's own frame number rather than
// advancing on its own.
type AutofireState struct {
	pattern []controls.Snapshot
}

// NewAutofireState returns a state holding the default pattern: a
// single all-zero snapshot, so Mask never divides by zero.
func NewAutofireState() *AutofireState {
	return &AutofireState{pattern: []controls.Snapshot{{}}}
}

// SetPattern installs a new autofire pattern. An empty pattern is
// normalized to the default single all-zero snapshot (spec.md §9 Open
// Question: "setting an empty autofire pattern").
func (a *AutofireState) SetPattern(pattern []controls.Snapshot) {
	if len(pattern) == 0 {
		pattern = []controls.Snapshot{{}}
	}
	a.pattern = pattern
}

// Mask returns the autofire XOR mask for the given bridge frame number.
func (a *AutofireState) Mask(frame int) controls.Snapshot {
	return a.pattern[frame%len(a.pattern)]
}

// Effective composes live controls with the autohold and autofire masks:
// effective = live XOR autohold XOR autofire_pattern[frame mod length]
// (spec.md §4.8).
func Effective(live, autohold controls.Snapshot, autofire *AutofireState, frame int) controls.Snapshot {
	return live.XOR(autohold).XOR(autofire.Mask(frame))
}
