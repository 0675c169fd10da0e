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

// Package ports is the process-wide, immutable-after-init registry mapping
// each port type to its device metadata and its (decoder, encoder) pair
// over the external text syntax of §4.1/§6. One implementation of Codec is
// registered per PortType; the registry itself never mutates after the
// package's init() functions have run.
package ports

import (
	"github.com/jetsetilly/rerecord/movie/controls"
)

// PortType enumerates the kinds of controller port the bridge understands.
type PortType int

const (
	NONE PortType = iota
	GAMEPAD
	MULTITAP
	MOUSE
	SUPERSCOPE
	JUSTIFIER
	JUSTIFIERS
)

// String names a PortType, also used as its on-disk member name (§4.6
// "port1", "port2" values).
func (p PortType) String() string {
	switch p {
	case NONE:
		return "none"
	case GAMEPAD:
		return "gamepad"
	case MULTITAP:
		return "multitap"
	case MOUSE:
		return "mouse"
	case SUPERSCOPE:
		return "superscope"
	case JUSTIFIER:
		return "justifier"
	case JUSTIFIERS:
		return "justifiers"
	default:
		return "unknown"
	}
}

// ParsePortType is the inverse of PortType.String.
func ParsePortType(s string) (PortType, bool) {
	for _, p := range []PortType{NONE, GAMEPAD, MULTITAP, MOUSE, SUPERSCOPE, JUSTIFIER, JUSTIFIERS} {
		if p.String() == s {
			return p, true
		}
	}
	return NONE, false
}

// DeviceKind identifies what, if anything, occupies one device slot of a
// port.
type DeviceKind int

const (
	DeviceNone DeviceKind = iota
	DeviceGamepad
	DeviceMouse
	DeviceScope
	DeviceJustifier
)

// Info is the static device metadata for one PortType.
type Info struct {
	// DeviceCount is the number of controller slots this port type
	// occupies (1..controls.MaxControllersPerPort).
	DeviceCount int

	// Devices gives the device kind of each occupied slot.
	Devices [controls.MaxControllersPerPort]DeviceKind

	// ValidAsPort1 reports whether the original system allows this port
	// type to be plugged into port 1 (generic/controllerdata.hpp's
	// per-port-type legality flag).
	ValidAsPort1 bool
}

// Codec decodes and encodes one port's field of the external text form
// (§4.1). Decode scans the field beginning at pos in line and returns the
// position of the next field separator (or len(line) if this was the last
// field); it must not read past that position. Encode writes exactly the
// content of this port's field (no leading/trailing '|').
type Codec interface {
	Decode(line string, pos int, version int, out *controls.Snapshot, port int, info Info) (next int, err error)
	Encode(in *controls.Snapshot, port int, info Info) string
}

var (
	infos  = make(map[PortType]Info)
	codecs = make(map[PortType]Codec)
)

// Register installs the device metadata and codec for a PortType. It is
// called from this package's init() function and is not
// safe to call once the registry is in use.
func Register(p PortType, info Info, codec Codec) {
	infos[p] = info
	codecs[p] = codec
}

// Lookup returns the metadata and codec registered for p.
func Lookup(p PortType) (Info, Codec, bool) {
	info, ok := infos[p]
	if !ok {
		return Info{}, nil, false
	}
	return info, codecs[p], true
}

func init() {
	Register(NONE, Info{DeviceCount: 0, ValidAsPort1: true}, noneCodec{})

	Register(GAMEPAD, Info{
		DeviceCount:  1,
		Devices:      [controls.MaxControllersPerPort]DeviceKind{DeviceGamepad},
		ValidAsPort1: true,
	}, gamepadCodec{})

	Register(MULTITAP, Info{
		DeviceCount: 4,
		Devices: [controls.MaxControllersPerPort]DeviceKind{
			DeviceGamepad, DeviceGamepad, DeviceGamepad, DeviceGamepad,
		},
		ValidAsPort1: true,
	}, multitapCodec{})

	Register(MOUSE, Info{
		DeviceCount:  1,
		Devices:      [controls.MaxControllersPerPort]DeviceKind{DeviceMouse},
		ValidAsPort1: false,
	}, analogCodec{kind: DeviceMouse})

	Register(SUPERSCOPE, Info{
		DeviceCount:  1,
		Devices:      [controls.MaxControllersPerPort]DeviceKind{DeviceScope},
		ValidAsPort1: false,
	}, analogCodec{kind: DeviceScope})

	Register(JUSTIFIER, Info{
		DeviceCount:  1,
		Devices:      [controls.MaxControllersPerPort]DeviceKind{DeviceJustifier},
		ValidAsPort1: false,
	}, analogCodec{kind: DeviceJustifier})

	Register(JUSTIFIERS, Info{
		DeviceCount:  2,
		Devices:      [controls.MaxControllersPerPort]DeviceKind{DeviceJustifier, DeviceJustifier},
		ValidAsPort1: false,
	}, justifiersCodec{})
}
