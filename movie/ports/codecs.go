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

package ports

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jetsetilly/rerecord/curated"
	"github.com/jetsetilly/rerecord/movie/controls"
)

// fieldEnd returns the index of the next '|' at or after pos, or len(line)
// if there isn't one. Decoders use it to find the end of their own field
// without reading into the next one.
func fieldEnd(line string, pos int) int {
	if i := strings.IndexByte(line[pos:], '|'); i >= 0 {
		return pos + i
	}
	return len(line)
}

// gamepadGlyphs gives the pressed-state character for each of the 12
// gamepad control slots, in the order Up, Down, Left, Right, A, B, X, Y,
// L, R, Select, Start (§6).
var gamepadGlyphs = [controls.ControllerControls]byte{
	'U', 'D', 'L', 'R', 'A', 'B', 'X', 'Y', 'l', 'r', 'E', 'S',
}

func encodeGamepad(s *controls.Snapshot, port, controller int) string {
	var b [controls.ControllerControls]byte
	for i := 0; i < controls.ControllerControls; i++ {
		if s.Control(port, controller, i) != 0 {
			b[i] = gamepadGlyphs[i]
		} else {
			b[i] = ' '
		}
	}
	return string(b[:])
}

func decodeGamepad(field string, out *controls.Snapshot, port, controller int) error {
	if len(field) != controls.ControllerControls {
		return curated.Errorf(curated.BadPortField, field)
	}
	for i := 0; i < controls.ControllerControls; i++ {
		switch field[i] {
		case ' ':
			out.SetControl(port, controller, i, 0)
		case gamepadGlyphs[i]:
			out.SetControl(port, controller, i, 1)
		default:
			return curated.Errorf(curated.BadPortField, field)
		}
	}
	return nil
}

// analog device slot roles: axis X, axis Y, then two digital buttons.
const (
	analogX = 0
	analogY = 1
	analogButton1 = 2
	analogButton2 = 3
)

var analogButtonGlyphs = [2]byte{'T', 'C'}

func encodeAnalog(s *controls.Snapshot, port, controller int) string {
	var btns [2]byte
	for i, slot := range []int{analogButton1, analogButton2} {
		if s.Control(port, controller, slot) != 0 {
			btns[i] = analogButtonGlyphs[i]
		} else {
			btns[i] = ' '
		}
	}
	return fmt.Sprintf("%d,%d,%s", s.Control(port, controller, analogX), s.Control(port, controller, analogY), string(btns[:]))
}

func decodeAnalog(field string, out *controls.Snapshot, port, controller int) error {
	parts := strings.SplitN(field, ",", 3)
	if len(parts) != 3 || len(parts[2]) != 2 {
		return curated.Errorf(curated.BadPortField, field)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return curated.Errorf(curated.BadPortField, field)
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return curated.Errorf(curated.BadPortField, field)
	}
	out.SetControl(port, controller, analogX, int16(x))
	out.SetControl(port, controller, analogY, int16(y))
	for i, slot := range []int{analogButton1, analogButton2} {
		switch parts[2][i] {
		case ' ':
			out.SetControl(port, controller, slot, 0)
		case analogButtonGlyphs[i]:
			out.SetControl(port, controller, slot, 1)
		default:
			return curated.Errorf(curated.BadPortField, field)
		}
	}
	return nil
}

type noneCodec struct{}

func (noneCodec) Decode(line string, pos int, version int, out *controls.Snapshot, port int, info Info) (int, error) {
	return fieldEnd(line, pos), nil
}

func (noneCodec) Encode(in *controls.Snapshot, port int, info Info) string {
	return ""
}

type gamepadCodec struct{}

func (gamepadCodec) Decode(line string, pos int, version int, out *controls.Snapshot, port int, info Info) (int, error) {
	end := fieldEnd(line, pos)
	if err := decodeGamepad(line[pos:end], out, port, 0); err != nil {
		return pos, err
	}
	return end, nil
}

func (gamepadCodec) Encode(in *controls.Snapshot, port int, info Info) string {
	return encodeGamepad(in, port, 0)
}

type multitapCodec struct{}

func (multitapCodec) Decode(line string, pos int, version int, out *controls.Snapshot, port int, info Info) (int, error) {
	end := fieldEnd(line, pos)
	devices := strings.Split(line[pos:end], "/")
	if len(devices) != info.DeviceCount {
		return pos, curated.Errorf(curated.BadPortField, line[pos:end])
	}
	for c, d := range devices {
		if err := decodeGamepad(d, out, port, c); err != nil {
			return pos, err
		}
	}
	return end, nil
}

func (multitapCodec) Encode(in *controls.Snapshot, port int, info Info) string {
	parts := make([]string, info.DeviceCount)
	for c := range parts {
		parts[c] = encodeGamepad(in, port, c)
	}
	return strings.Join(parts, "/")
}

type analogCodec struct {
	kind DeviceKind
}

func (analogCodec) Decode(line string, pos int, version int, out *controls.Snapshot, port int, info Info) (int, error) {
	end := fieldEnd(line, pos)
	if err := decodeAnalog(line[pos:end], out, port, 0); err != nil {
		return pos, err
	}
	return end, nil
}

func (analogCodec) Encode(in *controls.Snapshot, port int, info Info) string {
	return encodeAnalog(in, port, 0)
}

type justifiersCodec struct{}

func (justifiersCodec) Decode(line string, pos int, version int, out *controls.Snapshot, port int, info Info) (int, error) {
	end := fieldEnd(line, pos)
	devices := strings.Split(line[pos:end], "/")
	if len(devices) != info.DeviceCount {
		return pos, curated.Errorf(curated.BadPortField, line[pos:end])
	}
	for c, d := range devices {
		if err := decodeAnalog(d, out, port, c); err != nil {
			return pos, err
		}
	}
	return end, nil
}

func (justifiersCodec) Encode(in *controls.Snapshot, port int, info Info) string {
	parts := make([]string, info.DeviceCount)
	for c := range parts {
		parts[c] = encodeAnalog(in, port, c)
	}
	return strings.Join(parts, "/")
}
