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

// SystemFieldVersion below which the system field carries no output at
// all (the "no output" case of §4.1, for layouts with no system fields to
// emit).
const SystemFieldVersionNone = 0

// encodeSystem writes the leading field of one subframe's text line: an
// "F" marker for frame sync, followed by "R<hi>,<lo>" when a reset is
// requested. ok is false when version requests no system output at all,
// in which case the caller must suppress the field's delimiter too.
func encodeSystem(s *controls.Snapshot, version int) (field string, ok bool) {
	if version == SystemFieldVersionNone {
		return "", false
	}

	var b strings.Builder
	if s.IsFrameSync() {
		b.WriteByte('F')
	}
	if s.ResetRequested() {
		fmt.Fprintf(&b, "R%d,%d", s.System(controls.ResetCyclesHi), s.System(controls.ResetCyclesLo))
	}
	return b.String(), true
}

// decodeSystem parses the leading field of one subframe's text line.
// Older layouts (version == SystemFieldVersionNone) carry no system field
// at all, and every bit defaults to zero.
func decodeSystem(field string, version int, out *controls.Snapshot) error {
	out.SetFrameSync(false)
	out.ClearReset()

	if version == SystemFieldVersionNone {
		return nil
	}

	i := 0
	if i < len(field) && field[i] == 'F' {
		out.SetFrameSync(true)
		i++
	}
	if i < len(field) && field[i] == 'R' {
		rest := field[i+1:]
		parts := strings.SplitN(rest, ",", 2)
		if len(parts) != 2 {
			return curated.Errorf(curated.BadPortField, field)
		}
		hi, err := strconv.Atoi(parts[0])
		if err != nil {
			return curated.Errorf(curated.BadPortField, field)
		}
		lo, err := strconv.Atoi(parts[1])
		if err != nil {
			return curated.Errorf(curated.BadPortField, field)
		}
		out.SetReset(hi*10000 + lo)
		i = len(field)
	}
	if i != len(field) {
		return curated.Errorf(curated.BadPortField, field)
	}
	return nil
}

// EncodeLine renders one subframe as the external text form of §4.1/§6:
// fields separated by '|', the system field first (suppressed, delimiter
// and all, when it has no output), followed by port1's and port2's fields.
func EncodeLine(s controls.Snapshot, port1, port2 PortType, version int) (string, error) {
	var fields []string

	if sys, ok := encodeSystem(&s, version); ok {
		fields = append(fields, sys)
	}

	for i, p := range []PortType{port1, port2} {
		info, codec, found := Lookup(p)
		if !found {
			return "", curated.Errorf(curated.BadPortField, p.String())
		}
		fields = append(fields, codec.Encode(&s, i, info))
	}

	return strings.Join(fields, "|"), nil
}

// DecodeLine parses one subframe from the external text form of
// §4.1/§6, tolerating layouts with no system field (version ==
// SystemFieldVersionNone).
func DecodeLine(line string, port1, port2 PortType, version int) (controls.Snapshot, error) {
	var s controls.Snapshot

	pos := 0
	if version != SystemFieldVersionNone {
		end := fieldEnd(line, pos)
		if err := decodeSystem(line[pos:end], version, &s); err != nil {
			return s, err
		}
		pos = end
		if pos < len(line) && line[pos] == '|' {
			pos++
		}
	}

	for i, p := range []PortType{port1, port2} {
		info, codec, found := Lookup(p)
		if !found {
			return s, curated.Errorf(curated.BadPortField, p.String())
		}
		end, err := codec.Decode(line, pos, version, &s, i, info)
		if err != nil {
			return s, err
		}
		pos = end
		if i == 0 {
			if pos < len(line) && line[pos] == '|' {
				pos++
			} else if pos != len(line) {
				return s, curated.Errorf(curated.BadPortField, line)
			}
		}
	}

	if pos != len(line) {
		return s, curated.Errorf(curated.BadPortField, line)
	}

	return s, nil
}
