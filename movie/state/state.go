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

// Package state implements the state-snapshot codec (C8): a self-describing
// byte string binding a savestate to a project and a track position, with
// enough redundancy (a movie hash, an outer integrity hash) that a restore
// can be rejected outright rather than silently desynchronising playback.
package state

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/jetsetilly/rerecord/curated"
	"github.com/jetsetilly/rerecord/movie/controls"
	"github.com/jetsetilly/rerecord/movie/pollcount"
	"github.com/jetsetilly/rerecord/movie/track"
)

const (
	idHashSize    = sha256.Size
	frameSize     = 8
	counterSize   = 4
	lagCountSize  = 8
	movieHashSize = sha256.Size
	outerHashSize = sha256.Size
)

// lagCountReservedBit is masked off on load per spec.md §4.7 ("high bit
// reserved/masked on load").
const lagCountReservedBit = uint64(1) << 63

// Size returns the total encoded length of a state snapshot for the
// current build (independent of track length: poll counters are fixed
// width).
func Size() int {
	return idHashSize + frameSize + counterSize*controls.NumIndices + lagCountSize + movieHashSize + outerHashSize
}

func writeSnapshot(h hash.Hash, s controls.Snapshot) {
	var buf [2]byte
	for slot := 0; slot < controls.SystemControls; slot++ {
		binary.BigEndian.PutUint16(buf[:], uint16(s.System(slot)))
		h.Write(buf[:])
	}
	for p := 0; p < controls.MaxPorts; p++ {
		for c := 0; c < controls.MaxControllersPerPort; c++ {
			for k := 0; k < controls.ControllerControls; k++ {
				binary.BigEndian.PutUint16(buf[:], uint16(s.Control(p, c, k)))
				h.Write(buf[:])
			}
		}
	}
}

// movieHash computes the SHA-256 over every prior frame's canonical
// subframes (indices before firstSubframe) followed by, for each control
// in ascending flat order, the values that would have been polled so far
// in the current frame according to that control's poll count.
func movieHash(tr *track.Track, frame, firstSubframe int, counters *pollcount.Table) [32]byte {
	h := sha256.New()

	for i := 0; i < firstSubframe; i++ {
		writeSnapshot(h, tr.SubframeAt(i))
	}

	k := tr.SubframesInFrame(frame)
	var buf [2]byte
	for flat := 0; flat < controls.NumIndices; flat++ {
		idx := controls.IndexFromFlat(flat)
		polls := counters.Polls(flat)
		for p := 0; p < polls; p++ {
			at := p
			if k > 0 && at >= k {
				at = k - 1
			}
			var v int16
			if k > 0 {
				v = tr.SubframeAt(firstSubframe + at).At(idx)
			}
			binary.BigEndian.PutUint16(buf[:], uint16(v))
			h.Write(buf[:])
		}
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Encode produces a self-describing state-snapshot byte string for the
// given bridge position, per spec.md §4.7.
func Encode(projectID string, tr *track.Track, frame, firstSubframe int, counters *pollcount.Table, lagFrameCount int) []byte {
	out := make([]byte, 0, Size())

	idHash := sha256.Sum256([]byte(projectID))
	out = append(out, idHash[:]...)

	var frameBuf [frameSize]byte
	binary.BigEndian.PutUint64(frameBuf[:], uint64(frame))
	out = append(out, frameBuf[:]...)

	var counterBuf [counterSize]byte
	for flat := 0; flat < controls.NumIndices; flat++ {
		binary.BigEndian.PutUint32(counterBuf[:], counters.Raw(flat))
		out = append(out, counterBuf[:]...)
	}

	var lagBuf [lagCountSize]byte
	binary.BigEndian.PutUint64(lagBuf[:], uint64(lagFrameCount)&^lagCountReservedBit)
	out = append(out, lagBuf[:]...)

	mh := movieHash(tr, frame, firstSubframe, counters)
	out = append(out, mh[:]...)

	outer := sha256.Sum256(out)
	out = append(out, outer[:]...)

	return out
}

// Restore validates data against projectID and tr, and on success returns
// the frame, first-subframe, lag-frame count and poll-counter table it
// describes. It never mutates tr.
func Restore(data []byte, projectID string, tr *track.Track) (frame, firstSubframe, lagFrameCount int, counters pollcount.Table, err error) {
	if len(data) != Size() {
		err = curated.Errorf(curated.CorruptMovie, "state snapshot has wrong length")
		return
	}

	pos := 0
	gotIDHash := data[pos : pos+idHashSize]
	pos += idHashSize

	wantIDHash := sha256.Sum256([]byte(projectID))
	if string(gotIDHash) != string(wantIDHash[:]) {
		err = curated.Errorf(curated.HashMismatch, "project id")
		return
	}

	outerGiven := data[len(data)-outerHashSize:]
	outerWant := sha256.Sum256(data[:len(data)-outerHashSize])
	if string(outerGiven) != string(outerWant[:]) {
		err = curated.Errorf(curated.HashMismatch, "outer integrity hash")
		return
	}

	frame = int(binary.BigEndian.Uint64(data[pos : pos+frameSize]))
	pos += frameSize

	for flat := 0; flat < controls.NumIndices; flat++ {
		counters.SetRaw(flat, binary.BigEndian.Uint32(data[pos:pos+counterSize]))
		pos += counterSize
	}

	lagFrameCount = int(binary.BigEndian.Uint64(data[pos:pos+lagCountSize]) &^ lagCountReservedBit)
	pos += lagCountSize

	var gotMovieHash [32]byte
	copy(gotMovieHash[:], data[pos:pos+movieHashSize])
	pos += movieHashSize

	if at, ok := tr.FirstSubframeOfFrame(frame); ok {
		firstSubframe = at
	} else {
		firstSubframe = tr.Length()
	}

	wantMovieHash := movieHash(tr, frame, firstSubframe, &counters)
	if gotMovieHash != wantMovieHash {
		err = curated.Errorf(curated.HashMismatch, "movie hash does not match the current track")
		return
	}

	return frame, firstSubframe, lagFrameCount, counters, nil
}
