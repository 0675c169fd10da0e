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

// Package moviefile implements the movie file codec (C7): a logical
// document of game metadata, project identity, an optional savestate
// bundle and the C3 input track, persisted as a compressed archive of
// named member streams, per spec.md §4.6.
package moviefile

import (
	"github.com/jetsetilly/rerecord/movie/ports"
	"github.com/jetsetilly/rerecord/movie/track"
)

// DocumentVersion is written to the "version" member of every document
// this codec produces.
const DocumentVersion = 1

// LineVersion is the §4.1 system-field version used when encoding and
// decoding every "input" member line; this codec always emits the
// FRAME_SYNC/RESET system field, so it is never SystemFieldVersionNone.
const LineVersion = ports.SystemFieldVersionNone + 1

// Member names, per spec.md §4.6's member table.
const (
	memberVersion     = "version"
	memberSystemID    = "systemid"
	memberCoreVersion = "coreversion"
	memberGameType    = "gametype"
	memberPort1       = "port1"
	memberPort2       = "port2"
	memberProjectID   = "projectid"
	memberRerecords   = "rerecords"

	memberRomSHA256   = "rom.sha256"
	memberSlotASHA256 = "slota.sha256"
	memberSlotBSHA256 = "slotb.sha256"
	xmlSHA256Suffix   = "_xml.sha256"

	memberGameName = "gamename"
	memberAuthors  = "authors"

	movieSRAMPrefix = "movie_sram/"
	sramPrefix      = "sram/"

	memberInput      = "input"
	memberSavestate  = "savestate"
	memberHostMemory = "hostmemory"
	memberScreenshot = "screenshot"
	memberMovieState = "moviestate"
	memberRRData     = "rrdata"

	memberRTCSecond         = "rtc.second"
	memberRTCSubsecond      = "rtc.subsecond"
	memberMovieRTCSecond    = "movie_rtc.second"
	memberMovieRTCSubsecond = "movie_rtc.subsecond"
)

// GameType is the enumerated system/region variant of §4.6's "gametype"
// member.
type GameType int

const (
	GameTypeUnknown GameType = iota
	GameTypeNTSC
	GameTypePAL
	GameTypeNTSC50
)

func (g GameType) String() string {
	switch g {
	case GameTypeNTSC:
		return "ntsc"
	case GameTypePAL:
		return "pal"
	case GameTypeNTSC50:
		return "ntsc50"
	default:
		return "unknown"
	}
}

// ParseGameType is the inverse of GameType.String.
func ParseGameType(s string) (GameType, bool) {
	for _, g := range []GameType{GameTypeNTSC, GameTypePAL, GameTypeNTSC50} {
		if g.String() == s {
			return g, true
		}
	}
	return GameTypeUnknown, false
}

// Savestate is the optional bundle of §4.6's "present iff this is a
// savestate" member group.
type Savestate struct {
	// Blob is the emulator's own save_state() output.
	Blob []byte

	// HostMemory is an emulator-defined auxiliary memory dump.
	HostMemory []byte

	// Screenshot is a preview image, opaque to this codec.
	Screenshot []byte

	// MovieState is a movie/state.Encode output binding this savestate to
	// the project and track position it was taken at.
	MovieState []byte

	// SRAM holds the "sram/<name>" members: SRAM contents at the moment
	// the savestate was taken, keyed by chip name.
	SRAM map[string][]byte
}

// Document is the logical content of a movie file, independent of its
// on-disk archive representation.
type Document struct {
	SystemID    string
	CoreVersion string
	GameType    GameType
	Port1       ports.PortType
	Port2       ports.PortType

	ProjectID     string
	RerecordCount string // the "rerecords" member: this movie's own decimal count

	RomSHA256   *[32]byte
	SlotASHA256 *[32]byte
	SlotBSHA256 *[32]byte
	XMLSHA256   map[string][32]byte // keyed by the name preceding "_xml.sha256"

	GameName string
	Authors  []string

	// SRAM holds "movie_sram/<name>" members: the initial SRAM contents
	// the movie was recorded against.
	SRAM map[string][]byte

	RTCSecond      int
	RTCSubsecond   int
	MovieRTCSecond int
	MovieRTCSubsecond int

	// Input is the input track. Required unless Savestate is set.
	Input *track.Track

	Savestate *Savestate

	// RRData is the already zstd-compressed payload produced by
	// (*rrdata.Set).Serialize, written into the "rrdata" member verbatim.
	RRData []byte
}
