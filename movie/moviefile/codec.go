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

package moviefile

import (
	"archive/zip"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"

	"github.com/jetsetilly/rerecord/curated"
	"github.com/jetsetilly/rerecord/logger"
	"github.com/jetsetilly/rerecord/movie/bridge"
	"github.com/jetsetilly/rerecord/movie/ports"
	"github.com/jetsetilly/rerecord/movie/state"
	"github.com/jetsetilly/rerecord/movie/track"
)

// NewDocumentFromBridge populates the fields a bridge can supply directly
// (spec.md §4.6 "Save contract": "Serialize from the current bridge
// state."). The caller fills in the remaining metadata, and a Savestate
// bundle if one is wanted, before calling Save.
func NewDocumentFromBridge(b *bridge.Bridge) *Document {
	return &Document{
		ProjectID:     b.ProjectID(),
		RerecordCount: b.RerecordCount(),
		Input:         b.Track(),
	}
}

// Save writes doc to path on fs as a compressed archive, per spec.md §4.6.
// The archive is written to a temporary file and renamed into place only
// on success, so a failed save leaves no partial file (spec.md §5).
func Save(fs afero.Fs, path string, doc *Document) error {
	if doc.Input == nil && doc.Savestate == nil {
		return curated.Errorf(curated.InvalidArgument, "document has neither an input track nor a savestate")
	}

	tmp := path + ".tmp"
	f, err := fs.Create(tmp)
	if err != nil {
		return curated.Errorf(curated.IOFailure, err)
	}

	if err := write(f, doc); err != nil {
		f.Close()
		fs.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		fs.Remove(tmp)
		return curated.Errorf(curated.IOFailure, err)
	}

	if err := fs.Rename(tmp, path); err != nil {
		fs.Remove(tmp)
		return curated.Errorf(curated.IOFailure, err)
	}

	logger.Logf(logger.Allow, "moviefile", "saved %s", path)
	return nil
}

func write(w io.Writer, doc *Document) error {
	zw := zip.NewWriter(w)

	if err := writeText(zw, memberVersion, strconv.Itoa(DocumentVersion)); err != nil {
		return err
	}
	if err := writeText(zw, memberSystemID, doc.SystemID); err != nil {
		return err
	}
	if err := writeText(zw, memberCoreVersion, doc.CoreVersion); err != nil {
		return err
	}
	if err := writeText(zw, memberGameType, doc.GameType.String()); err != nil {
		return err
	}
	if err := writeText(zw, memberPort1, doc.Port1.String()); err != nil {
		return err
	}
	if err := writeText(zw, memberPort2, doc.Port2.String()); err != nil {
		return err
	}
	if err := writeText(zw, memberProjectID, doc.ProjectID); err != nil {
		return err
	}
	if err := writeText(zw, memberRerecords, doc.RerecordCount); err != nil {
		return err
	}

	if doc.RomSHA256 != nil {
		if err := writeText(zw, memberRomSHA256, hex.EncodeToString(doc.RomSHA256[:])); err != nil {
			return err
		}
	}
	if doc.SlotASHA256 != nil {
		if err := writeText(zw, memberSlotASHA256, hex.EncodeToString(doc.SlotASHA256[:])); err != nil {
			return err
		}
	}
	if doc.SlotBSHA256 != nil {
		if err := writeText(zw, memberSlotBSHA256, hex.EncodeToString(doc.SlotBSHA256[:])); err != nil {
			return err
		}
	}
	for name, h := range doc.XMLSHA256 {
		if err := writeText(zw, name+xmlSHA256Suffix, hex.EncodeToString(h[:])); err != nil {
			return err
		}
	}

	if doc.GameName != "" {
		if err := writeText(zw, memberGameName, doc.GameName); err != nil {
			return err
		}
	}
	if len(doc.Authors) > 0 {
		if err := writeText(zw, memberAuthors, strings.Join(doc.Authors, "\n")); err != nil {
			return err
		}
	}

	for name, data := range doc.SRAM {
		if err := writeBinary(zw, movieSRAMPrefix+name, data, zip.Deflate); err != nil {
			return err
		}
	}

	if err := writeText(zw, memberRTCSecond, strconv.Itoa(doc.RTCSecond)); err != nil {
		return err
	}
	if err := writeText(zw, memberRTCSubsecond, strconv.Itoa(doc.RTCSubsecond)); err != nil {
		return err
	}
	if err := writeText(zw, memberMovieRTCSecond, strconv.Itoa(doc.MovieRTCSecond)); err != nil {
		return err
	}
	if err := writeText(zw, memberMovieRTCSubsecond, strconv.Itoa(doc.MovieRTCSubsecond)); err != nil {
		return err
	}

	if doc.Input != nil {
		encoded, err := encodeInput(doc.Input, doc.Port1, doc.Port2)
		if err != nil {
			return err
		}
		if err := writeBinary(zw, memberInput, encoded, zip.Store); err != nil {
			return err
		}
	}

	if doc.Savestate != nil {
		s := doc.Savestate
		if err := writeBinary(zw, memberSavestate, s.Blob, zip.Deflate); err != nil {
			return err
		}
		if err := writeBinary(zw, memberHostMemory, s.HostMemory, zip.Deflate); err != nil {
			return err
		}
		if err := writeBinary(zw, memberScreenshot, s.Screenshot, zip.Deflate); err != nil {
			return err
		}
		if err := writeBinary(zw, memberMovieState, s.MovieState, zip.Store); err != nil {
			return err
		}
		for name, data := range s.SRAM {
			if err := writeBinary(zw, sramPrefix+name, data, zip.Deflate); err != nil {
				return err
			}
		}
	}

	if err := writeBinary(zw, memberRRData, doc.RRData, zip.Store); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return curated.Errorf(curated.IOFailure, err)
	}
	return nil
}

func writeText(zw *zip.Writer, name, content string) error {
	w, err := zw.Create(name)
	if err != nil {
		return curated.Errorf(curated.IOFailure, err)
	}
	if _, err := io.WriteString(w, content); err != nil {
		return curated.Errorf(curated.IOFailure, err)
	}
	return nil
}

func writeBinary(zw *zip.Writer, name string, data []byte, method uint16) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
	if err != nil {
		return curated.Errorf(curated.IOFailure, err)
	}
	if _, err := w.Write(data); err != nil {
		return curated.Errorf(curated.IOFailure, err)
	}
	return nil
}

func encodeInput(tr *track.Track, port1, port2 ports.PortType) ([]byte, error) {
	var plain bytes.Buffer
	for i := 0; i < tr.Length(); i++ {
		line, err := ports.EncodeLine(tr.SubframeAt(i), port1, port2, LineVersion)
		if err != nil {
			return nil, err
		}
		plain.WriteString(line)
		plain.WriteByte('\n')
	}

	var compressed bytes.Buffer
	zw, err := zstd.NewWriter(&compressed)
	if err != nil {
		return nil, curated.Errorf(curated.IOFailure, err)
	}
	if _, err := zw.Write(plain.Bytes()); err != nil {
		zw.Close()
		return nil, curated.Errorf(curated.IOFailure, err)
	}
	if err := zw.Close(); err != nil {
		return nil, curated.Errorf(curated.IOFailure, err)
	}
	return compressed.Bytes(), nil
}

func decodeInput(data []byte, port1, port2 ports.PortType) (*track.Track, error) {
	zr, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, curated.Errorf(curated.CorruptMovie, err)
	}
	defer zr.Close()

	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, curated.Errorf(curated.CorruptMovie, err)
	}

	tr := track.New()
	lines := strings.Split(strings.TrimRight(string(plain), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return tr, nil
	}
	for _, line := range lines {
		s, err := ports.DecodeLine(line, port1, port2, LineVersion)
		if err != nil {
			return nil, err
		}
		tr.Append(s)
	}
	return tr, nil
}

// Load reads and parses the movie file at path on fs.
func Load(fs afero.Fs, path string) (*Document, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, curated.Errorf(curated.IOFailure, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, curated.Errorf(curated.IOFailure, err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, curated.Errorf(curated.CorruptMovie, err)
	}

	members := make(map[string]*zip.File, len(zr.File))
	for _, zf := range zr.File {
		members[zf.Name] = zf
	}

	readText := func(name string) (string, bool, error) {
		zf, ok := members[name]
		if !ok {
			return "", false, nil
		}
		rc, err := zf.Open()
		if err != nil {
			return "", true, curated.Errorf(curated.IOFailure, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return "", true, curated.Errorf(curated.IOFailure, err)
		}
		return string(b), true, nil
	}

	readBinary := func(name string) ([]byte, bool, error) {
		zf, ok := members[name]
		if !ok {
			return nil, false, nil
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, true, curated.Errorf(curated.IOFailure, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil, true, curated.Errorf(curated.IOFailure, err)
		}
		return b, true, nil
	}

	requireText := func(name string) (string, error) {
		v, ok, err := readText(name)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", curated.Errorf(curated.CorruptMovie, fmt.Sprintf("missing required member %q", name))
		}
		return v, nil
	}

	doc := &Document{}

	if _, err := requireText(memberVersion); err != nil {
		return nil, err
	}
	if doc.SystemID, err = requireText(memberSystemID); err != nil {
		return nil, err
	}
	if doc.CoreVersion, err = requireText(memberCoreVersion); err != nil {
		return nil, err
	}

	gt, err := requireText(memberGameType)
	if err != nil {
		return nil, err
	}
	gameType, ok := ParseGameType(gt)
	if !ok {
		return nil, curated.Errorf(curated.CorruptMovie, fmt.Sprintf("unknown gametype %q", gt))
	}
	doc.GameType = gameType

	p1s, err := requireText(memberPort1)
	if err != nil {
		return nil, err
	}
	p1, ok := ports.ParsePortType(p1s)
	if !ok {
		return nil, curated.Errorf(curated.BadPortField, p1s)
	}
	doc.Port1 = p1

	p2s, err := requireText(memberPort2)
	if err != nil {
		return nil, err
	}
	p2, ok := ports.ParsePortType(p2s)
	if !ok {
		return nil, curated.Errorf(curated.BadPortField, p2s)
	}
	doc.Port2 = p2

	if doc.ProjectID, err = requireText(memberProjectID); err != nil {
		return nil, err
	}
	if doc.RerecordCount, err = requireText(memberRerecords); err != nil {
		return nil, err
	}

	readHash := func(name string) (*[32]byte, error) {
		v, ok, err := readText(name)
		if err != nil || !ok {
			return nil, err
		}
		raw, err := hex.DecodeString(v)
		if err != nil || len(raw) != 32 {
			return nil, curated.Errorf(curated.CorruptMovie, fmt.Sprintf("malformed hash member %q", name))
		}
		var h [32]byte
		copy(h[:], raw)
		return &h, nil
	}

	if doc.RomSHA256, err = readHash(memberRomSHA256); err != nil {
		return nil, err
	}
	if doc.SlotASHA256, err = readHash(memberSlotASHA256); err != nil {
		return nil, err
	}
	if doc.SlotBSHA256, err = readHash(memberSlotBSHA256); err != nil {
		return nil, err
	}

	for name := range members {
		if strings.HasSuffix(name, xmlSHA256Suffix) {
			h, err := readHash(name)
			if err != nil {
				return nil, err
			}
			if h != nil {
				if doc.XMLSHA256 == nil {
					doc.XMLSHA256 = make(map[string][32]byte)
				}
				doc.XMLSHA256[strings.TrimSuffix(name, xmlSHA256Suffix)] = *h
			}
		}
	}

	if doc.GameName, _, err = readText(memberGameName); err != nil {
		return nil, err
	}
	if authors, ok, err := readText(memberAuthors); err != nil {
		return nil, err
	} else if ok && authors != "" {
		doc.Authors = strings.Split(authors, "\n")
	}

	for name, zf := range members {
		if strings.HasPrefix(name, movieSRAMPrefix) {
			rc, err := zf.Open()
			if err != nil {
				return nil, curated.Errorf(curated.IOFailure, err)
			}
			b, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, curated.Errorf(curated.IOFailure, err)
			}
			if doc.SRAM == nil {
				doc.SRAM = make(map[string][]byte)
			}
			doc.SRAM[strings.TrimPrefix(name, movieSRAMPrefix)] = b
		}
	}

	parseInt := func(name string) (int, error) {
		v, err := requireText(name)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, curated.Errorf(curated.CorruptMovie, fmt.Sprintf("malformed %q", name))
		}
		return n, nil
	}

	if doc.RTCSecond, err = parseInt(memberRTCSecond); err != nil {
		return nil, err
	}
	if doc.RTCSubsecond, err = parseInt(memberRTCSubsecond); err != nil {
		return nil, err
	}
	if doc.MovieRTCSecond, err = parseInt(memberMovieRTCSecond); err != nil {
		return nil, err
	}
	if doc.MovieRTCSubsecond, err = parseInt(memberMovieRTCSubsecond); err != nil {
		return nil, err
	}

	if inputData, ok, err := readBinary(memberInput); err != nil {
		return nil, err
	} else if ok {
		doc.Input, err = decodeInput(inputData, doc.Port1, doc.Port2)
		if err != nil {
			return nil, err
		}
	}

	if savestateBlob, hasSavestate, err := readBinary(memberSavestate); err != nil {
		return nil, err
	} else if hasSavestate {
		s := &Savestate{Blob: savestateBlob}
		if s.HostMemory, _, err = readBinary(memberHostMemory); err != nil {
			return nil, err
		}
		if s.Screenshot, _, err = readBinary(memberScreenshot); err != nil {
			return nil, err
		}
		if s.MovieState, _, err = readBinary(memberMovieState); err != nil {
			return nil, err
		}
		for name, zf := range members {
			if strings.HasPrefix(name, sramPrefix) {
				rc, err := zf.Open()
				if err != nil {
					return nil, curated.Errorf(curated.IOFailure, err)
				}
				b, err := io.ReadAll(rc)
				rc.Close()
				if err != nil {
					return nil, curated.Errorf(curated.IOFailure, err)
				}
				if s.SRAM == nil {
					s.SRAM = make(map[string][]byte)
				}
				s.SRAM[strings.TrimPrefix(name, sramPrefix)] = b
			}
		}
		doc.Savestate = s
	}

	if doc.Input == nil && doc.Savestate == nil {
		return nil, curated.Errorf(curated.CorruptMovie, "document has neither an input track nor a savestate")
	}

	if rrdata, ok, err := readBinary(memberRRData); err != nil {
		return nil, err
	} else if !ok {
		return nil, curated.Errorf(curated.CorruptMovie, fmt.Sprintf("missing required member %q", memberRRData))
	} else {
		doc.RRData = rrdata
	}

	logger.Logf(logger.Allow, "moviefile", "loaded %s", path)
	return doc, nil
}

// LoadBridge loads the movie file at path and wires it into a fresh,
// read-only bridge, per spec.md §4.6's Load contract: the input track is
// verified to begin with FRAME_SYNC=1 (bridge.Open's job), and if the
// document carries a savestate, its movie-state member is additionally
// restored into the bridge's position and counters.
func LoadBridge(fs afero.Fs, path string) (*bridge.Bridge, *Document, error) {
	doc, err := Load(fs, path)
	if err != nil {
		return nil, nil, err
	}

	tr := doc.Input
	if tr == nil {
		tr = track.New()
	}

	b, err := bridge.Open(doc.ProjectID, doc.RerecordCount, tr)
	if err != nil {
		return nil, nil, err
	}

	if doc.Savestate != nil {
		frame, firstSubframe, lag, counters, err := state.Restore(doc.Savestate.MovieState, doc.ProjectID, tr)
		if err != nil {
			return nil, nil, err
		}
		b.RestoreRaw(frame, firstSubframe, lag, counters)
	}

	return b, doc, nil
}
