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

// Command moviedemo drives movie/bridge.Bridge end-to-end with a fake
// emulator satisfying spec.md §6's consumed interface, recording a
// deterministic session to a movie file and an accompanying WAV dump.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jetsetilly/rerecord/curated"
	"github.com/jetsetilly/rerecord/emulation"
	"github.com/jetsetilly/rerecord/logger"
	"github.com/jetsetilly/rerecord/movie/bridge"
	"github.com/jetsetilly/rerecord/movie/controllermap"
	"github.com/jetsetilly/rerecord/movie/controls"
	"github.com/jetsetilly/rerecord/movie/moviefile"
	"github.com/jetsetilly/rerecord/movie/ports"
	"github.com/jetsetilly/rerecord/movie/rrdata"

	"github.com/spf13/afero"
)

const wavFormat = 1 // linear PCM, per go-audio/wav's Encoder convention

// fakeEmulator is a minimal stand-in for a real console, satisfying
// emulation.Emulator purely to drive the bridge through a session. It
// produces a deterministic video/audio pattern so the demo's output is
// reproducible frame to frame.
type fakeEmulator struct {
	b     *bridge.Bridge
	frame int
}

func (f *fakeEmulator) RunOneFrame() error {
	f.frame++
	return nil
}

func (f *fakeEmulator) Poll(port, device, button int) (int16, error) {
	return f.b.Poll(controls.Index{Port: port, Controller: device, Control: button}), nil
}

func (f *fakeEmulator) Reset(delayCycles int) error { return nil }

func (f *fakeEmulator) SaveState() ([]byte, error) { return nil, curated.Errorf(curated.NotImplemented, "moviedemo") }

func (f *fakeEmulator) LoadState(data []byte) error { return curated.Errorf(curated.NotImplemented, "moviedemo") }

var _ emulation.Emulator = (*fakeEmulator)(nil)

// wavSink adapts a go-audio/wav.Encoder to emulation.DumpSink, recording
// the fake emulator's audio output alongside the movie.
type wavSink struct {
	enc *wav.Encoder
	buf *audio.IntBuffer
}

func newWavSink(enc *wav.Encoder) *wavSink {
	return &wavSink{
		enc: enc,
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 2, SampleRate: 31400},
			SourceBitDepth: 16,
		},
	}
}

func (w *wavSink) VideoRefresh(frame []byte) {}

func (w *wavSink) AudioSample(left, right int16) {
	w.buf.Data = []int{int(left), int(right)}
	if err := w.enc.Write(w.buf); err != nil {
		logger.Logf(logger.Allow, "moviedemo", "audio write failed: %v", err)
	}
}

var _ emulation.DumpSink = (*wavSink)(nil)

func run() error {
	moviePath := flag.String("movie", "demo.rrm", "movie file to write")
	wavPath := flag.String("wav", "demo.wav", "audio dump to write")
	frames := flag.Int("frames", 60, "number of frames to record")
	flag.Parse()

	wavFile, err := os.Create(*wavPath)
	if err != nil {
		return curated.Errorf(curated.IOFailure, err)
	}
	defer wavFile.Close()

	enc := wav.NewEncoder(wavFile, 31400, 16, 2, wavFormat)
	defer enc.Close()
	sink := newWavSink(enc)

	b := bridge.New("moviedemo-session", false)
	mapping := controllermap.New(ports.GAMEPAD, ports.GAMEPAD)
	idx := controls.Index{Port: 0, Controller: 0, Control: 4} // logical 1's "a" button

	emu := &fakeEmulator{b: b}

	for i := 0; i < *frames; i++ {
		var live controls.Snapshot
		if i%4 == 0 {
			live.SetAt(idx, 1)
		}
		b.SetLiveControls(live)
		b.AdvanceSubframe(true)

		if _, err := emu.Poll(idx.Port, idx.Controller, idx.Control); err != nil {
			return err
		}
		if err := emu.RunOneFrame(); err != nil {
			return err
		}

		sink.VideoRefresh(nil)
		sink.AudioSample(int16(i%128), int16(-(i % 128)))
	}

	if _, _, ok := mapping.PhysicalOfLogical(0); !ok {
		return curated.Errorf(curated.SystemCorrupt, "no logical controller 0")
	}

	rrset := rrdata.New()
	if _, err := rrset.Generate(); err != nil {
		return err
	}
	var rrbuf bytes.Buffer
	if _, err := rrset.Serialize(&rrbuf); err != nil {
		return err
	}

	doc := moviefile.NewDocumentFromBridge(b)
	doc.SystemID = "moviedemo"
	doc.CoreVersion = "0"
	doc.GameType = moviefile.GameTypeNTSC
	doc.Port1 = ports.GAMEPAD
	doc.Port2 = ports.GAMEPAD
	doc.RRData = rrbuf.Bytes()

	if err := moviefile.Save(afero.NewOsFs(), *moviePath, doc); err != nil {
		return err
	}

	fmt.Printf("wrote %d frames to %s (audio: %s)\n", *frames, *moviePath, *wavPath)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
