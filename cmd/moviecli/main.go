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

// Command moviecli is a terminal front end over movie/bridge.Bridge: a
// thin, literal mapping of spec.md §6's command list onto bridge and
// controllermap calls, not a general command interpreter. Controller
// holds are read as immediate single keypresses via a raw terminal
// (github.com/pkg/term/termios) rather than line-buffered input, toggling
// the controllerh<N><button> hold state a keyboard cannot otherwise
// express without separate press/release events.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/pkg/term/termios"
	"github.com/spf13/afero"

	"github.com/jetsetilly/rerecord/curated"
	"github.com/jetsetilly/rerecord/emulation"
	"github.com/jetsetilly/rerecord/logger"
	"github.com/jetsetilly/rerecord/movie/bridge"
	"github.com/jetsetilly/rerecord/movie/controllermap"
	"github.com/jetsetilly/rerecord/movie/controls"
	"github.com/jetsetilly/rerecord/movie/moviefile"
	"github.com/jetsetilly/rerecord/movie/observer"
	"github.com/jetsetilly/rerecord/movie/ports"
	"github.com/jetsetilly/rerecord/movie/rrdata"
	"github.com/jetsetilly/rerecord/prefs"
)

// rawTerm puts stdin into raw mode (no line buffering, no echo) so a
// single keypress reaches the program immediately, following the same
// termios calls the teacher's easyterm package wraps.
type rawTerm struct {
	saved syscall.Termios
}

func newRawTerm(fd uintptr) (*rawTerm, error) {
	rt := &rawTerm{}
	if err := termios.Tcgetattr(fd, &rt.saved); err != nil {
		return nil, curated.Errorf(curated.IOFailure, err)
	}
	raw := rt.saved
	termios.Cfmakeraw(&raw)
	if err := termios.Tcsetattr(fd, termios.TCIFLUSH, &raw); err != nil {
		return nil, curated.Errorf(curated.IOFailure, err)
	}
	return rt, nil
}

func (rt *rawTerm) restore(fd uintptr) {
	termios.Tcsetattr(fd, termios.TCIFLUSH, &rt.saved)
}

// keymap maps a single keypress to the button token ResolveButton
// expects ("<logical><button>"), covering logical controllers 1 and 2's
// face buttons and d-pad. q is reserved for quit-emulator, space for
// pause-emulator.
var keymap = map[byte]string{
	'w': "1up", 's': "1down", 'a': "1left", 'd': "1right",
	'j': "1b", 'k': "1a", 'u': "1x", 'i': "1y",
	't': "2up", 'g': "2down", 'f': "2left", 'h': "2right",
}

func openBridge(moviePath, projectID string, port1, port2 ports.PortType) (*bridge.Bridge, error) {
	if moviePath != "" {
		if _, err := os.Stat(moviePath); err == nil {
			b, _, err := moviefile.LoadBridge(afero.NewOsFs(), moviePath)
			return b, err
		}
	}
	return bridge.New(projectID, false), nil
}

func loadSettings(path string) (*prefs.Disk, error) {
	d, err := prefs.NewDisk(path)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{"targetfps", "firmwarepath", "rompath", "moviepath", "slotpath", "jukebox-size", "advance-timeout"} {
		if err := d.Add(name, &prefs.String{}); err != nil {
			return nil, err
		}
	}
	if err := d.Load(); err != nil {
		return nil, err
	}
	return d, nil
}

func saveMovie(b *bridge.Bridge, path string, port1, port2 ports.PortType) error {
	rrset := rrdata.New()
	if _, err := rrset.Generate(); err != nil {
		return err
	}
	var rrbuf bytes.Buffer
	if _, err := rrset.Serialize(&rrbuf); err != nil {
		return err
	}

	doc := moviefile.NewDocumentFromBridge(b)
	doc.SystemID = "moviecli"
	doc.Port1 = port1
	doc.Port2 = port2
	doc.GameType = moviefile.GameTypeNTSC
	doc.RRData = rrbuf.Bytes()

	return moviefile.Save(afero.NewOsFs(), path, doc)
}

func run() error {
	moviePath := flag.String("movie", "", "movie file to load (created fresh if absent)")
	prefsPath := flag.String("prefs", "moviecli.prefs", "settings file (targetfps, rompath, ...)")
	port1Flag := flag.String("port1", "GAMEPAD", "port 1 device configuration")
	port2Flag := flag.String("port2", "GAMEPAD", "port 2 device configuration")
	project := flag.String("project", "moviecli-session", "project id for a freshly created movie")
	flag.Parse()

	if _, err := loadSettings(*prefsPath); err != nil {
		return err
	}

	p1, ok := ports.ParsePortType(strings.ToUpper(*port1Flag))
	if !ok {
		return curated.Errorf(curated.InvalidArgument, *port1Flag)
	}
	p2, ok := ports.ParsePortType(strings.ToUpper(*port2Flag))
	if !ok {
		return curated.Errorf(curated.InvalidArgument, *port2Flag)
	}

	b, err := openBridge(*moviePath, *project, p1, p2)
	if err != nil {
		return err
	}
	mapping := controllermap.New(p1, p2)
	autofire := controllermap.NewAutofireState()

	var autohold, live controls.Snapshot

	rt, err := newRawTerm(os.Stdin.Fd())
	if err != nil {
		return err
	}
	defer rt.restore(os.Stdin.Fd())

	state := emulation.Running
	buf := make([]byte, 1)
	fmt.Println("moviecli: wasd/jkui hold controller 1, tfgh hold controller 2, space=pause, q=quit")

	for state != emulation.Ending {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			break
		}
		key := buf[0]

		switch key {
		case 'q':
			state = emulation.Ending
			continue
		case ' ':
			if state == emulation.Running {
				state = emulation.Paused
			} else {
				state = emulation.Running
			}
			continue
		}

		if tok, ok := keymap[key]; ok {
			idx, err := mapping.ResolveButton(int(tok[0]-'0'), tok[1:])
			if err == nil {
				live.SetAt(idx, live.At(idx)^1)
			}
		}

		if state != emulation.Running {
			continue
		}

		eff := controllermap.Effective(live, autohold, autofire, b.Frame())
		b.SetLiveControls(eff)
		b.AdvanceSubframe(true)

		status := observer.Snapshot(b, observer.Flags{Recording: !b.Readonly()}, observer.PollMarkerFrameStart, mapping, eff)
		fmt.Printf("\rframe %-6d lag %-4d %-12s %s", status.Frame, status.LagFrameCount, status.Flags.String(), strings.Join(status.Controllers, " "))
	}

	fmt.Println()

	if *moviePath != "" {
		if err := saveMovie(b, *moviePath, p1, p2); err != nil {
			logger.Logf(logger.Allow, "moviecli", "save failed: %v", err)
			return err
		}
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
