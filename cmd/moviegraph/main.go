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

// Command moviegraph loads a movie file and dumps a Graphviz rendering of
// its bridge's internal state (track, poll counters, live controls) via
// memviz, the same object-graph visualiser the teacher ships for
// inspecting its own command parser.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bradleyjkemp/memviz"
	"github.com/spf13/afero"

	"github.com/jetsetilly/rerecord/movie/moviefile"
)

// graphView is the subset of bridge state worth visualising: the full
// internal state isn't exported, so this mirrors it at the package
// boundary for memviz to walk.
type graphView struct {
	ProjectID     string
	RerecordCount string
	Frame         int
	FirstSubframe int
	LagFrameCount int
	Readonly      bool
	LiveControls  interface{}
	Track         interface{}
	Counters      interface{}
}

func run() error {
	moviePath := flag.String("movie", "", "movie file to graph")
	outPath := flag.String("out", "moviegraph.dot", "graphviz output path")
	flag.Parse()

	if *moviePath == "" {
		return fmt.Errorf("moviegraph: -movie is required")
	}

	b, _, err := moviefile.LoadBridge(afero.NewOsFs(), *moviePath)
	if err != nil {
		return err
	}

	view := graphView{
		ProjectID:     b.ProjectID(),
		RerecordCount: b.RerecordCount(),
		Frame:         b.Frame(),
		FirstSubframe: b.FirstSubframe(),
		LagFrameCount: b.LagFrameCount(),
		Readonly:      b.Readonly(),
		LiveControls:  b.LiveControls(),
		Track:         b.Track(),
		Counters:      b.Counters(),
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	memviz.Map(f, &view)

	fmt.Printf("wrote %s\n", *outPath)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
