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

// Command moviestatus serves the C10 observer.Status projection for a
// loaded movie as a browser-refreshed HTML page, and runs statsview
// alongside it for the process's own runtime stats — the host commands
// of spec.md §6 remain the primary interface; this is an optional,
// read-only viewer.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/go-echarts/statsview"
	"github.com/spf13/afero"

	"github.com/jetsetilly/rerecord/logger"
	"github.com/jetsetilly/rerecord/movie/controllermap"
	"github.com/jetsetilly/rerecord/movie/controls"
	"github.com/jetsetilly/rerecord/movie/moviefile"
	"github.com/jetsetilly/rerecord/movie/observer"
)

func statusHandler(moviePath string, mapping *controllermap.Mapping, doc *moviefile.Document) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, _, err := moviefile.LoadBridge(afero.NewOsFs(), moviePath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		flags := observer.Flags{Recording: !b.Readonly()}
		status := observer.Snapshot(b, flags, observer.PollMarkerNone, mapping, controls.Snapshot{})

		fmt.Fprintf(w, "<html><head><meta http-equiv=\"refresh\" content=\"1\"></head><body>")
		fmt.Fprintf(w, "<h1>%s</h1>", doc.GameName)
		fmt.Fprintf(w, "<p>frame %d, poll %s, lag %d, length %d, %s</p>",
			status.Frame, status.PollPosition, status.LagFrameCount, status.MovieLength, status.Flags.String())
		fmt.Fprintf(w, "<ul>")
		for i, c := range status.Controllers {
			fmt.Fprintf(w, "<li>controller %d: %s</li>", i+1, c)
		}
		fmt.Fprintf(w, "</ul></body></html>")
	}
}

func run() error {
	moviePath := flag.String("movie", "", "movie file to watch")
	addr := flag.String("addr", ":18067", "address to serve the status page on")
	flag.Parse()

	if *moviePath == "" {
		return fmt.Errorf("moviestatus: -movie is required")
	}

	doc, err := moviefile.Load(afero.NewOsFs(), *moviePath)
	if err != nil {
		return err
	}

	mapping := controllermap.New(doc.Port1, doc.Port2)

	mgr := statsview.New()
	go mgr.Start()

	http.HandleFunc("/", statusHandler(*moviePath, mapping, doc))
	logger.Logf(logger.Allow, "moviestatus", "serving %s on %s", *moviePath, *addr)
	return http.ListenAndServe(*addr, nil)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
