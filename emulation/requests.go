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

package emulation

// FeatureReq names one of the host-level requests spec.md §6 exposes that
// fall outside the bridge's own command set: pausing/resuming and ending
// the run loop.
type FeatureReq string

const (
	// ReqSetPause corresponds to spec.md §6's pause-emulator command.
	// Argument type: bool.
	ReqSetPause FeatureReq = "ReqSetPause"

	// ReqQuit corresponds to spec.md §6's quit-emulator command. No
	// argument.
	ReqQuit FeatureReq = "ReqQuit"
)

// UnsupportedEmulationFeature is the message pattern used when a host
// implementation does not recognise a FeatureReq.
const UnsupportedEmulationFeature = "unsupported emulation feature: %v"
