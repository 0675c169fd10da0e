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

package curated

// Pattern constants for every error kind in the engine's error taxonomy.
// Use curated.Is(err, curated.CorruptMovie) (or Has, for wrapped chains) to
// test for a specific kind; do not compare Error() strings.
const (
	// CorruptMovie indicates a structural problem with a movie file: a
	// missing required member, an input track whose first subframe does
	// not have FRAME_SYNC set, or similar.
	CorruptMovie = "corrupt movie: %v"

	// HashMismatch indicates a savestate was not produced by the current
	// movie or project: the project-ID hash, movie hash, or outer
	// integrity hash of a state snapshot failed to verify.
	HashMismatch = "hash mismatch: %v"

	// CannotEditPast indicates a write-mode edit was attempted at a
	// subframe index earlier than the control's current poll position
	// allows.
	CannotEditPast = "cannot edit past: subframe %d, control %d"

	// BadPortField indicates a port decoder failed to parse its field of
	// the external text syntax.
	BadPortField = "bad port field: %v"

	// OutOfMemory indicates a fatal allocation failure. The engine cannot
	// continue with a track in an indeterminate state.
	OutOfMemory = "out of memory: %v"

	// IOFailure indicates a filesystem or archive operation failed.
	IOFailure = "io failure: %v"

	// InvalidArgument indicates a caller supplied a value outside the
	// accepted domain (an out-of-range port/controller/control index, an
	// unrecognised port type name, and so on).
	InvalidArgument = "invalid argument: %v"

	// SystemCorrupt indicates the emulated machine's state is unusable
	// (for example, after a failed savestate load) and the emulation must
	// be paused pending a user-initiated reload.
	SystemCorrupt = "system corrupt: %v"

	// NotImplemented indicates a requested operation has no implementation
	// yet.
	NotImplemented = "not implemented: %v"
)
