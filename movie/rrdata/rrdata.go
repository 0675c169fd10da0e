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

// Package rrdata implements the rerecord-identity set (C6): a process-wide
// set of 32-byte opaque identifiers, one per rerecording event, whose
// cardinality is the rerecord count shown to the user. The set is
// serialized as run-length-encoded consecutive-integer ranges, per §4.5 —
// these identifiers are random, but loading and merging several sessions'
// sets tends to produce long runs of numerically adjacent values from the
// same insertion burst, which this encoding compresses well.
package rrdata

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"math/big"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/jetsetilly/rerecord/curated"
)

// IDSize is the width, in bytes, of one identifier.
const IDSize = 32

// ID is a single rerecord-identity entry.
type ID [IDSize]byte

func (id ID) int() *big.Int {
	return new(big.Int).SetBytes(id[:])
}

func fromInt(n *big.Int) ID {
	var id ID
	n.FillBytes(id[:])
	return id
}

// Set is a process-wide collection of rerecord identifiers. The zero value
// is not usable; construct with New.
type Set struct {
	mu  sync.Mutex
	ids map[ID]struct{}
}

// New returns an empty Set.
func New() *Set {
	return &Set{ids: make(map[ID]struct{})}
}

// Generate creates a fresh random identifier, inserts it, and returns it.
// The cmd/ front ends call it once per run before saving; the bridge does
// not call it when a savestate is loaded or an edit lands past the
// playhead.
func (s *Set) Generate() (ID, error) {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		return id, curated.Errorf(curated.IOFailure, err)
	}
	s.Insert(id)
	return id, nil
}

// Insert adds id to the set. A duplicate insert is a no-op.
func (s *Set) Insert(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

// Size returns the number of distinct identifiers in the set — the
// rerecord count shown to the user.
func (s *Set) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// sortedInts returns every identifier in s as a big.Int, ascending.
// Caller must hold s.mu.
func (s *Set) sortedInts() []*big.Int {
	ints := make([]*big.Int, 0, len(s.ids))
	for id := range s.ids {
		ints = append(ints, id.int())
	}
	sort.Slice(ints, func(i, j int) bool { return ints[i].Cmp(ints[j]) < 0 })
	return ints
}

// run is one (base, length) range of numerically consecutive identifiers.
type run struct {
	base   *big.Int
	length uint64
}

func runsFrom(ints []*big.Int) []run {
	var runs []run
	one := big.NewInt(1)
	i := 0
	for i < len(ints) {
		base := ints[i]
		length := uint64(1)
		j := i + 1
		expect := new(big.Int).Add(base, one)
		for j < len(ints) && ints[j].Cmp(expect) == 0 {
			length++
			j++
			expect.Add(expect, one)
		}
		runs = append(runs, run{base: base, length: length})
		i = j
	}
	return runs
}

// Serialize writes the set to w as a zstd-compressed sequence of (32-byte
// base identifier, 8-byte big-endian run length) entries ordered
// numerically, and returns the total identifier count (spec.md §4.5
// `serialize(sink) → count`).
func (s *Set) Serialize(w io.Writer) (int, error) {
	s.mu.Lock()
	ints := s.sortedInts()
	count := len(s.ids)
	s.mu.Unlock()

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return 0, curated.Errorf(curated.IOFailure, err)
	}

	runs := runsFrom(ints)
	for _, r := range runs {
		id := fromInt(r.base)
		if _, err := zw.Write(id[:]); err != nil {
			zw.Close()
			return 0, curated.Errorf(curated.IOFailure, err)
		}
		if err := binary.Write(zw, binary.BigEndian, r.length); err != nil {
			zw.Close()
			return 0, curated.Errorf(curated.IOFailure, err)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, curated.Errorf(curated.IOFailure, err)
	}
	return count, nil
}

// UnionFrom reads a zstd-compressed stream produced by Serialize and
// inserts every identifier it describes into s (spec.md §4.5
// `union_from(stream)`).
func (s *Set) UnionFrom(r io.Reader) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return curated.Errorf(curated.CorruptMovie, err)
	}
	defer zr.Close()

	one := big.NewInt(1)
	for {
		var base ID
		_, err := io.ReadFull(zr, base[:])
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return curated.Errorf(curated.CorruptMovie, err)
		}

		var length uint64
		if err := binary.Read(zr, binary.BigEndian, &length); err != nil {
			return curated.Errorf(curated.CorruptMovie, err)
		}
		if length == 0 {
			return curated.Errorf(curated.CorruptMovie, "zero-length rrdata run")
		}

		cur := base.int()
		for i := uint64(0); i < length; i++ {
			s.Insert(fromInt(cur))
			cur = new(big.Int).Add(cur, one)
		}
	}
}
