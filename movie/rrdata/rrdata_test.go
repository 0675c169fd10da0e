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

package rrdata_test

import (
	"bytes"
	"testing"

	"github.com/jetsetilly/rerecord/movie/rrdata"
	"github.com/jetsetilly/rerecord/test"
)

func idFromUint64(n uint64) rrdata.ID {
	var id rrdata.ID
	for i := 0; i < 8; i++ {
		id[rrdata.IDSize-1-i] = byte(n >> (8 * i))
	}
	return id
}

func TestSizeAndInsert(t *testing.T) {
	s := rrdata.New()
	test.ExpectEquality(t, s.Size(), 0)

	id, err := s.Generate()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, s.Size(), 1)

	s.Insert(id) // duplicate, no-op
	test.ExpectEquality(t, s.Size(), 1)
}

func TestSerializeRunLengthCompresses(t *testing.T) {
	s := rrdata.New()
	for i := uint64(10); i <= 15; i++ {
		s.Insert(idFromUint64(i))
	}
	s.Insert(idFromUint64(100))

	var buf bytes.Buffer
	count, err := s.Serialize(&buf)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, count, 7)

	// two runs of (32+8) bytes each before compression; the zstd stream
	// itself carries some fixed frame overhead on top of that.
	other := rrdata.New()
	err = other.UnionFrom(bytes.NewReader(buf.Bytes()))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, other.Size(), 7)
}

func TestUnionFromRoundTrip(t *testing.T) {
	s := rrdata.New()
	for i := uint64(1); i <= 5; i++ {
		s.Insert(idFromUint64(i))
	}
	s.Insert(idFromUint64(50))

	var buf bytes.Buffer
	count, err := s.Serialize(&buf)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, count, 6)

	other := rrdata.New()
	err = other.UnionFrom(&buf)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, other.Size(), 6)
}

func TestUnionFromMergesIntoExistingSet(t *testing.T) {
	a := rrdata.New()
	a.Insert(idFromUint64(1))
	a.Insert(idFromUint64(2))

	b := rrdata.New()
	b.Insert(idFromUint64(2))
	b.Insert(idFromUint64(3))

	var buf bytes.Buffer
	_, err := b.Serialize(&buf)
	test.ExpectSuccess(t, err)

	err = a.UnionFrom(&buf)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, a.Size(), 3) // {1,2,3}
}

func TestUnionFromRejectsCorruptStream(t *testing.T) {
	s := rrdata.New()
	err := s.UnionFrom(bytes.NewReader([]byte{1, 2, 3}))
	test.ExpectFailure(t, err)
}
