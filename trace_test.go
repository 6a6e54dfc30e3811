// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package bio

import "testing"

func TestBufferedSourceIDIsStableAndUnique(t *testing.T) {
	a := NewBufferedSource(&chunkSource{data: []byte("x"), chunkSize: 1})
	b := NewBufferedSource(&chunkSource{data: []byte("y"), chunkSize: 1})

	first := a.ID()
	if second := a.ID(); first != second {
		t.Fatalf("ID() changed across calls: %s != %s", first, second)
	}
	if a.ID() == b.ID() {
		t.Fatal("two distinct sources should not share an ID")
	}
}

func TestBufferedSinkIDIsStableAndUnique(t *testing.T) {
	a := NewBufferedSink(&recordingSink{})
	b := NewBufferedSink(&recordingSink{})

	if a.ID() != a.ID() {
		t.Fatal("ID() should be stable across calls")
	}
	if a.ID() == b.ID() {
		t.Fatal("two distinct sinks should not share an ID")
	}
}
