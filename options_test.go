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

func TestSelectWithIterLongestMatchWins(t *testing.T) {
	opts := NewOptions([]byte("get"), []byte("get-all"), []byte("post"))
	src := NewBufferedSource(&chunkSource{data: []byte("get-all\n"), chunkSize: 2})

	idx, err := src.SelectWithIter(opts)
	if err != nil {
		t.Fatalf("SelectWithIter() = %v", err)
	}
	if idx != 1 {
		t.Fatalf("SelectWithIter() = %d, want 1 (\"get-all\", the longer match)", idx)
	}
	rest, err := src.ReadString(1)
	if err != nil || rest != "\n" {
		t.Fatalf("remainder = (%q, %v), want (\"\\n\", nil); only the match should be consumed", rest, err)
	}
}

func TestNewOptionsRejectsEmptyCandidate(t *testing.T) {
	opts := NewOptions([]byte("get"), []byte(""))
	src := NewBufferedSource(&chunkSource{data: []byte("get\n"), chunkSize: 4})
	if _, err := src.SelectWithIter(opts); err == nil {
		t.Fatal("SelectWithIter() with an empty candidate should fail")
	}
}

func TestSelectWithIterNoMatchConsumesNothing(t *testing.T) {
	opts := NewOptions([]byte("get"), []byte("post"))
	src := NewBufferedSource(&chunkSource{data: []byte("delete\n"), chunkSize: 4})

	idx, err := src.SelectWithIter(opts)
	if err != nil {
		t.Fatalf("SelectWithIter() = %v", err)
	}
	if idx != -1 {
		t.Fatalf("SelectWithIter() = %d, want -1", idx)
	}
	rest, err := src.ReadString(7)
	if err != nil || rest != "delete\n" {
		t.Fatalf("remainder = (%q, %v), want the input untouched", rest, err)
	}
}
