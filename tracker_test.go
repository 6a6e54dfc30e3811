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

func TestCopyTrackerReleasesExactlyOnce(t *testing.T) {
	tr := newCopyTracker()
	tr.addCopy() // two live aliases now

	if !tr.removeCopyIfShared() {
		t.Fatal("first release of two aliases should report still-shared")
	}
	if tr.removeCopyIfShared() {
		t.Fatal("second release should report the segment is free to recycle")
	}
}

func TestCopyTrackerPanicsOnUnderflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic from releasing an already-drained tracker")
		}
	}()
	tr := newCopyTracker()
	tr.removeCopyIfShared()
	tr.removeCopyIfShared() // refs is already 0: programmer error
}

func TestAlwaysSharedNeverRecycles(t *testing.T) {
	if !alwaysShared.removeCopyIfShared() {
		t.Fatal("alwaysShared must never report itself free to recycle")
	}
}
