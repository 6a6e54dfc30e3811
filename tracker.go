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

import (
	"sync/atomic"

	"github.com/SnellerInc/bio/internal/atomicext"
)

// copyTracker is a small reference count shared by every segment that
// aliases the same backing array. It lets the pool decide, once a
// segment's window is fully consumed, whether the underlying storage
// may be recycled or whether another alias is still reading it.
type copyTracker struct {
	refs int32
}

// alwaysShared is a sentinel tracker whose count never reaches zero. It
// models immutable data that the buffer does not own (for example bytes
// handed to FromImmutableBytes) and that must therefore never be
// returned to the segment pool.
var alwaysShared = &copyTracker{refs: 1 << 30}

func newCopyTracker() *copyTracker {
	return &copyTracker{refs: 1}
}

// addCopy records a new alias of the tracked segment.
func (t *copyTracker) addCopy() {
	if t == alwaysShared {
		return
	}
	atomic.AddInt32(&t.refs, 1)
}

// removeCopyIfShared removes one alias and reports whether the caller
// must refrain from recycling the segment because other aliases are
// still live. It returns false exactly once per tracker: for the alias
// whose release brings the count to zero.
func (t *copyTracker) removeCopyIfShared() bool {
	if t == alwaysShared {
		return true
	}
	return atomicext.DecrementIfPositive(&t.refs) > 0
}
