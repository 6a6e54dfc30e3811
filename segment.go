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

const (
	// segmentSize is the fixed capacity of every segment's backing array.
	segmentSize = 8192

	// shareMinimum is the smallest byteCount that split() will hand out
	// as a shared view rather than a fresh private copy. Below this
	// threshold a shared alias would cost more in bookkeeping (and in
	// keeping a whole 8KiB array alive) than simply copying the bytes.
	shareMinimum = 1024
)

// segment is a fixed-size byte block with a readable window [pos,limit).
// Segments are arranged into a circular doubly-linked list by Buffer;
// next/prev are only meaningful while a segment is linked into one.
type segment struct {
	data []byte

	pos   int
	limit int

	// shared marks the segment as read-only: some other segment
	// aliases the same backing array over some (possibly different)
	// window, and this segment's bytes must not be overwritten.
	shared bool

	// owner marks that this segment's struct is the one responsible
	// for returning data to the pool once tracker (if any) allows it.
	// A segment copy produced by sharedCopy is never the owner.
	owner bool

	tracker *copyTracker

	next, prev *segment
}

func newOwnedSegment() *segment {
	return &segment{data: make([]byte, segmentSize), owner: true}
}

// len returns the number of readable bytes in the segment.
func (s *segment) len() int { return s.limit - s.pos }

// avail returns the number of bytes that may still be appended to the
// segment's tail, ignoring writability (shared/owner) concerns.
func (s *segment) avail() int { return segmentSize - s.limit }

// writable reports whether the caller may extend s.limit and write
// into [limit, limit+n).
func (s *segment) writable() bool { return s.owner && !s.shared }

// sharedCopy returns a read-only alias of s's current window. Both s
// and the returned segment are marked shared and share a CopyTracker
// so that the backing array is only returned to the pool once every
// alias has released it.
func (s *segment) sharedCopy() *segment {
	s.shared = true
	if s.tracker == nil {
		// newCopyTracker starts at refs == 1, accounting for s itself;
		// the alias returned below is a second live reference and must
		// bump the count before anyone can release either one.
		s.tracker = newCopyTracker()
		s.tracker.addCopy()
	} else {
		s.tracker.addCopy()
	}
	return &segment{
		data:    s.data,
		pos:     s.pos,
		limit:   s.limit,
		shared:  true,
		owner:   false,
		tracker: s.tracker,
	}
}

// split divides s into a prefix of exactly byteCount readable bytes and
// leaves s holding the remainder. It returns the prefix segment, which
// the caller (Buffer) links into the list in place of s. byteCount must
// be in (0, s.len()).
func (s *segment) split(byteCount int) *segment {
	if byteCount <= 0 || byteCount >= s.len() {
		panic("bio: split: byteCount out of range")
	}
	var prefix *segment
	if byteCount >= shareMinimum {
		prefix = s.sharedCopy()
		prefix.limit = prefix.pos + byteCount
	} else {
		prefix = newOwnedSegment()
		copy(prefix.data, s.data[s.pos:s.pos+byteCount])
		prefix.limit = byteCount
	}
	s.pos += byteCount
	return prefix
}

// compact folds s's immediate successor into s and reports whether it
// did so. It only fires when both segments are less than half full and
// s is a writable owner, which is the case the spec asks buffers to
// watch for after a partial read shortens the head segment. Read order
// is preserved because s is read before its successor: s's own bytes
// stay first and the successor's bytes are appended after them. On
// success the successor is left fully drained (pos == limit) for the
// caller to unlink and recycle.
func (s *segment) compact() bool {
	next := s.next
	if next == s || !s.writable() {
		return false
	}
	if s.len() >= segmentSize/2 || next.len() >= segmentSize/2 {
		return false
	}
	n := next.len()
	if s.avail() < n {
		s.compactInPlace()
		if s.avail() < n {
			return false
		}
	}
	copy(s.data[s.limit:], next.data[next.pos:next.limit])
	s.limit += n
	next.pos = next.limit
	return true
}

// compactInPlace slides a segment's readable window down to index 0,
// freeing up tail capacity without moving it to another segment.
func (s *segment) compactInPlace() {
	if s.pos == 0 {
		return
	}
	n := copy(s.data, s.data[s.pos:s.limit])
	s.pos = 0
	s.limit = n
}

// writeTo moves byteCount bytes from s's head into dst's tail. dst must
// be a writable owner. If dst doesn't have byteCount bytes of capacity
// remaining, it is compacted first.
func (s *segment) writeTo(dst *segment, byteCount int) {
	if !dst.writable() {
		panic("bio: writeTo: destination segment is not writable")
	}
	if dst.avail() < byteCount {
		dst.compactInPlace()
		if dst.avail() < byteCount {
			panic("bio: writeTo: byteCount does not fit after compaction")
		}
	}
	copy(dst.data[dst.limit:], s.data[s.pos:s.pos+byteCount])
	dst.limit += byteCount
	s.pos += byteCount
}
