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

// TransferFrom moves every byte out of source and into b. Because the
// whole of source is taken, every segment is moved by relinking (O(1),
// no byte copy). source ends up empty.
func (b *Buffer) TransferFrom(source *Buffer) (int64, error) {
	if source == b {
		return 0, errInvalidArgument("TransferFrom: source and destination are the same buffer")
	}
	n := source.size
	if n == 0 {
		return 0, nil
	}
	if err := b.writeFromBuffer(source, n); err != nil {
		return 0, err
	}
	return n, nil
}

// WriteFromBuffer moves the first byteCount bytes of source into b,
// failing with ErrEndOfStream if source does not hold that many bytes.
// Whatever source does hold is still transferred before the error is
// returned (per §7's "write(source, byteCount) with a too-short source
// transfers what it could before failing").
func (b *Buffer) WriteFromBuffer(source *Buffer, byteCount int64) error {
	if source == b {
		return errInvalidArgument("WriteFromBuffer: source and destination are the same buffer")
	}
	return b.writeFromBuffer(source, byteCount)
}

func (b *Buffer) writeFromBuffer(source *Buffer, byteCount int64) error {
	if byteCount < 0 {
		return errInvalidArgument("writeFromBuffer: byteCount < 0")
	}
	remaining := byteCount
	for remaining > 0 {
		if source.head == nil {
			return ErrEndOfStream
		}
		seg := source.head
		segLen := int64(seg.len())
		if segLen <= remaining {
			// The whole segment is needed: relink it into b directly,
			// an O(1) ownership transfer with no byte copy.
			source.removeSegmentNoRecycle(seg)
			b.appendSegment(seg)
			b.size += segLen
			source.size -= segLen
			remaining -= segLen
			continue
		}
		// Only a prefix of the boundary segment is needed: copy those
		// bytes and leave the rest in place in source.
		dst := b.writableSegment(int(remaining))
		seg.writeTo(dst, int(remaining))
		b.size += remaining
		source.size -= remaining
		remaining = 0
	}
	return nil
}

// removeSegmentNoRecycle unlinks seg from the buffer's list without
// returning it to the pool, for use when ownership is being
// transferred to another buffer rather than released.
func (b *Buffer) removeSegmentNoRecycle(seg *segment) {
	if seg.next == seg {
		b.head = nil
	} else {
		seg.prev.next = seg.next
		seg.next.prev = seg.prev
		if b.head == seg {
			b.head = seg.next
		}
	}
	seg.next, seg.prev = nil, nil
}

// CopyTo copies the byte range [startIndex, endIndex) of b into the
// tail of target without consuming it from b, using shared-segment
// views so that no bytes are physically copied for whole segments.
func (b *Buffer) CopyTo(target *Buffer, startIndex, endIndex int64) error {
	if target == b {
		return errInvalidArgument("CopyTo: target and source are the same buffer")
	}
	if startIndex < 0 || endIndex < startIndex || endIndex > b.size {
		return errOutOfBounds("CopyTo: [%d,%d) out of range for size %d", startIndex, endIndex, b.size)
	}
	remaining := endIndex - startIndex
	if remaining == 0 {
		return nil
	}
	seg := b.head
	pos := int64(0)
	for pos+int64(seg.len()) <= startIndex {
		pos += int64(seg.len())
		seg = seg.next
	}
	off := int(startIndex - pos)
	for remaining > 0 {
		avail := int64(seg.len() - off)
		n := remaining
		if n > avail {
			n = avail
		}
		view := seg.sharedCopy()
		view.pos = seg.pos + off
		view.limit = view.pos + int(n)
		target.appendSegment(view)
		target.size += n
		remaining -= n
		off = 0
		seg = seg.next
	}
	return nil
}

// Snapshot returns an independent copy of the first byteCount bytes of
// b as a plain byte slice, leaving b unchanged.
func (b *Buffer) Snapshot(byteCount int64) []byte {
	if byteCount < 0 || byteCount > b.size {
		panic(errOutOfBounds("Snapshot: %d out of range for size %d", byteCount, b.size))
	}
	out := make([]byte, byteCount)
	seg := b.head
	off := 0
	for off < len(out) {
		n := copy(out[off:], seg.data[seg.pos:seg.limit])
		off += n
		seg = seg.next
	}
	return out
}

// ReadAtMostTo implements RawSource: it moves up to byteCount bytes
// from b into sink.
func (b *Buffer) ReadAtMostTo(sink *Buffer, byteCount int64) (int64, error) {
	if byteCount < 0 {
		return 0, errInvalidArgument("ReadAtMostTo: byteCount < 0")
	}
	if byteCount == 0 {
		return 0, nil
	}
	if b.size == 0 {
		return 0, ErrEndOfStream
	}
	if byteCount > b.size {
		byteCount = b.size
	}
	if err := sink.writeFromBuffer(b, byteCount); err != nil {
		return 0, err
	}
	return byteCount, nil
}

// Write implements RawSink: it consumes exactly byteCount bytes from
// the head of source into b.
func (b *Buffer) Write(source *Buffer, byteCount int64) error {
	return b.writeFromBuffer(source, byteCount)
}

// Flush implements RawSink. A bare Buffer has no downstream to flush.
func (b *Buffer) Flush() error { return nil }
