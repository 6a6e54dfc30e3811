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
	"encoding/binary"
	"math"
	"strconv"

	zutf8 "github.com/SnellerInc/bio/utf8"
)

// Buffer is an ordered list of segments that is simultaneously a
// RawSource and a RawSink. It is the central data structure of the
// package: every typed read or write primitive, and both buffered
// adapters, ultimately operate on a Buffer.
//
// A Buffer is not safe for concurrent use; see the package-level
// scheduling model notes on BufferedSource and BufferedSink.
type Buffer struct {
	// Pool supplies and reclaims segments. If nil, DefaultPool is
	// used. Set this on buffers that need an isolated memory budget
	// instead of sharing the process-wide pool.
	Pool *SegmentPool

	head *segment // nil when the buffer is empty
	size int64
}

func (b *Buffer) pool() *SegmentPool {
	if b.Pool != nil {
		return b.Pool
	}
	return DefaultPool
}

// Len returns the number of bytes currently buffered.
func (b *Buffer) Len() int64 { return b.size }

// Exhausted reports whether the buffer holds no bytes.
func (b *Buffer) Exhausted() bool { return b.size == 0 }

// tailSegment returns the buffer's last segment, or nil if empty.
func (b *Buffer) tailSegment() *segment {
	if b.head == nil {
		return nil
	}
	return b.head.prev
}

// appendSegment links seg in as the new tail of the circular list.
func (b *Buffer) appendSegment(seg *segment) {
	if b.head == nil {
		seg.next = seg
		seg.prev = seg
		b.head = seg
		return
	}
	tail := b.head.prev
	tail.next = seg
	seg.prev = tail
	seg.next = b.head
	b.head.prev = seg
}

// insertBefore links seg into the list immediately before at, updating
// b.head if at was the head.
func (b *Buffer) insertBefore(seg, at *segment) {
	seg.prev = at.prev
	seg.next = at
	at.prev.next = seg
	at.prev = seg
	if b.head == at {
		b.head = seg
	}
}

// removeSegment unlinks seg (which must be empty) from the list and
// returns it to the pool. It is the only place a segment's storage is
// released back to the allocator.
func (b *Buffer) removeSegment(seg *segment) {
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
	b.pool().Recycle(seg)
}

// recycleHeadIfEmpty drops the head segment once it has been fully
// consumed, which is what keeps Exhausted() true for a zero-byte
// buffer (property P2: no segment may have pos==limit once a read or
// write returns).
func (b *Buffer) recycleHeadIfEmpty() {
	for b.head != nil && b.head.len() == 0 {
		b.removeSegment(b.head)
	}
}

// compactHead runs Segment.compact on the (possibly new) head after a
// partial read, folding its immediate successor into it when both are
// less than half full. This is the same direction real Okio-style
// buffers compact in: a segment that is read later in the list has its
// bytes appended onto one that is read earlier, never the reverse, so
// byte order is never disturbed.
func (b *Buffer) compactHead() {
	if b.head == nil || b.head.next == b.head {
		return
	}
	next := b.head.next
	if b.head.compact() {
		b.removeSegment(next)
	}
}

// writableSegment returns a segment with at least minCapacity bytes of
// free tail capacity, allocating a fresh one from the pool if the
// current tail cannot be reused (absent, shared, or too full).
func (b *Buffer) writableSegment(minCapacity int) *segment {
	if minCapacity < 1 || minCapacity > segmentSize {
		panic("bio: writableSegment: invalid minCapacity")
	}
	if tail := b.tailSegment(); tail != nil && tail.writable() && tail.avail() >= minCapacity {
		return tail
	}
	seg := b.pool().Take()
	b.appendSegment(seg)
	return seg
}

// Clear discards all buffered bytes, returning every segment to the
// pool (or to whichever copy tracker still references it).
func (b *Buffer) Clear() {
	for b.head != nil {
		b.removeSegment(b.head)
	}
	b.size = 0
}

// completeSegmentByteCount returns the buffer size minus the partial
// tail segment's bytes, i.e. the number of bytes that live in full
// segments and can be emitted without fragmenting the tail.
func (b *Buffer) completeSegmentByteCount() int64 {
	if b.head == nil {
		return 0
	}
	n := b.size
	tail := b.head.prev
	if tail.len() < segmentSize {
		n -= int64(tail.len())
	}
	return n
}

// String returns a debug representation: "Buffer(size=N)" when empty,
// or "Buffer(size=N hex=<up to 64 bytes>)" with a trailing "…" if the
// buffer holds more than 64 bytes.
func (b *Buffer) String() string {
	if b.size == 0 {
		return "Buffer(size=0)"
	}
	const maxShown = 64
	shown := b.size
	truncated := false
	if shown > maxShown {
		shown = maxShown
		truncated = true
	}
	buf := make([]byte, 0, shown)
	seg := b.head
	off := seg.pos
	for int64(len(buf)) < shown {
		n := int64(seg.limit - off)
		if n > shown-int64(len(buf)) {
			n = shown - int64(len(buf))
		}
		buf = append(buf, seg.data[off:off+int(n)]...)
		off += int(n)
		if off == seg.limit {
			seg = seg.next
			off = seg.pos
		}
	}
	out := "Buffer(size=" + strconv.FormatInt(b.size, 10) + " hex=" + hexLower(buf)
	if truncated {
		out += "…"
	}
	return out + ")"
}

func hexLower(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0xf]
	}
	return string(out)
}

// ---- bulk and typed writes ----

// WriteBytes appends every byte of p to the buffer.
func (b *Buffer) WriteBytes(p []byte) *Buffer {
	for len(p) > 0 {
		seg := b.writableSegment(1)
		n := copy(seg.data[seg.limit:], p)
		seg.limit += n
		p = p[n:]
		b.size += int64(n)
	}
	return b
}

// WriteByte appends a single byte. The returned error is always nil.
func (b *Buffer) WriteByte(v byte) error {
	seg := b.writableSegment(1)
	seg.data[seg.limit] = v
	seg.limit++
	b.size++
	return nil
}

func (b *Buffer) writeFixed(n int, put func(dst []byte)) {
	seg := b.writableSegment(n)
	put(seg.data[seg.limit : seg.limit+n])
	seg.limit += n
	b.size += int64(n)
}

// WriteUint16 writes v as two big-endian bytes.
func (b *Buffer) WriteUint16(v uint16) *Buffer {
	b.writeFixed(2, func(dst []byte) { binary.BigEndian.PutUint16(dst, v) })
	return b
}

// WriteUint16Le writes v as two little-endian bytes.
func (b *Buffer) WriteUint16Le(v uint16) *Buffer {
	b.writeFixed(2, func(dst []byte) { binary.LittleEndian.PutUint16(dst, v) })
	return b
}

// WriteInt16 writes v big-endian.
func (b *Buffer) WriteInt16(v int16) *Buffer { return b.WriteUint16(uint16(v)) }

// WriteInt16Le writes v little-endian.
func (b *Buffer) WriteInt16Le(v int16) *Buffer { return b.WriteUint16Le(uint16(v)) }

// WriteUint32 writes v as four big-endian bytes.
func (b *Buffer) WriteUint32(v uint32) *Buffer {
	b.writeFixed(4, func(dst []byte) { binary.BigEndian.PutUint32(dst, v) })
	return b
}

// WriteUint32Le writes v as four little-endian bytes.
func (b *Buffer) WriteUint32Le(v uint32) *Buffer {
	b.writeFixed(4, func(dst []byte) { binary.LittleEndian.PutUint32(dst, v) })
	return b
}

// WriteInt32 writes v big-endian.
func (b *Buffer) WriteInt32(v int32) *Buffer { return b.WriteUint32(uint32(v)) }

// WriteInt32Le writes v little-endian.
func (b *Buffer) WriteInt32Le(v int32) *Buffer { return b.WriteUint32Le(uint32(v)) }

// WriteUint64 writes v as eight big-endian bytes.
func (b *Buffer) WriteUint64(v uint64) *Buffer {
	b.writeFixed(8, func(dst []byte) { binary.BigEndian.PutUint64(dst, v) })
	return b
}

// WriteUint64Le writes v as eight little-endian bytes.
func (b *Buffer) WriteUint64Le(v uint64) *Buffer {
	b.writeFixed(8, func(dst []byte) { binary.LittleEndian.PutUint64(dst, v) })
	return b
}

// WriteInt64 writes v big-endian.
func (b *Buffer) WriteInt64(v int64) *Buffer { return b.WriteUint64(uint64(v)) }

// WriteInt64Le writes v little-endian.
func (b *Buffer) WriteInt64Le(v int64) *Buffer { return b.WriteUint64Le(uint64(v)) }

// WriteFloat32 writes v's IEEE-754 bits big-endian.
func (b *Buffer) WriteFloat32(v float32) *Buffer { return b.WriteUint32(math.Float32bits(v)) }

// WriteFloat32Le writes v's IEEE-754 bits little-endian.
func (b *Buffer) WriteFloat32Le(v float32) *Buffer { return b.WriteUint32Le(math.Float32bits(v)) }

// WriteFloat64 writes v's IEEE-754 bits big-endian.
func (b *Buffer) WriteFloat64(v float64) *Buffer { return b.WriteUint64(math.Float64bits(v)) }

// WriteFloat64Le writes v's IEEE-754 bits little-endian.
func (b *Buffer) WriteFloat64Le(v float64) *Buffer { return b.WriteUint64Le(math.Float64bits(v)) }

// WriteDecimalLong writes v as its ASCII decimal representation,
// handling math.MinInt64 (whose magnitude overflows int64) the same
// way strconv does: by formatting the negative value directly rather
// than negating it first.
func (b *Buffer) WriteDecimalLong(v int64) *Buffer {
	var tmp [20]byte
	out := strconv.AppendInt(tmp[:0], v, 10)
	b.WriteBytes(out)
	return b
}

// WriteHexadecimalUnsignedLong writes v, interpreted as unsigned, as
// its minimal lowercase hexadecimal representation. Zero writes "0".
func (b *Buffer) WriteHexadecimalUnsignedLong(v uint64) *Buffer {
	if v == 0 {
		return b.WriteBytes([]byte{'0'})
	}
	var tmp [16]byte
	n := 16
	for v != 0 {
		n--
		tmp[n] = "0123456789abcdef"[v&0xf]
		v >>= 4
	}
	return b.WriteBytes(tmp[n:])
}

// WriteString UTF-8 encodes s[start:end] into the buffer. Go strings
// are already valid UTF-8 (or at worst contain byte sequences that
// decode to U+FFFD), so this is a direct byte copy; callers that need
// the surrogate-pair fusing and replacement-character policy described
// for UTF-16-backed platform strings should build their rune sequence
// explicitly and use WriteRunes, or use WriteUTF16 for raw UTF-16 code
// units.
func (b *Buffer) WriteString(s string, start, end int) *Buffer {
	if start < 0 || end > len(s) || start > end {
		panic(errOutOfBounds("WriteString: [%d,%d) out of range for length %d", start, end, len(s)))
	}
	return b.WriteBytes([]byte(s[start:end]))
}

// WriteRunes encodes each code point in rs per the package's UTF-8
// policy (see the utf8 subpackage): code points in the surrogate range
// are written as '?', and negative code points or code points
// >= 0x110000 panic with the utf8 package's *InvalidCodePointError.
// WriteString performs no such check; WriteRunes is for callers that
// assembled rs themselves (e.g. from UTF-16).
func (b *Buffer) WriteRunes(rs []rune) *Buffer {
	var tmp [4]byte
	for _, r := range rs {
		n, err := zutf8.EncodeRune(tmp[:], r)
		if err != nil {
			panic(err)
		}
		b.WriteBytes(tmp[:n])
	}
	return b
}

// WriteUTF16 encodes a sequence of UTF-16 code units, fusing
// high+low surrogate pairs into their supplementary code point and
// replacing any isolated surrogate with '?', exactly as a UTF-16
// native platform's String.encodeUtf8 would.
func (b *Buffer) WriteUTF16(units []uint16) *Buffer {
	return b.WriteBytes(zutf8.EncodeUTF16(units))
}

// FromImmutableBytes wraps data as a read-only Buffer without copying
// it. data must not be modified for as long as the returned Buffer (or
// anything it is copied into) is alive; the segment(s) backing it use
// the always-shared tracker and are therefore never returned to the
// segment pool.
func FromImmutableBytes(data []byte) *Buffer {
	b := &Buffer{}
	for off := 0; off < len(data); off += segmentSize {
		end := off + segmentSize
		if end > len(data) {
			end = len(data)
		}
		seg := &segment{
			data:    data[off:end:end],
			pos:     0,
			limit:   end - off,
			shared:  true,
			owner:   false,
			tracker: alwaysShared,
		}
		b.appendSegment(seg)
	}
	b.size = int64(len(data))
	return b
}
