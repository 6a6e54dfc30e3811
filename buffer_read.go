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
	"math"
)

// nextByte pulls a single byte off the head segment, decrementing the
// buffer size and then recycling the head if it is now empty or
// compacting it otherwise. It reports false if the buffer is empty.
func (b *Buffer) nextByte() (byte, bool) {
	if b.head == nil {
		return 0, false
	}
	v := b.head.data[b.head.pos]
	b.head.pos++
	b.size--
	if b.head.pos == b.head.limit {
		b.recycleHeadIfEmpty()
	} else {
		b.compactHead()
	}
	return v, true
}

// ReadByte reads and consumes a single byte.
func (b *Buffer) ReadByte() (byte, error) {
	v, ok := b.nextByte()
	if !ok {
		return 0, ErrEndOfStream
	}
	return v, nil
}

// readFixed fills dst from the head of the buffer. It fast-paths the
// case where dst fits entirely within the head segment's current
// window and otherwise falls back to a byte-by-byte copy across the
// segment boundary (spec §4.3: "a typed read that straddles a segment
// boundary must fall back to the single-byte slow path").
func (b *Buffer) readFixed(dst []byte) error {
	n := len(dst)
	if int64(n) > b.size {
		return ErrEndOfStream
	}
	if b.head != nil && b.head.len() >= n {
		copy(dst, b.head.data[b.head.pos:b.head.pos+n])
		b.head.pos += n
		b.size -= int64(n)
		if b.head.pos == b.head.limit {
			b.recycleHeadIfEmpty()
		} else {
			b.compactHead()
		}
		return nil
	}
	for i := range dst {
		v, ok := b.nextByte()
		if !ok {
			return ErrEndOfStream
		}
		dst[i] = v
	}
	return nil
}

// ReadUint16 reads two big-endian bytes.
func (b *Buffer) ReadUint16() (uint16, error) {
	var tmp [2]byte
	if err := b.readFixed(tmp[:]); err != nil {
		return 0, err
	}
	return uint16(tmp[0])<<8 | uint16(tmp[1]), nil
}

// ReadUint16Le reads two little-endian bytes.
func (b *Buffer) ReadUint16Le() (uint16, error) {
	var tmp [2]byte
	if err := b.readFixed(tmp[:]); err != nil {
		return 0, err
	}
	return uint16(tmp[1])<<8 | uint16(tmp[0]), nil
}

// ReadInt16 reads two big-endian bytes as a signed value.
func (b *Buffer) ReadInt16() (int16, error) {
	v, err := b.ReadUint16()
	return int16(v), err
}

// ReadInt16Le reads two little-endian bytes as a signed value.
func (b *Buffer) ReadInt16Le() (int16, error) {
	v, err := b.ReadUint16Le()
	return int16(v), err
}

// ReadUint32 reads four big-endian bytes.
func (b *Buffer) ReadUint32() (uint32, error) {
	var tmp [4]byte
	if err := b.readFixed(tmp[:]); err != nil {
		return 0, err
	}
	return uint32(tmp[0])<<24 | uint32(tmp[1])<<16 | uint32(tmp[2])<<8 | uint32(tmp[3]), nil
}

// ReadUint32Le reads four little-endian bytes.
func (b *Buffer) ReadUint32Le() (uint32, error) {
	var tmp [4]byte
	if err := b.readFixed(tmp[:]); err != nil {
		return 0, err
	}
	return uint32(tmp[3])<<24 | uint32(tmp[2])<<16 | uint32(tmp[1])<<8 | uint32(tmp[0]), nil
}

// ReadInt32 reads four big-endian bytes as a signed value.
func (b *Buffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

// ReadInt32Le reads four little-endian bytes as a signed value.
func (b *Buffer) ReadInt32Le() (int32, error) {
	v, err := b.ReadUint32Le()
	return int32(v), err
}

// ReadUint64 reads eight big-endian bytes.
func (b *Buffer) ReadUint64() (uint64, error) {
	var tmp [8]byte
	if err := b.readFixed(tmp[:]); err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range tmp {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// ReadUint64Le reads eight little-endian bytes.
func (b *Buffer) ReadUint64Le() (uint64, error) {
	var tmp [8]byte
	if err := b.readFixed(tmp[:]); err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(tmp[i])
	}
	return v, nil
}

// ReadInt64 reads eight big-endian bytes as a signed value.
func (b *Buffer) ReadInt64() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

// ReadInt64Le reads eight little-endian bytes as a signed value.
func (b *Buffer) ReadInt64Le() (int64, error) {
	v, err := b.ReadUint64Le()
	return int64(v), err
}

// ReadFloat32 reads a big-endian IEEE-754 single.
func (b *Buffer) ReadFloat32() (float32, error) {
	v, err := b.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat32Le reads a little-endian IEEE-754 single.
func (b *Buffer) ReadFloat32Le() (float32, error) {
	v, err := b.ReadUint32Le()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads a big-endian IEEE-754 double.
func (b *Buffer) ReadFloat64() (float64, error) {
	v, err := b.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadFloat64Le reads a little-endian IEEE-754 double.
func (b *Buffer) ReadFloat64Le() (float64, error) {
	v, err := b.ReadUint64Le()
	return math.Float64frombits(v), err
}

// ReadBytes fills dst entirely or fails with ErrEndOfStream. Unlike
// most of the typed readers, it may partially fill dst before failing
// (the caller can observe how much arrived): per §7, "readFully may
// partially fill the destination before throwing EOF".
func (b *Buffer) ReadBytes(dst []byte) error {
	n := len(dst)
	if int64(n) > b.size {
		n = int(b.size)
		for i := 0; i < n; i++ {
			v, _ := b.nextByte()
			dst[i] = v
		}
		return ErrEndOfStream
	}
	return b.readFixed(dst)
}

// ReadString consumes byteCount bytes and UTF-8 decodes them into a Go
// string. When the range spans more than one segment the bytes are
// copied into a temporary array first.
func (b *Buffer) ReadString(byteCount int64) (string, error) {
	if byteCount < 0 {
		return "", errInvalidArgument("ReadString: byteCount < 0")
	}
	if byteCount > b.size {
		return "", ErrEndOfStream
	}
	if byteCount == 0 {
		return "", nil
	}
	if b.head != nil && int64(b.head.len()) >= byteCount {
		s := string(b.head.data[b.head.pos : b.head.pos+int(byteCount)])
		b.head.pos += int(byteCount)
		b.size -= byteCount
		if b.head.pos == b.head.limit {
			b.recycleHeadIfEmpty()
		} else {
			b.compactHead()
		}
		return s, nil
	}
	tmp := make([]byte, byteCount)
	if err := b.readFixed(tmp); err != nil {
		return "", err
	}
	return string(tmp), nil
}

// ReadAllString drains the buffer and UTF-8 decodes the result.
func (b *Buffer) ReadAllString() (string, error) {
	return b.ReadString(b.size)
}

// IndexOf scans for the first occurrence of target at or after from
// and before to (to < 0 means "end of buffer"), returning -1 if it is
// not present in that range.
func (b *Buffer) IndexOf(target byte, from, to int64) int64 {
	if to < 0 || to > b.size {
		to = b.size
	}
	if from < 0 || from >= to {
		return -1
	}
	seg := b.head
	if seg == nil {
		return -1
	}
	pos := int64(0)
	for seg != nil {
		segLen := int64(seg.len())
		if pos+segLen > from {
			start := seg.pos
			if from > pos {
				start += int(from - pos)
			}
			end := seg.limit
			if pos+segLen > to {
				end = seg.pos + int(to-pos)
			}
			for i := start; i < end; i++ {
				if seg.data[i] == target {
					return pos + int64(i-seg.pos)
				}
			}
		}
		pos += segLen
		if pos >= to {
			break
		}
		seg = seg.next
		if seg == b.head {
			break
		}
	}
	return -1
}

// ReadDecimalLong parses an optional leading '-' followed by at least
// one decimal digit, with overflow/underflow detection.
func (b *Buffer) ReadDecimalLong() (int64, error) {
	neg := false
	first, err := b.peekByte()
	if err != nil {
		return 0, errNumberFormat("no digits")
	}
	if first == '-' {
		neg = true
		b.nextByte()
	}
	var mag uint64
	digits := 0
	const limit = uint64(math.MaxInt64) + 1 // magnitude ceiling, accounting for MinInt64
	for {
		c, err := b.peekByte()
		if err != nil || c < '0' || c > '9' {
			break
		}
		b.nextByte()
		digits++
		d := uint64(c - '0')
		if mag > (limit-d)/10 {
			return 0, errNumberFormat("overflow")
		}
		mag = mag*10 + d
	}
	if digits == 0 {
		return 0, errNumberFormat("no digits")
	}
	if neg {
		if mag > limit {
			return 0, errNumberFormat("underflow")
		}
		return -int64(mag), nil
	}
	if mag > limit-1 {
		return 0, errNumberFormat("overflow")
	}
	return int64(mag), nil
}

// ReadHexadecimalUnsignedLong parses at least one case-insensitive hex
// digit (up to 16 meaningful digits after stripping leading zeros) as
// an unsigned 64-bit value.
func (b *Buffer) ReadHexadecimalUnsignedLong() (uint64, error) {
	var v uint64
	digits := 0
	significant := 0
	for {
		c, err := b.peekByte()
		if err != nil {
			break
		}
		d, ok := hexDigit(c)
		if !ok {
			break
		}
		b.nextByte()
		digits++
		if v != 0 || d != 0 {
			significant++
		}
		if significant > 16 {
			return 0, errNumberFormat("too many hex digits")
		}
		v = v<<4 | uint64(d)
	}
	if digits == 0 {
		return 0, errNumberFormat("no hex digits")
	}
	return v, nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// peekByte returns the next byte without consuming it.
func (b *Buffer) peekByte() (byte, error) {
	if b.head == nil {
		return 0, ErrEndOfStream
	}
	return b.head.data[b.head.pos], nil
}

// ReadUtf8Line reads bytes up to (and consuming) the next '\n',
// treating a preceding '\r' as part of the terminator, and returns the
// line without its terminator. If no '\n' is buffered, it consumes and
// returns everything that remains with a nil error; it returns
// ("", ErrEndOfStream) only when the buffer is empty.
func (b *Buffer) ReadUtf8Line() (string, error) {
	idx := b.IndexOf('\n', 0, -1)
	if idx < 0 {
		if b.size == 0 {
			return "", ErrEndOfStream
		}
		s, _ := b.ReadString(b.size)
		return s, nil
	}
	lineLen := idx
	if lineLen > 0 {
		if nl, _ := b.byteAt(idx - 1); nl == '\r' {
			lineLen--
		}
	}
	s, err := b.ReadString(lineLen)
	if err != nil {
		return "", err
	}
	// consume the terminator itself: an optional '\r' then the '\n'.
	for {
		c, ok := b.nextByte()
		if !ok {
			break
		}
		if c == '\n' {
			break
		}
	}
	return s, nil
}

// ReadUtf8LineStrict behaves like ReadUtf8Line but fails with
// ErrEndOfStream if no line terminator is found within limit bytes (or
// at all, when limit is negative), leaving the buffer unchanged.
func (b *Buffer) ReadUtf8LineStrict(limit int64) (string, error) {
	scanTo := b.size
	if limit >= 0 && limit < scanTo {
		scanTo = limit
	}
	if idx := b.IndexOf('\n', 0, scanTo); idx < 0 {
		return "", ErrEndOfStream
	}
	return b.ReadUtf8Line()
}

// Discard consumes n bytes from the head of the buffer without copying
// them anywhere, failing with ErrEndOfStream if the buffer holds fewer.
func (b *Buffer) Discard(n int64) error {
	if n < 0 {
		return errInvalidArgument("Discard: n < 0")
	}
	if n > b.size {
		return ErrEndOfStream
	}
	for n > 0 {
		avail := int64(b.head.len())
		take := n
		if take > avail {
			take = avail
		}
		b.head.pos += int(take)
		b.size -= take
		if b.head.pos == b.head.limit {
			b.recycleHeadIfEmpty()
		} else {
			b.compactHead()
		}
		n -= take
	}
	return nil
}

// byteAt peeks at the byte byteCount into the buffer (0-based) without
// consuming anything.
func (b *Buffer) byteAt(byteCount int64) (byte, error) {
	if byteCount < 0 || byteCount >= b.size {
		return 0, errOutOfBounds("byteAt: %d out of range for size %d", byteCount, b.size)
	}
	seg := b.head
	pos := int64(0)
	for {
		segLen := int64(seg.len())
		if byteCount < pos+segLen {
			return seg.data[seg.pos+int(byteCount-pos)], nil
		}
		pos += segLen
		seg = seg.next
	}
}
