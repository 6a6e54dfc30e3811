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
	"io"
	"math"
)

// BufferedSource layers a Buffer in front of an upstream RawSource,
// pulling from upstream only when the internal buffer cannot satisfy
// a request. Like Buffer, a BufferedSource is not safe for concurrent
// use.
type BufferedSource struct {
	upstream RawSource
	buf      Buffer
	closed   bool
	id       string
}

// NewBufferedSource wraps upstream with a BufferedSource.
func NewBufferedSource(upstream RawSource) *BufferedSource {
	return &BufferedSource{upstream: upstream}
}

// ID returns a stable identifier for this source, generated on first
// use, suitable for correlating log lines across a long-lived pull
// loop without having to pass a request-scoped identifier down
// separately.
func (s *BufferedSource) ID() string {
	if s.id == "" {
		s.id = NewTraceID()
	}
	return s.id
}

// Buffer exposes the internal buffer so advanced callers can inspect
// or drain it directly (for example to hand buffered-but-unread bytes
// off to another consumer without a copy).
func (s *BufferedSource) Buffer() *Buffer { return &s.buf }

// pullSegment reads at most one segment's worth of bytes from
// upstream into the internal buffer, reporting whether any bytes
// arrived. Each pull is capped at one segment so that request/require
// cannot be made to buffer an unbounded amount of upstream data.
func (s *BufferedSource) pullSegment() (bool, error) {
	n, err := s.upstream.ReadAtMostTo(&s.buf, segmentSize)
	if err == ErrEndOfStream {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReadAtMostTo implements RawSource.
func (s *BufferedSource) ReadAtMostTo(sink *Buffer, byteCount int64) (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if byteCount < 0 {
		return 0, errInvalidArgument("ReadAtMostTo: byteCount < 0")
	}
	if byteCount == 0 {
		return 0, nil
	}
	if s.buf.size == 0 {
		ok, err := s.pullSegment()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrEndOfStream
		}
	}
	return s.buf.ReadAtMostTo(sink, byteCount)
}

// Request pulls from upstream until the internal buffer holds at
// least byteCount bytes or upstream is exhausted, reporting which.
func (s *BufferedSource) Request(byteCount int64) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	for s.buf.size < byteCount {
		ok, err := s.pullSegment()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Require behaves like Request but fails with ErrEndOfStream if
// upstream is exhausted before byteCount bytes are available.
func (s *BufferedSource) Require(byteCount int64) error {
	ok, err := s.Request(byteCount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrEndOfStream
	}
	return nil
}

// ReadByte reads and consumes a single byte.
func (s *BufferedSource) ReadByte() (byte, error) {
	if err := s.Require(1); err != nil {
		return 0, err
	}
	return s.buf.ReadByte()
}

func (s *BufferedSource) ReadUint16() (uint16, error) {
	if err := s.Require(2); err != nil {
		return 0, err
	}
	return s.buf.ReadUint16()
}

func (s *BufferedSource) ReadUint16Le() (uint16, error) {
	if err := s.Require(2); err != nil {
		return 0, err
	}
	return s.buf.ReadUint16Le()
}

func (s *BufferedSource) ReadInt16() (int16, error) {
	v, err := s.ReadUint16()
	return int16(v), err
}

func (s *BufferedSource) ReadInt16Le() (int16, error) {
	v, err := s.ReadUint16Le()
	return int16(v), err
}

func (s *BufferedSource) ReadUint32() (uint32, error) {
	if err := s.Require(4); err != nil {
		return 0, err
	}
	return s.buf.ReadUint32()
}

func (s *BufferedSource) ReadUint32Le() (uint32, error) {
	if err := s.Require(4); err != nil {
		return 0, err
	}
	return s.buf.ReadUint32Le()
}

func (s *BufferedSource) ReadInt32() (int32, error) {
	v, err := s.ReadUint32()
	return int32(v), err
}

func (s *BufferedSource) ReadInt32Le() (int32, error) {
	v, err := s.ReadUint32Le()
	return int32(v), err
}

func (s *BufferedSource) ReadUint64() (uint64, error) {
	if err := s.Require(8); err != nil {
		return 0, err
	}
	return s.buf.ReadUint64()
}

func (s *BufferedSource) ReadUint64Le() (uint64, error) {
	if err := s.Require(8); err != nil {
		return 0, err
	}
	return s.buf.ReadUint64Le()
}

func (s *BufferedSource) ReadInt64() (int64, error) {
	v, err := s.ReadUint64()
	return int64(v), err
}

func (s *BufferedSource) ReadInt64Le() (int64, error) {
	v, err := s.ReadUint64Le()
	return int64(v), err
}

func (s *BufferedSource) ReadFloat32() (float32, error) {
	v, err := s.ReadUint32()
	return math.Float32frombits(v), err
}

func (s *BufferedSource) ReadFloat32Le() (float32, error) {
	v, err := s.ReadUint32Le()
	return math.Float32frombits(v), err
}

func (s *BufferedSource) ReadFloat64() (float64, error) {
	v, err := s.ReadUint64()
	return math.Float64frombits(v), err
}

func (s *BufferedSource) ReadFloat64Le() (float64, error) {
	v, err := s.ReadUint64Le()
	return math.Float64frombits(v), err
}

// ReadBytes fills dst entirely, failing with ErrEndOfStream (and
// possibly partially filling dst) if upstream runs out first.
func (s *BufferedSource) ReadBytes(dst []byte) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.Require(int64(len(dst))); err != nil {
		s.buf.ReadBytes(dst) // best-effort partial fill, see §7
		return err
	}
	return s.buf.ReadBytes(dst)
}

// ReadString requires and decodes byteCount bytes as UTF-8.
func (s *BufferedSource) ReadString(byteCount int64) (string, error) {
	if err := s.Require(byteCount); err != nil {
		return "", err
	}
	return s.buf.ReadString(byteCount)
}

// ReadDecimalLong requires enough of the stream to resolve an ASCII
// decimal integer and parses it. It pulls segments until it has seen a
// non-digit (or upstream EOF) so the parse never stops mid-number.
func (s *BufferedSource) ReadDecimalLong() (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if err := s.fillNumericToken(true); err != nil {
		return 0, err
	}
	return s.buf.ReadDecimalLong()
}

// ReadHexadecimalUnsignedLong is the hexadecimal counterpart of
// ReadDecimalLong.
func (s *BufferedSource) ReadHexadecimalUnsignedLong() (uint64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if err := s.fillNumericToken(false); err != nil {
		return 0, err
	}
	return s.buf.ReadHexadecimalUnsignedLong()
}

func (s *BufferedSource) fillNumericToken(decimal bool) error {
	for {
		ok, err := s.Request(s.buf.size + 1)
		if err != nil {
			return err
		}
		if !ok {
			return nil // upstream exhausted; let the Buffer parser decide validity
		}
		c, perr := s.buf.byteAt(s.buf.size - 1)
		if perr != nil {
			return nil
		}
		isDigit := c >= '0' && c <= '9'
		if !decimal {
			if _, hex := hexDigit(c); hex {
				isDigit = true
			} else {
				isDigit = false
			}
		} else if c == '-' && s.buf.size == 1 {
			isDigit = true
		}
		if !isDigit {
			return nil
		}
	}
}

// ReadUtf8Line reads up to (and consuming) the next newline, pulling
// from upstream as needed to find one.
func (s *BufferedSource) ReadUtf8Line() (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	for s.buf.IndexOf('\n', 0, -1) < 0 {
		ok, err := s.pullSegment()
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
	}
	return s.buf.ReadUtf8Line()
}

// ReadUtf8LineStrict behaves like ReadUtf8Line but fails with
// ErrEndOfStream if no terminator appears within limit bytes (or at
// all, if limit is negative).
func (s *BufferedSource) ReadUtf8LineStrict(limit int64) (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	for {
		to := s.buf.size
		if limit >= 0 && limit < to {
			to = limit
		}
		if s.buf.IndexOf('\n', 0, to) >= 0 {
			break
		}
		if limit >= 0 && s.buf.size >= limit {
			return "", ErrEndOfStream
		}
		ok, err := s.pullSegment()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrEndOfStream
		}
	}
	return s.buf.ReadUtf8Line()
}

// Skip discards byteCount bytes, draining the internal buffer first
// and then reading-and-discarding from upstream in segment-sized
// chunks.
func (s *BufferedSource) Skip(byteCount int64) error {
	if s.closed {
		return ErrClosed
	}
	if byteCount < 0 {
		return errInvalidArgument("Skip: byteCount < 0")
	}
	for byteCount > 0 {
		if s.buf.size == 0 {
			ok, err := s.pullSegment()
			if err != nil {
				return err
			}
			if !ok {
				return ErrEndOfStream
			}
		}
		n := byteCount
		if n > s.buf.size {
			n = s.buf.size
		}
		if err := s.buf.Discard(n); err != nil {
			return err
		}
		byteCount -= n
	}
	return nil
}

// TransferTo writes the internal buffer to sink, then alternately
// pulls one segment from upstream and writes it to sink until
// upstream is exhausted. It returns the total number of bytes moved.
func (s *BufferedSource) TransferTo(sink RawSink) (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	var total int64
	for {
		if s.buf.size > 0 {
			n := s.buf.size
			if err := sink.Write(&s.buf, n); err != nil {
				return total, err
			}
			total += n
		}
		ok, err := s.pullSegment()
		if err != nil {
			return total, err
		}
		if !ok {
			return total, nil
		}
	}
}

// Close is idempotent. It closes the upstream source exactly once;
// subsequent operations on s fail with ErrClosed.
func (s *BufferedSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.buf.Clear()
	if c, ok := s.upstream.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
