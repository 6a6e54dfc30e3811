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
	"strings"
	"testing"
)

func TestStringHexDump(t *testing.T) {
	var b Buffer
	b.WriteBytes([]byte("a\r\nb\nc\rd\\e"))
	want := "Buffer(size=10 hex=610d0a620a630d645c65)"
	if got := b.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestStringHexDumpTruncates(t *testing.T) {
	var b Buffer
	b.WriteBytes(make([]byte, 66))
	got := b.String()
	if !strings.HasSuffix(got, "…)") {
		t.Fatalf("String() = %q, want a trailing ellipsis", got)
	}
	const prefix = "Buffer(size=66 hex="
	hexPart := got[len(prefix) : len(got)-len("…)")]
	if len(hexPart) != 128 {
		t.Fatalf("hex dump has %d chars, want 128 (64 bytes)", len(hexPart))
	}
}

func TestStraddlingInt(t *testing.T) {
	var b Buffer
	b.WriteBytes(bytesOf('a', segmentSize-3))
	b.WriteInt32(int32(0xABCDEF01))
	b.WriteInt32(int32(0x87654321))

	if n1, n2 := b.head.len(), b.head.next.len(); n1 != segmentSize-3 || n2 != 8 {
		t.Fatalf("segment sizes = [%d, %d], want [%d, 8]", n1, n2, segmentSize-3)
	}

	b.Discard(int64(segmentSize - 3))
	v1, err := b.ReadInt32()
	if err != nil || v1 != int32(0xABCDEF01) {
		t.Fatalf("ReadInt32() = (%#x, %v), want (0xabcdef01, nil)", v1, err)
	}
	v2, err := b.ReadInt32()
	if err != nil || v2 != int32(0x87654321) {
		t.Fatalf("ReadInt32() = (%#x, %v), want (0x87654321, nil)", v2, err)
	}
}

func bytesOf(c byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func TestDecimalLongEdges(t *testing.T) {
	var b Buffer
	b.WriteDecimalLong(math.MinInt64)
	v, err := b.ReadDecimalLong()
	if err != nil || v != math.MinInt64 {
		t.Fatalf("ReadDecimalLong() = (%d, %v), want (%d, nil)", v, err, int64(math.MinInt64))
	}

	b.WriteDecimalLong(0)
	if got := b.String(); got != "Buffer(size=1 hex=30)" {
		t.Fatalf("writeDecimalLong(0) produced %q, want the single byte '0'", got)
	}
}

func TestUtf8Sample(t *testing.T) {
	const sample = "təˈranəˌsôr"
	var b Buffer
	b.WriteString(sample, 0, len(sample))
	const wantHex = "74c999cb8872616ec999cb8c73c3b472"
	if got := b.String(); !strings.Contains(got, wantHex) {
		t.Fatalf("hex dump = %q, want it to contain %q", got, wantHex)
	}
	s, err := b.ReadAllString()
	if err != nil || s != sample {
		t.Fatalf("ReadAllString() = (%q, %v), want (%q, nil)", s, err, sample)
	}
}

func TestLineReading(t *testing.T) {
	var b Buffer
	b.WriteBytes([]byte("first line\nsecond line\n"))

	line, err := b.ReadUtf8Line()
	if err != nil || line != "first line" {
		t.Fatalf("ReadUtf8Line() = (%q, %v), want (\"first line\", nil)", line, err)
	}

	rest, err := b.ReadAllString()
	if err != nil || rest != "second line\n" {
		t.Fatalf("ReadAllString() = (%q, %v), want (\"second line\\n\", nil)", rest, err)
	}

	var b2 Buffer
	b2.WriteBytes([]byte("no terminator here"))
	if _, err := b2.ReadUtf8LineStrict(-1); err != ErrEndOfStream {
		t.Fatalf("ReadUtf8LineStrict() on unterminated input = %v, want ErrEndOfStream", err)
	}
	if b2.Len() != int64(len("no terminator here")) {
		t.Fatalf("ReadUtf8LineStrict() consumed bytes on failure, buffer has %d left", b2.Len())
	}
}

func TestWriteFromBufferTooShort(t *testing.T) {
	var src, dst Buffer
	src.WriteBytes([]byte("ab"))
	err := dst.WriteFromBuffer(&src, 5)
	if err != ErrEndOfStream {
		t.Fatalf("WriteFromBuffer() = %v, want ErrEndOfStream", err)
	}
	if dst.Len() != 2 {
		t.Fatalf("dst.Len() = %d, want 2 (whatever source had should still transfer)", dst.Len())
	}
	if src.Len() != 0 {
		t.Fatalf("src.Len() = %d, want 0", src.Len())
	}
}

func TestSelfReferenceGuards(t *testing.T) {
	var b Buffer
	b.WriteBytes([]byte("x"))
	if _, err := b.TransferFrom(&b); err == nil {
		t.Fatal("TransferFrom(self) should fail")
	}
	if err := b.WriteFromBuffer(&b, 1); err == nil {
		t.Fatal("WriteFromBuffer(self) should fail")
	}
	if err := b.CopyTo(&b, 0, 1); err == nil {
		t.Fatal("CopyTo(self) should fail")
	}
}

func TestCopyToLeavesSourceUnchanged(t *testing.T) {
	var src, dst Buffer
	src.WriteBytes([]byte("hello world"))
	if err := src.CopyTo(&dst, 2, 7); err != nil {
		t.Fatalf("CopyTo() = %v", err)
	}
	if src.Len() != 11 {
		t.Fatalf("CopyTo mutated source: len = %d, want 11", src.Len())
	}
	got, err := dst.ReadAllString()
	if err != nil || got != "llo w" {
		t.Fatalf("dst = (%q, %v), want (\"llo w\", nil)", got, err)
	}
}
