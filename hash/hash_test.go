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

package hash

import (
	"encoding/hex"
	"testing"

	"github.com/SnellerInc/bio"
)

type processor interface {
	Process(*bio.Buffer, int64) error
}

func feed(t *testing.T, p processor, s string) {
	t.Helper()
	var buf bio.Buffer
	buf.WriteBytes([]byte(s))
	if err := p.Process(&buf, buf.Len()); err != nil {
		t.Fatalf("Process() = %v", err)
	}
}

func TestCRC32KnownAnswer(t *testing.T) {
	p := NewCRC32()
	feed(t, p, "123456789")
	if got := hex.EncodeToString(p.Compute()); got != "cbf43926" {
		t.Fatalf("CRC32(\"123456789\") = %s, want cbf43926", got)
	}
}

func TestMD5EmptyInput(t *testing.T) {
	p := NewMD5()
	feed(t, p, "")
	if got := hex.EncodeToString(p.Compute()); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("MD5(\"\") = %s", got)
	}
}

func TestSHA256KnownAnswer(t *testing.T) {
	p := NewSHA256()
	feed(t, p, "abc")
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := hex.EncodeToString(p.Compute()); got != want {
		t.Fatalf("SHA256(\"abc\") = %s, want %s", got, want)
	}
}

func TestComputeResetsRunningState(t *testing.T) {
	p := NewCRC32()
	feed(t, p, "123456789")
	first := p.Compute()
	feed(t, p, "123456789")
	second := p.Compute()
	if string(first) != string(second) {
		t.Fatalf("Compute() should reset state between calls: % x != % x", first, second)
	}
}

func TestCurrentDoesNotResetState(t *testing.T) {
	p := NewCRC32()
	feed(t, p, "123")
	snapshot := p.Current()
	feed(t, p, "456789")
	full := p.Compute()
	if string(snapshot) == string(full) {
		t.Fatal("Current() should not have finalized the running digest")
	}
	if hex.EncodeToString(full) != "cbf43926" {
		t.Fatalf("final CRC32 = %x, want cbf43926", full)
	}
}

func TestSipHashIsDeterministicAndKeyed(t *testing.T) {
	a := NewSipHash(1, 2)
	feed(t, a, "the quick brown fox")
	sumA := a.Compute()

	b := NewSipHash(1, 2)
	feed(t, b, "the quick brown fox")
	sumB := b.Compute()
	if string(sumA) != string(sumB) {
		t.Fatal("SipHash should be deterministic for the same key and input")
	}

	c := NewSipHash(3, 4)
	feed(t, c, "the quick brown fox")
	sumC := c.Compute()
	if string(sumA) == string(sumC) {
		t.Fatal("SipHash outputs should differ under a different key")
	}
	if len(sumA) != 16 {
		t.Fatalf("SipHash-2-4 output is %d bytes, want 16", len(sumA))
	}
}

func TestBlake2b256Length(t *testing.T) {
	p := NewBlake2b256()
	feed(t, p, "hello")
	if got := p.Compute(); len(got) != 32 {
		t.Fatalf("Blake2b256 output is %d bytes, want 32", len(got))
	}
}
