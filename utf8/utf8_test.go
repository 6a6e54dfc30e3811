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

package utf8

import (
	"encoding/hex"
	"testing"
)

func TestEncodeRuneSample(t *testing.T) {
	const sample = "təˈranəˌsôr"
	var out []byte
	var tmp [4]byte
	for _, r := range sample {
		n, err := EncodeRune(tmp[:], r)
		if err != nil {
			t.Fatalf("EncodeRune(%q) = %v", r, err)
		}
		out = append(out, tmp[:n]...)
	}
	const want = "74c999cb8872616ec999cb8c73c3b472"
	if got := hex.EncodeToString(out); got != want {
		t.Fatalf("encoded = %s, want %s", got, want)
	}
}

func TestEncodeRuneIsolatedSurrogate(t *testing.T) {
	var tmp [4]byte
	n, err := EncodeRune(tmp[:], 0xd800)
	if err != nil || n != 1 || tmp[0] != '?' {
		t.Fatalf("EncodeRune(surrogate) = (%d, %v), want (1, nil) writing '?'", n, err)
	}
}

func TestEncodeRuneOutOfRange(t *testing.T) {
	var tmp [4]byte
	if _, err := EncodeRune(tmp[:], 0x110000); err == nil {
		t.Fatal("EncodeRune(0x110000) should fail")
	}
}

func TestEncodeUTF16FusesSurrogatePair(t *testing.T) {
	// U+1F600 GRINNING FACE as a UTF-16 surrogate pair.
	units := []uint16{0xd83d, 0xde00}
	got := EncodeUTF16(units)
	want := []byte{0xf0, 0x9f, 0x98, 0x80}
	if string(got) != string(want) {
		t.Fatalf("EncodeUTF16(pair) = % x, want % x", got, want)
	}
}

func TestEncodeUTF16UnpairedSurrogate(t *testing.T) {
	got := EncodeUTF16([]uint16{0xd800, 'x'})
	if string(got) != "?x" {
		t.Fatalf("EncodeUTF16(unpaired) = %q, want %q", got, "?x")
	}
}

func TestDecodeRuneOverlong(t *testing.T) {
	// 0xc0 0x80 is an overlong encoding of NUL.
	r, n := DecodeRune([]byte{0xc0, 0x80})
	if r != RuneError || n != 1 {
		t.Fatalf("DecodeRune(overlong) = (%q, %d), want (RuneError, 1)", r, n)
	}
}

func TestDecodeRuneShortSequence(t *testing.T) {
	r, n := DecodeRune([]byte{0xe0, 0x80})
	if r != RuneError || n != 1 {
		t.Fatalf("DecodeRune(truncated) = (%q, %d), want (RuneError, 1)", r, n)
	}
}

func TestValidStringLengthStopsAtFirstError(t *testing.T) {
	p := append([]byte("ok"), 0xff)
	if n := ValidStringLength(p); n != 2 {
		t.Fatalf("ValidStringLength() = %d, want 2", n)
	}
}
