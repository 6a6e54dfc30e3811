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

// Package hash provides transform.Processor implementations backed by
// the standard checksum/digest algorithms (CRC-32, the crypto/*
// family) plus SipHash and BLAKE2b, for code that wants to fold a
// running digest over the bytes passing through a bio.Buffer without
// consuming them.
package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"hash/crc32"

	"github.com/dchest/siphash"
	"golang.org/x/crypto/blake2b"

	"github.com/SnellerInc/bio"
)

// stdProcessor adapts any stdlib-shaped hash.Hash into a
// transform.Processor: Process observes byteCount bytes from the
// front of source via Buffer.Snapshot (non-consuming) and folds them
// into h; Compute finalizes and resets; Current finalizes a copy
// without disturbing the running state.
type stdProcessor struct {
	newHash func() hash.Hash
	h       hash.Hash
}

func newStdProcessor(newHash func() hash.Hash) *stdProcessor {
	return &stdProcessor{newHash: newHash, h: newHash()}
}

func (p *stdProcessor) Process(source *bio.Buffer, byteCount int64) error {
	p.h.Write(source.Snapshot(byteCount))
	return nil
}

func (p *stdProcessor) Compute() []byte {
	sum := p.h.Sum(nil)
	p.h = p.newHash()
	return sum
}

func (p *stdProcessor) Current() []byte {
	return p.h.Sum(nil)
}

// NewCRC32 returns a Processor computing the IEEE CRC-32 checksum.
func NewCRC32() *stdProcessor { return newStdProcessor(func() hash.Hash { return crc32.NewIEEE() }) }

// NewMD5 returns a Processor computing an MD5 digest.
func NewMD5() *stdProcessor { return newStdProcessor(md5.New) }

// NewSHA1 returns a Processor computing a SHA-1 digest.
func NewSHA1() *stdProcessor { return newStdProcessor(sha1.New) }

// NewSHA256 returns a Processor computing a SHA-256 digest.
func NewSHA256() *stdProcessor { return newStdProcessor(sha256.New) }

// NewSHA512 returns a Processor computing a SHA-512 digest.
func NewSHA512() *stdProcessor { return newStdProcessor(sha512.New) }

// NewBlake2b256 returns a Processor computing an unkeyed 256-bit
// BLAKE2b digest.
func NewBlake2b256() *stdProcessor {
	return newStdProcessor(func() hash.Hash {
		h, err := blake2b.New256(nil)
		if err != nil {
			// New256 only fails for an oversized key; nil never does.
			panic(err)
		}
		return h
	})
}

// SipHashProcessor computes SipHash-2-4 over the observed bytes using
// a fixed 128-bit key. Unlike the digests above it is not built on
// hash.Hash (SipHash's reference API is keyed, one-shot Hash128 rather
// than an incremental Write/Sum pair), so Process buffers the
// observed bytes itself and Compute/Current hash them in one pass.
type SipHashProcessor struct {
	k0, k1 uint64
	buf    []byte
}

// NewSipHash returns a Processor computing SipHash-2-4 keyed by k0,k1.
func NewSipHash(k0, k1 uint64) *SipHashProcessor {
	return &SipHashProcessor{k0: k0, k1: k1}
}

func (p *SipHashProcessor) Process(source *bio.Buffer, byteCount int64) error {
	p.buf = append(p.buf, source.Snapshot(byteCount)...)
	return nil
}

func (p *SipHashProcessor) Compute() []byte {
	out := p.Current()
	p.buf = p.buf[:0]
	return out
}

func (p *SipHashProcessor) Current() []byte {
	lo, hi := siphash.Hash128(p.k0, p.k1, p.buf)
	var out [16]byte
	for i := 0; i < 8; i++ {
		out[i] = byte(lo >> (8 * i))
		out[8+i] = byte(hi >> (8 * i))
	}
	return out[:]
}
