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

// Package transform defines the minimal abstractions external
// collaborators (checksums, hashes, compressors) implement to observe
// or rewrite bytes flowing through a bio.Buffer, without the core
// package needing to know about any particular algorithm.
package transform

import "github.com/SnellerInc/bio"

// Processor observes byteCount bytes at the front of source without
// consuming them, folding them into whatever running state it keeps
// (a checksum accumulator, a hash state, and so on).
//
// Compute returns the accumulated result as a byte slice and resets
// the processor to its initial state. Current returns the same result
// without resetting, for callers that want an intermediate digest.
type Processor interface {
	Process(source *bio.Buffer, byteCount int64) error
	Compute() []byte
	Current() []byte
}

// Transform rewrites bytes rather than merely observing them: it pulls
// from source and pushes whatever it produces into sink, which may be
// more, fewer, or different bytes than it consumed (compression,
// decompression, encryption).
//
// Finish flushes any bytes the transform is still holding onto
// internally (a partially filled compression block, for example) and
// reports whether the transform has nothing further to contribute via
// IsFinished.
type Transform interface {
	Transform(source, sink *bio.Buffer) error
	Finish(sink *bio.Buffer) error
	IsFinished() bool
}
