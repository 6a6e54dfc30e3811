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
	"errors"
	"fmt"
	"io"
)

// ErrEndOfStream is returned when an operation needs more bytes than
// the source (upstream or buffered) can currently supply. It is an
// alias for io.EOF so that Buffer and the buffered adapters compose
// with the standard io.Reader/io.Writer ecosystem.
var ErrEndOfStream = io.EOF

// ErrClosed is returned by any operation performed on a BufferedSource
// or BufferedSink after Close has been called.
var ErrClosed = errors.New("bio: closed")

// ErrPeekInvalidated is returned by a PeekSource once the upstream
// source it was snapshotting has been read past the snapshot point.
var ErrPeekInvalidated = errors.New("bio: peek source is invalid because upstream source was used")

// InvalidArgumentError reports a precondition violation such as a
// negative byte count, an out-of-range code point, or an attempt to
// read and write the same Buffer simultaneously.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string { return "bio: invalid argument: " + e.Msg }

func errInvalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// NewInvalidArgumentError builds an *InvalidArgumentError for external
// packages (transforms, adapters outside this module) that need to
// report the same precondition-violation category bio itself uses.
func NewInvalidArgumentError(format string, args ...any) error {
	return errInvalidArgument(format, args...)
}

// OutOfBoundsError reports an index outside the valid range of a
// buffer or byte slice, for callers that want to distinguish this
// from a generic InvalidArgumentError.
type OutOfBoundsError struct {
	Msg string
}

func (e *OutOfBoundsError) Error() string { return "bio: out of bounds: " + e.Msg }

func errOutOfBounds(format string, args ...any) error {
	return &OutOfBoundsError{Msg: fmt.Sprintf(format, args...)}
}

// NumberFormatError reports a malformed decimal or hexadecimal number
// encountered by Buffer.ReadDecimalLong or Buffer.ReadHexadecimalUnsignedLong.
type NumberFormatError struct {
	Msg string
}

func (e *NumberFormatError) Error() string { return "bio: number format: " + e.Msg }

func errNumberFormat(format string, args ...any) error {
	return &NumberFormatError{Msg: fmt.Sprintf(format, args...)}
}

// IllegalStateError reports an operation performed on an object that is
// not in a state that permits it. The package's own closed-adapter and
// invalidated-peek paths return the ErrClosed and ErrPeekInvalidated
// sentinels instead, and a copy-tracker underflow panics.
type IllegalStateError struct {
	Msg string
}

func (e *IllegalStateError) Error() string { return "bio: illegal state: " + e.Msg }

func errIllegalState(format string, args ...any) error {
	return &IllegalStateError{Msg: fmt.Sprintf(format, args...)}
}
