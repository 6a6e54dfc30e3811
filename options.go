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

import "golang.org/x/exp/slices"

// Options is a fixed set of candidate byte strings that SelectWithIter
// can match against the head of a BufferedSource in a single pass,
// without the caller having to Request each candidate's length up
// front and compare them by hand.
type Options struct {
	values [][]byte
	err    error
}

// NewOptions copies each candidate and returns the set. Candidates are
// tried in the order given; when more than one is a prefix match at
// the same length the earliest one in this list wins. A zero-length
// candidate would match instantly and make every other candidate
// unreachable, so it is rejected; the error surfaces from the first
// SelectWithIter call against this set.
func NewOptions(candidates ...[]byte) *Options {
	values := make([][]byte, len(candidates))
	for i, c := range candidates {
		cp := make([]byte, len(c))
		copy(cp, c)
		values[i] = cp
	}
	opts := &Options{values: values}
	if slices.ContainsFunc(values, func(c []byte) bool { return len(c) == 0 }) {
		opts.err = errInvalidArgument("NewOptions: candidates must not be empty")
	}
	return opts
}

// SelectWithIter finds the longest candidate in opts that is a prefix
// of the unread bytes of s, consumes it, and returns its index. It
// returns -1 without consuming anything if none of opts matches, or
// if s reaches end of stream before any candidate is eliminated or
// completed.
func (s *BufferedSource) SelectWithIter(opts *Options) (int, error) {
	if opts.err != nil {
		return -1, opts.err
	}
	candidates := make([]int, len(opts.values))
	for i := range candidates {
		candidates[i] = i
	}
	bestIndex, bestLen := -1, 0
	pos := int64(0)
	for len(candidates) > 0 {
		ok, err := s.Request(pos + 1)
		if err != nil {
			return -1, err
		}
		if !ok {
			break
		}
		b, err := s.buf.byteAt(pos)
		if err != nil {
			return -1, err
		}
		next := candidates[:0]
		for _, idx := range candidates {
			opt := opts.values[idx]
			if int(pos) >= len(opt) || opt[pos] != b {
				continue
			}
			if int(pos)+1 == len(opt) {
				if len(opt) > bestLen {
					bestIndex, bestLen = idx, len(opt)
				}
				continue
			}
			next = append(next, idx)
		}
		candidates = next
		pos++
	}
	if bestIndex < 0 {
		return -1, nil
	}
	if err := s.Skip(int64(bestLen)); err != nil {
		return -1, err
	}
	return bestIndex, nil
}
