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
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/SnellerInc/bio/internal/atomicext"
)

const (
	// DefaultL1MaxBytes is the default byte budget of each L1 shard.
	DefaultL1MaxBytes = 64 * 1024

	// DefaultL2MaxBytes is the default byte budget of each L2 shard,
	// used only when a second tier is enabled via WithL2Pool.
	DefaultL2MaxBytes = 256 * 1024
)

// lockToken marks a shard's head as "currently being inspected by some
// goroutine"; every other taker/recycler must back off and retry.
var lockToken = unsafe.Pointer(&segment{})

// shard is one lock-free LIFO free-list of segments. The byte count
// currently resident in the shard is folded into the limit field of
// the segment sitting at the head of the list, which avoids a separate
// counter field (and its own synchronization) per shard.
type shard struct {
	head unsafe.Pointer // *segment
	_    [7]uint64       // pad to its own cache line to cut false sharing
}

func (sh *shard) take() *segment {
	for i := 0; ; i++ {
		old := atomic.SwapPointer(&sh.head, lockToken)
		if old == lockToken {
			atomicext.Pause(i)
			continue
		}
		if old == nil {
			atomic.StorePointer(&sh.head, nil)
			return nil
		}
		seg := (*segment)(old)
		atomic.StorePointer(&sh.head, unsafe.Pointer(seg.next))
		seg.next = nil
		seg.pos, seg.limit = 0, 0
		return seg
	}
}

// recycle pushes seg onto the shard if doing so would not exceed
// maxBytes total; it reports whether the push happened.
func (sh *shard) recycle(seg *segment, maxBytes int) bool {
	for i := 0; ; i++ {
		old := atomic.SwapPointer(&sh.head, lockToken)
		if old == lockToken {
			atomicext.Pause(i)
			continue
		}
		total := 0
		if old != nil {
			total = (*segment)(old).limit
		}
		if total+segmentSize > maxBytes {
			atomic.StorePointer(&sh.head, old)
			return false
		}
		seg.next = (*segment)(old)
		seg.limit = total + segmentSize
		seg.pos = 0
		atomic.StorePointer(&sh.head, unsafe.Pointer(seg))
		return true
	}
}

// totalBytes reports the byte count currently parked in the shard. It
// is racy with concurrent take/recycle calls and is meant for tests
// and diagnostics, not for synchronization.
func (sh *shard) totalBytes() int {
	p := atomic.LoadPointer(&sh.head)
	if p == nil || p == lockToken {
		return 0
	}
	return (*segment)(p).limit
}

// SegmentPool is a process-wide, thread-sharded, lock-free recycler of
// fixed-size segments. Use DefaultPool unless a program needs isolated
// pools (for example, to bound memory independently per tenant).
type SegmentPool struct {
	l1        []shard
	l1Mask    uint32
	l1MaxBytes int

	l2        []shard
	l2Mask    uint32
	l2MaxBytes int
	l2Enabled bool

	allocated int64 // segments allocated fresh, for diagnostics
}

// PoolOption configures a SegmentPool constructed with NewSegmentPool.
type PoolOption func(*SegmentPool)

// WithL1Shards overrides the number of L1 shards. n is rounded up to
// the next power of two; the default is the least power of two that is
// at least 2*runtime.GOMAXPROCS(0).
func WithL1Shards(n int) PoolOption {
	return func(p *SegmentPool) { p.l1 = make([]shard, nextPow2(n)) }
}

// WithL1MaxBytes overrides the per-shard L1 byte budget.
func WithL1MaxBytes(n int) PoolOption {
	return func(p *SegmentPool) { p.l1MaxBytes = n }
}

// WithL2Pool enables a second-tier pool with the given per-shard byte
// budget. The L2 pool is consulted only when an L1 shard is both empty
// (on take) or full (on recycle).
func WithL2Pool(maxBytesPerShard int) PoolOption {
	return func(p *SegmentPool) {
		p.l2Enabled = true
		p.l2MaxBytes = maxBytesPerShard
	}
}

// WithL2Shards overrides the number of L2 shards; it implies
// WithL2Pool(DefaultL2MaxBytes) unless combined with WithL2Pool.
func WithL2Shards(n int) PoolOption {
	return func(p *SegmentPool) {
		p.l2Enabled = true
		p.l2 = make([]shard, nextPow2(n))
	}
}

// NewSegmentPool constructs a SegmentPool. Most programs should not
// need more than the package-level DefaultPool; this constructor
// exists for tests and for programs that want explicit, non-ambient
// control over pool sizing (see the Open Questions in the design doc
// about L2 parameters no longer being read from ambient configuration).
func NewSegmentPool(opts ...PoolOption) *SegmentPool {
	p := &SegmentPool{
		l1MaxBytes: DefaultL1MaxBytes,
		l2MaxBytes: DefaultL2MaxBytes,
	}
	n1 := nextPow2(2 * runtime.GOMAXPROCS(0))
	p.l1 = make([]shard, n1)
	for _, opt := range opts {
		opt(p)
	}
	p.l1Mask = uint32(len(p.l1) - 1)
	if p.l2Enabled && p.l2 == nil {
		n2 := nextPow2(len(p.l1) / 2)
		if n2 == 0 {
			n2 = 1
		}
		p.l2 = make([]shard, n2)
	}
	if p.l2 != nil {
		p.l2Mask = uint32(len(p.l2) - 1)
	}
	return p
}

// DefaultPool is the process-wide segment pool used by every Buffer
// that is not constructed with an explicit pool.
var DefaultPool = NewSegmentPool()

// Take removes a segment from the pool, allocating a fresh one if
// every shard (and, if enabled, the L2 tier) is empty.
func (p *SegmentPool) Take() *segment {
	idx := shardIndex() & p.l1Mask
	if seg := p.l1[idx].take(); seg != nil {
		return resetTaken(seg)
	}
	if p.l2 != nil {
		n := len(p.l2)
		start := int(shardIndex() & p.l2Mask)
		for i := 0; i < n; i++ {
			if seg := p.l2[(start+i)%n].take(); seg != nil {
				return resetTaken(seg)
			}
		}
	}
	atomic.AddInt64(&p.allocated, 1)
	return newOwnedSegment()
}

func resetTaken(seg *segment) *segment {
	seg.owner = true
	seg.shared = false
	seg.tracker = nil
	return seg
}

// Recycle returns seg to the pool, unless seg aliases a backing array
// that other live segments still reference, in which case the caller
// must not reuse or repool seg's storage (the last alias to call
// Recycle does so on its behalf).
func (p *SegmentPool) Recycle(seg *segment) {
	if seg.tracker != nil {
		stillShared := seg.tracker.removeCopyIfShared()
		seg.tracker = nil
		if stillShared {
			return
		}
	}
	seg.shared = false
	seg.owner = true
	seg.next = nil

	idx := shardIndex() & p.l1Mask
	if p.l1[idx].recycle(seg, p.l1MaxBytes) {
		return
	}
	if p.l2 != nil {
		n := len(p.l2)
		start := int(shardIndex() & p.l2Mask)
		for i := 0; i < n; i++ {
			if p.l2[(start+i)%n].recycle(seg, p.l2MaxBytes) {
				return
			}
		}
	}
	// Every shard is at capacity: drop the segment on the floor. The
	// pool never blocks and never grows without bound.
}

// ShardByteCount returns the number of bytes currently parked in the
// L1 shard that idx would select, for tests that assert on pool
// bookkeeping (see the scenario in the design doc about skip() driving
// shard accounting).
func (p *SegmentPool) ShardByteCount(idx int) int {
	return p.l1[uint32(idx)&p.l1Mask].totalBytes()
}

func nextPow2(n int) int {
	if n < 1 {
		n = 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
