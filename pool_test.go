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

import "testing"

// TestPoolBookkeeping is scenario 8: after skipping 2*L1_MAX bytes in
// one buffer the shard's resident byte count saturates at L1_MAX and
// overflow beyond that is silently dropped.
func TestPoolBookkeeping(t *testing.T) {
	pool := NewSegmentPool(WithL1Shards(1), WithL1MaxBytes(2*segmentSize))
	b := Buffer{Pool: pool}

	b.WriteBytes(bytesOf('x', 6*segmentSize))
	b.Discard(4 * segmentSize)
	if got := pool.ShardByteCount(0); got != 2*segmentSize {
		t.Fatalf("after skipping 2*L1_MAX: shard byte count = %d, want %d", got, 2*segmentSize)
	}

	b.Discard(2 * segmentSize)
	if got := pool.ShardByteCount(0); got != 2*segmentSize {
		t.Fatalf("after skipping another L1_MAX: shard byte count = %d, want it to stay saturated at %d", got, 2*segmentSize)
	}
}

func TestPoolTakeAllocatesWhenEmpty(t *testing.T) {
	pool := NewSegmentPool(WithL1Shards(1))
	seg := pool.Take()
	if seg == nil || !seg.owner || seg.shared {
		t.Fatalf("Take() from an empty pool should allocate a fresh owned segment")
	}
}

func TestPoolRecycleThenTakeReusesStorage(t *testing.T) {
	pool := NewSegmentPool(WithL1Shards(1))
	seg := pool.Take()
	backing := &seg.data[0]
	pool.Recycle(seg)

	got := pool.Take()
	if &got.data[0] != backing {
		t.Fatalf("Take() after Recycle() should reuse the recycled segment's storage")
	}
}

func TestPoolL2Overflow(t *testing.T) {
	pool := NewSegmentPool(WithL1Shards(1), WithL1MaxBytes(segmentSize), WithL2Pool(segmentSize))
	a, b := pool.Take(), pool.Take()
	pool.Recycle(a)
	pool.Recycle(b) // L1 shard is already full; this should land in L2

	if got := pool.ShardByteCount(0); got != segmentSize {
		t.Fatalf("L1 shard byte count = %d, want %d", got, segmentSize)
	}
}
