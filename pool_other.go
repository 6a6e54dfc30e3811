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

//go:build !linux
// +build !linux

package bio

import "sync/atomic"

// shardCounter drives shard selection on platforms without a cheap
// thread-id syscall (see pool_linux.go). It is a plain round-robin
// counter rather than anything per-goroutine, which is less effective
// at keeping a single goroutine pinned to one shard but is still
// lock-free and spreads concurrent callers across shards.
var shardCounter uint32

func shardIndex() uint32 {
	return atomic.AddUint32(&shardCounter, 1)
}
