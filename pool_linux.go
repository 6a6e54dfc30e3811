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

//go:build linux
// +build linux

package bio

import "golang.org/x/sys/unix"

// shardIndex picks the shard a goroutine hashes to. On Linux we use the
// kernel thread id (gettid) the same way the JVM port keys off
// Thread.currentThread().id(): cheap, stable for the life of the
// syscall, and good enough to spread contention across shards even
// though a goroutine may migrate between OS threads between calls.
func shardIndex() uint32 {
	return fnv32(uint32(unix.Gettid()))
}

func fnv32(x uint32) uint32 {
	const prime = 16777619
	h := uint32(2166136261)
	for i := 0; i < 4; i++ {
		h ^= x & 0xff
		h *= prime
		x >>= 8
	}
	return h
}
