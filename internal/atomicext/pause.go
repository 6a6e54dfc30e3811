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

package atomicext

import "runtime"

// Pause hints the scheduler that the calling goroutine is spinning on a
// lock-free retry loop. A few iterations spin in place before yielding the
// P, which keeps short races cheap without starving other goroutines during
// longer contention.
func Pause(iter int) {
	if iter < 4 {
		return
	}
	runtime.Gosched()
}
