// This file is part of Vantage.
//
// Vantage is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Vantage is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Vantage.  If not, see <https://www.gnu.org/licenses/>.

package memory_test

import (
	"sort"
	"sync"
	"testing"

	"github.com/vantage-emu/vantage/gpu"
	"github.com/vantage-emu/vantage/hostmem"
	"github.com/vantage-emu/vantage/kernel/memory"
	"github.com/vantage-emu/vantage/test"
)

// an allocation window covering the whole physical space
const (
	windowStart = uint64(0)
	windowEnd   = uint64(5376) * 1024 * 1024
)

func alloc(t *testing.T, phy *memory.PhysicalMemory, length uint64) uint64 {
	t.Helper()
	addr, ok := phy.Alloc(windowStart, windowEnd, length, 0)
	if !ok {
		t.Fatalf("allocation of %#x bytes failed unexpectedly", length)
	}
	return addr
}

func TestAllocMonotonic(t *testing.T) {
	phy := memory.NewPhysicalMemory()

	var prevAddr, prevLen uint64
	for _, length := range []uint64{0x1000, 0x100, 0x8000, 0x10, 0x4000} {
		addr := alloc(t, phy, length)
		if addr < prevAddr+prevLen {
			t.Fatalf("allocation at %#x overlaps previous allocation [%#x, %#x)",
				addr, prevAddr, prevAddr+prevLen)
		}
		prevAddr = addr
		prevLen = length
	}
}

func TestAllocAlignment(t *testing.T) {
	phy := memory.NewPhysicalMemory()

	alloc(t, phy, 0x123)

	addr, ok := phy.Alloc(windowStart, windowEnd, 0x1000, 0x10000)
	test.ExpectedSuccess(t, ok)
	test.Equate(t, addr%0x10000, 0)
	test.Equate(t, addr, uint64(0x10000))
}

func TestAllocWindow(t *testing.T) {
	phy := memory.NewPhysicalMemory()

	// candidate address is below the search window
	_, ok := phy.Alloc(0x10000, windowEnd, 0x1000, 0)
	test.ExpectedFailure(t, ok)

	// candidate address is inside the window but the length does not fit
	addr, ok := phy.Alloc(0, 0x1000, 0x2000, 0)
	test.ExpectedFailure(t, ok)
	test.Equate(t, addr, 0)

	// failed allocations leave no state behind
	addr, ok = phy.Alloc(0, 0x1000, 0x1000, 0)
	test.ExpectedSuccess(t, ok)
	test.Equate(t, addr, 0)
}

func TestReleaseTrailingReclaim(t *testing.T) {
	phy := memory.NewPhysicalMemory()

	a := alloc(t, phy, 0x1000)
	b := alloc(t, phy, 0x2000)
	test.Equate(t, b, a+0x1000)

	// releasing the trailing block reclaims its space
	_, ok := phy.Release(b, 0x2000)
	test.ExpectedSuccess(t, ok)

	c := alloc(t, phy, 0x3000)
	test.Equate(t, c, b)
}

func TestReleaseNonTrailingHole(t *testing.T) {
	phy := memory.NewPhysicalMemory()

	a := alloc(t, phy, 0x1000)
	b := alloc(t, phy, 0x2000)

	// releasing a non-trailing block leaves a hole that is never refilled
	_, ok := phy.Release(a, 0x1000)
	test.ExpectedSuccess(t, ok)

	c := alloc(t, phy, 0x1000)
	test.Equate(t, c, b+0x2000)
}

func TestReleaseExactMatch(t *testing.T) {
	phy := memory.NewPhysicalMemory()

	a := alloc(t, phy, 0x2000)

	// overlapping but inexact ranges do not match
	_, ok := phy.Release(a, 0x1000)
	test.ExpectedFailure(t, ok)
	_, ok = phy.Release(a+0x1000, 0x1000)
	test.ExpectedFailure(t, ok)

	_, ok = phy.Release(a, 0x2000)
	test.ExpectedSuccess(t, ok)

	// a released block cannot be released again
	_, ok = phy.Release(a, 0x2000)
	test.ExpectedFailure(t, ok)
}

func TestReleaseReturnsMapping(t *testing.T) {
	phy := memory.NewPhysicalMemory()

	a := alloc(t, phy, 0x1000)

	// a block that was never mapped releases with zeroed mapping state
	un, ok := phy.Release(a, 0x1000)
	test.ExpectedSuccess(t, ok)
	test.Equate(t, un.Vaddr, 0)
	test.Equate(t, un.Size, 0)
	test.Equate(t, int(un.GPU), int(gpu.NoAccess))

	b := alloc(t, phy, 0x1000)
	test.ExpectedSuccess(t, phy.Map(0x7000_0000, b, 0x1000, 0x32, hostmem.ModeReadWrite, gpu.ReadWrite))

	un, ok = phy.Release(b, 0x1000)
	test.ExpectedSuccess(t, ok)
	test.Equate(t, un.Vaddr, uint64(0x7000_0000))
	test.Equate(t, un.Size, uint64(0x1000))
	test.Equate(t, int(un.GPU), int(gpu.ReadWrite))
}

func TestSingleMappingPerBlock(t *testing.T) {
	phy := memory.NewPhysicalMemory()

	a := alloc(t, phy, 0x4000)

	test.ExpectedSuccess(t, phy.Map(0x7000_0000, a, 0x4000, 0x02, hostmem.ModeReadWrite, gpu.NoAccess))

	// a second mapping is refused, even through a different address inside
	// the block
	test.ExpectedFailure(t, phy.Map(0x8000_0000, a+0x100, 0x1000, 0x01, hostmem.ModeRead, gpu.NoAccess))

	// the refused mapping did not disturb the original
	m, ok := phy.Find(0x7000_0000)
	test.ExpectedSuccess(t, ok)
	test.Equate(t, m.Base, uint64(0x7000_0000))
	test.Equate(t, m.Size, uint64(0x4000))
	test.Equate(t, m.Prot, 0x02)

	// mapping an unallocated physical address fails
	test.ExpectedFailure(t, phy.Map(0x9000_0000, a+0x10000, 0x1000, 0x02, hostmem.ModeReadWrite, gpu.NoAccess))
}

func TestFindContainment(t *testing.T) {
	phy := memory.NewPhysicalMemory()

	a := alloc(t, phy, 0x1000)

	// unmapped blocks never match
	_, ok := phy.Find(0x7000_0000)
	test.ExpectedFailure(t, ok)

	test.ExpectedSuccess(t, phy.Map(0x7000_0000, a, 0x1000, 0x03, hostmem.ModeReadWrite, gpu.NoAccess))

	// both ends of the mapped range find the same attributes
	first, ok := phy.Find(0x7000_0000)
	test.ExpectedSuccess(t, ok)
	last, ok := phy.Find(0x7000_0fff)
	test.ExpectedSuccess(t, ok)
	test.Equate(t, first.Base, last.Base)
	test.Equate(t, first.Size, last.Size)
	test.Equate(t, first.Prot, last.Prot)

	// the upper bound is exclusive
	_, ok = phy.Find(0x7000_1000)
	test.ExpectedFailure(t, ok)
}

func TestUnmapRoundTrip(t *testing.T) {
	phy := memory.NewPhysicalMemory()

	a := alloc(t, phy, 0x1000)

	test.ExpectedSuccess(t, phy.Map(0x7000_0000, a, 0x1000, 0x33, hostmem.ModeReadWrite, gpu.ReadWrite))

	// exact match required
	_, ok := phy.Unmap(0x7000_0000, 0x800)
	test.ExpectedFailure(t, ok)

	gpuMode, ok := phy.Unmap(0x7000_0000, 0x1000)
	test.ExpectedSuccess(t, ok)
	test.Equate(t, int(gpuMode), int(gpu.ReadWrite))

	// indistinguishable from the state before the Map
	_, ok = phy.Find(0x7000_0000)
	test.ExpectedFailure(t, ok)

	// the block itself persists and can be mapped again
	test.ExpectedSuccess(t, phy.Map(0x8000_0000, a, 0x1000, 0x02, hostmem.ModeReadWrite, gpu.NoAccess))
}

func TestAllocConcurrency(t *testing.T) {
	phy := memory.NewPhysicalMemory()

	const goroutines = 8
	const perGoroutine = 50

	type block struct{ start, end uint64 }

	var wg sync.WaitGroup
	survived := make([][]block, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				length := uint64(0x1000 * (1 + j%4))
				addr, ok := phy.Alloc(windowStart, windowEnd, length, 0x1000)
				if !ok {
					continue
				}

				// release about half of the allocations while other
				// goroutines are still allocating
				if j%2 == 0 {
					if _, ok := phy.Release(addr, length); !ok {
						t.Errorf("release of own block [%#x, %#x) failed", addr, addr+length)
					}
					continue
				}

				survived[i] = append(survived[i], block{start: addr, end: addr + length})
			}
		}(i)
	}
	wg.Wait()

	// no two surviving blocks overlap
	var blocks []block
	for i := range survived {
		blocks = append(blocks, survived[i]...)
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].start < blocks[j].start })
	for i := 1; i < len(blocks); i++ {
		if blocks[i].start < blocks[i-1].end {
			t.Fatalf("blocks [%#x, %#x) and [%#x, %#x) overlap",
				blocks[i-1].start, blocks[i-1].end, blocks[i].start, blocks[i].end)
		}
	}
}
