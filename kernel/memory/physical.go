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

package memory

import (
	"sync"

	"github.com/vantage-emu/vantage/gpu"
	"github.com/vantage-emu/vantage/hostmem"
)

// size of the physical backing space available to the guest. fixed by the
// console hardware being emulated
const directMemorySize = uint64(5376) * 1024 * 1024

// physicalBlock is one allocated physical range and, optionally, its current
// mapping. A block has either no mapping (mapVaddr and mapSize both zero) or
// exactly one. The physical range never changes while the block exists.
type physicalBlock struct {
	start uint64
	size  uint64

	// the guest virtual range currently mapped to this block. zero when
	// unmapped
	mapVaddr uint64
	mapSize  uint64

	// attributes of the current mapping
	prot    int
	mode    hostmem.Mode
	gpuMode gpu.MemoryMode
}

// Mapping is the copy-out description of an active mapping, as returned by
// Find().
type Mapping struct {
	Base uint64
	Size uint64
	Prot int
	Mode hostmem.Mode
	GPU  gpu.MemoryMode
}

// Unmapping is the last-known mapping state of a released block, as returned
// by Release(). The caller uses it to free the corresponding host virtual
// range. All fields are zero if the block was never mapped.
type Unmapping struct {
	Vaddr uint64
	Size  uint64
	GPU   gpu.MemoryMode
}

// PhysicalMemory tracks the allocated blocks within the guest's physical
// backing space. Blocks are kept in insertion order, not address order.
//
// It is the physical half of the kernel memory subsystem and should be
// constructed only by NewMemory() during subsystem initialisation.
type PhysicalMemory struct {
	crit   sync.Mutex
	blocks []physicalBlock
}

// NewPhysicalMemory is the preferred method of initialisation for the
// PhysicalMemory type.
func NewPhysicalMemory() *PhysicalMemory {
	return &PhysicalMemory{}
}

// Size returns the extent of the physical backing space. The value is fixed
// and independent of allocation state.
func (phy *PhysicalMemory) Size() uint64 {
	return directMemorySize
}

// Alloc finds space for a new block of the given length. The candidate
// address is the highest end address over all current blocks, aligned up:
// the allocator only ever grows upwards. Allocation succeeds if the
// candidate window fits inside [searchStart, searchEnd).
//
// A consequence of re-scanning the remaining blocks is that releasing the
// highest block makes its space available again, while releasing any other
// block leaves a hole that is never refilled. The console kernel being
// emulated behaves the same way.
func (phy *PhysicalMemory) Alloc(searchStart uint64, searchEnd uint64, length uint64, alignment uint64) (uint64, bool) {
	phy.crit.Lock()
	defer phy.crit.Unlock()

	var freePos uint64
	for _, b := range phy.blocks {
		if n := b.start + b.size; n > freePos {
			freePos = n
		}
	}

	freePos = alignUp(freePos, alignment)

	if freePos >= searchStart && freePos+length <= searchEnd {
		phy.blocks = append(phy.blocks, physicalBlock{
			start: freePos,
			size:  length,
		})
		return freePos, true
	}

	return 0, false
}

// Release destroys the block that matches the (start, length) range exactly
// and returns its last-known mapping state. Overlapping but inexact ranges
// do not match.
func (phy *PhysicalMemory) Release(start uint64, length uint64) (Unmapping, bool) {
	phy.crit.Lock()
	defer phy.crit.Unlock()

	for i, b := range phy.blocks {
		if start == b.start && length == b.size {
			un := Unmapping{
				Vaddr: b.mapVaddr,
				Size:  b.mapSize,
				GPU:   b.gpuMode,
			}
			phy.blocks = append(phy.blocks[:i], phy.blocks[i+1:]...)
			return un, true
		}
	}

	return Unmapping{}, false
}

// Map records a mapping of the guest virtual range [vaddr, vaddr+length) to
// the block whose physical range contains physAddr. Fails if no block
// contains physAddr or if the block already has an active mapping: a block
// has at most one mapping and must be unmapped before it can be mapped
// again.
func (phy *PhysicalMemory) Map(vaddr uint64, physAddr uint64, length uint64,
	prot int, mode hostmem.Mode, gpuMode gpu.MemoryMode) bool {

	phy.crit.Lock()
	defer phy.crit.Unlock()

	for i := range phy.blocks {
		b := &phy.blocks[i]

		if physAddr >= b.start && physAddr < b.start+b.size {
			if b.mapVaddr != 0 || b.mapSize != 0 {
				return false
			}

			b.mapVaddr = vaddr
			b.mapSize = length
			b.prot = prot
			b.mode = mode
			b.gpuMode = gpuMode

			return true
		}
	}

	return false
}

// Unmap clears the mapping that matches (vaddr, size) exactly and returns
// its GPU visibility. The block itself persists; only Release() destroys
// blocks.
func (phy *PhysicalMemory) Unmap(vaddr uint64, size uint64) (gpu.MemoryMode, bool) {
	phy.crit.Lock()
	defer phy.crit.Unlock()

	for i := range phy.blocks {
		b := &phy.blocks[i]

		if b.mapVaddr == vaddr && b.mapSize == size {
			gpuMode := b.gpuMode

			b.mapVaddr = 0
			b.mapSize = 0
			b.prot = 0
			b.mode = hostmem.ModeNoAccess
			b.gpuMode = gpu.NoAccess

			return gpuMode, true
		}
	}

	return gpu.NoAccess, false
}

// Find returns the attributes of the mapping that contains vaddr. Unmapped
// blocks never match.
func (phy *PhysicalMemory) Find(vaddr uint64) (Mapping, bool) {
	phy.crit.Lock()
	defer phy.crit.Unlock()

	for _, b := range phy.blocks {
		if vaddr >= b.mapVaddr && vaddr < b.mapVaddr+b.mapSize {
			return Mapping{
				Base: b.mapVaddr,
				Size: b.mapSize,
				Prot: b.prot,
				Mode: b.mode,
				GPU:  b.gpuMode,
			}, true
		}
	}

	return Mapping{}, false
}

// snapshot returns a copy of the block list for visualisation.
func (phy *PhysicalMemory) snapshot() []physicalBlock {
	phy.crit.Lock()
	defer phy.crit.Unlock()

	s := make([]physicalBlock, len(phy.blocks))
	copy(s, phy.blocks)
	return s
}

// alignUp returns pos aligned upwards to the given alignment. An alignment
// of zero leaves pos unchanged.
func alignUp(pos uint64, alignment uint64) uint64 {
	if alignment == 0 {
		return pos
	}
	return (pos + (alignment - 1)) &^ (alignment - 1)
}
