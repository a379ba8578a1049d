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

// flexibleMapping is one virtually backed region. There is no physical range
// and so no allocate/release pair: a mapping is created and destroyed
// directly.
type flexibleMapping struct {
	mapVaddr uint64
	mapSize  uint64
	prot     int
	mode     hostmem.Mode
	gpuMode  gpu.MemoryMode
}

// FlexibleMemory tracks virtually backed mappings. Mappings are kept in
// insertion order.
//
// It is the virtual half of the kernel memory subsystem and should be
// constructed only by NewMemory() during subsystem initialisation.
type FlexibleMemory struct {
	crit     sync.Mutex
	mappings []flexibleMapping
}

// NewFlexibleMemory is the preferred method of initialisation for the
// FlexibleMemory type.
func NewFlexibleMemory() *FlexibleMemory {
	return &FlexibleMemory{}
}

// Map records a new mapping. It always succeeds.
func (flx *FlexibleMemory) Map(vaddr uint64, length uint64, prot int, mode hostmem.Mode, gpuMode gpu.MemoryMode) bool {
	flx.crit.Lock()
	defer flx.crit.Unlock()

	flx.mappings = append(flx.mappings, flexibleMapping{
		mapVaddr: vaddr,
		mapSize:  length,
		prot:     prot,
		mode:     mode,
		gpuMode:  gpuMode,
	})

	return true
}

// Unmap destroys the mapping that matches (vaddr, size) exactly and returns
// its GPU visibility. Overlapping but inexact ranges do not match.
func (flx *FlexibleMemory) Unmap(vaddr uint64, size uint64) (gpu.MemoryMode, bool) {
	flx.crit.Lock()
	defer flx.crit.Unlock()

	for i, m := range flx.mappings {
		if m.mapVaddr == vaddr && m.mapSize == size {
			gpuMode := m.gpuMode
			flx.mappings = append(flx.mappings[:i], flx.mappings[i+1:]...)
			return gpuMode, true
		}
	}

	return gpu.NoAccess, false
}

// Find returns the attributes of the mapping that contains vaddr.
func (flx *FlexibleMemory) Find(vaddr uint64) (Mapping, bool) {
	flx.crit.Lock()
	defer flx.crit.Unlock()

	for _, m := range flx.mappings {
		if vaddr >= m.mapVaddr && vaddr < m.mapVaddr+m.mapSize {
			return Mapping{
				Base: m.mapVaddr,
				Size: m.mapSize,
				Prot: m.prot,
				Mode: m.mode,
				GPU:  m.gpuMode,
			}, true
		}
	}

	return Mapping{}, false
}

// snapshot returns a copy of the mapping list for visualisation.
func (flx *FlexibleMemory) snapshot() []flexibleMapping {
	flx.crit.Lock()
	defer flx.crit.Unlock()

	s := make([]flexibleMapping, len(flx.mappings))
	copy(s, flx.mappings)
	return s
}
