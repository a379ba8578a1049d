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

package hostmem

import (
	"sync"
)

// the page size assumed by the simulated address space. matches the guest
// ABI page size
const simPageSize = 0x1000

// DefaultSimBase is the base address used by NewSim(). The value is well
// clear of the null page and looks like a plausible process address.
const DefaultSimBase = 0x2_0000_0000

// Sim simulates a host address space. Addresses grow monotonically from the
// base address and are always page aligned. No real memory is reserved.
//
// Placement is deterministic: a given sequence of reservations always yields
// the same addresses. Hint addresses are ignored.
//
// The zero value is not usable; use NewSim().
type Sim struct {
	crit sync.Mutex

	// next candidate address
	next uint64

	// size of each live reservation keyed by address
	reserved map[uint64]uint64

	// Limit is the address at which the simulated address space is
	// exhausted. a Limit of zero means no limit. setting a low Limit is a
	// convenient way for tests to provoke reservation failure
	Limit uint64
}

// NewSim is the preferred method of initialisation for the Sim type.
func NewSim(base uint64) *Sim {
	if base == 0 {
		base = DefaultSimBase
	}
	return &Sim{
		next:     alignUp(base, simPageSize),
		reserved: make(map[uint64]uint64),
	}
}

// Reserve implements the Reserver interface.
func (sim *Sim) Reserve(hint uint64, size uint64, mode Mode) uint64 {
	return sim.ReserveAligned(hint, size, mode, simPageSize)
}

// ReserveAligned implements the Reserver interface.
func (sim *Sim) ReserveAligned(hint uint64, size uint64, mode Mode, alignment uint64) uint64 {
	if size == 0 {
		return 0
	}

	sim.crit.Lock()
	defer sim.crit.Unlock()

	if alignment < simPageSize {
		alignment = simPageSize
	}

	addr := alignUp(sim.next, alignment)
	if sim.Limit != 0 && addr+size > sim.Limit {
		return 0
	}

	sim.next = alignUp(addr+size, simPageSize)
	sim.reserved[addr] = size

	return addr
}

// Release implements the Reserver interface.
func (sim *Sim) Release(addr uint64) {
	sim.crit.Lock()
	defer sim.crit.Unlock()
	delete(sim.reserved, addr)
}

// Outstanding returns the number of live reservations. Useful for tests that
// check reservations are not leaked on a failure path.
func (sim *Sim) Outstanding() int {
	sim.crit.Lock()
	defer sim.crit.Unlock()
	return len(sim.reserved)
}
