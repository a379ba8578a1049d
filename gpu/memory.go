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

// Package gpu tracks which host address ranges are visible to the emulated
// GPU. The kernel memory subsystem registers GPU-visible mappings here when
// they are created and frees them on teardown, after waiting for in-flight
// GPU work to drain.
//
// Only the address-range bookkeeping lives in this package. Command
// submission and rendering are the business of the graphics system, which
// reports its activity through BeginRun()/EndRun().
package gpu

import (
	"sync"
)

// MemoryMode is the GPU's view of a mapped range.
type MemoryMode int

// List of valid MemoryMode values.
const (
	NoAccess MemoryMode = iota
	Read
	Write
	ReadWrite
)

func (m MemoryMode) String() string {
	switch m {
	case NoAccess:
		return "NoAccess"
	case Read:
		return "Read"
	case Write:
		return "Write"
	case ReadWrite:
		return "ReadWrite"
	}
	return "unknown"
}

// Context is a handle to the graphics system on whose behalf GPU memory is
// freed. Opaque to the kernel memory subsystem.
type Context struct {
	Label string
}

type allocatedRange struct {
	addr uint64
	size uint64
}

// Memory tracks GPU-visible address ranges and in-flight GPU work.
type Memory struct {
	crit   sync.Mutex
	ranges []allocatedRange

	// number of GPU runs currently in flight. idle is signalled when the
	// count returns to zero
	running int
	idle    *sync.Cond
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory() *Memory {
	mem := &Memory{}
	mem.idle = sync.NewCond(&mem.crit)
	return mem
}

// MarkAllocated records an address range as GPU-visible.
func (mem *Memory) MarkAllocated(addr uint64, size uint64) {
	mem.crit.Lock()
	defer mem.crit.Unlock()

	mem.ranges = append(mem.ranges, allocatedRange{addr: addr, size: size})
}

// FreeRange forgets every tracked range that overlaps [addr, addr+size).
func (mem *Memory) FreeRange(ctx *Context, addr uint64, size uint64) {
	mem.crit.Lock()
	defer mem.crit.Unlock()

	keep := mem.ranges[:0]
	for _, r := range mem.ranges {
		if r.addr+r.size <= addr || r.addr >= addr+size {
			keep = append(keep, r)
		}
	}
	mem.ranges = keep
}

// IsAllocated returns true if addr falls inside a tracked range.
func (mem *Memory) IsAllocated(addr uint64) bool {
	mem.crit.Lock()
	defer mem.crit.Unlock()

	for _, r := range mem.ranges {
		if addr >= r.addr && addr < r.addr+r.size {
			return true
		}
	}
	return false
}

// BeginRun records the start of a unit of GPU work.
func (mem *Memory) BeginRun() {
	mem.crit.Lock()
	defer mem.crit.Unlock()
	mem.running++
}

// EndRun records the completion of a unit of GPU work started with
// BeginRun().
func (mem *Memory) EndRun() {
	mem.crit.Lock()
	defer mem.crit.Unlock()

	mem.running--
	if mem.running <= 0 {
		mem.idle.Broadcast()
	}
}

// WaitIdle blocks until there is no GPU work in flight. Called before a
// GPU-visible range is freed so the GPU cannot touch memory the guest has
// released.
func (mem *Memory) WaitIdle() {
	mem.crit.Lock()
	defer mem.crit.Unlock()

	for mem.running > 0 {
		mem.idle.Wait()
	}
}
