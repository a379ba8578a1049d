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
	"github.com/vantage-emu/vantage/curated"
	"github.com/vantage-emu/vantage/gpu"
	"github.com/vantage-emu/vantage/hostmem"
	"github.com/vantage-emu/vantage/logger"
)

// GPUTracker is the view of the GPU memory system required by the kernel
// memory subsystem. The gpu package provides the real implementation.
type GPUTracker interface {
	// MarkAllocated records an address range as GPU-visible
	MarkAllocated(addr uint64, size uint64)

	// FreeRange forgets a previously marked range
	FreeRange(ctx *gpu.Context, addr uint64, size uint64)

	// WaitIdle blocks until in-flight GPU work has drained
	WaitIdle()
}

// MemoryInfo is returned by QueryMemoryProtection(). End is the address of
// the last byte of the mapped range, ie. inclusive.
type MemoryInfo struct {
	Start uint64
	End   uint64
	Prot  int
}

// Memory is the guest-facing surface of the kernel memory subsystem. Each
// method validates its arguments, translates the guest protection code,
// obtains or releases a host address range and records the result with the
// physical or flexible manager.
//
// Methods are safe to call from concurrent guest threads. Collaborators are
// invoked outside the managers' locks, so the manager update and the host
// reservation are not atomic as a pair; the subsystem does not provide
// recovery for a crash between the two steps.
//
// Memory should be constructed once, by kernel.New(), during subsystem
// initialisation.
type Memory struct {
	physical *PhysicalMemory
	flexible *FlexibleMemory

	addressSpace hostmem.Reserver
	gpuTracker   GPUTracker

	// the graphics context on whose behalf GPU memory is freed during
	// teardown
	gctx *gpu.Context
}

// NewMemory is the preferred method of initialisation for the Memory type.
// It constructs both managers; no other component constructs them.
func NewMemory(addressSpace hostmem.Reserver, gpuTracker GPUTracker, gctx *gpu.Context) *Memory {
	return &Memory{
		physical:     NewPhysicalMemory(),
		flexible:     NewFlexibleMemory(),
		addressSpace: addressSpace,
		gpuTracker:   gpuTracker,
		gctx:         gctx,
	}
}

// MapNamedFlexibleMemory reserves a host address range of the given length
// and registers it as a flexible mapping. The hint address is advisory; the
// address actually used is returned. The name is recorded in the log only.
//
// No flags are supported. A non-zero flags value aborts.
func (mem *Memory) MapNamedFlexibleMemory(hint uint64, length uint64, prot int, flags int, name string) (uint64, error) {
	const entry = "MapNamedFlexibleMemory"

	if flags != 0 {
		abortf("%s: unsupported flags (%#x)", entry, flags)
	}

	mode, gpuMode := DecodeProt(prot, false)

	addr := mem.addressSpace.Reserve(hint, length, mode)

	logger.Logf("memory", "%s: hint=%#x addr=%#x size=%#x mode=%s name=%s",
		entry, hint, addr, length, mode, name)

	if addr == 0 {
		return 0, curated.Errorf(OutOfMemory, entry)
	}

	if !mem.flexible.Map(addr, length, prot, mode, gpuMode) {
		mem.addressSpace.Release(addr)
		return 0, curated.Errorf(OutOfMemory, entry)
	}

	return addr, nil
}

// Munmap tears down the mapping that matches (vaddr, length) exactly,
// whichever manager is tracking it, and releases the host address range. If
// the mapping was GPU-visible the GPU is drained before its range is freed.
//
// Unmapping a range that no manager is tracking aborts.
func (mem *Memory) Munmap(vaddr uint64, length uint64) error {
	const entry = "Munmap"

	logger.Logf("memory", "%s: vaddr=%#x size=%#x", entry, vaddr, length)

	if length == 0 {
		return curated.Errorf(InvalidArgument, entry)
	}

	gpuMode, ok := mem.physical.Unmap(vaddr, length)
	if !ok {
		gpuMode, ok = mem.flexible.Unmap(vaddr, length)
	}
	if !ok {
		abortf("%s: [%#x, %#x) is not a tracked mapping", entry, vaddr, vaddr+length)
	}

	mem.addressSpace.Release(vaddr)

	if gpuMode != gpu.NoAccess {
		mem.gpuTracker.WaitIdle()
		mem.gpuTracker.FreeRange(mem.gctx, vaddr, length)
	}

	return nil
}

// DirectMemorySize returns the extent of the guest's physical backing
// space.
func (mem *Memory) DirectMemorySize() uint64 {
	return mem.physical.Size()
}

// AllocateDirectMemory allocates a block of physical memory of the given
// length within the search window. The block is not mapped; see
// MapDirectMemory(). memoryType is accepted for ABI compatibility but not
// interpreted.
//
// A window that cannot fit the allocation is a try-again error, distinct
// from invalid arguments.
func (mem *Memory) AllocateDirectMemory(searchStart int64, searchEnd int64,
	length uint64, alignment uint64, memoryType int) (int64, error) {

	const entry = "AllocateDirectMemory"

	logger.Logf("memory", "%s: search=[%#x, %#x) size=%#x align=%#x type=%d",
		entry, searchStart, searchEnd, length, alignment, memoryType)

	if searchStart < 0 || searchEnd <= searchStart || length == 0 {
		return 0, curated.Errorf(InvalidArgument, entry)
	}

	addr, ok := mem.physical.Alloc(uint64(searchStart), uint64(searchEnd), length, alignment)
	if !ok {
		return 0, curated.Errorf(TryAgain, entry)
	}

	logger.Logf("memory", "%s: phys=%#x", entry, addr)

	return int64(addr), nil
}

// ReleaseDirectMemory destroys the physical block that matches (start,
// length) exactly. If the block had a live mapping its host address range is
// released and, if the mapping was GPU-visible, the GPU is drained and its
// range freed; the teardown mirrors Munmap().
//
// Releasing a range that matches no block aborts.
func (mem *Memory) ReleaseDirectMemory(start int64, length uint64) error {
	const entry = "ReleaseDirectMemory"

	logger.Logf("memory", "%s: phys=%#x size=%#x", entry, start, length)

	if start < 0 || length == 0 {
		return curated.Errorf(InvalidArgument, entry)
	}

	un, ok := mem.physical.Release(uint64(start), length)
	if !ok {
		abortf("%s: [%#x, %#x) is not an allocated block", entry, start, uint64(start)+length)
	}

	if un.Vaddr != 0 || un.Size != 0 {
		mem.addressSpace.Release(un.Vaddr)
	}

	if un.GPU != gpu.NoAccess {
		mem.gpuTracker.WaitIdle()
		mem.gpuTracker.FreeRange(mem.gctx, un.Vaddr, un.Size)
	}

	return nil
}

// MapDirectMemory reserves an aligned host address range and maps it to the
// physical block containing directMemoryStart. The hint address is advisory;
// the address actually used is returned. If the protection code grants GPU
// visibility the range is registered with the GPU tracker.
//
// Mapping a block that already has an active mapping is a busy error. No
// flags are supported; a non-zero flags value aborts.
func (mem *Memory) MapDirectMemory(hint uint64, length uint64, prot int, flags int,
	directMemoryStart int64, alignment uint64) (uint64, error) {

	const entry = "MapDirectMemory"

	if flags != 0 {
		abortf("%s: unsupported flags (%#x)", entry, flags)
	}

	mode, gpuMode := DecodeProt(prot, true)

	addr := mem.addressSpace.ReserveAligned(hint, length, mode, alignment)

	logger.Logf("memory", "%s: hint=%#x addr=%#x size=%#x align=%#x mode=%s gpu=%s phys=%#x",
		entry, hint, addr, length, alignment, mode, gpuMode, directMemoryStart)

	if addr == 0 {
		return 0, curated.Errorf(OutOfMemory, entry)
	}

	if !mem.physical.Map(addr, uint64(directMemoryStart), length, prot, mode, gpuMode) {
		mem.addressSpace.Release(addr)
		return 0, curated.Errorf(Busy, entry)
	}

	if gpuMode != gpu.NoAccess {
		mem.gpuTracker.MarkAllocated(addr, length)
	}

	return addr, nil
}

// QueryMemoryProtection reports the mapped range containing addr and its
// protection code. An address inside no tracked mapping is an access-denied
// error.
func (mem *Memory) QueryMemoryProtection(addr uint64) (MemoryInfo, error) {
	const entry = "QueryMemoryProtection"

	m, ok := mem.physical.Find(addr)
	if !ok {
		m, ok = mem.flexible.Find(addr)
	}
	if !ok {
		return MemoryInfo{}, curated.Errorf(AccessDenied, entry)
	}

	return MemoryInfo{
		Start: m.Base,
		End:   m.Base + m.Size - 1,
		Prot:  m.Prot,
	}, nil
}
