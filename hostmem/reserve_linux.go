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

//go:build linux
// +build linux

package hostmem

import (
	"sync"

	"golang.org/x/sys/unix"
)

// native reserves real address ranges with anonymous mmap. the size of each
// reservation is remembered so that Release() can munmap the whole range.
type native struct {
	crit     sync.Mutex
	reserved map[uint64]uint64
}

// NewNative returns a Reserver backed by the host operating system's virtual
// memory.
func NewNative() Reserver {
	return &native{
		reserved: make(map[uint64]uint64),
	}
}

func mmapProt(mode Mode) int {
	switch mode {
	case ModeRead:
		return unix.PROT_READ
	case ModeReadWrite:
		return unix.PROT_READ | unix.PROT_WRITE
	case ModeExecute:
		return unix.PROT_EXEC
	case ModeExecuteRead:
		return unix.PROT_READ | unix.PROT_EXEC
	case ModeExecuteReadWrite:
		return unix.PROT_READ | unix.PROT_WRITE | unix.PROT_EXEC
	}
	return unix.PROT_NONE
}

func pageCeil(v uint64) uint64 {
	pageSize := uint64(unix.Getpagesize())
	return (v + pageSize - 1) &^ (pageSize - 1)
}

// mmap wraps the raw system call. the hint address is advisory (no
// MAP_FIXED); the kernel places the range elsewhere if the hint is not
// available.
func mmap(hint uint64, size uint64, prot int) uint64 {
	addr, _, errno := unix.Syscall6(unix.SYS_MMAP,
		uintptr(hint), uintptr(size), uintptr(prot),
		uintptr(unix.MAP_PRIVATE|unix.MAP_ANONYMOUS),
		^uintptr(0), 0)
	if errno != 0 {
		return 0
	}
	return uint64(addr)
}

func munmap(addr uint64, size uint64) {
	_, _, _ = unix.Syscall(unix.SYS_MUNMAP, uintptr(addr), uintptr(size), 0)
}

// Reserve implements the Reserver interface.
func (nat *native) Reserve(hint uint64, size uint64, mode Mode) uint64 {
	if size == 0 {
		return 0
	}

	addr := mmap(hint, size, mmapProt(mode))
	if addr == 0 {
		return 0
	}

	nat.crit.Lock()
	nat.reserved[addr] = size
	nat.crit.Unlock()

	return addr
}

// ReserveAligned implements the Reserver interface. Alignments coarser than
// the page size are satisfied by over-mapping and trimming the excess from
// both ends of the range.
func (nat *native) ReserveAligned(hint uint64, size uint64, mode Mode, alignment uint64) uint64 {
	if size == 0 {
		return 0
	}

	if alignment <= uint64(unix.Getpagesize()) {
		return nat.Reserve(hint, size, mode)
	}

	raw := mmap(hint, size+alignment, mmapProt(mode))
	if raw == 0 {
		return 0
	}

	addr := alignUp(raw, alignment)

	// trim the misaligned head
	if addr > raw {
		munmap(raw, addr-raw)
	}

	// trim the tail beyond the requested size
	tail := pageCeil(addr + size)
	end := raw + size + alignment
	if end > tail {
		munmap(tail, end-tail)
	}

	nat.crit.Lock()
	nat.reserved[addr] = size
	nat.crit.Unlock()

	return addr
}

// Release implements the Reserver interface.
func (nat *native) Release(addr uint64) {
	nat.crit.Lock()
	size, ok := nat.reserved[addr]
	delete(nat.reserved, addr)
	nat.crit.Unlock()

	if ok {
		munmap(addr, size)
	}
}
