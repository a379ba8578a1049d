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

//go:build windows
// +build windows

package hostmem

import (
	"golang.org/x/sys/windows"
)

// native reserves real address ranges with VirtualAlloc. VirtualFree with
// MEM_RELEASE frees a whole allocation by base address so no size
// bookkeeping is needed.
type native struct{}

// NewNative returns a Reserver backed by the host operating system's virtual
// memory.
func NewNative() Reserver {
	return &native{}
}

func pageProtect(mode Mode) uint32 {
	switch mode {
	case ModeRead:
		return windows.PAGE_READONLY
	case ModeReadWrite:
		return windows.PAGE_READWRITE
	case ModeExecute:
		return windows.PAGE_EXECUTE
	case ModeExecuteRead:
		return windows.PAGE_EXECUTE_READ
	case ModeExecuteReadWrite:
		return windows.PAGE_EXECUTE_READWRITE
	}
	return windows.PAGE_NOACCESS
}

// Reserve implements the Reserver interface.
func (nat *native) Reserve(hint uint64, size uint64, mode Mode) uint64 {
	if size == 0 {
		return 0
	}

	addr, err := windows.VirtualAlloc(uintptr(hint), uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT, pageProtect(mode))
	if err != nil && hint != 0 {
		// the hint address was not available
		addr, err = windows.VirtualAlloc(0, uintptr(size),
			windows.MEM_RESERVE|windows.MEM_COMMIT, pageProtect(mode))
	}
	if err != nil {
		return 0
	}

	return uint64(addr)
}

// ReserveAligned implements the Reserver interface. VirtualAlloc has no
// alignment argument so an aligned address is found by probing with an
// oversized reservation and re-allocating at the aligned address inside it.
func (nat *native) ReserveAligned(hint uint64, size uint64, mode Mode, alignment uint64) uint64 {
	if size == 0 {
		return 0
	}

	if alignment <= 0x1000 {
		return nat.Reserve(hint, size, mode)
	}

	for i := 0; i < 16; i++ {
		probe, err := windows.VirtualAlloc(uintptr(hint), uintptr(size+alignment),
			windows.MEM_RESERVE, windows.PAGE_NOACCESS)
		if err != nil {
			return 0
		}

		aligned := alignUp(uint64(probe), alignment)
		windows.VirtualFree(probe, 0, windows.MEM_RELEASE)

		addr, err := windows.VirtualAlloc(uintptr(aligned), uintptr(size),
			windows.MEM_RESERVE|windows.MEM_COMMIT, pageProtect(mode))
		if err == nil {
			return uint64(addr)
		}

		// another thread claimed the range between the probe and the
		// allocation. try again from scratch
		hint = 0
	}

	return 0
}

// Release implements the Reserver interface.
func (nat *native) Release(addr uint64) {
	windows.VirtualFree(uintptr(addr), 0, windows.MEM_RELEASE)
}
