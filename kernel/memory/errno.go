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
)

// error patterns for the recoverable errors returned by the kernel memory
// API. the %s placeholder carries the name of the entry point.
const (
	// malformed caller input. always checked before any manager state is
	// touched
	InvalidArgument = "kernel memory: %s: invalid argument"

	// the host address-space reservation failed
	OutOfMemory = "kernel memory: %s: out of memory"

	// the physical allocator could not find a fitting window. the caller
	// may retry with different bounds
	TryAgain = "kernel memory: %s: try again"

	// the requested physical range already has an active mapping
	Busy = "kernel memory: %s: busy"

	// no mapping contains the queried address
	AccessDenied = "kernel memory: %s: access denied"
)

// guest status words for the kernel memory API. the guest ABI encodes a unix
// errno in the low bits of the status.
const (
	ErrnoOK    uint32 = 0
	ErrnoInval uint32 = 0x8002_0016
	ErrnoNoMem uint32 = 0x8002_000c
	ErrnoAcces uint32 = 0x8002_000d
	ErrnoBusy  uint32 = 0x8002_0010
	ErrnoAgain uint32 = 0x8002_0023
)

// Errno converts an error returned by the kernel memory API into the status
// word expected by the guest. A nil error converts to ErrnoOK.
func Errno(err error) uint32 {
	if err == nil {
		return ErrnoOK
	}

	switch {
	case curated.Is(err, InvalidArgument):
		return ErrnoInval
	case curated.Is(err, OutOfMemory):
		return ErrnoNoMem
	case curated.Is(err, TryAgain):
		return ErrnoAgain
	case curated.Is(err, Busy):
		return ErrnoBusy
	case curated.Is(err, AccessDenied):
		return ErrnoAcces
	}

	// the API only ever returns errors over the patterns above
	return ErrnoInval
}
