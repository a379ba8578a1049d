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

// Package hostmem reserves address ranges in the emulator's own process
// address space. A reserved range stands in for the guest program's view of
// virtual memory.
//
// The Reserver interface is the contract consumed by the kernel memory
// subsystem. Two implementations are provided: NewNative() reserves real
// address ranges from the host operating system, and Sim simulates an
// address space with deterministic placement. Sim is used by tests and by
// trace playback, where reproducible addresses matter more than real
// backing.
package hostmem

// Mode is the page-level access granted to a reserved range.
type Mode int

// List of valid Mode values.
const (
	ModeNoAccess Mode = iota
	ModeRead
	ModeReadWrite
	ModeExecute
	ModeExecuteRead
	ModeExecuteReadWrite
)

func (m Mode) String() string {
	switch m {
	case ModeNoAccess:
		return "NoAccess"
	case ModeRead:
		return "Read"
	case ModeReadWrite:
		return "ReadWrite"
	case ModeExecute:
		return "Execute"
	case ModeExecuteRead:
		return "ExecuteRead"
	case ModeExecuteReadWrite:
		return "ExecuteReadWrite"
	}
	return "unknown"
}

// Reserver allocates and frees address ranges in the host process. An
// implementation must yield ranges whose page-level access matches the
// requested Mode.
//
// A return value of zero indicates that the reservation failed. Reserve and
// ReserveAligned treat the hint address as advisory. Release frees a range
// previously returned by Reserve or ReserveAligned.
type Reserver interface {
	Reserve(hint uint64, size uint64, mode Mode) uint64
	ReserveAligned(hint uint64, size uint64, mode Mode, alignment uint64) uint64
	Release(addr uint64)
}

// alignUp returns pos aligned upwards to the given alignment. An alignment
// of zero leaves pos unchanged.
func alignUp(pos uint64, alignment uint64) uint64 {
	if alignment == 0 {
		return pos
	}
	return (pos + (alignment - 1)) &^ (alignment - 1)
}
