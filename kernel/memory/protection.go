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
	"github.com/vantage-emu/vantage/gpu"
	"github.com/vantage-emu/vantage/hostmem"
)

// DecodeProt translates a guest protection code into a host access mode and
// a GPU visibility mode. The guest bit layout is bit0=read, bit1=write,
// bit2=execute. Codes 0x32 and 0x33 additionally grant the GPU read-write
// access to the range; they are only valid when mapping direct memory.
//
// A protection code outside the guest ABI is a contract violation and
// aborts.
func DecodeProt(prot int, direct bool) (hostmem.Mode, gpu.MemoryMode) {
	switch prot {
	case 0x00:
		return hostmem.ModeNoAccess, gpu.NoAccess
	case 0x01:
		return hostmem.ModeRead, gpu.NoAccess
	case 0x02, 0x03:
		return hostmem.ModeReadWrite, gpu.NoAccess
	case 0x04:
		return hostmem.ModeExecute, gpu.NoAccess
	case 0x05:
		return hostmem.ModeExecuteRead, gpu.NoAccess
	case 0x06, 0x07:
		return hostmem.ModeExecuteReadWrite, gpu.NoAccess
	case 0x32, 0x33:
		if direct {
			return hostmem.ModeReadWrite, gpu.ReadWrite
		}
	}

	abortf("unknown protection code (%#x)", prot)
	return hostmem.ModeNoAccess, gpu.NoAccess
}
