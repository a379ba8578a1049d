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

package kernel_test

import (
	"testing"

	"github.com/vantage-emu/vantage/environment"
	"github.com/vantage-emu/vantage/hostmem"
	"github.com/vantage-emu/vantage/kernel"
	"github.com/vantage-emu/vantage/test"
)

func TestBootstrap(t *testing.T) {
	env, err := environment.NewEnvironment(environment.MainEmulation, hostmem.NewSim(0), nil)
	test.ExpectedSuccess(t, err)
	test.ExpectedSuccess(t, env.IsMainEmulation())

	krn, err := kernel.New(env)
	test.ExpectedSuccess(t, err)

	// a short end to end journey through the memory subsystem
	phys, err := krn.Mem.AllocateDirectMemory(0, int64(krn.Mem.DirectMemorySize()), 0x4000, 0, 0)
	test.ExpectedSuccess(t, err)

	addr, err := krn.Mem.MapDirectMemory(0, 0x4000, 0x33, 0, phys, 0)
	test.ExpectedSuccess(t, err)

	test.ExpectedSuccess(t, env.GPU.IsAllocated(addr))

	test.ExpectedSuccess(t, krn.Mem.Munmap(addr, 0x4000))
	test.ExpectedSuccess(t, krn.Mem.ReleaseDirectMemory(phys, 0x4000))

	krn.Shutdown()
}
