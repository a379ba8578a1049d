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

// Package kernel assembles the emulated kernel's subsystems for one guest
// process. Only the memory subsystem lives in this repository; other
// subsystems are registered by the wider emulator.
//
// New() must be called during process bootstrap, before any guest thread is
// running. Subsystems are constructed exactly once: there is no lazy
// re-creation, and tearing a Kernel down invalidates it.
package kernel

import (
	"github.com/vantage-emu/vantage/assert"
	"github.com/vantage-emu/vantage/environment"
	"github.com/vantage-emu/vantage/kernel/memory"
	"github.com/vantage-emu/vantage/logger"
)

// Kernel is the collection of kernel subsystems servicing one emulated
// process.
type Kernel struct {
	env *environment.Environment

	// the guest-facing memory syscall surface
	Mem *memory.Memory
}

// New is the preferred method of initialisation for the Kernel type. With
// the "assertions" build tag, calling it from anywhere but the main
// goroutine panics.
func New(env *environment.Environment) (*Kernel, error) {
	assert.MainGoroutine()

	k := &Kernel{
		env: env,
		Mem: memory.NewMemory(env.AddressSpace, env.GPU, env.Graphics),
	}

	logger.Logf("kernel", "memory subsystem initialised (direct memory %#x bytes)",
		k.Mem.DirectMemorySize())

	return k, nil
}

// Shutdown the kernel subsystems. GPU work is drained first so that nothing
// is touching guest memory when the process state is dropped.
func (k *Kernel) Shutdown() {
	k.env.GPU.WaitIdle()
	logger.Log("kernel", "memory subsystem shut down")
}
