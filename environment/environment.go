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

// Package environment provides context for an emulated process: a label to
// tell emulations apart and the host collaborators the kernel subsystems
// depend on. Collaborators are held here so that more than one emulation can
// share them, or tests can substitute them.
package environment

import (
	"github.com/vantage-emu/vantage/gpu"
	"github.com/vantage-emu/vantage/hostmem"
)

// Label is used to name the environment.
type Label string

// MainEmulation is the label of the main emulation in the system.
const MainEmulation Label = ""

// Environment is used to provide context for an emulation.
type Environment struct {
	Label Label

	// the host address-space reservation used for guest virtual memory
	AddressSpace hostmem.Reserver

	// the GPU memory tracker and the graphics context GPU memory is freed
	// on behalf of
	GPU      *gpu.Memory
	Graphics *gpu.Context
}

// NewEnvironment is the preferred method of initialisation for the
// Environment type.
//
// A nil addressSpace selects the native backend for the platform. A nil
// gpuMemory creates a fresh tracker.
func NewEnvironment(label Label, addressSpace hostmem.Reserver, gpuMemory *gpu.Memory) (*Environment, error) {
	env := &Environment{
		Label: label,
	}

	if addressSpace == nil {
		addressSpace = hostmem.NewNative()
	}
	env.AddressSpace = addressSpace

	if gpuMemory == nil {
		gpuMemory = gpu.NewMemory()
	}
	env.GPU = gpuMemory
	env.Graphics = &gpu.Context{Label: string(label)}

	return env, nil
}

// IsMainEmulation returns true if the environment is intended for the main
// emulation in the system.
func (env *Environment) IsMainEmulation() bool {
	return env.Label == MainEmulation
}
