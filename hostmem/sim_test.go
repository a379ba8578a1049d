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

package hostmem_test

import (
	"testing"

	"github.com/vantage-emu/vantage/hostmem"
	"github.com/vantage-emu/vantage/test"
)

func TestSimPlacement(t *testing.T) {
	sim := hostmem.NewSim(0x1000_0000)

	a := sim.Reserve(0, 0x100, hostmem.ModeReadWrite)
	test.Equate(t, a, uint64(0x1000_0000))

	// reservations are page aligned regardless of the previous reservation's
	// size
	b := sim.Reserve(0, 0x100, hostmem.ModeReadWrite)
	test.Equate(t, b, uint64(0x1000_1000))

	// deterministic: a fresh simulator yields the same addresses
	sim2 := hostmem.NewSim(0x1000_0000)
	test.Equate(t, sim2.Reserve(0, 0x100, hostmem.ModeReadWrite), a)
}

func TestSimAlignment(t *testing.T) {
	sim := hostmem.NewSim(0x1000_1000)

	a := sim.ReserveAligned(0, 0x100, hostmem.ModeReadWrite, 0x10000)
	test.Equate(t, a%0x10000, 0)
	test.Equate(t, a, uint64(0x1001_0000))
}

func TestSimZeroSize(t *testing.T) {
	sim := hostmem.NewSim(0)
	test.Equate(t, sim.Reserve(0, 0, hostmem.ModeReadWrite), 0)
}

func TestSimLimit(t *testing.T) {
	sim := hostmem.NewSim(0x1000_0000)
	sim.Limit = 0x1000_2000

	a := sim.Reserve(0, 0x1000, hostmem.ModeReadWrite)
	test.Equate(t, a, uint64(0x1000_0000))

	b := sim.Reserve(0, 0x2000, hostmem.ModeReadWrite)
	test.Equate(t, b, 0)

	// a smaller reservation still fits
	c := sim.Reserve(0, 0x1000, hostmem.ModeReadWrite)
	test.Equate(t, c, uint64(0x1000_1000))
}

func TestSimOutstanding(t *testing.T) {
	sim := hostmem.NewSim(0)

	a := sim.Reserve(0, 0x1000, hostmem.ModeRead)
	b := sim.Reserve(0, 0x1000, hostmem.ModeRead)
	test.Equate(t, sim.Outstanding(), 2)

	sim.Release(a)
	test.Equate(t, sim.Outstanding(), 1)
	sim.Release(b)
	test.Equate(t, sim.Outstanding(), 0)
}
