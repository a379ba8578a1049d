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

package script_test

import (
	"strings"
	"testing"

	"github.com/vantage-emu/vantage/curated"
	"github.com/vantage-emu/vantage/hostmem"
	"github.com/vantage-emu/vantage/kernel/memory"
	"github.com/vantage-emu/vantage/script"
	"github.com/vantage-emu/vantage/test"
)

func newTestMemory() *memory.Memory {
	return memory.NewMemory(hostmem.NewSim(0), nil, nil)
}

func TestPlayback(t *testing.T) {
	mem := newTestMemory()

	trace := `
# allocate, map and query a direct block; then tear everything down
size
allocdirect 0 0x10000000 0x8000 0 0
mapdirect 0 0x8000 0x02 0 0
query 0x200000000
munmap 0x200000000 0x8000
releasedirect 0 0x8000
mapflexible 0 0x4000 0x03 stack
munmap 0x200008000 0x4000
`

	output := &strings.Builder{}
	err := script.Run(mem, strings.NewReader(trace), output)
	test.ExpectedSuccess(t, err)

	expected := "size = 0x150000000\n" +
		"allocdirect = ok phys=0x0\n" +
		"mapdirect = ok addr=0x200000000\n" +
		"query = ok start=0x200000000 end=0x200007fff prot=0x2\n" +
		"munmap = ok\n" +
		"releasedirect = ok\n" +
		"mapflexible = ok addr=0x200008000\n" +
		"munmap = ok\n"
	test.Equate(t, output.String(), expected)
}

func TestPlaybackGuestErrors(t *testing.T) {
	mem := newTestMemory()

	// recoverable guest errors are trace output, not script failure
	trace := `
munmap 0x1000 0
allocdirect -1 0x100 0x10 0 0
query 0xdead0000
`

	output := &strings.Builder{}
	err := script.Run(mem, strings.NewReader(trace), output)
	test.ExpectedSuccess(t, err)

	expected := "munmap = error 0x80020016 (kernel memory: Munmap: invalid argument)\n" +
		"allocdirect = error 0x80020016 (kernel memory: AllocateDirectMemory: invalid argument)\n" +
		"query = error 0x8002000d (kernel memory: QueryMemoryProtection: access denied)\n"
	test.Equate(t, output.String(), expected)
}

func TestPlaybackParseErrors(t *testing.T) {
	mem := newTestMemory()

	for _, trace := range []string{
		"bogus 1 2",
		"munmap 0x1000",
		"allocdirect 0 one 0x10 0 0",
		"mapflexible 0 0x4000 0x03",
	} {
		output := &strings.Builder{}
		err := script.Run(mem, strings.NewReader(trace), output)
		test.ExpectedFailure(t, err)
		test.ExpectedSuccess(t, curated.Is(err, script.ParseError))
	}
}
