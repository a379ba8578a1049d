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
	"io"

	"github.com/bradleyjkemp/memviz"
)

// Visualise writes a graphviz (dot) rendering of the current state of both
// managers. Point the output at the dot tool to get a picture of the block
// and mapping lists; useful when debugging a guest program's memory
// behaviour.
func (mem *Memory) Visualise(output io.Writer) {
	state := struct {
		Physical []physicalBlock
		Flexible []flexibleMapping
	}{
		Physical: mem.physical.snapshot(),
		Flexible: mem.flexible.snapshot(),
	}

	memviz.Map(output, &state)
}
