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
	"fmt"
)

// Abort is the value passed to panic() when the guest program has violated
// the kernel ABI contract. There is no good way to continue the emulation
// after a violation: the guest's view of memory and our bookkeeping have
// diverged.
//
// Abort is a distinct type so that a supervising layer (or a test) can tell
// guest misuse apart from emulator bugs with a type assertion in recover().
type Abort struct {
	Reason string
}

func (ab Abort) Error() string {
	return fmt.Sprintf("guest ABI violation: %s", ab.Reason)
}

func abortf(pattern string, values ...interface{}) {
	panic(Abort{Reason: fmt.Sprintf(pattern, values...)})
}
