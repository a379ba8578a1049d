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

//go:build !assertions
// +build !assertions

package assert

// MainGoroutine is a stub unless the "assertions" build tag is specified.
func MainGoroutine() {
}
