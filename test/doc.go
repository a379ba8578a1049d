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

// Package test bundles a bunch of functions useful for testing purposes,
// particularly in conjunction with the standard go test harness.
//
// The Equate() function compares like-typed variables for equality. Some
// types (eg. uint64) can be compared against int for convenience. See
// Equate() documentation for discussion why.
//
// The ExpectedFailure() and ExpectedSuccess() functions accept bool or error
// values and test them for the obvious condition.
package test
