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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. It works like the
// Errorf() function in the fmt package except that the pattern string is kept
// alongside the formatted values. The pattern can later be compared against
// with the Is() function:
//
//	e := curated.Errorf("kernel memory: %s: busy", "MapDirectMemory")
//
//	if curated.Is(e, "kernel memory: %s: busy") {
//		fmt.Println("mapping conflict")
//	}
//
// The Has() function is similar but checks if a pattern occurs anywhere in
// the error chain, rather than just at the head.
//
// Packages that return curated errors should export the patterns they use so
// that callers have something to compare against.
package curated
