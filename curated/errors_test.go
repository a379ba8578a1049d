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

package curated_test

import (
	"errors"
	"testing"

	"github.com/vantage-emu/vantage/curated"
	"github.com/vantage-emu/vantage/test"
)

const testPattern = "test: %s"

func TestIs(t *testing.T) {
	e := curated.Errorf(testPattern, "detail")

	test.ExpectedSuccess(t, curated.IsAny(e))
	test.ExpectedSuccess(t, curated.Is(e, testPattern))
	test.ExpectedFailure(t, curated.Is(e, "some other pattern"))

	// plain errors are never curated
	p := errors.New("plain error")
	test.ExpectedFailure(t, curated.IsAny(p))
	test.ExpectedFailure(t, curated.Is(p, testPattern))

	// nil is never curated
	test.ExpectedFailure(t, curated.IsAny(nil))
	test.ExpectedFailure(t, curated.Is(nil, testPattern))
}

func TestHas(t *testing.T) {
	inner := curated.Errorf(testPattern, "detail")
	outer := curated.Errorf("wrapping: %v", inner)

	test.ExpectedSuccess(t, curated.Has(outer, testPattern))
	test.ExpectedSuccess(t, curated.Has(outer, "wrapping: %v"))
	test.ExpectedFailure(t, curated.Is(outer, testPattern))
}

func TestDeduplication(t *testing.T) {
	inner := curated.Errorf("error: inner")
	outer := curated.Errorf("error: %v", inner)

	// the adjacent duplicate "error:" part is removed
	test.Equate(t, outer.Error(), "error: inner")
}
