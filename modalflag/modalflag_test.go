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

package modalflag_test

import (
	"testing"

	"github.com/vantage-emu/vantage/modalflag"
	"github.com/vantage-emu/vantage/test"
)

func TestNoModes(t *testing.T) {
	md := &modalflag.Modes{}
	md.NewArgs([]string{"arg1", "arg2"})

	p, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(modalflag.ParseContinue))
	test.Equate(t, md.Mode(), "")
	test.Equate(t, len(md.RemainingArgs()), 2)
}

func TestSubModes(t *testing.T) {
	md := &modalflag.Modes{}
	md.NewArgs([]string{"version"})
	md.AddSubModes("RUN", "VERSION")

	p, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(modalflag.ParseContinue))
	test.Equate(t, md.Mode(), "VERSION")
}

func TestDefaultSubMode(t *testing.T) {
	md := &modalflag.Modes{}
	md.NewArgs([]string{"trace.txt"})
	md.AddSubModes("RUN", "VERSION")

	p, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(modalflag.ParseContinue))

	// unrecognised argument selects the default sub-mode and remains
	// available as an argument
	test.Equate(t, md.Mode(), "RUN")
	test.Equate(t, md.GetArg(0), "trace.txt")
}

func TestFlags(t *testing.T) {
	md := &modalflag.Modes{}
	md.NewArgs([]string{"-echo", "trace.txt"})
	verbose := md.AddBool("echo", false, "echo log to stdout")

	p, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(modalflag.ParseContinue))
	test.Equate(t, *verbose, true)
	test.Equate(t, md.GetArg(0), "trace.txt")
}
