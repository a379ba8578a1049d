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

package logger_test

import (
	"strings"
	"testing"

	"github.com/vantage-emu/vantage/logger"
	"github.com/vantage-emu/vantage/test"
)

func TestCentralLogger(t *testing.T) {
	logger.Clear()

	s := &strings.Builder{}
	logger.Write(s)
	test.Equate(t, s.String(), "")

	logger.Log("test", "this is a test")
	logger.Write(s)
	test.Equate(t, s.String(), "test: this is a test\n")

	// the tail of the log is the same as the whole log at this point
	s.Reset()
	logger.Tail(s, 1)
	test.Equate(t, s.String(), "test: this is a test\n")

	logger.Logf("test", "formatted %d", 10)
	s.Reset()
	logger.Tail(s, 1)
	test.Equate(t, s.String(), "test: formatted 10\n")
}

func TestRepeatedEntries(t *testing.T) {
	logger.Clear()

	logger.Log("test", "repeated entry")
	logger.Log("test", "repeated entry")
	logger.Log("test", "repeated entry")

	s := &strings.Builder{}
	logger.Write(s)
	test.Equate(t, s.String(), "test: repeated entry (repeat x3)\n")
}
